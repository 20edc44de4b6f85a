package vfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	"arbor/internal/domain/repositories"
)

// memoryRepo is an in-memory NodeRepository used by the service tests. It
// enforces both sibling-uniqueness constraints on every single mutation, the
// same way the database does per statement, so the sentinel and two-phase
// staging logic is genuinely exercised rather than assumed.
type memoryRepo struct {
	nodes map[string]*models.Node
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nodes: make(map[string]*models.Node)}
}

// memoryTxManager satisfies TransactionManager without transactional
// semantics; service tests assert on the repository's committed state only.
type memoryTxManager struct{}

func (memoryTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (r *memoryRepo) checkConstraints(candidate *models.Node) error {
	for _, n := range r.nodes {
		if n.ID == candidate.ID || n.NamespaceKey != candidate.NamespaceKey || n.ParentPath != candidate.ParentPath {
			continue
		}
		if n.Filename == candidate.Filename {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("duplicate name %q in %q", candidate.Filename, candidate.ParentPath),
				ResourceType: "node",
				ResourceID:   n.ID,
			}
		}
		if n.Ordinal == candidate.Ordinal {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("duplicate ordinal %d in %q", candidate.Ordinal, candidate.ParentPath),
				ResourceType: "node",
				ResourceID:   n.ID,
			}
		}
	}
	return nil
}

func (r *memoryRepo) GetByName(_ context.Context, ns string, viewer models.Viewer, parentPath, filename string) (*models.Node, error) {
	for _, n := range r.nodes {
		if n.NamespaceKey == ns && n.ParentPath == parentPath && n.Filename == filename {
			if !viewer.CanSee(n) {
				break
			}
			c := *n
			return &c, nil
		}
	}
	return nil, &domain.NotFoundError{
		Message: fmt.Sprintf("node %q not found in %q", filename, parentPath),
	}
}

func (r *memoryRepo) GetByID(_ context.Context, viewer models.Viewer, id string) (*models.Node, error) {
	n, ok := r.nodes[id]
	if !ok || !viewer.CanSee(n) {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("node %s not found", id)}
	}
	c := *n
	return &c, nil
}

func (r *memoryRepo) ListChildren(_ context.Context, ns string, viewer models.Viewer, parentPath string, includeContent bool) ([]models.Node, error) {
	var out []models.Node
	for _, n := range r.nodes {
		if n.NamespaceKey == ns && n.ParentPath == parentPath && viewer.CanSee(n) {
			c := *n
			if !includeContent {
				c.Content = ""
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (r *memoryRepo) ListAll(_ context.Context, ns string, viewer models.Viewer) ([]models.Node, error) {
	var out []models.Node
	for _, n := range r.nodes {
		if n.NamespaceKey == ns && viewer.CanSee(n) {
			c := *n
			c.Content = ""
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParentPath != out[j].ParentPath {
			return out[i].ParentPath < out[j].ParentPath
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out, nil
}

func (r *memoryRepo) CountChildren(_ context.Context, ns, parentPath string) (int, error) {
	count := 0
	for _, n := range r.nodes {
		if n.NamespaceKey == ns && n.ParentPath == parentPath {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepo) Create(_ context.Context, node *models.Node) error {
	if _, ok := r.nodes[node.ID]; ok {
		return &domain.ConflictError{Message: "duplicate id", ResourceType: "node", ResourceID: node.ID}
	}
	if err := r.checkConstraints(node); err != nil {
		return err
	}
	c := *node
	r.nodes[node.ID] = &c
	return nil
}

func (r *memoryRepo) UpdateContent(_ context.Context, id, content, contentType string, size int64) error {
	n, ok := r.nodes[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("node %s not found", id)}
	}
	n.Content = content
	n.ContentType = contentType
	n.Size = size
	return nil
}

func (r *memoryRepo) UpdateLocation(_ context.Context, id, parentPath, filename string, ordinal int32) error {
	n, ok := r.nodes[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("node %s not found", id)}
	}
	candidate := *n
	candidate.ParentPath = parentPath
	candidate.Filename = filename
	candidate.Ordinal = ordinal
	if err := r.checkConstraints(&candidate); err != nil {
		return err
	}
	*n = candidate
	return nil
}

func (r *memoryRepo) SetOrdinal(_ context.Context, id string, ordinal int32) error {
	n, ok := r.nodes[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("node %s not found", id)}
	}
	candidate := *n
	candidate.Ordinal = ordinal
	if err := r.checkConstraints(&candidate); err != nil {
		return err
	}
	n.Ordinal = ordinal
	return nil
}

func (r *memoryRepo) NextOrdinal(_ context.Context, ns, parentPath string) (int32, error) {
	max := int32(0)
	for _, n := range r.nodes {
		if n.NamespaceKey == ns && n.ParentPath == parentPath && n.Ordinal >= models.MinOrdinal && n.Ordinal > max {
			max = n.Ordinal
		}
	}
	return max + 1, nil
}

func (r *memoryRepo) ShiftOrdinals(_ context.Context, ns, parentPath string, from, count int32) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("shift count must be positive, got %d", count)
	}
	var affected []*models.Node
	for _, n := range r.nodes {
		if n.NamespaceKey == ns && n.ParentPath == parentPath && n.Ordinal >= from {
			affected = append(affected, n)
		}
	}
	// Descending order keeps each single update collision-free.
	sort.Slice(affected, func(i, j int) bool { return affected[i].Ordinal > affected[j].Ordinal })

	ids := make([]string, 0, len(affected))
	for _, n := range affected {
		candidate := *n
		candidate.Ordinal += count
		if err := r.checkConstraints(&candidate); err != nil {
			return nil, err
		}
		n.Ordinal = candidate.Ordinal
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func (r *memoryRepo) ReparentSubtree(_ context.Context, ns, oldPrefix, newPrefix string) (int64, error) {
	var rewritten int64
	for _, n := range r.nodes {
		if n.NamespaceKey != ns {
			continue
		}
		switch {
		case n.ParentPath == oldPrefix:
			n.ParentPath = newPrefix
			rewritten++
		case strings.HasPrefix(n.ParentPath, oldPrefix+"/"):
			n.ParentPath = newPrefix + strings.TrimPrefix(n.ParentPath, oldPrefix)
			rewritten++
		}
	}
	return rewritten, nil
}

func (r *memoryRepo) SetPublic(_ context.Context, id string, public bool) error {
	n, ok := r.nodes[id]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("node %s not found", id)}
	}
	n.IsPublic = public
	return nil
}

func (r *memoryRepo) SetPublicSubtree(_ context.Context, ns, fullPath string, public bool) (int64, error) {
	var affected int64
	for _, n := range r.nodes {
		if n.NamespaceKey != ns {
			continue
		}
		if n.ParentPath == fullPath || strings.HasPrefix(n.ParentPath, fullPath+"/") {
			n.IsPublic = public
			affected++
		}
	}
	return affected, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.nodes[id]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("node %s not found", id)}
	}
	delete(r.nodes, id)
	return nil
}

func (r *memoryRepo) DeleteSubtree(_ context.Context, ns, fullPath string) (int64, error) {
	var deleted int64
	for id, n := range r.nodes {
		if n.NamespaceKey != ns {
			continue
		}
		if n.ParentPath == fullPath || strings.HasPrefix(n.ParentPath, fullPath+"/") {
			delete(r.nodes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryRepo) Search(_ context.Context, ns string, viewer models.Viewer, opts *models.SearchOptions) ([]models.Node, error) {
	patterns := make([]*regexp.Regexp, 0, len(opts.Terms))
	for _, term := range opts.Terms {
		if opts.Mode != models.SearchModeRegex {
			term = "(?i)" + term
		}
		re, err := regexp.Compile(term)
		if err != nil {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("bad pattern %q: %v", term, err)}
		}
		patterns = append(patterns, re)
	}

	inScope := func(n *models.Node) bool {
		if opts.SubtreePath == "" {
			return true
		}
		return n.ParentPath == opts.SubtreePath || strings.HasPrefix(n.ParentPath, opts.SubtreePath+"/")
	}
	matches := func(content string) bool {
		if opts.Mode == models.SearchModeMatchAny {
			for _, re := range patterns {
				if re.MatchString(content) {
					return true
				}
			}
			return false
		}
		for _, re := range patterns {
			if !re.MatchString(content) {
				return false
			}
		}
		return true
	}

	var out []models.Node
	for _, n := range r.nodes {
		if n.NamespaceKey != ns || n.IsDirectory || !viewer.CanSee(n) || !inScope(n) {
			continue
		}
		if matches(n.Content) {
			out = append(out, *n)
		}
	}

	switch opts.Order {
	case models.SearchOrderName:
		sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	case models.SearchOrderCreated:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].ModifiedAt.After(out[j].ModifiedAt) })
	}
	return out, nil
}

// byPath returns the live record at a full path, for assertions.
func (r *memoryRepo) byPath(path string) *models.Node {
	parent, name := models.SplitPath(path)
	for _, n := range r.nodes {
		if n.ParentPath == parent && n.Filename == name {
			return n
		}
	}
	return nil
}
