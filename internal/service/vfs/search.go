package vfs

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	services "arbor/internal/domain/services/vfs"
)

// Search matches file content under a subtree. A blank query matches every
// visible file in scope; match-any/match-all terms are matched literally,
// not as patterns.
func (s *namespaceService) Search(ctx context.Context, viewer models.Viewer, ns string, req *services.SearchRequest) ([]models.SearchResult, error) {
	subtree := models.NormalizePath(req.SubtreePath)
	if subtree != "" {
		scope, err := s.store.Stat(ctx, ns, viewer, subtree)
		if err != nil {
			return nil, fmt.Errorf("search scope %q: %w", subtree, err)
		}
		if !scope.IsDirectory {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("search scope %q is not a directory", subtree)}
		}
	}

	opts := &models.SearchOptions{
		Query:       req.Query,
		SubtreePath: subtree,
		Mode:        req.Mode,
		Order:       req.Order,
	}
	opts.ApplyDefaults()
	if opts.Mode != models.SearchModeRegex {
		for i, term := range opts.Terms {
			opts.Terms[i] = regexp.QuoteMeta(term)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	nodes, err := s.repo.Search(ctx, ns, viewer, opts)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, len(nodes))
	for i := range nodes {
		results[i] = models.SearchResult{
			ID:         nodes[i].ID,
			Path:       nodes[i].FullPath(),
			Filename:   nodes[i].Filename,
			Size:       nodes[i].Size,
			ModifiedAt: nodes[i].ModifiedAt.Format(time.RFC3339),
		}
	}

	s.logger.Debug("search executed",
		"namespace", ns,
		"mode", string(opts.Mode),
		"scope", subtree,
		"hits", len(results),
	)
	return results, nil
}

// GetTree returns the namespace as a nested tree, children in ordinal order.
// A node whose parent is not visible to the viewer is omitted along with its
// subtree.
func (s *namespaceService) GetTree(ctx context.Context, viewer models.Viewer, ns string) ([]*models.TreeNode, error) {
	nodes, err := s.repo.ListAll(ctx, ns, viewer)
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]*models.TreeNode, len(nodes))
	var roots []*models.TreeNode
	// ListAll orders by parent path then ordinal, so parents precede their
	// children and append order is already ordinal order.
	for i := range nodes {
		n := &nodes[i]
		tn := &models.TreeNode{
			ID:          n.ID,
			Filename:    n.Filename,
			Path:        n.FullPath(),
			IsDirectory: n.IsDirectory,
			IsPublic:    n.IsPublic,
			Ordinal:     n.Ordinal,
			Size:        n.Size,
			ModifiedAt:  n.ModifiedAt,
		}
		byPath[tn.Path] = tn

		if n.ParentPath == "" {
			roots = append(roots, tn)
			continue
		}
		if parent, ok := byPath[n.ParentPath]; ok {
			parent.Children = append(parent.Children, tn)
		}
	}
	return roots, nil
}

// List returns the direct children of a directory in ordinal order.
func (s *namespaceService) List(ctx context.Context, viewer models.Viewer, ns, path string) ([]models.Node, error) {
	return s.store.ListChildren(ctx, ns, viewer, path, false)
}

// Stat resolves a path to its node; the empty path is the virtual root.
func (s *namespaceService) Stat(ctx context.Context, viewer models.Viewer, ns, path string) (*models.Node, error) {
	return s.store.Stat(ctx, ns, viewer, models.NormalizePath(path))
}
