package vfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	vfsRepo "arbor/internal/domain/repositories/vfs"
)

// Engine maintains the materialized-path invariant and per-directory ordinal
// uniqueness. Its methods are single steps of larger operations and never
// open transactions; the orchestrating service wraps every externally
// triggered mutation in exactly one.
//
// Reparenting parks the moved node at the sentinel ordinal because the
// destination directory may already hold a sibling at the node's current
// ordinal. The caller must follow up with SetOrdinal before the node counts
// as placed; leaving the transaction with a sentinel resting in place is a
// bug the tests assert against.
type Engine struct {
	repo   vfsRepo.NodeRepository
	logger *slog.Logger
}

// NewEngine creates a path/ordinal engine over the given repository
func NewEngine(repo vfsRepo.NodeRepository, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, logger: logger}
}

// NextOrdinal returns the append position for a directory:
// max(ordinal among direct children) + 1, or 1 for an empty directory.
func (e *Engine) NextOrdinal(ctx context.Context, ns, parentPath string) (int32, error) {
	return e.repo.NextOrdinal(ctx, ns, models.NormalizePath(parentPath))
}

// EnsurePath idempotently creates every missing directory segment along
// path, appending each new segment at the end of its parent. Fails when an
// existing segment is a file. Returns the deepest node (nil for the root).
func (e *Engine) EnsurePath(ctx context.Context, ns string, viewer models.Viewer, path string) (*models.Node, error) {
	path = models.NormalizePath(path)
	if path == "" {
		return nil, nil
	}
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	var current *models.Node
	parent := ""
	for _, segment := range splitSegments(path) {
		node, err := e.repo.GetByName(ctx, ns, viewer, parent, segment)
		switch {
		case err == nil:
			if !node.IsDirectory {
				return nil, &domain.ValidationError{
					Message: fmt.Sprintf("path segment %q is a file", node.FullPath()),
				}
			}
		case errors.Is(err, domain.ErrNotFound):
			next, err := e.repo.NextOrdinal(ctx, ns, parent)
			if err != nil {
				return nil, err
			}
			now := time.Now()
			node = &models.Node{
				ID:           uuid.NewString(),
				NamespaceKey: ns,
				OwnerID:      viewer.UserID,
				ParentPath:   parent,
				Filename:     segment,
				IsDirectory:  true,
				Ordinal:      next,
				CreatedAt:    now,
				ModifiedAt:   now,
			}
			if err := e.repo.Create(ctx, node); err != nil {
				return nil, err
			}
			e.logger.Debug("directory created", "path", node.FullPath(), "ordinal", node.Ordinal)
		default:
			return nil, err
		}
		current = node
		parent = node.FullPath()
	}
	return current, nil
}

// Rename moves or renames one node. On a pure rename the ordinal is kept; on
// a reparent (parent directory changes) the node receives the sentinel
// ordinal and the second return value is true - the caller must place it
// with SetOrdinal before committing. Renaming a directory atomically
// rewrites the parent_path prefix of every descendant; their filenames,
// ordinals and identifiers are untouched.
func (e *Engine) Rename(ctx context.Context, ns string, viewer models.Viewer, oldPath, newPath string) (*models.Node, bool, error) {
	oldParent, oldName := models.SplitPath(oldPath)
	newParent, newName := models.SplitPath(newPath)

	if oldName == "" || newName == "" {
		return nil, false, &domain.ValidationError{Message: "cannot rename the namespace root"}
	}
	if err := ValidateName(newName); err != nil {
		return nil, false, err
	}

	node, err := e.repo.GetByName(ctx, ns, viewer, oldParent, oldName)
	if err != nil {
		return nil, false, err
	}
	if !viewer.CanMutate(node) {
		return nil, false, &domain.ForbiddenError{Message: fmt.Sprintf("not the owner of %q", node.FullPath())}
	}

	// Identical source and destination succeed as a no-op without mutation.
	if oldParent == newParent && oldName == newName {
		return node, false, nil
	}

	// A directory can never move into itself or one of its descendants.
	if node.IsDirectory && models.IsWithin(newParent, node.FullPath()) {
		return nil, false, &domain.ValidationError{
			Message: fmt.Sprintf("cannot move %q into its own subtree", node.FullPath()),
		}
	}

	if _, err := e.repo.GetByName(ctx, ns, viewer, newParent, newName); err == nil {
		return nil, false, &domain.ConflictError{
			Message:      fmt.Sprintf("destination %q already exists", models.JoinPath(newParent, newName)),
			ResourceType: "node",
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	if newParent != "" {
		grandparent, parentName := models.SplitPath(newParent)
		dst, err := e.repo.GetByName(ctx, ns, viewer, grandparent, parentName)
		if err != nil {
			return nil, false, fmt.Errorf("destination parent %q: %w", newParent, err)
		}
		if !dst.IsDirectory {
			return nil, false, &domain.ValidationError{
				Message: fmt.Sprintf("destination parent %q is not a directory", newParent),
			}
		}
	}

	if node.IsDirectory {
		oldFull := node.FullPath()
		newFull := models.JoinPath(newParent, newName)
		if _, err := e.repo.ReparentSubtree(ctx, ns, oldFull, newFull); err != nil {
			return nil, false, err
		}
	}

	reparented := oldParent != newParent
	ordinal := node.Ordinal
	if reparented {
		ordinal = models.SentinelOrdinal
	}
	if err := e.repo.UpdateLocation(ctx, node.ID, newParent, newName, ordinal); err != nil {
		return nil, false, err
	}

	node.ParentPath = newParent
	node.Filename = newName
	node.Ordinal = ordinal
	return node, reparented, nil
}

// SetOrdinal places a node at a final ordinal. Values in the sentinel band
// are rejected here; staging placeholders go through the repository directly.
func (e *Engine) SetOrdinal(ctx context.Context, id string, ordinal int32) error {
	if ordinal < models.MinOrdinal {
		return &domain.ValidationError{
			Message: fmt.Sprintf("ordinal %d is below the minimum placeable value", ordinal),
		}
	}
	return e.repo.SetOrdinal(ctx, id, ordinal)
}

// SwapOrdinals atomically exchanges two nodes' ordinals. The uniqueness
// constraint is checked per statement, so the first node is parked at a
// staging placeholder while the second takes its slot.
func (e *Engine) SwapOrdinals(ctx context.Context, viewer models.Viewer, idA, idB string) error {
	a, err := e.repo.GetByID(ctx, viewer, idA)
	if err != nil {
		return err
	}
	b, err := e.repo.GetByID(ctx, viewer, idB)
	if err != nil {
		return err
	}
	if !viewer.CanMutate(a) || !viewer.CanMutate(b) {
		return &domain.ForbiddenError{Message: "not the owner of the nodes being reordered"}
	}

	if err := e.repo.SetOrdinal(ctx, a.ID, models.PlaceholderOrdinal(0)); err != nil {
		return err
	}
	if err := e.repo.SetOrdinal(ctx, b.ID, a.Ordinal); err != nil {
		return err
	}
	return e.repo.SetOrdinal(ctx, a.ID, b.Ordinal)
}

// ShiftOrdinalsDown opens a gap of count free ordinals starting at from
// among the direct children of parentPath. Children below from are
// untouched. Returns the affected node identifiers.
func (e *Engine) ShiftOrdinalsDown(ctx context.Context, ns, parentPath string, from, count int32) ([]string, error) {
	return e.repo.ShiftOrdinals(ctx, ns, models.NormalizePath(parentPath), from, count)
}

// SetPublic sets the visibility flag on the named node and, when recursive
// and the node is a directory, on every descendant in the same transaction.
func (e *Engine) SetPublic(ctx context.Context, ns string, viewer models.Viewer, path string, public, recursive bool) error {
	parent, name := models.SplitPath(path)
	if name == "" {
		return &domain.ValidationError{Message: "the namespace root is never public"}
	}
	node, err := e.repo.GetByName(ctx, ns, viewer, parent, name)
	if err != nil {
		return err
	}
	if !viewer.CanMutate(node) {
		return &domain.ForbiddenError{Message: fmt.Sprintf("not the owner of %q", node.FullPath())}
	}
	if err := e.repo.SetPublic(ctx, node.ID, public); err != nil {
		return err
	}
	if recursive && node.IsDirectory {
		affected, err := e.repo.SetPublicSubtree(ctx, ns, node.FullPath(), public)
		if err != nil {
			return err
		}
		e.logger.Debug("visibility propagated", "path", node.FullPath(), "public", public, "descendants", affected)
	}
	return nil
}

// RemoveRecursive deletes the node and, for directories, every descendant in
// one transaction.
func (e *Engine) RemoveRecursive(ctx context.Context, ns string, viewer models.Viewer, path string) error {
	parent, name := models.SplitPath(path)
	if name == "" {
		return &domain.ValidationError{Message: "cannot delete the namespace root"}
	}
	node, err := e.repo.GetByName(ctx, ns, viewer, parent, name)
	if err != nil {
		return err
	}
	if !viewer.CanMutate(node) {
		return &domain.ForbiddenError{Message: fmt.Sprintf("not the owner of %q", node.FullPath())}
	}
	if node.IsDirectory {
		if _, err := e.repo.DeleteSubtree(ctx, ns, node.FullPath()); err != nil {
			return err
		}
	}
	return e.repo.Delete(ctx, node.ID)
}

func splitSegments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
