package vfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	vfsRepo "arbor/internal/domain/repositories/vfs"
)

// defaultContentType is attached to file payloads written through the store;
// richer sniffing belongs to the binary-serving surface, not the core.
const defaultContentType = "text/plain; charset=utf-8"

// Store implements the node store: CRUD and lookup over namespace records.
// All path-accepting methods normalize first; every read is visibility
// filtered by the repository. Store methods never open transactions - the
// orchestrating service does.
type Store struct {
	repo   vfsRepo.NodeRepository
	logger *slog.Logger
}

// NewStore creates a node store over the given repository
func NewStore(repo vfsRepo.NodeRepository, logger *slog.Logger) *Store {
	return &Store{repo: repo, logger: logger}
}

// rootNode synthesizes the virtual namespace root: it has no record, always
// exists, is always a directory and is never public.
func rootNode(ns string) *models.Node {
	return &models.Node{
		NamespaceKey: ns,
		ParentPath:   "",
		Filename:     "",
		IsDirectory:  true,
		IsPublic:     false,
	}
}

// Exists reports whether the path resolves to a visible node.
func (s *Store) Exists(ctx context.Context, ns string, viewer models.Viewer, path string) (bool, error) {
	_, err := s.Stat(ctx, ns, viewer, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Stat resolves a path to its node. The empty path resolves to the virtual root.
func (s *Store) Stat(ctx context.Context, ns string, viewer models.Viewer, path string) (*models.Node, error) {
	parent, name := models.SplitPath(path)
	if name == "" {
		return rootNode(ns), nil
	}
	return s.repo.GetByName(ctx, ns, viewer, parent, name)
}

// GetByName retrieves one node by parent path and leaf name.
func (s *Store) GetByName(ctx context.Context, ns string, viewer models.Viewer, parentPath, filename string) (*models.Node, error) {
	return s.repo.GetByName(ctx, ns, viewer, models.NormalizePath(parentPath), filename)
}

// GetByID retrieves one node by its stable identifier.
func (s *Store) GetByID(ctx context.Context, viewer models.Viewer, id string) (*models.Node, error) {
	return s.repo.GetByID(ctx, viewer, id)
}

// ListChildren lists the direct children of a directory in ordinal order.
func (s *Store) ListChildren(ctx context.Context, ns string, viewer models.Viewer, parentPath string, includeContent bool) ([]models.Node, error) {
	parentPath = models.NormalizePath(parentPath)
	if parentPath != "" {
		parent, err := s.Stat(ctx, ns, viewer, parentPath)
		if err != nil {
			return nil, err
		}
		if !parent.IsDirectory {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("%q is not a directory", parentPath),
			}
		}
	}
	return s.repo.ListChildren(ctx, ns, viewer, parentPath, includeContent)
}

// Write creates a file or overwrites it in place. On overwrite the node's
// identifier is preserved, and so is its ordinal unless the caller supplies
// an explicit one: re-saving content must not silently reorder the node.
func (s *Store) Write(ctx context.Context, ns string, viewer models.Viewer, parentPath, filename, content string, isPublic bool, ordinal *int32) (*models.Node, error) {
	parentPath = models.NormalizePath(parentPath)
	if err := ValidateName(filename); err != nil {
		return nil, err
	}

	parent, err := s.Stat(ctx, ns, viewer, parentPath)
	if err != nil {
		return nil, fmt.Errorf("parent of %q: %w", filename, err)
	}
	if !parent.IsDirectory {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("parent %q is not a directory", parentPath),
		}
	}

	existing, err := s.repo.GetByName(ctx, ns, viewer, parentPath, filename)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.IsDirectory {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("%q is a directory", existing.FullPath()),
			}
		}
		if !viewer.CanMutate(existing) {
			return nil, &domain.ForbiddenError{
				Message: fmt.Sprintf("not the owner of %q", existing.FullPath()),
			}
		}
		if err := s.repo.UpdateContent(ctx, existing.ID, content, defaultContentType, int64(len(content))); err != nil {
			return nil, err
		}
		if ordinal != nil && *ordinal != existing.Ordinal {
			if err := s.repo.SetOrdinal(ctx, existing.ID, *ordinal); err != nil {
				return nil, err
			}
			existing.Ordinal = *ordinal
		}
		existing.Content = content
		existing.Size = int64(len(content))
		existing.ModifiedAt = time.Now()
		return existing, nil
	}

	ord := int32(0)
	if ordinal != nil {
		ord = *ordinal
	} else {
		next, err := s.repo.NextOrdinal(ctx, ns, parentPath)
		if err != nil {
			return nil, err
		}
		ord = next
	}

	now := time.Now()
	node := &models.Node{
		ID:           uuid.NewString(),
		NamespaceKey: ns,
		OwnerID:      viewer.UserID,
		ParentPath:   parentPath,
		Filename:     filename,
		IsDirectory:  false,
		IsPublic:     isPublic,
		Ordinal:      ord,
		Content:      content,
		ContentType:  defaultContentType,
		Size:         int64(len(content)),
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	if err := s.repo.Create(ctx, node); err != nil {
		return nil, err
	}

	s.logger.Debug("node created",
		"id", node.ID,
		"path", node.FullPath(),
		"ordinal", node.Ordinal,
	)
	return node, nil
}

// Delete removes a single node. Directories must be empty; recursive removal
// is the engine's job.
func (s *Store) Delete(ctx context.Context, ns string, viewer models.Viewer, path string) error {
	node, err := s.Stat(ctx, ns, viewer, path)
	if err != nil {
		return err
	}
	if node.ID == "" {
		return &domain.ValidationError{Message: "cannot delete the namespace root"}
	}
	if !viewer.CanMutate(node) {
		return &domain.ForbiddenError{Message: fmt.Sprintf("not the owner of %q", node.FullPath())}
	}
	if node.IsDirectory {
		count, err := s.repo.CountChildren(ctx, ns, node.FullPath())
		if err != nil {
			return err
		}
		if count > 0 {
			return &domain.ValidationError{
				Message: fmt.Sprintf("directory %q is not empty", node.FullPath()),
			}
		}
	}
	return s.repo.Delete(ctx, node.ID)
}
