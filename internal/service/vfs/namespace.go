package vfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	"arbor/internal/domain/repositories"
	vfsRepo "arbor/internal/domain/repositories/vfs"
	services "arbor/internal/domain/services/vfs"
)

// namespaceService implements the Namespace interface. Every mutating method
// runs inside exactly one transaction; errors always propagate so the
// transaction rolls back instead of leaving a half-applied reorder behind.
type namespaceService struct {
	repo      vfsRepo.NodeRepository
	store     *Store
	engine    *Engine
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewNamespaceService creates the orchestrator-facing namespace service
func NewNamespaceService(
	repo vfsRepo.NodeRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.Namespace {
	return &namespaceService{
		repo:      repo,
		store:     NewStore(repo, logger),
		engine:    NewEngine(repo, logger),
		txManager: txManager,
		logger:    logger,
	}
}

// Mkdir creates every missing directory along path.
func (s *namespaceService) Mkdir(ctx context.Context, viewer models.Viewer, ns, path string) error {
	if models.NormalizePath(path) == "" {
		return &domain.ValidationError{Message: "the namespace root always exists"}
	}
	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		_, err := s.engine.EnsurePath(ctx, ns, viewer, path)
		return err
	})
}

// Rename moves or renames one node. A reparented node is appended at the end
// of its new directory.
func (s *namespaceService) Rename(ctx context.Context, viewer models.Viewer, ns string, req *services.RenameRequest) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		node, reparented, err := s.engine.Rename(ctx, ns, viewer, req.OldPath, req.NewPath)
		if err != nil {
			return err
		}
		if reparented {
			// The node is parked at the sentinel; place it at the end of
			// the destination directory before committing.
			next, err := s.engine.NextOrdinal(ctx, ns, node.ParentPath)
			if err != nil {
				return err
			}
			if err := s.engine.SetOrdinal(ctx, node.ID, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("node renamed", "from", req.OldPath, "to", req.NewPath, "namespace", ns)
	return nil
}

// Delete removes the named children of a parent directory, recursively for
// directories. Item failures are collected; infrastructure errors abort.
func (s *namespaceService) Delete(ctx context.Context, viewer models.Viewer, ns string, req *services.DeleteRequest) (*models.BatchResult, error) {
	parent := models.NormalizePath(req.ParentPath)
	if ok, err := s.store.Exists(ctx, ns, viewer, parent); err != nil {
		return nil, err
	} else if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("parent %q not found", parent)}
	}

	result := &models.BatchResult{Total: len(req.Names)}
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		for _, name := range req.Names {
			path := models.JoinPath(parent, name)
			if err := s.engine.RemoveRecursive(ctx, ns, viewer, path); err != nil {
				if isItemError(err) {
					result.Errors = append(result.Errors, models.ItemError{Name: name, Error: err.Error()})
					continue
				}
				return err
			}
			result.Completed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch delete",
		"namespace", ns,
		"parent", parent,
		"deleted", result.Completed,
		"failed", len(result.Errors),
	)
	return result, nil
}

// Move swaps a node's ordinal with its adjacent sibling in the given
// direction. At a boundary (already first or last) the move is rejected.
func (s *namespaceService) Move(ctx context.Context, viewer models.Viewer, ns string, req *services.MoveRequest) (*models.SwapResult, error) {
	if req.Direction != "up" && req.Direction != "down" {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown direction %q", req.Direction)}
	}

	var result *models.SwapResult
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		parent := models.NormalizePath(req.ParentPath)
		siblings, err := s.store.ListChildren(ctx, ns, viewer, parent, false)
		if err != nil {
			return err
		}

		idx := -1
		for i := range siblings {
			if siblings[i].Filename == req.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &domain.NotFoundError{Message: fmt.Sprintf("node %q not found in %q", req.Name, parent)}
		}

		other := idx - 1
		if req.Direction == "down" {
			other = idx + 1
		}
		if other < 0 || other >= len(siblings) {
			return &domain.ValidationError{
				Message: fmt.Sprintf("%q is already at the %s boundary", req.Name, req.Direction),
			}
		}

		if err := s.engine.SwapOrdinals(ctx, viewer, siblings[idx].ID, siblings[other].ID); err != nil {
			return err
		}
		result = &models.SwapResult{Moved: siblings[idx].Filename, Other: siblings[other].Filename}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetVisibility flips the public flag, optionally across the whole subtree.
func (s *namespaceService) SetVisibility(ctx context.Context, viewer models.Viewer, ns string, req *services.VisibilityRequest) error {
	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.engine.SetPublic(ctx, ns, viewer, req.Path, req.Public, req.Recursive)
	})
}

// isItemError reports whether an error is a per-item condition that should
// be recorded without aborting the surrounding batch. Infrastructure
// failures keep aborting the whole transaction.
func isItemError(err error) bool {
	var httpErr domain.HTTPError
	return errors.As(err, &httpErr)
}
