package vfs

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	services "arbor/internal/domain/services/vfs"
)

// Paste relocates a batch of items into a target directory at an insertion
// point. Items are processed in their current ordinal order so a
// multi-select cut/paste preserves the selection's relative order no matter
// how the references were supplied. A single item's failure is recorded and
// does not abort the batch.
func (s *namespaceService) Paste(ctx context.Context, viewer models.Viewer, ns string, req *services.PasteRequest) (*models.BatchResult, error) {
	target := models.NormalizePath(req.TargetPath)
	result := &models.BatchResult{Total: len(req.SourcePaths)}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		tgt, err := s.store.Stat(ctx, ns, viewer, target)
		if err != nil {
			return err
		}
		if !tgt.IsDirectory {
			return &domain.ValidationError{Message: fmt.Sprintf("target %q is not a directory", target)}
		}

		// Resolve references; unresolvable ones fail individually.
		items := make([]*models.Node, 0, len(req.SourcePaths))
		sameFolder := true
		for _, ref := range req.SourcePaths {
			parent, name := models.SplitPath(ref)
			node, err := s.repo.GetByName(ctx, ns, viewer, parent, name)
			if err != nil {
				if isItemError(err) {
					result.Errors = append(result.Errors, models.ItemError{Name: ref, Error: err.Error()})
					continue
				}
				return err
			}
			if !viewer.CanMutate(node) {
				result.Errors = append(result.Errors, models.ItemError{Name: ref, Error: "not the owner"})
				continue
			}
			if node.ParentPath != target {
				sameFolder = false
			}
			items = append(items, node)
		}
		if len(items) == 0 {
			return nil
		}

		// Current ordinal order defines the pasted relative order.
		sort.Slice(items, func(i, j int) bool { return items[i].Ordinal < items[j].Ordinal })

		insertOrdinal := int32(0)
		if req.InsertOrdinal != -1 {
			insertOrdinal = req.InsertOrdinal + 1
		}

		if sameFolder {
			if err := s.reorderWithin(ctx, ns, viewer, target, items, insertOrdinal); err != nil {
				return err
			}
			result.Completed += len(items)
			return nil
		}

		return s.moveAcross(ctx, ns, viewer, target, items, insertOrdinal, result)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("paste completed",
		"namespace", ns,
		"target", target,
		"pasted", result.Completed,
		"total", result.Total,
		"failed", len(result.Errors),
	)
	return result, nil
}

// reorderWithin recomputes a dense ordinal assignment for all direct
// children of the directory: unmoved children originally before the
// insertion point keep their relative order first, then the moved items,
// then the rest. Applied in two phases - staging placeholders, then final
// values - so overlapping old and new assignments never trip the
// per-directory uniqueness constraint mid-transaction.
func (s *namespaceService) reorderWithin(ctx context.Context, ns string, viewer models.Viewer, dir string, moved []*models.Node, insertOrdinal int32) error {
	children, err := s.repo.ListChildren(ctx, ns, viewer, dir, false)
	if err != nil {
		return err
	}

	movedSet := make(map[string]bool, len(moved))
	for _, m := range moved {
		movedSet[m.ID] = true
	}

	final := make([]string, 0, len(children))
	for i := range children {
		if !movedSet[children[i].ID] && children[i].Ordinal < insertOrdinal {
			final = append(final, children[i].ID)
		}
	}
	for _, m := range moved {
		final = append(final, m.ID)
	}
	for i := range children {
		if !movedSet[children[i].ID] && children[i].Ordinal >= insertOrdinal {
			final = append(final, children[i].ID)
		}
	}

	current := make(map[string]int32, len(children))
	for i := range children {
		current[children[i].ID] = children[i].Ordinal
	}

	// Phase one: park every node whose ordinal changes at a distinct
	// placeholder below the placeable range.
	var changed []int
	for pos, id := range final {
		if current[id] != int32(pos) {
			changed = append(changed, pos)
		}
	}
	for i, pos := range changed {
		if err := s.repo.SetOrdinal(ctx, final[pos], models.PlaceholderOrdinal(i)); err != nil {
			return err
		}
	}

	// Phase two: assign the dense final values.
	for _, pos := range changed {
		if err := s.repo.SetOrdinal(ctx, final[pos], int32(pos)); err != nil {
			return err
		}
	}
	return nil
}

// moveAcross reserves a gap in the target directory, then reparents each
// item into it in sorted order. Name collisions and vanished sources are
// per-item errors; the reserved slot of a failed item simply stays empty
// (ordinals are gap-tolerant).
func (s *namespaceService) moveAcross(ctx context.Context, ns string, viewer models.Viewer, target string, items []*models.Node, insertOrdinal int32, result *models.BatchResult) error {
	if _, err := s.engine.ShiftOrdinalsDown(ctx, ns, target, insertOrdinal, int32(len(items))); err != nil {
		return err
	}

	for i, item := range items {
		existing, err := s.repo.GetByName(ctx, ns, viewer, target, item.Filename)
		if err == nil && existing.ID != item.ID {
			result.Errors = append(result.Errors, models.ItemError{
				Name:  item.FullPath(),
				Error: fmt.Sprintf("%q already exists in target", item.Filename),
			})
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		node, _, err := s.engine.Rename(ctx, ns, viewer, item.FullPath(), models.JoinPath(target, item.Filename))
		if err != nil {
			if isItemError(err) {
				result.Errors = append(result.Errors, models.ItemError{Name: item.FullPath(), Error: err.Error()})
				continue
			}
			return err
		}

		// Placement covers both the reparented and the same-parent case.
		if err := s.engine.SetOrdinal(ctx, node.ID, insertOrdinal+int32(i)); err != nil {
			return err
		}
		result.Completed++
	}
	return nil
}
