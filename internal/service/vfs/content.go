package vfs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/vfs"
	services "arbor/internal/domain/services/vfs"
)

// SplitDelimiter is the literal marker that fans one saved file out into
// ordinal-sequenced siblings.
const SplitDelimiter = "\n~\n"

// joinSeparator sits between concatenated file contents on join.
const joinSeparator = "\n\n"

// Save writes a file, optionally renaming it first and optionally splitting
// it on the delimiter into ordinal-sequenced sibling files. With fewer than
// two segments a split-flagged save behaves as an ordinary save.
func (s *namespaceService) Save(ctx context.Context, viewer models.Viewer, ns string, req *services.SaveRequest) (*models.SaveResult, error) {
	var result *models.SaveResult
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		path := models.NormalizePath(req.Path)

		if req.RenameTo != "" && models.NormalizePath(req.RenameTo) != path {
			node, reparented, err := s.engine.Rename(ctx, ns, viewer, path, req.RenameTo)
			if err != nil {
				return err
			}
			if reparented {
				next, err := s.engine.NextOrdinal(ctx, ns, node.ParentPath)
				if err != nil {
					return err
				}
				if err := s.engine.SetOrdinal(ctx, node.ID, next); err != nil {
					return err
				}
			}
			path = node.FullPath()
		}

		parent, name := models.SplitPath(path)
		if name == "" {
			return &domain.ValidationError{Message: "cannot save the namespace root"}
		}

		segments := strings.Split(req.Content, SplitDelimiter)
		if req.Split && len(segments) >= 2 {
			parts, err := s.splitSave(ctx, ns, viewer, parent, name, segments, req.Public)
			if err != nil {
				return err
			}
			result = &models.SaveResult{Path: models.JoinPath(parent, name), Parts: parts}
			return nil
		}

		if _, err := s.store.Write(ctx, ns, viewer, parent, name, req.Content, req.Public, nil); err != nil {
			return err
		}
		result = &models.SaveResult{Path: models.JoinPath(parent, name), Parts: 1}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file saved", "namespace", ns, "path", result.Path, "parts", result.Parts)
	return result, nil
}

// splitSave writes segment 0 back at the original path and ordinal, then
// materializes each remaining segment as a new sibling file directly after
// it. The gap is opened first so no two children ever share an ordinal.
func (s *namespaceService) splitSave(ctx context.Context, ns string, viewer models.Viewer, parent, name string, segments []string, public bool) (int, error) {
	originalOrdinal := int32(0)
	existing, err := s.repo.GetByName(ctx, ns, viewer, parent, name)
	switch {
	case err == nil:
		if existing.IsDirectory {
			return 0, &domain.ValidationError{Message: fmt.Sprintf("%q is a directory", existing.FullPath())}
		}
		originalOrdinal = existing.Ordinal
	case errors.Is(err, domain.ErrNotFound):
		existing = nil
	default:
		return 0, err
	}

	extra := int32(len(segments) - 1)
	if _, err := s.engine.ShiftOrdinalsDown(ctx, ns, parent, originalOrdinal+1, extra); err != nil {
		return 0, err
	}

	head := strings.TrimSpace(segments[0])
	if existing == nil {
		ord := originalOrdinal
		if _, err := s.store.Write(ctx, ns, viewer, parent, name, head, public, &ord); err != nil {
			return 0, err
		}
	} else {
		// Overwrite in place: identifier and ordinal are preserved.
		if _, err := s.store.Write(ctx, ns, viewer, parent, name, head, public, nil); err != nil {
			return 0, err
		}
	}

	for i := 1; i < len(segments); i++ {
		segName := splitSegmentName(name, i)
		ord := originalOrdinal + int32(i)
		if _, err := s.store.Write(ctx, ns, viewer, parent, segName, strings.TrimSpace(segments[i]), public, &ord); err != nil {
			return 0, err
		}
	}
	return len(segments), nil
}

// Join concatenates at least two sibling files, in ordinal order, into the
// lowest-ordinal one (identifier and ordinal preserved) and deletes the
// rest. Any unreadable input aborts the whole operation.
func (s *namespaceService) Join(ctx context.Context, viewer models.Viewer, ns string, req *services.JoinRequest) (*models.JoinResult, error) {
	if len(req.Names) < 2 {
		return nil, &domain.ValidationError{Message: "join requires at least two files"}
	}
	seen := make(map[string]struct{}, len(req.Names))
	for _, name := range req.Names {
		if _, dup := seen[name]; dup {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("duplicate join input %q", name)}
		}
		seen[name] = struct{}{}
	}

	var result *models.JoinResult
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		parent := models.NormalizePath(req.ParentPath)

		nodes := make([]*models.Node, 0, len(req.Names))
		for _, name := range req.Names {
			node, err := s.repo.GetByName(ctx, ns, viewer, parent, name)
			if err != nil {
				return fmt.Errorf("read %q: %w", name, err)
			}
			if node.IsDirectory {
				return &domain.ValidationError{Message: fmt.Sprintf("%q is a directory", node.FullPath())}
			}
			if !viewer.CanMutate(node) {
				return &domain.ForbiddenError{Message: fmt.Sprintf("not the owner of %q", node.FullPath())}
			}
			nodes = append(nodes, node)
		}

		sort.Slice(nodes, func(i, j int) bool { return nodes[i].Ordinal < nodes[j].Ordinal })

		contents := make([]string, len(nodes))
		for i, node := range nodes {
			contents[i] = node.Content
		}
		joined := strings.Join(contents, joinSeparator)

		target := nodes[0]
		if err := s.repo.UpdateContent(ctx, target.ID, joined, target.ContentType, int64(len(joined))); err != nil {
			return err
		}

		deleted := make([]string, 0, len(nodes)-1)
		for _, node := range nodes[1:] {
			if err := s.repo.Delete(ctx, node.ID); err != nil {
				return err
			}
			deleted = append(deleted, node.Filename)
		}

		result = &models.JoinResult{JoinedFile: target.Filename, DeletedFiles: deleted}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("files joined",
		"namespace", ns,
		"target", result.JoinedFile,
		"deleted", len(result.DeletedFiles),
	)
	return result, nil
}

// BuildFolder converts a file into a directory of the requested name at the
// same tree position. Non-empty remaining content becomes a leaf file inside
// the new directory at ordinal 1.
func (s *namespaceService) BuildFolder(ctx context.Context, viewer models.Viewer, ns string, req *services.BuildFolderRequest) (string, error) {
	if err := ValidateName(req.FolderName); err != nil {
		return "", err
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		parent, name := models.SplitPath(req.FilePath)
		src, err := s.repo.GetByName(ctx, ns, viewer, parent, name)
		if err != nil {
			return err
		}
		if src.IsDirectory {
			return &domain.ValidationError{Message: fmt.Sprintf("%q is already a directory", src.FullPath())}
		}
		if !viewer.CanMutate(src) {
			return &domain.ForbiddenError{Message: fmt.Sprintf("not the owner of %q", src.FullPath())}
		}

		if sibling, err := s.repo.GetByName(ctx, ns, viewer, parent, req.FolderName); err == nil {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("%q already exists", sibling.FullPath()),
				ResourceType: "node",
				ResourceID:   sibling.ID,
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		// The folder inherits the file's ordinal so the tree position holds.
		ordinal := src.Ordinal
		if err := s.repo.Delete(ctx, src.ID); err != nil {
			return err
		}

		now := time.Now()
		dir := &models.Node{
			ID:           uuid.NewString(),
			NamespaceKey: ns,
			OwnerID:      viewer.UserID,
			ParentPath:   parent,
			Filename:     req.FolderName,
			IsDirectory:  true,
			IsPublic:     src.IsPublic,
			Ordinal:      ordinal,
			CreatedAt:    now,
			ModifiedAt:   now,
		}
		if err := s.repo.Create(ctx, dir); err != nil {
			return err
		}

		if strings.TrimSpace(req.Remaining) != "" {
			ord := int32(1)
			if _, err := s.store.Write(ctx, ns, viewer, dir.FullPath(), src.Filename, req.Remaining, src.IsPublic, &ord); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("file converted to folder", "namespace", ns, "file", req.FilePath, "folder", req.FolderName)
	return req.FolderName, nil
}
