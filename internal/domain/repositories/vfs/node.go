package vfs

import (
	"context"

	models "arbor/internal/domain/models/vfs"
)

// NodeRepository defines the storage primitives the path/ordinal engine is
// built on. Read operations take a Viewer and apply the visibility rule
// (owner / public / admin) inside the store. Mutations are id-addressed;
// ownership checks happen in the service layer before any write.
//
// Implementations enforce both sibling-uniqueness constraints -
// (namespace, parent_path, filename) and (namespace, parent_path, ordinal) -
// per statement, which is why callers stage multi-step reorders through
// sentinel/placeholder ordinals.
type NodeRepository interface {
	// GetByName retrieves one node by its parent path and leaf name.
	GetByName(ctx context.Context, ns string, viewer models.Viewer, parentPath, filename string) (*models.Node, error)

	// GetByID retrieves one node by its stable identifier.
	GetByID(ctx context.Context, viewer models.Viewer, id string) (*models.Node, error)

	// ListChildren lists direct children of a directory ordered by ordinal
	// ascending. Content is omitted unless includeContent is set.
	ListChildren(ctx context.Context, ns string, viewer models.Viewer, parentPath string, includeContent bool) ([]models.Node, error)

	// ListAll lists every visible node of the namespace (metadata only),
	// ordered by parent path then ordinal. Used to build the tree.
	ListAll(ctx context.Context, ns string, viewer models.Viewer) ([]models.Node, error)

	// CountChildren counts direct children regardless of visibility.
	CountChildren(ctx context.Context, ns, parentPath string) (int, error)

	// Create inserts a new node. Returns ConflictError when a sibling with
	// the same name or ordinal exists.
	Create(ctx context.Context, node *models.Node) error

	// UpdateContent rewrites a node's payload in place, preserving its
	// identifier, location and ordinal.
	UpdateContent(ctx context.Context, id, content, contentType string, size int64) error

	// UpdateLocation rewrites a node's parent path, leaf name and ordinal.
	UpdateLocation(ctx context.Context, id, parentPath, filename string, ordinal int32) error

	// SetOrdinal updates a single node's ordinal.
	SetOrdinal(ctx context.Context, id string, ordinal int32) error

	// NextOrdinal returns max(ordinal)+1 over direct children (1 if none).
	NextOrdinal(ctx context.Context, ns, parentPath string) (int32, error)

	// ShiftOrdinals adds count to the ordinal of every direct child with
	// ordinal >= from, opening a contiguous gap. Returns affected node ids.
	ShiftOrdinals(ctx context.Context, ns, parentPath string, from, count int32) ([]string, error)

	// ReparentSubtree bulk-rewrites the parent_path prefix of every node at
	// or under oldPrefix. Returns the number of rewritten rows.
	ReparentSubtree(ctx context.Context, ns, oldPrefix, newPrefix string) (int64, error)

	// SetPublic flips the visibility flag on one node.
	SetPublic(ctx context.Context, id string, public bool) error

	// SetPublicSubtree flips the visibility flag on every node strictly
	// under fullPath. Returns the number of affected rows.
	SetPublicSubtree(ctx context.Context, ns, fullPath string, public bool) (int64, error)

	// Delete removes a single node.
	Delete(ctx context.Context, id string) error

	// DeleteSubtree removes every node strictly under fullPath.
	DeleteSubtree(ctx context.Context, ns, fullPath string) (int64, error)

	// Search returns file nodes under the subtree whose content matches the
	// options, visibility-filtered and ordered per options.Order.
	Search(ctx context.Context, ns string, viewer models.Viewer, opts *models.SearchOptions) ([]models.Node, error)
}
