package vfs

import (
	"context"

	models "arbor/internal/domain/models/vfs"
)

// SaveRequest writes (and optionally splits or renames) a file.
type SaveRequest struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Split    bool   `json:"split"`
	RenameTo string `json:"rename_to,omitempty"` // optional new full path, applied before save
	Public   bool   `json:"public"`
}

// RenameRequest moves or renames one node.
type RenameRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// DeleteRequest removes the named children of a parent directory.
type DeleteRequest struct {
	ParentPath string   `json:"parent_path"`
	Names      []string `json:"names"`
}

// MoveRequest swaps a node with its adjacent sibling.
type MoveRequest struct {
	ParentPath string `json:"parent_path"`
	Name       string `json:"name"`
	Direction  string `json:"direction"` // "up" or "down"
}

// VisibilityRequest sets the public flag on a node, optionally recursively.
type VisibilityRequest struct {
	Path      string `json:"path"`
	Public    bool   `json:"public"`
	Recursive bool   `json:"recursive"`
}

// PasteRequest relocates a batch of items into a target directory.
type PasteRequest struct {
	SourcePaths   []string `json:"source_paths"`
	TargetPath    string   `json:"target_path"`
	InsertOrdinal int32    `json:"insert_ordinal"` // -1 = insert first
}

// JoinRequest concatenates >=2 sibling files into the lowest-ordinal one.
type JoinRequest struct {
	ParentPath string   `json:"parent_path"`
	Names      []string `json:"names"`
}

// BuildFolderRequest converts a file into a folder at the same tree position.
type BuildFolderRequest struct {
	FilePath   string `json:"file_path"`
	FolderName string `json:"folder_name"`
	Remaining  string `json:"remaining,omitempty"` // leftover content, stored inside the new folder
}

// SearchRequest queries file content under a subtree.
type SearchRequest struct {
	Query       string             `json:"query"`
	SubtreePath string             `json:"subtree_path"`
	Mode        models.SearchMode  `json:"mode"`
	Order       models.SearchOrder `json:"order"`
}

// Namespace is the orchestrator-facing surface of the virtual namespace.
// Every mutating method runs inside exactly one transaction.
type Namespace interface {
	Save(ctx context.Context, viewer models.Viewer, ns string, req *SaveRequest) (*models.SaveResult, error)
	Mkdir(ctx context.Context, viewer models.Viewer, ns, path string) error
	Rename(ctx context.Context, viewer models.Viewer, ns string, req *RenameRequest) error
	Delete(ctx context.Context, viewer models.Viewer, ns string, req *DeleteRequest) (*models.BatchResult, error)
	Move(ctx context.Context, viewer models.Viewer, ns string, req *MoveRequest) (*models.SwapResult, error)
	SetVisibility(ctx context.Context, viewer models.Viewer, ns string, req *VisibilityRequest) error
	Paste(ctx context.Context, viewer models.Viewer, ns string, req *PasteRequest) (*models.BatchResult, error)
	Join(ctx context.Context, viewer models.Viewer, ns string, req *JoinRequest) (*models.JoinResult, error)
	BuildFolder(ctx context.Context, viewer models.Viewer, ns string, req *BuildFolderRequest) (string, error)
	Search(ctx context.Context, viewer models.Viewer, ns string, req *SearchRequest) ([]models.SearchResult, error)
	GetTree(ctx context.Context, viewer models.Viewer, ns string) ([]*models.TreeNode, error)
	List(ctx context.Context, viewer models.Viewer, ns, path string) ([]models.Node, error)
	Stat(ctx context.Context, viewer models.Viewer, ns, path string) (*models.Node, error)
}
