package vfs

import "time"

// TreeNode is one entry of the nested namespace tree (metadata only, no
// content). Children are ordered by ordinal ascending.
type TreeNode struct {
	ID          string      `json:"id"`
	Filename    string      `json:"filename"`
	Path        string      `json:"path"`
	IsDirectory bool        `json:"is_directory"`
	IsPublic    bool        `json:"is_public"`
	Ordinal     int32       `json:"ordinal"`
	Size        int64       `json:"size"`
	ModifiedAt  time.Time   `json:"modified_at"`
	Children    []*TreeNode `json:"children,omitempty"`
}
