package vfs

import (
	"math"
	"time"
)

// Ordinal bounds. SentinelOrdinal is reserved as a transient placeholder while a
// node is mid-move between directories; it is never a legal resting ordinal.
// Two-phase reorder placeholders are allocated from the band directly above the
// sentinel, below MinOrdinal, so they can never collide with a live sibling.
const (
	SentinelOrdinal int32 = math.MinInt32
	MinOrdinal      int32 = math.MinInt32 + 1<<20
	MaxOrdinal      int32 = math.MaxInt32
)

// PlaceholderOrdinal returns the i-th staging ordinal used by two-phase
// reassignment. All placeholders are below MinOrdinal and above SentinelOrdinal.
func PlaceholderOrdinal(i int) int32 {
	return SentinelOrdinal + 1 + int32(i)
}

// Node is one directory or file record in the namespace.
// The root directory is virtual and has no record.
type Node struct {
	ID           string    `json:"id" db:"id"`
	NamespaceKey string    `json:"namespace_key" db:"namespace_key"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	ParentPath   string    `json:"parent_path" db:"parent_path"` // "" = namespace root
	Filename     string    `json:"filename" db:"filename"`
	IsDirectory  bool      `json:"is_directory" db:"is_directory"`
	IsPublic     bool      `json:"is_public" db:"is_public"`
	Ordinal      int32     `json:"ordinal" db:"ordinal"`
	Content      string    `json:"content,omitempty" db:"content"`
	ContentType  string    `json:"content_type,omitempty" db:"content_type"`
	Size         int64     `json:"size" db:"size"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	ModifiedAt   time.Time `json:"modified_at" db:"modified_at"`
}

// FullPath returns the node's materialized path including its own name.
func (n *Node) FullPath() string {
	return JoinPath(n.ParentPath, n.Filename)
}

// Viewer identifies who is reading the namespace. A node is visible when the
// viewer owns it, the node is public, or the viewer is an administrator.
type Viewer struct {
	UserID string
	Admin  bool
}

// CanSee reports whether the viewer may read the node.
func (v Viewer) CanSee(n *Node) bool {
	return v.Admin || n.IsPublic || n.OwnerID == v.UserID
}

// CanMutate reports whether the viewer may modify the node. Mutation is
// restricted to the owning identity and administrators.
func (v Viewer) CanMutate(n *Node) bool {
	return v.Admin || n.OwnerID == v.UserID
}
