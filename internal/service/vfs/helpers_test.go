package vfs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	models "arbor/internal/domain/models/vfs"
	services "arbor/internal/domain/services/vfs"
)

const (
	testNS    = "ws-test"
	testOwner = "user-1"
)

var owner = models.Viewer{UserID: testOwner}

func newTestService(repo *memoryRepo) services.Namespace {
	return NewNamespaceService(repo, memoryTxManager{}, testLogger())
}

func seed(t *testing.T, repo *memoryRepo, node *models.Node) *models.Node {
	t.Helper()
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if node.NamespaceKey == "" {
		node.NamespaceKey = testNS
	}
	if node.OwnerID == "" {
		node.OwnerID = testOwner
	}
	now := time.Now()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	if node.ModifiedAt.IsZero() {
		node.ModifiedAt = now
	}
	if err := repo.checkConstraints(node); err != nil {
		t.Fatalf("seed %q: %v", node.FullPath(), err)
	}
	c := *node
	repo.nodes[node.ID] = &c
	return node
}

func seedDir(t *testing.T, repo *memoryRepo, path string, ordinal int32) *models.Node {
	t.Helper()
	parent, name := models.SplitPath(path)
	return seed(t, repo, &models.Node{
		ParentPath:  parent,
		Filename:    name,
		IsDirectory: true,
		Ordinal:     ordinal,
	})
}

func seedFile(t *testing.T, repo *memoryRepo, path string, ordinal int32, content string) *models.Node {
	t.Helper()
	parent, name := models.SplitPath(path)
	return seed(t, repo, &models.Node{
		ParentPath: parent,
		Filename:   name,
		Ordinal:    ordinal,
		Content:    content,
		Size:       int64(len(content)),
	})
}

// childNames returns the filenames of a directory's children in ordinal order.
func childNames(t *testing.T, repo *memoryRepo, parentPath string) []string {
	t.Helper()
	children, err := repo.ListChildren(context.Background(), testNS, owner, parentPath, false)
	if err != nil {
		t.Fatalf("list %q: %v", parentPath, err)
	}
	names := make([]string, len(children))
	for i := range children {
		names[i] = children[i].Filename
	}
	return names
}

// childOrdinals returns the ordinals of a directory's children in ordinal order.
func childOrdinals(t *testing.T, repo *memoryRepo, parentPath string) []int32 {
	t.Helper()
	children, err := repo.ListChildren(context.Background(), testNS, owner, parentPath, false)
	if err != nil {
		t.Fatalf("list %q: %v", parentPath, err)
	}
	ordinals := make([]int32, len(children))
	for i := range children {
		ordinals[i] = children[i].Ordinal
	}
	return ordinals
}
