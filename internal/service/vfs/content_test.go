package vfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbor/internal/domain"
	services "arbor/internal/domain/services/vfs"
)

func TestSaveCreatesAndOverwrites(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedDir(t, repo, "docs", 1)

	result, err := svc.Save(context.Background(), owner, testNS, &services.SaveRequest{
		Path:    "docs/notes.md",
		Content: "first draft",
	})
	require.NoError(t, err)
	assert.Equal(t, "docs/notes.md", result.Path)
	assert.Equal(t, 1, result.Parts)

	created := repo.byPath("docs/notes.md")
	require.NotNil(t, created)
	assert.Equal(t, int32(1), created.Ordinal)

	_, err = svc.Save(context.Background(), owner, testNS, &services.SaveRequest{
		Path:    "docs/notes.md",
		Content: "second draft",
	})
	require.NoError(t, err)

	after := repo.byPath("docs/notes.md")
	assert.Equal(t, created.ID, after.ID, "overwrite preserves the identifier")
	assert.Equal(t, created.Ordinal, after.Ordinal, "overwrite preserves the ordinal")
	assert.Equal(t, "second draft", after.Content)
}

func TestSaveMissingParent(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.Save(context.Background(), owner, testNS, &services.SaveRequest{
		Path:    "nowhere/notes.md",
		Content: "x",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveSplitFansOutSegments(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedFile(t, repo, "intro.md", 1, "")
	seedFile(t, repo, "notes.md", 2, "old")
	seedFile(t, repo, "outro.md", 3, "")

	result, err := svc.Save(context.Background(), owner, testNS, &services.SaveRequest{
		Path:    "notes.md",
		Content: "alpha\n~\nbeta\n~\ngamma",
		Split:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Parts)

	assert.Equal(t,
		[]string{"intro.md", "notes.md", "notes_1.md", "notes_2.md", "outro.md"},
		childNames(t, repo, ""))
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, childOrdinals(t, repo, ""))

	assert.Equal(t, "alpha", repo.byPath("notes.md").Content)
	assert.Equal(t, "beta", repo.byPath("notes_1.md").Content)
	assert.Equal(t, "gamma", repo.byPath("notes_2.md").Content)
}

func TestSaveSplitOnNewFile(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	result, err := svc.Save(context.Background(), owner, testNS, &services.SaveRequest{
		Path:    "fresh",
		Content: "one\n~\ntwo",
		Split:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Parts)
	require.NotNil(t, repo.byPath("fresh"))
	require.NotNil(t, repo.byPath("fresh_1"))
	assert.Equal(t, repo.byPath("fresh").Ordinal+1, repo.byPath("fresh_1").Ordinal)
}

func TestSaveSplitWithoutDelimiterIsOrdinary(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	result, err := svc.Save(context.Background(), owner, testNS, &services.SaveRequest{
		Path:    "single.md",
		Content: "no delimiter here",
		Split:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Parts)
	assert.Nil(t, repo.byPath("single_1.md"))
}

func TestSaveWithRenameFirst(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedDir(t, repo, "dst", 1)
	orig := seedFile(t, repo, "draft.md", 2, "old")

	result, err := svc.Save(context.Background(), owner, testNS, &services.SaveRequest{
		Path:     "draft.md",
		RenameTo: "dst/final.md",
		Content:  "new body",
	})
	require.NoError(t, err)
	assert.Equal(t, "dst/final.md", result.Path)

	moved := repo.byPath("dst/final.md")
	require.NotNil(t, moved)
	assert.Equal(t, orig.ID, moved.ID)
	assert.Equal(t, "new body", moved.Content)
	assert.Equal(t, int32(1), moved.Ordinal, "placed at the destination end before saving")
	assert.Nil(t, repo.byPath("draft.md"))
}

func TestJoinConcatenatesInOrdinalOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	// Seeded out of request order on purpose; ordinals decide.
	c := seedFile(t, repo, "c.md", 3, "third")
	a := seedFile(t, repo, "a.md", 1, "first")
	seedFile(t, repo, "b.md", 2, "second")

	result, err := svc.Join(context.Background(), owner, testNS, &services.JoinRequest{
		ParentPath: "",
		Names:      []string{"c.md", "a.md", "b.md"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a.md", result.JoinedFile)
	assert.ElementsMatch(t, []string{"b.md", "c.md"}, result.DeletedFiles)

	joined := repo.byPath("a.md")
	require.NotNil(t, joined)
	assert.Equal(t, a.ID, joined.ID, "the lowest-ordinal file absorbs the rest")
	assert.Equal(t, int32(1), joined.Ordinal)
	assert.Equal(t, "first\n\nsecond\n\nthird", joined.Content)

	assert.Nil(t, repo.byPath("b.md"))
	assert.Nil(t, repo.nodes[c.ID])
}

func TestJoinAbortsWhenAnyInputIsUnreadable(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedFile(t, repo, "a.md", 1, "first")

	_, err := svc.Join(context.Background(), owner, testNS, &services.JoinRequest{
		ParentPath: "",
		Names:      []string{"a.md", "ghost.md"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotNil(t, repo.byPath("a.md"), "a failed join must leave all inputs untouched")

	_, err = svc.Join(context.Background(), owner, testNS, &services.JoinRequest{
		ParentPath: "",
		Names:      []string{"a.md"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestJoinRejectsDuplicateNames(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	a := seedFile(t, repo, "a.md", 1, "body")
	seedFile(t, repo, "b.md", 2, "tail")

	_, err := svc.Join(context.Background(), owner, testNS, &services.JoinRequest{
		ParentPath: "",
		Names:      []string{"a.md", "a.md"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Naming a file twice must never delete it out from under itself.
	survivor := repo.byPath("a.md")
	require.NotNil(t, survivor)
	assert.Equal(t, a.ID, survivor.ID)
	assert.Equal(t, "body", survivor.Content)

	_, err = svc.Join(context.Background(), owner, testNS, &services.JoinRequest{
		ParentPath: "",
		Names:      []string{"a.md", "b.md", "a.md"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotNil(t, repo.byPath("a.md"))
	assert.NotNil(t, repo.byPath("b.md"))
}

func TestJoinRejectsDirectories(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedFile(t, repo, "a.md", 1, "")
	seedDir(t, repo, "sub", 2)

	_, err := svc.Join(context.Background(), owner, testNS, &services.JoinRequest{
		ParentPath: "",
		Names:      []string{"a.md", "sub"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuildFolderConvertsFileInPlace(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedFile(t, repo, "before.md", 1, "")
	src := seedFile(t, repo, "plan.md", 2, "body")
	seedFile(t, repo, "after.md", 3, "")

	name, err := svc.BuildFolder(context.Background(), owner, testNS, &services.BuildFolderRequest{
		FilePath:   "plan.md",
		FolderName: "plan",
		Remaining:  "leftover text",
	})
	require.NoError(t, err)
	assert.Equal(t, "plan", name)

	dir := repo.byPath("plan")
	require.NotNil(t, dir)
	assert.True(t, dir.IsDirectory)
	assert.Equal(t, src.Ordinal, dir.Ordinal, "the folder takes the file's tree position")
	assert.Nil(t, repo.nodes[src.ID], "the source file is gone")

	leaf := repo.byPath("plan/plan.md")
	require.NotNil(t, leaf)
	assert.Equal(t, "leftover text", leaf.Content)
	assert.Equal(t, int32(1), leaf.Ordinal)
}

func TestBuildFolderWithoutRemainingContent(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedFile(t, repo, "empty.md", 1, "")

	_, err := svc.BuildFolder(context.Background(), owner, testNS, &services.BuildFolderRequest{
		FilePath:   "empty.md",
		FolderName: "empty-dir",
		Remaining:  "   \n ",
	})
	require.NoError(t, err)

	count, err := repo.CountChildren(context.Background(), testNS, "empty-dir")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "whitespace-only remaining content creates no leaf")
}

func TestBuildFolderConflictsAndValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	seedFile(t, repo, "plan.md", 1, "")
	seedDir(t, repo, "existing", 2)

	_, err := svc.BuildFolder(context.Background(), owner, testNS, &services.BuildFolderRequest{
		FilePath:   "plan.md",
		FolderName: "existing",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.BuildFolder(context.Background(), owner, testNS, &services.BuildFolderRequest{
		FilePath:   "existing",
		FolderName: "other",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.BuildFolder(context.Background(), owner, testNS, &services.BuildFolderRequest{
		FilePath:   "plan.md",
		FolderName: "bad/name",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}
