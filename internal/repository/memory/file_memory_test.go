package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pdfvault/internal/model"
	"pdfvault/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, owner, name string, size int64, created time.Time) *model.FileRecord {
	return &model.FileRecord{
		ID:          id,
		OwnerID:     owner,
		Name:        name,
		Size:        size,
		StorageRef:  id + "-" + name,
		ContentType: "application/pdf",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestFileMemory_InsertWithinQuota(t *testing.T) {
	ctx := context.Background()
	repo := NewFileMemory()
	now := time.Now()

	_, err := repo.InsertWithinQuota(ctx, record("a", "u1", "a.pdf", 9_999_999, now), 10_000_000)
	require.NoError(t, err)

	_, err = repo.InsertWithinQuota(ctx, record("b", "u1", "b.pdf", 2, now), 10_000_000)
	var qe *model.QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, int64(9_999_999), qe.Current)
	assert.Equal(t, int64(2), qe.Attempted)

	_, err = repo.InsertWithinQuota(ctx, record("c", "u1", "c.pdf", 1, now), 10_000_000)
	require.NoError(t, err)

	total, err := repo.SumSizeByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), total)

	// other users have their own budget
	_, err = repo.InsertWithinQuota(ctx, record("d", "u2", "d.pdf", 5, now), 10_000_000)
	assert.NoError(t, err)
}

func TestFileMemory_InsertWithinQuotaConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewFileMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.InsertWithinQuota(ctx, record(fmt.Sprintf("id-%d", i), "u1", "f.pdf", 7, time.Now()), 100)
		}(i)
	}
	wg.Wait()

	total, err := repo.SumSizeByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(98), total)
}

func TestFileMemory_FindByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewFileMemory()
	base := time.Now()

	for i, name := range []string{"Tax Return.pdf", "invoice.pdf", "TAXES-2023.pdf"} {
		_, err := repo.InsertWithinQuota(ctx, record(fmt.Sprintf("id-%d", i), "u1", name, 1, base.Add(time.Duration(i)*time.Second)), 100)
		require.NoError(t, err)
	}
	_, err := repo.InsertWithinQuota(ctx, record("other", "u2", "tax.pdf", 1, base), 100)
	require.NoError(t, err)

	all, err := repo.FindByOwner(ctx, "u1", repository.FileFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "id-2", all[0].ID, "newest first")

	taxed, err := repo.FindByOwner(ctx, "u1", repository.FileFilter{NameContains: "tax"})
	require.NoError(t, err)
	assert.Len(t, taxed, 2)
}

func TestFileMemory_FindOneOwnership(t *testing.T) {
	ctx := context.Background()
	repo := NewFileMemory()
	_, err := repo.InsertWithinQuota(ctx, record("a", "u1", "a.pdf", 1, time.Now()), 100)
	require.NoError(t, err)

	rec, err := repo.FindOne(ctx, "a", "u1")
	require.NoError(t, err)
	assert.Equal(t, "a", rec.ID)

	_, err = repo.FindOne(ctx, "a", "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.FindOne(ctx, "missing", "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFileMemory_RenameKeepsStorageRef(t *testing.T) {
	ctx := context.Background()
	repo := NewFileMemory()
	_, err := repo.InsertWithinQuota(ctx, record("a", "u1", "a.pdf", 1, time.Now()), 100)
	require.NoError(t, err)

	at := time.Now().Add(time.Hour)
	rec, err := repo.Rename(ctx, "a", "u1", "renamed.pdf", at)
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", rec.Name)
	assert.Equal(t, "a-a.pdf", rec.StorageRef)
	assert.True(t, rec.UpdatedAt.Equal(at))

	_, err = repo.Rename(ctx, "a", "u2", "stolen.pdf", at)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFileMemory_AddTagsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewFileMemory()
	_, err := repo.InsertWithinQuota(ctx, record("a", "u1", "a.pdf", 1, time.Now()), 100)
	require.NoError(t, err)

	require.NoError(t, repo.AddTags(ctx, "a", []string{"Legal", "Financial"}))
	require.NoError(t, repo.AddTags(ctx, "a", []string{"Legal", "a,b", " "}))

	rec, err := repo.FindOne(ctx, "a", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Financial", "Legal"}, rec.Tags)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"))
	assert.NoError(t, repo.AddTags(ctx, "a", []string{"Other"}))

	_, err = repo.FindOne(ctx, "a", "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
