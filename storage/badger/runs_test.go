package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(threshold float64) *core.Run {
	return &core.Run{
		Threshold: threshold,
		Stats:     core.GroupStats{TotalDocuments: 2, TotalGroups: 1, DuplicatedGroups: 1, DuplicateRate: 1},
		Articles: []core.SynthesizedArticle{{
			Title:     "Merged",
			Content:   "body",
			Summary:   "Merged",
			GroupSize: 2,
			SourceIDs: []string{"a", "b"},
			Status:    core.StatusDone,
		}},
	}
}

func TestRunRepositoryBasics(t *testing.T) {
	runs, cache, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		cache.Close()
		runs.Close()
		backend.Close()
	}()

	ctx := context.Background()

	saved, err := runs.SaveRun(ctx, sampleRun(0.75))
	require.NoError(t, err)
	assert.NotZero(t, saved.Id)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := runs.GetRun(ctx, saved.Id)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = runs.GetRun(ctx, saved.Id+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunRepository_KeepsExplicitIDAndTime(t *testing.T) {
	runs, cache, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		cache.Close()
		runs.Close()
		backend.Close()
	}()

	created := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	run := sampleRun(0.8)
	run.Id = 99
	run.CreatedAt = created

	saved, err := runs.SaveRun(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, core.ID(99), saved.Id)
	assert.Equal(t, created.Truncate(time.Microsecond), saved.CreatedAt)

	got, err := runs.GetRun(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, got.CreatedAt)
}

func TestListRuns(t *testing.T) {
	runs, cache, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		cache.Close()
		runs.Close()
		backend.Close()
	}()

	ctx := context.Background()
	var ids []core.ID
	for i := 0; i < 4; i++ {
		saved, err := runs.SaveRun(ctx, sampleRun(0.5+float64(i)/10))
		require.NoError(t, err)
		ids = append(ids, saved.Id)
	}

	all, err := runs.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, run := range all {
		assert.Equal(t, ids[len(ids)-1-i], run.Id)
	}

	limited, err := runs.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[3], limited[0].Id)
	assert.Equal(t, ids[2], limited[1].Id)
}

func TestListRuns_Empty(t *testing.T) {
	runs, cache, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		cache.Close()
		runs.Close()
		backend.Close()
	}()

	all, err := runs.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteRun(t *testing.T) {
	runs, cache, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		cache.Close()
		runs.Close()
		backend.Close()
	}()

	ctx := context.Background()
	saved, err := runs.SaveRun(ctx, sampleRun(0.75))
	require.NoError(t, err)

	require.NoError(t, runs.DeleteRun(ctx, saved.Id))

	_, err = runs.GetRun(ctx, saved.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = runs.DeleteRun(ctx, saved.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
