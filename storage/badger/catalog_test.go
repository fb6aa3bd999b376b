package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(name string) *core.ProgramEntry {
	return &core.ProgramEntry{
		Name:    name,
		Path:    "/usr/bin/" + name,
		Kind:    core.ProgramKindExecutable,
		Enabled: true,
	}
}

func collect(t *testing.T, repo storage.CatalogRepository) map[string]*core.ProgramEntry {
	t.Helper()
	out := make(map[string]*core.ProgramEntry)
	err := repo.ForEach(context.Background(), func(e *core.ProgramEntry) error {
		out[e.Name] = e
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestCatalogRepository_PutAndGet(t *testing.T) {
	repo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	entry := newEntry("firefox")
	require.NoError(t, repo.PutEntries(ctx, entry))
	assert.Equal(t, core.EntryIDForPath("/usr/bin/firefox"), entry.Id)
	assert.False(t, entry.IndexedAt.IsZero())

	got, err := repo.GetEntry(ctx, entry.Id)
	require.NoError(t, err)
	assert.Equal(t, "firefox", got.Name)
	assert.Equal(t, core.ProgramKindExecutable, got.Kind)
	assert.True(t, got.Enabled)

	t.Run("missing entry", func(t *testing.T) {
		_, err := repo.GetEntry(ctx, core.ID(12345))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid entry", func(t *testing.T) {
		err := repo.PutEntries(ctx, &core.ProgramEntry{Name: "no path", Kind: core.ProgramKindExecutable})
		assert.ErrorIs(t, err, core.ErrEmptyPath)
	})
}

func TestCatalogRepository_SetEnabledAndDelete(t *testing.T) {
	repo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	entry := newEntry("gimp")
	require.NoError(t, repo.PutEntries(ctx, entry))

	require.NoError(t, repo.SetEnabled(ctx, entry.Id, false))
	got, err := repo.GetEntry(ctx, entry.Id)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	assert.ErrorIs(t, repo.SetEnabled(ctx, core.ID(1), true), storage.ErrNotFound)

	require.NoError(t, repo.DeleteEntries(ctx, entry.Id, core.ID(1)))
	_, err = repo.GetEntry(ctx, entry.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCatalogRepository_ReplaceAll(t *testing.T) {
	repo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, []*core.ProgramEntry{newEntry("a"), newEntry("b"), newEntry("c")}))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, repo.SetEnabled(ctx, core.EntryIDForPath("/usr/bin/b"), false))

	require.NoError(t, repo.ReplaceAll(ctx, []*core.ProgramEntry{newEntry("b"), newEntry("d")}))
	entries := collect(t, repo)
	require.Len(t, entries, 2)
	assert.Contains(t, entries, "d")
	assert.NotContains(t, entries, "a")
	assert.False(t, entries["b"].Enabled, "disabled flag survives reindex")
	assert.True(t, entries["d"].Enabled)

	t.Run("large catalog", func(t *testing.T) {
		big := make([]*core.ProgramEntry, 5000)
		for i := range big {
			big[i] = newEntry(fmt.Sprintf("prog-%04d", i))
		}
		require.NoError(t, repo.ReplaceAll(ctx, big))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5000, count)
	})

	t.Run("invalid entry keeps the previous catalog", func(t *testing.T) {
		before, err := repo.Count(ctx)
		require.NoError(t, err)

		err = repo.ReplaceAll(ctx, []*core.ProgramEntry{newEntry("x"), {Name: "", Path: "/bad"}})
		assert.ErrorIs(t, err, core.ErrEmptyName)

		after, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestCatalogRepository_SetEnabledDuringReplace(t *testing.T) {
	repo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	catalog := func() []*core.ProgramEntry {
		entries := make([]*core.ProgramEntry, 200)
		for i := range entries {
			entries[i] = newEntry(fmt.Sprintf("prog-%03d", i))
		}
		return entries
	}
	id := core.EntryIDForPath("/usr/bin/prog-007")

	for i := 0; i < 20; i++ {
		require.NoError(t, repo.ReplaceAll(ctx, catalog()))
		require.NoError(t, repo.SetEnabled(ctx, id, true))

		errs := make(chan error, 2)
		go func() { errs <- repo.ReplaceAll(ctx, catalog()) }()
		go func() { errs <- repo.SetEnabled(ctx, id, false) }()
		require.NoError(t, <-errs)
		require.NoError(t, <-errs)

		got, err := repo.GetEntry(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.Enabled, "toggle lost to a concurrent reindex in round %d", i)
	}
}

func TestCatalogRepository_ForEach(t *testing.T) {
	repo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, repo.ReplaceAll(context.Background(), []*core.ProgramEntry{newEntry("a"), newEntry("b")}))

	t.Run("stops on callback error", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := repo.ForEach(context.Background(), func(*core.ProgramEntry) error {
			calls++
			return stop
		})
		assert.Equal(t, stop, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := repo.ForEach(ctx, func(*core.ProgramEntry) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty catalog", func(t *testing.T) {
		empty, _, b, err := NewMemoryRepositories()
		require.NoError(t, err)
		defer b.Close()
		count, err := empty.Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestCheckpointRepository(t *testing.T) {
	_, checkpoints, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	cp, err := checkpoints.LoadCheckpoint(ctx, "programs")
	require.NoError(t, err)
	assert.Nil(t, cp)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, checkpoints.SaveCheckpoint(ctx, "programs", &core.Checkpoint{LastIndexTime: now, EntryCount: 7}))

	cp, err = checkpoints.LoadCheckpoint(ctx, "programs")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.True(t, now.Equal(cp.LastIndexTime))
	assert.Equal(t, 7, cp.EntryCount)
}
