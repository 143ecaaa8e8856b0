package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confsched/internal/domain"
)

// fakeFavoritesRepo is an in-memory FavoritesRepository for tests.
type fakeFavoritesRepo struct {
	stored    []string
	hasStored bool
	loadErr   error
	saveErr   error
	saveCalls int
}

func (f *fakeFavoritesRepo) Load(ctx context.Context) ([]string, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if !f.hasStored {
		return nil, domain.ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeFavoritesRepo) Save(ctx context.Context, ids []string) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = ids
	f.hasStored = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFavoritesService_LoadAbsentStartsEmpty(t *testing.T) {
	svc := NewFavoritesService(&fakeFavoritesRepo{}, discardLogger())
	favs := svc.Load(context.Background())
	assert.Empty(t, favs)
	assert.False(t, svc.IsFavorite("a"))
}

func TestFavoritesService_LoadFailureStartsEmpty(t *testing.T) {
	repo := &fakeFavoritesRepo{loadErr: errors.New("disk on fire")}
	svc := NewFavoritesService(repo, discardLogger())
	favs := svc.Load(context.Background())
	assert.Empty(t, favs, "load failure must degrade to the empty set, not error")
}

func TestFavoritesService_LoadRestoresPersistedSet(t *testing.T) {
	repo := &fakeFavoritesRepo{stored: []string{"a", "b"}, hasStored: true}
	svc := NewFavoritesService(repo, discardLogger())
	favs := svc.Load(context.Background())
	assert.Equal(t, map[string]bool{"a": true, "b": true}, favs)
	assert.True(t, svc.IsFavorite("a"))
	assert.False(t, svc.IsFavorite("c"))
}

func TestFavoritesService_ToggleAddsAndRemoves(t *testing.T) {
	ctx := context.Background()
	repo := &fakeFavoritesRepo{}
	svc := NewFavoritesService(repo, discardLogger())
	svc.Load(ctx)

	favs := svc.Toggle(ctx, "a")
	assert.True(t, favs["a"])
	assert.True(t, svc.IsFavorite("a"))
	assert.Equal(t, []string{"a"}, repo.stored)

	favs = svc.Toggle(ctx, "a")
	assert.Empty(t, favs, "two toggles restore the original state")
	assert.False(t, svc.IsFavorite("a"))
	assert.Equal(t, []string{}, repo.stored)
}

func TestFavoritesService_OneWritePerToggle(t *testing.T) {
	ctx := context.Background()
	repo := &fakeFavoritesRepo{}
	svc := NewFavoritesService(repo, discardLogger())
	svc.Load(ctx)

	svc.Toggle(ctx, "a")
	svc.Toggle(ctx, "b")
	svc.Toggle(ctx, "a")
	assert.Equal(t, 3, repo.saveCalls)
}

func TestFavoritesService_PersistenceFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	repo := &fakeFavoritesRepo{saveErr: errors.New("read-only filesystem")}
	svc := NewFavoritesService(repo, discardLogger())
	svc.Load(ctx)

	favs := svc.Toggle(ctx, "a")
	assert.True(t, favs["a"], "in-memory set updates even when persistence fails")
	assert.True(t, svc.IsFavorite("a"))
}

func TestFavoritesService_NilRepoKeepsWorkingInMemory(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoritesService(nil, discardLogger())

	favs := svc.Load(ctx)
	assert.Empty(t, favs)

	favs = svc.Toggle(ctx, "a")
	assert.True(t, favs["a"])
}

func TestFavoritesService_SnapshotDoesNotAliasInternalState(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoritesService(&fakeFavoritesRepo{}, discardLogger())
	svc.Load(ctx)

	favs := svc.Toggle(ctx, "a")
	favs["b"] = true
	assert.False(t, svc.IsFavorite("b"))
}

func TestFavoritesService_PersistedSetIsSorted(t *testing.T) {
	ctx := context.Background()
	repo := &fakeFavoritesRepo{}
	svc := NewFavoritesService(repo, discardLogger())
	svc.Load(ctx)

	svc.Toggle(ctx, "zebra")
	svc.Toggle(ctx, "alpha")
	require.Equal(t, []string{"alpha", "zebra"}, repo.stored)
}
