package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forge/pkg/adapters/fs"
	"github.com/aretw0/forge/pkg/core"
)

func newStore(t *testing.T, cfg fs.Config) *fs.Store {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "data")
	}
	s := fs.NewStore(cfg)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, fs.Config{})

	_, err := s.Get(ctx, core.DefaultStorageKey)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.Set(ctx, core.DefaultStorageKey, `[{"title":"Login"}]`))

	got, err := s.Get(ctx, core.DefaultStorageKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"Login"}]`, got)

	path, err := s.PathFor(core.DefaultStorageKey)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Path, "useCases.json"), path)
	assert.FileExists(t, path)
}

func TestStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, fs.Config{})

	for _, key := range []string{"", ".", "..", "a/b", `a\b`, "../escape"} {
		t.Run(key, func(t *testing.T) {
			assert.Error(t, s.Set(ctx, key, "x"))
			_, err := s.Get(ctx, key)
			assert.Error(t, err)
			assert.False(t, errors.Is(err, core.ErrNotFound))
		})
	}
}

func TestStore_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "data")
		require.NoError(t, fs.NewStore(fs.Config{Path: path}).Initialize(ctx))
		assert.DirExists(t, path)
	})

	t.Run("MustExist", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing")
		err := fs.NewStore(fs.Config{Path: path, MustExist: true}).Initialize(ctx)
		assert.Error(t, err)
		assert.NoDirExists(t, path)
	})

	t.Run("Not A Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		err := fs.NewStore(fs.Config{Path: path, MustExist: true}).Initialize(ctx)
		assert.Error(t, err)
	})
}

func TestStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "useCases.json"), []byte("[]"), 0644))

	s := newStore(t, fs.Config{Path: dir, ReadOnly: true})

	got, err := s.Get(ctx, core.DefaultStorageKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	err = s.Set(ctx, core.DefaultStorageKey, `[{"title":"x"}]`)
	assert.ErrorIs(t, err, core.ErrReadOnly)

	data, _ := os.ReadFile(filepath.Join(dir, "useCases.json"))
	assert.Equal(t, "[]", string(data))
}

func TestStore_CancelledContext(t *testing.T) {
	s := newStore(t, fs.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_WithCollection(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, fs.Config{})

	col := core.OpenCollection(ctx, s, core.CollectionConfig{})
	assert.ErrorIs(t, col.Degraded(), core.ErrReadDegraded)

	stored, err := col.Upsert(ctx, core.UseCase{Title: "Login", Steps: []string{"Enter credentials"}})
	require.NoError(t, err)

	reopened := core.OpenCollection(ctx, s, core.CollectionConfig{})
	require.NoError(t, reopened.Degraded())
	got, ok := reopened.Get(stored.Identity)
	require.True(t, ok)
	assert.Equal(t, "Login", got.Title)
	assert.Equal(t, []string{"Enter credentials"}, got.Steps)

	t.Run("Corrupt File Degrades To Empty", func(t *testing.T) {
		path, _ := s.PathFor(core.DefaultStorageKey)
		require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0644))

		col := core.OpenCollection(ctx, s, core.CollectionConfig{})
		assert.Equal(t, 0, col.Len())
		assert.ErrorIs(t, col.Degraded(), core.ErrReadDegraded)
	})

	t.Run("Read Only Surfaces Persistence Failure", func(t *testing.T) {
		ro := fs.NewStore(fs.Config{Path: s.Path, ReadOnly: true})
		col := core.OpenCollection(ctx, ro, core.CollectionConfig{})

		_, err := col.Upsert(ctx, core.UseCase{Title: "x"})
		assert.ErrorIs(t, err, core.ErrPersistenceFailure)
		assert.ErrorIs(t, err, core.ErrReadOnly)
	})
}

func TestStore_State(t *testing.T) {
	s := newStore(t, fs.Config{})
	require.NoError(t, s.Set(context.Background(), "k", "12345"))

	state := s.State().(fs.StoreState)
	assert.Equal(t, s.Path, state.Path)
	assert.False(t, state.ReadOnly)
	assert.Equal(t, 5, state.LastWriteSize)
	require.NotNil(t, state.LastWrite)
	assert.WithinDuration(t, time.Now(), *state.LastWrite, time.Minute)
	assert.Equal(t, "fs-store", s.ComponentType())
}
