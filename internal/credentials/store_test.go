package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "config.json"))
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.False(t, cfg.HasClient())
	assert.Empty(t, cfg.AccessToken)
}

func TestStoreSetClientKeepsTokens(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetTokens("tok", "ref", 1700000000))
	require.NoError(t, store.SetClient("id", "secret", "/obs/profiles"))

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, "/obs/profiles", cfg.ProfilePath)
	assert.Equal(t, "tok", cfg.AccessToken)
	assert.Equal(t, "ref", cfg.RefreshToken)
	assert.Equal(t, int64(1700000000), cfg.ExpiresAt)
}

func TestStoreSetTokensReplacesWholeTriple(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetClient("id", "secret", ""))
	require.NoError(t, store.SetTokens("tok-1", "ref-1", 100))

	require.NoError(t, store.SetTokens("tok-2", "ref-2", 200))

	cfg, err := store.Load()
	require.NoError(t, err)
	// the triple always comes from the same generation
	assert.Equal(t, "tok-2", cfg.AccessToken)
	assert.Equal(t, "ref-2", cfg.RefreshToken)
	assert.Equal(t, int64(200), cfg.ExpiresAt)
	assert.Equal(t, "id", cfg.ClientID)
}

func TestStoreFilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetTokens("tok", "ref", 1))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStoreCorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0600))

	_, err := store.Load()
	require.Error(t, err)
	var serr *StoreError
	assert.ErrorAs(t, err, &serr)
}

func TestEnvOverrides(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetClient("file-id", "file-secret", "/file/path"))

	t.Setenv("RESTREAM_CLIENT_ID", "env-id")
	t.Setenv("RESTREAM_CLIENT_SECRET", "env-secret")

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "env-id", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "/file/path", cfg.ProfilePath)
}

func TestEnvOverridesAreNeverPersisted(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetClient("file-id", "file-secret", "/file/path"))

	t.Setenv("RESTREAM_CLIENT_ID", "env-id")
	require.NoError(t, store.SetTokens("tok", "ref", 1))
	require.NoError(t, store.SetClient("file-id-2", "file-secret", "/file/path"))

	// writes merge into the raw file state, not the env-overlaid view
	b, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"client_id": "file-id-2"`)
	assert.NotContains(t, string(b), "env-id")

	// reads still see the override
	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "env-id", cfg.ClientID)
}
