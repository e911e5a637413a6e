package keystore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "iris", "token"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("tok-abc"))
	assert.True(t, store.Exists())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", got)
}

func TestSaveRestrictsPermissions(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save("tok"))

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveOverwrites(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("old"))
	require.NoError(t, store.Save("new"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestClearIsIdempotent(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("tok"))
	require.NoError(t, store.Clear())
	assert.False(t, store.Exists())

	// Clearing again, with nothing stored, still succeeds.
	require.NoError(t, store.Clear())
}

func TestExpiresAtReadsExpClaim(t *testing.T) {
	store := newStore(t)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, store.Save(signed))

	got, err := store.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestExpiresAtRejectsOpaqueToken(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save("not-a-jwt"))

	_, err := store.ExpiresAt()
	assert.Error(t, err)
}
