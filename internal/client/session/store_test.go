package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gamehive/gamehive/pkg/cryptox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cryptox.ResetMasterKeyForTesting()
	t.Setenv("GAMEHIVE_MASTER_KEY", "store-test-key")

	store, err := Open(filepath.Join(t.TempDir(), "gamehive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := Session{
		Token: "t1",
		User: User{
			ID:                "u1",
			Username:          "gamer1",
			Email:             "a@test.com",
			IsActive:          true,
			JoinedCommunities: []string{},
		},
	}

	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", loaded.Token)
	assert.Equal(t, "u1", loaded.User.ID)
	assert.True(t, loaded.User.IsActive)
	assert.NotNil(t, loaded.User.JoinedCommunities)
	assert.Empty(t, loaded.User.JoinedCommunities)
}

func TestStoreLoadWithoutSession(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "old", User: User{ID: "u1"}}))
	require.NoError(t, store.Save(ctx, Session{Token: "new", User: User{ID: "u2"}}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.Token)
	assert.Equal(t, "u2", loaded.User.ID)
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "t1", User: User{ID: "u1"}}))
	require.NoError(t, store.Clear(ctx))

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	// Clearing an already-empty store is fine
	require.NoError(t, store.Clear(ctx))
}

func TestStoreValuesAreSealedAtRest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Session{Token: "super-secret-token", User: User{ID: "u1"}}))

	var raw []byte
	err := store.db.QueryRowContext(ctx,
		`SELECT value FROM session_store WHERE key = 'token'`).Scan(&raw)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-token")
}
