package kv_test

import (
	"path/filepath"
	"testing"

	"github.com/medibook/go-client/kv"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, ok := store.Get("token_DOCTOR")
	require.False(t, ok)

	require.NoError(t, store.Set("token_DOCTOR", "t1"))
	value, ok := store.Get("token_DOCTOR")
	require.True(t, ok)
	require.Equal(t, "t1", value)

	// Upsert replaces.
	require.NoError(t, store.Set("token_DOCTOR", "t2"))
	value, _ = store.Get("token_DOCTOR")
	require.Equal(t, "t2", value)

	require.NoError(t, store.Remove("token_DOCTOR"))
	_, ok = store.Get("token_DOCTOR")
	require.False(t, ok)
	require.NoError(t, store.Remove("token_DOCTOR"))
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("user_ADMIN", `{"id":"1"}`))
	require.NoError(t, store.Close())

	reopened, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	value, ok := reopened.Get("user_ADMIN")
	require.True(t, ok)
	require.Equal(t, `{"id":"1"}`, value)
}
