package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSettings(t *testing.T) {
	database := openTestDB(t)

	v, err := database.GetSetting("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, database.SetSetting("k", "one"))
	require.NoError(t, database.SetSetting("k", "two"))

	v, err = database.GetSetting("k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	require.NoError(t, database.DeleteSetting("k"))
	v, err = database.GetSetting("k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestTokenSlot(t *testing.T) {
	database := openTestDB(t)

	token, err := database.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "fresh database holds no token")

	require.NoError(t, database.Save("abc.def"))
	token, err = database.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	require.NoError(t, database.Clear())
	token, err = database.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// clearing twice is fine
	require.NoError(t, database.Clear())
}

func TestTokenSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	first, err := New(path)
	require.NoError(t, err)
	require.NoError(t, first.Save("persisted"))
	require.NoError(t, first.Close())

	second, err := New(path)
	require.NoError(t, err)
	defer second.Close()

	token, err := second.Load()
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}
