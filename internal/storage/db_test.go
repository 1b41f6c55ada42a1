package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_SetGet(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Set("k1", []byte("v1")))

	got, err := db.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	t.Run("missing key yields ErrKeyNotFound", func(t *testing.T) {
		_, err := db.Get("missing")
		assert.True(t, IsErrKeyNotFound(err))
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, db.Set("k1", []byte("v2")))
		got, err := db.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})
}

func TestDB_Delete(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Set("k1", []byte("v1")))
	require.NoError(t, db.Delete("k1"))

	_, err := db.Get("k1")
	assert.True(t, IsErrKeyNotFound(err))

	assert.NoError(t, db.Delete("never existed"))
}

func TestDB_List(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Set("tasks/t1", []byte("a")))
	require.NoError(t, db.Set("tasks/t2", []byte("b")))
	require.NoError(t, db.Set("canvas/n1", []byte("c")))

	got, err := db.List("tasks/")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []byte("a"), got["t1"], "prefix is stripped from returned keys")
	assert.Equal(t, []byte("b"), got["t2"])

	t.Run("empty prefix result is an empty map", func(t *testing.T) {
		got, err := db.List("timer/")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDB_DeletePrefix(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Set("tasks/t1", []byte("a")))
	require.NoError(t, db.Set("tasks/t2", []byte("b")))
	require.NoError(t, db.Set("canvas/n1", []byte("c")))

	require.NoError(t, db.DeletePrefix("tasks/"))

	got, err := db.List("tasks/")
	require.NoError(t, err)
	assert.Empty(t, got)

	kept, err := db.Get("canvas/n1")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), kept)
}
