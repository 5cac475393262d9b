package ethdb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func testDatabase(t *testing.T, db Database) {
	t.Helper()

	_, ok, err := db.Get([]byte("absent"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.Put([]byte("key"), []byte("value")))
	got, ok, err := db.Get([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value"), got)

	has, err := db.Has([]byte("key"))
	require.NoError(t, err)
	require.True(t, has)

	// Idempotent re-put, as the trie engine does for shared subtrees.
	require.NoError(t, db.Put([]byte("key"), []byte("value")))
	got, ok, err = db.Get([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value"), got)

	require.NoError(t, db.Delete([]byte("key")))
	has, err = db.Has([]byte("key"))
	require.NoError(t, err)
	require.False(t, has)

	batch := db.NewBatch()
	for i := 0; i < 10; i++ {
		require.NoError(t, batch.Put([]byte(fmt.Sprintf("batch-%d", i)), []byte{byte(i)}))
	}
	require.NotZero(t, batch.ValueSize())
	require.NoError(t, batch.Write())
	for i := 0; i < 10; i++ {
		got, ok, err := db.Get([]byte(fmt.Sprintf("batch-%d", i)))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte{byte(i)}, got)
	}
	batch.Reset()
	require.Zero(t, batch.ValueSize())
}

func TestMemoryDatabase(t *testing.T) {
	db := NewMemoryDatabase()
	defer db.Close()
	testDatabase(t, db)
	require.Equal(t, 10, db.Len())
	require.Len(t, db.Keys(), 10)
}

func TestLDBDatabase(t *testing.T) {
	db, err := NewLDBDatabase(t.TempDir(), 0, 0)
	require.NoError(t, err)
	defer db.Close()
	testDatabase(t, db)
}

// Get must hand out copies: mutating a returned value must not corrupt the
// stored blob.
func TestMemoryDatabaseCopies(t *testing.T) {
	db := NewMemoryDatabase()
	require.NoError(t, db.Put([]byte("k"), []byte{1, 2, 3}))
	got, _, err := db.Get([]byte("k"))
	require.NoError(t, err)
	got[0] = 0xff
	again, _, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, again)
}
