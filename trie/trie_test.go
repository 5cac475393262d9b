// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package trie

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taraxa-evm/mpt-core/common"
	"github.com/taraxa-evm/mpt-core/crypto"
	"github.com/taraxa-evm/mpt-core/ethdb"
)

func newEmpty(t *testing.T) *Trie {
	t.Helper()
	tr, err := New(common.Hash{}, ethdb.NewMemoryDatabase(), 0, nil)
	require.NoError(t, err)
	return tr
}

func updateString(t *testing.T, tr *Trie, k, v string) {
	t.Helper()
	require.NoError(t, tr.Put([]byte(k), []byte(v)))
}

func deleteString(t *testing.T, tr *Trie, k string) {
	t.Helper()
	require.NoError(t, tr.Delete([]byte(k)))
}

func getString(t *testing.T, tr *Trie, k string) []byte {
	t.Helper()
	v, err := tr.Get([]byte(k))
	require.NoError(t, err)
	return v
}

func hexb(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestEmptyTrie(t *testing.T) {
	tr := newEmpty(t)
	require.Equal(t, EmptyRootHash, tr.Hash())
	// The canonical empty root really is Keccak-256 of RLP("").
	require.Equal(t, crypto.Keccak256Hash([]byte{0x80}), EmptyRootHash)
}

func TestNilKey(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "", "value")
	require.Equal(t, []byte("value"), getString(t, tr, ""))
	deleteString(t, tr, "")
	require.Equal(t, EmptyRootHash, tr.Hash())
}

// The expected encodings below are built by hand from the hex-prefix and RLP
// rules: a trie holding just ("do", "verb") is a single leaf
// ["\x20do", "verb"], and adding ("dog", "puppy") turns it into an extension
// over the nibbles of "do" pointing at a branch with "verb" as terminator
// and an embedded leaf for the trailing nibble of 'g'.
const (
	leafDoEnc   = "c98320646f8476657262"
	extDoDogEnc = "e18300646fdc808080808080c7378570757070798080808080808080808476657262"
)

func TestSingleLeaf(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "do", "verb")
	require.Equal(t, crypto.Keccak256Hash(hexb(t, leafDoEnc)), tr.Hash())
}

func TestSharedNibblePrefix(t *testing.T) {
	want := crypto.Keccak256Hash(hexb(t, extDoDogEnc))

	tr := newEmpty(t)
	updateString(t, tr, "do", "verb")
	updateString(t, tr, "dog", "puppy")
	require.Equal(t, want, tr.Hash())
	require.Equal(t, []byte("verb"), getString(t, tr, "do"))
	require.Equal(t, []byte("puppy"), getString(t, tr, "dog"))

	// Reverse insertion order must produce the identical root.
	tr = newEmpty(t)
	updateString(t, tr, "dog", "puppy")
	updateString(t, tr, "do", "verb")
	require.Equal(t, want, tr.Hash())
}

func TestDeleteCollapsesBranch(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "do", "verb")
	updateString(t, tr, "dog", "puppy")
	deleteString(t, tr, "dog")
	require.Equal(t, crypto.Keccak256Hash(hexb(t, leafDoEnc)), tr.Hash())

	deleteString(t, tr, "do")
	require.Equal(t, EmptyRootHash, tr.Hash())
}

func TestOverwrite(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "dog", "puppy")
	updateString(t, tr, "dog", "cat")

	want := newEmpty(t)
	updateString(t, want, "dog", "cat")
	require.Equal(t, want.Hash(), tr.Hash())
	require.Equal(t, []byte("cat"), getString(t, tr, "dog"))
}

func TestInsertKnownRoots(t *testing.T) {
	tests := []struct {
		entries [][2]string
		root    string
	}{
		{
			entries: [][2]string{{"doe", "reindeer"}, {"dog", "puppy"}, {"dogglesworth", "cat"}},
			root:    "8aad789dff2f538bca5d8ea56e8abe10f4c7ba3a5dea95fea4cd6e7c3a1168d3",
		},
		{
			entries: [][2]string{{"foo", "bar"}, {"food", "bass"}},
			root:    "17beaa1648bafa633cda809c90c04af50fc8aed3cb40d16efbddee6fdf63c4c3",
		},
		{
			entries: [][2]string{{"A", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}},
			root:    "d23786fb4a010da3ce639d66d5e904a11dbc02746d1ce25029e53290cabf28ab",
		},
		{
			entries: [][2]string{{"do", "verb"}, {"dog", "puppy"}, {"doge", "coin"}, {"horse", "stallion"}},
			root:    "5991bb8c6514148a29db676a14ac506cd2cd5775ace63c30a4fe457715e9ac84",
		},
	}
	for i, test := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			tr := newEmpty(t)
			for _, kv := range test.entries {
				updateString(t, tr, kv[0], kv[1])
			}
			require.Equal(t, common.HexToHash(test.root), tr.Hash())
		})
	}
}

// TestIncrementalRoots walks the classic do/dog/doge/horse sequence op by
// op, checking after every step that the root matches a trie built from
// scratch with the same contents, then unwinds the inserts with deletes
// down to the hand-computed intermediate encodings.
func TestIncrementalRoots(t *testing.T) {
	entries := [][2]string{{"do", "verb"}, {"dog", "puppy"}, {"doge", "coin"}, {"horse", "stallion"}}

	tr := newEmpty(t)
	require.Equal(t, EmptyRootHash, tr.Hash())
	for i, kv := range entries {
		updateString(t, tr, kv[0], kv[1])
		fresh := newEmpty(t)
		for _, done := range entries[:i+1] {
			updateString(t, fresh, done[0], done[1])
		}
		require.Equal(t, fresh.Hash(), tr.Hash(), "after inserting %q", kv[0])
	}
	require.Equal(t, common.HexToHash("5991bb8c6514148a29db676a14ac506cd2cd5775ace63c30a4fe457715e9ac84"), tr.Hash())

	deleteString(t, tr, "horse")
	deleteString(t, tr, "doge")
	require.Equal(t, crypto.Keccak256Hash(hexb(t, extDoDogEnc)), tr.Hash())
	deleteString(t, tr, "dog")
	require.Equal(t, crypto.Keccak256Hash(hexb(t, leafDoEnc)), tr.Hash())
	deleteString(t, tr, "do")
	require.Equal(t, EmptyRootHash, tr.Hash())
}

func TestOrderIndependence(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	entries := make(map[string]string, 64)
	for i := 0; i < 64; i++ {
		k := make([]byte, 1+rnd.Intn(32))
		rnd.Read(k)
		v := make([]byte, 1+rnd.Intn(64))
		rnd.Read(v)
		entries[string(k)] = string(v)
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}

	var want common.Hash
	for round := 0; round < 8; round++ {
		tr := newEmpty(t)
		for _, i := range rnd.Perm(len(keys)) {
			updateString(t, tr, keys[i], entries[keys[i]])
		}
		if round == 0 {
			want = tr.Hash()
		} else {
			require.Equal(t, want, tr.Hash(), "round %d", round)
		}
	}
}

func TestDeleteCancelsInsert(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "doe", "reindeer")
	updateString(t, tr, "dog", "puppy")
	updateString(t, tr, "dogglesworth", "cat")
	before := tr.Hash()

	for _, k := range []string{"d", "do", "dogs", "dogglesworth2", "horse", "\x00"} {
		updateString(t, tr, k, "transient")
		deleteString(t, tr, k)
		require.Equal(t, before, tr.Hash(), "inserting and deleting %q must cancel out", k)
	}
}

func TestPutEmptyIsDelete(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "dog", "puppy")
	updateString(t, tr, "doge", "coin")
	withBoth := tr.Hash()

	require.NoError(t, tr.Put([]byte("doge"), nil))
	onlyDog := newEmpty(t)
	updateString(t, onlyDog, "dog", "puppy")
	require.Equal(t, onlyDog.Hash(), tr.Hash())

	// Put of an empty value for an absent key is a no-op.
	require.NoError(t, tr.Put([]byte("absent"), nil))
	require.Equal(t, onlyDog.Hash(), tr.Hash())

	// And deleting what was never inserted changes nothing either.
	deleteString(t, tr, "absent")
	require.Equal(t, onlyDog.Hash(), tr.Hash())

	updateString(t, tr, "doge", "coin")
	require.Equal(t, withBoth, tr.Hash())
}

func TestLookup(t *testing.T) {
	entries := map[string]string{
		"doe":          "reindeer",
		"dog":          "puppy",
		"dogglesworth": "cat",
		"horse":        "stallion",
		"do":           "verb",
		"":             "empty key",
	}
	tr := newEmpty(t)
	for k, v := range entries {
		updateString(t, tr, k, v)
	}
	for k, v := range entries {
		require.Equal(t, []byte(v), getString(t, tr, k))
	}
	for _, absent := range []string{"d", "doges", "dogglesworth2", "x", "hors", "horses"} {
		require.Nil(t, getString(t, tr, absent))
	}
}

func TestCommitReload(t *testing.T) {
	db := ethdb.NewMemoryDatabase()
	tr, err := New(common.Hash{}, db, 0, nil)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(7))
	entries := make(map[string][]byte, 100)
	for i := 0; i < 100; i++ {
		k := fmt.Sprintf("key-%03d", i)
		v := make([]byte, 1+rnd.Intn(80))
		rnd.Read(v)
		entries[k] = v
		require.NoError(t, tr.Put([]byte(k), v))
	}
	root, err := tr.Commit()
	require.NoError(t, err)
	require.Equal(t, tr.Hash(), root)

	reloaded, err := New(root, db, 0, nil)
	require.NoError(t, err)
	for k, v := range entries {
		got, err := reloaded.Get([]byte(k))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
	require.Equal(t, root, reloaded.Hash())

	// Mutating the reloaded trie leaves the committed root readable.
	require.NoError(t, reloaded.Delete([]byte("key-050")))
	newRoot, err := reloaded.Commit()
	require.NoError(t, err)
	require.NotEqual(t, root, newRoot)

	old, err := New(root, db, 0, nil)
	require.NoError(t, err)
	got, err := old.Get([]byte("key-050"))
	require.NoError(t, err)
	require.Equal(t, entries["key-050"], got)
}

func TestMissingRoot(t *testing.T) {
	db := ethdb.NewMemoryDatabase()
	bogus := common.HexToHash("0beec7b5ea3f0fdbc95d0dd47f3c5bc275da8a330beec7b5ea3f0fdbc95d0dd4")
	_, err := New(bogus, db, 0, nil)
	var missing *MissingNodeError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, bogus.Bytes(), missing.NodeHash)
}

func TestMissingNode(t *testing.T) {
	db := ethdb.NewMemoryDatabase()
	tr, err := New(common.Hash{}, db, 0, nil)
	require.NoError(t, err)
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		v := make([]byte, 40)
		rnd.Read(v)
		require.NoError(t, tr.Put([]byte(fmt.Sprintf("somekey%d", i)), v))
	}
	root, err := tr.Commit()
	require.NoError(t, err)

	// Drop every stored node except the root blob itself, then walk: any
	// path through a hashed child must surface MissingNodeError.
	for _, key := range db.Keys() {
		if common.BytesToHash(key) != root {
			require.NoError(t, db.Delete(key))
		}
	}
	broken, err := New(root, db, 0, nil)
	require.NoError(t, err)
	var sawMissing bool
	for i := 0; i < 100; i++ {
		if _, err := broken.Get([]byte(fmt.Sprintf("somekey%d", i))); err != nil {
			var missing *MissingNodeError
			require.True(t, errors.As(err, &missing))
			sawMissing = true
			break
		}
	}
	require.True(t, sawMissing, "no lookup hit the corrupted part of the store")
}

func TestSecureTrie(t *testing.T) {
	db := ethdb.NewMemoryDatabase()
	tr, err := NewSecure(common.Hash{}, db, 0)
	require.NoError(t, err)
	updateString(t, tr, "do", "verb")
	updateString(t, tr, "dog", "puppy")
	require.Equal(t, []byte("verb"), getString(t, tr, "do"))
	require.Equal(t, []byte("puppy"), getString(t, tr, "dog"))

	// Hashing the keys changes every path, so the root differs from the
	// plain trie over the same entries.
	plain := newEmpty(t)
	updateString(t, plain, "do", "verb")
	updateString(t, plain, "dog", "puppy")
	require.NotEqual(t, plain.Hash(), tr.Hash())

	root, err := tr.Commit()
	require.NoError(t, err)
	reloaded, err := NewSecure(root, db, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("puppy"), getString(t, reloaded, "dog"))
	deleteString(t, reloaded, "dog")
	deleteString(t, reloaded, "do")
	require.Equal(t, EmptyRootHash, reloaded.Hash())
}

// The decoded-node cache is an optimization only: roots and lookups must be
// identical with and without it.
func TestNodeCacheTransparent(t *testing.T) {
	db := ethdb.NewMemoryDatabase()
	tr, err := New(common.Hash{}, db, 0, nil)
	require.NoError(t, err)
	rnd := rand.New(rand.NewSource(11))
	entries := make(map[string][]byte, 200)
	for i := 0; i < 200; i++ {
		k := fmt.Sprintf("entry/%d", i)
		v := make([]byte, 1+rnd.Intn(60))
		rnd.Read(v)
		entries[k] = v
		require.NoError(t, tr.Put([]byte(k), v))
	}
	root, err := tr.Commit()
	require.NoError(t, err)

	cached, err := New(root, db, 128, nil)
	require.NoError(t, err)
	for k, v := range entries {
		got, err := cached.Get([]byte(k))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
	for i := 0; i < 200; i += 2 {
		require.NoError(t, cached.Delete([]byte(fmt.Sprintf("entry/%d", i))))
	}

	plain, err := New(root, db, 0, nil)
	require.NoError(t, err)
	for i := 0; i < 200; i += 2 {
		require.NoError(t, plain.Delete([]byte(fmt.Sprintf("entry/%d", i))))
	}
	require.Equal(t, plain.Hash(), cached.Hash())
}

func TestReplication(t *testing.T) {
	entries := [][2]string{
		{"do", "verb"}, {"ether", "wookiedoo"}, {"horse", "stallion"},
		{"shaman", "horse"}, {"doge", "coin"}, {"dog", "puppy"}, {"somethingveryoddindeedthis is", "myothernodedata"},
	}
	db := ethdb.NewMemoryDatabase()
	tr, err := New(common.Hash{}, db, 0, nil)
	require.NoError(t, err)
	for _, kv := range entries {
		updateString(t, tr, kv[0], kv[1])
	}
	root, err := tr.Commit()
	require.NoError(t, err)

	// Replaying the committed trie into a second store must reproduce the
	// root bit for bit.
	db2 := ethdb.NewMemoryDatabase()
	tr2, err := New(common.Hash{}, db2, 0, nil)
	require.NoError(t, err)
	for _, kv := range entries {
		updateString(t, tr2, kv[0], kv[1])
	}
	root2, err := tr2.Commit()
	require.NoError(t, err)
	require.Equal(t, root, root2)
}

func TestDot(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "do", "verb")
	updateString(t, tr, "dog", "puppy")
	rendered := tr.Dot().String()
	require.Contains(t, rendered, "ext")
	require.Contains(t, rendered, "branch")
	require.Contains(t, rendered, "leaf")
}
