package trie

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taraxa-evm/mpt-core/common"
	"github.com/taraxa-evm/mpt-core/crypto"
	"github.com/taraxa-evm/mpt-core/ethdb"
)

func TestProof(t *testing.T) {
	db := ethdb.NewMemoryDatabase()
	tr, err := New(common.Hash{}, db, 0, nil)
	require.NoError(t, err)
	entries := map[string][]byte{}
	rnd := rand.New(rand.NewSource(17))
	for i := 0; i < 64; i++ {
		k := fmt.Sprintf("proof/key/%02d", i)
		v := make([]byte, 1+rnd.Intn(70))
		rnd.Read(v)
		entries[k] = v
		require.NoError(t, tr.Put([]byte(k), v))
	}
	root, err := tr.Commit()
	require.NoError(t, err)

	for k, v := range entries {
		proofDb := ethdb.NewMemoryDatabase()
		require.NoError(t, tr.Prove([]byte(k), 0, proofDb))
		got, err := VerifyProof(root, []byte(k), proofDb)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestProofOfAbsence(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "doe", "reindeer")
	updateString(t, tr, "dog", "puppy")
	updateString(t, tr, "dogglesworth", "cat")
	root := tr.Hash()

	for _, absent := range []string{"doges", "dof", "dogglesworthy", "x"} {
		proofDb := ethdb.NewMemoryDatabase()
		require.NoError(t, tr.Prove([]byte(absent), 0, proofDb))
		got, err := VerifyProof(root, []byte(absent), proofDb)
		require.NoError(t, err)
		require.Nil(t, got)
	}
}

func TestVerifyProofMissingNodes(t *testing.T) {
	tr := newEmpty(t)
	updateString(t, tr, "doe", "reindeer")
	updateString(t, tr, "dog", "puppy")
	updateString(t, tr, "dogglesworth", "cat")
	root := tr.Hash()

	// An empty proof can't even produce the root node.
	_, err := VerifyProof(root, []byte("dog"), ethdb.NewMemoryDatabase())
	var missing *MissingNodeError
	require.True(t, errors.As(err, &missing))

	// A truncated proof fails once the walk needs the dropped node.
	proofDb := ethdb.NewMemoryDatabase()
	require.NoError(t, tr.Prove([]byte("dogglesworth"), 0, proofDb))
	for _, key := range proofDb.Keys() {
		if common.BytesToHash(key) != root {
			require.NoError(t, proofDb.Delete(key))
		}
	}
	_, err = VerifyProof(root, []byte("dogglesworth"), proofDb)
	require.True(t, errors.As(err, &missing))
}

func TestProveSecure(t *testing.T) {
	db := ethdb.NewMemoryDatabase()
	tr, err := NewSecure(common.Hash{}, db, 0)
	require.NoError(t, err)
	updateString(t, tr, "dog", "puppy")
	updateString(t, tr, "dogglesworth", "cat")
	root, err := tr.Commit()
	require.NoError(t, err)

	// Prove maps the key through the trie's storage strategy; the
	// verifier works on trie keys and must be handed the hashed form.
	proofDb := ethdb.NewMemoryDatabase()
	require.NoError(t, tr.Prove([]byte("dog"), 0, proofDb))
	got, err := VerifyProof(root, crypto.Keccak256([]byte("dog")), proofDb)
	require.NoError(t, err)
	require.Equal(t, []byte("puppy"), got)
}
