package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taraxa-evm/mpt-core/common"
)

// These digests pin the hash to pre-standardization Keccak (padding byte
// 0x01); SHA3-256 produces different values for the same inputs.
func TestKeccak256(t *testing.T) {
	require.Equal(t,
		common.HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		Keccak256Hash(nil))
	require.Equal(t, EmptyBytesKeccak256, Keccak256Hash(nil))

	require.Equal(t,
		common.HexToHash("4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"),
		Keccak256Hash([]byte("abc")))

	// Keccak256 and Keccak256Hash agree, and concatenation of the input
	// slices is what gets hashed.
	require.Equal(t, Keccak256Hash([]byte("abc")).Bytes(), Keccak256([]byte("ab"), []byte("c")))

	enc, err := hex.DecodeString("c98320646f8476657262")
	require.NoError(t, err)
	require.Len(t, Keccak256(enc), common.HashLength)
}
