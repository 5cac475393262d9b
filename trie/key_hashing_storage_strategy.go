package trie

import "github.com/taraxa-evm/mpt-core/crypto"

// KeyHashingStorageStrategy Keccak-hashes keys before they enter the trie,
// which keeps every path exactly 64 nibbles deep regardless of what keys
// callers choose.
type KeyHashingStorageStrategy byte

func (KeyHashingStorageStrategy) MapKey(key []byte) (mpt_key []byte, err error) {
	return crypto.Keccak256(key), nil
}
