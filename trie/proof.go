// Copyright 2015 The go-ethereum Authors
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
	"bytes"

	"github.com/taraxa-evm/mpt-core/common"
)

// Prove writes a Merkle proof for key into proofDb: the encodings of every
// node on the path from the root towards key whose reference is a hash. The
// root node is always included, even when its encoding is short enough to
// be embedded elsewhere. If the trie does not contain the key, the proof
// covers the longest existing prefix and proves the key's absence.
//
// fromLevel skips that many proof elements from the root down, for callers
// that already hold the upper layers.
func (self *Trie) Prove(key []byte, fromLevel uint, proofDb Putter) error {
	mpt_key, err := self.storage_strat.MapKey(key)
	if err != nil {
		return err
	}
	// Collect all nodes on the path to key.
	nibbles := bytesToNibbles(mpt_key)
	var (
		nodes  []node
		prefix []byte
		tn     = self.root
	)
	for tn != nil {
		switch n := tn.(type) {
		case *leafNode:
			nodes = append(nodes, n)
			tn = nil
		case *extensionNode:
			nodes = append(nodes, n)
			if len(nibbles) < len(n.Key) || !bytes.Equal(n.Key, nibbles[:len(n.Key)]) {
				// The trie doesn't contain the key.
				tn = nil
			} else {
				prefix = append(prefix, nibbles[:len(n.Key)]...)
				nibbles = nibbles[len(n.Key):]
				tn = n.Child
			}
		case *branchNode:
			nodes = append(nodes, n)
			if len(nibbles) == 0 {
				tn = nil
			} else {
				prefix = append(prefix, nibbles[0])
				tn = n.Children[nibbles[0]]
				nibbles = nibbles[1:]
			}
		case hashNode:
			resolved, err := self.resolve(n, prefix)
			if err != nil {
				return err
			}
			tn = resolved
		}
	}
	hasher := newHasher()
	defer returnHasherToPool(hasher)
	for i, n := range nodes {
		raw, err := hasher.encode(n, nil)
		if err != nil {
			return err
		}
		if len(raw) < 32 && i != 0 {
			// The node is embedded in its parent's encoding and already
			// part of an earlier proof element.
			continue
		}
		if fromLevel > 0 {
			fromLevel--
			continue
		}
		if err := proofDb.Put(hasher.keccak256(raw), raw); err != nil {
			return &StoreIOError{Cause: err, Op: "put"}
		}
	}
	return nil
}

// VerifyProof checks a proof produced by Prove against rootHash. key must
// already be in trie form: callers using a key-hashing trie pass the
// Keccak-hashed key. It returns the proven value, nil when the proof shows
// the key is absent, and an error when the proof is incomplete or invalid.
func VerifyProof(rootHash common.Hash, key []byte, proofDb Getter) ([]byte, error) {
	nibbles := bytesToNibbles(key)
	want := rootHash.Bytes()
	for {
		blob, ok, err := proofDb.Get(want)
		if err != nil {
			return nil, &StoreIOError{Cause: err, Op: "get"}
		}
		if !ok {
			return nil, &MissingNodeError{NodeHash: common.CopyBytes(want)}
		}
		n, err := decodeNode(blob)
		if err != nil {
			return nil, err
		}
		rest, next, value := proofStep(n, nibbles)
		if next == nil {
			return value, nil
		}
		nibbles = rest
		want = next
	}
}

// proofStep walks as far into an in-memory node (and its embedded children)
// as key allows, stopping at the next hash reference or at a verdict.
func proofStep(n node, key []byte) (rest []byte, next []byte, value []byte) {
	for {
		switch v := n.(type) {
		case nil:
			return nil, nil, nil
		case *leafNode:
			if bytes.Equal(v.Key, key) {
				return nil, nil, v.Value
			}
			return nil, nil, nil
		case *extensionNode:
			if len(key) < len(v.Key) || !bytes.Equal(v.Key, key[:len(v.Key)]) {
				return nil, nil, nil
			}
			n, key = v.Child, key[len(v.Key):]
		case *branchNode:
			if len(key) == 0 {
				return nil, nil, v.Value
			}
			n, key = v.Children[key[0]], key[1:]
		case hashNode:
			return key, v, nil
		}
	}
}
