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

// Package trie implements Merkle Patricia Tries.
package trie

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/taraxa-evm/mpt-core/common"
)

// EmptyRootHash is the root of a trie with no entries: Keccak-256 of the
// RLP encoding of the empty byte string.
var EmptyRootHash = common.HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// StorageStrategy maps caller-facing keys to the keys actually inserted
// into the trie. DefaultStorageStrategy is the identity;
// KeyHashingStorageStrategy Keccak-hashes keys first (a "secure" trie).
type StorageStrategy interface {
	MapKey(key []byte) (mpt_key []byte, err error)
}

// Trie is a Merkle Patricia Trie over a content-addressed node store.
//
// A Trie holds one logical root. Every mutation rebuilds the nodes along the
// mutated path and leaves all previously stored nodes untouched, so roots
// from earlier Commit calls stay readable from the same store. Use New to
// load a trie from a committed root hash.
//
// Trie is not safe for concurrent use: writers must be serialized by the
// caller. Multiple readers may each hold their own Trie over the same store
// and root.
type Trie struct {
	db            Database
	root          node
	storage_strat StorageStrategy
	// decoded-node cache, keyed by node hash. Purely an optimization:
	// resolving through it must produce the same nodes as resolving
	// through the store.
	node_cache *lru.Cache
}

// New creates a trie over db, positioned at root. The zero hash and the
// well-known empty root both denote an empty trie; any other root must be
// present in db or New fails with MissingNodeError. cache_size bounds the
// decoded-node LRU cache; zero disables caching.
func New(root common.Hash, db Database, cache_size int, storage_strat StorageStrategy) (*Trie, error) {
	if db == nil {
		panic("trie.New called without a backing database")
	}
	if storage_strat == nil {
		storage_strat = DefaultStorageStrategy(0)
	}
	trie := &Trie{
		db:            db,
		storage_strat: storage_strat,
	}
	if cache_size > 0 {
		trie.node_cache, _ = lru.New(cache_size)
	}
	if !root.IsZero() && root != EmptyRootHash {
		rootnode, err := trie.resolve(hashNode(root.Bytes()), nil)
		if err != nil {
			return nil, err
		}
		trie.root = rootnode
	}
	return trie, nil
}

// NewSecure creates a trie that Keccak-hashes every key before insertion,
// so attacker-chosen keys can't construct pathologically deep paths.
func NewSecure(root common.Hash, db Database, cache_size int) (*Trie, error) {
	return New(root, db, cache_size, KeyHashingStorageStrategy(0))
}

// Get returns the value stored under key, or nil if the key is absent.
func (self *Trie) Get(key []byte) ([]byte, error) {
	mpt_key, err := self.storage_strat.MapKey(key)
	if err != nil {
		return nil, err
	}
	nibbles := bytesToNibbles(mpt_key)
	value, newroot, didResolve, err := self.lookup(self.root, nibbles, 0)
	if err == nil && didResolve {
		self.root = newroot
	}
	return value, err
}

// Put maps key to value. An empty value is equivalent to Delete: the trie
// never distinguishes "mapped to empty" from "absent".
func (self *Trie) Put(key, value []byte) error {
	mpt_key, err := self.storage_strat.MapKey(key)
	if err != nil {
		return err
	}
	nibbles := bytesToNibbles(mpt_key)
	if len(value) == 0 {
		newroot, _, err := self.remove(self.root, nil, nibbles)
		if err != nil {
			return err
		}
		self.root = newroot
		return nil
	}
	newroot, err := self.insert(self.root, nil, nibbles, common.CopyBytes(value))
	if err != nil {
		return err
	}
	self.root = newroot
	return nil
}

// Delete removes key from the trie. Deleting an absent key is a no-op.
func (self *Trie) Delete(key []byte) error {
	mpt_key, err := self.storage_strat.MapKey(key)
	if err != nil {
		return err
	}
	nibbles := bytesToNibbles(mpt_key)
	newroot, _, err := self.remove(self.root, nil, nibbles)
	if err != nil {
		return err
	}
	self.root = newroot
	return nil
}

// Hash returns the root hash of the trie without writing anything to the
// backing store.
func (self *Trie) Hash() common.Hash {
	hasher := newHasher()
	defer returnHasherToPool(hasher)
	ref, err := hasher.rootReference(self.root, nil)
	if err != nil {
		// Hashing touches no I/O, so the only failures are structural
		// invariant violations, which are engine bugs.
		panic(err)
	}
	return common.BytesToHash(ref)
}

// Commit writes every node reachable from the current root whose encoding
// is >= 32 bytes into the backing store and returns the root hash. The trie
// remains usable afterwards; a later New over the same store and the
// returned hash reconstructs exactly this mapping.
func (self *Trie) Commit() (common.Hash, error) {
	hasher := newHasher()
	defer returnHasherToPool(hasher)
	ref, err := hasher.rootReference(self.root, self.db)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(ref), nil
}

func (self *Trie) lookup(origNode node, nibbles []byte, pos int) (value []byte, newnode node, didResolve bool, err error) {
	switch n := (origNode).(type) {
	case nil:
		return nil, nil, false, nil
	case *leafNode:
		if !bytes.Equal(n.Key, nibbles[pos:]) {
			// key not found in trie
			return nil, n, false, nil
		}
		return n.Value, n, false, nil
	case *extensionNode:
		if len(nibbles)-pos < len(n.Key) || !bytes.Equal(n.Key, nibbles[pos:pos+len(n.Key)]) {
			return nil, n, false, nil
		}
		value, newnode, didResolve, err = self.lookup(n.Child, nibbles, pos+len(n.Key))
		if err == nil && didResolve {
			n = n.copy()
			n.Child = newnode
		}
		return value, n, didResolve, err
	case *branchNode:
		if pos == len(nibbles) {
			return n.Value, n, false, nil
		}
		value, newnode, didResolve, err = self.lookup(n.Children[nibbles[pos]], nibbles, pos+1)
		if err == nil && didResolve {
			n = n.copy()
			n.Children[nibbles[pos]] = newnode
		}
		return value, n, didResolve, err
	case hashNode:
		child, err := self.resolve(n, nibbles[:pos])
		if err != nil {
			return nil, n, true, err
		}
		value, newnode, _, err := self.lookup(child, nibbles, pos)
		return value, newnode, true, err
	default:
		panic(fmt.Sprintf("%T: invalid node: %v", origNode, origNode))
	}
}

func (self *Trie) insert(n node, prefix, key []byte, value []byte) (node, error) {
	switch n := n.(type) {
	case nil:
		return newLeaf(key, value), nil
	case *leafNode:
		matchlen := commonPrefixLen(n.Key, key)
		// If the whole key matches, replace the value in place.
		if matchlen == len(n.Key) && matchlen == len(key) {
			return newLeaf(n.Key, value), nil
		}
		// Otherwise branch out at the nibble where the paths diverge. A
		// path that is fully consumed by the common prefix terminates at
		// the branch itself and its value becomes the branch terminator.
		branch := newBranch()
		if matchlen == len(n.Key) {
			branch.Value = n.Value
		} else {
			branch.Children[n.Key[matchlen]] = newLeaf(n.Key[matchlen+1:], n.Value)
		}
		if matchlen == len(key) {
			branch.Value = value
		} else {
			branch.Children[key[matchlen]] = newLeaf(key[matchlen+1:], value)
		}
		if matchlen == 0 {
			return branch, nil
		}
		return newExtension(key[:matchlen], branch), nil
	case *extensionNode:
		matchlen := commonPrefixLen(n.Key, key)
		// The extension path is a prefix of the key: descend into the child.
		if matchlen == len(n.Key) {
			child, err := self.insert(n.Child, concat(prefix, key[:matchlen]...), key[matchlen:], value)
			if err != nil {
				return nil, err
			}
			return newExtension(n.Key, child), nil
		}
		// Split the extension at the divergence point. The old child keeps
		// its remaining suffix behind a shorter extension, or sits in the
		// branch slot directly when no suffix remains.
		branch := newBranch()
		if matchlen+1 == len(n.Key) {
			branch.Children[n.Key[matchlen]] = n.Child
		} else {
			branch.Children[n.Key[matchlen]] = newExtension(n.Key[matchlen+1:], n.Child)
		}
		if matchlen == len(key) {
			branch.Value = value
		} else {
			branch.Children[key[matchlen]] = newLeaf(key[matchlen+1:], value)
		}
		if matchlen == 0 {
			return branch, nil
		}
		return newExtension(key[:matchlen], branch), nil
	case *branchNode:
		if len(key) == 0 {
			n = n.copy()
			n.Value = value
			n.flags = nodeFlag{dirty: true}
			return n, nil
		}
		child, err := self.insert(n.Children[key[0]], concat(prefix, key[0]), key[1:], value)
		if err != nil {
			return nil, err
		}
		n = n.copy()
		n.flags = nodeFlag{dirty: true}
		n.Children[key[0]] = child
		return n, nil
	case hashNode:
		rn, err := self.resolve(n, prefix)
		if err != nil {
			return nil, err
		}
		return self.insert(rn, prefix, key, value)
	default:
		panic(fmt.Sprintf("%T: invalid node: %v", n, n))
	}
}

func (self *Trie) remove(n node, prefix, key []byte) (node, bool, error) {
	switch n := n.(type) {
	case nil:
		return nil, false, nil
	case *leafNode:
		if bytes.Equal(n.Key, key) {
			return nil, true, nil
		}
		return n, false, nil // don't replace n on mismatch
	case *extensionNode:
		matchlen := commonPrefixLen(n.Key, key)
		if matchlen < len(n.Key) {
			return n, false, nil
		}
		// The key starts with the extension path: the deletion happens
		// somewhere below. The child must survive with at least one entry
		// or collapse into the extension on the way back up.
		child, changed, err := self.remove(n.Child, concat(prefix, key[:matchlen]...), key[matchlen:])
		if err != nil || !changed {
			return n, changed, err
		}
		return self.joinExtension(n.Key, child)
	case *branchNode:
		if len(key) == 0 {
			if len(n.Value) == 0 {
				return n, false, nil
			}
			n = n.copy()
			n.flags = nodeFlag{dirty: true}
			n.Value = nil
			return self.normalizeBranch(n, prefix)
		}
		child, changed, err := self.remove(n.Children[key[0]], concat(prefix, key[0]), key[1:])
		if err != nil || !changed {
			return n, changed, err
		}
		n = n.copy()
		n.flags = nodeFlag{dirty: true}
		n.Children[key[0]] = child
		return self.normalizeBranch(n, prefix)
	case hashNode:
		rn, err := self.resolve(n, prefix)
		if err != nil {
			return nil, false, err
		}
		return self.remove(rn, prefix, key)
	default:
		panic(fmt.Sprintf("%T: invalid node: %v (%v)", n, n, key))
	}
}

// joinExtension rebuilds an extension whose child just changed, restoring
// the no-empty-extension invariant: a leaf or extension child is merged
// into this node's path, an empty child erases the extension entirely.
func (self *Trie) joinExtension(path []byte, child node) (node, bool, error) {
	switch child := child.(type) {
	case nil:
		return nil, true, nil
	case *leafNode:
		return newLeaf(concat(path, child.Key...), child.Value), true, nil
	case *extensionNode:
		return newExtension(concat(path, child.Key...), child.Child), true, nil
	case *branchNode:
		return newExtension(path, child), true, nil
	default:
		return nil, false, &InvariantViolationError{
			At:    "joinExtension",
			Cause: fmt.Errorf("%T: not a valid extension child after delete", child),
		}
	}
}

// normalizeBranch restores the no-singleton-branch invariant after a delete
// emptied one of n's slots or cleared its terminator value.
func (self *Trie) normalizeBranch(n *branchNode, prefix []byte) (node, bool, error) {
	liveChildren, liveIndex, hasValue := n.countEntries()
	switch {
	case liveChildren == 0 && !hasValue:
		// Cannot occur if the invariants held before the delete; kept so a
		// corrupted store fails loudly instead of leaving a dangling node.
		return nil, true, nil
	case liveChildren == 0:
		return newLeaf(nil, n.Value), true, nil
	case liveChildren == 1 && !hasValue:
		// The remaining entry might still be an unresolved hash; it has to
		// be loaded to know which shape the collapsed node takes.
		child := n.Children[liveIndex]
		if hash, ok := child.(hashNode); ok {
			rn, err := self.resolve(hash, concat(prefix, byte(liveIndex)))
			if err != nil {
				return nil, false, err
			}
			child = rn
		}
		switch child := child.(type) {
		case *leafNode:
			return newLeaf(concat([]byte{byte(liveIndex)}, child.Key...), child.Value), true, nil
		case *extensionNode:
			return newExtension(concat([]byte{byte(liveIndex)}, child.Key...), child.Child), true, nil
		case *branchNode:
			return newExtension([]byte{byte(liveIndex)}, child), true, nil
		default:
			return nil, false, &InvariantViolationError{
				At:    "normalizeBranch",
				Cause: fmt.Errorf("%T: not a collapsible branch child", child),
			}
		}
	}
	return n, true, nil
}

// resolve loads the node stored under hash, consulting the decoded-node
// cache first. Nodes handed out by resolve are shared and must never be
// mutated; mutating code paths copy before writing.
func (self *Trie) resolve(hash hashNode, prefix []byte) (node, error) {
	if self.node_cache != nil {
		if cached, ok := self.node_cache.Get(string(hash)); ok {
			return cached.(node), nil
		}
	}
	blob, ok, err := self.db.Get(hash)
	if err != nil {
		return nil, &StoreIOError{Cause: err, Op: "get"}
	}
	if !ok {
		return nil, &MissingNodeError{NodeHash: common.CopyBytes(hash), Path: common.CopyBytes(prefix)}
	}
	n, err := decodeNode(blob)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, &InvariantViolationError{
			At:    "resolve",
			Cause: fmt.Errorf("stored blob under %x decodes to the empty node", hash),
		}
	}
	setCachedReference(n, common.CopyBytes(hash))
	if self.node_cache != nil {
		self.node_cache.Add(string(hash), n)
	}
	return n, nil
}

// concat always allocates: node keys may be shared between nodes, so paths
// are never extended in place with append.
func concat(a []byte, b ...byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
