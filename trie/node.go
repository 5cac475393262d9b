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

import "fmt"

// node is the trie's tagged variant. The Empty constructor has no
// dedicated struct: Go's nil already is the zero-allocation "no subtree"
// value, and every node implementation below treats a nil node the same
// way go-ethereum's fullNode treats a nil child slot.
//
//	Empty       -> nil
//	Leaf        -> *leafNode
//	Extension   -> *extensionNode
//	Branch      -> *branchNode
//	hash ref    -> hashNode (a child/root reference not yet resolved)
type node interface {
	fstring(indent string) string
	// cache returns the node's memoized hash reference and whether the
	// node has been mutated since it was last hashed.
	cache() (hash []byte, dirty bool)
}

// nodeFlag caches a node's hash across repeated Hash()/Commit() calls and
// marks whether it still needs recomputing.
type nodeFlag struct {
	hash  []byte // cached RLP-hash-or-embed reference, nil until computed
	dirty bool   // true if this node has never been hashed since it was built
}

type leafNode struct {
	Key   []byte // nibble path, no terminator
	Value []byte
	flags nodeFlag
}

type extensionNode struct {
	Key   []byte // nibble path, always non-empty
	Child node   // never nil; *branchNode after normalization
	flags nodeFlag
}

type branchNode struct {
	Children [16]node
	Value    []byte // terminator value; nil means "no value at this node"
	flags    nodeFlag
}

// hashNode is an unresolved 32-byte reference to a node stored under its
// Keccak-256 hash. It is swapped for the real node lazily, on the first
// traversal that needs it (resolve in trie.go).
type hashNode []byte

func newLeaf(key, value []byte) *leafNode {
	return &leafNode{Key: key, Value: value, flags: nodeFlag{dirty: true}}
}
func newExtension(key []byte, child node) *extensionNode {
	return &extensionNode{Key: key, Child: child, flags: nodeFlag{dirty: true}}
}
func newBranch() *branchNode { return &branchNode{flags: nodeFlag{dirty: true}} }

func (n *leafNode) cache() ([]byte, bool)      { return n.flags.hash, n.flags.dirty }
func (n *extensionNode) cache() ([]byte, bool) { return n.flags.hash, n.flags.dirty }
func (n *branchNode) cache() ([]byte, bool)    { return n.flags.hash, n.flags.dirty }
func (n hashNode) cache() ([]byte, bool)       { return n, false }

func (n *leafNode) copy() *leafNode {
	c := *n
	return &c
}
func (n *extensionNode) copy() *extensionNode {
	c := *n
	return &c
}
func (n *branchNode) copy() *branchNode {
	c := *n
	return &c
}

// countEntries reports how many children are non-empty and the index of
// the last one seen, which is what delete normalization needs to decide
// whether the branch must collapse.
func (n *branchNode) countEntries() (liveChildren int, liveIndex int, hasValue bool) {
	liveIndex = -1
	for i, c := range n.Children {
		if c != nil {
			liveChildren++
			liveIndex = i
		}
	}
	return liveChildren, liveIndex, len(n.Value) != 0
}

var indices = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c", "d", "e", "f"}

func (n *leafNode) String() string      { return n.fstring("") }
func (n *extensionNode) String() string { return n.fstring("") }
func (n *branchNode) String() string    { return n.fstring("") }
func (n hashNode) String() string       { return n.fstring("") }

func (n *leafNode) fstring(ind string) string {
	return fmt.Sprintf("{%x: %x} ", n.Key, n.Value)
}

func (n *extensionNode) fstring(ind string) string {
	return fmt.Sprintf("{%x: %v} ", n.Key, n.Child.fstring(ind+"  "))
}

func (n *branchNode) fstring(ind string) string {
	resp := fmt.Sprintf("[\n%s  ", ind)
	for i, child := range &n.Children {
		if child == nil {
			resp += fmt.Sprintf("%s: <nil> ", indices[i])
		} else {
			resp += fmt.Sprintf("%s: %v", indices[i], child.fstring(ind+"  "))
		}
	}
	if len(n.Value) != 0 {
		resp += fmt.Sprintf("\n%s  value: %x", ind, n.Value)
	}
	return resp + fmt.Sprintf("\n%s] ", ind)
}

func (n hashNode) fstring(string) string { return fmt.Sprintf("<%x> ", []byte(n)) }
