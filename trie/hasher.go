// Copyright 2016 The go-ethereum Authors
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
	"fmt"
	"sync"

	"github.com/taraxa-evm/mpt-core/common"
	"github.com/taraxa-evm/mpt-core/crypto"
	"github.com/taraxa-evm/mpt-core/rlp"
)

// hasher turns nodes into child/root references and back: a node whose RLP
// encoding is under 32 bytes is embedded verbatim in its parent, anything
// larger is stored under its Keccak-256 hash and referenced by it.
type hasher struct {
	sha crypto.KeccakState
	enc rlp.Encoder
}

var hasherPool = sync.Pool{
	New: func() interface{} {
		return &hasher{sha: crypto.NewKeccakState()}
	},
}

func newHasher() *hasher {
	return hasherPool.Get().(*hasher)
}

func returnHasherToPool(h *hasher) {
	hasherPool.Put(h)
}

func (h *hasher) keccak256(data []byte) []byte {
	h.sha.Reset()
	h.sha.Write(data)
	out := make([]byte, 32)
	h.sha.Read(out)
	return out
}

// childReference encodes child into a reference suitable for splicing into
// its parent's RLP list: nil for Empty, a 32-byte hash, or (when the
// encoding is under 32 bytes) the raw encoded bytes themselves. The two
// non-empty forms are distinguishable by length alone, which the decoder
// relies on.
func (h *hasher) childReference(child node, store Database) ([]byte, error) {
	return h.reference(child, store, false)
}

// rootReference is like childReference but always forces hashing-and-store:
// the root of a trie is identified by a 32-byte hash even when its encoding
// would be short enough to embed.
func (h *hasher) rootReference(root node, store Database) ([]byte, error) {
	if root == nil {
		return EmptyRootHash.Bytes(), nil
	}
	return h.reference(root, store, true)
}

func (h *hasher) reference(n node, store Database, force bool) ([]byte, error) {
	switch v := n.(type) {
	case nil:
		return nil, nil
	case hashNode:
		return []byte(v), nil
	}
	// A clean node already knows its hash; recomputing is only needed when
	// the walk has to reach the store (Commit rewrites everything).
	if store == nil {
		if hash, dirty := n.cache(); !dirty && len(hash) == common.HashLength {
			return hash, nil
		}
	}
	raw, err := h.encode(n, store)
	if err != nil {
		return nil, err
	}
	if len(raw) < 32 && !force {
		return raw, nil
	}
	hash := h.keccak256(raw)
	if store != nil {
		if err := store.Put(hash, raw); err != nil {
			return nil, &StoreIOError{Cause: err, Op: "put"}
		}
	}
	setCachedReference(n, hash)
	return hash, nil
}

// setCachedReference records the hash a node was just stored or resolved
// under, so repeated Hash calls over an unchanged subtree don't re-encode it.
func setCachedReference(n node, hash []byte) {
	switch n := n.(type) {
	case *leafNode:
		n.flags = nodeFlag{hash: hash}
	case *extensionNode:
		n.flags = nodeFlag{hash: hash}
	case *branchNode:
		n.flags = nodeFlag{hash: hash}
	}
}

// encode produces a node's own RLP encoding, resolving its children to
// references first (recursively embedding or hash-and-storing them).
func (h *hasher) encode(n node, store Database) ([]byte, error) {
	switch v := n.(type) {
	case *leafNode:
		return h.encodeLeaf(v)
	case *extensionNode:
		return h.encodeExtension(v, store)
	case *branchNode:
		return h.encodeBranch(v, store)
	case hashNode:
		return nil, &InvariantViolationError{At: "encode", Cause: fmt.Errorf("unexpected unresolved hash node")}
	default:
		return nil, &InvariantViolationError{At: "encode", Cause: fmt.Errorf("%T: not a storable node", n)}
	}
}

func (h *hasher) encodeLeaf(n *leafNode) ([]byte, error) {
	h.enc.Reset()
	lh := h.enc.ListStart()
	h.enc.AppendString(hpEncode(n.Key, true))
	h.enc.AppendString(n.Value)
	h.enc.ListEnd(lh)
	return h.enc.Bytes(), nil
}

func (h *hasher) encodeExtension(n *extensionNode, store Database) ([]byte, error) {
	childRef, err := h.childReference(n.Child, store)
	if err != nil {
		return nil, err
	}
	h.enc.Reset()
	lh := h.enc.ListStart()
	h.enc.AppendString(hpEncode(n.Key, false))
	appendChildRef(&h.enc, childRef)
	h.enc.ListEnd(lh)
	return h.enc.Bytes(), nil
}

func (h *hasher) encodeBranch(n *branchNode, store Database) ([]byte, error) {
	var refs [16][]byte
	for i, c := range n.Children {
		ref, err := h.childReference(c, store)
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}
	h.enc.Reset()
	lh := h.enc.ListStart()
	for _, ref := range refs {
		appendChildRef(&h.enc, ref)
	}
	h.enc.AppendString(n.Value)
	h.enc.ListEnd(lh)
	return h.enc.Bytes(), nil
}

// appendChildRef splices a child reference into an in-progress list
// encoding: empty for Empty, an RLP string for a 32-byte hash, or the raw
// bytes spliced in verbatim for an embedded (< 32 byte) child encoding.
func appendChildRef(enc *rlp.Encoder, ref []byte) {
	switch {
	case len(ref) == 0:
		enc.AppendEmptyString()
	case len(ref) == common.HashLength:
		enc.AppendString(ref)
	default:
		enc.AppendRaw(ref...)
	}
}

// decodeNode parses the RLP encoding of a single node. raw must
// be the node's own encoding, not a reference to it (the caller resolves
// hash references to their stored bytes first, see resolve in trie.go).
func decodeNode(raw []byte) (node, error) {
	kind, content, rest, err := rlp.Split(raw)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trie: %d trailing byte(s) after node encoding", len(rest))
	}
	if kind != rlp.List {
		if len(content) == 0 {
			return nil, nil // Empty
		}
		return nil, fmt.Errorf("trie: node encoding is a non-empty byte string, want a list")
	}
	elems, err := rlp.SplitElements(content)
	if err != nil {
		return nil, err
	}
	switch len(elems) {
	case 2:
		return decodeShortNode(elems)
	case 17:
		return decodeBranchNode(elems)
	default:
		return nil, fmt.Errorf("trie: node list has %d elements, want 2 or 17", len(elems))
	}
}

func decodeShortNode(elems []rlp.Element) (node, error) {
	if elems[0].Kind != rlp.String && elems[0].Kind != rlp.Byte {
		return nil, fmt.Errorf("trie: node key element is not a byte string")
	}
	path, isLeaf, err := hpDecode(elems[0].Content)
	if err != nil {
		return nil, err
	}
	if isLeaf {
		if elems[1].Kind == rlp.List {
			return nil, fmt.Errorf("trie: leaf value element is a list, want a byte string")
		}
		return &leafNode{Key: path, Value: rlp.CopyOf(elems[1].Content)}, nil
	}
	if len(path) == 0 {
		return nil, &InvariantViolationError{At: "decodeNode", Cause: ErrEmptyExtension}
	}
	child, err := decodeChildElement(elems[1])
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, &InvariantViolationError{At: "decodeNode", Cause: ErrEmptyExtension}
	}
	return &extensionNode{Key: path, Child: child}, nil
}

func decodeBranchNode(elems []rlp.Element) (node, error) {
	n := newBranch()
	n.flags.dirty = false
	for i := 0; i < 16; i++ {
		child, err := decodeChildElement(elems[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	if elems[16].Kind == rlp.List {
		return nil, fmt.Errorf("trie: branch terminator element is a list, want a byte string")
	}
	n.Value = rlp.CopyOf(elems[16].Content)
	if len(n.Value) == 0 {
		n.Value = nil
	}
	// A canonical trie never stores a branch with fewer than two entries;
	// finding one means the store holds a node no correct engine produced.
	if liveChildren, _, hasValue := n.countEntries(); liveChildren == 0 || (liveChildren == 1 && !hasValue) {
		return nil, &InvariantViolationError{At: "decodeNode", Cause: ErrSingletonBranch}
	}
	return n, nil
}

// decodeChildElement turns one RLP element of a branch/extension's child
// slot into a node: empty string -> Empty, 32-byte string -> an unresolved
// hashNode, anything else -> an embedded node decoded in place.
func decodeChildElement(e rlp.Element) (node, error) {
	switch e.Kind {
	case rlp.List:
		return decodeNode(e.Raw)
	default:
		if len(e.Content) == 0 {
			return nil, nil
		}
		if len(e.Content) == common.HashLength {
			return hashNode(rlp.CopyOf(e.Content)), nil
		}
		return nil, fmt.Errorf("trie: invalid child reference length %d (want 0 or 32)", len(e.Content))
	}
}
