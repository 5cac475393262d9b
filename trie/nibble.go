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

// Trie keys are dealt with in two distinct encodings:
//
// KEYBYTES holds the actual key bytes and nothing else; it is what callers
// of Get/Put/Delete pass in.
//
// NIBBLES holds one byte per 4-bit nibble of the key, high nibble first.
// Unlike go-ethereum's HEX encoding this carries no trailing terminator
// nibble: whether a node is value-bearing is already explicit in this
// package's node sum type (leafNode vs. extensionNode vs. branchNode), so
// there's nothing left for a terminator nibble to disambiguate.
//
// HEX-PREFIX (HP, called "compact" in go-ethereum, "hex prefix" in the
// Yellow Paper) packs a NIBBLES path plus a leaf/extension flag and parity
// bit into a byte string, for use in the wire encoding of a node.

// bytesToNibbles splits each byte of key into two nibbles, high nibble first.
func bytesToNibbles(key []byte) []byte {
	nibbles := make([]byte, len(key)*2)
	for i, b := range key {
		nibbles[i*2] = b >> 4
		nibbles[i*2+1] = b & 0x0f
	}
	return nibbles
}

// nibblesToBytes packs an even-length nibble path back into bytes.
// Panics on an odd-length path: callers must only invoke this on paths that
// are known (by construction) to represent whole keys.
func nibblesToBytes(nibbles []byte) []byte {
	if len(nibbles)&1 != 0 {
		panic("trie: can't convert an odd-length nibble path to bytes")
	}
	key := make([]byte, len(nibbles)/2)
	decodeNibblePairs(nibbles, key)
	return key
}

func decodeNibblePairs(nibbles, bytes []byte) {
	for bi, ni := 0, 0; ni < len(nibbles); bi, ni = bi+1, ni+2 {
		bytes[bi] = nibbles[ni]<<4 | nibbles[ni+1]
	}
}

// HP flag nibble: 2*is_leaf + (path length mod 2).
const (
	hpFlagExtensionEven = 0
	hpFlagExtensionOdd  = 1
	hpFlagLeafEven      = 2
	hpFlagLeafOdd       = 3
)

// hpEncode packs a nibble path and its leaf/extension flag into the
// hex-prefix byte form.
func hpEncode(path []byte, isLeaf bool) []byte {
	odd := len(path)&1 == 1
	flag := byte(0)
	if isLeaf {
		flag = 2
	}
	if odd {
		flag |= 1
	}
	if !odd {
		out := make([]byte, len(path)/2+1)
		out[0] = flag << 4
		decodeNibblePairs(path, out[1:])
		return out
	}
	out := make([]byte, len(path)/2+1)
	out[0] = flag<<4 | path[0]
	decodeNibblePairs(path[1:], out[1:])
	return out
}

// hpDecode inverts hpEncode, reporting the leaf/extension flag it recovers.
func hpDecode(enc []byte) (path []byte, isLeaf bool, err error) {
	if len(enc) == 0 {
		return nil, false, errHPEmpty
	}
	flag := enc[0] >> 4
	if flag > 3 {
		return nil, false, errHPBadFlag
	}
	isLeaf = flag >= 2
	odd := flag&1 == 1
	nibbleCount := (len(enc) - 1) * 2
	if odd {
		nibbleCount++
	}
	path = make([]byte, nibbleCount)
	pos := 0
	if odd {
		path[0] = enc[0] & 0x0f
		pos = 1
	}
	for _, b := range enc[1:] {
		path[pos] = b >> 4
		path[pos+1] = b & 0x0f
		pos += 2
	}
	return path, isLeaf, nil
}

// commonPrefixLen returns the length of the common prefix of a and b.
func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for ; i < n; i++ {
		if a[i] != b[i] {
			break
		}
	}
	return i
}
