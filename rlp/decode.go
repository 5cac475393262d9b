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

package rlp

// This file provides the "raw" decoding primitives the trie node codec is
// built on (Split/SplitString/SplitList/CountValues): the node codec never
// needs a full reflection-based Decode, only enough to peel one item at a
// time off a byte string.

// Kind represents the kind of value contained in an RLP stream.
type Kind int

const (
	Byte Kind = iota
	String
	List
)

func (k Kind) String() string {
	switch k {
	case Byte:
		return "byte"
	case String:
		return "string"
	case List:
		return "list"
	default:
		return "invalid kind"
	}
}

// Split cuts the first item off b and returns its kind, its content
// (without the header) and the remaining bytes. It returns a
// *MalformedEncodingError on truncated input or a non-minimal length header.
func Split(b []byte) (k Kind, content, rest []byte, err error) {
	if len(b) == 0 {
		return 0, nil, nil, errf("input too short")
	}
	tag := b[0]
	switch {
	case tag < 0x80:
		return Byte, b[:1], b[1:], nil
	case tag < 0xB8:
		size := uint64(tag - 0x80)
		content, rest, err = splitFixed(b[1:], size)
		if err == nil && size == 1 && content[0] < 0x80 {
			return 0, nil, nil, errf("non-minimal encoding: single byte below 0x80 must encode as itself")
		}
		return String, content, rest, err
	case tag < 0xC0:
		size, rest, err := readSize(b[1:], tag-0xB7)
		if err != nil {
			return 0, nil, nil, err
		}
		content, rest, err = splitFixed(rest, size)
		return String, content, rest, err
	case tag < 0xF8:
		size := uint64(tag - 0xC0)
		content, rest, err = splitFixed(b[1:], size)
		return List, content, rest, err
	default:
		size, rest, err := readSize(b[1:], tag-0xF7)
		if err != nil {
			return 0, nil, nil, err
		}
		content, rest, err = splitFixed(rest, size)
		return List, content, rest, err
	}
}

func splitFixed(b []byte, size uint64) (content, rest []byte, err error) {
	if uint64(len(b)) < size {
		return nil, nil, errf("input too short")
	}
	return b[:size], b[size:], nil
}

// readSize reads a big-endian length header of nbytes bytes from b,
// rejecting non-minimal (leading-zero, or small-enough-to-fit-inline) forms.
func readSize(b []byte, nbytes byte) (uint64, []byte, error) {
	if int(nbytes) > len(b) {
		return 0, nil, errf("input too short")
	}
	var size uint64
	switch nbytes {
	case 1:
		size = uint64(b[0])
	case 2, 3, 4, 5, 6, 7, 8:
		start := int(8 - nbytes)
		var buf [8]byte
		copy(buf[start:], b[:nbytes])
		for _, c := range buf {
			size = size<<8 | uint64(c)
		}
	default:
		return 0, nil, errf("invalid length-of-length byte")
	}
	if b[0] == 0 {
		return 0, nil, errf("non-minimal length encoding: leading zero byte")
	}
	if size <= 55 {
		return 0, nil, errf("non-minimal length encoding: size %d fits in a single byte header", size)
	}
	return size, b[nbytes:], nil
}

// SplitString splits b into the content of an RLP string and any remaining
// bytes after it.
func SplitString(b []byte) (content, rest []byte, err error) {
	k, content, rest, err := Split(b)
	if err != nil {
		return nil, nil, err
	}
	if k == List {
		return nil, nil, errf("expected string, got list")
	}
	return content, rest, nil
}

// SplitList splits b into the content of an RLP list and any remaining
// bytes after it.
func SplitList(b []byte) (content, rest []byte, err error) {
	k, content, rest, err := Split(b)
	if err != nil {
		return nil, nil, err
	}
	if k != List {
		return nil, nil, errf("expected list, got string")
	}
	return content, rest, nil
}

// CountValues counts the number of top-level values (strings or nested
// lists) encoded one after another in b.
func CountValues(b []byte) (int, error) {
	i := 0
	for len(b) > 0 {
		_, _, rest, err := Split(b)
		if err != nil {
			return 0, err
		}
		b = rest
		i++
	}
	return i, nil
}

// SplitAll splits b into its top-level items' content (headers stripped).
func SplitAll(b []byte) (items [][]byte, err error) {
	for len(b) > 0 {
		_, content, rest, err := Split(b)
		if err != nil {
			return nil, err
		}
		items = append(items, content)
		b = rest
	}
	return items, nil
}

// Element is one top-level value inside an RLP list, retaining both its
// Kind/Content (header stripped) and its Raw encoding (header included, as
// needed to splice an embedded child node back in verbatim).
type Element struct {
	Kind    Kind
	Content []byte
	Raw     []byte
}

// SplitElements splits b, the content of an RLP list, into its top-level
// elements.
func SplitElements(b []byte) (items []Element, err error) {
	for len(b) > 0 {
		k, content, rest, err := Split(b)
		if err != nil {
			return nil, err
		}
		items = append(items, Element{Kind: k, Content: content, Raw: b[:len(b)-len(rest)]})
		b = rest
	}
	return items, nil
}
