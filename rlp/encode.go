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

import (
	"fmt"
	"math/big"
	"math/bits"
	"sync"

	"github.com/taraxa-evm/mpt-core/common"
)

const (
	// EmptyString is the encoding of the zero-length byte string.
	EmptyString = 0x80
	// EmptyList is the encoding of the zero-element list.
	EmptyList = 0xC0
)

// RawValue is an already-encoded RLP value, spliced into the output
// verbatim. The bytes are not validated.
type RawValue []byte

// Encoder assembles an RLP encoding incrementally. Appended strings and raw
// bytes go straight into a flat payload buffer; a list header can't be
// written until its list closes (the header encodes the payload size), so
// open lists are tracked on the side and their headers merged into the
// output when Bytes is called.
//
// The zero Encoder is ready for use. Encoders may be reused via Reset but
// are not safe for concurrent use.
type Encoder struct {
	payload []byte     // everything except list headers
	heads   []listHead // lists, in opening order
	open    []int      // indexes into heads of the lists not yet closed
	headLen int        // total encoded size of the closed list headers
}

type listHead struct {
	payloadStart int // offset into payload where the list's content begins
	sizeAtStart  int // encoder's total encoded size when the list opened
	size         int // content size incl. nested headers; -1 while open
}

func (e *Encoder) Reset() {
	e.payload = e.payload[:0]
	e.heads = e.heads[:0]
	e.open = e.open[:0]
	e.headLen = 0
}

// size is the total encoded size so far, not counting still-open lists'
// headers.
func (e *Encoder) size() int {
	return len(e.payload) + e.headLen
}

// ListStart opens a list and returns a handle to pass to ListEnd. Lists
// nest; they must be closed innermost-first.
func (e *Encoder) ListStart() int {
	e.heads = append(e.heads, listHead{
		payloadStart: len(e.payload),
		sizeAtStart:  e.size(),
		size:         -1,
	})
	h := len(e.heads) - 1
	e.open = append(e.open, h)
	return h
}

// ListEnd closes the list opened by the matching ListStart.
func (e *Encoder) ListEnd(h int) {
	if len(e.open) == 0 || e.open[len(e.open)-1] != h {
		panic("rlp: ListEnd does not match the innermost open list")
	}
	e.open = e.open[:len(e.open)-1]
	hd := &e.heads[h]
	hd.size = e.size() - hd.sizeAtStart
	e.headLen += headerSize(hd.size)
}

// AppendRaw splices pre-encoded bytes into the output verbatim.
func (e *Encoder) AppendRaw(b ...byte) {
	e.payload = append(e.payload, b...)
}

func (e *Encoder) AppendEmptyString() {
	e.payload = append(e.payload, EmptyString)
}

// AppendString encodes b as an RLP byte string.
func (e *Encoder) AppendString(b []byte) {
	switch {
	case len(b) == 1 && b[0] < EmptyString:
		// a single byte below 0x80 is its own encoding
		e.payload = append(e.payload, b[0])
	case len(b) < 56:
		e.payload = append(e.payload, EmptyString+byte(len(b)))
		e.payload = append(e.payload, b...)
	default:
		e.payload = appendLongHeader(e.payload, 0xB7, uint64(len(b)))
		e.payload = append(e.payload, b...)
	}
}

// AppendUint encodes v as the RLP string of its minimal big-endian bytes;
// zero encodes as the empty string.
func (e *Encoder) AppendUint(v uint64) {
	switch {
	case v == 0:
		e.AppendEmptyString()
	case v < EmptyString:
		e.payload = append(e.payload, byte(v))
	default:
		n := byteLen(v)
		e.payload = append(e.payload, EmptyString+byte(n))
		e.payload = appendBigEndian(e.payload, v, n)
	}
}

// AppendBigInt encodes a non-negative big integer like AppendUint.
func (e *Encoder) AppendBigInt(v *big.Int) error {
	switch {
	case v == nil || v.Cmp(common.Big0) == 0:
		e.AppendEmptyString()
	case v.Cmp(common.Big0) < 0:
		return fmt.Errorf("rlp: cannot encode negative big.Int")
	default:
		e.AppendString(v.Bytes())
	}
	return nil
}

// Bytes renders the finished encoding: the payload with every list header
// inserted at the position where its list begins. Headers were recorded in
// opening order, which is exactly position order with outer lists first.
func (e *Encoder) Bytes() []byte {
	if len(e.open) != 0 {
		panic("rlp: Bytes called with a list still open")
	}
	out := make([]byte, 0, e.size())
	pos := 0
	for _, hd := range e.heads {
		out = append(out, e.payload[pos:hd.payloadStart]...)
		if hd.size < 56 {
			out = append(out, EmptyList+byte(hd.size))
		} else {
			out = appendLongHeader(out, 0xF7, uint64(hd.size))
		}
		pos = hd.payloadStart
	}
	return append(out, e.payload[pos:]...)
}

// headerSize is the encoded size of a string or list header for a payload
// of the given size.
func headerSize(size int) int {
	if size < 56 {
		return 1
	}
	return 1 + byteLen(uint64(size))
}

// appendLongHeader writes the long-form header for a >55-byte payload:
// the tag plus the length of the big-endian size, then the size itself.
func appendLongHeader(dst []byte, tag byte, size uint64) []byte {
	n := byteLen(size)
	dst = append(dst, tag+byte(n))
	return appendBigEndian(dst, size, n)
}

// appendBigEndian writes the low n bytes of v in big-endian order.
func appendBigEndian(dst []byte, v uint64, n int) []byte {
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*uint(i))))
	}
	return dst
}

// byteLen is the minimal number of bytes needed to represent v (1 for 0).
func byteLen(v uint64) int {
	if v == 0 {
		return 1
	}
	return (bits.Len64(v) + 7) / 8
}

var encoderPool = sync.Pool{
	New: func() interface{} { return new(Encoder) },
}

// EncodeToBytes returns the RLP encoding of v. Supported types: []byte,
// string, [][]byte, uint/uint64, *big.Int, Item, RawValue (spliced as-is)
// and []interface{} of the above (encoded as a list).
func EncodeToBytes(v interface{}) ([]byte, error) {
	e := encoderPool.Get().(*Encoder)
	defer encoderPool.Put(e)
	e.Reset()
	if err := e.appendAny(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

func (e *Encoder) appendAny(v interface{}) error {
	switch v := v.(type) {
	case RawValue:
		e.AppendRaw(v...)
	case Item:
		appendItem(e, v)
	case []byte:
		e.AppendString(v)
	case string:
		e.AppendString([]byte(v))
	case uint:
		e.AppendUint(uint64(v))
	case uint64:
		e.AppendUint(v)
	case *big.Int:
		return e.AppendBigInt(v)
	case [][]byte:
		h := e.ListStart()
		for _, el := range v {
			e.AppendString(el)
		}
		e.ListEnd(h)
	case []interface{}:
		h := e.ListStart()
		for _, el := range v {
			if err := e.appendAny(el); err != nil {
				return err
			}
		}
		e.ListEnd(h)
	default:
		return fmt.Errorf("rlp: type %T is not RLP-encodable", v)
	}
	return nil
}
