// Copyright 2017 The go-ethereum Authors
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
	"errors"
	"fmt"
)

var (
	errHPEmpty   = errors.New("trie: hex-prefix encoding is empty")
	errHPBadFlag = errors.New("trie: hex-prefix encoding has an invalid flag nibble")
)

// ErrEmptyExtension is raised when a decoded extension node has a
// zero-length path or an empty child.
var ErrEmptyExtension = errors.New("trie: invariant violation: empty extension node")

// ErrSingletonBranch is raised when a decoded branch node has fewer than
// two live entries, a shape deletes always collapse away.
var ErrSingletonBranch = errors.New("trie: invariant violation: uncollapsed singleton branch")

// InvariantViolationError wraps a structural invariant failure. These
// indicate an engine bug or a corrupted store and should be unreachable in
// correct code over an intact store.
type InvariantViolationError struct {
	Cause error
	At    string // the operation where the violation was detected
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("trie: invariant violation during %s: %v", e.At, e.Cause)
}

func (e *InvariantViolationError) Unwrap() error { return e.Cause }

// MissingNodeError is returned when a 32-byte reference reached during
// traversal has no matching entry in the backing store, which means the
// store is corrupted or the root belongs to a different store.
type MissingNodeError struct {
	NodeHash []byte // the hash that resolve() looked up and didn't find
	Path     []byte // the nibble path leading to that hash
}

func (err *MissingNodeError) Error() string {
	return fmt.Sprintf("trie: missing node %x (path %x)", err.NodeHash, err.Path)
}

// StoreIOError wraps an underlying adapter failure, propagated verbatim
// from Database.Get/Put.
type StoreIOError struct {
	Cause error
	Op    string
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("trie: store I/O error during %s: %v", e.Op, e.Cause)
}

func (e *StoreIOError) Unwrap() error { return e.Cause }
