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

// Package ethdb provides key/value store implementations backing the trie's
// content-addressed storage contract.
package ethdb

// IdealBatchSize is the value size at which batch writers should flush.
const IdealBatchSize = 100 * 1024

// Putter wraps the database write operation supported by both batches and
// regular databases.
type Putter interface {
	Put(key []byte, value []byte) error
}

// Getter wraps the database read operations. Get reports ok=false, not an
// error, when no entry exists under key.
type Getter interface {
	Get(key []byte) (value []byte, ok bool, err error)
	Has(key []byte) (bool, error)
}

// Deleter wraps the database delete operation supported by both batches and
// regular databases. The trie engine itself never deletes; Delete exists
// for external pruners.
type Deleter interface {
	Delete(key []byte) error
}

// Database wraps all database operations. All methods are safe for
// concurrent use.
type Database interface {
	Putter
	Getter
	Deleter
	Close()
	NewBatch() Batch
}

// Batch is a write-only database that commits changes to its host database
// when Write is called. Batch cannot be used concurrently.
type Batch interface {
	Putter
	Deleter
	ValueSize() int // amount of data in the batch
	Write() error
	// Reset resets the batch for reuse
	Reset()
}
