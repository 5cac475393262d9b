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

package ethdb

import (
	"sync"

	"github.com/taraxa-evm/mpt-core/common"
)

// MemoryDatabase is a map-backed Database for tests and ephemeral tries.
// Nothing is persisted. Values are copied on both Put and Get, so callers
// can't corrupt stored blobs through retained slices.
type MemoryDatabase struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{entries: make(map[string][]byte)}
}

func NewMemoryDatabaseWithCap(size int) *MemoryDatabase {
	return &MemoryDatabase{entries: make(map[string][]byte, size)}
}

func (db *MemoryDatabase) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.entries[string(key)] = common.CopyBytes(value)
	return nil
}

func (db *MemoryDatabase) Get(key []byte) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	entry, ok := db.entries[string(key)]
	if !ok {
		return nil, false, nil
	}
	return common.CopyBytes(entry), true, nil
}

func (db *MemoryDatabase) Has(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.entries[string(key)]
	return ok, nil
}

func (db *MemoryDatabase) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.entries, string(key))
	return nil
}

// Keys returns a snapshot of all stored keys, in no particular order.
func (db *MemoryDatabase) Keys() [][]byte {
	db.mu.RLock()
	defer db.mu.RUnlock()
	keys := make([][]byte, 0, len(db.entries))
	for key := range db.entries {
		keys = append(keys, []byte(key))
	}
	return keys
}

func (db *MemoryDatabase) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries)
}

func (db *MemoryDatabase) Close() {}

func (db *MemoryDatabase) NewBatch() Batch {
	return &memoryBatch{db: db}
}

// memoryBatch buffers writes and applies them under the database lock in
// one Write call.
type memoryBatch struct {
	db      *MemoryDatabase
	pending []batchOp
	size    int
}

type batchOp struct {
	key     string
	value   []byte
	deleted bool
}

func (b *memoryBatch) Put(key, value []byte) error {
	b.pending = append(b.pending, batchOp{key: string(key), value: common.CopyBytes(value)})
	b.size += len(value)
	return nil
}

func (b *memoryBatch) Delete(key []byte) error {
	b.pending = append(b.pending, batchOp{key: string(key), deleted: true})
	b.size += 1
	return nil
}

func (b *memoryBatch) Write() error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	for _, op := range b.pending {
		if op.deleted {
			delete(b.db.entries, op.key)
			continue
		}
		b.db.entries[op.key] = op.value
	}
	return nil
}

func (b *memoryBatch) ValueSize() int {
	return b.size
}

func (b *memoryBatch) Reset() {
	b.pending = b.pending[:0]
	b.size = 0
}
