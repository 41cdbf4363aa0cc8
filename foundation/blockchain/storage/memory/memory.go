// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// blocks in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.BlockData
	hashes map[string]uint64
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{hashes: make(map[string]uint64)}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified block and stores it in memory.
func (m *Memory) Write(blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if num, exists := m.hashes[blockData.Hash]; exists {
		return fmt.Errorf("hash %s stored in blk[%d]: %w", blockData.Hash, num, database.ErrDuplicateHash)
	}

	l := uint64(len(m.blocks))
	if l+1 != blockData.Header.Number {
		return fmt.Errorf("blk[%d] is out of order, exp %d", blockData.Header.Number, l+1)
	}

	m.blocks = append(m.blocks, blockData)
	m.hashes[blockData.Hash] = blockData.Header.Number

	return nil
}

// GetBlock searches the ledger to locate and return the contents of
// the specified block by number.
func (m *Memory) GetBlock(num uint64) (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num == 0 || num > uint64(len(m.blocks)) {
		return database.BlockData{}, fmt.Errorf("blk[%d]: %w", num, database.ErrNotFound)
	}

	return m.blocks[num-1], nil
}

// HighestNumber returns the number of the last block stored.
func (m *Memory) HighestNumber() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return uint64(len(m.blocks))
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// Replace swaps the stored copy of the block at the specified number without
// any checks. It exists so tests can simulate tampering with the store.
func (m *Memory) Replace(num uint64, blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if num == 0 || num > uint64(len(m.blocks)) {
		return fmt.Errorf("blk[%d]: %w", num, database.ErrNotFound)
	}

	m.blocks[num-1] = blockData

	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading blocks in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (database.BlockData, error) {
	if mi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	mi.current++
	blockData, err := mi.storage.GetBlock(mi.current)
	if errors.Is(err, database.ErrNotFound) {
		mi.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
