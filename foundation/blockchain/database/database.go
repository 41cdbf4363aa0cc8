// Package database handles all the lower level support for maintaining the
// certificate ledger in storage and tracking the head of the chain.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the ledger. A Write must
// be atomic from the reader's perspective and must reject a block whose hash
// already exists with ErrDuplicateHash. HighestNumber reports the largest
// block number held, even when lower numbers are missing.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	HighestNumber() uint64
	Close() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator walks the ledger in ascending block number.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData), nil
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// Database manages the ledger storage and the current head of the chain.
type Database struct {
	mu          sync.RWMutex
	difficulty  uint16
	latestBlock Block
	storage     Storage
}

// New constructs a new database over the specified storage and loads the
// current head of the chain. Integrity of the stored blocks is not checked
// here, that is a reporting concern handled by the caller.
func New(storage Storage, difficulty uint16, evHandler func(v string, args ...any)) (*Database, error) {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	db := Database{
		difficulty: difficulty,
		storage:    storage,
	}

	iter := db.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		db.latestBlock = ToBlock(blockData)
	}

	// Iteration stops at the first missing block. Blocks stored past a gap
	// still define the head so new blocks never reuse their numbers.
	if top := storage.HighestNumber(); top > db.latestBlock.Header.Number {
		blockData, err := storage.GetBlock(top)
		if err != nil {
			return nil, fmt.Errorf("reading head blk[%d]: %w", top, err)
		}

		evHandler("database: New: WARNING: blocks missing between blk[%d] and head blk[%d]", db.latestBlock.Header.Number, top)
		db.latestBlock = ToBlock(blockData)
	}

	if db.latestBlock.Hash != "" {
		evHandler("database: New: loaded ledger: head blk[%d]: hash[%s]", db.latestBlock.Header.Number, db.latestBlock.Hash)
	}

	return &db, nil
}

// Close closes the open storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Difficulty returns the difficulty blocks are mined at.
func (db *Database) Difficulty() uint16 {
	return db.difficulty
}

// LatestBlock returns the latest block. The boolean is false when the
// ledger is empty.
func (db *Database) LatestBlock() (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock, db.latestBlock.Hash != ""
}

// Write appends a new block to the ledger. The block must extend the
// current head, otherwise ErrConcurrentMutation is returned and nothing is
// written.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := block.ValidateBlock(db.latestBlock, db.difficulty); err != nil {
		return err
	}

	if err := db.storage.Write(NewBlockData(block)); err != nil {
		return fmt.Errorf("writing blk[%d]: %w", block.Header.Number, err)
	}

	db.latestBlock = block

	return nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// block number 1. Every call returns a new iterator.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.storage.ForEach()}
}

// GetBlock searches the ledger to locate and return the contents of the
// specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	blockData, err := db.storage.GetBlock(num)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Block{}, err
		}
		return Block{}, fmt.Errorf("reading blk[%d]: %w", num, err)
	}

	return ToBlock(blockData), nil
}
