// Package disk implements the ability to read and write blocks to disk with
// each block stored in its own file.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// database.Storage interface.
type Disk struct {
	dbPath  string
	mu      sync.Mutex
	hashes  map[string]uint64
	highest uint64
}

// New constructs a Disk value for use. Every block file in the directory is
// indexed by hash so the uniqueness constraint holds across restarts, and
// the highest block number is tracked even when lower files are missing.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	d := Disk{
		dbPath: dbPath,
		hashes: make(map[string]uint64),
	}

	entries, err := os.ReadDir(dbPath)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		num, ok := blockNumber(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}

		blockData, err := d.GetBlock(num)
		if err != nil {
			return nil, err
		}

		d.hashes[blockData.Hash] = num
		d.highest = max(d.highest, num)
	}

	return &d, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified block and stores it on disk in a file labeled
// with the block number. The block is written to a temporary file first and
// then linked into place so readers never see a partial block.
func (d *Disk) Write(blockData database.BlockData) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if num, exists := d.hashes[blockData.Hash]; exists {
		return fmt.Errorf("hash %s stored in blk[%d]: %w", blockData.Hash, num, database.ErrDuplicateHash)
	}

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dbPath, ".blk-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	// Link fails if the block number already exists on disk.
	if err := os.Link(tmp.Name(), d.getPath(blockData.Header.Number)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("blk[%d] already exists on disk", blockData.Header.Number)
		}
		return err
	}

	d.hashes[blockData.Hash] = blockData.Header.Number
	d.highest = max(d.highest, blockData.Header.Number)

	return nil
}

// GetBlock searches the ledger on disk to locate and return the contents of
// the specified block by number.
func (d *Disk) GetBlock(num uint64) (database.BlockData, error) {

	// Open the block file for the specified number.
	f, err := os.OpenFile(d.getPath(num), os.O_RDONLY, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return database.BlockData{}, fmt.Errorf("blk[%d]: %w", num, database.ErrNotFound)
		}
		return database.BlockData{}, err
	}
	defer f.Close()

	// Decode the contents of the block.
	var blockData database.BlockData
	if err := json.NewDecoder(f).Decode(&blockData); err != nil {
		return database.BlockData{}, fmt.Errorf("decoding blk[%d]: %w", num, err)
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (d *Disk) ForEach() database.Iterator {
	return &diskIterator{disk: d}
}

// HighestNumber returns the largest block number stored on disk.
func (d *Disk) HighestNumber() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.highest
}

// Path returns the location on disk where the specified block is stored.
func (d *Disk) Path(blockNum uint64) string {
	return d.getPath(blockNum)
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(blockNum uint64) string {
	name := strconv.FormatUint(blockNum, 10)
	return filepath.Join(d.dbPath, name+".json")
}

// blockNumber parses a block file name of the form <number>.json.
func blockNumber(name string) (uint64, bool) {
	base, found := strings.CutSuffix(name, ".json")
	if !found {
		return 0, false
	}

	num, err := strconv.ParseUint(base, 10, 64)
	if err != nil || num == 0 {
		return 0, false
	}

	return num, true
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the database
// Iterator interface.
type diskIterator struct {
	disk    *Disk  // Access to the disk storage API.
	current uint64 // Current block number being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (di *diskIterator) Next() (database.BlockData, error) {
	if di.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	di.current++
	blockData, err := di.disk.GetBlock(di.current)
	if errors.Is(err, database.ErrNotFound) {
		di.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (di *diskIterator) Done() bool {
	return di.eoc
}
