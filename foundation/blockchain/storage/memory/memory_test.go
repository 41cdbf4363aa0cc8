package memory_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
	"github.com/ardanlabs/certledger/foundation/blockchain/storage/memory"
)

func blockData(num uint64, hash string) database.BlockData {
	return database.BlockData{
		Hash:   hash,
		Header: database.BlockHeader{Number: num},
	}
}

func Test_Memory(t *testing.T) {
	m, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct memory storage: %s", err)
	}

	if err := m.Write(blockData(1, "aa")); err != nil {
		t.Fatalf("Should be able to write blk 1: %s", err)
	}

	if err := m.Write(blockData(3, "bb")); err == nil {
		t.Fatalf("Should not be able to write out of order.")
	}

	if err := m.Write(blockData(2, "aa")); !errors.Is(err, database.ErrDuplicateHash) {
		t.Fatalf("Should reject a duplicate hash: %v", err)
	}

	if err := m.Write(blockData(2, "bb")); err != nil {
		t.Fatalf("Should be able to write blk 2: %s", err)
	}

	if _, err := m.GetBlock(3); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("Should get ErrNotFound past the head: %v", err)
	}

	// Iteration must be restartable.
	for range 2 {
		var hashes []string
		iter := m.ForEach()
		for bd, err := iter.Next(); !iter.Done(); bd, err = iter.Next() {
			if err != nil {
				t.Fatalf("Should be able to iterate: %s", err)
			}
			hashes = append(hashes, bd.Hash)
		}

		if len(hashes) != 2 || hashes[0] != "aa" || hashes[1] != "bb" {
			t.Fatalf("Should iterate in order: %v", hashes)
		}
	}
}
