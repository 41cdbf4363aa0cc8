package disk_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
	"github.com/ardanlabs/certledger/foundation/blockchain/storage/disk"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func blockData(num uint64, hash string) database.BlockData {
	return database.BlockData{
		Hash: hash,
		Header: database.BlockHeader{
			Number:    num,
			TimeStamp: time.Date(2024, 1, 2, 3, 4, 5, 678901000, time.UTC),
			Nonce:     num * 10,
		},
	}
}

func Test_Disk(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "blocks")

	t.Log("Given the need to store blocks on disk.")
	{
		d, err := disk.New(dbPath)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open disk storage: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to open disk storage.", success)

		t.Log("\tWhen writing blocks.")
		{
			for i, hash := range []string{"aa", "bb", "cc"} {
				if err := d.Write(blockData(uint64(i+1), hash)); err != nil {
					t.Fatalf("\t%s\tShould be able to write blk %d: %v", failed, i+1, err)
				}
			}
			t.Logf("\t%s\tShould be able to write three blocks.", success)

			if _, err := os.Stat(filepath.Join(dbPath, "2.json")); err != nil {
				t.Fatalf("\t%s\tShould store one file per block: %v", failed, err)
			}
			t.Logf("\t%s\tShould store one file per block.", success)

			entries, err := os.ReadDir(dbPath)
			if err != nil || len(entries) != 3 {
				t.Fatalf("\t%s\tShould leave no temporary files behind: %d, %v", failed, len(entries), err)
			}
			t.Logf("\t%s\tShould leave no temporary files behind.", success)

			if err := d.Write(blockData(4, "bb")); !errors.Is(err, database.ErrDuplicateHash) {
				t.Fatalf("\t%s\tShould reject a duplicate hash: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a duplicate hash.", success)

			if err := d.Write(blockData(2, "dd")); err == nil {
				t.Fatalf("\t%s\tShould not overwrite an existing block.", failed)
			}
			t.Logf("\t%s\tShould not overwrite an existing block.", success)
		}

		t.Log("\tWhen reading blocks back.")
		{
			bd, err := d.GetBlock(2)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to read blk 2: %v", failed, err)
			}
			exp := blockData(2, "bb")
			if bd.Hash != exp.Hash || bd.Header.Nonce != exp.Header.Nonce || !bd.Header.TimeStamp.Equal(exp.Header.TimeStamp) {
				t.Fatalf("\t%s\tShould round trip the block: %+v", failed, bd)
			}
			t.Logf("\t%s\tShould round trip the block.", success)

			if _, err := d.GetBlock(9); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("\t%s\tShould get ErrNotFound for a missing block: %v", failed, err)
			}
			t.Logf("\t%s\tShould get ErrNotFound for a missing block.", success)

			var count int
			iter := d.ForEach()
			for _, err := iter.Next(); !iter.Done(); _, err = iter.Next() {
				if err != nil {
					t.Fatalf("\t%s\tShould be able to iterate: %v", failed, err)
				}
				count++
			}
			if count != 3 {
				t.Fatalf("\t%s\tShould iterate all blocks: %d", failed, count)
			}
			t.Logf("\t%s\tShould iterate all blocks.", success)
		}

		t.Log("\tWhen reopening the storage.")
		{
			d2, err := disk.New(dbPath)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to reopen: %v", failed, err)
			}

			if err := d2.Write(blockData(4, "cc")); !errors.Is(err, database.ErrDuplicateHash) {
				t.Fatalf("\t%s\tShould remember existing hashes: %v", failed, err)
			}
			t.Logf("\t%s\tShould remember existing hashes.", success)

			if d2.HighestNumber() != 3 {
				t.Fatalf("\t%s\tShould report the highest block number: %d", failed, d2.HighestNumber())
			}
			t.Logf("\t%s\tShould report the highest block number.", success)
		}

		t.Log("\tWhen a block file in the middle is removed.")
		{
			if err := os.Remove(filepath.Join(dbPath, "2.json")); err != nil {
				t.Fatalf("\t%s\tShould be able to remove blk 2: %v", failed, err)
			}

			d3, err := disk.New(dbPath)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to reopen: %v", failed, err)
			}

			if d3.HighestNumber() != 3 {
				t.Fatalf("\t%s\tShould still see blocks past the gap: %d", failed, d3.HighestNumber())
			}
			t.Logf("\t%s\tShould still see blocks past the gap.", success)

			if err := d3.Write(blockData(4, "cc")); !errors.Is(err, database.ErrDuplicateHash) {
				t.Fatalf("\t%s\tShould index hashes past the gap: %v", failed, err)
			}
			t.Logf("\t%s\tShould index hashes past the gap.", success)
		}
	}
}
