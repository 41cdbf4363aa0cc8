package state

import (
	"github.com/ardanlabs/certledger/foundation/blockchain/database"
	"github.com/ardanlabs/certledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// Head returns the block with the highest number. The boolean is false
// when the ledger is empty.
func (s *State) Head() (database.Block, bool) {
	return s.db.LatestBlock()
}

// ForEach returns a new iterator over the ledger in ascending block number.
func (s *State) ForEach() database.DatabaseIterator {
	return s.db.ForEach()
}

// RetrieveBlock returns the block for the specified number.
func (s *State) RetrieveBlock(num uint64) (database.Block, error) {
	return s.db.GetBlock(num)
}

// RetrieveBlocks returns the blocks in the range [from, to]. A to value of
// zero means up to the head.
func (s *State) RetrieveBlocks(from uint64, to uint64) ([]database.Block, error) {
	if from == 0 {
		from = 1
	}

	head, exists := s.db.LatestBlock()
	if !exists {
		return nil, nil
	}

	if to == 0 || to > head.Header.Number {
		to = head.Header.Number
	}

	var blocks []database.Block
	for num := from; num <= to; num++ {
		block, err := s.db.GetBlock(num)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}
