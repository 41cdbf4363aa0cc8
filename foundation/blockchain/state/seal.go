package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
)

// maxSealRetries is the number of times a seal is attempted when the head of
// the ledger moves underneath the mining operation.
const maxSealRetries = 3

// =============================================================================

// EnsureGenesis makes sure the ledger has a genesis block. When the ledger
// already has blocks the current head is returned unchanged.
func (s *State) EnsureGenesis(ctx context.Context) (database.Block, error) {
	if err := s.acquireWriter(ctx); err != nil {
		return database.Block{}, err
	}
	defer s.releaseWriter()

	return s.ensureGenesis()
}

// SealPayload mines a new block for the payload hash and appends it to the
// ledger. Reading the head, mining and appending happen inside the write
// critical section so two seals can never mine against the same parent.
func (s *State) SealPayload(ctx context.Context, payloadHash string) (database.Block, error) {
	s.evHandler("state: SealPayload: started: payload[%s]", payloadHash)
	defer s.evHandler("state: SealPayload: completed: payload[%s]", payloadHash)

	if err := s.acquireWriter(ctx); err != nil {
		return database.Block{}, err
	}
	defer s.releaseWriter()

	for attempt := 1; ; attempt++ {
		block, err := s.sealOnce(ctx, payloadHash)
		if err == nil {
			s.evHandler("viewer: block sealed: blk[%d]: hash[%s]: payload[%s]", block.Header.Number, block.Hash, payloadHash)
			return block, nil
		}

		if !errors.Is(err, database.ErrConcurrentMutation) || attempt == maxSealRetries {
			s.evHandler("state: SealPayload: ERROR: %s", err)
			return database.Block{}, err
		}

		s.evHandler("state: SealPayload: head moved, retrying: attempt[%d]: %s", attempt, err)
	}
}

// =============================================================================

// ensureGenesis must be called while holding the writer.
func (s *State) ensureGenesis() (database.Block, error) {
	if head, exists := s.db.LatestBlock(); exists {
		return head, nil
	}

	gen := database.NewGenesis(time.Now())
	if err := s.db.Write(gen); err != nil {
		return database.Block{}, fmt.Errorf("writing genesis: %w", err)
	}

	s.evHandler("viewer: genesis created: hash[%s]", gen.Hash)

	return gen, nil
}

// sealOnce must be called while holding the writer.
func (s *State) sealOnce(ctx context.Context, payloadHash string) (database.Block, error) {
	head, err := s.ensureGenesis()
	if err != nil {
		return database.Block{}, err
	}

	block, err := database.POW(ctx, database.POWArgs{
		PrevBlock:   head,
		PayloadHash: payloadHash,
		Difficulty:  s.genesis.Difficulty,
		MaxNonce:    s.genesis.MaxNonce,
		EvHandler:   s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	if err := s.db.Write(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}
