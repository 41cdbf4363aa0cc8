package state

import (
	"context"
	"time"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
)

// Membership is the result of looking up a payload hash in the ledger.
type Membership struct {
	Verified  bool
	Number    uint64
	BlockHash string
	TimeStamp time.Time
	Nonce     uint64
}

// Summary is a read-only aggregate of the ledger used for reporting.
type Summary struct {
	TotalBlocks    uint64
	HeadHashPrefix string
	HeadTimeStamp  time.Time
	IntegrityValid bool
	Violation      string
}

// headPrefixLen is how much of the head hash a summary displays.
const headPrefixLen = 16

// =============================================================================

// VerifyChain walks the whole ledger in ascending order. Each block must have
// the expected number, must hash to its stored hash and must link to the
// hash of the block before it. No block may be missing below the head. The first failure is returned as an
// *database.IntegrityError. An empty ledger is valid.
func (s *State) VerifyChain(ctx context.Context) error {
	_, err := s.walkChain(ctx)
	return err
}

// CheckChainIntegrity is the boolean form of VerifyChain. Any failure,
// including a failure to read storage, reports false.
func (s *State) CheckChainIntegrity(ctx context.Context) bool {
	if err := s.VerifyChain(ctx); err != nil {
		s.evHandler("state: CheckChainIntegrity: FAILED: %s", err)
		return false
	}

	return true
}

// CheckMembership looks for the payload hash in the ledger. The ledger is
// scanned in ascending order and the lowest numbered match is returned. A
// hash that was never sealed is not an error, it reports Verified false.
func (s *State) CheckMembership(ctx context.Context, payloadHash string) (Membership, error) {
	iter := s.db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return Membership{}, err
		}

		if err := ctx.Err(); err != nil {
			return Membership{}, err
		}

		if block.IsGenesis() || block.Header.PayloadHash != payloadHash {
			continue
		}

		m := Membership{
			Verified:  true,
			Number:    block.Header.Number,
			BlockHash: block.Hash,
			TimeStamp: block.Header.TimeStamp,
			Nonce:     block.Header.Nonce,
		}

		return m, nil
	}

	return Membership{Verified: false}, nil
}

// Summary reports the size and head of the ledger and whether the chain
// verifies. The whole ledger is walked on every call, nothing is cached.
func (s *State) Summary(ctx context.Context) (Summary, error) {
	total, err := s.walkChain(ctx)

	var sum Summary
	switch {
	case err == nil:
		sum.IntegrityValid = true

	case database.IsIntegrityError(err):
		sum.Violation = err.Error()

	default:
		return Summary{}, err
	}

	// Count from the head when the walk stopped early.
	head, exists := s.db.LatestBlock()
	if !exists {
		return sum, nil
	}

	sum.TotalBlocks = max(total, head.Header.Number)
	sum.HeadHashPrefix = head.Hash
	if len(head.Hash) > headPrefixLen {
		sum.HeadHashPrefix = head.Hash[:headPrefixLen] + "..."
	}
	sum.HeadTimeStamp = head.Header.TimeStamp

	return sum, nil
}

// =============================================================================

// walkChain verifies the ledger and returns the number of blocks it walked.
func (s *State) walkChain(ctx context.Context) (uint64, error) {
	var prev database.Block
	var count uint64

	iter := s.db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return count, err
		}

		if err := ctx.Err(); err != nil {
			return count, err
		}

		count++

		if block.Header.Number != count {
			return count, &database.IntegrityError{Number: count, Reason: database.ReasonOutOfSequence}
		}

		if block.Digest() != block.Hash {
			return count, &database.IntegrityError{Number: block.Header.Number, Reason: database.ReasonDigestMismatch}
		}

		if count > 1 && block.Header.PrevBlockHash != prev.Hash {
			return count, &database.IntegrityError{Number: block.Header.Number, Reason: database.ReasonBrokenLink}
		}

		prev = block
	}

	// The walk ends at the first missing block. Anything the head claims
	// beyond that point was removed.
	if head, exists := s.db.LatestBlock(); exists && count < head.Header.Number {
		return count, &database.IntegrityError{Number: count + 1, Reason: database.ReasonMissingBlock}
	}

	return count, nil
}
