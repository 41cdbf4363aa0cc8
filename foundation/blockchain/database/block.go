package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/certledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/certledger/foundation/blockchain/signature"
)

// ErrNonceExhausted is returned from POW when every nonce up to the
// configured maximum was tried without solving the puzzle.
var ErrNonceExhausted = errors.New("nonce search exhausted")

// checkEvery is how many nonce attempts are made between checks for
// cancellation and progress events.
const checkEvery = 1 << 16

// =============================================================================

// BlockHeader represents the fields that are hashed to seal a block.
type BlockHeader struct {
	Number        uint64    `json:"number"`          // Position in the ledger, starting at 1 for genesis.
	PrevBlockHash string    `json:"prev_block_hash"` // Hash of the previous block in the ledger.
	PayloadHash   string    `json:"payload_hash"`    // The certificate content hash being anchored.
	TimeStamp     time.Time `json:"timestamp"`       // Time mining started.
	Nonce         uint64    `json:"nonce"`           // Value identified to solve the hash solution.
}

// Block represents a sealed entry in the ledger. The hash is computed once
// when the block is sealed and is stored alongside the header.
type Block struct {
	Header BlockHeader
	Hash   string
}

// NewGenesis constructs the first block of a ledger. The genesis block is
// hashed like every other block but it is not mined.
func NewGenesis(timeStamp time.Time) Block {
	h := BlockHeader{
		Number:        1,
		PrevBlockHash: signature.ZeroHash,
		PayloadHash:   genesis.PayloadMarker,
		TimeStamp:     timeStamp.UTC().Truncate(time.Microsecond),
		Nonce:         0,
	}

	return Block{
		Header: h,
		Hash:   h.digest(),
	}
}

// IsGenesis reports if this is the first block of the ledger.
func (b Block) IsGenesis() bool {
	return b.Header.Number == 1
}

// Digest recomputes the hash from the header fields. For an untampered block
// this matches the stored hash.
func (b Block) Digest() string {
	return b.Header.digest()
}

func (h BlockHeader) digest() string {
	return signature.Digest(h.PrevBlockHash, h.PayloadHash, h.TimeStamp, h.Nonce)
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlock   Block
	PayloadHash string
	Difficulty  uint16
	MaxNonce    uint64
	EvHandler   func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle. The search is bounded by MaxNonce and
// can be cancelled through the context.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if args.PrevBlock.Hash == "" {
		return Block{}, errors.New("previous block required, the ledger has no genesis")
	}

	// The timestamp is captured once. Only the nonce changes while mining.
	nb := Block{
		Header: BlockHeader{
			Number:        args.PrevBlock.Header.Number + 1,
			PrevBlockHash: args.PrevBlock.Hash,
			PayloadHash:   args.PayloadHash,
			TimeStamp:     time.Now().UTC().Truncate(time.Microsecond),
			Nonce:         0,
		},
	}

	ev("database: POW: MINING: started: blk[%d]: payload[%s]", nb.Header.Number, args.PayloadHash)
	defer ev("database: POW: MINING: completed: blk[%d]", nb.Header.Number)

	for attempts := uint64(0); attempts < args.MaxNonce; attempts++ {
		if attempts > 0 && attempts%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				ev("database: POW: MINING: CANCELLED: attempts[%d]", attempts)
				return Block{}, err
			}
			ev("database: POW: MINING: attempts[%d]", attempts)
		}

		nb.Header.Nonce = attempts
		hash := nb.Header.digest()
		if !IsHashSolved(args.Difficulty, hash) {
			continue
		}

		nb.Hash = hash
		ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", nb.Header.PrevBlockHash, hash, attempts+1)

		return nb, nil
	}

	ev("database: POW: MINING: EXHAUSTED: max[%d]", args.MaxNonce)
	return Block{}, fmt.Errorf("blk[%d]: %w", nb.Header.Number, ErrNonceExhausted)
}

// ValidateBlock checks the block can be appended directly after the
// specified previous block. An empty previous block means the ledger is
// empty and only a genesis block is acceptable.
func (b Block) ValidateBlock(prevBlock Block, difficulty uint16) error {
	switch {
	case prevBlock.Hash == "":
		if !b.IsGenesis() || b.Header.PrevBlockHash != signature.ZeroHash {
			return fmt.Errorf("blk[%d]: ledger is empty, expected genesis: %w", b.Header.Number, ErrConcurrentMutation)
		}

	default:
		if b.Header.Number != prevBlock.Header.Number+1 {
			return fmt.Errorf("blk[%d]: not the next number, exp %d: %w", b.Header.Number, prevBlock.Header.Number+1, ErrConcurrentMutation)
		}

		if b.Header.PrevBlockHash != prevBlock.Hash {
			return fmt.Errorf("blk[%d]: parent hash doesn't match head, got %s, exp %s: %w", b.Header.Number, b.Header.PrevBlockHash, prevBlock.Hash, ErrConcurrentMutation)
		}

		if !IsHashSolved(difficulty, b.Hash) {
			return fmt.Errorf("blk[%d]: %s does not satisfy difficulty %d", b.Header.Number, b.Hash, difficulty)
		}
	}

	if digest := b.Digest(); digest != b.Hash {
		return fmt.Errorf("blk[%d]: hash %s does not match digest %s", b.Header.Number, b.Hash, digest)
	}

	return nil
}

// IsHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint16, hash string) bool {
	const match = "0000000000000000"

	if len(hash) != 64 || int(difficulty) > len(match) {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}

// =============================================================================

// BlockData represents what is written to storage.
type BlockData struct {
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
}

// NewBlockData constructs the value to serialize to storage.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Hash:   block.Hash,
		Header: block.Header,
	}
}

// ToBlock converts a BlockData into a Block.
func ToBlock(blockData BlockData) Block {
	return Block{
		Header: blockData.Header,
		Hash:   blockData.Hash,
	}
}
