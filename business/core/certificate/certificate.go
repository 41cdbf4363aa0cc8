// Package certificate is the gateway the rest of the system uses to anchor
// certificate content hashes in the ledger and to verify them later.
package certificate

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
	"github.com/ardanlabs/certledger/foundation/blockchain/signature"
	"github.com/ardanlabs/certledger/foundation/blockchain/state"
	"go.uber.org/zap"
)

// Set of error variables for the gateway.
var (
	ErrInvalidHash      = errors.New("payload hash must be 64 hex characters")
	ErrDuplicatePayload = errors.New("payload hash is already sealed")
	ErrEmptyLedger      = errors.New("ledger has no blocks")
)

// Ledger represents the ledger behavior the gateway depends on.
type Ledger interface {
	SealPayload(ctx context.Context, payloadHash string) (database.Block, error)
	CheckMembership(ctx context.Context, payloadHash string) (state.Membership, error)
	CheckChainIntegrity(ctx context.Context) bool
	Summary(ctx context.Context) (state.Summary, error)
	RetrieveBlocks(from uint64, to uint64) ([]database.Block, error)
	Head() (database.Block, bool)
}

// Config represents the settings for the gateway.
type Config struct {
	Log    *zap.SugaredLogger
	Ledger Ledger

	// RejectDuplicates makes Seal refuse a payload hash that is already in
	// the ledger. The ledger itself does not enforce payload uniqueness.
	RejectDuplicates bool

	// SignerKey, when set, is used to sign verification receipts.
	SignerKey *ecdsa.PrivateKey
}

// Core manages the set of APIs for certificate access.
type Core struct {
	log              *zap.SugaredLogger
	ledger           Ledger
	rejectDuplicates bool
	signerKey        *ecdsa.PrivateKey
	mu               sync.Mutex
}

// NewCore constructs a core for certificate api access.
func NewCore(cfg Config) *Core {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Core{
		log:              log,
		ledger:           cfg.Ledger,
		rejectDuplicates: cfg.RejectDuplicates,
		signerKey:        cfg.SignerKey,
	}
}

// Seal anchors the payload hash in the ledger and returns a reference to the
// block that holds it.
func (c *Core) Seal(ctx context.Context, payloadHash string) (BlockRef, error) {
	payloadHash, err := normalize(payloadHash)
	if err != nil {
		return BlockRef{}, err
	}

	// The duplicate check and the seal have to happen together or two
	// requests for the same content could both pass the check.
	if c.rejectDuplicates {
		c.mu.Lock()
		defer c.mu.Unlock()

		m, err := c.ledger.CheckMembership(ctx, payloadHash)
		if err != nil {
			return BlockRef{}, fmt.Errorf("checking membership: %w", err)
		}

		if m.Verified {
			return BlockRef{}, fmt.Errorf("payload[%s] in blk[%d]: %w", payloadHash, m.Number, ErrDuplicatePayload)
		}
	}

	block, err := c.ledger.SealPayload(ctx, payloadHash)
	if err != nil {
		return BlockRef{}, fmt.Errorf("sealing payload[%s]: %w", payloadHash, err)
	}

	c.log.Infow("seal", "status", "sealed", "payload", payloadHash, "number", block.Header.Number, "hash", block.Hash, "nonce", block.Header.Nonce)

	return toBlockRef(block), nil
}

// Verify reports whether the payload hash is in the ledger. When chain is
// true the integrity of the whole ledger is checked as well. Verifying a
// hash that was never sealed is not an error.
func (c *Core) Verify(ctx context.Context, payloadHash string, chain bool) (Verification, error) {
	payloadHash, err := normalize(payloadHash)
	if err != nil {
		return Verification{}, err
	}

	m, err := c.ledger.CheckMembership(ctx, payloadHash)
	if err != nil {
		return Verification{}, fmt.Errorf("checking membership: %w", err)
	}

	v := Verification{
		PayloadHash: payloadHash,
		Verified:    m.Verified,
	}

	if m.Verified {
		v.Block = &BlockRef{
			Number:    m.Number,
			BlockHash: m.BlockHash,
			TimeStamp: m.TimeStamp,
			Nonce:     m.Nonce,
		}
	}

	if chain {
		valid := c.ledger.CheckChainIntegrity(ctx)
		v.ChainValid = &valid
	}

	if c.signerKey != nil {
		rct, err := c.sign(v)
		if err != nil {
			return Verification{}, fmt.Errorf("signing receipt: %w", err)
		}
		v.Receipt = &rct
	}

	c.log.Infow("verify", "status", "checked", "payload", payloadHash, "verified", v.Verified)

	return v, nil
}

// Stats returns the summary of the ledger. Every call walks the whole
// ledger to check its integrity.
func (c *Core) Stats(ctx context.Context) (Stats, error) {
	sum, err := c.ledger.Summary(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("summary: %w", err)
	}

	st := Stats{
		TotalBlocks:    sum.TotalBlocks,
		HeadHash:       sum.HeadHashPrefix,
		IntegrityValid: sum.IntegrityValid,
		Violation:      sum.Violation,
	}

	if !sum.HeadTimeStamp.IsZero() {
		ts := sum.HeadTimeStamp
		st.HeadTimeStamp = &ts
	}

	return st, nil
}

// Blocks returns references to the blocks in the range [from, to]. A to
// value of zero means up to the head.
func (c *Core) Blocks(from uint64, to uint64) ([]Block, error) {
	blocks, err := c.ledger.RetrieveBlocks(from, to)
	if err != nil {
		return nil, fmt.Errorf("retrieving blocks: %w", err)
	}

	out := make([]Block, len(blocks))
	for i, block := range blocks {
		out[i] = toBlock(block)
	}

	return out, nil
}

// Head returns the block with the highest number.
func (c *Core) Head() (Block, error) {
	block, exists := c.ledger.Head()
	if !exists {
		return Block{}, ErrEmptyLedger
	}

	return toBlock(block), nil
}

// =============================================================================

// CheckReceipt recovers the address of the node that signed the receipt
// carried by the verification.
func CheckReceipt(v Verification) (string, error) {
	if v.Receipt == nil {
		return "", errors.New("verification carries no receipt")
	}

	addr, err := signature.Signer(newReceiptData(v, v.Receipt.IssuedAt), v.Receipt.Signature)
	if err != nil {
		return "", err
	}

	if addr != v.Receipt.Signer {
		return "", fmt.Errorf("receipt signed by %s, claims %s", addr, v.Receipt.Signer)
	}

	return addr, nil
}

func (c *Core) sign(v Verification) (Receipt, error) {
	issuedAt := time.Now().UTC().Truncate(time.Second)

	sig, err := signature.Sign(newReceiptData(v, issuedAt), c.signerKey)
	if err != nil {
		return Receipt{}, err
	}

	rct := Receipt{
		Signer:    signature.Address(c.signerKey),
		IssuedAt:  issuedAt,
		Signature: sig,
	}

	return rct, nil
}

// normalize lower cases the hash and checks its shape.
func normalize(payloadHash string) (string, error) {
	payloadHash = strings.ToLower(strings.TrimSpace(payloadHash))
	if !signature.IsHash(payloadHash) {
		return "", ErrInvalidHash
	}

	return payloadHash, nil
}
