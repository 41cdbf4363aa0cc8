package certificate

import (
	"time"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
	"github.com/ardanlabs/certledger/foundation/blockchain/signature"
)

// BlockRef identifies the block a payload hash was sealed into.
type BlockRef struct {
	Number    uint64    `json:"number"`
	BlockHash string    `json:"block_hash"`
	TimeStamp time.Time `json:"timestamp"`
	Nonce     uint64    `json:"nonce"`
}

func toBlockRef(block database.Block) BlockRef {
	return BlockRef{
		Number:    block.Header.Number,
		BlockHash: block.Hash,
		TimeStamp: block.Header.TimeStamp,
		Nonce:     block.Header.Nonce,
	}
}

// Block is the full view of a block for listing.
type Block struct {
	Number        uint64    `json:"number"`
	PrevBlockHash string    `json:"prev_block_hash"`
	PayloadHash   string    `json:"payload_hash"`
	TimeStamp     time.Time `json:"timestamp"`
	Nonce         uint64    `json:"nonce"`
	BlockHash     string    `json:"block_hash"`
}

func toBlock(block database.Block) Block {
	return Block{
		Number:        block.Header.Number,
		PrevBlockHash: block.Header.PrevBlockHash,
		PayloadHash:   block.Header.PayloadHash,
		TimeStamp:     block.Header.TimeStamp,
		Nonce:         block.Header.Nonce,
		BlockHash:     block.Hash,
	}
}

// Verification is the result of verifying a payload hash.
type Verification struct {
	PayloadHash string    `json:"payload_hash"`
	Verified    bool      `json:"verified"`
	Block       *BlockRef `json:"block,omitempty"`
	ChainValid  *bool     `json:"chain_valid,omitempty"`
	Receipt     *Receipt  `json:"receipt,omitempty"`
}

// Receipt is the node's signed statement about a verification.
type Receipt struct {
	Signer    string    `json:"signer"`
	IssuedAt  time.Time `json:"issued_at"`
	Signature string    `json:"signature"`
}

// Stats is the summary of the ledger.
type Stats struct {
	TotalBlocks    uint64     `json:"total_blocks"`
	HeadHash       string     `json:"head_hash,omitempty"`
	HeadTimeStamp  *time.Time `json:"head_timestamp,omitempty"`
	IntegrityValid bool       `json:"integrity_valid"`
	Violation      string     `json:"violation,omitempty"`
}

// =============================================================================

// receiptData is the value that is signed for a receipt. Times are rendered
// as strings so the signed bytes don't depend on time zone handling.
type receiptData struct {
	PayloadHash string `json:"payload_hash"`
	Verified    bool   `json:"verified"`
	Number      uint64 `json:"number"`
	BlockHash   string `json:"block_hash"`
	TimeStamp   string `json:"timestamp"`
	Nonce       uint64 `json:"nonce"`
	ChainValid  *bool  `json:"chain_valid,omitempty"`
	IssuedAt    string `json:"issued_at"`
}

func newReceiptData(v Verification, issuedAt time.Time) receiptData {
	rd := receiptData{
		PayloadHash: v.PayloadHash,
		Verified:    v.Verified,
		ChainValid:  v.ChainValid,
		IssuedAt:    signature.FormatTime(issuedAt),
	}

	if v.Block != nil {
		rd.Number = v.Block.Number
		rd.BlockHash = v.Block.BlockHash
		rd.TimeStamp = signature.FormatTime(v.Block.TimeStamp)
		rd.Nonce = v.Block.Nonce
	}

	return rd
}
