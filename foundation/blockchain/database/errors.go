package database

import (
	"errors"
	"fmt"
)

// Set of error variables for ledger storage.
var (
	ErrDuplicateHash      = errors.New("block hash already exists")
	ErrNotFound           = errors.New("block not found")
	ErrConcurrentMutation = errors.New("ledger head changed during append")
)

// Integrity failure reasons.
const (
	ReasonDigestMismatch = "stored hash does not match recomputed digest"
	ReasonBrokenLink     = "previous hash does not match parent block hash"
	ReasonOutOfSequence  = "block number does not match its position"
	ReasonMissingBlock   = "block is missing below the head"
)

// IntegrityError names the block where verification of the ledger failed.
type IntegrityError struct {
	Number uint64
	Reason string
}

// Error implements the error interface.
func (ie *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation at blk[%d]: %s", ie.Number, ie.Reason)
}

// IsIntegrityError checks if an error of type IntegrityError exists.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
