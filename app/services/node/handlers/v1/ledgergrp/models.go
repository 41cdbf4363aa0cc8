package ledgergrp

import (
	"strings"

	"github.com/ardanlabs/certledger/foundation/validate"
)

// SealRequest is the body of a seal call.
type SealRequest struct {
	PayloadHash string `json:"payload_hash" validate:"required,payloadhash"`
}

// Validate normalizes the payload hash and checks the request.
func (sr *SealRequest) Validate() error {
	sr.PayloadHash = strings.ToLower(strings.TrimSpace(sr.PayloadHash))
	return validate.Check(sr)
}
