// Package genesis maintains access to the genesis file that defines the
// parameters a ledger keeps for its whole lifetime.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// PayloadMarker is the reserved payload literal carried by the genesis
// block. It can never collide with a real content hash.
const PayloadMarker = "genesis"

// Genesis represents the genesis file.
type Genesis struct {
	Date       time.Time `json:"date"`
	Difficulty uint16    `json:"difficulty"` // Number of leading 0 hex characters a block hash needs.
	MaxNonce   uint64    `json:"max_nonce"`  // Upper bound on nonce trials before mining gives up.
}

// Default returns the genesis settings used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		Date:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty: 2,
		MaxNonce:   1 << 32,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. If the file does not exist the
// default settings are returned.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file %q: %w", path, err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the settings are usable for mining.
func (g Genesis) Validate() error {
	if g.Difficulty == 0 || g.Difficulty > 16 {
		return fmt.Errorf("difficulty must be between 1 and 16, got %d", g.Difficulty)
	}

	if g.MaxNonce == 0 {
		return errors.New("max_nonce must be greater than 0")
	}

	return nil
}
