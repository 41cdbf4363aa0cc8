// Package state is the core API for the certificate ledger and implements
// the rules for sealing payload hashes and verifying the chain.
package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/certledger/foundation/blockchain/database"
	"github.com/ardanlabs/certledger/foundation/blockchain/genesis"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Storage
	EvHandler EventHandler
}

// State manages the ledger. Sealing is serialized through the writer
// channel which holds a single slot. Readers never take the slot.
type State struct {
	evHandler EventHandler
	genesis   genesis.Genesis
	db        *database.Database
	writer    chan struct{}
}

// New constructs a new ledger for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	// Access the storage for the ledger and locate the head.
	db, err := database.New(cfg.Storage, cfg.Genesis.Difficulty, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		evHandler: ev,
		genesis:   cfg.Genesis,
		db:        db,
		writer:    make(chan struct{}, 1),
	}

	// A broken chain is reported, it doesn't stop the node from starting.
	if err := state.VerifyChain(context.Background()); err != nil {
		ev("state: New: WARNING: ledger failed verification: %s", err)
	}

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	return s.db.Close()
}

// =============================================================================

// acquireWriter blocks until the caller owns the write critical section or
// the context is done.
func (s *State) acquireWriter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(database.ErrConcurrentMutation, err)
	}

	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.Join(database.ErrConcurrentMutation, ctx.Err())
	}
}

// releaseWriter gives up the write critical section.
func (s *State) releaseWriter() {
	<-s.writer
}
