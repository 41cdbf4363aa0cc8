// Package ledgergrp maintains the group of handlers for sealing and
// verifying certificate hashes.
package ledgergrp

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/ardanlabs/certledger/business/web/errs"
	"github.com/ardanlabs/certledger/foundation/blockchain/database"
	"github.com/ardanlabs/certledger/foundation/events"
	"github.com/ardanlabs/certledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// sealed counts the certificates sealed by this node since start.
var sealed = expvar.NewInt("certificates_sealed")

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Core *certificate.Core
	Evts *events.Events
	WS   websocket.Upgrader
}

// Seal anchors the payload hash from the request body in the ledger.
func (h Handlers) Seal(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req SealRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	ref, err := h.Core.Seal(ctx, req.PayloadHash)
	if err != nil {
		return trusted(err)
	}
	sealed.Add(1)

	return web.Respond(ctx, w, ref, http.StatusCreated)
}

// Verify reports whether the payload hash in the path is in the ledger.
// The integrity query parameter adds a full chain check to the result.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := false
	if s := r.URL.Query().Get("integrity"); s != "" {
		var err error
		if chain, err = strconv.ParseBool(s); err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid integrity value %q", s), http.StatusBadRequest)
		}
	}

	v, err := h.Core.Verify(ctx, web.Param(r, "hash"), chain)
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, v, http.StatusOK)
}

// Stats returns the summary of the ledger.
func (h Handlers) Stats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.Core.Stats(ctx)
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Blocks returns the blocks between the from and to query parameters.
// Both are optional and default to the whole ledger.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := queryUint(r, "from")
	if err != nil {
		return err
	}

	to, err := queryUint(r, "to")
	if err != nil {
		return err
	}

	if to != 0 && from > to {
		return errs.NewTrusted(fmt.Errorf("from %d is after to %d", from, to), http.StatusBadRequest)
	}

	blocks, err := h.Core.Blocks(from, to)
	if err != nil {
		return trusted(err)
	}

	if blocks == nil {
		blocks = []certificate.Block{}
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Head returns the block with the highest number.
func (h Handlers) Head(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	head, err := h.Core.Head()
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, head, http.StatusOK)
}

// Events handles a web socket to provide ledger events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// =============================================================================

// trusted maps the errors callers can act on to their HTTP status.
func trusted(err error) error {
	switch {
	case errors.Is(err, certificate.ErrInvalidHash):
		return errs.NewTrusted(err, http.StatusBadRequest)

	case errors.Is(err, certificate.ErrDuplicatePayload):
		return errs.NewTrusted(err, http.StatusConflict)

	case errors.Is(err, certificate.ErrEmptyLedger):
		return errs.NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, database.ErrNonceExhausted),
		errors.Is(err, database.ErrConcurrentMutation):
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}

	return err
}

func queryUint(r *http.Request, key string) (uint64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("invalid %s value %q", key, s), http.StatusBadRequest)
	}

	return n, nil
}
