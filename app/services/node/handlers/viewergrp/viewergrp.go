// Package viewergrp serves a page that shows the ledger events of a node
// as they happen.
package viewergrp

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/ardanlabs/certledger/foundation/web"
)

//go:embed assets/index.html
var index []byte

// Handlers manages the viewer endpoints.
type Handlers struct{}

// Index returns the viewer page. The page connects back to the node's
// events websocket and polls the ledger stats.
func (h Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(index); err != nil {
		return err
	}

	return nil
}
