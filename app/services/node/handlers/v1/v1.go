// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/certledger/app/services/node/handlers/v1/ledgergrp"
	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/ardanlabs/certledger/foundation/events"
	"github.com/ardanlabs/certledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log  *zap.SugaredLogger
	Core *certificate.Core
	Evts *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	lgh := ledgergrp.Handlers{
		Log:  cfg.Log,
		Core: cfg.Core,
		Evts: cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/certificates/seal", lgh.Seal)
	app.Handle(http.MethodGet, version, "/certificates/verify/:hash", lgh.Verify)
	app.Handle(http.MethodGet, version, "/ledger/stats", lgh.Stats)
	app.Handle(http.MethodGet, version, "/ledger/blocks", lgh.Blocks)
	app.Handle(http.MethodGet, version, "/ledger/head", lgh.Head)
	app.Handle(http.MethodGet, version, "/events", lgh.Events)
}
