// Package httpapi is the HTTP surface of the accounting service: health and
// info endpoints, the /v1 ledger resources, reporting views, and the GnuCash
// import endpoint. Handlers stay thin; semantics live in store and report.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gotchoices/sereus-bonum/internal/obs"
	"github.com/gotchoices/sereus-bonum/internal/report"
	"github.com/gotchoices/sereus-bonum/internal/store"
)

// ReadyProbe is a simple readiness check (DB ping when a handle is set).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	store      store.Store
	reports    *report.Service
	readyProbe ReadyProbe
	version    string
}

func New(st store.Store, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		store:      st,
		reports:    report.New(st),
		readyProbe: rp,
		version:    version,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// ledger resources
	a.mux.HandleFunc("/v1/units", a.handleUnitsCollection)
	a.mux.HandleFunc("/v1/units/", a.handleUnitResource)
	a.mux.HandleFunc("/v1/entities", a.handleEntitiesCollection)
	a.mux.HandleFunc("/v1/entities/", a.handleEntityResource)
	a.mux.HandleFunc("/v1/groups", a.handleGroupsCollection)
	a.mux.HandleFunc("/v1/groups/", a.handleGroupResource)
	a.mux.HandleFunc("/v1/accounts/", a.handleAccountResource)
	a.mux.HandleFunc("/v1/transactions/", a.handleTransactionResource)

	// import
	a.mux.HandleFunc("/v1/import/gnucash", a.handleGnuCashImport)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler wraps the mux with request metrics; the middleware chain
// (request id, logging, rate limiting, body caps) is applied in main.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.mux)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "bonum-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "bonum-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
