package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gotchoices/sereus-bonum/internal/config"
	"github.com/gotchoices/sereus-bonum/internal/httpapi"
	"github.com/gotchoices/sereus-bonum/internal/migrate"
	"github.com/gotchoices/sereus-bonum/internal/obs"
	"github.com/gotchoices/sereus-bonum/internal/store"
	"github.com/gotchoices/sereus-bonum/internal/store/sqlstore"
)

var version = "0.3.0"

func main() {
	cfg := config.Load()
	if cfg.Version == "dev" {
		cfg.Version = version
	}

	obs.Init()
	obs.InitBuildInfo(cfg.Version, cfg.Commit)

	dialect := sqlstore.Dialect(cfg.StoreDialect)
	dsn := cfg.DatabaseURL
	if dialect == sqlstore.SQLite {
		dsn = cfg.SQLitePath
	}

	// The provider runs open + migrate + seed exactly once; a failed
	// attempt clears so the next caller retries.
	provider := store.NewProvider(func(ctx context.Context) (store.Store, error) {
		st, err := sqlstore.Open(dialect, dsn)
		if err != nil {
			return nil, err
		}
		mgr := migrate.NewManager(st.DB(), sqlstore.SchemaFS, "migrations", "seeds",
			migrate.WithRebind(sqlstore.RebindFunc(dialect)))
		if err := mgr.Up(ctx); err != nil {
			st.Close()
			return nil, err
		}
		if err := mgr.Seed(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	s, err := provider.Get(ctx)
	cancel()
	if err != nil {
		log.Fatalf("init store: %v", err)
	}
	st := s.(*sqlstore.Store)

	api := httpapi.New(st, httpapi.ReadyProbe{DB: st.DB()}, cfg.Version)

	handler := api.Handler()
	handler = httpapi.MaxBodyBytes(handler, cfg.MaxBodyBytes)
	handler = httpapi.RateLimit(handler, cfg.RateBurst, cfg.RatePerSecond)
	handler = httpapi.LoggingJSON(handler)
	handler = httpapi.RequestID(handler)
	handler = httpapi.SecurityHeaders(handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting bonum-api %s on %s (%s)", cfg.Version, srv.Addr, dialect)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = st.Close()
	log.Println("Stopped")
}
