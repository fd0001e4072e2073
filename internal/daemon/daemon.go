package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/repute-network/repute/internal/api"
	"github.com/repute-network/repute/internal/domain"
	"github.com/repute-network/repute/internal/infra/reputation"
	"github.com/repute-network/repute/internal/infra/sqlite"
)

// Daemon is the assembled repute service.
type Daemon struct {
	cfg    Config
	log    *zap.Logger
	db     *sqlite.DB
	ledger *reputation.Ledger
	hub    *api.EventHub
	server *http.Server
}

// New assembles the daemon from configuration: opens storage, seeds the
// parameter block on first boot, and wires the event sinks.
func New(cfg Config) (*Daemon, error) {
	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Path != ":memory:" {
		if err := os.MkdirAll(HomeDir(), 0700); err != nil {
			return nil, fmt.Errorf("create home directory: %w", err)
		}
	}

	db, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	// Config seeds the parameter block only on first boot. After that the
	// persisted block is authoritative: admins tune it over the API.
	if _, ok, err := db.LoadParams(); err != nil {
		db.Close()
		return nil, err
	} else if !ok {
		seed, err := cfg.Params()
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := db.SaveParams(seed); err != nil {
			db.Close()
			return nil, err
		}
	}

	hub := api.NewEventHub()
	sinks := domain.MultiSink{
		sqlite.AuditSink{DB: db, Log: log},
		reputation.MetricsSink{},
		hub,
	}

	ledger, err := reputation.New(db, cfg.Admin.Identity, sinks)
	if err != nil {
		db.Close()
		return nil, err
	}

	srv := api.NewServer(ledger, log)
	srv.SetEventHub(hub)
	srv.SetAuditLog(db)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}

	return &Daemon{
		cfg:    cfg,
		log:    log,
		db:     db,
		ledger: ledger,
		hub:    hub,
		server: &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Ledger exposes the assembled ledger (used by tests and the CLI).
func (d *Daemon) Ledger() *reputation.Ledger { return d.ledger }

// Run serves the API until ctx is cancelled, then shuts down cleanly.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info("repute daemon starting",
		zap.String("addr", d.cfg.ListenAddr()),
		zap.String("db", d.cfg.DatabasePath()),
		zap.String("admin", d.cfg.Admin.Identity))

	errCh := make(chan error, 1)
	go func() {
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		d.db.Close()
		return err
	case <-ctx.Done():
	}

	d.log.Info("repute daemon shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := d.server.Shutdown(shutdownCtx)
	if closeErr := d.db.Close(); err == nil {
		err = closeErr
	}
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
