package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/apex-citadels/citadel/internal/api"
	"github.com/apex-citadels/citadel/internal/domain"
	"github.com/apex-citadels/citadel/internal/infra/metrics"
	"github.com/apex-citadels/citadel/internal/infra/sqlite"
	"github.com/apex-citadels/citadel/internal/ledger"
)

// ─── Daemon ─────────────────────────────────────────────────────────────────

// Daemon owns the economy core for one session: it loads the persisted
// snapshot (with offline catch-up), ticks passive generation, autosaves when
// state is dirty, and serves the HTTP API until its context is cancelled.
type Daemon struct {
	cfg    Config
	log    *log.Logger
	store  *sqlite.DB
	hub    *api.Hub
	ledger *ledger.Ledger
	server *api.Server
}

// New builds a daemon: opens the snapshot store, constructs the ledger with
// the hub and metrics sinks attached, and performs the load/seed path.
func New(cfg Config, logger *log.Logger) (*Daemon, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "citadel: ", log.LstdFlags)
	}

	dbPath := cfg.StoragePath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		// An unreadable database degrades to a fresh one; the old file is
		// kept aside for inspection.
		logger.Printf("warning: snapshot database unusable (%v), starting fresh", err)
		if renameErr := os.Rename(dbPath, dbPath+".corrupt"); renameErr != nil && !os.IsNotExist(renameErr) {
			return nil, fmt.Errorf("set aside corrupt database: %w", renameErr)
		}
		store, err = sqlite.Open(dbPath)
		if err != nil {
			return nil, err
		}
	}

	hub := api.NewHub(logger)
	sink := domain.Multicast{hub, metrics.Sink{}}
	led := ledger.New(cfg.LedgerConfig(), sink, logger)

	// Load persisted state. Anything wrong with it degrades to the
	// default seed — startup never fails on snapshot problems.
	amounts, savedAt, err := store.LoadSnapshot()
	switch {
	case errors.Is(err, domain.ErrNoSnapshot):
		logger.Printf("no snapshot at %s, seeding starting amounts", dbPath)
	case err != nil:
		logger.Printf("warning: snapshot unusable (%v), seeding starting amounts", err)
	default:
		led.RestoreSnapshot(amounts, savedAt)
	}
	metrics.SetAmounts(led.Amounts())
	led.Loaded()

	d := &Daemon{
		cfg:    cfg,
		log:    logger,
		store:  store,
		hub:    hub,
		ledger: led,
		server: api.NewServer(led, hub),
	}
	d.server.EnableMetrics()
	return d, nil
}

// Ledger exposes the ledger for embedding hosts and tests.
func (d *Daemon) Ledger() *ledger.Ledger { return d.ledger }

// Run serves until ctx is cancelled, then saves unconditionally and shuts
// down. The tick loop uses measured elapsed time, not the nominal interval,
// so a stalled scheduler still accrues the right amount.
func (d *Daemon) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:    d.cfg.API.Addr(),
		Handler: d.server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		d.log.Printf("economy core listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	tick := time.NewTicker(d.cfg.TickInterval())
	defer tick.Stop()
	autosave := time.NewTicker(d.cfg.AutosaveInterval())
	defer autosave.Stop()

	last := time.Now()
	for {
		select {
		case now := <-tick.C:
			start := time.Now()
			d.ledger.Tick(now.Sub(last))
			last = now
			metrics.TickDuration.Observe(time.Since(start).Seconds())

		case <-autosave.C:
			if d.ledger.Dirty() {
				d.save("interval")
			}

		case err := <-errCh:
			d.saveAndClose()
			return fmt.Errorf("http server: %w", err)

		case <-ctx.Done():
			d.log.Printf("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			httpSrv.Shutdown(shutdownCtx)
			cancel()
			d.saveAndClose()
			return nil
		}
	}
}

// save writes a snapshot. The amounts copy taken by Snapshot keeps the write
// consistent even though ticking continues.
func (d *Daemon) save(trigger string) {
	if err := d.store.SaveSnapshot(d.ledger.Snapshot(), time.Now()); err != nil {
		d.log.Printf("warning: snapshot save failed: %v", err)
		metrics.SaveFailures.Inc()
		return
	}
	d.ledger.MarkSaved()
	metrics.Autosaves.WithLabelValues(trigger).Inc()
}

func (d *Daemon) saveAndClose() {
	d.save("shutdown")
	if err := d.store.Close(); err != nil {
		d.log.Printf("warning: close store: %v", err)
	}
}
