// Package orchestrator spawns one worker per manifest entry and
// multiplexes their completions against an external interrupt source. An
// interrupt is relayed to every worker through the broadcaster; it never
// causes an early return, every worker still reaches a terminal outcome.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/fetchctl/fetchctl/internal/cancel"
	"github.com/fetchctl/fetchctl/internal/domain"
	"github.com/fetchctl/fetchctl/internal/manifest"
	"github.com/fetchctl/fetchctl/internal/state"
	"github.com/fetchctl/fetchctl/internal/storage"
	"github.com/fetchctl/fetchctl/internal/worker"
)

// Orchestrator coordinates a single run of downloads.
type Orchestrator struct {
	client           *http.Client
	store            *state.Store
	storage          *storage.FileStorage
	maxConcurrent    int64
	progressInterval time.Duration
	logger           *slog.Logger
}

// New creates an orchestrator. maxConcurrent bounds simultaneously running
// transfers; 0 means unbounded.
func New(
	client *http.Client,
	store *state.Store,
	fileStorage *storage.FileStorage,
	maxConcurrent int64,
	progressInterval time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		client:           client,
		store:            store,
		storage:          fileStorage,
		maxConcurrent:    maxConcurrent,
		progressInterval: progressInterval,
		logger:           logger,
	}
}

// Run downloads every entry and returns the URLs whose outcome was an
// error. It returns only after all workers have produced their outcome,
// the state store has been closed, and its actor has shut down. interrupts
// is the external interrupt source; each received signal is published once
// to all subscribed workers.
func (o *Orchestrator) Run(ctx context.Context, entries []manifest.Entry, interrupts <-chan os.Signal) []string {
	logger := o.logger.With("run_id", uuid.New().String())

	broadcaster := cancel.NewBroadcaster()
	results := make(chan domain.Outcome)

	var sem *semaphore.Weighted
	if o.maxConcurrent > 0 {
		sem = semaphore.NewWeighted(o.maxConcurrent)
	}

	logger.Info("starting downloads", "count", len(entries), "out_dir", o.storage.Dir())

	for _, entry := range entries {
		// Subscribe before the worker goroutine starts so a signal
		// published concurrently with spawn cannot be missed.
		signals := broadcaster.Subscribe()
		w := worker.New(o.client, o.store, o.storage, entry, signals, o.progressInterval, logger)

		go func(w *worker.Worker, url string) {
			defer func() {
				// A worker defect must not take down the run; surface it
				// as an error outcome instead.
				if r := recover(); r != nil {
					results <- domain.Outcome{URL: url, Err: fmt.Errorf("worker panicked: %v", r)}
				}
			}()

			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					results <- domain.Outcome{URL: url, Err: fmt.Errorf("acquire download slot: %w", err)}
					return
				}
				defer sem.Release(1)
			}

			results <- w.Run(ctx)
		}(w, entry.URL)
	}

	var failed []string
	pending := len(entries)

	for pending > 0 {
		select {
		case outcome := <-results:
			pending--
			switch {
			case outcome.Err != nil:
				logger.Error("download failed", "url", outcome.URL, "path", outcome.Path, "error", outcome.Err)
				failed = append(failed, outcome.URL)
			case outcome.Status == domain.TransferCancelled:
				logger.Warn("download cancelled", "url", outcome.URL, "path", outcome.Path)
			default:
				logger.Info("download completed", "url", outcome.URL, "path", outcome.Path)
			}

		case sig := <-interrupts:
			logger.Info("interrupt received, cancelling downloads", "signal", sig)
			broadcaster.Publish(domain.Signal{Kind: domain.KindInterrupt})
			// Keep waiting: cancelled workers still deliver an outcome.
		}
	}

	// No more writers will appear; shut the state store down and wait for
	// its actor to finish.
	o.store.Close()
	<-o.store.Done()

	logger.Info("run finished",
		"total", len(entries),
		"failed", len(failed),
		"failed_urls", failed,
	)

	return failed
}
