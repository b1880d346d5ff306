// Package worker drives the full lifecycle of one download: record the
// Downloading state, stream the URL to its destination file, and record
// exactly one terminal state. Cancellation arrives as a broadcast signal
// and is converted into a one-shot token consumed by the transfer loop.
package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fetchctl/fetchctl/internal/cancel"
	"github.com/fetchctl/fetchctl/internal/domain"
	"github.com/fetchctl/fetchctl/internal/manifest"
	"github.com/fetchctl/fetchctl/internal/metrics"
	"github.com/fetchctl/fetchctl/internal/state"
	"github.com/fetchctl/fetchctl/internal/storage"
)

const defaultProgressInterval = time.Second

// Worker owns one download from manifest entry to outcome.
type Worker struct {
	client           *http.Client
	store            *state.Store
	storage          *storage.FileStorage
	entry            manifest.Entry
	signals          <-chan domain.Signal
	progressInterval time.Duration
	logger           *slog.Logger
}

// New creates a worker for entry. signals must be a subscription taken
// from the run's broadcaster before the worker starts.
func New(
	client *http.Client,
	store *state.Store,
	fileStorage *storage.FileStorage,
	entry manifest.Entry,
	signals <-chan domain.Signal,
	progressInterval time.Duration,
	logger *slog.Logger,
) *Worker {
	if progressInterval <= 0 {
		progressInterval = defaultProgressInterval
	}
	return &Worker{
		client:           client,
		store:            store,
		storage:          fileStorage,
		entry:            entry,
		signals:          signals,
		progressInterval: progressInterval,
		logger:           logger,
	}
}

// Run produces exactly one Outcome. Cancellation only requests early
// termination of the transfer; Run still waits for the transfer to wind
// down and for the terminal state to be recorded before returning.
func (w *Worker) Run(ctx context.Context) domain.Outcome {
	name := w.entry.DestinationName()

	status, err := w.race(ctx, name)

	return domain.Outcome{
		URL:    w.entry.URL,
		Path:   w.storage.Path(name),
		Status: status,
		Err:    err,
	}
}

// race runs the download operation while watching the broadcast
// subscription. The first signal observed while the transfer is running is
// converted into a single trigger on the token; later signals, or a signal
// arriving after the operation finished, are dropped by the token's
// idempotence.
func (w *Worker) race(ctx context.Context, name string) (domain.TransferStatus, error) {
	token := cancel.NewToken()

	type result struct {
		status domain.TransferStatus
		err    error
	}
	opDone := make(chan result, 1)

	go func() {
		status, err := w.download(ctx, name, token)
		opDone <- result{status: status, err: err}
	}()

	for {
		select {
		case res := <-opDone:
			return res.status, res.err
		case sig := <-w.signals:
			w.logger.Info("cancellation requested", "url", w.entry.URL, "kind", sig.Kind)
			token.Trigger()
			// The transfer exits soon; keep waiting for its result.
		}
	}
}

// download records the Downloading state, runs the transfer, then records
// the matching terminal state. A state-store failure is propagated in
// place of the transfer result since it means the actor is gone.
func (w *Worker) download(ctx context.Context, name string, token *cancel.Token) (domain.TransferStatus, error) {
	if err := w.store.UpdateState(ctx, w.entry.URL, domain.StateDownloading); err != nil {
		return "", fmt.Errorf("record downloading state: %w", err)
	}
	metrics.DownloadsStarted.Inc()

	start := time.Now()
	status, transferErr := w.transfer(ctx, name, token)
	metrics.TransferDuration.Observe(time.Since(start).Seconds())

	var terminal domain.DownloadState
	switch {
	case transferErr != nil:
		terminal = domain.StateFailed
		metrics.DownloadsFailed.Inc()
	case status == domain.TransferCancelled:
		terminal = domain.StateInterrupted
		metrics.DownloadsInterrupted.Inc()
	default:
		terminal = domain.StateCompleted
		metrics.DownloadsCompleted.Inc()
	}

	if err := w.store.UpdateState(ctx, w.entry.URL, terminal); err != nil {
		return status, fmt.Errorf("record %s state: %w", terminal, err)
	}

	return status, transferErr
}

// chunk carries one read from the response body. err is io.EOF at end of
// stream.
type chunk struct {
	data []byte
	err  error
}

// transfer streams the URL's body into the destination file. The loop
// multiplexes body chunks, the progress ticker and the cancellation token;
// on cancellation the file is flushed and closed so bytes already written
// are kept.
func (w *Worker) transfer(ctx context.Context, name string, token *cancel.Token) (domain.TransferStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.entry.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	f, err := w.storage.CreateFile(name)
	if err != nil {
		return "", fmt.Errorf("create destination file: %w", err)
	}

	// The body reader runs in its own goroutine so the main loop can
	// select over chunks, ticks and cancellation. readerStop makes it exit
	// once the loop returns; the deferred Body.Close then unblocks any
	// in-flight Read.
	chunks := make(chan chunk)
	readerStop := make(chan struct{})
	defer close(readerStop)

	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, readErr := resp.Body.Read(buf)
			var data []byte
			if n > 0 {
				data = append([]byte(nil), buf[:n]...)
			}
			select {
			case chunks <- chunk{data: data, err: readErr}:
			case <-readerStop:
				return
			}
			if readErr != nil {
				return
			}
		}
	}()

	start := time.Now()
	ticker := time.NewTicker(w.progressInterval)
	defer ticker.Stop()

	var bytesDownloaded int64

	for {
		select {
		case c := <-chunks:
			if len(c.data) > 0 {
				if _, werr := f.Write(c.data); werr != nil {
					f.Close()
					return "", fmt.Errorf("write destination file: %w", werr)
				}
				bytesDownloaded += int64(len(c.data))
				metrics.DownloadBytes.Add(float64(len(c.data)))
			}
			if c.err == io.EOF {
				if cerr := f.Close(); cerr != nil {
					return "", fmt.Errorf("close destination file: %w", cerr)
				}
				return domain.TransferCompleted, nil
			}
			if c.err != nil {
				f.Close()
				return "", fmt.Errorf("read response body: %w", c.err)
			}

		case <-ticker.C:
			w.logger.Info("download progress",
				"url", w.entry.URL,
				"elapsed", time.Since(start).Round(10*time.Millisecond),
				"bytes_downloaded", bytesDownloaded,
			)

		case <-token.Fired():
			// Flush and close so no data already written is lost.
			if serr := f.Sync(); serr != nil {
				f.Close()
				return "", fmt.Errorf("flush destination file: %w", serr)
			}
			if cerr := f.Close(); cerr != nil {
				return "", fmt.Errorf("close destination file: %w", cerr)
			}
			return domain.TransferCancelled, nil
		}
	}
}
