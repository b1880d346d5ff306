// Package state implements the single-writer store of per-URL download
// state. All mutations flow through one goroutine; callers communicate
// with it over a request channel and wait for a per-request ack, so an
// acknowledged update is guaranteed to be applied before the caller
// proceeds.
package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fetchctl/fetchctl/internal/domain"
	apperrors "github.com/fetchctl/fetchctl/internal/errors"
)

type eventType int

const (
	eventUpdate eventType = iota
	eventView
)

type event struct {
	typ   eventType
	url   string
	state domain.DownloadState

	// ack is closed once an update has been applied.
	ack chan struct{}
	// reply receives a copy of the full state history for view requests.
	reply chan map[string][]domain.DownloadState
}

// Store owns the URL-to-state mapping. Closing the request channel is the
// sole shutdown signal; the actor drains remaining requests and exits.
type Store struct {
	events chan event
	done   chan struct{}
	logger *slog.Logger

	// mu guards closed so no sender can race the channel close.
	mu     sync.RWMutex
	closed bool

	// states is touched only by the run goroutine while it lives. After
	// done is closed the goroutine has exited and reads are safe.
	states map[string][]domain.DownloadState
}

// NewStore starts the actor goroutine and returns the store handle.
func NewStore(logger *slog.Logger) *Store {
	s := &Store{
		events: make(chan event, 16),
		done:   make(chan struct{}),
		logger: logger,
		states: make(map[string][]domain.DownloadState),
	}
	go s.run()
	return s
}

func (s *Store) run() {
	defer close(s.done)

	for ev := range s.events {
		switch ev.typ {
		case eventUpdate:
			s.apply(ev)
		case eventView:
			ev.reply <- s.copyStates()
		}
	}

	s.logger.Info("no more writers, state store shutting down")
}

func (s *Store) apply(ev event) {
	history := s.states[ev.url]
	if n := len(history); n > 0 && history[n-1].Terminal() {
		// Terminal states are absorbing; a late update is dropped rather
		// than recorded.
		s.logger.Warn("ignoring state update after terminal state",
			"url", ev.url,
			"current", history[n-1],
			"ignored", ev.state,
		)
	} else {
		s.states[ev.url] = append(history, ev.state)
		s.logger.Info("state updated", "url", ev.url, "state", ev.state)
	}
	close(ev.ack)
}

func (s *Store) copyStates() map[string][]domain.DownloadState {
	out := make(map[string][]domain.DownloadState, len(s.states))
	for url, history := range s.states {
		out[url] = append([]domain.DownloadState(nil), history...)
	}
	return out
}

func (s *Store) send(ctx context.Context, ev event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return apperrors.ErrStoreClosed
	}

	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateState records a state transition for url and waits until the actor
// has applied it. Returns ErrStoreClosed if the store has already been
// closed.
func (s *Store) UpdateState(ctx context.Context, url string, state domain.DownloadState) error {
	ev := event{
		typ:   eventUpdate,
		url:   url,
		state: state,
		ack:   make(chan struct{}),
	}

	if err := s.send(ctx, ev); err != nil {
		return err
	}

	// The actor drains every queued request before exiting, so once the
	// send succeeded the ack always arrives.
	select {
	case <-ev.ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the latest state per URL. It remains usable after
// Close, answering from the final mapping.
func (s *Store) Snapshot(ctx context.Context) (map[string]domain.DownloadState, error) {
	view, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.DownloadState, len(view))
	for url, history := range view {
		if len(history) > 0 {
			out[url] = history[len(history)-1]
		}
	}
	return out, nil
}

// History returns the full state sequence recorded for url.
func (s *Store) History(ctx context.Context, url string) ([]domain.DownloadState, error) {
	view, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	return view[url], nil
}

func (s *Store) view(ctx context.Context) (map[string][]domain.DownloadState, error) {
	ev := event{
		typ:   eventView,
		reply: make(chan map[string][]domain.DownloadState, 1),
	}

	switch err := s.send(ctx, ev); err {
	case nil:
	case apperrors.ErrStoreClosed:
		// Wait for the actor to drain its queue, then read the final map
		// directly.
		select {
		case <-s.done:
			return s.copyStates(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	default:
		return nil, err
	}

	select {
	case view := <-ev.reply:
		return view, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close signals that no more updates will arrive. The orchestrator calls
// this once, after every worker outcome has been received; no update may
// be issued afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Done returns a channel that is closed once the actor loop has exited.
func (s *Store) Done() <-chan struct{} {
	return s.done
}
