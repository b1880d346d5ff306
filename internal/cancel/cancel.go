// Package cancel provides the cancellation plumbing between the
// orchestrator and its workers: a fan-out Broadcaster every worker
// subscribes to before it starts, and a per-worker one-shot Token the
// worker derives from the broadcast and hands to its transfer.
package cancel

import (
	"sync"

	"github.com/fetchctl/fetchctl/internal/domain"
)

// Broadcaster delivers a Signal to every current subscriber. The
// orchestrator is the sole publisher.
type Broadcaster struct {
	mu   sync.Mutex
	subs []chan domain.Signal
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers a new receiver. It must be called before the
// subscribing worker starts so a signal published concurrently with spawn
// cannot be missed.
func (b *Broadcaster) Subscribe() <-chan domain.Signal {
	ch := make(chan domain.Signal, 1)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers sig to every subscriber without blocking. A subscriber
// that already holds an undelivered signal keeps the one it has; a
// subscriber that already finished simply never reads it.
func (b *Broadcaster) Publish(sig domain.Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- sig:
		default:
		}
	}
}

// Token is a one-shot point-to-point cancellation trigger. Trigger is
// idempotent, so redundant or late broadcast signals are safely dropped.
type Token struct {
	once sync.Once
	ch   chan struct{}
}

func NewToken() *Token {
	return &Token{ch: make(chan struct{})}
}

// Trigger fires the token. Calling it more than once is a no-op.
func (t *Token) Trigger() {
	t.once.Do(func() {
		close(t.ch)
	})
}

// Fired returns a channel that is closed once the token has been
// triggered.
func (t *Token) Fired() <-chan struct{} {
	return t.ch
}
