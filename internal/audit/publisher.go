package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPublisherClosed is returned by Emit once Close has been called.
var ErrPublisherClosed = errors.New("audit publisher closed")

// Publisher appends audit events to a Store, optionally through a buffered
// background writer.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool

	mu     sync.RWMutex
	closed bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues events and persists them in a background goroutine.
// When the buffer is full new events are dropped with a warning.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
}

// Close drains pending events. Later Emit calls fail with ErrPublisherClosed,
// so handlers still running after a timed-out shutdown cannot panic.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.async {
		close(p.events)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if !p.async {
		return p.store.Append(ctx, event)
	}
	select {
	case p.events <- event:
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped",
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
	return nil
}

func (p *Publisher) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}
