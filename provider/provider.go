// Package provider implements fetch-with-fallback: an observable list that
// starts as static fallback data and is replaced by a remote listing only
// when one arrives non-empty while its consumer is still alive.
package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrEmptyResult means the fetch succeeded but produced no items.
	ErrEmptyResult = errors.New("empty result")
	// ErrStaleResponse means the result arrived after Close and was discarded.
	ErrStaleResponse = errors.New("stale response after teardown")
	// ErrFetchPanic means the fetcher panicked; the panic was recovered.
	ErrFetchPanic = errors.New("fetch panicked")
)

// Fetcher loads the remote list for a source identifier.
type Fetcher[T any] func(ctx context.Context, source string) ([]T, error)

// Provider holds the current list for one source. The zero value is not
// usable; create one with New.
type Provider[T any] struct {
	source   string
	fallback []T
	fetch    Fetcher[T]
	logger   *zap.Logger

	mu          sync.RWMutex
	items       []T
	remote      bool
	closed      bool
	subscribers []func([]T)
}

// New creates a Provider whose current list is the fallback.
// A nil logger discards log output.
func New[T any](source string, fallback []T, fetch Fetcher[T], logger *zap.Logger) *Provider[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	fb := append([]T(nil), fallback...)
	return &Provider[T]{
		source:   source,
		fallback: fb,
		fetch:    fetch,
		logger:   logger.With(zap.String("source", source)),
		items:    fb,
	}
}

// Source returns the source identifier.
func (p *Provider[T]) Source() string { return p.source }

// Items returns a copy of the current list.
func (p *Provider[T]) Items() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]T(nil), p.items...)
}

// Remote reports whether the current list came from a successful fetch.
func (p *Provider[T]) Remote() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.remote
}

// Closed reports whether Close has been called.
func (p *Provider[T]) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Subscribe registers fn to be called with the new list after each
// applied update. fn runs on the goroutine that called Refresh.
func (p *Provider[T]) Subscribe(fn func([]T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Close marks the consumer as torn down. Results arriving afterwards are
// discarded without touching the current list.
func (p *Provider[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.subscribers = nil
}

// Refresh performs one fetch attempt. On success with a non-empty list
// the current list is replaced; on any failure it is kept. The returned
// error is for logging and tests only and is already logged at warn
// level. Refresh never panics.
func (p *Provider[T]) Refresh(ctx context.Context) (err error) {
	if p.Closed() {
		return ErrStaleResponse
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFetchPanic, r)
			p.logger.Warn("Fetch panicked, keeping fallback", zap.Any("panic", r))
		}
	}()

	items, err := p.fetch(ctx, p.source)
	if err != nil {
		p.logger.Warn("Fetch failed, keeping fallback", zap.Error(err))
		return fmt.Errorf("refresh %s: %w", p.source, err)
	}
	if len(items) == 0 {
		p.logger.Warn("Fetch returned no items, keeping fallback")
		return ErrEmptyResult
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("Discarding result after teardown", zap.Int("items", len(items)))
		return ErrStaleResponse
	}
	p.items = append([]T(nil), items...)
	p.remote = true
	subs := slices.Clone(p.subscribers)
	current := p.items
	p.mu.Unlock()

	p.logger.Debug("Applied remote items", zap.Int("items", len(items)))
	for _, fn := range subs {
		fn(append([]T(nil), current...))
	}
	return nil
}
