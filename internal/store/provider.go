package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInitFailed wraps backing-store setup failures surfaced by the provider.
var ErrInitFailed = errors.New("store initialization failed")

// InitFunc performs one-time store setup: open the connection, apply schema,
// seed data, and return the ready handle.
type InitFunc func(ctx context.Context) (Store, error)

type state int

const (
	uninitialized state = iota
	initializing
	ready
	failed
)

// Provider deduplicates store initialization. The first caller of Get runs
// the InitFunc; concurrent callers during that window wait on the same
// in-flight attempt instead of starting a second one. The pending handle is
// cleared on completion either way, so a failed initialization can be
// retried by the next caller.
type Provider struct {
	mu      sync.Mutex
	state   state
	store   Store
	lastErr error
	pending chan struct{}
	init    InitFunc
}

// NewProvider wraps an InitFunc. Initialization is lazy: nothing happens
// until the first Get.
func NewProvider(init InitFunc) *Provider {
	return &Provider{init: init}
}

// Get returns the ready store, initializing it on first use.
func (p *Provider) Get(ctx context.Context) (Store, error) {
	p.mu.Lock()
	switch p.state {
	case ready:
		s := p.store
		p.mu.Unlock()
		return s, nil

	case initializing:
		ch := p.pending
		p.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.state == ready {
			return p.store, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInitFailed, p.lastErr)

	default: // uninitialized or failed: this caller runs the init
		ch := make(chan struct{})
		p.pending = ch
		p.state = initializing
		p.mu.Unlock()

		s, err := p.init(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()
		close(ch)
		p.pending = nil
		if err != nil {
			p.state = failed
			p.lastErr = err
			return nil, fmt.Errorf("%w: %w", ErrInitFailed, err)
		}
		p.state = ready
		p.store = s
		p.lastErr = nil
		return s, nil
	}
}

// Reset closes and forgets the current store so the next Get reinitializes.
func (p *Provider) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.state == ready && p.store != nil {
		err = p.store.Close()
	}
	p.state = uninitialized
	p.store = nil
	p.lastErr = nil
	return err
}
