// Package debounce runs a lookup once input has been quiet for a fixed window.
// Each new input resets the window and cancels any lookup still in flight, so
// only the latest input ever produces a result.
package debounce

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	DefaultWait   = 250 * time.Millisecond
	DefaultMinLen = 2
)

type LookupFunc[T any] func(ctx context.Context, input string) (T, error)

// DeliverFunc receives the outcome of the latest lookup. It runs with the
// runner locked and must not call Push or Close.
type DeliverFunc[T any] func(input string, result T, err error)

type Runner[T any] struct {
	ctx     context.Context
	wait    time.Duration
	minLen  int
	lookup  LookupFunc[T]
	deliver DeliverFunc[T]

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// New creates a runner bound to ctx. Zero wait or minLen select the defaults.
func New[T any](ctx context.Context, wait time.Duration, minLen int, lookup LookupFunc[T], deliver DeliverFunc[T]) *Runner[T] {
	if wait <= 0 {
		wait = DefaultWait
	}
	if minLen <= 0 {
		minLen = DefaultMinLen
	}
	return &Runner[T]{
		ctx:     ctx,
		wait:    wait,
		minLen:  minLen,
		lookup:  lookup,
		deliver: deliver,
	}
}

// Push records a new input. Inputs shorter than the minimum supersede earlier
// ones but never reach the lookup.
func (r *Runner[T]) Push(input string) {
	input = strings.TrimSpace(input)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.seq++
	r.stopLocked()

	if utf8.RuneCountInString(input) < r.minLen {
		return
	}

	seq := r.seq
	r.timer = time.AfterFunc(r.wait, func() { r.fire(seq, input) })
}

func (r *Runner[T]) fire(seq uint64, input string) {
	r.mu.Lock()
	if r.closed || seq != r.seq {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(r.ctx)
	r.cancel = cancel
	r.mu.Unlock()

	result, err := r.lookup(ctx, input)

	// Delivery holds the lock so a concurrent Push either supersedes this
	// lookup before the check or waits until the result is out.
	r.mu.Lock()
	defer r.mu.Unlock()
	defer cancel()
	if r.closed || seq != r.seq || ctx.Err() != nil {
		return
	}
	r.cancel = nil
	r.deliver(input, result, err)
}

// stopLocked drops the pending timer and cancels the in-flight lookup.
func (r *Runner[T]) stopLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Close stops the runner. Pending and in-flight lookups are discarded.
func (r *Runner[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.stopLocked()
}
