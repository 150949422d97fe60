// Package host runs a reactive.System on a single goroutine and feeds it
// events from the rest of the program.
package host

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/delaneyj/signalgraph/reactive"
)

var (
	ErrStopped   = errors.New("host: loop stopped")
	ErrQueueFull = errors.New("host: event queue full")
	ErrRunning   = errors.New("host: loop already running")
)

// Handler runs on the loop goroutine with exclusive access to the System.
type Handler func(rs *reactive.System) error

type event struct {
	handler Handler
	result  chan error // nil for fire and forget events
}

// Loop owns a System. Every read, write, and flush happens on the goroutine
// calling Run; other goroutines reach the graph through Post and Go.
//
// By default each event runs inside System.Batch, so its writes are flushed
// together once the handler returns. With WithFramePolicy events only write
// and the loop flushes once per frame.
type Loop struct {
	rs  *reactive.System
	cfg config

	queue    chan event
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
}

func New(rs *reactive.System, opts ...Option) *Loop {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loop{
		rs:     rs,
		cfg:    cfg,
		queue:  make(chan event, cfg.queueSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run processes events until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(l.done)

	var tick <-chan time.Time
	if l.cfg.frame > 0 {
		ticker := time.NewTicker(l.cfg.frame)
		defer ticker.Stop()
		tick = ticker.C
	}

	l.cfg.logger.Debug("loop started", "frame", l.cfg.frame, "queue", l.cfg.queueSize)
	for {
		select {
		case <-ctx.Done():
			l.flushFrame(context.Background())
			return ctx.Err()
		case <-l.stopCh:
			l.flushFrame(context.Background())
			return nil
		case ev := <-l.queue:
			l.handle(ev)
		case <-tick:
			l.flushFrame(ctx)
		}
	}
}

// Stop makes Run return. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn and waits for it to run. Under the default policy the
// returned error includes failures of the flush that followed fn. Post must
// not be called from inside a handler.
func (l *Loop) Post(ctx context.Context, fn Handler) error {
	if l.stopped() {
		return ErrStopped
	}
	ev := event{handler: fn, result: make(chan error, 1)}
	select {
	case l.queue <- ev:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return ErrStopped
	}

	select {
	case err := <-ev.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Go queues fn without waiting. Errors are logged.
func (l *Loop) Go(fn Handler) error {
	if l.stopped() {
		return ErrStopped
	}
	select {
	case l.queue <- event{handler: fn}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (l *Loop) stopped() bool {
	select {
	case <-l.stopCh:
		return true
	default:
		return false
	}
}

func (l *Loop) handle(ev event) {
	var err error
	if l.cfg.frame > 0 {
		err = l.call(ev.handler)
	} else {
		err = l.rs.Batch(func() error {
			return l.call(ev.handler)
		})
	}
	if ev.result != nil {
		ev.result <- err
		return
	}
	if err != nil {
		l.cfg.logger.Warn("event failed", "error", err)
	}
}

func (l *Loop) call(fn Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &reactive.PanicError{Value: r}
		}
	}()
	return fn(l.rs)
}

func (l *Loop) flushFrame(ctx context.Context) {
	if l.rs.Stats().Pending == 0 {
		return
	}
	if err := l.rs.FlushContext(ctx); err != nil {
		l.cfg.logger.Warn("frame flush failed", "error", err)
	}
}
