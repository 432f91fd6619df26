// Package mvi implements the unidirectional state container shared by the
// screens: intents go in through Dispatch, handlers reduce fetch outcomes
// with Update, and observers receive every distinct state through Observe.
//
// The stream is lazy. The first observer activates it and runs the screen's
// initial load. When the last observer leaves, a grace timer starts; if no
// observer returns before it fires, the activation context is cancelled and
// the next observer triggers a fresh initial load. The latest state is kept
// across teardowns.
package mvi

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"

	"woof/internal/logfields"
	"woof/internal/metrics"
	"woof/internal/result"
)

// DefaultGracePeriod is how long an unobserved stream stays active.
const DefaultGracePeriod = 5 * time.Second

// Config describes a container.
type Config[S any, I any] struct {
	// Name labels logs and metrics, e.g. "breeds".
	Name string
	// Initial is the state before any intent ran.
	Initial S
	// Handle processes one dispatched intent. It runs on its own goroutine.
	Handle func(ctx context.Context, intent I)
	// OnActivate runs when the first observer arrives after idle. Its
	// context is cancelled on teardown.
	OnActivate func(ctx context.Context)
	// Equal decides whether a reduced state is a change. Defaults to
	// reflect.DeepEqual.
	Equal func(a, b S) bool

	// GracePeriod defaults to DefaultGracePeriod when zero. A negative
	// value tears the stream down as soon as the last observer leaves.
	GracePeriod time.Duration
	Clock       clockwork.Clock
	Logger      *slog.Logger
	Recorder    metrics.Recorder
}

// Container holds the current state of one screen.
type Container[S any, I any] struct {
	name       string
	handle     func(ctx context.Context, intent I)
	onActivate func(ctx context.Context)
	equal      func(a, b S) bool
	grace      time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
	recorder   metrics.Recorder

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	subscribers atomic.Int64

	mu          sync.Mutex
	state       S
	subs        map[uint64]*subscriber[S]
	nextID      uint64
	active      bool
	activeStop  context.CancelFunc
	timer       clockwork.Timer
	generation  uint64
	activations int
	closed      bool
}

// New creates a container in its initial state. Nothing runs until the
// first observer subscribes or an intent is dispatched.
func New[S any, I any](cfg Config[S, I]) *Container[S, I] {
	c := &Container[S, I]{
		name:       cfg.Name,
		handle:     cfg.Handle,
		onActivate: cfg.OnActivate,
		equal:      cfg.Equal,
		grace:      cfg.GracePeriod,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		recorder:   metrics.OrNoop(cfg.Recorder),
		state:      cfg.Initial,
		subs:       make(map[uint64]*subscriber[S]),
	}
	if c.equal == nil {
		c.equal = func(a, b S) bool { return reflect.DeepEqual(a, b) }
	}
	switch {
	case c.grace == 0:
		c.grace = DefaultGracePeriod
	case c.grace < 0:
		c.grace = 0
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With(logfields.Screen(c.name))
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// State returns the current state.
func (c *Container[S, I]) State() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SubscriberCount returns the number of live observers.
func (c *Container[S, I]) SubscriberCount() int {
	return int(c.subscribers.Load())
}

// Active reports whether the stream is activated.
func (c *Container[S, I]) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// activationCount returns how many times the initial load was started.
func (c *Container[S, I]) activationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activations
}

// Observe subscribes to the state stream. The first value received is the
// state at subscription time, followed by every later distinct state in
// order. The returned cancel func unsubscribes and closes the channel; it
// is safe to call more than once.
func (c *Container[S, I]) Observe() (<-chan S, func()) {
	sub := newSubscriber[S]()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(sub.out)
		return sub.out, func() {}
	}

	sub.push(c.state)
	id := c.nextID
	c.nextID++
	c.subs[id] = sub
	n := c.subscribers.Inc()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
		c.generation++
	}

	var activateCtx context.Context
	if !c.active {
		c.active = true
		c.activations++
		activateCtx, c.activeStop = context.WithCancel(c.ctx)
		if c.onActivate != nil {
			c.wg.Add(1)
		}
	}
	c.mu.Unlock()

	go sub.run()

	c.recorder.AddSubscribers(c.name, 1)
	c.logger.Debug("observer attached", logfields.Subscribers(int(n)))

	if activateCtx != nil {
		c.recorder.IncActivation(c.name)
		c.logger.Info("state stream activated")
		if c.onActivate != nil {
			go func() {
				defer c.wg.Done()
				defer c.recoverPanic("activation")
				c.onActivate(activateCtx)
			}()
		}
	}

	var once sync.Once
	return sub.out, func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Container[S, I]) unsubscribe(id uint64) {
	c.mu.Lock()
	sub, ok := c.subs[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.subs, id)
	n := c.subscribers.Dec()

	if n == 0 && c.active && !c.closed {
		c.generation++
		gen := c.generation
		c.timer = c.clock.AfterFunc(c.grace, func() { c.teardown(gen) })
	}
	c.mu.Unlock()

	sub.stop()
	c.recorder.AddSubscribers(c.name, -1)
	c.logger.Debug("observer detached", logfields.Subscribers(int(n)))
}

// teardown deactivates the stream if the timer for generation gen is still
// the current one and nobody subscribed in the meantime.
func (c *Container[S, I]) teardown(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.generation || len(c.subs) > 0 || !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.timer = nil
	stop := c.activeStop
	c.activeStop = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	c.recorder.IncTeardown(c.name)
	c.logger.Info("state stream torn down after grace period")
}

// Update applies reducer to the current state. Reducers are serialized, so
// each one sees the result of the previous. A result equal to the current
// state is dropped.
func (c *Container[S, I]) Update(reducer func(S) S) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	next := reducer(c.state)
	if c.equal(c.state, next) {
		return
	}
	c.state = next
	for _, sub := range c.subs {
		sub.push(next)
	}
}

// Dispatch hands intent to the screen handler and returns immediately.
// Intents dispatched after Close are ignored.
func (c *Container[S, I]) Dispatch(intent I) {
	c.mu.Lock()
	if c.closed || c.handle == nil {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer c.recoverPanic("intent")
		c.handle(c.ctx, intent)
	}()
}

// Close cancels all work, waits for running handlers and closes every
// observer channel.
func (c *Container[S, I]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	subs := c.subs
	c.subs = make(map[uint64]*subscriber[S])
	c.active = false
	remaining := c.subscribers.Swap(0)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	for _, sub := range subs {
		sub.stop()
	}
	c.recorder.AddSubscribers(c.name, -int(remaining))
	c.logger.Debug("state container closed")
}

func (c *Container[S, I]) recoverPanic(what string) {
	if rec := recover(); rec != nil {
		c.logger.Error("handler panicked",
			logfields.Operation(what),
			slog.String(logfields.KeyError, result.PanicMessage(rec)))
	}
}
