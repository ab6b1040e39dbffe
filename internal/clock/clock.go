// Package clock delivers animation ticks to subscribers.
//
// A Source hands out Subscriptions; a subscriber receives ticks until it
// closes its Subscription. Timestamps seen by a subscriber never decrease.
package clock

import (
	"context"
	"sync"
	"time"
)

// Tick is one animation frame.
type Tick struct {
	Millis float64 // Milliseconds since the source started
	Frame  uint64
}

// Handler receives ticks.
type Handler func(Tick)

// Source produces ticks for subscribers.
type Source interface {
	Subscribe(h Handler) *Subscription
}

// Subscription is a live registration with a Source.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Close stops delivery. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// hub is the subscriber set shared by Driver and Ticker.
type hub struct {
	mu     sync.Mutex
	subs   map[int]Handler
	nextID int
	last   float64
	frame  uint64
}

func (h *hub) subscribe(fn Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]Handler)
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return &Subscription{cancel: func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}}
}

// emit delivers a tick. A timestamp earlier than the previous one is
// raised to it.
func (h *hub) emit(ms float64) Tick {
	h.mu.Lock()
	if ms < h.last {
		ms = h.last
	}
	h.last = ms
	h.frame++
	t := Tick{Millis: ms, Frame: h.frame}
	handlers := make([]Handler, 0, len(h.subs))
	for _, fn := range h.subs {
		handlers = append(handlers, fn)
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(t)
	}
	return t
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Driver is a Source advanced by its owner, typically once per display
// refresh of a front end.
type Driver struct {
	hub
}

// NewDriver creates a driver at time zero.
func NewDriver() *Driver {
	return &Driver{}
}

// Subscribe implements Source.
func (d *Driver) Subscribe(h Handler) *Subscription {
	return d.subscribe(h)
}

// Advance emits a tick at an absolute timestamp in milliseconds.
func (d *Driver) Advance(ms float64) Tick {
	return d.emit(ms)
}

// Step emits a tick dt after the previous one.
func (d *Driver) Step(dt time.Duration) Tick {
	d.mu.Lock()
	ms := d.last + float64(dt)/float64(time.Millisecond)
	d.mu.Unlock()
	return d.emit(ms)
}

// Subscribers returns the number of live subscriptions.
func (d *Driver) Subscribers() int {
	return d.count()
}

// Ticker is a Source driven by the wall clock.
type Ticker struct {
	hub
	interval time.Duration
	start    time.Time
}

// NewTicker creates a ticker firing every interval once started.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{interval: interval}
}

// Subscribe implements Source.
func (t *Ticker) Subscribe(h Handler) *Subscription {
	return t.subscribe(h)
}

// Run emits ticks until ctx is done. Handlers run on the calling goroutine.
func (t *Ticker) Run(ctx context.Context) error {
	t.start = time.Now()
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-tk.C:
			t.emit(float64(now.Sub(t.start)) / float64(time.Millisecond))
		}
	}
}
