package render

import (
	"sync"

	"github.com/litescript/ls-skymap/internal/clock"
)

// CanvasFunc returns the surface for the next frame, or nil when none is
// available yet (window not shown, zero size). Nil frames are skipped.
type CanvasFunc func() Canvas

// SceneFunc builds the scene for a tick.
type SceneFunc func(tick clock.Tick) Scene

// Loop draws a frame on every tick of the source it is attached to, until
// closed. Owners release it with defer loop.Close().
type Loop struct {
	renderer *Renderer
	canvas   CanvasFunc
	scene    SceneFunc

	mu      sync.Mutex
	sub     *clock.Subscription
	skipped uint64
	drawn   uint64
	stats   Stats
}

// NewLoop creates a loop; it does nothing until attached.
func NewLoop(r *Renderer, canvas CanvasFunc, scene SceneFunc) *Loop {
	if r == nil {
		r = NewRenderer()
	}
	return &Loop{renderer: r, canvas: canvas, scene: scene}
}

// Attach subscribes to src, replacing any earlier subscription.
func (l *Loop) Attach(src clock.Source) {
	sub := src.Subscribe(l.frame)

	l.mu.Lock()
	prev := l.sub
	l.sub = sub
	l.mu.Unlock()

	prev.Close()
}

// Close releases the subscription. Safe to call more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()

	sub.Close()
}

func (l *Loop) frame(tick clock.Tick) {
	c := l.canvas()
	if c == nil {
		l.mu.Lock()
		l.skipped++
		l.mu.Unlock()
		return
	}
	l.renderer.DrawFrame(c, tick.Millis, l.scene(tick))

	l.mu.Lock()
	l.drawn++
	l.stats = l.renderer.Stats()
	l.mu.Unlock()
}

// Counts returns the number of frames drawn and skipped.
func (l *Loop) Counts() (drawn, skipped uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.drawn, l.skipped
}

// Stats returns the renderer counters as of the last drawn frame.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
