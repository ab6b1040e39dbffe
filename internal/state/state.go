// Package state holds the map's view state: which constellation is
// selected, zoom and focus, the info panel flags and its metadata.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/metadata"
	"github.com/litescript/ls-skymap/internal/viewport"
)

// ErrUnknownConstellation is returned when selecting a name the catalog
// has no lines for.
var ErrUnknownConstellation = errors.New("unknown constellation")

// EventType represents the type of view change.
type EventType string

const (
	EventSelected       EventType = "SELECTED"
	EventCollapsed      EventType = "COLLAPSED"
	EventExpanded       EventType = "EXPANDED"
	EventCleared        EventType = "CLEARED"
	EventMetadata       EventType = "METADATA"
	EventMetadataFailed EventType = "METADATA_FAILED"
	EventStaleDropped   EventType = "STALE_DROPPED"
)

// Event records one view change.
type Event struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	Constellation string    `json:"constellation,omitempty"`
	Detail        string    `json:"detail,omitempty"`
}

// Locator finds constellation line features; *catalog.Catalog implements it.
type Locator interface {
	Feature(name string) (catalog.LineFeature, bool)
}

// Request asks the front end to fetch metadata for a new selection.
type Request struct {
	ID     uuid.UUID
	Name   string
	Center astro.Equatorial
}

// Result is the outcome of a metadata fetch for a Request.
type Result struct {
	ID     uuid.UUID
	Record metadata.Record
	Err    error
}

// View is an immutable snapshot of the view state.
type View struct {
	Selected  string           // Full constellation name, "" when unselected
	Zoom      float64          // 1 when unselected
	Focus     astro.Equatorial // Sky position of the view center
	Collapsed bool             // Info panel collapsed

	Metadata    *metadata.Record
	Loading     bool
	MetadataErr error

	Pending uuid.UUID
}

// IsSelected reports whether a constellation is selected.
func (v View) IsSelected() bool {
	return v.Selected != ""
}

// Center projects the focus for a canvas size. ok is false when nothing is
// selected. The focus is stored as a sky position so a resize re-projects it.
func (v View) Center(width, height float64) (x, y float64, ok bool) {
	if !v.IsSelected() {
		return 0, 0, false
	}
	x, y = astro.Project(v.Focus.RAdeg, v.Focus.DecDeg, width, height)
	return x, y, true
}

// Transform returns the viewport transform for a canvas size: zoomed on
// the focus when selected with zoom > 1, identity otherwise.
func (v View) Transform(width, height float64) viewport.Transform {
	x, y, ok := v.Center(width, height)
	if !ok || v.Zoom <= 1 {
		return viewport.Identity(width, height)
	}
	return viewport.New(v.Zoom, x, y, width, height)
}

// Config holds configuration for the state machine.
type Config struct {
	FocusZoom float64
	MaxEvents int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FocusZoom: 2.2,
		MaxEvents: 50,
	}
}

// Machine owns the view state. All transitions go through its methods.
type Machine struct {
	mu sync.RWMutex

	locator Locator
	cfg     Config
	view    View

	// Event log (ring buffer)
	events       []Event
	eventWriteAt int
}

// NewMachine creates a state machine in the Unselected state.
func NewMachine(locator Locator, cfg Config) *Machine {
	if cfg.FocusZoom < 1 {
		cfg.FocusZoom = DefaultConfig().FocusZoom
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultConfig().MaxEvents
	}
	return &Machine{
		locator: locator,
		cfg:     cfg,
		view:    View{Zoom: 1},
		events:  make([]Event, 0, cfg.MaxEvents),
	}
}

// View returns a snapshot of the current state.
func (m *Machine) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

// Click applies a click with the given constellation hovered ("" for none).
// Clicking a new constellation selects it and returns a metadata request;
// clicking the selected one toggles the collapsed flag.
func (m *Machine) Click(hovered string) (Request, bool) {
	if hovered == "" {
		return Request{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if hovered == m.view.Selected {
		m.view.Collapsed = !m.view.Collapsed
		if m.view.Collapsed {
			m.addEvent(EventCollapsed, hovered, "")
		} else {
			m.addEvent(EventExpanded, hovered, "")
		}
		return Request{}, false
	}

	f, ok := m.locator.Feature(hovered)
	if !ok {
		return Request{}, false
	}
	return m.selectLocked(f)
}

// SelectByName selects a constellation by full name or IAU code. Unknown
// names leave the state unchanged; selecting the current selection is a
// no-op and returns no request.
func (m *Machine) SelectByName(name string) (Request, bool, error) {
	f, ok := m.locator.Feature(name)
	if !ok {
		return Request{}, false, fmt.Errorf("%w: %q", ErrUnknownConstellation, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if f.Name() == m.view.Selected {
		return Request{}, false, nil
	}
	req, ok := m.selectLocked(f)
	return req, ok, nil
}

func (m *Machine) selectLocked(f catalog.LineFeature) (Request, bool) {
	center, ok := f.Center()
	if !ok {
		return Request{}, false
	}

	req := Request{
		ID:     uuid.New(),
		Name:   f.Name(),
		Center: center,
	}
	m.view = View{
		Selected: req.Name,
		Zoom:     m.cfg.FocusZoom,
		Focus:    center,
		Loading:  true,
		Pending:  req.ID,
	}
	m.addEvent(EventSelected, req.Name, fmt.Sprintf("%s %s",
		astro.FormatRA(center.RAdeg), astro.FormatDec(center.DecDeg)))
	return req, true
}

// ShowAll returns to the Unselected state, clearing metadata, the collapsed
// flag and any pending request.
func (m *Machine) ShowAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.view.Selected
	m.view = View{Zoom: 1}
	if prev != "" {
		m.addEvent(EventCleared, prev, "")
	}
}

// ApplyMetadata merges a fetch result. Results for anything but the current
// pending request are discarded and false is returned. A failed fetch
// installs the fallback record and sets MetadataErr.
func (m *Machine) ApplyMetadata(res Result) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res.ID == uuid.Nil || res.ID != m.view.Pending {
		m.addEvent(EventStaleDropped, res.Record.Name, res.ID.String())
		return false
	}

	rec := res.Record
	if res.Err != nil {
		rec = metadata.Fallback(m.view.Selected)
		m.view.MetadataErr = res.Err
		m.addEvent(EventMetadataFailed, m.view.Selected, res.Err.Error())
	} else {
		m.view.MetadataErr = nil
		m.addEvent(EventMetadata, m.view.Selected, "")
	}
	m.view.Metadata = &rec
	m.view.Loading = false
	m.view.Pending = uuid.Nil
	return true
}

// Retry issues a fresh request for the current selection after a failed
// fetch. A selection whose metadata loaded, or is still loading, is left
// alone.
func (m *Machine) Retry() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.view.IsSelected() || m.view.MetadataErr == nil {
		return Request{}, false
	}
	req := Request{ID: uuid.New(), Name: m.view.Selected, Center: m.view.Focus}
	m.view.Pending = req.ID
	m.view.Loading = true
	return req, true
}

// addEvent adds an event to the ring buffer. Caller holds the lock.
func (m *Machine) addEvent(t EventType, name, detail string) {
	e := Event{Type: t, Timestamp: time.Now(), Constellation: name, Detail: detail}
	if len(m.events) < m.cfg.MaxEvents {
		m.events = append(m.events, e)
		return
	}
	m.events[m.eventWriteAt] = e
	m.eventWriteAt = (m.eventWriteAt + 1) % m.cfg.MaxEvents
}

// RecentEvents returns the last n events, oldest first.
func (m *Machine) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.eventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

func (m *Machine) eventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}
	if len(m.events) < m.cfg.MaxEvents {
		out := make([]Event, len(m.events))
		copy(out, m.events)
		return out
	}
	out := make([]Event, m.cfg.MaxEvents)
	for i := 0; i < m.cfg.MaxEvents; i++ {
		out[i] = m.events[(m.eventWriteAt+i)%m.cfg.MaxEvents]
	}
	return out
}
