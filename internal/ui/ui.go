// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/clock"
	"github.com/litescript/ls-skymap/internal/hittest"
	"github.com/litescript/ls-skymap/internal/interact"
	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/metadata"
	"github.com/litescript/ls-skymap/internal/query"
	"github.com/litescript/ls-skymap/internal/render"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/viewport"
)

const (
	headerRows       = 1
	footerRows       = 2
	panelCols        = 38
	minPanelMapCols  = 40
	thumbCols        = 32
	thumbRows        = 12
	metadataTimeout  = 20 * time.Second
	imageTimeout     = 60 * time.Second
	defaultFrameRate = 33 * time.Millisecond
	recentEvents     = 20
)

// Msg types for Bubble Tea
type (
	// frameMsg drives the render clock.
	frameMsg time.Time

	// loadedMsg carries the result of the initial catalog load.
	loadedMsg struct {
		cat *catalog.Catalog
		err error
	}

	// metadataMsg carries a finished metadata request.
	metadataMsg struct {
		result state.Result
	}

	// imageMsg carries a finished SkyView download.
	imageMsg struct {
		name   string
		survey string
		img    image.Image
		err    error
	}
)

// ImageSource downloads survey images.
type ImageSource interface {
	Fetch(ctx context.Context, img metadata.Image) (image.Image, error)
}

// Options configures the terminal front end.
type Options struct {
	Context       context.Context
	Load          func(ctx context.Context) (*catalog.Catalog, error)
	Metadata      metadata.Gateway
	Images        ImageSource
	SkyViewURL    string
	Survey        string
	FocusZoom     float64
	CameraTime    time.Duration
	FrameInterval time.Duration
	Overlays      render.Overlays
	Select        string // Constellation to select once loaded
	Log           *logging.Logger
	Clipboard     func(string) error
}

// frameState is shared by every copy of the model; the render loop's
// callbacks read it.
type frameState struct {
	canvas    *Braille
	camera    *render.Camera
	driver    *clock.Driver
	loop      *render.Loop
	transform viewport.Transform
	scene     render.Scene
}

// Model is the root Bubble Tea model.
type Model struct {
	opts Options
	log  *logging.Logger

	// Loaded state
	cat        *catalog.Catalog
	machine    *state.Machine
	controller *interact.Controller
	loadErr    error

	// UI state
	width, height    int
	mapCols, mapRows int
	ready            bool
	frame            *frameState
	lastFrame        time.Time
	overlays         render.Overlays
	query            textinput.Model
	answer           string
	status           string

	// Pointer cell inside the map, for tooltip placement.
	pointerCol, pointerRow int

	// SkyView thumbnail
	showImage    bool
	survey       string
	image        image.Image
	imageFor     string
	imageErr     error
	imageLoading bool
}

// New creates the root model. The catalog is loaded by Init.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultFrameRate
	}
	if opts.FocusZoom < 1 {
		opts.FocusZoom = state.DefaultConfig().FocusZoom
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Survey == "" {
		opts.Survey = metadata.DefaultSurvey
	}

	ti := textinput.New()
	ti.Prompt = "ask> "
	ti.Placeholder = `e.g. "show me Orion" or "brightest star in Leo"`
	ti.CharLimit = 120

	f := &frameState{
		camera: render.NewCamera(opts.CameraTime),
		driver: clock.NewDriver(),
	}
	f.loop = render.NewLoop(render.NewRenderer(),
		func() render.Canvas {
			if f.canvas == nil || f.scene.Catalog == nil {
				return nil
			}
			return f.canvas
		},
		func(clock.Tick) render.Scene { return f.scene },
	)
	f.loop.Attach(f.driver)

	return Model{
		opts:     opts,
		log:      opts.Log.Named("ui"),
		frame:    f,
		overlays: opts.Overlays,
		query:    ti,
		survey:   opts.Survey,
	}
}

// Close releases the render loop subscription.
func (m Model) Close() {
	m.frame.loop.Close()
	st := m.frame.loop.Stats()
	m.log.Debug("drew %d frames (last: %d stars, %d sub-paths)", st.Frames, st.Stars, st.SubPaths)
	if m.machine != nil {
		for _, e := range m.machine.RecentEvents(recentEvents) {
			m.log.Debug("event %s %s %s", e.Type, e.Constellation, e.Detail)
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.frameCmd())
}

func (m Model) loadCmd() tea.Cmd {
	load := m.opts.Load
	ctx := m.opts.Context
	return func() tea.Msg {
		if load == nil {
			return loadedMsg{err: errors.New("no catalog source")}
		}
		cat, err := load(ctx)
		return loadedMsg{cat: cat, err: err}
	}
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(m.opts.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.query.Focused() {
			return m.updateQuery(msg)
		}
		cmds = append(cmds, m.handleKey(msg))
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case frameMsg:
		now := time.Time(msg)
		var dt time.Duration
		if !m.lastFrame.IsZero() {
			dt = now.Sub(m.lastFrame)
		}
		m.lastFrame = now
		m.drawFrame(now, dt)
		cmds = append(cmds, m.frameCmd())

	case loadedMsg:
		cmds = append(cmds, m.handleLoaded(msg))

	case metadataMsg:
		if m.machine != nil && !m.machine.ApplyMetadata(msg.result) {
			m.log.Debug("dropped stale metadata %s", msg.result.ID)
		}

	case imageMsg:
		m.handleImage(msg)

	default:
		if m.query.Focused() {
			var cmd tea.Cmd
			m.query, cmd = m.query.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleLoaded(msg loadedMsg) tea.Cmd {
	if msg.err != nil {
		m.loadErr = msg.err
		m.log.Error("catalog load failed: %v", msg.err)
		return nil
	}
	m.cat = msg.cat
	cfg := state.DefaultConfig()
	cfg.FocusZoom = m.opts.FocusZoom
	m.machine = state.NewMachine(m.cat, cfg)
	m.controller = interact.NewController(m.cat, m.machine, hittest.DefaultConfig(), m.log)
	m.status = fmt.Sprintf("%d stars, %d constellations", len(m.cat.Stars), len(m.cat.Lines))
	m.log.Info("catalog loaded: %s", m.status)
	m.layout()

	if m.opts.Select != "" {
		return m.selectByName(m.opts.Select)
	}
	return nil
}

// layout sizes the map for the terminal and the info panel.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	cols := m.width
	if m.panelVisible() && cols-panelCols >= minPanelMapCols {
		cols -= panelCols
	}
	rows := m.height - headerRows - footerRows
	if cols < 1 || rows < 1 {
		m.frame.canvas = nil
		return
	}
	m.query.Width = m.width - len(m.query.Prompt) - 1
	if cols == m.mapCols && rows == m.mapRows && m.frame.canvas != nil {
		return
	}
	m.mapCols, m.mapRows = cols, rows
	m.frame.canvas = NewBraille(cols, rows)
	w, h := m.frame.canvas.Size()
	m.frame.transform = viewport.Identity(w, h)
}

func (m Model) panelVisible() bool {
	if m.machine == nil {
		return false
	}
	v := m.machine.View()
	return v.IsSelected() && !v.Collapsed
}

// drawFrame advances the camera and the clock; the loop draws on the tick.
func (m *Model) drawFrame(now time.Time, dt time.Duration) {
	f := m.frame
	if f.canvas != nil && m.machine != nil {
		m.layout()
		w, h := f.canvas.Size()
		v := m.machine.View()
		f.transform = f.camera.Update(v, w, h, dt)
		ov := m.overlays
		ov.Time = now
		f.scene = render.Scene{
			Catalog:   m.cat,
			Selected:  v.Selected,
			Transform: f.transform,
			Overlays:  ov,
		}
	}
	f.driver.Step(dt)
	if f.canvas != nil && m.controller != nil {
		m.drawLabels()
		m.drawTooltip()
	}
}

// drawLabels names the selected constellation at its centre.
func (m *Model) drawLabels() {
	v := m.machine.View()
	if !v.IsSelected() {
		return
	}
	f := m.frame
	w, h := f.canvas.Size()
	x, y, ok := v.Center(w, h)
	if !ok {
		return
	}
	sx, sy := f.transform.ToScreen(x, y)
	col := int(sx)/dotsX - len([]rune(v.Selected))/2
	f.canvas.PutText(col, int(sy)/dotsY, v.Selected, colorHighlight, "")
}

func (m *Model) drawTooltip() {
	h := m.controller.Hover()
	if !h.HasPointer {
		return
	}
	tip := interact.TooltipFor(h)
	if tip.Empty() {
		return
	}
	lines := append([]string{tip.Title}, tip.Lines...)
	bw, bh := BoxSize(lines)
	p := interact.Placement{Offset: 2, Padding: 0}
	x, y := p.Place(float64(m.pointerCol), float64(m.pointerRow),
		float64(bw), float64(bh), float64(m.mapCols), float64(m.mapRows))
	m.frame.canvas.Box(int(x), int(y), lines, colorTooltipFG, colorTooltipBG)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.controller == nil {
		return nil
	}
	col, row := msg.X, msg.Y-headerRows
	if col < 0 || row < 0 || col >= m.mapCols || row >= m.mapRows {
		m.controller.PointerLeave()
		return nil
	}

	m.pointerCol, m.pointerRow = col, row
	m.controller.PointerMove(interact.PointerEvent{
		ClientX: float64(msg.X*dotsX) + dotsX/2,
		ClientY: float64(msg.Y*dotsY) + dotsY/2,
		OriginY: float64(headerRows * dotsY),
	}, m.frame.transform)

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if req, ok := m.controller.Click(); ok {
			return m.onSelected(req)
		}
		m.layout()
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		m.answer = ""
		return m.query.Focus()

	case "esc", "a":
		if m.controller != nil {
			m.controller.ShowAll()
			m.resetImage()
			m.layout()
		}
		m.answer = ""

	case "c":
		if m.machine != nil {
			m.machine.Click(m.machine.View().Selected)
			m.layout()
		}

	case "n", "p":
		return m.cycleSelection(msg.String() == "n")

	case "y":
		m.copyText()

	case "r":
		return m.retry()

	case "i":
		m.showImage = !m.showImage
		if m.showImage {
			return m.fetchImage()
		}

	case "s":
		m.survey = metadata.NextSurvey(m.survey)
		if m.showImage {
			return m.fetchImage()
		}

	case "m":
		m.overlays.Meridian = !m.overlays.Meridian

	case "o":
		m.overlays.Sun = !m.overlays.Sun
	}
	return nil
}

func (m Model) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.query.Reset()
		m.query.Blur()
		return m, nil
	case "enter":
		text := m.query.Value()
		m.query.Reset()
		m.query.Blur()
		return m, m.ask(text)
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

// ask answers a query and applies its action.
func (m *Model) ask(text string) tea.Cmd {
	resp := query.Ask(text)
	m.answer = resp.Text
	m.log.Debug("query %q -> %s %s", text, resp.Action, resp.Constellation)

	switch resp.Action {
	case query.RespondSelectConstellation, query.RespondHighlightStar:
		if resp.Constellation == "" || m.controller == nil {
			return nil
		}
		if resp.Action == query.RespondHighlightStar && resp.Star != "" {
			if _, ok := m.cat.StarByName(resp.Star); !ok {
				m.answer += fmt.Sprintf(" (%s is not in the loaded star data.)", resp.Star)
			}
		}
		return m.selectByName(resp.Constellation)
	}
	return nil
}

func (m *Model) selectByName(name string) tea.Cmd {
	req, ok, err := m.controller.SelectConstellationByName(name)
	if err != nil {
		m.answer = fmt.Sprintf("%s is not in the loaded catalog.", name)
		return nil
	}
	if !ok {
		return nil
	}
	return m.onSelected(req)
}

func (m *Model) cycleSelection(forward bool) tea.Cmd {
	if m.cat == nil || len(m.cat.Lines) == 0 {
		return nil
	}
	names := m.cat.Constellations()
	cur := m.machine.View().Selected
	i := sort.SearchStrings(names, cur)
	switch {
	case cur == "":
		if forward {
			i = 0
		} else {
			i = len(names) - 1
		}
	case forward:
		i = (i + 1) % len(names)
	default:
		i = (i - 1 + len(names)) % len(names)
	}
	return m.selectByName(names[i])
}

// onSelected starts the fetches for a new selection.
func (m *Model) onSelected(req state.Request) tea.Cmd {
	m.resetImage()
	m.layout()
	cmds := []tea.Cmd{m.fetchMetadata(req)}
	if m.showImage {
		cmds = append(cmds, m.fetchImage())
	}
	return tea.Batch(cmds...)
}

func (m Model) fetchMetadata(req state.Request) tea.Cmd {
	g := m.opts.Metadata
	ctx := m.opts.Context
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
		defer cancel()
		rec, err := metadata.Resolve(ctx, g, req.Name)
		return metadataMsg{result: state.Result{ID: req.ID, Record: rec, Err: err}}
	}
}

func (m *Model) fetchImage() tea.Cmd {
	if m.machine == nil || m.opts.Images == nil {
		return nil
	}
	v := m.machine.View()
	if !v.IsSelected() {
		return nil
	}
	m.imageLoading = true
	m.imageErr = nil
	m.image = nil
	m.imageFor = v.Selected

	img := metadata.ConstellationImage(m.opts.SkyViewURL, v.Selected, v.Focus, m.survey)
	src := m.opts.Images
	ctx := m.opts.Context
	name, survey := v.Selected, m.survey
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, imageTimeout)
		defer cancel()
		decoded, err := src.Fetch(ctx, img)
		return imageMsg{name: name, survey: survey, img: decoded, err: err}
	}
}

func (m *Model) handleImage(msg imageMsg) {
	if m.machine == nil || msg.name != m.machine.View().Selected || msg.survey != m.survey {
		return
	}
	m.imageLoading = false
	m.image = msg.img
	m.imageErr = msg.err
	if msg.err != nil {
		m.log.Warn("image for %s: %v", msg.name, msg.err)
	}
}

func (m *Model) resetImage() {
	m.image = nil
	m.imageErr = nil
	m.imageFor = ""
	m.imageLoading = false
}

func (m *Model) retry() tea.Cmd {
	if m.machine == nil {
		return nil
	}
	var cmds []tea.Cmd
	if req, ok := m.machine.Retry(); ok {
		cmds = append(cmds, m.fetchMetadata(req))
	}
	if m.showImage && m.imageErr != nil {
		cmds = append(cmds, m.fetchImage())
	}
	return tea.Batch(cmds...)
}

// copyText copies the tooltip, or the info panel when nothing is hovered.
func (m *Model) copyText() {
	text := ""
	if m.controller != nil {
		text = m.controller.Tooltip().Text()
	}
	if text == "" && m.machine != nil {
		text = panelText(m.machine.View())
	}
	if text == "" {
		return
	}
	if err := m.opts.Clipboard(text); err != nil {
		m.answer = "Copy failed: " + err.Error()
		return
	}
	m.answer = "Copied to clipboard."
}

// Run starts the terminal UI and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	final, err := tea.NewProgram(m, progOpts...).Run()
	// The final model holds the loaded state; the loop is shared by value.
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
