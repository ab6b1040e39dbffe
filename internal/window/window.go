// Package window is the desktop front end: an Ebitengine game drawing the
// star map with vector primitives at display refresh rate.
package window

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/clock"
	"github.com/litescript/ls-skymap/internal/hittest"
	"github.com/litescript/ls-skymap/internal/interact"
	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/metadata"
	"github.com/litescript/ls-skymap/internal/render"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/version"
	"github.com/litescript/ls-skymap/internal/viewport"
)

const (
	panelWidth      = 300
	panelMargin     = 12
	lineHeight      = 16
	charWidth       = 7 // basicfont.Face7x13
	metadataTimeout = 20 * time.Second
	recentEvents    = 20
)

var (
	tooltipBG   = color.NRGBA{16, 22, 40, 230}
	tooltipEdge = color.NRGBA{120, 140, 200, 200}
	panelBG     = color.NRGBA{12, 16, 30, 220}
	textColor   = color.NRGBA{230, 236, 255, 255}
	dimColor    = color.NRGBA{150, 160, 190, 255}
	errColor    = color.NRGBA{255, 120, 110, 255}
	titleColor  = color.NRGBA{255, 216, 102, 255}
)

// Options configures the window.
type Options struct {
	Catalog    *catalog.Catalog
	Metadata   metadata.Gateway
	FocusZoom  float64
	CameraTime time.Duration
	Overlays   render.Overlays
	Select     string
	Width      int
	Height     int
	Log        *logging.Logger
}

// Game implements ebiten.Game.
type Game struct {
	ctx        context.Context
	opts       Options
	log        *logging.Logger
	machine    *state.Machine
	controller *interact.Controller

	canvas    *canvas
	camera    *render.Camera
	driver    *clock.Driver
	loop      *render.Loop
	transform viewport.Transform
	scene     render.Scene
	overlays  render.Overlays
	lastDraw  time.Time

	results chan state.Result
}

// New creates the game for a loaded catalog.
func New(ctx context.Context, opts Options) *Game {
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 640
	}
	cfg := state.DefaultConfig()
	if opts.FocusZoom >= 1 {
		cfg.FocusZoom = opts.FocusZoom
	}

	g := &Game{
		ctx:      ctx,
		opts:     opts,
		log:      opts.Log.Named("window"),
		machine:  state.NewMachine(opts.Catalog, cfg),
		canvas:   &canvas{},
		camera:   render.NewCamera(opts.CameraTime),
		driver:   clock.NewDriver(),
		overlays: opts.Overlays,
		results:  make(chan state.Result, 8),
	}
	g.controller = interact.NewController(opts.Catalog, g.machine, hittest.DefaultConfig(), g.log)
	g.loop = render.NewLoop(render.NewRenderer(),
		func() render.Canvas {
			if g.canvas.dst == nil {
				return nil
			}
			return g.canvas
		},
		func(clock.Tick) render.Scene { return g.scene },
	)
	g.loop.Attach(g.driver)

	if opts.Select != "" {
		g.selectByName(opts.Select)
	}
	return g
}

// Close releases the render loop and logs the session's recent events.
func (g *Game) Close() {
	g.loop.Close()
	st := g.loop.Stats()
	g.log.Debug("drew %d frames (last: %d stars, %d sub-paths)", st.Frames, st.Stars, st.SubPaths)
	for _, e := range g.machine.RecentEvents(recentEvents) {
		g.log.Debug("event %s %s %s", e.Type, e.Constellation, e.Detail)
	}
}

// Update implements ebiten.Game. It merges fetch results and handles input.
func (g *Game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}

	for drained := false; !drained; {
		select {
		case res := <-g.results:
			if !g.machine.ApplyMetadata(res) {
				g.log.Debug("dropped stale metadata %s", res.ID)
			}
		default:
			drained = true
		}
	}

	mx, my := ebiten.CursorPosition()
	if g.transform.Width > 0 && mx >= 0 && my >= 0 &&
		float64(mx) < g.transform.Width && float64(my) < g.transform.Height {
		g.controller.PointerMove(interact.PointerEvent{ClientX: float64(mx), ClientY: float64(my)}, g.transform)
	} else {
		g.controller.PointerLeave()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if req, ok := g.controller.Click(); ok {
			g.fetch(req)
		}
	}

	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		switch k {
		case ebiten.KeyQ:
			return ebiten.Termination
		case ebiten.KeyEscape, ebiten.KeyA:
			g.controller.ShowAll()
		case ebiten.KeyC:
			g.machine.Click(g.machine.View().Selected)
		case ebiten.KeyN:
			g.cycle(true)
		case ebiten.KeyP:
			g.cycle(false)
		case ebiten.KeyR:
			if req, ok := g.machine.Retry(); ok {
				g.fetch(req)
			}
		case ebiten.KeyM:
			g.overlays.Meridian = !g.overlays.Meridian
		case ebiten.KeyO:
			g.overlays.Sun = !g.overlays.Sun
		}
	}
	return nil
}

// Draw implements ebiten.Game. The camera advances by the time since the
// previous frame and the clock drives the render loop.
func (g *Game) Draw(screen *ebiten.Image) {
	now := time.Now()
	var dt time.Duration
	if !g.lastDraw.IsZero() {
		dt = now.Sub(g.lastDraw)
	}
	g.lastDraw = now

	g.canvas.dst = screen
	w, h := g.canvas.Size()
	v := g.machine.View()
	g.transform = g.camera.Update(v, w, h, dt)
	ov := g.overlays
	ov.Time = now
	g.scene = render.Scene{
		Catalog:   g.opts.Catalog,
		Selected:  v.Selected,
		Transform: g.transform,
		Overlays:  ov,
	}
	g.driver.Step(dt)

	g.drawHeader(screen)
	g.drawCursor(screen, h)
	if v.IsSelected() && !v.Collapsed {
		g.drawPanel(screen, v, w, h, now)
	}
	g.drawTooltip(screen, w, h)
}

// Layout implements ebiten.Game. The canvas follows the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (g *Game) drawHeader(screen *ebiten.Image) {
	line := "ls-skymap " + version.Version + "  click: select  a: all  c: panel  n/p: next/prev  m: meridian  o: sun  q: quit"
	text.Draw(screen, line, basicfont.Face7x13, 8, 16, dimColor)
}

// drawCursor shows the sky position under the pointer in the bottom-left corner.
func (g *Game) drawCursor(screen *ebiten.Image, h float64) {
	sky, ok := g.controller.Hover().Sky(g.transform)
	if !ok {
		return
	}
	line := astro.FormatRA(sky.RAdeg) + "  " + astro.FormatDec(sky.DecDeg)
	text.Draw(screen, line, basicfont.Face7x13, 8, int(h)-8, dimColor)
}

func (g *Game) drawTooltip(screen *ebiten.Image, w, h float64) {
	hov := g.controller.Hover()
	tip := interact.TooltipFor(hov)
	if !hov.HasPointer || tip.Empty() {
		return
	}
	lines := append([]string{tip.Title}, tip.Lines...)
	bw := float64(maxLen(lines)*charWidth + 16)
	bh := float64(len(lines)*lineHeight + 10)
	x, y := interact.DefaultPlacement().Place(hov.X, hov.Y, bw, bh, w, h)

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(bw), float32(bh), tooltipBG, true)
	vector.StrokeRect(screen, float32(x), float32(y), float32(bw), float32(bh), 1, tooltipEdge, true)
	for i, l := range lines {
		col := textColor
		if i == 0 {
			col = titleColor
		}
		text.Draw(screen, l, basicfont.Face7x13, int(x)+8, int(y)+18+i*lineHeight, col)
	}
}

func (g *Game) drawPanel(screen *ebiten.Image, v state.View, w, h float64, now time.Time) {
	x := w - panelWidth - panelMargin
	y := float64(28)
	ph := h - y - panelMargin
	vector.DrawFilledRect(screen, float32(x), float32(y), panelWidth, float32(ph), panelBG, true)

	tx, ty := int(x)+10, int(y)+20
	text.Draw(screen, v.Selected, basicfont.Face7x13, tx, ty, titleColor)
	ty += lineHeight + 4

	cols := (panelWidth - 20) / charWidth
	body := panelLines(v, cols)
	if g.overlays.Sun {
		body = append([]panelLine{{sunLine(v, now), titleColor}}, body...)
	}
	for _, pl := range body {
		if float64(ty) > y+ph-8 {
			break
		}
		text.Draw(screen, pl.text, basicfont.Face7x13, tx, ty, pl.color)
		ty += lineHeight
	}
}

type panelLine struct {
	text  string
	color color.Color
}

// panelLines lays out the info panel body wrapped to cols characters.
func panelLines(v state.View, cols int) []panelLine {
	if v.Loading {
		return []panelLine{{"Loading description...", dimColor}}
	}
	rec := v.Metadata
	if rec == nil {
		return nil
	}
	out := []panelLine{
		{"Area: " + rec.Area, textColor},
		{"Brightest: " + rec.BrightestStar, textColor},
		{"", textColor},
	}
	for _, l := range wrap(rec.Description, cols) {
		out = append(out, panelLine{l, textColor})
	}
	if rec.ReferenceURL != "" {
		out = append(out, panelLine{"", textColor}, panelLine{rec.ReferenceURL, dimColor})
	}
	if v.MetadataErr != nil {
		out = append(out, panelLine{"Description unavailable (r: retry)", errColor})
	}
	return out
}

// sunLine gives the Sun's distance from the selection's centre.
func sunLine(v state.View, t time.Time) string {
	return fmt.Sprintf("Sun: %.0f° away", astro.SunSeparation(v.Focus, t))
}

func (g *Game) fetch(req state.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(g.ctx, metadataTimeout)
		defer cancel()
		rec, err := metadata.Resolve(ctx, g.opts.Metadata, req.Name)
		if err != nil {
			g.log.Warn("metadata for %s: %v", req.Name, err)
		}
		select {
		case g.results <- state.Result{ID: req.ID, Record: rec, Err: err}:
		case <-g.ctx.Done():
		}
	}()
}

func (g *Game) selectByName(name string) {
	req, ok, err := g.controller.SelectConstellationByName(name)
	if err != nil {
		g.log.Warn("select %s: %v", name, err)
		return
	}
	if ok {
		g.fetch(req)
	}
}

func (g *Game) cycle(forward bool) {
	names := g.opts.Catalog.Constellations()
	if len(names) == 0 {
		return
	}
	cur := g.machine.View().Selected
	i := -1
	for j, n := range names {
		if n == cur {
			i = j
			break
		}
	}
	switch {
	case i < 0 && forward:
		i = 0
	case i < 0:
		i = len(names) - 1
	case forward:
		i = (i + 1) % len(names)
	default:
		i = (i - 1 + len(names)) % len(names)
	}
	g.selectByName(names[i])
}

// wrap breaks s into lines of at most cols characters on word boundaries.
func wrap(s string, cols int) []string {
	var out []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(word)) > cols {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func maxLen(lines []string) int {
	n := 0
	for _, l := range lines {
		if m := len([]rune(l)); m > n {
			n = m
		}
	}
	return n
}

// Run opens the window and blocks until it is closed or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Catalog == nil {
		return fmt.Errorf("window: no catalog")
	}
	g := New(ctx, opts)
	defer g.Close()

	ebiten.SetWindowTitle("ls-skymap")
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}
