package render

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/clock"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/viewport"
)

// recorder is a Canvas that records calls.
type recorder struct {
	Stack
	w, h    float64
	clears  []color.Color
	ops     []string
	strokes []recordedStroke
	circles []recordedCircle
}

type recordedStroke struct {
	paths [][]Point
	style Stroke
}

type recordedCircle struct {
	x, y, r float64
	fill    Fill
}

func newRecorder(w, h float64) *recorder {
	return &recorder{w: w, h: h}
}

func (r *recorder) Size() (float64, float64) { return r.w, r.h }

func (r *recorder) Clear(bg color.Color) {
	r.clears = append(r.clears, bg)
	r.Stack.Reset()
}

func (r *recorder) Save() {
	r.ops = append(r.ops, "save")
	r.Stack.Save()
}

func (r *recorder) Restore() {
	r.ops = append(r.ops, "restore")
	r.Stack.Restore()
}

func (r *recorder) Translate(dx, dy float64) {
	r.ops = append(r.ops, "translate")
	r.Stack.Translate(dx, dy)
}

func (r *recorder) Scale(s float64) {
	r.ops = append(r.ops, "scale")
	r.Stack.Scale(s)
}

func (r *recorder) StrokePath(paths [][]Point, style Stroke) {
	r.strokes = append(r.strokes, recordedStroke{paths, style})
}

func (r *recorder) FillCircle(x, y, rad float64, fill Fill) {
	r.circles = append(r.circles, recordedCircle{x, y, rad, fill})
}

func intPtr(v int) *int { return &v }

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Stars: []catalog.Star{
			{ID: intPtr(1), RA: 279.23, Dec: 38.78, Mag: 0.03, Name: "Vega", SpecType: "A0V"},
			{ID: intPtr(2), RA: 78.63, Dec: -8.2, Mag: 0.13, Name: "Rigel", SpecType: "B8Ia"},
			{RA: 10, Dec: 10, Mag: 5},
		},
		Lines: []catalog.LineFeature{
			{ID: "Lyr", Lines: []catalog.Polyline{
				{{RA: 279.23, Dec: 38.78}, {RA: 281.19, Dec: 37.6}, {RA: 283.6, Dec: 36.9}},
			}},
			{ID: "Peg", Lines: []catalog.Polyline{
				{{RA: 346, Dec: 28}, {RA: 2, Dec: 29}, {RA: 3.3, Dec: 15}},
			}},
		},
	}
}

const tol = 1e-9

func TestStack(t *testing.T) {
	var s Stack
	if a := s.Current(); a.S != 1 || a.TX != 0 {
		t.Fatalf("zero Stack = %+v, want identity", a)
	}

	s.Save()
	s.Translate(100, 50)
	s.Scale(2)
	s.Translate(-10, -5)

	x, y := s.Current().Apply(10, 5)
	if x != 100 || y != 50 {
		t.Errorf("Apply(10,5) = (%v, %v), want (100, 50)", x, y)
	}
	x, _ = s.Current().Apply(20, 5)
	if x != 120 {
		t.Errorf("scaled Apply x = %v, want 120", x)
	}

	s.Restore()
	if a := s.Current(); a.S != 1 || a.TX != 0 || a.TY != 0 {
		t.Errorf("after Restore = %+v", a)
	}
	s.Restore() // unmatched
	if s.Depth() != 0 {
		t.Error("unmatched Restore changed depth")
	}
}

func TestStackMatchesViewport(t *testing.T) {
	tr := viewport.New(2.2, 300, 120, 1000, 500)
	var s Stack
	s.Translate(500, 250)
	s.Scale(tr.Zoom)
	s.Translate(-tr.CenterX, -tr.CenterY)

	for _, p := range []Point{{0, 0}, {300, 120}, {812, 33}} {
		gx, gy := s.Current().Apply(p.X, p.Y)
		wx, wy := tr.ToScreen(p.X, p.Y)
		if math.Abs(gx-wx) > tol || math.Abs(gy-wy) > tol {
			t.Errorf("canvas (%v, %v) != viewport (%v, %v)", gx, gy, wx, wy)
		}
	}
}

func TestSpectralColor(t *testing.T) {
	tests := []struct {
		spec string
		want color.NRGBA
	}{
		{"O5Ia", color.NRGBA{0x9b, 0xb0, 0xff, 255}},
		{"B8Ia", color.NRGBA{0xaa, 0xbf, 0xff, 255}},
		{"A0V", color.NRGBA{0xca, 0xd7, 0xff, 255}},
		{"F5IV", color.NRGBA{0xf8, 0xf7, 0xff, 255}},
		{"G2V", color.NRGBA{0xff, 0xf4, 0xea, 255}},
		{"K1.5III", color.NRGBA{0xff, 0xd2, 0xa1, 255}},
		{"m2Iab", color.NRGBA{0xff, 0xcc, 0x6f, 255}},
		{"", color.NRGBA{255, 255, 255, 255}},
		{"W", color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := SpectralColor(tt.spec); got != tt.want {
			t.Errorf("SpectralColor(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestTwinkle(t *testing.T) {
	for _, ms := range []float64{0, 16, 1000, 123456.7} {
		for id := 0; id < 20; id++ {
			tw := Twinkle(id, id, ms)
			if tw < 0.4-tol || tw > 1.0+tol {
				t.Fatalf("Twinkle(%d, %v) = %v out of range", id, ms, tw)
			}
			phase := math.Mod(float64(id)*13.37+ms*0.001, 2*math.Pi)
			want := 0.7 + 0.3*math.Sin(phase+math.Sin(ms*0.0002+float64(id)))
			if math.Abs(tw-want) > tol {
				t.Fatalf("Twinkle(%d, %v) = %v, want %v", id, ms, tw, want)
			}
		}
	}
}

func TestLookFor(t *testing.T) {
	look := LookFor(7, 3, 1.0, "K0", 5000)
	tw := Twinkle(7, 3, 5000)

	if math.Abs(look.Radius-3.9*tw) > tol {
		t.Errorf("Radius = %v, want %v", look.Radius, 3.9*tw)
	}
	if math.Abs(look.Alpha-0.87*tw) > tol {
		t.Errorf("Alpha = %v, want %v", look.Alpha, 0.87*tw)
	}
	if math.Abs(look.Glow-look.Radius*2.5) > tol {
		t.Errorf("Glow = %v, want %v", look.Glow, look.Radius*2.5)
	}
	if look.Color.R != 0xff || look.Color.G != 0xd2 {
		t.Errorf("Color = %v, want K tint", look.Color)
	}

	faint := LookFor(1, 1, 9, "", 0)
	if faint.Radius < 1.1*0.4-tol || faint.Alpha < 0.55*0.4-tol {
		t.Errorf("faint star below floors: %+v", faint)
	}
}

func TestFeaturePaths_Seam(t *testing.T) {
	cat := testCatalog()
	peg, _ := cat.Feature("Peg")

	paths := FeaturePaths(peg, 360, 180)
	if len(paths) != 1 {
		t.Fatalf("got %d sub-paths, want 1 (lone vertex dropped)", len(paths))
	}
	for _, p := range paths {
		for i := 1; i < len(p); i++ {
			if math.Abs(p[i].X-p[i-1].X) > 180 {
				t.Errorf("edge spans the map: %v -> %v", p[i-1], p[i])
			}
		}
	}

	// Two vertices on each side of the seam give two sub-paths.
	split := catalog.LineFeature{ID: "X", Lines: []catalog.Polyline{
		{{RA: 350, Dec: 0}, {RA: 355, Dec: 0}, {RA: 5, Dec: 0}, {RA: 10, Dec: 0}},
	}}
	if got := len(FeaturePaths(split, 360, 180)); got != 2 {
		t.Errorf("split sub-paths = %d, want 2", got)
	}
}

func TestDrawFrame_Unselected(t *testing.T) {
	c := newRecorder(360, 180)
	r := NewRenderer()
	cat := testCatalog()

	r.DrawFrame(c, 1000, Scene{Catalog: cat, Transform: viewport.Identity(360, 180)})

	if len(c.clears) != 1 || c.clears[0] != Background {
		t.Errorf("clears = %v, want one black clear", c.clears)
	}
	for _, op := range c.ops {
		if op == "translate" || op == "scale" {
			t.Errorf("unexpected transform op %q", op)
		}
	}
	if len(c.strokes) != 1 {
		t.Fatalf("strokes = %d, want 1", len(c.strokes))
	}
	s := c.strokes[0]
	if s.style.Width != 1.2 || s.style.Color != LineColor || s.style.Glow != 0 {
		t.Errorf("line style = %+v", s.style)
	}
	if len(s.paths) != 2 {
		t.Errorf("sub-paths = %d, want 2 (Lyra + Pegasus west part)", len(s.paths))
	}
	if len(c.circles) != len(cat.Stars) {
		t.Errorf("circles = %d, want %d", len(c.circles), len(cat.Stars))
	}

	vega := c.circles[0]
	wx, wy := astro.Project(279.23, 38.78, 360, 180)
	if math.Abs(vega.x-wx) > tol || math.Abs(vega.y-wy) > tol {
		t.Errorf("Vega drawn at (%v, %v), want (%v, %v)", vega.x, vega.y, wx, wy)
	}
	look := LookFor(1, 0, 0.03, "A0V", 1000)
	if math.Abs(vega.r-look.Radius) > tol || math.Abs(vega.fill.Glow-look.Glow) > tol {
		t.Errorf("Vega circle = %+v, want %+v", vega, look)
	}

	// The anonymous star twinkles with its index as id.
	anon := c.circles[2]
	if math.Abs(anon.r-LookFor(2, 2, 5, "", 1000).Radius) > tol {
		t.Error("anonymous star should use its index as id")
	}

	if r.Stats().Zoomed || r.Stats().Frames != 1 {
		t.Errorf("stats = %+v", r.Stats())
	}
}

func TestDrawFrame_Selected(t *testing.T) {
	c := newRecorder(1000, 500)
	r := NewRenderer()
	tr := viewport.New(2.2, 780, 145, 1000, 500)

	r.DrawFrame(c, 0, Scene{Catalog: testCatalog(), Selected: "Lyra", Transform: tr})

	want := []string{"save", "translate", "scale", "translate", "restore"}
	if len(c.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", c.ops, want)
	}
	for i := range want {
		if c.ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", c.ops, want)
		}
	}

	if len(c.strokes) != 1 {
		t.Fatalf("strokes = %d, want 1", len(c.strokes))
	}
	s := c.strokes[0]
	if math.Abs(s.style.Width-2.5/2.2) > tol || math.Abs(s.style.Glow-8/2.2) > tol {
		t.Errorf("highlight style = %+v", s.style)
	}
	if s.style.Color != Highlight {
		t.Errorf("highlight colour = %v", s.style.Color)
	}
	if len(s.paths) != 1 || len(s.paths[0]) != 3 {
		t.Errorf("only Lyra should be drawn, got %v", s.paths)
	}
	if !r.Stats().Zoomed {
		t.Error("stats should report zoomed")
	}
	if c.Depth() != 0 {
		t.Error("transform stack not balanced")
	}
}

func TestDrawFrame_SelectedWithoutZoom(t *testing.T) {
	c := newRecorder(360, 180)
	NewRenderer().DrawFrame(c, 0, Scene{
		Catalog:   testCatalog(),
		Selected:  "Lyra",
		Transform: viewport.Identity(360, 180),
	})
	for _, op := range c.ops {
		if op == "translate" || op == "scale" {
			t.Error("zoom 1 must not apply a transform")
		}
	}
}

func TestDrawFrame_Overlays(t *testing.T) {
	c := newRecorder(360, 180)
	when := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

	NewRenderer().DrawFrame(c, 0, Scene{
		Catalog:   testCatalog(),
		Transform: viewport.Identity(360, 180),
		Overlays:  Overlays{Meridian: true, Sun: true, Time: when},
	})

	if len(c.strokes) != 2 {
		t.Fatalf("strokes = %d, want lines + meridian", len(c.strokes))
	}
	meridian := c.strokes[1].paths[0]
	lst := astro.LocalSiderealTime(when, 0)
	if math.Abs(meridian[0].X-lst) > tol || meridian[1].Y != 180 {
		t.Errorf("meridian = %v, want x=%v", meridian, lst)
	}

	sun := c.circles[len(c.circles)-1]
	pos := astro.SunPosition(when)
	if math.Abs(sun.x-pos.RAdeg) > tol || sun.fill.Color != SunColor {
		t.Errorf("sun marker = %+v, want RA %v", sun, pos.RAdeg)
	}
}

func TestDrawFrame_NoCatalog(t *testing.T) {
	c := newRecorder(100, 50)
	NewRenderer().DrawFrame(c, 0, Scene{})
	if len(c.clears) != 1 || len(c.strokes) != 0 || len(c.circles) != 0 {
		t.Error("frame without catalog should only clear")
	}
}

func TestLoop(t *testing.T) {
	d := clock.NewDriver()
	var canvas Canvas
	var scenes int

	loop := NewLoop(nil,
		func() Canvas { return canvas },
		func(clock.Tick) Scene {
			scenes++
			return Scene{Catalog: testCatalog(), Transform: viewport.Identity(100, 50)}
		})
	loop.Attach(d)

	d.Advance(16) // no canvas yet
	if drawn, skipped := loop.Counts(); drawn != 0 || skipped != 1 {
		t.Errorf("counts = %d, %d; want 0, 1", drawn, skipped)
	}

	rec := newRecorder(100, 50)
	canvas = rec
	d.Advance(32)
	d.Advance(48)
	if drawn, _ := loop.Counts(); drawn != 2 || scenes != 2 {
		t.Errorf("drawn = %d, scenes = %d; want 2, 2", drawn, scenes)
	}
	if len(rec.clears) != 2 {
		t.Errorf("canvas cleared %d times, want 2", len(rec.clears))
	}
	if st := loop.Stats(); st.Frames != 2 || st.LastMilli != 48 || st.Stars == 0 {
		t.Errorf("stats = %+v, want 2 frames at 48ms with stars", st)
	}

	loop.Close()
	loop.Close()
	d.Advance(64)
	if drawn, _ := loop.Counts(); drawn != 2 {
		t.Error("loop drew after Close")
	}
	if d.Subscribers() != 0 {
		t.Error("subscription leaked after Close")
	}
}

func TestLoop_ReattachReleasesPrevious(t *testing.T) {
	a, b := clock.NewDriver(), clock.NewDriver()
	loop := NewLoop(nil, func() Canvas { return nil }, func(clock.Tick) Scene { return Scene{} })
	defer loop.Close()

	loop.Attach(a)
	loop.Attach(b)
	if a.Subscribers() != 0 || b.Subscribers() != 1 {
		t.Errorf("subscribers a=%d b=%d", a.Subscribers(), b.Subscribers())
	}
}

func TestCamera(t *testing.T) {
	cam := NewCamera(400 * time.Millisecond)

	unselected := state.View{Zoom: 1}
	if tr := cam.Update(unselected, 1000, 500, 16*time.Millisecond); tr.Active() {
		t.Error("unselected camera should be identity")
	}

	v := state.View{Selected: "Lyra", Zoom: 2.2, Focus: astro.Equatorial{RAdeg: 281, DecDeg: 37}}
	first := cam.Update(v, 1000, 500, 16*time.Millisecond)
	if first.Zoom >= 2.2 || first.Zoom < 1 {
		t.Errorf("first frame zoom = %v, want easing from 1", first.Zoom)
	}
	if cam.Settled() {
		t.Error("camera should be animating")
	}

	var tr viewport.Transform
	for i := 0; i < 40; i++ {
		tr = cam.Update(v, 1000, 500, 16*time.Millisecond)
	}
	if !cam.Settled() {
		t.Fatal("camera should settle after its duration")
	}
	if want := v.Transform(1000, 500); tr != want {
		t.Errorf("settled transform = %+v, want exactly %+v", tr, want)
	}
	if tr.Zoom != 2.2 {
		t.Errorf("settled zoom = %v, want 2.2", tr.Zoom)
	}

	// Resize keeps the settled camera on the same sky position.
	big := cam.Update(v, 2000, 1000, 16*time.Millisecond)
	if math.Abs(big.CenterX-2*tr.CenterX) > 1e-2 {
		t.Errorf("resized center = %v, want %v", big.CenterX, 2*tr.CenterX)
	}

	// Without a duration the camera jumps straight to the view.
	instant := NewCamera(0)
	if got, want := instant.Update(v, 1000, 500, 0), v.Transform(1000, 500); got != want {
		t.Errorf("instant camera = %+v, want %+v", got, want)
	}

	if cam.Update(state.View{Zoom: 1}, 1000, 500, 0).Active() {
		t.Error("show all should return to identity immediately")
	}
}

func TestRaster(t *testing.T) {
	r := NewRaster(64, 32)
	cat := &catalog.Catalog{
		Stars: []catalog.Star{{ID: intPtr(1), RA: 180, Dec: 0, Mag: -1, SpecType: "G2V"}},
		Lines: []catalog.LineFeature{{ID: "Ori", Lines: []catalog.Polyline{
			{{RA: 45, Dec: 45}, {RA: 90, Dec: 45}},
		}}},
	}
	NewRenderer().DrawFrame(r, 0, Scene{Catalog: cat, Transform: viewport.Identity(64, 32)})

	img := r.Image()
	if c := img.RGBAAt(0, 31); c.R != 0 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("corner = %v, want opaque black", c)
	}
	if c := img.RGBAAt(32, 16); c.R < 100 {
		t.Errorf("star centre = %v, want bright", c)
	}
	if c := img.RGBAAt(12, 8); c.R == 0 {
		t.Errorf("line pixel = %v, want lit", c)
	}

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != 64 {
		t.Errorf("decoded width = %d", decoded.Bounds().Dx())
	}
}
