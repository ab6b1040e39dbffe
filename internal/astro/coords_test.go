package astro

import (
	"math"
	"testing"
)

func TestNormalizeRA(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{-1, 359},
		{-180, 180},
		{725, 5},
		{-725, 355},
		{-1e-17, 0},
	}

	for _, tt := range tests {
		got := NormalizeRA(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeRA(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 360 {
			t.Errorf("NormalizeRA(%v) = %v out of [0,360)", tt.in, got)
		}
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name    string
		ra, dec float64
		wantX   float64
		wantY   float64
	}{
		{"origin top-left", 0, 90, 0, 0},
		{"center", 180, 0, 500, 250},
		{"bottom", 90, -90, 250, 500},
		{"right edge", 360, 0, 1000, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Project(tt.ra, tt.dec, 1000, 500)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
				t.Errorf("Project(%v, %v) = (%v, %v), want (%v, %v)",
					tt.ra, tt.dec, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestProjectDeterministicAndMonotonic(t *testing.T) {
	prevX := -1.0
	for ra := 0.0; ra < 360; ra += 7.5 {
		x1, y1 := Project(ra, 12.5, 800, 400)
		x2, y2 := Project(ra, 12.5, 800, 400)
		if x1 != x2 || y1 != y2 {
			t.Fatalf("Project not deterministic at ra=%v", ra)
		}
		if x1 < prevX {
			t.Errorf("x decreased at ra=%v: %v < %v", ra, x1, prevX)
		}
		prevX = x1
	}
}

func TestProjectNormalizedEquivalents(t *testing.T) {
	for _, raw := range []float64{-30, 390, -390, 720} {
		canonical := NormalizeRA(raw)
		x1, y1 := Project(NormalizeRA(raw), -20, 640, 320)
		x2, y2 := Project(canonical, -20, 640, 320)
		if x1 != x2 || y1 != y2 {
			t.Errorf("ra %v projected to (%v,%v), canonical %v to (%v,%v)", raw, x1, y1, canonical, x2, y2)
		}
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	ra, dec := Unproject(250, 125, 1000, 500)
	if math.Abs(ra-90) > 1e-9 || math.Abs(dec-45) > 1e-9 {
		t.Errorf("Unproject = (%v, %v), want (90, 45)", ra, dec)
	}

	if ra, dec := Unproject(10, 10, 0, 0); ra != 0 || dec != 0 {
		t.Errorf("Unproject on empty viewport = (%v, %v), want (0, 0)", ra, dec)
	}
}

func TestCrossesSeam(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{359, 1, true},
		{1, 359, true},
		{10, 20, false},
		{0, 180, false},
		{0, 180.5, true},
	}
	for _, tt := range tests {
		if got := CrossesSeam(tt.a, tt.b); got != tt.want {
			t.Errorf("CrossesSeam(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCircularMeanRA(t *testing.T) {
	tests := []struct {
		name string
		ras  []float64
		want float64
		tol  float64
	}{
		{"empty", nil, 0, 0},
		{"simple", []float64{80, 90, 100}, 90, 1e-9},
		{"across seam", []float64{350, 10}, 0, 1e-9},
		{"across seam skewed", []float64{355, 359, 3}, 359, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CircularMeanRA(tt.ras)
			// Compare on the circle so 359.9999 and 0 are treated as equal.
			diff := math.Abs(got - tt.want)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > tt.tol {
				t.Errorf("CircularMeanRA(%v) = %v, want %v", tt.ras, got, tt.want)
			}
		})
	}
}

func TestAngularSeparation(t *testing.T) {
	tests := []struct {
		name      string
		ra1, dec1 float64
		ra2, dec2 float64
		wantSep   float64
		tol       float64
	}{
		{name: "Same point", ra1: 100, dec1: 30, ra2: 100, dec2: 30, wantSep: 0, tol: 0.001},
		{name: "90 degrees apart on equator", ra1: 0, dec1: 0, ra2: 90, dec2: 0, wantSep: 90, tol: 0.001},
		{name: "Pole to pole", ra1: 0, dec1: 90, ra2: 0, dec2: -90, wantSep: 180, tol: 0.001},
		{name: "Across the seam", ra1: 359, dec1: 0, ra2: 1, dec2: 0, wantSep: 2, tol: 0.001},
		{name: "Small separation", ra1: 100, dec1: 30, ra2: 101, dec2: 30, wantSep: 0.866, tol: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngularSeparation(tt.ra1, tt.dec1, tt.ra2, tt.dec2)
			if math.Abs(got-tt.wantSep) > tt.tol {
				t.Errorf("AngularSeparation() = %.4f°, want %.4f° (±%.4f)",
					got, tt.wantSep, tt.tol)
			}
		})
	}
}

func TestFormatRADec(t *testing.T) {
	if got := FormatRA(279.2347); got != "18h 36m 56s" {
		t.Errorf("FormatRA(Vega) = %q", got)
	}
	if got := FormatRA(-15); got != "23h 00m 00s" {
		t.Errorf("FormatRA(-15) = %q", got)
	}
	if got := FormatDec(38.7837); got != "+38° 47'" {
		t.Errorf("FormatDec(Vega) = %q", got)
	}
	if got := FormatDec(-8.2016); got != "-08° 12'" {
		t.Errorf("FormatDec(Rigel) = %q", got)
	}
}
