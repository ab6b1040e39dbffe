package interact

import (
	"fmt"
	"strings"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
)

// TooltipKind says what a tooltip describes.
type TooltipKind int

const (
	TooltipNone TooltipKind = iota
	TooltipStar
	TooltipConstellation
	TooltipBoth
)

// Tooltip is derived hover text.
type Tooltip struct {
	Kind  TooltipKind
	Title string
	Lines []string
}

// Empty reports whether there is nothing to show.
func (t Tooltip) Empty() bool {
	return t.Kind == TooltipNone
}

// Text renders the tooltip as plain lines.
func (t Tooltip) Text() string {
	if t.Empty() {
		return ""
	}
	return strings.Join(append([]string{t.Title}, t.Lines...), "\n")
}

// TooltipFor builds tooltip content from a hover value.
func TooltipFor(h Hover) Tooltip {
	switch {
	case h.HasStar() && h.HasConstellation():
		lines := starLines(*h.Star)
		lines = append(lines, "In "+h.Constellation)
		if names := nearbyNames(h); names != "" {
			lines = append(lines, "Line: "+names)
		}
		return Tooltip{Kind: TooltipBoth, Title: h.Star.Label(), Lines: lines}
	case h.HasStar():
		return Tooltip{Kind: TooltipStar, Title: h.Star.Label(), Lines: starLines(*h.Star)}
	case h.HasConstellation():
		var lines []string
		if names := nearbyNames(h); names != "" {
			lines = append(lines, "Stars: "+names)
		}
		return Tooltip{Kind: TooltipConstellation, Title: h.Constellation, Lines: lines}
	default:
		return Tooltip{}
	}
}

func starLines(s catalog.Star) []string {
	detail := fmt.Sprintf("mag %.2f", s.Mag)
	if s.SpecType != "" {
		detail += "  " + s.SpecType
	}
	return []string{
		detail,
		fmt.Sprintf("RA %s  Dec %s", astro.FormatRA(s.RA), astro.FormatDec(s.Dec)),
	}
}

func nearbyNames(h Hover) string {
	names := make([]string, 0, len(h.NearbyStars))
	for _, n := range h.NearbyStars {
		if n.Star.Name != "" {
			names = append(names, n.Star.Name)
		}
	}
	return strings.Join(names, ", ")
}

// Placement controls tooltip positioning.
type Placement struct {
	Offset  float64 // Distance from the pointer
	Padding float64 // Minimum gap to every viewport edge
}

// DefaultPlacement matches pixel front ends.
func DefaultPlacement() Placement {
	return Placement{Offset: 18, Padding: 8}
}

// Place positions a box of size (bw, bh) near the pointer (px, py) inside a
// viewport of size (vw, vh). The box goes below-right of the pointer, flips
// to the other side when it would cross an edge, and is finally clamped to
// the padding.
func (p Placement) Place(px, py, bw, bh, vw, vh float64) (x, y float64) {
	return p.axis(px, bw, vw), p.axis(py, bh, vh)
}

func (p Placement) axis(pos, size, extent float64) float64 {
	v := pos + p.Offset
	if v+size > extent-p.Padding {
		v = pos - p.Offset - size
	}
	maxV := extent - p.Padding - size
	if v > maxV {
		v = maxV
	}
	if v < p.Padding {
		v = p.Padding
	}
	return v
}
