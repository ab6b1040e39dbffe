package render

import (
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Fixed colours of the map.
var (
	Background = color.NRGBA{0, 0, 0, 255}
	LineColor  = color.NRGBA{255, 255, 255, 128} // rgba(255,255,255,0.5)
	Highlight  = hexColor("#ffd866")
	Meridian   = color.NRGBA{90, 160, 255, 110}
	SunColor   = hexColor("#ffe27a")
)

const (
	lineWidth          = 1.2
	highlightWidth     = 2.5
	highlightGlow      = 8.0
	starMinSize        = 1.1
	starMaxSize        = 4.5
	starMagScale       = 0.6
	starMinAlpha       = 0.55
	starMaxAlpha       = 1.0
	starAlphaMagScale  = 0.13
	starGlowPerRadius  = 2.5
	twinkleIDFactor    = 13.37
	twinkleSpeed       = 0.001
	twinkleDriftSpeed  = 0.0002
	twinkleBase        = 0.7
	twinkleAmplitude   = 0.3
	sunMarkerRadius    = 6.0
	meridianLineWidth  = 1.0
	sunMarkerGlowRatio = 3.0
)

// spectralColors maps the first letter of a spectral class to a tint.
var spectralColors = map[byte]color.NRGBA{
	'O': hexColor("#9bb0ff"),
	'B': hexColor("#aabfff"),
	'A': hexColor("#cad7ff"),
	'F': hexColor("#f8f7ff"),
	'G': hexColor("#fff4ea"),
	'K': hexColor("#ffd2a1"),
	'M': hexColor("#ffcc6f"),
}

func hexColor(s string) color.NRGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, 255}
}

// SpectralColor returns the tint for a spectral type code such as "K1.5III".
// Unknown or empty codes are white.
func SpectralColor(spectype string) color.NRGBA {
	if spectype == "" {
		return color.NRGBA{255, 255, 255, 255}
	}
	if c, ok := spectralColors[strings.ToUpper(spectype)[0]]; ok {
		return c
	}
	return color.NRGBA{255, 255, 255, 255}
}

// Twinkle returns the brightness factor, in [0.4, 1.0], for star id at
// position index at time ms.
func Twinkle(id, index int, ms float64) float64 {
	phase := math.Mod(float64(id)*twinkleIDFactor+ms*twinkleSpeed, 2*math.Pi)
	return twinkleBase + twinkleAmplitude*math.Sin(phase+math.Sin(ms*twinkleDriftSpeed+float64(index)))
}

// StarLook is how a star is drawn in one frame.
type StarLook struct {
	Radius float64
	Alpha  float64
	Glow   float64
	Color  color.NRGBA // Alpha channel already applied
}

// LookFor computes a star's appearance for a frame.
func LookFor(id, index int, mag float64, spectype string, ms float64) StarLook {
	tw := Twinkle(id, index, ms)
	size := math.Max(starMinSize, starMaxSize-mag*starMagScale) * tw
	alpha := math.Max(starMinAlpha, starMaxAlpha-mag*starAlphaMagScale) * tw
	if alpha > 1 {
		alpha = 1
	}
	c := SpectralColor(spectype)
	c.A = uint8(math.Round(alpha * 255))
	return StarLook{
		Radius: size,
		Alpha:  alpha,
		Glow:   size * starGlowPerRadius,
		Color:  c,
	}
}
