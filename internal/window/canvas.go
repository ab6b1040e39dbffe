package window

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/litescript/ls-skymap/internal/render"
)

// canvas draws render frames onto an ebiten image with anti-aliased vector
// primitives.
type canvas struct {
	render.Stack
	dst *ebiten.Image
}

func (c *canvas) Size() (float64, float64) {
	b := c.dst.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (c *canvas) Clear(bg color.Color) {
	c.dst.Fill(bg)
	c.Stack.Reset()
}

func (c *canvas) StrokePath(subpaths [][]render.Point, style render.Stroke) {
	a := c.Current()
	width := float32(style.Width * a.S)
	if style.Glow > 0 {
		halo := glow(style.Color, 0.25)
		hw := width + float32(style.Glow*a.S)
		c.stroke(subpaths, a, hw, halo)
	}
	c.stroke(subpaths, a, width, style.Color)
}

func (c *canvas) stroke(subpaths [][]render.Point, a render.Affine, width float32, col color.NRGBA) {
	for _, path := range subpaths {
		for i := 1; i < len(path); i++ {
			x1, y1 := a.Apply(path[i-1].X, path[i-1].Y)
			x2, y2 := a.Apply(path[i].X, path[i].Y)
			vector.StrokeLine(c.dst, float32(x1), float32(y1), float32(x2), float32(y2), width, col, true)
		}
	}
}

func (c *canvas) FillCircle(cx, cy, radius float64, fill render.Fill) {
	a := c.Current()
	x, y := a.Apply(cx, cy)
	r := radius * a.S
	if fill.Glow > 0 {
		vector.DrawFilledCircle(c.dst, float32(x), float32(y), float32(r+fill.Glow*a.S*0.5), glow(fill.Color, 0.2), true)
	}
	vector.DrawFilledCircle(c.dst, float32(x), float32(y), float32(r), fill.Color, true)
}

// glow fades a colour's alpha for halos.
func glow(c color.NRGBA, k float64) color.NRGBA {
	c.A = uint8(float64(c.A) * k)
	return c
}
