package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/vector"
)

const (
	circleSegments = 24
	glowAlphaScale = 0.22
)

// Raster is a software Canvas backed by an RGBA image. Shapes are
// anti-aliased with golang.org/x/image/vector. Glow is approximated with a
// translucent halo rather than a blur.
type Raster struct {
	Stack
	img *image.RGBA
	z   *vector.Rasterizer
}

// NewRaster creates a canvas of the given pixel size.
func NewRaster(width, height int) *Raster {
	return &Raster{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
	}
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Size implements Canvas.
func (r *Raster) Size() (float64, float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Clear implements Canvas. It also resets the transform stack.
func (r *Raster) Clear(bg color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	r.Stack.Reset()
}

// StrokePath implements Canvas.
func (r *Raster) StrokePath(subpaths [][]Point, style Stroke) {
	a := r.Current()
	if style.Glow > 0 {
		halo := fade(style.Color, glowAlphaScale)
		r.strokeWith(subpaths, a, (style.Width+style.Glow)*a.S, halo)
	}
	r.strokeWith(subpaths, a, style.Width*a.S, style.Color)
}

func (r *Raster) strokeWith(subpaths [][]Point, a Affine, width float64, c color.NRGBA) {
	half := math.Max(width/2, 0.5)
	r.reset()
	for _, path := range subpaths {
		for i := 1; i < len(path); i++ {
			x1, y1 := a.Apply(path[i-1].X, path[i-1].Y)
			x2, y2 := a.Apply(path[i].X, path[i].Y)
			r.addSegment(x1, y1, x2, y2, half)
		}
		for _, p := range path {
			x, y := a.Apply(p.X, p.Y)
			r.addCircle(x, y, half)
		}
	}
	r.flush(c)
}

// FillCircle implements Canvas.
func (r *Raster) FillCircle(cx, cy, radius float64, fill Fill) {
	a := r.Current()
	x, y := a.Apply(cx, cy)
	rad := radius * a.S
	if fill.Glow > 0 {
		r.disc(x, y, rad+fill.Glow*a.S*0.5, fade(fill.Color, glowAlphaScale))
	}
	r.disc(x, y, rad, fill.Color)
}

// disc rasterizes a circle inside its own bounding box only.
func (r *Raster) disc(cx, cy, radius float64, c color.NRGBA) {
	box := image.Rect(
		int(math.Floor(cx-radius))-1, int(math.Floor(cy-radius))-1,
		int(math.Ceil(cx+radius))+1, int(math.Ceil(cy+radius))+1,
	).Intersect(r.img.Bounds())
	if box.Empty() || radius <= 0 {
		return
	}
	r.z.Reset(box.Dx(), box.Dy())
	r.addCircle(cx-float64(box.Min.X), cy-float64(box.Min.Y), radius)
	r.z.Draw(r.img, box, image.NewUniform(c), image.Point{})
}

func (r *Raster) reset() {
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
}

func (r *Raster) flush(c color.NRGBA) {
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
}

// addSegment adds a quad around a segment. All shapes are wound the same
// way so overlaps accumulate instead of cancelling.
func (r *Raster) addSegment(x1, y1, x2, y2, half float64) {
	dx, dy := x2-x1, y2-y1
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half
	r.z.MoveTo(float32(x1-nx), float32(y1-ny))
	r.z.LineTo(float32(x2-nx), float32(y2-ny))
	r.z.LineTo(float32(x2+nx), float32(y2+ny))
	r.z.LineTo(float32(x1+nx), float32(y1+ny))
	r.z.ClosePath()
}

func (r *Raster) addCircle(cx, cy, radius float64) {
	if radius <= 0 {
		return
	}
	r.z.MoveTo(float32(cx+radius), float32(cy))
	for i := 1; i < circleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / circleSegments
		r.z.LineTo(float32(cx+radius*math.Cos(theta)), float32(cy+radius*math.Sin(theta)))
	}
	r.z.ClosePath()
}

func fade(c color.NRGBA, k float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * k))
	return c
}

// EncodePNG writes the canvas as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(w, r.img)
}

// WritePNG writes the canvas to a PNG file.
func (r *Raster) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
