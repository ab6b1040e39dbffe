package ui

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-skymap/internal/render"
)

// Braille dots per terminal cell.
const (
	dotsX = 2
	dotsY = 4
)

// dotBits maps a dot position inside a cell to its braille bit.
var dotBits = [dotsY][dotsX]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Braille is a render.Canvas that draws into braille dots, 2x4 per
// terminal cell. Each cell carries one colour, blended from everything
// drawn into it. Text can be laid over cells for labels and tooltips.
type Braille struct {
	render.Stack

	cols, rows int
	bg         colorful.Color
	mask       []uint8
	ink        []colorful.Color
	text       []rune
	textFG     []string
	textBG     []string

	// RadiusScale shrinks circles so the brightest stars stay a few dots
	// wide at terminal resolution.
	RadiusScale float64
}

// NewBraille creates a canvas of cols x rows terminal cells.
func NewBraille(cols, rows int) *Braille {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	n := cols * rows
	return &Braille{
		cols:        cols,
		rows:        rows,
		bg:          colorful.Color{},
		mask:        make([]uint8, n),
		ink:         make([]colorful.Color, n),
		text:        make([]rune, n),
		textFG:      make([]string, n),
		textBG:      make([]string, n),
		RadiusScale: 0.5,
	}
}

// Cells returns the size in terminal cells.
func (b *Braille) Cells() (cols, rows int) {
	return b.cols, b.rows
}

// Size implements render.Canvas in dot units.
func (b *Braille) Size() (float64, float64) {
	return float64(b.cols * dotsX), float64(b.rows * dotsY)
}

// Clear implements render.Canvas. Text overlays are cleared too.
func (b *Braille) Clear(bg color.Color) {
	if c, ok := colorful.MakeColor(bg); ok {
		b.bg = c
	}
	for i := range b.mask {
		b.mask[i] = 0
		b.ink[i] = b.bg
		b.text[i] = 0
		b.textFG[i] = ""
		b.textBG[i] = ""
	}
	b.Stack.Reset()
}

// StrokePath implements render.Canvas. Lines are one dot wide; strokes two
// or more device pixels wide get a second parallel pass.
func (b *Braille) StrokePath(subpaths [][]render.Point, style render.Stroke) {
	a := b.Current()
	thick := style.Width*a.S >= 2
	for _, path := range subpaths {
		for i := 1; i < len(path); i++ {
			x1, y1 := a.Apply(path[i-1].X, path[i-1].Y)
			x2, y2 := a.Apply(path[i].X, path[i].Y)
			b.line(dot(x1), dot(y1), dot(x2), dot(y2), style.Color)
			if thick {
				b.line(dot(x1), dot(y1)+1, dot(x2), dot(y2)+1, style.Color)
			}
		}
	}
}

// FillCircle implements render.Canvas.
func (b *Braille) FillCircle(cx, cy, radius float64, fill render.Fill) {
	a := b.Current()
	x, y := a.Apply(cx, cy)
	r := radius * a.S * b.RadiusScale
	if r < 0.75 {
		b.plot(dot(x), dot(y), fill.Color)
		return
	}
	x0, x1 := int(math.Floor(x-r)), int(math.Ceil(x+r))
	y0, y1 := int(math.Floor(y-r)), int(math.Ceil(y+r))
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			if math.Hypot(float64(px)+0.5-x, float64(py)+0.5-y) <= r {
				b.plot(px, py, fill.Color)
			}
		}
	}
}

func dot(v float64) int {
	return int(math.Floor(v))
}

// plot sets one dot and blends its colour into the cell.
func (b *Braille) plot(px, py int, c color.NRGBA) {
	if px < 0 || py < 0 {
		return
	}
	cx, cy := px/dotsX, py/dotsY
	if cx >= b.cols || cy >= b.rows {
		return
	}
	i := cy*b.cols + cx
	col, _ := colorful.MakeColor(color.NRGBA{c.R, c.G, c.B, 255})
	if b.mask[i] == 0 {
		b.ink[i] = b.bg.BlendRgb(col, float64(c.A)/255)
	} else {
		b.ink[i] = b.ink[i].BlendRgb(col, float64(c.A)/255)
	}
	b.mask[i] |= dotBits[py%dotsY][px%dotsX]
}

// line draws with Bresenham's algorithm.
func (b *Braille) line(x0, y0, x1, y1 int, c color.NRGBA) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	e := dx + dy
	for {
		b.plot(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PutText writes text over cells starting at (col, row). Empty colours keep
// the canvas defaults.
func (b *Braille) PutText(col, row int, s, fg, bg string) {
	if row < 0 || row >= b.rows {
		return
	}
	for i, r := range []rune(s) {
		x := col + i
		if x < 0 || x >= b.cols {
			continue
		}
		j := row*b.cols + x
		b.text[j] = r
		b.textFG[j] = fg
		b.textBG[j] = bg
	}
}

// Box draws a bordered text box with its top-left corner at (col, row).
func (b *Braille) Box(col, row int, lines []string, fg, bg string) {
	w := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > w {
			w = n
		}
	}
	b.PutText(col, row, "╭"+strings.Repeat("─", w+2)+"╮", fg, bg)
	for i, l := range lines {
		pad := w - len([]rune(l))
		b.PutText(col, row+1+i, "│ "+l+strings.Repeat(" ", pad)+" │", fg, bg)
	}
	b.PutText(col, row+1+len(lines), "╰"+strings.Repeat("─", w+2)+"╯", fg, bg)
}

// BoxSize returns the cell size Box would use for lines.
func BoxSize(lines []string) (cols, rows int) {
	w := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > w {
			w = n
		}
	}
	return w + 4, len(lines) + 2
}

// Mask returns the dot mask of a cell, for tests.
func (b *Braille) Mask(col, row int) uint8 {
	if col < 0 || row < 0 || col >= b.cols || row >= b.rows {
		return 0
	}
	return b.mask[row*b.cols+col]
}

// Rune returns the glyph shown in a cell.
func (b *Braille) Rune(col, row int) rune {
	i := row*b.cols + col
	if b.text[i] != 0 {
		return b.text[i]
	}
	if b.mask[i] == 0 {
		return ' '
	}
	return rune(0x2800 + int(b.mask[i]))
}

// Lines renders the canvas as styled terminal lines. Runs of cells with the
// same colours share one lipgloss style.
func (b *Braille) Lines() []string {
	bgHex := b.bg.Hex()
	out := make([]string, b.rows)
	for y := 0; y < b.rows; y++ {
		var sb strings.Builder
		var run strings.Builder
		runFG, runBG := "", ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle().Background(lipgloss.Color(runBG))
			if runFG != "" {
				style = style.Foreground(lipgloss.Color(runFG))
			}
			sb.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for x := 0; x < b.cols; x++ {
			i := y*b.cols + x
			fg, bg := "", bgHex
			switch {
			case b.text[i] != 0:
				fg = b.textFG[i]
				if b.textBG[i] != "" {
					bg = b.textBG[i]
				}
			case b.mask[i] != 0:
				fg = b.ink[i].Clamped().Hex()
			}
			if fg != runFG || bg != runBG {
				flush()
				runFG, runBG = fg, bg
			}
			run.WriteRune(b.Rune(x, y))
		}
		flush()
		out[y] = sb.String()
	}
	return out
}

// String renders the canvas.
func (b *Braille) String() string {
	return strings.Join(b.Lines(), "\n")
}

// PlainLines returns the glyphs without styling.
func (b *Braille) PlainLines() []string {
	out := make([]string, b.rows)
	for y := 0; y < b.rows; y++ {
		row := make([]rune, b.cols)
		for x := range row {
			row[x] = b.Rune(x, y)
		}
		out[y] = string(row)
	}
	return out
}
