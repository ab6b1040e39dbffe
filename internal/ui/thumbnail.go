package ui

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// Thumbnail renders img in cols x rows cells using upper half blocks: the
// foreground is the top pixel of a cell and the background the bottom one.
func Thumbnail(img image.Image, cols, rows int) []string {
	if img == nil || cols <= 0 || rows <= 0 {
		return nil
	}
	small := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	out := make([]string, rows)
	for y := 0; y < rows; y++ {
		var sb strings.Builder
		for x := 0; x < cols; x++ {
			top, _ := colorful.MakeColor(small.At(x, 2*y))
			bot, _ := colorful.MakeColor(small.At(x, 2*y+1))
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top.Hex())).
				Background(lipgloss.Color(bot.Hex()))
			sb.WriteString(style.Render("▀"))
		}
		out[y] = sb.String()
	}
	return out
}
