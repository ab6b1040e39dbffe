package catalog

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/litescript/ls-skymap/internal/astro"
)

// WriteSummaryTable writes a text overview of the catalog: counts, the
// brightest stars, and the loaded constellations.
func WriteSummaryTable(w io.Writer, cat *Catalog, brightest int) {
	if cat == nil {
		fmt.Fprintln(w, "No catalog loaded")
		return
	}

	fmt.Fprintf(w, "Sky catalog @ %s\n", cat.LoadedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Stars: %s (%s)   Constellations: %s (%s)\n",
		humanize.Comma(int64(len(cat.Stars))), cat.StarsFrom,
		humanize.Comma(int64(len(cat.Lines))), cat.LinesFrom)
	if len(cat.Warnings) > 0 {
		fmt.Fprintf(w, "Skipped entries: %d\n", len(cat.Warnings))
	}
	fmt.Fprintln(w, strings.Repeat("─", 64))

	fmt.Fprintf(w, "%-18s %-13s %-10s %6s %-8s\n", "Star", "RA", "Dec", "Mag", "Type")
	fmt.Fprintln(w, strings.Repeat("─", 64))
	for _, s := range cat.Brightest(brightest) {
		fmt.Fprintf(w, "%-18s %-13s %-10s %6.2f %-8s\n",
			truncateStr(s.Label(), 18),
			astro.FormatRA(s.RA),
			astro.FormatDec(s.Dec),
			s.Mag,
			truncateStr(s.SpecType, 8),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Constellations: %s\n", strings.Join(cat.Constellations(), ", "))
}

func truncateStr(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
