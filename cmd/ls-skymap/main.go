// Command ls-skymap is an interactive star map for the terminal and the
// desktop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/clock"
	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/metadata"
	"github.com/litescript/ls-skymap/internal/query"
	"github.com/litescript/ls-skymap/internal/render"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/ui"
	"github.com/litescript/ls-skymap/internal/version"
	"github.com/litescript/ls-skymap/internal/window"
)

// CLI flags for headless mode
var (
	summaryMode bool
	pngPath     string
	sizeFlag    string
	selectName  string
	askText     string
	infoName    string
	windowMode  bool
	showVersion bool
)

const (
	defaultSize    = "1440x720"
	summaryStars   = 15
	headlessFetch  = 30 * time.Second
	snapshotFrames = 3
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (env "+config.EnvPath+")")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to file (terminal UI discards logs otherwise)")
	stars := flag.String("stars", "", `Star data source: "embedded", file path or URL`)
	lines := flag.String("lines", "", `Constellation lines source: "embedded", file path or URL`)
	offline := flag.Bool("offline", false, "Use built-in metadata only, no network lookups")
	flag.BoolVar(&windowMode, "window", false, "Open a desktop window instead of the terminal UI")
	flag.BoolVar(&summaryMode, "summary", false, "Print catalog summary instead of UI")
	flag.StringVar(&pngPath, "png", "", "Render one frame to a PNG file")
	flag.StringVar(&sizeFlag, "size", defaultSize, "Canvas size WxH for --png and --window")
	flag.StringVar(&selectName, "select", "", "Constellation to select at start (name or IAU code)")
	flag.StringVar(&askText, "ask", "", "Answer a sky question and exit")
	flag.StringVar(&infoName, "info", "", "Print constellation metadata and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("ls-skymap", version.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		case "stars":
			cfg.Stars = *stars
		case "lines":
			cfg.Lines = *lines
		case "offline":
			cfg.Offline = *offline
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	width, height, err := parseSize(sizeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	headless := summaryMode || pngPath != "" || askText != "" || infoName != ""
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if !headless && !windowMode {
		logger.SetOutput(io.Discard)
	}

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gateway, closeGateway, err := newGateway(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeGateway()

	loader := catalog.NewLoader(catalog.WithLogger(logger.Named("catalog")))
	load := func(ctx context.Context) (*catalog.Catalog, error) {
		return loader.Load(ctx, cfg.Stars, cfg.Lines)
	}

	overlays := render.Overlays{
		Meridian: cfg.Overlays.Meridian,
		Sun:      cfg.Overlays.Sun,
		LonDeg:   cfg.Overlays.Longitude,
	}

	if headless {
		if err := runHeadless(ctx, cfg, load, gateway, overlays, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			closeGateway()
			os.Exit(1)
		}
		return
	}

	if windowMode {
		cat, err := load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		err = window.Run(ctx, window.Options{
			Catalog:    cat,
			Metadata:   gateway,
			FocusZoom:  cfg.FocusZoom,
			CameraTime: cfg.CameraDuration(),
			Overlays:   overlays,
			Select:     selectName,
			Width:      width,
			Height:     height,
			Log:        logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal; use --summary, --png, --ask or --info")
		os.Exit(1)
	}

	err = ui.Run(ui.Options{
		Context:       ctx,
		Load:          load,
		Metadata:      gateway,
		Images:        metadata.NewImageFetcher(),
		SkyViewURL:    cfg.SkyViewURL,
		Survey:        cfg.Survey,
		FocusZoom:     cfg.FocusZoom,
		CameraTime:    cfg.CameraDuration(),
		FrameInterval: cfg.FrameInterval(),
		Overlays:      overlays,
		Select:        selectName,
		Log:           logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// newGateway builds the metadata chain: Wikipedia (or the offline table)
// behind the in-memory cache, with the optional SQLite store.
func newGateway(ctx context.Context, cfg config.Config, logger *logging.Logger) (metadata.Gateway, func(), error) {
	var upstream metadata.Gateway = metadata.NewWikipedia(cfg.WikipediaURL, logger.Named("wikipedia"))
	if cfg.Offline {
		upstream = metadata.Offline{}
	}

	var store *metadata.Store
	if cfg.CachePath != "" {
		s, err := metadata.OpenStore(ctx, cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		store = s
	}

	cached, err := metadata.NewCached(upstream, cfg.CacheSize, store, logger.Named("cache"))
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	var once bool
	closeFn := func() {
		if store != nil && !once {
			once = true
			if err := store.Close(); err != nil {
				logger.Warn("closing metadata cache: %v", err)
			}
		}
	}
	return cached, closeFn, nil
}

// runHeadless handles all headless modes without starting a UI.
func runHeadless(ctx context.Context, cfg config.Config, load func(context.Context) (*catalog.Catalog, error),
	gateway metadata.Gateway, overlays render.Overlays, width, height int) error {

	if askText != "" {
		resp := query.Ask(askText)
		fmt.Println(resp.Text)
		if infoName == "" && !summaryMode && pngPath == "" {
			return nil
		}
		fmt.Println()
	}

	if infoName != "" {
		if err := writeInfo(ctx, os.Stdout, gateway, infoName); err != nil {
			return err
		}
		if !summaryMode && pngPath == "" {
			return nil
		}
		fmt.Println()
	}

	cat, err := load(ctx)
	if err != nil {
		return err
	}

	if summaryMode {
		catalog.WriteSummaryTable(os.Stdout, cat, summaryStars)
	}

	if pngPath != "" {
		overlays.Time = time.Now()
		if err := writeSnapshot(ctx, cfg, cat, overlays, width, height); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%dx%d)\n", pngPath, width, height)
	}
	return nil
}

// writeInfo prints the metadata record for a constellation. A failed fetch
// still prints the fallback record.
func writeInfo(ctx context.Context, w io.Writer, gateway metadata.Gateway, name string) error {
	code, ok := catalog.CodeForName(catalog.ConstellationName(name))
	if !ok {
		return fmt.Errorf("%w: %s", state.ErrUnknownConstellation, name)
	}
	full := catalog.ConstellationName(code)

	ctx, cancel := context.WithTimeout(ctx, headlessFetch)
	defer cancel()
	rec, err := metadata.Resolve(ctx, gateway, full)

	fmt.Fprintln(w, rec.Name)
	fmt.Fprintln(w, strings.Repeat("─", len([]rune(rec.Name))))
	fmt.Fprintf(w, "Area:           %s\n", rec.Area)
	fmt.Fprintf(w, "Brightest star: %s\n", rec.BrightestStar)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rec.Description)
	if rec.ReferenceURL != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rec.ReferenceURL)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (showing built-in description)\n", err)
	}
	return nil
}

// writeSnapshot renders frames on a wall-clock ticker until the camera has
// settled on the selection, then writes the last frame as PNG.
func writeSnapshot(ctx context.Context, cfg config.Config, cat *catalog.Catalog, overlays render.Overlays, width, height int) error {
	stateCfg := state.DefaultConfig()
	stateCfg.FocusZoom = cfg.FocusZoom
	machine := state.NewMachine(cat, stateCfg)
	if selectName != "" {
		if _, _, err := machine.SelectByName(selectName); err != nil {
			return fmt.Errorf("select %s: %w", selectName, err)
		}
	}

	canvas := render.NewRaster(width, height)
	camera := render.NewCamera(cfg.CameraDuration())
	w, h := canvas.Size()
	var last float64

	ticker := clock.NewTicker(cfg.FrameInterval())
	loop := render.NewLoop(nil,
		func() render.Canvas { return canvas },
		func(tick clock.Tick) render.Scene {
			dt := time.Duration((tick.Millis - last) * float64(time.Millisecond))
			last = tick.Millis
			v := machine.View()
			return render.Scene{
				Catalog:   cat,
				Selected:  v.Selected,
				Transform: camera.Update(v, w, h, dt),
				Overlays:  overlays,
			}
		},
	)
	loop.Attach(ticker)
	defer loop.Close()

	runFor := cfg.CameraDuration() + snapshotFrames*cfg.FrameInterval()
	runCtx, cancel := context.WithTimeout(ctx, runFor)
	defer cancel()
	if err := ticker.Run(runCtx); !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if drawn, _ := loop.Counts(); drawn == 0 {
		return errors.New("no frame rendered")
	}
	return canvas.WritePNG(pngPath)
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: want WxH", s)
	}
	if w < 16 || h < 8 || w > 16384 || h > 16384 {
		return 0, 0, fmt.Errorf("invalid size %q: out of range", s)
	}
	return w, h, nil
}
