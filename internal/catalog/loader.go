package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/version"
)

const (
	// SourceEmbedded selects the data set compiled into the binary.
	SourceEmbedded = "embedded"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	embeddedStars = "data/stars.json"
	embeddedLines = "data/constellations.lines.json"
)

//go:embed data/*.json
var embeddedFS embed.FS

// ErrUnsupportedSource is returned for source strings with an unknown scheme.
var ErrUnsupportedSource = errors.New("unsupported data source")

// Loader reads the star and constellation line sources.
type Loader struct {
	client  *http.Client
	timeout time.Duration
	log     *logging.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(log *logging.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

// NewLoader creates a data loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		timeout: DefaultTimeout,
		log:     logging.Discard(),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.client == nil {
		l.client = &http.Client{
			Timeout: l.timeout,
		}
	}

	return l
}

// Load fetches both sources concurrently. Both are required: if either
// fetch or decode fails the whole load fails and no catalog is returned.
//
// A source is "embedded" (or empty), a file path, a file:// URL, or an
// http(s) URL.
func (l *Loader) Load(ctx context.Context, starsSrc, linesSrc string) (*Catalog, error) {
	start := time.Now()
	cat := &Catalog{
		StarsFrom: describeSource(starsSrc),
		LinesFrom: describeSource(linesSrc),
	}

	var starWarnings, lineWarnings []string
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := l.read(gctx, starsSrc, embeddedStars)
		if err != nil {
			return fmt.Errorf("load stars: %w", err)
		}
		stars, warnings, err := ParseStars(data)
		if err != nil {
			return fmt.Errorf("load stars: %w", err)
		}
		cat.Stars = stars
		starWarnings = warnings
		return nil
	})

	g.Go(func() error {
		data, err := l.read(gctx, linesSrc, embeddedLines)
		if err != nil {
			return fmt.Errorf("load constellation lines: %w", err)
		}
		lines, warnings, err := ParseLines(data)
		if err != nil {
			return fmt.Errorf("load constellation lines: %w", err)
		}
		cat.Lines = lines
		lineWarnings = warnings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	cat.Warnings = append(starWarnings, lineWarnings...)
	cat.LoadedAt = time.Now()
	for _, w := range cat.Warnings {
		l.log.Debug("catalog: %s", w)
	}
	l.log.Info("catalog: %d stars, %d constellations in %v",
		len(cat.Stars), len(cat.Lines), time.Since(start).Round(time.Millisecond))

	return cat, nil
}

// LoadEmbedded returns the compiled-in data set.
func LoadEmbedded() (*Catalog, error) {
	return NewLoader().Load(context.Background(), SourceEmbedded, SourceEmbedded)
}

func (l *Loader) read(ctx context.Context, src, embeddedName string) ([]byte, error) {
	switch {
	case src == "" || src == SourceEmbedded:
		return embeddedFS.ReadFile(embeddedName)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetchRaw(ctx, src)
	case strings.HasPrefix(src, "file://"):
		return os.ReadFile(filepath.Clean(strings.TrimPrefix(src, "file://")))
	case strings.Contains(src, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, src)
	default:
		return os.ReadFile(filepath.Clean(src))
	}
}

func (l *Loader) fetchRaw(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

func describeSource(src string) string {
	if src == "" {
		return SourceEmbedded
	}
	return src
}
