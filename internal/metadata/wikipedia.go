package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/version"
)

const (
	// WikipediaSummaryURL is the REST summary endpoint; the page title is
	// appended as the last path segment.
	WikipediaSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary"

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 15 * time.Second

	maxBodySize = 1 << 20
)

// Wikipedia fetches constellation descriptions from the Wikipedia REST API
// and merges in the IAU figures.
type Wikipedia struct {
	baseURL string
	client  *http.Client
	log     *logging.Logger
}

// NewWikipedia creates a gateway. An empty baseURL selects
// WikipediaSummaryURL.
func NewWikipedia(baseURL string, log *logging.Logger) *Wikipedia {
	if baseURL == "" {
		baseURL = WikipediaSummaryURL
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Wikipedia{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: RequestTimeout},
		log:     log,
	}
}

// Name implements Gateway.
func (w *Wikipedia) Name() string {
	return "Wikipedia"
}

// summary is the subset of the REST summary response we use.
type summary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ExtractHTML string `json:"extract_html"`
	Description string `json:"description"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Fetch implements Gateway.
func (w *Wikipedia) Fetch(ctx context.Context, name string) (Record, error) {
	title := wikipediaTitle(name)
	reqURL := w.baseURL + "/" + title

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Record{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent)
	req.Header.Set("Accept", "application/json")

	w.log.Debug("fetching %s", reqURL)
	resp, err := w.client.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("fetch summary: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return Record{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Record{}, fmt.Errorf("read response body: %w", err)
	}

	var s summary
	if err := json.Unmarshal(body, &s); err != nil {
		return Record{}, fmt.Errorf("parse summary: %w", err)
	}

	rec := Record{
		Name:          name,
		Description:   w.description(s, title),
		Area:          unknownValue,
		BrightestStar: unknownValue,
		ReferenceURL:  s.ContentURLs.Desktop.Page,
	}
	if rec.ReferenceURL == "" {
		rec.ReferenceURL = wikipediaPageBase + title
	}
	applyStats(&rec)
	return rec, nil
}

// description picks the best text in the response: the plain extract, then
// text recovered from the HTML extract, then the short description.
func (w *Wikipedia) description(s summary, title string) string {
	if text := strings.TrimSpace(s.Extract); text != "" {
		return text
	}
	if s.ExtractHTML != "" {
		text, err := htmlToText(s.ExtractHTML, wikipediaPageBase+title)
		if err != nil {
			w.log.Debug("extract_html for %s: %v", title, err)
		} else if text != "" {
			return text
		}
	}
	return strings.TrimSpace(s.Description)
}

func htmlToText(fragment, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page URL: %w", err)
	}
	doc := "<html><head><title></title></head><body><article>" + fragment + "</article></body></html>"
	article, err := readability.FromReader(strings.NewReader(doc), u)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

// wikipediaTitle converts a constellation name to its article title,
// e.g. "Ursa Major" -> "Ursa_Major_(constellation)", path-escaped.
func wikipediaTitle(name string) string {
	return url.PathEscape(strings.ReplaceAll(name, " ", "_") + wikipediaTitleTail)
}
