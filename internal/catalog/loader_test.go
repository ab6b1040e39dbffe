package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	cat, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}

	if len(cat.Stars) < 100 {
		t.Errorf("expected at least 100 embedded stars, got %d", len(cat.Stars))
	}
	if _, ok := cat.Feature("Orion"); !ok {
		t.Error("embedded lines should include Orion")
	}
	if _, ok := cat.StarByName("Vega"); !ok {
		t.Error("embedded stars should include Vega")
	}
	for _, s := range cat.Stars {
		if s.RA < 0 || s.RA >= 360 {
			t.Fatalf("star %s RA %v not normalized", s.Label(), s.RA)
		}
	}
	if cat.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stars.json":
			_, _ = w.Write([]byte(sampleStars))
		case "/lines.json":
			_, _ = w.Write([]byte(sampleLines))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	cat, err := l.Load(context.Background(), srv.URL+"/stars.json", srv.URL+"/lines.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat.Stars) != 2 || len(cat.Lines) != 2 {
		t.Errorf("got %d stars, %d lines; want 2, 2", len(cat.Stars), len(cat.Lines))
	}
	if len(cat.Warnings) != 4 {
		t.Errorf("expected 4 warnings, got %v", cat.Warnings)
	}
}

func TestLoader_EitherFailureFailsLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stars.json" {
			_, _ = w.Write([]byte(sampleStars))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))

	cat, err := l.Load(context.Background(), srv.URL+"/stars.json", srv.URL+"/lines.json")
	if err == nil {
		t.Fatal("expected error when lines fail")
	}
	if cat != nil {
		t.Error("no catalog should be returned on partial failure")
	}

	if _, err := l.Load(context.Background(), srv.URL+"/missing.json", SourceEmbedded); err == nil {
		t.Error("expected error when stars fail")
	}
}

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	starsPath := filepath.Join(dir, "stars.json")
	if err := os.WriteFile(starsPath, []byte(sampleStars), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := NewLoader().Load(context.Background(), "file://"+starsPath, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat.Stars) != 2 {
		t.Errorf("expected 2 stars from file, got %d", len(cat.Stars))
	}
	if cat.LinesFrom != SourceEmbedded {
		t.Errorf("LinesFrom = %q, want embedded", cat.LinesFrom)
	}

	if _, err := NewLoader().Load(context.Background(), filepath.Join(dir, "nope.json"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoader_UnsupportedScheme(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "ftp://example.com/stars.json", "")
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("expected ErrUnsupportedSource, got %v", err)
	}
}
