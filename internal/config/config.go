// Package config loads the optional YAML settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "LS_SKYMAP_CONFIG"

// Overlays toggles the optional sky overlays.
type Overlays struct {
	Meridian  bool    `yaml:"meridian"`
	Sun       bool    `yaml:"sun"`
	Longitude float64 `yaml:"longitude"` // Observer longitude for the meridian, degrees east
}

// Config holds all application configuration.
type Config struct {
	Stars        string   `yaml:"stars"` // "embedded", a file path or an http(s) URL
	Lines        string   `yaml:"lines"`
	WikipediaURL string   `yaml:"wikipedia_url"`
	SkyViewURL   string   `yaml:"skyview_url"`
	Survey       string   `yaml:"survey"`
	CachePath    string   `yaml:"cache_path"` // SQLite metadata cache, empty to disable
	CacheSize    int      `yaml:"cache_size"`
	FocusZoom    float64  `yaml:"focus_zoom"`
	CameraMillis int      `yaml:"camera_ms"`
	FPS          int      `yaml:"fps"`
	Overlays     Overlays `yaml:"overlays"`
	Offline      bool     `yaml:"offline"`
	LogLevel     string   `yaml:"log_level"`
	LogFile      string   `yaml:"log_file"`
}

// Defaults returns a Config with all default values set.
func Defaults() Config {
	return Config{
		Stars:        "embedded",
		Lines:        "embedded",
		WikipediaURL: "https://en.wikipedia.org/api/rest_v1/page/summary",
		SkyViewURL:   "https://skyview.gsfc.nasa.gov/cgi-bin/images",
		Survey:       "DSS",
		CacheSize:    128,
		FocusZoom:    2.2,
		CameraMillis: 450,
		FPS:          30,
		LogLevel:     "info",
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// LS_SKYMAP_CONFIG overrides path. With no path at all the defaults are
// returned.
func Load(path string) (Config, error) {
	if envPath := os.Getenv(EnvPath); envPath != "" {
		path = envPath
	}

	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode rejects unknown keys so typos do not silently fall back to defaults.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.Stars == "" {
		return fmt.Errorf("stars source is required")
	}
	if c.Lines == "" {
		return fmt.Errorf("lines source is required")
	}
	if err := validateURL("wikipedia_url", c.WikipediaURL); err != nil {
		return err
	}
	if err := validateURL("skyview_url", c.SkyViewURL); err != nil {
		return err
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.FocusZoom < 1 {
		return fmt.Errorf("focus_zoom must be at least 1, got %g", c.FocusZoom)
	}
	if c.CameraMillis < 0 {
		return fmt.Errorf("camera_ms must not be negative, got %d", c.CameraMillis)
	}
	if c.FPS < 1 || c.FPS > 120 {
		return fmt.Errorf("fps must be 1-120, got %d", c.FPS)
	}
	if c.Overlays.Longitude < -180 || c.Overlays.Longitude > 180 {
		return fmt.Errorf("overlays.longitude must be -180..180, got %g", c.Overlays.Longitude)
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: must be http or https", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", key, raw)
	}
	return nil
}

// CameraDuration returns the camera easing time.
func (c Config) CameraDuration() time.Duration {
	return time.Duration(c.CameraMillis) * time.Millisecond
}

// FrameInterval returns the time between frames.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
