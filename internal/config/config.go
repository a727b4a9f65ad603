// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"annotree/internal/logx"
)

// Config is the on-disk TOML configuration. Command-line flags override it.
//
//	log_level = "info"
//	threads = 4
//	output = "jsonl"
//
//	[watch]
//	pattern = "*.yaml"
//	debounce = "250ms"
//	metrics_addr = ":9090"
type Config struct {
	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`
	Threads  int    `toml:"threads"`
	Output   string `toml:"output"`
	Emit     string `toml:"emit"`
	Header   bool   `toml:"header"`
	DNA      string `toml:"dna"`
	Events   string `toml:"events"`

	Watch Watch `toml:"watch"`
}

type Watch struct {
	Pattern     string `toml:"pattern"`
	Debounce    string `toml:"debounce"`
	MetricsAddr string `toml:"metrics_addr"`
	DedupeCap   int    `toml:"dedupe_cap"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Output:   "text",
		Emit:     "diff",
		Header:   true,
		Watch: Watch{
			Pattern:   "*.yaml",
			Debounce:  "200ms",
			DedupeCap: 4096,
		},
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	fh, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer fh.Close()
	dec := toml.NewDecoder(fh).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var sm *toml.StrictMissingError
		if errors.As(err, &sm) {
			return cfg, fmt.Errorf("%s: unknown keys:\n%s", path, sm.String())
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that flags cannot repair.
func (c Config) Validate() error {
	if _, _, err := logx.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Threads < 0 {
		return errors.New("threads must be ≥ 0")
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		return err
	}
	if c.Watch.DedupeCap < 0 {
		return errors.New("watch.dedupe_cap must be ≥ 0")
	}
	return nil
}

// DebounceDuration parses Debounce; empty means no debounce.
func (w Watch) DebounceDuration() (time.Duration, error) {
	if w.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch.debounce: %w", err)
	}
	if d < 0 {
		return 0, errors.New("watch.debounce must be ≥ 0")
	}
	return d, nil
}
