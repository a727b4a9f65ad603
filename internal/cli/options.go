// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"

	"annotree/internal/config"
	"annotree/internal/writers"
)

// Options holds every flag of every subcommand. Values not given on the
// command line come from the --config file, then from config.Default.
type Options struct {
	Config string

	// Logging
	LogLevel string
	LogJSON  bool

	// Performance
	Threads int

	// Input
	View string
	DNA  string

	// Output
	Output           string
	Emit             string
	Header           bool // true unless --no-header
	Events           string
	NoChangeExitCode int

	// watch
	Pattern     string
	Debounce    string
	MetricsAddr string
	DedupeCap   int
}

// BindGlobal registers the flags shared by all subcommands.
func BindGlobal(fs *pflag.FlagSet, o *Options) {
	d := config.Default()
	fs.StringVar(&o.Config, "config", "", "TOML configuration file")
	fs.StringVar(&o.LogLevel, "log-level", d.LogLevel, "log level: debug | info | warn | error | off")
	fs.BoolVar(&o.LogJSON, "log-json", d.LogJSON, "log JSON records instead of text")
	fs.IntVarP(&o.Threads, "threads", "t", d.Threads, "fragment loader goroutines (0 = all CPUs)")
	fs.StringVar(&o.DNA, "dna", d.DNA, "FASTA file of reference DNA attached to blocks by sequence name")
	fs.StringVarP(&o.Output, "output", "o", d.Output, "output format: text | json | jsonl")
	fs.StringVar(&o.Emit, "emit", d.Emit, "what to write: diff | view | none")
	fs.Bool("no-header", !d.Header, "suppress header line in text output")
	fs.StringVar(&o.Events, "events", d.Events, "append JSONL change events to this file ('-' = stderr)")
	fs.IntVar(&o.NoChangeExitCode, "no-change-exit-code", 0, "exit code when no operation changed the view")
}

// BindView registers --view for the subcommands that read one.
func BindView(fs *pflag.FlagSet, o *Options) {
	fs.StringVar(&o.View, "view", "", "fragment file holding the starting view")
}

// BindWatch registers the watch-only flags.
func BindWatch(fs *pflag.FlagSet, o *Options) {
	d := config.Default().Watch
	fs.StringVar(&o.Pattern, "pattern", d.Pattern, "file name pattern to pick up")
	fs.StringVar(&o.Debounce, "debounce", d.Debounce, "quiet time before a changed file is loaded")
	fs.StringVar(&o.MetricsAddr, "metrics-addr", d.MetricsAddr, "serve Prometheus metrics on this address")
	fs.IntVar(&o.DedupeCap, "dedupe-cap", d.DedupeCap, "file versions remembered to skip duplicate events")
}

// Resolve fills every option the user did not set from the config file (or
// the defaults), then validates the result.
func (o *Options) Resolve(fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if o.Config != "" {
		var err error
		if cfg, err = config.Load(o.Config); err != nil {
			return cfg, err
		}
	}
	set := func(name string) bool { return fs.Lookup(name) != nil && fs.Changed(name) }

	if !set("log-level") {
		o.LogLevel = cfg.LogLevel
	}
	if !set("log-json") {
		o.LogJSON = cfg.LogJSON
	}
	if !set("threads") {
		o.Threads = cfg.Threads
	}
	if !set("dna") {
		o.DNA = cfg.DNA
	}
	if !set("output") {
		o.Output = cfg.Output
	}
	if !set("emit") {
		o.Emit = cfg.Emit
	}
	if set("no-header") {
		noHeader, _ := fs.GetBool("no-header")
		o.Header = !noHeader
	} else {
		o.Header = cfg.Header
	}
	if !set("events") {
		o.Events = cfg.Events
	}
	if !set("pattern") {
		o.Pattern = cfg.Watch.Pattern
	}
	if !set("debounce") {
		o.Debounce = cfg.Watch.Debounce
	}
	if !set("metrics-addr") {
		o.MetricsAddr = cfg.Watch.MetricsAddr
	}
	if !set("dedupe-cap") {
		o.DedupeCap = cfg.Watch.DedupeCap
	}
	return cfg, o.Validate()
}

// Validate checks the resolved options.
func (o Options) Validate() error {
	c := config.Config{
		LogLevel: o.LogLevel,
		Threads:  o.Threads,
		Watch:    config.Watch{Debounce: o.Debounce, DedupeCap: o.DedupeCap},
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if !slices.Contains(writers.Formats(), o.Output) {
		return fmt.Errorf("invalid --output %q (want one of %v)", o.Output, writers.Formats())
	}
	switch o.Emit {
	case writers.EmitDiff, writers.EmitView, writers.EmitNone:
	default:
		return fmt.Errorf("invalid --emit %q", o.Emit)
	}
	if o.NoChangeExitCode < 0 || o.NoChangeExitCode > 125 {
		return errors.New("--no-change-exit-code must be between 0 and 125")
	}
	return nil
}
