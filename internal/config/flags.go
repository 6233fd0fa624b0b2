package config

import "flag"

// Flags holds the command-line overrides shared by every subcommand.
type Flags struct {
	Config      string
	Debug       bool
	LogFile     string
	Workers     int
	Budget      int
	Destination string
	Format      string
}

// Bind registers the flags on fs. Call it before fs.Parse.
func (f *Flags) Bind(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file")
	fs.IntVar(&f.Workers, "workers", 0, "Concurrent scene reads during analysis")
	fs.IntVar(&f.Budget, "budget", 0, "Per-object polygon budget")
	fs.StringVar(&f.Destination, "out", "", "Export destination directory")
	fs.StringVar(&f.Format, "format", "", "Export format")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Workers > 0 {
		cfg.Analysis.Workers = f.Workers
	}
	if f.Budget > 0 {
		cfg.Rules.PolygonBudget = f.Budget
	}
	if f.Destination != "" {
		cfg.Export.Destination = f.Destination
	}
	if f.Format != "" {
		cfg.Export.Format = f.Format
	}
}
