package config

import (
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// CmdEnv holds the command line and environment options for the demo binary.
// They are kept apart from Config so that flag parsing never bleeds into
// library code; the binary applies the overrides after loading.
type CmdEnv struct {
	ConfigLocations []string `short:"c" long:"config" env:"METERAGE_CONFIG" env-delim:"," description:"config file(s) to load; later files override earlier ones"`
	LogLevel        string   `long:"log-level" env:"METERAGE_LOG_LEVEL" description:"override the configured log level"`
	Validate        bool     `short:"V" long:"validate" description:"load and validate the config, then exit"`
	Version         bool     `short:"v" long:"version" description:"print version and exit"`
	Debug           bool     `short:"d" long:"debug" description:"log the dependency graph during startup"`
}

// NewCmdEnvOptions parses the given argument list (excluding the program
// name). Asking for help prints usage and exits.
func NewCmdEnvOptions(args []string) (*CmdEnv, error) {
	opts := &CmdEnv{}
	parser := flags.NewParser(opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}
	return opts, nil
}

// ApplyTo overlays the parsed overrides onto an already-loaded config.
func (o *CmdEnv) ApplyTo(cfg *Config) error {
	if o.LogLevel != "" {
		level := ParseLevel(o.LogLevel)
		if level == UnknownLevel {
			return errors.Errorf("unknown log level %q", o.LogLevel)
		}
		cfg.Logging.Level = level
	}
	return nil
}
