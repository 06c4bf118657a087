package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatUnknown Format = "unknown"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
)

// formatFromFilename guesses the file format from its extension.
func formatFromFilename(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatUnknown
	}
}

func load(r io.Reader, format Format, into any) error {
	switch format {
	case FormatYAML:
		return yaml.NewDecoder(r).Decode(into)
	case FormatTOML:
		return toml.NewDecoder(r).Decode(into)
	default:
		return errors.New("unable to determine config format")
	}
}

// loadInto reads each named file into dest in order. Later files only
// overwrite keys they explicitly name, so a base config can be overlaid with
// environment-specific fragments.
func loadInto(dest any, locations []string) error {
	for _, location := range locations {
		location := strings.TrimSpace(location)
		if location == "" {
			continue
		}
		f, err := os.Open(location)
		if err != nil {
			return errors.Wrapf(err, "opening config %s", location)
		}
		err = load(f, formatFromFilename(location), dest)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "loading config %s", location)
		}
	}
	return nil
}
