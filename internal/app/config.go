package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Input formats.
const (
	FormatAuto = "auto"
	FormatHCL  = "hcl"
	FormatXML  = "xml"
)

// Preview formats.
const (
	PreviewGeoJSON = "geojson"
	PreviewWKT     = "wkt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath  string // .hcl file, directory of .hcl files or .xml file
	OutputPath string // OpenDRIVE document
	Format     string

	PreviewPath      string
	PreviewFormat    string
	PreviewStep      float64
	PreviewTolerance float64

	Name               string
	Date               string
	ReferenceElevation float64

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults. Without an output path the
// document is written next to the input with the .xodr extension.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}

	cfg.Format = strings.ToLower(cfg.Format)
	switch cfg.Format {
	case "":
		cfg.Format = FormatAuto
	case FormatAuto, FormatHCL, FormatXML:
	default:
		return nil, fmt.Errorf("invalid format %q: must be 'auto', 'hcl' or 'xml'", cfg.Format)
	}

	if cfg.OutputPath == "" {
		base := strings.TrimSuffix(filepath.Clean(cfg.InputPath), filepath.Ext(cfg.InputPath))
		cfg.OutputPath = base + ".xodr"
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(cfg.OutputPath), filepath.Ext(cfg.OutputPath))
	}

	if cfg.PreviewPath != "" {
		cfg.PreviewFormat = strings.ToLower(cfg.PreviewFormat)
		switch cfg.PreviewFormat {
		case "":
			cfg.PreviewFormat = PreviewGeoJSON
		case PreviewGeoJSON, PreviewWKT:
		default:
			return nil, fmt.Errorf("invalid preview format %q: must be 'geojson' or 'wkt'", cfg.PreviewFormat)
		}
		if cfg.PreviewStep < 0 || cfg.PreviewTolerance < 0 {
			return nil, errors.New("preview step and tolerance cannot be negative")
		}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "", LogText, LogJSON:
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}
