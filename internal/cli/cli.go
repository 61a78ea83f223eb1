package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/roadweaver/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("roadweaver", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
roadweaver - Generates OpenDRIVE road networks from declarative descriptions.

Usage:
  roadweaver [options] [INPUT_PATH]

Arguments:
  INPUT_PATH
    Path to a .hcl file, a directory containing .hcl files, or an .xml file.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("input", "", "Path to the description file or directory.")
	iFlag := flagSet.String("i", "", "Path to the description file or directory (shorthand).")
	outputFlag := flagSet.String("output", "", "Path of the OpenDRIVE document. Defaults to the input path with the .xodr extension.")
	oFlag := flagSet.String("o", "", "Path of the OpenDRIVE document (shorthand).")
	formatFlag := flagSet.String("format", app.FormatAuto, "Input format. Options: 'auto', 'hcl' or 'xml'.")
	nameFlag := flagSet.String("name", "", "Name written to the document header. Defaults to the output file name.")
	refElevFlag := flagSet.Float64("ref-elevation", 0, "Elevation of the reference road, unless the description sets reElev.")
	previewFlag := flagSet.String("preview", "", "Optional path of a reference-line preview.")
	previewFormatFlag := flagSet.String("preview-format", app.PreviewGeoJSON, "Preview format. Options: 'geojson' or 'wkt'.")
	previewStepFlag := flagSet.Float64("preview-step", 1, "Sampling distance of the preview in metres.")
	previewTolFlag := flagSet.Float64("preview-tolerance", 0, "Douglas-Peucker tolerance of the preview in metres. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *inputFlag != "" {
		path = *inputFlag
	} else if *iFlag != "" {
		path = *iFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Input path determined.", "path", path)

	if path == "" {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	out := *outputFlag
	if out == "" {
		out = *oFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		InputPath:          path,
		OutputPath:         out,
		Format:             *formatFlag,
		PreviewPath:        *previewFlag,
		PreviewFormat:      *previewFormatFlag,
		PreviewStep:        *previewStepFlag,
		PreviewTolerance:   *previewTolFlag,
		Name:               *nameFlag,
		ReferenceElevation: *refElevFlag,
		LogFormat:          logFormat,
		LogLevel:           logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
