package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/specialistvlad/roadweaver/internal/opendrive"
	"github.com/specialistvlad/roadweaver/internal/pipeline"
	"github.com/specialistvlad/roadweaver/internal/preview"
)

// Generate loads the description and runs the pipeline without writing
// anything.
func (a *App) Generate(ctx context.Context) (*pipeline.Result, error) {
	ctx = a.withLogger(ctx)
	root, err := a.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load description: %w", err)
	}
	res, err := pipeline.Run(ctx, root, pipeline.Options{ReferenceElevation: a.config.ReferenceElevation})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	return res, nil
}

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	a.logger.Debug("App.Run method started.")
	start := time.Now()

	res, err := a.Generate(ctx)
	if err != nil {
		return err
	}
	net := res.Network

	date := a.config.Date
	if date == "" {
		date = start.UTC().Format(time.RFC3339)
	}
	header := opendrive.Header{Name: a.config.Name, Version: "1.00", Date: date}
	if err := opendrive.WriteFile(a.config.OutputPath, net, header); err != nil {
		return err
	}
	a.logger.Info("OpenDRIVE document written.", "path", a.config.OutputPath, "roads", len(net.Roads),
		"junctions", len(net.Junctions), "warnings", len(net.Warnings))

	if a.config.PreviewPath != "" {
		if err := a.writePreview(res); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.", "duration", time.Since(start))
	return nil
}

func (a *App) writePreview(res *pipeline.Result) error {
	f, err := os.Create(a.config.PreviewPath)
	if err != nil {
		return fmt.Errorf("failed to create preview %s: %w", a.config.PreviewPath, err)
	}
	opts := preview.Options{Step: a.config.PreviewStep, Tolerance: a.config.PreviewTolerance}
	if a.config.PreviewFormat == PreviewWKT {
		err = preview.WriteWKT(f, res.Network, opts)
	} else {
		err = preview.WriteGeoJSON(f, res.Network, opts)
	}
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.Info("Preview written.", "path", a.config.PreviewPath, "format", a.config.PreviewFormat)
	return nil
}
