package pipeline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/specialistvlad/roadweaver/internal/elevation"
	"github.com/specialistvlad/roadweaver/internal/junction"
	"github.com/specialistvlad/roadweaver/internal/linker"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/specialistvlad/roadweaver/internal/segment"
)

// RootName is the name every description root must carry.
const RootName = "roadNetwork"

// Options are the run-wide settings.
type Options struct {
	// ReferenceElevation is the height of the reference road. A reElev
	// attribute on the links declaration takes precedence.
	ReferenceElevation float64
}

// Result is a finished run.
type Result struct {
	Network *roadnet.Network
	Report  linker.Report
}

type segmentKind int

const (
	kindRoad segmentKind = iota
	kindConnectingRoad
	kindJunction
)

// kinds maps the segment names a description may use.
var kinds = map[string]segmentKind{
	"road":           kindRoad,
	"connectingRoad": kindConnectingRoad,
	"tjunction":      kindJunction,
	"junction":       kindJunction,
}

// Run builds and validates the network described by root.
func Run(ctx context.Context, root attr.Node, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if root.Name() != RootName {
		return nil, fmt.Errorf("%w: root is %q, want %q", attr.ErrInvalid, root.Name(), RootName)
	}
	segs, err := attr.RequireChild(root, "segments")
	if err != nil {
		return nil, err
	}
	logger.Info("Generation started.", "segments", len(segs.Children("")))

	net := roadnet.New()
	byKind, err := classify(segs)
	if err != nil {
		return nil, fmt.Errorf("segments: %w", err)
	}

	for _, n := range byKind[kindRoad] {
		if err := segment.BuildRoads(ctx, net, n); err != nil {
			return nil, fmt.Errorf("segments: %w", err)
		}
	}
	for _, n := range byKind[kindConnectingRoad] {
		if err := segment.BuildConnectingRoad(ctx, net, n); err != nil {
			return nil, fmt.Errorf("segments: %w", err)
		}
	}
	for _, n := range byKind[kindJunction] {
		if err := junction.Synthesize(ctx, net, n); err != nil {
			return nil, fmt.Errorf("junctions: %w", err)
		}
	}
	logger.Debug("Segments built.", "roads", len(net.Roads), "junctions", len(net.Junctions))

	if err := linker.Connect(ctx, net, root, linker.Options{ReferenceElevation: opts.ReferenceElevation}); err != nil {
		return nil, fmt.Errorf("linking: %w", err)
	}
	if err := elevation.Synthesize(ctx, net); err != nil {
		return nil, fmt.Errorf("elevation: %w", err)
	}
	report, err := linker.Propagate(ctx, net)
	if err != nil {
		return nil, fmt.Errorf("propagation: %w", err)
	}
	if err := net.Validate(); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}

	logger.Info("Generation finished.", "roads", len(net.Roads), "junctions", len(net.Junctions),
		"controllers", len(net.Controllers), "warnings", len(net.Warnings))
	return &Result{Network: net, Report: report}, nil
}

// classify groups segments by kind, keeping document order within a kind.
func classify(segs attr.Node) (map[segmentKind][]attr.Node, error) {
	out := make(map[segmentKind][]attr.Node)
	for _, n := range segs.Children("") {
		k, ok := kinds[n.Name()]
		if !ok {
			id, _ := attr.IntOr(n, "id", roadnet.None)
			return nil, roadnet.Errorf(id, "%w: %s", roadnet.ErrUnsupported, n.Name())
		}
		out[k] = append(out[k], n)
	}
	return out, nil
}
