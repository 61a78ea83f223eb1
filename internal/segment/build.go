package segment

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// RoadID encodes the originating segment into a road id.
func RoadID(segment, road int) int {
	return 100*segment + road
}

// Build declares and places one road.
func Build(ctx context.Context, node attr.Node, p Placement, id int) (*roadnet.Road, error) {
	d, err := Declare(node)
	if err != nil {
		return nil, err
	}
	r, err := Place(d, p, id)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Placed road.", "road", id, "length", r.Length, "geometries", len(r.Geometries), "reversed", p.Reversed())
	return r, nil
}

// Register gives the road's signals network-unique ids and appends it.
func Register(net *roadnet.Network, r *roadnet.Road) error {
	for i := range r.Signals {
		r.Signals[i].ID = net.NextSignalID()
	}
	return net.AddRoad(r)
}

// BuildRoads builds every road declared in a plain road segment. Each road
// is placed whole at the origin.
func BuildRoads(ctx context.Context, net *roadnet.Network, seg attr.Node) error {
	segID, err := seg.Int("id")
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx).With("segment", segID)
	logger.Debug("Building road segment.")

	decls := seg.Children("road")
	if len(decls) == 0 {
		return roadnet.Errorf(segID, "%w: %s declares no road", roadnet.ErrMissing, seg.Path())
	}
	for i, decl := range decls {
		if err := buildOne(ctx, net, profileOf(seg, decl, i == 0), decl, segID, false); err != nil {
			return err
		}
	}
	net.SegmentCount++
	logger.Info("Built road segment.", "roads", len(decls))
	return nil
}

// BuildConnectingRoad builds the single road of a connecting-road segment.
// The road's junction field holds the segment id as a grouping id.
func BuildConnectingRoad(ctx context.Context, net *roadnet.Network, seg attr.Node) error {
	segID, err := seg.Int("id")
	if err != nil {
		return err
	}
	decl, ok := seg.Child("road")
	if !ok {
		return roadnet.Errorf(segID, "%w: %s declares no road", roadnet.ErrMissing, seg.Path())
	}
	if err := buildOne(ctx, net, profileOf(seg, decl, true), decl, segID, true); err != nil {
		return err
	}
	net.SegmentCount++
	ctxlog.FromContext(ctx).Info("Built connecting road segment.", "segment", segID)
	return nil
}

// profileOf returns the elevation profile of one road declaration. A road's
// own elevationProfile wins; a segment-level one belongs to the first road.
func profileOf(seg, decl attr.Node, first bool) attr.Node {
	if ep, ok := decl.Child("elevationProfile"); ok {
		return ep
	}
	if ep, ok := seg.Child("elevationProfile"); ok && first {
		return ep
	}
	return nil
}

func buildOne(ctx context.Context, net *roadnet.Network, profile, decl attr.Node, segID int, connecting bool) error {
	inputID, err := decl.Int("id")
	if err != nil {
		return roadnet.Errorf(segID, "%w", err)
	}
	id := RoadID(segID, inputID)
	r, err := Build(ctx, decl, Full(), id)
	if err != nil {
		return roadnet.Errorf(segID, "%w", err).WithRoad(id)
	}
	r.InputSegmentID = segID
	if connecting {
		r.JunctionID = segID
		r.IsConnectingRoad = true
	}
	if r.ElevationKeyPoints, err = readElevationProfile(profile, r.Length); err != nil {
		return roadnet.Errorf(segID, "%w", err).WithRoad(id)
	}
	if err := Register(net, r); err != nil {
		return roadnet.Errorf(segID, "%w", err).WithRoad(id)
	}
	return nil
}

// readElevationProfile reads key points from an elevationProfile node, which
// may be nil. startR adds a point of height 0 at s = 0; endR and
// endElevation add one at the road end.
func readElevationProfile(ep attr.Node, length float64) ([]roadnet.ElevationKeyPoint, error) {
	if ep == nil {
		return nil, nil
	}
	var pts []roadnet.ElevationKeyPoint
	if ep.Has("startR") {
		r, err := ep.Float("startR")
		if err != nil {
			return nil, err
		}
		pts = append(pts, roadnet.ElevationKeyPoint{S: 0, Radius: r})
	}
	for _, n := range ep.Children("elevationPoint") {
		var p roadnet.ElevationKeyPoint
		var err error
		if p.S, err = n.Float("s"); err != nil {
			return nil, err
		}
		if p.Height, err = n.Float("height"); err != nil {
			return nil, err
		}
		if p.Radius, err = n.Float("r"); err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	if ep.Has("endR") {
		r, err := ep.Float("endR")
		if err != nil {
			return nil, err
		}
		h, err := attr.FloatOr(ep, "endElevation", 0)
		if err != nil {
			return nil, err
		}
		pts = append(pts, roadnet.ElevationKeyPoint{S: length, Height: h, Radius: r})
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].S < pts[j].S })
	for _, p := range pts {
		if p.S < -roadnet.Tolerance || p.S > length+roadnet.Tolerance {
			return nil, fmt.Errorf("%w: key point at s=%g outside road of length %g", roadnet.ErrElevation, p.S, length)
		}
	}
	return pts, nil
}
