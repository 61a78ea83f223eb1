// Package preview renders the reference lines of a network as planar
// geometry for quick inspection in GIS tools. Coordinates are the network's
// local metres, not geographic positions.
package preview

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/simplify"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// DefaultStep is the sampling distance along the reference line in metres.
const DefaultStep = 1.0

// Options controls sampling and thinning.
type Options struct {
	// Step is the sampling distance; values <= 0 use DefaultStep.
	Step float64
	// Tolerance enables Douglas-Peucker thinning when positive.
	Tolerance float64
}

// Sample returns points along the reference line of r every step metres,
// always including both ends.
func Sample(r *roadnet.Road, step float64) orb.LineString {
	if step <= 0 {
		step = DefaultStep
	}
	n := int(math.Ceil(r.Length / step))
	ls := make(orb.LineString, 0, n+1)
	for i := 0; i < n; i++ {
		p := r.PoseAt(float64(i) * step)
		ls = append(ls, orb.Point{p.X, p.Y})
	}
	end := r.EndPose()
	return append(ls, orb.Point{end.X, end.Y})
}

// Line samples r and applies the thinning configured in opts.
func Line(r *roadnet.Road, opts Options) orb.LineString {
	ls := Sample(r, opts.Step)
	if opts.Tolerance <= 0 || len(ls) < 3 {
		return ls
	}
	if thin, ok := simplify.DouglasPeucker(opts.Tolerance).Simplify(ls.Clone()).(orb.LineString); ok && len(thin) >= 2 {
		return thin
	}
	return ls
}

// Bound is the bounding box of every sampled reference line. It is the
// zero bound for an empty network.
func Bound(net *roadnet.Network) orb.Bound {
	var b orb.Bound
	for i := range net.Roads {
		rb := Sample(&net.Roads[i], DefaultStep).Bound()
		if i == 0 {
			b = rb
			continue
		}
		b = b.Union(rb)
	}
	return b
}

// WriteGeoJSON writes a FeatureCollection with one LineString feature per
// road.
func WriteGeoJSON(w io.Writer, net *roadnet.Network, opts Options) error {
	fc := geojson.NewFeatureCollection()
	for i := range net.Roads {
		r := &net.Roads[i]
		ls := Line(r, opts)
		pts := make([][]float64, len(ls))
		for k, p := range ls {
			pts[k] = []float64{p.X(), p.Y()}
		}
		f := geojson.NewLineStringFeature(pts)
		f.ID = r.ID
		f.SetProperty("road", r.ID)
		f.SetProperty("segment", r.InputSegmentID)
		f.SetProperty("junction", r.JunctionID)
		f.SetProperty("length", r.Length)
		f.SetProperty("connecting", r.IsConnectingRoad)
		f.SetProperty("elevation_offset", r.ElevationOffset)
		fc.AddFeature(f)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write GeoJSON: %w", err)
	}
	return nil
}

// WriteWKT writes a semicolon separated table with one row per road and the
// reference line in the last column as WKT.
func WriteWKT(w io.Writer, net *roadnet.Network, opts Options) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write([]string{"id", "segment", "junction", "length", "geom"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range net.Roads {
		r := &net.Roads[i]
		err := writer.Write([]string{
			fmt.Sprintf("%d", r.ID),
			fmt.Sprintf("%d", r.InputSegmentID),
			fmt.Sprintf("%d", r.JunctionID),
			fmt.Sprintf("%f", r.Length),
			wkt.MarshalString(Line(r, opts)),
		})
		if err != nil {
			return fmt.Errorf("failed to write road %d: %w", r.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
