package elevation

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// Synthesize validates and completes the key points of every road and
// computes its elevation polynomials. Missing end points take the height of
// the linked neighbour in the same segment; without one the profile is padded
// flat.
func Synthesize(ctx context.Context, net *roadnet.Network) error {
	logger := ctxlog.FromContext(ctx)

	declared := make(map[int][]roadnet.ElevationKeyPoint, len(net.Roads))
	for i := range net.Roads {
		r := &net.Roads[i]
		pts, err := clean(ctx, net, r)
		if err != nil {
			return err
		}
		declared[r.ID] = pts
	}

	for i := range net.Roads {
		r := &net.Roads[i]
		pts := declared[r.ID]
		if len(pts) == 0 {
			r.ElevationKeyPoints = nil
			r.Elevation = nil
			continue
		}
		if pts[0].S > roadnet.Tolerance {
			if h, ok := neighbourHeight(net, declared, r, roadnet.Start, pts[0].Height); ok {
				pts = append([]roadnet.ElevationKeyPoint{{S: 0, Height: h, Radius: pts[0].Radius}}, pts...)
			}
		}
		if last := pts[len(pts)-1]; last.S < r.Length-roadnet.Tolerance {
			if h, ok := neighbourHeight(net, declared, r, roadnet.End, last.Height); ok {
				pts = append(pts, roadnet.ElevationKeyPoint{S: r.Length, Height: h, Radius: last.Radius})
			}
		}

		profile, err := Profile(pts, r.Length)
		if err != nil {
			return &roadnet.Error{Segment: r.InputSegmentID, Road: r.ID, Junction: roadnet.None, Err: err}
		}
		r.ElevationKeyPoints = pts
		r.Elevation = profile
		logger.Debug("Synthesized elevation.", "road", r.ID, "key_points", len(pts), "polynomials", len(profile))
	}
	return nil
}

// clean checks bounds and ordering and drops duplicate offsets with a
// warning. The result is a fresh slice.
func clean(ctx context.Context, net *roadnet.Network, r *roadnet.Road) ([]roadnet.ElevationKeyPoint, error) {
	pts := r.ElevationKeyPoints
	if len(pts) == 0 {
		return nil, nil
	}
	fail := func(format string, args ...any) error {
		return &roadnet.Error{Segment: r.InputSegmentID, Road: r.ID, Junction: roadnet.None,
			Err: fmt.Errorf("%w: "+format, append([]any{roadnet.ErrElevation}, args...)...)}
	}
	if pts[0].S < -roadnet.Tolerance || pts[len(pts)-1].S > r.Length+roadnet.Tolerance {
		return nil, fail("key points [%g, %g] exceed road length %g", pts[0].S, pts[len(pts)-1].S, r.Length)
	}

	out := make([]roadnet.ElevationKeyPoint, 0, len(pts))
	for i, p := range pts {
		p.S = lo.Clamp(p.S, 0, r.Length)
		if i > 0 {
			prev := out[len(out)-1]
			if p.S < prev.S {
				return nil, fail("key point %d at s=%g precedes s=%g", i, p.S, prev.S)
			}
			if math.Abs(p.S-prev.S) <= roadnet.Tolerance {
				net.Warn(ctx, roadnet.Warning{Segment: r.InputSegmentID, Road: r.ID, Junction: roadnet.None,
					Message: fmt.Sprintf("duplicate elevation key point at s=%g dropped", p.S)})
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// neighbourHeight returns the key-point height of the road linked at end c
// when it lies in the same segment and differs from h.
func neighbourHeight(net *roadnet.Network, declared map[int][]roadnet.ElevationKeyPoint, r *roadnet.Road, c roadnet.ContactPoint, h float64) (float64, bool) {
	l := r.Link(c)
	if !l.Valid() || l.ElementType != roadnet.ElementRoad {
		return 0, false
	}
	n, ok := net.Road(l.ElementID)
	if !ok || n.InputSegmentID != r.InputSegmentID {
		return 0, false
	}
	pts := declared[n.ID]
	if len(pts) == 0 {
		return 0, false
	}
	nh := pts[0].Height
	if l.ContactPoint == roadnet.End {
		nh = pts[len(pts)-1].Height
	}
	if nh == h {
		return 0, false
	}
	return nh, true
}
