package segment

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// ObjectTolerance is how far a declared object or signal may lie outside a
// fully placed road before it is rejected instead of clipped.
const ObjectTolerance = 1e-6

// Placement selects the part of a declared road to build and where it goes.
//
// The declared reference line is laid out from the origin and moved so that
// its pose at arc length TieS equals Tie. The road then runs from From to To
// in declared arc length; To < From yields a reversed road. MaxLength caps
// the length when positive. Lateral is added to every lane offset.
type Placement struct {
	From, To  float64
	MaxLength float64
	Lateral   float64
	TieS      float64
	Tie       geometry.Pose
}

// Full places the whole declared road at the origin.
func Full() Placement {
	return Placement{To: math.Inf(1)}
}

// Reversed reports whether the road runs against the declared direction.
func (p Placement) Reversed() bool {
	return p.To < p.From
}

// interval clamps the placement to a declared length and returns the
// forward interval [a, b] it covers.
func (p Placement) interval(length float64) (a, b float64) {
	from := lo.Clamp(p.From, 0, length)
	to := length
	if !math.IsInf(p.To, 1) {
		to = lo.Clamp(p.To, 0, length)
	}
	if from <= to {
		a, b = from, to
		if p.MaxLength > 0 && b-a > p.MaxLength {
			b = a + p.MaxLength
		}
		return a, b
	}
	a, b = to, from
	if p.MaxLength > 0 && b-a > p.MaxLength {
		a = b - p.MaxLength
	}
	return a, b
}

func (p Placement) isFull(length float64) bool {
	a, b := p.interval(length)
	return a == 0 && b == length && !p.Reversed()
}

// Place lays out d according to p and returns an unlinked road.
func Place(d *Declaration, p Placement, id int) (*roadnet.Road, error) {
	length := d.Length()
	a, b := p.interval(length)
	if b-a <= roadnet.Tolerance {
		return nil, fmt.Errorf("%w: placement [%g, %g] of road %d leaves no road", roadnet.ErrGeometry, p.From, p.To, d.ID)
	}

	origin := geometry.MotionBetween(geometry.PoseAlong(geometry.Pose{}, d.Line, p.TieS), p.Tie).Apply(geometry.Pose{})
	prims := extract(d.Line, a, b)
	start := geometry.PoseAlong(origin, d.Line, a)
	sections := cutSections(d.Sections, a, b)

	r := roadnet.NewRoad(id)
	r.InputID = d.ID
	r.Type = d.Type
	if p.Reversed() {
		start = geometry.PoseAlong(origin, d.Line, b).Flip()
		prims = reverse(prims)
		sections = mirrorSections(sections, b-a)
	}
	r.SetGeometry(start, prims)
	for i := range sections {
		sections[i].ID = i
		sections[i].Offset.A += p.Lateral
	}
	r.LaneSections = sections

	full := p.isFull(length)
	mapS := func(s float64) float64 {
		if p.Reversed() {
			return b - s
		}
		return s - a
	}
	var err error
	if r.Objects, err = placeObjects(d.Objects, mapS, r.Length, full, p.Reversed()); err != nil {
		return nil, err
	}
	if r.Signals, err = placeSignals(d.Signals, mapS, r.Length, full, p.Reversed()); err != nil {
		return nil, err
	}
	return r, nil
}

// extract returns the primitives covering [a, b], splitting the ones that
// cross either bound.
func extract(line []geometry.Primitive, a, b float64) []geometry.Primitive {
	var out []geometry.Primitive
	var s float64
	for _, prim := range line {
		s0, s1 := s, s+prim.Length
		s = s1
		if s1 <= a || s0 >= b {
			continue
		}
		if a > s0 {
			_, prim = prim.Split(a - s0)
			s0 = a
		}
		if b < s1 {
			prim, _ = prim.Split(b - s0)
		}
		if prim.Length > 0 {
			out = append(out, prim)
		}
	}
	return out
}

func reverse(prims []geometry.Primitive) []geometry.Primitive {
	out := make([]geometry.Primitive, len(prims))
	for i, p := range prims {
		out[len(prims)-1-i] = p.Reverse()
	}
	return out
}

// cutSections keeps the lane sections overlapping [a, b] and rebases them so
// the first one starts at 0.
func cutSections(sections []roadnet.LaneSection, a, b float64) []roadnet.LaneSection {
	var out []roadnet.LaneSection
	for i, ls := range sections {
		end := math.Inf(1)
		if i+1 < len(sections) {
			end = sections[i+1].S
		}
		if end <= a || ls.S >= b {
			continue
		}
		if ls.S < a {
			ls = ls.Shift(a - ls.S)
			ls.S = a
		}
		ls.S -= a
		out = append(out, ls)
	}
	return out
}

// mirrorSections reverses sections of a road of the given length.
func mirrorSections(sections []roadnet.LaneSection, length float64) []roadnet.LaneSection {
	out := make([]roadnet.LaneSection, len(sections))
	for i, ls := range sections {
		end := length
		if i+1 < len(sections) {
			end = sections[i+1].S
		}
		m := ls.Mirror(end - ls.S)
		m.S = length - end
		out[len(sections)-1-i] = m
	}
	return out
}

// clipS maps a declared offset into the placed road. ok is false when the
// entry falls outside a partial placement and should be dropped.
func clipS(s, length float64, full bool) (float64, bool, error) {
	if s >= 0 && s <= length {
		return s, true, nil
	}
	if !full {
		return 0, false, nil
	}
	if s < -ObjectTolerance || s > length+ObjectTolerance {
		return 0, false, fmt.Errorf("%w: offset %g outside road of length %g", roadnet.ErrInvalid, s, length)
	}
	return lo.Clamp(s, 0, length), true, nil
}

func placeObjects(objs []roadnet.Object, mapS func(float64) float64, length float64, full, reversed bool) ([]roadnet.Object, error) {
	var out []roadnet.Object
	for _, o := range objs {
		s, ok, err := clipS(mapS(o.S), length, full)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", o.ID, err)
		}
		if !ok {
			continue
		}
		o.S = s
		if reversed {
			o.T = -o.T
			o.Heading = geometry.NormalizeAngle(o.Heading + math.Pi)
			o.Orientation = flipOrientation(o.Orientation)
			if o.Repeat {
				o.S = math.Max(0, s-o.RepeatLength)
			}
		}
		if o.Repeat && o.S+o.RepeatLength > length {
			o.RepeatLength = length - o.S
		}
		out = append(out, o)
	}
	return out, nil
}

func placeSignals(sigs []roadnet.Signal, mapS func(float64) float64, length float64, full, reversed bool) ([]roadnet.Signal, error) {
	var out []roadnet.Signal
	for i, sg := range sigs {
		s, ok, err := clipS(mapS(sg.S), length, full)
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
		if !ok {
			continue
		}
		sg.S = s
		if reversed {
			sg.T = -sg.T
			sg.Orientation = flipOrientation(sg.Orientation)
		}
		out = append(out, sg)
	}
	return out, nil
}

func flipOrientation(o string) string {
	switch o {
	case "+":
		return "-"
	case "-":
		return "+"
	}
	return o
}
