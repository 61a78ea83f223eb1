package segment

import (
	"fmt"

	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// DefaultLaneWidth is used when a road declares no lanes or a lane declares
// no width.
const DefaultLaneWidth = 3.5

// Declaration is a road as written in the description, before placement.
type Declaration struct {
	ID       int
	Type     string
	Line     []geometry.Primitive
	Sections []roadnet.LaneSection
	Objects  []roadnet.Object
	Signals  []roadnet.Signal
}

// Length returns the declared reference-line length.
func (d *Declaration) Length() float64 {
	return geometry.TotalLength(d.Line)
}

// Width returns the full road width at s = 0.
func (d *Declaration) Width() float64 {
	return d.Sections[0].Width(0)
}

// Declare reads a road declaration.
func Declare(node attr.Node) (*Declaration, error) {
	id, err := node.Int("id")
	if err != nil {
		return nil, err
	}
	d := &Declaration{ID: id}
	if d.Type, err = attr.StringOr(node, "type", "town"); err != nil {
		return nil, err
	}
	if d.Line, err = readReferenceLine(node); err != nil {
		return nil, err
	}
	if d.Sections, err = readLanes(node); err != nil {
		return nil, err
	}
	if d.Objects, err = readObjects(node); err != nil {
		return nil, err
	}
	if d.Signals, err = readSignals(node); err != nil {
		return nil, err
	}
	return d, nil
}

// curvature converts a signed radius into a curvature; 0 means straight.
func curvature(n attr.Node, key string) (float64, error) {
	r, err := attr.FloatOr(n, key, 0)
	if err != nil || r == 0 {
		return 0, err
	}
	return 1 / r, nil
}

func readReferenceLine(node attr.Node) ([]geometry.Primitive, error) {
	ref, err := attr.RequireChild(node, "referenceLine")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", roadnet.ErrMissing, err)
	}
	var prims []geometry.Primitive
	for _, c := range ref.Children("") {
		length, err := c.Float("length")
		if err != nil {
			return nil, err
		}
		if length <= 0 {
			return nil, attr.InvalidError(c, "length", fmt.Errorf("must be positive, got %g", length))
		}
		switch c.Name() {
		case "line":
			prims = append(prims, geometry.NewLine(length))
		case "arc":
			k, err := curvature(c, "R")
			if err != nil {
				return nil, err
			}
			prims = append(prims, geometry.NewArc(length, k))
		case "spiral":
			ks, err := curvature(c, "Rs")
			if err != nil {
				return nil, err
			}
			ke, err := curvature(c, "Re")
			if err != nil {
				return nil, err
			}
			prims = append(prims, geometry.NewSpiral(length, ks, ke))
		default:
			return nil, fmt.Errorf("%s: %w: unknown reference line command %q", c.Path(), roadnet.ErrUnsupported, c.Name())
		}
	}
	if len(prims) == 0 {
		return nil, fmt.Errorf("%s: %w: empty reference line", ref.Path(), roadnet.ErrMissing)
	}
	return prims, nil
}

func readPoly(n attr.Node, def geometry.Poly3) (geometry.Poly3, error) {
	var p geometry.Poly3
	var err error
	if p.A, err = attr.FloatOr(n, "a", def.A); err != nil {
		return p, err
	}
	if p.B, err = attr.FloatOr(n, "b", def.B); err != nil {
		return p, err
	}
	if p.C, err = attr.FloatOr(n, "c", def.C); err != nil {
		return p, err
	}
	p.D, err = attr.FloatOr(n, "d", def.D)
	return p, err
}

func readLanes(node attr.Node) ([]roadnet.LaneSection, error) {
	lanes, ok := node.Child("lanes")
	if !ok {
		ls := roadnet.LaneSection{Lanes: []roadnet.Lane{roadnet.NewLane(1), roadnet.NewLane(0), roadnet.NewLane(-1)}}
		return []roadnet.LaneSection{ls}, nil
	}
	declared := lanes.Children("laneSection")
	if len(declared) == 0 {
		declared = []attr.Node{lanes}
	}
	sections := make([]roadnet.LaneSection, 0, len(declared))
	for i, sn := range declared {
		ls, err := readSection(sn)
		if err != nil {
			return nil, err
		}
		ls.ID = i
		if i == 0 && ls.S != 0 {
			return nil, attr.InvalidError(sn, "s", fmt.Errorf("first lane section must start at 0"))
		}
		if i > 0 && ls.S <= sections[i-1].S {
			return nil, attr.InvalidError(sn, "s", fmt.Errorf("lane sections must be ordered"))
		}
		sections = append(sections, ls)
	}
	return sections, nil
}

func readSection(n attr.Node) (roadnet.LaneSection, error) {
	var ls roadnet.LaneSection
	var err error
	if ls.S, err = attr.FloatOr(n, "s", 0); err != nil {
		return ls, err
	}
	if off, ok := n.Child("offset"); ok {
		if ls.Offset, err = readPoly(off, geometry.Poly3{}); err != nil {
			return ls, err
		}
	}
	for _, ln := range n.Children("lane") {
		l, err := readLane(ln)
		if err != nil {
			return ls, err
		}
		ls.Lanes = append(ls.Lanes, l)
	}
	if _, ok := ls.Lane(0); !ok {
		ls.Lanes = append(ls.Lanes, roadnet.NewLane(0))
	}
	ls.Sort()
	if err := ls.ValidateLanes(); err != nil {
		return ls, fmt.Errorf("%s: %w", n.Path(), err)
	}
	return ls, nil
}

func readLane(n attr.Node) (roadnet.Lane, error) {
	id, err := n.Int("id")
	if err != nil {
		return roadnet.Lane{}, err
	}
	l := roadnet.NewLane(id)
	if l.Type, err = attr.StringOr(n, "type", l.Type); err != nil {
		return l, err
	}
	if l.Level, err = attr.BoolOr(n, "level", false); err != nil {
		return l, err
	}
	if l.Speed, err = attr.FloatOr(n, "speed", 0); err != nil {
		return l, err
	}
	if w, ok := n.Child("width"); ok {
		if l.Width, err = readPoly(w, geometry.Poly3{}); err != nil {
			return l, err
		}
	}
	if rm, ok := n.Child("roadMark"); ok {
		if l.RoadMark.Type, err = attr.StringOr(rm, "type", l.RoadMark.Type); err != nil {
			return l, err
		}
		if l.RoadMark.Weight, err = attr.StringOr(rm, "weight", l.RoadMark.Weight); err != nil {
			return l, err
		}
		if l.RoadMark.Color, err = attr.StringOr(rm, "color", l.RoadMark.Color); err != nil {
			return l, err
		}
		if l.RoadMark.Width, err = attr.FloatOr(rm, "width", l.RoadMark.Width); err != nil {
			return l, err
		}
	}
	if m, ok := n.Child("material"); ok {
		if l.Material.Surface, err = attr.StringOr(m, "surface", l.Material.Surface); err != nil {
			return l, err
		}
		if l.Material.Friction, err = attr.FloatOr(m, "friction", l.Material.Friction); err != nil {
			return l, err
		}
		if l.Material.Roughness, err = attr.FloatOr(m, "roughness", l.Material.Roughness); err != nil {
			return l, err
		}
	}
	if id != 0 && l.Width.IsZero() {
		return l, attr.InvalidError(n, "width", fmt.Errorf("lane %d has zero width", id))
	}
	return l, nil
}

func readObjects(node attr.Node) ([]roadnet.Object, error) {
	group, ok := node.Child("objects")
	if !ok {
		return nil, nil
	}
	var objs []roadnet.Object
	for i, n := range group.Children("object") {
		o := roadnet.Object{ID: i}
		var err error
		if o.Type, err = n.String("type"); err != nil {
			return nil, err
		}
		if o.S, err = n.Float("s"); err != nil {
			return nil, err
		}
		floats := []struct {
			key string
			dst *float64
		}{
			{"t", &o.T}, {"z", &o.Z}, {"hdg", &o.Heading}, {"length", &o.Length},
			{"width", &o.Width}, {"height", &o.Height}, {"len", &o.RepeatLength}, {"distance", &o.Distance},
		}
		for _, f := range floats {
			if *f.dst, err = attr.FloatOr(n, f.key, 0); err != nil {
				return nil, err
			}
		}
		if o.Orientation, err = attr.StringOr(n, "orientation", "none"); err != nil {
			return nil, err
		}
		if o.Repeat, err = attr.BoolOr(n, "repeat", false); err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}
	return objs, nil
}

func readSignals(node attr.Node) ([]roadnet.Signal, error) {
	group, ok := node.Child("signals")
	if !ok {
		return nil, nil
	}
	var sigs []roadnet.Signal
	for _, n := range group.Children("signal") {
		s := roadnet.Signal{Controller: roadnet.None}
		var err error
		if s.Type, err = n.String("type"); err != nil {
			return nil, err
		}
		if s.S, err = n.Float("s"); err != nil {
			return nil, err
		}
		if s.Subtype, err = attr.StringOr(n, "subtype", "-1"); err != nil {
			return nil, err
		}
		floats := []struct {
			key string
			dst *float64
		}{
			{"value", &s.Value}, {"t", &s.T}, {"z", &s.Z}, {"width", &s.Width}, {"height", &s.Height},
		}
		for _, f := range floats {
			if *f.dst, err = attr.FloatOr(n, f.key, 0); err != nil {
				return nil, err
			}
		}
		if s.Orientation, err = attr.StringOr(n, "orientation", "+"); err != nil {
			return nil, err
		}
		if s.Country, err = attr.StringOr(n, "country", "DE"); err != nil {
			return nil, err
		}
		if s.Dynamic, err = attr.BoolOr(n, "dynamic", false); err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}
