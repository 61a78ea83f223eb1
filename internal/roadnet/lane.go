package roadnet

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/roadweaver/internal/geometry"
)

// Roadmark styles used by the junction right-of-way table.
const (
	MarkSolid  = "solid"
	MarkBroken = "broken"
	MarkNone   = "none"
)

// RoadMark describes the marking on the outer edge of a lane.
type RoadMark struct {
	Type   string
	Weight string
	Color  string
	Width  float64
}

// DefaultRoadMark is a standard white solid line.
func DefaultRoadMark() RoadMark {
	return RoadMark{Type: MarkSolid, Weight: "standard", Color: "white", Width: 0.15}
}

// Material describes the lane surface.
type Material struct {
	Surface   string
	Friction  float64
	Roughness float64
}

// DefaultMaterial is dry asphalt.
func DefaultMaterial() Material {
	return Material{Surface: "asphalt", Friction: 0.8, Roughness: 0.015}
}

// Lane is one lane of a lane section. Id 0 is the reference lane, negative
// ids lie right of the reference line and positive ids left of it.
type Lane struct {
	ID          int
	Type        string
	Level       bool
	Speed       float64
	Width       geometry.Poly3
	RoadMark    RoadMark
	Material    Material
	Predecessor int
	Successor   int
}

// NewLane returns a driving lane with the default width and markings.
func NewLane(id int) Lane {
	l := Lane{ID: id, Type: "driving", Width: geometry.Const(3.5), RoadMark: DefaultRoadMark(), Material: DefaultMaterial()}
	if id == 0 {
		l.Type = "none"
		l.Width = geometry.Poly3{}
	}
	return l
}

// LaneSection is a longitudinal range with a fixed lane layout.
type LaneSection struct {
	ID     int
	S      float64
	Lanes  []Lane
	Offset geometry.Poly3
}

// Sort orders lanes from the leftmost to the rightmost id.
func (ls *LaneSection) Sort() {
	sort.Slice(ls.Lanes, func(i, j int) bool { return ls.Lanes[i].ID > ls.Lanes[j].ID })
}

// Lane returns the lane with the given id.
func (ls *LaneSection) Lane(id int) (*Lane, bool) {
	for i := range ls.Lanes {
		if ls.Lanes[i].ID == id {
			return &ls.Lanes[i], true
		}
	}
	return nil, false
}

// MaxLaneID returns the outermost left lane id, 0 if there is none.
func (ls *LaneSection) MaxLaneID() int {
	maxID := 0
	for _, l := range ls.Lanes {
		if l.ID > maxID {
			maxID = l.ID
		}
	}
	return maxID
}

// MinLaneID returns the outermost right lane id, 0 if there is none.
func (ls *LaneSection) MinLaneID() int {
	minID := 0
	for _, l := range ls.Lanes {
		if l.ID < minID {
			minID = l.ID
		}
	}
	return minID
}

// EdgeT returns the lateral position of the outer edge of lane id at ds
// into the section. The edge of lane 0 is the lane offset itself.
func (ls *LaneSection) EdgeT(id int, ds float64) (float64, error) {
	t := ls.Offset.Eval(ds)
	if id == 0 {
		return t, nil
	}
	sign, n := 1, id
	if id < 0 {
		sign, n = -1, -id
	}
	for k := 1; k <= n; k++ {
		l, ok := ls.Lane(sign * k)
		if !ok {
			return 0, fmt.Errorf("%w: lane %d", ErrUnresolved, sign*k)
		}
		t += float64(sign) * l.Width.Eval(ds)
	}
	return t, nil
}

// CenterT returns the lateral position of the centre of lane id.
func (ls *LaneSection) CenterT(id int, ds float64) (float64, error) {
	outer, err := ls.EdgeT(id, ds)
	if err != nil || id == 0 {
		return outer, err
	}
	l, _ := ls.Lane(id)
	if id > 0 {
		return outer - l.Width.Eval(ds)/2, nil
	}
	return outer + l.Width.Eval(ds)/2, nil
}

// Width returns the distance between the outer left and outer right edges.
func (ls *LaneSection) Width(ds float64) float64 {
	left, _ := ls.EdgeT(ls.MaxLaneID(), ds)
	right, _ := ls.EdgeT(ls.MinLaneID(), ds)
	return left - right
}

// ValidateLanes checks that ids are unique and contiguous on both sides.
func (ls *LaneSection) ValidateLanes() error {
	seen := make(map[int]bool, len(ls.Lanes))
	for _, l := range ls.Lanes {
		if seen[l.ID] {
			return fmt.Errorf("%w: duplicate lane id %d in lane section %d", ErrInvalid, l.ID, ls.ID)
		}
		seen[l.ID] = true
	}
	if !seen[0] {
		return fmt.Errorf("%w: lane section %d has no reference lane", ErrInvalid, ls.ID)
	}
	for id := 1; id <= ls.MaxLaneID(); id++ {
		if !seen[id] {
			return fmt.Errorf("%w: left lane ids of lane section %d skip %d", ErrInvalid, ls.ID, id)
		}
	}
	for id := -1; id >= ls.MinLaneID(); id-- {
		if !seen[id] {
			return fmt.Errorf("%w: right lane ids of lane section %d skip %d", ErrInvalid, ls.ID, id)
		}
	}
	return nil
}

// Mirror returns the section as seen when traversing the road backwards over
// a domain of length l: sides swap, ids are negated and every polynomial is
// re-expanded for the reversed direction.
func (ls LaneSection) Mirror(l float64) LaneSection {
	out := LaneSection{ID: ls.ID, Offset: ls.Offset.Mirror(l)}
	out.Offset.A, out.Offset.B, out.Offset.C, out.Offset.D = -out.Offset.A, -out.Offset.B, -out.Offset.C, -out.Offset.D
	for _, lane := range ls.Lanes {
		m := lane
		m.ID = -lane.ID
		m.Width = lane.Width.Mirror(l)
		m.Predecessor, m.Successor = -lane.Successor, -lane.Predecessor
		out.Lanes = append(out.Lanes, m)
	}
	out.Sort()
	return out
}

// Shift returns the section with all polynomials re-expanded to start ds later.
func (ls LaneSection) Shift(ds float64) LaneSection {
	out := ls
	out.Offset = ls.Offset.Shift(ds)
	out.Lanes = make([]Lane, len(ls.Lanes))
	for i, lane := range ls.Lanes {
		lane.Width = lane.Width.Shift(ds)
		out.Lanes[i] = lane
	}
	return out
}
