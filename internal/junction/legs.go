package junction

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/specialistvlad/roadweaver/internal/segment"
)

// SafetyFactor scales the largest half-width of the other legs into the
// minimum offset of a leg.
const SafetyFactor = 4

// leg is a declared road taking part in the junction.
type leg struct {
	decl   *segment.Declaration
	s      float64
	angle  float64
	offset float64
}

// declaration is a parsed junction node.
type declaration struct {
	id         int
	mode       Mode
	legs       []leg
	connection attr.Node
	signals    bool
}

func readDeclaration(node attr.Node) (*declaration, error) {
	id, err := node.Int("id")
	if err != nil {
		return nil, err
	}
	d := &declaration{id: id}
	typ, err := node.String("type")
	if err != nil {
		return nil, err
	}
	if d.mode, err = ParseMode(typ); err != nil {
		return nil, err
	}
	if d.signals, err = attr.BoolOr(node, "signals", false); err != nil {
		return nil, err
	}

	ip, err := attr.RequireChild(node, "intersectionPoint")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", roadnet.ErrMissing, err)
	}
	refID, err := ip.Int("refId")
	if err != nil {
		return nil, err
	}
	sMain, err := ip.Float("s")
	if err != nil {
		return nil, err
	}
	main, err := findRoad(node, refID)
	if err != nil {
		return nil, err
	}
	d.legs = append(d.legs, leg{decl: main, s: sMain})

	want := 1
	if d.mode == ThreeLeg {
		want = 2
	}
	adRoads := ip.Children("adRoad")
	if len(adRoads) < want {
		return nil, fmt.Errorf("%s: %w: %s junction needs %d adRoad, found %d", ip.Path(), roadnet.ErrMissing, d.mode, want, len(adRoads))
	}
	for _, ad := range adRoads[:want] {
		l, err := readAccess(node, ad)
		if err != nil {
			return nil, err
		}
		d.legs = append(d.legs, l)
	}

	if err := readOffsets(node, d.legs); err != nil {
		return nil, err
	}
	if coupler, ok := node.Child("coupler"); ok {
		d.connection, _ = coupler.Child("connection")
	}
	return d, nil
}

func readAccess(junction, ad attr.Node) (leg, error) {
	id, err := ad.Int("id")
	if err != nil {
		return leg{}, err
	}
	l := leg{}
	if l.s, err = ad.Float("s"); err != nil {
		return l, err
	}
	angle, err := ad.Float("angle")
	if err != nil {
		return l, err
	}
	l.angle = geometry.NormalizeAngle(angle)
	l.decl, err = findRoad(junction, id)
	return l, err
}

// findRoad declares the road child with the given id.
func findRoad(junction attr.Node, id int) (*segment.Declaration, error) {
	node, ok := lo.Find(junction.Children("road"), func(n attr.Node) bool {
		rid, err := n.Int("id")
		return err == nil && rid == id
	})
	if !ok {
		return nil, fmt.Errorf("%s: %w: leg road %d is not declared", junction.Path(), roadnet.ErrUnresolved, id)
	}
	return segment.Declare(node)
}

// readOffsets applies the couplerArea offsets: a default sOffset on the area
// itself, overridden per road by children carrying id and sOffset.
func readOffsets(junction attr.Node, legs []leg) error {
	coupler, ok := junction.Child("coupler")
	if !ok {
		return nil
	}
	area, ok := coupler.Child("couplerArea")
	if !ok {
		return nil
	}
	def, err := attr.FloatOr(area, "sOffset", 0)
	if err != nil {
		return err
	}
	for i := range legs {
		legs[i].offset = def
	}
	for _, n := range area.Children("") {
		id, err := n.Int("id")
		if err != nil {
			return err
		}
		off, err := n.Float("sOffset")
		if err != nil {
			return err
		}
		for i := range legs {
			if legs[i].decl.ID == id {
				legs[i].offset = off
			}
		}
	}
	return nil
}

// safetyFloors returns the minimum offset of every leg. A TwoLeg junction has
// no second access road, which counts as zero width.
func safetyFloors(legs []leg) []float64 {
	halves := []float64{0, 0, 0}
	for i, l := range legs {
		halves[i] = l.decl.Width() / 2
	}
	floors := make([]float64, len(legs))
	for i := range legs {
		others := lo.Filter(halves, func(_ float64, j int) bool { return j != i })
		floors[i] = SafetyFactor * lo.Max(others)
	}
	return floors
}

// raiseOffsets lifts offsets below their floor and reports whether any moved.
func raiseOffsets(legs []leg) bool {
	changed := false
	for i, floor := range safetyFloors(legs) {
		if legs[i].offset < floor {
			legs[i].offset = floor
			changed = true
		}
	}
	return changed
}

// stubPlan describes how one stub is cut from a leg.
type stubPlan struct {
	leg       int
	placement segment.Placement
	pos       roadnet.ContactPoint
}

// plans lays out the three stubs. meet is the pose of the main road at the
// meeting point.
func plans(d *declaration, meet geometry.Pose) []stubPlan {
	main := d.legs[0]
	tie := func(l leg) segment.Placement {
		return segment.Placement{
			From: l.s + l.offset,
			To:   math.Inf(1),
			TieS: l.s,
			Tie:  geometry.Pose{X: meet.X, Y: meet.Y, Heading: meet.Heading + l.angle},
		}
	}
	if d.mode == TwoLeg {
		back := segment.Placement{From: main.s - main.offset, To: 0, TieS: main.s, Tie: meet}
		return []stubPlan{
			{leg: 0, placement: back, pos: roadnet.Start},
			{leg: 0, placement: tie(main), pos: roadnet.End},
			{leg: 1, placement: tie(d.legs[1]), pos: roadnet.End},
		}
	}
	return []stubPlan{
		{leg: 0, placement: tie(main), pos: roadnet.End},
		{leg: 1, placement: tie(d.legs[1]), pos: roadnet.End},
		{leg: 2, placement: tie(d.legs[2]), pos: roadnet.End},
	}
}
