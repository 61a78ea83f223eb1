package junction

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/specialistvlad/roadweaver/internal/segment"
)

// synthesizedConnections applies the right-of-way table to the ordered
// stubs. Pairs whose source has no incoming or whose destination has no
// outgoing lanes are skipped with a warning.
func synthesizedConnections(ctx context.Context, net *roadnet.Network, mode Mode, angle float64, stubs []*roadnet.Road, roles [3]int, id int) ([]roadnet.Connection, []*roadnet.Road, error) {
	logger := ctxlog.FromContext(ctx)
	var conns []roadnet.Connection
	var roads []*roadnet.Road
	for k, rule := range Rules(mode, angle) {
		src, dst := stubs[roles[rule.From]], stubs[roles[rule.To]]
		incoming := src.LaneSections[0].MaxLaneID()
		outgoing := dst.LaneSections[0].MinLaneID()
		if incoming == 0 || outgoing == 0 {
			net.Warn(ctx, roadnet.Warning{Segment: id, Road: src.ID, Junction: id,
				Message: fmt.Sprintf("no lanes to connect from road %d to road %d", src.ID, dst.ID)})
			continue
		}
		from, to := rule.Src.Pick(incoming), rule.Dst.Pick(outgoing)
		r, c, err := connect(src, dst, from, to, rule.Marks, segment.RoadID(id, connectingBase+k+1), id)
		if err != nil {
			return nil, nil, err
		}
		c.ID = len(conns)
		logger.Debug("Connected stubs.", "from_road", src.ID, "from_lane", from, "to_road", dst.ID, "to_lane", to,
			"src", rule.Src, "dst", rule.Dst)
		conns = append(conns, c)
		roads = append(roads, r)
	}
	return conns, roads, nil
}

// declaredConnections replays connection type=single: every laneLink of
// every roadLink becomes one connecting road.
func declaredConnections(net *roadnet.Network, conn attr.Node, stubs []*roadnet.Road, id int) ([]roadnet.Connection, []*roadnet.Road, error) {
	resolve := func(n attr.Node, key string) (*roadnet.Road, error) {
		rid, err := n.Int(key)
		if err != nil {
			return nil, err
		}
		if r, ok := lo.Find(stubs, func(r *roadnet.Road) bool { return r.ID == rid }); ok {
			return r, nil
		}
		if r, ok := net.Road(rid); ok {
			cp := *r
			return &cp, nil
		}
		return nil, fmt.Errorf("%s: %w: road %d", n.Path(), roadnet.ErrUnresolved, rid)
	}

	var conns []roadnet.Connection
	var roads []*roadnet.Road
	for _, link := range conn.Children("roadLink") {
		src, err := resolve(link, "fromId")
		if err != nil {
			return nil, nil, err
		}
		dst, err := resolve(link, "toId")
		if err != nil {
			return nil, nil, err
		}
		for _, ll := range link.Children("laneLink") {
			from, err := ll.Int("fromId")
			if err != nil {
				return nil, nil, err
			}
			to, err := ll.Int("toId")
			if err != nil {
				return nil, nil, err
			}
			var m Marks
			if m.Left, err = attr.StringOr(ll, "left", roadnet.MarkNone); err != nil {
				return nil, nil, err
			}
			if m.Right, err = attr.StringOr(ll, "right", roadnet.MarkNone); err != nil {
				return nil, nil, err
			}
			if m.Middle, err = attr.StringOr(ll, "middle", roadnet.MarkNone); err != nil {
				return nil, nil, err
			}
			r, c, err := connect(src, dst, from, to, m, segment.RoadID(id, connectingBase+len(roads)+1), id)
			if err != nil {
				return nil, nil, err
			}
			c.ID = len(conns)
			conns = append(conns, c)
			roads = append(roads, r)
		}
	}
	return conns, roads, nil
}

// connect builds the connecting road from lane from of src to lane to of dst.
// Both lanes are read at the junction end (s = 0) of their stubs.
func connect(src, dst *roadnet.Road, from, to int, marks Marks, roadID, junction int) (*roadnet.Road, roadnet.Connection, error) {
	srcLS, dstLS := src.LaneSections[0], dst.LaneSections[0]
	srcLane, ok := srcLS.Lane(from)
	if !ok || from == 0 {
		return nil, roadnet.Connection{}, fmt.Errorf("%w: lane %d on road %d", roadnet.ErrUnresolved, from, src.ID)
	}
	if _, ok := dstLS.Lane(to); !ok || to == 0 {
		return nil, roadnet.Connection{}, fmt.Errorf("%w: lane %d on road %d", roadnet.ErrUnresolved, to, dst.ID)
	}
	tFrom, _ := srcLS.CenterT(from, 0)
	tTo, _ := dstLS.CenterT(to, 0)
	start := src.StartPose().Offset(tFrom).Flip()
	end := dst.StartPose().Offset(tTo)
	prims, err := geometry.FillPoses(start, end)
	if err != nil {
		return nil, roadnet.Connection{}, fmt.Errorf("%w: road %d lane %d to road %d lane %d: %w",
			roadnet.ErrGeometry, src.ID, from, dst.ID, to, err)
	}

	r := roadnet.NewRoad(roadID)
	r.InputSegmentID = junction
	r.JunctionID = junction
	r.SetGeometry(start, prims)
	r.Predecessor = roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: src.ID, ContactPoint: roadnet.Start}
	r.Successor = roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: dst.ID, ContactPoint: roadnet.Start}

	half := geometry.Const(srcLane.Width.Eval(0) / 2)
	left, centre, right := roadnet.NewLane(1), roadnet.NewLane(0), roadnet.NewLane(-1)
	left.Width, right.Width = half, half
	left.RoadMark.Type, centre.RoadMark.Type, right.RoadMark.Type = marks.Left, marks.Middle, marks.Right
	for _, l := range []*roadnet.Lane{&left, &right} {
		l.Predecessor, l.Successor = from, to
		l.Material = srcLane.Material
	}
	r.LaneSections = []roadnet.LaneSection{{Lanes: []roadnet.Lane{left, centre, right}}}

	c := roadnet.Connection{
		FromRoad:     src.ID,
		ToRoad:       roadID,
		ContactPoint: roadnet.Start,
		LaneLinks:    []roadnet.LaneLink{{From: from, To: -1}},
	}
	return r, c, nil
}
