package junction

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/specialistvlad/roadweaver/internal/segment"
)

// Road id ranges inside a junction: stubs are 100·id+1..3, connecting roads
// start at 100·id+51.
const (
	stubBase       = 0
	connectingBase = 50
)

// Signal placed at the junction end of every stub when signals are requested.
const (
	signalType   = "1.000.001"
	signalOffset = 1.0
)

// Synthesize builds the stubs, connecting roads and the junction declared by
// node and appends them to net.
func Synthesize(ctx context.Context, net *roadnet.Network, node attr.Node) error {
	id, err := node.Int("id")
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx).With("junction", id)
	fail := func(err error) error {
		return roadnet.Errorf(id, "%w", err).WithJunction(id)
	}

	d, err := readDeclaration(node)
	if err != nil {
		return fail(err)
	}
	logger.Debug("Read junction declaration.", "mode", d.mode, "legs", len(d.legs))

	if raiseOffsets(d.legs) {
		net.Warn(ctx, roadnet.Warning{Segment: id, Road: roadnet.None, Junction: id,
			Message: "junction offset raised to the safety floor"})
	}

	main := d.legs[0]
	meet := geometry.PoseAlong(geometry.Pose{}, main.decl.Line, main.s)

	stubs := make([]*roadnet.Road, 0, 3)
	for k, plan := range plans(d, meet) {
		l := d.legs[plan.leg]
		r, err := segment.Place(l.decl, plan.placement, segment.RoadID(id, stubBase+k+1))
		if err != nil {
			return fail(err)
		}
		r.InputSegmentID = id
		r.InputPos = plan.pos
		r.JunctionID = id
		r.Predecessor = roadnet.Link{ElementType: roadnet.ElementJunction, ElementID: id, ContactPoint: roadnet.Start}
		stubs = append(stubs, r)
	}

	roles, err := canonicalOrder(stubs)
	if err != nil {
		return fail(err)
	}

	var ctrl *roadnet.Controller
	if d.signals {
		ctrl = &roadnet.Controller{ID: id}
		for _, r := range stubs {
			addSignal(r, id)
		}
	}
	for _, r := range stubs {
		if err := segment.Register(net, r); err != nil {
			return fail(err)
		}
		if ctrl != nil {
			for _, s := range r.Signals {
				if s.Controller == id {
					ctrl.SignalIDs = append(ctrl.SignalIDs, s.ID)
				}
			}
		}
	}
	if ctrl != nil {
		net.Controllers = append(net.Controllers, *ctrl)
	}

	j := roadnet.Junction{ID: id}
	var connecting []*roadnet.Road
	if d.connection != nil && isSingle(d.connection) {
		j.Connections, connecting, err = declaredConnections(net, d.connection, stubs, id)
	} else {
		j.Connections, connecting, err = synthesizedConnections(ctx, net, d.mode, d.legs[1].angle, stubs, roles, id)
	}
	if err != nil {
		return fail(err)
	}
	for _, r := range connecting {
		if err := net.AddRoad(r); err != nil {
			return fail(err)
		}
	}
	if err := net.AddJunction(j); err != nil {
		return fail(err)
	}
	net.SegmentCount++
	logger.Info("Synthesized junction.", "mode", d.mode, "connections", len(j.Connections))
	return nil
}

func isSingle(n attr.Node) bool {
	typ, err := attr.StringOr(n, "type", "")
	return err == nil && typ == "single"
}

// canonicalOrder returns stub indices with the first stub anchored and the
// other two sorted by counter-clockwise angle from it.
func canonicalOrder(stubs []*roadnet.Road) ([3]int, error) {
	h := [3]float64{}
	for i, r := range stubs {
		h[i] = r.StartPose().Heading
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if math.Abs(geometry.NormalizeAngle(h[i]-h[j])) < roadnet.Tolerance {
				return [3]int{}, fmt.Errorf("%w: stubs %d and %d leave the junction in the same direction",
					roadnet.ErrGeometry, stubs[i].ID, stubs[j].ID)
			}
		}
	}
	if geometry.CCW(h[1]-h[0]) > geometry.CCW(h[2]-h[0]) {
		return [3]int{0, 2, 1}, nil
	}
	return [3]int{0, 1, 2}, nil
}

func addSignal(r *roadnet.Road, controller int) {
	ls := r.LaneSections[0]
	t, _ := ls.EdgeT(ls.MaxLaneID(), 0)
	r.Signals = append(r.Signals, roadnet.Signal{
		Type:        signalType,
		Subtype:     "-1",
		S:           math.Min(signalOffset, r.Length),
		T:           t,
		Orientation: "-",
		Dynamic:     true,
		Country:     "DE",
		Controller:  controller,
	})
}
