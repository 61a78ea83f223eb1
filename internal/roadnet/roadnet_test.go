package roadnet

import (
	"errors"
	"math"
	"testing"

	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightRoad(id int, length float64) *Road {
	r := NewRoad(id)
	r.SetGeometry(geometry.Pose{}, []geometry.Primitive{geometry.NewLine(length)})
	r.LaneSections = []LaneSection{{Lanes: []Lane{NewLane(1), NewLane(0), NewLane(-1)}}}
	return r
}

func TestNetwork_AddRoad(t *testing.T) {
	n := New()
	require.NoError(t, n.AddRoad(straightRoad(101, 10)))
	require.NoError(t, n.AddRoad(straightRoad(102, 20)))

	err := n.AddRoad(straightRoad(101, 5))
	assert.ErrorIs(t, err, ErrInvalid)

	r, ok := n.Road(102)
	require.True(t, ok)
	assert.Equal(t, 20.0, r.Length)
	assert.Equal(t, []int{101, 102}, n.RoadIDs())

	_, ok = n.Road(7)
	assert.False(t, ok)
}

func TestNetwork_SegmentRoads(t *testing.T) {
	n := New()
	for _, id := range []int{203, 201, 101} {
		r := straightRoad(id, 10)
		r.InputSegmentID = id / 100
		require.NoError(t, n.AddRoad(r))
	}
	assert.Equal(t, []int{201, 203}, n.SegmentRoads(2))
	assert.Empty(t, n.SegmentRoads(3))
}

func TestNetwork_NextSignalID(t *testing.T) {
	n := New()
	assert.Equal(t, 1, n.NextSignalID())
	assert.Equal(t, 2, n.NextSignalID())
	assert.Equal(t, 2, n.SignalCount)
}

func TestLaneSection_Offsets(t *testing.T) {
	ls := LaneSection{Lanes: []Lane{NewLane(2), NewLane(1), NewLane(0), NewLane(-1)}}
	ls.Offset = geometry.Const(0.5)

	edge, err := ls.EdgeT(2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, edge, 1e-12)

	centre, err := ls.CenterT(-1, 0)
	require.NoError(t, err)
	assert.InDelta(t, -1.25, centre, 1e-12)

	assert.InDelta(t, 10.5, ls.Width(0), 1e-12)
	assert.Equal(t, 2, ls.MaxLaneID())
	assert.Equal(t, -1, ls.MinLaneID())

	_, err = ls.EdgeT(-2, 0)
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestLaneSection_ValidateLanes(t *testing.T) {
	tests := []struct {
		name  string
		lanes []int
		ok    bool
	}{
		{"both sides", []int{2, 1, 0, -1}, true},
		{"right only", []int{0, -1, -2}, true},
		{"gap on the left", []int{2, 0, -1}, false},
		{"duplicate", []int{1, 1, 0}, false},
		{"no reference lane", []int{1, -1}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ls := LaneSection{}
			for _, id := range tc.lanes {
				ls.Lanes = append(ls.Lanes, NewLane(id))
			}
			err := ls.ValidateLanes()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestLaneSection_Mirror(t *testing.T) {
	ls := LaneSection{Lanes: []Lane{NewLane(2), NewLane(1), NewLane(0), NewLane(-1)}}
	ls.Lanes[0].Width = geometry.Poly3{A: 3, B: 0.1}
	ls.Offset = geometry.Const(1)

	m := ls.Mirror(10)
	ids := make([]int, len(m.Lanes))
	for i, l := range m.Lanes {
		ids[i] = l.ID
	}
	assert.Equal(t, []int{1, 0, -1, -2}, ids)
	assert.InDelta(t, -1, m.Offset.Eval(3), 1e-12)

	outer, ok := m.Lane(-2)
	require.True(t, ok)
	// The far end of the original lane is the near end of the mirrored one.
	assert.InDelta(t, 4, outer.Width.Eval(0), 1e-12)
	assert.InDelta(t, 3, outer.Width.Eval(10), 1e-12)
}

func TestRoad_ContactPose(t *testing.T) {
	r := straightRoad(1, 10)
	start := r.ContactPose(Start)
	end := r.ContactPose(End)
	assert.InDelta(t, math.Pi, start.Heading, 1e-12)
	assert.InDelta(t, 10, end.X, 1e-12)
	assert.InDelta(t, 0, end.Heading, 1e-12)
	assert.Equal(t, Start, End.Opposite())
}

func TestRoad_Transform(t *testing.T) {
	r := straightRoad(1, 10)
	m := geometry.MotionBetween(geometry.Pose{}, geometry.Pose{X: 5, Y: 5, Heading: math.Pi / 2})
	r.Transform(m)
	end := r.EndPose()
	assert.InDelta(t, 5, end.X, 1e-9)
	assert.InDelta(t, 15, end.Y, 1e-9)
}

func TestNetwork_Validate(t *testing.T) {
	t.Run("valid network", func(t *testing.T) {
		n := New()
		a := straightRoad(1, 10)
		b := straightRoad(2, 10)
		a.Successor = Link{ElementType: ElementRoad, ElementID: 2, ContactPoint: Start}
		require.NoError(t, n.AddRoad(a))
		require.NoError(t, n.AddRoad(b))
		assert.NoError(t, n.Validate())
	})

	t.Run("dangling link", func(t *testing.T) {
		n := New()
		a := straightRoad(1, 10)
		a.Successor = Link{ElementType: ElementRoad, ElementID: 9, ContactPoint: Start}
		require.NoError(t, n.AddRoad(a))
		err := n.Validate()
		require.ErrorIs(t, err, ErrUnresolved)

		var rerr *Error
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, 1, rerr.Road)
	})

	t.Run("length mismatch", func(t *testing.T) {
		n := New()
		a := straightRoad(1, 10)
		a.Length = 12
		require.NoError(t, n.AddRoad(a))
		assert.ErrorIs(t, n.Validate(), ErrGeometry)
	})

	t.Run("discontinuous geometry", func(t *testing.T) {
		n := New()
		a := straightRoad(1, 10)
		a.SetGeometry(geometry.Pose{}, []geometry.Primitive{geometry.NewLine(5), geometry.NewArc(5, 0.1)})
		a.Geometries[1].Y += 0.5
		require.NoError(t, n.AddRoad(a))
		assert.ErrorIs(t, n.Validate(), ErrGeometry)
	})

	t.Run("lane section beyond the end", func(t *testing.T) {
		n := New()
		a := straightRoad(1, 10)
		a.LaneSections = append(a.LaneSections, LaneSection{ID: 1, S: 10, Lanes: []Lane{NewLane(0), NewLane(-1)}})
		require.NoError(t, n.AddRoad(a))
		assert.ErrorIs(t, n.Validate(), ErrInvalid)
	})

	t.Run("unknown controller signal", func(t *testing.T) {
		n := New()
		require.NoError(t, n.AddRoad(straightRoad(1, 10)))
		n.Controllers = append(n.Controllers, Controller{ID: 1, SignalIDs: []int{4}})
		assert.ErrorIs(t, n.Validate(), ErrUnresolved)
	})
}

func TestError_Message(t *testing.T) {
	err := Errorf(3, "%w: lane 4", ErrUnresolved).WithJunction(3).WithRoad(302)
	assert.Equal(t, "segment 3, junction 3, road 302: unresolvable id reference: lane 4", err.Error())
	assert.ErrorIs(t, err, ErrUnresolved)

	w := Warning{Segment: None, Road: 5, Junction: None, Message: "flat"}
	assert.Equal(t, "road 5: flat", w.String())
}
