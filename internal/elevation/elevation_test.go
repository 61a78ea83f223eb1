package elevation

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kp = roadnet.ElevationKeyPoint

// assertSmooth checks value and slope agreement at every internal boundary.
func assertSmooth(t *testing.T, profile []roadnet.ElevationPolynomial) {
	t.Helper()
	for i := 1; i < len(profile); i++ {
		prev, cur := profile[i-1], profile[i]
		ds := cur.S - prev.S
		assert.InDelta(t, prev.Eval(ds), cur.Eval(0), 1e-9, "value at boundary %d", i)
		assert.InDelta(t, prev.Deriv(ds), cur.Deriv(0), 1e-9, "slope at boundary %d", i)
	}
}

func TestProfile_TwoKeyPoints(t *testing.T) {
	profile, err := Profile([]kp{{S: 0, Height: 0, Radius: 10}, {S: 50, Height: 2, Radius: 10}}, 50)
	require.NoError(t, err)
	require.Len(t, profile, 3)

	assert.Equal(t, 0.0, profile[0].S)
	assert.Greater(t, profile[1].S, 0.0)
	assert.Less(t, profile[2].S, 50.0)
	assert.Less(t, profile[1].S, profile[2].S)
	assertSmooth(t, profile)

	assert.InDelta(t, 0, HeightAt(profile, 0), 1e-12)
	assert.InDelta(t, 2, HeightAt(profile, 50), 1e-9)
	assert.InDelta(t, 0, SlopeAt(profile, 0), 1e-12)
	assert.InDelta(t, 0, SlopeAt(profile, 50), 1e-9)
	assert.InDelta(t, 0.05, profile[0].C, 1e-12)
	assert.InDelta(t, -0.05, profile[2].C, 1e-12)
}

func TestProfile_Descending(t *testing.T) {
	profile, err := Profile([]kp{{S: 10, Height: 4, Radius: 50}, {S: 90, Height: 1, Radius: 80}}, 100)
	require.NoError(t, err)
	require.Len(t, profile, 5)
	assert.Equal(t, geometry.Const(4), profile[0].Poly3)
	assert.Equal(t, geometry.Const(1), profile[4].Poly3)
	assert.Less(t, profile[1].C, 0.0)
	assertSmooth(t, profile)
	assert.InDelta(t, 1, HeightAt(profile, 95), 1e-12)
}

func TestProfile_ManyKeyPoints(t *testing.T) {
	pts := []kp{{S: 0, Height: 0, Radius: 20}, {S: 40, Height: 3, Radius: 20}, {S: 100, Height: -1, Radius: 30}, {S: 130, Height: 2, Radius: 15}}
	profile, err := Profile(pts, 130)
	require.NoError(t, err)
	require.Len(t, profile, 9)
	assertSmooth(t, profile)
	for _, p := range pts {
		assert.InDelta(t, p.Height, HeightAt(profile, p.S), 1e-9)
	}
}

func TestProfile_SinglePoint(t *testing.T) {
	profile, err := Profile([]kp{{S: 20, Height: 3, Radius: 5}}, 40)
	require.NoError(t, err)
	assert.Equal(t, []roadnet.ElevationPolynomial{{S: 0, Poly3: geometry.Const(3)}}, profile)

	profile, err = Profile(nil, 40)
	require.NoError(t, err)
	assert.Empty(t, profile)
}

func TestProfile_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []kp
	}{
		{"equal heights", []kp{{S: 0, Height: 1, Radius: 10}, {S: 50, Height: 1, Radius: 10}}},
		{"zero radius", []kp{{S: 0, Height: 0, Radius: 0}, {S: 50, Height: 2, Radius: 10}}},
		{"negative radius", []kp{{S: 0, Height: 0, Radius: 10}, {S: 50, Height: 2, Radius: -10}}},
		{"height unreachable", []kp{{S: 0, Height: 0, Radius: 1}, {S: 10, Height: 100, Radius: 1}}},
		{"coincident offsets", []kp{{S: 10, Height: 0, Radius: 10}, {S: 10, Height: 2, Radius: 10}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Profile(tc.pts, 50)
			assert.ErrorIs(t, err, roadnet.ErrElevation)
		})
	}
}

func road(id, segment int, length float64, pts ...kp) *roadnet.Road {
	r := roadnet.NewRoad(id)
	r.InputSegmentID = segment
	r.SetGeometry(geometry.Pose{}, []geometry.Primitive{geometry.NewLine(length)})
	r.LaneSections = []roadnet.LaneSection{{Lanes: []roadnet.Lane{roadnet.NewLane(0), roadnet.NewLane(-1)}}}
	r.ElevationKeyPoints = pts
	return r
}

func TestSynthesize(t *testing.T) {
	t.Run("straight road without key points", func(t *testing.T) {
		net := roadnet.New()
		require.NoError(t, net.AddRoad(road(101, 1, 100)))
		require.NoError(t, Synthesize(context.Background(), net))
		assert.Empty(t, net.Roads[0].Elevation)
	})

	t.Run("duplicate offsets warn and are dropped", func(t *testing.T) {
		net := roadnet.New()
		require.NoError(t, net.AddRoad(road(101, 1, 50, kp{S: 0, Height: 0, Radius: 10}, kp{S: 0, Height: 1, Radius: 10}, kp{S: 50, Height: 2, Radius: 10})))
		require.NoError(t, Synthesize(context.Background(), net))
		require.Len(t, net.Warnings, 1)
		assert.Equal(t, 101, net.Warnings[0].Road)
		assert.Equal(t, []kp{{S: 0, Height: 0, Radius: 10}, {S: 50, Height: 2, Radius: 10}}, net.Roads[0].ElevationKeyPoints)
		assert.Len(t, net.Roads[0].Elevation, 3)
	})

	t.Run("key point beyond the road", func(t *testing.T) {
		net := roadnet.New()
		require.NoError(t, net.AddRoad(road(101, 1, 50, kp{S: 0, Height: 0, Radius: 10}, kp{S: 60, Height: 2, Radius: 10})))
		err := Synthesize(context.Background(), net)
		require.ErrorIs(t, err, roadnet.ErrElevation)

		var rerr *roadnet.Error
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, 101, rerr.Road)
		assert.Equal(t, 1, rerr.Segment)
	})

	t.Run("decreasing offsets", func(t *testing.T) {
		net := roadnet.New()
		require.NoError(t, net.AddRoad(road(101, 1, 50, kp{S: 30, Height: 0, Radius: 10}, kp{S: 20, Height: 2, Radius: 10})))
		assert.ErrorIs(t, Synthesize(context.Background(), net), roadnet.ErrElevation)
	})

	t.Run("start point taken from the predecessor in the same segment", func(t *testing.T) {
		net := roadnet.New()
		first := road(101, 1, 50, kp{S: 0, Height: 0, Radius: 10}, kp{S: 50, Height: 2, Radius: 10})
		second := road(102, 1, 60, kp{S: 30, Height: 5, Radius: 10})
		second.Predecessor = roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: 101, ContactPoint: roadnet.End}
		require.NoError(t, net.AddRoad(first))
		require.NoError(t, net.AddRoad(second))
		require.NoError(t, Synthesize(context.Background(), net))

		got, _ := net.Road(102)
		assert.Equal(t, []kp{{S: 0, Height: 2, Radius: 10}, {S: 30, Height: 5, Radius: 10}}, got.ElevationKeyPoints)
		require.Len(t, got.Elevation, 4)
		assertSmooth(t, got.Elevation)
		assert.InDelta(t, 5, HeightAt(got.Elevation, 60), 1e-12)
	})

	t.Run("neighbour in another segment pads flat", func(t *testing.T) {
		net := roadnet.New()
		first := road(101, 1, 50, kp{S: 0, Height: 0, Radius: 10}, kp{S: 50, Height: 2, Radius: 10})
		second := road(201, 2, 60, kp{S: 30, Height: 5, Radius: 10})
		second.Predecessor = roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: 101, ContactPoint: roadnet.End}
		require.NoError(t, net.AddRoad(first))
		require.NoError(t, net.AddRoad(second))
		require.NoError(t, Synthesize(context.Background(), net))

		got, _ := net.Road(201)
		assert.Equal(t, []kp{{S: 30, Height: 5, Radius: 10}}, got.ElevationKeyPoints)
		assert.Equal(t, []roadnet.ElevationPolynomial{{S: 0, Poly3: geometry.Const(5)}}, got.Elevation)
	})
}
