package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straight(id int, length float64) *attr.Element {
	return attr.New("road").Set("id", id).Add(
		attr.New("referenceLine").Add(attr.New("line").Set("length", length)),
	)
}

func tjunction(id int) *attr.Element {
	return attr.New("tjunction").Set("id", id).Set("type", "MA").Add(
		attr.New("intersectionPoint").Set("refId", 1).Set("s", 50).Add(
			attr.New("adRoad").Set("id", 2).Set("s", 0).Set("angle", math.Pi/2),
		),
		attr.New("coupler").Add(attr.New("couplerArea").Set("sOffset", 20)),
		straight(1, 100),
		straight(2, 50),
	)
}

func segmentLink(fromSeg, fromRoad int, fromPos string, toSeg, toRoad int) *attr.Element {
	return attr.New("segmentLink").
		Set("fromSegment", fromSeg).Set("fromRoad", fromRoad).Set("fromPos", fromPos).
		Set("toSegment", toSeg).Set("toRoad", toRoad).Set("toPos", "start")
}

func network(segs ...*attr.Element) *attr.Element {
	return attr.New(RootName).Add(attr.New("segments").Add(segs...))
}

// town is a junction whose straight-ahead leg feeds a hill road that is
// continued by a flat road.
func town() *attr.Element {
	hill := attr.New("road").Set("id", 2).Add(
		straight(1, 40),
		attr.New("elevationProfile").Set("startR", 10).Set("endR", 10).Set("endElevation", 2),
	)
	root := network(tjunction(1), hill, attr.New("road").Set("id", 3).Add(straight(1, 30)))
	return root.Add(attr.New("links").Set("refId", 2).Set("reElev", 5).Add(
		segmentLink(1, 1, "end", 2, 1),
		segmentLink(2, 1, "end", 3, 1),
	))
}

func run(t *testing.T, root attr.Node) *Result {
	t.Helper()
	res, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)
	return res
}

func TestRun_StraightRoad(t *testing.T) {
	res := run(t, network(attr.New("road").Set("id", 1).Add(straight(1, 100))))
	net := res.Network

	assert.Equal(t, []int{101}, net.RoadIDs())
	r, _ := net.Road(101)
	assert.Equal(t, 100.0, r.Length)
	require.Len(t, r.Geometries, 1)
	assert.Equal(t, geometry.Line, r.Geometries[0].Kind)
	require.Len(t, r.LaneSections, 1)
	assert.Equal(t, []int{1, 0, -1}, laneIDs(r.LaneSections[0]))
	assert.Empty(t, r.Elevation)

	assert.Equal(t, 101, net.RefRoad)
	assert.Equal(t, 1, net.SegmentCount)
	assert.Len(t, net.Warnings, 1, "missing links declaration")
	assert.Equal(t, []int{101}, res.Report.Visited)
}

func TestRun_TJunction(t *testing.T) {
	root := network(tjunction(1)).Add(attr.New("links").Set("refId", 1))
	net := run(t, root).Network

	assert.Equal(t, []int{101, 102, 103, 151, 152, 153, 154, 155, 156}, net.RoadIDs())
	require.Len(t, net.Junctions, 1)
	assert.Len(t, net.Junctions[0].Connections, 6)
	assert.Empty(t, net.Warnings)

	back, _ := net.Road(101)
	ahead, _ := net.Road(102)
	access, _ := net.Road(103)
	assert.InDelta(t, 30, back.Length, 1e-9)
	assert.InDelta(t, 30, ahead.Length, 1e-9)
	assert.InDelta(t, 30, access.Length, 1e-9)
	for _, r := range []*roadnet.Road{back, ahead, access} {
		assert.Equal(t, roadnet.Link{ElementType: roadnet.ElementJunction, ElementID: 1, ContactPoint: roadnet.Start}, r.Predecessor)
	}
}

func TestRun_LinkedTown(t *testing.T) {
	res := run(t, town())
	net := res.Network

	assert.Equal(t, 201, net.RefRoad)
	assert.Equal(t, 5.0, net.RefElevation)
	assert.Empty(t, net.Warnings)

	hill, _ := net.Road(201)
	ahead, _ := net.Road(102)
	flat, _ := net.Road(301)
	access, _ := net.Road(103)

	t.Run("placement", func(t *testing.T) {
		assert.True(t, hill.StartPose().Near(geometry.Pose{}, 1e-12))
		assert.True(t, ahead.EndPose().Near(hill.StartPose(), 1e-9))
		assert.True(t, flat.StartPose().Near(geometry.Pose{X: 40}, 1e-9))
		assert.True(t, access.EndPose().Near(geometry.Pose{X: -50, Y: 50, Heading: math.Pi / 2}, 1e-9))
	})

	t.Run("elevation", func(t *testing.T) {
		require.Len(t, hill.Elevation, 3)
		assert.Equal(t, 0.0, hill.Elevation[0].S)
		assert.Less(t, hill.Elevation[2].S, 40.0)
		assert.Empty(t, flat.Elevation)
	})

	t.Run("offsets", func(t *testing.T) {
		assert.Equal(t, []int{201, 102, 301}, res.Report.Visited)
		assert.Equal(t, 0.0, hill.ElevationOffset)
		assert.Equal(t, 7.0, ahead.ElevationOffset)
		assert.Equal(t, 7.0, flat.ElevationOffset)
		assert.Equal(t, 0.0, access.ElevationOffset)
		assert.Contains(t, res.Report.Unreached, 103)
	})
}

func TestRun_Idempotent(t *testing.T) {
	first := run(t, town())
	second := run(t, town())
	if diff := cmp.Diff(first.Network, second.Network, cmp.AllowUnexported(roadnet.Network{})); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Report, second.Report)
}

func TestRun_Errors(t *testing.T) {
	badJunction := tjunction(4)
	badJunction.Add(attr.New("road").Set("id", 9))

	tests := []struct {
		name  string
		root  attr.Node
		want  error
		stage string
	}{
		{"wrong root", attr.New("network"), attr.ErrInvalid, ""},
		{"no segments", attr.New(RootName), attr.ErrMissing, ""},
		{"crossroads", network(attr.New("xjunction").Set("id", 1)), roadnet.ErrUnsupported, "segments"},
		{"roundabout", network(attr.New("roundabout").Set("id", 1)), roadnet.ErrUnsupported, "segments"},
		{"road without reference line", network(attr.New("road").Set("id", 1).Add(attr.New("road").Set("id", 1))), roadnet.ErrMissing, "segments"},
		{
			"junction on unknown road",
			network(attr.New("tjunction").Set("id", 1).Set("type", "MA").Add(
				attr.New("intersectionPoint").Set("refId", 7).Set("s", 0).Add(
					attr.New("adRoad").Set("id", 2).Set("s", 0).Set("angle", 1),
				),
				straight(2, 10),
			)),
			roadnet.ErrUnresolved, "junctions",
		},
		{
			"link to unknown segment",
			network(attr.New("road").Set("id", 1).Add(straight(1, 10))).Add(
				attr.New("links").Set("refId", 1).Add(segmentLink(1, 1, "end", 5, 1)),
			),
			roadnet.ErrUnresolved, "linking",
		},
		{
			"level key points",
			network(attr.New("road").Set("id", 1).Add(
				straight(1, 10),
				attr.New("elevationProfile").Add(
					attr.New("elevationPoint").Set("s", 2).Set("height", 1).Set("r", 5),
					attr.New("elevationPoint").Set("s", 8).Set("height", 1).Set("r", 5),
				),
			)),
			roadnet.ErrElevation, "elevation",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Run(context.Background(), tc.root, Options{})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.want)
			if tc.stage != "" {
				assert.Contains(t, err.Error(), tc.stage+":")
			}
		})
	}

	var rerr *roadnet.Error
	_, err := Run(context.Background(), network(attr.New("xjunction").Set("id", 6)), Options{})
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 6, rerr.Segment)
}

func laneIDs(ls roadnet.LaneSection) []int {
	ids := make([]int, len(ls.Lanes))
	for i, l := range ls.Lanes {
		ids[i] = l.ID
	}
	return ids
}
