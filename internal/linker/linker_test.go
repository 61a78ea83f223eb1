package linker

import (
	"context"
	"math"
	"testing"

	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/junction"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
	"github.com/specialistvlad/roadweaver/internal/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straight(id int, length float64) *attr.Element {
	return attr.New("road").Set("id", id).Add(
		attr.New("referenceLine").Add(attr.New("line").Set("length", length)),
	)
}

func roadSegment(id int, length float64) *attr.Element {
	return attr.New("road").Set("id", id).Add(straight(1, length))
}

func linkDecl(fromSeg, fromRoad int, fromPos string, toSeg, toRoad int, toPos string) *attr.Element {
	return attr.New("segmentLink").
		Set("fromSegment", fromSeg).Set("fromRoad", fromRoad).Set("fromPos", fromPos).
		Set("toSegment", toSeg).Set("toRoad", toRoad).Set("toPos", toPos)
}

func buildRoads(t *testing.T, segs ...*attr.Element) *roadnet.Network {
	t.Helper()
	net := roadnet.New()
	for _, s := range segs {
		require.NoError(t, segment.BuildRoads(context.Background(), net, s))
	}
	return net
}

func TestConnect_LinksAndPlacesSegments(t *testing.T) {
	tests := []struct {
		name  string
		toPos string
		want  geometry.Pose
		check func(r *roadnet.Road) geometry.Pose
	}{
		{"forward", "start", geometry.Pose{X: 50}, (*roadnet.Road).StartPose},
		{"head to head", "end", geometry.Pose{X: 50, Heading: math.Pi}, (*roadnet.Road).EndPose},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			net := buildRoads(t, roadSegment(1, 50), roadSegment(2, 30))
			root := attr.New("roadNetwork").Add(
				attr.New("links").Set("refId", 1).Add(linkDecl(1, 1, "end", 2, 1, tc.toPos)),
			)
			require.NoError(t, Connect(context.Background(), net, root, Options{ReferenceElevation: 3}))

			a, _ := net.Road(101)
			b, _ := net.Road(201)
			assert.Equal(t, roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: 201, ContactPoint: roadnet.ContactPoint(tc.toPos)}, a.Successor)
			assert.Equal(t, roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: 101, ContactPoint: roadnet.End}, b.Link(roadnet.ContactPoint(tc.toPos)))
			assert.True(t, a.IsLinkedToNetwork)
			assert.True(t, b.IsLinkedToNetwork)
			assert.True(t, tc.check(b).Near(tc.want, 1e-9))
			assert.True(t, a.StartPose().Near(geometry.Pose{}, 1e-12))
			assert.Equal(t, 101, net.RefRoad)
			assert.Equal(t, 3.0, net.RefElevation)
			assert.Empty(t, net.Warnings)
		})
	}
}

func TestConnect_JunctionStubs(t *testing.T) {
	tj := attr.New("tjunction").Set("id", 3).Set("type", "MA").Add(
		attr.New("intersectionPoint").Set("refId", 1).Set("s", 50).Add(
			attr.New("adRoad").Set("id", 2).Set("s", 0).Set("angle", math.Pi/2),
		),
		straight(1, 100),
		straight(2, 50),
	)
	net := buildRoads(t, roadSegment(1, 20), roadSegment(2, 20))
	require.NoError(t, junction.Synthesize(context.Background(), net, tj))

	root := attr.New("roadNetwork").Add(attr.New("links").Set("refId", 3).Add(
		linkDecl(3, 1, "start", 1, 1, "start"),
		linkDecl(3, 2, "end", 2, 1, "start"),
	))
	require.NoError(t, Connect(context.Background(), net, root, Options{}))

	back, _ := net.Road(301)
	access, _ := net.Road(303)
	assert.Equal(t, 101, back.Successor.ElementID)
	assert.Equal(t, roadnet.ElementJunction, back.Predecessor.ElementType)
	assert.Equal(t, 201, access.Successor.ElementID)
	assert.Equal(t, 301, net.RefRoad)

	r1, _ := net.Road(101)
	assert.True(t, r1.StartPose().Near(back.EndPose(), 1e-9))
	r2, _ := net.Road(201)
	assert.True(t, r2.StartPose().Near(access.EndPose(), 1e-9))
	assert.True(t, r2.StartPose().Near(geometry.Pose{X: 50, Y: 50, Heading: math.Pi / 2}, 1e-9))
}

func TestConnect_Declarations(t *testing.T) {
	t.Run("no links", func(t *testing.T) {
		net := buildRoads(t, roadSegment(4, 10), roadSegment(2, 10))
		require.NoError(t, Connect(context.Background(), net, attr.New("roadNetwork"), Options{ReferenceElevation: 1}))
		assert.Equal(t, 401, net.RefRoad)
		assert.Equal(t, 1.0, net.RefElevation)
		assert.Len(t, net.Warnings, 1)
	})

	t.Run("unlinked segment warns", func(t *testing.T) {
		net := buildRoads(t, roadSegment(1, 10), roadSegment(2, 10))
		root := attr.New("roadNetwork").Add(attr.New("links").Set("refId", 1).Set("reElev", 7))
		require.NoError(t, Connect(context.Background(), net, root, Options{ReferenceElevation: 1}))
		assert.Equal(t, 7.0, net.RefElevation)
		require.Len(t, net.Warnings, 1)
		assert.Equal(t, 2, net.Warnings[0].Segment)
	})

	t.Run("explicit reference road", func(t *testing.T) {
		net := buildRoads(t, roadSegment(1, 10))
		root := attr.New("roadNetwork").Add(attr.New("links").Set("refId", 1).Set("refRoad", 1))
		require.NoError(t, Connect(context.Background(), net, root, Options{}))
		assert.Equal(t, 101, net.RefRoad)

		root = attr.New("roadNetwork").Add(attr.New("links").Set("refId", 1).Set("refRoad", 5))
		assert.ErrorIs(t, Connect(context.Background(), net, root, Options{}), roadnet.ErrUnresolved)
	})

	t.Run("unknown road", func(t *testing.T) {
		net := buildRoads(t, roadSegment(1, 10))
		root := attr.New("roadNetwork").Add(attr.New("links").Set("refId", 1).Add(linkDecl(1, 1, "end", 9, 1, "start")))
		assert.ErrorIs(t, Connect(context.Background(), net, root, Options{}), roadnet.ErrUnresolved)
	})

	t.Run("bad contact point", func(t *testing.T) {
		net := buildRoads(t, roadSegment(1, 10), roadSegment(2, 10))
		root := attr.New("roadNetwork").Add(attr.New("links").Set("refId", 1).Add(linkDecl(1, 1, "middle", 2, 1, "start")))
		assert.ErrorIs(t, Connect(context.Background(), net, root, Options{}), attr.ErrInvalid)
	})
}

func chain(t *testing.T, ids []int, heights []float64, linked bool) *roadnet.Network {
	t.Helper()
	net := roadnet.New()
	for i, id := range ids {
		r := roadnet.NewRoad(id)
		r.SetGeometry(geometry.Pose{}, []geometry.Primitive{geometry.NewLine(10)})
		r.ElevationKeyPoints = []roadnet.ElevationKeyPoint{{S: 0, Height: 0, Radius: 10}, {S: 10, Height: heights[i], Radius: 10}}
		r.IsLinkedToNetwork = linked
		require.NoError(t, net.AddRoad(r))
	}
	return net
}

func link(net *roadnet.Network, from, to int) {
	a, _ := net.Road(from)
	a.Successor = roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: to, ContactPoint: roadnet.Start}
	b, _ := net.Road(to)
	b.Predecessor = roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: from, ContactPoint: roadnet.End}
}

func TestPropagate_Chain(t *testing.T) {
	net := chain(t, []int{1, 2, 3, 4}, []float64{2, 5, 1, 9}, true)
	link(net, 1, 2)
	link(net, 2, 3)
	net.RefRoad = 1
	net.RefElevation = 10
	last, _ := net.Road(4)
	last.IsLinkedToNetwork = false
	link(net, 3, 4)

	rep, err := Propagate(context.Background(), net)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, rep.Visited)
	assert.Equal(t, []int{4}, rep.Unreached)
	assert.False(t, rep.Cyclic)

	offsets := make([]float64, 0, 4)
	for _, id := range []int{1, 2, 3, 4} {
		r, _ := net.Road(id)
		offsets = append(offsets, r.ElevationOffset)
	}
	assert.Equal(t, []float64{0, 12, 15, 0}, offsets)
}

func TestPropagate_TerminatesOnCycles(t *testing.T) {
	net := chain(t, []int{1, 2, 3}, []float64{1, 1, 1}, true)
	link(net, 1, 2)
	link(net, 2, 3)
	link(net, 3, 1)
	net.RefRoad = 2

	rep, err := Propagate(context.Background(), net)
	require.NoError(t, err)
	assert.True(t, rep.Cyclic)
	assert.ElementsMatch(t, []int{1, 2, 3}, rep.Visited)
	assert.Equal(t, 2, rep.Visited[0])
	assert.Empty(t, rep.Unreached)

	ref, _ := net.Road(2)
	assert.Equal(t, 0.0, ref.ElevationOffset)
}

func TestPropagate_TwoRoadLoop(t *testing.T) {
	net := chain(t, []int{1, 2}, []float64{3, 6}, true)
	link(net, 1, 2)
	link(net, 2, 1)
	net.RefRoad = 1

	rep, err := Propagate(context.Background(), net)
	require.NoError(t, err)
	assert.True(t, rep.Cyclic)
	assert.Equal(t, []int{1, 2}, rep.Visited)

	second, _ := net.Road(2)
	assert.Equal(t, 3.0, second.ElevationOffset)
}

func TestPropagate_StartExitUsesFinalKeyPoint(t *testing.T) {
	net := chain(t, []int{1, 2}, []float64{4, 4}, true)
	first, _ := net.Road(1)
	first.ElevationKeyPoints[0].Height = -3
	first.Predecessor = roadnet.Link{ElementType: roadnet.ElementRoad, ElementID: 2, ContactPoint: roadnet.End}
	net.RefRoad = 1

	_, err := Propagate(context.Background(), net)
	require.NoError(t, err)
	second, _ := net.Road(2)
	assert.Equal(t, 4.0, second.ElevationOffset, "offset follows the last key point, not the exit end")
}

func TestPropagate_MissingReference(t *testing.T) {
	net := chain(t, []int{1}, []float64{0}, true)
	net.RefRoad = 7
	_, err := Propagate(context.Background(), net)
	assert.ErrorIs(t, err, roadnet.ErrUnresolved)

	rep, err := Propagate(context.Background(), roadnet.New())
	require.NoError(t, err)
	assert.Empty(t, rep.Visited)
}
