package roadnet

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/roadweaver/internal/ctxlog"
)

// LaneLink maps a lane of the incoming road onto a lane of the connecting road.
type LaneLink struct {
	From int
	To   int
}

// Connection is a directed lane map through a junction.
type Connection struct {
	ID           int
	FromRoad     int
	ToRoad       int
	ContactPoint ContactPoint
	LaneLinks    []LaneLink
}

// Junction owns the connections between its legs.
type Junction struct {
	ID          int
	Connections []Connection
}

// Controller groups signals that switch together.
type Controller struct {
	ID        int
	SignalIDs []int
}

// Network is the complete generated model. It is the single owner of every
// road, junction and controller of a run.
type Network struct {
	Roads       []Road
	Junctions   []Junction
	Controllers []Controller

	SignalCount  int
	SegmentCount int

	// RefRoad is the road the elevation chain starts from, None until set.
	RefRoad      int
	RefElevation float64

	Warnings []Warning

	roadIndex     map[int]int
	junctionIndex map[int]int
}

// New returns an empty network.
func New() *Network {
	return &Network{
		RefRoad:       None,
		roadIndex:     make(map[int]int),
		junctionIndex: make(map[int]int),
	}
}

// AddRoad appends a copy of r. Ids must be unique across the network.
func (n *Network) AddRoad(r *Road) error {
	if _, exists := n.roadIndex[r.ID]; exists {
		return fmt.Errorf("%w: duplicate road id %d", ErrInvalid, r.ID)
	}
	n.roadIndex[r.ID] = len(n.Roads)
	n.Roads = append(n.Roads, *r)
	return nil
}

// Road resolves an id. The pointer is invalidated by the next AddRoad.
func (n *Network) Road(id int) (*Road, bool) {
	idx, ok := n.roadIndex[id]
	if !ok {
		return nil, false
	}
	return &n.Roads[idx], true
}

// HasRoad reports whether a road with the id exists.
func (n *Network) HasRoad(id int) bool {
	_, ok := n.roadIndex[id]
	return ok
}

// RoadIDs returns every road id in insertion order.
func (n *Network) RoadIDs() []int {
	ids := make([]int, len(n.Roads))
	for i := range n.Roads {
		ids[i] = n.Roads[i].ID
	}
	return ids
}

// SegmentRoads returns the ids of roads generated from one segment, sorted.
func (n *Network) SegmentRoads(segment int) []int {
	var ids []int
	for i := range n.Roads {
		if n.Roads[i].InputSegmentID == segment {
			ids = append(ids, n.Roads[i].ID)
		}
	}
	sort.Ints(ids)
	return ids
}

// AddJunction appends a junction with a unique id.
func (n *Network) AddJunction(j Junction) error {
	if _, exists := n.junctionIndex[j.ID]; exists {
		return fmt.Errorf("%w: duplicate junction id %d", ErrInvalid, j.ID)
	}
	n.junctionIndex[j.ID] = len(n.Junctions)
	n.Junctions = append(n.Junctions, j)
	return nil
}

// Junction resolves a junction id.
func (n *Network) Junction(id int) (*Junction, bool) {
	idx, ok := n.junctionIndex[id]
	if !ok {
		return nil, false
	}
	return &n.Junctions[idx], true
}

// NextSignalID hands out network-unique signal ids.
func (n *Network) NextSignalID() int {
	n.SignalCount++
	return n.SignalCount
}

// Warn records an advisory finding and logs it.
func (n *Network) Warn(ctx context.Context, w Warning) {
	n.Warnings = append(n.Warnings, w)
	ctxlog.FromContext(ctx).Warn(w.Message, "segment", w.Segment, "junction", w.Junction, "road", w.Road)
}
