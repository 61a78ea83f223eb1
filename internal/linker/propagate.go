package linker

import (
	"context"
	"sort"

	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/specialistvlad/roadweaver/internal/linkgraph"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// Report summarizes an elevation propagation.
type Report struct {
	// Visited lists road ids in visiting order, starting with the
	// reference road.
	Visited []int
	// Unreached lists the remaining road ids in ascending order. They keep
	// an elevation offset of 0.
	Unreached []int
	// Cyclic is set when the road link graph contains a loop.
	Cyclic bool
}

// Propagate walks road-typed links breadth-first from the reference road.
// Every newly reached road that is linked to the network gets the final
// key-point height of the road it was reached from plus the reference
// elevation as its offset, whichever end the link leaves through. Each road is visited at most once.
func Propagate(ctx context.Context, net *roadnet.Network) (Report, error) {
	logger := ctxlog.FromContext(ctx)
	var rep Report
	if len(net.Roads) == 0 {
		return rep, nil
	}
	if !net.HasRoad(net.RefRoad) {
		return rep, roadnet.Errorf(roadnet.None, "%w: reference road %d", roadnet.ErrUnresolved, net.RefRoad).WithRoad(net.RefRoad)
	}

	g := linkgraph.FromNetwork(net)
	if err := g.DetectCycles(); err != nil {
		rep.Cyclic = true
		logger.Debug("Road link graph is cyclic.", "error", err)
	}

	visited := map[int]bool{net.RefRoad: true}
	queue := []int{net.RefRoad}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		rep.Visited = append(rep.Visited, cur)

		edges, err := g.Neighbours(cur)
		if err != nil {
			return rep, err
		}
		curRoad, _ := net.Road(cur)
		for _, e := range edges {
			next, ok := net.Road(e.To)
			if !ok || visited[e.To] || !next.IsLinkedToNetwork {
				continue
			}
			next.ElevationOffset = finalHeight(curRoad) + net.RefElevation
			visited[e.To] = true
			queue = append(queue, e.To)
			logger.Debug("Propagated elevation offset.", "from", cur, "to", e.To, "offset", next.ElevationOffset)
		}
	}

	for _, id := range net.RoadIDs() {
		if !visited[id] {
			rep.Unreached = append(rep.Unreached, id)
		}
	}
	sort.Ints(rep.Unreached)
	logger.Info("Propagated elevation.", "reference_road", net.RefRoad, "visited", len(rep.Visited),
		"unreached", len(rep.Unreached), "cyclic", rep.Cyclic)
	return rep, nil
}

// finalHeight is the height of a road's last elevation key point.
func finalHeight(r *roadnet.Road) float64 {
	pts := r.ElevationKeyPoints
	if len(pts) == 0 {
		return 0
	}
	return pts[len(pts)-1].Height
}
