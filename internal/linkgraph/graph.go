package linkgraph

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// Edge is a link from one road end to another road.
type Edge struct {
	To    int
	Exit  roadnet.ContactPoint
	Entry roadnet.ContactPoint
}

// Graph is a directed multigraph of roads.
type Graph struct {
	nodes map[int]*node
}

// node is a single road. It is un-exported so callers work with ids only.
type node struct {
	id    int
	edges []Edge
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[int]*node)}
}

// FromNetwork adds every road and one edge per road-typed link. Links to
// junctions are not edges.
func FromNetwork(net *roadnet.Network) *Graph {
	g := New()
	for _, id := range net.RoadIDs() {
		g.AddNode(id)
	}
	for i := range net.Roads {
		r := &net.Roads[i]
		for _, exit := range []roadnet.ContactPoint{roadnet.Start, roadnet.End} {
			l := r.Link(exit)
			if !l.Valid() || l.ElementType != roadnet.ElementRoad {
				continue
			}
			// Dangling links are reported by Network.Validate.
			_ = g.AddEdge(r.ID, l.ElementID, exit, l.ContactPoint)
		}
	}
	return g
}

// AddNode adds a node with the given id. Adding an existing id does nothing.
func (g *Graph) AddNode(id int) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id}
}

// AddEdge links from to to. An error is returned if either node does not
// exist or if the edge would be a self-reference.
func (g *Graph) AddEdge(from, to int, exit, entry roadnet.ContactPoint) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %d -> %d", from, from)
	}
	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("source node not found: %d", from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("destination node not found: %d", to)
	}
	fromNode.edges = append(fromNode.edges, Edge{To: to, Exit: exit, Entry: entry})
	return nil
}

// Has reports whether the node exists.
func (g *Graph) Has(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// Neighbours returns the outgoing edges of a node, ordered by target id and
// then by exit.
func (g *Graph) Neighbours(id int) ([]Edge, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %d", id)
	}
	edges := append([]Edge(nil), n.edges...)
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Exit < edges[j].Exit
	})
	return edges, nil
}

// Nodes returns all node ids in ascending order.
func (g *Graph) Nodes() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// end is one end of a road.
type end struct {
	road    int
	contact roadnet.ContactPoint
}

// DetectCycles checks the undirected road graph for a loop. A connection is
// identified by the two road ends it joins, so the mirrored links on both
// roads count once, while two roads joined at both of their ends form a loop.
// The error names the first road found on a loop.
func (g *Graph) DetectCycles() error {
	type conn struct{ a, b end }
	conns := make(map[conn]bool)
	adj := make(map[int]map[int]int, len(g.nodes))
	for id := range g.nodes {
		adj[id] = make(map[int]int)
	}
	for _, id := range g.Nodes() {
		for _, e := range g.nodes[id].edges {
			a, b := end{id, e.Exit}, end{e.To, e.Entry}
			if b.road < a.road || (b.road == a.road && b.contact < a.contact) {
				a, b = b, a
			}
			if conns[conn{a, b}] {
				continue
			}
			conns[conn{a, b}] = true
			adj[id][e.To]++
			adj[e.To][id]++
			if adj[id][e.To] > 1 {
				return fmt.Errorf("cycle detected involving road %d", min(id, e.To))
			}
		}
	}

	visited := make(map[int]bool)
	var visit func(id, parent int) error
	visit = func(id, parent int) error {
		visited[id] = true
		next := make([]int, 0, len(adj[id]))
		for to := range adj[id] {
			next = append(next, to)
		}
		sort.Ints(next)
		for _, to := range next {
			if to == parent {
				continue
			}
			if visited[to] {
				return fmt.Errorf("cycle detected involving road %d", to)
			}
			if err := visit(to, id); err != nil {
				return err
			}
		}
		return nil
	}

	for _, id := range g.Nodes() {
		if !visited[id] {
			if err := visit(id, roadnet.None); err != nil {
				return err
			}
		}
	}
	return nil
}
