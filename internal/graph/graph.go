// Package graph builds the connected directed page graph: a random spanning tree
// rooted at a distinguished page, topped up with random extra edges until a target
// average out-degree is reached.
package graph

import (
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// Candidate is a page id offered to the builder together with its provenance.
type Candidate struct {
	ID     models.PageID
	Origin models.Origin
}

// Node is one page of the graph and its abstract outgoing edges.
type Node struct {
	ID     models.PageID
	Origin models.Origin

	out    []models.PageID
	outSet map[models.PageID]struct{}
}

// Targets returns the node's outgoing targets in insertion order. Callers must not modify it.
func (n *Node) Targets() []models.PageID {
	return n.out
}

// OutDegree returns the number of outgoing edges.
func (n *Node) OutDegree() int {
	return len(n.out)
}

// HasEdge reports whether n links to target.
func (n *Node) HasEdge(target models.PageID) bool {
	_, ok := n.outSet[target]
	return ok
}

func (n *Node) link(target models.PageID) {
	n.out = append(n.out, target)
	n.outSet[target] = struct{}{}
}

// Graph is the set of all nodes plus the designated root. It is immutable once Build returns.
type Graph struct {
	root  models.PageID
	nodes map[models.PageID]*Node
	order []*Node
	edges int
}

// Root returns the root page id.
func (g *Graph) Root() models.PageID { return g.root }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Node looks up a node by id.
func (g *Graph) Node(id models.PageID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node; the root comes first, then nodes in attachment order.
func (g *Graph) Nodes() []*Node {
	return g.order
}

// AvgOutDegree returns the realized average out-degree.
func (g *Graph) AvgOutDegree() float64 {
	if len(g.order) == 0 {
		return 0
	}
	return float64(g.edges) / float64(len(g.order))
}

// DeadEnds returns the number of nodes without outgoing edges.
func (g *Graph) DeadEnds() int {
	n := 0
	for _, node := range g.order {
		if node.OutDegree() == 0 {
			n++
		}
	}
	return n
}

// Distances returns the BFS distance from the root to every reachable node.
func (g *Graph) Distances() map[models.PageID]int {
	dist := map[models.PageID]int{g.root: 0}
	queue := []models.PageID{g.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node, ok := g.nodes[id]
		if !ok {
			continue
		}
		for _, t := range node.out {
			if _, seen := dist[t]; seen {
				continue
			}
			dist[t] = dist[id] + 1
			queue = append(queue, t)
		}
	}
	return dist
}
