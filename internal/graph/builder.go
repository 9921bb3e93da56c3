package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

var (
	// ErrInvalidCandidates is returned for duplicate ids or a root missing from the candidates.
	ErrInvalidCandidates = errors.New("graph: invalid candidates")
	// ErrNoParent is returned when the budget admits no attached node as parent of a new node.
	ErrNoParent = errors.New("graph: no admissible parent")
	// ErrDegreeUnreachable is returned when the extra-edge phase cannot reach the target degree.
	ErrDegreeUnreachable = errors.New("graph: target average degree unreachable")
)

// EdgeBudget decides which edges may exist. Admits must not change state;
// Reserve is called exactly once for every edge the builder adds.
type EdgeBudget interface {
	Admits(src, dst *Node) bool
	Reserve(src, dst *Node)
}

// TargetSelector is an optional EdgeBudget extension for budgets that admit only a
// small known set of targets from some sources. Uniform sampling rarely hits those
// targets, so Build draws extra edges for such sources from Targets instead and gives
// each of them its own share of the average degree.
type TargetSelector interface {
	// Targets returns the ids src may still link to; ok is false when src is unrestricted.
	Targets(src *Node) (ids []models.PageID, ok bool)
}

// Unlimited admits every edge.
type Unlimited struct{}

func (Unlimited) Admits(*Node, *Node) bool { return true }
func (Unlimited) Reserve(*Node, *Node)     {}

// Options configures Build.
type Options struct {
	TargetAvgDegree float64
	// MaxAttempts bounds extra-edge sampling; 0 derives a bound from the edge target.
	MaxAttempts int
	Budget      EdgeBudget
}

// parentTries is how many random attached nodes are tried before scanning all of them.
const parentTries = 16

// Build constructs a graph over candidates rooted at root.
//
// Every non-root candidate is attached as the child of an already attached node chosen
// uniformly among those the budget admits, which yields a spanning tree. Random extra
// edges are then added until the edge count reaches round(n*TargetAvgDegree); duplicate
// edges and self-loops are skipped and tree edges are never removed. When the budget is a
// TargetSelector, its restricted sources draw their extra edges from Targets first.
func Build(candidates []Candidate, root models.PageID, opts Options, rng *utils.RandSource) (*Graph, error) {
	budget := opts.Budget
	if budget == nil {
		budget = Unlimited{}
	}

	g := &Graph{
		root:  root,
		nodes: make(map[models.PageID]*Node, len(candidates)),
		order: make([]*Node, 0, len(candidates)),
	}
	var rootNode *Node
	rest := make([]*Node, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := g.nodes[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidCandidates, c.ID)
		}
		n := &Node{ID: c.ID, Origin: c.Origin, outSet: make(map[models.PageID]struct{})}
		g.nodes[c.ID] = n
		if c.ID == root {
			rootNode = n
		} else {
			rest = append(rest, n)
		}
	}
	if rootNode == nil {
		return nil, fmt.Errorf("%w: root %s is not a candidate", ErrInvalidCandidates, root)
	}

	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	g.order = append(g.order, rootNode)

	for _, child := range rest {
		parent := pickParent(g.order, child, budget, rng)
		if parent == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoParent, child.ID)
		}
		g.addEdge(parent, child, budget)
		g.order = append(g.order, child)
	}

	target := targetEdges(len(g.order), opts.TargetAvgDegree)
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 50*target + 10_000
	}

	// Restricted sources share their scarce targets level by level: every source at
	// out-degree L is offered one edge before any source moves past L+1, so targets
	// spread evenly instead of filling whichever source comes first. The uniform
	// phase then leaves these sources alone until half of the attempts are spent.
	selector, _ := budget.(TargetSelector)
	quota := make(map[*Node]int)
	var restricted []*Node
	if selector != nil {
		for _, n := range g.order {
			if _, ok := selector.Targets(n); ok {
				quota[n] = degreeQuota(opts.TargetAvgDegree, rng)
				restricted = append(restricted, n)
			}
		}
		rng.Shuffle(len(restricted), func(i, j int) { restricted[i], restricted[j] = restricted[j], restricted[i] })
	}
	for level := 0; level < int(math.Ceil(opts.TargetAvgDegree)) && g.edges < target; level++ {
		for _, n := range restricted {
			if n.OutDegree() != level || level >= quota[n] || g.edges >= target {
				continue
			}
			if dst := g.pickTarget(n, selector, budget, rng); dst != nil {
				g.addEdge(n, dst, budget)
			}
		}
	}

	relaxAt := maxAttempts / 2
	for attempts := 0; g.edges < target && attempts < maxAttempts; attempts++ {
		src := g.order[rng.Intn(len(g.order))]
		if q, ok := quota[src]; ok {
			if src.OutDegree() >= q && attempts < relaxAt {
				continue
			}
			if dst := g.pickTarget(src, selector, budget, rng); dst != nil {
				g.addEdge(src, dst, budget)
			}
			continue
		}
		dst := g.order[rng.Intn(len(g.order))]
		if src == dst || src.HasEdge(dst.ID) || !budget.Admits(src, dst) {
			continue
		}
		g.addEdge(src, dst, budget)
	}
	if g.edges < target {
		return nil, fmt.Errorf("%w: %d of %d edges after %d attempts", ErrDegreeUnreachable, g.edges, target, maxAttempts)
	}
	return g, nil
}

// targetEdges returns the edge count for an average degree; never fewer than a spanning tree needs.
func targetEdges(n int, avg float64) int {
	if n <= 1 {
		return 0
	}
	target := int(math.Round(float64(n) * avg))
	if target < n-1 {
		target = n - 1
	}
	if maxEdges := n * (n - 1); target > maxEdges {
		target = maxEdges
	}
	return target
}

// degreeQuota rounds avg up or down at random so quotas average out to avg.
func degreeQuota(avg float64, rng *utils.RandSource) int {
	q := int(math.Floor(avg))
	if rng.Float64() < avg-float64(q) {
		q++
	}
	return q
}

// pickTarget draws uniformly among the selector's targets that src may still link to.
func (g *Graph) pickTarget(src *Node, selector TargetSelector, budget EdgeBudget, rng *utils.RandSource) *Node {
	ids, _ := selector.Targets(src)
	var admitted []*Node
	for _, id := range ids {
		dst, ok := g.nodes[id]
		if !ok || dst == src || src.HasEdge(id) || !budget.Admits(src, dst) {
			continue
		}
		admitted = append(admitted, dst)
	}
	if len(admitted) == 0 {
		return nil
	}
	return admitted[rng.Intn(len(admitted))]
}

func pickParent(attached []*Node, child *Node, budget EdgeBudget, rng *utils.RandSource) *Node {
	for i := 0; i < parentTries; i++ {
		p := attached[rng.Intn(len(attached))]
		if budget.Admits(p, child) {
			return p
		}
	}
	var admitted []*Node
	for _, p := range attached {
		if budget.Admits(p, child) {
			admitted = append(admitted, p)
		}
	}
	if len(admitted) == 0 {
		return nil
	}
	return admitted[rng.Intn(len(admitted))]
}

func (g *Graph) addEdge(src, dst *Node, budget EdgeBudget) {
	budget.Reserve(src, dst)
	src.link(dst.ID)
	g.edges++
}
