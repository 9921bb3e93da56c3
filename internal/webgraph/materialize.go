package webgraph

import (
	"fmt"

	"github.com/GoSim-25-26J-441/webgraph/internal/graph"
	"github.com/GoSim-25-26J-441/webgraph/internal/seedpool"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// Payload is the concrete link representation served for one page. Exactly one of
// the fields is meaningful, chosen by the page's own type.
type Payload struct {
	Links      []models.PageID
	HashSeeds  []models.Seed
	MultiSeeds [][]models.Seed
}

// Payload field names on the wire.
const (
	FieldLinks      = "links"
	FieldHashSeeds  = "hashseeds"
	FieldMultiSeeds = "multiseeds"
)

// Field returns the wire name and value of the payload for a page of type t.
// Empty payloads encode as empty lists, never null.
func (p *Payload) Field(t models.BehaviorType) (string, any) {
	switch t {
	case models.BehaviorCPU:
		if p.HashSeeds == nil {
			return FieldHashSeeds, []models.Seed{}
		}
		return FieldHashSeeds, p.HashSeeds
	case models.BehaviorMultiSeed:
		if p.MultiSeeds == nil {
			return FieldMultiSeeds, [][]models.Seed{}
		}
		return FieldMultiSeeds, p.MultiSeeds
	default:
		if p.Links == nil {
			return FieldLinks, []models.PageID{}
		}
		return FieldLinks, p.Links
	}
}

// Len returns the number of links encoded in the payload.
func (p *Payload) Len() int {
	return len(p.Links) + len(p.HashSeeds) + len(p.MultiSeeds)
}

// materialize turns every node's abstract targets into the payload its type requires,
// consuming each issued seed from its pool.
func materialize(g *graph.Graph, types map[models.PageID]models.BehaviorType, long, short *seedpool.Pool, fragLen int) (map[models.PageID]*Payload, error) {
	payloads := make(map[models.PageID]*Payload, g.Len())
	for _, n := range g.Nodes() {
		p := &Payload{}
		switch types[n.ID] {
		case models.BehaviorCPU:
			p.HashSeeds = make([]models.Seed, 0, n.OutDegree())
			for _, tgt := range n.Targets() {
				seed, ok := long.Take(string(tgt))
				if !ok {
					return nil, &InternalError{Op: "materialize", Err: fmt.Errorf("%w: cpu page %s -> %s", ErrSeedUnavailable, n.ID, tgt)}
				}
				p.HashSeeds = append(p.HashSeeds, seed)
			}
		case models.BehaviorMultiSeed:
			p.MultiSeeds = make([][]models.Seed, 0, n.OutDegree())
			for _, tgt := range n.Targets() {
				frags := fragments(tgt, fragLen)
				group := make([]models.Seed, 0, len(frags))
				for _, f := range frags {
					seed, ok := short.Take(f)
					if !ok {
						return nil, &InternalError{Op: "materialize", Err: fmt.Errorf("%w: multiseed page %s -> %s (fragment %q)", ErrSeedUnavailable, n.ID, tgt, f)}
					}
					group = append(group, seed)
				}
				p.MultiSeeds = append(p.MultiSeeds, group)
			}
		default:
			p.Links = append([]models.PageID(nil), n.Targets()...)
		}
		payloads[n.ID] = p
	}
	return payloads, nil
}
