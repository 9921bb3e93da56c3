package webgraph

import (
	"fmt"

	"github.com/GoSim-25-26J-441/webgraph/internal/graph"
	"github.com/GoSim-25-26J-441/webgraph/internal/hashchain"
	"github.com/GoSim-25-26J-441/webgraph/pkg/config"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// verify re-checks the structural invariants of a freshly assembled site. Seed outputs
// are trusted as recorded, except for the first cpu seed and the first seed group,
// whose hash chains are recomputed.
func verify(s *Site, g *graph.Graph, ratios config.Ratios, hasher hashchain.Hasher) error {
	fail := func(format string, args ...any) error {
		return &InternalError{Op: "verify", Err: fmt.Errorf("%w: "+format, append([]any{ErrInvariantViolated}, args...)...)}
	}

	issued := make(map[string]models.PageID)
	claim := func(owner models.PageID, seed models.Seed) error {
		if prev, dup := issued[seed.Value]; dup {
			return fail("seed %s issued to both %s and %s", seed.Value, prev, owner)
		}
		issued[seed.Value] = owner
		return nil
	}

	for _, n := range g.Nodes() {
		p, ok := s.pages[n.ID]
		if !ok {
			return fail("node %s has no page", n.ID)
		}
		if p.Payload.Len() != n.OutDegree() {
			return fail("page %s encodes %d links, graph has %d", n.ID, p.Payload.Len(), n.OutDegree())
		}
		for _, tgt := range n.Targets() {
			if _, ok := s.pages[tgt]; !ok {
				return fail("page %s links to unknown page %s", n.ID, tgt)
			}
		}
		for i, seed := range p.Payload.HashSeeds {
			if seed.Output != string(n.Targets()[i]) {
				return fail("page %s seed %s reveals %s, want %s", n.ID, seed.Value, seed.Output, n.Targets()[i])
			}
			if err := claim(n.ID, seed); err != nil {
				return err
			}
		}
		for i, group := range p.Payload.MultiSeeds {
			revealed := ""
			for _, seed := range group {
				revealed += seed.Output
				if err := claim(n.ID, seed); err != nil {
					return err
				}
			}
			if revealed != string(n.Targets()[i]) {
				return fail("page %s seed group %d reveals %s, want %s", n.ID, i, revealed, n.Targets()[i])
			}
		}
	}

	if err := spotCheckChains(s, hasher); err != nil {
		return fail("%v", err)
	}

	if s.root.Type != models.BehaviorRegular || s.root.Distance != 0 {
		return fail("root %s is %s at distance %d", s.root.ID, s.root.Type, s.root.Distance)
	}
	for _, p := range s.order {
		if p.Distance < 0 {
			return fail("page %s is unreachable from the root", p.ID)
		}
	}

	targets := TargetCounts(len(s.order), ratios)
	for t, n := range s.Distribution() {
		if diff := n - targets[t]; diff > ratioTolerance || diff < -ratioTolerance {
			return fail("%d %s pages, target %d", n, t, targets[t])
		}
	}
	return nil
}

func spotCheckChains(s *Site, hasher hashchain.Hasher) error {
	pz := s.puzzle
	for _, p := range s.PagesOfType(models.BehaviorCPU) {
		if len(p.Payload.HashSeeds) == 0 {
			continue
		}
		seed := p.Payload.HashSeeds[0]
		if got := hasher.Output(seed.Value, pz.CPUIterations, pz.PageIDLength); got != string(p.targets[0]) {
			return fmt.Errorf("page %s seed %s hashes to %s, want %s", p.ID, seed.Value, got, p.targets[0])
		}
		break
	}
	for _, p := range s.PagesOfType(models.BehaviorMultiSeed) {
		if len(p.Payload.MultiSeeds) == 0 {
			continue
		}
		revealed := ""
		for _, seed := range p.Payload.MultiSeeds[0] {
			revealed += hasher.Output(seed.Value, pz.MultiIterations, pz.FragmentLength)
		}
		if revealed != string(p.targets[0]) {
			return fmt.Errorf("page %s seed group hashes to %s, want %s", p.ID, revealed, p.targets[0])
		}
		break
	}
	return nil
}
