package webgraph

import (
	"fmt"
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/webgraph/internal/graph"
	"github.com/GoSim-25-26J-441/webgraph/pkg/config"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

// ratioTolerance is the allowed distance between a realized type count and its target.
const ratioTolerance = 1

var freeTypes = []models.BehaviorType{
	models.BehaviorRegular,
	models.BehaviorDelay,
	models.BehaviorFailure,
}

// TargetCounts splits total pages across behavior types by the largest-remainder method.
func TargetCounts(total int, ratios config.Ratios) map[models.BehaviorType]int {
	weights := make([]float64, len(models.BehaviorTypes))
	for i, t := range models.BehaviorTypes {
		weights[i] = ratios.Share(t)
	}
	alloc := largestRemainder(total, weights)
	counts := make(map[models.BehaviorType]int, len(alloc))
	for i, t := range models.BehaviorTypes {
		counts[t] = alloc[i]
	}
	return counts
}

// largestRemainder apportions total across weights: every share gets the floor of its
// quota and the leftover units go to the largest fractional parts, earlier index first on ties.
func largestRemainder(total int, weights []float64) []int {
	alloc := make([]int, len(weights))
	sum := 0.0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if total <= 0 || sum == 0 {
		return alloc
	}

	type frac struct {
		idx int
		rem float64
	}
	fracs := make([]frac, 0, len(weights))
	given := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		quota := float64(total) * w / sum
		alloc[i] = int(math.Floor(quota))
		given += alloc[i]
		fracs = append(fracs, frac{idx: i, rem: quota - math.Floor(quota)})
	}
	sort.SliceStable(fracs, func(a, b int) bool { return fracs[a].rem > fracs[b].rem })
	for i := 0; given < total; i++ {
		alloc[fracs[i%len(fracs)].idx]++
		given++
	}
	return alloc
}

// AssignTypes gives every node exactly one behavior type.
//
// Long-pool ids are forced to cpu, short-pool ids to multiseed and the root to regular.
// The remaining nodes are shuffled and split over regular, delay and failure in
// proportion to each type's shortfall against its target. Any realized count farther
// than ratioTolerance from its target is a conflict.
func AssignTypes(g *graph.Graph, ratios config.Ratios, rng *utils.RandSource) (map[models.PageID]models.BehaviorType, error) {
	targets := TargetCounts(g.Len(), ratios)
	types := make(map[models.PageID]models.BehaviorType, g.Len())
	realized := make(map[models.BehaviorType]int, len(models.BehaviorTypes))

	var free []models.PageID
	for _, n := range g.Nodes() {
		var forced models.BehaviorType
		switch {
		case n.ID == g.Root():
			if n.Origin != models.OriginSynthetic {
				return nil, fmt.Errorf("%w: root %s comes from the %s and cannot be regular", ErrRatioConflict, n.ID, n.Origin)
			}
			forced = models.BehaviorRegular
		case n.Origin == models.OriginLongPool:
			forced = models.BehaviorCPU
		case n.Origin == models.OriginShortPool:
			forced = models.BehaviorMultiSeed
		default:
			free = append(free, n.ID)
			continue
		}
		types[n.ID] = forced
		realized[forced]++
	}

	for _, t := range []models.BehaviorType{models.BehaviorCPU, models.BehaviorMultiSeed, models.BehaviorRegular} {
		if realized[t] > targets[t]+ratioTolerance {
			return nil, fmt.Errorf("%w: %d %s pages forced, target %d", ErrRatioConflict, realized[t], t, targets[t])
		}
	}

	weights := make([]float64, len(freeTypes))
	shortfall := 0.0
	for i, t := range freeTypes {
		if gap := targets[t] - realized[t]; gap > 0 {
			weights[i] = float64(gap)
			shortfall += weights[i]
		}
	}
	if shortfall == 0 {
		for i, t := range freeTypes {
			weights[i] = ratios.Share(t)
		}
	}
	alloc := largestRemainder(len(free), weights)

	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	next := 0
	for i, t := range freeTypes {
		for k := 0; k < alloc[i]; k++ {
			types[free[next]] = t
			realized[t]++
			next++
		}
	}
	// Only reachable when every free weight is zero; the leftovers stay regular.
	for ; next < len(free); next++ {
		types[free[next]] = models.BehaviorRegular
		realized[models.BehaviorRegular]++
	}

	for _, t := range models.BehaviorTypes {
		if diff := realized[t] - targets[t]; diff > ratioTolerance || diff < -ratioTolerance {
			return nil, fmt.Errorf("%w: %d %s pages realized, target %d", ErrRatioConflict, realized[t], t, targets[t])
		}
	}
	return types, nil
}
