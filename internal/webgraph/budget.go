package webgraph

import (
	"github.com/GoSim-25-26J-441/webgraph/internal/graph"
	"github.com/GoSim-25-26J-441/webgraph/internal/seedpool"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// seedBudget admits an edge only if the source's puzzle type can still be paid for:
// cpu sources (long-pool ids) need an unreserved long seed for the target, multiseed
// sources (short-pool ids) need an unreserved short seed for every target fragment.
type seedBudget struct {
	long     *seedpool.Pool
	short    *seedpool.Pool
	fragLen  int
	longRes  map[string]int
	shortRes map[string]int
}

var (
	_ graph.EdgeBudget     = (*seedBudget)(nil)
	_ graph.TargetSelector = (*seedBudget)(nil)
)

func newSeedBudget(long, short *seedpool.Pool, fragLen int) *seedBudget {
	return &seedBudget{
		long:     long,
		short:    short,
		fragLen:  fragLen,
		longRes:  make(map[string]int),
		shortRes: make(map[string]int),
	}
}

func (b *seedBudget) Admits(src, dst *graph.Node) bool {
	switch src.Origin {
	case models.OriginLongPool:
		id := string(dst.ID)
		return b.long.Available(id)-b.longRes[id] > 0
	case models.OriginShortPool:
		need := fragmentCounts(dst.ID, b.fragLen)
		for f, n := range need {
			if b.short.Available(f)-b.shortRes[f] < n {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (b *seedBudget) Reserve(src, dst *graph.Node) {
	switch src.Origin {
	case models.OriginLongPool:
		b.longRes[string(dst.ID)]++
	case models.OriginShortPool:
		for f, n := range fragmentCounts(dst.ID, b.fragLen) {
			b.shortRes[f] += n
		}
	}
}

// Targets restricts cpu sources to long ids that still have an unreserved seed.
func (b *seedBudget) Targets(src *graph.Node) ([]models.PageID, bool) {
	if src.Origin != models.OriginLongPool {
		return nil, false
	}
	var ids []models.PageID
	for _, id := range b.long.Outputs() {
		if b.long.Available(id)-b.longRes[id] > 0 {
			ids = append(ids, models.PageID(id))
		}
	}
	return ids, true
}

// fragments splits id into consecutive pieces of fragLen characters.
func fragments(id models.PageID, fragLen int) []string {
	s := string(id)
	out := make([]string, 0, len(s)/fragLen)
	for i := 0; i+fragLen <= len(s); i += fragLen {
		out = append(out, s[i:i+fragLen])
	}
	return out
}

func fragmentCounts(id models.PageID, fragLen int) map[string]int {
	counts := make(map[string]int)
	for _, f := range fragments(id, fragLen) {
		counts[f]++
	}
	return counts
}
