// Package webgraph assembles the served site: it types every page, turns links into
// their puzzle payloads and answers page lookups.
package webgraph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/internal/graph"
	"github.com/GoSim-25-26J-441/webgraph/internal/hashchain"
	"github.com/GoSim-25-26J-441/webgraph/internal/seedpool"
	"github.com/GoSim-25-26J-441/webgraph/pkg/config"
	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

// Build stages, reported in BuildError.Stage.
const (
	StageConfig    = "config"
	StageLongPool  = "long_pool"
	StageShortPool = "short_pool"
	StageIDs       = "ids"
	StageGraph     = "graph"
	StageTypes     = "types"
)

// shortPoolSlack oversizes the automatic short pool coverage.
const shortPoolSlack = 1.5

// Build runs the whole build phase for cfg and returns the immutable site.
// It returns a *BuildError when the configuration cannot be realized and an
// *InternalError when a built structure breaks an invariant. No partial site is
// ever returned.
func Build(ctx context.Context, cfg *config.Config) (*Site, error) {
	start := time.Now()
	if err := config.Validate(cfg); err != nil {
		return nil, &BuildError{Stage: StageConfig, Err: err}
	}
	hasher, err := hashchain.New(cfg.Hash.Algorithm)
	if err != nil {
		return nil, &BuildError{Stage: StageConfig, Err: err}
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := utils.NewRandSource(seed)

	total := cfg.Graph.TotalPages
	idLen := cfg.Graph.PageIDLength
	fragLen := cfg.ShortPool.FragmentLength
	counts := TargetCounts(total, cfg.Ratios)
	if counts[models.BehaviorRegular] < 1 {
		return nil, &BuildError{Stage: StageConfig, Err: fmt.Errorf("%w: no regular page left for the root", ErrRatioConflict)}
	}

	var cache *seedpool.Cache
	if cfg.SeedCache.Path != "" {
		cache, err = seedpool.LoadCache(cfg.SeedCache.Path)
		if err != nil {
			logger.Warn("ignoring seed cache", "path", cfg.SeedCache.Path, "error", err)
		}
	}
	opts := []seedpool.Option{seedpool.WithWorkers(cfg.Hash.Workers)}
	if cache != nil {
		opts = append(opts, seedpool.WithCache(cache))
	}
	pools := seedpool.NewBuilder(rng, opts...)

	root := models.PageID(cfg.Graph.Root)
	explicitRoot := cfg.Graph.Root != config.RootRandom

	longCount := counts[models.BehaviorCPU]
	minPerID := cfg.LongPool.MinSeedsPerID
	longParams := seedpool.Params{
		Hasher:      hasher,
		Alphabet:    cfg.Hash.SeedAlphabet,
		SeedLength:  cfg.Hash.SeedLength,
		Iterations:  cfg.LongPool.Iterations,
		OutputLen:   idLen,
		MaxAttempts: cfg.LongPool.MaxAttempts,
	}
	if longParams.MaxAttempts <= 0 {
		longParams.MaxAttempts = max(1000, 50*longCount*minPerID)
	}
	var exclude func(string) bool
	if explicitRoot {
		exclude = func(out string) bool { return out == string(root) }
	}
	long, err := pools.BuildLong(ctx, longParams, longCount, minPerID, exclude)
	if err != nil {
		return nil, &BuildError{Stage: StageLongPool, Err: err}
	}

	multiCount := counts[models.BehaviorMultiSeed]
	buckets := int(math.Pow(16, float64(fragLen)))
	minPerFragment := cfg.ShortPool.MinSeedsPerFragment
	if minPerFragment <= 0 {
		minPerFragment = autoFragmentCoverage(multiCount, cfg.Graph.AvgLinksPerPage, idLen/fragLen, buckets)
	}
	shortParams := seedpool.Params{
		Hasher:      hasher,
		Alphabet:    cfg.Hash.SeedAlphabet,
		SeedLength:  cfg.Hash.SeedLength,
		Iterations:  cfg.ShortPool.Iterations,
		OutputLen:   fragLen,
		MaxAttempts: cfg.ShortPool.MaxAttempts,
	}
	if shortParams.MaxAttempts <= 0 {
		shortParams.MaxAttempts = max(1000, 20*buckets*minPerFragment)
	}
	short, err := pools.BuildShort(ctx, shortParams, minPerFragment)
	if err != nil {
		return nil, &BuildError{Stage: StageShortPool, Err: err}
	}

	if cache != nil {
		cache.Put(longParams, long)
		cache.Put(shortParams, short)
		if err := cache.Save(); err != nil {
			logger.Warn("seed cache not saved", "path", cache.Path(), "error", err)
		}
	}

	candidates, root, err := collectCandidates(rng, long, short, root, explicitRoot, idLen, total, multiCount)
	if err != nil {
		return nil, &BuildError{Stage: StageIDs, Err: err}
	}

	g, err := graph.Build(candidates, root, graph.Options{
		TargetAvgDegree: cfg.Graph.AvgLinksPerPage,
		Budget:          newSeedBudget(long, short, fragLen),
	}, rng)
	if err != nil {
		return nil, &BuildError{Stage: StageGraph, Err: err}
	}

	types, err := AssignTypes(g, cfg.Ratios, rng)
	if err != nil {
		return nil, &BuildError{Stage: StageTypes, Err: err}
	}

	payloads, err := materialize(g, types, long, short, fragLen)
	if err != nil {
		return nil, err
	}

	site := assemble(g, types, payloads, cfg)
	site.puzzle = PuzzleInfo{
		Algorithm:       string(hasher.Algorithm()),
		PageIDLength:    idLen,
		CPUIterations:   cfg.LongPool.Iterations,
		MultiIterations: cfg.ShortPool.Iterations,
		FragmentLength:  fragLen,
	}
	if err := verify(site, g, cfg.Ratios, hasher); err != nil {
		return nil, err
	}

	logger.Info("web graph built",
		"build_id", site.buildID,
		"pages", site.Len(),
		"root", site.root.ID,
		"edges", site.edges,
		"avg_out_degree", site.AvgOutDegree(),
		"dead_ends", site.deadEnds,
		"distribution", site.Distribution(),
		"elapsed", time.Since(start))
	return site, nil
}

// autoFragmentCoverage sizes the short pool so every multiseed page can pay for its
// expected links, with slack for fragments drawn more often than average.
func autoFragmentCoverage(multiCount int, avgDegree float64, groupSize, buckets int) int {
	need := float64(multiCount) * math.Ceil(avgDegree) * float64(groupSize) * shortPoolSlack
	return int(math.Ceil(need/float64(buckets))) + 1
}

// collectCandidates gathers every page id with its origin: long-pool outputs,
// ids assembled from short-pool fragments and synthetic ids filling the rest.
// The root is always synthetic.
func collectCandidates(rng *utils.RandSource, long, short *seedpool.Pool, root models.PageID, explicitRoot bool, idLen, total, multiCount int) ([]graph.Candidate, models.PageID, error) {
	taken := make(map[models.PageID]bool, total)
	candidates := make([]graph.Candidate, 0, total)

	for _, out := range long.Outputs() {
		id := models.PageID(out)
		taken[id] = true
		candidates = append(candidates, graph.Candidate{ID: id, Origin: models.OriginLongPool})
	}

	if explicitRoot {
		if taken[root] {
			return nil, "", fmt.Errorf("root %s collides with a long pool id", root)
		}
		taken[root] = true
	} else {
		ids, err := synthesizeIDs(rng, idLen, 1, taken)
		if err != nil {
			return nil, "", err
		}
		root = ids[0]
	}
	candidates = append(candidates, graph.Candidate{ID: root, Origin: models.OriginSynthetic})

	assembled, err := assembleIDs(rng, short, idLen, multiCount, taken)
	if err != nil {
		return nil, "", err
	}
	for _, id := range assembled {
		candidates = append(candidates, graph.Candidate{ID: id, Origin: models.OriginShortPool})
	}

	synthetic, err := synthesizeIDs(rng, idLen, total-len(candidates), taken)
	if err != nil {
		return nil, "", err
	}
	for _, id := range synthetic {
		candidates = append(candidates, graph.Candidate{ID: id, Origin: models.OriginSynthetic})
	}
	return candidates, root, nil
}

// assemble freezes the typed, materialized graph into a Site.
func assemble(g *graph.Graph, types map[models.PageID]models.BehaviorType, payloads map[models.PageID]*Payload, cfg *config.Config) *Site {
	dist := g.Distances()
	s := &Site{
		buildID:     utils.GenerateBuildID(),
		builtAt:     time.Now(),
		pages:       make(map[models.PageID]*Page, g.Len()),
		order:       make([]*Page, 0, g.Len()),
		byType:      make(map[models.BehaviorType][]*Page, len(models.BehaviorTypes)),
		edges:       g.EdgeCount(),
		deadEnds:    g.DeadEnds(),
		delays:      cfg.DelaysMs,
		failureRate: cfg.Failure.Rate,
	}
	for _, n := range g.Nodes() {
		d, ok := dist[n.ID]
		if !ok {
			d = -1
		}
		p := &Page{
			ID:       n.ID,
			Type:     types[n.ID],
			Origin:   n.Origin,
			Payload:  payloads[n.ID],
			Distance: d,
			targets:  n.Targets(),
		}
		s.pages[p.ID] = p
		s.order = append(s.order, p)
		s.byType[p.Type] = append(s.byType[p.Type], p)
	}
	s.root = s.pages[g.Root()]
	return s
}

// IsBuildError reports whether err aborted a build because of its configuration.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}
