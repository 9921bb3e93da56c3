package webgraph

import (
	"time"

	"github.com/GoSim-25-26J-441/webgraph/pkg/config"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// Page is one served page. Pages are shared read-only once the Site is built.
type Page struct {
	ID       models.PageID
	Type     models.BehaviorType
	Origin   models.Origin
	Payload  *Payload
	Distance int // hops from the root

	targets []models.PageID
}

// Targets returns the page's link targets in payload order: the i-th entry is what the
// i-th link, seed or seed group reveals. Callers must not modify it.
func (p *Page) Targets() []models.PageID {
	return p.targets
}

// PuzzleInfo tells clients how to solve hash-chain puzzles.
type PuzzleInfo struct {
	Algorithm       string `json:"algorithm"`
	PageIDLength    int    `json:"page_id_length"`
	CPUIterations   int    `json:"cpu_iterations"`
	MultiIterations int    `json:"multiseed_iterations"`
	FragmentLength  int    `json:"fragment_length"`
}

// Site is the immutable result of a build: every page, its type and its payload.
// All methods are safe for concurrent use because nothing is written after Build returns.
type Site struct {
	buildID     string
	builtAt     time.Time
	root        *Page
	pages       map[models.PageID]*Page
	order       []*Page
	byType      map[models.BehaviorType][]*Page
	edges       int
	deadEnds    int
	delays      config.Delays
	failureRate float64
	puzzle      PuzzleInfo
}

// BuildID returns the unique id of this build.
func (s *Site) BuildID() string { return s.buildID }

// BuiltAt returns when the build finished.
func (s *Site) BuiltAt() time.Time { return s.builtAt }

// Root returns the root page.
func (s *Site) Root() *Page { return s.root }

// Page looks up a page by id.
func (s *Site) Page(id models.PageID) (*Page, bool) {
	p, ok := s.pages[id]
	return p, ok
}

// Len returns the number of pages.
func (s *Site) Len() int { return len(s.order) }

// Pages returns every page, root first. Callers must not modify the slice.
func (s *Site) Pages() []*Page { return s.order }

// PagesOfType returns the pages of type t. Callers must not modify the slice.
func (s *Site) PagesOfType(t models.BehaviorType) []*Page { return s.byType[t] }

// Distribution returns the number of pages per type.
func (s *Site) Distribution() map[models.BehaviorType]int {
	d := make(map[models.BehaviorType]int, len(models.BehaviorTypes))
	for _, t := range models.BehaviorTypes {
		d[t] = len(s.byType[t])
	}
	return d
}

// EdgeCount returns the number of links in the graph.
func (s *Site) EdgeCount() int { return s.edges }

// AvgOutDegree returns the realized average out-degree.
func (s *Site) AvgOutDegree() float64 {
	if len(s.order) == 0 {
		return 0
	}
	return float64(s.edges) / float64(len(s.order))
}

// DeadEnds returns the number of pages without links.
func (s *Site) DeadEnds() int { return s.deadEnds }

// Puzzle returns the hash-chain parameters.
func (s *Site) Puzzle() PuzzleInfo { return s.puzzle }

// FailureRate returns the failure probability of failure pages.
func (s *Site) FailureRate() float64 { return s.failureRate }

// DelayFor returns the simulated delay of page p.
func (s *Site) DelayFor(p *Page) time.Duration {
	if p == s.root {
		return s.delays.RootDelay()
	}
	return s.delays.For(p.Type)
}
