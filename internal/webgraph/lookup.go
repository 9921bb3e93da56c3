package webgraph

import (
	"time"

	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

// Outcome classifies a lookup.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	SimulatedFailure
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case SimulatedFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// LookupResult is the answer to one page request. Page is nil for NotFound.
// Delay is how long the response should appear to take.
type LookupResult struct {
	Outcome Outcome
	Page    *Page
	Delay   time.Duration
}

// Simulator answers page lookups against a built Site. It only reads the Site;
// the random source is the one piece of per-request state and is goroutine-safe.
type Simulator struct {
	site *Site
	rng  *utils.RandSource
}

// NewSimulator creates a Simulator over site drawing failures from rng.
func NewSimulator(site *Site, rng *utils.RandSource) *Simulator {
	return &Simulator{site: site, rng: rng}
}

// Site returns the site being served.
func (s *Simulator) Site() *Site { return s.site }

// Lookup resolves id. Failure pages fail independently on every call with the
// configured failure rate; every other outcome depends only on id.
func (s *Simulator) Lookup(id models.PageID) LookupResult {
	p, ok := s.site.Page(id)
	if !ok {
		return LookupResult{Outcome: NotFound}
	}
	res := LookupResult{Outcome: Found, Page: p, Delay: s.site.DelayFor(p)}
	if p.Type == models.BehaviorFailure && s.rng.BernoulliBool(s.site.FailureRate()) {
		res.Outcome = SimulatedFailure
	}
	return res
}

// RandomPage returns a page chosen uniformly from the whole site.
func (s *Simulator) RandomPage() *Page {
	return utils.Choice(s.rng, s.site.Pages())
}

// RandomPageOfType returns a uniformly chosen page of type t, or false if the site has none.
func (s *Simulator) RandomPageOfType(t models.BehaviorType) (*Page, bool) {
	pages := s.site.PagesOfType(t)
	if len(pages) == 0 {
		return nil, false
	}
	return utils.Choice(s.rng, pages), true
}
