package pagesrv

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/GoSim-25-26J-441/webgraph/internal/metrics"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
)

func TestCrawlVisitsEveryPage(t *testing.T) {
	cfg := testConfig()
	cfg.Graph.TotalPages = 150
	cfg.Failure.Rate = 0.5
	sim := newTestSimulator(t, cfg)
	collector := metrics.NewCollector()
	ts := httptest.NewServer(NewHTTPServer(sim, collector).Handler())
	defer ts.Close()

	client := NewClient(ts.URL, WithRetry(utils.ConstantBackoff{}, 200))
	res, err := client.Crawl(context.Background())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if res.Root != sim.Site().Root().ID {
		t.Fatalf("expected root %s, got %s", sim.Site().Root().ID, res.Root)
	}
	if len(res.Visited) != sim.Site().Len() {
		t.Fatalf("expected %d pages, visited %d", sim.Site().Len(), len(res.Visited))
	}
	if res.Edges != sim.Site().EdgeCount() {
		t.Fatalf("expected %d edges, followed %d", sim.Site().EdgeCount(), res.Edges)
	}
	for id, bt := range res.Visited {
		p, _ := sim.Site().Page(id)
		if p.Type != bt {
			t.Fatalf("page %s: crawled type %s, served %s", id, bt, p.Type)
		}
	}
	if got := collector.Snapshot().ByType["failure"].Outcomes["failure"]; got == 0 {
		t.Fatalf("expected some simulated failures to be retried")
	}
}

func TestClientPageNotFound(t *testing.T) {
	sim := newTestSimulator(t, testConfig())
	ts := httptest.NewServer(NewHTTPServer(sim, metrics.NewCollector()).Handler())
	defer ts.Close()

	client := NewClient(ts.URL, WithRetry(utils.ConstantBackoff{}, 5))
	_, err := client.Page(context.Background(), "zzzzzz")
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestClientGivesUpOnPersistentFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Failure.Rate = 1
	sim := newTestSimulator(t, cfg)
	ts := httptest.NewServer(NewHTTPServer(sim, metrics.NewCollector()).Handler())
	defer ts.Close()

	client := NewClient(ts.URL, WithRetry(utils.ConstantBackoff{}, 3))
	p := sim.Site().PagesOfType(models.BehaviorFailure)[0]
	if _, err := client.Page(context.Background(), p.ID); err == nil {
		t.Fatalf("expected an error after exhausting retries")
	}
}

func TestSolverTargets(t *testing.T) {
	sim := newTestSimulator(t, testConfig())
	solver, err := NewSolver(sim.Site().Puzzle())
	if err != nil {
		t.Fatalf("solver: %v", err)
	}
	for _, p := range sim.Site().Pages() {
		resp := &PageResponse{PageType: p.Type, Links: p.Payload.Links}
		for _, s := range p.Payload.HashSeeds {
			resp.HashSeeds = append(resp.HashSeeds, s.Value)
		}
		for _, g := range p.Payload.MultiSeeds {
			group := make([]string, len(g))
			for i, s := range g {
				group[i] = s.Value
			}
			resp.MultiSeeds = append(resp.MultiSeeds, group)
		}
		got := solver.Targets(resp)
		if len(got) != p.Payload.Len() {
			t.Fatalf("page %s: solved %d targets, want %d", p.ID, len(got), p.Payload.Len())
		}
		for _, id := range got {
			if _, ok := sim.Site().Page(id); !ok {
				t.Fatalf("page %s: solved unknown target %s", p.ID, id)
			}
		}
	}
}
