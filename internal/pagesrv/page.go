// Package pagesrv serves a built web graph over HTTP and gRPC.
package pagesrv

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/internal/metrics"
	"github.com/GoSim-25-26J-441/webgraph/internal/webgraph"
	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// PagePath returns the URL path of a page.
func PagePath(id models.PageID) string {
	return "/api/" + string(id)
}

// resolver performs lookups for both transports: it waits out the simulated delay
// and records the outcome.
type resolver struct {
	sim       *webgraph.Simulator
	collector *metrics.Collector
}

// resolve looks up id and blocks for the simulated delay. ok is false when ctx ends first.
func (r *resolver) resolve(ctx context.Context, id models.PageID) (res webgraph.LookupResult, ok bool) {
	res = r.sim.Lookup(id)
	var pageType models.BehaviorType
	if res.Page != nil {
		pageType = res.Page.Type
	}
	r.collector.ObserveLookup(pageType, res.Outcome.String(), res.Delay)
	logger.Debug("page lookup", "page_id", id, "type", pageType, "outcome", res.Outcome.String(), "delay", res.Delay)
	return res, wait(ctx, res.Delay)
}

// wait sleeps for d unless ctx ends first. A client abandoning a request changes nothing server side.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// pageBody is the response body of a found page.
func pageBody(site *webgraph.Site, res webgraph.LookupResult, requestedAt time.Time) map[string]any {
	p := res.Page
	field, links := p.Payload.Field(p.Type)
	body := map[string]any{
		"page_id":      p.ID,
		"page_type":    p.Type,
		"link_count":   p.Payload.Len(),
		"delay_ms":     res.Delay.Milliseconds(),
		"url":          PagePath(p.ID),
		"requested_at": requestedAt.UTC().Format(time.RFC3339Nano),
		field:          links,
	}
	switch p.Type {
	case models.BehaviorCPU:
		body["hash_iterations"] = site.Puzzle().CPUIterations
	case models.BehaviorMultiSeed:
		body["hash_iterations"] = site.Puzzle().MultiIterations
	}
	return body
}

// statsBody describes the graph and the lookups served so far.
func statsBody(site *webgraph.Site, collector *metrics.Collector) map[string]any {
	return map[string]any{
		"build_id":       site.BuildID(),
		"built_at":       site.BuiltAt().UTC().Format(time.RFC3339),
		"total_pages":    site.Len(),
		"root":           site.Root().ID,
		"distribution":   site.Distribution(),
		"edges":          site.EdgeCount(),
		"avg_out_degree": site.AvgOutDegree(),
		"dead_ends":      site.DeadEnds(),
		"puzzle":         site.Puzzle(),
		"lookups":        collector.Snapshot(),
	}
}
