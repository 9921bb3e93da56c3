package metrics

import (
	"sort"
	"time"
)

// Metric names
const (
	MetricLookupsTotal   = "webgraph_lookups_total"
	MetricSimulatedDelay = "webgraph_simulated_delay_ms"
	MetricPages          = "webgraph_pages"
)

// Label names and values
const (
	LabelType    = "type"
	LabelOutcome = "outcome"
	TypeUnknown  = "unknown"
)

// Snapshot is the in-memory view of recorded lookups.
type Snapshot struct {
	StartTime    time.Time             `json:"start_time"`
	Uptime       string                `json:"uptime"`
	TotalLookups int64                 `json:"total_lookups"`
	ByType       map[string]*TypeStats `json:"by_type"`
}

// TypeStats aggregates the lookups of one page type.
type TypeStats struct {
	Lookups  int64            `json:"lookups"`
	Outcomes map[string]int64 `json:"outcomes"`
	DelayMs  *Aggregation     `json:"delay_ms,omitempty"`
}

// Aggregation summarizes a set of samples.
type Aggregation struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// calculateAggregation calculates aggregated statistics; values is sorted in place.
func calculateAggregation(values []float64) *Aggregation {
	if len(values) == 0 {
		return nil
	}

	sort.Float64s(values)

	count := int64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return &Aggregation{
		Count: count,
		Sum:   sum,
		Min:   values[0],
		Max:   values[len(values)-1],
		Mean:  sum / float64(count),
		P50:   calculatePercentile(values, 0.50),
		P95:   calculatePercentile(values, 0.95),
		P99:   calculatePercentile(values, 0.99),
	}
}

// calculatePercentile calculates the percentile value from a sorted slice
func calculatePercentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0.0
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	index := p * float64(len(sortedValues)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sortedValues) {
		return sortedValues[len(sortedValues)-1]
	}

	weight := index - float64(lower)
	return sortedValues[lower]*(1-weight) + sortedValues[upper]*weight
}
