package config

import (
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

func TestParseConfigYAMLStringOverlaysDefaults(t *testing.T) {
	yamlText := `
log_level: debug
graph:
  total_pages: 1000
  avg_links_per_page: 4
ratios: {regular: 0.5, delay: 0.2, failure: 0.1, cpu: 0.1, multiseed: 0.1}
long_pool:
  iterations: 10
`

	cfg, err := ParseConfigYAMLString(yamlText)
	if err != nil {
		t.Fatalf("ParseConfigYAMLString failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log_level debug, got %q", cfg.LogLevel)
	}
	if cfg.Graph.TotalPages != 1000 {
		t.Fatalf("expected 1000 pages, got %d", cfg.Graph.TotalPages)
	}
	if cfg.Graph.PageIDLength != 6 {
		t.Fatalf("expected default page_id_length 6, got %d", cfg.Graph.PageIDLength)
	}
	if cfg.Ratios.Delay != 0.2 {
		t.Fatalf("expected delay ratio 0.2, got %f", cfg.Ratios.Delay)
	}
	if cfg.LongPool.Iterations != 10 {
		t.Fatalf("expected long pool iterations 10, got %d", cfg.LongPool.Iterations)
	}
	if cfg.ShortPool.Iterations != 1_250_000 {
		t.Fatalf("expected default short pool iterations, got %d", cfg.ShortPool.Iterations)
	}
}

func TestParseConfigYAMLStringInvalid(t *testing.T) {
	tests := []struct {
		name     string
		yamlText string
		wantErr  string
	}{
		{
			name:     "Malformed yaml",
			yamlText: "graph: [",
			wantErr:  "failed to parse config yaml",
		},
		{
			name:     "Ratios do not sum to one",
			yamlText: "ratios: {regular: 0.5, delay: 0.1, failure: 0.1, cpu: 0.1, multiseed: 0.1}",
			wantErr:  "must sum to 1",
		},
		{
			name:     "No regular share",
			yamlText: "ratios: {regular: 0, delay: 0.4, failure: 0.2, cpu: 0.2, multiseed: 0.2}",
			wantErr:  "regular must be positive",
		},
		{
			name:     "Negative ratio",
			yamlText: "ratios: {regular: 1.1, delay: -0.1, failure: 0, cpu: 0, multiseed: 0}",
			wantErr:  "must be between 0 and 1",
		},
		{
			name:     "Failure rate out of range",
			yamlText: "failure: {rate: 1.5}",
			wantErr:  "rate must be between 0 and 1",
		},
		{
			name:     "Unknown hash algorithm",
			yamlText: "hash: {algorithm: crc32}",
			wantErr:  "invalid algorithm",
		},
		{
			name:     "Id space too small",
			yamlText: "graph: {total_pages: 100, page_id_length: 1}",
			wantErr:  "too few for 100 pages",
		},
		{
			name:     "Fragment does not divide id length",
			yamlText: "short_pool: {fragment_length: 4}",
			wantErr:  "fragment_length must be between 1 and 3",
		},
		{
			name:     "Fragment length mismatch",
			yamlText: "graph: {page_id_length: 5}\nshort_pool: {fragment_length: 2}",
			wantErr:  "must divide page_id_length",
		},
		{
			name:     "Root wrong length",
			yamlText: "graph: {root: abc}",
			wantErr:  "must be 6 characters long",
		},
		{
			name:     "Root not hex",
			yamlText: "graph: {root: zzzzzz}",
			wantErr:  "must be lowercase hex",
		},
		{
			name:     "Negative delay",
			yamlText: "delays_ms: {delay: -5}",
			wantErr:  "delay cannot be negative",
		},
		{
			name:     "Invalid log level",
			yamlText: "log_level: verbose",
			wantErr:  "invalid log_level",
		},
		{
			name:     "Too many links",
			yamlText: "graph: {total_pages: 4, page_id_length: 6, avg_links_per_page: 5}",
			wantErr:  "exceeds the maximum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfigYAMLString(tt.yamlText)
			if err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestRatiosShare(t *testing.T) {
	r := Default().Ratios
	total := 0.0
	for _, bt := range models.BehaviorTypes {
		total += r.Share(bt)
	}
	if total < 0.999999 || total > 1.000001 {
		t.Fatalf("expected shares to sum to 1, got %f", total)
	}
	if r.Share(models.BehaviorRegular) != 0.6 {
		t.Fatalf("expected regular share 0.6, got %f", r.Share(models.BehaviorRegular))
	}
}

func TestDelaysFor(t *testing.T) {
	d := Default().DelaysMs
	if got := d.For(models.BehaviorDelay).Milliseconds(); got != 5000 {
		t.Fatalf("expected 5000ms for delay pages, got %d", got)
	}
	if got := d.For(models.BehaviorCPU).Milliseconds(); got != 100 {
		t.Fatalf("expected 100ms for cpu pages, got %d", got)
	}
	if d.RootDelay() != 0 {
		t.Fatalf("expected zero root delay, got %v", d.RootDelay())
	}
}

func TestDelaysMax(t *testing.T) {
	if got := Default().DelaysMs.Max().Milliseconds(); got != 5000 {
		t.Fatalf("expected 5000ms, got %d", got)
	}
	if got := (Delays{Root: 700}).Max().Milliseconds(); got != 700 {
		t.Fatalf("expected the root delay to count, got %d", got)
	}
}
