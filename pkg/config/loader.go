package config

import (
	"fmt"
	"math"
	"os"
	"strings"
)

const hexAlphabet = "0123456789abcdef"

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate performs validation on the configuration
func Validate(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", cfg.LogFormat)
	}

	if err := validateGraph(&cfg.Graph); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	if err := validateRatios(&cfg.Ratios); err != nil {
		return fmt.Errorf("ratios: %w", err)
	}
	if err := validateDelays(&cfg.DelaysMs); err != nil {
		return fmt.Errorf("delays_ms: %w", err)
	}
	if cfg.Failure.Rate < 0 || cfg.Failure.Rate > 1 {
		return fmt.Errorf("failure: rate must be between 0 and 1, got %f", cfg.Failure.Rate)
	}
	if err := validateHash(&cfg.Hash, cfg.Graph.PageIDLength); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	if err := validatePools(cfg); err != nil {
		return err
	}
	return nil
}

// validateGraph validates the graph shape
func validateGraph(g *Graph) error {
	if g.TotalPages <= 0 {
		return fmt.Errorf("total_pages must be positive, got %d", g.TotalPages)
	}
	if g.PageIDLength <= 0 || g.PageIDLength > 32 {
		return fmt.Errorf("page_id_length must be between 1 and 32, got %d", g.PageIDLength)
	}
	// Keep the id space comfortably larger than the page count so random ids stay cheap to draw.
	if space := math.Pow(16, float64(g.PageIDLength)); space < 2*float64(g.TotalPages) {
		return fmt.Errorf("page_id_length %d yields %.0f ids, too few for %d pages", g.PageIDLength, space, g.TotalPages)
	}
	if g.AvgLinksPerPage < 0 {
		return fmt.Errorf("avg_links_per_page cannot be negative, got %f", g.AvgLinksPerPage)
	}
	if maxAvg := float64(g.TotalPages - 1); g.TotalPages > 1 && g.AvgLinksPerPage > maxAvg {
		return fmt.Errorf("avg_links_per_page %f exceeds the maximum %f for %d pages", g.AvgLinksPerPage, maxAvg, g.TotalPages)
	}
	if g.Root == "" {
		return fmt.Errorf("root cannot be empty (use %q or a page id)", RootRandom)
	}
	if g.Root != RootRandom {
		if len(g.Root) != g.PageIDLength {
			return fmt.Errorf("root %q must be %d characters long", g.Root, g.PageIDLength)
		}
		if !isHex(g.Root) {
			return fmt.Errorf("root %q must be lowercase hex", g.Root)
		}
	}
	return nil
}

// validateRatios validates the behavior type distribution
func validateRatios(r *Ratios) error {
	for name, v := range map[string]float64{
		"regular":   r.Regular,
		"delay":     r.Delay,
		"failure":   r.Failure,
		"cpu":       r.CPU,
		"multiseed": r.MultiSeed,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, v)
		}
	}
	if math.Abs(r.Sum()-1) > 1e-6 {
		return fmt.Errorf("ratios sum to %.4f, must sum to 1", r.Sum())
	}
	if r.Regular <= 0 {
		return fmt.Errorf("regular must be positive: the root page is always regular")
	}
	return nil
}

// validateDelays validates simulated delays
func validateDelays(d *Delays) error {
	for name, v := range map[string]int{
		"root":      d.Root,
		"regular":   d.Regular,
		"delay":     d.Delay,
		"failure":   d.Failure,
		"cpu":       d.CPU,
		"multiseed": d.MultiSeed,
	} {
		if v < 0 {
			return fmt.Errorf("%s cannot be negative, got %d", name, v)
		}
	}
	return nil
}

// validateHash validates the hash chain parameters
func validateHash(h *Hash, pageIDLength int) error {
	digestLen := map[string]int{
		"md5":      32,
		"sha256":   64,
		"sha3-256": 64,
	}
	n, ok := digestLen[h.Algorithm]
	if !ok {
		return fmt.Errorf("invalid algorithm: %s (must be md5, sha256, or sha3-256)", h.Algorithm)
	}
	if pageIDLength > n {
		return fmt.Errorf("page_id_length %d exceeds the %d hex digits produced by %s", pageIDLength, n, h.Algorithm)
	}
	if h.SeedAlphabet == "" {
		return fmt.Errorf("seed_alphabet cannot be empty")
	}
	if h.SeedLength <= 0 {
		return fmt.Errorf("seed_length must be positive, got %d", h.SeedLength)
	}
	if h.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", h.Workers)
	}
	return nil
}

// validatePools validates long and short pool parameters
func validatePools(cfg *Config) error {
	lp := cfg.LongPool
	if lp.Iterations <= 0 {
		return fmt.Errorf("long_pool: iterations must be positive, got %d", lp.Iterations)
	}
	if lp.MinSeedsPerID <= 0 {
		return fmt.Errorf("long_pool: min_seeds_per_id must be positive, got %d", lp.MinSeedsPerID)
	}
	if lp.MaxAttempts < 0 {
		return fmt.Errorf("long_pool: max_attempts cannot be negative, got %d", lp.MaxAttempts)
	}

	sp := cfg.ShortPool
	if sp.Iterations <= 0 {
		return fmt.Errorf("short_pool: iterations must be positive, got %d", sp.Iterations)
	}
	if sp.FragmentLength <= 0 || sp.FragmentLength > 3 {
		return fmt.Errorf("short_pool: fragment_length must be between 1 and 3, got %d", sp.FragmentLength)
	}
	if cfg.Graph.PageIDLength%sp.FragmentLength != 0 {
		return fmt.Errorf("short_pool: fragment_length %d must divide page_id_length %d", sp.FragmentLength, cfg.Graph.PageIDLength)
	}
	if sp.MinSeedsPerFragment < 0 {
		return fmt.Errorf("short_pool: min_seeds_per_fragment cannot be negative, got %d", sp.MinSeedsPerFragment)
	}
	if sp.MaxAttempts < 0 {
		return fmt.Errorf("short_pool: max_attempts cannot be negative, got %d", sp.MaxAttempts)
	}
	return nil
}

func isHex(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune(hexAlphabet, c) {
			return false
		}
	}
	return true
}
