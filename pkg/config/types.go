package config

import (
	"time"

	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// RootRandom selects a fresh synthetic id for the root page.
const RootRandom = "random"

// Config represents the web graph server configuration
type Config struct {
	LogLevel   string    `yaml:"log_level"`
	LogFormat  string    `yaml:"log_format"`
	RandomSeed int64     `yaml:"random_seed"` // 0 = time based
	Graph      Graph     `yaml:"graph"`
	Ratios     Ratios    `yaml:"ratios"`
	DelaysMs   Delays    `yaml:"delays_ms"`
	Failure    Failure   `yaml:"failure"`
	Hash       Hash      `yaml:"hash"`
	LongPool   LongPool  `yaml:"long_pool"`
	ShortPool  ShortPool `yaml:"short_pool"`
	SeedCache  SeedCache `yaml:"seed_cache"`
	Server     Server    `yaml:"server"`
}

// Graph describes the shape of the page graph
type Graph struct {
	TotalPages      int     `yaml:"total_pages"`
	PageIDLength    int     `yaml:"page_id_length"`
	AvgLinksPerPage float64 `yaml:"avg_links_per_page"`
	Root            string  `yaml:"root"` // "random" or an explicit page id
}

// Ratios are the target share of each behavior type; they must sum to 1.
type Ratios struct {
	Regular   float64 `yaml:"regular"`
	Delay     float64 `yaml:"delay"`
	Failure   float64 `yaml:"failure"`
	CPU       float64 `yaml:"cpu"`
	MultiSeed float64 `yaml:"multiseed"`
}

// Delays are simulated response times per page type, in milliseconds
type Delays struct {
	Root      int `yaml:"root"`
	Regular   int `yaml:"regular"`
	Delay     int `yaml:"delay"`
	Failure   int `yaml:"failure"`
	CPU       int `yaml:"cpu"`
	MultiSeed int `yaml:"multiseed"`
}

// Failure configures failure-type pages
type Failure struct {
	Rate float64 `yaml:"rate"` // probability a failure page answers with an error
}

// Hash configures the hash chain shared by both seed pools
type Hash struct {
	Algorithm    string `yaml:"algorithm"` // md5, sha256, sha3-256
	SeedAlphabet string `yaml:"seed_alphabet"`
	SeedLength   int    `yaml:"seed_length"`
	Workers      int    `yaml:"workers"` // 0 = GOMAXPROCS
}

// LongPool configures seeds whose chain yields a whole page id
type LongPool struct {
	Iterations    int `yaml:"iterations"`
	MinSeedsPerID int `yaml:"min_seeds_per_id"`
	MaxAttempts   int `yaml:"max_attempts"` // 0 = derived from the pool size
}

// ShortPool configures seeds whose chain yields one id fragment
type ShortPool struct {
	Iterations          int `yaml:"iterations"`
	FragmentLength      int `yaml:"fragment_length"`
	MinSeedsPerFragment int `yaml:"min_seeds_per_fragment"` // 0 = auto
	MaxAttempts         int `yaml:"max_attempts"`
}

// SeedCache configures the optional on-disk seed cache
type SeedCache struct {
	Path string `yaml:"path"`
}

// Server configures the transports
type Server struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
}

// Share returns the configured ratio for a behavior type.
func (r Ratios) Share(t models.BehaviorType) float64 {
	switch t {
	case models.BehaviorRegular:
		return r.Regular
	case models.BehaviorDelay:
		return r.Delay
	case models.BehaviorFailure:
		return r.Failure
	case models.BehaviorCPU:
		return r.CPU
	case models.BehaviorMultiSeed:
		return r.MultiSeed
	default:
		return 0
	}
}

// Sum returns the total of all ratios.
func (r Ratios) Sum() float64 {
	return r.Regular + r.Delay + r.Failure + r.CPU + r.MultiSeed
}

// For returns the simulated delay for a behavior type.
func (d Delays) For(t models.BehaviorType) time.Duration {
	ms := 0
	switch t {
	case models.BehaviorRegular:
		ms = d.Regular
	case models.BehaviorDelay:
		ms = d.Delay
	case models.BehaviorFailure:
		ms = d.Failure
	case models.BehaviorCPU:
		ms = d.CPU
	case models.BehaviorMultiSeed:
		ms = d.MultiSeed
	}
	return time.Duration(ms) * time.Millisecond
}

// RootDelay returns the simulated delay of the root page.
func (d Delays) RootDelay() time.Duration {
	return time.Duration(d.Root) * time.Millisecond
}

// Max returns the longest configured delay.
func (d Delays) Max() time.Duration {
	longest := d.RootDelay()
	for _, t := range models.BehaviorTypes {
		if v := d.For(t); v > longest {
			longest = v
		}
	}
	return longest
}

// Default returns the configuration of the stock server.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Graph: Graph{
			TotalPages:      100,
			PageIDLength:    6,
			AvgLinksPerPage: 3,
			Root:            RootRandom,
		},
		Ratios: Ratios{
			Regular:   0.6,
			Delay:     0.1,
			Failure:   0.1,
			CPU:       0.1,
			MultiSeed: 0.1,
		},
		DelaysMs: Delays{
			Root:      0,
			Regular:   500,
			Delay:     5000,
			Failure:   500,
			CPU:       100,
			MultiSeed: 100,
		},
		Failure: Failure{Rate: 0.9},
		Hash: Hash{
			Algorithm:    "md5",
			SeedAlphabet: "0123456789abcdef",
			SeedLength:   16,
		},
		LongPool: LongPool{
			Iterations:    5_000_000,
			MinSeedsPerID: 1,
		},
		ShortPool: ShortPool{
			Iterations:     1_250_000,
			FragmentLength: 1,
		},
		Server: Server{
			HTTPAddr: ":5000",
			GRPCAddr: ":50051",
		},
	}
}
