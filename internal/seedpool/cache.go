package seedpool

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// Cache persists generated seeds between process starts so expensive hash chains
// are not recomputed. Entries are keyed by everything that shapes a seed and its
// output: algorithm, seed alphabet, seed length, iterations and output length.
//
// The file is not trusted. Seeds that do not fit the key are dropped on read, and
// the first spotChecks seeds of an entry are re-hashed; one mismatch discards the
// whole entry.
type Cache struct {
	path  string
	pools []cachedPool
}

type cacheFile struct {
	GeneratedAt int64        `json:"generated_at"`
	Pools       []cachedPool `json:"pools"`
}

type cachedPool struct {
	Name         string       `json:"name"`
	Algorithm    string       `json:"algorithm"`
	Alphabet     string       `json:"seed_alphabet"`
	SeedLength   int          `json:"seed_length"`
	Iterations   int          `json:"iterations"`
	OutputLength int          `json:"output_length"`
	Seeds        []cachedSeed `json:"seeds"`

	checked bool
}

// spotChecks is how many seeds of a cache entry are re-hashed before the entry is used.
const spotChecks = 2

func (cp *cachedPool) matches(p Params) bool {
	return cp.Algorithm == string(p.Hasher.Algorithm()) &&
		cp.Alphabet == p.Alphabet &&
		cp.SeedLength == p.SeedLength &&
		cp.Iterations == p.Iterations &&
		cp.OutputLength == p.OutputLen
}

type cachedSeed struct {
	Value  string `json:"value"`
	Output string `json:"output"`
}

// LoadCache reads the cache at path. A missing file yields an empty cache.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("read seed cache %s: %w", path, err)
	}
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return c, fmt.Errorf("decode seed cache %s: %w", path, err)
	}
	c.pools = f.Pools
	return c, nil
}

// Path returns the file backing the cache.
func (c *Cache) Path() string { return c.path }

// Seeds returns the cached seeds matching p that survive validation.
func (c *Cache) Seeds(p Params) []models.Seed {
	var seeds []models.Seed
	for i := range c.pools {
		cp := &c.pools[i]
		if !cp.matches(p) {
			continue
		}
		c.validate(cp, p)
		for _, s := range cp.Seeds {
			seeds = append(seeds, models.Seed{Value: s.Value, Iterations: cp.Iterations, Output: s.Output})
		}
	}
	return seeds
}

// validate drops malformed seeds from cp and re-hashes a sample of the rest. It runs
// once per entry.
func (c *Cache) validate(cp *cachedPool, p Params) {
	if cp.checked {
		return
	}
	cp.checked = true

	kept := cp.Seeds[:0]
	for _, s := range cp.Seeds {
		if len(s.Value) != p.SeedLength || !within(s.Value, p.Alphabet) ||
			len(s.Output) != p.OutputLen || !within(s.Output, hexAlphabet) {
			continue
		}
		kept = append(kept, s)
	}
	if dropped := len(cp.Seeds) - len(kept); dropped > 0 {
		logger.Warn("dropping malformed cached seeds", "path", c.path, "pool", cp.Name, "dropped", dropped)
	}
	cp.Seeds = kept

	for i := 0; i < spotChecks && i < len(cp.Seeds); i++ {
		s := cp.Seeds[i]
		if got := p.Hasher.Output(s.Value, p.Iterations, p.OutputLen); got != s.Output {
			logger.Warn("discarding cached pool with a wrong hash chain",
				"path", c.path, "pool", cp.Name, "seed", s.Value, "cached", s.Output, "actual", got)
			cp.Seeds = nil
			return
		}
	}
}

// Put records every seed of pool under the key described by p, merging with an
// earlier entry for the same key.
func (c *Cache) Put(p Params, pool *Pool) {
	cp := cachedPool{
		Name:         pool.Name(),
		Algorithm:    string(p.Hasher.Algorithm()),
		Alphabet:     p.Alphabet,
		SeedLength:   p.SeedLength,
		Iterations:   pool.Iterations(),
		OutputLength: pool.OutputLen(),
		checked:      true,
	}
	for _, s := range pool.All() {
		cp.Seeds = append(cp.Seeds, cachedSeed{Value: s.Value, Output: s.Output})
	}
	for i := range c.pools {
		existing := &c.pools[i]
		if !existing.matches(p) {
			continue
		}
		c.validate(existing, p)
		cp.Seeds = mergeSeeds(existing.Seeds, cp.Seeds)
		c.pools[i] = cp
		return
	}
	c.pools = append(c.pools, cp)
}

// Save writes the cache atomically: a temporary file is written then renamed.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(cacheFile{GeneratedAt: time.Now().Unix(), Pools: c.pools}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seed cache: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create seed cache dir: %w", err)
		}
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write seed cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace seed cache: %w", err)
	}
	return nil
}

func within(s, alphabet string) bool {
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}

func mergeSeeds(old, fresh []cachedSeed) []cachedSeed {
	seen := make(map[string]bool, len(old)+len(fresh))
	out := make([]cachedSeed, 0, len(old)+len(fresh))
	for _, list := range [][]cachedSeed{old, fresh} {
		for _, s := range list {
			if seen[s.Value] {
				continue
			}
			seen[s.Value] = true
			out = append(out, s)
		}
	}
	return out
}
