package seedpool

import (
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
)

// Pool indexes seeds by the output their hash chain produces and tracks which seeds
// have been handed out. A Pool is mutated only while the graph is being built.
type Pool struct {
	name       string
	iterations int
	outputLen  int
	buckets    map[string]*bucket
	keys       []string
}

type bucket struct {
	entries []entry
	unused  int
}

type entry struct {
	seed models.Seed
	used bool
}

func newPool(name string, iterations, outputLen int) *Pool {
	return &Pool{
		name:       name,
		iterations: iterations,
		outputLen:  outputLen,
		buckets:    make(map[string]*bucket),
	}
}

// Name returns the pool name ("long" or "short").
func (p *Pool) Name() string { return p.name }

// Iterations returns the hash chain length used by every seed in the pool.
func (p *Pool) Iterations() int { return p.iterations }

// OutputLen returns the number of characters each seed produces.
func (p *Pool) OutputLen() int { return p.outputLen }

// Outputs returns the bucket keys in the order they were first filled.
func (p *Pool) Outputs() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Contains reports whether the pool has a bucket for output.
func (p *Pool) Contains(output string) bool {
	_, ok := p.buckets[output]
	return ok
}

// Len returns the total number of seeds in the pool.
func (p *Pool) Len() int {
	n := 0
	for _, b := range p.buckets {
		n += len(b.entries)
	}
	return n
}

// Available returns the number of unused seeds producing output.
func (p *Pool) Available(output string) int {
	b, ok := p.buckets[output]
	if !ok {
		return 0
	}
	return b.unused
}

// Seeds returns every seed producing output, used or not, in insertion order.
func (p *Pool) Seeds(output string) []models.Seed {
	b, ok := p.buckets[output]
	if !ok {
		return nil
	}
	seeds := make([]models.Seed, len(b.entries))
	for i, e := range b.entries {
		seeds[i] = e.seed
	}
	return seeds
}

// All returns every seed in the pool, bucket by bucket.
func (p *Pool) All() []models.Seed {
	all := make([]models.Seed, 0, p.Len())
	for _, k := range p.keys {
		all = append(all, p.Seeds(k)...)
	}
	return all
}

// Take marks the first unused seed producing output as used and returns it.
func (p *Pool) Take(output string) (models.Seed, bool) {
	b, ok := p.buckets[output]
	if !ok || b.unused == 0 {
		return models.Seed{}, false
	}
	for i := range b.entries {
		if !b.entries[i].used {
			b.entries[i].used = true
			b.unused--
			return b.entries[i].seed, true
		}
	}
	return models.Seed{}, false
}

func (p *Pool) add(seed models.Seed) {
	b, ok := p.buckets[seed.Output]
	if !ok {
		b = &bucket{}
		p.buckets[seed.Output] = b
		p.keys = append(p.keys, seed.Output)
	}
	b.entries = append(b.entries, entry{seed: seed})
	b.unused++
}

func (p *Pool) size(output string) int {
	if b, ok := p.buckets[output]; ok {
		return len(b.entries)
	}
	return 0
}

// retain drops every bucket not listed in keep, preserving keep's order.
func (p *Pool) retain(keep []string) {
	buckets := make(map[string]*bucket, len(keep))
	for _, k := range keep {
		buckets[k] = p.buckets[k]
	}
	p.buckets = buckets
	p.keys = append([]string(nil), keep...)
}
