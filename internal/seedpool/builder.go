// Package seedpool builds pools of random seeds whose hash chains yield target
// characters or whole page ids.
package seedpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/internal/hashchain"
	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"github.com/GoSim-25-26J-441/webgraph/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// ErrCoverageUnreachable is returned when a pool cannot reach its coverage target
// within the attempt budget.
var ErrCoverageUnreachable = errors.New("seed pool coverage unreachable")

const hexAlphabet = "0123456789abcdef"

// Params describes how seeds are drawn and hashed.
type Params struct {
	Hasher      hashchain.Hasher
	Alphabet    string
	SeedLength  int
	Iterations  int
	OutputLen   int
	MaxAttempts int
}

// Builder draws seeds from a single random source and evaluates their hash chains
// on a bounded set of workers. A seed value is never offered twice by one Builder,
// so pools built by the same Builder never share a seed.
type Builder struct {
	rng     *utils.RandSource
	workers int
	cache   *Cache
	seen    map[string]struct{}
}

// Option configures a Builder.
type Option func(*Builder)

// WithWorkers sets the number of goroutines hashing seeds. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithCache offers previously generated seeds before drawing new ones.
func WithCache(c *Cache) Option {
	return func(b *Builder) { b.cache = c }
}

// NewBuilder creates a Builder drawing from rng.
func NewBuilder(rng *utils.RandSource, opts ...Option) *Builder {
	b := &Builder{
		rng:     rng,
		workers: runtime.GOMAXPROCS(0),
		seen:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildShort builds a pool with one bucket per possible output fragment
// (16^OutputLen hex strings), each holding at least minPerBucket seeds.
func (b *Builder) BuildShort(ctx context.Context, p Params, minPerBucket int) (*Pool, error) {
	if minPerBucket <= 0 {
		return nil, fmt.Errorf("short pool: min seeds per fragment must be positive, got %d", minPerBucket)
	}
	pool := newPool("short", p.Iterations, p.OutputLen)
	total := 1
	for i := 0; i < p.OutputLen; i++ {
		total *= len(hexAlphabet)
	}
	satisfied := 0
	// Buckets keep up to twice their minimum; the surplus widens the link budget.
	offer := func(s models.Seed) {
		n := pool.size(s.Output)
		if n >= 2*minPerBucket {
			return
		}
		pool.add(s)
		if n+1 == minPerBucket {
			satisfied++
		}
	}
	done := func() bool { return satisfied == total }

	if err := b.fill(ctx, pool.name, p, offer, done); err != nil {
		return nil, fmt.Errorf("short pool (%d/%d fragments covered): %w", satisfied, total, err)
	}
	return pool, nil
}

// BuildLong builds a pool of count distinct page ids, each produced by at least
// minPerID seeds. Outputs rejected by exclude are discarded.
func (b *Builder) BuildLong(ctx context.Context, p Params, count, minPerID int, exclude func(string) bool) (*Pool, error) {
	if minPerID <= 0 {
		return nil, fmt.Errorf("long pool: min seeds per id must be positive, got %d", minPerID)
	}
	pool := newPool("long", p.Iterations, p.OutputLen)
	if count <= 0 {
		return pool, nil
	}
	var ready []string
	offer := func(s models.Seed) {
		if exclude != nil && exclude(s.Output) {
			return
		}
		n := pool.size(s.Output)
		if n >= 2*minPerID {
			return
		}
		pool.add(s)
		if n+1 == minPerID {
			ready = append(ready, s.Output)
		}
	}
	done := func() bool { return len(ready) >= count }

	if err := b.fill(ctx, pool.name, p, offer, done); err != nil {
		return nil, fmt.Errorf("long pool (%d/%d ids covered): %w", len(ready), count, err)
	}
	pool.retain(ready[:count])
	return pool, nil
}

// fill offers cached seeds, then freshly drawn ones, until done reports true.
func (b *Builder) fill(ctx context.Context, name string, p Params, offer func(models.Seed), done func() bool) error {
	start := time.Now()
	cached := 0
	if b.cache != nil {
		for _, s := range b.cache.Seeds(p) {
			if done() {
				break
			}
			if _, dup := b.seen[s.Value]; dup {
				continue
			}
			b.seen[s.Value] = struct{}{}
			offer(s)
			cached++
		}
	}

	attempts := 0
	batch := b.workers * 2
	for !done() {
		if attempts >= p.MaxAttempts {
			return fmt.Errorf("%w: %d attempts exhausted", ErrCoverageUnreachable, attempts)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n := batch
		if rem := p.MaxAttempts - attempts; n > rem {
			n = rem
		}
		values := make([]string, 0, n)
		for len(values) < n {
			v := b.rng.String(p.Alphabet, p.SeedLength)
			attempts++
			if _, dup := b.seen[v]; dup {
				if attempts >= p.MaxAttempts {
					break
				}
				continue
			}
			b.seen[v] = struct{}{}
			values = append(values, v)
		}
		outputs, err := b.hashAll(ctx, p, values)
		if err != nil {
			return err
		}
		for i, v := range values {
			offer(models.Seed{Value: v, Iterations: p.Iterations, Output: outputs[i]})
			if done() {
				break
			}
		}
	}

	logger.Info("seed pool built",
		"pool", name,
		"iterations", p.Iterations,
		"output_len", p.OutputLen,
		"attempts", attempts,
		"cached", cached,
		"elapsed", time.Since(start))
	return nil
}

// hashAll evaluates the hash chain of every value; results keep the input order.
func (b *Builder) hashAll(ctx context.Context, p Params, values []string) ([]string, error) {
	outputs := make([]string, len(values))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs[i] = p.Hasher.Output(v, p.Iterations, p.OutputLen)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
