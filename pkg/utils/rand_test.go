package utils

import (
	"math"
	"strings"
	"sync"
	"testing"
)

func TestNewRandSource(t *testing.T) {
	if NewRandSource(12345) == nil {
		t.Fatal("Expected RandSource to be created")
	}
	if NewRandSource(0) == nil {
		t.Fatal("Expected RandSource to be created with zero seed")
	}
}

func TestRandSourceDeterministic(t *testing.T) {
	a := NewRandSource(42)
	b := NewRandSource(42)
	for i := 0; i < 50; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatalf("sources with equal seeds diverged at draw %d", i)
		}
	}
}

func TestRandSourceIntn(t *testing.T) {
	rng := NewRandSource(12345)
	for i := 0; i < 100; i++ {
		val := rng.Intn(10)
		if val < 0 || val >= 10 {
			t.Errorf("Intn(10) returned value outside [0, 10): %d", val)
		}
	}
}

func TestRandSourceBernoulliBool(t *testing.T) {
	rng := NewRandSource(12345)
	p := 0.7

	trueCount := 0
	trials := 1000
	for i := 0; i < trials; i++ {
		if rng.BernoulliBool(p) {
			trueCount++
		}
	}

	proportion := float64(trueCount) / float64(trials)
	if math.Abs(proportion-p) > 0.1 {
		t.Errorf("Bernoulli bool proportion %f not close to expected %f", proportion, p)
	}

	if rng.BernoulliBool(0) {
		t.Error("BernoulliBool(0) must be false")
	}
	if !rng.BernoulliBool(1) {
		t.Error("BernoulliBool(1) must be true")
	}
}

func TestRandSourceString(t *testing.T) {
	rng := NewRandSource(1)
	alphabet := "0123456789abcdef"
	s := rng.String(alphabet, 16)
	if len(s) != 16 {
		t.Fatalf("expected length 16, got %d", len(s))
	}
	for _, c := range s {
		if !strings.ContainsRune(alphabet, c) {
			t.Fatalf("character %q outside alphabet", c)
		}
	}
}

func TestRandSourceShuffleIsPermutation(t *testing.T) {
	rng := NewRandSource(3)
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	seen := make(map[int]bool)
	for _, v := range items {
		seen[v] = true
	}
	if len(seen) != 10 {
		t.Fatalf("shuffle lost elements: %v", items)
	}
}

func TestChoice(t *testing.T) {
	rng := NewRandSource(5)
	items := []string{"a", "b", "c"}
	for i := 0; i < 20; i++ {
		got := Choice(rng, items)
		if got != "a" && got != "b" && got != "c" {
			t.Fatalf("unexpected choice %q", got)
		}
	}
}

func TestRandSourceConcurrentUse(t *testing.T) {
	rng := NewRandSource(9)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_ = rng.Float64()
			}
		}()
	}
	wg.Wait()
}
