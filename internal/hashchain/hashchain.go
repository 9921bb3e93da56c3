// Package hashchain implements the iterated one-way hash that links a seed to the
// page id (or id fragment) it reveals.
package hashchain

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Algorithm names a supported hash function.
type Algorithm string

const (
	MD5     Algorithm = "md5"
	SHA256  Algorithm = "sha256"
	SHA3256 Algorithm = "sha3-256"
)

// Hasher evaluates hash chains with one algorithm. The zero value is not usable.
type Hasher struct {
	alg     Algorithm
	newHash func() hash.Hash
}

// New returns a Hasher for the named algorithm.
func New(alg string) (Hasher, error) {
	switch Algorithm(alg) {
	case MD5:
		return Hasher{alg: MD5, newHash: md5.New}, nil
	case SHA256:
		return Hasher{alg: SHA256, newHash: sha256.New}, nil
	case SHA3256:
		return Hasher{alg: SHA3256, newHash: sha3.New256}, nil
	default:
		return Hasher{}, fmt.Errorf("unsupported hash algorithm %q", alg)
	}
}

// Algorithm returns the algorithm name.
func (h Hasher) Algorithm() Algorithm {
	return h.alg
}

// DigestLen returns the number of hex characters one hash round produces.
func (h Hasher) DigestLen() int {
	return h.newHash().Size() * 2
}

// Chain hashes seed n times, feeding each round the lowercase hex digest of the previous one.
// Chain(seed, 0) returns seed unchanged.
func (h Hasher) Chain(seed string, n int) string {
	if n <= 0 {
		return seed
	}
	hh := h.newHash()
	sum := make([]byte, 0, hh.Size())
	buf := make([]byte, hh.Size()*2)
	cur := []byte(seed)
	for i := 0; i < n; i++ {
		hh.Reset()
		hh.Write(cur)
		sum = hh.Sum(sum[:0])
		hex.Encode(buf, sum)
		cur = buf
	}
	return string(cur)
}

// Output returns the first length characters of Chain(seed, n).
func (h Hasher) Output(seed string, n, length int) string {
	out := h.Chain(seed, n)
	if length < len(out) {
		return out[:length]
	}
	return out
}
