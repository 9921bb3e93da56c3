package hashchain

import (
	"crypto/md5"
	"encoding/hex"
	"testing"
)

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestChainMatchesRepeatedDigest(t *testing.T) {
	h, err := New("md5")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := "0123456789abcdef"
	for i := 0; i < 5; i++ {
		want = md5Hex(want)
	}
	if got := h.Chain("0123456789abcdef", 5); got != want {
		t.Fatalf("Chain = %s, want %s", got, want)
	}
}

func TestChainKnownVector(t *testing.T) {
	h, _ := New("md5")
	// md5("") is a well known constant
	if got := h.Chain("", 1); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected md5 of empty string: %s", got)
	}
}

func TestChainZeroIterations(t *testing.T) {
	h, _ := New("sha256")
	if got := h.Chain("seed", 0); got != "seed" {
		t.Fatalf("expected seed unchanged, got %s", got)
	}
}

func TestOutputPrefix(t *testing.T) {
	h, _ := New("md5")
	full := h.Chain("abc", 3)
	if got := h.Output("abc", 3, 6); got != full[:6] {
		t.Fatalf("Output = %s, want %s", got, full[:6])
	}
	if got := h.Output("abc", 3, 100); got != full {
		t.Fatalf("Output with long length should return whole digest, got %s", got)
	}
}

func TestAlgorithms(t *testing.T) {
	tests := []struct {
		alg       string
		digestLen int
	}{
		{"md5", 32},
		{"sha256", 64},
		{"sha3-256", 64},
	}
	for _, tt := range tests {
		t.Run(tt.alg, func(t *testing.T) {
			h, err := New(tt.alg)
			if err != nil {
				t.Fatalf("New(%s): %v", tt.alg, err)
			}
			if h.DigestLen() != tt.digestLen {
				t.Fatalf("DigestLen = %d, want %d", h.DigestLen(), tt.digestLen)
			}
			out := h.Chain("seed", 2)
			if len(out) != tt.digestLen {
				t.Fatalf("chain output length = %d, want %d", len(out), tt.digestLen)
			}
			if h.Chain("seed", 2) != out {
				t.Fatal("chain must be deterministic")
			}
		})
	}
}

func TestAlgorithmsDiffer(t *testing.T) {
	a, _ := New("sha256")
	b, _ := New("sha3-256")
	if a.Chain("seed", 1) == b.Chain("seed", 1) {
		t.Fatal("sha256 and sha3-256 should not agree")
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("crc32"); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
