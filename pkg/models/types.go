package models

import (
	"encoding/json"
	"fmt"
)

// PageID is the handle by which a page in the graph is addressed.
type PageID string

// BehaviorType determines how a page responds and how its links are encoded.
type BehaviorType string

const (
	BehaviorRegular   BehaviorType = "regular"
	BehaviorDelay     BehaviorType = "delay"
	BehaviorFailure   BehaviorType = "failure"
	BehaviorCPU       BehaviorType = "cpu"
	BehaviorMultiSeed BehaviorType = "multiseed"
)

// BehaviorTypes lists every behavior type in canonical order.
var BehaviorTypes = []BehaviorType{
	BehaviorRegular,
	BehaviorDelay,
	BehaviorFailure,
	BehaviorCPU,
	BehaviorMultiSeed,
}

// ParseBehaviorType parses a behavior type name. "core" is accepted as an alias for multiseed.
func ParseBehaviorType(s string) (BehaviorType, error) {
	switch s {
	case "regular", "delay", "failure", "cpu", "multiseed":
		return BehaviorType(s), nil
	case "core":
		return BehaviorMultiSeed, nil
	default:
		return "", fmt.Errorf("unknown behavior type %q", s)
	}
}

// IsPuzzle reports whether pages of this type hide their links behind hash-chain puzzles.
func (b BehaviorType) IsPuzzle() bool {
	return b == BehaviorCPU || b == BehaviorMultiSeed
}

// Origin records where a page id came from.
type Origin int

const (
	// OriginSynthetic ids are random tokens over the id alphabet.
	OriginSynthetic Origin = iota
	// OriginLongPool ids are the output of a long-pool seed.
	OriginLongPool
	// OriginShortPool ids are assembled from short-pool fragments.
	OriginShortPool
)

func (o Origin) String() string {
	switch o {
	case OriginSynthetic:
		return "synthetic"
	case OriginLongPool:
		return "long_pool"
	case OriginShortPool:
		return "short_pool"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// Seed is a random token whose hash chain yields Output after Iterations rounds.
type Seed struct {
	Value      string
	Iterations int
	Output     string
}

// MarshalJSON encodes a seed as its bare value; clients only ever see the token.
func (s Seed) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}
