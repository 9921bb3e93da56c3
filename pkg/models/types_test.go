package models

import (
	"encoding/json"
	"testing"
)

func TestParseBehaviorType(t *testing.T) {
	tests := []struct {
		in      string
		want    BehaviorType
		wantErr bool
	}{
		{"regular", BehaviorRegular, false},
		{"delay", BehaviorDelay, false},
		{"failure", BehaviorFailure, false},
		{"cpu", BehaviorCPU, false},
		{"multiseed", BehaviorMultiSeed, false},
		{"core", BehaviorMultiSeed, false},
		{"", "", true},
		{"CPU", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBehaviorType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseBehaviorType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseBehaviorType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPuzzle(t *testing.T) {
	for _, bt := range BehaviorTypes {
		want := bt == BehaviorCPU || bt == BehaviorMultiSeed
		if bt.IsPuzzle() != want {
			t.Fatalf("%s.IsPuzzle() = %v", bt, !want)
		}
	}
}

func TestOriginString(t *testing.T) {
	if OriginLongPool.String() != "long_pool" || OriginShortPool.String() != "short_pool" || OriginSynthetic.String() != "synthetic" {
		t.Fatalf("unexpected origin names")
	}
	if Origin(9).String() != "origin(9)" {
		t.Fatalf("unexpected name for unknown origin: %s", Origin(9))
	}
}

func TestSeedMarshalsAsValue(t *testing.T) {
	data, err := json.Marshal([]Seed{{Value: "00ff", Iterations: 3, Output: "a"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["00ff"]` {
		t.Fatalf("expected bare seed values, got %s", data)
	}
}
