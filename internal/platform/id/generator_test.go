package id

import (
	"strings"
	"testing"
)

func TestRandomGeneratorPrefix(t *testing.T) {
	gen := NewRandomGenerator().WithPrefix("slot_")
	a, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	b, _ := gen.NewID()

	if !strings.HasPrefix(a, "slot_") || len(a) != len("slot_")+24 {
		t.Fatalf("unexpected id %q", a)
	}
	if a == b {
		t.Fatalf("ids should differ")
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("team")
	first, _ := gen.NewID()
	second, _ := gen.NewID()
	if first != "team-1" || second != "team-2" {
		t.Fatalf("unexpected sequence %q, %q", first, second)
	}
}
