package model

import (
	"reflect"
	"testing"
)

func TestPairKeyOrderIndependent(t *testing.T) {
	if PairKey("u1", "u2") != PairKey("u2", "u1") {
		t.Fatal("pair key must not depend on argument order")
	}
	if PairKey("u1", "u2") != "u1|u2" {
		t.Fatalf("key = %q", PairKey("u1", "u2"))
	}
}

func TestSortedPair(t *testing.T) {
	want := []string{"a", "b"}
	if got := SortedPair("b", "a"); !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedPair = %v", got)
	}
	if got := SortedPair("a", "b"); !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedPair = %v", got)
	}
}

func TestParsePairKey(t *testing.T) {
	a, b, ok := ParsePairKey("u1|u2")
	if !ok || a != "u1" || b != "u2" {
		t.Fatalf("ParsePairKey = %q %q %v", a, b, ok)
	}
	for _, bad := range []string{"", "u1", "|u2", "u1|"} {
		if _, _, ok := ParsePairKey(bad); ok {
			t.Errorf("ParsePairKey(%q) must fail", bad)
		}
	}
}

func TestCounterpart(t *testing.T) {
	c := &Conversation{Participants: []string{"u1", "u2"}}
	if got := c.Counterpart("u1"); got != "u2" {
		t.Fatalf("Counterpart = %q", got)
	}
	if got := c.Counterpart("u2"); got != "u1" {
		t.Fatalf("Counterpart = %q", got)
	}
	if got := c.Counterpart("stranger"); got != "u1" {
		t.Fatalf("Counterpart for non-member = %q", got)
	}
}
