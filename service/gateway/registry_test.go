package gateway

import (
	"reflect"
	"testing"
)

func TestRegistryRegisterLookup(t *testing.T) {
	reg := NewRegistry()

	c1 := NewClient("conn-1", "u1", nil)
	if displaced := reg.Register(c1); displaced != nil {
		t.Fatalf("first register must not displace, got %+v", displaced)
	}

	got, ok := reg.Lookup("u1")
	if !ok || got != c1 {
		t.Fatalf("lookup after register: got %v ok=%v", got, ok)
	}
	if _, ok := reg.Lookup("u2"); ok {
		t.Fatal("lookup of unknown user must miss")
	}
	if reg.Count() != 1 {
		t.Fatalf("count = %d", reg.Count())
	}
}

func TestRegistryLatestConnectionWins(t *testing.T) {
	reg := NewRegistry()

	c1 := NewClient("conn-1", "u1", nil)
	c2 := NewClient("conn-2", "u1", nil)
	reg.Register(c1)

	displaced := reg.Register(c2)
	if displaced != c1 {
		t.Fatalf("reconnect must displace the old client, got %v", displaced)
	}
	got, _ := reg.Lookup("u1")
	if got != c2 {
		t.Fatalf("registry must point at the newest connection, got %v", got)
	}
	if reg.Count() != 1 {
		t.Fatalf("one user must occupy one slot, count = %d", reg.Count())
	}
}

func TestRegistryStaleUnregisterIgnored(t *testing.T) {
	reg := NewRegistry()

	c1 := NewClient("conn-1", "u1", nil)
	c2 := NewClient("conn-2", "u1", nil)
	reg.Register(c1)
	reg.Register(c2)

	// The old connection's teardown races the reconnect; it must not evict
	// the new client.
	if reg.Unregister("u1", "conn-1") {
		t.Fatal("stale unregister must be a no-op")
	}
	if _, ok := reg.Lookup("u1"); !ok {
		t.Fatal("newer client was evicted by a stale unregister")
	}

	if !reg.Unregister("u1", "conn-2") {
		t.Fatal("matching unregister must succeed")
	}
	if _, ok := reg.Lookup("u1"); ok {
		t.Fatal("user still present after unregister")
	}
}

func TestRegistryListOnlineSorted(t *testing.T) {
	reg := NewRegistry()
	for _, u := range []string{"charlie", "alice", "bob"} {
		reg.Register(NewClient("conn-"+u, u, nil))
	}

	want := []string{"alice", "bob", "charlie"}
	if got := reg.ListOnline(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListOnline = %v, want %v", got, want)
	}

	reg.Unregister("bob", "conn-bob")
	want = []string{"alice", "charlie"}
	if got := reg.ListOnline(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListOnline after leave = %v, want %v", got, want)
	}
}

func TestRegistryRegisterSameClientTwice(t *testing.T) {
	reg := NewRegistry()
	c := NewClient("conn-1", "u1", nil)
	reg.Register(c)
	if displaced := reg.Register(c); displaced != nil {
		t.Fatalf("re-registering the same client must not displace itself, got %v", displaced)
	}
	if reg.Count() != 1 {
		t.Fatalf("count = %d", reg.Count())
	}
}
