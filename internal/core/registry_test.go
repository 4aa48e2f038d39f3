package core

import (
	"errors"
	"testing"
	"time"
)

func testLimiter() *MessageLimiter {
	return NewMessageLimiter(RateLimit{Messages: 10, Interval: time.Minute})
}

func TestRegistryBindIndexesByName(t *testing.T) {
	r := NewRegistry()
	r.Add("c1", NewChanSink(1), testLimiter())
	r.Add("c2", NewChanSink(1), testLimiter())
	r.Add("c3", NewChanSink(1), testLimiter())

	if err := r.Bind("c1", &Identity{Name: "alice", AccountID: 1}); err != nil {
		t.Fatalf("bind c1: %v", err)
	}
	if err := r.Bind("c3", &Identity{Name: "alice", AccountID: 1}); err != nil {
		t.Fatalf("bind c3: %v", err)
	}

	conns := r.IdentityConnections("alice")
	if len(conns) != 2 || conns[0] != "c1" || conns[1] != "c3" {
		t.Fatalf("expected [c1 c3] in login order, got %v", conns)
	}
	if got := r.IdentityConnections("bob"); len(got) != 0 {
		t.Fatalf("expected no connections for bob, got %v", got)
	}
}

func TestRegistryBindTwiceFails(t *testing.T) {
	r := NewRegistry()
	r.Add("c1", NewChanSink(1), testLimiter())

	if err := r.Bind("c1", &Identity{Name: "alice", AccountID: 1}); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	if err := r.Bind("c1", &Identity{Name: "other", AccountID: 2}); !errors.Is(err, ErrIdentityBound) {
		t.Fatalf("expected ErrIdentityBound, got %v", err)
	}
	// The index still holds exactly the first binding.
	if conns := r.IdentityConnections("alice"); len(conns) != 1 {
		t.Fatalf("alice index broken: %v", conns)
	}
	if conns := r.IdentityConnections("other"); len(conns) != 0 {
		t.Fatalf("failed bind leaked into index: %v", conns)
	}
}

func TestRegistryRemoveKeepsIndexConsistent(t *testing.T) {
	r := NewRegistry()
	r.Add("c1", NewChanSink(1), testLimiter())
	r.Add("c2", NewChanSink(1), testLimiter())
	_ = r.Bind("c1", &Identity{Name: "alice", AccountID: 1})
	_ = r.Bind("c2", &Identity{Name: "alice", AccountID: 1})

	r.Remove("c1")

	if r.Get("c1") != nil {
		t.Fatalf("c1 still present after remove")
	}
	conns := r.IdentityConnections("alice")
	if len(conns) != 1 || conns[0] != "c2" {
		t.Fatalf("expected [c2], got %v", conns)
	}

	r.Remove("c2")
	if conns := r.IdentityConnections("alice"); len(conns) != 0 {
		t.Fatalf("expected empty index after last logout, got %v", conns)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d sessions", r.Len())
	}
}

func TestRegistryRemoveAnonymous(t *testing.T) {
	r := NewRegistry()
	r.Add("c1", NewChanSink(1), testLimiter())
	r.Remove("c1")
	r.Remove("c1") // idempotent

	if r.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
}
