package app

import (
	"testing"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

func TestRegistryPresenceLastWriterWins(t *testing.T) {
	r := NewRegistry()
	user := domain.UserID("u1")
	first := core.NewSession("c1", user, &fakeConn{})
	second := core.NewSession("c2", user, &fakeConn{})

	r.Bind(first)
	r.Bind(second)

	if got := r.Online(); len(got) != 1 || got[0] != user {
		t.Fatalf("online = %v, want [%s]", got, user)
	}

	// The stale connection going away must not clear the newer one's slot.
	r.Unbind(first)
	if got := r.Online(); len(got) != 1 || got[0] != user {
		t.Fatalf("online after stale unbind = %v, want [%s]", got, user)
	}

	r.Unbind(second)
	if got := r.Online(); len(got) != 0 {
		t.Fatalf("online after final unbind = %v, want empty", got)
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	s := core.NewSession("c1", "u1", &fakeConn{})
	r.Bind(s)

	got, ok := r.Get("c1")
	if !ok || got != s {
		t.Fatal("bound session not retrievable")
	}
	if _, ok := r.Get("c2"); ok {
		t.Fatal("unknown conn id resolved")
	}

	r.Unbind(s)
	if _, ok := r.Get("c1"); ok {
		t.Fatal("unbound session still retrievable")
	}
	if r.SessionCount() != 0 {
		t.Fatalf("session count = %d, want 0", r.SessionCount())
	}
}
