package relay

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	s := &Session{}

	r.Register("alice@example.com", s)

	if got := r.Lookup("alice@example.com"); got != s {
		t.Fatal("expected registered session back from lookup")
	}
	if r.Count() != 1 {
		t.Fatalf("expected count 1, got %d", r.Count())
	}
}

func TestLookupAbsentReturnsNil(t *testing.T) {
	r := NewRegistry()
	if got := r.Lookup("nobody@example.com"); got != nil {
		t.Fatal("expected nil for unregistered identity")
	}
}

func TestLastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	first := &Session{}
	second := &Session{}

	r.Register("alice@example.com", first)
	r.Register("alice@example.com", second)

	if got := r.Lookup("alice@example.com"); got != second {
		t.Fatal("expected newer registration to win")
	}
	if r.Count() != 1 {
		t.Fatalf("expected count 1, got %d", r.Count())
	}
}

func TestUnregisterRemovesOwnMapping(t *testing.T) {
	r := NewRegistry()
	s := &Session{}
	r.Register("alice@example.com", s)

	if !r.Unregister("alice@example.com", s) {
		t.Fatal("expected unregister to succeed")
	}
	if r.Lookup("alice@example.com") != nil {
		t.Fatal("expected identity to be gone")
	}
}

func TestUnregisterDoesNotEvictSuccessor(t *testing.T) {
	r := NewRegistry()
	old := &Session{}
	replacement := &Session{}

	r.Register("alice@example.com", old)
	r.Register("alice@example.com", replacement)

	if r.Unregister("alice@example.com", old) {
		t.Fatal("expected stale unregister to be refused")
	}
	if got := r.Lookup("alice@example.com"); got != replacement {
		t.Fatal("expected successor to remain registered")
	}
}

func TestUnregisterAbsentIdentity(t *testing.T) {
	r := NewRegistry()
	if r.Unregister("nobody@example.com", &Session{}) {
		t.Fatal("expected unregister of absent identity to be refused")
	}
}
