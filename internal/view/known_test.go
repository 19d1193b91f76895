package view

import "testing"

func alwaysVisible(uint32) bool { return true }

func TestKnownSetRegisterNewThenKnown(t *testing.T) {
	k := NewKnownSet()

	known, evicted, _ := k.Register(1, alwaysVisible)
	if known || evicted {
		t.Fatalf("first registration should be new, unevicted")
	}
	if !k.Contains(1) {
		t.Fatalf("expected id to be tracked after registration")
	}

	known, evicted, _ = k.Register(1, alwaysVisible)
	if !known || evicted {
		t.Fatalf("re-registering a known id must report known=true, evicted=false")
	}
}

func TestKnownSetEvictsInvisibleBeforeVisible(t *testing.T) {
	k := NewKnownSet()
	for i := uint32(1); i <= 250; i++ {
		k.Register(i, alwaysVisible)
	}
	if k.Len() != 250 {
		t.Fatalf("expected cap of 250, got %d", k.Len())
	}

	invisible := uint32(42)
	visible := func(id uint32) bool { return id != invisible }

	_, evicted, victim := k.Register(999, visible)
	if !evicted {
		t.Fatalf("expected eviction once at capacity")
	}
	if victim != invisible {
		t.Fatalf("expected the invisible id %d to be evicted, got %d", invisible, victim)
	}
	if k.Contains(invisible) {
		t.Fatalf("evicted id must no longer be tracked")
	}
	if !k.Contains(999) {
		t.Fatalf("newly registered id must be tracked")
	}
	if k.Len() != 250 {
		t.Fatalf("expected cap to remain at 250 after eviction, got %d", k.Len())
	}
}

func TestKnownSetRemove(t *testing.T) {
	k := NewKnownSet()
	k.Register(7, alwaysVisible)
	k.Remove(7)
	if k.Contains(7) {
		t.Fatalf("expected id to be gone after Remove")
	}
}
