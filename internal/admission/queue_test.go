package admission

import (
	"testing"
	"time"
)

func TestAdmitBelowCapacity(t *testing.T) {
	q := New(10, func() int { return 0 })
	slot := q.Admit(Candidate{PlayerGUID: 1})
	if slot != 0 {
		t.Fatalf("expected immediate admission, got slot %d", slot)
	}
}

func TestZeroCapacityUnlimited(t *testing.T) {
	q := New(0, func() int { return 1_000_000 })
	if slot := q.Admit(Candidate{PlayerGUID: 1}); slot != 0 {
		t.Fatalf("cap=0 must always admit, got slot %d", slot)
	}
}

func TestAlwaysAdmitBypassesQueue(t *testing.T) {
	online := 5
	q := New(1, func() int { return online })
	if slot := q.Admit(Candidate{PlayerGUID: 1, AlwaysAdmit: true}); slot != 0 {
		t.Fatalf("always-admit must return slot 0, got %d", slot)
	}
}

func TestEnqueueWhenSaturated(t *testing.T) {
	online := 1
	q := New(1, func() int { return online })

	slot := q.Admit(Candidate{PlayerGUID: 2})
	if slot == 0 {
		t.Fatalf("second player should be queued, got admitted")
	}
	if slot != 1 {
		t.Fatalf("expected slot 1, got %d", slot)
	}
}

func TestPriorityDrainsBeforeStandard(t *testing.T) {
	online := 10
	q := New(10, func() int { return online })

	// saturate so both lists start non-empty
	q.priority = append(q.priority, entry{guid: 100, expiry: time.Now().Add(time.Minute)})

	slot := q.Admit(Candidate{PlayerGUID: 2, Premium: false})
	if slot != 2 {
		t.Fatalf("standard entry behind one priority entry should get slot 2, got %d", slot)
	}
}

func TestAdmitOnRetryAfterCapacityFrees(t *testing.T) {
	online := 1
	q := New(1, func() int { return online })

	slot := q.Admit(Candidate{PlayerGUID: 2})
	if slot == 0 {
		t.Fatalf("expected queueing while saturated")
	}

	online = 0
	slot = q.Admit(Candidate{PlayerGUID: 2})
	if slot != 0 {
		t.Fatalf("expected admission once capacity freed, got slot %d", slot)
	}
}

func TestSweepDropsExpiredEntries(t *testing.T) {
	q := New(1, func() int { return 1 })
	fixed := time.Now()
	q.now = func() time.Time { return fixed }

	q.Admit(Candidate{PlayerGUID: 2})
	q.now = func() time.Time { return fixed.Add(time.Hour) }

	slot := q.Admit(Candidate{PlayerGUID: 3})
	if slot != 1 {
		t.Fatalf("expired entry should have been swept, expected fresh slot 1, got %d", slot)
	}
}

func TestNoDuplicateEntry(t *testing.T) {
	online := 1
	q := New(1, func() int { return online })

	q.Admit(Candidate{PlayerGUID: 2})
	q.Admit(Candidate{PlayerGUID: 2})

	if len(q.standard) != 1 {
		t.Fatalf("player must not appear twice, standard list has %d entries", len(q.standard))
	}
}
