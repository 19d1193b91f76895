// Package admission implements the gameworld's two-tier login queue
// (C2): premium accounts drain ahead of standard ones, entries expire
// passively, and a persistently retrying client sees its slot count
// down monotonically absent other logins (§4.2).
package admission

import (
	"sync"
	"time"

	"github.com/udisondev/gameworld/internal/constants"
)

// Candidate is everything the queue needs to know about a login
// attempt — capacity and priority decisions never touch the rest of
// the player's state.
type Candidate struct {
	PlayerGUID   int64
	Premium      bool
	AlwaysAdmit  bool // staff / bypass-capacity accounts, §4.2 step 1
}

type entry struct {
	guid   int64
	expiry time.Time
}

// Queue holds the priority and standard lists. Zero value is not
// usable; construct with New.
type Queue struct {
	mu       sync.Mutex
	capacity int
	online   func() int
	now      func() time.Time

	priority []entry
	standard []entry
}

// New builds a queue bound to a capacity and an online-count callback
// (the dispatcher's current player count — admission never keeps its
// own count to avoid drifting from the authoritative one).
func New(capacity int, online func() int) *Queue {
	return &Queue{capacity: capacity, online: online, now: time.Now}
}

// Admit runs the §4.2 algorithm for one candidate, returning the slot
// (0 = admit now). It sweeps expired entries first.
func (q *Queue) Admit(c Candidate) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if c.AlwaysAdmit {
		return 0
	}

	now := q.now()
	q.priority = sweep(q.priority, now)
	q.standard = sweep(q.standard, now)

	if q.capacity == 0 {
		return 0
	}
	if len(q.priority) == 0 && len(q.standard) == 0 && q.online() < q.capacity {
		return 0
	}

	if idx, list := findIndex(q.priority, c.PlayerGUID); list != nil {
		return q.resolveExisting(&q.priority, idx, 0, now)
	}
	if idx, list := findIndex(q.standard, c.PlayerGUID); list != nil {
		return q.resolveExisting(&q.standard, idx, len(q.priority), now)
	}

	// Not enqueued yet: append to the tail of its list and report the
	// new slot, which is that list's length (plus the other list's
	// length when appended to standard, since priority drains first).
	if c.Premium {
		q.priority = append(q.priority, entry{guid: c.PlayerGUID, expiry: now.Add(retryWait(len(q.priority)+1) + constants.AdmissionExpiryGraceSeconds*time.Second)})
		return len(q.priority)
	}
	q.standard = append(q.standard, entry{guid: c.PlayerGUID, expiry: now.Add(retryWait(len(q.priority)+len(q.standard)+1) + constants.AdmissionExpiryGraceSeconds*time.Second)})
	return len(q.priority) + len(q.standard)
}

// resolveExisting handles step 4 of §4.2 for an entry already in list:
// admit if capacity now allows it, else refresh its expiry and return
// the (unchanged) slot. ahead is how many entries in an earlier-drained
// list (priority, for a standard-list entry) count toward its slot.
func (q *Queue) resolveExisting(list *[]entry, idx, ahead int, now time.Time) int {
	slot := ahead + idx + 1
	if q.online()+slot <= q.capacity {
		*list = removeAt(*list, idx)
		return 0
	}
	wait := retryWait(slot)
	(*list)[idx].expiry = now.Add(wait + constants.AdmissionExpiryGraceSeconds*time.Second)
	return slot
}

func findIndex(list []entry, guid int64) (int, []entry) {
	for i, e := range list {
		if e.guid == guid {
			return i, list
		}
	}
	return -1, nil
}

func removeAt(list []entry, idx int) []entry {
	return append(list[:idx], list[idx+1:]...)
}

// sweep drops every expired entry, preserving order.
func sweep(list []entry, now time.Time) []entry {
	kept := list[:0]
	for _, e := range list {
		if e.expiry.After(now) {
			kept = append(kept, e)
		}
	}
	return kept
}

// retryWait is the §4.2 retry-wait step function of slot.
func retryWait(slot int) time.Duration {
	switch {
	case slot < constants.RetryWaitTinyThreshold:
		return constants.RetryWaitTiny * time.Second
	case slot < constants.RetryWaitSmallThreshold:
		return constants.RetryWaitSmall * time.Second
	case slot < constants.RetryWaitMediumThreshold:
		return constants.RetryWaitMedium * time.Second
	case slot < constants.RetryWaitLargeThreshold:
		return constants.RetryWaitLarge * time.Second
	default:
		return constants.RetryWaitHuge * time.Second
	}
}

// RetryWait exposes the retry-wait table for callers building the
// admission frame's retry byte.
func RetryWait(slot int) time.Duration { return retryWait(slot) }
