package view

import (
	"sync"

	"github.com/udisondev/gameworld/internal/constants"
)

// KnownSet is the per-session bounded cache of creature ids the client
// has already been told about (§3, §4.4). It is private to its owning
// session — never shared or mutated from outside.
type KnownSet struct {
	mu  sync.Mutex
	ids map[uint32]struct{}
}

// NewKnownSet returns an empty known-entity set.
func NewKnownSet() *KnownSet {
	return &KnownSet{ids: make(map[uint32]struct{}, constants.KnownEntityCap)}
}

// Len reports how many entities are currently tracked.
func (k *KnownSet) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.ids)
}

// Contains reports whether id has already been sent to the client.
func (k *KnownSet) Contains(id uint32) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.ids[id]
	return ok
}

// Remove drops id from the set, e.g. when the client is told the
// creature disappeared without a replacement arriving.
func (k *KnownSet) Remove(id uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.ids, id)
}

// Register inserts a creature id the session is about to describe to the
// client. If id is already known, known=true and no eviction happens. If
// inserting id would exceed the cap, a victim is evicted first (visible
// reports whether a given id is currently visible to this session —
// evicting an invisible one is preferred; evicted indicates whether any
// id had to be removed to make room, and victim names it).
//
// Eviction is performed as "pick a victim, remove it, then insert the
// new id" — never erase-after-insert iterator arithmetic, which is the
// fragile pattern flagged as an open question in the design notes.
func (k *KnownSet) Register(id uint32, visible func(candidate uint32) bool) (known bool, evicted bool, victim uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.ids[id]; ok {
		return true, false, 0
	}

	if len(k.ids) >= constants.KnownEntityCap {
		victim, evicted = k.pickVictim(id, visible)
		if evicted {
			delete(k.ids, victim)
		}
	}

	k.ids[id] = struct{}{}
	return false, evicted, victim
}

// pickVictim prefers any tracked id the session can no longer see over
// id itself; falling back to an arbitrary tracked id other than id.
func (k *KnownSet) pickVictim(id uint32, visible func(candidate uint32) bool) (uint32, bool) {
	for candidate := range k.ids {
		if !visible(candidate) {
			return candidate, true
		}
	}
	for candidate := range k.ids {
		if candidate != id {
			return candidate, true
		}
	}
	return 0, false
}
