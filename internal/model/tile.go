package model

// Tile is one map cell's stack of things, ordered the way the wire codec
// describes it: ground item, top-stacked items, creatures (most recently
// arrived first), then down-stacked items.
//
// Creatures are stored by ID only — the map/spatial collaborator resolves
// IDs to live Creature data; this keeps Tile a plain value usable by both
// the world loop and the view tracker without a dependency on a specific
// creature registry.
type Tile struct {
	Ground      *Item
	TopItems    []Item
	Creatures   []uint32 // most-recently-inserted first
	DownItems   []Item
	House       bool // true if this tile belongs to a house (affects stack cap for non-extended clients)
}

// AddCreature inserts id at the front of the creature stack (most recent
// arrival is stackpos-closest to the top, matching legacy push_front
// semantics).
func (t *Tile) AddCreature(id uint32) {
	t.Creatures = append([]uint32{id}, t.Creatures...)
}

// RemoveCreature removes id from the stack. Reports whether it was present.
func (t *Tile) RemoveCreature(id uint32) bool {
	for i, c := range t.Creatures {
		if c == id {
			t.Creatures = append(t.Creatures[:i], t.Creatures[i+1:]...)
			return true
		}
	}
	return false
}

// StackposOf returns the 0-based stack position of id within the full
// ground+top+creatures+down ordering, or -1 if absent.
func (t *Tile) StackposOf(id uint32) int {
	pos := 0
	if t.Ground != nil {
		pos++
	}
	pos += len(t.TopItems)
	for _, c := range t.Creatures {
		if c == id {
			return pos
		}
		pos++
	}
	return -1
}

// ThingCount returns the total number of things stacked on the tile
// (ground + top items + creatures + down items), uncapped.
func (t *Tile) ThingCount() int {
	n := len(t.TopItems) + len(t.Creatures) + len(t.DownItems)
	if t.Ground != nil {
		n++
	}
	return n
}
