package world

import (
	"github.com/udisondev/gameworld/internal/constants"
	"github.com/udisondev/gameworld/internal/model"
)

// Map is the dispatcher-owned spatial store. It implements
// view.MapView. Like the rest of World, it is touched only from
// dispatcher tasks (§9 "pointer graphs in the world map" — no locking,
// since there is exactly one writer and readers only run on its turn).
type Map struct {
	tiles    map[model.Position]*model.Tile
	maxLayer int8
}

// NewMap returns an empty map with the configured maximum floor depth.
func NewMap() *Map {
	return &Map{tiles: make(map[model.Position]*model.Tile), maxLayer: constants.MapMaxLayer}
}

// Tile returns the tile at pos, creating none — absence means empty
// ground, not an error.
func (m *Map) Tile(pos model.Position) (*model.Tile, bool) {
	t, ok := m.tiles[pos]
	return t, ok
}

// MaxLayer reports the deepest floor the map defines.
func (m *Map) MaxLayer() int8 { return m.maxLayer }

// SetTile installs or replaces the tile at pos. The actual tile
// content (items, static geometry) is loaded by the external map
// collaborator named in §6 — this only stores what that collaborator
// or live gameplay produces.
func (m *Map) SetTile(pos model.Position, t *model.Tile) {
	m.tiles[pos] = t
}

// EnsureTile returns the tile at pos, creating an empty one if absent.
func (m *Map) EnsureTile(pos model.Position) *model.Tile {
	t, ok := m.tiles[pos]
	if !ok {
		t = &model.Tile{}
		m.tiles[pos] = t
	}
	return t
}
