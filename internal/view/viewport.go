// Package view implements the per-session viewport and known-entity
// tracker (§4.4 of the gameworld session core): the visibility predicate,
// the floor range a map description covers, and the known-creature
// LRU-ish cache. It has no tile, floor or map description encoders.
package view

import (
	"github.com/udisondev/gameworld/internal/constants"
	"github.com/udisondev/gameworld/internal/model"
)

// MapView is the narrow read interface the view tracker needs from the
// map/spatial-index collaborator (§6). Loading, storage format and
// spatial indexing are external concerns; the tracker only ever asks
// "what is on this tile" and "how deep does the world go".
type MapView interface {
	Tile(pos model.Position) (*model.Tile, bool)
	MaxLayer() int8
}

// Viewport is the 3D cuboid anchored on a player's position that bounds
// what the client is assumed to render (§3, §4.4).
type Viewport struct {
	Center model.Position
	HalfX  int32
	HalfY  int32
}

// NewViewport anchors a viewport on pos using the configured half-widths.
func NewViewport(pos model.Position) Viewport {
	return Viewport{Center: pos, HalfX: constants.ViewportHalfX, HalfY: constants.ViewportHalfY}
}

// CanSee reports whether the target position is within the viewport,
// applying the floor-dependent visibility rule from §4.4.
func (v Viewport) CanSee(target model.Position) bool {
	px, py, pz := v.Center.X, v.Center.Y, v.Center.Z
	x, y, z := target.X, target.Y, target.Z

	if pz <= constants.GroundLayer {
		if z > constants.GroundLayer {
			return false
		}
	} else {
		diff := int(pz) - int(z)
		if diff < 0 {
			diff = -diff
		}
		if diff > 2 {
			return false
		}
	}

	dz := int32(pz) - int32(z)
	if x < px-v.HalfX+dz || x > px+v.HalfX+1+dz {
		return false
	}
	if y < py-v.HalfY+dz || y > py+v.HalfY+1+dz {
		return false
	}
	return true
}

// FloorRange returns the [top, bottom] floor bounds (inclusive) the
// viewport's map description must cover, and the step direction: -1 for
// above-ground (ground floor 7 up to floor 0) and +1 for underground
// (two floors above the player down to two floors below, clamped to
// [0, maxLayer]).
func (v Viewport) FloorRange(maxLayer int8) (from, to int8, step int8) {
	pz := v.Center.Z
	if pz <= constants.GroundLayer {
		return constants.GroundLayer, 0, -1
	}
	from = pz - 2
	to = pz + 2
	if to > maxLayer {
		to = maxLayer
	}
	if from < 0 {
		from = 0
	}
	return from, to, 1
}
