package view

import (
	"testing"

	"github.com/udisondev/gameworld/internal/constants"
	"github.com/udisondev/gameworld/internal/model"
)

func TestCanSeeWithinBounds(t *testing.T) {
	center := model.Position{X: 100, Y: 100, Z: constants.GroundLayer}
	vp := NewViewport(center)

	if !vp.CanSee(center) {
		t.Fatalf("center must always be visible")
	}
	if !vp.CanSee(model.Position{X: 100 + constants.ViewportHalfX, Y: 100, Z: constants.GroundLayer}) {
		t.Fatalf("expected edge of viewport to be visible")
	}
	if vp.CanSee(model.Position{X: 100 + constants.ViewportHalfX + 5, Y: 100, Z: constants.GroundLayer}) {
		t.Fatalf("expected far tile to be outside viewport")
	}
}

func TestCanSeeGroundFloorNeverSeesUnderground(t *testing.T) {
	center := model.Position{X: 100, Y: 100, Z: constants.GroundLayer}
	vp := NewViewport(center)

	if vp.CanSee(model.Position{X: 100, Y: 100, Z: constants.GroundLayer + 1}) {
		t.Fatalf("a ground-floor observer must not see below-ground tiles")
	}
}

func TestCanSeeUndergroundLimitedToTwoFloorsAway(t *testing.T) {
	center := model.Position{X: 100, Y: 100, Z: constants.GroundLayer + 5}
	vp := NewViewport(center)

	if !vp.CanSee(model.Position{X: 100, Y: 100, Z: constants.GroundLayer + 7}) {
		t.Fatalf("expected a floor 2 levels down to be visible")
	}
	if vp.CanSee(model.Position{X: 100, Y: 100, Z: constants.GroundLayer + 8}) {
		t.Fatalf("expected a floor 3 levels down to be out of range")
	}
}

func TestFloorRangeAboveGround(t *testing.T) {
	vp := NewViewport(model.Position{X: 0, Y: 0, Z: constants.GroundLayer})
	from, to, step := vp.FloorRange(15)
	if from != constants.GroundLayer || to != 0 || step != -1 {
		t.Fatalf("unexpected above-ground range: %d %d %d", from, to, step)
	}
}

func TestFloorRangeUnderground(t *testing.T) {
	vp := NewViewport(model.Position{X: 0, Y: 0, Z: constants.GroundLayer + 5})
	from, to, step := vp.FloorRange(15)
	if step != 1 {
		t.Fatalf("expected underground scan to step downward, got %d", step)
	}
	if from != constants.GroundLayer+3 || to != constants.GroundLayer+7 {
		t.Fatalf("unexpected underground range: %d..%d", from, to)
	}
}
