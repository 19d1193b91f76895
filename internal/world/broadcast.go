package world

import (
	"github.com/udisondev/gameworld/internal/model"
	"github.com/udisondev/gameworld/internal/view"
)

// BroadcastTileChanged notifies every session whose viewport currently
// covers pos (§4.5 "spectator set"). Must run on the dispatcher.
func (w *World) BroadcastTileChanged(pos model.Position) {
	w.specMu.Lock()
	defer w.specMu.Unlock()
	for _, s := range w.spectators {
		if view.NewViewport(s.Position()).CanSee(pos) {
			s.NotifyTileChanged(pos)
		}
	}
}

// BroadcastCreatureMoved notifies every session that could see either
// endpoint of a move, letting each session's own view tracker decide
// between a full move diff, a remove, or an add (§4.4 "Movement
// diffs" — the world only establishes who gets told, not how).
func (w *World) BroadcastCreatureMoved(id uint32, from, to model.Position) {
	w.specMu.Lock()
	defer w.specMu.Unlock()
	for _, s := range w.spectators {
		vp := view.NewViewport(s.Position())
		if vp.CanSee(from) || vp.CanSee(to) {
			s.NotifyCreatureMoved(id, from, to)
		}
	}
}
