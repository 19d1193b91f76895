package session

import (
	"github.com/udisondev/gameworld/internal/model"
	"github.com/udisondev/gameworld/internal/view"
	"github.com/udisondev/gameworld/internal/wire"
)

// sendSelfIntroduction sends the 0x0A opcode: player id, a fixed beat
// interval, and the staff flag (§6 "Outbound highlights").
func (s *Session) sendSelfIntroduction() {
	p := s.Player()
	if p == nil {
		return
	}
	w := wire.NewWriter()
	w.Byte(0x0A)
	w.U32(p.CreatureID())
	w.U16(50)
	if p.AccountType().IsStaff() {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
	s.Send(w.Bytes())
}

// NotifyTileChanged implements world.Spectator: a generic tile-update
// diff (0x6B, "tile update" per §6) — the world only tells us which
// tile changed; describing its new contents is this session's own
// concern, deferred to the external map collaborator for item detail.
func (s *Session) NotifyTileChanged(pos model.Position) {
	w := wire.NewWriter()
	w.Byte(0x6B)
	writePosition(w, pos)
	s.Send(w.Bytes())
}

// NotifyCreatureMoved implements world.Spectator, picking the same
// three cases §4.4 "Movement diffs" describes for a non-player mover:
// both endpoints visible -> move; only old visible -> remove; only new
// visible -> add. Moves of this session's own player reach it through
// the same broadcast and the same three cases; no floor-change or
// edge-strip frames are sent for them.
func (s *Session) NotifyCreatureMoved(id uint32, from, to model.Position) {
	p := s.Player()
	if p == nil {
		return
	}
	vp := view.NewViewport(p.Position())
	seesFrom := vp.CanSee(from)
	seesTo := vp.CanSee(to)

	switch {
	case seesFrom && seesTo:
		w := wire.NewWriter()
		w.Byte(0x6D)
		writePosition(w, from)
		writePosition(w, to)
		s.Send(w.Bytes())
	case seesFrom && !seesTo:
		s.known.Remove(id)
		w := wire.NewWriter()
		w.Byte(0x6C)
		writePosition(w, from)
		s.Send(w.Bytes())
	case !seesFrom && seesTo:
		s.sendNewCreature(id, to)
	}
}

// sendNewCreature implements §4.4's known/new creature addressing.
func (s *Session) sendNewCreature(id uint32, pos model.Position) {
	known, evicted, victim := s.known.Register(id, func(candidate uint32) bool {
		c, ok := s.world.PlayerByID(candidate)
		if !ok {
			return false
		}
		return view.NewViewport(s.Position()).CanSee(c.Position())
	})

	w := wire.NewWriter()
	if known {
		w.Byte(0x62)
		w.U32(id)
		s.Send(w.Bytes())
		return
	}

	w.Byte(0x61)
	if evicted {
		w.U32(victim)
	} else {
		w.U32(0)
	}
	w.U32(id)
	if c, ok := s.world.PlayerByID(id); ok {
		writeCreatureDescriptor(w, c.Descriptor())
	}
	s.Send(w.Bytes())
}

func writePosition(w *wire.Writer, pos model.Position) {
	w.U16(uint16(pos.X))
	w.U16(uint16(pos.Y))
	w.Byte(byte(pos.Z))
}

func writeCreatureDescriptor(w *wire.Writer, d model.CreatureDescriptor) {
	w.String(d.Name)
	w.Byte(d.HealthPercent)
	w.Byte(byte(d.Direction))
	w.U16(uint16(d.Outfit.LookType))
	w.Byte(d.Outfit.Head)
	w.Byte(d.Outfit.Body)
	w.Byte(d.Outfit.Legs)
	w.Byte(d.Outfit.Feet)
	w.Byte(d.Outfit.Addons)
	w.Byte(d.Light.Level)
	w.Byte(d.Light.Color)
	w.U16(d.StepSpeed)
	w.Byte(byte(d.Skull))
	w.Byte(byte(d.PartyShield))
	w.U16(d.GuildEmblem)
	if d.Walkthrough {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}
