package session

import (
	"time"

	"github.com/udisondev/gameworld/internal/model"
	"github.com/udisondev/gameworld/internal/wire"
)

// opcodeHandler parses an inbound payload on the reading goroutine and
// posts a dispatcher task. It never mutates world state directly (§5).
type opcodeHandler func(s *Session, r *wire.Reader)

// playingTable and accountManagerTable are the two dispatch tables
// named in §4.3. AccountManager's is a strict subset.
var playingTable = map[byte]opcodeHandler{
	0x0F: (*Session).handleLogoutOnDead,
	0x14: (*Session).handleLogout,
	0x1E: (*Session).handlePing,
	0x32: (*Session).handleExtendedOpcode,
	0x64: (*Session).handleAutoWalk,
	0x65: handleTurnFactory(model.DirectionNorth),
	0x66: handleTurnFactory(model.DirectionEast),
	0x67: handleTurnFactory(model.DirectionSouth),
	0x68: handleTurnFactory(model.DirectionWest),
	0x96: (*Session).handleSay,
}

var accountManagerTable = map[byte]opcodeHandler{
	0x0F: (*Session).handleLogoutOnDead,
	0x14: (*Session).handleLogout,
	0x1E: (*Session).handlePing,
	0x32: (*Session).handleExtendedOpcode,
	0x96: (*Session).handleSay,
}

func (s *Session) dispatchOpcode(opcode byte, r *wire.Reader) {
	table := playingTable
	if s.State() == StateAccountManager {
		table = accountManagerTable
	}
	handler, ok := table[opcode]
	if !ok {
		// Opcodes outside the table are silently ignored (§4.3 dispatch
		// category iii) — scripting only ever sees the extended opcode
		// (0x32, handleExtendedOpcode) and the other hooks wired inline
		// at logout/say/login. 0x0F without a bound player still
		// disconnects, matching the Handshake/Queued/Loading states.
		if opcode == 0x0F && s.Player() == nil {
			s.Close()
		}
		return
	}
	handler(s, r)
}

func (s *Session) handleLogoutOnDead(r *wire.Reader) {
	p := s.Player()
	if p == nil {
		s.Close()
		return
	}
	cur, _ := p.Health()
	if cur <= 0 {
		s.handleLogout(r)
	}
}

func (s *Session) handleLogout(r *wire.Reader) {
	p := s.Player()
	s.world.Dispatcher.Post(func() {
		if p != nil && s.script != nil {
			s.script.OnLogout(p)
		}
		s.Close()
	})
}

func (s *Session) handlePing(r *wire.Reader) {
	s.lastPong.Store(time.Now().Unix())
}

func (s *Session) handleExtendedOpcode(r *wire.Reader) {
	subOp, err := r.Byte()
	if err != nil {
		return
	}
	data, err := r.String()
	if err != nil {
		return
	}
	p := s.Player()
	s.world.Dispatcher.Post(func() {
		if p != nil && s.script != nil {
			s.script.OnExtendedOpcode(p, subOp, data)
		}
	})
}

// handleAutoWalk parses the direction list inbound as §6 describes it.
// A count inconsistent with the remaining buffer silently drops the
// opcode rather than disconnecting (§4.3 "Failure policy").
func (s *Session) handleAutoWalk(r *wire.Reader) {
	n, err := r.Byte()
	if err != nil {
		return
	}
	dirs := make([]model.Direction, 0, n)
	for i := byte(0); i < n; i++ {
		b, err := r.Byte()
		if err != nil {
			return
		}
		d := model.Direction(b)
		if !d.Valid() {
			return
		}
		dirs = append(dirs, d)
	}

	p := s.Player()
	if p == nil {
		return
	}
	deadline := time.Now().Add(2 * time.Second)
	s.world.Dispatcher.PostExpiring(func() {
		s.applyAutoWalk(p, dirs)
	}, deadline)
}

func (s *Session) applyAutoWalk(p *model.Player, dirs []model.Direction) {
	pos := p.Position()
	for _, d := range dirs {
		dx, dy := d.Delta()
		pos = pos.Add(dx, dy, 0)
		p.SetDirection(d)
	}
	from := p.Position()
	p.SetPosition(pos)
	s.world.BroadcastCreatureMoved(p.CreatureID(), from, pos)
}

// handleTurnFactory returns a handler bound to a fixed cardinal direction
// (opcodes 0x65..0x68 per §6 — turn/move cardinal).
func handleTurnFactory(dir model.Direction) opcodeHandler {
	return func(s *Session, r *wire.Reader) {
		p := s.Player()
		if p == nil {
			return
		}
		s.world.Dispatcher.PostExpiring(func() {
			p.SetDirection(dir)
		}, time.Now().Add(time.Second))
	}
}

// handleSay enforces the 255-byte cap (§4.3 "Failure policy").
func (s *Session) handleSay(r *wire.Reader) {
	typ, err := r.Byte()
	if err != nil {
		return
	}
	text, err := r.String()
	if err != nil || len(text) > 255 {
		return
	}
	_ = typ
	p := s.Player()
	if p == nil {
		return
	}
	s.world.Dispatcher.Post(func() {
		if s.script != nil && s.script.OnSay(p, text) {
			return
		}
	})
}
