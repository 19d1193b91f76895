package session

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	wcrypto "github.com/udisondev/gameworld/internal/crypto"
	"github.com/udisondev/gameworld/internal/model"
	"github.com/udisondev/gameworld/internal/view"
	"github.com/udisondev/gameworld/internal/wire"
	"github.com/udisondev/gameworld/internal/world"
)

// Config is the subset of the gameworld config surface (§6) a session
// needs directly; the rest lives behind LoginAuthority/BanAuthority.
type Config struct {
	MaxProtocolOutfits   int
	AllowClones          bool
	OnePlayerOnAccount   bool
	AccountManagerEnabled bool
	ReplaceKickOnLogin   bool
	IdleKickAfter        time.Duration
}

// Session is one client connection, from TCP accept to disposal (§3).
// Its network-facing goroutines (reader, writer) only ever submit
// closures to the world dispatcher; state mutation happens there.
type Session struct {
	id     uint32
	log    *slog.Logger
	conn   net.Conn
	codec  *wire.Codec
	world  *world.World
	rsa    *wcrypto.RSAKeyPair
	login  LoginAuthority
	bans   BanAuthority
	script ScriptHost
	cfg    Config

	state atomic.Int32

	osTag           uint16
	protocolVersion uint16
	extendedClient  bool
	acceptPackets   atomic.Bool

	pendingAccount   string
	pendingCharacter string
	pendingPassword  string

	mu     sync.RWMutex
	player *model.Player

	known *view.KnownSet

	reconnect world.TimerHandle
	lastPong  atomic.Int64

	outbox    chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

// New wraps a freshly accepted connection. It does not block; call
// Run to drive the handshake and protocol loop.
func New(id uint32, conn net.Conn, w *world.World, rsa *wcrypto.RSAKeyPair, login LoginAuthority, bans BanAuthority, script ScriptHost, cfg Config, log *slog.Logger) *Session {
	s := &Session{
		id:     id,
		log:    log.With(slog.Uint64("session", uint64(id))),
		conn:   conn,
		codec:  wire.NewCodec(conn),
		world:  w,
		rsa:    rsa,
		login:  login,
		bans:   bans,
		script: script,
		cfg:    cfg,
		known:  view.NewKnownSet(),
		outbox: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	s.state.Store(int32(StateHandshake))
	return s
}

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	s.acceptPackets.Store(st.AcceptsPackets())
}

// Player returns the bound player, or nil if none is bound yet (§3
// invariant: Handshake/Queued sessions have no player).
func (s *Session) Player() *model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player
}

func (s *Session) bindPlayer(p *model.Player) {
	s.mu.Lock()
	s.player = p
	s.mu.Unlock()
	p.BindSession(s)
	s.world.AddPlayer(p)
	s.world.RegisterSpectator(p.CreatureID(), s)
}

// Position satisfies world.Spectator.
func (s *Session) Position() model.Position {
	if p := s.Player(); p != nil {
		return p.Position()
	}
	return model.Position{}
}

// Run drives the session end to end: handshake, admission/loading,
// then the play loop. It blocks until the connection closes or the
// session is disposed.
func (s *Session) Run(ctx context.Context) {
	defer s.dispose()

	if err := s.runHandshake(); err != nil {
		s.log.Debug("handshake failed", slog.String("err", err.Error()))
		return
	}

	go s.writePump()

	if !s.runAuthenticateAndLoad(ctx) {
		return
	}

	s.readLoop()
}

func (s *Session) runHandshake() error {
	challenge, err := wire.NewChallenge()
	if err != nil {
		return fmt.Errorf("minting challenge: %w", err)
	}
	if err := s.codec.WriteChallenge(challenge); err != nil {
		return err
	}

	payload, err := s.codec.ReadFrame()
	if err != nil {
		return err
	}

	hs, err := wire.ParseHandshake(payload, s.rsa, challenge)
	if err != nil {
		return err
	}

	key := hs.Key
	cipher, err := wcrypto.NewXTEACipher(key)
	if err != nil {
		return err
	}
	s.codec.EnableCipher(cipher)

	s.osTag = hs.OSTag
	s.protocolVersion = hs.ProtocolVersion
	s.extendedClient = hs.ExtendedClient
	s.pendingAccount = hs.AccountName
	s.pendingCharacter = hs.CharacterName
	s.pendingPassword = hs.Password
	s.setState(StateAuthenticating)
	return nil
}

// readLoop reads one frame at a time and hands it to opcode dispatch.
// Any framing error is a protocol violation — disconnect silently
// (§4.1/§7 tier 1).
func (s *Session) readLoop() {
	for {
		payload, err := s.codec.ReadFrame()
		if err != nil {
			s.log.Debug("frame read ended", slog.String("err", err.Error()))
			return
		}
		if len(payload) == 0 {
			continue
		}
		s.onFrame(payload)
	}
}

func (s *Session) onFrame(payload []byte) {
	if !s.acceptPackets.Load() {
		return
	}
	opcode := payload[0]
	r := wire.NewReader(payload[1:])
	s.dispatchOpcode(opcode, r)
}

// writePump writes every frame queued with Send, so dispatcher-side
// broadcasts and the session's own replies never race on the socket
// (§4.5). The handshake challenge and the text and queue-status frames
// sent during authentication are written directly through the codec,
// before anything has been queued with Send.
func (s *Session) writePump() {
	for {
		select {
		case buf, ok := <-s.outbox:
			if !ok {
				return
			}
			if err := s.codec.WriteFrame(buf); err != nil {
				s.log.Debug("write failed", slog.String("err", err.Error()))
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Send queues an outbound frame. Safe to call from the dispatcher
// goroutine or the session's own read loop.
func (s *Session) Send(payload []byte) {
	select {
	case s.outbox <- payload:
	case <-s.done:
	}
}

// Close tears down the network side. The world-side player reference,
// if any, is released separately by dispose via the dispatcher so the
// two teardown halves never race (§5 "strong owner / weak capability").
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *Session) dispose() {
	s.Close()
	s.setState(StateDisposed)
	// Guards the replacement-login window (§4.3/§5): if this session
	// tears down before its scheduled reconnect task fires, the task
	// must never go on to rebind a player to a disposed session.
	s.reconnect.Cancel()
	p := s.Player()
	if p == nil {
		return
	}
	s.world.Dispatcher.Post(func() {
		if p.BoundSession() == any(s) {
			p.BindSession(nil)
		}
		s.world.UnregisterSpectator(p.CreatureID())
		s.world.RemovePlayer(p)
		if s.login != nil {
			s.world.Workers.Submit(context.Background(),
				func() error { return s.login.SavePlayer(context.Background(), p) },
				func(err error) {
					if err != nil {
						s.log.Warn("save on disconnect failed", slog.String("err", err.Error()))
					}
				})
		}
	})
}
