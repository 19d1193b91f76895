// Package gameserver ties the session core together: it accepts TCP
// connections, numbers each session with its own id, and hands each
// connection to a session.Session running against a shared world.World.
package gameserver

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"

	wcrypto "github.com/udisondev/gameworld/internal/crypto"
	"github.com/udisondev/gameworld/internal/session"
	"github.com/udisondev/gameworld/internal/world"
)

// Server accepts connections and spins up a session per connection.
type Server struct {
	log    *slog.Logger
	world  *world.World
	rsa    *wcrypto.RSAKeyPair
	login  session.LoginAuthority
	bans   session.BanAuthority
	script session.ScriptHost
	cfg    session.Config

	nextID atomic.Uint32
}

// New builds a Server. rsa must be generated once and kept stable for
// the process lifetime — it is the key clients bind to at handshake.
func New(log *slog.Logger, w *world.World, rsaKeys *wcrypto.RSAKeyPair, login session.LoginAuthority, bans session.BanAuthority, script session.ScriptHost, cfg session.Config) *Server {
	return &Server{log: log, world: w, rsa: rsaKeys, login: login, bans: bans, script: script, cfg: cfg}
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.log.Warn("accept failed", slog.String("err", err.Error()))
				continue
			}
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	id := s.nextID.Add(1)
	sess := session.New(id, conn, s.world, s.rsa, s.login, s.bans, s.script, s.cfg, s.log)
	sess.Run(ctx)
}
