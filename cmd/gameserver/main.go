// Command gameserver runs the gameworld session core: it loads config,
// opens the database, generates the handshake RSA key, and serves TCP
// connections against a single world.Dispatcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	wcrypto "github.com/udisondev/gameworld/internal/crypto"
	"github.com/udisondev/gameworld/internal/config"
	"github.com/udisondev/gameworld/internal/gameserver"
	"github.com/udisondev/gameworld/internal/persist"
	"github.com/udisondev/gameworld/internal/session"
	"github.com/udisondev/gameworld/internal/world"
)

func main() {
	configPath := flag.String("config", "gameworld.yaml", "path to the gameworld YAML config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("gameserver exited", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := persist.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	db, err := persist.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	rsaKeys, err := wcrypto.GenerateRSAKeyPair()
	if err != nil {
		return fmt.Errorf("generating handshake RSA key: %w", err)
	}

	dispatcher := world.NewDispatcher(log, 1024)

	w := world.New(dispatcher, cfg.MaxPlayers)

	login := persist.NewLoginAuthority(db)
	bans := persist.NewBanAuthority(db)

	sessionCfg := session.Config{
		MaxProtocolOutfits:    cfg.MaxProtocolOutfits,
		AllowClones:           cfg.AllowClones,
		OnePlayerOnAccount:    cfg.OnePlayerOnAccount,
		AccountManagerEnabled: cfg.AccountManagerEnabled,
		ReplaceKickOnLogin:    cfg.ReplaceKickOnLogin,
		IdleKickAfter:         cfg.IdleKickAfter(),
	}

	srv := gameserver.New(log, w, rsaKeys, login, bans, noopScriptHost{}, sessionCfg)

	addr := net.JoinHostPort(cfg.BindAddress, fmt.Sprintf("%d", cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	// The dispatcher loop and the TCP accept loop run as siblings under
	// one errgroup, same shape as the teacher's cmd/gameserver/main.go
	// fan-out of its subsystem managers: either one returning an error
	// cancels gctx and brings the other down with it.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dispatcher.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("gameserver listening", slog.String("addr", addr))
		return srv.Serve(gctx, ln)
	})

	return g.Wait()
}
