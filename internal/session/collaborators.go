package session

import (
	"context"

	"github.com/udisondev/gameworld/internal/model"
)

// LoginAuthority is the external credential/persistence collaborator
// named in §6. Every method may block; callers run it on a worker
// goroutine and repost the result to the dispatcher (§5).
type LoginAuthority interface {
	// GameworldAuth validates credentials, returning (accountID,
	// characterID, premium), or ok=false on any failure. premium feeds
	// the admission queue's priority lane (§4.2).
	GameworldAuth(ctx context.Context, account, password, character string) (accountID, characterID int64, premium, ok bool)
	// AccountIDByName resolves an account name without a password
	// check, used by the in-game account-manager character.
	AccountIDByName(ctx context.Context, account string) (accountID int64, ok bool)
	// PreloadPlayer performs the lightweight existence query done
	// before committing to a full load. Name-locks are checked through
	// BanAuthority.IsPlayerNamelocked.
	PreloadPlayer(ctx context.Context, characterID int64) (exists bool, err error)
	// LoadPlayerByID performs the full character load into p.
	LoadPlayerByID(ctx context.Context, p *model.Player, characterID int64) error
	// SavePlayer persists p, on logout and at periodic checkpoints.
	SavePlayer(ctx context.Context, p *model.Player) error
}

// BanAuthority is the external ban-list collaborator named in §6.
type BanAuthority interface {
	IsIPBanned(ctx context.Context, ip string) (model.BanInfo, bool)
	IsAccountBanned(ctx context.Context, accountID int64) (model.BanInfo, bool)
	IsPlayerNamelocked(ctx context.Context, characterID int64) bool
}

// ScriptHost is the embedded-scripting capability interface (§9):
// hooks the core invokes synchronously on the dispatcher. Hooks must
// not suspend — they run inline with everything else on that turn.
type ScriptHost interface {
	OnLogin(p *model.Player) (handled bool)
	OnLogout(p *model.Player)
	OnSay(p *model.Player, text string) (handled bool)
	OnExtendedOpcode(p *model.Player, subOp byte, data string) (handled bool)
}
