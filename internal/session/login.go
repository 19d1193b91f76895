package session

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/udisondev/gameworld/internal/admission"
	"github.com/udisondev/gameworld/internal/constants"
	"github.com/udisondev/gameworld/internal/model"
	"github.com/udisondev/gameworld/internal/wire"
	"github.com/udisondev/gameworld/internal/world"
)

// runAuthenticateAndLoad carries the session from Authenticating
// through Queued/Loading to Playing or AccountManager (§4.3). Returns
// false if the session was disposed along the way.
func (s *Session) runAuthenticateAndLoad(ctx context.Context) bool {
	host, _, _ := net.SplitHostPort(s.conn.RemoteAddr().String())

	if s.bans != nil {
		if ban, banned := s.bans.IsIPBanned(ctx, host); banned {
			s.sendTextDisconnect(banReason(ban))
			return false
		}
	}

	if state := s.world.GameState(); !state.AcceptsLogins() {
		s.sendTextDisconnect(gameStateDisconnectMessage(state))
		return false
	}

	if s.login == nil {
		s.sendTextDisconnect("Login service unavailable.")
		return false
	}

	resolvedAccountID, resolvedCharacterID, premium, ok := s.login.GameworldAuth(ctx, s.pendingAccount, s.pendingPassword, s.pendingCharacter)
	isAccountManager := false
	if !ok && s.cfg.AccountManagerEnabled && s.pendingCharacter == constants.AccountManagerCharacterName {
		if accID, found := s.login.AccountIDByName(ctx, s.pendingAccount); found {
			resolvedAccountID = accID
			resolvedCharacterID = constants.AccountManagerCharacterID
			isAccountManager = true
			ok = true
		}
	}
	if !ok {
		s.sendTextDisconnect("Your account name or password is not correct.")
		return false
	}

	if s.bans != nil {
		if ban, banned := s.bans.IsAccountBanned(ctx, resolvedAccountID); banned {
			s.sendTextDisconnect(banReason(ban))
			return false
		}
		if !isAccountManager && s.bans.IsPlayerNamelocked(ctx, resolvedCharacterID) {
			s.sendTextDisconnect("Your character has been namelocked.")
			return false
		}
	}

	// One-character-per-account is skipped for the account-manager
	// pseudo-character and for staff accounts.
	if s.cfg.OnePlayerOnAccount && !isAccountManager {
		if other, online := s.world.PlayerByAccountID(resolvedAccountID); online && !other.AccountType().IsStaff() {
			s.sendTextDisconnect("You may only login with one character\nof your account at the same time.")
			return false
		}
	}

	slot := s.world.Admission.Admit(admission.Candidate{
		PlayerGUID:  resolvedCharacterID,
		Premium:     premium,
		AlwaysAdmit: isAccountManager,
	})
	if slot != 0 {
		s.setState(StateQueued)
		s.sendQueueStatus(slot)
		return false
	}

	s.setState(StateLoading)

	if isAccountManager {
		return s.loadAccountManager(resolvedAccountID)
	}

	// ALLOW_CLONES routes a duplicate login to a fresh load alongside
	// the already-online character instead of a replacement takeover.
	if existing, online := s.world.PlayerByCharacterID(resolvedCharacterID); online && !s.cfg.AllowClones {
		return s.replaceLogin(ctx, existing, resolvedAccountID, resolvedCharacterID)
	}

	return s.loadFresh(ctx, resolvedAccountID, resolvedCharacterID)
}

func (s *Session) loadFresh(ctx context.Context, accountID, characterID int64) bool {
	exists, err := s.login.PreloadPlayer(ctx, characterID)
	if err != nil || !exists {
		s.sendTextDisconnect("Character data could not be found.")
		return false
	}

	p := model.NewPlayer(s.world.NextObjectID(), accountID, characterID, s.pendingCharacter, model.Position{})
	if err := s.login.LoadPlayerByID(ctx, p, characterID); err != nil {
		s.log.Warn("player load failed", slog.String("err", err.Error()))
		s.sendTextDisconnect("Character data could not be loaded.")
		return false
	}

	login := p.Position()
	if login == (model.Position{}) {
		login = p.TownTemplePosition()
	}
	p.SetPosition(login)

	done := make(chan bool, 1)
	s.world.Dispatcher.Post(func() {
		s.bindPlayer(p)
		done <- true
	})
	<-done

	s.enterWorld(StatePlaying)
	return true
}

// loadAccountManager builds the in-game account-manager pseudo-player
// (§4.3, §6 "ACCOUNT_MANAGER") — there is no persisted character row
// behind it, so it skips PreloadPlayer/LoadPlayerByID entirely and
// resolves the account alone via LoginAuthority.AccountIDByName. The
// creature name folds in the account id so two concurrent
// account-manager sessions never collide in the world's name index.
func (s *Session) loadAccountManager(accountID int64) bool {
	name := fmt.Sprintf("%s (%d)", constants.AccountManagerCharacterName, accountID)
	p := model.NewPlayer(s.world.NextObjectID(), accountID, constants.AccountManagerCharacterID, name, model.Position{})

	done := make(chan bool, 1)
	s.world.Dispatcher.Post(func() {
		s.bindPlayer(p)
		done <- true
	})
	<-done

	s.enterWorld(StateAccountManager)
	return true
}

// replaceLogin implements §4.3's replacement-login takeover: the old
// session is disconnected immediately, the player is marked
// isConnecting, and a one-second dispatcher-scheduled task binds the
// new session to the same *model.Player — preserving position,
// inventory, and every other transient field untouched.
func (s *Session) replaceLogin(ctx context.Context, existing *model.Player, accountID, characterID int64) bool {
	if !s.cfg.ReplaceKickOnLogin {
		s.sendTextDisconnect("Your character is already logged in.")
		return false
	}

	existing.SetConnecting(true)
	if old, ok := existing.BoundSession().(*Session); ok && old != nil {
		old.Close()
	}

	bound := make(chan bool, 1)
	s.reconnect = s.world.Dispatcher.ScheduleAfter(time.Second, func() {
		existing.SetConnecting(false)
		s.bindPlayer(existing)
		bound <- true
	})

	select {
	case <-bound:
	case <-s.done:
		// The session was torn down before the scheduled rebind fired
		// (e.g. a write failure during the one-second window). Cancel
		// it so it never rebinds existing to a disposed session.
		s.reconnect.Cancel()
		return false
	}

	s.enterWorld(StatePlaying)
	return true
}

// enterWorld finalizes the transition into target (Playing or
// AccountManager), sends the self-introduction sequence, arms
// liveness, and hands off to the scripting collaborator (§4.3
// "Loading -> Playing", §7).
func (s *Session) enterWorld(target State) {
	s.setState(target)
	s.sendSelfIntroduction()
	s.startLiveness()
	if s.script != nil {
		if p := s.Player(); p != nil {
			s.world.Dispatcher.Post(func() { s.script.OnLogin(p) })
		}
	}
}

func banReason(b model.BanInfo) string {
	if b.Reason == "" {
		return "You have been banned."
	}
	return b.Reason
}

func gameStateDisconnectMessage(state world.GameState) string {
	switch state {
	case world.GameStateStartup:
		return "The game is starting up. Please try again in a moment."
	case world.GameStateMaintain:
		return "Server is currently closed for maintenance."
	default: // GameStateShutdown
		return "The game is just going down.\nPlease try again later."
	}
}

func (s *Session) sendTextDisconnect(msg string) {
	w := wire.NewWriter()
	w.Byte(0x14)
	w.String(msg)
	s.codec.WriteFrame(w.Bytes())
	s.Close()
}

func (s *Session) sendQueueStatus(slot int) {
	w := wire.NewWriter()
	w.Byte(0x16)
	w.String(fmt.Sprintf("Too many players online.\nYou are at place %d on the waiting list.", slot))
	w.Byte(byte(admission.RetryWait(slot).Seconds()))
	s.codec.WriteFrame(w.Bytes())
	s.Close()
}
