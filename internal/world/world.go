package world

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/gameworld/internal/admission"
	"github.com/udisondev/gameworld/internal/model"
)

// Spectator is the narrow view a session exposes to the world for
// broadcast fan-out (§4.5). The world never reaches into a session's
// internals; it only asks where it is and hands it a diff callback.
type Spectator interface {
	Position() model.Position
	NotifyTileChanged(pos model.Position)
	NotifyCreatureMoved(id uint32, from, to model.Position)
}

// World owns every piece of mutable game state: the player index, the
// map, and the admission queue. Only the dispatcher goroutine may call
// its mutating methods (§5 "Shared resources").
type World struct {
	Dispatcher *Dispatcher
	Map        *Map
	Admission  *admission.Queue
	Workers    *WorkerPool

	mu          sync.RWMutex
	playersByID map[uint32]*model.Player
	byName      map[string]*model.Player

	specMu     sync.Mutex
	spectators map[uint32]Spectator

	nextObjectID atomic.Uint32
	gameState    atomic.Int32
}

// New builds a world with the given capacity for the admission queue.
// The world starts in GameStateNormal — open for logins.
func New(dispatcher *Dispatcher, capacity int) *World {
	w := &World{
		Dispatcher:  dispatcher,
		Map:         NewMap(),
		Workers:     NewWorkerPool(dispatcher, 8),
		playersByID: make(map[uint32]*model.Player),
		byName:      make(map[string]*model.Player),
		spectators:  make(map[uint32]Spectator),
	}
	w.Admission = admission.New(capacity, w.OnlineCount)
	w.gameState.Store(int32(GameStateNormal))
	return w
}

// NextObjectID allocates a fresh creature object id for a player
// entering the world (§3 "Player binding"). Ids are never reused for
// the life of the process, so a stale id from a disconnected player
// can never collide with one still online.
func (w *World) NextObjectID() uint32 {
	return w.nextObjectID.Add(1)
}

// OnlineCount is the admission queue's capacity callback.
func (w *World) OnlineCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.playersByID)
}

// PlayerByID looks up an online player by object id.
func (w *World) PlayerByID(id uint32) (*model.Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.playersByID[id]
	return p, ok
}

// PlayerByCharacterID finds an online player by persisted character
// id — used by §4.3's "already logged in" / replacement-login check.
func (w *World) PlayerByCharacterID(characterID int64) (*model.Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, p := range w.playersByID {
		if p.CharacterID() == characterID {
			return p, true
		}
	}
	return nil, false
}

// PlayerByAccountID finds any online player belonging to accountID —
// used by §4.3's Loading-time one-character-per-account rule.
func (w *World) PlayerByAccountID(accountID int64) (*model.Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, p := range w.playersByID {
		if p.AccountID() == accountID {
			return p, true
		}
	}
	return nil, false
}

// AddPlayer registers p as online.
func (w *World) AddPlayer(p *model.Player) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.playersByID[p.CreatureID()] = p
	w.byName[p.CreatureName()] = p
}

// RemovePlayer drops p from the online index. The name-keyed entry is
// only removed if it still belongs to p, so a name shared by two
// distinct players (e.g. two concurrent account-manager sessions)
// can't have one player's teardown evict the other's entry.
func (w *World) RemovePlayer(p *model.Player) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.playersByID, p.CreatureID())
	if w.byName[p.CreatureName()] == p {
		delete(w.byName, p.CreatureName())
	}
}

// GameState reports the world's operational state (§4.3 "Authenticating
// -> Disposed ... world in Startup/Maintain/Shutdown state").
func (w *World) GameState() GameState {
	return GameState(w.gameState.Load())
}

// SetGameState changes the world's operational state, e.g. to drain
// connections ahead of a restart.
func (w *World) SetGameState(s GameState) {
	w.gameState.Store(int32(s))
}

// RegisterSpectator marks id as a live broadcast target.
func (w *World) RegisterSpectator(id uint32, s Spectator) {
	w.specMu.Lock()
	defer w.specMu.Unlock()
	w.spectators[id] = s
}

// UnregisterSpectator removes id from the broadcast set.
func (w *World) UnregisterSpectator(id uint32) {
	w.specMu.Lock()
	defer w.specMu.Unlock()
	delete(w.spectators, id)
}
