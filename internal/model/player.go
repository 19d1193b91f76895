package model

import (
	"sync"
	"sync/atomic"
)

// Player is the world's view of a character. It is shared: the world
// indexes all online players by id and name, and a session holds a
// strong reference to it for the session's lifetime (§3 Player binding).
//
// The reverse pointer back to the owning session is modeled as an
// untyped atomic handle rather than a concrete *session.Session to avoid
// an import cycle between model and session; the session package stores
// itself there and type-asserts on read.
type Player struct {
	objectID    uint32
	accountID   int64
	characterID int64
	name        string
	premium     bool
	accountType AccountType

	mu                sync.RWMutex
	position          Position
	loginPosition     Position
	townTemplePosition Position
	health            int32
	maxHealth         int32
	mana              int32
	maxMana           int32
	direction         Direction
	outfit            Outfit
	light             Light
	stepSpeed         uint16
	skull             Skull
	partyShield       PartyShield
	guildEmblem       uint16
	inventory         *Inventory

	removed      atomic.Bool
	isConnecting atomic.Bool // true during a replacement-login takeover window (§4.3)

	boundSession atomic.Value // holds whatever the session package stores (nil when unbound)
}

// NewPlayer creates a player at the given login position with an empty
// inventory. Combat stats, inventory contents and appearance are filled
// in by the persistence collaborator when the character loads.
func NewPlayer(objectID uint32, accountID, characterID int64, name string, login Position) *Player {
	return &Player{
		objectID:      objectID,
		accountID:     accountID,
		characterID:   characterID,
		name:          name,
		position:      login,
		loginPosition: login,
		maxHealth:     100,
		health:        100,
		maxMana:       100,
		mana:          100,
		direction:     DirectionSouth,
		stepSpeed:     220,
		inventory:     NewInventory(),
	}
}

func (p *Player) CreatureID() uint32   { return p.objectID }
func (p *Player) CreatureName() string { return p.name }
func (p *Player) AccountID() int64     { return p.accountID }
func (p *Player) CharacterID() int64   { return p.characterID }
func (p *Player) Premium() bool        { return p.premium }
func (p *Player) SetPremium(v bool)    { p.premium = v }
func (p *Player) AccountType() AccountType     { return p.accountType }
func (p *Player) SetAccountType(t AccountType) { p.accountType = t }

func (p *Player) IsRemoved() bool    { return p.removed.Load() }
func (p *Player) SetRemoved(v bool)  { p.removed.Store(v) }

// IsConnecting reports whether a replacement-login reconnect task is
// scheduled to bind a new session to this player (§4.3).
func (p *Player) IsConnecting() bool   { return p.isConnecting.Load() }
func (p *Player) SetConnecting(v bool) { p.isConnecting.Store(v) }

// sessionHandle wraps the stored handle so every Store into boundSession
// uses the same concrete type, as atomic.Value requires.
type sessionHandle struct{ v any }

// BoundSession returns whatever was last stored with BindSession, or nil.
func (p *Player) BoundSession() any {
	if h, ok := p.boundSession.Load().(sessionHandle); ok {
		return h.v
	}
	return nil
}

// BindSession stores the owning session handle. Passing nil clears it.
func (p *Player) BindSession(handle any) {
	p.boundSession.Store(sessionHandle{v: handle})
}

func (p *Player) Position() Position {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.position
}

func (p *Player) SetPosition(pos Position) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
}

func (p *Player) LoginPosition() Position      { return p.loginPosition }
func (p *Player) TownTemplePosition() Position { return p.townTemplePosition }
func (p *Player) SetTownTemplePosition(pos Position) { p.townTemplePosition = pos }

func (p *Player) HealthPercent() uint8 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.maxHealth <= 0 {
		return 0
	}
	pct := p.health * 100 / p.maxHealth
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return uint8(pct)
}

func (p *Player) Health() (current, max int32) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health, p.maxHealth
}

func (p *Player) SetHealth(current, max int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.health, p.maxHealth = current, max
}

func (p *Player) Mana() (current, max int32) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mana, p.maxMana
}

func (p *Player) SetMana(current, max int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mana, p.maxMana = current, max
}

func (p *Player) Direction() Direction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.direction
}

func (p *Player) SetDirection(d Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.direction = d
}

func (p *Player) Outfit() Outfit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.outfit
}

func (p *Player) SetOutfit(o Outfit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outfit = o
}

func (p *Player) Inventory() *Inventory {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.inventory
}

func (p *Player) SetInventory(inv *Inventory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inventory = inv
}

// Descriptor builds the wire "new creature" payload from current state.
func (p *Player) Descriptor() CreatureDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return CreatureDescriptor{
		Name:          p.name,
		HealthPercent: healthPercent(p.health, p.maxHealth),
		Direction:     p.direction,
		Outfit:        p.outfit,
		Light:         p.light,
		StepSpeed:     p.stepSpeed,
		Skull:         p.skull,
		PartyShield:   p.partyShield,
		GuildEmblem:   p.guildEmblem,
		Walkthrough:   false,
	}
}

func healthPercent(current, max int32) uint8 {
	if max <= 0 {
		return 0
	}
	pct := current * 100 / max
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return uint8(pct)
}

// Snapshot is an immutable copy of the fields the replacement-login
// invariant must preserve byte-identical across a takeover (§8).
type Snapshot struct {
	Health, MaxHealth int32
	Mana, MaxMana     int32
	Position          Position
	Inventory         *Inventory
}

// TakeSnapshot captures the fields relevant to the replacement-login
// byte-identity invariant.
func (p *Player) TakeSnapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		Health:    p.health,
		MaxHealth: p.maxHealth,
		Mana:      p.mana,
		MaxMana:   p.maxMana,
		Position:  p.position,
		Inventory: p.inventory.Clone(),
	}
}
