package model

// Outfit describes a creature's appearance: either a "looktype" body with
// dyeable colors, or an item-based disguise.
type Outfit struct {
	LookType int16
	Head     uint8
	Body     uint8
	Legs     uint8
	Feet     uint8
	Addons   uint8
	Mount    int16
}

// Light is the creature's light-emission level/color, part of the
// creature descriptor sent to clients.
type Light struct {
	Level uint8
	Color uint8
}

// Skull marks a PvP reputation icon shown above a creature's head.
type Skull uint8

const (
	SkullNone Skull = iota
	SkullYellow
	SkullGreen
	SkullWhite
	SkullRed
	SkullBlack
)

// PartyShield marks a party-relationship icon shown above a creature.
type PartyShield uint8

const (
	PartyShieldNone PartyShield = iota
	PartyShieldWhiteYellow
	PartyShieldWhiteBlue
	PartyShieldBlue
	PartyShieldYellow
)
