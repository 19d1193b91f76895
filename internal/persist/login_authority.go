package persist

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/udisondev/gameworld/internal/model"
)

// LoginAuthority implements session.LoginAuthority against the
// players/accounts schema.
type LoginAuthority struct {
	db *DB
}

// NewLoginAuthority builds a LoginAuthority over db.
func NewLoginAuthority(db *DB) *LoginAuthority { return &LoginAuthority{db: db} }

// hashPassword mirrors the teacher's SHA1-then-base64 scheme so an
// existing accounts table (e.g. migrated from the teacher's own
// login system) stays compatible.
func hashPassword(password string) string {
	h := sha1.New()
	h.Write([]byte(password))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (a *LoginAuthority) GameworldAuth(ctx context.Context, account, password, character string) (accountID, characterID int64, premium, ok bool) {
	var storedHash string
	var premiumUntil *time.Time
	err := a.db.pool.QueryRow(ctx,
		`SELECT id, password_hash, premium_until FROM accounts WHERE name = $1`, account,
	).Scan(&accountID, &storedHash, &premiumUntil)
	if err != nil {
		return 0, 0, false, false
	}
	if storedHash != hashPassword(password) {
		return 0, 0, false, false
	}

	err = a.db.pool.QueryRow(ctx,
		`SELECT id FROM characters WHERE account_id = $1 AND name = $2`, accountID, character,
	).Scan(&characterID)
	if err != nil {
		return 0, 0, false, false
	}
	premium = premiumUntil != nil && premiumUntil.After(time.Now())
	return accountID, characterID, premium, true
}

func (a *LoginAuthority) AccountIDByName(ctx context.Context, account string) (int64, bool) {
	var id int64
	err := a.db.pool.QueryRow(ctx, `SELECT id FROM accounts WHERE name = $1`, account).Scan(&id)
	return id, err == nil
}

func (a *LoginAuthority) PreloadPlayer(ctx context.Context, characterID int64) (bool, error) {
	var exists bool
	err := a.db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM characters WHERE id = $1)`, characterID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("preloading character %d: %w", characterID, err)
	}
	return exists, nil
}

func (a *LoginAuthority) LoadPlayerByID(ctx context.Context, p *model.Player, characterID int64) error {
	var (
		health, maxHealth, mana, maxMana           int32
		posX, posY, templeX, templeY               int32
		posZ, templeZ                              int8
		inventoryJSON                               []byte
	)
	err := a.db.pool.QueryRow(ctx,
		`SELECT health, max_health, mana, max_mana, pos_x, pos_y, pos_z,
		        town_temple_x, town_temple_y, town_temple_z, inventory
		 FROM characters WHERE id = $1`, characterID,
	).Scan(&health, &maxHealth, &mana, &maxMana, &posX, &posY, &posZ,
		&templeX, &templeY, &templeZ, &inventoryJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("loading character %d: not found", characterID)
		}
		return fmt.Errorf("loading character %d: %w", characterID, err)
	}

	p.SetHealth(health, maxHealth)
	p.SetMana(mana, maxMana)
	p.SetPosition(model.Position{X: posX, Y: posY, Z: posZ})
	p.SetTownTemplePosition(model.Position{X: templeX, Y: templeY, Z: templeZ})

	inv := model.NewInventory()
	if len(inventoryJSON) > 0 {
		var slots map[uint8]model.Item
		if err := json.Unmarshal(inventoryJSON, &slots); err == nil {
			inv.Slots = slots
		}
	}
	p.SetInventory(inv)
	return nil
}

func (a *LoginAuthority) SavePlayer(ctx context.Context, p *model.Player) error {
	health, maxHealth := p.Health()
	mana, maxMana := p.Mana()
	pos := p.Position()
	inventoryJSON, err := json.Marshal(p.Inventory().Slots)
	if err != nil {
		return fmt.Errorf("marshaling inventory for character %d: %w", p.CharacterID(), err)
	}

	_, err = a.db.pool.Exec(ctx,
		`UPDATE characters SET health=$1, max_health=$2, mana=$3, max_mana=$4,
		        pos_x=$5, pos_y=$6, pos_z=$7, inventory=$8 WHERE id=$9`,
		health, maxHealth, mana, maxMana, pos.X, pos.Y, pos.Z, inventoryJSON, p.CharacterID(),
	)
	if err != nil {
		return fmt.Errorf("saving character %d: %w", p.CharacterID(), err)
	}
	return nil
}
