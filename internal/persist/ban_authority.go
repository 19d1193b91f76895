package persist

import (
	"context"

	"github.com/udisondev/gameworld/internal/model"
)

// BanAuthority implements session.BanAuthority against the
// ip_bans/account_bans/characters schema.
type BanAuthority struct {
	db *DB
}

// NewBanAuthority builds a BanAuthority over db.
func NewBanAuthority(db *DB) *BanAuthority { return &BanAuthority{db: db} }

func (b *BanAuthority) IsIPBanned(ctx context.Context, ip string) (model.BanInfo, bool) {
	var info model.BanInfo
	err := b.db.pool.QueryRow(ctx,
		`SELECT expiry, banner, reason FROM ip_bans WHERE ip = $1`, ip,
	).Scan(&info.Expiry, &info.Banner, &info.Reason)
	return info, err == nil
}

func (b *BanAuthority) IsAccountBanned(ctx context.Context, accountID int64) (model.BanInfo, bool) {
	var info model.BanInfo
	err := b.db.pool.QueryRow(ctx,
		`SELECT expiry, banner, reason FROM account_bans WHERE account_id = $1`, accountID,
	).Scan(&info.Expiry, &info.Banner, &info.Reason)
	return info, err == nil
}

func (b *BanAuthority) IsPlayerNamelocked(ctx context.Context, characterID int64) bool {
	var locked bool
	err := b.db.pool.QueryRow(ctx,
		`SELECT namelocked FROM characters WHERE id = $1`, characterID,
	).Scan(&locked)
	if err != nil {
		return false
	}
	return locked
}
