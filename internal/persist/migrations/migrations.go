// Package migrations embeds the goose SQL migrations for the
// players/accounts/bans schema LoginAuthority and BanAuthority query.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
