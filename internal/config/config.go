// Package config loads the gameworld server's YAML configuration,
// following the same defaults-then-override shape as the rest of the
// pack's login/game servers.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Gameworld holds all configuration for the session core (§6 "Config
// surface" plus the ambient network/logging/database settings a
// running process needs).
type Gameworld struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	LogLevel    string `yaml:"log_level"`

	Database DatabaseConfig `yaml:"database"`

	MaxPlayers            int      `yaml:"max_players"` // 0 = unlimited
	AllowClones           bool     `yaml:"allow_clones"`
	OnePlayerOnAccount    bool     `yaml:"one_player_on_account"`
	AccountManagerEnabled bool     `yaml:"account_manager"`
	ReplaceKickOnLogin    bool     `yaml:"replace_kick_on_login"`
	MaxProtocolOutfits    int      `yaml:"max_protocol_outfits"`
	ExtendedClientFeatures []string `yaml:"extended_client_features"`

	IdleKickSeconds int `yaml:"idle_kick_seconds"`
}

// IdleKickAfter converts IdleKickSeconds into the duration the session
// package's liveness timer wants.
func (g Gameworld) IdleKickAfter() time.Duration {
	return time.Duration(g.IdleKickSeconds) * time.Second
}

// DatabaseConfig holds PostgreSQL connection parameters for the
// players/accounts/bans schema `internal/persist` queries.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns int32 `yaml:"max_conns"`
	MinConns int32 `yaml:"min_conns"`
}

// DSN returns the PostgreSQL connection string pgx dials.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

// Default returns a Gameworld config with sensible defaults.
func Default() Gameworld {
	return Gameworld{
		BindAddress:         "0.0.0.0",
		Port:                7171,
		LogLevel:            "info",
		MaxPlayers:          0,
		AllowClones:         false,
		OnePlayerOnAccount:  true,
		ReplaceKickOnLogin:  true,
		MaxProtocolOutfits:  25,
		IdleKickSeconds:      900,
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "gameworld",
			Password: "gameworld",
			DBName:  "gameworld",
			SSLMode: "disable",
		},
	}
}

// Load reads config from path, falling back to Default() if the file
// doesn't exist.
func Load(path string) (Gameworld, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
