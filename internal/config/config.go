// Package config loads process configuration from the environment. The
// variable names follow the services this daemon replaces, so existing
// deployments keep their env files.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	// Mandatory.
	JWTSecretKey  string
	JWTAlgorithm  string
	DeckSourceURL string

	// Optional: empty selects the in-process leaderboard store.
	LeaderboardURL string
	// Optional: reserved for a split deployment of the rules layer.
	LogicLayerURL string

	AccessTokenMinutes  int
	RefreshTokenMinutes int

	ListenAddr string
	DataDir    string
}

// Load reads the environment. Missing mandatory values and non-positive
// token lifetimes fail startup rather than surfacing later as 500s.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_MINUTES", 30)
	v.SetDefault("REFRESH_TOKEN_MINUTES", 1440)
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("DATA_DIR", ".klondike")

	cfg := Config{
		JWTSecretKey:        v.GetString("JWT_SECRET_KEY"),
		JWTAlgorithm:        v.GetString("JWT_ALGORITHM"),
		DeckSourceURL:       v.GetString("DECK_SOURCE_URL"),
		LeaderboardURL:      v.GetString("LEADERBOARD_URL"),
		LogicLayerURL:       v.GetString("LOGIC_LAYER_URL"),
		AccessTokenMinutes:  v.GetInt("ACCESS_TOKEN_MINUTES"),
		RefreshTokenMinutes: v.GetInt("REFRESH_TOKEN_MINUTES"),
		ListenAddr:          v.GetString("LISTEN_ADDR"),
		DataDir:             v.GetString("DATA_DIR"),
	}

	if cfg.JWTSecretKey == "" {
		return Config{}, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if cfg.DeckSourceURL == "" {
		return Config{}, fmt.Errorf("DECK_SOURCE_URL is required")
	}
	if cfg.AccessTokenMinutes <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_MINUTES must be a positive integer")
	}
	if cfg.RefreshTokenMinutes <= 0 {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_MINUTES must be a positive integer")
	}
	return cfg, nil
}
