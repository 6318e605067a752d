// Package leaderboard keeps per-user played/won counters. The engine
// reports outcomes through the Tracker interface; the default Store keeps
// the counters in an embedded Badger database, and Client forwards them to
// a remote counter service when the deployment splits that concern out.
package leaderboard

import (
	errorsmod "cosmossdk.io/errors"
)

var (
	ErrUnknownUser = errorsmod.Register("leaderboard", 1, "no games recorded for user")
	ErrUnavailable = errorsmod.Register("leaderboard", 2, "leaderboard unavailable")
)

// Row is one user's counters. GamesWon never exceeds PlayedGames: a win is
// only recorded against a previously started game.
type Row struct {
	UserID      string `json:"user_id"`
	PlayedGames int    `json:"played_games"`
	GamesWon    int    `json:"games_won"`
}

type Tracker interface {
	GameStarted(userID string) error
	GameWon(userID string) error
	Rows() ([]Row, error)
}
