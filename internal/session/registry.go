// Package session maps opaque session identifiers to live games and
// serialises access per session: moves on one game run strictly in order
// while distinct games proceed in parallel.
package session

import (
	"sync"

	errorsmod "cosmossdk.io/errors"
	"github.com/google/uuid"

	"cardroom/apps/klondike/internal/engine"
)

var ErrUnknownSession = errorsmod.Register("session", 1, "game not found")

type entry struct {
	mu   sync.Mutex
	game *engine.Game
}

type Registry struct {
	mu    sync.RWMutex
	games map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{games: map[string]*entry{}}
}

// Create registers a game and returns its freshly generated session id.
func (r *Registry) Create(g *engine.Game) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.games[id] = &entry{game: g}
	r.mu.Unlock()
	return id
}

// With runs fn with exclusive access to the session's game. The registry
// lock is released before fn runs, so long moves on one game never block
// other sessions.
func (r *Registry) With(id string, fn func(*engine.Game) error) error {
	r.mu.RLock()
	e, ok := r.games[id]
	r.mu.RUnlock()
	if !ok {
		return errorsmod.Wrapf(ErrUnknownSession, "session %q", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.game)
}

// Delete removes a session; sessions are otherwise kept for the process
// lifetime.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return false
	}
	delete(r.games, id)
	return true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
