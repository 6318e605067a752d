// Package server is the external request façade: it authenticates bearer
// tokens, resolves sessions, drives the engine under the per-session lock
// and maps the flat error taxonomy onto HTTP statuses.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cosmossdk.io/log"
	"github.com/rs/cors"

	"cardroom/apps/klondike/internal/codec"
	"cardroom/apps/klondike/internal/decksource"
	"cardroom/apps/klondike/internal/engine"
	"cardroom/apps/klondike/internal/leaderboard"
	"cardroom/apps/klondike/internal/session"
	"cardroom/apps/klondike/internal/token"
)

const (
	statusPlaying = "playing"
	statusWon     = "won"
)

var errBadRequest = errors.New("bad request")

type Facade struct {
	log      log.Logger
	auth     *token.Authenticator
	sessions *session.Registry
	decks    *decksource.Client
	board    leaderboard.Tracker
}

func New(logger log.Logger, auth *token.Authenticator, decks *decksource.Client, board leaderboard.Tracker) *Facade {
	return &Facade{
		log:      logger,
		auth:     auth,
		sessions: session.NewRegistry(),
		decks:    decks,
		board:    board,
	}
}

// Handler builds the route table. Browsers talk to the façade directly, so
// the whole table sits behind CORS.
func (f *Facade) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /create_game", f.withUser(f.createGame))
	mux.HandleFunc("GET /state/{game_id}", f.withUser(f.state))
	mux.HandleFunc("POST /draw_cards/{game_id}", f.withUser(f.draw))
	mux.HandleFunc("POST /reset_stock/{game_id}", f.withUser(f.reset))
	mux.HandleFunc("POST /move_card/{game_id}", f.withUser(f.move))
	mux.HandleFunc("GET /leaderboard", f.withUser(f.leaderboard))
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, userID string)

// withUser authenticates the bearer token and passes the subject through.
func (f *Facade) withUser(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			f.writeError(w, r, token.ErrUnauthenticated)
			return
		}
		userID, err := f.auth.Verify(header[len(prefix):])
		if err != nil {
			f.writeError(w, r, err)
			return
		}
		h(w, r, userID)
	}
}

type gameResponse struct {
	GameID     string          `json:"game_id"`
	GameState  json.RawMessage `json:"game_state"`
	GameStatus string          `json:"game_status"`
}

func (f *Facade) createGame(w http.ResponseWriter, r *http.Request, userID string) {
	deckID, cards, err := f.decks.NewDeal(r.Context())
	if err != nil {
		f.writeError(w, r, err)
		return
	}
	game, err := engine.Deal(deckID, cards)
	if err != nil {
		f.writeError(w, r, err)
		return
	}
	// The played counter must cover every dealt game, so a tracker failure
	// aborts the create before the session exists.
	if err := f.board.GameStarted(userID); err != nil {
		f.writeError(w, r, err)
		return
	}
	id := f.sessions.Create(game)
	snap, err := game.Snapshot()
	if err != nil {
		f.writeError(w, r, err)
		return
	}
	f.log.Info("game created", "game_id", id, "deck_id", deckID, "user", userID)
	f.writeJSON(w, http.StatusCreated, gameResponse{
		GameID:     id,
		GameState:  snap,
		GameStatus: statusPlaying,
	})
}

func (f *Facade) state(w http.ResponseWriter, r *http.Request, userID string) {
	f.respondWith(w, r, r.PathValue("game_id"), userID, func(*engine.Game) error { return nil })
}

func (f *Facade) draw(w http.ResponseWriter, r *http.Request, userID string) {
	f.respondWith(w, r, r.PathValue("game_id"), userID, func(g *engine.Game) error {
		return g.DrawFromStock()
	})
}

func (f *Facade) reset(w http.ResponseWriter, r *http.Request, userID string) {
	f.respondWith(w, r, r.PathValue("game_id"), userID, func(g *engine.Game) error {
		return g.ResetStock()
	})
}

func (f *Facade) move(w http.ResponseWriter, r *http.Request, userID string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		f.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	env, err := codec.DecodeMoveEnvelope(body)
	if err != nil {
		f.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	f.respondWith(w, r, r.PathValue("game_id"), userID, func(g *engine.Game) error {
		return dispatch(g, env)
	})
}

func dispatch(g *engine.Game, env codec.MoveEnvelope) error {
	switch env.Type {
	case codec.TypeTableauMove:
		var mv codec.TableauMove
		if err := json.Unmarshal(env.Value, &mv); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if mv.NumberOfCards == 0 {
			mv.NumberOfCards = 1
		}
		return g.MoveTableauToTableau(mv.ColumnFrom, mv.ColumnTo, mv.NumberOfCards)
	case codec.TypeTableauFoundation:
		var mv codec.TableauToFoundationMove
		if err := json.Unmarshal(env.Value, &mv); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		suit, err := engine.ParseSuit(mv.Suit)
		if err != nil {
			return err
		}
		return g.MoveTableauToFoundation(mv.ColumnFrom, suit)
	case codec.TypeTalonToFoundation:
		var mv codec.TalonToFoundationMove
		if err := json.Unmarshal(env.Value, &mv); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		suit, err := engine.ParseSuit(mv.Suit)
		if err != nil {
			return err
		}
		return g.MoveTalonToFoundation(suit)
	case codec.TypeTalonToTableau:
		var mv codec.TalonToTableauMove
		if err := json.Unmarshal(env.Value, &mv); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return g.MoveTalonToTableau(mv.ColumnTo)
	default:
		return fmt.Errorf("%w: unknown move type %q", errBadRequest, env.Type)
	}
}

// respondWith runs op under the session lock, snapshots the resulting
// state while still holding the lock, and answers with the usual game
// response. A win detected after a successful op triggers the one-shot
// leaderboard notification; later operations fail with GameOver before
// they reach this point, so the counter cannot be bumped twice.
func (f *Facade) respondWith(w http.ResponseWriter, r *http.Request, gameID, userID string, op func(*engine.Game) error) {
	var (
		snap    []byte
		wasWon  bool
		nowWon  bool
		snapErr error
	)
	err := f.sessions.With(gameID, func(g *engine.Game) error {
		wasWon = g.CheckWin()
		if err := op(g); err != nil {
			return err
		}
		nowWon = g.CheckWin()
		snap, snapErr = g.Snapshot()
		return snapErr
	})
	if err != nil {
		f.writeError(w, r, err)
		return
	}

	status := statusPlaying
	if nowWon {
		status = statusWon
	}
	if nowWon && !wasWon {
		if err := f.board.GameWon(userID); err != nil {
			// State is already authoritative; the lost counter update is
			// logged, not surfaced.
			f.log.Error("leaderboard win notification failed", "game_id", gameID, "user", userID, "err", err)
		} else {
			f.log.Info("game won", "game_id", gameID, "user", userID)
		}
	}
	f.writeJSON(w, http.StatusOK, gameResponse{
		GameID:     gameID,
		GameState:  snap,
		GameStatus: status,
	})
}

func (f *Facade) leaderboard(w http.ResponseWriter, r *http.Request, _ string) {
	rows, err := f.board.Rows()
	if err != nil {
		f.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []leaderboard.Row{}
	}
	f.writeJSON(w, http.StatusOK, rows)
}

func (f *Facade) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.log.Error("write response", "err", err)
	}
}

// writeError maps the flat error taxonomy onto HTTP statuses. Rule
// violations are conflicts with the current game state, so they answer 409
// with the state left untouched.
func (f *Facade) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, token.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrUnknownSession):
		status = http.StatusNotFound
	case errors.Is(err, decksource.ErrUnavailable),
		errors.Is(err, leaderboard.ErrUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, engine.ErrInvalidDeck),
		errors.Is(err, engine.ErrCorruptSnapshot):
		status = http.StatusInternalServerError
	case errors.Is(err, engine.ErrEmptySource),
		errors.Is(err, engine.ErrEmptyTalon),
		errors.Is(err, engine.ErrEmptyStock),
		errors.Is(err, engine.ErrStockNotEmpty),
		errors.Is(err, engine.ErrInvalidCount),
		errors.Is(err, engine.ErrFaceDownMove),
		errors.Is(err, engine.ErrIllegalPlacement),
		errors.Is(err, engine.ErrSuitMismatch),
		errors.Is(err, engine.ErrGameOver),
		errors.Is(err, engine.ErrInvalidSlot):
		status = http.StatusConflict
	}
	if status >= http.StatusInternalServerError {
		f.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	f.writeJSON(w, status, map[string]string{"detail": err.Error()})
}
