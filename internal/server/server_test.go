package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"cardroom/apps/klondike/internal/decksource"
	"cardroom/apps/klondike/internal/engine"
	"cardroom/apps/klondike/internal/leaderboard"
	"cardroom/apps/klondike/internal/token"
)

// recordingTracker counts notifications and can be told to fail.
type recordingTracker struct {
	started []string
	won     []string
	fail    bool
}

func (r *recordingTracker) GameStarted(userID string) error {
	if r.fail {
		return leaderboard.ErrUnavailable
	}
	r.started = append(r.started, userID)
	return nil
}

func (r *recordingTracker) GameWon(userID string) error {
	if r.fail {
		return leaderboard.ErrUnavailable
	}
	r.won = append(r.won, userID)
	return nil
}

func (r *recordingTracker) Rows() ([]leaderboard.Row, error) {
	if r.fail {
		return nil, leaderboard.ErrUnavailable
	}
	return []leaderboard.Row{{UserID: "alice", PlayedGames: 1, GamesWon: 0}}, nil
}

// fakeDeckSource serves a fixed unshuffled deck: hearts A..K, diamonds,
// clubs, spades. The resulting layout is deterministic, which the move
// tests below rely on.
func fakeDeckSource(t *testing.T) *httptest.Server {
	t.Helper()
	labels := []string{"ACE", "2", "3", "4", "5", "6", "7", "8", "9", "10", "JACK", "QUEEN", "KING"}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /new_deck", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"deck_id": "fixed-deck"})
	})
	mux.HandleFunc("GET /draw_cards/{deck_id}/{count}", func(w http.ResponseWriter, r *http.Request) {
		cards := []map[string]string{}
		for _, suit := range []string{"HEARTS", "DIAMONDS", "CLUBS", "SPADES"} {
			for _, v := range labels {
				cards = append(cards, map[string]string{"value": v, "suit": suit})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"cards": cards})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	facade  *Facade
	srv     *httptest.Server
	tracker *recordingTracker
	bearer  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth, err := token.New("test-secret", "HS256", 30, 1440)
	require.NoError(t, err)
	bearer, err := auth.IssueAccess("alice")
	require.NoError(t, err)

	tracker := &recordingTracker{}
	f := New(log.NewNopLogger(), auth, decksource.NewClient(fakeDeckSource(t).URL), tracker)
	srv := httptest.NewServer(f.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{facade: f, srv: srv, tracker: tracker, bearer: bearer}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+e.bearer)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]json.RawMessage
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (e *testEnv) createGame(t *testing.T) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/create_game", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var id string
	require.NoError(t, json.Unmarshal(body["game_id"], &id))
	require.NotEmpty(t, id)
	return id
}

func gameStatus(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(body["game_status"], &s))
	return s
}

func TestRejectsMissingAndBadTokens(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Post(e.srv.URL+"/create_game", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/create_game", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateGame(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodPost, "/create_game", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "playing", gameStatus(t, body))
	require.Equal(t, []string{"alice"}, e.tracker.started)

	var state engine.Game
	require.NoError(t, json.Unmarshal(body["game_state"], &state))
	require.Equal(t, "fixed-deck", state.DeckID)
	require.Len(t, state.Stock, 24)
}

func TestCreateGameAbortsWhenTrackerDown(t *testing.T) {
	e := newTestEnv(t)
	e.tracker.fail = true
	resp, _ := e.do(t, http.MethodPost, "/create_game", nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Equal(t, 0, e.facade.sessions.Len())
}

func TestCreateGameWithDeckSourceDown(t *testing.T) {
	auth, err := token.New("test-secret", "HS256", 30, 1440)
	require.NoError(t, err)
	bearer, err := auth.IssueAccess("alice")
	require.NoError(t, err)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer down.Close()

	f := New(log.NewNopLogger(), auth, decksource.NewClient(down.URL), &recordingTracker{})
	srv := httptest.NewServer(f.Handler())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/create_game", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bearer)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestUnknownGameIs404(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/state/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, http.MethodPost, "/draw_cards/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDrawCards(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t)

	resp, body := e.do(t, http.MethodPost, fmt.Sprintf("/draw_cards/%s", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state engine.Game
	require.NoError(t, json.Unmarshal(body["game_state"], &state))
	require.Len(t, state.Talon, 3)
	require.Len(t, state.Stock, 21)
}

func TestResetStockRequiresEmptyStock(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t)

	resp, _ := e.do(t, http.MethodPost, fmt.Sprintf("/reset_stock/%s", id), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	for i := 0; i < 8; i++ {
		resp, _ = e.do(t, http.MethodPost, fmt.Sprintf("/draw_cards/%s", id), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := e.do(t, http.MethodPost, fmt.Sprintf("/reset_stock/%s", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state engine.Game
	require.NoError(t, json.Unmarshal(body["game_state"], &state))
	require.Len(t, state.Stock, 24)
	require.Empty(t, state.Talon)
}

func TestMoveCardTableauToTableau(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t)

	// With the fixed deck, column 6 tops the two of clubs and column 1 tops
	// the three of hearts.
	resp, body := e.do(t, http.MethodPost, fmt.Sprintf("/move_card/%s", id), map[string]any{
		"type":  "tableau/move",
		"value": map[string]any{"column_from": 6, "column_to": 1},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "playing", gameStatus(t, body))

	var state engine.Game
	require.NoError(t, json.Unmarshal(body["game_state"], &state))
	require.Len(t, state.Tableau[1], 3)
	require.Len(t, state.Tableau[6], 6)
}

func TestMoveCardTableauToFoundation(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t)

	// Column 0 holds the lone ace of hearts.
	resp, _ := e.do(t, http.MethodPost, fmt.Sprintf("/move_card/%s", id), map[string]any{
		"type":  "tableau/to_foundation",
		"value": map[string]any{"column_from": 0, "suit": "HEARTS"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIllegalMoveIs409AndLeavesStateUntouched(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t)

	_, before := e.do(t, http.MethodGet, fmt.Sprintf("/state/%s", id), nil)

	// Ace of hearts onto the red two of diamonds: same colour, rejected.
	resp, _ := e.do(t, http.MethodPost, fmt.Sprintf("/move_card/%s", id), map[string]any{
		"type":  "tableau/move",
		"value": map[string]any{"column_from": 0, "column_to": 4},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	_, after := e.do(t, http.MethodGet, fmt.Sprintf("/state/%s", id), nil)
	require.JSONEq(t, string(before["game_state"]), string(after["game_state"]))
}

func TestMoveCardBadRequests(t *testing.T) {
	e := newTestEnv(t)
	id := e.createGame(t)

	resp, _ := e.do(t, http.MethodPost, fmt.Sprintf("/move_card/%s", id), map[string]any{
		"type":  "tableau/teleport",
		"value": map[string]any{},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+fmt.Sprintf("/move_card/%s", id), bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+e.bearer)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	require.Equal(t, http.StatusBadRequest, raw.StatusCode)

	// Bad suit names map to the taxonomy, not to a parse failure.
	resp, _ = e.do(t, http.MethodPost, fmt.Sprintf("/move_card/%s", id), map[string]any{
		"type":  "talon/to_foundation",
		"value": map[string]any{"suit": "STARS"},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

// nearWin builds a game one talon move away from victory.
func nearWin(t *testing.T) *engine.Game {
	t.Helper()
	g := &engine.Game{DeckID: "near-win", Foundations: map[engine.Suit]engine.FoundationSlot{}}
	for _, suit := range engine.Suits {
		top := engine.RankKing
		if suit == engine.Hearts {
			top = engine.RankQueen
		}
		slot := engine.FoundationSlot{}
		for rank := engine.RankAce; rank <= top; rank++ {
			slot = append(slot, engine.Card{Rank: rank, Suit: suit})
		}
		g.Foundations[suit] = slot
	}
	g.Talon = engine.Talon{{Rank: engine.RankKing, Suit: engine.Hearts}}
	return g
}

func TestWinningMoveNotifiesLeaderboardOnce(t *testing.T) {
	e := newTestEnv(t)
	id := e.facade.sessions.Create(nearWin(t))

	resp, body := e.do(t, http.MethodPost, fmt.Sprintf("/move_card/%s", id), map[string]any{
		"type":  "talon/to_foundation",
		"value": map[string]any{"suit": "HEARTS"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "won", gameStatus(t, body))
	require.Equal(t, []string{"alice"}, e.tracker.won)

	// The game is frozen; a further move conflicts and must not notify
	// again.
	resp, _ = e.do(t, http.MethodPost, fmt.Sprintf("/draw_cards/%s", id), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, []string{"alice"}, e.tracker.won)

	resp, body = e.do(t, http.MethodGet, fmt.Sprintf("/state/%s", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "won", gameStatus(t, body))
}

func TestWinSurvivesTrackerOutage(t *testing.T) {
	e := newTestEnv(t)
	id := e.facade.sessions.Create(nearWin(t))
	e.tracker.fail = true

	resp, body := e.do(t, http.MethodPost, fmt.Sprintf("/move_card/%s", id), map[string]any{
		"type":  "talon/to_foundation",
		"value": map[string]any{"suit": "HEARTS"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "won", gameStatus(t, body))
}

func TestLeaderboardEndpoint(t *testing.T) {
	e := newTestEnv(t)
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/leaderboard", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+e.bearer)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []leaderboard.Row
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Equal(t, []leaderboard.Row{{UserID: "alice", PlayedGames: 1, GamesWon: 0}}, rows)
}

func TestSessionsAreIndependent(t *testing.T) {
	e := newTestEnv(t)
	a := e.createGame(t)
	b := e.createGame(t)

	resp, _ := e.do(t, http.MethodPost, fmt.Sprintf("/draw_cards/%s", a), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := e.do(t, http.MethodGet, fmt.Sprintf("/state/%s", b), nil)
	var state engine.Game
	require.NoError(t, json.Unmarshal(body["game_state"], &state))
	require.Empty(t, state.Talon)
}
