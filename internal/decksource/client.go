// Package decksource talks to the external shuffled-deck service. The
// service owns shuffling; the engine never orders cards itself, it deals
// exactly what the source returns.
package decksource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	errorsmod "cosmossdk.io/errors"

	"cardroom/apps/klondike/internal/engine"
)

var ErrUnavailable = errorsmod.Register("decksource", 1, "deck source unavailable")

const dealSize = 52

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type newDeckResponse struct {
	DeckID string `json:"deck_id"`
}

type drawResponse struct {
	Cards []struct {
		Code  string `json:"code"`
		Value string `json:"value"`
		Suit  string `json:"suit"`
	} `json:"cards"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorsmod.Wrapf(ErrUnavailable, "GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errorsmod.Wrapf(ErrUnavailable, "GET %s: %v", path, err)
	}
	return nil
}

// NewDeck asks the source for a fresh shuffled deck and returns its id.
func (c *Client) NewDeck(ctx context.Context) (string, error) {
	var r newDeckResponse
	if err := c.get(ctx, "/new_deck", &r); err != nil {
		return "", err
	}
	if r.DeckID == "" {
		return "", errorsmod.Wrap(ErrUnavailable, "deck source returned empty deck_id")
	}
	return r.DeckID, nil
}

// Draw fetches n cards from a deck in source order.
func (c *Client) Draw(ctx context.Context, deckID string, n int) ([]engine.Card, error) {
	var r drawResponse
	if err := c.get(ctx, fmt.Sprintf("/draw_cards/%s/%d", deckID, n), &r); err != nil {
		return nil, err
	}
	cards := make([]engine.Card, 0, len(r.Cards))
	for _, raw := range r.Cards {
		card, err := engine.ParseCard(raw.Value, raw.Suit)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// NewDeal obtains a full 52-card deal: a fresh deck id plus every card in
// the source's shuffled order.
func (c *Client) NewDeal(ctx context.Context) (string, []engine.Card, error) {
	deckID, err := c.NewDeck(ctx)
	if err != nil {
		return "", nil, err
	}
	cards, err := c.Draw(ctx, deckID, dealSize)
	if err != nil {
		return "", nil, err
	}
	return deckID, cards, nil
}
