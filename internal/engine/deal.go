package engine

import (
	errorsmod "cosmossdk.io/errors"
)

// Deal builds the initial layout from an ordered, already-shuffled 52-card
// sequence. Slot i of the tableau receives i+1 cards, all face-down except
// the top; the remaining 24 cards become the stock with their order
// preserved, so the last card of the input is the first the player draws.
func Deal(deckID string, cards []Card) (*Game, error) {
	if len(cards) != 52 {
		return nil, errorsmod.Wrapf(ErrInvalidDeck, "expected 52 cards, got %d", len(cards))
	}
	seen := make(map[Card]bool, 52)
	for _, c := range cards {
		if !c.Valid() {
			return nil, errorsmod.Wrapf(ErrInvalidDeck, "invalid card %v", c)
		}
		if seen[c] {
			return nil, errorsmod.Wrapf(ErrInvalidDeck, "duplicate card %s", c)
		}
		seen[c] = true
	}

	g := &Game{
		DeckID:      deckID,
		Foundations: emptyFoundations(),
		Stock:       Stock{},
		Talon:       Talon{},
	}

	pos := 0
	for slot := 0; slot < 7; slot++ {
		col := make(TableauSlot, 0, slot+1)
		for j := 0; j <= slot; j++ {
			col = append(col, TableauCard{Card: cards[pos], FaceUp: j == slot})
			pos++
		}
		g.Tableau[slot] = col
	}

	g.Stock = append(g.Stock, cards[pos:]...)
	return g, nil
}
