package engine

import (
	errorsmod "cosmossdk.io/errors"
)

// drawBatch is the number of cards a single stock draw turns over
// (draw-three Klondike).
const drawBatch = 3

// Every operation below is atomic: all preconditions are checked before the
// first mutation, so a rule violation leaves the game untouched. Once the
// game is won it is frozen and every operation returns ErrGameOver.

// MoveTableauToTableau moves the top `count` cards from one column to
// another, preserving their order, and reveals the uncovered card.
func (g *Game) MoveTableauToTableau(from, to, count int) error {
	if g.CheckWin() {
		return ErrGameOver
	}
	if from < 0 || from > 6 || to < 0 || to > 6 || from == to {
		return errorsmod.Wrapf(ErrInvalidSlot, "from=%d to=%d", from, to)
	}
	if count < 1 {
		return errorsmod.Wrapf(ErrInvalidCount, "count=%d", count)
	}
	src := g.Tableau[from]
	if len(src) == 0 {
		return errorsmod.Wrapf(ErrEmptySource, "tableau %d", from)
	}
	if count > len(src) {
		return errorsmod.Wrapf(ErrInvalidCount, "tableau %d has %d cards, want %d", from, len(src), count)
	}
	cut := len(src) - count
	if !src[cut].FaceUp {
		return errorsmod.Wrapf(ErrFaceDownMove, "tableau %d position %d", from, cut)
	}
	movingBottom := src[cut].Card
	if err := g.checkTableauPlacement(to, movingBottom); err != nil {
		return err
	}

	moving := make(TableauSlot, count)
	copy(moving, src[cut:])
	g.Tableau[from] = src[:cut]
	g.Tableau[to] = append(g.Tableau[to], moving...)
	g.revealTop(from)
	return nil
}

// MoveTableauToFoundation moves the top card of a column onto its suit's
// foundation.
func (g *Game) MoveTableauToFoundation(from int, suit Suit) error {
	if g.CheckWin() {
		return ErrGameOver
	}
	if from < 0 || from > 6 {
		return errorsmod.Wrapf(ErrInvalidSlot, "from=%d", from)
	}
	src := g.Tableau[from]
	top, ok := src.Top()
	if !ok {
		return errorsmod.Wrapf(ErrEmptySource, "tableau %d", from)
	}
	if top.Card.Suit != suit {
		return errorsmod.Wrapf(ErrSuitMismatch, "top of tableau %d is %s", from, top.Card)
	}
	if err := g.checkFoundationPlacement(suit, top.Card); err != nil {
		return err
	}

	g.Tableau[from] = src[:len(src)-1]
	g.Foundations[suit] = append(g.Foundations[suit], top.Card)
	g.revealTop(from)
	return nil
}

// MoveTalonToFoundation moves the top talon card onto its suit's foundation.
func (g *Game) MoveTalonToFoundation(suit Suit) error {
	if g.CheckWin() {
		return ErrGameOver
	}
	top, ok := g.Talon.Top()
	if !ok {
		return ErrEmptyTalon
	}
	if top.Suit != suit {
		return errorsmod.Wrapf(ErrSuitMismatch, "top of talon is %s", top)
	}
	if err := g.checkFoundationPlacement(suit, top); err != nil {
		return err
	}

	g.Talon = g.Talon[:len(g.Talon)-1]
	g.Foundations[suit] = append(g.Foundations[suit], top)
	return nil
}

// MoveTalonToTableau moves the top talon card onto a column, face-up.
func (g *Game) MoveTalonToTableau(to int) error {
	if g.CheckWin() {
		return ErrGameOver
	}
	if to < 0 || to > 6 {
		return errorsmod.Wrapf(ErrInvalidSlot, "to=%d", to)
	}
	top, ok := g.Talon.Top()
	if !ok {
		return ErrEmptyTalon
	}
	if err := g.checkTableauPlacement(to, top); err != nil {
		return err
	}

	g.Talon = g.Talon[:len(g.Talon)-1]
	g.Tableau[to] = append(g.Tableau[to], TableauCard{Card: top, FaceUp: true})
	return nil
}

// DrawFromStock turns over up to three cards, one at a time, from the stock
// to the talon.
func (g *Game) DrawFromStock() error {
	if g.CheckWin() {
		return ErrGameOver
	}
	if len(g.Stock) == 0 {
		return ErrEmptyStock
	}
	for i := 0; i < drawBatch && len(g.Stock) > 0; i++ {
		card := g.Stock[len(g.Stock)-1]
		g.Stock = g.Stock[:len(g.Stock)-1]
		g.Talon = append(g.Talon, card)
	}
	return nil
}

// ResetStock moves the whole talon back onto the empty stock by repeated
// pop/push, reversing its order so the talon's former top becomes the next
// card to draw.
func (g *Game) ResetStock() error {
	if g.CheckWin() {
		return ErrGameOver
	}
	if len(g.Talon) == 0 {
		return ErrEmptyTalon
	}
	if len(g.Stock) != 0 {
		return errorsmod.Wrapf(ErrStockNotEmpty, "stock has %d cards", len(g.Stock))
	}
	for len(g.Talon) > 0 {
		card := g.Talon[len(g.Talon)-1]
		g.Talon = g.Talon[:len(g.Talon)-1]
		g.Stock = append(g.Stock, card)
	}
	return nil
}

// checkTableauPlacement enforces the destination rule shared by every move
// that lands on a column: an empty column takes only a King; otherwise the
// arriving card must stack on the column's top card.
func (g *Game) checkTableauPlacement(to int, moving Card) error {
	dst := g.Tableau[to]
	target, ok := dst.Top()
	if !ok {
		if moving.Rank != RankKing {
			return errorsmod.Wrapf(ErrIllegalPlacement, "only a KING may move to empty tableau %d", to)
		}
		return nil
	}
	if !canStack(target.Card, moving) {
		return errorsmod.Wrapf(ErrIllegalPlacement, "%s cannot sit on %s", moving, target.Card)
	}
	return nil
}

// checkFoundationPlacement enforces the Ace-first, ascending-rank rule. The
// caller has already matched the card's suit to the foundation.
func (g *Game) checkFoundationPlacement(suit Suit, moving Card) error {
	f := g.Foundations[suit]
	target, ok := f.Top()
	if !ok {
		if moving.Rank != RankAce {
			return errorsmod.Wrapf(ErrIllegalPlacement, "only an ACE may start the %s foundation", suit)
		}
		return nil
	}
	if moving.Rank != target.Rank+1 {
		return errorsmod.Wrapf(ErrIllegalPlacement, "%s cannot follow %s", moving, target)
	}
	return nil
}
