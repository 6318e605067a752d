package engine

// TableauCard is one entry of a tableau column: the card plus its
// visibility bit. Index 0 of a slot is the bottom of the column.
type TableauCard struct {
	Card   Card `json:"card"`
	FaceUp bool `json:"faceUp"`
}

// TableauSlot is one of the seven build-down columns. The last element is
// the top (accessible) card.
type TableauSlot []TableauCard

func (s TableauSlot) Top() (TableauCard, bool) {
	if len(s) == 0 {
		return TableauCard{}, false
	}
	return s[len(s)-1], true
}

// FoundationSlot holds one suit's cards, Ace at index 0.
type FoundationSlot []Card

func (f FoundationSlot) Top() (Card, bool) {
	if len(f) == 0 {
		return Card{}, false
	}
	return f[len(f)-1], true
}

// Stock is the face-down reserve; the last element is the next to be drawn.
type Stock []Card

// Talon is the face-up waste pile; only the last element is playable.
type Talon []Card

func (t Talon) Top() (Card, bool) {
	if len(t) == 0 {
		return Card{}, false
	}
	return t[len(t)-1], true
}

// canStack reports whether moving may be placed on top of target inside the
// tableau: rank one lower, opposite colour.
func canStack(target, moving Card) bool {
	return moving.Rank+1 == target.Rank && moving.Color() != target.Color()
}

// revealTop flips the new top card of a tableau slot face-up after an
// overlying stack is removed.
func (g *Game) revealTop(slot int) {
	s := g.Tableau[slot]
	if len(s) > 0 && !s[len(s)-1].FaceUp {
		s[len(s)-1].FaceUp = true
	}
}
