package engine

import (
	"crypto/sha256"
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
)

// Game is the aggregate of all piles for one Klondike game. DeckID is the
// opaque identifier the deck source issued for the deal; it is retained for
// traceability only and never interpreted.
type Game struct {
	DeckID      string                  `json:"deckId"`
	Tableau     [7]TableauSlot          `json:"tableau"`
	Foundations map[Suit]FoundationSlot `json:"foundation"`
	Stock       Stock                   `json:"stock"`
	Talon       Talon                   `json:"talon"`
}

// Snapshot serialises the complete game. encoding/json writes map keys in
// sorted order, so the output is deterministic and safe to compare or hash.
func (g *Game) Snapshot() ([]byte, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, errorsmod.Wrap(ErrCorruptSnapshot, err.Error())
	}
	return b, nil
}

// Hash is a deterministic digest of the full game state, used by the
// atomicity tests to assert that failed moves change nothing.
func (g *Game) Hash() [sha256.Size]byte {
	b, _ := g.Snapshot()
	return sha256.Sum256(b)
}

// Restore rebuilds a game from a snapshot. The snapshot must contain the
// exact 52-card multiset and satisfy every per-pile invariant; anything else
// is rejected with ErrCorruptSnapshot.
func Restore(snapshot []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(snapshot, &g); err != nil {
		return nil, errorsmod.Wrap(ErrCorruptSnapshot, err.Error())
	}
	if g.Foundations == nil {
		g.Foundations = emptyFoundations()
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Clone deep-copies the game via a JSON round trip, the same staging trick
// the state layer uses for snapshots.
func (g *Game) Clone() (*Game, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, errorsmod.Wrap(ErrCorruptSnapshot, err.Error())
	}
	var out Game
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, errorsmod.Wrap(ErrCorruptSnapshot, err.Error())
	}
	if out.Foundations == nil {
		out.Foundations = emptyFoundations()
	}
	return &out, nil
}

// CheckWin reports whether every foundation carries its full Ace..King run.
func (g *Game) CheckWin() bool {
	for _, suit := range Suits {
		f := g.Foundations[suit]
		if len(f) != 13 {
			return false
		}
		if top, _ := f.Top(); top.Rank != RankKing {
			return false
		}
	}
	return true
}

func emptyFoundations() map[Suit]FoundationSlot {
	return map[Suit]FoundationSlot{
		Hearts:   {},
		Diamonds: {},
		Clubs:    {},
		Spades:   {},
	}
}

// validate enforces the cross-pile and per-pile invariants on a restored
// game: the 52-card multiset, face-up discipline, tableau adjacency, and
// foundation monotonicity.
func (g *Game) validate() error {
	seen := make(map[Card]bool, 52)
	record := func(c Card) error {
		if !c.Valid() {
			return errorsmod.Wrapf(ErrCorruptSnapshot, "invalid card %v", c)
		}
		if seen[c] {
			return errorsmod.Wrapf(ErrCorruptSnapshot, "duplicate card %s", c)
		}
		seen[c] = true
		return nil
	}

	for i, slot := range g.Tableau {
		sawFaceUp := false
		for j, tc := range slot {
			if err := record(tc.Card); err != nil {
				return err
			}
			if tc.FaceUp {
				sawFaceUp = true
			} else if sawFaceUp {
				return errorsmod.Wrapf(ErrCorruptSnapshot, "tableau %d: face-down card above a face-up card", i)
			}
			if tc.FaceUp && j+1 < len(slot) && slot[j+1].FaceUp && !canStack(tc.Card, slot[j+1].Card) {
				return errorsmod.Wrapf(ErrCorruptSnapshot, "tableau %d: %s cannot sit on %s", i, slot[j+1].Card, tc.Card)
			}
		}
		if top, ok := slot.Top(); ok && !top.FaceUp {
			return errorsmod.Wrapf(ErrCorruptSnapshot, "tableau %d: top card is face-down", i)
		}
	}

	if len(g.Foundations) != 4 {
		return errorsmod.Wrapf(ErrCorruptSnapshot, "expected 4 foundations, got %d", len(g.Foundations))
	}
	for _, suit := range Suits {
		f, ok := g.Foundations[suit]
		if !ok {
			return errorsmod.Wrapf(ErrCorruptSnapshot, "missing foundation for %s", suit)
		}
		for i, c := range f {
			if err := record(c); err != nil {
				return err
			}
			if c.Suit != suit {
				return errorsmod.Wrapf(ErrCorruptSnapshot, "foundation %s holds %s", suit, c)
			}
			if c.Rank != i+1 {
				return errorsmod.Wrapf(ErrCorruptSnapshot, "foundation %s: rank %d at position %d", suit, c.Rank, i)
			}
		}
	}

	for _, c := range g.Stock {
		if err := record(c); err != nil {
			return err
		}
	}
	for _, c := range g.Talon {
		if err := record(c); err != nil {
			return err
		}
	}

	if len(seen) != 52 {
		return errorsmod.Wrapf(ErrCorruptSnapshot, "expected 52 cards, got %d", len(seen))
	}
	return nil
}
