package engine

import (
	errorsmod "cosmossdk.io/errors"
)

// Suit uses the deck source's textual identifiers so cards survive a JSON
// round trip through the adapter unchanged.
type Suit string

const (
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
	Spades   Suit = "SPADES"
)

// Suits lists the four suits in the canonical order used for snapshots and
// win checks.
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

type Color uint8

const (
	Red Color = iota
	Black
)

// Rank values after parsing: 1=Ace .. 13=King.
const (
	RankAce   = 1
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
)

var rankValues = map[string]int{
	"ACE":   1,
	"2":     2,
	"3":     3,
	"4":     4,
	"5":     5,
	"6":     6,
	"7":     7,
	"8":     8,
	"9":     9,
	"10":    10,
	"JACK":  11,
	"QUEEN": 12,
	"KING":  13,
}

var rankLabels = [14]string{
	"", "ACE", "2", "3", "4", "5", "6", "7", "8", "9", "10", "JACK", "QUEEN", "KING",
}

// Card is an immutable value; equality is by (rank, suit).
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) Color() Color {
	if c.Suit == Hearts || c.Suit == Diamonds {
		return Red
	}
	return Black
}

func (c Card) Valid() bool {
	if c.Rank < RankAce || c.Rank > RankKing {
		return false
	}
	switch c.Suit {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	default:
		return false
	}
}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return rankLabels[c.Rank] + " of " + string(c.Suit)
}

// ParseCard builds a card from the deck source's textual (value, suit) pair.
func ParseCard(value, suit string) (Card, error) {
	rank, ok := rankValues[value]
	if !ok {
		return Card{}, errorsmod.Wrapf(ErrInvalidDeck, "unknown card value %q", value)
	}
	s := Suit(suit)
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
	default:
		return Card{}, errorsmod.Wrapf(ErrInvalidDeck, "unknown card suit %q", suit)
	}
	return Card{Rank: rank, Suit: s}, nil
}

// ParseSuit validates a textual suit from a move request.
func ParseSuit(suit string) (Suit, error) {
	s := Suit(suit)
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return s, nil
	default:
		return "", errorsmod.Wrapf(ErrSuitMismatch, "unknown suit %q", suit)
	}
}
