package codec

import (
	"encoding/json"
	"fmt"
)

// MoveEnvelope is the move-request container the façade accepts on its
// move endpoint. The type string routes to one of the typed requests
// below; the value payload is decoded lazily by the dispatcher.
type MoveEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func DecodeMoveEnvelope(b []byte) (MoveEnvelope, error) {
	var env MoveEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return MoveEnvelope{}, fmt.Errorf("invalid move json: %w", err)
	}
	if env.Type == "" {
		return MoveEnvelope{}, fmt.Errorf("missing move.type")
	}
	return env, nil
}

// Move type strings understood by the dispatcher.
const (
	TypeTableauMove       = "tableau/move"
	TypeTableauFoundation = "tableau/to_foundation"
	TypeTalonToFoundation = "talon/to_foundation"
	TypeTalonToTableau    = "talon/to_tableau"
)

// ---- Tableau ----

type TableauMove struct {
	ColumnFrom int `json:"column_from"`
	ColumnTo   int `json:"column_to"`
	// Zero means "one card"; clients moving a single card may omit it.
	NumberOfCards int `json:"number_of_cards,omitempty"`
}

type TableauToFoundationMove struct {
	ColumnFrom int    `json:"column_from"`
	Suit       string `json:"suit"`
}

// ---- Talon ----

type TalonToFoundationMove struct {
	Suit string `json:"suit"`
}

type TalonToTableauMove struct {
	ColumnTo int `json:"column_to"`
}
