package engine

import errorsmod "cosmossdk.io/errors"

const Codespace = "klondike"

// Rule violations and integrity errors surfaced by the engine. Never
// recovered internally; the request layer maps them to responses.
var (
	ErrEmptySource      = errorsmod.Register(Codespace, 1, "no cards in source pile")
	ErrEmptyTalon       = errorsmod.Register(Codespace, 2, "talon is empty")
	ErrEmptyStock       = errorsmod.Register(Codespace, 3, "stock is empty")
	ErrStockNotEmpty    = errorsmod.Register(Codespace, 4, "stock can be reloaded only when it is empty")
	ErrInvalidCount     = errorsmod.Register(Codespace, 5, "invalid number of cards to move")
	ErrFaceDownMove     = errorsmod.Register(Codespace, 6, "cannot move face-down cards")
	ErrIllegalPlacement = errorsmod.Register(Codespace, 7, "card placement not allowed")
	ErrSuitMismatch     = errorsmod.Register(Codespace, 8, "card suit does not match the foundation suit")
	ErrGameOver         = errorsmod.Register(Codespace, 9, "game is already won")
	ErrInvalidSlot      = errorsmod.Register(Codespace, 10, "invalid pile index")
	ErrInvalidDeck      = errorsmod.Register(Codespace, 11, "invalid deck")
	ErrCorruptSnapshot  = errorsmod.Register(Codespace, 12, "corrupt snapshot")
)
