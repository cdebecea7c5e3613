package tickets

import "errors"

var (
	// ErrNoValidItems: every supplied line item failed normalization.
	ErrNoValidItems = errors.New("no valid line items")

	// ErrRoomBusy: another request holds the room's creation lock, or the
	// open-ticket unique index rejected a concurrent insert.
	ErrRoomBusy = errors.New("room ticket busy")
)
