package tickets

import (
	"time"

	"github.com/arielhotels/roomstock/internal/pos"
)

// Ticket is the local row for a room's open tab. The linked POS order is the
// source of truth; the row is a pointer plus last-known status.
type Ticket struct {
	ID              string
	RoomNumber      string
	GuestName       string
	Status          Status
	ExternalOrderID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// View is what callers get back: the local row merged with the freshest
// remote order snapshot (nil when the operation never reached the POS).
type View struct {
	Ticket
	Remote *pos.Order `json:"remote,omitempty"`
}
