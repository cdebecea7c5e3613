package tickets

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/arielhotels/roomstock/internal/pos"
)

// Manager owns the per-room ticket lifecycle: at most one OPEN ticket per
// room, every OPEN ticket linked to a live POS order, remote mutation always
// before the local row claims it happened.
type Manager struct {
	Store Store
	POS   pos.Client
	Locks RoomLocker // optional; the open-ticket unique index still backstops
	Now   func() time.Time
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// GetTicket is a self-healing read: the local row is checked against the
// linked POS order, and a row whose order is gone or closed is corrected to
// CANCELED before "no ticket" is returned. Reads are frequent enough that no
// background sweep is needed for tickets.
func (m *Manager) GetTicket(ctx context.Context, room string) (*View, error) {
	t, err := m.Store.OpenByRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}

	if t.ExternalOrderID == "" {
		// invalid open row; heal and report no ticket
		if err := m.Store.SetStatus(ctx, t.ID, StatusCanceled); err != nil {
			return nil, err
		}
		return nil, nil
	}

	o, err := m.POS.GetOrder(ctx, t.ExternalOrderID)
	if errors.Is(err, pos.ErrOrderNotFound) {
		if err := m.Store.SetStatus(ctx, t.ID, StatusCanceled); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Status != pos.OrderStatusOpen {
		if err := m.Store.SetStatus(ctx, t.ID, StatusCanceled); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &View{Ticket: *t, Remote: o}, nil
}

// CreateTicket is idempotent: a valid open ticket is returned unchanged. The
// POS order is created before the local row is inserted, so an OPEN row only
// ever exists for a confirmed remote order. A remote order whose local insert
// fails is left as an orphan; see DeleteTicket for the cleanup path.
func (m *Manager) CreateTicket(ctx context.Context, room, guest string) (*View, error) {
	if m.Locks != nil {
		release, ok, err := m.Locks.Acquire(ctx, room)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRoomBusy
		}
		defer release()
	}

	v, err := m.GetTicket(ctx, room)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}

	// A row that survived the self-heal read is one with no remote linkage
	// left mid-create; purge it so the re-insert cannot hit the unique index.
	if t, err := m.Store.OpenByRoom(ctx, room); err != nil {
		return nil, err
	} else if t != nil {
		if err := m.DeleteTicket(ctx, t.ID); err != nil {
			return nil, err
		}
	}

	// Irrevocable external side effect; never inside a local transaction.
	o, err := m.POS.CreateOrder(ctx, room, guest)
	if err != nil {
		return nil, err
	}

	now := m.now()
	t := &Ticket{
		ID:              uuid.NewString(),
		RoomNumber:      room,
		GuestName:       guest,
		Status:          StatusOpen,
		ExternalOrderID: o.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := m.Store.Insert(ctx, t); err != nil {
		// The POS order now exists with no local counterpart. No remote
		// cancellation is attempted; the orphan is logged for operators.
		log.Printf("tickets: orphan pos order %s for room %s: local insert failed: %v", o.ID, room, err)
		return nil, err
	}
	return &View{Ticket: *t, Remote: o}, nil
}

// AddItems normalizes the input, resolves the room's ticket (creating one if
// needed) and appends the items to the linked POS order. On remote failure
// the caller gets the best-known ticket state from a recovery read instead of
// the error; only when that read also fails does the call fail.
func (m *Manager) AddItems(ctx context.Context, room string, in []RawItem) (*View, error) {
	items, dropped := NormalizeItems(in)
	for _, d := range dropped {
		log.Printf("tickets: room %s: dropped line item: %v", room, d)
	}
	if len(items) == 0 {
		return nil, ErrNoValidItems
	}

	v, err := m.CreateTicket(ctx, room, "")
	if err != nil {
		return nil, err
	}

	li := make([]pos.LineItem, 0, len(items))
	for _, it := range items {
		li = append(li, pos.LineItem{
			CatalogObjectID: it.CatalogRef,
			Name:            it.Name,
			PriceAmount:     it.PriceCents,
			Quantity:        it.Quantity,
			Note:            it.Note,
		})
	}

	o, err := m.POS.AppendLineItems(ctx, v.ExternalOrderID, li)
	if err != nil {
		rv, rerr := m.GetTicket(ctx, room)
		if rerr != nil {
			return nil, err
		}
		return rv, nil
	}
	return &View{Ticket: v.Ticket, Remote: o}, nil
}

// Checkout closes the room's open ticket locally and returns its id; empty
// when the room had nothing open. Payment capture and remote order settlement
// are handled by the front-desk flow, not here.
func (m *Manager) Checkout(ctx context.Context, room string) (string, error) {
	return m.Store.CompleteOpen(ctx, room)
}

// DeleteTicket removes a local row outright. Only the invalid-row cleanup in
// CreateTicket uses it; terminal tickets are otherwise retained for audit.
func (m *Manager) DeleteTicket(ctx context.Context, id string) error {
	return m.Store.Delete(ctx, id)
}
