package tickets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	// OpenByRoom returns the room's OPEN ticket, or nil when there is none.
	OpenByRoom(ctx context.Context, room string) (*Ticket, error)
	Insert(ctx context.Context, t *Ticket) error
	SetStatus(ctx context.Context, id string, st Status) error
	Delete(ctx context.Context, id string) error
	// CompleteOpen transitions the room's OPEN ticket to COMPLETED and
	// returns its id; empty when the room has no open ticket.
	CompleteOpen(ctx context.Context, room string) (string, error)
}

type Repo struct{ DB *pgxpool.Pool }

const ticketCols = `id, room_number, guest_name, status, external_order_id, created_at, updated_at`

func (r *Repo) OpenByRoom(ctx context.Context, room string) (*Ticket, error) {
	var t Ticket
	err := r.DB.QueryRow(ctx, `
		SELECT `+ticketCols+` FROM room_tickets
		WHERE room_number=$1 AND status='OPEN'
	`, room).Scan(&t.ID, &t.RoomNumber, &t.GuestName, &t.Status,
		&t.ExternalOrderID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) Insert(ctx context.Context, t *Ticket) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO room_tickets(id, room_number, guest_name, status, external_order_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, t.ID, t.RoomNumber, t.GuestName, t.Status, t.ExternalOrderID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		// uniq_open_ticket: a concurrent create won the race for this room
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrRoomBusy
		}
		return err
	}
	return nil
}

func (r *Repo) SetStatus(ctx context.Context, id string, st Status) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE room_tickets SET status=$2, updated_at=now() WHERE id=$1
	`, id, st)
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM room_tickets WHERE id=$1`, id)
	return err
}

func (r *Repo) CompleteOpen(ctx context.Context, room string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx, `
		UPDATE room_tickets SET status='COMPLETED', updated_at=now()
		WHERE room_number=$1 AND status='OPEN'
		RETURNING id
	`, room).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
