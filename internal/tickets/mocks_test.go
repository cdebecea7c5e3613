package tickets

import (
	"context"
	"fmt"

	"github.com/arielhotels/roomstock/internal/pos"
)

type fakeStore struct {
	rows      map[string]*Ticket // by ticket id
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]*Ticket{}}
}

func (s *fakeStore) OpenByRoom(_ context.Context, room string) (*Ticket, error) {
	for _, t := range s.rows {
		if t.RoomNumber == room && t.Status == StatusOpen {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Insert(_ context.Context, t *Ticket) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, ex := range s.rows {
		if ex.RoomNumber == t.RoomNumber && ex.Status == StatusOpen {
			return ErrRoomBusy
		}
	}
	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *fakeStore) SetStatus(_ context.Context, id string, st Status) error {
	if t, ok := s.rows[id]; ok {
		t.Status = st
	}
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) CompleteOpen(_ context.Context, room string) (string, error) {
	for _, t := range s.rows {
		if t.RoomNumber == room && t.Status == StatusOpen {
			t.Status = StatusCompleted
			return t.ID, nil
		}
	}
	return "", nil
}

type fakePOS struct {
	orders    map[string]*pos.Order
	nextID    int
	created   int
	getCalls  int
	getErr    error
	getErrAt  int // fail GetOrder from this call number on; 0 = always
	createErr error
	appendErr error
}

func newFakePOS() *fakePOS {
	return &fakePOS{orders: map[string]*pos.Order{}}
}

func (p *fakePOS) ListCatalogItems(context.Context) ([]pos.CatalogObject, error) { return nil, nil }
func (p *fakePOS) ListCategories(context.Context) ([]pos.Category, error)        { return nil, nil }

func (p *fakePOS) GetOrder(_ context.Context, id string) (*pos.Order, error) {
	p.getCalls++
	if p.getErr != nil && (p.getErrAt == 0 || p.getCalls >= p.getErrAt) {
		return nil, p.getErr
	}
	o, ok := p.orders[id]
	if !ok {
		return nil, pos.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (p *fakePOS) CreateOrder(_ context.Context, room, guest string) (*pos.Order, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.nextID++
	p.created++
	o := &pos.Order{
		ID:         fmt.Sprintf("ord-%d", p.nextID),
		Status:     pos.OrderStatusOpen,
		RoomNumber: room,
		GuestName:  guest,
	}
	p.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (p *fakePOS) AppendLineItems(_ context.Context, id string, items []pos.LineItem) (*pos.Order, error) {
	if p.appendErr != nil {
		return nil, p.appendErr
	}
	o, ok := p.orders[id]
	if !ok {
		return nil, pos.ErrOrderNotFound
	}
	for _, li := range items {
		o.LineItems = append(o.LineItems, pos.OrderLineItem{
			CatalogObjectID: li.CatalogObjectID,
			Name:            li.Name,
			Quantity:        li.Quantity,
			PriceAmount:     li.PriceAmount,
			Note:            li.Note,
		})
		o.TotalCents += li.PriceAmount * int64(li.Quantity)
	}
	cp := *o
	return &cp, nil
}

type fakeLocks struct {
	held     map[string]bool
	acquires int
}

func (l *fakeLocks) Acquire(_ context.Context, room string) (func(), bool, error) {
	l.acquires++
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[room] {
		return nil, false, nil
	}
	l.held[room] = true
	return func() { delete(l.held, room) }, true, nil
}
