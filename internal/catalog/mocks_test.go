package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/arielhotels/roomstock/internal/pos"
	"github.com/arielhotels/roomstock/internal/syncstate"
)

type fakeStore struct {
	items     map[string]*Item // committed rows by external id
	beginErr  error
	touchErr  error
	sweepErr  error
	upsertErr map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string]*Item{}, upsertErr: map[string]error{}}
}

func (s *fakeStore) Begin(context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	staged := make(map[string]*Item, len(s.items))
	for k, v := range s.items {
		cp := *v
		staged[k] = &cp
	}
	return &fakeTx{s: s, staged: staged}, nil
}

func (s *fakeStore) ListActive(context.Context) ([]Item, error) {
	var out []Item
	for _, it := range s.items {
		if it.Active && it.Present {
			out = append(out, *it)
		}
	}
	return out, nil
}

// errTxAborted mirrors Postgres behavior after a failed statement: every
// later command in the transaction fails until rollback.
var errTxAborted = errors.New("current transaction is aborted, commands ignored until end of transaction block")

type fakeTx struct {
	s         *fakeStore
	staged    map[string]*Item
	committed bool
	aborted   bool
}

// UpsertItem errors leave the transaction usable, like the savepoint-wrapped
// pgx implementation. Every other failing statement aborts the transaction.
func (t *fakeTx) UpsertItem(_ context.Context, it Item) (bool, error) {
	if t.aborted {
		return false, errTxAborted
	}
	if err := t.s.upsertErr[it.ExternalID]; err != nil {
		return false, err
	}
	if ex, ok := t.staged[it.ExternalID]; ok {
		keepUpdated := ex.UpdatedAt
		keepActive := ex.Active
		*ex = it
		ex.UpdatedAt = keepUpdated
		ex.Active = keepActive
		ex.Present = true
		return false, nil
	}
	cp := it
	cp.Active = true
	cp.Present = true
	t.staged[it.ExternalID] = &cp
	return true, nil
}

func (t *fakeTx) TouchObserved(_ context.Context, ids []string, at time.Time) error {
	if t.aborted {
		return errTxAborted
	}
	if t.s.touchErr != nil {
		t.aborted = true
		return t.s.touchErr
	}
	for _, id := range ids {
		if it, ok := t.staged[id]; ok {
			it.UpdatedAt = at
		}
	}
	return nil
}

func (t *fakeTx) SweepStale(_ context.Context, before time.Time) (int64, error) {
	if t.aborted {
		return 0, errTxAborted
	}
	if t.s.sweepErr != nil {
		t.aborted = true
		return 0, t.s.sweepErr
	}
	var n int64
	for _, it := range t.staged {
		if it.Present && it.UpdatedAt.Before(before) {
			it.Present = false
			n++
		}
	}
	return n, nil
}

func (t *fakeTx) Commit(context.Context) error {
	if t.aborted {
		return errTxAborted
	}
	t.s.items = t.staged
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error { return nil }

type fakePOS struct {
	items   []pos.CatalogObject
	cats    []pos.Category
	listErr error
	catsErr error
}

func (p *fakePOS) ListCatalogItems(context.Context) ([]pos.CatalogObject, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.items, nil
}

func (p *fakePOS) ListCategories(context.Context) ([]pos.Category, error) {
	if p.catsErr != nil {
		return nil, p.catsErr
	}
	return p.cats, nil
}

func (p *fakePOS) GetOrder(context.Context, string) (*pos.Order, error) {
	return nil, pos.ErrOrderNotFound
}
func (p *fakePOS) CreateOrder(context.Context, string, string) (*pos.Order, error) {
	return nil, pos.ErrUnavailable
}
func (p *fakePOS) AppendLineItems(context.Context, string, []pos.LineItem) (*pos.Order, error) {
	return nil, pos.ErrUnavailable
}

type fakePassLock struct {
	held     bool
	acquires int
	releases int
}

func (l *fakePassLock) Acquire(context.Context) (func(), bool, error) {
	l.acquires++
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func() { l.held = false; l.releases++ }, true, nil
}

type fakeRecorder struct {
	records []syncstate.Record
}

func (r *fakeRecorder) Record(_ context.Context, rec syncstate.Record) error {
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRecorder) Last(context.Context, string, string) (*syncstate.Record, error) {
	if len(r.records) == 0 {
		return nil, nil
	}
	rec := r.records[len(r.records)-1]
	return &rec, nil
}
