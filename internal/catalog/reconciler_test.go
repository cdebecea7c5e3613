package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arielhotels/roomstock/internal/pos"
	"github.com/arielhotels/roomstock/internal/syncstate"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newReconciler(store *fakeStore, remote *fakePOS, rec *fakeRecorder) *Reconciler {
	return &Reconciler{
		Store:        store,
		POS:          remote,
		Status:       rec,
		Grace:        9 * time.Minute,
		HomeCurrency: "USD",
		Now:          func() time.Time { return t0 },
	}
}

func seedMirror(store *fakeStore, ids ...string) {
	for _, id := range ids {
		store.items[id] = &Item{
			ExternalID: id,
			Name:       "old " + id,
			Active:     true,
			Present:    true,
			UpdatedAt:  t0.Add(-time.Hour),
		}
	}
}

func remoteItem(id string) pos.CatalogObject {
	return pos.CatalogObject{ExternalID: id, Name: "item " + id, PriceAmount: 1200, Currency: "USD"}
}

func TestReconcileMarkAndSweep(t *testing.T) {
	store := newFakeStore()
	seedMirror(store, "A", "B", "C")
	remote := &fakePOS{items: []pos.CatalogObject{remoteItem("A"), remoteItem("B")}}
	rec := &fakeRecorder{}

	res, err := newReconciler(store, remote, rec).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Added: 0, Updated: 2, Disabled: 1, Errors: 0}, res)
	assert.True(t, store.items["A"].Present)
	assert.True(t, store.items["B"].Present)
	assert.False(t, store.items["C"].Present)

	// heartbeat advanced for observed items even though "A" only changed name
	assert.Equal(t, t0, store.items["A"].UpdatedAt)
	assert.Equal(t, t0.Add(-time.Hour), store.items["C"].UpdatedAt)

	require.Len(t, rec.records, 1)
	assert.Equal(t, syncstate.StatusSuccess, rec.records[0].Status)
	assert.Equal(t, "pos", rec.records[0].Provider)
	assert.Equal(t, "products", rec.records[0].Resource)
	assert.JSONEq(t, `{"added":0,"updated":2,"disabled":1,"errors":0}`, rec.records[0].Details)
}

func TestReconcileAddsNewItems(t *testing.T) {
	store := newFakeStore()
	remote := &fakePOS{items: []pos.CatalogObject{remoteItem("A"), remoteItem("B")}}
	rec := &fakeRecorder{}

	res, err := newReconciler(store, remote, rec).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 0, res.Updated)
	require.Contains(t, store.items, "A")
	assert.True(t, store.items["A"].Active)
	assert.True(t, store.items["A"].Present)
	assert.Equal(t, int64(1200), store.items["A"].PriceCents)
}

func TestReconcileEmptySnapshotGuard(t *testing.T) {
	store := newFakeStore()
	seedMirror(store, "C")
	remote := &fakePOS{}
	rec := &fakeRecorder{}

	_, err := newReconciler(store, remote, rec).Reconcile(context.Background())
	require.ErrorIs(t, err, ErrEmptySnapshot)

	// no sweep ran: an outage is not an empty catalog
	assert.True(t, store.items["C"].Present)
	require.Len(t, rec.records, 1)
	assert.Equal(t, syncstate.StatusError, rec.records[0].Status)
}

func TestReconcileFetchFailureAborts(t *testing.T) {
	store := newFakeStore()
	seedMirror(store, "A")
	remote := &fakePOS{listErr: pos.ErrUnavailable}
	rec := &fakeRecorder{}

	_, err := newReconciler(store, remote, rec).Reconcile(context.Background())
	require.ErrorIs(t, err, pos.ErrUnavailable)

	assert.Equal(t, "old A", store.items["A"].Name)
	require.Len(t, rec.records, 1)
	assert.Equal(t, syncstate.StatusError, rec.records[0].Status)
}

func TestReconcileCategoryLookup(t *testing.T) {
	t.Run("resolves names from the category list", func(t *testing.T) {
		store := newFakeStore()
		obj := remoteItem("A")
		obj.CategoryID = "cat-1"
		remote := &fakePOS{
			items: []pos.CatalogObject{obj},
			cats:  []pos.Category{{ID: "cat-1", Name: "Beverages"}},
		}

		_, err := newReconciler(store, remote, &fakeRecorder{}).Reconcile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Beverages", store.items["A"].CategoryName)
	})

	t.Run("degrades to raw id when the category fetch fails", func(t *testing.T) {
		store := newFakeStore()
		obj := remoteItem("A")
		obj.CategoryID = "cat-1"
		remote := &fakePOS{
			items:   []pos.CatalogObject{obj},
			catsErr: pos.ErrUnavailable,
		}

		res, err := newReconciler(store, remote, &fakeRecorder{}).Reconcile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, res.Errors) // non-fatal
		assert.Equal(t, "cat-1", store.items["A"].CategoryName)
	})
}

func TestReconcileRollsBackOnStoreFailure(t *testing.T) {
	store := newFakeStore()
	seedMirror(store, "A", "C")
	store.touchErr = assert.AnError
	remote := &fakePOS{items: []pos.CatalogObject{remoteItem("A")}}
	rec := &fakeRecorder{}

	_, err := newReconciler(store, remote, rec).Reconcile(context.Background())
	require.Error(t, err)

	// nothing committed: upsert of A discarded, C not swept
	assert.Equal(t, "old A", store.items["A"].Name)
	assert.True(t, store.items["C"].Present)
	require.Len(t, rec.records, 1)
	assert.Equal(t, syncstate.StatusError, rec.records[0].Status)
}

// A failing item must not take the rest of the transaction down with it: the
// items after it still land, the heartbeat and sweep still run, and the pass
// commits. The fake transaction rejects every statement after an uncompensated
// failure, the way Postgres does, so this only holds while per-item errors
// are contained.
func TestReconcilePartialItemErrors(t *testing.T) {
	store := newFakeStore()
	seedMirror(store, "A", "C")
	store.upsertErr["B"] = assert.AnError
	remote := &fakePOS{items: []pos.CatalogObject{remoteItem("A"), remoteItem("B"), remoteItem("D")}}
	rec := &fakeRecorder{}

	res, err := newReconciler(store, remote, rec).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Added: 1, Updated: 1, Disabled: 1, Errors: 1}, res)
	assert.NotContains(t, store.items, "B")
	assert.Contains(t, store.items, "D")

	// statements after the failed upsert ran in the same transaction
	assert.Equal(t, t0, store.items["A"].UpdatedAt)
	assert.False(t, store.items["C"].Present)
	require.Len(t, rec.records, 1)
	assert.Equal(t, syncstate.StatusSuccess, rec.records[0].Status)
}

func TestReconcilePassLock(t *testing.T) {
	t.Run("held lock skips the pass without recording", func(t *testing.T) {
		store := newFakeStore()
		seedMirror(store, "A")
		remote := &fakePOS{items: []pos.CatalogObject{remoteItem("A")}}
		rec := &fakeRecorder{}

		r := newReconciler(store, remote, rec)
		r.Locks = &fakePassLock{held: true}

		_, err := r.Reconcile(context.Background())
		require.ErrorIs(t, err, ErrSyncRunning)

		assert.Equal(t, "old A", store.items["A"].Name)
		assert.Empty(t, rec.records)
	})

	t.Run("released after the pass, success or not", func(t *testing.T) {
		lock := &fakePassLock{}
		r := newReconciler(newFakeStore(), &fakePOS{listErr: pos.ErrUnavailable}, &fakeRecorder{})
		r.Locks = lock

		_, err := r.Reconcile(context.Background())
		require.ErrorIs(t, err, pos.ErrUnavailable)
		assert.Equal(t, 1, lock.releases)
		assert.False(t, lock.held)
	})
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
		want     int64
	}{
		{"home currency used as-is", 1250, "USD", 1250},
		{"home currency case-insensitive", 1250, "usd", 1250},
		{"empty currency treated as home", 1250, "", 1250},
		{"foreign currency divided by 100", 1250, "EUR", 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePrice(tc.amount, tc.currency, "USD"))
		})
	}
}
