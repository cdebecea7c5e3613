package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/arielhotels/roomstock/internal/pos"
	"github.com/arielhotels/roomstock/internal/syncstate"
)

const (
	Provider         = "pos"
	ResourceProducts = "products"
)

// ErrEmptySnapshot: the POS returned zero items. Treated as a failed fetch,
// never as "the catalog is genuinely empty" -- sweeping on it would soft-delete
// the whole mirror during an API outage.
var ErrEmptySnapshot = errors.New("catalog snapshot empty")

// ErrSyncRunning: another pass holds the sync lock. The caller skips; it does
// not wait.
var ErrSyncRunning = errors.New("catalog sync already running")

type Result struct {
	Added    int `json:"added"`
	Updated  int `json:"updated"`
	Disabled int `json:"disabled"`
	Errors   int `json:"errors"`
}

// Reconciler pulls the remote catalog and merges it into the mirror with
// mark-and-sweep soft deletion.
type Reconciler struct {
	Store        Store
	POS          pos.Client
	Status       syncstate.Recorder
	Locks        PassLocker    // nil skips serialization (tests only)
	Grace        time.Duration // must exceed one full pass's wall-clock time
	HomeCurrency string
	Now          func() time.Time
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Reconcile runs one full pass. Passes are serialized through the sync lock:
// a second caller gets ErrSyncRunning instead of racing the first on upserts
// and the sweep. The whole mutation set lands in a single transaction; the
// status record is written outside it so operators see failed passes too. A
// skipped pass records nothing -- it would clobber the last real outcome.
func (r *Reconciler) Reconcile(ctx context.Context) (Result, error) {
	if r.Locks != nil {
		release, ok, err := r.Locks.Acquire(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("acquire sync lock: %w", err)
		}
		if !ok {
			return Result{}, ErrSyncRunning
		}
		defer release()
	}

	syncStart := r.now()

	res, err := r.pass(ctx, syncStart)

	rec := syncstate.Record{
		Provider:     Provider,
		Resource:     ResourceProducts,
		LastSyncTime: r.now(),
		Status:       syncstate.StatusSuccess,
		Details:      detailsJSON(res),
	}
	if err != nil {
		rec.Status = syncstate.StatusError
		rec.Details = err.Error()
	}
	if rerr := r.Status.Record(ctx, rec); rerr != nil {
		log.Printf("catalog sync: record status: %v", rerr)
	}
	return res, err
}

func (r *Reconciler) pass(ctx context.Context, syncStart time.Time) (Result, error) {
	var res Result

	items, err := r.POS.ListCatalogItems(ctx)
	if err != nil {
		res.Errors++
		return res, fmt.Errorf("fetch catalog: %w", err)
	}
	if len(items) == 0 {
		res.Errors++
		return res, ErrEmptySnapshot
	}

	// Full category list up front; failure degrades to raw ids as names.
	names := map[string]string{}
	if cats, err := r.POS.ListCategories(ctx); err != nil {
		log.Printf("catalog sync: categories unavailable, using raw ids: %v", err)
	} else {
		for _, c := range cats {
			names[c.ID] = c.Name
		}
	}

	tx, err := r.Store.Begin(ctx)
	if err != nil {
		res.Errors++
		return res, fmt.Errorf("begin sync tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	observed := make([]string, 0, len(items))
	for _, obj := range items {
		it := Item{
			ExternalID:    obj.ExternalID,
			Name:          obj.Name,
			Description:   obj.Description,
			CategoryID:    obj.CategoryID,
			CategoryName:  categoryName(names, obj.CategoryID),
			PriceCents:    NormalizePrice(obj.PriceAmount, obj.Currency, r.HomeCurrency),
			ImageRef:      obj.ImageRef,
			StockQuantity: obj.StockQuantity,
		}
		created, err := tx.UpsertItem(ctx, it)
		if err != nil {
			log.Printf("catalog sync: upsert %s: %v", obj.ExternalID, err)
			res.Errors++
			continue
		}
		if created {
			res.Added++
		} else {
			res.Updated++
		}
		observed = append(observed, obj.ExternalID)
	}

	// Heartbeat every observed item even when no field changed; the sweep
	// keys off updated_at, not content changes.
	if err := tx.TouchObserved(ctx, observed, r.now()); err != nil {
		res.Errors++
		return res, fmt.Errorf("touch observed: %w", err)
	}

	disabled, err := tx.SweepStale(ctx, syncStart.Add(-r.Grace))
	if err != nil {
		res.Errors++
		return res, fmt.Errorf("sweep stale: %w", err)
	}
	res.Disabled = int(disabled)

	if err := tx.Commit(ctx); err != nil {
		res.Errors++
		return res, fmt.Errorf("commit sync tx: %w", err)
	}
	return res, nil
}

func categoryName(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// NormalizePrice converts a remote amount to local minor units. Home-currency
// amounts are already minor units; anything else is divided by 100 as a
// major-unit approximation.
func NormalizePrice(amount int64, currency, home string) int64 {
	if currency == "" || strings.EqualFold(currency, home) {
		return amount
	}
	return amount / 100
}

func detailsJSON(res Result) string {
	b, err := json.Marshal(res)
	if err != nil {
		return ""
	}
	return string(b)
}
