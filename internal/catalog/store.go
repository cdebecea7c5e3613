package catalog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store gives the reconciler one transaction for a whole sync pass; either
// every mutation of the pass lands or none of it does.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	ListActive(ctx context.Context) ([]Item, error)
}

type Tx interface {
	// UpsertItem writes one observed item (present=true); reports whether a
	// new row was created. A failed upsert must leave the transaction usable
	// so the pass can carry on with the remaining items.
	UpsertItem(ctx context.Context, it Item) (created bool, err error)
	// TouchObserved advances the heartbeat for every observed external id,
	// whether or not any field changed.
	TouchObserved(ctx context.Context, externalIDs []string, at time.Time) error
	// SweepStale soft-deletes rows whose heartbeat predates the cutoff.
	SweepStale(ctx context.Context, before time.Time) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &repoTx{tx: tx}, nil
}

func (r *Repo) ListActive(ctx context.Context) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, external_id, name, description, category_id, category_name,
		       price_cents, image_ref, stock_quantity, active, present, updated_at
		FROM catalog_items
		WHERE active AND present
		ORDER BY category_name, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ExternalID, &it.Name, &it.Description,
			&it.CategoryID, &it.CategoryName, &it.PriceCents, &it.ImageRef,
			&it.StockQuantity, &it.Active, &it.Present, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

type repoTx struct{ tx pgx.Tx }

// Each upsert runs under a savepoint (nested pgx tx): a failing item rolls
// back to the savepoint only, so the pass transaction stays usable for the
// remaining items instead of aborting on the first statement error.
func (t *repoTx) UpsertItem(ctx context.Context, it Item) (bool, error) {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return false, err
	}
	var created bool
	err = sp.QueryRow(ctx, `
		INSERT INTO catalog_items(external_id, name, description, category_id,
		    category_name, price_cents, image_ref, stock_quantity, active, present, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true,true,now())
		ON CONFLICT (external_id) DO UPDATE
		SET name=EXCLUDED.name, description=EXCLUDED.description,
		    category_id=EXCLUDED.category_id, category_name=EXCLUDED.category_name,
		    price_cents=EXCLUDED.price_cents, image_ref=EXCLUDED.image_ref,
		    stock_quantity=EXCLUDED.stock_quantity, present=true
		RETURNING (xmax = 0)
	`, it.ExternalID, it.Name, it.Description, it.CategoryID, it.CategoryName,
		it.PriceCents, it.ImageRef, it.StockQuantity).Scan(&created)
	if err != nil {
		_ = sp.Rollback(ctx)
		return false, err
	}
	return created, sp.Commit(ctx)
}

func (t *repoTx) TouchObserved(ctx context.Context, externalIDs []string, at time.Time) error {
	if len(externalIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx, `
		UPDATE catalog_items SET updated_at=$2 WHERE external_id = ANY($1)
	`, externalIDs, at)
	return err
}

func (t *repoTx) SweepStale(ctx context.Context, before time.Time) (int64, error) {
	ct, err := t.tx.Exec(ctx, `
		UPDATE catalog_items SET present=false WHERE present AND updated_at < $1
	`, before)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (t *repoTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *repoTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
