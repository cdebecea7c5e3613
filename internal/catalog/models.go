package catalog

import "time"

// Item is one row of the local catalog mirror. Truth lives in the POS; the
// mirror is a cache with explicit staleness semantics.
//
// Present means "observed in the most recent completed sync pass". Active is
// the storefront display flag and is independent of Present. UpdatedAt is a
// heartbeat: it advances on every pass that observed the item, changed or not.
type Item struct {
	ID            int64
	ExternalID    string
	Name          string
	Description   string
	CategoryID    string
	CategoryName  string
	PriceCents    int64
	ImageRef      string
	StockQuantity int
	Active        bool
	Present       bool
	UpdatedAt     time.Time
}
