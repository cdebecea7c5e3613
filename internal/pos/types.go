package pos

import "time"

// Catalog and order shapes as the POS returns them. The local mirror has its
// own row types; these stay close to the wire.

type CatalogObject struct {
	ExternalID    string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	CategoryID    string `json:"category_id"`
	PriceAmount   int64  `json:"price_amount"` // minor units in Currency
	Currency      string `json:"currency"`
	ImageRef      string `json:"image_ref"`
	StockQuantity int    `json:"stock_quantity"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const (
	OrderStatusOpen      = "open"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

type Order struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	RoomNumber string          `json:"room_number"`
	GuestName  string          `json:"guest_name"`
	LineItems  []OrderLineItem `json:"line_items"`
	TotalCents int64           `json:"total_cents"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type OrderLineItem struct {
	CatalogObjectID string `json:"catalog_object_id,omitempty"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	PriceAmount     int64  `json:"price_amount"`
	Note            string `json:"note,omitempty"`
}

// LineItem is the append-order input: either a catalog reference or an
// ad-hoc name/price pair.
type LineItem struct {
	CatalogObjectID string `json:"catalog_object_id,omitempty"`
	Name            string `json:"name,omitempty"`
	PriceAmount     int64  `json:"price_amount,omitempty"`
	Quantity        int    `json:"quantity"`
	Note            string `json:"note,omitempty"`
}
