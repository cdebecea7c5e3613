package tickets

const (
	EventTicketOpened     = "TicketOpened"
	EventTicketItemsAdded = "TicketItemsAdded"
	EventTicketCompleted  = "TicketCompleted"
)

const (
	TopicTicketOpened     = "ticket.opened"
	TopicTicketItemsAdded = "ticket.items.added"
	TopicTicketCompleted  = "ticket.completed"
)

// Partition key = room number, so every event for one room stays ordered.
func PartitionKey(room string) []byte { return []byte(room) }

type EventLineItem struct {
	CatalogRef string `json:"catalog_ref,omitempty"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

type TicketOpenedPayload struct {
	TicketID        string `json:"ticket_id"`
	RoomNumber      string `json:"room_number"`
	GuestName       string `json:"guest_name,omitempty"`
	ExternalOrderID string `json:"external_order_id"`
}

type TicketItemsAddedPayload struct {
	TicketID   string          `json:"ticket_id"`
	RoomNumber string          `json:"room_number"`
	Items      []EventLineItem `json:"items"`
	TotalCents int64           `json:"total_cents"`
}

type TicketCompletedPayload struct {
	TicketID   string `json:"ticket_id"`
	RoomNumber string `json:"room_number"`
}
