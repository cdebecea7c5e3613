package redisx

import "time"

const (
	// Per-room create lock: lock:room:{room_number} -> holder token
	KeyRoomLock = "lock:room:%s"

	// Reconciler pass lock, single pass at a time: lock:catalog:sync
	KeyCatalogSyncLock = "lock:catalog:sync"

	// Cached merged ticket view: ticket:room:{room_number} -> json
	KeyTicketView = "ticket:room:%s"

	// Kitchen display state: hash kds:open, field = room_number, value = json
	KeyKDSOpen = "kds:open"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLRoomLock    = 10 * time.Second
	TTLSyncLock    = 20 * time.Minute
	TTLTicketCache = 30 * time.Second
	TTLDedup       = 48 * time.Hour
)
