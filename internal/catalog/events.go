package catalog

const (
	EventCatalogSynced = "CatalogSynced"
	TopicCatalogSynced = "catalog.synced"
)

type CatalogSyncedPayload struct {
	Result Result `json:"result"`
	Failed bool   `json:"failed"`
	Error  string `json:"error,omitempty"`
}
