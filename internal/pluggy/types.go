// Package pluggy talks to the Pluggy open-banking aggregator: API-key
// authentication, item status, forced refresh, and paginated account and
// transaction fetches. The payload shapes here are Pluggy's wire contract;
// the reconciliation engine consumes them as-is.
package pluggy

// Account is one account payload as returned by the aggregator, enriched by
// the orchestrator with connection provenance before reconciliation.
type Account struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Subtype      string  `json:"subtype"`
	Balance      float64 `json:"balance"`
	CurrencyCode string  `json:"currencyCode"`

	// Set by the orchestrator, not by the API.
	ItemID         string `json:"-"`
	ConnectionName string `json:"-"`
}

// Transaction is one transaction payload as returned by the aggregator.
// Amount may arrive signed; the reconciliation engine stores the magnitude
// and keeps direction in Type.
type Transaction struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"accountId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`

	// Set by the orchestrator, not by the API.
	AccountName    string `json:"-"`
	ItemID         string `json:"-"`
	ConnectionName string `json:"-"`
}

// Item is the aggregator's view of one bank connection.
type Item struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Item statuses that allow fetching data.
const (
	ItemStatusUpdated   = "UPDATED"
	ItemStatusConnected = "CONNECTED"
	ItemStatusUpdating  = "UPDATING"
)

// Syncable reports whether the item is in a state that allows a data fetch.
func (i *Item) Syncable() bool {
	return i.Status == ItemStatusUpdated || i.Status == ItemStatusConnected
}
