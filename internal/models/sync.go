package models

// SyncRecord is one entry in the sync history: a reconciliation batch that
// was applied for a connection.
type SyncRecord struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	ItemID            string `json:"item_id"`
	AccountsCount     int    `json:"accounts_count"`
	TransactionsCount int    `json:"transactions_count"`
	Status            string `gorm:"default:'success'" json:"status"`
	SyncDate          string `json:"sync_date"`
	ModificationDate  string `json:"modification_date"`
}

// TableName keeps the historical table name.
func (SyncRecord) TableName() string { return "sync_history" }
