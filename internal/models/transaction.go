package models

// TransactionType carries the direction of a transaction. Amounts are always
// stored as non-negative magnitudes; direction is never encoded in the amount.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Valid reports whether t is a known direction.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// Transaction is one bank transaction. IDs are opaque strings: aggregator
// assigned for synced rows, "manual_<hex>" for user-created ones.
//
// Once Verified is set the core financial fields (amount, description, date,
// type, source category) are immutable to sync: a diverging sync write flags
// a conflict instead of mutating the row. Manual edits through the CRUD
// surface remain possible.
type Transaction struct {
	ID              string          `gorm:"primaryKey" json:"id"`
	AccountID       string          `gorm:"index" json:"account_id"`
	AccountName     string          `json:"account_name,omitempty"`
	Amount          float64         `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate string          `json:"transaction_date"`
	Category        string          `json:"category,omitempty"` // source category from the aggregator
	Type            TransactionType `json:"type"`
	ItemID          string          `json:"item_id,omitempty"`
	ConnectionName  string          `json:"connection_name,omitempty"`

	// User classification, independent of the source category.
	UserCategory    string `json:"user_category,omitempty"`
	UserSubcategory string `json:"user_subcategory,omitempty"`

	Verified           bool   `gorm:"default:false" json:"verified"`
	Ignored            bool   `gorm:"default:false" json:"ignored"`
	ConflictDetected   bool   `gorm:"default:false" json:"conflict_detected"`
	ConflictLog        string `json:"conflict_log,omitempty"`
	ManualModification bool   `gorm:"default:false" json:"manual_modification"`

	// Per-transaction split override; nil means the account split applies.
	User1Percent *float64 `json:"user1_percent,omitempty"`
	User2Percent *float64 `json:"user2_percent,omitempty"`

	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}

// IsManual reports whether the transaction was created by the user rather
// than by sync.
func (t *Transaction) IsManual() bool {
	return t.ConnectionName == "" || t.ConnectionName == "MANUAL"
}
