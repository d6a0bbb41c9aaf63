package models

// Account is a bank account, either pulled from an aggregator connection or
// created manually by the user. IDs are opaque strings: aggregator-assigned
// for synced accounts, "manual_<hex>" for manual ones.
//
// An account with an empty connection name is manual; only manual accounts
// may be edited or deleted through the manual-account API. Synced accounts
// are owned by the reconciliation engine.
type Account struct {
	ID             string  `gorm:"primaryKey" json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Subtype        string  `json:"subtype,omitempty"`
	Balance        float64 `json:"balance"`
	CurrencyCode   string  `json:"currency_code"`
	ItemID         string  `json:"item_id,omitempty"`
	ConnectionName string  `json:"connection_name,omitempty"`

	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}

// IsManual reports whether the account was created by the user rather than
// by sync.
func (a *Account) IsManual() bool {
	return a.ConnectionName == ""
}
