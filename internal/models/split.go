package models

// AccountSplit is the per-account expense split between the two users.
// Percentages always sum to 100 within a cent; the default is 50/50.
type AccountSplit struct {
	AccountID    string  `gorm:"primaryKey" json:"account_id"`
	User1Percent float64 `gorm:"not null;default:50" json:"user1_percent"`
	User2Percent float64 `gorm:"not null;default:50" json:"user2_percent"`

	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}

// DivisionSettings is the singleton row (ID 1) holding the display names of
// the two users expenses are split between.
type DivisionSettings struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	User1Name string `json:"user1_name"`
	User2Name string `json:"user2_name"`

	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}
