package models

// UserCategory is a user-defined taxonomy entry, unique on
// (name, subcategory, transaction type).
type UserCategory struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"not null;uniqueIndex:idx_user_categories_key" json:"name"`
	Subcategory     string          `gorm:"uniqueIndex:idx_user_categories_key" json:"subcategory,omitempty"`
	TransactionType TransactionType `gorm:"not null;uniqueIndex:idx_user_categories_key" json:"transaction_type"`
	Description     string          `json:"description,omitempty"`
	Color           string          `json:"color,omitempty"`
	Icon            string          `json:"icon,omitempty"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`

	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}

// CategoryMapping links one distinct (source category, transaction type)
// pair observed on synced transactions to an optional user category. Rows
// are created by the mapping reconciler with NeedsClassification set and
// resolved by the user; the reconciler itself is append-only.
type CategoryMapping struct {
	ID                    uint   `gorm:"primaryKey" json:"id"`
	SourceCategory        string `gorm:"not null;uniqueIndex:idx_category_mappings_key" json:"source_category"`
	TransactionType       string `gorm:"uniqueIndex:idx_category_mappings_key" json:"transaction_type,omitempty"`
	MappedUserCategory    string `json:"mapped_user_category,omitempty"`
	MappedUserSubcategory string `json:"mapped_user_subcategory,omitempty"`
	NeedsClassification   bool   `gorm:"default:true" json:"needs_classification"`

	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
}
