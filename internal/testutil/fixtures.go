package testutil

import (
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// CreateTestAccount creates a synced account tied to the given item.
func CreateTestAccount(t *testing.T, db *gorm.DB, itemID string) *models.Account {
	t.Helper()

	now := timefmt.Now()
	account := &models.Account{
		ID:               fmt.Sprintf("acc-%d", nextID()),
		Name:             fmt.Sprintf("Conta %d", nextID()),
		Type:             "BANK",
		Balance:          1000,
		CurrencyCode:     "BRL",
		ItemID:           itemID,
		ConnectionName:   "Banco Teste",
		CreationDate:     now,
		ModificationDate: now,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestManualAccount creates a manual account with no connection.
func CreateTestManualAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()

	now := timefmt.Now()
	account := &models.Account{
		ID:               models.NewManualID(),
		Name:             fmt.Sprintf("Carteira %d", nextID()),
		Type:             "CASH",
		CurrencyCode:     "BRL",
		CreationDate:     now,
		ModificationDate: now,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test manual account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a transaction on the given account.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID string, amount float64, txType models.TransactionType) *models.Transaction {
	t.Helper()

	now := timefmt.Now()
	transaction := &models.Transaction{
		ID:               fmt.Sprintf("tx-%d", nextID()),
		AccountID:        accountID,
		Amount:           amount,
		Description:      fmt.Sprintf("Compra %d", nextID()),
		TransactionDate:  "2025-03-10 12:00:00",
		Type:             txType,
		ItemID:           "item-1",
		ConnectionName:   "Banco Teste",
		CreationDate:     now,
		ModificationDate: now,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestCategory creates an active user category.
func CreateTestCategory(t *testing.T, db *gorm.DB, name, subcategory string, txType models.TransactionType) *models.UserCategory {
	t.Helper()

	now := timefmt.Now()
	category := &models.UserCategory{
		Name:             name,
		Subcategory:      subcategory,
		TransactionType:  txType,
		IsActive:         true,
		CreationDate:     now,
		ModificationDate: now,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestMapping creates a classified category mapping.
func CreateTestMapping(t *testing.T, db *gorm.DB, sourceCategory, txType, userCategory string) *models.CategoryMapping {
	t.Helper()

	now := timefmt.Now()
	mapping := &models.CategoryMapping{
		SourceCategory:      sourceCategory,
		TransactionType:     txType,
		MappedUserCategory:  userCategory,
		NeedsClassification: userCategory == "",
		CreationDate:        now,
		ModificationDate:    now,
	}
	if err := db.Create(mapping).Error; err != nil {
		t.Fatalf("failed to create test mapping: %v", err)
	}
	return mapping
}
