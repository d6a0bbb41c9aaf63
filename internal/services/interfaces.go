package services

import (
	"context"

	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/pagination"
	"github.com/RenatoMoratti/finance-app/internal/pluggy"
)

// Reconciler merges one connection's fetched payloads into the store under
// the verified-record-protection policy.
type Reconciler interface {
	Reconcile(itemID string, accounts []pluggy.Account, transactions []pluggy.Transaction) SyncResult
	History(limit int) ([]models.SyncRecord, error)
	LastSync() (*models.SyncRecord, error)
}

// AccountServicer defines the account read/CRUD surface. Mutations are
// restricted to manual accounts.
type AccountServicer interface {
	GetAccounts() ([]models.Account, error)
	GetAccountByID(id string) (*models.Account, error)
	GetAccountTypes() ([]string, error)
	CreateManualAccount(name, accountType, subtype string, balance float64, currencyCode string) (*models.Account, error)
	UpdateManualAccount(id string, updates AccountUpdate) (*models.Account, error)
	DeleteManualAccount(id string) (int64, error)
}

// TransactionServicer defines the transaction read/CRUD surface plus the
// flag toggles honored by the reconciliation invariants.
type TransactionServicer interface {
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(id string) (*models.Transaction, error)
	CreateManualTransaction(accountID string, amount float64, description, date, category string, txType models.TransactionType) (*models.Transaction, error)
	UpdateTransaction(id string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(id string) error
	SetVerified(id string, verified bool) error
	SetIgnored(id string, ignored bool) error
	SetUserCategory(id, category, subcategory string) error
	SetSplitOverride(id string, user1Percent float64, user2Percent *float64) error
	Statistics() (*Statistics, error)
}

// CategoryServicer manages the user-defined category taxonomy.
type CategoryServicer interface {
	GetCategories(transactionType string, activeOnly bool) ([]models.UserCategory, error)
	GetCategoriesGrouped(transactionType string) (map[string][]models.UserCategory, error)
	CreateCategory(name, subcategory string, txType models.TransactionType, description, color, icon string) (*models.UserCategory, error)
	UpdateCategory(id uint, update CategoryUpdate) (*models.UserCategory, error)
	DeleteCategory(id uint) error
	PopulateDefaults() (int, error)
}

// MappingServicer keeps the source-category classification table in step
// with the categories observed on synced transactions.
type MappingServicer interface {
	ReconcileMappings() ([]models.CategoryMapping, error)
	GetMappings() ([]models.CategoryMapping, error)
	UpdateMapping(sourceCategory, transactionType, userCategory, userSubcategory string) error
	DeleteMapping(sourceCategory, transactionType string) error
	CountUnmapped() (int64, error)
}

// Suggester proposes user categories for unverified transactions.
type Suggester interface {
	Suggest(similarityThreshold float64, persist bool) (*SuggestionResult, error)
}

// SplitServicer manages account-level expense splits and the division
// settings singleton.
type SplitServicer interface {
	GetAccountsWithSplits() ([]AccountWithSplit, error)
	UpsertSplit(accountID string, user1Percent float64, user2Percent *float64) (*models.AccountSplit, error)
	GetDivisionSettings() (*models.DivisionSettings, error)
	UpdateDivisionSettings(user1Name, user2Name string) error
}

// SyncOrchestrator drives a full fetch-and-reconcile cycle for one
// connection against the aggregator.
type SyncOrchestrator interface {
	SyncConnection(ctx context.Context, itemID string) (*SyncOutcome, error)
}
