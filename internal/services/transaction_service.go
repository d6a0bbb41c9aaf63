package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/money"
	"github.com/RenatoMoratti/finance-app/internal/pagination"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// TransactionFilter holds optional filter parameters for listing
// transactions.
type TransactionFilter struct {
	AccountIDs    []string
	Type          *models.TransactionType
	Verified      *bool
	Ignored       *bool
	ConflictsOnly bool
	FromDate      string
	ToDate        string
	Search        string
}

// TransactionUpdate holds the fields of a manual transaction edit. A manual
// edit marks the row as manually modified; it does not change the verified
// flag, which the user controls independently.
type TransactionUpdate struct {
	Amount      float64
	Description string
	Category    string
	Date        string
	AccountID   string
	Type        models.TransactionType
}

// Statistics summarizes the transaction store for the dashboard.
type Statistics struct {
	TotalTransactions int64   `json:"total_transactions"`
	TotalCredits      float64 `json:"total_credits"`
	TotalDebits       float64 `json:"total_debits"`
	VerifiedCount     int64   `json:"verified_count"`
	ConflictCount     int64   `json:"conflict_count"`
	IgnoredCount      int64   `json:"ignored_count"`
	AccountCount      int64   `json:"account_count"`
}

// transactionService handles the transaction read surface, manual CRUD, and
// the flag toggles. The reconciliation engine owns sync-path writes; both
// sides honor amount-magnitude and verified-protection invariants.
type transactionService struct {
	src database.Source
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(src database.Source) TransactionServicer {
	return &transactionService{src: src}
}

// GetTransactions returns a paginated, filtered list ordered by date
// descending.
func (s *transactionService) GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.src.DB().Model(&models.Transaction{})
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := base.Scopes(pagination.Paginate(page)).
		Order("transaction_date DESC, id").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if len(f.AccountIDs) > 0 {
		q = q.Where("account_id IN ?", f.AccountIDs)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Verified != nil {
		q = q.Where("verified = ?", *f.Verified)
	}
	if f.Ignored != nil {
		q = q.Where("ignored = ?", *f.Ignored)
	}
	if f.ConflictsOnly {
		q = q.Where("conflict_detected = ?", true)
	}
	if f.FromDate != "" {
		q = q.Where("transaction_date >= ?", f.FromDate)
	}
	if f.ToDate != "" {
		// Inclusive day bound for date-only filters.
		q = q.Where("transaction_date <= ?", f.ToDate+" 23:59:59")
	}
	if f.Search != "" {
		q = q.Where("description LIKE ?", "%"+f.Search+"%")
	}
	return q
}

// GetTransactionByID returns one transaction.
func (s *transactionService) GetTransactionByID(id string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.src.DB().Where("id = ?", id).First(&transaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// CreateManualTransaction creates a user-owned transaction. The sign of the
// incoming amount decides the direction when no type is given; the stored
// amount is always the magnitude.
func (s *transactionService) CreateManualTransaction(accountID string, amount float64, description, date, category string, txType models.TransactionType) (*models.Transaction, error) {
	if accountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if date == "" {
		date = timefmt.Now()
	}
	if txType == "" {
		if amount >= 0 {
			txType = models.TransactionTypeCredit
		} else {
			txType = models.TransactionTypeDebit
		}
	}
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	var account models.Account
	err := s.src.DB().Where("id = ?", accountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := timefmt.Now()
	transaction := &models.Transaction{
		ID:                 models.NewManualID(),
		AccountID:          accountID,
		AccountName:        account.Name,
		Amount:             money.Magnitude(amount),
		Description:        description,
		TransactionDate:    date,
		Category:           category,
		Type:               txType,
		ItemID:             "manual",
		ConnectionName:     "MANUAL",
		ManualModification: true,
		CreationDate:       now,
		ModificationDate:   now,
	}
	if err := s.src.DB().Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// UpdateTransaction applies a manual edit. When the new date matches the
// stored one down to the minute, the stored date (with its original seconds)
// is preserved so repeated edits do not churn the timestamp.
func (s *transactionService) UpdateTransaction(id string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}
	if update.Type != "" && !update.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	finalDate := update.Date
	if truncateToMinute(transaction.TransactionDate) == truncateToMinute(update.Date) {
		finalDate = transaction.TransactionDate
	}

	updates := map[string]interface{}{
		"amount":              money.Magnitude(update.Amount),
		"description":         update.Description,
		"category":            update.Category,
		"transaction_date":    finalDate,
		"modification_date":   timefmt.Now(),
		"manual_modification": true,
	}
	if update.Type != "" {
		updates["type"] = update.Type
	}
	if update.AccountID != "" {
		var account models.Account
		err := s.src.DB().Where("id = ?", update.AccountID).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["account_id"] = account.ID
		updates["account_name"] = account.Name
	}

	if err := s.src.DB().Model(transaction).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// truncateToMinute reduces a canonical timestamp to "YYYY-MM-DD HH:MM".
func truncateToMinute(date string) string {
	if len(date) > 16 {
		return date[:16]
	}
	return date
}

// DeleteTransaction removes one manual transaction. Synced transactions
// would reappear on the next reconciliation; the ignored flag is the way
// to exclude those.
func (s *transactionService) DeleteTransaction(id string) error {
	var transaction models.Transaction
	if err := s.src.DB().Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !transaction.IsManual() {
		return apperrors.ErrTransactionNotManual
	}
	if err := s.src.DB().Delete(&transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetVerified toggles the user-attested flag. Clearing it also clears any
// recorded conflict, since the protection that produced it no longer applies.
func (s *transactionService) SetVerified(id string, verified bool) error {
	updates := map[string]interface{}{
		"verified":          verified,
		"modification_date": timefmt.Now(),
	}
	if !verified {
		updates["conflict_detected"] = false
		updates["conflict_log"] = ""
	}
	res := s.src.DB().Model(&models.Transaction{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// SetIgnored toggles exclusion from aggregate calculations.
func (s *transactionService) SetIgnored(id string, ignored bool) error {
	res := s.src.DB().Model(&models.Transaction{}).Where("id = ?", id).Updates(map[string]interface{}{
		"ignored":           ignored,
		"modification_date": timefmt.Now(),
	})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// SetUserCategory assigns the user classification, independent of the
// aggregator's source category.
func (s *transactionService) SetUserCategory(id, category, subcategory string) error {
	res := s.src.DB().Model(&models.Transaction{}).Where("id = ?", id).Updates(map[string]interface{}{
		"user_category":     category,
		"user_subcategory":  subcategory,
		"modification_date": timefmt.Now(),
	})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// SetSplitOverride stores a per-transaction split pair, derived and
// validated the same way as account splits.
func (s *transactionService) SetSplitOverride(id string, user1Percent float64, user2Percent *float64) error {
	p1, p2, err := normalizeSplit(user1Percent, user2Percent)
	if err != nil {
		return err
	}
	res := s.src.DB().Model(&models.Transaction{}).Where("id = ?", id).Updates(map[string]interface{}{
		"user1_percent":     p1,
		"user2_percent":     p2,
		"modification_date": timefmt.Now(),
	})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// Statistics aggregates totals for the dashboard. Ignored transactions are
// excluded from the credit/debit sums.
func (s *transactionService) Statistics() (*Statistics, error) {
	db := s.src.DB()
	stats := &Statistics{}

	if err := db.Model(&models.Transaction{}).Count(&stats.TotalTransactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Model(&models.Account{}).Count(&stats.AccountCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Model(&models.Transaction{}).Where("verified = ?", true).Count(&stats.VerifiedCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Model(&models.Transaction{}).Where("conflict_detected = ?", true).Count(&stats.ConflictCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := db.Model(&models.Transaction{}).Where("ignored = ?", true).Count(&stats.IgnoredCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type sumRow struct {
		Type  string
		Total float64
	}
	var sums []sumRow
	err := db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("ignored = ?", false).
		Group("type").
		Scan(&sums).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, row := range sums {
		switch models.TransactionType(row.Type) {
		case models.TransactionTypeCredit:
			stats.TotalCredits = row.Total
		case models.TransactionTypeDebit:
			stats.TotalDebits = row.Total
		}
	}
	return stats, nil
}
