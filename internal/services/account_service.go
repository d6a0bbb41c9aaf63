package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/logger"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// AccountUpdate holds the optional fields of a manual-account edit.
type AccountUpdate struct {
	Name         *string
	Type         *string
	Subtype      *string
	Balance      *float64
	CurrencyCode *string
}

// accountService handles the account read surface and manual-account CRUD.
// Synced accounts are written only by the reconciliation engine; every
// mutation here guards on the manual invariant first.
type accountService struct {
	src database.Source
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(src database.Source) AccountServicer {
	return &accountService{src: src}
}

// GetAccounts returns all accounts ordered by name.
func (s *accountService) GetAccounts() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.src.DB().Order("name COLLATE NOCASE").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID returns one account.
func (s *accountService) GetAccountByID(id string) (*models.Account, error) {
	var account models.Account
	err := s.src.DB().Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// GetAccountTypes returns the distinct account types present in the store.
func (s *accountService) GetAccountTypes() ([]string, error) {
	var types []string
	err := s.src.DB().Model(&models.Account{}).
		Distinct("type").
		Where("type IS NOT NULL AND type != ''").
		Order("type").
		Pluck("type", &types).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return types, nil
}

// CreateManualAccount creates a user-owned account with a generated
// "manual_" id and no connection name.
func (s *accountService) CreateManualAccount(name, accountType, subtype string, balance float64, currencyCode string) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if accountType == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type is required")
	}
	if currencyCode == "" {
		currencyCode = "BRL"
	}

	now := timefmt.Now()
	account := &models.Account{
		ID:               models.NewManualID(),
		Name:             name,
		Type:             accountType,
		Subtype:          subtype,
		Balance:          balance,
		CurrencyCode:     currencyCode,
		CreationDate:     now,
		ModificationDate: now,
	}
	if err := s.src.DB().Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("manual account created", "account_id", account.ID, "name", name)
	return account, nil
}

// UpdateManualAccount edits a manual account. Synced accounts are rejected.
func (s *accountService) UpdateManualAccount(id string, update AccountUpdate) (*models.Account, error) {
	account, err := s.GetAccountByID(id)
	if err != nil {
		return nil, err
	}
	if !account.IsManual() {
		return nil, apperrors.ErrAccountNotManual
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Type != nil {
		updates["type"] = *update.Type
	}
	if update.Subtype != nil {
		updates["subtype"] = *update.Subtype
	}
	if update.Balance != nil {
		updates["balance"] = *update.Balance
	}
	if update.CurrencyCode != nil {
		updates["currency_code"] = *update.CurrencyCode
	}
	if len(updates) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no fields to update")
	}
	updates["modification_date"] = timefmt.Now()

	if err := s.src.DB().Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// DeleteManualAccount removes a manual account and all of its transactions,
// returning how many transactions were removed with it.
func (s *accountService) DeleteManualAccount(id string) (int64, error) {
	account, err := s.GetAccountByID(id)
	if err != nil {
		return 0, err
	}
	if !account.IsManual() {
		return 0, apperrors.ErrAccountNotManual
	}

	var removed int64
	err = s.src.DB().Transaction(func(tx *gorm.DB) error {
		res := tx.Where("account_id = ?", id).Delete(&models.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		if err := tx.Where("account_id = ?", id).Delete(&models.AccountSplit{}).Error; err != nil {
			return err
		}
		return tx.Delete(account).Error
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("manual account deleted", "account_id", id, "transactions_removed", removed)
	return removed, nil
}
