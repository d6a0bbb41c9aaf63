package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// AccountWithSplit pairs an account with its effective split. Accounts
// without a stored split get the 50/50 default.
type AccountWithSplit struct {
	Account      models.Account `json:"account"`
	User1Percent float64        `json:"user1_percent"`
	User2Percent float64        `json:"user2_percent"`
	HasCustom    bool           `json:"has_custom"`
}

type splitService struct {
	src database.Source
}

// NewSplitService creates a new SplitServicer.
func NewSplitService(src database.Source) SplitServicer {
	return &splitService{src: src}
}

// normalizeSplit clamps the first percentage to [0, 100], derives the
// second as the complement when absent, and rejects pairs that do not sum
// to 100 within a hundredth.
func normalizeSplit(user1Percent float64, user2Percent *float64) (float64, float64, error) {
	p1 := decimal.NewFromFloat(user1Percent).Round(2)
	hundred := decimal.NewFromInt(100)
	if p1.IsNegative() {
		p1 = decimal.Zero
	}
	if p1.GreaterThan(hundred) {
		p1 = hundred
	}

	var p2 decimal.Decimal
	if user2Percent == nil {
		p2 = hundred.Sub(p1)
	} else {
		p2 = decimal.NewFromFloat(*user2Percent).Round(2)
		if p2.IsNegative() || p2.GreaterThan(hundred) {
			return 0, 0, apperrors.ErrInvalidSplit
		}
		tolerance := decimal.New(1, -2)
		if p1.Add(p2).Sub(hundred).Abs().GreaterThan(tolerance) {
			return 0, 0, apperrors.ErrInvalidSplit
		}
	}

	f1, _ := p1.Float64()
	f2, _ := p2.Float64()
	return f1, f2, nil
}

// GetAccountsWithSplits lists every account with its effective split.
func (s *splitService) GetAccountsWithSplits() ([]AccountWithSplit, error) {
	var accounts []models.Account
	err := s.src.DB().Order("name COLLATE NOCASE").Find(&accounts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var splits []models.AccountSplit
	if err := s.src.DB().Find(&splits).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byAccount := make(map[string]models.AccountSplit, len(splits))
	for _, split := range splits {
		byAccount[split.AccountID] = split
	}

	result := make([]AccountWithSplit, 0, len(accounts))
	for _, account := range accounts {
		entry := AccountWithSplit{Account: account, User1Percent: 50, User2Percent: 50}
		if split, ok := byAccount[account.ID]; ok {
			entry.User1Percent = split.User1Percent
			entry.User2Percent = split.User2Percent
			entry.HasCustom = true
		}
		result = append(result, entry)
	}
	return result, nil
}

// UpsertSplit stores the split for an account, creating the row on first
// use.
func (s *splitService) UpsertSplit(accountID string, user1Percent float64, user2Percent *float64) (*models.AccountSplit, error) {
	var account models.Account
	err := s.src.DB().Where("id = ?", accountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	p1, p2, err := normalizeSplit(user1Percent, user2Percent)
	if err != nil {
		return nil, err
	}

	now := timefmt.Now()
	var split models.AccountSplit
	err = s.src.DB().Where("account_id = ?", accountID).First(&split).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		split = models.AccountSplit{
			AccountID:        accountID,
			User1Percent:     p1,
			User2Percent:     p2,
			CreationDate:     now,
			ModificationDate: now,
		}
		if err := s.src.DB().Create(&split).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		updates := map[string]interface{}{
			"user1_percent":     p1,
			"user2_percent":     p2,
			"modification_date": now,
		}
		if err := s.src.DB().Model(&split).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return &split, nil
}

// GetDivisionSettings returns the singleton settings row.
func (s *splitService) GetDivisionSettings() (*models.DivisionSettings, error) {
	var settings models.DivisionSettings
	err := s.src.DB().Where("id = ?", 1).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settings, nil
}

// UpdateDivisionSettings renames the two split users.
func (s *splitService) UpdateDivisionSettings(user1Name, user2Name string) error {
	if user1Name == "" || user2Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "both user names are required")
	}
	err := s.src.DB().Model(&models.DivisionSettings{}).Where("id = ?", 1).Updates(map[string]interface{}{
		"user1_name":        user1Name,
		"user2_name":        user2Name,
		"modification_date": timefmt.Now(),
	}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
