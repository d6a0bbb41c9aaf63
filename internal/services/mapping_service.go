package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/logger"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// mappingService keeps the source-category classification table in step with
// the categories observed on synced transactions.
type mappingService struct {
	src database.Source
}

// NewMappingService creates a new MappingServicer.
func NewMappingService(src database.Source) MappingServicer {
	return &mappingService{src: src}
}

// ReconcileMappings scans the distinct (source category, type) pairs across
// all stored transactions and inserts a needs-classification row for each
// pair missing from the mapping table, returning the new rows. Pure append:
// existing mappings are never touched, and a second call with no new source
// categories returns an empty list.
func (s *mappingService) ReconcileMappings() ([]models.CategoryMapping, error) {
	db := s.src.DB()

	type pair struct {
		Category string
		Type     string
	}
	var observed []pair
	err := db.Model(&models.Transaction{}).
		Distinct("category", "type").
		Where("category IS NOT NULL AND category != ''").
		Scan(&observed).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(observed) == 0 {
		return []models.CategoryMapping{}, nil
	}

	var mapped []models.CategoryMapping
	if err := db.Select("source_category", "transaction_type").Find(&mapped).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	seen := make(map[pair]bool, len(mapped))
	for _, m := range mapped {
		seen[pair{Category: m.SourceCategory, Type: m.TransactionType}] = true
	}

	now := timefmt.Now()
	inserted := []models.CategoryMapping{}
	for _, p := range observed {
		if seen[p] {
			continue
		}
		row := models.CategoryMapping{
			SourceCategory:      p.Category,
			TransactionType:     p.Type,
			NeedsClassification: true,
			CreationDate:        now,
			ModificationDate:    now,
		}
		if err := db.Create(&row).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		inserted = append(inserted, row)
	}
	if len(inserted) > 0 {
		logger.Get().Infow("new source categories awaiting classification", "count", len(inserted))
	}
	return inserted, nil
}

// GetMappings returns all mappings ordered by source category.
func (s *mappingService) GetMappings() ([]models.CategoryMapping, error) {
	var mappings []models.CategoryMapping
	err := s.src.DB().Order("source_category COLLATE NOCASE").Find(&mappings).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return mappings, nil
}

// UpdateMapping upserts the mapping for (sourceCategory, transactionType).
// The row needs classification iff the user category is empty.
func (s *mappingService) UpdateMapping(sourceCategory, transactionType, userCategory, userSubcategory string) error {
	if sourceCategory == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "source category is required")
	}

	db := s.src.DB()
	now := timefmt.Now()
	needs := strings.TrimSpace(userCategory) == ""

	var existing models.CategoryMapping
	err := db.Where("source_category = ? AND transaction_type = ?", sourceCategory, transactionType).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := models.CategoryMapping{
			SourceCategory:        sourceCategory,
			TransactionType:       transactionType,
			MappedUserCategory:    userCategory,
			MappedUserSubcategory: userSubcategory,
			NeedsClassification:   needs,
			CreationDate:          now,
			ModificationDate:      now,
		}
		if err := db.Create(&row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"mapped_user_category":    userCategory,
		"mapped_user_subcategory": userSubcategory,
		"needs_classification":    needs,
		"modification_date":       now,
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteMapping removes one mapping; it will be recreated on the next
// reconciliation if the source category still appears on transactions.
func (s *mappingService) DeleteMapping(sourceCategory, transactionType string) error {
	if sourceCategory == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "source category is required")
	}
	res := s.src.DB().
		Where("source_category = ? AND transaction_type = ?", sourceCategory, transactionType).
		Delete(&models.CategoryMapping{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrMappingNotFound
	}
	return nil
}

// CountUnmapped returns how many source categories still need classification.
func (s *mappingService) CountUnmapped() (int64, error) {
	var count int64
	err := s.src.DB().Model(&models.CategoryMapping{}).
		Where("needs_classification = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}
