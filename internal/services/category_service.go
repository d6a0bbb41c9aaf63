package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// CategoryUpdate holds the mutable fields of a user category. Nil pointers
// leave the stored value untouched.
type CategoryUpdate struct {
	Name            *string
	Subcategory     *string
	Description     *string
	Color           *string
	Icon            *string
	IsActive        *bool
	TransactionType *models.TransactionType
}

type categoryService struct {
	src database.Source
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(src database.Source) CategoryServicer {
	return &categoryService{src: src}
}

// GetCategories lists categories, optionally filtered by transaction type and
// restricted to active entries.
func (s *categoryService) GetCategories(transactionType string, activeOnly bool) ([]models.UserCategory, error) {
	q := s.src.DB().Model(&models.UserCategory{})
	if transactionType != "" {
		q = q.Where("transaction_type = ?", transactionType)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var categories []models.UserCategory
	err := q.Order("name COLLATE NOCASE, subcategory COLLATE NOCASE").Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoriesGrouped returns active categories keyed by name, with the
// subcategory variants as values. Used by the classification dropdowns.
func (s *categoryService) GetCategoriesGrouped(transactionType string) (map[string][]models.UserCategory, error) {
	categories, err := s.GetCategories(transactionType, true)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]models.UserCategory)
	for _, c := range categories {
		grouped[c.Name] = append(grouped[c.Name], c)
	}
	return grouped, nil
}

// CreateCategory inserts a category. The (name, subcategory, type) triple
// must be unique.
func (s *categoryService) CreateCategory(name, subcategory string, txType models.TransactionType, description, color, icon string) (*models.UserCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	var count int64
	err := s.src.DB().Model(&models.UserCategory{}).
		Where("name = ? AND subcategory = ? AND transaction_type = ?", name, subcategory, txType).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	now := timefmt.Now()
	category := &models.UserCategory{
		Name:             name,
		Subcategory:      strings.TrimSpace(subcategory),
		TransactionType:  txType,
		Description:      description,
		Color:            color,
		Icon:             icon,
		IsActive:         true,
		CreationDate:     now,
		ModificationDate: now,
	}
	if err := s.src.DB().Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// UpdateCategory applies a partial update.
func (s *categoryService) UpdateCategory(id uint, update CategoryUpdate) (*models.UserCategory, error) {
	var category models.UserCategory
	err := s.src.DB().Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrCategoryNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{"modification_date": timefmt.Now()}
	name := category.Name
	sub := category.Subcategory
	txType := category.TransactionType
	if update.Name != nil {
		name = strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		updates["name"] = name
	}
	if update.Subcategory != nil {
		sub = strings.TrimSpace(*update.Subcategory)
		updates["subcategory"] = sub
	}
	if update.TransactionType != nil {
		if !update.TransactionType.Valid() {
			return nil, apperrors.ErrInvalidTransactionType
		}
		txType = *update.TransactionType
		updates["transaction_type"] = txType
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}
	if update.Icon != nil {
		updates["icon"] = *update.Icon
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}

	if name != category.Name || sub != category.Subcategory || txType != category.TransactionType {
		var count int64
		err := s.src.DB().Model(&models.UserCategory{}).
			Where("name = ? AND subcategory = ? AND transaction_type = ? AND id <> ?", name, sub, txType, id).
			Count(&count).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil, apperrors.ErrDuplicateCategory
		}
	}

	if err := s.src.DB().Model(&category).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// DeleteCategory removes a category by ID and clears it from any
// transactions still classified with it.
func (s *categoryService) DeleteCategory(id uint) error {
	db := s.src.DB()

	var cat models.UserCategory
	if err := db.Where("id = ?", id).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Transaction{}).
			Where("user_category = ? AND user_subcategory = ?", cat.Name, cat.Subcategory).
			Updates(map[string]interface{}{
				"user_category":     "",
				"user_subcategory":  "",
				"modification_date": timefmt.Now(),
			}).Error
		if err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

type defaultCategory struct {
	name string
	subs []string
}

var defaultCreditCategories = []defaultCategory{
	{"Salário", nil},
	{"Freelance", nil},
	{"Investimentos", []string{"Dividendos", "Rendimentos", "Venda de Ativos"}},
	{"Reembolso", nil},
	{"Transferência Recebida", nil},
	{"Outros", nil},
}

var defaultDebitCategories = []defaultCategory{
	{"Alimentação", []string{"Mercado", "Restaurante", "Delivery"}},
	{"Transporte", []string{"Combustível", "Aplicativo", "Transporte Público", "Estacionamento"}},
	{"Moradia", []string{"Aluguel", "Condomínio", "Energia", "Água", "Internet"}},
	{"Saúde", []string{"Farmácia", "Consultas", "Plano de Saúde"}},
	{"Educação", []string{"Cursos", "Livros"}},
	{"Lazer", []string{"Streaming", "Viagens", "Eventos"}},
	{"Compras", []string{"Roupas", "Eletrônicos", "Casa"}},
	{"Serviços", []string{"Assinaturas", "Tarifas Bancárias"}},
	{"Outros", nil},
}

// PopulateDefaults seeds the starter category taxonomy. It only runs against
// an empty table and returns the number of rows inserted.
func (s *categoryService) PopulateDefaults() (int, error) {
	var count int64
	if err := s.src.DB().Model(&models.UserCategory{}).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return 0, nil
	}

	now := timefmt.Now()
	var rows []models.UserCategory
	appendSet := func(set []defaultCategory, txType models.TransactionType) {
		for _, dc := range set {
			rows = append(rows, models.UserCategory{
				Name:             dc.name,
				TransactionType:  txType,
				IsActive:         true,
				CreationDate:     now,
				ModificationDate: now,
			})
			for _, sub := range dc.subs {
				rows = append(rows, models.UserCategory{
					Name:             dc.name,
					Subcategory:      sub,
					TransactionType:  txType,
					IsActive:         true,
					CreationDate:     now,
					ModificationDate: now,
				})
			}
		}
	}
	appendSet(defaultCreditCategories, models.TransactionTypeCredit)
	appendSet(defaultDebitCategories, models.TransactionTypeDebit)

	if err := s.src.DB().Create(&rows).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(rows), nil
}
