package services

import (
	"testing"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/testutil"
)

func TestCreateCategoryEnforcesUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(testutil.Source(db))

	_, err := svc.CreateCategory("Alimentação", "Mercado", models.TransactionTypeDebit, "", "", "")
	testutil.AssertNoError(t, err)

	_, err = svc.CreateCategory("Alimentação", "Mercado", models.TransactionTypeDebit, "", "", "")
	testutil.AssertAppError(t, err, apperrors.ErrDuplicateCategory.Code)

	// Same name under the other type is a different key.
	_, err = svc.CreateCategory("Alimentação", "Mercado", models.TransactionTypeCredit, "", "", "")
	testutil.AssertNoError(t, err)
}

func TestCreateCategoryValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(testutil.Source(db))

	_, err := svc.CreateCategory("  ", "", models.TransactionTypeDebit, "", "", "")
	testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)

	_, err = svc.CreateCategory("Lazer", "", "INVALID", "", "", "")
	testutil.AssertAppError(t, err, apperrors.ErrInvalidTransactionType.Code)
}

func TestUpdateCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(testutil.Source(db))

	created, err := svc.CreateCategory("Lazer", "", models.TransactionTypeDebit, "", "", "")
	testutil.AssertNoError(t, err)
	other, err := svc.CreateCategory("Compras", "", models.TransactionTypeDebit, "", "", "")
	testutil.AssertNoError(t, err)

	t.Run("rename", func(t *testing.T) {
		name := "Entretenimento"
		updated, err := svc.UpdateCategory(created.ID, CategoryUpdate{Name: &name})
		testutil.AssertNoError(t, err)
		if updated.Name != "Entretenimento" {
			t.Errorf("rename not applied: %+v", updated)
		}
	})

	t.Run("rename onto existing key rejected", func(t *testing.T) {
		name := "Compras"
		_, err := svc.UpdateCategory(created.ID, CategoryUpdate{Name: &name})
		testutil.AssertAppError(t, err, apperrors.ErrDuplicateCategory.Code)
		_ = other
	})

	t.Run("deactivate", func(t *testing.T) {
		inactive := false
		updated, err := svc.UpdateCategory(created.ID, CategoryUpdate{IsActive: &inactive})
		testutil.AssertNoError(t, err)
		if updated.IsActive {
			t.Error("expected inactive")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		name := "X"
		_, err := svc.UpdateCategory(99999, CategoryUpdate{Name: &name})
		testutil.AssertAppError(t, err, apperrors.ErrCategoryNotFound.Code)
	})
}

func TestGetCategoriesGrouped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(testutil.Source(db))

	testutil.CreateTestCategory(t, db, "Alimentação", "", models.TransactionTypeDebit)
	testutil.CreateTestCategory(t, db, "Alimentação", "Mercado", models.TransactionTypeDebit)
	testutil.CreateTestCategory(t, db, "Transporte", "", models.TransactionTypeDebit)

	grouped, err := svc.GetCategoriesGrouped("DEBIT")
	testutil.AssertNoError(t, err)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
	if len(grouped["Alimentação"]) != 2 {
		t.Errorf("expected 2 variants, got %d", len(grouped["Alimentação"]))
	}
}

func TestPopulateDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(testutil.Source(db))

	inserted, err := svc.PopulateDefaults()
	testutil.AssertNoError(t, err)
	if inserted == 0 {
		t.Fatal("expected seeded categories")
	}

	var creditCount int64
	testutil.AssertNoError(t, db.Model(&models.UserCategory{}).
		Where("transaction_type = ?", models.TransactionTypeCredit).Count(&creditCount).Error)
	if creditCount == 0 {
		t.Error("expected credit categories in the default set")
	}

	// Seeding only applies to an empty table.
	again, err := svc.PopulateDefaults()
	testutil.AssertNoError(t, err)
	if again != 0 {
		t.Errorf("expected no-op on populated table, got %d", again)
	}
}

func TestDeleteCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(testutil.Source(db))

	created, err := svc.CreateCategory("Lazer", "", models.TransactionTypeDebit, "", "", "")
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteCategory(created.ID))
	testutil.AssertAppError(t, svc.DeleteCategory(created.ID), apperrors.ErrCategoryNotFound.Code)
}

func TestDeleteCategoryClearsTransactionReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(testutil.Source(db))

	created, err := svc.CreateCategory("Transporte", "Aplicativo", models.TransactionTypeDebit, "", "", "")
	testutil.AssertNoError(t, err)

	account := testutil.CreateTestAccount(t, db, "item-1")
	classified := testutil.CreateTestTransaction(t, db, account.ID, 25, models.TransactionTypeDebit)
	classified.UserCategory = "Transporte"
	classified.UserSubcategory = "Aplicativo"
	testutil.AssertNoError(t, db.Save(classified).Error)

	other := testutil.CreateTestTransaction(t, db, account.ID, 90, models.TransactionTypeDebit)
	other.UserCategory = "Transporte"
	other.UserSubcategory = "Combustível"
	testutil.AssertNoError(t, db.Save(other).Error)

	testutil.AssertNoError(t, svc.DeleteCategory(created.ID))

	var cleared models.Transaction
	testutil.AssertNoError(t, db.Where("id = ?", classified.ID).First(&cleared).Error)
	if cleared.UserCategory != "" || cleared.UserSubcategory != "" {
		t.Errorf("expected classification cleared, got %q > %q", cleared.UserCategory, cleared.UserSubcategory)
	}

	var kept models.Transaction
	testutil.AssertNoError(t, db.Where("id = ?", other.ID).First(&kept).Error)
	if kept.UserCategory != "Transporte" {
		t.Errorf("expected other subcategory untouched, got %q", kept.UserCategory)
	}
}
