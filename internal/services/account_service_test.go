package services

import (
	"strings"
	"testing"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/testutil"
)

func TestCreateManualAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(testutil.Source(db))

	account, err := svc.CreateManualAccount("Carteira", "CASH", "", 120.5, "")
	testutil.AssertNoError(t, err)

	if !strings.HasPrefix(account.ID, models.ManualIDPrefix) {
		t.Errorf("expected manual id prefix, got %q", account.ID)
	}
	if account.ConnectionName != "" {
		t.Errorf("manual account must have empty connection name, got %q", account.ConnectionName)
	}
	if account.CurrencyCode != "BRL" {
		t.Errorf("expected BRL default, got %q", account.CurrencyCode)
	}
	if !account.IsManual() {
		t.Error("expected IsManual")
	}
}

func TestCreateManualAccountValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(testutil.Source(db))

	_, err := svc.CreateManualAccount("", "CASH", "", 0, "")
	testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)

	_, err = svc.CreateManualAccount("Carteira", "", "", 0, "")
	testutil.AssertAppError(t, err, apperrors.ErrInvalidInput.Code)
}

func TestUpdateManualAccountGuardsSyncedAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(testutil.Source(db))

	synced := testutil.CreateTestAccount(t, db, "item-1")
	name := "Novo Nome"

	_, err := svc.UpdateManualAccount(synced.ID, AccountUpdate{Name: &name})
	testutil.AssertAppError(t, err, apperrors.ErrAccountNotManual.Code)

	manual := testutil.CreateTestManualAccount(t, db)
	updated, err := svc.UpdateManualAccount(manual.ID, AccountUpdate{Name: &name})
	testutil.AssertNoError(t, err)
	if updated.Name != "Novo Nome" {
		t.Errorf("expected rename, got %q", updated.Name)
	}
}

func TestDeleteManualAccountCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(testutil.Source(db))

	manual := testutil.CreateTestManualAccount(t, db)
	testutil.CreateTestTransaction(t, db, manual.ID, 10, models.TransactionTypeDebit)
	testutil.CreateTestTransaction(t, db, manual.ID, 20, models.TransactionTypeDebit)

	removed, err := svc.DeleteManualAccount(manual.ID)
	testutil.AssertNoError(t, err)
	if removed != 2 {
		t.Errorf("expected 2 removed transactions, got %d", removed)
	}

	var count int64
	testutil.AssertNoError(t, db.Model(&models.Transaction{}).Where("account_id = ?", manual.ID).Count(&count).Error)
	if count != 0 {
		t.Errorf("expected no remaining transactions, got %d", count)
	}

	_, err = svc.GetAccountByID(manual.ID)
	testutil.AssertAppError(t, err, apperrors.ErrAccountNotFound.Code)
}

func TestDeleteManualAccountGuardsSyncedAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(testutil.Source(db))

	synced := testutil.CreateTestAccount(t, db, "item-1")
	_, err := svc.DeleteManualAccount(synced.ID)
	testutil.AssertAppError(t, err, apperrors.ErrAccountNotManual.Code)
}

func TestGetAccountTypes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(testutil.Source(db))

	testutil.CreateTestAccount(t, db, "item-1")
	testutil.CreateTestAccount(t, db, "item-1")
	testutil.CreateTestManualAccount(t, db)

	types, err := svc.GetAccountTypes()
	testutil.AssertNoError(t, err)
	if len(types) != 2 {
		t.Errorf("expected 2 distinct types, got %v", types)
	}
}
