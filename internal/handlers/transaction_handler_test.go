package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/pagination"
	"github.com/RenatoMoratti/finance-app/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	getTransactionsFn         func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn      func(id string) (*models.Transaction, error)
	createManualTransactionFn func(accountID string, amount float64, description, date, category string, txType models.TransactionType) (*models.Transaction, error)
	updateTransactionFn       func(id string, update services.TransactionUpdate) (*models.Transaction, error)
	deleteTransactionFn       func(id string) error
	setVerifiedFn             func(id string, verified bool) error
	setIgnoredFn              func(id string, ignored bool) error
	setUserCategoryFn         func(id, category, subcategory string) error
	setSplitOverrideFn        func(id string, user1Percent float64, user2Percent *float64) error
	statisticsFn              func() (*services.Statistics, error)
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func (m *mockTransactionService) GetTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsFn != nil {
		return m.getTransactionsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 100, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(id string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(id)
	}
	return &models.Transaction{ID: id}, nil
}

func (m *mockTransactionService) CreateManualTransaction(accountID string, amount float64, description, date, category string, txType models.TransactionType) (*models.Transaction, error) {
	if m.createManualTransactionFn != nil {
		return m.createManualTransactionFn(accountID, amount, description, date, category, txType)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(id string, update services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(id, update)
	}
	return &models.Transaction{ID: id}, nil
}

func (m *mockTransactionService) DeleteTransaction(id string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(id)
	}
	return nil
}

func (m *mockTransactionService) SetVerified(id string, verified bool) error {
	if m.setVerifiedFn != nil {
		return m.setVerifiedFn(id, verified)
	}
	return nil
}

func (m *mockTransactionService) SetIgnored(id string, ignored bool) error {
	if m.setIgnoredFn != nil {
		return m.setIgnoredFn(id, ignored)
	}
	return nil
}

func (m *mockTransactionService) SetUserCategory(id, category, subcategory string) error {
	if m.setUserCategoryFn != nil {
		return m.setUserCategoryFn(id, category, subcategory)
	}
	return nil
}

func (m *mockTransactionService) SetSplitOverride(id string, user1Percent float64, user2Percent *float64) error {
	if m.setSplitOverrideFn != nil {
		return m.setSplitOverrideFn(id, user1Percent, user2Percent)
	}
	return nil
}

func (m *mockTransactionService) Statistics() (*services.Statistics, error) {
	if m.statisticsFn != nil {
		return m.statisticsFn()
	}
	return &services.Statistics{}, nil
}

// --- router setup ---

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	r.GET("/transactions", handler.ListTransactions)
	r.GET("/transactions/statistics", handler.GetStatistics)
	r.GET("/transactions/:id", handler.GetTransaction)
	r.POST("/transactions", handler.CreateTransaction)
	r.PUT("/transactions/:id", handler.UpdateTransaction)
	r.PUT("/transactions/:id/verified", handler.SetVerified)
	r.PUT("/transactions/:id/split", handler.SetSplitOverride)
	return r
}

// --- tests ---

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockTransactionService{
			createManualTransactionFn: func(accountID string, amount float64, description, _, _ string, txType models.TransactionType) (*models.Transaction, error) {
				return &models.Transaction{
					ID:          "manual_0011aabbccdd",
					AccountID:   accountID,
					Amount:      amount,
					Description: description,
					Type:        txType,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "POST", "/transactions",
			`{"account_id":"acc-1","amount":42.9,"description":"Mercado","type":"DEBIT"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["description"] != "Mercado" {
			t.Errorf("expected description=Mercado, got %v", tx["description"])
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"account_id":"acc-1","amount":10,"description":"x","type":"SIDEWAYS"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), apperrors.ErrInvalidInput.Code)
	})
}

func TestTransactionHandler_ListTransactions(t *testing.T) {
	t.Run("passes filters to the service", func(t *testing.T) {
		var got services.TransactionFilter
		svc := &mockTransactionService{
			getTransactionsFn: func(_ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 100, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", "/transactions?account_ids=acc-1,acc-2&type=DEBIT&conflicts_only=true", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got.AccountIDs) != 2 || got.AccountIDs[1] != "acc-2" {
			t.Errorf("unexpected account filter: %v", got.AccountIDs)
		}
		if got.Type == nil || *got.Type != models.TransactionTypeDebit {
			t.Errorf("unexpected type filter: %v", got.Type)
		}
		if !got.ConflictsOnly {
			t.Error("expected conflicts_only filter")
		}
	})
}

func TestTransactionHandler_SetVerified(t *testing.T) {
	t.Run("toggles the flag", func(t *testing.T) {
		var gotID string
		var gotValue bool
		svc := &mockTransactionService{
			setVerifiedFn: func(id string, verified bool) error {
				gotID, gotValue = id, verified
				return nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "PUT", "/transactions/tx-1/verified", `{"value":true}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != "tx-1" || !gotValue {
			t.Errorf("expected tx-1/true, got %s/%v", gotID, gotValue)
		}
	})

	t.Run("returns 400 when value is absent", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "PUT", "/transactions/tx-1/verified", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestTransactionHandler_SetSplitOverride(t *testing.T) {
	t.Run("rejects an invalid pair", func(t *testing.T) {
		svc := &mockTransactionService{
			setSplitOverrideFn: func(string, float64, *float64) error {
				return apperrors.ErrInvalidSplit
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "PUT", "/transactions/tx-1/split", `{"user1_percent":70,"user2_percent":40}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), apperrors.ErrInvalidSplit.Code)
	})
}
