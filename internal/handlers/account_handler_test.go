package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/services"
	"github.com/RenatoMoratti/finance-app/internal/validator"
)

// --- mock account service ---

type mockAccountService struct {
	getAccountsFn         func() ([]models.Account, error)
	getAccountByIDFn      func(id string) (*models.Account, error)
	getAccountTypesFn     func() ([]string, error)
	createManualAccountFn func(name, accountType, subtype string, balance float64, currencyCode string) (*models.Account, error)
	updateManualAccountFn func(id string, updates services.AccountUpdate) (*models.Account, error)
	deleteManualAccountFn func(id string) (int64, error)
}

var _ services.AccountServicer = (*mockAccountService)(nil)

func (m *mockAccountService) GetAccounts() ([]models.Account, error) {
	if m.getAccountsFn != nil {
		return m.getAccountsFn()
	}
	return []models.Account{}, nil
}

func (m *mockAccountService) GetAccountByID(id string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(id)
	}
	return &models.Account{ID: id}, nil
}

func (m *mockAccountService) GetAccountTypes() ([]string, error) {
	if m.getAccountTypesFn != nil {
		return m.getAccountTypesFn()
	}
	return []string{}, nil
}

func (m *mockAccountService) CreateManualAccount(name, accountType, subtype string, balance float64, currencyCode string) (*models.Account, error) {
	if m.createManualAccountFn != nil {
		return m.createManualAccountFn(name, accountType, subtype, balance, currencyCode)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) UpdateManualAccount(id string, updates services.AccountUpdate) (*models.Account, error) {
	if m.updateManualAccountFn != nil {
		return m.updateManualAccountFn(id, updates)
	}
	return &models.Account{ID: id}, nil
}

func (m *mockAccountService) DeleteManualAccount(id string) (int64, error) {
	if m.deleteManualAccountFn != nil {
		return m.deleteManualAccountFn(id)
	}
	return 0, nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupAccountRouter(handler *AccountHandler) *gin.Engine {
	r := gin.New()
	r.GET("/accounts", handler.ListAccounts)
	r.GET("/accounts/types", handler.ListAccountTypes)
	r.GET("/accounts/:id", handler.GetAccount)
	r.POST("/accounts", handler.CreateAccount)
	r.PUT("/accounts/:id", handler.UpdateAccount)
	r.DELETE("/accounts/:id", handler.DeleteAccount)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- tests ---

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockAccountService{
			createManualAccountFn: func(name, accountType, subtype string, balance float64, currencyCode string) (*models.Account, error) {
				return &models.Account{
					ID:           "manual_abc123def456",
					Name:         name,
					Type:         accountType,
					Balance:      balance,
					CurrencyCode: currencyCode,
				}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(svc))

		rec := doRequest(r, "POST", "/accounts",
			`{"name":"Carteira","type":"CASH","balance":150.5,"currency_code":"BRL"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		account := result["account"].(map[string]interface{})
		if account["name"] != "Carteira" {
			t.Errorf("expected name=Carteira, got %v", account["name"])
		}
		if !strings.HasPrefix(account["id"].(string), "manual_") {
			t.Errorf("expected manual id, got %v", account["id"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}))

		rec := doRequest(r, "POST", "/accounts", `{"type":"CASH"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), apperrors.ErrInvalidInput.Code)
	})
}

func TestAccountHandler_UpdateAccount(t *testing.T) {
	t.Run("returns 403 for synced accounts", func(t *testing.T) {
		svc := &mockAccountService{
			updateManualAccountFn: func(string, services.AccountUpdate) (*models.Account, error) {
				return nil, apperrors.ErrAccountNotManual
			},
		}
		r := setupAccountRouter(NewAccountHandler(svc))

		rec := doRequest(r, "PUT", "/accounts/acc-1", `{"name":"Renomeada"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), apperrors.ErrAccountNotManual.Code)
	})
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	t.Run("reports removed transactions", func(t *testing.T) {
		svc := &mockAccountService{
			deleteManualAccountFn: func(string) (int64, error) { return 3, nil },
		}
		r := setupAccountRouter(NewAccountHandler(svc))

		rec := doRequest(r, "DELETE", "/accounts/manual_abc123def456", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["deleted_transactions"].(float64) != 3 {
			t.Errorf("expected 3 deleted transactions, got %v", result["deleted_transactions"])
		}
	})

	t.Run("returns 404 for unknown account", func(t *testing.T) {
		svc := &mockAccountService{
			deleteManualAccountFn: func(string) (int64, error) { return 0, apperrors.ErrAccountNotFound },
		}
		r := setupAccountRouter(NewAccountHandler(svc))

		rec := doRequest(r, "DELETE", "/accounts/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), apperrors.ErrAccountNotFound.Code)
	})
}
