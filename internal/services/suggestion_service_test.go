package services

import (
	"testing"

	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/similarity"
	"github.com/RenatoMoratti/finance-app/internal/testutil"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
	"gorm.io/gorm"
)

func seedTransaction(t *testing.T, db *gorm.DB, tx models.Transaction) {
	t.Helper()
	now := timefmt.Now()
	if tx.CreationDate == "" {
		tx.CreationDate = now
	}
	if tx.ModificationDate == "" {
		tx.ModificationDate = now
	}
	if err := db.Create(&tx).Error; err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}
}

func TestSuggestExactDescriptionMatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSuggestionService(testutil.Source(db), similarity.NewSequenceMatcher())

	seedTransaction(t, db, models.Transaction{
		ID: "hist-1", AccountID: "acc-1", Amount: 30, Description: "Uber Trip",
		TransactionDate: "2025-02-01 10:00:00", Type: models.TransactionTypeDebit,
		Verified: true, UserCategory: "Transporte", UserSubcategory: "Aplicativo",
	})
	seedTransaction(t, db, models.Transaction{
		ID: "cand-1", AccountID: "acc-1", Amount: 28, Description: "uber   trip",
		TransactionDate: "2025-03-01 10:00:00", Type: models.TransactionTypeDebit,
	})

	result, err := svc.Suggest(DefaultSimilarityThreshold, false)
	testutil.AssertNoError(t, err)

	if result.Stats.ByDescription != 1 || result.Stats.Suggested != 1 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}
	s := result.Suggestions[0]
	if s.TransactionID != "cand-1" || s.Category != "Transporte" || s.Subcategory != "Aplicativo" {
		t.Errorf("unexpected suggestion: %+v", s)
	}
	if s.Source != SuggestionSourceDescription {
		t.Errorf("unexpected source: %q", s.Source)
	}
}

func TestSuggestFuzzyMatchRespectsThreshold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSuggestionService(testutil.Source(db), similarity.NewSequenceMatcher())

	seedTransaction(t, db, models.Transaction{
		ID: "hist-1", AccountID: "acc-1", Amount: 30, Description: "Uber Trip 0001",
		TransactionDate: "2025-02-01 10:00:00", Type: models.TransactionTypeDebit,
		Verified: true, UserCategory: "Transporte",
	})
	seedTransaction(t, db, models.Transaction{
		ID: "cand-near", AccountID: "acc-1", Amount: 28, Description: "Uber Trip 0002",
		TransactionDate: "2025-03-01 10:00:00", Type: models.TransactionTypeDebit,
	})
	seedTransaction(t, db, models.Transaction{
		ID: "cand-far", AccountID: "acc-1", Amount: 90, Description: "Padaria Central",
		TransactionDate: "2025-03-02 10:00:00", Type: models.TransactionTypeDebit,
	})

	result, err := svc.Suggest(DefaultSimilarityThreshold, false)
	testutil.AssertNoError(t, err)

	if result.Stats.ByDescription != 1 {
		t.Errorf("expected one fuzzy hit, got %+v", result.Stats)
	}
	if result.Stats.NoMatch != 1 {
		t.Errorf("expected one no-match, got %+v", result.Stats)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0].TransactionID != "cand-near" {
		t.Errorf("unexpected suggestions: %+v", result.Suggestions)
	}
}

func TestSuggestMappingFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSuggestionService(testutil.Source(db), similarity.NewSequenceMatcher())

	testutil.CreateTestMapping(t, db, "Groceries", "DEBIT", "Alimentação")
	seedTransaction(t, db, models.Transaction{
		ID: "cand-1", AccountID: "acc-1", Amount: 55, Description: "Supermercado XYZ",
		TransactionDate: "2025-03-01 10:00:00", Category: "Groceries", Type: models.TransactionTypeDebit,
	})

	result, err := svc.Suggest(DefaultSimilarityThreshold, false)
	testutil.AssertNoError(t, err)

	if result.Stats.ByMapping != 1 {
		t.Fatalf("expected mapping hit, got %+v", result.Stats)
	}
	s := result.Suggestions[0]
	if s.Category != "Alimentação" || s.Source != SuggestionSourceMapping {
		t.Errorf("unexpected suggestion: %+v", s)
	}
}

func TestSuggestTypeSpecificMappingWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSuggestionService(testutil.Source(db), similarity.NewSequenceMatcher())

	testutil.CreateTestMapping(t, db, "Transfers", "", "Outros")
	testutil.CreateTestMapping(t, db, "Transfers", "CREDIT", "Salário")
	seedTransaction(t, db, models.Transaction{
		ID: "cand-1", AccountID: "acc-1", Amount: 5000, Description: "TED Recebida",
		TransactionDate: "2025-03-01 10:00:00", Category: "Transfers", Type: models.TransactionTypeCredit,
	})

	result, err := svc.Suggest(DefaultSimilarityThreshold, false)
	testutil.AssertNoError(t, err)

	if len(result.Suggestions) != 1 || result.Suggestions[0].Category != "Salário" {
		t.Errorf("expected type-specific mapping to win: %+v", result.Suggestions)
	}
}

func TestSuggestPersistNeverOverwrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSuggestionService(testutil.Source(db), similarity.NewSequenceMatcher())

	seedTransaction(t, db, models.Transaction{
		ID: "hist-1", AccountID: "acc-1", Amount: 30, Description: "Uber Trip",
		TransactionDate: "2025-02-01 10:00:00", Type: models.TransactionTypeDebit,
		Verified: true, UserCategory: "Transporte",
	})
	seedTransaction(t, db, models.Transaction{
		ID: "cand-empty", AccountID: "acc-1", Amount: 28, Description: "Uber Trip",
		TransactionDate: "2025-03-01 10:00:00", Type: models.TransactionTypeDebit,
	})
	seedTransaction(t, db, models.Transaction{
		ID: "cand-classified", AccountID: "acc-1", Amount: 28, Description: "Uber Trip",
		TransactionDate: "2025-03-02 10:00:00", Type: models.TransactionTypeDebit,
		UserCategory: "Viagem",
	})

	result, err := svc.Suggest(DefaultSimilarityThreshold, true)
	testutil.AssertNoError(t, err)

	if result.Stats.Suggested != 2 {
		t.Errorf("expected 2 suggestions, got %+v", result.Stats)
	}
	if result.Stats.Persisted != 1 {
		t.Errorf("expected 1 persisted, got %+v", result.Stats)
	}

	var classified models.Transaction
	testutil.AssertNoError(t, db.Where("id = ?", "cand-classified").First(&classified).Error)
	if classified.UserCategory != "Viagem" {
		t.Errorf("existing classification overwritten: %q", classified.UserCategory)
	}
	var empty models.Transaction
	testutil.AssertNoError(t, db.Where("id = ?", "cand-empty").First(&empty).Error)
	if empty.UserCategory != "Transporte" {
		t.Errorf("expected persisted suggestion, got %q", empty.UserCategory)
	}
}

func TestSuggestRankingPrefersFrequency(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSuggestionService(testutil.Source(db), similarity.NewSequenceMatcher())

	for i, cat := range []string{"Transporte", "Transporte", "Viagem"} {
		seedTransaction(t, db, models.Transaction{
			ID: "hist-" + string(rune('a'+i)), AccountID: "acc-1", Amount: 30, Description: "Uber Trip",
			TransactionDate: "2025-02-01 10:00:00", Type: models.TransactionTypeDebit,
			Verified: true, UserCategory: cat,
			ModificationDate: "2025-02-01 10:00:00",
		})
	}
	seedTransaction(t, db, models.Transaction{
		ID: "cand-1", AccountID: "acc-1", Amount: 28, Description: "Uber Trip",
		TransactionDate: "2025-03-01 10:00:00", Type: models.TransactionTypeDebit,
	})

	result, err := svc.Suggest(DefaultSimilarityThreshold, false)
	testutil.AssertNoError(t, err)

	if len(result.Suggestions) != 1 || result.Suggestions[0].Category != "Transporte" {
		t.Errorf("expected majority category, got %+v", result.Suggestions)
	}
}
