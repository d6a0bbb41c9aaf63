package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RenatoMoratti/finance-app/internal/conflict"
	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/logger"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/money"
	"github.com/RenatoMoratti/finance-app/internal/pluggy"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// preloadChunk bounds the number of ids per IN query; SQLite caps bound
// parameters at 999 per statement.
const preloadChunk = 900

// defaultConnectionName marks synced records whose connection display name
// was unavailable. It is never empty: an empty connection name would make
// the record pass the manual-account guard.
const defaultConnectionName = "N/A"

// SyncStats counts the per-entity outcome of one reconciliation batch.
type SyncStats struct {
	AccountsInserted      int `json:"accounts_inserted"`
	AccountsUpdated       int `json:"accounts_updated"`
	AccountsUnchanged     int `json:"accounts_unchanged"`
	TransactionsInserted  int `json:"transactions_inserted"`
	TransactionsUpdated   int `json:"transactions_updated"`
	TransactionsUnchanged int `json:"transactions_unchanged"`
	ConflictsDetected     int `json:"conflicts_detected"`
}

// SyncResult is the outcome of one reconciliation call.
type SyncResult struct {
	Success bool      `json:"success"`
	Stats   SyncStats `json:"stats"`
	Message string    `json:"message"`
}

// reconcileService merges fetched aggregator payloads into the store.
type reconcileService struct {
	src database.Source
}

// NewReconcileService creates a new Reconciler.
func NewReconcileService(src database.Source) Reconciler {
	return &reconcileService{src: src}
}

// Reconcile applies one connection's batch: the sync-history row, all
// accounts, and all transactions commit as a single database transaction,
// so a failure anywhere rolls the whole batch back.
//
// The operation is idempotent: replaying an identical batch produces zero
// inserts and updates and does not raise new conflicts. Verified
// transactions are never mutated on their core fields; a diverging payload
// flags a conflict and appends an audit log instead.
func (s *reconcileService) Reconcile(itemID string, accounts []pluggy.Account, transactions []pluggy.Transaction) SyncResult {
	var stats SyncStats
	now := timefmt.Now()

	err := s.src.DB().Transaction(func(tx *gorm.DB) error {
		record := models.SyncRecord{
			ItemID:            itemID,
			AccountsCount:     len(accounts),
			TransactionsCount: len(transactions),
			Status:            "success",
			SyncDate:          now,
			ModificationDate:  now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if err := s.reconcileAccounts(tx, itemID, now, accounts, &stats); err != nil {
			return err
		}
		return s.reconcileTransactions(tx, itemID, now, transactions, &stats)
	})
	if err != nil {
		logger.Get().Errorw("reconciliation aborted", "item_id", itemID, "error", err)
		return SyncResult{
			Success: false,
			Message: "Erro na sincronização: " + err.Error(),
		}
	}

	logger.Get().Infow("reconciliation completed",
		"item_id", itemID,
		"accounts_inserted", stats.AccountsInserted,
		"accounts_updated", stats.AccountsUpdated,
		"accounts_unchanged", stats.AccountsUnchanged,
		"transactions_inserted", stats.TransactionsInserted,
		"transactions_updated", stats.TransactionsUpdated,
		"transactions_unchanged", stats.TransactionsUnchanged,
		"conflicts_detected", stats.ConflictsDetected,
	)
	return SyncResult{
		Success: true,
		Stats:   stats,
		Message: "Sincronização incremental concluída com sucesso",
	}
}

// reconcileAccounts upserts the incoming accounts. All relevant existing
// rows are preloaded into an id-keyed map first, so the per-record loop does
// no additional existence queries.
func (s *reconcileService) reconcileAccounts(tx *gorm.DB, itemID, now string, incoming []pluggy.Account, stats *SyncStats) error {
	ids := make([]string, 0, len(incoming))
	for _, a := range incoming {
		if a.ID != "" {
			ids = append(ids, a.ID)
		}
	}

	existing := make(map[string]models.Account, len(ids))
	for start := 0; start < len(ids); start += preloadChunk {
		end := start + preloadChunk
		if end > len(ids) {
			end = len(ids)
		}
		var rows []models.Account
		if err := tx.Where("id IN ?", ids[start:end]).Find(&rows).Error; err != nil {
			return err
		}
		for _, r := range rows {
			existing[r.ID] = r
		}
	}

	for _, a := range incoming {
		if a.ID == "" {
			continue
		}
		currency := a.CurrencyCode
		if currency == "" {
			currency = "BRL"
		}
		connection := a.ConnectionName
		if connection == "" {
			connection = defaultConnectionName
		}
		item := a.ItemID
		if item == "" {
			item = itemID
		}

		current, found := existing[a.ID]
		if !found {
			row := models.Account{
				ID:               a.ID,
				Name:             a.Name,
				Type:             a.Type,
				Subtype:          a.Subtype,
				Balance:          a.Balance,
				CurrencyCode:     currency,
				ItemID:           item,
				ConnectionName:   connection,
				CreationDate:     now,
				ModificationDate: now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			stats.AccountsInserted++
			continue
		}

		changed := current.Name != a.Name ||
			money.Differs(current.Balance, a.Balance) ||
			current.CurrencyCode != currency
		if !changed {
			stats.AccountsUnchanged++
			continue
		}

		updates := map[string]interface{}{
			"name":              a.Name,
			"type":              a.Type,
			"subtype":           a.Subtype,
			"balance":           a.Balance,
			"currency_code":     currency,
			"item_id":           item,
			"connection_name":   connection,
			"modification_date": now,
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
			return err
		}
		stats.AccountsUpdated++
	}
	return nil
}

// reconcileTransactions upserts the incoming transactions under the
// verified-protection policy. Amounts are coerced to magnitudes and dates
// canonicalized once, before any comparison.
func (s *reconcileService) reconcileTransactions(tx *gorm.DB, itemID, now string, incoming []pluggy.Transaction, stats *SyncStats) error {
	ids := make([]string, 0, len(incoming))
	for _, t := range incoming {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}

	existing := make(map[string]models.Transaction, len(ids))
	for start := 0; start < len(ids); start += preloadChunk {
		end := start + preloadChunk
		if end > len(ids) {
			end = len(ids)
		}
		var rows []models.Transaction
		if err := tx.Where("id IN ?", ids[start:end]).Find(&rows).Error; err != nil {
			return err
		}
		for _, r := range rows {
			existing[r.ID] = r
		}
	}

	for _, t := range incoming {
		if t.ID == "" {
			continue
		}
		amount := money.Magnitude(t.Amount)
		date := timefmt.ToCanonical(t.Date)
		connection := t.ConnectionName
		if connection == "" {
			connection = defaultConnectionName
		}
		item := t.ItemID
		if item == "" {
			item = itemID
		}

		current, found := existing[t.ID]
		if !found {
			row := models.Transaction{
				ID:               t.ID,
				AccountID:        t.AccountID,
				AccountName:      t.AccountName,
				Amount:           amount,
				Description:      t.Description,
				TransactionDate:  date,
				Category:         t.Category,
				Type:             models.TransactionType(t.Type),
				ItemID:           item,
				ConnectionName:   connection,
				CreationDate:     now,
				ModificationDate: now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			stats.TransactionsInserted++
			continue
		}

		diffs := conflict.Describe(
			conflict.Record{
				Amount:      current.Amount,
				Description: current.Description,
				Date:        current.TransactionDate,
				Category:    current.Category,
				Type:        string(current.Type),
			},
			conflict.Record{
				Amount:      amount,
				Description: t.Description,
				Date:        date,
				Category:    t.Category,
				Type:        t.Type,
			},
		)

		if current.Verified {
			// Protected row: record the divergence, touch nothing else.
			if len(diffs) > 0 {
				log := conflict.RenderLog(diffs, timefmt.Now())
				err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
					"conflict_detected": true,
					"conflict_log":      log,
				}).Error
				if err != nil {
					return err
				}
				stats.ConflictsDetected++
			}
			stats.TransactionsUnchanged++
			continue
		}

		if len(diffs) == 0 {
			stats.TransactionsUnchanged++
			continue
		}

		// A fresh sync supersedes a prior manual edit it disagrees with.
		updates := map[string]interface{}{
			"account_id":          t.AccountID,
			"account_name":        t.AccountName,
			"amount":              amount,
			"description":         t.Description,
			"transaction_date":    date,
			"category":            t.Category,
			"type":                t.Type,
			"item_id":             item,
			"connection_name":     connection,
			"modification_date":   now,
			"conflict_detected":   false,
			"manual_modification": false,
		}
		if err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).Updates(updates).Error; err != nil {
			return err
		}
		stats.TransactionsUpdated++
	}
	return nil
}

// History returns the most recent sync records, newest first.
func (s *reconcileService) History(limit int) ([]models.SyncRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []models.SyncRecord
	if err := s.src.DB().Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return records, nil
}

// LastSync returns the most recent sync record, or nil when none exists.
func (s *reconcileService) LastSync() (*models.SyncRecord, error) {
	var record models.SyncRecord
	err := s.src.DB().Order("id DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}
