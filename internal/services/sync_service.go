package services

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/logger"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/pluggy"
)

// SyncOutcome is the result of one full fetch-and-reconcile cycle for a
// connection, including any category mappings discovered afterwards.
type SyncOutcome struct {
	Connection  string                   `json:"connection"`
	ItemID      string                   `json:"item_id"`
	Result      SyncResult               `json:"result"`
	NewMappings []models.CategoryMapping `json:"new_mappings"`
}

type syncService struct {
	client      *pluggy.Client
	connections *pluggy.ConnectionStore
	reconciler  Reconciler
	mappings    MappingServicer
}

// waitAttempts bounds the item-status poll after a forced refresh.
const waitAttempts = 30

// NewSyncService creates a new SyncOrchestrator.
func NewSyncService(client *pluggy.Client, connections *pluggy.ConnectionStore, reconciler Reconciler, mappings MappingServicer) SyncOrchestrator {
	return &syncService{
		client:      client,
		connections: connections,
		reconciler:  reconciler,
		mappings:    mappings,
	}
}

// SyncConnection fetches the connection's accounts and transactions from the
// aggregator and reconciles them into the store. A forced refresh is
// attempted first but its failure does not abort the sync; the previous
// snapshot on the aggregator side is still worth merging.
func (s *syncService) SyncConnection(ctx context.Context, itemID string) (*SyncOutcome, error) {
	log := logger.Get()

	conn, err := s.connections.Get(itemID)
	if errors.Is(err, pluggy.ErrConnectionNotFound) {
		return nil, apperrors.ErrConnectionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	name := conn.DisplayName()

	if err := s.client.Authenticate(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAggregatorUnavailable, err)
	}

	if err := s.client.TriggerUpdate(ctx, itemID); err != nil {
		log.Warnw("forced refresh failed, syncing with last snapshot", "item_id", itemID, "error", err)
	} else {
		status, err := s.client.WaitForUpdate(ctx, itemID, waitAttempts)
		if err != nil {
			log.Warnw("item did not settle after refresh", "item_id", itemID, "error", err)
		} else {
			log.Infow("item refreshed", "item_id", itemID, "status", status)
		}
	}

	item, err := s.client.GetItem(ctx, itemID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAggregatorUnavailable, err)
	}
	if !item.Syncable() {
		return nil, apperrors.WithMessage(apperrors.ErrConnectionInactive, "item status: "+item.Status)
	}

	accounts, err := s.client.ListAccounts(ctx, itemID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAggregatorUnavailable, err)
	}
	accountNames := make(map[string]string, len(accounts))
	for i := range accounts {
		accounts[i].ItemID = itemID
		accounts[i].ConnectionName = name
		accountNames[accounts[i].ID] = accounts[i].Name
	}

	transactions, err := s.client.ListTransactions(ctx, itemID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAggregatorUnavailable, err)
	}
	transactions = filterSince(transactions, conn.DataSince)
	for i := range transactions {
		transactions[i].ItemID = itemID
		transactions[i].ConnectionName = name
		transactions[i].AccountName = accountNames[transactions[i].AccountID]
	}

	result := s.reconciler.Reconcile(itemID, accounts, transactions)
	if !result.Success {
		return &SyncOutcome{Connection: name, ItemID: itemID, Result: result}, apperrors.WithMessage(apperrors.ErrSyncFailed, result.Message)
	}

	if err := s.connections.UpdateStatus(itemID, "active"); err != nil {
		log.Warnw("failed to update connection status", "item_id", itemID, "error", err)
	}

	inserted, err := s.mappings.ReconcileMappings()
	if err != nil {
		log.Warnw("category mapping reconciliation failed", "item_id", itemID, "error", err)
		inserted = nil
	}

	log.Infow("sync completed",
		"connection", name,
		"accounts", len(accounts),
		"transactions", len(transactions),
		"conflicts", result.Stats.ConflictsDetected,
		"new_mappings", len(inserted),
	)
	return &SyncOutcome{
		Connection:  name,
		ItemID:      itemID,
		Result:      result,
		NewMappings: inserted,
	}, nil
}

// filterSince drops transactions dated strictly before the connection's
// data-since day. Dates compare lexicographically in canonical form.
func filterSince(transactions []pluggy.Transaction, since string) []pluggy.Transaction {
	if since == "" {
		return transactions
	}
	kept := transactions[:0]
	for _, tx := range transactions {
		day := tx.Date
		if idx := strings.IndexAny(day, " T"); idx >= 0 {
			day = day[:idx]
		}
		if day != "" && day < since {
			continue
		}
		kept = append(kept, tx)
	}
	return kept
}
