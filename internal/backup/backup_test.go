package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RenatoMoratti/finance-app/internal/config"
	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/testutil"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

func testSetup(t *testing.T) (*config.Config, *database.Manager) {
	t.Helper()
	cfg := &config.Config{
		Environment:         config.EnvDev,
		DataDir:             t.TempDir(),
		BackupDir:           t.TempDir(),
		BackupIntervalHours: 6,
		BackupMaxAgeHours:   24,
		BackupRetentionDays: 30,
	}
	manager, err := database.NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to open manager: %v", err)
	}
	return cfg, manager
}

func TestRunCreatesVerifiedSnapshot(t *testing.T) {
	cfg, manager := testSetup(t)
	runner := NewRunner(cfg, manager)

	now := timefmt.Now()
	err := manager.DB().Create(&models.Account{
		ID: "acc-1", Name: "Conta", Type: "BANK", CurrencyCode: "BRL",
		CreationDate: now, ModificationDate: now,
	}).Error
	testutil.AssertNoError(t, err)

	result, err := runner.Run(true)
	testutil.AssertNoError(t, err)
	if result.SizeBytes == 0 {
		t.Error("expected non-empty snapshot")
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("snapshot missing: %v", err)
	}
	if filepath.Dir(result.Path) != cfg.BackupPath(config.EnvDev) {
		t.Errorf("snapshot in wrong directory: %s", result.Path)
	}
}

func TestRunRateLimitsRecentBackups(t *testing.T) {
	cfg, manager := testSetup(t)
	runner := NewRunner(cfg, manager)

	_, err := runner.Run(true)
	testutil.AssertNoError(t, err)

	_, err = runner.Run(false)
	testutil.AssertAppError(t, err, apperrors.ErrBackupSkipped.Code)

	// Force bypasses the limit.
	_, err = runner.Run(true)
	testutil.AssertNoError(t, err)
}

func TestRunPrunesExpiredBackups(t *testing.T) {
	cfg, manager := testSetup(t)
	runner := NewRunner(cfg, manager)

	dir := cfg.BackupPath(config.EnvDev)
	testutil.AssertNoError(t, os.MkdirAll(dir, 0o755))
	stale := filepath.Join(dir, "finance_dev_20240101_000000.db")
	testutil.AssertNoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	old := time.Now().AddDate(0, 0, -cfg.BackupRetentionDays-1)
	testutil.AssertNoError(t, os.Chtimes(stale, old, old))

	result, err := runner.Run(true)
	testutil.AssertNoError(t, err)
	if result.Pruned != 1 {
		t.Errorf("expected 1 pruned, got %d", result.Pruned)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expected stale backup removed")
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	cfg, manager := testSetup(t)
	runner := NewRunner(cfg, manager)

	backups, err := runner.List()
	testutil.AssertNoError(t, err)
	if len(backups) != 0 {
		t.Fatalf("expected empty list, got %d", len(backups))
	}

	_, err = runner.Run(true)
	testutil.AssertNoError(t, err)

	backups, err = runner.List()
	testutil.AssertNoError(t, err)
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
}
