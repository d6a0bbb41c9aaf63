// Package backup maintains timestamped SQLite snapshots of the live
// database: an online copy via VACUUM INTO, verified with an integrity
// check, rate limited, and pruned by age.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/RenatoMoratti/finance-app/internal/config"
	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/logger"
)

// Result describes one finished backup.
type Result struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Pruned    int    `json:"pruned"`
}

// Info describes one backup file on disk.
type Info struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt string `json:"created_at"`
}

// Runner owns the backup directory for the manager's active environment.
// Run is safe for concurrent use; only one backup executes at a time.
type Runner struct {
	cfg     *config.Config
	manager *database.Manager

	mu sync.Mutex
}

// NewRunner creates a Runner bound to the live database manager.
func NewRunner(cfg *config.Config, manager *database.Manager) *Runner {
	return &Runner{cfg: cfg, manager: manager}
}

// Run takes a snapshot of the active database. Unless force is set, it is
// skipped when a backup newer than the configured maximum age exists.
// Backups older than the retention window are pruned afterwards.
func (r *Runner) Run(force bool) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := logger.Get()

	env := r.manager.Environment()
	dir := r.cfg.BackupPath(env)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}

	if !force {
		maxAge := time.Duration(r.cfg.BackupMaxAgeHours) * time.Hour
		if newest, ok := newestBackup(dir); ok && time.Since(newest) < maxAge {
			return nil, apperrors.ErrBackupSkipped
		}
	}

	stamp := time.Now().Format("20060102_150405")
	dest := filepath.Join(dir, fmt.Sprintf("finance_%s_%s.db", env, stamp))
	for n := 1; ; n++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		// Same-second rerun; disambiguate rather than overwrite.
		dest = filepath.Join(dir, fmt.Sprintf("finance_%s_%s_%d.db", env, stamp, n))
	}

	// VACUUM INTO copies a consistent snapshot without locking writers out.
	if err := r.manager.DB().Exec("VACUUM INTO ?", dest).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}
	if err := verifyCopy(dest); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			log.Warnw("failed to remove corrupt backup", "path", dest, "error", rmErr)
		}
		return nil, apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackupFailed, err)
	}

	pruned := r.prune(dir)
	log.Infow("backup created", "path", dest, "size_bytes", info.Size(), "pruned", pruned)
	return &Result{Path: dest, SizeBytes: info.Size(), Pruned: pruned}, nil
}

// List returns the backups for the active environment, newest first.
func (r *Runner) List() ([]Info, error) {
	dir := r.cfg.BackupPath(r.manager.Environment())
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	backups := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Name:      entry.Name(),
			SizeBytes: fi.Size(),
			CreatedAt: fi.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].CreatedAt > backups[j].CreatedAt })
	return backups, nil
}

// Start launches the periodic backup loop. It stops when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	interval := time.Duration(r.cfg.BackupIntervalHours) * time.Hour
	go func() {
		log := logger.Get()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.Run(false); err != nil && !errors.Is(err, apperrors.ErrBackupSkipped) {
					log.Errorw("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// prune removes backups older than the retention window and returns how
// many were deleted.
func (r *Runner) prune(dir string) int {
	cutoff := time.Now().AddDate(0, 0, -r.cfg.BackupRetentionDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed
}

// newestBackup returns the modification time of the most recent backup file.
func newestBackup(dir string) (time.Time, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, false
	}
	var newest time.Time
	found := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
			found = true
		}
	}
	return newest, found
}

// verifyCopy opens the snapshot read-only and runs an integrity check.
func verifyCopy(path string) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	var status string
	if err := db.Raw("PRAGMA integrity_check").Scan(&status).Error; err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("integrity check returned %q", status)
	}
	return nil
}
