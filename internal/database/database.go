// Package database owns the SQLite store: opening, schema migration, default
// seeding, and environment switching. Services read the live handle through
// the Source interface so a switch is one reference swap under a lock, never
// a global rebind.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/RenatoMoratti/finance-app/internal/config"
	"github.com/RenatoMoratti/finance-app/internal/logger"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// allModels is the list of GORM models migrated on open.
var allModels = []interface{}{
	&models.Account{},
	&models.Transaction{},
	&models.UserCategory{},
	&models.CategoryMapping{},
	&models.AccountSplit{},
	&models.DivisionSettings{},
	&models.SyncRecord{},
}

// Source yields the live database handle. Services hold a Source rather
// than a *gorm.DB so they always see the current environment's store.
type Source interface {
	DB() *gorm.DB
}

// Manager opens and owns the per-environment stores.
type Manager struct {
	cfg *config.Config

	mu  sync.RWMutex
	env string
	db  *gorm.DB
}

// NewManager opens the store for the configured environment.
func NewManager(cfg *config.Config) (*Manager, error) {
	db, err := open(cfg.DatabasePath(cfg.Environment))
	if err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, env: cfg.Environment, db: db}, nil
}

// DB returns the live database handle.
func (m *Manager) DB() *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Environment returns the environment the live handle belongs to.
func (m *Manager) Environment() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.env
}

// DatabasePath returns the SQLite file backing the live handle.
func (m *Manager) DatabasePath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.DatabasePath(m.env)
}

// Switch opens the store for env, swaps it in as the live handle, and closes
// the previous one. A failed open leaves the current store untouched.
func (m *Manager) Switch(env string) error {
	if !config.ValidEnvironment(env) {
		return fmt.Errorf("unknown environment %q", env)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if env == m.env {
		return nil
	}

	db, err := open(m.cfg.DatabasePath(env))
	if err != nil {
		return fmt.Errorf("switch to %s: %w", env, err)
	}

	old := m.db
	m.db = db
	m.env = env

	if sqlDB, err := old.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Get().Warnw("closing previous environment store", "error", err)
		}
	}

	logger.Get().Infow("environment switched", "environment", env)
	return nil
}

// open connects to the SQLite file at path, migrates the schema, and seeds
// defaults. The parent directory is created when missing.
func open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// Single process, cooperative access; one connection avoids SQLITE_BUSY
	// between the request path and the backup task.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if err := Seed(db); err != nil {
		return nil, fmt.Errorf("seed database: %w", err)
	}

	return db, nil
}

// Static wraps a fixed handle as a Source; used by tests and one-shot tools.
func Static(db *gorm.DB) Source {
	return staticSource{db: db}
}

type staticSource struct{ db *gorm.DB }

func (s staticSource) DB() *gorm.DB { return s.db }

// Seed guarantees the singleton division-settings row exists.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.DivisionSettings{}).Where("id = ?", 1).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := timefmt.Now()
	return db.Create(&models.DivisionSettings{
		ID:               1,
		User1Name:        "Usuário 1",
		User2Name:        "Usuário 2",
		CreationDate:     now,
		ModificationDate: now,
	}).Error
}
