// Command backup takes a one-shot snapshot of the active database,
// bypassing the recent-backup rate limit. Intended for cron or manual use.
package main

import (
	"fmt"
	"os"

	"github.com/RenatoMoratti/finance-app/internal/backup"
	"github.com/RenatoMoratti/finance-app/internal/config"
	"github.com/RenatoMoratti/finance-app/internal/database"
	"github.com/RenatoMoratti/finance-app/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Backup failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	manager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	result, err := backup.NewRunner(cfg, manager).Run(true)
	if err != nil {
		return err
	}
	logger.Get().Infow("backup complete", "path", result.Path, "size_bytes", result.SizeBytes, "pruned", result.Pruned)
	return nil
}
