package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/RenatoMoratti/finance-app/internal/backup"
	"github.com/RenatoMoratti/finance-app/internal/config"
	"github.com/RenatoMoratti/finance-app/internal/database"
	"github.com/RenatoMoratti/finance-app/internal/handlers"
	"github.com/RenatoMoratti/finance-app/internal/logger"
	"github.com/RenatoMoratti/finance-app/internal/middleware"
	"github.com/RenatoMoratti/finance-app/internal/pluggy"
	"github.com/RenatoMoratti/finance-app/internal/services"
	"github.com/RenatoMoratti/finance-app/internal/similarity"
	"github.com/RenatoMoratti/finance-app/internal/validator"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	manager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	validator.Register()

	// Services
	client := pluggy.NewClient(cfg)
	connections := pluggy.NewConnectionStoreFunc(func() string {
		return cfg.ConnectionsPath(manager.Environment())
	})
	reconciler := services.NewReconcileService(manager)
	accountService := services.NewAccountService(manager)
	transactionService := services.NewTransactionService(manager)
	categoryService := services.NewCategoryService(manager)
	mappingService := services.NewMappingService(manager)
	suggester := services.NewSuggestionService(manager, similarity.NewSequenceMatcher())
	splitService := services.NewSplitService(manager)
	syncService := services.NewSyncService(client, connections, reconciler, mappingService)
	backupRunner := backup.NewRunner(cfg, manager)

	// Handlers
	accountHandler := handlers.NewAccountHandler(accountService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	mappingHandler := handlers.NewMappingHandler(mappingService)
	suggestionHandler := handlers.NewSuggestionHandler(suggester)
	splitHandler := handlers.NewSplitHandler(splitService)
	syncHandler := handlers.NewSyncHandler(syncService, reconciler)
	connectionHandler := handlers.NewConnectionHandler(connections, client)
	backupHandler := handlers.NewBackupHandler(backupRunner)
	environmentHandler := handlers.NewEnvironmentHandler(manager)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	accounts := v1.Group("/accounts")
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/types", accountHandler.ListAccountTypes)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.POST("", accountHandler.CreateAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.PUT("/:id/split", splitHandler.UpsertSplit)

	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/statistics", transactionHandler.GetStatistics)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.PUT("/:id/verified", transactionHandler.SetVerified)
	transactions.PUT("/:id/ignored", transactionHandler.SetIgnored)
	transactions.PUT("/:id/category", transactionHandler.SetUserCategory)
	transactions.PUT("/:id/split", transactionHandler.SetSplitOverride)

	categories := v1.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/grouped", categoryHandler.ListCategoriesGrouped)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/defaults", categoryHandler.PopulateDefaults)

	mappings := v1.Group("/mappings")
	mappings.GET("", mappingHandler.ListMappings)
	mappings.POST("/reconcile", mappingHandler.ReconcileMappings)
	mappings.PUT("", mappingHandler.UpdateMapping)
	mappings.DELETE("", mappingHandler.DeleteMapping)

	v1.POST("/suggestions", suggestionHandler.Suggest)

	splits := v1.Group("/splits")
	splits.GET("/accounts", splitHandler.ListAccountSplits)
	splits.GET("/settings", splitHandler.GetDivisionSettings)
	splits.PUT("/settings", splitHandler.UpdateDivisionSettings)

	conns := v1.Group("/connections")
	conns.GET("", connectionHandler.ListConnections)
	conns.POST("", connectionHandler.RegisterConnection)
	conns.DELETE("/:itemId", connectionHandler.DeleteConnection)
	conns.GET("/token", connectionHandler.CreateConnectToken)

	sync := v1.Group("/sync")
	sync.POST("/:itemId", syncHandler.SyncConnection)
	sync.GET("/history", syncHandler.GetHistory)
	sync.GET("/last", syncHandler.GetLastSync)

	backups := v1.Group("/backups")
	backups.POST("", backupHandler.RunBackup)
	backups.GET("", backupHandler.ListBackups)

	environment := v1.Group("/environment")
	environment.GET("", environmentHandler.GetEnvironment)
	environment.PUT("", environmentHandler.SwitchEnvironment)

	backupRunner.Start(context.Background())

	log.Infof("Starting finance dashboard API on port %s (environment %s)", cfg.Port, manager.Environment())
	return router.Run(":" + cfg.Port)
}
