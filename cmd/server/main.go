package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arkittioe/material-issue-tracker/internal/config"
	"github.com/arkittioe/material-issue-tracker/internal/material/entity"
	"github.com/arkittioe/material-issue-tracker/internal/material/handler"
	"github.com/arkittioe/material-issue-tracker/internal/material/repository"
	"github.com/arkittioe/material-issue-tracker/internal/material/service"
	"github.com/arkittioe/material-issue-tracker/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting material-issue-tracker service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to auto-migrate tables", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	repos := repository.NewRepositories(db)
	services, err := service.NewServices(repos, db, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init services", zap.Error(err))
	}
	handlers := handler.NewHandlers(services)

	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "material-issue-tracker"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "material-issue-tracker"})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "material-issue-tracker",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	registerRoutes(v1, handlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func registerRoutes(v1 *gin.RouterGroup, handlers *handler.Handlers) {
	projects := v1.Group("/projects")
	{
		projects.GET("", handlers.Project.List)
		projects.POST("", handlers.Project.Create)
		projects.GET("/:id", handlers.Project.Get)
		projects.POST("/:id/takeoff", handlers.Project.AddItems)
		projects.GET("/:id/takeoff", handlers.Project.LineItems)
		projects.GET("/:id/lines", handlers.Project.SearchLines)
		projects.GET("/:id/summary", handlers.Consumption.ProjectSummary)
	}

	mivs := v1.Group("/mivs")
	{
		mivs.GET("", handlers.Consumption.List)
		mivs.POST("", handlers.Consumption.Register)
		mivs.GET("/:id", handlers.Consumption.Get)
		mivs.PUT("/:id", handlers.Consumption.Edit)
		mivs.DELETE("/:id", handlers.Consumption.Delete)
	}

	progress := v1.Group("/progress")
	{
		progress.GET("/line", handlers.Consumption.LineProgress)
		progress.POST("/rebuild", handlers.Consumption.Rebuild)
	}

	spools := v1.Group("/spools")
	{
		spools.GET("", handlers.Spool.List)
		spools.POST("", handlers.Spool.Create)
		spools.GET("/next-id", handlers.Spool.NextID)
		spools.GET("/compatible", handlers.Spool.Compatible)
		spools.GET("/report", handlers.Spool.Report)
		spools.GET("/items/:item_id/history", handlers.Spool.ItemHistory)
		spools.GET("/:spool_id", handlers.Spool.Get)
		spools.DELETE("/:spool_id", handlers.Spool.Delete)
	}

	inventory := v1.Group("/inventory")
	{
		inventory.GET("", handlers.Inventory.List)
		inventory.GET("/summary", handlers.Inventory.Summary)
		inventory.GET("/low-stock", handlers.Inventory.LowStock)
		inventory.GET("/transactions", handlers.Inventory.Transactions)
		inventory.POST("/receive", handlers.Inventory.Receive)
		inventory.POST("/issue", handlers.Inventory.Issue)
		inventory.POST("/adjust", handlers.Inventory.Adjust)
		inventory.POST("/transfer", handlers.Inventory.Transfer)
		inventory.GET("/:id", handlers.Inventory.Get)
	}

	warehouses := v1.Group("/warehouses")
	{
		warehouses.GET("", handlers.Inventory.ListWarehouses)
		warehouses.POST("", handlers.Inventory.CreateWarehouse)
	}

	reservations := v1.Group("/reservations")
	{
		reservations.GET("", handlers.Reservation.List)
		reservations.POST("", handlers.Reservation.Reserve)
		reservations.GET("/:id", handlers.Reservation.Get)
		reservations.POST("/:id/consume", handlers.Reservation.Consume)
		reservations.POST("/:id/cancel", handlers.Reservation.Cancel)
	}

	matching := v1.Group("/matching")
	{
		matching.GET("/candidates", handlers.Matching.Match)
		matching.POST("/selections", handlers.Matching.RecordSelection)
		matching.GET("/rules", handlers.Matching.ListRules)
		matching.DELETE("/rules/:id", handlers.Matching.Deactivate)
	}

	v1.GET("/activity", handlers.Activity.List)
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return db, nil
}
