package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"guestlist-backend/config"
	"guestlist-backend/handlers"
	"guestlist-backend/log"
	"guestlist-backend/notifier"
	"guestlist-backend/service"
	"guestlist-backend/store"
)

func connectToDatabase(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func setupRouter(entries service.EntryStore, svc *service.Checkin, n *notifier.Notifier, origins []string, logger *slog.Logger) *gin.Engine {
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	router.Use(cors.New(corsConfig))

	dataHandler := handlers.NewDataHandler(entries, logger.With("handler", "data"))
	checkinHandler := handlers.NewCheckinHandler(svc, logger.With("handler", "checkin"))
	updateHandler := handlers.NewUpdateHandler(n, logger.With("handler", "update"))

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	router.POST("/data", dataHandler.Import)
	router.GET("/data", dataHandler.Export)
	router.GET("/check-in/:id", checkinHandler.Status)
	router.POST("/check-in/:id", checkinHandler.CheckIn)
	router.POST("/reset/:id", checkinHandler.Reset)
	router.GET("/update", updateHandler.Updates)

	return router
}

func main() {
	logger := log.New("guestlist")

	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using environment variables")
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	pool, err := connectToDatabase(ctx, cfg.DSN())
	if err != nil {
		logger.Error("unable to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	entries := store.New(pool)
	if err := entries.Init(ctx); err != nil {
		logger.Error("failed to initialize schema", "err", err)
		os.Exit(1)
	}

	n := notifier.New(logger.With("component", "notifier"))
	svc := service.NewCheckin(entries, n, logger.With("component", "checkin"))

	router := setupRouter(entries, svc, n, cfg.CORSOrigins, logger)

	logger.Info("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "err", err)
	}
}
