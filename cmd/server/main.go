package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/hearth/api/internal/backend"
	"github.com/stwalsh4118/hearth/api/internal/browse"
	"github.com/stwalsh4118/hearth/api/internal/config"
	"github.com/stwalsh4118/hearth/api/internal/database"
	"github.com/stwalsh4118/hearth/api/internal/handlers"
	"github.com/stwalsh4118/hearth/api/internal/logger"
	"github.com/stwalsh4118/hearth/api/internal/middleware"
	"github.com/stwalsh4118/hearth/api/internal/models"
	"github.com/stwalsh4118/hearth/api/internal/repository"
	"github.com/stwalsh4118/hearth/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from .env and environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Hearth API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"backend":     cfg.Backend.URL,
	})

	// Create database connection pool for the sale log
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if err := db.Migrate(ctx, log); err != nil {
		log.Fatal("Failed to apply migrations", err, nil)
	}

	// Upstream listing API
	client, err := backend.New(cfg.Backend.URL, backend.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		log.Fatal("Failed to create backend client", err, map[string]interface{}{
			"url": cfg.Backend.URL,
		})
	}
	remoteFor := func(token string) handlers.UserRemote {
		return client.WithToken(token)
	}
	adminProfile := func(ctx context.Context, token string) (*models.User, error) {
		return client.WithToken(token).Profile(ctx)
	}

	// Browse sessions and their janitor
	store := browse.NewStore(browse.Deps{
		Lister:   client,
		Log:      log.Component("browse"),
		Debounce: cfg.Filter.Debounce,
	}, cfg.Browse.SessionTTL, log.Component("sessions"))

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		store.Run(janitorCtx, cfg.Browse.SweepInterval)
	}()

	// Initialize repository and service layers
	saleRepo := repository.NewSaleRepository(db)
	propertyService := services.NewPropertyService(client, log.Component("properties"))
	salesService := services.NewSalesService(saleRepo, client, log.Component("sales"))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, client, cfg.Server.Env)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	sessionHandler := handlers.NewSessionHandler(store, remoteFor)
	favoriteHandler := handlers.NewFavoriteHandler(store, remoteFor)
	salesHandler := handlers.NewSalesHandler(propertyService, salesService)

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> Auth
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.Auth(cfg.Auth.JWTSecret))

	// Register health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", healthHandler.Info)

		properties := v1.Group("/properties")
		{
			properties.GET("", propertyHandler.List)
			properties.GET("/:id", propertyHandler.Get)
			properties.GET("/:id/favorite", middleware.RequireAuth(), favoriteHandler.Check)
		}

		v1.POST("/sessions", sessionHandler.Create)
		session := v1.Group("/sessions/:id")
		{
			session.DELETE("", sessionHandler.Delete)
			session.POST("/login", middleware.RequireAuth(), sessionHandler.Login)
			session.POST("/logout", sessionHandler.Logout)
			session.GET("/view", sessionHandler.View)
			session.PATCH("/filters", sessionHandler.UpdateFilters)
			session.POST("/filters/reset", sessionHandler.ResetFilters)
			session.POST("/refresh", sessionHandler.Refresh)
			session.GET("/dashboard", sessionHandler.Dashboard)
			session.GET("/favorites", favoriteHandler.List)
			session.POST("/favorites/:propertyId/toggle", favoriteHandler.Toggle)
		}

		admin := v1.Group("/admin", middleware.RequireAdmin(adminProfile))
		{
			admin.GET("/properties", salesHandler.Properties)
			admin.POST("/properties/:id/sold", salesHandler.MarkSold)
			admin.GET("/sales", salesHandler.List)
			admin.GET("/sales/:id", salesHandler.Get)
			admin.DELETE("/sales/:id", salesHandler.Delete)
			admin.GET("/sales/stats", salesHandler.Stats)
			admin.GET("/sales/chart", salesHandler.Chart)
			admin.GET("/sales/report", salesHandler.Report)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	// Stop debounce timers and log every session out
	stopJanitor()
	<-janitorDone

	log.Info("Server exited", nil)
}
