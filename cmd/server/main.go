package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/admin"
	"github.com/booktime/booktime/internal/app/controller"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	"github.com/booktime/booktime/internal/db"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/booktime/booktime/internal/router"
	"github.com/booktime/booktime/internal/scheduler"
	"github.com/booktime/booktime/internal/storage"
	"github.com/booktime/booktime/internal/web"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/mailer"
	"github.com/booktime/booktime/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
		File:        cfg.Log.File,
	})

	logger.Info("Starting BookTime server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.Log.Level,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	store, err := storage.New(&cfg.Media, &cfg.S3)
	if err != nil {
		logger.Fatal("Failed to initialize media storage", err)
	}

	// Redis only backs API token revocation; run without it when unconfigured
	var blacklist middleware.TokenChecker
	var revoker controller.TokenRevoker
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer client.Close()
		tokens := redis.NewTokenBlacklist(client)
		blacklist, revoker = tokens, tokens
	} else {
		logger.Warn("Redis not configured, API logout will not revoke tokens")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	tagRepo := repository.NewProductTagRepository(db.GetDB())
	imageRepo := repository.NewProductImageRepository(db.GetDB())
	basketRepo := repository.NewBasketRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	importRunRepo := repository.NewImportRunRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo, tagRepo)
	tagService := service.NewProductTagService(tagRepo)
	imageService := service.NewProductImageService(imageRepo, productRepo, store)
	basketService := service.NewBasketService(basketRepo, productRepo)
	addressService := service.NewAddressService(addressRepo)
	importService := service.NewImportService(productRepo, tagRepo, importRunRepo, imageService)

	mail := mailer.New(&cfg.Mail)

	// Initialize controllers
	pageController := controller.NewPageController(mail, &cfg.Mail)
	authController := controller.NewAuthController(authService, basketService, mail, &cfg.Mail, revoker)
	productController := controller.NewProductController(productService)
	basketController := controller.NewBasketController(basketService)
	addressController := controller.NewAddressController(addressService)
	adminHandlers := admin.New(admin.Services{
		Products: productService,
		Tags:     tagService,
		Images:   imageService,
		Users:    authService,
		Imports:  importService,
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist)

	renderer, err := web.NewRenderer(store.URL)
	if err != nil {
		logger.Fatal("Failed to parse templates", err)
	}

	r := router.NewRouter(
		pageController,
		authController,
		productController,
		basketController,
		addressController,
		adminHandlers,
		authMiddleware,
		authService,
		basketService,
		renderer,
		cfg,
	)
	engine := r.Setup()

	importScheduler := scheduler.NewImportScheduler(importService, cfg.Import)
	if err := importScheduler.Start(); err != nil {
		logger.Fatal("Failed to start import scheduler", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	importScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
