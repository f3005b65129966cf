package main

import (
	"context"
	"fmt"
	"os"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	"github.com/booktime/booktime/internal/db"
	"github.com/booktime/booktime/internal/storage"
	"github.com/booktime/booktime/pkg/logger"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: import_data <csv_or_xlsx_file> <image_dir>")
		os.Exit(2)
	}
	source, imageDir := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Initialize(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	store, err := storage.New(&cfg.Media, &cfg.S3)
	if err != nil {
		logger.Fatal("Failed to initialize media storage", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	tagRepo := repository.NewProductTagRepository(db.GetDB())
	images := service.NewProductImageService(repository.NewProductImageRepository(db.GetDB()), productRepo, store)
	importService := service.NewImportService(productRepo, tagRepo, repository.NewImportRunRepository(db.GetDB()), images)

	fmt.Print("Importing products\n")
	report, err := importService.Import(context.Background(), source, imageDir)
	if err != nil {
		logger.Fatal("Import failed", err, map[string]interface{}{
			"source": source,
		})
	}
	fmt.Print(report.String())
}
