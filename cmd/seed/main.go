// Command seed loads pickup hubs and catalog items from a YAML file.
//
//	go run ./cmd/seed -file catalog.yaml -images ./seed-images
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/kendall-kelly/ppe-pickup-api/config"
	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/kendall-kelly/ppe-pickup-api/services"
)

func main() {
	file := flag.String("file", "catalog.yaml", "YAML catalog with hubs and items")
	images := flag.String("images", ".", "directory holding the image files the catalog names")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(context.Background(), *file, *images); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, file, images string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	catalog, err := ParseCatalog(f)
	if err != nil {
		return err
	}

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		return err
	}
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	var storage services.S3Interface
	if cfg.ImageStorageConfigured() {
		s3, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			return err
		}
		storage = s3
	}

	summary, err := NewSeeder(db, storage, images, cfg.ItemImageDir).Seed(ctx, catalog)
	if err != nil {
		return err
	}

	slog.Info("Seeding complete",
		"hubs_created", summary.HubsCreated,
		"hubs_updated", summary.HubsUpdated,
		"items_created", summary.ItemsCreated,
		"items_updated", summary.ItemsUpdated,
	)
	return nil
}
