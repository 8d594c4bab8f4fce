package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/kendall-kelly/ppe-pickup-api/services"
	"github.com/kendall-kelly/ppe-pickup-api/utils"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Catalog is the seed file layout
type Catalog struct {
	Hubs  []HubEntry  `yaml:"hubs"`
	Items []ItemEntry `yaml:"items"`
}

// HubEntry describes one pickup hub
type HubEntry struct {
	Name       string `yaml:"name"`
	Address    string `yaml:"address"`
	TotalSlots int    `yaml:"total_slots"`
}

// ItemEntry describes one catalog item. Image is a URL, a rooted path or a
// file name inside the images directory.
type ItemEntry struct {
	Name  string          `yaml:"name"`
	Price decimal.Decimal `yaml:"price"`
	Stock int             `yaml:"stock"`
	Image string          `yaml:"image"`
}

// Summary counts what a seed run changed
type Summary struct {
	HubsCreated  int
	HubsUpdated  int
	ItemsCreated int
	ItemsUpdated int
}

// ParseCatalog decodes and validates a seed file
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var catalog Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, h := range catalog.Hubs {
		if strings.TrimSpace(h.Name) == "" || strings.TrimSpace(h.Address) == "" {
			return nil, fmt.Errorf("hub %d: name and address are required", i+1)
		}
		if h.TotalSlots < 0 {
			return nil, fmt.Errorf("hub %q: total_slots cannot be negative", h.Name)
		}
	}
	for i, it := range catalog.Items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("item %d: name is required", i+1)
		}
		if !it.Price.IsPositive() {
			return nil, fmt.Errorf("item %q: price must be positive", it.Name)
		}
		if it.Stock < 0 {
			return nil, fmt.Errorf("item %q: stock cannot be negative", it.Name)
		}
	}

	return &catalog, nil
}

// Seeder writes a catalog into the database
type Seeder struct {
	db        *gorm.DB
	images    *services.ItemImageService
	uploads   bool
	sourceDir string
	localDir  string
}

// NewSeeder creates a seeder. With storage set, local images are uploaded;
// otherwise they are copied into localDir and served from disk.
func NewSeeder(db *gorm.DB, storage services.S3Interface, sourceDir, localDir string) *Seeder {
	return &Seeder{
		db:        db,
		images:    services.NewItemImageService(storage),
		uploads:   storage != nil,
		sourceDir: sourceDir,
		localDir:  localDir,
	}
}

// Seed upserts hubs and items by name
func (s *Seeder) Seed(ctx context.Context, catalog *Catalog) (Summary, error) {
	var summary Summary

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range catalog.Hubs {
			created, err := upsertHub(tx, entry)
			if err != nil {
				return err
			}
			if created {
				summary.HubsCreated++
			} else {
				summary.HubsUpdated++
			}
		}

		for _, entry := range catalog.Items {
			image, err := s.storeImage(ctx, entry.Image)
			if err != nil {
				return fmt.Errorf("item %q: %w", entry.Name, err)
			}
			created, err := upsertItem(tx, entry, image)
			if err != nil {
				return err
			}
			if created {
				summary.ItemsCreated++
			} else {
				summary.ItemsUpdated++
			}
		}
		return nil
	})

	return summary, err
}

func upsertHub(tx *gorm.DB, entry HubEntry) (bool, error) {
	slots := entry.TotalSlots
	if slots == 0 {
		slots = 10
	}

	var hub models.PickupHub
	err := tx.Where("name = ?", entry.Name).First(&hub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hub = models.PickupHub{Name: entry.Name, Address: entry.Address, TotalSlots: slots}
		if err := tx.Create(&hub).Error; err != nil {
			return false, fmt.Errorf("failed to create hub %q: %w", entry.Name, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up hub %q: %w", entry.Name, err)
	}

	err = tx.Model(&hub).Updates(map[string]interface{}{
		"address":     entry.Address,
		"total_slots": slots,
	}).Error
	if err != nil {
		return false, fmt.Errorf("failed to update hub %q: %w", entry.Name, err)
	}
	return false, nil
}

func upsertItem(tx *gorm.DB, entry ItemEntry, image string) (bool, error) {
	var item models.Item
	err := tx.Where("name = ?", entry.Name).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.Item{Name: entry.Name, Price: entry.Price, Stock: entry.Stock, ImageURL: image}
		if err := tx.Create(&item).Error; err != nil {
			return false, fmt.Errorf("failed to create item %q: %w", entry.Name, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up item %q: %w", entry.Name, err)
	}

	updates := map[string]interface{}{
		"price": entry.Price,
		"stock": entry.Stock,
	}
	if image != "" {
		updates["image_url"] = image
	}
	if err := tx.Model(&item).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("failed to update item %q: %w", entry.Name, err)
	}
	return false, nil
}

// storeImage returns the reference to save on the item
func (s *Seeder) storeImage(ctx context.Context, ref string) (string, error) {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "/") {
		return ref, nil
	}
	if err := utils.ValidateImageFilename(ref); err != nil {
		return "", err
	}

	src, err := os.Open(filepath.Join(s.sourceDir, ref))
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer src.Close()

	if s.uploads {
		key, err := s.images.UploadImage(ctx, ref, src)
		if err != nil {
			return "", err
		}
		slog.Info("Uploaded item image", "file", ref, "key", key)
		return key, nil
	}

	if err := os.MkdirAll(s.localDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	dst, err := os.Create(filepath.Join(s.localDir, ref))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(dst, io.LimitReader(src, utils.MaxImageSize)); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to copy image: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return ref, nil
}
