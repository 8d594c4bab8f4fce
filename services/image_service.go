package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kendall-kelly/ppe-pickup-api/utils"
)

// ErrImageStorageNotConfigured is returned by UploadImage without an S3 backend
var ErrImageStorageNotConfigured = errors.New("image storage is not configured")

// ImageService resolves and stores item images
type ImageService interface {
	// ImageURL turns a stored image reference into something a browser can load
	ImageURL(ctx context.Context, ref string) string

	// UploadImage validates and stores an image, returning its storage key
	UploadImage(ctx context.Context, filename string, body io.Reader) (string, error)
}

// ItemImageService implements ImageService. With a nil storage backend item
// images are files served from the local image directory.
type ItemImageService struct {
	storage S3Interface
}

// NewItemImageService creates an image service; storage may be nil
func NewItemImageService(storage S3Interface) *ItemImageService {
	return &ItemImageService{storage: storage}
}

// ImageURL passes absolute URLs and paths through, presigns S3 keys and maps
// bare file names to the local static route
func (s *ItemImageService) ImageURL(ctx context.Context, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "/") {
		return ref
	}
	if s.storage == nil {
		return utils.LocalImagePath(ref)
	}

	url, err := s.storage.GetPresignedURL(ctx, ref)
	if err != nil {
		slog.Warn("Failed to presign item image", "key", ref, "error", err)
		return ""
	}
	return url
}

// UploadImage stores the image under items/<uuid><ext>
func (s *ItemImageService) UploadImage(ctx context.Context, filename string, body io.Reader) (string, error) {
	if s.storage == nil {
		return "", ErrImageStorageNotConfigured
	}
	if err := utils.ValidateImageFilename(filename); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := "items/" + uuid.NewString() + ext
	if err := s.storage.UploadFile(ctx, key, io.LimitReader(body, utils.MaxImageSize), utils.ImageContentType(filename)); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return key, nil
}
