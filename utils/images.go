package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MaxImageSize is 10MB in bytes
	MaxImageSize = 10 * 1024 * 1024
)

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// ImageError represents an item image validation error
type ImageError struct {
	Code    string
	Message string
}

func (e *ImageError) Error() string {
	return e.Message
}

// ValidateImageFilename rejects names that could escape the image directory
// and extensions we do not serve.
func ValidateImageFilename(filename string) error {
	if filename == "" {
		return &ImageError{Code: "INVALID_REQUEST", Message: "Filename is required"}
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return &ImageError{Code: "INVALID_FILENAME", Message: "Invalid filename"}
	}
	if _, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]; !ok {
		return &ImageError{
			Code:    "INVALID_FILE_TYPE",
			Message: fmt.Sprintf("Only %s files are supported", strings.Join(SupportedImageExtensions(), ", ")),
		}
	}
	return nil
}

// ImageContentType returns the MIME type for a validated image file name.
func ImageContentType(filename string) string {
	return imageContentTypes[strings.ToLower(filepath.Ext(filename))]
}

// SupportedImageExtensions lists the accepted extensions in a stable order.
func SupportedImageExtensions() []string {
	return []string{".jpeg", ".jpg", ".png", ".webp"}
}

// LocalImagePath returns the URL path under which a local item image is served.
func LocalImagePath(filename string) string {
	if filename == "" {
		return ""
	}
	return "/static/items/" + filename
}
