package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/utils"
)

// ImageController serves item images stored on local disk
type ImageController struct {
	dir string
}

// NewImageController serves files from dir
func NewImageController(dir string) *ImageController {
	return &ImageController{dir: dir}
}

// GetItemImage handles GET /static/items/:filename
func (ic *ImageController) GetItemImage(c *gin.Context) {
	filename := c.Param("filename")

	if err := utils.ValidateImageFilename(filename); err != nil {
		var imgErr *utils.ImageError
		code := "INVALID_REQUEST"
		if errors.As(err, &imgErr) {
			code = imgErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	filePath := filepath.Join(ic.dir, filename)
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_NOT_FOUND",
				"message": "Image not found",
			},
		})
		return
	}

	c.Header("Content-Type", utils.ImageContentType(filename))
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
