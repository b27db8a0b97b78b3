package handlers

import (
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/r3lativee/AURA-sub001/internal/config"
)

// Upload field names route files to their destination directories.
const (
	uploadFieldModel     = "model"
	uploadFieldThumbnail = "thumbnail"
	uploadFieldImage     = "image"
	uploadFieldAvatar    = "profileImage"
)

const (
	maxModelSize = 50 << 20
	maxImageSize = 5 << 20
	// Uploaded thumbnails are normalized to at most this width.
	thumbnailMaxWidth = 800
)

func uploadDirFor(field string) string {
	switch field {
	case uploadFieldModel:
		return "uploads/models"
	case uploadFieldThumbnail:
		return "uploads/thumbnails"
	case uploadFieldAvatar:
		return "uploads/avatars"
	default:
		return "uploads/images"
	}
}

// generateUploadName builds a collision-resistant filename keeping the
// original extension.
func generateUploadName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
}

// validateModelFile accepts only the binary glTF format.
func validateModelFile(file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".glb" {
		return fmt.Errorf("unsupported model type %s: only .glb is allowed", ext)
	}
	if file.Size > maxModelSize {
		return fmt.Errorf("model file too large (max 50MB)")
	}
	return nil
}

// validateImageFile checks extension and declared MIME type before anything
// touches disk.
func validateImageFile(file *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return fmt.Errorf("unsupported image type %s: jpg, jpeg or png required", ext)
	}
	if contentType := file.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("unsupported content type %s: image/* required", contentType)
	}
	if file.Size > maxImageSize {
		return fmt.Errorf("image file too large (max 5MB)")
	}
	return nil
}

// saveUpload validates by field, writes the file under the upload root and
// returns the public path. Image thumbnails are decoded and resized down
// before saving; models are streamed as-is.
func saveUpload(c *gin.Context, file *multipart.FileHeader, field string) (string, error) {
	isModel := field == uploadFieldModel
	if isModel {
		if err := validateModelFile(file); err != nil {
			return "", err
		}
	} else {
		if err := validateImageFile(file); err != nil {
			return "", err
		}
	}

	relDir := uploadDirFor(field)
	dir := filepath.Join(config.AppEnv.UploadRoot, filepath.FromSlash(relDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] mkdir %s failed: %v", dir, err)
		return "", err
	}

	filename := generateUploadName(file.Filename)
	fullPath := filepath.Join(dir, filename)

	if isModel {
		if err := c.SaveUploadedFile(file, fullPath); err != nil {
			log.Printf("[UPLOAD] save %s failed: %v", fullPath, err)
			return "", err
		}
	} else {
		src, err := file.Open()
		if err != nil {
			return "", err
		}
		defer src.Close()

		img, err := imaging.Decode(src, imaging.AutoOrientation(true))
		if err != nil {
			return "", fmt.Errorf("invalid image data: %w", err)
		}
		if img.Bounds().Dx() > thumbnailMaxWidth {
			img = imaging.Resize(img, thumbnailMaxWidth, 0, imaging.Lanczos)
		}
		if err := imaging.Save(img, fullPath); err != nil {
			log.Printf("[UPLOAD] save %s failed: %v", fullPath, err)
			return "", err
		}
	}

	return "/" + path.Join(relDir, filename), nil
}

// safeDeleteUpload removes a previously stored asset, refusing anything
// outside the uploads tree. Missing files are not an error.
func safeDeleteUpload(relPath string) error {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")
	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", relPath)
	}

	cleanBase := filepath.Clean(config.AppEnv.UploadRoot)
	target := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(cleanRel)))
	if target != cleanBase && !strings.HasPrefix(target, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload root: %s", relPath)
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// UploadFile is the generic admin upload endpoint: one file under one of the
// recognized field names.
func UploadFile() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/upload"
		defer handlePanic(c, route)

		for _, field := range []string{uploadFieldModel, uploadFieldThumbnail, uploadFieldImage} {
			file, err := c.FormFile(field)
			if err != nil {
				continue
			}
			publicPath, err := saveUpload(c, file, field)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			c.JSON(http.StatusCreated, gin.H{"path": publicPath, "field": field})
			return
		}

		respondWithError(c, http.StatusBadRequest, route, "file required under field model, thumbnail or image")
	}
}
