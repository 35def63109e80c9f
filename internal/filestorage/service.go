// File: internal/filestorage/service.go
package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUploadSize caps uploaded images at 5 MiB.
const MaxUploadSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Service stores uploaded files on the local filesystem under a base path
// and hands back paths relative to that base.
type Service struct {
	basePath string
	logger   *zap.Logger
}

// NewService creates a file storage service rooted at basePath, creating the
// directory if needed.
func NewService(basePath string, logger *zap.Logger) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage path %s: %w", basePath, err)
	}
	logger.Info("File storage initialized", zap.String("basePath", basePath))
	return &Service{basePath: basePath, logger: logger.Named("FileStorage")}, nil
}

// Save writes a multipart upload into subDir under the base path with a
// generated filename and returns the relative path, e.g. "offers/uuid.jpg".
func (s *Service) Save(fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("file header cannot be nil")
	}
	if fileHeader.Size > MaxUploadSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", MaxUploadSize)
	}

	extension := strings.ToLower(filepath.Ext(filepath.Base(fileHeader.Filename)))
	if extension == "" {
		switch {
		case strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/jpeg"):
			extension = ".jpg"
		case strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/png"):
			extension = ".png"
		case strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/webp"):
			extension = ".webp"
		}
	}
	if !allowedExtensions[extension] {
		return "", fmt.Errorf("unsupported file type %q", extension)
	}

	cleanSubDir := filepath.Clean(subDir)
	if strings.HasPrefix(cleanSubDir, "..") || filepath.IsAbs(cleanSubDir) {
		return "", fmt.Errorf("invalid storage sub-directory")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("opening uploaded file: %w", err)
	}
	defer src.Close()

	destinationDir := filepath.Join(s.basePath, cleanSubDir)
	if err := os.MkdirAll(destinationDir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", destinationDir, err)
	}

	filename := uuid.New().String() + extension
	destinationPath := filepath.Join(destinationDir, filename)

	dst, err := os.Create(destinationPath)
	if err != nil {
		return "", fmt.Errorf("creating file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destinationPath)
		return "", fmt.Errorf("writing file %s: %w", destinationPath, err)
	}

	s.logger.Info("File saved", zap.String("path", destinationPath))
	return filepath.ToSlash(filepath.Join(cleanSubDir, filename)), nil
}

// Delete removes a previously stored file by its relative path. Deleting a
// missing file is not an error.
func (s *Service) Delete(relativePath string) error {
	if relativePath == "" {
		return fmt.Errorf("relative path cannot be empty")
	}
	cleanPath := filepath.Clean(relativePath)
	if strings.Contains(cleanPath, "..") || filepath.IsAbs(cleanPath) {
		s.logger.Warn("Rejected file deletion outside storage root", zap.String("relativePath", relativePath))
		return fmt.Errorf("invalid file path for deletion")
	}

	fullPath := filepath.Join(s.basePath, cleanPath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("deleting file %s: %w", fullPath, err)
	}
	s.logger.Info("File deleted", zap.String("path", fullPath))
	return nil
}
