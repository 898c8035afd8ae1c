package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrPermissionDenied = errors.New("permission to access images denied")
	ErrPickCancelled    = errors.New("image pick cancelled")
)

// ImagePicker obtains a reference to a user chosen image
type ImagePicker interface {
	Pick(ctx context.Context) (string, error)
}

// ResolveImage asks the picker for an image. A denied permission or a cancelled
// pick leaves the product without an image rather than failing.
func ResolveImage(ctx context.Context, picker ImagePicker, logger *zap.Logger) (*string, error) {
	uri, err := picker.Pick(ctx)
	switch {
	case errors.Is(err, ErrPermissionDenied):
		logger.Info("Image access denied, continuing without image", zap.Error(err))
		return nil, nil
	case errors.Is(err, ErrPickCancelled):
		logger.Debug("Image pick cancelled")
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to pick image: %w", err)
	}

	if uri == "" {
		return nil, nil
	}
	return &uri, nil
}

// FilePicker picks an image file from the local filesystem
type FilePicker struct {
	Path string
}

// Pick returns the file:// URI of Path after checking it can be read
func (p FilePicker) Pick(ctx context.Context) (string, error) {
	path := strings.TrimSpace(p.Path)
	if path == "" {
		return "", ErrPickCancelled
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve image path: %w", err)
	}

	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("%w: %s", ErrPermissionDenied, abs)
		}
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("image path %s is a directory", abs)
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
