package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ImageItem is one uploaded image. It is immutable once constructed:
// the handlers read the upload into memory exactly once and the pipeline
// never mutates the content.
type ImageItem struct {
	Filename    string
	Content     []byte
	Size        int64
	Description string
}

// NewImageItem builds an ImageItem, rejecting items missing any of the
// required parts. The declared size must match the content actually read.
func NewImageItem(filename string, content []byte, description string) (ImageItem, error) {
	if strings.TrimSpace(filename) == "" {
		return ImageItem{}, WrapError(ErrInvalidInput, "new_image_item", fmt.Errorf("filename is required"))
	}
	if len(content) == 0 {
		return ImageItem{}, WrapError(ErrInvalidInput, "new_image_item", fmt.Errorf("empty content for %q", filename))
	}
	return ImageItem{
		Filename:    filename,
		Content:     content,
		Size:        int64(len(content)),
		Description: description,
	}, nil
}

// Extension returns the lowercase filename extension without the leading dot.
func (i ImageItem) Extension() string {
	ext := filepath.Ext(i.Filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
