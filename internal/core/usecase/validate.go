package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
)

// ValidateBatch checks batch cardinality before any per-item work runs.
// A violation rejects the whole batch.
func ValidateBatch(count int, limits domain.BatchLimits) error {
	if limits.MaxBatchSize > 0 && count > limits.MaxBatchSize {
		return domain.WrapError(domain.ErrBatchTooLarge, "validate_batch",
			fmt.Errorf("%d images submitted, maximum %d per batch", count, limits.MaxBatchSize))
	}
	return nil
}

// ValidateItem checks a single item against the configured limits. Pure
// function of item and limits; it runs before any network call and its
// failures are never retried.
func ValidateItem(item domain.ImageItem, limits domain.BatchLimits) error {
	if !extensionAllowed(item.Extension(), limits.AllowedExtensions) {
		return domain.WrapError(domain.ErrInvalidExtension, "validate_item",
			fmt.Errorf("%q is not an allowed file type", item.Filename))
	}
	if limits.MaxFileSize > 0 && item.Size > limits.MaxFileSize {
		return domain.WrapError(domain.ErrSizeExceeded, "validate_item",
			fmt.Errorf("%q is %d bytes, maximum %d", item.Filename, item.Size, limits.MaxFileSize))
	}
	return nil
}

func extensionAllowed(ext string, allowed []string) bool {
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}
