package domain

// BatchLimits is the static validation configuration, mirrored from the
// service configuration and read at the start of every batch.
type BatchLimits struct {
	MaxBatchSize      int
	MaxFileSize       int64
	AllowedExtensions []string
}

// DefaultBatchLimits matches the documented product limits: 100 images per
// batch, 20 MiB per file, jpg/jpeg/png/webp.
func DefaultBatchLimits() BatchLimits {
	return BatchLimits{
		MaxBatchSize:      100,
		MaxFileSize:       20 * 1024 * 1024,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "webp"},
	}
}
