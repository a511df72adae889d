package usecase

import (
	"testing"

	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
)

func testItem(t *testing.T, filename string, size int) domain.ImageItem {
	t.Helper()
	item, err := domain.NewImageItem(filename, make([]byte, size), "")
	if err != nil {
		t.Fatalf("unexpected item error: %v", err)
	}
	return item
}

func TestValidateBatchRejectsOversizedBatch(t *testing.T) {
	limits := domain.DefaultBatchLimits()

	if err := ValidateBatch(limits.MaxBatchSize, limits); err != nil {
		t.Fatalf("batch at limit should pass, got %v", err)
	}

	err := ValidateBatch(limits.MaxBatchSize+1, limits)
	if err == nil {
		t.Fatal("expected batch size error")
	}
	if !domain.IsKind(err, domain.ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestValidateItem(t *testing.T) {
	limits := domain.BatchLimits{
		MaxBatchSize:      100,
		MaxFileSize:       1024,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "webp"},
	}

	tests := []struct {
		name     string
		filename string
		size     int
		wantKind error
	}{
		{name: "allowed extension", filename: "scan.png", size: 100},
		{name: "uppercase extension", filename: "FORM.JPG", size: 100},
		{name: "disallowed extension", filename: "report.pdf", size: 100, wantKind: domain.ErrInvalidExtension},
		{name: "no extension", filename: "image", size: 100, wantKind: domain.ErrInvalidExtension},
		{name: "too large", filename: "big.jpeg", size: 1025, wantKind: domain.ErrSizeExceeded},
		{name: "at size limit", filename: "ok.webp", size: 1024},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateItem(testItem(t, tc.filename, tc.size), limits)
			if tc.wantKind == nil {
				if err != nil {
					t.Fatalf("expected pass, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !domain.IsKind(err, tc.wantKind) {
				t.Fatalf("expected %v, got %v", tc.wantKind, err)
			}
		})
	}
}

func TestValidateItemExtensionCheckedBeforeSize(t *testing.T) {
	limits := domain.BatchLimits{MaxFileSize: 10, AllowedExtensions: []string{"png"}}
	err := ValidateItem(testItem(t, "file.exe", 100), limits)
	if !domain.IsKind(err, domain.ErrInvalidExtension) {
		t.Fatalf("expected ErrInvalidExtension first, got %v", err)
	}
}
