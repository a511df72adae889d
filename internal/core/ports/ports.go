package ports

import (
	"context"
	"io"

	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
)

// BatchProcessor is the inbound interface the HTTP adapter and the CLI
// drive. Items are processed strictly one at a time, in input order.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, items []domain.ImageItem) ([]domain.ExtractionResult, error)
}

// VisionExtractor sends one image to the remote vision-language model and
// returns the extracted text. Implementations own their retry budget and
// return the last attempt's error once it is exhausted.
type VisionExtractor interface {
	ExtractText(ctx context.Context, item domain.ImageItem) (domain.Extraction, error)
}

// TextRestructurer reshapes raw extracted text into a labeled field/value
// table. Best effort: on any internal failure it returns the input
// unchanged and never reports an error.
type TextRestructurer interface {
	Restructure(raw string) string
}

// ProgressReporter receives one update per item before it is processed.
type ProgressReporter interface {
	Report(current, total int, filename string)
}

// ResultExporter serializes a finished batch for download.
type ResultExporter interface {
	WriteCSV(w io.Writer, results []domain.ExtractionResult, mapping domain.ColumnMapping) error
	Workbook(results []domain.ExtractionResult, mapping domain.ColumnMapping, separateSheets bool) ([]byte, error)
}
