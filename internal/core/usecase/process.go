package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
	"github.com/kirillkom/vlm-transcriber/internal/core/ports"
)

// ProcessBatchUseCase runs the per-image pipeline: validation, remote
// extraction, heuristic restructuring. It always returns exactly one
// result per input item, in input order; individual failures never abort
// the batch.
type ProcessBatchUseCase struct {
	extractor ports.VisionExtractor
	formatter ports.TextRestructurer
	progress  ports.ProgressReporter
	limits    domain.BatchLimits
	logger    *slog.Logger
}

func NewProcessBatchUseCase(
	extractor ports.VisionExtractor,
	formatter ports.TextRestructurer,
	progress ports.ProgressReporter,
	limits domain.BatchLimits,
	logger *slog.Logger,
) *ProcessBatchUseCase {
	if progress == nil {
		progress = NopProgress{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessBatchUseCase{
		extractor: extractor,
		formatter: formatter,
		progress:  progress,
		limits:    limits,
		logger:    logger,
	}
}

// ProcessBatch processes items sequentially. An empty batch returns an
// empty slice without touching any collaborator. A batch-size violation
// is the only error returned here; everything per-item is folded into the
// result records.
func (uc *ProcessBatchUseCase) ProcessBatch(ctx context.Context, items []domain.ImageItem) ([]domain.ExtractionResult, error) {
	if len(items) == 0 {
		return []domain.ExtractionResult{}, nil
	}
	if err := ValidateBatch(len(items), uc.limits); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]domain.ExtractionResult, 0, len(items))
	for i, item := range items {
		uc.progress.Report(i+1, len(items), item.Filename)
		results = append(results, uc.processOne(ctx, item))
	}

	uc.logger.Info("batch.processed",
		"images", len(items),
		"errors", countErrors(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (uc *ProcessBatchUseCase) processOne(ctx context.Context, item domain.ImageItem) (result domain.ExtractionResult) {
	// One bad item must not take the batch down with it.
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("batch.item_panic", "filename", item.Filename, "panic", r)
			result = domain.ErrorResult(item, fmt.Errorf("unexpected error processing %s: %v", item.Filename, r))
		}
	}()

	if err := ValidateItem(item, uc.limits); err != nil {
		uc.logger.Warn("batch.item_rejected", "filename", item.Filename, "error", err)
		return domain.ErrorResult(item, err)
	}

	extraction, err := uc.extractor.ExtractText(ctx, item)
	if err != nil {
		uc.logger.Warn("batch.item_failed", "filename", item.Filename, "error", err)
		return domain.ErrorResult(item, err)
	}

	formatted := extraction.Text
	if uc.formatter != nil {
		formatted = uc.formatter.Restructure(extraction.Text)
	}
	return domain.SuccessResult(item, extraction, formatted)
}

func countErrors(results []domain.ExtractionResult) int {
	n := 0
	for _, r := range results {
		if r.Status == domain.StatusError {
			n++
		}
	}
	return n
}

// NopProgress discards progress updates.
type NopProgress struct{}

func (NopProgress) Report(int, int, string) {}
