package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
)

type extractorFake struct {
	calls   []string
	text    string
	err     error
	panicOn string
}

func (f *extractorFake) ExtractText(_ context.Context, item domain.ImageItem) (domain.Extraction, error) {
	f.calls = append(f.calls, item.Filename)
	if f.panicOn != "" && item.Filename == f.panicOn {
		panic("extractor blew up")
	}
	if f.err != nil {
		return domain.Extraction{}, f.err
	}
	return domain.Extraction{Text: f.text, Elapsed: 1500 * time.Millisecond, Confidence: 1.0}, nil
}

type formatterFake struct {
	prefix string
}

func (f *formatterFake) Restructure(raw string) string {
	if f.prefix == "" {
		return raw
	}
	return f.prefix + raw
}

type progressFake struct {
	reports []string
	totals  []int
}

func (f *progressFake) Report(current, total int, filename string) {
	f.reports = append(f.reports, filename)
	f.totals = append(f.totals, total)
}

func newUseCase(ex *extractorFake, fm *formatterFake, pr *progressFake, limits domain.BatchLimits) *ProcessBatchUseCase {
	return NewProcessBatchUseCase(ex, fm, pr, limits, nil)
}

func mustItem(t *testing.T, filename, content, description string) domain.ImageItem {
	t.Helper()
	item, err := domain.NewImageItem(filename, []byte(content), description)
	if err != nil {
		t.Fatalf("unexpected item error: %v", err)
	}
	return item
}

func TestProcessBatchEmptyInput(t *testing.T) {
	ex := &extractorFake{text: "hello"}
	pr := &progressFake{}
	uc := newUseCase(ex, &formatterFake{}, pr, domain.DefaultBatchLimits())

	results, err := uc.ProcessBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
	if len(ex.calls) != 0 || len(pr.reports) != 0 {
		t.Fatal("empty batch must not touch collaborators")
	}
}

func TestProcessBatchOneResultPerItemInOrder(t *testing.T) {
	ex := &extractorFake{text: "extracted"}
	pr := &progressFake{}
	uc := newUseCase(ex, &formatterFake{prefix: "formatted: "}, pr, domain.DefaultBatchLimits())

	items := []domain.ImageItem{
		mustItem(t, "a.png", "x", ""),
		mustItem(t, "b.jpg", "x", "lab report"),
		mustItem(t, "c.webp", "x", ""),
	}
	results, err := uc.ProcessBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, item := range items {
		if results[i].Filename != item.Filename {
			t.Fatalf("result %d out of order: got %q want %q", i, results[i].Filename, item.Filename)
		}
	}
	if results[1].Description != "lab report" {
		t.Fatalf("description not carried through: %q", results[1].Description)
	}
	if results[0].FormattedText != "formatted: extracted" {
		t.Fatalf("formatter not applied: %q", results[0].FormattedText)
	}
	if results[0].ProcessingTime != 1.5 {
		t.Fatalf("expected 1.5s processing time, got %v", results[0].ProcessingTime)
	}
	if len(pr.reports) != 3 || pr.reports[0] != "a.png" || pr.totals[0] != 3 {
		t.Fatalf("unexpected progress reports: %v %v", pr.reports, pr.totals)
	}
}

func TestProcessBatchValidationShortCircuitsExtraction(t *testing.T) {
	ex := &extractorFake{text: "extracted"}
	uc := newUseCase(ex, &formatterFake{}, &progressFake{}, domain.DefaultBatchLimits())

	items := []domain.ImageItem{
		mustItem(t, "notes.txt", "x", ""),
		mustItem(t, "ok.png", "x", ""),
	}
	results, err := uc.ProcessBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Status != domain.StatusError {
		t.Fatalf("expected error status for rejected file, got %s", results[0].Status)
	}
	if results[1].Status != domain.StatusSuccess {
		t.Fatalf("expected success for valid file, got %s", results[1].Status)
	}
	if len(ex.calls) != 1 || ex.calls[0] != "ok.png" {
		t.Fatalf("extractor must only see valid items, saw %v", ex.calls)
	}
}

func TestProcessBatchTooLargeAbortsBeforeProcessing(t *testing.T) {
	ex := &extractorFake{text: "extracted"}
	pr := &progressFake{}
	limits := domain.DefaultBatchLimits()
	limits.MaxBatchSize = 2
	uc := newUseCase(ex, &formatterFake{}, pr, limits)

	items := []domain.ImageItem{
		mustItem(t, "a.png", "x", ""),
		mustItem(t, "b.png", "x", ""),
		mustItem(t, "c.png", "x", ""),
	}
	_, err := uc.ProcessBatch(context.Background(), items)
	if !domain.IsKind(err, domain.ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
	if len(ex.calls) != 0 || len(pr.reports) != 0 {
		t.Fatal("oversized batch must abort before any item is processed")
	}
}

func TestProcessBatchExtractionFailureYieldsErrorResult(t *testing.T) {
	ex := &extractorFake{err: errors.New("model unavailable")}
	uc := newUseCase(ex, &formatterFake{}, &progressFake{}, domain.DefaultBatchLimits())

	results, err := uc.ProcessBatch(context.Background(), []domain.ImageItem{mustItem(t, "a.png", "x", "")})
	if err != nil {
		t.Fatalf("per-item failures must not fail the batch: %v", err)
	}
	if results[0].Status != domain.StatusError {
		t.Fatalf("expected error status, got %s", results[0].Status)
	}
	if results[0].Error != "model unavailable" {
		t.Fatalf("expected last error message, got %q", results[0].Error)
	}
}

func TestProcessBatchRecoversFromPanics(t *testing.T) {
	ex := &extractorFake{text: "ok", panicOn: "b.png"}
	uc := newUseCase(ex, &formatterFake{}, &progressFake{}, domain.DefaultBatchLimits())

	items := []domain.ImageItem{
		mustItem(t, "a.png", "x", ""),
		mustItem(t, "b.png", "x", ""),
		mustItem(t, "c.png", "x", ""),
	}
	results, err := uc.ProcessBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("panicking item must not abort the batch, got %d results", len(results))
	}
	if results[1].Status != domain.StatusError {
		t.Fatalf("expected error result for panicking item, got %s", results[1].Status)
	}
	if results[0].Status != domain.StatusSuccess || results[2].Status != domain.StatusSuccess {
		t.Fatal("surrounding items must still succeed")
	}
}
