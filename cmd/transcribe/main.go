package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/vlm-transcriber/internal/bootstrap"
	"github.com/kirillkom/vlm-transcriber/internal/config"
	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
	"github.com/kirillkom/vlm-transcriber/internal/infrastructure/export"
	"github.com/kirillkom/vlm-transcriber/internal/observability/logging"
)

// consoleProgress prints one line per image to stderr so progress stays
// visible when stdout is redirected.
type consoleProgress struct{}

func (consoleProgress) Report(current, total int, filename string) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, total, filename)
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory of images to process (required)")
		out      = flag.String("out", "", "output file path; .csv or .xlsx decides the format")
		separate = flag.Bool("separate-sheets", false, "one XLSX sheet per image")
		desc     = flag.String("context", "", "free-text context applied to every image")
	)
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "Error: -dir is required")
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.NewJSONLogger("transcribe", cfg.LogLevel)
	slog.SetDefault(logger)

	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), export.DownloadFilename("xlsx", time.Now()))
	}

	items, err := collectImages(*dir, cfg.AllowedExtensions, *desc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(items) == 0 {
		fmt.Fprintf(os.Stderr, "No images with extensions %v found in %s\n", cfg.AllowedExtensions, *dir)
		os.Exit(1)
	}

	app := bootstrap.New(cfg, logger, consoleProgress{})
	results, err := app.Processor.ProcessBatch(context.Background(), items)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutput(app, results, *out, *separate); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ok := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			ok++
		}
	}
	fmt.Printf("Processed %d image(s), %d succeeded. Results written to %s\n", len(results), ok, *out)
}

func collectImages(dir string, allowed []string, description string) ([]domain.ImageItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))
		for _, a := range allowed {
			if ext == a {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)

	items := make([]domain.ImageItem, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		item, err := domain.NewImageItem(name, raw, description)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func writeOutput(app *bootstrap.App, results []domain.ExtractionResult, out string, separate bool) error {
	mapping := domain.DefaultColumnMapping()

	if strings.EqualFold(filepath.Ext(out), ".csv") {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		return app.Exporter.WriteCSV(f, results, mapping)
	}

	data, err := app.Exporter.Workbook(results, mapping, separate)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
