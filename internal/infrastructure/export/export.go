// Package export serializes finished batches to CSV and XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
)

// Service implements ports.ResultExporter.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteCSV writes a header row of display labels in canonical field order,
// then one row per result.
func (s *Service) WriteCSV(w io.Writer, results []domain.ExtractionResult, mapping domain.ColumnMapping) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(domain.CanonicalFields))
	for _, field := range domain.CanonicalFields {
		header = append(header, mapping.Label(field))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range results {
		record := make([]string, 0, len(domain.CanonicalFields))
		for _, field := range domain.CanonicalFields {
			record = append(record, fieldValue(r, field))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Workbook builds an XLSX workbook. The default layout is a single
// "Results" sheet; with separateSheets each result gets its own sheet of
// field/value rows, named by the sanitized filename.
func (s *Service) Workbook(results []domain.ExtractionResult, mapping domain.ColumnMapping, separateSheets bool) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	var err error
	if separateSheets {
		err = writeSheetPerResult(f, results, mapping)
	} else {
		err = writeSingleSheet(f, results, mapping)
	}
	if err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"separate_sheets", separateSheets,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSingleSheet(f *excelize.File, results []domain.ExtractionResult, mapping domain.ColumnMapping) error {
	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for i, field := range domain.CanonicalFields {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, mapping.Label(field)); err != nil {
			return err
		}
	}

	for row, r := range results {
		for col, field := range domain.CanonicalFields {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, fieldValue(r, field)); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // filename
	_ = f.SetColWidth(sheet, "B", "B", 60) // extracted text
	_ = f.SetColWidth(sheet, "C", "C", 28) // description
	_ = f.SetColWidth(sheet, "D", "F", 16)
	return nil
}

func writeSheetPerResult(f *excelize.File, results []domain.ExtractionResult, mapping domain.ColumnMapping) error {
	used := make(map[string]bool, len(results))
	for i, r := range results {
		sheet := uniqueSheetName(SanitizeSheetName(r.Filename), used)
		used[sheet] = true

		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return err
			}
		}

		row := 1
		for _, field := range domain.CanonicalFields {
			labelCell, _ := excelize.CoordinatesToCellName(1, row)
			valueCell, _ := excelize.CoordinatesToCellName(2, row)
			if err := f.SetCellValue(sheet, labelCell, mapping.Label(field)); err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, valueCell, fieldValue(r, field)); err != nil {
				return err
			}
			row++
		}

		_ = f.SetColWidth(sheet, "A", "A", 22)
		_ = f.SetColWidth(sheet, "B", "B", 80)
	}
	f.SetActiveSheet(0)
	return nil
}

// maxSheetNameLength is the hard limit the XLSX format imposes on sheet
// names.
const maxSheetNameLength = 31

// SanitizeSheetName strips characters the XLSX format forbids in sheet
// names and truncates the remainder to 31 characters.
func SanitizeSheetName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			// forbidden by the format
		default:
			out = append(out, r)
		}
	}
	cleaned := string(out)
	if len([]rune(cleaned)) > maxSheetNameLength {
		cleaned = string([]rune(cleaned)[:maxSheetNameLength])
	}
	if cleaned == "" {
		cleaned = "Sheet"
	}
	return cleaned
}

func uniqueSheetName(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		trimmed := base
		if len([]rune(trimmed))+len(suffix) > maxSheetNameLength {
			trimmed = string([]rune(trimmed)[:maxSheetNameLength-len(suffix)])
		}
		candidate := trimmed + suffix
		if !used[candidate] {
			return candidate
		}
	}
}

// DownloadFilename builds the timestamped attachment name for exports.
func DownloadFilename(ext string, now time.Time) string {
	return fmt.Sprintf("extracted_text_%s.%s", now.Format("20060102_150405"), ext)
}

func fieldValue(r domain.ExtractionResult, field string) string {
	switch field {
	case domain.FieldFilename:
		return r.Filename
	case domain.FieldExtractedText:
		return r.ExtractedText
	case domain.FieldDescription:
		return r.Description
	case domain.FieldStatus:
		return string(r.Status)
	case domain.FieldError:
		return r.Error
	case domain.FieldProcessingTime:
		if r.Status != domain.StatusSuccess {
			return ""
		}
		return strconv.FormatFloat(r.ProcessingTime, 'f', 2, 64)
	default:
		return ""
	}
}
