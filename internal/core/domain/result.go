package domain

import "time"

type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// ExtractionResult is the per-image outcome record. Exactly one is produced
// for every input item, in input order, and it is never mutated afterwards.
type ExtractionResult struct {
	Filename       string       `json:"filename"`
	ExtractedText  string       `json:"extracted_text,omitempty"`
	FormattedText  string       `json:"formatted_text,omitempty"`
	Description    string       `json:"description,omitempty"`
	Confidence     float64      `json:"confidence_score,omitempty"`
	Status         ResultStatus `json:"status"`
	Error          string       `json:"error,omitempty"`
	ProcessingTime float64      `json:"processing_time,omitempty"`
}

// Extraction is what the remote vision client hands back on success.
type Extraction struct {
	Text       string
	Elapsed    time.Duration
	Confidence float64
}

// SuccessResult builds a success record. Elapsed time is reported in
// seconds, rounded to two decimals like the rest of the result surface.
func SuccessResult(item ImageItem, ex Extraction, formatted string) ExtractionResult {
	return ExtractionResult{
		Filename:       item.Filename,
		ExtractedText:  ex.Text,
		FormattedText:  formatted,
		Description:    item.Description,
		Confidence:     ex.Confidence,
		Status:         StatusSuccess,
		ProcessingTime: RoundSeconds(ex.Elapsed),
	}
}

// ErrorResult builds an error record carrying a human-readable reason.
func ErrorResult(item ImageItem, err error) ExtractionResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ExtractionResult{
		Filename:    item.Filename,
		Description: item.Description,
		Status:      StatusError,
		Error:       msg,
	}
}

// RoundSeconds converts a duration to seconds with two decimal places.
func RoundSeconds(d time.Duration) float64 {
	return float64(d.Round(10*time.Millisecond)) / float64(time.Second)
}
