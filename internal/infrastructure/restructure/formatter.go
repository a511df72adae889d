// Package restructure reshapes free-form extracted text into labeled
// field/value tables using keyword matching. It is best-effort enrichment,
// intentionally lossy and order-sensitive, not a parser: text it cannot
// categorize passes through unchanged.
package restructure

import (
	"log/slog"
	"sort"
	"strings"
)

type category struct {
	name string
	// canonical keyword order doubles as the sort order within the category
	keywords []string
}

var categories = []category{
	{name: "Patient Information", keywords: []string{
		"name", "age", "sex", "gender", "dob", "date of birth", "patient", "id",
	}},
	{name: "Contact Details", keywords: []string{
		"address", "mobile", "phone", "email", "contact",
	}},
	{name: "Medical Records", keywords: []string{
		"diagnosis", "symptom", "medication", "prescription", "blood", "allerg", "history",
	}},
}

const additionalBucket = "Additional Information"

type row struct {
	field string
	value string
	// position of the matched keyword in its category's canonical list;
	// unrecognized fields carry -1 and sort last, stable by first-seen order
	rank int
	seen int
}

// Formatter implements ports.TextRestructurer.
type Formatter struct {
	logger *slog.Logger
}

func NewFormatter(logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{logger: logger}
}

// Restructure reshapes raw text into per-category Field | Value tables.
// It must never fail the pipeline: on any internal error, or when nothing
// could be categorized, the input is returned unchanged.
func (f *Formatter) Restructure(raw string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("restructure.panic", "panic", r)
			out = raw
		}
	}()

	buckets := make(map[string][]row, len(categories)+1)
	seen := 0
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field, value, hasColon := splitLine(line)
		if field == "" {
			continue
		}

		bucket, rank := classify(field)
		if bucket == additionalBucket && !hasColon {
			// only colon-bearing lines survive into the generic bucket
			continue
		}
		buckets[bucket] = append(buckets[bucket], row{field: field, value: value, rank: rank, seen: seen})
		seen++
	}

	if seen == 0 {
		return raw
	}

	var b strings.Builder
	for _, cat := range categories {
		writeCategory(&b, cat.name, buckets[cat.name])
	}
	writeCategory(&b, additionalBucket, buckets[additionalBucket])
	return strings.TrimRight(b.String(), "\n")
}

// splitLine splits at the first colon, else at the first known keyword
// substring. Lines matching neither are dropped.
func splitLine(line string) (field, value string, hasColon bool) {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
	}

	lower := strings.ToLower(line)
	for _, cat := range categories {
		for _, kw := range cat.keywords {
			if pos := strings.Index(lower, kw); pos >= 0 {
				field = strings.TrimSpace(line[pos : pos+len(kw)])
				value = strings.TrimSpace(line[pos+len(kw):])
				return field, value, false
			}
		}
	}
	return "", "", false
}

// classify finds the first category whose keyword list matches the field
// name as a substring. First matching category wins; the keyword's list
// position becomes the sort rank.
func classify(field string) (string, int) {
	lower := strings.ToLower(field)
	for _, cat := range categories {
		for i, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.name, i
			}
		}
	}
	return additionalBucket, -1
}

func writeCategory(b *strings.Builder, name string, rows []row) {
	if len(rows) == 0 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].rank, rows[j].rank
		if ri == rj {
			return rows[i].seen < rows[j].seen
		}
		if ri == -1 {
			return false
		}
		if rj == -1 {
			return true
		}
		return ri < rj
	})

	b.WriteString("## ")
	b.WriteString(name)
	b.WriteString("\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("| --- | --- |\n")
	for _, r := range rows {
		b.WriteString("| ")
		b.WriteString(r.field)
		b.WriteString(" | ")
		b.WriteString(r.value)
		b.WriteString(" |\n")
	}
	b.WriteString("\n")
}
