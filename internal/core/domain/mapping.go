package domain

// Canonical result field names, in export order.
const (
	FieldFilename       = "filename"
	FieldExtractedText  = "extracted_text"
	FieldDescription    = "description"
	FieldStatus         = "status"
	FieldError          = "error"
	FieldProcessingTime = "processing_time"
)

// CanonicalFields is the fixed column order used by every exporter.
var CanonicalFields = []string{
	FieldFilename,
	FieldExtractedText,
	FieldDescription,
	FieldStatus,
	FieldError,
	FieldProcessingTime,
}

// ColumnMapping maps canonical field names to display labels. It is
// read-only configuration for the exporters; callers may override
// individual labels per request.
type ColumnMapping map[string]string

// DefaultColumnMapping returns the default display labels.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		FieldFilename:       "Filename",
		FieldExtractedText:  "Extracted Text",
		FieldDescription:    "Description",
		FieldStatus:         "Status",
		FieldError:          "Error",
		FieldProcessingTime: "Processing Time (s)",
	}
}

// Merge returns a copy of m with non-empty labels from overrides applied.
// Unknown canonical names in overrides are ignored.
func (m ColumnMapping) Merge(overrides map[string]string) ColumnMapping {
	out := make(ColumnMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, field := range CanonicalFields {
		if label, ok := overrides[field]; ok && label != "" {
			out[field] = label
		}
	}
	return out
}

// Label returns the display label for a canonical field, falling back to
// the field name itself.
func (m ColumnMapping) Label(field string) string {
	if label, ok := m[field]; ok && label != "" {
		return label
	}
	return field
}
