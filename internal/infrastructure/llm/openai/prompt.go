package openai

import "strings"

const instructionTemplate = `Extract all text from this image. Format the output as plain text.
Focus on accuracy and maintain the original formatting where possible.
If there are any tables, preserve the tabular structure.`

// buildPrompt combines the fixed instruction template with the optional
// per-item context supplied by the caller.
func buildPrompt(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return instructionTemplate
	}

	var b strings.Builder
	b.WriteString(instructionTemplate)
	b.WriteString("\n\nAdditional context about this image: ")
	b.WriteString(description)
	return b.String()
}
