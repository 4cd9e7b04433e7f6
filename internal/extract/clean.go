package extract

import (
	"regexp"
	"strings"
)

var (
	boilerplateRe = regexp.MustCompile(`(Page \d+|HPB \d{4}|Ministry of Health)`)
	blankRunRe    = regexp.MustCompile(`\n\s*\n`)
	bulletRe      = regexp.MustCompile(`[•*–-]\s*`)
	nonASCIIRe    = regexp.MustCompile(`[^\x00-\x7F]+`)
)

// CleanClinicalText normalizes OCR output: stamped headers and page footers
// are stripped, blank-line runs collapse to a single paragraph break, single
// newlines inside a paragraph become spaces, bullet glyphs are unified, and
// any non-ASCII bytes the OCR engine hallucinated are dropped.
func CleanClinicalText(raw string) string {
	text := boilerplateRe.ReplaceAllString(raw, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	// Paragraph breaks survive; lone newlines join into the sentence.
	text = strings.ReplaceAll(text, "\n\n", "\x00")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\x00", "\n\n")

	text = bulletRe.ReplaceAllString(text, "• ")
	text = nonASCIIRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
