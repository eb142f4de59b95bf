// Package export renders an assembled document body into a paginated PDF or
// a formatted DOCX according to resolved jurisdiction formatting rules.
// Pure rendering: style and pagination only, no content decisions.
package export

import (
	"errors"
	"strings"

	"docketdraft-backend/models"
)

// ErrExportFailed means the requested format is unsupported or rendering
// failed. No partial file is ever returned.
var ErrExportFailed = errors.New("document export failed")

// Format identifiers accepted by Render
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// Render dispatches to the requested renderer
func Render(body string, format string, rules models.FormatRules) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case FormatPDF:
		data, err := RenderPDF(body, rules)
		return data, "application/pdf", err
	case FormatDOCX:
		data, err := RenderDOCX(body, rules)
		return data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", err
	default:
		return nil, "", ErrExportFailed
	}
}

// knownTitles are heading lines rendered bold even without a trailing colon
var knownTitles = map[string]bool{
	"ANSWER":                     true,
	"COMPLAINT":                  true,
	"AFFIRMATIVE DEFENSES":       true,
	"GENERAL DENIAL":             true,
	"PRAYER FOR RELIEF":          true,
	"CERTIFICATE OF SERVICE":     true,
	"VERIFICATION":               true,
	"JURY DEMAND":                true,
	"RESPONSES TO ALLEGATIONS":   true,
	"FACTUAL BACKGROUND":         true,
	"JURISDICTION AND VENUE":     true,
	"PARTIES":                    true,
	"INTRODUCTION":               true,
	"CONCLUSION":                 true,
	"WHEREFORE":                  true,
	"CAUSES OF ACTION":           true,
	"COUNTERCLAIMS":              true,
	"RESERVATION OF RIGHTS":      true,
	"RESPECTFULLY SUBMITTED":     true,
	"PROOF OF SERVICE":           true,
	"NOTICE":                     true,
	"DEMAND FOR JUDGMENT":        true,
	"STATEMENT OF FACTS":         true,
	"PRELIMINARY STATEMENT":      true,
	"FIRST AFFIRMATIVE DEFENSE":  true,
	"SECOND AFFIRMATIVE DEFENSE": true,
	"THIRD AFFIRMATIVE DEFENSE":  true,
	"FOURTH AFFIRMATIVE DEFENSE": true,
	"FIFTH AFFIRMATIVE DEFENSE":  true,
}

// IsHeading reports whether a line should be rendered in bold: it ends with
// a colon or matches a known title string.
func IsHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(trimmed, ":") {
		return true
	}
	return knownTitles[strings.ToUpper(strings.TrimRight(trimmed, ".,"))]
}

// normalizeRules fills zero-valued rules with conventional filing defaults
// so a sparse resolver response still renders a legible document.
func normalizeRules(rules models.FormatRules) models.FormatRules {
	if rules.FontSize <= 0 {
		rules.FontSize = 12
	}
	if rules.LineSpacing <= 0 {
		rules.LineSpacing = 2.0
	}
	if rules.Margins.Top <= 0 {
		rules.Margins.Top = 1.0
	}
	if rules.Margins.Bottom <= 0 {
		rules.Margins.Bottom = 1.0
	}
	if rules.Margins.Left <= 0 {
		rules.Margins.Left = 1.0
	}
	if rules.Margins.Right <= 0 {
		rules.Margins.Right = 1.0
	}
	return rules
}
