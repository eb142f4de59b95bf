package export

import (
	"bytes"
	"fmt"
	"strings"

	"docketdraft-backend/models"

	"github.com/jung-kurt/gofpdf"
)

const pointsPerInch = 72.0

// RenderPDF lays the body out line by line using the resolved font size and
// line height. A new page starts when the remaining vertical space is less
// than one line height. Heading lines render bold; page numbers are appended
// per page only if the rules request them.
func RenderPDF(body string, rules models.FormatRules) ([]byte, error) {
	rules = normalizeRules(rules)

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(rules.Margins.Left*pointsPerInch, rules.Margins.Top*pointsPerInch, rules.Margins.Right*pointsPerInch)
	pdf.SetAutoPageBreak(false, rules.Margins.Bottom*pointsPerInch)

	if rules.PageNumbering {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-(rules.Margins.Bottom * pointsPerInch / 2))
			pdf.SetFont("Times", "", rules.FontSize-2)
			pdf.CellFormat(0, rules.FontSize, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "C", false, 0, "")
		})
	}

	lineHeight := rules.FontSize * rules.LineSpacing
	pageWidth, pageHeight := pdf.GetPageSize()
	textWidth := pageWidth - (rules.Margins.Left+rules.Margins.Right)*pointsPerInch
	bottomLimit := pageHeight - rules.Margins.Bottom*pointsPerInch

	pdf.AddPage()
	pdf.SetFont("Times", "", rules.FontSize)
	y := rules.Margins.Top * pointsPerInch

	for _, line := range strings.Split(body, "\n") {
		style := ""
		if IsHeading(line) {
			style = "B"
		}
		pdf.SetFont("Times", style, rules.FontSize)

		// Blank lines still consume one line height
		wrapped := []string{""}
		if strings.TrimSpace(line) != "" {
			wrapped = pdf.SplitText(line, textWidth)
		}

		for _, segment := range wrapped {
			if y+lineHeight > bottomLimit {
				pdf.AddPage()
				y = rules.Margins.Top * pointsPerInch
			}
			pdf.SetXY(rules.Margins.Left*pointsPerInch, y)
			pdf.CellFormat(textWidth, lineHeight, segment, "", 0, "L", false, 0, "")
			y += lineHeight
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}
