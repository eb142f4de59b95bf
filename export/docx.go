package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"docketdraft-backend/models"
)

const twipsPerInch = 1440

// RenderDOCX builds a WordprocessingML package from scratch: content types,
// package relationships, and a document part carrying the resolved margins,
// font size, and line spacing. Heading lines get bold runs; a footer with a
// PAGE field is attached when the rules request page numbering.
func RenderDOCX(body string, rules models.FormatRules) ([]byte, error) {
	rules = normalizeRules(rules)

	var out bytes.Buffer
	w := zip.NewWriter(&out)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML(rules.PageNumbering)},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML(rules.PageNumbering)},
		{"word/document.xml", documentXML(body, rules)},
	}
	if rules.PageNumbering {
		parts = append(parts, struct {
			name    string
			content string
		}{"word/footer1.xml", footerXML(rules)})
	}

	for _, part := range parts {
		f, err := w.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return out.Bytes(), nil
}

func contentTypesXML(withFooter bool) string {
	footer := ""
	if withFooter {
		footer = `<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		footer +
		`</Types>`
}

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

func documentRelsXML(withFooter bool) string {
	footer := ""
	if withFooter {
		footer = `<Relationship Id="rIdFooter1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>`
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		footer +
		`</Relationships>`
}

func documentXML(body string, rules models.FormatRules) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	b.WriteString(`<w:body>`)

	for _, line := range strings.Split(body, "\n") {
		b.WriteString(paragraphXML(line, rules))
	}

	b.WriteString(sectPrXML(rules))
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func paragraphXML(line string, rules models.FormatRules) string {
	// Spacing in twentieths of a point; 240 = single spacing
	spacing := int(rules.LineSpacing * 240)
	halfPoints := int(rules.FontSize * 2)

	var b strings.Builder
	b.WriteString(`<w:p><w:pPr>`)
	fmt.Fprintf(&b, `<w:spacing w:line="%d" w:lineRule="auto"/>`, spacing)
	b.WriteString(`</w:pPr>`)

	if strings.TrimSpace(line) != "" {
		b.WriteString(`<w:r><w:rPr>`)
		if IsHeading(line) {
			b.WriteString(`<w:b/>`)
		}
		fmt.Fprintf(&b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, halfPoints, halfPoints)
		b.WriteString(`</w:rPr>`)
		fmt.Fprintf(&b, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(line))
		b.WriteString(`</w:r>`)
	}

	b.WriteString(`</w:p>`)
	return b.String()
}

func sectPrXML(rules models.FormatRules) string {
	var b strings.Builder
	b.WriteString(`<w:sectPr>`)
	if rules.PageNumbering {
		b.WriteString(`<w:footerReference w:type="default" r:id="rIdFooter1"/>`)
	}
	b.WriteString(`<w:pgSz w:w="12240" w:h="15840"/>`)
	fmt.Fprintf(&b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d"/>`,
		int(rules.Margins.Top*twipsPerInch),
		int(rules.Margins.Right*twipsPerInch),
		int(rules.Margins.Bottom*twipsPerInch),
		int(rules.Margins.Left*twipsPerInch),
	)
	b.WriteString(`</w:sectPr>`)
	return b.String()
}

func footerXML(rules models.FormatRules) string {
	halfPoints := int((rules.FontSize - 2) * 2)
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
		fmt.Sprintf(`<w:r><w:rPr><w:sz w:val="%d"/></w:rPr><w:fldChar w:fldCharType="begin"/></w:r>`, halfPoints) +
		`<w:r><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>` +
		`<w:r><w:fldChar w:fldCharType="end"/></w:r>` +
		`</w:p></w:ftr>`
}

func escapeXML(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
