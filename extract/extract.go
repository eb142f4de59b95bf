// Package extract converts an uploaded file of unknown format into usable
// text, escalating through format-specific strategies and a vision-based
// fallback until one yields enough text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"docketdraft-backend/ai"

	"github.com/ledongthuc/pdf"
)

// ErrExtractionFailed means no usable text was obtained after the full
// escalation ladder. Fatal: the caller must not fabricate content.
var ErrExtractionFailed = errors.New("no usable text could be extracted from file")

// MinTextLength is the threshold below which an extraction attempt is
// treated as a failure requiring escalation.
const MinTextLength = 50

const visionInstruction = `Transcribe ALL visible text in this document verbatim. Do not summarize, paraphrase, or omit anything. Preserve the document's structure: case captions, headers, numbered paragraphs, signature blocks, and footers each on their own lines. Output only the transcribed text.`

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
	".heic": true,
}

var imageMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".webp": "image/webp",
	".heic": "image/heic",
}

// Extractor runs the extraction escalation ladder
type Extractor struct {
	client ai.Client
}

// NewExtractor creates an extractor backed by the given model client
func NewExtractor(client ai.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract returns normalized text for the file or ErrExtractionFailed.
// Strategies are attempted in order and stop at the first success; any
// strategy that yields fewer than MinTextLength characters escalates to the
// vision fallback.
func (e *Extractor) Extract(ctx context.Context, filename string, mimeType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	// Images go straight to vision: there is no text layer to try first.
	if imageExtensions[ext] {
		return e.extractVision(ctx, imageMime(ext, mimeType), data)
	}

	switch ext {
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			log.Printf("Warning: PDF text layer extraction failed for %s: %v. Escalating to vision.", filename, err)
			return e.extractVision(ctx, "application/pdf", data)
		}
		text = Normalize(text)
		if len(text) < MinTextLength {
			// Scanned or image-only PDF
			return e.extractVision(ctx, "application/pdf", data)
		}
		return text, nil

	case ".docx":
		text, err := extractDOCX(data)
		if err != nil {
			log.Printf("Warning: DOCX extraction failed for %s: %v. Escalating to vision.", filename, err)
			return e.extractVision(ctx, visionMime(mimeType, data), data)
		}
		text = Normalize(text)
		if len(text) < MinTextLength {
			// Scanned image wrapped in a Word file
			return e.extractVision(ctx, visionMime(mimeType, data), data)
		}
		return text, nil

	case ".doc":
		// Legacy binary format: salvage printable runs, escalate if sparse
		text := Normalize(salvagePrintable(data))
		if len(text) >= MinTextLength {
			return text, nil
		}
		return e.extractVision(ctx, visionMime(mimeType, data), data)

	case ".txt", ".rtf", ".text", ".md":
		text := Normalize(string(data))
		if len(text) < MinTextLength {
			return "", ErrExtractionFailed
		}
		return text, nil

	default:
		if strings.HasPrefix(mimeType, "text/") {
			text := Normalize(string(data))
			if len(text) < MinTextLength {
				return "", ErrExtractionFailed
			}
			return text, nil
		}
		// Unknown format: final rung of the ladder
		return e.extractVision(ctx, visionMime(mimeType, data), data)
	}
}

// visionMime labels non-PDF payloads for the vision call: the declared MIME
// type when the client sent one, otherwise a sniff of the bytes.
func visionMime(declared string, data []byte) string {
	if declared != "" {
		return declared
	}
	return http.DetectContentType(data)
}

// extractVision transcribes the file via the vision-capable model. A short
// response here is a hard failure, not a reason to retry: this is the last
// rung of the ladder.
func (e *Extractor) extractVision(ctx context.Context, mimeType string, data []byte) (string, error) {
	if e.client == nil {
		return "", ErrExtractionFailed
	}

	text, err := e.client.GenerateVision(ctx, visionInstruction, mimeType, data)
	if err != nil {
		log.Printf("Warning: vision extraction failed: %v", err)
		return "", ErrExtractionFailed
	}

	text = Normalize(text)
	if len(text) < MinTextLength {
		return "", ErrExtractionFailed
	}
	return text, nil
}

func imageMime(ext string, declared string) string {
	if m, ok := imageMimeTypes[ext]; ok {
		return m
	}
	if declared != "" {
		return declared
	}
	return "image/png"
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// salvagePrintable pulls ASCII runs out of a legacy binary .doc payload
func salvagePrintable(data []byte) string {
	var buf strings.Builder
	var run []byte
	for _, b := range data {
		if b >= 0x20 && b <= 0x7e || b == '\n' || b == '\t' {
			run = append(run, b)
			continue
		}
		if len(run) >= 4 {
			buf.Write(run)
			buf.WriteByte(' ')
		}
		run = run[:0]
	}
	if len(run) >= 4 {
		buf.Write(run)
	}
	return buf.String()
}

var (
	reSpaces      = regexp.MustCompile(`[ \t]+`)
	reNewlines    = regexp.MustCompile(`\n{3,}`)
	reUnprintable = regexp.MustCompile(`[^\x20-\x7e\t\n\p{L}\p{N}\p{P}\p{S}]`)
)

// Normalize collapses line endings and repeated whitespace and strips
// non-printable characters.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = reUnprintable.ReplaceAllString(text, "")
	text = reSpaces.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = reNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
