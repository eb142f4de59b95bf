package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records vision calls and returns scripted responses
type fakeClient struct {
	visionText  string
	visionErr   error
	visionCalls int
	lastMime    string
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	return "", errors.New("generate not supported in this fake")
}

func (f *fakeClient) GenerateVision(ctx context.Context, instruction string, mimeType string, data []byte) (string, error) {
	f.visionCalls++
	f.lastMime = mimeType
	if f.visionErr != nil {
		return "", f.visionErr
	}
	return f.visionText, nil
}

const sampleText = `IN THE SUPERIOR COURT OF THE STATE OF CALIFORNIA

COMPLAINT FOR DAMAGES

Plaintiff alleges that defendant breached the parties' agreement.`

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(&fakeClient{})

	text, err := e.Extract(context.Background(), "complaint.txt", "text/plain", []byte(sampleText))
	require.NoError(t, err)
	assert.Contains(t, text, "COMPLAINT FOR DAMAGES")
}

func TestExtractTextMimeFallback(t *testing.T) {
	e := NewExtractor(&fakeClient{})

	text, err := e.Extract(context.Background(), "complaint.unknown", "text/plain", []byte(sampleText))
	require.NoError(t, err)
	assert.Contains(t, text, "COMPLAINT FOR DAMAGES")
}

func TestExtractShortTextFails(t *testing.T) {
	e := NewExtractor(&fakeClient{})

	_, err := e.Extract(context.Background(), "note.txt", "text/plain", []byte("too short"))
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractWhitespaceOnlyFailsEveryPath(t *testing.T) {
	// All-whitespace input must surface ErrExtractionFailed on every ladder
	// path; the vision rung transcribes nothing from it either.
	whitespace := []byte("   \n\t\n   \r\n  \n\n   \t ")

	files := []struct {
		filename string
		mimeType string
	}{
		{"blank.txt", "text/plain"},
		{"blank.rtf", "application/rtf"},
		{"blank.pdf", "application/pdf"},
		{"blank.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"blank.doc", "application/msword"},
		{"blank.png", "image/png"},
		{"blank.bin", "application/octet-stream"},
	}

	for _, f := range files {
		t.Run(f.filename, func(t *testing.T) {
			client := &fakeClient{visionText: "  \n  "}
			e := NewExtractor(client)

			_, err := e.Extract(context.Background(), f.filename, f.mimeType, whitespace)
			assert.ErrorIs(t, err, ErrExtractionFailed)
		})
	}
}

func TestExtractImageGoesToVision(t *testing.T) {
	client := &fakeClient{visionText: sampleText}
	e := NewExtractor(client)

	text, err := e.Extract(context.Background(), "scan.jpg", "", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, 1, client.visionCalls)
	assert.Equal(t, "image/jpeg", client.lastMime)
	assert.Contains(t, text, "COMPLAINT FOR DAMAGES")
}

func TestExtractBadPDFEscalatesToVision(t *testing.T) {
	// Not a real PDF: the text layer pass fails and escalates
	client := &fakeClient{visionText: sampleText}
	e := NewExtractor(client)

	text, err := e.Extract(context.Background(), "scan.pdf", "application/pdf", []byte("not a pdf at all"))
	require.NoError(t, err)
	assert.Equal(t, 1, client.visionCalls)
	assert.Equal(t, "application/pdf", client.lastMime)
	assert.Contains(t, text, "COMPLAINT FOR DAMAGES")
}

func TestExtractVisionErrorIsFatal(t *testing.T) {
	client := &fakeClient{visionErr: errors.New("model unavailable")}
	e := NewExtractor(client)

	_, err := e.Extract(context.Background(), "scan.png", "image/png", []byte{0x89, 0x50})
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Equal(t, 1, client.visionCalls)
}

func TestExtractShortVisionOutputIsFatal(t *testing.T) {
	// The vision rung is the last one; a short transcription does not retry
	client := &fakeClient{visionText: "blank page"}
	e := NewExtractor(client)

	_, err := e.Extract(context.Background(), "scan.tiff", "image/tiff", []byte{0x49, 0x49})
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Equal(t, 1, client.visionCalls)
}

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// buildDOCX packages the given text as a minimal WordprocessingML document
func buildDOCX(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fmt.Fprintf(f,
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>%s</w:t></w:r></w:p></w:body></w:document>`,
		text)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDOCXWithTextLayer(t *testing.T) {
	client := &fakeClient{}
	e := NewExtractor(client)

	payload := buildDOCX(t, "COMPLAINT FOR DAMAGES filed in the Superior Court of California")

	text, err := e.Extract(context.Background(), "complaint.docx", docxMime, payload)
	require.NoError(t, err)
	assert.Equal(t, 0, client.visionCalls)
	assert.Contains(t, text, "COMPLAINT FOR DAMAGES")
}

func TestExtractShortDOCXTextEscalatesToVision(t *testing.T) {
	// A Word file wrapping a scanned image parses fine but carries almost
	// no text; that escalates instead of failing outright
	client := &fakeClient{visionText: sampleText}
	e := NewExtractor(client)

	payload := buildDOCX(t, "Scan")

	text, err := e.Extract(context.Background(), "scan.docx", docxMime, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, client.visionCalls)
	assert.Equal(t, docxMime, client.lastMime)
	assert.Contains(t, text, "COMPLAINT FOR DAMAGES")
}

func TestExtractVisionMimeUsesDeclared(t *testing.T) {
	client := &fakeClient{visionText: sampleText}
	e := NewExtractor(client)

	_, err := e.Extract(context.Background(), "old.doc", "application/msword", []byte{0x00, 0x01, 0x02, 0x03})
	require.NoError(t, err)
	assert.Equal(t, 1, client.visionCalls)
	assert.Equal(t, "application/msword", client.lastMime)
}

func TestExtractVisionMimeSniffsWhenUndeclared(t *testing.T) {
	client := &fakeClient{visionText: sampleText}
	e := NewExtractor(client)

	_, err := e.Extract(context.Background(), "upload.bin", "", []byte{0x00, 0x01, 0x02, 0x03})
	require.NoError(t, err)
	assert.Equal(t, 1, client.visionCalls)
	assert.Equal(t, "application/octet-stream", client.lastMime)
}

func TestExtractLegacyDocSalvage(t *testing.T) {
	// Binary junk around printable runs: the salvage pass should recover
	// enough text without touching vision
	var payload []byte
	payload = append(payload, 0x00, 0x01, 0x02)
	payload = append(payload, []byte("COMPLAINT FOR DAMAGES filed in the Superior Court of California")...)
	payload = append(payload, 0x03, 0x04)

	client := &fakeClient{}
	e := NewExtractor(client)

	text, err := e.Extract(context.Background(), "old.doc", "application/msword", payload)
	require.NoError(t, err)
	assert.Equal(t, 0, client.visionCalls)
	assert.Contains(t, text, "COMPLAINT FOR DAMAGES")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "crlf to lf",
			in:   "line one\r\nline two",
			want: "line one\nline two",
		},
		{
			name: "collapse spaces and tabs",
			in:   "too   many\t\tspaces",
			want: "too many spaces",
		},
		{
			name: "tab separated words stay separated",
			in:   "Case No.\tCV-2024-001234",
			want: "Case No. CV-2024-001234",
		},
		{
			name: "collapse blank line runs",
			in:   "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "trim line edges",
			in:   "   padded line   \n  next  ",
			want: "padded line\nnext",
		},
		{
			name: "strip unprintables",
			in:   "case\x00 number\x07 123",
			want: "case number 123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeWhitespaceOnly(t *testing.T) {
	assert.Equal(t, "", Normalize("   \n\t \r\n  "))
	assert.Less(t, len(Normalize(strings.Repeat(" \n", 100))), MinTextLength)
}
