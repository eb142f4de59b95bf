package facts

import (
	"context"
	"fmt"

	"docketdraft-backend/ai"
	"docketdraft-backend/models"
)

// maxExcerptLength bounds the text sent to the model so long filings stay
// within input limits. The caption, parties, and counts live at the head of
// a filing, so the head is what matters.
const maxExcerptLength = 8000

// ModelExtractor asks the language model to populate every field of the
// fact record, with explicit null for anything unfound.
type ModelExtractor struct {
	client ai.Client
}

// NewModelExtractor creates a model-backed extractor
func NewModelExtractor(client ai.Client) *ModelExtractor {
	return &ModelExtractor{client: client}
}

const extractionPromptFmt = `You are a legal document analyst. Extract structured facts from the legal document text below.

Respond with ONLY a JSON object in exactly this shape. Use null for any field not present in the document. Never guess or invent values.

{
  "caseNumber": string or null,
  "court": string or null,
  "jurisdiction": "federal" or "state" or "local" or null,
  "venue": string or null,
  "parties": {
    "plaintiff": string or null,
    "defendant": string or null,
    "petitioner": string or null,
    "respondent": string or null
  },
  "judge": string or null,
  "filingDate": "YYYY-MM-DD" or null,
  "responseDeadline": "YYYY-MM-DD" or null,
  "causesOfAction": [string, ...],
  "keyAllegations": [string, ...],
  "damageAmount": string or null,
  "reliefSought": string or null,
  "subjectMatter": string or null,
  "legalRepresentatives": {"plaintiff": string, "defendant": string} or {}
}

DOCUMENT TEXT:
%s`

// Extract sends a bounded excerpt and parses the structured response.
// Returns an error on any model or parse failure so the caller can fall
// back to pattern-only extraction.
func (m *ModelExtractor) Extract(ctx context.Context, text string, docType string) (*models.StructuredFacts, error) {
	if m.client == nil {
		return nil, fmt.Errorf("model client not set")
	}

	excerpt := text
	if len(excerpt) > maxExcerptLength {
		excerpt = excerpt[:maxExcerptLength]
	}

	response, err := m.client.Generate(ctx, fmt.Sprintf(extractionPromptFmt, excerpt), 0.1)
	if err != nil {
		return nil, fmt.Errorf("model extraction call failed: %w", err)
	}

	facts := &models.StructuredFacts{}
	if err := ai.DecodeJSON(response, facts); err != nil {
		return nil, fmt.Errorf("model extraction returned unparseable output: %w", err)
	}

	// The taxonomy is owned by the classifier; never trust the model's type
	facts.DocumentType = docType

	return facts, nil
}
