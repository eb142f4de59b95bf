package facts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docketdraft-backend/models"
)

type fakeClient struct {
	response string
	err      error
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) GenerateVision(ctx context.Context, instruction string, mimeType string, data []byte) (string, error) {
	return "", errors.New("vision not supported in this fake")
}

func strPtr(s string) *string { return &s }

const complaintText = `IN THE SUPERIOR COURT OF THE STATE OF CALIFORNIA
COUNTY OF LOS ANGELES

ROBERT SMITH,
Plaintiff,

v.

MICHAEL JOHNSON,
Defendant.

Case No. CV-2024-001234

COMPLAINT FOR DAMAGES

Filed: March 1, 2024

1. Plaintiff Robert Smith is an individual residing in Los Angeles County, California.

2. Defendant Michael Johnson is an individual residing in Los Angeles County, California.

3. On or about January 15, 2024, the parties entered into a written consulting agreement.

FIRST CAUSE OF ACTION - Breach of Contract

Plaintiff realleges each of the foregoing paragraphs.

SECOND CAUSE OF ACTION - Negligence

Defendant owed plaintiff a duty of care.

THIRD CAUSE OF ACTION - Fraud

Defendant knowingly misrepresented material facts.

WHEREFORE, plaintiff demands damages in the sum of $150,000.00.`

func TestPatternExtractComplaint(t *testing.T) {
	p := &PatternExtractor{}
	facts := p.Extract(complaintText, "complaint")

	require.NotNil(t, facts.CaseNumber)
	assert.Equal(t, "CV-2024-001234", *facts.CaseNumber)

	require.NotNil(t, facts.Court)
	assert.Contains(t, *facts.Court, "SUPERIOR COURT")
	require.NotNil(t, facts.Jurisdiction)
	assert.Equal(t, "state", *facts.Jurisdiction)

	require.NotNil(t, facts.Parties.Plaintiff)
	assert.Equal(t, "ROBERT SMITH", *facts.Parties.Plaintiff)
	require.NotNil(t, facts.Parties.Defendant)
	assert.Equal(t, "MICHAEL JOHNSON", *facts.Parties.Defendant)

	assert.Equal(t, []string{"Breach of Contract", "Negligence", "Fraud"}, facts.CausesOfAction)
	assert.Len(t, facts.KeyAllegations, 3)

	require.NotNil(t, facts.FilingDate)
	assert.Equal(t, "March 1, 2024", *facts.FilingDate)
	require.NotNil(t, facts.DamageAmount)
	assert.Equal(t, "$150,000.00", *facts.DamageAmount)
}

func TestPatternExtractFederalCourt(t *testing.T) {
	text := `UNITED STATES DISTRICT COURT FOR THE NORTHERN DISTRICT OF CALIFORNIA

ACME CORP,
Plaintiff,
v.
WIDGET LLC,
Defendant.`

	p := &PatternExtractor{}
	facts := p.Extract(text, "complaint")

	require.NotNil(t, facts.Jurisdiction)
	assert.Equal(t, "federal", *facts.Jurisdiction)
}

func TestPatternExtractKnownCausesFallback(t *testing.T) {
	// No COUNT headers: known cause phrases are matched in document order
	text := `Plaintiff brings this action for fraud arising from defendant's
conduct, and further alleges breach of contract and negligence.`

	causes := ExtractCauses(text)
	assert.Equal(t, []string{"fraud", "breach of contract", "negligence"}, causes)
}

func TestMergeModelWins(t *testing.T) {
	model := &models.StructuredFacts{
		CaseNumber: strPtr("2024-CV-999"),
		Court:      strPtr("Superior Court of Fulton County"),
	}
	pattern := &models.StructuredFacts{
		CaseNumber: strPtr("CV-2024-001234"),
		Court:      strPtr("SUPERIOR COURT OF CALIFORNIA"),
		Judge:      strPtr("Patricia Nolan"),
	}

	merged := merge(model, pattern)

	assert.Equal(t, "2024-CV-999", *merged.CaseNumber)
	assert.Equal(t, "Superior Court of Fulton County", *merged.Court)
	// Pattern fills the field the model missed
	require.NotNil(t, merged.Judge)
	assert.Equal(t, "Patricia Nolan", *merged.Judge)
}

func TestMergeEmptyModelStringTreatedAsMissing(t *testing.T) {
	model := &models.StructuredFacts{
		CaseNumber: strPtr("   "),
		Venue:      strPtr(""),
	}
	pattern := &models.StructuredFacts{
		CaseNumber: strPtr("CV-2024-001234"),
	}

	merged := merge(model, pattern)

	require.NotNil(t, merged.CaseNumber)
	assert.Equal(t, "CV-2024-001234", *merged.CaseNumber)
	assert.Nil(t, merged.Venue)
}

func TestMergeBothMissingStaysNil(t *testing.T) {
	merged := merge(&models.StructuredFacts{}, &models.StructuredFacts{})

	assert.Nil(t, merged.CaseNumber)
	assert.Nil(t, merged.Judge)
	assert.Nil(t, merged.DamageAmount)
	assert.Nil(t, merged.Parties.Plaintiff)
	assert.Empty(t, merged.CausesOfAction)
}

func TestExtractClassifierOwnsDocumentType(t *testing.T) {
	// The model's opinion of the document type is discarded
	client := &fakeClient{response: `{"documentType": "motion", "caseNumber": "ABC-123"}`}
	s := NewService(client)

	facts := s.Extract(context.Background(), complaintText, "complaint")

	assert.Equal(t, "complaint", facts.DocumentType)
	require.NotNil(t, facts.CaseNumber)
	assert.Equal(t, "ABC-123", *facts.CaseNumber)
}

func TestExtractDegradesOnModelError(t *testing.T) {
	client := &fakeClient{err: errors.New("model unavailable")}
	s := NewService(client)

	text := `The plaintiff alleges negligence against the defendant arising
from a collision on Highway 40.`
	facts := s.Extract(context.Background(), text, "complaint")

	require.NotNil(t, facts.Jurisdiction)
	assert.Equal(t, "state", *facts.Jurisdiction)
	require.NotNil(t, facts.ReliefSought)
	assert.Equal(t, "Monetary damages and other relief as the court deems just", *facts.ReliefSought)
	require.NotNil(t, facts.SubjectMatter)
	assert.Equal(t, "Civil action for negligence", *facts.SubjectMatter)
}

func TestExtractDegradesOnUnparseableOutput(t *testing.T) {
	client := &fakeClient{response: "I cannot produce JSON for this document."}
	s := NewService(client)

	text := `In the matter before the United States, plaintiff alleges fraud.`
	facts := s.Extract(context.Background(), text, "complaint")

	require.NotNil(t, facts.Jurisdiction)
	assert.Equal(t, "federal", *facts.Jurisdiction)
}

func TestBasicModeWarrantDefaults(t *testing.T) {
	client := &fakeClient{err: errors.New("model unavailable")}
	s := NewService(client)

	facts := s.Extract(context.Background(), "The affiant requests authority to search the premises.", "search_warrant")

	require.NotNil(t, facts.SubjectMatter)
	assert.Equal(t, "Search or seizure authorization", *facts.SubjectMatter)
	require.NotNil(t, facts.ReliefSought)
	assert.Equal(t, "Authorization to search premises or seize property", *facts.ReliefSought)
}

func TestDeadlinePolicyAppliesToComplaint(t *testing.T) {
	client := &fakeClient{response: `{"filingDate": "2024-03-01"}`}
	s := NewService(client)

	facts := s.Extract(context.Background(), "Plaintiff alleges damages.", "complaint")

	require.NotNil(t, facts.ResponseDeadline)
	assert.Equal(t, "2024-03-31", *facts.ResponseDeadline)
}

func TestDeadlinePolicySkipsNonResponsiveTypes(t *testing.T) {
	for _, docType := range []string{"answer", "motion", "order"} {
		t.Run(docType, func(t *testing.T) {
			client := &fakeClient{response: `{"filingDate": "2024-03-01"}`}
			s := NewService(client)

			facts := s.Extract(context.Background(), "Filed in court.", docType)
			assert.Nil(t, facts.ResponseDeadline)
		})
	}
}

func TestDeadlinePolicyKeepsExplicitDeadline(t *testing.T) {
	client := &fakeClient{response: `{"filingDate": "2024-03-01", "responseDeadline": "2024-03-15"}`}
	s := NewService(client)

	facts := s.Extract(context.Background(), "Plaintiff alleges damages.", "complaint")

	require.NotNil(t, facts.ResponseDeadline)
	assert.Equal(t, "2024-03-15", *facts.ResponseDeadline)
}

func TestDeadlineDaysEnvOverride(t *testing.T) {
	t.Setenv("RESPONSE_DEADLINE_DAYS", "21")

	client := &fakeClient{response: `{"filingDate": "01/02/2024"}`}
	s := NewService(client)

	facts := s.Extract(context.Background(), "Plaintiff alleges damages.", "complaint")

	require.NotNil(t, facts.ResponseDeadline)
	assert.Equal(t, "2024-01-23", *facts.ResponseDeadline)
}

func TestDeadlineDaysEnvInvalidFallsBack(t *testing.T) {
	t.Setenv("RESPONSE_DEADLINE_DAYS", "not-a-number")
	assert.Equal(t, DefaultResponseDeadlineDays, deadlineDaysFromEnv())
}
