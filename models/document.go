package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the processing status of an uploaded document
type DocumentStatus string

const (
	DocumentStatusUploaded  DocumentStatus = "uploaded"
	DocumentStatusProcessed DocumentStatus = "processed"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// Parties holds the named parties extracted from a legal document
type Parties struct {
	Plaintiff  *string `json:"plaintiff"`
	Defendant  *string `json:"defendant"`
	Petitioner *string `json:"petitioner,omitempty"`
	Respondent *string `json:"respondent,omitempty"`
}

// StructuredFacts is the normalized fact record extracted from a document.
// Every field is either a validated value or explicit absence (nil).
type StructuredFacts struct {
	CaseNumber           *string           `json:"caseNumber"`
	Court                *string           `json:"court"`
	Jurisdiction         *string           `json:"jurisdiction"` // "federal", "state", "local"
	Venue                *string           `json:"venue"`
	DocumentType         string            `json:"documentType"`
	Parties              Parties           `json:"parties"`
	Judge                *string           `json:"judge"`
	FilingDate           *string           `json:"filingDate"`       // ISO-8601 date
	ResponseDeadline     *string           `json:"responseDeadline"` // ISO-8601 date
	CausesOfAction       []string          `json:"causesOfAction"`
	KeyAllegations       []string          `json:"keyAllegations"`
	DamageAmount         *string           `json:"damageAmount"`
	ReliefSought         *string           `json:"reliefSought"`
	SubjectMatter        *string           `json:"subjectMatter,omitempty"`
	LegalRepresentatives map[string]string `json:"legalRepresentatives,omitempty"`
}

// Value implements driver.Valuer for JSONB
func (f StructuredFacts) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB
func (f *StructuredFacts) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, f)
}

// SuggestedDefense is one affirmative defense proposed by the analysis
type SuggestedDefense struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Strength    string `json:"strength"` // "high", "medium", "low"
	LegalBasis  string `json:"legalBasis"`
}

// NextStep is one prioritized action item from the analysis
type NextStep struct {
	Action      string  `json:"action"`
	Deadline    *string `json:"deadline,omitempty"`
	Priority    string  `json:"priority"` // "critical", "high", "medium"
	Description string  `json:"description"`
}

// RiskAssessment summarizes the overall exposure of the responding party
type RiskAssessment struct {
	OverallRisk        string   `json:"overallRisk"` // "high", "medium", "low", "unknown"
	SuccessProbability *string  `json:"successProbability,omitempty"`
	Factors            []string `json:"factors"`
}

// LegalAnalysis is the AI-assisted assessment of a processed document
type LegalAnalysis struct {
	Summary           string             `json:"summary"`
	KeyIssues         []string           `json:"keyIssues"`
	SuggestedDefenses []SuggestedDefense `json:"suggestedDefenses"`
	NextSteps         []NextStep         `json:"nextSteps"`
	RiskAssessment    RiskAssessment     `json:"riskAssessment"`
}

// Value implements driver.Valuer for JSONB
func (a LegalAnalysis) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *LegalAnalysis) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Document represents a processed legal document upload
type Document struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"user_id"`
	CaseID        *uuid.UUID       `json:"case_id,omitempty"`
	Filename      string           `json:"filename"`
	MimeType      string           `json:"mime_type"`
	Size          int64            `json:"size"`
	StoragePath   string           `json:"storage_path"`
	Status        DocumentStatus   `json:"status"`
	DocumentType  string           `json:"document_type"`
	ExtractedData *StructuredFacts `json:"extracted_data,omitempty"`
	AIAnalysis    *LegalAnalysis   `json:"ai_analysis,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
