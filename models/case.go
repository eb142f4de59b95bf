package models

import (
	"time"

	"github.com/google/uuid"
)

// CaseStatus represents the lifecycle status of a case
type CaseStatus string

const (
	CaseStatusActive   CaseStatus = "active"
	CaseStatusClosed   CaseStatus = "closed"
	CaseStatusArchived CaseStatus = "archived"
)

// Case represents a legal matter built around a processed document
type Case struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	DocumentID uuid.UUID  `json:"document_id"`
	Title      string     `json:"title"`
	CaseNumber *string    `json:"case_number,omitempty"`
	Court      *string    `json:"court,omitempty"`
	Status     CaseStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AllegationResponse is the pleading response to a single allegation
type AllegationResponse string

const (
	ResponseUnanswered    AllegationResponse = "unanswered"
	ResponseAdmit         AllegationResponse = "admit"
	ResponseDeny          AllegationResponse = "deny"
	ResponseLackKnowledge AllegationResponse = "lack_knowledge"
)

// Allegation is one numbered factual assertion requiring a response
type Allegation struct {
	ID              uuid.UUID          `json:"id"`
	CaseID          uuid.UUID          `json:"case_id"`
	ParagraphNumber int                `json:"paragraph_number"`
	Text            string             `json:"text"`
	Response        AllegationResponse `json:"response"`
	CreatedAt       time.Time          `json:"created_at"`
}

// AffirmativeDefense is a defense that defeats a claim if proven
type AffirmativeDefense struct {
	ID          uuid.UUID `json:"id"`
	CaseID      uuid.UUID `json:"case_id"`
	DefenseType string    `json:"defense_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Selected    bool      `json:"selected"`
	CreatedAt   time.Time `json:"created_at"`
}

// TimelineEvent is one entry in a case's activity timeline
type TimelineEvent struct {
	ID          uuid.UUID `json:"id"`
	CaseID      uuid.UUID `json:"case_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}
