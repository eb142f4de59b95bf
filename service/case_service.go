package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"docketdraft-backend/models"

	"github.com/google/uuid"
)

var ErrCaseCreationFailed = errors.New("failed to create case")

// CaseRecordStore is the case persistence used by the case service. It is
// the full read/write surface over cases and their child records; the draft
// service's CaseStore is the read-only subset of it.
type CaseRecordStore interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Case, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) error
	CreateAllegation(ctx context.Context, a *models.Allegation) error
	GetAllegations(ctx context.Context, caseID uuid.UUID) ([]*models.Allegation, error)
	UpdateAllegationResponse(ctx context.Context, id uuid.UUID, response models.AllegationResponse) error
	CreateAffirmativeDefense(ctx context.Context, d *models.AffirmativeDefense) error
	GetAffirmativeDefenses(ctx context.Context, caseID uuid.UUID) ([]*models.AffirmativeDefense, error)
	SetDefenseSelected(ctx context.Context, id uuid.UUID, selected bool) error
	CreateTimelineEvent(ctx context.Context, e *models.TimelineEvent) error
	GetTimeline(ctx context.Context, caseID uuid.UUID) ([]*models.TimelineEvent, error)
}

// CaseService builds and reads cases synthesized from processed documents
type CaseService struct {
	caseRepo CaseRecordStore
	docRepo  DocumentRecordStore
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// CaseWithCaseRepository sets the case repository
func CaseWithCaseRepository(repo CaseRecordStore) CaseServiceOption {
	return func(s *CaseService) {
		s.caseRepo = repo
	}
}

// CaseWithDocumentRepository sets the document repository
func CaseWithDocumentRepository(repo DocumentRecordStore) CaseServiceOption {
	return func(s *CaseService) {
		s.docRepo = repo
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCaseRequest represents a request to build a case from a document
type CreateCaseRequest struct {
	DocumentID uuid.UUID
}

// CreateCaseResult represents the created case and its child records
type CreateCaseResult struct {
	Case        *models.Case
	Allegations []*models.Allegation
	Defenses    []*models.AffirmativeDefense
}

// starterDefenses are the affirmative defenses seeded on every new case.
// None are selected; the user picks which apply before generation.
var starterDefenses = []models.AffirmativeDefense{
	{
		DefenseType: "statute_of_limitations",
		Title:       "Statute of Limitations",
		Description: "The claims are barred because they were not brought within the applicable limitations period.",
	},
	{
		DefenseType: "failure_to_state_claim",
		Title:       "Failure to State a Claim",
		Description: "The complaint fails to state a claim upon which relief can be granted.",
	},
	{
		DefenseType: "waiver",
		Title:       "Waiver",
		Description: "Plaintiff waived the right to assert the claims through prior conduct or agreement.",
	},
	{
		DefenseType: "estoppel",
		Title:       "Estoppel",
		Description: "Plaintiff is estopped from asserting the claims by their own representations and conduct.",
	},
	{
		DefenseType: "comparative_fault",
		Title:       "Comparative Fault",
		Description: "Any damages were caused in whole or in part by the acts or omissions of Plaintiff or third parties.",
	},
	{
		DefenseType: "failure_to_mitigate",
		Title:       "Failure to Mitigate",
		Description: "Plaintiff failed to take reasonable steps to mitigate the alleged damages.",
	},
}

// CreateCase synthesizes a case from a processed document: the title from
// the extracted parties, one allegation row per key allegation, a starter
// set of affirmative defenses, and an opening timeline event.
func (s *CaseService) CreateCase(
	ctx context.Context,
	req CreateCaseRequest,
) (*CreateCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}
	if s.docRepo == nil {
		return nil, errors.New("document repository not set")
	}

	doc, err := s.docRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}

	facts := doc.ExtractedData
	if facts == nil {
		facts = &models.StructuredFacts{DocumentType: doc.DocumentType}
	}

	c := &models.Case{
		ID:         uuid.New(),
		UserID:     doc.UserID,
		DocumentID: doc.ID,
		Title:      caseTitle(facts, doc.Filename),
		CaseNumber: facts.CaseNumber,
		Court:      facts.Court,
		Status:     models.CaseStatusActive,
	}

	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, ErrCaseCreationFailed
	}

	if err := s.docRepo.SetCaseID(ctx, doc.ID, c.ID); err != nil {
		log.Printf("Warning: failed to link document %s to case %s: %v", doc.ID, c.ID, err)
	}

	allegations := make([]*models.Allegation, 0, len(facts.KeyAllegations))
	for i, text := range facts.KeyAllegations {
		a := &models.Allegation{
			ID:              uuid.New(),
			CaseID:          c.ID,
			ParagraphNumber: i + 1,
			Text:            text,
			Response:        models.ResponseUnanswered,
		}
		if err := s.caseRepo.CreateAllegation(ctx, a); err != nil {
			return nil, fmt.Errorf("failed to create allegation %d: %w", i+1, err)
		}
		allegations = append(allegations, a)
	}

	defenses := make([]*models.AffirmativeDefense, 0, len(starterDefenses))
	for _, seed := range starterDefenses {
		d := &models.AffirmativeDefense{
			ID:          uuid.New(),
			CaseID:      c.ID,
			DefenseType: seed.DefenseType,
			Title:       seed.Title,
			Description: seed.Description,
		}
		if err := s.caseRepo.CreateAffirmativeDefense(ctx, d); err != nil {
			return nil, fmt.Errorf("failed to seed defense %s: %w", seed.DefenseType, err)
		}
		defenses = append(defenses, d)
	}

	event := &models.TimelineEvent{
		ID:          uuid.New(),
		CaseID:      c.ID,
		EventType:   "case_created",
		Description: "Case opened from document " + doc.Filename,
		OccurredAt:  time.Now(),
	}
	if err := s.caseRepo.CreateTimelineEvent(ctx, event); err != nil {
		log.Printf("Warning: failed to record timeline event for case %s: %v", c.ID, err)
	}

	return &CreateCaseResult{
		Case:        c,
		Allegations: allegations,
		Defenses:    defenses,
	}, nil
}

// caseTitle builds "<plaintiff> vs. <defendant>" from the extracted parties,
// falling back to the petitioner/respondent pair and then the filename
func caseTitle(facts *models.StructuredFacts, filename string) string {
	if facts.Parties.Plaintiff != nil && facts.Parties.Defendant != nil {
		return *facts.Parties.Plaintiff + " vs. " + *facts.Parties.Defendant
	}
	if facts.Parties.Petitioner != nil && facts.Parties.Respondent != nil {
		return *facts.Parties.Petitioner + " vs. " + *facts.Parties.Respondent
	}
	return "Case from " + filename
}

// GetCaseRequest represents a request to read one case
type GetCaseRequest struct {
	CaseID uuid.UUID
}

// GetCaseResult represents a case with its child records
type GetCaseResult struct {
	Case        *models.Case
	Allegations []*models.Allegation
	Defenses    []*models.AffirmativeDefense
	Timeline    []*models.TimelineEvent
}

// GetCase retrieves a case with its allegations, defenses, and timeline
func (s *CaseService) GetCase(
	ctx context.Context,
	req GetCaseRequest,
) (*GetCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	c, err := s.caseRepo.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	allegations, err := s.caseRepo.GetAllegations(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	defenses, err := s.caseRepo.GetAffirmativeDefenses(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	timeline, err := s.caseRepo.GetTimeline(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	return &GetCaseResult{
		Case:        c,
		Allegations: allegations,
		Defenses:    defenses,
		Timeline:    timeline,
	}, nil
}

// ListCasesRequest represents a request to list a user's cases
type ListCasesRequest struct {
	UserID uuid.UUID
}

// ListCasesResult represents the result of listing cases
type ListCasesResult struct {
	Cases []*models.Case
}

// ListCases retrieves all cases belonging to a user, newest first
func (s *CaseService) ListCases(
	ctx context.Context,
	req ListCasesRequest,
) (*ListCasesResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	cases, err := s.caseRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return &ListCasesResult{Cases: cases}, nil
}

// UpdateCaseStatusRequest moves a case through its lifecycle
type UpdateCaseStatusRequest struct {
	CaseID uuid.UUID
	Status models.CaseStatus
}

// UpdateCaseStatus sets the lifecycle status of a case and records the
// change on the timeline
func (s *CaseService) UpdateCaseStatus(ctx context.Context, req UpdateCaseStatusRequest) error {
	if s.caseRepo == nil {
		return errors.New("case repository not set")
	}

	switch req.Status {
	case models.CaseStatusActive, models.CaseStatusClosed, models.CaseStatusArchived:
	default:
		return fmt.Errorf("invalid case status: %s", req.Status)
	}

	if _, err := s.caseRepo.GetByID(ctx, req.CaseID); err != nil {
		return ErrCaseNotFound
	}

	if err := s.caseRepo.UpdateStatus(ctx, req.CaseID, req.Status); err != nil {
		return err
	}

	event := &models.TimelineEvent{
		ID:          uuid.New(),
		CaseID:      req.CaseID,
		EventType:   "status_changed",
		Description: "Case status changed to " + string(req.Status),
		OccurredAt:  time.Now(),
	}
	if err := s.caseRepo.CreateTimelineEvent(ctx, event); err != nil {
		log.Printf("Warning: failed to record timeline event for case %s: %v", req.CaseID, err)
	}

	return nil
}

// UpdateAllegationRequest sets the pleading response for one allegation
type UpdateAllegationRequest struct {
	AllegationID uuid.UUID
	Response     models.AllegationResponse
}

// UpdateAllegation records the response chosen for an allegation
func (s *CaseService) UpdateAllegation(ctx context.Context, req UpdateAllegationRequest) error {
	if s.caseRepo == nil {
		return errors.New("case repository not set")
	}

	switch req.Response {
	case models.ResponseAdmit, models.ResponseDeny, models.ResponseLackKnowledge, models.ResponseUnanswered:
	default:
		return fmt.Errorf("invalid allegation response: %s", req.Response)
	}

	return s.caseRepo.UpdateAllegationResponse(ctx, req.AllegationID, req.Response)
}

// SelectDefenseRequest toggles a defense for inclusion in generated drafts
type SelectDefenseRequest struct {
	DefenseID uuid.UUID
	Selected  bool
}

// SelectDefense marks whether a defense is asserted in the answer
func (s *CaseService) SelectDefense(ctx context.Context, req SelectDefenseRequest) error {
	if s.caseRepo == nil {
		return errors.New("case repository not set")
	}

	return s.caseRepo.SetDefenseSelected(ctx, req.DefenseID, req.Selected)
}
