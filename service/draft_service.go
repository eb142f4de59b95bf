package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"docketdraft-backend/ai"
	"docketdraft-backend/export"
	"docketdraft-backend/models"

	"github.com/google/uuid"
)

var (
	ErrCaseNotFound           = errors.New("case not found")
	ErrJobNotFound            = errors.New("generation job not found")
	ErrJobCreationFailed      = errors.New("failed to create generation job")
	ErrGenerationInProgress   = errors.New("a generation run is already in progress for this case")
	ErrFormatResolutionFailed = errors.New("failed to resolve court formatting rules")
	ErrSectionDraftFailed     = errors.New("failed to draft document section")
	ErrDraftNotReady          = errors.New("no completed generation for this case")
)

// Fixed progress checkpoints. Section steps are spread evenly between the
// format checkpoint and the assembly checkpoint; progress within one job is
// strictly increasing.
const (
	progressIntake   = 10
	progressFormat   = 20
	progressAssembly = 90
	progressComplete = 100
)

// maxSections caps the resolver's section list. No court requires anywhere
// near this many sections in an answer, and the cap keeps every section
// checkpoint distinct between the format and assembly checkpoints.
const maxSections = 25

// JobStore is the generation job persistence used by the draft service
type JobStore interface {
	Create(ctx context.Context, job *models.GenerationJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
	GetByCaseID(ctx context.Context, caseID uuid.UUID) (*models.GenerationJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.GenerationJobStatus) error
	UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.GenerationSteps) error
	SetFormat(ctx context.Context, id uuid.UUID, format *models.JurisdictionFormat) error
	Complete(ctx context.Context, id uuid.UUID, content string, steps models.GenerationSteps) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string, steps models.GenerationSteps) error
}

// CaseStore is the case persistence used by the draft service
type CaseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	GetAllegations(ctx context.Context, caseID uuid.UUID) ([]*models.Allegation, error)
	GetAffirmativeDefenses(ctx context.Context, caseID uuid.UUID) ([]*models.AffirmativeDefense, error)
}

// DocumentStore is the document persistence used by the draft service
type DocumentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
}

// StepEmitter receives generation steps as they complete. Delivery is
// best-effort: a nil or disconnected emitter never fails the run.
type StepEmitter interface {
	Emit(jobID uuid.UUID, step models.GenerationStep)
}

// DraftService handles document generation logic
type DraftService struct {
	caseRepo CaseStore
	docRepo  DocumentStore
	jobRepo  JobStore
	client   ai.Client
	emitter  StepEmitter

	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
	jobCase  map[uuid.UUID]uuid.UUID
}

// DraftServiceOption is a functional option for DraftService
type DraftServiceOption func(*DraftService)

// DraftWithCaseRepository sets the case repository
func DraftWithCaseRepository(repo CaseStore) DraftServiceOption {
	return func(s *DraftService) {
		s.caseRepo = repo
	}
}

// DraftWithDocumentRepository sets the document repository
func DraftWithDocumentRepository(repo DocumentStore) DraftServiceOption {
	return func(s *DraftService) {
		s.docRepo = repo
	}
}

// DraftWithGenerationJobRepository sets the generation job repository
func DraftWithGenerationJobRepository(repo JobStore) DraftServiceOption {
	return func(s *DraftService) {
		s.jobRepo = repo
	}
}

// DraftWithClient sets the model client
func DraftWithClient(client ai.Client) DraftServiceOption {
	return func(s *DraftService) {
		s.client = client
	}
}

// DraftWithStepEmitter sets the progress event emitter
func DraftWithStepEmitter(emitter StepEmitter) DraftServiceOption {
	return func(s *DraftService) {
		s.emitter = emitter
	}
}

// NewDraftService creates a new draft service
func NewDraftService(opts ...DraftServiceOption) *DraftService {
	s := &DraftService{
		inFlight: make(map[uuid.UUID]bool),
		jobCase:  make(map[uuid.UUID]uuid.UUID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartGenerationRequest represents a request to start a generation run
type StartGenerationRequest struct {
	CaseID       uuid.UUID
	DocumentType string
}

// StartGenerationResult represents the result of creating a generation job
type StartGenerationResult struct {
	JobID uuid.UUID
}

// GetJobStatusRequest represents a request to get job status
type GetJobStatusRequest struct {
	JobID uuid.UUID
}

// GetJobStatusResult represents the result of getting job status
type GetJobStatusResult struct {
	Job *models.GenerationJob
}

// StartGeneration validates the case, acquires the per-case in-flight lock,
// and creates a pending job. The caller runs ProcessGeneration in the
// background; this method must return quickly.
func (s *DraftService) StartGeneration(
	ctx context.Context,
	req StartGenerationRequest,
) (*StartGenerationResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}
	if s.jobRepo == nil {
		return nil, errors.New("generation job repository not set")
	}

	if _, err := s.caseRepo.GetByID(ctx, req.CaseID); err != nil {
		return nil, ErrCaseNotFound
	}

	documentType := req.DocumentType
	if documentType == "" {
		documentType = "answer"
	}

	// At most one concurrent run per case. The lock is released when
	// ProcessGeneration finishes, successfully or not.
	if !s.acquire(req.CaseID) {
		return nil, ErrGenerationInProgress
	}

	job := &models.GenerationJob{
		ID:           uuid.New(),
		CaseID:       req.CaseID,
		DocumentType: documentType,
		Status:       models.JobStatusPending,
		Steps: models.GenerationSteps{
			{Name: "Gathering Case Facts", Status: "pending"},
			{Name: "Resolving Court Format", Status: "pending"},
		},
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.release(req.CaseID)
		return nil, ErrJobCreationFailed
	}
	s.bindJob(job.ID, req.CaseID)

	return &StartGenerationResult{JobID: job.ID}, nil
}

// GetJobStatus retrieves the status of a generation job
func (s *DraftService) GetJobStatus(
	ctx context.Context,
	req GetJobStatusRequest,
) (*GetJobStatusResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("generation job repository not set")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	return &GetJobStatusResult{Job: job}, nil
}

func (s *DraftService) acquire(caseID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[caseID] {
		return false
	}
	s.inFlight[caseID] = true
	return true
}

func (s *DraftService) release(caseID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, caseID)
}

// bindJob records which case a created job holds the in-flight lock for, so
// the lock can be released even when the job row cannot be loaded back
func (s *DraftService) bindJob(jobID, caseID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobCase[jobID] = caseID
}

func (s *DraftService) releaseJob(jobID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caseID, ok := s.jobCase[jobID]; ok {
		delete(s.jobCase, jobID)
		delete(s.inFlight, caseID)
	}
}

// run tracks the step history of one generation in memory so the partial
// history survives a failure and every persisted update carries all steps
type run struct {
	jobID uuid.UUID
	steps models.GenerationSteps
}

func (s *DraftService) beginStep(ctx context.Context, r *run, name, description string) {
	r.steps = append(r.steps, models.GenerationStep{
		Name:        name,
		Status:      "in_progress",
		Description: description,
	})
	if err := s.jobRepo.UpdateProgress(ctx, r.jobID, name, r.steps); err != nil {
		log.Printf("Warning: failed to persist step %q: %v", name, err)
	}
}

func (s *DraftService) completeStep(ctx context.Context, r *run, progress int, content *string) {
	i := len(r.steps) - 1
	r.steps[i].Status = "completed"
	r.steps[i].Progress = progress
	r.steps[i].Content = content

	if err := s.jobRepo.UpdateProgress(ctx, r.jobID, r.steps[i].Name, r.steps); err != nil {
		log.Printf("Warning: failed to persist step %q: %v", r.steps[i].Name, err)
	}
	s.emit(r.jobID, r.steps[i])
}

func (s *DraftService) failStep(ctx context.Context, r *run, errorMessage string) {
	if len(r.steps) > 0 {
		i := len(r.steps) - 1
		if r.steps[i].Status == "in_progress" {
			r.steps[i].Status = "failed"
			s.emit(r.jobID, r.steps[i])
		}
	}
	if err := s.jobRepo.Fail(ctx, r.jobID, errorMessage, r.steps); err != nil {
		log.Printf("Warning: failed to mark job %s failed: %v", r.jobID, err)
	}
}

// emit pushes a step to the real-time emitter, best-effort
func (s *DraftService) emit(jobID uuid.UUID, step models.GenerationStep) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(jobID, step)
}

// sectionProgress returns the checkpoint for section i of n (1-based),
// spread evenly between the format and assembly checkpoints
func sectionProgress(i, n int) int {
	span := progressAssembly - progressFormat - 10
	return progressFormat + span*i/n
}

// ProcessGeneration performs the generation work in the background.
// It runs the state machine through fact gathering, format resolution,
// per-section drafting, and assembly, persisting and emitting one step per
// transition. Any section failure stops the run with the partial step
// history intact.
func (s *DraftService) ProcessGeneration(ctx context.Context, jobID uuid.UUID) error {
	if s.jobRepo == nil || s.caseRepo == nil || s.docRepo == nil {
		return errors.New("draft service not fully configured")
	}

	defer s.releaseJob(jobID)

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load generation job: %w", err)
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	r := &run{jobID: jobID}

	// 1. Gather case facts
	s.beginStep(ctx, r, "Gathering Case Facts", "Loading case record and extracted facts")

	c, err := s.caseRepo.GetByID(ctx, job.CaseID)
	if err != nil {
		s.failStep(ctx, r, "failed to load case: "+err.Error())
		return ErrCaseNotFound
	}

	doc, err := s.docRepo.GetByID(ctx, c.DocumentID)
	if err != nil {
		s.failStep(ctx, r, "failed to load source document: "+err.Error())
		return fmt.Errorf("failed to load source document: %w", err)
	}

	facts := doc.ExtractedData
	if facts == nil {
		facts = &models.StructuredFacts{DocumentType: doc.DocumentType}
	}

	allegations, err := s.caseRepo.GetAllegations(ctx, job.CaseID)
	if err != nil {
		log.Printf("Warning: failed to load allegations for case %s: %v", job.CaseID, err)
	}

	defenses, err := s.caseRepo.GetAffirmativeDefenses(ctx, job.CaseID)
	if err != nil {
		log.Printf("Warning: failed to load defenses for case %s: %v", job.CaseID, err)
	}

	s.completeStep(ctx, r, progressIntake, nil)

	// 2. Resolve court format. No local fallback rules exist; every
	// downstream step depends on the section list.
	s.beginStep(ctx, r, "Resolving Court Format", "Determining filing rules and required sections")

	court := courtName(c, facts)
	format, err := s.ResolveFormat(ctx, court)
	if err != nil {
		s.failStep(ctx, r, "format resolution failed: "+err.Error())
		return err
	}

	if err := s.jobRepo.SetFormat(ctx, jobID, format); err != nil {
		log.Printf("Warning: failed to store resolved format for job %s: %v", jobID, err)
	}

	s.completeStep(ctx, r, progressFormat, nil)

	// 3. Draft each required section in order
	sections := make([]string, 0, len(format.Sections))
	for i, name := range format.Sections {
		s.beginStep(ctx, r, "Drafting "+name, "Drafting the "+name+" section")

		content, err := s.draftSection(ctx, job.DocumentType, name, c, facts, allegations, defenses, format)
		if err != nil {
			s.failStep(ctx, r, fmt.Sprintf("failed to draft section %q: %v", name, err))
			return fmt.Errorf("%w: %s: %v", ErrSectionDraftFailed, name, err)
		}

		sections = append(sections, content)
		s.completeStep(ctx, r, sectionProgress(i+1, len(format.Sections)), &content)
	}

	// 4. Assemble the document body
	s.beginStep(ctx, r, "Assembling Document", "Combining sections into the final document")
	body := s.assembleDocument(job.DocumentType, c, facts, format, sections)
	s.completeStep(ctx, r, progressAssembly, nil)

	// 5. Mark complete
	r.steps = append(r.steps, models.GenerationStep{
		Name:     "Complete",
		Status:   "completed",
		Progress: progressComplete,
	})
	if err := s.jobRepo.Complete(ctx, jobID, body, r.steps); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	s.emit(jobID, r.steps[len(r.steps)-1])

	return nil
}

const formatPromptFmt = `You are a court filing clerk with expert knowledge of formatting rules across United States jurisdictions.

COURT: %s

Respond with ONLY a JSON object, no other text:
{
  "state": "two-letter state code, or null for federal courts",
  "federal": true or false,
  "rules": {
    "fontSize": points (number),
    "lineSpacing": 1.0 for single or 2.0 for double,
    "margins": {"top": inches, "bottom": inches, "left": inches, "right": inches},
    "pageNumbering": true or false,
    "citationStyle": "bluebook" or the state-specific style name
  },
  "sections": ["ordered list of section names required for an answer filed in this court"]
}

The sections list must reflect what this court actually requires, in filing order.`

// ResolveFormat asks the model for the jurisdiction's filing rules and
// required section list. Resolution happens once per generation run; a
// failure is fatal to the run.
func (s *DraftService) ResolveFormat(ctx context.Context, court string) (*models.JurisdictionFormat, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: model client not set", ErrFormatResolutionFailed)
	}

	response, err := s.client.Generate(ctx, fmt.Sprintf(formatPromptFmt, court), 0.1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatResolutionFailed, err)
	}

	var format models.JurisdictionFormat
	if err := ai.DecodeJSON(response, &format); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatResolutionFailed, err)
	}

	if len(format.Sections) == 0 {
		return nil, fmt.Errorf("%w: no required sections returned", ErrFormatResolutionFailed)
	}
	if len(format.Sections) > maxSections {
		return nil, fmt.Errorf("%w: implausible section list (%d sections)", ErrFormatResolutionFailed, len(format.Sections))
	}

	return &format, nil
}

const sectionPromptFmt = `You are an experienced civil litigation attorney drafting a court filing.

DOCUMENT TYPE: %s
SECTION TO DRAFT: %s
CITATION STYLE: %s

CASE FACTS:
%s

%sTASK:
Write the body of the "%s" section only. Formal legal language, third person,
plain text with no markdown. Do not include the section heading; it is added
during assembly. Use only the facts provided above and never invent case
numbers, dates, or party names.`

func (s *DraftService) draftSection(
	ctx context.Context,
	documentType string,
	section string,
	c *models.Case,
	facts *models.StructuredFacts,
	allegations []*models.Allegation,
	defenses []*models.AffirmativeDefense,
	format *models.JurisdictionFormat,
) (string, error) {
	if s.client == nil {
		return "", errors.New("model client not set")
	}

	prompt := fmt.Sprintf(sectionPromptFmt,
		documentType,
		section,
		format.Rules.CitationStyle,
		factSummaryForDraft(c, facts),
		caseMaterial(section, allegations, defenses),
		section,
	)

	content, err := s.client.Generate(ctx, prompt, 0.2)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("model returned empty section")
	}

	return content, nil
}

// caseMaterial renders the allegation and defense records relevant to a
// section into prompt context. Responses and selected defenses drive the
// answer-type sections; other sections only need the facts.
func caseMaterial(section string, allegations []*models.Allegation, defenses []*models.AffirmativeDefense) string {
	lower := strings.ToLower(section)

	var b strings.Builder
	if strings.Contains(lower, "answer") || strings.Contains(lower, "response") || strings.Contains(lower, "admission") || strings.Contains(lower, "denial") {
		if len(allegations) > 0 {
			b.WriteString("ALLEGATIONS AND RESPONSES:\n")
			for _, a := range allegations {
				fmt.Fprintf(&b, "Paragraph %d (%s): %s\n", a.ParagraphNumber, a.Response, a.Text)
			}
			b.WriteString("\n")
		}
	}
	if strings.Contains(lower, "defense") {
		selected := make([]*models.AffirmativeDefense, 0, len(defenses))
		for _, d := range defenses {
			if d.Selected {
				selected = append(selected, d)
			}
		}
		if len(selected) > 0 {
			b.WriteString("SELECTED AFFIRMATIVE DEFENSES:\n")
			for _, d := range selected {
				fmt.Fprintf(&b, "- %s: %s\n", d.Title, d.Description)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func factSummaryForDraft(c *models.Case, facts *models.StructuredFacts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case title: %s\n", c.Title)
	if facts.CaseNumber != nil {
		fmt.Fprintf(&b, "Case number: %s\n", *facts.CaseNumber)
	}
	if facts.Court != nil {
		fmt.Fprintf(&b, "Court: %s\n", *facts.Court)
	}
	if facts.Parties.Plaintiff != nil {
		fmt.Fprintf(&b, "Plaintiff: %s\n", *facts.Parties.Plaintiff)
	}
	if facts.Parties.Defendant != nil {
		fmt.Fprintf(&b, "Defendant: %s\n", *facts.Parties.Defendant)
	}
	if facts.Judge != nil {
		fmt.Fprintf(&b, "Judge: %s\n", *facts.Judge)
	}
	if facts.FilingDate != nil {
		fmt.Fprintf(&b, "Filing date: %s\n", *facts.FilingDate)
	}
	if len(facts.CausesOfAction) > 0 {
		fmt.Fprintf(&b, "Causes of action: %s\n", strings.Join(facts.CausesOfAction, "; "))
	}
	if facts.DamageAmount != nil {
		fmt.Fprintf(&b, "Damages claimed: %s\n", *facts.DamageAmount)
	}
	if facts.ReliefSought != nil {
		fmt.Fprintf(&b, "Relief sought: %s\n", *facts.ReliefSought)
	}
	return b.String()
}

func courtName(c *models.Case, facts *models.StructuredFacts) string {
	if c.Court != nil && *c.Court != "" {
		return *c.Court
	}
	if facts.Court != nil && *facts.Court != "" {
		return *facts.Court
	}
	return "unknown court"
}

// assembleDocument concatenates the caption block, the ordered section
// bodies under their headings, and the signature and service footer
func (s *DraftService) assembleDocument(
	documentType string,
	c *models.Case,
	facts *models.StructuredFacts,
	format *models.JurisdictionFormat,
	sections []string,
) string {
	var b strings.Builder

	// Caption block
	b.WriteString(strings.ToUpper(courtName(c, facts)) + "\n\n")
	if facts.Parties.Plaintiff != nil {
		b.WriteString(strings.ToUpper(*facts.Parties.Plaintiff) + ",\n")
		b.WriteString("    Plaintiff,\n\nv.\n\n")
	}
	if facts.Parties.Defendant != nil {
		b.WriteString(strings.ToUpper(*facts.Parties.Defendant) + ",\n")
		b.WriteString("    Defendant.\n\n")
	}
	if facts.CaseNumber != nil {
		b.WriteString("Case No. " + *facts.CaseNumber + "\n\n")
	}
	b.WriteString(documentTitle(documentType) + "\n\n")

	// Ordered section bodies
	for i, body := range sections {
		b.WriteString(strings.ToUpper(format.Sections[i]) + "\n\n")
		b.WriteString(strings.TrimSpace(body) + "\n\n")
	}

	// Signature block and certificate of service
	b.WriteString("Respectfully submitted,\n\n")
	b.WriteString("DATED: " + time.Now().Format("January 2, 2006") + "\n\n")
	b.WriteString("_______________________________\n")
	b.WriteString("Attorney for Defendant\n\n")
	b.WriteString("CERTIFICATE OF SERVICE\n\n")
	b.WriteString("I hereby certify that on " + time.Now().Format("January 2, 2006") +
		" a true and correct copy of the foregoing was served on all counsel of record.\n\n")
	b.WriteString("_______________________________\n")

	return b.String()
}

func documentTitle(documentType string) string {
	switch documentType {
	case "answer", "":
		return "DEFENDANT'S ANSWER AND AFFIRMATIVE DEFENSES"
	default:
		return strings.ToUpper(strings.ReplaceAll(documentType, "_", " "))
	}
}

// ExportRequest represents a request to export the generated document
type ExportRequest struct {
	CaseID uuid.UUID
	Format string
}

// ExportResult carries the rendered file
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Export renders the most recent completed generation for a case as a
// binary file using the formatting rules resolved during that run.
// Rendering failures return no partial file.
func (s *DraftService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("generation job repository not set")
	}

	job, err := s.jobRepo.GetByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, ErrDraftNotReady
	}
	if job.Status != models.JobStatusCompleted || job.GeneratedContent == nil {
		return nil, ErrDraftNotReady
	}

	var rules models.FormatRules
	if job.Format != nil {
		rules = job.Format.Rules
	}

	data, contentType, err := export.Render(*job.GeneratedContent, req.Format, rules)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		Data:        data,
		ContentType: contentType,
		Filename:    exportFilename(ctx, s.caseRepo, req.CaseID, req.Format),
	}, nil
}

// exportFilename names the file after the case number when one exists
func exportFilename(ctx context.Context, cases CaseStore, caseID uuid.UUID, format string) string {
	base := "answer"
	if cases != nil {
		if c, err := cases.GetByID(ctx, caseID); err == nil && c.CaseNumber != nil && *c.CaseNumber != "" {
			base = strings.ReplaceAll(*c.CaseNumber, "/", "-")
		}
	}
	return base + "." + format
}
