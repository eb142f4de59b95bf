package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docketdraft-backend/export"
	"docketdraft-backend/models"
)

// fakeJobStore is an in-memory JobStore that records every persisted update
type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.GenerationJob

	progressCalls int
	createErr     error
	failNextGet   bool
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*models.GenerationJob)}
}

func (f *fakeJobStore) Create(ctx context.Context, job *models.GenerationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	job.CreatedAt = time.Now()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextGet {
		f.failNextGet = false
		return nil, errors.New("connection reset")
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("job not found")
	}
	return job, nil
}

func (f *fakeJobStore) GetByCaseID(ctx context.Context, caseID uuid.UUID) (*models.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.GenerationJob
	for _, job := range f.jobs {
		if job.CaseID != caseID {
			continue
		}
		if latest == nil || job.CreatedAt.After(latest.CreatedAt) {
			latest = job
		}
	}
	if latest == nil {
		return nil, errors.New("no job for case")
	}
	return latest, nil
}

func (f *fakeJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.GenerationJobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id].Status = status
	return nil
}

func (f *fakeJobStore) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.GenerationSteps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressCalls++
	job := f.jobs[id]
	job.CurrentStep = &currentStep
	job.Steps = append(models.GenerationSteps(nil), steps...)
	return nil
}

func (f *fakeJobStore) SetFormat(ctx context.Context, id uuid.UUID, format *models.JurisdictionFormat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id].Format = format
	return nil
}

func (f *fakeJobStore) Complete(ctx context.Context, id uuid.UUID, content string, steps models.GenerationSteps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.jobs[id]
	job.Status = models.JobStatusCompleted
	job.GeneratedContent = &content
	job.Steps = append(models.GenerationSteps(nil), steps...)
	now := time.Now()
	job.CompletedAt = &now
	return nil
}

func (f *fakeJobStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string, steps models.GenerationSteps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.jobs[id]
	job.Status = models.JobStatusFailed
	job.ErrorMessage = &errorMessage
	job.Steps = append(models.GenerationSteps(nil), steps...)
	return nil
}

type fakeCaseStore struct {
	cases       map[uuid.UUID]*models.Case
	allegations []*models.Allegation
	defenses    []*models.AffirmativeDefense
}

func (f *fakeCaseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, errors.New("case not found")
	}
	return c, nil
}

func (f *fakeCaseStore) GetAllegations(ctx context.Context, caseID uuid.UUID) ([]*models.Allegation, error) {
	return f.allegations, nil
}

func (f *fakeCaseStore) GetAffirmativeDefenses(ctx context.Context, caseID uuid.UUID) ([]*models.AffirmativeDefense, error) {
	return f.defenses, nil
}

type fakeDocStore struct {
	docs map[uuid.UUID]*models.Document
}

func (f *fakeDocStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	return d, nil
}

// fakeDraftClient answers the format prompt with a fixed section list and
// every section prompt with plain body text; failOnCall trips an error on
// the Nth Generate call (1-based, 0 disables)
type fakeDraftClient struct {
	sections   []string
	calls      int
	failOnCall int
}

func formatJSON(sections []string) string {
	quoted := make([]string, len(sections))
	for i, s := range sections {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf(`{
  "state": "CA",
  "federal": false,
  "rules": {
    "fontSize": 12,
    "lineSpacing": 2.0,
    "margins": {"top": 1.0, "bottom": 1.0, "left": 1.0, "right": 1.0},
    "pageNumbering": true,
    "citationStyle": "bluebook"
  },
  "sections": [%s]
}`, strings.Join(quoted, ", "))
}

func (f *fakeDraftClient) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	f.calls++
	if f.failOnCall > 0 && f.calls == f.failOnCall {
		return "", errors.New("model unavailable")
	}
	if strings.Contains(prompt, "court filing clerk") {
		return formatJSON(f.sections), nil
	}
	return fmt.Sprintf("Drafted body text for call %d.", f.calls), nil
}

func (f *fakeDraftClient) GenerateVision(ctx context.Context, instruction string, mimeType string, data []byte) (string, error) {
	return "", errors.New("vision not supported in this fake")
}

type fakeEmitter struct {
	mu    sync.Mutex
	steps []models.GenerationStep
}

func (f *fakeEmitter) Emit(jobID uuid.UUID, step models.GenerationStep) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, step)
}

func strPtr(s string) *string { return &s }

type fixture struct {
	svc     *DraftService
	jobs    *fakeJobStore
	cases   *fakeCaseStore
	emitter *fakeEmitter
	caseID  uuid.UUID
}

func newFixture(t *testing.T, client *fakeDraftClient) *fixture {
	t.Helper()

	caseID := uuid.New()
	docID := uuid.New()

	cases := &fakeCaseStore{
		cases: map[uuid.UUID]*models.Case{
			caseID: {
				ID:         caseID,
				DocumentID: docID,
				Title:      "ROBERT SMITH vs. MICHAEL JOHNSON",
				CaseNumber: strPtr("CV-2024-001234"),
				Court:      strPtr("Superior Court of California, County of Los Angeles"),
				Status:     models.CaseStatusActive,
			},
		},
		allegations: []*models.Allegation{
			{CaseID: caseID, ParagraphNumber: 1, Text: "Defendant breached the agreement.", Response: models.ResponseDeny},
			{CaseID: caseID, ParagraphNumber: 2, Text: "Plaintiff performed all obligations.", Response: models.ResponseLackKnowledge},
		},
		defenses: []*models.AffirmativeDefense{
			{CaseID: caseID, DefenseType: "statute_of_limitations", Title: "Statute of Limitations", Description: "Claims are time-barred.", Selected: true},
			{CaseID: caseID, DefenseType: "waiver", Title: "Waiver", Description: "Plaintiff waived the claims.", Selected: false},
		},
	}

	docs := &fakeDocStore{
		docs: map[uuid.UUID]*models.Document{
			docID: {
				ID:           docID,
				DocumentType: "complaint",
				ExtractedData: &models.StructuredFacts{
					DocumentType: "complaint",
					CaseNumber:   strPtr("CV-2024-001234"),
					Court:        strPtr("Superior Court of California, County of Los Angeles"),
					Parties: models.Parties{
						Plaintiff: strPtr("ROBERT SMITH"),
						Defendant: strPtr("MICHAEL JOHNSON"),
					},
					CausesOfAction: []string{"Breach of Contract"},
				},
			},
		},
	}

	jobs := newFakeJobStore()
	emitter := &fakeEmitter{}

	svc := NewDraftService(
		DraftWithCaseRepository(cases),
		DraftWithDocumentRepository(docs),
		DraftWithGenerationJobRepository(jobs),
		DraftWithClient(client),
		DraftWithStepEmitter(emitter),
	)

	return &fixture{svc: svc, jobs: jobs, cases: cases, emitter: emitter, caseID: caseID}
}

func (fx *fixture) startAndProcess(t *testing.T) (*models.GenerationJob, error) {
	t.Helper()

	result, err := fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	require.NoError(t, err)

	processErr := fx.svc.ProcessGeneration(context.Background(), result.JobID)

	job, err := fx.jobs.GetByID(context.Background(), result.JobID)
	require.NoError(t, err)
	return job, processErr
}

var threeSections = []string{"General Denial", "Responses to Allegations", "Affirmative Defenses"}

func TestProcessGenerationCompletes(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	job, err := fx.startAndProcess(t)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompleted, job.Status)
	require.NotNil(t, job.GeneratedContent)
	require.NotNil(t, job.CompletedAt)

	body := *job.GeneratedContent
	assert.Contains(t, body, "SUPERIOR COURT OF CALIFORNIA")
	assert.Contains(t, body, "ROBERT SMITH,\n    Plaintiff,")
	assert.Contains(t, body, "MICHAEL JOHNSON,\n    Defendant.")
	assert.Contains(t, body, "Case No. CV-2024-001234")
	assert.Contains(t, body, "DEFENDANT'S ANSWER AND AFFIRMATIVE DEFENSES")
	for _, section := range threeSections {
		assert.Contains(t, body, strings.ToUpper(section))
	}
	assert.Contains(t, body, "CERTIFICATE OF SERVICE")

	require.NotNil(t, job.Format)
	assert.Equal(t, threeSections, job.Format.Sections)
}

func TestProcessGenerationStepProgressIsStrictlyIncreasing(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	job, err := fx.startAndProcess(t)
	require.NoError(t, err)

	var completed []int
	for _, step := range job.Steps {
		require.Equal(t, "completed", step.Status)
		completed = append(completed, step.Progress)
	}

	// gather, format, three sections, assembly, complete
	require.Len(t, completed, 7)
	assert.Equal(t, 10, completed[0])
	assert.Equal(t, 20, completed[1])
	assert.Equal(t, 90, completed[5])
	assert.Equal(t, 100, completed[6])
	for i := 1; i < len(completed); i++ {
		assert.Greater(t, completed[i], completed[i-1])
	}

	// Emitted steps carry the same strictly increasing checkpoints
	require.Len(t, fx.emitter.steps, 7)
	for i := 1; i < len(fx.emitter.steps); i++ {
		assert.Greater(t, fx.emitter.steps[i].Progress, fx.emitter.steps[i-1].Progress)
	}
	assert.Equal(t, 100, fx.emitter.steps[6].Progress)
}

func TestProcessGenerationSectionStepsCarryContent(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	job, err := fx.startAndProcess(t)
	require.NoError(t, err)

	var withContent int
	for _, step := range job.Steps {
		if step.Content != nil {
			withContent++
			assert.True(t, strings.HasPrefix(step.Name, "Drafting "))
		}
	}
	assert.Equal(t, len(threeSections), withContent)
}

func TestProcessGenerationSectionFailureKeepsPartialSteps(t *testing.T) {
	// Five sections; the model dies drafting the third. Generate call 1 is
	// the format resolution, so the third section is call 4.
	fiveSections := []string{"General Denial", "Responses to Allegations", "Affirmative Defenses", "Prayer for Relief", "Jury Demand"}
	fx := newFixture(t, &fakeDraftClient{sections: fiveSections, failOnCall: 4})

	job, err := fx.startAndProcess(t)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSectionDraftFailed)

	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Nil(t, job.GeneratedContent)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "Affirmative Defenses")

	// The partial history survives: two drafted sections with content, and
	// the failed step last.
	var withContent int
	for _, step := range job.Steps {
		if step.Content != nil {
			withContent++
		}
	}
	assert.Equal(t, 2, withContent)

	last := job.Steps[len(job.Steps)-1]
	assert.Equal(t, "Drafting Affirmative Defenses", last.Name)
	assert.Equal(t, "failed", last.Status)
}

func TestProcessGenerationFormatFailureIsFatal(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections, failOnCall: 1})

	job, err := fx.startAndProcess(t)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormatResolutionFailed)
	assert.Equal(t, models.JobStatusFailed, job.Status)
}

func TestStartGenerationRejectsUnknownCase(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	_, err := fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: uuid.New()})
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestStartGenerationInFlightLock(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	first, err := fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	require.NoError(t, err)

	// A second run for the same case is rejected while the first is live
	_, err = fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	require.NoError(t, fx.svc.ProcessGeneration(context.Background(), first.JobID))

	// The lock is released once the run finishes
	_, err = fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	assert.NoError(t, err)
}

func TestInFlightLockReleasedAfterFailure(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections, failOnCall: 1})

	first, err := fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	require.NoError(t, err)

	require.Error(t, fx.svc.ProcessGeneration(context.Background(), first.JobID))

	_, err = fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	assert.NoError(t, err)
}

func TestInFlightLockReleasedWhenJobLoadFails(t *testing.T) {
	// A transient load failure in the background run must not leave the
	// case permanently locked
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	first, err := fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	require.NoError(t, err)

	fx.jobs.failNextGet = true
	require.Error(t, fx.svc.ProcessGeneration(context.Background(), first.JobID))

	_, err = fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	assert.NoError(t, err)
}

func TestResolveFormatRejectsEmptySectionList(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: nil})

	_, err := fx.svc.ResolveFormat(context.Background(), "Superior Court of California")
	assert.ErrorIs(t, err, ErrFormatResolutionFailed)
}

func TestResolveFormatRejectsOversizedSectionList(t *testing.T) {
	sections := make([]string, maxSections+1)
	for i := range sections {
		sections[i] = fmt.Sprintf("Section %d", i+1)
	}
	fx := newFixture(t, &fakeDraftClient{sections: sections})

	_, err := fx.svc.ResolveFormat(context.Background(), "Superior Court of California")
	assert.ErrorIs(t, err, ErrFormatResolutionFailed)
}

func TestSectionProgressStaysBetweenCheckpoints(t *testing.T) {
	for n := 1; n <= maxSections; n++ {
		prev := progressFormat
		for i := 1; i <= n; i++ {
			p := sectionProgress(i, n)
			assert.Greater(t, p, prev, "n=%d i=%d", n, i)
			assert.Less(t, p, progressAssembly, "n=%d i=%d", n, i)
			prev = p
		}
	}
}

func TestExportNotReady(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	// No job at all
	_, err := fx.svc.Export(context.Background(), ExportRequest{CaseID: fx.caseID, Format: "pdf"})
	assert.ErrorIs(t, err, ErrDraftNotReady)

	// Pending job, no content yet
	_, err = fx.svc.StartGeneration(context.Background(), StartGenerationRequest{CaseID: fx.caseID})
	require.NoError(t, err)

	_, err = fx.svc.Export(context.Background(), ExportRequest{CaseID: fx.caseID, Format: "pdf"})
	assert.ErrorIs(t, err, ErrDraftNotReady)
}

func TestExportCompletedJobAsPDF(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	_, err := fx.startAndProcess(t)
	require.NoError(t, err)

	result, err := fx.svc.Export(context.Background(), ExportRequest{CaseID: fx.caseID, Format: "pdf"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "CV-2024-001234.pdf", result.Filename)
}

func TestExportUnsupportedFormat(t *testing.T) {
	fx := newFixture(t, &fakeDraftClient{sections: threeSections})

	_, err := fx.startAndProcess(t)
	require.NoError(t, err)

	_, err = fx.svc.Export(context.Background(), ExportRequest{CaseID: fx.caseID, Format: "odt"})
	assert.ErrorIs(t, err, export.ErrExportFailed)
}
