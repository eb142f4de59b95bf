package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"

	"docketdraft-backend/ai"
	"docketdraft-backend/analysis"
	"docketdraft-backend/classify"
	"docketdraft-backend/extract"
	"docketdraft-backend/facts"
	"docketdraft-backend/models"
	"docketdraft-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrUploadFailed     = errors.New("failed to store uploaded file")
)

// DocumentRecordStore is the document persistence used by the intake and
// case services; the draft service's DocumentStore is its read-only subset
type DocumentRecordStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Document, error)
	UpdateResults(ctx context.Context, doc *models.Document) error
	SetCaseID(ctx context.Context, id, caseID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// IntakeService runs the document intake pipeline: store the raw upload,
// extract text, classify, extract structured facts, and generate the legal
// analysis. Intake failures about missing or uncertain data degrade
// gracefully; only a total extraction failure is fatal.
type IntakeService struct {
	docRepo   DocumentRecordStore
	store     storage.Storage
	extractor *extract.Extractor
	facts     *facts.Service
	analyzer  *analysis.Generator
}

// IntakeServiceOption is a functional option for IntakeService
type IntakeServiceOption func(*IntakeService)

// IntakeWithDocumentRepository sets the document repository
func IntakeWithDocumentRepository(repo DocumentRecordStore) IntakeServiceOption {
	return func(s *IntakeService) {
		s.docRepo = repo
	}
}

// IntakeWithStorage sets the upload storage backend
func IntakeWithStorage(store storage.Storage) IntakeServiceOption {
	return func(s *IntakeService) {
		s.store = store
	}
}

// IntakeWithClient wires the model client into the extraction, fact, and
// analysis stages
func IntakeWithClient(client ai.Client) IntakeServiceOption {
	return func(s *IntakeService) {
		s.extractor = extract.NewExtractor(client)
		s.facts = facts.NewService(client)
		s.analyzer = analysis.NewGenerator(client)
	}
}

// NewIntakeService creates a new intake service
func NewIntakeService(opts ...IntakeServiceOption) *IntakeService {
	s := &IntakeService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeDocumentRequest represents an uploaded document to analyze
type AnalyzeDocumentRequest struct {
	UserID   uuid.UUID
	Filename string
	MimeType string
	Data     []byte
}

// AnalyzeDocumentResult represents the result of the intake pipeline
type AnalyzeDocumentResult struct {
	Document      *models.Document
	ExtractedData *models.StructuredFacts
	Analysis      *models.LegalAnalysis
}

// AnalyzeDocument runs the full intake pipeline for one upload
func (s *IntakeService) AnalyzeDocument(
	ctx context.Context,
	req AnalyzeDocumentRequest,
) (*AnalyzeDocumentResult, error) {
	if s.docRepo == nil {
		return nil, errors.New("document repository not set")
	}
	if s.extractor == nil {
		return nil, errors.New("model client not set")
	}

	doc := &models.Document{
		ID:       uuid.New(),
		UserID:   req.UserID,
		Filename: req.Filename,
		MimeType: req.MimeType,
		Size:     int64(len(req.Data)),
		Status:   models.DocumentStatusUploaded,
	}

	// 1. Store raw upload
	if s.store != nil {
		path, err := s.store.Upload(ctx, doc.ID, req.Filename, bytes.NewReader(req.Data))
		if err != nil {
			return nil, ErrUploadFailed
		}
		doc.StoragePath = path
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	// 2. Extract text. This is the only fatal intake stage.
	text, err := s.extractor.Extract(ctx, req.Filename, req.MimeType, req.Data)
	if err != nil {
		if failErr := s.docRepo.UpdateStatus(ctx, doc.ID, models.DocumentStatusFailed); failErr != nil {
			log.Printf("Warning: failed to mark document %s failed: %v", doc.ID, failErr)
		}
		return nil, err
	}

	// 3. Classify. The other fallback is deliberate, not an error.
	docType := classify.Classify(text)

	// 4. Structured facts; degrades to pattern-only internally
	extracted := s.facts.Extract(ctx, text, docType)

	// 5. Analysis; falls back to a minimal deterministic result internally
	legalAnalysis := s.analyzer.Generate(ctx, extracted)

	doc.Status = models.DocumentStatusProcessed
	doc.DocumentType = docType
	doc.ExtractedData = extracted
	doc.AIAnalysis = legalAnalysis

	if err := s.docRepo.UpdateResults(ctx, doc); err != nil {
		return nil, err
	}

	return &AnalyzeDocumentResult{
		Document:      doc,
		ExtractedData: extracted,
		Analysis:      legalAnalysis,
	}, nil
}

// GetDocumentRequest represents a request to read one document
type GetDocumentRequest struct {
	DocumentID uuid.UUID
}

// GetDocumentResult represents the result of reading one document
type GetDocumentResult struct {
	Document *models.Document
}

// GetDocument retrieves a processed document
func (s *IntakeService) GetDocument(
	ctx context.Context,
	req GetDocumentRequest,
) (*GetDocumentResult, error) {
	if s.docRepo == nil {
		return nil, errors.New("document repository not set")
	}

	doc, err := s.docRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}

	return &GetDocumentResult{Document: doc}, nil
}

// ListDocumentsRequest represents a request to list a user's documents
type ListDocumentsRequest struct {
	UserID uuid.UUID
}

// ListDocumentsResult represents the result of listing documents
type ListDocumentsResult struct {
	Documents []*models.Document
}

// ListDocuments retrieves all documents uploaded by a user
func (s *IntakeService) ListDocuments(
	ctx context.Context,
	req ListDocumentsRequest,
) (*ListDocumentsResult, error) {
	if s.docRepo == nil {
		return nil, errors.New("document repository not set")
	}

	docs, err := s.docRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return &ListDocumentsResult{Documents: docs}, nil
}

// DownloadDocumentRequest represents a request to download the raw upload
type DownloadDocumentRequest struct {
	DocumentID uuid.UUID
}

// DownloadDocumentResult carries the raw file stream
type DownloadDocumentResult struct {
	Document *models.Document
	Reader   io.ReadCloser
}

// DownloadDocument retrieves the original uploaded file
func (s *IntakeService) DownloadDocument(
	ctx context.Context,
	req DownloadDocumentRequest,
) (*DownloadDocumentResult, error) {
	if s.docRepo == nil {
		return nil, errors.New("document repository not set")
	}
	if s.store == nil {
		return nil, errors.New("storage not set")
	}

	doc, err := s.docRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}

	reader, err := s.store.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, err
	}

	return &DownloadDocumentResult{Document: doc, Reader: reader}, nil
}

// DeleteDocumentRequest represents a request to remove a document
type DeleteDocumentRequest struct {
	DocumentID uuid.UUID
}

// DeleteDocument removes the document row and its stored upload. A missing
// blob is logged, not fatal: the row is the source of truth.
func (s *IntakeService) DeleteDocument(ctx context.Context, req DeleteDocumentRequest) error {
	if s.docRepo == nil {
		return errors.New("document repository not set")
	}

	doc, err := s.docRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return ErrDocumentNotFound
	}

	if s.store != nil && doc.StoragePath != "" {
		if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			log.Printf("Warning: failed to delete stored file for document %s: %v", doc.ID, err)
		}
	}

	return s.docRepo.Delete(ctx, doc.ID)
}
