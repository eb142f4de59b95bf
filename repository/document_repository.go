package repository

import (
	"context"

	"docketdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			user_id, case_id, filename, mime_type, size, storage_path,
			status, document_type, extracted_data, ai_analysis
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.UserID,
		doc.CaseID,
		doc.Filename,
		doc.MimeType,
		doc.Size,
		doc.StoragePath,
		doc.Status,
		doc.DocumentType,
		doc.ExtractedData,
		doc.AIAnalysis,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	return err
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, user_id, case_id, filename, mime_type, size, storage_path,
			status, document_type, extracted_data, ai_analysis,
			created_at, updated_at
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.CaseID,
		&doc.Filename,
		&doc.MimeType,
		&doc.Size,
		&doc.StoragePath,
		&doc.Status,
		&doc.DocumentType,
		&doc.ExtractedData,
		&doc.AIAnalysis,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// GetByUserID retrieves all documents for a user, newest first
func (r *DocumentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, user_id, case_id, filename, mime_type, size, storage_path,
			status, document_type, extracted_data, ai_analysis,
			created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.CaseID,
			&doc.Filename,
			&doc.MimeType,
			&doc.Size,
			&doc.StoragePath,
			&doc.Status,
			&doc.DocumentType,
			&doc.ExtractedData,
			&doc.AIAnalysis,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// UpdateResults stores the classification, extraction, and analysis results
func (r *DocumentRepository) UpdateResults(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE documents SET
			status = $2,
			document_type = $3,
			extracted_data = $4,
			ai_analysis = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.Status,
		doc.DocumentType,
		doc.ExtractedData,
		doc.AIAnalysis,
	).Scan(&doc.UpdatedAt)
}

// SetCaseID links a document to a case
func (r *DocumentRepository) SetCaseID(ctx context.Context, id, caseID uuid.UUID) error {
	query := `
		UPDATE documents SET
			case_id = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, caseID)
	return err
}

// UpdateStatus updates the processing status of a document
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DocumentStatus) error {
	query := `
		UPDATE documents SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// Delete removes a document record
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	return err
}
