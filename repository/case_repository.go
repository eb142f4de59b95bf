package repository

import (
	"context"

	"docketdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository handles database operations for cases and their child records
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (
			user_id, document_id, title, case_number, court, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		c.UserID,
		c.DocumentID,
		c.Title,
		c.CaseNumber,
		c.Court,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return err
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c := &models.Case{}
	query := `
		SELECT id, user_id, document_id, title, case_number, court, status,
			created_at, updated_at
		FROM cases
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.UserID,
		&c.DocumentID,
		&c.Title,
		&c.CaseNumber,
		&c.Court,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return c, nil
}

// GetByUserID retrieves all cases for a user, newest first
func (r *CaseRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Case, error) {
	query := `
		SELECT id, user_id, document_id, title, case_number, court, status,
			created_at, updated_at
		FROM cases
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		c := &models.Case{}
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.DocumentID,
			&c.Title,
			&c.CaseNumber,
			&c.Court,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}

	return cases, rows.Err()
}

// UpdateStatus updates the lifecycle status of a case
func (r *CaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) error {
	query := `
		UPDATE cases SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// CreateAllegation inserts one allegation row for a case
func (r *CaseRepository) CreateAllegation(ctx context.Context, a *models.Allegation) error {
	query := `
		INSERT INTO allegations (
			case_id, paragraph_number, text, response
		) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		a.CaseID,
		a.ParagraphNumber,
		a.Text,
		a.Response,
	).Scan(&a.ID, &a.CreatedAt)
}

// GetAllegations retrieves the allegations for a case in paragraph order
func (r *CaseRepository) GetAllegations(ctx context.Context, caseID uuid.UUID) ([]*models.Allegation, error) {
	query := `
		SELECT id, case_id, paragraph_number, text, response, created_at
		FROM allegations
		WHERE case_id = $1
		ORDER BY paragraph_number ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allegations []*models.Allegation
	for rows.Next() {
		a := &models.Allegation{}
		err := rows.Scan(&a.ID, &a.CaseID, &a.ParagraphNumber, &a.Text, &a.Response, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		allegations = append(allegations, a)
	}

	return allegations, rows.Err()
}

// UpdateAllegationResponse sets the pleading response for one allegation
func (r *CaseRepository) UpdateAllegationResponse(ctx context.Context, id uuid.UUID, response models.AllegationResponse) error {
	query := `UPDATE allegations SET response = $2 WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, response)
	return err
}

// CreateAffirmativeDefense inserts one affirmative defense row for a case
func (r *CaseRepository) CreateAffirmativeDefense(ctx context.Context, d *models.AffirmativeDefense) error {
	query := `
		INSERT INTO affirmative_defenses (
			case_id, defense_type, title, description, selected
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		d.CaseID,
		d.DefenseType,
		d.Title,
		d.Description,
		d.Selected,
	).Scan(&d.ID, &d.CreatedAt)
}

// GetAffirmativeDefenses retrieves the affirmative defenses for a case
func (r *CaseRepository) GetAffirmativeDefenses(ctx context.Context, caseID uuid.UUID) ([]*models.AffirmativeDefense, error) {
	query := `
		SELECT id, case_id, defense_type, title, description, selected, created_at
		FROM affirmative_defenses
		WHERE case_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defenses []*models.AffirmativeDefense
	for rows.Next() {
		d := &models.AffirmativeDefense{}
		err := rows.Scan(&d.ID, &d.CaseID, &d.DefenseType, &d.Title, &d.Description, &d.Selected, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		defenses = append(defenses, d)
	}

	return defenses, rows.Err()
}

// SetDefenseSelected toggles whether a defense is included in generated drafts
func (r *CaseRepository) SetDefenseSelected(ctx context.Context, id uuid.UUID, selected bool) error {
	query := `UPDATE affirmative_defenses SET selected = $2 WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, selected)
	return err
}

// CreateTimelineEvent inserts one timeline event for a case
func (r *CaseRepository) CreateTimelineEvent(ctx context.Context, e *models.TimelineEvent) error {
	query := `
		INSERT INTO timeline_events (
			case_id, event_type, description, occurred_at
		) VALUES ($1, $2, $3, $4)
		RETURNING id`

	return r.db.QueryRow(
		ctx, query,
		e.CaseID,
		e.EventType,
		e.Description,
		e.OccurredAt,
	).Scan(&e.ID)
}

// GetTimeline retrieves the timeline events for a case in chronological order
func (r *CaseRepository) GetTimeline(ctx context.Context, caseID uuid.UUID) ([]*models.TimelineEvent, error) {
	query := `
		SELECT id, case_id, event_type, description, occurred_at
		FROM timeline_events
		WHERE case_id = $1
		ORDER BY occurred_at ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.TimelineEvent
	for rows.Next() {
		e := &models.TimelineEvent{}
		err := rows.Scan(&e.ID, &e.CaseID, &e.EventType, &e.Description, &e.OccurredAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
