package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
)

// TelemedicineRepository provides persistence for remote consultation sessions.
type TelemedicineRepository struct {
	db *sqlx.DB
}

// NewTelemedicineRepository creates a new telemedicine repository.
func NewTelemedicineRepository(db *sqlx.DB) *TelemedicineRepository {
	return &TelemedicineRepository{db: db}
}

const telemedicineColumns = "id, company_id, appointment_id, room_url, status, started_at, finished_at, duration_seconds, created_at, updated_at"

// Create stores a new session in CREATED state.
func (r *TelemedicineRepository) Create(ctx context.Context, session *models.TelemedicineSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO telemedicine_sessions (id, company_id, appointment_id, room_url, status, duration_seconds, created_at, updated_at) VALUES (:id, :company_id, :appointment_id, :room_url, :status, :duration_seconds, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create telemedicine session: %w", err)
	}
	return nil
}

// FindByID loads a session scoped to its company.
func (r *TelemedicineRepository) FindByID(ctx context.Context, companyID, id string) (*models.TelemedicineSession, error) {
	query := fmt.Sprintf("SELECT %s FROM telemedicine_sessions WHERE company_id = $1 AND id = $2 LIMIT 1", telemedicineColumns)
	var session models.TelemedicineSession
	if err := r.db.GetContext(ctx, &session, query, companyID, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByAppointment loads the session linked to an appointment, if any.
func (r *TelemedicineRepository) FindByAppointment(ctx context.Context, companyID, appointmentID string) (*models.TelemedicineSession, error) {
	query := fmt.Sprintf("SELECT %s FROM telemedicine_sessions WHERE company_id = $1 AND appointment_id = $2 LIMIT 1", telemedicineColumns)
	var session models.TelemedicineSession
	if err := r.db.GetContext(ctx, &session, query, companyID, appointmentID); err != nil {
		return nil, err
	}
	return &session, nil
}

// MarkStarted records the moment the session went live.
func (r *TelemedicineRepository) MarkStarted(ctx context.Context, companyID, id string, startedAt time.Time) error {
	const query = `UPDATE telemedicine_sessions SET status = $3, started_at = $4, updated_at = $4 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, models.TelemedicineStarted, startedAt); err != nil {
		return fmt.Errorf("mark session started: %w", err)
	}
	return nil
}

// MarkFinished closes the session and stores its computed duration.
func (r *TelemedicineRepository) MarkFinished(ctx context.Context, companyID, id string, finishedAt time.Time, durationSeconds int) error {
	const query = `UPDATE telemedicine_sessions SET status = $3, finished_at = $4, duration_seconds = $5, updated_at = $4 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, models.TelemedicineFinished, finishedAt, durationSeconds); err != nil {
		return fmt.Errorf("mark session finished: %w", err)
	}
	return nil
}
