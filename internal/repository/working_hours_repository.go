package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
)

// WorkingHoursRepository persists weekly templates and date exceptions.
type WorkingHoursRepository struct {
	db *sqlx.DB
}

// NewWorkingHoursRepository creates a new working hours repository.
func NewWorkingHoursRepository(db *sqlx.DB) *WorkingHoursRepository {
	return &WorkingHoursRepository{db: db}
}

const workingHoursColumns = "id, company_id, practitioner_id, weekday, start_time, end_time, break_start, break_end, created_at, updated_at"

const exceptionColumns = "id, company_id, practitioner_id, date, is_available, start_time, end_time, break_start, break_end, reason, created_at, updated_at"

// ListForPractitioner returns the full weekly template for a practitioner.
func (r *WorkingHoursRepository) ListForPractitioner(ctx context.Context, companyID, practitionerID string) ([]models.WorkingHours, error) {
	query := fmt.Sprintf("SELECT %s FROM working_hours WHERE company_id = $1 AND practitioner_id = $2 ORDER BY weekday ASC", workingHoursColumns)
	var hours []models.WorkingHours
	if err := r.db.SelectContext(ctx, &hours, query, companyID, practitionerID); err != nil {
		return nil, fmt.Errorf("list working hours: %w", err)
	}
	return hours, nil
}

// FindForWeekday returns the template row for one weekday, if configured.
func (r *WorkingHoursRepository) FindForWeekday(ctx context.Context, companyID, practitionerID string, weekday int) (*models.WorkingHours, error) {
	query := fmt.Sprintf("SELECT %s FROM working_hours WHERE company_id = $1 AND practitioner_id = $2 AND weekday = $3 LIMIT 1", workingHoursColumns)
	var hours models.WorkingHours
	if err := r.db.GetContext(ctx, &hours, query, companyID, practitionerID, weekday); err != nil {
		return nil, err
	}
	return &hours, nil
}

// Upsert stores or replaces the template row for a weekday.
func (r *WorkingHoursRepository) Upsert(ctx context.Context, hours *models.WorkingHours) error {
	if hours.ID == "" {
		hours.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hours.CreatedAt.IsZero() {
		hours.CreatedAt = now
	}
	hours.UpdatedAt = now

	const query = `INSERT INTO working_hours (id, company_id, practitioner_id, weekday, start_time, end_time, break_start, break_end, created_at, updated_at) VALUES (:id, :company_id, :practitioner_id, :weekday, :start_time, :end_time, :break_start, :break_end, :created_at, :updated_at) ON CONFLICT (company_id, practitioner_id, weekday) DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time, break_start = EXCLUDED.break_start, break_end = EXCLUDED.break_end, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, hours); err != nil {
		return fmt.Errorf("upsert working hours: %w", err)
	}
	return nil
}

// DeleteForWeekday removes the template row for a weekday.
func (r *WorkingHoursRepository) DeleteForWeekday(ctx context.Context, companyID, practitionerID string, weekday int) error {
	const query = `DELETE FROM working_hours WHERE company_id = $1 AND practitioner_id = $2 AND weekday = $3`
	if _, err := r.db.ExecContext(ctx, query, companyID, practitionerID, weekday); err != nil {
		return fmt.Errorf("delete working hours: %w", err)
	}
	return nil
}

// FindException returns the exception for an exact date, if any.
func (r *WorkingHoursRepository) FindException(ctx context.Context, companyID, practitionerID string, date time.Time) (*models.ScheduleException, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_exceptions WHERE company_id = $1 AND practitioner_id = $2 AND date = $3 LIMIT 1", exceptionColumns)
	var exception models.ScheduleException
	if err := r.db.GetContext(ctx, &exception, query, companyID, practitionerID, date); err != nil {
		return nil, err
	}
	return &exception, nil
}

// ListExceptions returns a practitioner's exceptions in a date range.
func (r *WorkingHoursRepository) ListExceptions(ctx context.Context, companyID, practitionerID string, from, to time.Time) ([]models.ScheduleException, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_exceptions WHERE company_id = $1 AND practitioner_id = $2 AND date BETWEEN $3 AND $4 ORDER BY date ASC", exceptionColumns)
	var exceptions []models.ScheduleException
	if err := r.db.SelectContext(ctx, &exceptions, query, companyID, practitionerID, from, to); err != nil {
		return nil, fmt.Errorf("list schedule exceptions: %w", err)
	}
	return exceptions, nil
}

// CreateException stores a date-specific override.
func (r *WorkingHoursRepository) CreateException(ctx context.Context, exception *models.ScheduleException) error {
	if exception.ID == "" {
		exception.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exception.CreatedAt.IsZero() {
		exception.CreatedAt = now
	}
	exception.UpdatedAt = now

	const query = `INSERT INTO schedule_exceptions (id, company_id, practitioner_id, date, is_available, start_time, end_time, break_start, break_end, reason, created_at, updated_at) VALUES (:id, :company_id, :practitioner_id, :date, :is_available, :start_time, :end_time, :break_start, :break_end, :reason, :created_at, :updated_at) ON CONFLICT (company_id, practitioner_id, date) DO UPDATE SET is_available = EXCLUDED.is_available, start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time, break_start = EXCLUDED.break_start, break_end = EXCLUDED.break_end, reason = EXCLUDED.reason, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, exception); err != nil {
		return fmt.Errorf("create schedule exception: %w", err)
	}
	return nil
}

// DeleteException removes a date-specific override.
func (r *WorkingHoursRepository) DeleteException(ctx context.Context, companyID, id string) error {
	const query = `DELETE FROM schedule_exceptions WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id); err != nil {
		return fmt.Errorf("delete schedule exception: %w", err)
	}
	return nil
}
