package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
)

// AppointmentRepository provides persistence for appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = "a.id, a.company_id, a.practitioner_id, a.room_id, a.customer_id, a.service_id, a.date, a.start_time, a.end_time, a.status, a.notes, a.created_at, a.updated_at"

const appointmentJoined = appointmentColumns + ", c.full_name AS customer_name, s.name AS service_name FROM appointments a JOIN customers c ON c.id = a.customer_id JOIN services s ON s.id = a.service_id"

// List returns appointments with filtering and pagination.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	base := "FROM appointments a JOIN customers c ON c.id = a.customer_id JOIN services s ON s.id = a.service_id WHERE a.company_id = $1"
	args := []interface{}{filter.CompanyID}
	var conditions []string

	if filter.PractitionerID != "" {
		conditions = append(conditions, fmt.Sprintf("a.practitioner_id = $%d", len(args)+1))
		args = append(args, filter.PractitionerID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("a.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.CustomerID != "" {
		conditions = append(conditions, fmt.Sprintf("a.customer_id = $%d", len(args)+1))
		args = append(args, filter.CustomerID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"date":       true,
		"start_time": true,
		"created_at": true,
		"status":     true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s, c.full_name AS customer_name, s.name AS service_name %s ORDER BY a.%s %s, a.start_time ASC LIMIT %d OFFSET %d", appointmentColumns, base, sortBy, order, size, offset)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	return appointments, total, nil
}

// FindByID loads an appointment with customer and service names.
func (r *AppointmentRepository) FindByID(ctx context.Context, companyID, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s WHERE a.company_id = $1 AND a.id = $2 LIMIT 1", appointmentJoined)
	var appointment models.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, companyID, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ListForPractitionerOnDate returns a practitioner's non-cancelled
// appointments for one day, optionally excluding one id (edit-in-place).
func (r *AppointmentRepository) ListForPractitionerOnDate(ctx context.Context, companyID, practitionerID string, date time.Time, excludeID string) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s WHERE a.company_id = $1 AND a.practitioner_id = $2 AND a.date = $3 AND a.status <> $4", appointmentJoined)
	args := []interface{}{companyID, practitionerID, date, models.AppointmentCancelled}
	if excludeID != "" {
		query += " AND a.id <> $5"
		args = append(args, excludeID)
	}
	query += " ORDER BY a.start_time ASC"

	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("list practitioner appointments: %w", err)
	}
	return appointments, nil
}

// ListForRoomOnDate returns a room's non-cancelled appointments for one day,
// regardless of practitioner, optionally excluding one id.
func (r *AppointmentRepository) ListForRoomOnDate(ctx context.Context, companyID, roomID string, date time.Time, excludeID string) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s WHERE a.company_id = $1 AND a.room_id = $2 AND a.date = $3 AND a.status <> $4", appointmentJoined)
	args := []interface{}{companyID, roomID, date, models.AppointmentCancelled}
	if excludeID != "" {
		query += " AND a.id <> $5"
		args = append(args, excludeID)
	}
	query += " ORDER BY a.start_time ASC"

	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("list room appointments: %w", err)
	}
	return appointments, nil
}

// Create stores a new appointment.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now

	const query = `INSERT INTO appointments (id, company_id, practitioner_id, room_id, customer_id, service_id, date, start_time, end_time, status, notes, created_at, updated_at) VALUES (:id, :company_id, :practitioner_id, :room_id, :customer_id, :service_id, :date, :start_time, :end_time, :status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// Update modifies an appointment.
func (r *AppointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	appointment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE appointments SET practitioner_id = :practitioner_id, room_id = :room_id, customer_id = :customer_id, service_id = :service_id, date = :date, start_time = :start_time, end_time = :end_time, status = :status, notes = :notes, updated_at = :updated_at WHERE company_id = :company_id AND id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// UpdateStatus transitions an appointment's lifecycle state.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, companyID, id string, status models.AppointmentStatus) error {
	const query = `UPDATE appointments SET status = $3, updated_at = $4 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	return nil
}

// CountInRange counts non-cancelled appointments between two dates inclusive.
func (r *AppointmentRepository) CountInRange(ctx context.Context, companyID string, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM appointments WHERE company_id = $1 AND date BETWEEN $2 AND $3 AND status <> $4`
	var total int
	if err := r.db.GetContext(ctx, &total, query, companyID, from, to, models.AppointmentCancelled); err != nil {
		return 0, fmt.Errorf("count appointments in range: %w", err)
	}
	return total, nil
}
