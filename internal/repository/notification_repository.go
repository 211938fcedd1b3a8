package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
)

// NotificationRepository provides persistence for appointment notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = "id, company_id, appointment_id, customer_id, phone, kind, message, status, error, sent_at, created_at, updated_at"

// Create stores a new notification in PENDING state.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}
	notification.UpdatedAt = now

	const query = `INSERT INTO notifications (id, company_id, appointment_id, customer_id, phone, kind, message, status, created_at, updated_at) VALUES (:id, :company_id, :appointment_id, :customer_id, :phone, :kind, :message, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// FindByID loads one notification.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notifications WHERE id = $1 LIMIT 1", notificationColumns)
	var notification models.Notification
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByAppointment returns notifications sent for one appointment.
func (r *NotificationRepository) ListByAppointment(ctx context.Context, companyID, appointmentID string) ([]models.Notification, error) {
	query := fmt.Sprintf("SELECT %s FROM notifications WHERE company_id = $1 AND appointment_id = $2 ORDER BY created_at DESC", notificationColumns)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, companyID, appointmentID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// UpdateStatus records the delivery outcome for a notification.
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id string, status models.NotificationStatus, sendErr *string, sentAt *time.Time) error {
	const query = `UPDATE notifications SET status = $2, error = $3, sent_at = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, sendErr, sentAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	return nil
}

// CountPending returns how many notifications are awaiting delivery.
func (r *NotificationRepository) CountPending(ctx context.Context, companyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE company_id = $1 AND status = 'PENDING'`
	var total int
	if err := r.db.GetContext(ctx, &total, query, companyID); err != nil {
		return 0, fmt.Errorf("count pending notifications: %w", err)
	}
	return total, nil
}
