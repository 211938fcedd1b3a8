package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/jobs"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/phone"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/whatsapp"
)

const notificationJobType = "appointment_notification"

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListByAppointment(ctx context.Context, companyID, appointmentID string) ([]models.Notification, error)
	UpdateStatus(ctx context.Context, id string, status models.NotificationStatus, sendErr *string, sentAt *time.Time) error
}

type notificationCustomerReader interface {
	FindByID(ctx context.Context, companyID, id string) (*models.Customer, error)
}

type notificationQueue interface {
	Enqueue(job jobs.Job) error
}

// NotificationService composes and dispatches appointment messages over
// WhatsApp. Delivery runs on the background queue, one job per notification,
// so a slow gateway never blocks the booking request.
type NotificationService struct {
	repo      notificationRepository
	customers notificationCustomerReader
	sender    whatsapp.Sender
	queue     notificationQueue
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(
	repo notificationRepository,
	customers notificationCustomerReader,
	sender whatsapp.Sender,
	queue notificationQueue,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, customers: customers, sender: sender, queue: queue, logger: logger}
}

// EnqueueAppointmentNotification records a pending notification and queues
// its delivery. Failures are logged, never surfaced to the booking flow.
func (s *NotificationService) EnqueueAppointmentNotification(ctx context.Context, appointment *models.Appointment, kind models.NotificationKind) {
	customer, err := s.customers.FindByID(ctx, appointment.CompanyID, appointment.CustomerID)
	if err != nil {
		s.logger.Warn("notification skipped, failed to load customer",
			zap.String("appointment_id", appointment.ID), zap.Error(err))
		return
	}
	if customer.Phone == "" {
		s.logger.Info("notification skipped, customer has no phone",
			zap.String("appointment_id", appointment.ID))
		return
	}

	notification := &models.Notification{
		CompanyID:     appointment.CompanyID,
		AppointmentID: appointment.ID,
		CustomerID:    customer.ID,
		Phone:         phone.Normalize(customer.Phone),
		Kind:          kind,
		Message:       composeMessage(kind, customer.FullName, appointment),
		Status:        models.NotificationPending,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to persist notification", zap.Error(err))
		return
	}

	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{
		ID:      notification.ID,
		Type:    notificationJobType,
		Payload: notification.ID,
	}); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("notification_id", notification.ID), zap.Error(err))
	}
}

// ProcessJob delivers one queued notification. Called by the worker pool;
// a returned error triggers the queue's retry policy.
func (s *NotificationService) ProcessJob(ctx context.Context, job jobs.Job) error {
	notificationID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	notification, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("load notification %s: %w", notificationID, err)
	}
	if notification.Status == models.NotificationSent {
		return nil
	}

	if err := s.sender.SendText(ctx, notification.Phone, notification.Message); err != nil {
		// Keep the notification PENDING while retries remain; FAILED is
		// reserved for the permanent outcome.
		if job.FinalAttempt {
			msg := err.Error()
			if updErr := s.repo.UpdateStatus(ctx, notification.ID, models.NotificationFailed, &msg, nil); updErr != nil {
				s.logger.Warn("failed to record notification failure", zap.Error(updErr))
			}
		}
		return fmt.Errorf("send notification %s: %w", notification.ID, err)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, notification.ID, models.NotificationSent, nil, &now); err != nil {
		s.logger.Warn("notification sent but status update failed", zap.Error(err))
	}
	return nil
}

// ListByAppointment returns the delivery history of one appointment.
func (s *NotificationService) ListByAppointment(ctx context.Context, companyID, appointmentID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByAppointment(ctx, companyID, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no notifications for appointment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

func composeMessage(kind models.NotificationKind, customerName string, appointment *models.Appointment) string {
	day := appointment.Date.Format("02/01/2006")
	switch kind {
	case models.NotificationConfirmation:
		return fmt.Sprintf("Olá %s! Seu agendamento foi confirmado para %s às %s.", customerName, day, appointment.StartTime)
	case models.NotificationReminder:
		return fmt.Sprintf("Olá %s! Lembrete: você tem um agendamento em %s às %s.", customerName, day, appointment.StartTime)
	case models.NotificationCancellation:
		return fmt.Sprintf("Olá %s, seu agendamento de %s às %s foi cancelado. Entre em contato para reagendar.", customerName, day, appointment.StartTime)
	default:
		return fmt.Sprintf("Olá %s! Atualização sobre seu agendamento de %s às %s.", customerName, day, appointment.StartTime)
	}
}
