package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

const appointmentResource = "appointment"

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Appointment, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	Update(ctx context.Context, appointment *models.Appointment) error
	UpdateStatus(ctx context.Context, companyID, id string, status models.AppointmentStatus) error
}

type availabilityChecker interface {
	ResolveWindow(ctx context.Context, companyID, practitionerID string, date time.Time) (*dto.AvailabilityWindow, error)
	CheckConflicts(ctx context.Context, companyID string, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error)
	InvalidateDay(ctx context.Context, companyID, practitionerID, roomID string, date time.Time)
}

type appointmentCustomerReader interface {
	FindByID(ctx context.Context, companyID, id string) (*models.Customer, error)
}

type appointmentNotifier interface {
	EnqueueAppointmentNotification(ctx context.Context, appointment *models.Appointment, kind models.NotificationKind)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AppointmentService books, reschedules and cancels appointments. Every
// write runs the conflict check first; the check is advisory, a concurrent
// request can still win the race between check and insert.
type AppointmentService struct {
	repo         appointmentRepository
	availability availabilityChecker
	customers    appointmentCustomerReader
	notifier     appointmentNotifier
	audit        auditLogger
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(
	repo appointmentRepository,
	availability availabilityChecker,
	customers appointmentCustomerReader,
	notifier appointmentNotifier,
	audit auditLogger,
	validate *validator.Validate,
	logger *zap.Logger,
) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{
		repo:         repo,
		availability: availability,
		customers:    customers,
		notifier:     notifier,
		audit:        audit,
		validator:    validate,
		logger:       logger,
	}
}

// List returns appointments for the tenant.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	appointments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	return appointments, total, nil
}

// Get loads one appointment.
func (s *AppointmentService) Get(ctx context.Context, companyID, id string) (*models.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appointment, nil
}

// Create books a new appointment after validating availability and conflicts.
func (s *AppointmentService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateAppointmentRequest) (*models.Appointment, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}

	date, err := s.ensureBookable(ctx, claims.CompanyID, req.PractitionerID, req.RoomID, req.Date, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}

	if _, err := s.customers.FindByID(ctx, claims.CompanyID, req.CustomerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load customer")
	}

	appointment := &models.Appointment{
		CompanyID:      claims.CompanyID,
		PractitionerID: req.PractitionerID,
		RoomID:         req.RoomID,
		CustomerID:     req.CustomerID,
		ServiceID:      req.ServiceID,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         models.AppointmentScheduled,
		Notes:          req.Notes,
	}
	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
	}

	s.availability.InvalidateDay(ctx, claims.CompanyID, appointment.PractitionerID, appointment.RoomID, appointment.Date)
	s.emitAudit(ctx, claims, models.AuditActionAppointmentCreate, appointment, nil)
	if s.notifier != nil {
		s.notifier.EnqueueAppointmentNotification(ctx, appointment, models.NotificationConfirmation)
	}

	return appointment, nil
}

// Update reschedules or edits an appointment, excluding itself from the
// conflict scan.
func (s *AppointmentService) Update(ctx context.Context, claims *models.JWTClaims, id string, req dto.UpdateAppointmentRequest) (*models.Appointment, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}

	existing, err := s.Get(ctx, claims.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.AppointmentCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cancelled appointments cannot be edited")
	}

	date, err := s.ensureBookable(ctx, claims.CompanyID, req.PractitionerID, req.RoomID, req.Date, req.StartTime, req.EndTime, id)
	if err != nil {
		return nil, err
	}

	previous := *existing
	existing.PractitionerID = req.PractitionerID
	existing.RoomID = req.RoomID
	existing.CustomerID = req.CustomerID
	existing.ServiceID = req.ServiceID
	existing.Date = date
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.Notes = req.Notes

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
	}

	s.availability.InvalidateDay(ctx, claims.CompanyID, previous.PractitionerID, previous.RoomID, previous.Date)
	s.availability.InvalidateDay(ctx, claims.CompanyID, existing.PractitionerID, existing.RoomID, existing.Date)
	s.emitAudit(ctx, claims, models.AuditActionAppointmentUpdate, existing, &previous)

	return existing, nil
}

// UpdateStatus transitions an appointment's lifecycle state. Cancellation
// frees the slot and notifies the customer.
func (s *AppointmentService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	appointment, err := s.Get(ctx, claims.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == models.AppointmentCancelled && status != models.AppointmentCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cancelled appointments cannot transition")
	}

	if err := s.repo.UpdateStatus(ctx, claims.CompanyID, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment status")
	}
	previousStatus := appointment.Status
	appointment.Status = status

	if status == models.AppointmentCancelled && previousStatus != models.AppointmentCancelled {
		s.availability.InvalidateDay(ctx, claims.CompanyID, appointment.PractitionerID, appointment.RoomID, appointment.Date)
		s.emitAudit(ctx, claims, models.AuditActionAppointmentCancel, appointment, nil)
		if s.notifier != nil {
			s.notifier.EnqueueAppointmentNotification(ctx, appointment, models.NotificationCancellation)
		}
	}

	return appointment, nil
}

// ensureBookable validates the time range, the practitioner's availability
// window and the conflict scan, translating results into typed errors.
func (s *AppointmentService) ensureBookable(ctx context.Context, companyID, practitionerID, roomID, dateStr, startTime, endTime, excludeID string) (time.Time, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}

	window, err := s.availability.ResolveWindow(ctx, companyID, practitionerID, date)
	if err != nil {
		return time.Time{}, err
	}
	if window == nil {
		return time.Time{}, appErrors.ErrUnavailablePractitioner
	}

	result, err := s.availability.CheckConflicts(ctx, companyID, dto.ConflictCheckRequest{
		PractitionerID: practitionerID,
		RoomID:         roomID,
		Date:           dateStr,
		StartTime:      startTime,
		EndTime:        endTime,
		ExcludeID:      excludeID,
	})
	if err != nil {
		return time.Time{}, err
	}
	if !result.Bookable {
		first := result.Conflicts[0]
		msg := fmt.Sprintf("conflicts with %s (%s) from %s to %s", first.CustomerName, first.ServiceName, first.StartTime, first.EndTime)
		if first.Dimension == models.ConflictRoom {
			return time.Time{}, appErrors.Clone(appErrors.ErrRoomConflict, msg)
		}
		return time.Time{}, appErrors.Clone(appErrors.ErrPractitionerConflict, msg)
	}

	return date, nil
}

func (s *AppointmentService) emitAudit(ctx context.Context, claims *models.JWTClaims, action string, appointment *models.Appointment, previous *models.Appointment) {
	if s.audit == nil {
		return
	}
	newValues, _ := json.Marshal(appointment)
	var oldValues []byte
	if previous != nil {
		oldValues, _ = json.Marshal(previous)
	}
	log := &models.AuditLog{
		CompanyID:  claims.CompanyID,
		UserID:     &claims.UserID,
		Action:     action,
		Resource:   appointmentResource,
		ResourceID: &appointment.ID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "appointment-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record appointment audit", zap.Error(err))
	}
}
