package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type telemedicineRepository interface {
	Create(ctx context.Context, session *models.TelemedicineSession) error
	FindByID(ctx context.Context, companyID, id string) (*models.TelemedicineSession, error)
	FindByAppointment(ctx context.Context, companyID, appointmentID string) (*models.TelemedicineSession, error)
	MarkStarted(ctx context.Context, companyID, id string, startedAt time.Time) error
	MarkFinished(ctx context.Context, companyID, id string, finishedAt time.Time, durationSeconds int) error
}

type telemedicineAppointmentReader interface {
	FindByID(ctx context.Context, companyID, id string) (*models.Appointment, error)
}

// TelemedicineService tracks remote consultation sessions. It only records
// lifecycle timestamps; the actual video room lives on an external provider
// and is referenced by URL.
type TelemedicineService struct {
	repo         telemedicineRepository
	appointments telemedicineAppointmentReader
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewTelemedicineService constructs a TelemedicineService.
func NewTelemedicineService(repo telemedicineRepository, appointments telemedicineAppointmentReader, validate *validator.Validate, logger *zap.Logger) *TelemedicineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelemedicineService{repo: repo, appointments: appointments, validator: validate, logger: logger}
}

// Create opens a session for an appointment. One session per appointment.
func (s *TelemedicineService) Create(ctx context.Context, companyID string, req dto.CreateTelemedicineSessionRequest) (*models.TelemedicineSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid telemedicine session data")
	}

	appointment, err := s.appointments.FindByID(ctx, companyID, req.AppointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	if appointment.Status == models.AppointmentCancelled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot open a session for a cancelled appointment")
	}

	if existing, err := s.repo.FindByAppointment(ctx, companyID, req.AppointmentID); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "appointment already has a telemedicine session")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing session")
	}

	session := &models.TelemedicineSession{
		CompanyID:     companyID,
		AppointmentID: req.AppointmentID,
		RoomURL:       req.RoomURL,
		Status:        models.TelemedicineCreated,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create telemedicine session")
	}

	s.logger.Info("telemedicine session created",
		zap.String("session_id", session.ID),
		zap.String("appointment_id", req.AppointmentID))
	return session, nil
}

// Get loads a session by ID.
func (s *TelemedicineService) Get(ctx context.Context, companyID, id string) (*models.TelemedicineSession, error) {
	session, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "telemedicine session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load telemedicine session")
	}
	return session, nil
}

// GetByAppointment loads the session bound to an appointment.
func (s *TelemedicineService) GetByAppointment(ctx context.Context, companyID, appointmentID string) (*models.TelemedicineSession, error) {
	session, err := s.repo.FindByAppointment(ctx, companyID, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "telemedicine session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load telemedicine session")
	}
	return session, nil
}

// Start marks the session as live. Only CREATED sessions can start.
func (s *TelemedicineService) Start(ctx context.Context, companyID, id string) (*models.TelemedicineSession, error) {
	session, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.TelemedicineCreated {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session already started or finished")
	}

	startedAt := time.Now().UTC()
	if err := s.repo.MarkStarted(ctx, companyID, id, startedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start telemedicine session")
	}

	session.Status = models.TelemedicineStarted
	session.StartedAt = &startedAt
	session.UpdatedAt = startedAt
	return session, nil
}

// Finish closes a running session and records its duration in seconds.
func (s *TelemedicineService) Finish(ctx context.Context, companyID, id string) (*models.TelemedicineSession, error) {
	session, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.TelemedicineStarted || session.StartedAt == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session is not running")
	}

	finishedAt := time.Now().UTC()
	duration := int(finishedAt.Sub(*session.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	if err := s.repo.MarkFinished(ctx, companyID, id, finishedAt, duration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finish telemedicine session")
	}

	session.Status = models.TelemedicineFinished
	session.FinishedAt = &finishedAt
	session.DurationSeconds = duration
	session.UpdatedAt = finishedAt

	s.logger.Info("telemedicine session finished",
		zap.String("session_id", id),
		zap.Int("duration_seconds", duration))
	return session, nil
}
