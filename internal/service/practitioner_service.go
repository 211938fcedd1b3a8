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

type practitionerRepository interface {
	List(ctx context.Context, filter models.PractitionerFilter) ([]models.Practitioner, int, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Practitioner, error)
	Create(ctx context.Context, pract *models.Practitioner) error
	Update(ctx context.Context, pract *models.Practitioner) error
	Deactivate(ctx context.Context, companyID, id string) error
}

type scheduleRepository interface {
	ListForPractitioner(ctx context.Context, companyID, practitionerID string) ([]models.WorkingHours, error)
	Upsert(ctx context.Context, hours *models.WorkingHours) error
	DeleteForWeekday(ctx context.Context, companyID, practitionerID string, weekday int) error
	ListExceptions(ctx context.Context, companyID, practitionerID string, from, to time.Time) ([]models.ScheduleException, error)
	CreateException(ctx context.Context, exception *models.ScheduleException) error
	DeleteException(ctx context.Context, companyID, id string) error
}

// PractitionerService manages professionals and their schedule templates.
type PractitionerService struct {
	repo      practitionerRepository
	schedule  scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPractitionerService constructs a PractitionerService.
func NewPractitionerService(repo practitionerRepository, schedule scheduleRepository, validate *validator.Validate, logger *zap.Logger) *PractitionerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PractitionerService{repo: repo, schedule: schedule, validator: validate, logger: logger}
}

// List returns practitioners for the tenant.
func (s *PractitionerService) List(ctx context.Context, filter models.PractitionerFilter) ([]models.Practitioner, int, error) {
	practitioners, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list practitioners")
	}
	return practitioners, total, nil
}

// Get loads one practitioner.
func (s *PractitionerService) Get(ctx context.Context, companyID, id string) (*models.Practitioner, error) {
	pract, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "practitioner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load practitioner")
	}
	return pract, nil
}

// Create registers a professional.
func (s *PractitionerService) Create(ctx context.Context, companyID string, req dto.CreatePractitionerRequest) (*models.Practitioner, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid practitioner payload")
	}

	pract := &models.Practitioner{
		CompanyID: companyID,
		UserID:    req.UserID,
		FullName:  req.FullName,
		Specialty: req.Specialty,
		Registry:  req.Registry,
		Email:     req.Email,
		Phone:     req.Phone,
		Active:    true,
	}
	if err := s.repo.Create(ctx, pract); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create practitioner")
	}
	return pract, nil
}

// Update edits a professional.
func (s *PractitionerService) Update(ctx context.Context, companyID, id string, req dto.UpdatePractitionerRequest) (*models.Practitioner, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid practitioner payload")
	}

	pract, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	pract.FullName = req.FullName
	pract.Specialty = req.Specialty
	pract.Registry = req.Registry
	pract.Email = req.Email
	pract.Phone = req.Phone
	if req.Active != nil {
		pract.Active = *req.Active
	}

	if err := s.repo.Update(ctx, pract); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update practitioner")
	}
	return pract, nil
}

// Deactivate soft-deletes a professional.
func (s *PractitionerService) Deactivate(ctx context.Context, companyID, id string) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, companyID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate practitioner")
	}
	return nil
}

// ListWorkingHours returns the weekly template for a practitioner.
func (s *PractitionerService) ListWorkingHours(ctx context.Context, companyID, practitionerID string) ([]models.WorkingHours, error) {
	if _, err := s.Get(ctx, companyID, practitionerID); err != nil {
		return nil, err
	}
	hours, err := s.schedule.ListForPractitioner(ctx, companyID, practitionerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list working hours")
	}
	return hours, nil
}

// SetWorkingHours upserts the weekly template for one weekday.
func (s *PractitionerService) SetWorkingHours(ctx context.Context, companyID, practitionerID string, req dto.SetWorkingHoursRequest) (*models.WorkingHours, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid working hours payload")
	}
	if _, err := s.Get(ctx, companyID, practitionerID); err != nil {
		return nil, err
	}
	if err := validateWindow(req.StartTime, req.EndTime, req.BreakStart, req.BreakEnd); err != nil {
		return nil, err
	}

	hours := &models.WorkingHours{
		CompanyID:  companyID,
		PractID:    practitionerID,
		Weekday:    req.Weekday,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		BreakStart: req.BreakStart,
		BreakEnd:   req.BreakEnd,
	}
	if err := s.schedule.Upsert(ctx, hours); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store working hours")
	}
	return hours, nil
}

// ClearWorkingHours removes the template for one weekday.
func (s *PractitionerService) ClearWorkingHours(ctx context.Context, companyID, practitionerID string, weekday int) error {
	if weekday < 0 || weekday > 6 {
		return appErrors.Clone(appErrors.ErrValidation, "weekday must be between 0 and 6")
	}
	if _, err := s.Get(ctx, companyID, practitionerID); err != nil {
		return err
	}
	if err := s.schedule.DeleteForWeekday(ctx, companyID, practitionerID, weekday); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete working hours")
	}
	return nil
}

// ListExceptions returns date overrides within a range.
func (s *PractitionerService) ListExceptions(ctx context.Context, companyID, practitionerID string, from, to time.Time) ([]models.ScheduleException, error) {
	if _, err := s.Get(ctx, companyID, practitionerID); err != nil {
		return nil, err
	}
	exceptions, err := s.schedule.ListExceptions(ctx, companyID, practitionerID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule exceptions")
	}
	return exceptions, nil
}

// CreateException records a date-specific override. One exception per date;
// a repeat submission replaces the previous one.
func (s *PractitionerService) CreateException(ctx context.Context, companyID, practitionerID string, req dto.CreateScheduleExceptionRequest) (*models.ScheduleException, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule exception payload")
	}
	if _, err := s.Get(ctx, companyID, practitionerID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}

	exception := &models.ScheduleException{
		CompanyID:   companyID,
		PractID:     practitionerID,
		Date:        date,
		IsAvailable: req.IsAvailable,
		Reason:      req.Reason,
	}
	if req.IsAvailable {
		if req.StartTime == nil || req.EndTime == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "available exceptions require start and end times")
		}
		if err := validateWindow(*req.StartTime, *req.EndTime, req.BreakStart, req.BreakEnd); err != nil {
			return nil, err
		}
		exception.StartTime = req.StartTime
		exception.EndTime = req.EndTime
		exception.BreakStart = req.BreakStart
		exception.BreakEnd = req.BreakEnd
	}

	if err := s.schedule.CreateException(ctx, exception); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule exception")
	}
	return exception, nil
}

// DeleteException removes a date override.
func (s *PractitionerService) DeleteException(ctx context.Context, companyID, id string) error {
	if err := s.schedule.DeleteException(ctx, companyID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule exception")
	}
	return nil
}

// validateWindow enforces start < break_start < break_end < end, with the
// break optional but required as a pair.
func validateWindow(start, end string, breakStart, breakEnd *string) error {
	startMin, err := parseClock(start)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid start time")
	}
	endMin, err := parseClock(end)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid end time")
	}
	if endMin <= startMin {
		return appErrors.ErrInvalidTimeRange
	}

	if (breakStart == nil) != (breakEnd == nil) {
		return appErrors.Clone(appErrors.ErrValidation, "break start and end must be set together")
	}
	if breakStart != nil {
		bs, err := parseClock(*breakStart)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid break start")
		}
		be, err := parseClock(*breakEnd)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid break end")
		}
		if !(startMin < bs && bs < be && be < endMin) {
			return appErrors.Clone(appErrors.ErrValidation, "break must fall strictly inside the working window")
		}
	}
	return nil
}
