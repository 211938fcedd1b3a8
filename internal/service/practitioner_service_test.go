package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type practitionerRepoStub struct {
	practitioner *models.Practitioner
}

func (s *practitionerRepoStub) List(ctx context.Context, filter models.PractitionerFilter) ([]models.Practitioner, int, error) {
	return nil, 0, nil
}

func (s *practitionerRepoStub) FindByID(ctx context.Context, companyID, id string) (*models.Practitioner, error) {
	if s.practitioner == nil {
		return nil, sql.ErrNoRows
	}
	return s.practitioner, nil
}

func (s *practitionerRepoStub) Create(ctx context.Context, pract *models.Practitioner) error {
	pract.ID = "pract-1"
	s.practitioner = pract
	return nil
}

func (s *practitionerRepoStub) Update(ctx context.Context, pract *models.Practitioner) error {
	s.practitioner = pract
	return nil
}

func (s *practitionerRepoStub) Deactivate(ctx context.Context, companyID, id string) error {
	return nil
}

type scheduleRepoStub struct {
	upserted   *models.WorkingHours
	exceptions []models.ScheduleException
	created    *models.ScheduleException
}

func (s *scheduleRepoStub) ListForPractitioner(ctx context.Context, companyID, practitionerID string) ([]models.WorkingHours, error) {
	return nil, nil
}

func (s *scheduleRepoStub) Upsert(ctx context.Context, hours *models.WorkingHours) error {
	s.upserted = hours
	return nil
}

func (s *scheduleRepoStub) DeleteForWeekday(ctx context.Context, companyID, practitionerID string, weekday int) error {
	return nil
}

func (s *scheduleRepoStub) ListExceptions(ctx context.Context, companyID, practitionerID string, from, to time.Time) ([]models.ScheduleException, error) {
	return s.exceptions, nil
}

func (s *scheduleRepoStub) CreateException(ctx context.Context, exception *models.ScheduleException) error {
	s.created = exception
	return nil
}

func (s *scheduleRepoStub) DeleteException(ctx context.Context, companyID, id string) error {
	return nil
}

func newPractitionerService(repo *practitionerRepoStub, schedule *scheduleRepoStub) *PractitionerService {
	if repo.practitioner == nil {
		repo.practitioner = &models.Practitioner{ID: "pract-1", CompanyID: "company-1", FullName: "Dra. Ana", Active: true}
	}
	return NewPractitionerService(repo, schedule, nil, nil)
}

func TestSetWorkingHoursStoresTemplate(t *testing.T) {
	schedule := &scheduleRepoStub{}
	svc := newPractitionerService(&practitionerRepoStub{}, schedule)

	hours, err := svc.SetWorkingHours(context.Background(), "company-1", "pract-1", dto.SetWorkingHoursRequest{
		Weekday:    1,
		StartTime:  "08:00",
		EndTime:    "18:00",
		BreakStart: strPtr("12:00"),
		BreakEnd:   strPtr("13:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, hours.Weekday)
	require.NotNil(t, schedule.upserted)
	assert.Equal(t, "08:00", schedule.upserted.StartTime)
}

func TestSetWorkingHoursWindowValidation(t *testing.T) {
	cases := []struct {
		name string
		req  dto.SetWorkingHoursRequest
	}{
		{"end before start", dto.SetWorkingHoursRequest{Weekday: 1, StartTime: "18:00", EndTime: "08:00"}},
		{"end equals start", dto.SetWorkingHoursRequest{Weekday: 1, StartTime: "08:00", EndTime: "08:00"}},
		{"break start without end", dto.SetWorkingHoursRequest{Weekday: 1, StartTime: "08:00", EndTime: "18:00", BreakStart: strPtr("12:00")}},
		{"break outside window", dto.SetWorkingHoursRequest{Weekday: 1, StartTime: "08:00", EndTime: "18:00", BreakStart: strPtr("07:00"), BreakEnd: strPtr("07:30")}},
		{"break end before break start", dto.SetWorkingHoursRequest{Weekday: 1, StartTime: "08:00", EndTime: "18:00", BreakStart: strPtr("13:00"), BreakEnd: strPtr("12:00")}},
		{"malformed time", dto.SetWorkingHoursRequest{Weekday: 1, StartTime: "8h00", EndTime: "18:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newPractitionerService(&practitionerRepoStub{}, &scheduleRepoStub{})
			_, err := svc.SetWorkingHours(context.Background(), "company-1", "pract-1", tc.req)
			assert.Error(t, err)
		})
	}
}

func TestCreateExceptionDayOffIgnoresWindow(t *testing.T) {
	schedule := &scheduleRepoStub{}
	svc := newPractitionerService(&practitionerRepoStub{}, schedule)

	exception, err := svc.CreateException(context.Background(), "company-1", "pract-1", dto.CreateScheduleExceptionRequest{
		Date:        "2026-03-02",
		IsAvailable: false,
		Reason:      "congresso",
	})
	require.NoError(t, err)

	assert.False(t, exception.IsAvailable)
	assert.Nil(t, exception.StartTime)
	require.NotNil(t, schedule.created)
}

func TestCreateExceptionAvailableRequiresWindow(t *testing.T) {
	svc := newPractitionerService(&practitionerRepoStub{}, &scheduleRepoStub{})

	_, err := svc.CreateException(context.Background(), "company-1", "pract-1", dto.CreateScheduleExceptionRequest{
		Date:        "2026-03-02",
		IsAvailable: true,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateExceptionWithCustomWindow(t *testing.T) {
	schedule := &scheduleRepoStub{}
	svc := newPractitionerService(&practitionerRepoStub{}, schedule)

	exception, err := svc.CreateException(context.Background(), "company-1", "pract-1", dto.CreateScheduleExceptionRequest{
		Date:        "2026-03-02",
		IsAvailable: true,
		StartTime:   strPtr("10:00"),
		EndTime:     strPtr("14:00"),
	})
	require.NoError(t, err)

	assert.True(t, exception.IsAvailable)
	require.NotNil(t, exception.StartTime)
	assert.Equal(t, "10:00", *exception.StartTime)
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), exception.Date)
}

func TestClearWorkingHoursRejectsBadWeekday(t *testing.T) {
	svc := newPractitionerService(&practitionerRepoStub{}, &scheduleRepoStub{})

	err := svc.ClearWorkingHours(context.Background(), "company-1", "pract-1", 7)
	require.Error(t, err)
}
