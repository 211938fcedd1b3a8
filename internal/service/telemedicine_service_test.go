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

type telemedicineRepoStub struct {
	session        *models.TelemedicineSession
	byAppointment  *models.TelemedicineSession
	startedAt      *time.Time
	finishedAt     *time.Time
	storedDuration int
}

func (s *telemedicineRepoStub) Create(ctx context.Context, session *models.TelemedicineSession) error {
	session.ID = "tele-1"
	s.session = session
	return nil
}

func (s *telemedicineRepoStub) FindByID(ctx context.Context, companyID, id string) (*models.TelemedicineSession, error) {
	if s.session == nil {
		return nil, sql.ErrNoRows
	}
	return s.session, nil
}

func (s *telemedicineRepoStub) FindByAppointment(ctx context.Context, companyID, appointmentID string) (*models.TelemedicineSession, error) {
	if s.byAppointment == nil {
		return nil, sql.ErrNoRows
	}
	return s.byAppointment, nil
}

func (s *telemedicineRepoStub) MarkStarted(ctx context.Context, companyID, id string, startedAt time.Time) error {
	s.startedAt = &startedAt
	return nil
}

func (s *telemedicineRepoStub) MarkFinished(ctx context.Context, companyID, id string, finishedAt time.Time, durationSeconds int) error {
	s.finishedAt = &finishedAt
	s.storedDuration = durationSeconds
	return nil
}

type teleAppointmentStub struct {
	appointment *models.Appointment
}

func (s teleAppointmentStub) FindByID(ctx context.Context, companyID, id string) (*models.Appointment, error) {
	if s.appointment == nil {
		return nil, sql.ErrNoRows
	}
	return s.appointment, nil
}

func TestTelemedicineCreate(t *testing.T) {
	repo := &telemedicineRepoStub{}
	appointments := teleAppointmentStub{appointment: &models.Appointment{ID: "appt-1", Status: models.AppointmentScheduled}}
	svc := NewTelemedicineService(repo, appointments, nil, nil)

	session, err := svc.Create(context.Background(), "company-1", dto.CreateTelemedicineSessionRequest{
		AppointmentID: "appt-1",
		RoomURL:       "https://meet.example.com/room-1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TelemedicineCreated, session.Status)
	assert.Equal(t, "appt-1", session.AppointmentID)
	assert.Zero(t, session.DurationSeconds)
}

func TestTelemedicineCreateRejectsDuplicateSession(t *testing.T) {
	repo := &telemedicineRepoStub{
		byAppointment: &models.TelemedicineSession{ID: "tele-1", AppointmentID: "appt-1"},
	}
	appointments := teleAppointmentStub{appointment: &models.Appointment{ID: "appt-1", Status: models.AppointmentScheduled}}
	svc := NewTelemedicineService(repo, appointments, nil, nil)

	_, err := svc.Create(context.Background(), "company-1", dto.CreateTelemedicineSessionRequest{
		AppointmentID: "appt-1",
		RoomURL:       "https://meet.example.com/room-1",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTelemedicineCreateRejectsCancelledAppointment(t *testing.T) {
	appointments := teleAppointmentStub{appointment: &models.Appointment{ID: "appt-1", Status: models.AppointmentCancelled}}
	svc := NewTelemedicineService(&telemedicineRepoStub{}, appointments, nil, nil)

	_, err := svc.Create(context.Background(), "company-1", dto.CreateTelemedicineSessionRequest{
		AppointmentID: "appt-1",
		RoomURL:       "https://meet.example.com/room-1",
	})
	require.Error(t, err)
}

func TestTelemedicineStartOnlyFromCreated(t *testing.T) {
	repo := &telemedicineRepoStub{
		session: &models.TelemedicineSession{ID: "tele-1", CompanyID: "company-1", Status: models.TelemedicineCreated},
	}
	svc := NewTelemedicineService(repo, teleAppointmentStub{}, nil, nil)

	session, err := svc.Start(context.Background(), "company-1", "tele-1")
	require.NoError(t, err)
	assert.Equal(t, models.TelemedicineStarted, session.Status)
	require.NotNil(t, session.StartedAt)

	// a second start is rejected
	_, err = svc.Start(context.Background(), "company-1", "tele-1")
	require.Error(t, err)
}

func TestTelemedicineFinishComputesDuration(t *testing.T) {
	startedAt := time.Now().UTC().Add(-30 * time.Minute)
	repo := &telemedicineRepoStub{
		session: &models.TelemedicineSession{
			ID:        "tele-1",
			CompanyID: "company-1",
			Status:    models.TelemedicineStarted,
			StartedAt: &startedAt,
		},
	}
	svc := NewTelemedicineService(repo, teleAppointmentStub{}, nil, nil)

	session, err := svc.Finish(context.Background(), "company-1", "tele-1")
	require.NoError(t, err)

	assert.Equal(t, models.TelemedicineFinished, session.Status)
	require.NotNil(t, session.FinishedAt)
	assert.InDelta(t, 30*60, session.DurationSeconds, 5)
	assert.Equal(t, session.DurationSeconds, repo.storedDuration)
}

func TestTelemedicineFinishRequiresRunningSession(t *testing.T) {
	repo := &telemedicineRepoStub{
		session: &models.TelemedicineSession{ID: "tele-1", CompanyID: "company-1", Status: models.TelemedicineCreated},
	}
	svc := NewTelemedicineService(repo, teleAppointmentStub{}, nil, nil)

	_, err := svc.Finish(context.Background(), "company-1", "tele-1")
	require.Error(t, err)
}
