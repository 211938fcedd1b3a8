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

type appointmentRepoStub struct {
	appointment   *models.Appointment
	created       *models.Appointment
	updated       *models.Appointment
	statusChanges []models.AppointmentStatus
}

func (s *appointmentRepoStub) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	if s.appointment == nil {
		return nil, 0, nil
	}
	return []models.Appointment{*s.appointment}, 1, nil
}

func (s *appointmentRepoStub) FindByID(ctx context.Context, companyID, id string) (*models.Appointment, error) {
	if s.appointment == nil {
		return nil, sql.ErrNoRows
	}
	return s.appointment, nil
}

func (s *appointmentRepoStub) Create(ctx context.Context, appointment *models.Appointment) error {
	appointment.ID = "appt-1"
	s.created = appointment
	return nil
}

func (s *appointmentRepoStub) Update(ctx context.Context, appointment *models.Appointment) error {
	s.updated = appointment
	return nil
}

func (s *appointmentRepoStub) UpdateStatus(ctx context.Context, companyID, id string, status models.AppointmentStatus) error {
	s.statusChanges = append(s.statusChanges, status)
	return nil
}

type availabilityStub struct {
	window           *dto.AvailabilityWindow
	conflicts        []models.AppointmentConflict
	invalidated      int
	invalidatedRooms []string
	checkedReqs      []dto.ConflictCheckRequest
	resolveErr       error
	conflictsErr     error
}

func (s *availabilityStub) ResolveWindow(ctx context.Context, companyID, practitionerID string, date time.Time) (*dto.AvailabilityWindow, error) {
	return s.window, s.resolveErr
}

func (s *availabilityStub) CheckConflicts(ctx context.Context, companyID string, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	if s.conflictsErr != nil {
		return nil, s.conflictsErr
	}
	s.checkedReqs = append(s.checkedReqs, req)
	return &dto.ConflictCheckResponse{Bookable: len(s.conflicts) == 0, Conflicts: s.conflicts}, nil
}

func (s *availabilityStub) InvalidateDay(ctx context.Context, companyID, practitionerID, roomID string, date time.Time) {
	s.invalidated++
	s.invalidatedRooms = append(s.invalidatedRooms, roomID)
}

type notifierStub struct {
	kinds []models.NotificationKind
}

func (s *notifierStub) EnqueueAppointmentNotification(ctx context.Context, appointment *models.Appointment, kind models.NotificationKind) {
	s.kinds = append(s.kinds, kind)
}

type auditStub struct {
	logs []*models.AuditLog
}

func (s *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func openWindow() *dto.AvailabilityWindow {
	return &dto.AvailabilityWindow{Start: "08:00", End: "18:00"}
}

func appointmentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", CompanyID: "company-1", Role: models.RoleReceptionist}
}

func validCreateRequest() dto.CreateAppointmentRequest {
	return dto.CreateAppointmentRequest{
		PractitionerID: "pract-1",
		RoomID:         "room-1",
		CustomerID:     "cust-1",
		ServiceID:      "svc-1",
		Date:           "2026-03-02",
		StartTime:      "09:00",
		EndTime:        "09:30",
	}
}

func TestAppointmentCreateBooksAndNotifies(t *testing.T) {
	repo := &appointmentRepoStub{}
	availability := &availabilityStub{window: openWindow()}
	notifier := &notifierStub{}
	audit := &auditStub{}
	customers := customerReaderStub{customer: &models.Customer{ID: "cust-1", FullName: "Maria Silva"}}
	svc := NewAppointmentService(repo, availability, customers, notifier, audit, nil, nil)

	appointment, err := svc.Create(context.Background(), appointmentClaims(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, models.AppointmentScheduled, appointment.Status)
	assert.Equal(t, "company-1", appointment.CompanyID)
	require.NotNil(t, repo.created)
	assert.Equal(t, 1, availability.invalidated)
	assert.Equal(t, []string{"room-1"}, availability.invalidatedRooms)
	assert.Equal(t, []models.NotificationKind{models.NotificationConfirmation}, notifier.kinds)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionAppointmentCreate, audit.logs[0].Action)
}

func TestAppointmentCreateUnavailablePractitioner(t *testing.T) {
	availability := &availabilityStub{window: nil}
	customers := customerReaderStub{customer: &models.Customer{ID: "cust-1"}}
	svc := NewAppointmentService(&appointmentRepoStub{}, availability, customers, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), appointmentClaims(), validCreateRequest())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnavailablePractitioner.Code, appErr.Code)
}

func TestAppointmentCreateMapsConflictDimensionToError(t *testing.T) {
	cases := []struct {
		name      string
		dimension models.ConflictDimension
		wantCode  string
	}{
		{"practitioner conflict", models.ConflictPractitioner, appErrors.ErrPractitionerConflict.Code},
		{"room conflict", models.ConflictRoom, appErrors.ErrRoomConflict.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			availability := &availabilityStub{
				window: openWindow(),
				conflicts: []models.AppointmentConflict{{
					AppointmentID: "other",
					CustomerName:  "João",
					ServiceName:   "Consulta",
					StartTime:     "09:00",
					EndTime:       "09:30",
					Dimension:     tc.dimension,
				}},
			}
			customers := customerReaderStub{customer: &models.Customer{ID: "cust-1"}}
			svc := NewAppointmentService(&appointmentRepoStub{}, availability, customers, nil, nil, nil, nil)

			_, err := svc.Create(context.Background(), appointmentClaims(), validCreateRequest())
			require.Error(t, err)

			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.wantCode, appErr.Code)
		})
	}
}

func TestAppointmentUpdateExcludesSelfFromConflictScan(t *testing.T) {
	repo := &appointmentRepoStub{
		appointment: &models.Appointment{
			ID: "appt-1", CompanyID: "company-1", PractitionerID: "pract-1",
			Date: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), Status: models.AppointmentScheduled,
		},
	}
	availability := &availabilityStub{window: openWindow()}
	customers := customerReaderStub{customer: &models.Customer{ID: "cust-1"}}
	svc := NewAppointmentService(repo, availability, customers, nil, nil, nil, nil)

	_, err := svc.Update(context.Background(), appointmentClaims(), "appt-1", dto.UpdateAppointmentRequest{
		PractitionerID: "pract-1",
		CustomerID:     "cust-1",
		ServiceID:      "svc-1",
		Date:           "2026-03-02",
		StartTime:      "10:00",
		EndTime:        "10:30",
	})
	require.NoError(t, err)

	require.Len(t, availability.checkedReqs, 1)
	assert.Equal(t, "appt-1", availability.checkedReqs[0].ExcludeID)
	// old and new practitioner/day both invalidated
	assert.Equal(t, 2, availability.invalidated)
}

func TestAppointmentUpdateRejectsCancelled(t *testing.T) {
	repo := &appointmentRepoStub{
		appointment: &models.Appointment{ID: "appt-1", CompanyID: "company-1", Status: models.AppointmentCancelled},
	}
	svc := NewAppointmentService(repo, &availabilityStub{window: openWindow()}, customerReaderStub{}, nil, nil, nil, nil)

	_, err := svc.Update(context.Background(), appointmentClaims(), "appt-1", dto.UpdateAppointmentRequest{
		PractitionerID: "pract-1",
		CustomerID:     "cust-1",
		ServiceID:      "svc-1",
		Date:           "2026-03-02",
		StartTime:      "10:00",
		EndTime:        "10:30",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAppointmentCancelFreesSlotAndNotifies(t *testing.T) {
	repo := &appointmentRepoStub{
		appointment: &models.Appointment{
			ID: "appt-1", CompanyID: "company-1", PractitionerID: "pract-1",
			Date: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), Status: models.AppointmentScheduled,
		},
	}
	availability := &availabilityStub{}
	notifier := &notifierStub{}
	svc := NewAppointmentService(repo, availability, customerReaderStub{}, notifier, &auditStub{}, nil, nil)

	appointment, err := svc.UpdateStatus(context.Background(), appointmentClaims(), "appt-1", models.AppointmentCancelled)
	require.NoError(t, err)

	assert.Equal(t, models.AppointmentCancelled, appointment.Status)
	assert.Equal(t, 1, availability.invalidated)
	assert.Equal(t, []models.NotificationKind{models.NotificationCancellation}, notifier.kinds)
}

func TestAppointmentStatusTransitionFromCancelledRejected(t *testing.T) {
	repo := &appointmentRepoStub{
		appointment: &models.Appointment{ID: "appt-1", CompanyID: "company-1", Status: models.AppointmentCancelled},
	}
	svc := NewAppointmentService(repo, &availabilityStub{}, customerReaderStub{}, nil, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), appointmentClaims(), "appt-1", models.AppointmentScheduled)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}
