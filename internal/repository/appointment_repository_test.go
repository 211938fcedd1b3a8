package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
)

func newAppointmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func appointmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "company_id", "practitioner_id", "room_id", "customer_id", "service_id", "date", "start_time", "end_time", "status", "notes", "created_at", "updated_at", "customer_name", "service_name"})
}

func TestAppointmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newAppointmentMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	rows := appointmentRows().
		AddRow("apt-1", "co-1", "pr-1", "", "cu-1", "sv-1", time.Now(), "09:00", "09:30", models.AppointmentScheduled, "", time.Now(), time.Now(), "Ana Souza", "Consulta")
	mock.ExpectQuery("SELECT a.id, .* FROM appointments a JOIN customers c").
		WithArgs("co-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments a JOIN customers c ON c.id = a.customer_id JOIN services s ON s.id = a.service_id WHERE a.company_id = $1")).
		WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	appointments, total, err := repo.List(context.Background(), models.AppointmentFilter{CompanyID: "co-1"})
	require.NoError(t, err)
	assert.Len(t, appointments, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ana Souza", appointments[0].CustomerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListForPractitionerOnDate(t *testing.T) {
	db, mock, cleanup := newAppointmentMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	rows := appointmentRows().
		AddRow("apt-1", "co-1", "pr-1", "", "cu-1", "sv-1", date, "10:00", "10:30", models.AppointmentScheduled, "", time.Now(), time.Now(), "Ana Souza", "Consulta")
	mock.ExpectQuery("SELECT a.id, .* WHERE a.company_id = \\$1 AND a.practitioner_id = \\$2 AND a.date = \\$3 AND a.status <> \\$4 ORDER BY a.start_time ASC").
		WithArgs("co-1", "pr-1", date, models.AppointmentCancelled).
		WillReturnRows(rows)

	appointments, err := repo.ListForPractitionerOnDate(context.Background(), "co-1", "pr-1", date, "")
	require.NoError(t, err)
	assert.Len(t, appointments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListForPractitionerOnDateExcludes(t *testing.T) {
	db, mock, cleanup := newAppointmentMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT a.id, .* AND a.status <> \\$4 AND a.id <> \\$5 ORDER BY a.start_time ASC").
		WithArgs("co-1", "pr-1", date, models.AppointmentCancelled, "apt-9").
		WillReturnRows(appointmentRows())

	appointments, err := repo.ListForPractitionerOnDate(context.Background(), "co-1", "pr-1", date, "apt-9")
	require.NoError(t, err)
	assert.Empty(t, appointments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListForRoomOnDate(t *testing.T) {
	db, mock, cleanup := newAppointmentMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	rows := appointmentRows().
		AddRow("apt-2", "co-1", "pr-2", "rm-1", "cu-2", "sv-1", date, "11:00", "11:30", models.AppointmentScheduled, "", time.Now(), time.Now(), "Bruno Lima", "Consulta")
	mock.ExpectQuery("SELECT a.id, .* WHERE a.company_id = \\$1 AND a.room_id = \\$2 AND a.date = \\$3 AND a.status <> \\$4 ORDER BY a.start_time ASC").
		WithArgs("co-1", "rm-1", date, models.AppointmentCancelled).
		WillReturnRows(rows)

	appointments, err := repo.ListForRoomOnDate(context.Background(), "co-1", "rm-1", date, "")
	require.NoError(t, err)
	assert.Len(t, appointments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAppointmentMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	appointment := &models.Appointment{
		CompanyID:      "co-1",
		PractitionerID: "pr-1",
		CustomerID:     "cu-1",
		ServiceID:      "sv-1",
		Date:           time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		StartTime:      "09:00",
		EndTime:        "09:30",
		Status:         models.AppointmentScheduled,
	}
	err := repo.Create(context.Background(), appointment)
	require.NoError(t, err)
	assert.NotEmpty(t, appointment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newAppointmentMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $3, updated_at = $4 WHERE company_id = $1 AND id = $2")).
		WithArgs("co-1", "apt-1", models.AppointmentCancelled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "co-1", "apt-1", models.AppointmentCancelled)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
