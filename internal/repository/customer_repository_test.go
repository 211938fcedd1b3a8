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

func newCustomerMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func customerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "company_id", "full_name", "email", "phone", "document", "birth_date", "notes", "active", "created_at", "updated_at"})
}

func TestCustomerRepositoryList(t *testing.T) {
	db, mock, cleanup := newCustomerMock(t)
	defer cleanup()
	repo := NewCustomerRepository(db)

	rows := customerRows().
		AddRow("cu-1", "co-1", "Ana Souza", "ana@example.com", "5511987654321", "", nil, "", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_id, full_name, email, phone, document, birth_date, notes, active, created_at, updated_at FROM customers WHERE company_id = $1 ORDER BY full_name ASC LIMIT 20 OFFSET 0")).
		WithArgs("co-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers WHERE company_id = $1")).
		WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	customers, total, err := repo.List(context.Background(), models.CustomerFilter{CompanyID: "co-1"})
	require.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepositoryListBirthMonth(t *testing.T) {
	db, mock, cleanup := newCustomerMock(t)
	defer cleanup()
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("EXTRACT\\(MONTH FROM birth_date\\) = \\$2 ORDER BY full_name ASC").
		WithArgs("co-1", 3).
		WillReturnRows(customerRows())
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM customers WHERE company_id = \\$1 AND EXTRACT").
		WithArgs("co-1", 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	customers, total, err := repo.List(context.Background(), models.CustomerFilter{CompanyID: "co-1", BirthMonth: 3})
	require.NoError(t, err)
	assert.Empty(t, customers)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCustomerMock(t)
	defer cleanup()
	repo := NewCustomerRepository(db)

	mock.ExpectExec("INSERT INTO customers").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	customer := &models.Customer{CompanyID: "co-1", FullName: "Ana Souza", Phone: "5511987654321", Active: true}
	err := repo.Create(context.Background(), customer)
	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepositoryListForAudience(t *testing.T) {
	db, mock, cleanup := newCustomerMock(t)
	defer cleanup()
	repo := NewCustomerRepository(db)

	rows := customerRows().
		AddRow("cu-1", "co-1", "Ana Souza", "", "5511987654321", "", nil, "", true, time.Now(), time.Now())
	mock.ExpectQuery("FROM customers WHERE company_id = \\$1 AND active = TRUE AND phone <> '' AND EXTRACT\\(MONTH FROM birth_date\\) = \\$2").
		WithArgs("co-1", 7).
		WillReturnRows(rows)

	customers, err := repo.ListForAudience(context.Background(), "co-1", 7, false)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "5511987654321", customers[0].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newCustomerMock(t)
	defer cleanup()
	repo := NewCustomerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers SET active = FALSE, updated_at = $3 WHERE company_id = $1 AND id = $2")).
		WithArgs("co-1", "cu-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Deactivate(context.Background(), "co-1", "cu-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
