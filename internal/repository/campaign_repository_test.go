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

func newCampaignMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCampaignRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCampaignMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectExec("INSERT INTO campaigns").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	campaign := &models.Campaign{CompanyID: "co-1", Name: "Birthday July", Message: "Hello!", Status: models.CampaignDraft, CreatedBy: "us-1"}
	err := repo.Create(context.Background(), campaign)
	require.NoError(t, err)
	assert.NotEmpty(t, campaign.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryCreateRecipients(t *testing.T) {
	db, mock, cleanup := newCampaignMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaign_recipients").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO campaign_recipients").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	recipients := []models.CampaignRecipient{
		{CampaignID: "ca-1", CustomerID: "cu-1", Phone: "5511987654321", Status: models.RecipientPending},
		{CampaignID: "ca-1", CustomerID: "cu-2", Phone: "5521912345678", Status: models.RecipientPending},
	}
	err := repo.CreateRecipients(context.Background(), recipients)
	require.NoError(t, err)
	assert.NotEmpty(t, recipients[0].ID)
	assert.NotEmpty(t, recipients[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryCreateRecipientsRollsBack(t *testing.T) {
	db, mock, cleanup := newCampaignMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaign_recipients").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.CreateRecipients(context.Background(), []models.CampaignRecipient{
		{CampaignID: "ca-1", CustomerID: "cu-1", Phone: "5511987654321", Status: models.RecipientPending},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryRecipientCounts(t *testing.T) {
	db, mock, cleanup := newCampaignMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total").
		WithArgs("ca-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "sent", "failed"}).AddRow(10, 0, 8, 2))

	counts, err := repo.RecipientCounts(context.Background(), "ca-1")
	require.NoError(t, err)
	assert.Equal(t, 10, counts.Total)
	assert.Equal(t, 0, counts.Pending)
	assert.Equal(t, 8, counts.Sent)
	assert.Equal(t, 2, counts.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryMarkFinished(t *testing.T) {
	db, mock, cleanup := newCampaignMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	finishedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET status = $3, sent_count = $4, failed_count = $5, finished_at = $6, updated_at = $6 WHERE company_id = $1 AND id = $2")).
		WithArgs("co-1", "ca-1", models.CampaignCompleted, 8, 2, finishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFinished(context.Background(), "co-1", "ca-1", models.CampaignCompleted, 8, 2, finishedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
