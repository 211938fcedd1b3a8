package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/export"
)

type financeRepoStub struct {
	transactions []models.Transaction
	income       float64
	expense      float64
	byCategory   []models.CategoryTotal
	created      []*models.Transaction
	updated      []*models.Transaction
	deleted      []string
	listErr      error
}

func (s *financeRepoStub) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.transactions, len(s.transactions), nil
}

func (s *financeRepoStub) FindByID(ctx context.Context, companyID, id string) (*models.Transaction, error) {
	for i := range s.transactions {
		if s.transactions[i].ID == id && s.transactions[i].CompanyID == companyID {
			tx := s.transactions[i]
			return &tx, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *financeRepoStub) Create(ctx context.Context, transaction *models.Transaction) error {
	transaction.ID = "tx-new"
	s.created = append(s.created, transaction)
	return nil
}

func (s *financeRepoStub) Update(ctx context.Context, transaction *models.Transaction) error {
	s.updated = append(s.updated, transaction)
	return nil
}

func (s *financeRepoStub) Delete(ctx context.Context, companyID, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *financeRepoStub) SumByType(ctx context.Context, companyID string, transactionType models.TransactionType, from, to time.Time) (float64, error) {
	if transactionType == models.TransactionIncome {
		return s.income, nil
	}
	return s.expense, nil
}

func (s *financeRepoStub) TotalsByCategory(ctx context.Context, companyID string, from, to time.Time) ([]models.CategoryTotal, error) {
	return s.byCategory, nil
}

func TestFinanceCreateParsesDate(t *testing.T) {
	repo := &financeRepoStub{}
	svc := NewFinanceService(repo, export.NewCSVExporter(), nil, nil)

	tx, err := svc.Create(context.Background(), "company-1", dto.TransactionRequest{
		Type:     "INCOME",
		Category: "consultation",
		Amount:   250,
		Date:     "2026-02-10",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.TransactionIncome, tx.Type)
	assert.Equal(t, 2026, tx.Date.Year())
	assert.Equal(t, time.February, tx.Date.Month())
	assert.Equal(t, "company-1", tx.CompanyID)
}

func TestFinanceCreateRejectsZeroAmount(t *testing.T) {
	svc := NewFinanceService(&financeRepoStub{}, export.NewCSVExporter(), nil, nil)

	_, err := svc.Create(context.Background(), "company-1", dto.TransactionRequest{
		Type:     "EXPENSE",
		Category: "supplies",
		Amount:   0,
		Date:     "2026-02-10",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFinanceGetNotFound(t *testing.T) {
	svc := NewFinanceService(&financeRepoStub{}, export.NewCSVExporter(), nil, nil)

	_, err := svc.Get(context.Background(), "company-1", "missing")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestFinanceSummaryComputesBalance(t *testing.T) {
	repo := &financeRepoStub{
		income:  1200.50,
		expense: 300.25,
		byCategory: []models.CategoryTotal{
			{Category: "consultation", Total: 1200.50},
			{Category: "supplies", Total: 300.25},
		},
	}
	svc := NewFinanceService(repo, export.NewCSVExporter(), nil, nil)

	summary, err := svc.Summary(context.Background(), "company-1", time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 900.25, summary.Balance, 0.001)
	assert.Len(t, summary.ByCategory, 2)
}

func TestFinanceExportCSVRendersLedger(t *testing.T) {
	repo := &financeRepoStub{
		transactions: []models.Transaction{
			{
				ID:        "tx-1",
				CompanyID: "company-1",
				Type:      models.TransactionIncome,
				Category:  "consultation",
				Amount:    250,
				Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			},
			{
				ID:        "tx-2",
				CompanyID: "company-1",
				Type:      models.TransactionExpense,
				Category:  "supplies",
				Amount:    42.5,
				Date:      time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	svc := NewFinanceService(repo, export.NewCSVExporter(), nil, nil)

	payload, err := svc.ExportCSV(context.Background(), "company-1", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "date,type,category,description,amount"))
	assert.Contains(t, body, "2026-02-10,INCOME,consultation,,250.00")
	assert.Contains(t, body, "2026-02-11,EXPENSE,supplies,,42.50")
}

func TestFinanceDeleteRequiresExisting(t *testing.T) {
	repo := &financeRepoStub{transactions: []models.Transaction{
		{ID: "tx-1", CompanyID: "company-1", Type: models.TransactionIncome, Category: "consultation", Amount: 100, Date: time.Now()},
	}}
	svc := NewFinanceService(repo, export.NewCSVExporter(), nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "company-1", "tx-1"))
	assert.Equal(t, []string{"tx-1"}, repo.deleted)

	err := svc.Delete(context.Background(), "company-1", "tx-missing")
	require.Error(t, err)
}
