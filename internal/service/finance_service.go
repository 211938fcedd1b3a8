package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/export"
)

type financeRepository interface {
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Transaction, error)
	Create(ctx context.Context, transaction *models.Transaction) error
	Update(ctx context.Context, transaction *models.Transaction) error
	Delete(ctx context.Context, companyID, id string) error
	SumByType(ctx context.Context, companyID string, transactionType models.TransactionType, from, to time.Time) (float64, error)
	TotalsByCategory(ctx context.Context, companyID string, from, to time.Time) ([]models.CategoryTotal, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// FinanceService keeps the clinic's simple income/expense ledger.
type FinanceService struct {
	repo      financeRepository
	csv       csvRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFinanceService constructs a FinanceService.
func NewFinanceService(repo financeRepository, csv csvRenderer, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceService{repo: repo, csv: csv, validator: validate, logger: logger}
}

// List returns ledger entries.
func (s *FinanceService) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int, error) {
	transactions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transactions")
	}
	return transactions, total, nil
}

// Get loads one ledger entry.
func (s *FinanceService) Get(ctx context.Context, companyID, id string) (*models.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "transaction not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transaction")
	}
	return transaction, nil
}

// Create records a new ledger entry.
func (s *FinanceService) Create(ctx context.Context, companyID string, req dto.TransactionRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transaction payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}

	transaction := &models.Transaction{
		CompanyID:   companyID,
		Type:        models.TransactionType(req.Type),
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
	}
	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create transaction")
	}
	return transaction, nil
}

// Update edits a ledger entry.
func (s *FinanceService) Update(ctx context.Context, companyID, id string, req dto.TransactionRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transaction payload")
	}
	transaction, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date")
	}

	transaction.Type = models.TransactionType(req.Type)
	transaction.Category = req.Category
	transaction.Description = req.Description
	transaction.Amount = req.Amount
	transaction.Date = date

	if err := s.repo.Update(ctx, transaction); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update transaction")
	}
	return transaction, nil
}

// Delete removes a ledger entry.
func (s *FinanceService) Delete(ctx context.Context, companyID, id string) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete transaction")
	}
	return nil
}

// Summary aggregates income, expense and per-category totals for a period.
func (s *FinanceService) Summary(ctx context.Context, companyID string, from, to time.Time) (*models.FinanceSummary, error) {
	income, err := s.repo.SumByType(ctx, companyID, models.TransactionIncome, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum income")
	}
	expense, err := s.repo.SumByType(ctx, companyID, models.TransactionExpense, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum expenses")
	}
	byCategory, err := s.repo.TotalsByCategory(ctx, companyID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate categories")
	}

	return &models.FinanceSummary{
		Income:     income,
		Expense:    expense,
		Balance:    income - expense,
		ByCategory: byCategory,
	}, nil
}

// ExportCSV renders a period's ledger as CSV for download.
func (s *FinanceService) ExportCSV(ctx context.Context, companyID string, from, to time.Time) ([]byte, error) {
	filter := models.TransactionFilter{
		CompanyID: companyID,
		DateFrom:  &from,
		DateTo:    &to,
		PageSize:  100,
	}

	headers := []string{"date", "type", "category", "description", "amount"}
	var rows []map[string]string
	for page := 1; ; page++ {
		filter.Page = page
		transactions, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transactions")
		}
		for _, tx := range transactions {
			rows = append(rows, map[string]string{
				"date":        tx.Date.Format("2006-01-02"),
				"type":        string(tx.Type),
				"category":    tx.Category,
				"description": tx.Description,
				"amount":      formatAmount(tx.Amount),
			})
		}
		if len(rows) >= total || len(transactions) == 0 {
			break
		}
	}

	payload, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
