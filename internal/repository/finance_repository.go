package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
)

// FinanceRepository provides persistence for bookkeeping transactions.
type FinanceRepository struct {
	db *sqlx.DB
}

// NewFinanceRepository creates a new finance repository.
func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

const transactionColumns = "id, company_id, appointment_id, type, category, description, amount, date, created_at, updated_at"

// List returns transactions with filtering and pagination.
func (r *FinanceRepository) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int, error) {
	base := "FROM transactions WHERE company_id = $1"
	args := []interface{}{filter.CompanyID}
	var conditions []string

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"date":       true,
		"amount":     true,
		"category":   true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", transactionColumns, base, sortBy, order, size, offset)
	var transactions []models.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	return transactions, total, nil
}

// FindByID loads a transaction scoped to its company.
func (r *FinanceRepository) FindByID(ctx context.Context, companyID, id string) (*models.Transaction, error) {
	query := fmt.Sprintf("SELECT %s FROM transactions WHERE company_id = $1 AND id = $2 LIMIT 1", transactionColumns)
	var transaction models.Transaction
	if err := r.db.GetContext(ctx, &transaction, query, companyID, id); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Create stores a new transaction.
func (r *FinanceRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = now
	}
	transaction.UpdatedAt = now

	const query = `INSERT INTO transactions (id, company_id, appointment_id, type, category, description, amount, date, created_at, updated_at) VALUES (:id, :company_id, :appointment_id, :type, :category, :description, :amount, :date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, transaction); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// Update modifies a transaction.
func (r *FinanceRepository) Update(ctx context.Context, transaction *models.Transaction) error {
	transaction.UpdatedAt = time.Now().UTC()
	const query = `UPDATE transactions SET type = :type, category = :category, description = :description, amount = :amount, date = :date, updated_at = :updated_at WHERE company_id = :company_id AND id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, transaction); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Delete removes a transaction.
func (r *FinanceRepository) Delete(ctx context.Context, companyID, id string) error {
	const query = `DELETE FROM transactions WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// SumByType totals amounts per transaction type in a period.
func (r *FinanceRepository) SumByType(ctx context.Context, companyID string, transactionType models.TransactionType, from, to time.Time) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE company_id = $1 AND type = $2 AND date BETWEEN $3 AND $4`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, companyID, transactionType, from, to); err != nil {
		return 0, fmt.Errorf("sum transactions by type: %w", err)
	}
	return total, nil
}

// TotalsByCategory aggregates amounts per category/type in a period.
func (r *FinanceRepository) TotalsByCategory(ctx context.Context, companyID string, from, to time.Time) ([]models.CategoryTotal, error) {
	const query = `SELECT category, type, COALESCE(SUM(amount), 0) AS total FROM transactions WHERE company_id = $1 AND date BETWEEN $2 AND $3 GROUP BY category, type ORDER BY total DESC`
	var totals []models.CategoryTotal
	if err := r.db.SelectContext(ctx, &totals, query, companyID, from, to); err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	return totals, nil
}
