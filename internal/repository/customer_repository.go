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

// CustomerRepository provides persistence for patient records.
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository creates a new customer repository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = "id, company_id, full_name, email, phone, document, birth_date, notes, active, created_at, updated_at"

// List returns customers for a company with optional filtering and pagination.
func (r *CustomerRepository) List(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, int, error) {
	base := "FROM customers WHERE company_id = $1"
	args := []interface{}{filter.CompanyID}
	var conditions []string

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d OR phone LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.BirthMonth >= 1 && filter.BirthMonth <= 12 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM birth_date) = $%d", len(args)+1))
		args = append(args, filter.BirthMonth)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"full_name":  true,
		"created_at": true,
		"birth_date": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", customerColumns, base, sortBy, order, size, offset)
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	return customers, total, nil
}

// FindByID loads a customer scoped to its company.
func (r *CustomerRepository) FindByID(ctx context.Context, companyID, id string) (*models.Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE company_id = $1 AND id = $2 LIMIT 1", customerColumns)
	var customer models.Customer
	if err := r.db.GetContext(ctx, &customer, query, companyID, id); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Create stores a new customer record.
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now

	const query = `INSERT INTO customers (id, company_id, full_name, email, phone, document, birth_date, notes, active, created_at, updated_at) VALUES (:id, :company_id, :full_name, :email, :phone, :document, :birth_date, :notes, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, customer); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

// Update modifies a customer record.
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	const query = `UPDATE customers SET full_name = :full_name, email = :email, phone = :phone, document = :document, birth_date = :birth_date, notes = :notes, active = :active, updated_at = :updated_at WHERE company_id = :company_id AND id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, customer); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a customer.
func (r *CustomerRepository) Deactivate(ctx context.Context, companyID, id string) error {
	const query = `UPDATE customers SET active = FALSE, updated_at = $3 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate customer: %w", err)
	}
	return nil
}

// CountActive returns the number of active customers for a company.
func (r *CustomerRepository) CountActive(ctx context.Context, companyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM customers WHERE company_id = $1 AND active = TRUE`
	var total int
	if err := r.db.GetContext(ctx, &total, query, companyID); err != nil {
		return 0, fmt.Errorf("count active customers: %w", err)
	}
	return total, nil
}

// CountBirthdaysInMonth returns how many active customers celebrate in month.
func (r *CustomerRepository) CountBirthdaysInMonth(ctx context.Context, companyID string, month int) (int, error) {
	const query = `SELECT COUNT(*) FROM customers WHERE company_id = $1 AND active = TRUE AND EXTRACT(MONTH FROM birth_date) = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, companyID, month); err != nil {
		return 0, fmt.Errorf("count birthdays: %w", err)
	}
	return total, nil
}

// ListForAudience resolves the customers matching a campaign audience. Only
// customers with a phone on record are returned.
func (r *CustomerRepository) ListForAudience(ctx context.Context, companyID string, birthMonth int, withUpcoming bool) ([]models.Customer, error) {
	base := fmt.Sprintf("SELECT %s FROM customers WHERE company_id = $1 AND active = TRUE AND phone <> ''", customerColumns)
	args := []interface{}{companyID}

	if birthMonth >= 1 && birthMonth <= 12 {
		base += fmt.Sprintf(" AND EXTRACT(MONTH FROM birth_date) = $%d", len(args)+1)
		args = append(args, birthMonth)
	}
	if withUpcoming {
		base += " AND id IN (SELECT customer_id FROM appointments WHERE company_id = $1 AND status = 'SCHEDULED' AND date >= CURRENT_DATE)"
	}
	base += " ORDER BY full_name ASC"

	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, base, args...); err != nil {
		return nil, fmt.Errorf("list campaign audience: %w", err)
	}
	return customers, nil
}
