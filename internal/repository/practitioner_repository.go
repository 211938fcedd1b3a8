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

// PractitionerRepository provides persistence for practitioners.
type PractitionerRepository struct {
	db *sqlx.DB
}

// NewPractitionerRepository creates a new practitioner repository.
func NewPractitionerRepository(db *sqlx.DB) *PractitionerRepository {
	return &PractitionerRepository{db: db}
}

const practitionerColumns = "id, company_id, user_id, full_name, specialty, registry, email, phone, active, created_at, updated_at"

// List returns practitioners for a company with filtering and pagination.
func (r *PractitionerRepository) List(ctx context.Context, filter models.PractitionerFilter) ([]models.Practitioner, int, error) {
	base := "FROM practitioners WHERE company_id = $1"
	args := []interface{}{filter.CompanyID}
	var conditions []string

	if filter.Specialty != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(specialty) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Specialty)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"full_name":  true,
		"specialty":  true,
		"created_at": true,
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", practitionerColumns, base, sortBy, order, size, offset)
	var practitioners []models.Practitioner
	if err := r.db.SelectContext(ctx, &practitioners, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list practitioners: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count practitioners: %w", err)
	}

	return practitioners, total, nil
}

// FindByID loads a practitioner scoped to its company.
func (r *PractitionerRepository) FindByID(ctx context.Context, companyID, id string) (*models.Practitioner, error) {
	query := fmt.Sprintf("SELECT %s FROM practitioners WHERE company_id = $1 AND id = $2 LIMIT 1", practitionerColumns)
	var pract models.Practitioner
	if err := r.db.GetContext(ctx, &pract, query, companyID, id); err != nil {
		return nil, err
	}
	return &pract, nil
}

// Create stores a new practitioner record.
func (r *PractitionerRepository) Create(ctx context.Context, pract *models.Practitioner) error {
	if pract.ID == "" {
		pract.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pract.CreatedAt.IsZero() {
		pract.CreatedAt = now
	}
	pract.UpdatedAt = now

	const query = `INSERT INTO practitioners (id, company_id, user_id, full_name, specialty, registry, email, phone, active, created_at, updated_at) VALUES (:id, :company_id, :user_id, :full_name, :specialty, :registry, :email, :phone, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pract); err != nil {
		return fmt.Errorf("create practitioner: %w", err)
	}
	return nil
}

// Update modifies a practitioner record.
func (r *PractitionerRepository) Update(ctx context.Context, pract *models.Practitioner) error {
	pract.UpdatedAt = time.Now().UTC()
	const query = `UPDATE practitioners SET full_name = :full_name, specialty = :specialty, registry = :registry, email = :email, phone = :phone, active = :active, updated_at = :updated_at WHERE company_id = :company_id AND id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, pract); err != nil {
		return fmt.Errorf("update practitioner: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a practitioner.
func (r *PractitionerRepository) Deactivate(ctx context.Context, companyID, id string) error {
	const query = `UPDATE practitioners SET active = FALSE, updated_at = $3 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate practitioner: %w", err)
	}
	return nil
}
