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

// RoomRepository provides persistence for consultation rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns every room for a company.
func (r *RoomRepository) List(ctx context.Context, companyID string) ([]models.Room, error) {
	const query = `SELECT id, company_id, name, active, created_at, updated_at FROM rooms WHERE company_id = $1 ORDER BY name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, companyID); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads a room scoped to its company.
func (r *RoomRepository) FindByID(ctx context.Context, companyID, id string) (*models.Room, error) {
	const query = `SELECT id, company_id, name, active, created_at, updated_at FROM rooms WHERE company_id = $1 AND id = $2 LIMIT 1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, companyID, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create stores a new room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	const query = `INSERT INTO rooms (id, company_id, name, active, created_at, updated_at) VALUES (:id, :company_id, :name, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET name = :name, active = :active, updated_at = :updated_at WHERE company_id = :company_id AND id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// ServiceRepository provides persistence for the procedure catalog.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository creates a new service repository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = "id, company_id, name, duration_minutes, price, active, created_at, updated_at"

// List returns services for a company with filtering and pagination.
func (r *ServiceRepository) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error) {
	base := "FROM services WHERE company_id = $1"
	args := []interface{}{filter.CompanyID}
	var conditions []string

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":             true,
		"price":            true,
		"duration_minutes": true,
		"created_at":       true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", serviceColumns, base, sortBy, order, size, offset)
	var services []models.Service
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list services: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	return services, total, nil
}

// FindByID loads a service scoped to its company.
func (r *ServiceRepository) FindByID(ctx context.Context, companyID, id string) (*models.Service, error) {
	query := fmt.Sprintf("SELECT %s FROM services WHERE company_id = $1 AND id = $2 LIMIT 1", serviceColumns)
	var service models.Service
	if err := r.db.GetContext(ctx, &service, query, companyID, id); err != nil {
		return nil, err
	}
	return &service, nil
}

// Create stores a new service.
func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if service.ID == "" {
		service.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if service.CreatedAt.IsZero() {
		service.CreatedAt = now
	}
	service.UpdatedAt = now

	const query = `INSERT INTO services (id, company_id, name, duration_minutes, price, active, created_at, updated_at) VALUES (:id, :company_id, :name, :duration_minutes, :price, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, service); err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// Update modifies a service.
func (r *ServiceRepository) Update(ctx context.Context, service *models.Service) error {
	service.UpdatedAt = time.Now().UTC()
	const query = `UPDATE services SET name = :name, duration_minutes = :duration_minutes, price = :price, active = :active, updated_at = :updated_at WHERE company_id = :company_id AND id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, service); err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a service.
func (r *ServiceRepository) Deactivate(ctx context.Context, companyID, id string) error {
	const query = `UPDATE services SET active = FALSE, updated_at = $3 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate service: %w", err)
	}
	return nil
}
