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

// InventoryRepository provides persistence for products and stock movements.
type InventoryRepository struct {
	db *sqlx.DB
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

const productColumns = "id, company_id, name, sku, quantity, minimum_level, unit_cost, active, created_at, updated_at"

// ListProducts returns products with filtering and pagination.
func (r *InventoryRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	base := "FROM products WHERE company_id = $1"
	args := []interface{}{filter.CompanyID}
	var conditions []string

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(sku) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.LowStock {
		conditions = append(conditions, "quantity <= minimum_level")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"quantity":   true,
		"created_at": true,
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", productColumns, base, sortBy, order, size, offset)
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	return products, total, nil
}

// FindProductByID loads a product scoped to its company.
func (r *InventoryRepository) FindProductByID(ctx context.Context, companyID, id string) (*models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE company_id = $1 AND id = $2 LIMIT 1", productColumns)
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, companyID, id); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct stores a new product.
func (r *InventoryRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	const query = `INSERT INTO products (id, company_id, name, sku, quantity, minimum_level, unit_cost, active, created_at, updated_at) VALUES (:id, :company_id, :name, :sku, :quantity, :minimum_level, :unit_cost, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// UpdateProduct modifies product metadata (not the quantity; see ApplyMovement).
func (r *InventoryRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	const query = `UPDATE products SET name = :name, sku = :sku, minimum_level = :minimum_level, unit_cost = :unit_cost, active = :active, updated_at = :updated_at WHERE company_id = :company_id AND id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// ApplyMovement records a stock movement and adjusts the product quantity in
// one transaction. delta is positive for IN and negative for OUT.
func (r *InventoryRepository) ApplyMovement(ctx context.Context, movement *models.StockMovement, delta int) error {
	if movement.ID == "" {
		movement.ID = uuid.NewString()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stock movement: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO stock_movements (id, company_id, product_id, user_id, type, quantity, reason, created_at) VALUES (:id, :company_id, :product_id, :user_id, :type, :quantity, :reason, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, movement); err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}

	const updateQuery = `UPDATE products SET quantity = quantity + $3, updated_at = $4 WHERE company_id = $1 AND id = $2`
	if _, err = tx.ExecContext(ctx, updateQuery, movement.CompanyID, movement.ProductID, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("adjust product quantity: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit stock movement: %w", err)
	}
	return nil
}

// ListMovements returns a product's stock movements, newest first.
func (r *InventoryRepository) ListMovements(ctx context.Context, companyID, productID string) ([]models.StockMovement, error) {
	const query = `SELECT id, company_id, product_id, user_id, type, quantity, reason, created_at FROM stock_movements WHERE company_id = $1 AND product_id = $2 ORDER BY created_at DESC`
	var movements []models.StockMovement
	if err := r.db.SelectContext(ctx, &movements, query, companyID, productID); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return movements, nil
}

// CountLowStock returns how many active products sit at or below minimum.
func (r *InventoryRepository) CountLowStock(ctx context.Context, companyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM products WHERE company_id = $1 AND active = TRUE AND quantity <= minimum_level`
	var total int
	if err := r.db.GetContext(ctx, &total, query, companyID); err != nil {
		return 0, fmt.Errorf("count low stock products: %w", err)
	}
	return total, nil
}
