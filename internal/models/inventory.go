package models

import "time"

// Product represents an inventory item tracked by the clinic.
type Product struct {
	ID           string    `db:"id" json:"id"`
	CompanyID    string    `db:"company_id" json:"company_id"`
	Name         string    `db:"name" json:"name"`
	SKU          string    `db:"sku" json:"sku"`
	Quantity     int       `db:"quantity" json:"quantity"`
	MinimumLevel int       `db:"minimum_level" json:"minimum_level"`
	UnitCost     float64   `db:"unit_cost" json:"unit_cost"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ProductFilter captures listing criteria for products.
type ProductFilter struct {
	CompanyID string
	Active    *bool
	Search    string
	LowStock  bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StockMovementType enumerates stock movement directions.
type StockMovementType string

const (
	StockMovementIn  StockMovementType = "IN"
	StockMovementOut StockMovementType = "OUT"
)

// StockMovement records a single inventory adjustment.
type StockMovement struct {
	ID        string            `db:"id" json:"id"`
	CompanyID string            `db:"company_id" json:"company_id"`
	ProductID string            `db:"product_id" json:"product_id"`
	UserID    *string           `db:"user_id" json:"user_id,omitempty"`
	Type      StockMovementType `db:"type" json:"type"`
	Quantity  int               `db:"quantity" json:"quantity"`
	Reason    string            `db:"reason" json:"reason"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}
