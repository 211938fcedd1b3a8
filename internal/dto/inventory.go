package dto

// ProductRequest creates or updates an inventory product.
type ProductRequest struct {
	Name         string  `json:"name" validate:"required,min=1"`
	SKU          string  `json:"sku"`
	Quantity     int     `json:"quantity" validate:"min=0"`
	MinimumLevel int     `json:"minimum_level" validate:"min=0"`
	UnitCost     float64 `json:"unit_cost" validate:"min=0"`
}

// StockMovementRequest records stock entering or leaving inventory.
type StockMovementRequest struct {
	Type     string `json:"type" validate:"required,oneof=IN OUT"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Reason   string `json:"reason"`
}
