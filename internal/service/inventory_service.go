package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type inventoryRepository interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	FindProductByID(ctx context.Context, companyID, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	ApplyMovement(ctx context.Context, movement *models.StockMovement, delta int) error
	ListMovements(ctx context.Context, companyID, productID string) ([]models.StockMovement, error)
}

// InventoryService tracks clinic consumables. Quantity is only adjusted
// through movements so every change leaves a trail.
type InventoryService struct {
	repo      inventoryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInventoryService constructs an InventoryService.
func NewInventoryService(repo inventoryRepository, validate *validator.Validate, logger *zap.Logger) *InventoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{repo: repo, validator: validate, logger: logger}
}

// ListProducts returns products, optionally only those at or below their
// minimum level.
func (s *InventoryService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list products")
	}
	return products, total, nil
}

// GetProduct loads one product.
func (s *InventoryService) GetProduct(ctx context.Context, companyID, id string) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
	}
	return product, nil
}

// CreateProduct registers a product with its opening quantity.
func (s *InventoryService) CreateProduct(ctx context.Context, companyID string, req dto.ProductRequest) (*models.Product, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid product payload")
	}
	product := &models.Product{
		CompanyID:    companyID,
		Name:         req.Name,
		SKU:          req.SKU,
		Quantity:     req.Quantity,
		MinimumLevel: req.MinimumLevel,
		UnitCost:     req.UnitCost,
		Active:       true,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create product")
	}
	return product, nil
}

// UpdateProduct edits product metadata. Quantity is not editable here; use
// RecordMovement instead.
func (s *InventoryService) UpdateProduct(ctx context.Context, companyID, id string, req dto.ProductRequest) (*models.Product, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid product payload")
	}
	product, err := s.GetProduct(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	product.Name = req.Name
	product.SKU = req.SKU
	product.MinimumLevel = req.MinimumLevel
	product.UnitCost = req.UnitCost
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update product")
	}
	return product, nil
}

// RecordMovement applies a stock movement, rejecting withdrawals beyond the
// available quantity.
func (s *InventoryService) RecordMovement(ctx context.Context, claims *models.JWTClaims, productID string, req dto.StockMovementRequest) (*models.StockMovement, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid movement payload")
	}

	product, err := s.GetProduct(ctx, claims.CompanyID, productID)
	if err != nil {
		return nil, err
	}

	delta := req.Quantity
	if models.StockMovementType(req.Type) == models.StockMovementOut {
		if req.Quantity > product.Quantity {
			return nil, appErrors.Clone(appErrors.ErrValidation, "movement exceeds available quantity")
		}
		delta = -req.Quantity
	}

	movement := &models.StockMovement{
		CompanyID: claims.CompanyID,
		ProductID: product.ID,
		UserID:    &claims.UserID,
		Type:      models.StockMovementType(req.Type),
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	}
	if err := s.repo.ApplyMovement(ctx, movement, delta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply stock movement")
	}
	return movement, nil
}

// ListMovements returns the movement history of one product.
func (s *InventoryService) ListMovements(ctx context.Context, companyID, productID string) ([]models.StockMovement, error) {
	if _, err := s.GetProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}
	movements, err := s.repo.ListMovements(ctx, companyID, productID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stock movements")
	}
	return movements, nil
}
