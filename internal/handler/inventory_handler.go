package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	"github.com/matheuspdias/managerclin-public-sub002/internal/service"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/response"
)

// InventoryHandler exposes product catalog and stock movement endpoints.
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler constructs InventoryHandler.
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// ListProducts godoc
// @Summary List products
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or SKU search"
// @Param active query bool false "Active filter"
// @Param low_stock query bool false "Only products at or below minimum stock"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /products [get]
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ProductFilter{
		CompanyID: claims.CompanyID,
		Active:    queryBool(c, "active"),
		Search:    c.Query("search"),
		LowStock:  c.Query("low_stock") == "true",
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 20),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}

	products, total, err := h.inventory.ListProducts(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, products, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// GetProduct godoc
// @Summary Get one product
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} response.Envelope
// @Router /products/{id} [get]
func (h *InventoryHandler) GetProduct(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	product, err := h.inventory.GetProduct(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ProductRequest true "Product payload"
// @Success 201 {object} response.Envelope
// @Router /products [post]
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	product, err := h.inventory.CreateProduct(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, product)
}

// UpdateProduct godoc
// @Summary Update a product
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param payload body dto.ProductRequest true "Product payload"
// @Success 200 {object} response.Envelope
// @Router /products/{id} [put]
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	product, err := h.inventory.UpdateProduct(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product, nil)
}

// RecordMovement godoc
// @Summary Record a stock movement
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param payload body dto.StockMovementRequest true "Movement payload"
// @Success 201 {object} response.Envelope
// @Router /products/{id}/movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	movement, err := h.inventory.RecordMovement(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, movement)
}

// ListMovements godoc
// @Summary Stock movement history for a product
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} response.Envelope
// @Router /products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	movements, err := h.inventory.ListMovements(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, movements, nil)
}
