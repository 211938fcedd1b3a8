package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	"github.com/matheuspdias/managerclin-public-sub002/internal/service"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/response"
)

// FinanceHandler exposes the financial ledger endpoints.
type FinanceHandler struct {
	finance *service.FinanceService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// List godoc
// @Summary List transactions
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param type query string false "INCOME or EXPENSE"
// @Param category query string false "Category filter"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /finance/transactions [get]
func (h *FinanceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.TransactionFilter{
		CompanyID: claims.CompanyID,
		Type:      c.Query("type"),
		Category:  c.Query("category"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 20),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if from, ok := queryDate(c, "from"); ok {
		filter.DateFrom = &from
	}
	if to, ok := queryDate(c, "to"); ok {
		filter.DateTo = &to
	}

	transactions, total, err := h.finance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transactions, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one transaction
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Envelope
// @Router /finance/transactions/{id} [get]
func (h *FinanceHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	transaction, err := h.finance.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transaction, nil)
}

// Create godoc
// @Summary Create a transaction
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.TransactionRequest true "Transaction payload"
// @Success 201 {object} response.Envelope
// @Router /finance/transactions [post]
func (h *FinanceHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	transaction, err := h.finance.Create(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, transaction)
}

// Update godoc
// @Summary Update a transaction
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param payload body dto.TransactionRequest true "Transaction payload"
// @Success 200 {object} response.Envelope
// @Router /finance/transactions/{id} [put]
func (h *FinanceHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	transaction, err := h.finance.Update(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transaction, nil)
}

// Delete godoc
// @Summary Delete a transaction
// @Tags Finance
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204
// @Router /finance/transactions/{id} [delete]
func (h *FinanceHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.finance.Delete(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Financial summary for a period
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param from query string false "Start date (YYYY-MM-DD), defaults to first day of the current month"
// @Param to query string false "End date (YYYY-MM-DD), defaults to now"
// @Success 200 {object} response.Envelope
// @Router /finance/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	from, to := periodFromQuery(c)
	summary, err := h.finance.Summary(c.Request.Context(), claims.CompanyID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportCSV godoc
// @Summary Export transactions as CSV
// @Tags Finance
// @Produce text/csv
// @Security BearerAuth
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /finance/export [get]
func (h *FinanceHandler) ExportCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	from, to := periodFromQuery(c)
	data, err := h.finance.ExportCSV(c.Request.Context(), claims.CompanyID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s-%s.csv", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

// periodFromQuery resolves the from/to query pair, defaulting to the
// current month so the summary endpoints always have a window.
func periodFromQuery(c *gin.Context) (time.Time, time.Time) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now

	if parsed, ok := queryDate(c, "from"); ok {
		from = parsed
	}
	if parsed, ok := queryDate(c, "to"); ok {
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to
}
