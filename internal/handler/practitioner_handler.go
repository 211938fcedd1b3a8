package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	"github.com/matheuspdias/managerclin-public-sub002/internal/service"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/response"
)

// PractitionerHandler exposes professional and schedule template endpoints.
type PractitionerHandler struct {
	practitioners *service.PractitionerService
}

// NewPractitionerHandler constructs PractitionerHandler.
func NewPractitionerHandler(practitioners *service.PractitionerService) *PractitionerHandler {
	return &PractitionerHandler{practitioners: practitioners}
}

// List godoc
// @Summary List professionals
// @Tags Practitioners
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or specialty"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /practitioners [get]
func (h *PractitionerHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.PractitionerFilter{
		CompanyID: claims.CompanyID,
		Search:    strings.TrimSpace(c.Query("search")),
		Active:    queryBool(c, "active"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 20),
	}

	practitioners, total, err := h.practitioners.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, practitioners, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one professional
// @Tags Practitioners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Success 200 {object} response.Envelope
// @Router /practitioners/{id} [get]
func (h *PractitionerHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	practitioner, err := h.practitioners.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, practitioner, nil)
}

// Create godoc
// @Summary Register a professional
// @Tags Practitioners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreatePractitionerRequest true "Practitioner payload"
// @Success 201 {object} response.Envelope
// @Router /practitioners [post]
func (h *PractitionerHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreatePractitionerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	practitioner, err := h.practitioners.Create(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, practitioner)
}

// Update godoc
// @Summary Update a professional
// @Tags Practitioners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Param payload body dto.UpdatePractitionerRequest true "Practitioner payload"
// @Success 200 {object} response.Envelope
// @Router /practitioners/{id} [put]
func (h *PractitionerHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdatePractitionerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	practitioner, err := h.practitioners.Update(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, practitioner, nil)
}

// Delete godoc
// @Summary Deactivate a professional
// @Tags Practitioners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Success 204
// @Router /practitioners/{id} [delete]
func (h *PractitionerHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.practitioners.Deactivate(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListWorkingHours godoc
// @Summary Weekly schedule template of a professional
// @Tags Practitioners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Success 200 {object} response.Envelope
// @Router /practitioners/{id}/working-hours [get]
func (h *PractitionerHandler) ListWorkingHours(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	hours, err := h.practitioners.ListWorkingHours(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hours, nil)
}

// SetWorkingHours godoc
// @Summary Set the template for one weekday
// @Tags Practitioners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Param payload body dto.SetWorkingHoursRequest true "Working hours payload"
// @Success 200 {object} response.Envelope
// @Router /practitioners/{id}/working-hours [put]
func (h *PractitionerHandler) SetWorkingHours(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SetWorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	hours, err := h.practitioners.SetWorkingHours(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hours, nil)
}

// ClearWorkingHours godoc
// @Summary Remove the template for one weekday
// @Tags Practitioners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Param weekday path int true "Weekday (0 = Sunday)"
// @Success 204
// @Router /practitioners/{id}/working-hours/{weekday} [delete]
func (h *PractitionerHandler) ClearWorkingHours(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	weekday := queryIntParam(c, "weekday")
	if err := h.practitioners.ClearWorkingHours(c.Request.Context(), claims.CompanyID, c.Param("id"), weekday); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListExceptions godoc
// @Summary Date overrides within a range
// @Tags Practitioners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /practitioners/{id}/exceptions [get]
func (h *PractitionerHandler) ListExceptions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, -1, 0)
	to := now.AddDate(0, 3, 0)
	if v := c.Query("from"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			from = parsed
		}
	}
	if v := c.Query("to"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			to = parsed
		}
	}

	exceptions, err := h.practitioners.ListExceptions(c.Request.Context(), claims.CompanyID, c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exceptions, nil)
}

// CreateException godoc
// @Summary Record a date-specific schedule override
// @Tags Practitioners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Param payload body dto.CreateScheduleExceptionRequest true "Exception payload"
// @Success 201 {object} response.Envelope
// @Router /practitioners/{id}/exceptions [post]
func (h *PractitionerHandler) CreateException(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateScheduleExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	exception, err := h.practitioners.CreateException(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exception)
}

// DeleteException godoc
// @Summary Remove a date override
// @Tags Practitioners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Param exceptionId path string true "Exception ID"
// @Success 204
// @Router /practitioners/{id}/exceptions/{exceptionId} [delete]
func (h *PractitionerHandler) DeleteException(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.practitioners.DeleteException(c.Request.Context(), claims.CompanyID, c.Param("exceptionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
