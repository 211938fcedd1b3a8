package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/service"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/response"
)

// TelemedicineHandler exposes telemedicine session endpoints.
type TelemedicineHandler struct {
	telemedicine *service.TelemedicineService
}

// NewTelemedicineHandler constructs TelemedicineHandler.
func NewTelemedicineHandler(telemedicine *service.TelemedicineService) *TelemedicineHandler {
	return &TelemedicineHandler{telemedicine: telemedicine}
}

// Create godoc
// @Summary Create a telemedicine session for an appointment
// @Tags Telemedicine
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTelemedicineSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /telemedicine/sessions [post]
func (h *TelemedicineHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateTelemedicineSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	session, err := h.telemedicine.Create(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Get godoc
// @Summary Get one telemedicine session
// @Tags Telemedicine
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /telemedicine/sessions/{id} [get]
func (h *TelemedicineHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.telemedicine.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// GetByAppointment godoc
// @Summary Telemedicine session attached to an appointment
// @Tags Telemedicine
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/telemedicine [get]
func (h *TelemedicineHandler) GetByAppointment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.telemedicine.GetByAppointment(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Start godoc
// @Summary Mark a session as started
// @Tags Telemedicine
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Session already started or finished"
// @Router /telemedicine/sessions/{id}/start [post]
func (h *TelemedicineHandler) Start(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.telemedicine.Start(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Finish godoc
// @Summary Mark a session as finished and record its duration
// @Tags Telemedicine
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Session is not running"
// @Router /telemedicine/sessions/{id}/finish [post]
func (h *TelemedicineHandler) Finish(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.telemedicine.Finish(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
