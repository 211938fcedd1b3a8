package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	"github.com/matheuspdias/managerclin-public-sub002/internal/service"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/response"
)

// AppointmentHandler exposes booking and availability endpoints.
type AppointmentHandler struct {
	appointments  *service.AppointmentService
	availability  *service.AvailabilityService
	notifications *service.NotificationService
}

// NewAppointmentHandler constructs AppointmentHandler.
func NewAppointmentHandler(appointments *service.AppointmentService, availability *service.AvailabilityService, notifications *service.NotificationService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, availability: availability, notifications: notifications}
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param practitioner_id query string false "Filter by practitioner"
// @Param room_id query string false "Filter by room"
// @Param customer_id query string false "Filter by customer"
// @Param status query string false "Filter by status"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.AppointmentFilter{
		CompanyID:      claims.CompanyID,
		PractitionerID: c.Query("practitioner_id"),
		RoomID:         c.Query("room_id"),
		CustomerID:     c.Query("customer_id"),
		Status:         c.Query("status"),
		Page:           queryInt(c, "page", 1),
		PageSize:       queryInt(c, "limit", 20),
	}
	if v := c.Query("from"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if v := c.Query("to"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateTo = &parsed
		}
	}

	appointments, total, err := h.appointments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointments, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one appointment
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	appointment, err := h.appointments.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// Create godoc
// @Summary Book an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAppointmentRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Practitioner or room conflict"
// @Failure 422 {object} response.Envelope "Practitioner unavailable on this date"
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	appointment, err := h.appointments.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appointment)
}

// Update godoc
// @Summary Reschedule or edit an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param payload body dto.UpdateAppointmentRequest true "Appointment payload"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	appointment, err := h.appointments.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// UpdateStatus godoc
// @Summary Transition an appointment's status
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param payload body dto.UpdateAppointmentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	appointment, err := h.appointments.UpdateStatus(c.Request.Context(), claimsFromContext(c), c.Param("id"), models.AppointmentStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// AvailableSlots godoc
// @Summary Free slots for a practitioner on a date
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param practitioner_id query string true "Practitioner ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param room_id query string false "Restrict to a room"
// @Param service_id query string false "Slot length follows this procedure's duration"
// @Success 200 {object} response.Envelope
// @Router /appointments/available-slots [get]
func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	practitionerID := c.Query("practitioner_id")
	if practitionerID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "practitioner_id is required"))
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	slots, err := h.availability.GetAvailableSlots(c.Request.Context(), claims.CompanyID, practitionerID, c.Query("room_id"), c.Query("service_id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// CheckConflicts godoc
// @Summary Probe a proposed slot for conflicts
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ConflictCheckRequest true "Proposed slot"
// @Success 200 {object} response.Envelope
// @Router /appointments/check-conflicts [post]
func (h *AppointmentHandler) CheckConflicts(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.availability.CheckConflicts(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListNotifications godoc
// @Summary Delivery history of an appointment's messages
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/notifications [get]
func (h *AppointmentHandler) ListNotifications(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	notifications, err := h.notifications.ListByAppointment(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}
