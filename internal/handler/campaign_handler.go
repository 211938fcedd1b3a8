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

// CampaignHandler exposes WhatsApp campaign endpoints.
type CampaignHandler struct {
	campaigns *service.CampaignService
}

// NewCampaignHandler constructs CampaignHandler.
func NewCampaignHandler(campaigns *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

// List godoc
// @Summary List campaigns
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.CampaignFilter{
		CompanyID: claims.CompanyID,
		Status:    c.Query("status"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 20),
	}

	campaigns, total, err := h.campaigns.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaigns, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	campaign, err := h.campaigns.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaign, nil)
}

// Create godoc
// @Summary Create a campaign with an audience snapshot
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCampaignRequest true "Campaign payload"
// @Success 201 {object} response.Envelope
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	campaign, err := h.campaigns.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, campaign)
}

// Dispatch godoc
// @Summary Start sending a draft campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Campaign is not a draft"
// @Router /campaigns/{id}/dispatch [post]
func (h *CampaignHandler) Dispatch(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	campaign, err := h.campaigns.Dispatch(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaign, nil)
}

// Progress godoc
// @Summary Delivery progress counters for a campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Router /campaigns/{id}/progress [get]
func (h *CampaignHandler) Progress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	progress, err := h.campaigns.Progress(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}
