package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/service"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/response"
)

// CertificateHandler exposes medical certificate endpoints.
type CertificateHandler struct {
	certificates *service.CertificateService
}

// NewCertificateHandler constructs CertificateHandler.
func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Issue godoc
// @Summary Issue a medical certificate
// @Tags Certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.IssueCertificateRequest true "Certificate payload"
// @Success 201 {object} response.Envelope
// @Router /certificates [post]
func (h *CertificateHandler) Issue(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.IssueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	certificate, err := h.certificates.Issue(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, certificate)
}

// Get godoc
// @Summary Get one certificate
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} response.Envelope
// @Router /certificates/{id} [get]
func (h *CertificateHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	certificate, err := h.certificates.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certificate, nil)
}

// ListByCustomer godoc
// @Summary Certificates issued to a patient
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Success 200 {object} response.Envelope
// @Router /customers/{customerId}/certificates [get]
func (h *CertificateHandler) ListByCustomer(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	certificates, err := h.certificates.ListByCustomer(c.Request.Context(), claims.CompanyID, c.Param("customerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certificates, nil)
}

// DownloadPDF godoc
// @Summary Download a certificate as PDF
// @Tags Certificates
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {file} binary
// @Router /certificates/{id}/pdf [get]
func (h *CertificateHandler) DownloadPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pdf, err := h.certificates.RenderPDF(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=certificate-%s.pdf", c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
