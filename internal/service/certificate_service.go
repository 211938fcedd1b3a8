package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/export"
)

type certificateRepository interface {
	Create(ctx context.Context, certificate *models.Certificate) error
	FindByID(ctx context.Context, companyID, id string) (*models.Certificate, error)
	ListByCustomer(ctx context.Context, companyID, customerID string) ([]models.Certificate, error)
}

type certificatePractitionerReader interface {
	FindByID(ctx context.Context, companyID, id string) (*models.Practitioner, error)
}

type documentRenderer interface {
	RenderDocument(doc export.Document) ([]byte, error)
}

// CertificateService issues medical certificates and renders them as PDFs.
type CertificateService struct {
	repo          certificateRepository
	customers     appointmentCustomerReader
	practitioners certificatePractitionerReader
	pdf           documentRenderer
	audit         auditLogger
	clinicName    string
	cityName      string
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewCertificateService constructs a CertificateService.
func NewCertificateService(
	repo certificateRepository,
	customers appointmentCustomerReader,
	practitioners certificatePractitionerReader,
	pdf documentRenderer,
	audit auditLogger,
	clinicName, cityName string,
	validate *validator.Validate,
	logger *zap.Logger,
) *CertificateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		repo:          repo,
		customers:     customers,
		practitioners: practitioners,
		pdf:           pdf,
		audit:         audit,
		clinicName:    clinicName,
		cityName:      cityName,
		validator:     validate,
		logger:        logger,
	}
}

// Issue creates a certificate record with its generated text content.
func (s *CertificateService) Issue(ctx context.Context, claims *models.JWTClaims, req dto.IssueCertificateRequest) (*models.Certificate, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid certificate payload")
	}
	if models.CertificateType(req.Type) == models.CertificateSickLeave && req.DaysOff < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sick leave certificates require days_off")
	}
	if models.CertificateType(req.Type) == models.CertificateCustom && req.CustomText == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "custom certificates require custom_text")
	}

	customer, err := s.customers.FindByID(ctx, claims.CompanyID, req.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load customer")
	}
	pract, err := s.practitioners.FindByID(ctx, claims.CompanyID, req.PractitionerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "practitioner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load practitioner")
	}

	certificate := &models.Certificate{
		CompanyID:      claims.CompanyID,
		CustomerID:     customer.ID,
		PractitionerID: pract.ID,
		Type:           models.CertificateType(req.Type),
		DaysOff:        req.DaysOff,
		CustomerName:   customer.FullName,
		PractName:      pract.FullName,
		PractRegistry:  pract.Registry,
	}
	if req.AppointmentID != "" {
		certificate.AppointmentID = &req.AppointmentID
	}
	certificate.Content = s.composeContent(certificate, req.CustomText)

	if err := s.repo.Create(ctx, certificate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}

	s.emitIssueAudit(ctx, claims, certificate)
	return certificate, nil
}

// Get loads one certificate.
func (s *CertificateService) Get(ctx context.Context, companyID, id string) (*models.Certificate, error) {
	certificate, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	return certificate, nil
}

// ListByCustomer returns certificates issued for a patient.
func (s *CertificateService) ListByCustomer(ctx context.Context, companyID, customerID string) ([]models.Certificate, error) {
	certificates, err := s.repo.ListByCustomer(ctx, companyID, customerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	return certificates, nil
}

// RenderPDF produces the printable PDF for a certificate.
func (s *CertificateService) RenderPDF(ctx context.Context, companyID, id string) ([]byte, error) {
	certificate, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	doc := export.Document{
		Letterhead: s.clinicName,
		Title:      certificateTitle(certificate.Type),
		Paragraphs: []string{certificate.Content},
		Footer:     fmt.Sprintf("%s, %s", s.cityName, certificate.IssuedAt.Format("02/01/2006")),
		Signature:  fmt.Sprintf("%s - %s", certificate.PractName, certificate.PractRegistry),
	}
	payload, err := s.pdf.RenderDocument(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate pdf")
	}
	return payload, nil
}

func (s *CertificateService) composeContent(certificate *models.Certificate, customText string) string {
	switch certificate.Type {
	case models.CertificateSickLeave:
		return fmt.Sprintf(
			"Atesto, para os devidos fins, que %s esteve sob meus cuidados profissionais e necessita de afastamento de suas atividades por %d dia(s).",
			certificate.CustomerName, certificate.DaysOff)
	case models.CertificateAttendance:
		return fmt.Sprintf(
			"Atesto, para os devidos fins, que %s compareceu a atendimento nesta clínica na presente data.",
			certificate.CustomerName)
	default:
		return customText
	}
}

func certificateTitle(kind models.CertificateType) string {
	switch kind {
	case models.CertificateAttendance:
		return "Declaração de Comparecimento"
	default:
		return "Atestado Médico"
	}
}

func (s *CertificateService) emitIssueAudit(ctx context.Context, claims *models.JWTClaims, certificate *models.Certificate) {
	if s.audit == nil {
		return
	}
	newValues, _ := json.Marshal(map[string]interface{}{
		"certificate_id": certificate.ID,
		"type":           certificate.Type,
		"customer_id":    certificate.CustomerID,
	})
	log := &models.AuditLog{
		CompanyID:  claims.CompanyID,
		UserID:     &claims.UserID,
		Action:     models.AuditActionCertificateIssue,
		Resource:   "certificate",
		ResourceID: &certificate.ID,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "certificate-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record certificate audit", zap.Error(err))
	}
}
