package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/phone"
)

type customerRepository interface {
	List(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, int, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	Deactivate(ctx context.Context, companyID, id string) error
}

// CustomerService manages patient records. Phone numbers are normalised to
// the canonical 55-prefixed form on every write.
type CustomerService struct {
	repo      customerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(repo customerRepository, validate *validator.Validate, logger *zap.Logger) *CustomerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{repo: repo, validator: validate, logger: logger}
}

// List returns patients for the authenticated tenant.
func (s *CustomerService) List(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, int, error) {
	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list customers")
	}
	return customers, total, nil
}

// Get loads one patient record.
func (s *CustomerService) Get(ctx context.Context, companyID, id string) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load customer")
	}
	return customer, nil
}

// Create registers a new patient.
func (s *CustomerService) Create(ctx context.Context, companyID string, req dto.CreateCustomerRequest) (*models.Customer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid customer payload")
	}

	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
	}

	customer := &models.Customer{
		CompanyID: companyID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     phone.Normalize(req.Phone),
		Document:  req.Document,
		BirthDate: birthDate,
		Notes:     req.Notes,
		Active:    true,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create customer")
	}
	return customer, nil
}

// Update edits an existing patient record.
func (s *CustomerService) Update(ctx context.Context, companyID, id string, req dto.UpdateCustomerRequest) (*models.Customer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid customer payload")
	}

	customer, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
	}

	customer.FullName = req.FullName
	customer.Email = req.Email
	customer.Phone = phone.Normalize(req.Phone)
	customer.Document = req.Document
	customer.BirthDate = birthDate
	customer.Notes = req.Notes
	if req.Active != nil {
		customer.Active = *req.Active
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update customer")
	}
	return customer, nil
}

// Deactivate soft-deletes a patient.
func (s *CustomerService) Deactivate(ctx context.Context, companyID, id string) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, companyID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate customer")
	}
	return nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
