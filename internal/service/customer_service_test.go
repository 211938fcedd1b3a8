package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type customerRepoStub struct {
	customer    *models.Customer
	deactivated []string
}

func (s *customerRepoStub) List(ctx context.Context, filter models.CustomerFilter) ([]models.Customer, int, error) {
	if s.customer == nil {
		return nil, 0, nil
	}
	return []models.Customer{*s.customer}, 1, nil
}

func (s *customerRepoStub) FindByID(ctx context.Context, companyID, id string) (*models.Customer, error) {
	if s.customer == nil {
		return nil, sql.ErrNoRows
	}
	return s.customer, nil
}

func (s *customerRepoStub) Create(ctx context.Context, customer *models.Customer) error {
	customer.ID = "cust-1"
	s.customer = customer
	return nil
}

func (s *customerRepoStub) Update(ctx context.Context, customer *models.Customer) error {
	s.customer = customer
	return nil
}

func (s *customerRepoStub) Deactivate(ctx context.Context, companyID, id string) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

func TestCustomerCreateNormalizesPhone(t *testing.T) {
	repo := &customerRepoStub{}
	svc := NewCustomerService(repo, nil, nil)

	customer, err := svc.Create(context.Background(), "company-1", dto.CreateCustomerRequest{
		FullName:  "Maria Silva",
		Phone:     "(11) 8765-4321",
		BirthDate: "1990-03-15",
	})
	require.NoError(t, err)

	// legacy 8-digit number gains the mobile 9 and the country code
	assert.Equal(t, "5511987654321", customer.Phone)
	assert.True(t, customer.Active)
	require.NotNil(t, customer.BirthDate)
	assert.Equal(t, time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC), *customer.BirthDate)
}

func TestCustomerCreateWithoutPhoneOrBirthDate(t *testing.T) {
	repo := &customerRepoStub{}
	svc := NewCustomerService(repo, nil, nil)

	customer, err := svc.Create(context.Background(), "company-1", dto.CreateCustomerRequest{
		FullName: "João Souza",
	})
	require.NoError(t, err)

	assert.Empty(t, customer.Phone)
	assert.Nil(t, customer.BirthDate)
}

func TestCustomerUpdateNormalizesPhone(t *testing.T) {
	repo := &customerRepoStub{
		customer: &models.Customer{ID: "cust-1", CompanyID: "company-1", FullName: "Maria Silva", Active: true},
	}
	svc := NewCustomerService(repo, nil, nil)

	customer, err := svc.Update(context.Background(), "company-1", "cust-1", dto.UpdateCustomerRequest{
		FullName: "Maria Silva",
		Phone:    "21 91234-5678",
	})
	require.NoError(t, err)

	assert.Equal(t, "5521912345678", customer.Phone)
}

func TestCustomerGetNotFound(t *testing.T) {
	svc := NewCustomerService(&customerRepoStub{}, nil, nil)

	_, err := svc.Get(context.Background(), "company-1", "missing")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCustomerDeactivate(t *testing.T) {
	repo := &customerRepoStub{
		customer: &models.Customer{ID: "cust-1", CompanyID: "company-1", FullName: "Maria Silva", Active: true},
	}
	svc := NewCustomerService(repo, nil, nil)

	err := svc.Deactivate(context.Background(), "company-1", "cust-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cust-1"}, repo.deactivated)
}
