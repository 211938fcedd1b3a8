package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
)

// CertificateRepository provides persistence for medical certificates.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository creates a new certificate repository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

const certificateJoined = `c.id, c.company_id, c.customer_id, c.practitioner_id, c.appointment_id, c.type, c.content, c.days_off, c.issued_at, c.created_at, cu.full_name AS customer_name, p.full_name AS practitioner_name, p.registry AS practitioner_registry FROM certificates c JOIN customers cu ON cu.id = c.customer_id JOIN practitioners p ON p.id = c.practitioner_id`

// Create stores an issued certificate.
func (r *CertificateRepository) Create(ctx context.Context, certificate *models.Certificate) error {
	if certificate.ID == "" {
		certificate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if certificate.CreatedAt.IsZero() {
		certificate.CreatedAt = now
	}
	if certificate.IssuedAt.IsZero() {
		certificate.IssuedAt = now
	}

	const query = `INSERT INTO certificates (id, company_id, customer_id, practitioner_id, appointment_id, type, content, days_off, issued_at, created_at) VALUES (:id, :company_id, :customer_id, :practitioner_id, :appointment_id, :type, :content, :days_off, :issued_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, certificate); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

// FindByID loads a certificate with customer and practitioner names.
func (r *CertificateRepository) FindByID(ctx context.Context, companyID, id string) (*models.Certificate, error) {
	query := fmt.Sprintf("SELECT %s WHERE c.company_id = $1 AND c.id = $2 LIMIT 1", certificateJoined)
	var certificate models.Certificate
	if err := r.db.GetContext(ctx, &certificate, query, companyID, id); err != nil {
		return nil, err
	}
	return &certificate, nil
}

// ListByCustomer returns certificates issued for a customer, newest first.
func (r *CertificateRepository) ListByCustomer(ctx context.Context, companyID, customerID string) ([]models.Certificate, error) {
	query := fmt.Sprintf("SELECT %s WHERE c.company_id = $1 AND c.customer_id = $2 ORDER BY c.issued_at DESC", certificateJoined)
	var certificates []models.Certificate
	if err := r.db.SelectContext(ctx, &certificates, query, companyID, customerID); err != nil {
		return nil, fmt.Errorf("list certificates by customer: %w", err)
	}
	return certificates, nil
}
