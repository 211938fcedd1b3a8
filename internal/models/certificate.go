package models

import "time"

// CertificateType enumerates the supported medical certificate kinds.
type CertificateType string

const (
	CertificateSickLeave  CertificateType = "SICK_LEAVE"
	CertificateAttendance CertificateType = "ATTENDANCE"
	CertificateCustom     CertificateType = "CUSTOM"
)

// Certificate represents an issued medical certificate.
type Certificate struct {
	ID             string          `db:"id" json:"id"`
	CompanyID      string          `db:"company_id" json:"company_id"`
	CustomerID     string          `db:"customer_id" json:"customer_id"`
	PractitionerID string          `db:"practitioner_id" json:"practitioner_id"`
	AppointmentID  *string         `db:"appointment_id" json:"appointment_id,omitempty"`
	Type           CertificateType `db:"type" json:"type"`
	Content        string          `db:"content" json:"content"`
	DaysOff        int             `db:"days_off" json:"days_off"`
	IssuedAt       time.Time       `db:"issued_at" json:"issued_at"`
	CustomerName   string          `db:"customer_name" json:"customer_name,omitempty"`
	PractName      string          `db:"practitioner_name" json:"practitioner_name,omitempty"`
	PractRegistry  string          `db:"practitioner_registry" json:"practitioner_registry,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
