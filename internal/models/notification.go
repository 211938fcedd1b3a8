package models

import "time"

// NotificationKind enumerates appointment notification templates.
type NotificationKind string

const (
	NotificationConfirmation NotificationKind = "CONFIRMATION"
	NotificationReminder     NotificationKind = "REMINDER"
	NotificationCancellation NotificationKind = "CANCELLATION"
)

// NotificationStatus enumerates notification delivery states.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// Notification is a WhatsApp message tied to an appointment.
type Notification struct {
	ID            string             `db:"id" json:"id"`
	CompanyID     string             `db:"company_id" json:"company_id"`
	AppointmentID string             `db:"appointment_id" json:"appointment_id"`
	CustomerID    string             `db:"customer_id" json:"customer_id"`
	Phone         string             `db:"phone" json:"phone"`
	Kind          NotificationKind   `db:"kind" json:"kind"`
	Message       string             `db:"message" json:"message"`
	Status        NotificationStatus `db:"status" json:"status"`
	Error         *string            `db:"error" json:"error,omitempty"`
	SentAt        *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}
