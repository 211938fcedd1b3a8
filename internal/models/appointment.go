package models

import "time"

// AppointmentStatus enumerates the appointment lifecycle.
type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "SCHEDULED"
	AppointmentInProgress AppointmentStatus = "IN_PROGRESS"
	AppointmentCompleted  AppointmentStatus = "COMPLETED"
	AppointmentCancelled  AppointmentStatus = "CANCELLED"
)

// Appointment represents a booked slot for a customer with a practitioner in
// a room. Date is a calendar day; StartTime/EndTime are "HH:MM" within it.
// Only non-CANCELLED appointments occupy time.
type Appointment struct {
	ID             string            `db:"id" json:"id"`
	CompanyID      string            `db:"company_id" json:"company_id"`
	PractitionerID string            `db:"practitioner_id" json:"practitioner_id"`
	RoomID         string            `db:"room_id" json:"room_id"`
	CustomerID     string            `db:"customer_id" json:"customer_id"`
	ServiceID      string            `db:"service_id" json:"service_id"`
	Date           time.Time         `db:"date" json:"date"`
	StartTime      string            `db:"start_time" json:"start_time"`
	EndTime        string            `db:"end_time" json:"end_time"`
	Status         AppointmentStatus `db:"status" json:"status"`
	Notes          string            `db:"notes" json:"notes"`
	CustomerName   string            `db:"customer_name" json:"customer_name,omitempty"`
	ServiceName    string            `db:"service_name" json:"service_name,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// AppointmentFilter captures listing criteria for appointments.
type AppointmentFilter struct {
	CompanyID      string
	PractitionerID string
	RoomID         string
	CustomerID     string
	Status         string
	DateFrom       *time.Time
	DateTo         *time.Time
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// ConflictDimension identifies which resource an overlap was detected on.
type ConflictDimension string

const (
	ConflictPractitioner ConflictDimension = "PRACTITIONER"
	ConflictRoom         ConflictDimension = "ROOM"
)

// AppointmentConflict describes an existing appointment that collides with a
// proposed slot, with enough detail to render a human-readable message.
type AppointmentConflict struct {
	AppointmentID string            `json:"appointment_id"`
	CustomerName  string            `json:"customer_name"`
	ServiceName   string            `json:"service_name"`
	StartTime     string            `json:"start_time"`
	EndTime       string            `json:"end_time"`
	Dimension     ConflictDimension `json:"dimension"`
}

// AppointmentConflictError is returned when a proposed slot collides with
// existing bookings.
type AppointmentConflictError struct {
	Message   string                `json:"message"`
	Conflicts []AppointmentConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *AppointmentConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
