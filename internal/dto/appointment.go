package dto

// CreateAppointmentRequest books a slot for a customer.
type CreateAppointmentRequest struct {
	PractitionerID string `json:"practitioner_id" validate:"required"`
	RoomID         string `json:"room_id"`
	CustomerID     string `json:"customer_id" validate:"required"`
	ServiceID      string `json:"service_id" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
	Notes          string `json:"notes"`
}

// UpdateAppointmentRequest reschedules or edits an appointment.
type UpdateAppointmentRequest struct {
	PractitionerID string `json:"practitioner_id" validate:"required"`
	RoomID         string `json:"room_id"`
	CustomerID     string `json:"customer_id" validate:"required"`
	ServiceID      string `json:"service_id" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
	Notes          string `json:"notes"`
}

// UpdateAppointmentStatusRequest transitions an appointment's lifecycle.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
}
