package dto

// IssueCertificateRequest creates a medical certificate for a customer.
// DaysOff only applies to SICK_LEAVE certificates.
type IssueCertificateRequest struct {
	CustomerID     string `json:"customer_id" validate:"required"`
	PractitionerID string `json:"practitioner_id" validate:"required"`
	AppointmentID  string `json:"appointment_id"`
	Type           string `json:"type" validate:"required,oneof=SICK_LEAVE ATTENDANCE CUSTOM"`
	DaysOff        int    `json:"days_off" validate:"min=0,max=365"`
	CustomText     string `json:"custom_text"`
}
