package dto

// CreateTelemedicineSessionRequest opens a remote session for an appointment.
type CreateTelemedicineSessionRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required"`
	RoomURL       string `json:"room_url" validate:"required,url"`
}
