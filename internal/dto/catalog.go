package dto

// RoomRequest creates or updates a consultation room.
type RoomRequest struct {
	Name   string `json:"name" validate:"required,min=1"`
	Active *bool  `json:"active"`
}

// ServiceRequest creates or updates a billable procedure.
type ServiceRequest struct {
	Name            string  `json:"name" validate:"required,min=1"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=5,max=480"`
	Price           float64 `json:"price" validate:"min=0"`
	Active          *bool   `json:"active"`
}
