package dto

import "github.com/matheuspdias/managerclin-public-sub002/internal/models"

// AvailabilityWindow is the resolved working window for one practitioner on
// one date. Times are "HH:MM"; break fields are nil when no break applies.
type AvailabilityWindow struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
}

// Slot is a bookable interval within a day.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailableSlotsResponse lists the free slots for a practitioner/room/date.
type AvailableSlotsResponse struct {
	Date            string              `json:"date"`
	PractitionerID  string              `json:"practitioner_id"`
	RoomID          string              `json:"room_id"`
	DurationMinutes int                 `json:"duration_minutes"`
	Window          *AvailabilityWindow `json:"window,omitempty"`
	Slots           []Slot              `json:"slots"`
}

// ConflictCheckRequest is the payload for a direct conflict probe.
type ConflictCheckRequest struct {
	PractitionerID string `json:"practitioner_id" validate:"required"`
	RoomID         string `json:"room_id" validate:"required"`
	Date           string `json:"date" validate:"required"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
	ExcludeID      string `json:"exclude_id"`
}

// ConflictCheckResponse reports whether a proposed slot is bookable and, when
// it is not, which existing appointments collide.
type ConflictCheckResponse struct {
	Bookable  bool                         `json:"bookable"`
	Conflicts []models.AppointmentConflict `json:"conflicts"`
}
