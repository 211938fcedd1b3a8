package models

import "time"

// TelemedicineStatus enumerates the remote session lifecycle.
type TelemedicineStatus string

const (
	TelemedicineCreated  TelemedicineStatus = "CREATED"
	TelemedicineStarted  TelemedicineStatus = "STARTED"
	TelemedicineFinished TelemedicineStatus = "FINISHED"
)

// TelemedicineSession tracks a remote consultation linked to an appointment.
// DurationSeconds is computed when the session finishes.
type TelemedicineSession struct {
	ID              string             `db:"id" json:"id"`
	CompanyID       string             `db:"company_id" json:"company_id"`
	AppointmentID   string             `db:"appointment_id" json:"appointment_id"`
	RoomURL         string             `db:"room_url" json:"room_url"`
	Status          TelemedicineStatus `db:"status" json:"status"`
	StartedAt       *time.Time         `db:"started_at" json:"started_at,omitempty"`
	FinishedAt      *time.Time         `db:"finished_at" json:"finished_at,omitempty"`
	DurationSeconds int                `db:"duration_seconds" json:"duration_seconds"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}
