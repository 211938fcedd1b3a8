package models

import "time"

// Practitioner represents a professional who performs appointments.
type Practitioner struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	FullName  string    `db:"full_name" json:"full_name"`
	Specialty string    `db:"specialty" json:"specialty"`
	Registry  string    `db:"registry" json:"registry"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PractitionerFilter captures filtering criteria for listing practitioners.
type PractitionerFilter struct {
	CompanyID string
	Specialty string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// WorkingHours is the weekly availability template for a practitioner.
// Weekday follows time.Weekday numbering (0 = Sunday). Times are "HH:MM".
type WorkingHours struct {
	ID         string    `db:"id" json:"id"`
	CompanyID  string    `db:"company_id" json:"company_id"`
	PractID    string    `db:"practitioner_id" json:"practitioner_id"`
	Weekday    int       `db:"weekday" json:"weekday"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	BreakStart *string   `db:"break_start" json:"break_start,omitempty"`
	BreakEnd   *string   `db:"break_end" json:"break_end,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleException overrides the weekly template for one specific date.
// IsAvailable=false marks a full day off; otherwise its window applies.
type ScheduleException struct {
	ID          string    `db:"id" json:"id"`
	CompanyID   string    `db:"company_id" json:"company_id"`
	PractID     string    `db:"practitioner_id" json:"practitioner_id"`
	Date        time.Time `db:"date" json:"date"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	StartTime   *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime     *string   `db:"end_time" json:"end_time,omitempty"`
	BreakStart  *string   `db:"break_start" json:"break_start,omitempty"`
	BreakEnd    *string   `db:"break_end" json:"break_end,omitempty"`
	Reason      string    `db:"reason" json:"reason"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
