package dto

// CreatePractitionerRequest is the payload for registering a professional.
type CreatePractitionerRequest struct {
	FullName  string  `json:"full_name" validate:"required,min=2"`
	Specialty string  `json:"specialty"`
	Registry  string  `json:"registry"`
	Email     string  `json:"email" validate:"omitempty,email"`
	Phone     string  `json:"phone"`
	UserID    *string `json:"user_id"`
}

// UpdatePractitionerRequest is the payload for editing a professional.
type UpdatePractitionerRequest struct {
	FullName  string `json:"full_name" validate:"required,min=2"`
	Specialty string `json:"specialty"`
	Registry  string `json:"registry"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Active    *bool  `json:"active"`
}

// SetWorkingHoursRequest configures the weekly template for one weekday.
// Weekday follows time.Weekday numbering (0 = Sunday). Times are "HH:MM".
type SetWorkingHoursRequest struct {
	Weekday    int     `json:"weekday" validate:"min=0,max=6"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    string  `json:"end_time" validate:"required"`
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
}

// CreateScheduleExceptionRequest overrides the template for one date. When
// IsAvailable is false the window fields are ignored (full day off).
type CreateScheduleExceptionRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	IsAvailable bool    `json:"is_available"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	BreakStart  *string `json:"break_start"`
	BreakEnd    *string `json:"break_end"`
	Reason      string  `json:"reason"`
}
