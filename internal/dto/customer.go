package dto

// CreateCustomerRequest is the payload for registering a patient.
type CreateCustomerRequest struct {
	FullName  string `json:"full_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,min=8"`
	Document  string `json:"document"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     string `json:"notes"`
}

// UpdateCustomerRequest is the payload for editing a patient record.
type UpdateCustomerRequest struct {
	FullName  string `json:"full_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,min=8"`
	Document  string `json:"document"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     string `json:"notes"`
	Active    *bool  `json:"active"`
}
