package models

import "time"

// Customer represents a patient record.
type Customer struct {
	ID        string     `db:"id" json:"id"`
	CompanyID string     `db:"company_id" json:"company_id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	Document  string     `db:"document" json:"document"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Notes     string     `db:"notes" json:"notes"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// CustomerFilter captures filtering criteria for listing customers.
type CustomerFilter struct {
	CompanyID  string
	Active     *bool
	Search     string
	BirthMonth int
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
