package dto

import "github.com/matheuspdias/managerclin-public-sub002/internal/models"

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	FullName string          `json:"full_name" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required,oneof=SUPERADMIN ADMIN PRACTITIONER RECEPTIONIST"`
	Password string          `json:"password" validate:"required,min=6"`
}

// UpdateUserRequest represents payload for updating users.
type UpdateUserRequest struct {
	FullName string          `json:"full_name" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required,oneof=SUPERADMIN ADMIN PRACTITIONER RECEPTIONIST"`
	Active   *bool           `json:"active"`
}
