package dto

import "github.com/google/uuid"

type UserDTO struct {
	Id       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    *string   `json:"email,omitempty"`
	FullName string    `json:"full_name"`
	Disabled bool      `json:"disabled"`
}

type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=128"`
}

type SearchUsersRequest struct {
	Query  string `query:"q" validate:"required,min=1"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}
