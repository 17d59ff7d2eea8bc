package types

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile mirrors the user_profiles table. One row per auth user,
// auto-created by the signup trigger.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role" example:"student"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateProfileParams is the body accepted by the profile update endpoint.
// Nil fields are left untouched.
type UpdateProfileParams struct {
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"` // Teacher-only; checked in the service.
}
