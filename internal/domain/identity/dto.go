package identity

// RegisterRequest creates a new identity.
type RegisterRequest struct {
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	FullName       string  `json:"full_name" binding:"required"`
	Phone          *string `json:"phone"`
	Role           Role    `json:"role" binding:"required"`
	OrganizationID *string `json:"organization_id"`
}

// LoginRequest authenticates an existing identity.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Device   string `json:"device"`
}

// LoginResponse carries the issued tokens and the authenticated profile.
type LoginResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Identity     *Identity `json:"identity"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	Device       string `json:"device"`
}

// UpdateProfileRequest updates mutable profile fields.
type UpdateProfileRequest struct {
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	OrganizationID *string `json:"organization_id"`
}
