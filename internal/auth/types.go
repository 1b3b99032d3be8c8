package auth

import "time"

// User is the identity record owned by the user directory. The three secret
// fields (PasswordHash, HashedRefreshToken, ResetCode) never leave the
// service; outward representations go through Response.
type User struct {
	ID                 string
	Email              string
	PasswordHash       string
	FirstName          string
	LastName           string
	Avatar             *string
	Role               Role
	HashedRefreshToken *string
	ResetCode          *string
	ResetCodeIssuedAt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DisplayName returns the name used when addressing the user in mail.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return "there"
}

// UserResponse is the outward representation of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Avatar    *string   `json:"avatar,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Response strips the credential fields from the user record.
func (u *User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthenticatedPrincipal is the identity attached to a request after the
// access token has been verified and the subject re-resolved against the
// directory. It is passed explicitly, never held in package state.
type AuthenticatedPrincipal struct {
	ID   string
	Role Role
}

// TokenPair carries freshly minted access and refresh tokens.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
