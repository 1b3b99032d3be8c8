package auth

import "errors"

var (
	// ErrConflict is returned when registering an email that already exists.
	ErrConflict = errors.New("auth: email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUnauthorized indicates a missing, mismatched or superseded refresh token.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrInvalidToken indicates an access or refresh token that failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrNotFound indicates the referenced user, organization or member does not exist.
	ErrNotFound = errors.New("auth: not found")
	// ErrForbidden indicates a role or membership gate rejected the caller.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidInput indicates a domain invariant violation.
	ErrInvalidInput = errors.New("auth: invalid input")
	// ErrInvalidCode indicates a reset code that does not match or has expired.
	ErrInvalidCode = errors.New("auth: invalid or expired reset code")
)
