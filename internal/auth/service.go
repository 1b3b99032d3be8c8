package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"crewbase.io/internal/ids"
)

// Service orchestrates session lifecycle: registration, credential
// validation, token issuance and rotation, logout, and the password
// recovery flow (recovery.go).
type Service struct {
	store  Store
	tokens *TokenIssuer
	mailer Mailer
	log    zerolog.Logger
	now    func() time.Time

	resetCodeTTL time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithMailer sets the collaborator used to deliver reset codes.
func WithMailer(m Mailer) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.mailer = m
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithResetCodeTTL overrides the reset code validity window.
func WithResetCodeTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.resetCodeTTL = ttl
		}
	}
}

// NewService constructs the session manager.
func NewService(store Store, tokens *TokenIssuer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	svc := &Service{
		store:        store,
		tokens:       tokens,
		mailer:       nopMailer{},
		log:          zerolog.Nop(),
		now:          time.Now,
		resetCodeTTL: defaultResetCodeTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a user with a hashed password. The email uniqueness check
// is a case-sensitive exact match against the stored email.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	users := s.store.Users(ctx)
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Profile returns the stored user record for the given id.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return s.store.Users(ctx).Find(ctx, userID)
}

// ProfileUpdate carries optional profile fields; a nil field is left
// unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Avatar    *string
}

// UpdateProfile applies a partial profile update and returns the record as
// stored.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error) {
	if upd.FirstName == nil && upd.LastName == nil && upd.Avatar == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if upd.FirstName != nil {
		trimmed := strings.TrimSpace(*upd.FirstName)
		upd.FirstName = &trimmed
	}
	if upd.LastName != nil {
		trimmed := strings.TrimSpace(*upd.LastName)
		upd.LastName = &trimmed
	}
	return s.store.Users(ctx).UpdateProfile(ctx, userID, upd)
}

// ValidateCredentials resolves email and password to a user id. Unknown
// email and wrong password fail identically.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.Users(ctx).FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup email: %w", err)
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return user.ID, nil
}

// Login mints a fresh token pair for an already-authenticated user and
// persists the refresh token hash, superseding any prior session.
func (s *Service) Login(ctx context.Context, userID string) (TokenPair, error) {
	user, err := s.store.Users(ctx).Find(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	return s.rotateTokens(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// verify against the stored hash; on success the hash is rotated so each
// refresh token is usable exactly once.
func (s *Service) Refresh(ctx context.Context, userID, refreshToken string) (TokenPair, error) {
	user, err := s.store.Users(ctx).Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	if user.HashedRefreshToken == nil {
		return TokenPair{}, ErrUnauthorized
	}
	if !VerifyPassword(*user.HashedRefreshToken, refreshToken) {
		return TokenPair{}, ErrUnauthorized
	}
	return s.rotateTokens(ctx, user)
}

// Logout clears the stored refresh token hash, invalidating any outstanding
// refresh token for the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if _, err := s.store.Users(ctx).Find(ctx, userID); err != nil {
		return err
	}
	return s.store.Users(ctx).UpdateRefreshTokenHash(ctx, userID, nil)
}

// ValidateAccessPrincipal re-resolves the token subject against the
// directory. A valid token whose subject has since been deleted fails with
// ErrNotFound.
func (s *Service) ValidateAccessPrincipal(ctx context.Context, userID string) (AuthenticatedPrincipal, error) {
	user, err := s.store.Users(ctx).Find(ctx, userID)
	if err != nil {
		return AuthenticatedPrincipal{}, err
	}
	return AuthenticatedPrincipal{ID: user.ID, Role: user.Role}, nil
}

func (s *Service) rotateTokens(ctx context.Context, user *User) (TokenPair, error) {
	access, accessExp, err := s.tokens.AccessToken(user)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.RefreshToken(user)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	hash, err := HashPassword(refresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("hash refresh token: %w", err)
	}
	if err := s.store.Users(ctx).UpdateRefreshTokenHash(ctx, user.ID, &hash); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
