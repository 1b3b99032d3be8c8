package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims are the JWT claims carried by both access and refresh tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies the signed access and refresh tokens.
// The two token kinds use independent secrets and lifetimes; signing is a
// pure function of secret, payload and expiry.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// IssuerOption configures TokenIssuer behavior.
type IssuerOption func(*TokenIssuer)

// WithIssuer sets the iss claim embedded into and required from tokens.
func WithIssuer(issuer string) IssuerOption {
	return func(ti *TokenIssuer) { ti.issuer = strings.TrimSpace(issuer) }
}

// WithAccessTTL configures the access token lifetime.
func WithAccessTTL(ttl time.Duration) IssuerOption {
	return func(ti *TokenIssuer) {
		if ttl > 0 {
			ti.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) IssuerOption {
	return func(ti *TokenIssuer) {
		if ttl > 0 {
			ti.refreshTTL = ttl
		}
	}
}

// WithIssuerClock overrides the time source (useful for tests).
func WithIssuerClock(fn func() time.Time) IssuerOption {
	return func(ti *TokenIssuer) {
		if fn != nil {
			ti.now = fn
		}
	}
}

// NewTokenIssuer constructs a TokenIssuer signing with HS256. Both secrets
// are required and must differ so a refresh token can never pass access
// token verification.
func NewTokenIssuer(accessSecret, refreshSecret string, opts ...IssuerOption) (*TokenIssuer, error) {
	accessSecret = strings.TrimSpace(accessSecret)
	refreshSecret = strings.TrimSpace(refreshSecret)
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("auth: both access and refresh secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	ti := &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     defaultAccessTTL,
		refreshTTL:    defaultRefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(ti)
	}
	return ti, nil
}

// AccessToken signs a short-lived access token for the user.
func (ti *TokenIssuer) AccessToken(user *User) (string, time.Time, error) {
	return ti.sign(user, ti.accessSecret, ti.accessTTL)
}

// RefreshToken signs a long-lived refresh token for the user.
func (ti *TokenIssuer) RefreshToken(user *User) (string, time.Time, error) {
	return ti.sign(user, ti.refreshSecret, ti.refreshTTL)
}

// ParseAccess verifies an access token and returns its claims.
func (ti *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return ti.parse(token, ti.accessSecret)
}

// ParseRefresh verifies a refresh token signature and expiry. The session
// manager still has to match the token against the stored hash before
// accepting it.
func (ti *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return ti.parse(token, ti.refreshSecret)
}

func (ti *TokenIssuer) sign(user *User, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := ti.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Username: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (ti *TokenIssuer) parse(token string, secret []byte) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return ti.now().UTC() }))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if ti.issuer != "" && claims.Issuer != ti.issuer {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
