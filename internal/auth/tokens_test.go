package auth

import (
	"testing"
	"time"
)

func testIssuer(t *testing.T, now func() time.Time, opts ...IssuerOption) *TokenIssuer {
	t.Helper()
	base := []IssuerOption{WithIssuer("crewbase-test"), WithIssuerClock(now)}
	ti, err := NewTokenIssuer("access-secret", "refresh-secret", append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return ti
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ti := testIssuer(t, func() time.Time { return now })
	user := &User{ID: "u1", Email: "alice@x.com"}

	access, accessExp, err := ti.AccessToken(user)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	refresh, refreshExp, err := ti.RefreshToken(user)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if access == refresh {
		t.Fatalf("access and refresh tokens must differ")
	}
	if !accessExp.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("unexpected access expiry: %v", accessExp)
	}
	if !refreshExp.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Fatalf("unexpected refresh expiry: %v", refreshExp)
	}

	claims, err := ti.ParseAccess(access)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.Subject != "u1" || claims.Username != "alice@x.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti claim")
	}

	if _, err := ti.ParseRefresh(refresh); err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}
}

func TestTokenSecretsIndependent(t *testing.T) {
	now := time.Now
	ti := testIssuer(t, now)
	user := &User{ID: "u1", Email: "alice@x.com"}

	access, _, err := ti.AccessToken(user)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	refresh, _, err := ti.RefreshToken(user)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if _, err := ti.ParseAccess(refresh); err == nil {
		t.Fatalf("refresh token passed access verification")
	}
	if _, err := ti.ParseRefresh(access); err == nil {
		t.Fatalf("access token passed refresh verification")
	}
}

func TestTokenExpiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := issued
	ti := testIssuer(t, func() time.Time { return current })
	user := &User{ID: "u1", Email: "alice@x.com"}

	access, _, err := ti.AccessToken(user)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	current = issued.Add(16 * time.Minute)
	if _, err := ti.ParseAccess(access); err == nil {
		t.Fatalf("expired access token verified")
	}
}

func TestTokenIssuerMismatch(t *testing.T) {
	now := time.Now
	ti := testIssuer(t, now)
	other := testIssuer(t, now, WithIssuer("someone-else"))
	user := &User{ID: "u1", Email: "alice@x.com"}

	token, _, err := other.AccessToken(user)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if _, err := ti.ParseAccess(token); err == nil {
		t.Fatalf("token with foreign issuer verified")
	}
}

func TestNewTokenIssuerRejectsBadSecrets(t *testing.T) {
	if _, err := NewTokenIssuer("", "refresh"); err == nil {
		t.Fatalf("expected error for empty access secret")
	}
	if _, err := NewTokenIssuer("shared", "shared"); err == nil {
		t.Fatalf("expected error for identical secrets")
	}
}
