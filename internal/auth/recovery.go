package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	resetCodeLength     = 6
	resetCodeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultResetCodeTTL = 15 * time.Minute
)

// Mailer delivers password reset codes. Delivery is best effort: the
// recovery flow logs failures and never fails the enclosing request.
type Mailer interface {
	SendResetCode(ctx context.Context, toEmail, code, displayName string) error
}

type nopMailer struct{}

func (nopMailer) SendResetCode(context.Context, string, string, string) error { return nil }

// RequestReset issues a one-time reset code and dispatches it by mail. It
// reports success even when the email is unknown so callers cannot
// enumerate accounts.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	user, err := s.store.Users(ctx).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup email: %w", err)
	}
	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	issuedAt := s.now().UTC()
	if err := s.store.Users(ctx).UpdateResetCode(ctx, user.ID, &code, &issuedAt); err != nil {
		return err
	}
	if err := s.mailer.SendResetCode(ctx, user.Email, code, user.DisplayName()); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset code mail dispatch failed")
	}
	return nil
}

// RedeemReset exchanges a valid reset code for a new password. A matched
// code is consumed even when it has expired.
func (s *Service) RedeemReset(ctx context.Context, email, code, newPassword string) error {
	if code == "" || newPassword == "" {
		return fmt.Errorf("%w: code and new password are required", ErrInvalidInput)
	}
	users := s.store.Users(ctx)
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("lookup email: %w", err)
	}
	if user.ResetCode == nil {
		return ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(*user.ResetCode), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	if user.ResetCodeIssuedAt == nil || s.now().UTC().After(user.ResetCodeIssuedAt.Add(s.resetCodeTTL)) {
		if err := users.UpdateResetCode(ctx, user.ID, nil, nil); err != nil {
			return err
		}
		return ErrInvalidCode
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	return users.UpdateResetCode(ctx, user.ID, nil, nil)
}

// ChangePassword replaces the password after verifying the current one.
// It does not invalidate an outstanding refresh token; callers that want
// session termination call Logout.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrInvalidInput)
	}
	users := s.store.Users(ctx)
	user, err := users.Find(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return users.UpdatePasswordHash(ctx, user.ID, hash)
}

// generateResetCode draws a short human-transcribable code from crypto/rand.
func generateResetCode() (string, error) {
	out := make([]byte, resetCodeLength)
	max := big.NewInt(int64(len(resetCodeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = resetCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}
