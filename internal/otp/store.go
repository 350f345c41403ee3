package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"taskhub_backend/internal/models"
)

// ErrCodeMismatch is returned when no live code matches (wrong code, wrong
// purpose, or expired). Callers surface it as a single "invalid or expired
// OTP" failure.
var ErrCodeMismatch = errors.New("otp: no matching live code")

// Store is the OTP ledger: short-lived one-time codes keyed by
// (email, purpose). Implementations guarantee at most one live code per key;
// saving replaces any prior code.
type Store interface {
	// Save stores code under (email, purpose) with the given lifetime,
	// replacing any previous code for the same key.
	Save(ctx context.Context, email string, purpose models.OTPPurpose, code string, ttl time.Duration) error

	// Consume verifies that code is the live code for (email, purpose) and
	// deletes it, making it single-use. Returns ErrCodeMismatch when the
	// code is wrong, expired, or absent.
	Consume(ctx context.Context, email string, purpose models.OTPPurpose, code string) error

	// Delete drops any code stored under (email, purpose). Absence is not
	// an error.
	Delete(ctx context.Context, email string, purpose models.OTPPurpose) error
}

// GenerateCode returns a 4-digit code in [1000,9999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

func key(email string, purpose models.OTPPurpose) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}
