// Package otp manages the short-lived one-time codes that prove email
// ownership during account verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Validity is how long a code stays redeemable after issuance.
const Validity = 15 * time.Minute

const (
	codeMin = 1000
	codeMax = 9999
)

// Record is one outstanding verification code. Many records may reference
// the same user; the first (userID, code) match wins.
type Record struct {
	ID        int64
	UserID    uuid.UUID
	Code      int
	CreatedAt time.Time
}

// Expired reports whether the record's 15-minute window has passed.
func (r *Record) Expired(now time.Time) bool {
	return now.After(r.CreatedAt.Add(Validity))
}

// GenerateCode returns a uniformly random 4-digit code in [1000, 9999].
func GenerateCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return 0, fmt.Errorf("failed to generate otp: %w", err)
	}
	return codeMin + int(n.Int64()), nil
}
