package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogora/blog-api/internal/user"
)

var ErrInvalidResetToken = errors.New("invalid or expired reset link")

// resetClaims carries the user id inside a signed password reset token
type resetClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ResetTokenService issues and verifies stateless password reset tokens.
// The signing secret is derived per user by concatenating the user's id with
// the process-wide secret key, so a token minted for one user never verifies
// against another. Because the id is immutable, tokens survive a password
// change unless bindPassword additionally mixes the current hash into the
// secret.
type ResetTokenService struct {
	secretKey    string
	duration     time.Duration
	bindPassword bool
}

func NewResetTokenService(secretKey string, duration time.Duration, bindPassword bool) *ResetTokenService {
	return &ResetTokenService{
		secretKey:    secretKey,
		duration:     duration,
		bindPassword: bindPassword,
	}
}

// Issue signs a reset token for the user under their derived secret.
func (s *ResetTokenService) Issue(u *user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: u.ID.String(),
	})

	signed, err := token.SignedString(s.derivedSecret(u))
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}

	return signed, nil
}

// Verify checks the token under the secret re-derived from the current user
// record. Bad signature, wrong user, and expiry all collapse into
// ErrInvalidResetToken; the link is simply invalid from the caller's view.
func (s *ResetTokenService) Verify(tokenStr string, u *user.User) error {
	claims := &resetClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.derivedSecret(u), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidResetToken
	}

	if claims.UserID != u.ID.String() {
		return ErrInvalidResetToken
	}

	return nil
}

func (s *ResetTokenService) derivedSecret(u *user.User) []byte {
	secret := u.ID.String() + s.secretKey
	if s.bindPassword {
		fp := sha256.Sum256([]byte(u.PasswordHash))
		secret += hex.EncodeToString(fp[:])
	}
	return []byte(secret)
}
