package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/blogora/blog-api/internal/otp"
	"github.com/blogora/blog-api/internal/user"
)

// UserRepository defines the user persistence the auth flows depend on
type UserRepository interface {
	Create(ctx context.Context, fullName, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	MarkVerifiedAndPurgeOTPs(ctx context.Context, userID uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// OTPRepository defines the verification code store
type OTPRepository interface {
	Create(ctx context.Context, userID uuid.UUID, code int) (*otp.Record, error)
	Find(ctx context.Context, userID uuid.UUID, code int) (*otp.Record, error)
}

// EmailService defines the interface for outbound email
type EmailService interface {
	SendVerificationOTP(ctx context.Context, toEmail, fullName string, code int) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error
}

// TokenService defines the interface for session token creation and validation
type TokenService interface {
	CreateToken(userID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*SessionClaims, error)
}
