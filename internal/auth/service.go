package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogora/blog-api/internal/botcheck"
	"github.com/blogora/blog-api/internal/logging"
	"github.com/blogora/blog-api/internal/otp"
	"github.com/blogora/blog-api/internal/user"
)

var (
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrBotCheckFailed     = errors.New("reCaptcha verification failed")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrInvalidOTP         = errors.New("invalid OTP, new OTP has been sent to your email")
	ErrExpiredOTP         = errors.New("OTP expired, new OTP has been sent to your email")
	ErrNotVerified        = errors.New("your account is not verified, please verify it first")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("password and confirm password don't match")
)

const bcryptCost = 10

// Service handles the authentication and verification flows
type Service struct {
	users           UserRepository
	otps            OTPRepository
	emails          EmailService
	sessions        TokenService
	resetTokens     *ResetTokenService
	botCheck        botcheck.Verifier
	logger          *logging.Logger
	sessionDuration time.Duration
	frontendURL     string
}

func NewService(
	users UserRepository,
	otps OTPRepository,
	emails EmailService,
	sessions TokenService,
	resetTokens *ResetTokenService,
	botCheck botcheck.Verifier,
	logger *logging.Logger,
	sessionDuration time.Duration,
	frontendURL string,
) *Service {
	return &Service{
		users:           users,
		otps:            otps,
		emails:          emails,
		sessions:        sessions,
		resetTokens:     resetTokens,
		botCheck:        botCheck,
		logger:          logger,
		sessionDuration: sessionDuration,
		frontendURL:     frontendURL,
	}
}

// Register creates a new unverified account and triggers OTP issuance.
func (s *Service) Register(ctx context.Context, fullName, email, password, recaptchaValue string) (*user.User, error) {
	if fullName == "" || email == "" || password == "" || recaptchaValue == "" {
		return nil, ErrFieldsRequired
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}

	// Uniqueness is checked up front to fail fast; the unique constraint on
	// the users table still backstops a racing insert.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	ok, err := s.botCheck.Verify(ctx, recaptchaValue)
	if err != nil {
		return nil, fmt.Errorf("bot check failed: %w", err)
	}
	if !ok {
		return nil, ErrBotCheckFailed
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, fullName, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Issuance failure does not roll back user creation; the user gets a
	// fresh code on their first verification attempt.
	if _, err := s.IssueOTP(ctx, newUser); err != nil {
		s.logger.Warn("failed to issue verification otp", "email", email, "error", err)
	}

	return newUser, nil
}

// IssueOTP generates and stores a fresh verification code for the user, then
// dispatches it by email without blocking the caller. Returns the code.
// Repeated calls simply add more outstanding candidate codes.
func (s *Service) IssueOTP(ctx context.Context, u *user.User) (int, error) {
	code, err := otp.GenerateCode()
	if err != nil {
		return 0, err
	}

	if _, err := s.otps.Create(ctx, u.ID, code); err != nil {
		return 0, fmt.Errorf("failed to store otp: %w", err)
	}

	go func() {
		// Fresh context: the request context dies when the response is sent
		emailCtx := context.Background()
		if err := s.emails.SendVerificationOTP(emailCtx, u.Email, u.FullName, code); err != nil {
			s.logger.Warn("failed to send verification email", "email", u.Email, "error", err)
		}
	}()

	return code, nil
}

// VerifyEmail redeems a code. An unknown or stale code triggers re-issuance
// before failing, so the user always has a live code in their inbox.
func (s *Service) VerifyEmail(ctx context.Context, email string, code int) error {
	if email == "" || code == 0 {
		return ErrFieldsRequired
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existingUser.IsVerified {
		return ErrAlreadyVerified
	}

	record, err := s.otps.Find(ctx, existingUser.ID, code)
	if err != nil {
		if errors.Is(err, otp.ErrNoMatch) {
			if _, issueErr := s.IssueOTP(ctx, existingUser); issueErr != nil {
				s.logger.Warn("failed to re-issue otp", "email", email, "error", issueErr)
			}
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to look up otp: %w", err)
	}

	if record.Expired(time.Now()) {
		if _, issueErr := s.IssueOTP(ctx, existingUser); issueErr != nil {
			s.logger.Warn("failed to re-issue otp", "email", email, "error", issueErr)
		}
		return ErrExpiredOTP
	}

	if err := s.users.MarkVerifiedAndPurgeOTPs(ctx, existingUser.ID); err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}

	return nil
}

// Login authenticates a verified user and returns a session token.
// A recaptchaValue is accepted in the request contract but not verified here.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrFieldsRequired
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, user.ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Verification status is checked before the password; unverified
	// accounts cannot log in at all.
	if !existingUser.IsVerified {
		return "", nil, ErrNotVerified
	}

	if !verifyPassword(existingUser.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.CreateToken(existingUser.ID, s.sessionDuration)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return token, existingUser, nil
}

// RequestPasswordReset signs a time-boxed reset link under the user's
// derived secret and mails it.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrFieldsRequired
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.resetTokens.Issue(existingUser)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	link := fmt.Sprintf("%s/account/reset-password-confirm/%s/%s", s.frontendURL, existingUser.ID, token)

	go func() {
		emailCtx := context.Background()
		if err := s.emails.SendPasswordResetEmail(emailCtx, existingUser.Email, link); err != nil {
			s.logger.Warn("failed to send password reset email", "email", existingUser.Email, "error", err)
		}
	}()

	return nil
}

// ResetPassword redeems a reset link and installs the new password.
// No minimum-length check applies here; only registration enforces one.
func (s *Service) ResetPassword(ctx context.Context, userID uuid.UUID, token, password, confirmPassword string) error {
	if password == "" || confirmPassword == "" {
		return ErrFieldsRequired
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	existingUser, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.resetTokens.Verify(token, existingUser); err != nil {
		return ErrInvalidResetToken
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, existingUser.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// ChangePassword updates the password of an authenticated user.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, password, confirmPassword string) error {
	if password == "" || confirmPassword == "" {
		return ErrFieldsRequired
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// DeleteAccount removes the authenticated user's account.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
