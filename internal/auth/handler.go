package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/blogora/blog-api/internal/httputil"
	"github.com/blogora/blog-api/internal/logging"
	"github.com/blogora/blog-api/internal/user"
)

// Handler contains HTTP handlers for the authentication endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecaptchaValue string `json:"recaptchaValue"`
}

// VerifyEmailRequest represents the email verification request body.
// The otp field is accepted as either a JSON number or a string.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   any    `json:"otp"`
}

// LoginRequest represents the login request body. The recaptchaValue field
// is part of the contract but is not verified on login.
type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecaptchaValue string `json:"recaptchaValue"`
}

// SendResetPasswordRequest represents the password reset request body
type SendResetPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset confirmation body
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePasswordRequest represents the authenticated password change body
type ChangePasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// UserResponse represents a user's public fields in API responses
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
	IsAuth  bool         `json:"isAuth"`
}

// MessageResponse is the generic success envelope
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		IsVerified: u.IsVerified,
	}
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new account. A 4-digit verification code is sent by email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration fields"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation, duplicate email, or bot-check failure"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/v1/user/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Register(r.Context(), req.FullName, req.Email, req.Password, req.RecaptchaValue)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			logger.Warn("registration failed: missing fields")
			httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeValidationError, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordTooShort):
			logger.Warn("registration failed: password too short")
			httputil.RespondErrorWithCode(w, "Password must be at least 6 characters long", httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "User already registered with this email", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
		case errors.Is(err, ErrBotCheckFailed):
			logger.Warn("registration failed: bot check rejected")
			httputil.RespondErrorWithCode(w, "reCaptcha verification failed", httputil.CodeBotCheckFailed, http.StatusBadRequest)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	httputil.RespondJSON(w, RegisterResponse{
		Success: true,
		Message: "User registered successfully, please verify your account now",
		User:    toUserResponse(newUser),
	}, http.StatusCreated)
}

// VerifyEmail handles OTP redemption
// @Summary      Verify email address
// @Description  Redeem the 4-digit code sent by email. Invalid or expired codes trigger a re-send.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyEmailRequest true "Email and code"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid, expired, or already verified"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/v1/user/verify-email [post]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify email request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	code, ok := parseOTP(req.OTP)
	if !ok {
		logger.Warn("email verification failed: missing or malformed otp")
		httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeValidationError, http.StatusBadRequest)
		return
	}

	err := h.service.VerifyEmail(r.Context(), req.Email, code)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			logger.Warn("email verification failed: missing fields")
			httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeValidationError, http.StatusBadRequest)
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("email verification failed: unknown email")
			httputil.RespondErrorWithCode(w, "Email doesn't exist", httputil.CodeUserNotFound, http.StatusBadRequest)
		case errors.Is(err, ErrAlreadyVerified):
			logger.Warn("email verification failed: already verified")
			httputil.RespondErrorWithCode(w, "Email is already verified", httputil.CodeAlreadyVerified, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidOTP):
			logger.Warn("email verification failed: invalid otp")
			httputil.RespondErrorWithCode(w, "Invalid OTP, new OTP has been sent to your email", httputil.CodeInvalidOTP, http.StatusBadRequest)
		case errors.Is(err, ErrExpiredOTP):
			logger.Warn("email verification failed: expired otp")
			httputil.RespondErrorWithCode(w, "OTP expired, new OTP has been sent to your email", httputil.CodeExpiredOTP, http.StatusBadRequest)
		default:
			logger.Error("email verification failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to verify email", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("email verified successfully")

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "Email verified successfully",
	}, http.StatusOK)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate a verified user and receive a 24h session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or invalid credentials"
// @Failure      401 {object} httputil.ErrorResponse "Account not verified"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/v1/user/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	token, loggedUser, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			logger.Warn("login failed: missing fields")
			httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeValidationError, http.StatusBadRequest)
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("login failed: user not found")
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrNotVerified):
			logger.Warn("login failed: account not verified")
			httputil.RespondErrorWithCode(w, "Your account is not verified, please verify it first", httputil.CodeNotVerified, http.StatusUnauthorized)
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "Invalid credentials", httputil.CodeInvalidCredentials, http.StatusBadRequest)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in successfully")

	httputil.RespondJSON(w, LoginResponse{
		Success: true,
		Message: "User login successfully",
		Token:   token,
		User:    toUserResponse(loggedUser),
		IsAuth:  true,
	}, http.StatusOK)
}

// SendResetPassword handles password reset requests
// @Summary      Request a password reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SendResetPasswordRequest true "Account email"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Email missing"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/v1/user/send-reset-password [post]
func (h *Handler) SendResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SendResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	err := h.service.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			logger.Warn("reset request failed: email missing")
			httputil.RespondErrorWithCode(w, "Email is required", httputil.CodeValidationError, http.StatusBadRequest)
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("reset request failed: unknown email")
			httputil.RespondErrorWithCode(w, "Email doesn't exist", httputil.CodeUserNotFound, http.StatusNotFound)
		default:
			logger.Error("reset request failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to send reset email", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password reset email queued")

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "Password reset email sent, please check your email",
	}, http.StatusOK)
}

// ResetPassword handles reset link redemption
// @Summary      Reset password with a link token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        id path string true "User id from the reset link"
// @Param        token path string true "Signed reset token from the link"
// @Param        request body ResetPasswordRequest true "New password and confirmation"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Mismatch or invalid link"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/v1/user/reset-password/{id}/{token} [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Warn("password reset failed: malformed user id")
		httputil.RespondErrorWithCode(w, "Invalid link", httputil.CodeInvalidResetLink, http.StatusBadRequest)
		return
	}
	token := chi.URLParam(r, "token")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err = h.service.ResetPassword(r.Context(), userID, token, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			logger.Warn("password reset failed: missing fields")
			httputil.RespondErrorWithCode(w, "Password & confirm password are required", httputil.CodeValidationError, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordMismatch):
			logger.Warn("password reset failed: confirmation mismatch")
			httputil.RespondErrorWithCode(w, "Password & confirm password don't match", httputil.CodePasswordMismatch, http.StatusBadRequest)
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("password reset failed: user not found")
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
		case errors.Is(err, ErrInvalidResetToken):
			logger.Warn("password reset failed: invalid or expired link")
			httputil.RespondErrorWithCode(w, "Invalid or expired link", httputil.CodeInvalidResetLink, http.StatusBadRequest)
		default:
			logger.Error("password reset failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to reset password", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password reset successfully")

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "Password has been reset successfully",
	}, http.StatusOK)
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]any
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/v1/user/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, map[string]any{
		"success": true,
		"user":    toUserResponse(currentUser),
	}, http.StatusOK)
}

// ChangePassword updates the authenticated user's password
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "New password and confirmation"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or mismatch"
// @Router       /api/v1/user/change-password [put]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := h.service.ChangePassword(r.Context(), currentUser.ID, req.Password, req.PasswordConfirmation)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			httputil.RespondErrorWithCode(w, "All fields are required", httputil.CodeValidationError, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordMismatch):
			httputil.RespondErrorWithCode(w, "Credentials don't match", httputil.CodePasswordMismatch, http.StatusBadRequest)
		default:
			logger.Error("change password failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to change password", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password changed successfully", "user_id", currentUser.ID)

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "Password changed successfully",
	}, http.StatusOK)
}

// DeleteAccount removes the authenticated user's account
// @Summary      Delete account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/v1/user/delete-account [delete]
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), currentUser.ID); err != nil {
		logger.Error("account deletion failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user deleted successfully", "user_id", currentUser.ID)

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "User deleted successfully",
	}, http.StatusOK)
}

// parseOTP coerces the otp field, which clients send as either a JSON number
// or a string, into its integer value.
func parseOTP(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		code := int(val)
		if float64(code) != val || code <= 0 {
			return 0, false
		}
		return code, true
	case string:
		code, err := strconv.Atoi(val)
		if err != nil || code <= 0 {
			return 0, false
		}
		return code, true
	case json.Number:
		code, err := val.Int64()
		if err != nil || code <= 0 {
			return 0, false
		}
		return int(code), true
	default:
		return 0, false
	}
}
