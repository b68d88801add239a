package httputil

// Machine-readable error codes returned alongside human-readable messages.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationError    = "VALIDATION_ERROR"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeBotCheckFailed     = "BOT_CHECK_FAILED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeInvalidOTP         = "INVALID_OTP"
	CodeExpiredOTP         = "EXPIRED_OTP"
	CodeNotVerified        = "NOT_VERIFIED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodePasswordMismatch   = "PASSWORD_MISMATCH"
	CodeInvalidResetLink   = "INVALID_RESET_LINK"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeMissingAuth        = "MISSING_AUTH"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInternalError      = "INTERNAL_ERROR"
)
