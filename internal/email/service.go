package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/blogora/blog-api/internal/logging"
)

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, fromEmail, frontendURL string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    fromEmail,
		frontendURL:  frontendURL,
	}
}

// SendVerificationOTP mails the 4-digit code together with a link to the
// verification page. The link does not embed the code; the user types it.
// This method is designed to be called in a goroutine.
func (s *Service) SendVerificationOTP(ctx context.Context, toEmail, fullName string, code int) error {
	logger := logging.GetLoggerFromContext(ctx)

	verificationLink := fmt.Sprintf("%s/account/verify-email", s.frontendURL)

	subject := "Verify Your Account"
	body, err := s.renderVerificationTemplate(fullName, code, verificationLink)
	if err != nil {
		logger.Error("failed to render verification email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send verification email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

// SendPasswordResetEmail mails the single-use reset link.
// This method is designed to be called in a goroutine.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error {
	logger := logging.GetLoggerFromContext(ctx)

	subject := "Blog-App, Password Reset Link"
	body, err := s.renderPasswordResetTemplate(resetLink)
	if err != nil {
		logger.Error("failed to render password reset email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send password reset email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

func (s *Service) renderVerificationTemplate(fullName string, code int, verificationLink string) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1>Email Verification</h1>
    <p>Hi {{if .FullName}}{{.FullName}}{{else}}User{{end}},</p>
    <p>Your verification code is <strong>{{.Code}}</strong>.</p>
    <p>Please enter this code on the verification page or click the link below:</p>
    <a href="{{.VerificationLink}}" style="display: inline-block; padding: 12px 20px; margin: 20px 0; background-color: #4F46E5; color: white; text-decoration: none; border-radius: 5px;">Verify your email</a>
    <p>This code is valid for 15 minutes only. If you did not request this, please ignore this email.</p>
</body>
</html>
`

	t, err := template.New("verification").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		FullName         string
		Code             int
		VerificationLink string
	}{
		FullName:         fullName,
		Code:             code,
		VerificationLink: verificationLink,
	}

	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

func (s *Service) renderPasswordResetTemplate(resetLink string) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: auto; background-color: #f4f4f4; border-radius: 8px;">
    <h2 style="color: #333;">Reset Your Password</h2>
    <p style="color: #555;">We received a request to reset your password. Click the button below to set a new password.</p>
    <a href="{{.ResetLink}}" style="display: inline-block; padding: 12px 20px; margin: 20px 0; background-color: #007BFF; color: white; text-decoration: none; border-radius: 5px;">Reset Password</a>
    <p style="color: #555;">This link expires in 15 minutes. If you didn't request this, please ignore this email.</p>
    <p style="color: #555;">Thank you, <br>The Blog-App Team</p>
</body>
</html>
`

	t, err := template.New("passwordReset").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		ResetLink string
	}{
		ResetLink: resetLink,
	}

	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
