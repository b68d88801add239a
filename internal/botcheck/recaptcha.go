// Package botcheck verifies CAPTCHA challenge responses against the
// reCAPTCHA siteverify endpoint.
package botcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Verifier checks a bot-check response token with an external service.
type Verifier interface {
	Verify(ctx context.Context, responseToken string) (bool, error)
}

// RecaptchaVerifier calls the Google reCAPTCHA siteverify API.
type RecaptchaVerifier struct {
	secretKey string
	verifyURL string
	client    *http.Client
}

func NewRecaptchaVerifier(secretKey, verifyURL string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secretKey: secretKey,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify returns whether the service accepted the challenge response.
// Transport failures are errors; a rejected token is (false, nil).
func (v *RecaptchaVerifier) Verify(ctx context.Context, responseToken string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", responseToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode siteverify response: %w", err)
	}

	return out.Success, nil
}
