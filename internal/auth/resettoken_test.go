package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogora/blog-api/internal/user"
)

func testUser() *user.User {
	return &user.User{
		ID:           uuid.New(),
		FullName:     "Jane Doe",
		Email:        "jane@example.com",
		PasswordHash: "$2a$10$fakehashfakehashfakehashfakehash",
	}
}

func TestResetToken_RoundTrip(t *testing.T) {
	svc := NewResetTokenService("process-secret", 15*time.Minute, false)
	u := testUser()

	token, err := svc.Issue(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, svc.Verify(token, u))
}

func TestResetToken_WrongUser(t *testing.T) {
	svc := NewResetTokenService("process-secret", 15*time.Minute, false)
	alice := testUser()
	bob := testUser()

	token, err := svc.Issue(alice)
	require.NoError(t, err)

	// the derived secret contains the user id, so the signature breaks
	assert.ErrorIs(t, svc.Verify(token, bob), ErrInvalidResetToken)
}

func TestResetToken_Expired(t *testing.T) {
	svc := NewResetTokenService("process-secret", -time.Minute, false)
	u := testUser()

	token, err := svc.Issue(u)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(token, u), ErrInvalidResetToken)
}

func TestResetToken_WrongProcessSecret(t *testing.T) {
	issuer := NewResetTokenService("secret-a", 15*time.Minute, false)
	verifier := NewResetTokenService("secret-b", 15*time.Minute, false)
	u := testUser()

	token, err := issuer.Issue(u)
	require.NoError(t, err)

	assert.ErrorIs(t, verifier.Verify(token, u), ErrInvalidResetToken)
}

func TestResetToken_Garbage(t *testing.T) {
	svc := NewResetTokenService("process-secret", 15*time.Minute, false)

	assert.ErrorIs(t, svc.Verify("not.a.jwt", testUser()), ErrInvalidResetToken)
	assert.ErrorIs(t, svc.Verify("", testUser()), ErrInvalidResetToken)
}

func TestResetToken_PasswordBinding(t *testing.T) {
	svc := NewResetTokenService("process-secret", 15*time.Minute, true)
	u := testUser()

	token, err := svc.Issue(u)
	require.NoError(t, err)
	require.NoError(t, svc.Verify(token, u))

	// a password change rotates the derived secret
	u.PasswordHash = "$2a$10$differenthashdifferenthashdiffer"
	assert.ErrorIs(t, svc.Verify(token, u), ErrInvalidResetToken)
}
