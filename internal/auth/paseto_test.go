package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(t *testing.T) *SessionService {
	t.Helper()
	svc, err := NewSessionService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return svc
}

func TestNewSessionService_KeyLength(t *testing.T) {
	_, err := NewSessionService([]byte("too-short"))
	assert.Error(t, err)

	_, err = NewSessionService(make([]byte, 32))
	assert.NoError(t, err)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	svc := newTestSessionService(t)
	userID := uuid.New()

	token, err := svc.CreateToken(userID, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, time.Minute)
}

func TestSessionToken_Expired(t *testing.T) {
	svc := newTestSessionService(t)

	token, err := svc.CreateToken(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestSessionToken_Garbage(t *testing.T) {
	svc := newTestSessionService(t)

	_, err := svc.VerifyToken("v4.local.not-a-real-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionToken_WrongKey(t *testing.T) {
	svc := newTestSessionService(t)
	other, err := NewSessionService([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
