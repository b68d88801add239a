package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogora/blog-api/internal/logging"
	"github.com/blogora/blog-api/internal/otp"
	"github.com/blogora/blog-api/internal/user"
)

// --- fakes ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User // keyed by email
	otps  *fakeOTPRepo          // purged together with verification, like the real transaction

	createErr error
}

func newFakeUserRepo(otps *fakeOTPRepo) *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*user.User), otps: otps}
}

func (f *fakeUserRepo) Create(ctx context.Context, fullName, email, passwordHash string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[email]; ok {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           uuid.New(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) MarkVerifiedAndPurgeOTPs(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			u.IsVerified = true
			f.otps.purgeFor(userID)
			return nil
		}
	}
	return user.ErrNotFound
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return user.ErrNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, u := range f.users {
		if u.ID == userID {
			delete(f.users, email)
			return nil
		}
	}
	return user.ErrNotFound
}

type fakeOTPRepo struct {
	mu      sync.Mutex
	records []*otp.Record
	nextID  int64
}

func (f *fakeOTPRepo) Create(ctx context.Context, userID uuid.UUID, code int) (*otp.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r := &otp.Record{ID: f.nextID, UserID: userID, Code: code, CreatedAt: time.Now()}
	f.records = append(f.records, r)
	return r, nil
}

func (f *fakeOTPRepo) Find(ctx context.Context, userID uuid.UUID, code int) (*otp.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.UserID == userID && r.Code == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, otp.ErrNoMatch
}

func (f *fakeOTPRepo) countFor(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

// latestCodeFor returns the newest outstanding code for the user.
func (f *fakeOTPRepo) latestCodeFor(userID uuid.UUID) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			return f.records[i].Code, true
		}
	}
	return 0, false
}

func (f *fakeOTPRepo) purgeFor(userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, r := range f.records {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	f.records = kept
}

func (f *fakeOTPRepo) backdate(userID uuid.UUID, by time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.UserID == userID {
			r.CreatedAt = r.CreatedAt.Add(-by)
		}
	}
}

type fakeEmailService struct {
	mu sync.Mutex
}

func (f *fakeEmailService) SendVerificationOTP(ctx context.Context, toEmail, fullName string, code int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return nil
}

type fakeBotCheck struct {
	ok  bool
	err error
}

func (f *fakeBotCheck) Verify(ctx context.Context, responseToken string) (bool, error) {
	return f.ok, f.err
}

// --- helpers ---

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeOTPRepo) {
	t.Helper()

	otps := &fakeOTPRepo{}
	users := newFakeUserRepo(otps)

	sessions, err := NewSessionService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	resetTokens := NewResetTokenService("test-reset-secret", 15*time.Minute, false)

	svc := NewService(
		users,
		otps,
		&fakeEmailService{},
		sessions,
		resetTokens,
		&fakeBotCheck{ok: true},
		logging.NewLogger(true),
		24*time.Hour,
		"http://localhost:5173",
	)
	return svc, users, otps
}

func registerTestUser(t *testing.T, svc *Service) *user.User {
	t.Helper()
	u, err := svc.Register(context.Background(), "Jane Doe", "jane@example.com", "secret123", "recaptcha-token")
	require.NoError(t, err)
	return u
}

// --- registration ---

func TestRegister_Success(t *testing.T) {
	svc, users, otps := newTestService(t)

	u := registerTestUser(t, svc)

	assert.Equal(t, "Jane Doe", u.FullName)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.False(t, u.IsVerified)

	stored, err := users.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)

	// password must be stored as a bcrypt hash at cost 10
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))

	// registration leaves exactly one outstanding code
	assert.Equal(t, 1, otps.countFor(u.ID))
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "", "jane@example.com", "secret123", "tok")
	assert.ErrorIs(t, err, ErrFieldsRequired)

	_, err = svc.Register(context.Background(), "Jane", "jane@example.com", "secret123", "")
	assert.ErrorIs(t, err, ErrFieldsRequired)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "Jane", "jane@example.com", "12345", "tok")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), "Other Jane", "jane@example.com", "different", "tok")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestRegister_BotCheckRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.botCheck = &fakeBotCheck{ok: false}

	_, err := svc.Register(context.Background(), "Jane", "jane@example.com", "secret123", "bad-token")
	assert.ErrorIs(t, err, ErrBotCheckFailed)
}

func TestRegister_BotCheckUnreachable(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.botCheck = &fakeBotCheck{err: errors.New("siteverify timeout")}

	_, err := svc.Register(context.Background(), "Jane", "jane@example.com", "secret123", "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBotCheckFailed)
}

// --- email verification ---

func TestVerifyEmail_Success(t *testing.T) {
	svc, users, otps := newTestService(t)
	u := registerTestUser(t, svc)

	// pile up a second outstanding code; success must purge both
	_, err := svc.IssueOTP(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, 2, otps.countFor(u.ID))

	code, ok := otps.latestCodeFor(u.ID)
	require.True(t, ok)
	require.GreaterOrEqual(t, code, 1000)
	require.LessOrEqual(t, code, 9999)

	err = svc.VerifyEmail(context.Background(), u.Email, code)
	require.NoError(t, err)

	verified, err := users.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	// success removes every outstanding code for the user
	assert.Equal(t, 0, otps.countFor(u.ID))

	// the store stays usable for fresh issuance
	_, err = svc.IssueOTP(context.Background(), verified)
	require.NoError(t, err)
	assert.Equal(t, 1, otps.countFor(u.ID))
}

func TestVerifyEmail_SecondAttemptAlreadyVerified(t *testing.T) {
	svc, _, otps := newTestService(t)
	u := registerTestUser(t, svc)

	code, _ := otps.latestCodeFor(u.ID)
	require.NoError(t, svc.VerifyEmail(context.Background(), u.Email, code))

	err := svc.VerifyEmail(context.Background(), u.Email, code)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyEmail_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.VerifyEmail(context.Background(), "ghost@example.com", 1234)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestVerifyEmail_WrongCodeReissues(t *testing.T) {
	svc, _, otps := newTestService(t)
	u := registerTestUser(t, svc)

	code, _ := otps.latestCodeFor(u.ID)
	wrong := code + 1
	if wrong > 9999 {
		wrong = 1000
	}

	before := otps.countFor(u.ID)
	err := svc.VerifyEmail(context.Background(), u.Email, wrong)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	// a failed attempt leaves a fresh code behind
	assert.Equal(t, before+1, otps.countFor(u.ID))
}

func TestVerifyEmail_ExpiredCodeReissues(t *testing.T) {
	svc, users, otps := newTestService(t)
	u := registerTestUser(t, svc)

	code, _ := otps.latestCodeFor(u.ID)
	otps.backdate(u.ID, otp.Validity+time.Minute)

	before := otps.countFor(u.ID)
	err := svc.VerifyEmail(context.Background(), u.Email, code)
	assert.ErrorIs(t, err, ErrExpiredOTP)
	assert.Equal(t, before+1, otps.countFor(u.ID))

	stored, err := users.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)

	// the re-issued code is live and redeemable
	fresh, ok := otps.latestCodeFor(u.ID)
	require.True(t, ok)
	require.NoError(t, svc.VerifyEmail(context.Background(), u.Email, fresh))
}

func TestVerifyEmail_AnyOutstandingCodeRedeems(t *testing.T) {
	svc, _, otps := newTestService(t)
	u := registerTestUser(t, svc)

	first, _ := otps.latestCodeFor(u.ID)
	_, err := svc.IssueOTP(context.Background(), u)
	require.NoError(t, err)

	// an older code still in its window remains valid
	require.NoError(t, svc.VerifyEmail(context.Background(), u.Email, first))
}

// --- login ---

func TestLogin_Success(t *testing.T) {
	svc, _, otps := newTestService(t)
	u := registerTestUser(t, svc)

	code, _ := otps.latestCodeFor(u.ID)
	require.NoError(t, svc.VerifyEmail(context.Background(), u.Email, code))

	token, loggedIn, err := svc.Login(context.Background(), u.Email, "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, loggedIn.ID)

	claims, err := svc.sessions.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestLogin_UnverifiedBlockedBeforePasswordCheck(t *testing.T) {
	svc, _, _ := newTestService(t)
	u := registerTestUser(t, svc)

	// even the correct password does not get an unverified user in
	_, _, err := svc.Login(context.Background(), u.Email, "secret123")
	assert.ErrorIs(t, err, ErrNotVerified)

	// and a wrong password reports the same verification failure
	_, _, err = svc.Login(context.Background(), u.Email, "wrong-password")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, otps := newTestService(t)
	u := registerTestUser(t, svc)

	code, _ := otps.latestCodeFor(u.ID)
	require.NoError(t, svc.VerifyEmail(context.Background(), u.Email, code))

	_, _, err := svc.Login(context.Background(), u.Email, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// --- password reset ---

func TestResetPassword_FullFlow(t *testing.T) {
	svc, _, otps := newTestService(t)
	u := registerTestUser(t, svc)

	code, _ := otps.latestCodeFor(u.ID)
	require.NoError(t, svc.VerifyEmail(context.Background(), u.Email, code))

	stored, err := svc.users.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)

	token, err := svc.resetTokens.Issue(stored)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), u.ID, token, "newpassword", "newpassword"))

	_, _, err = svc.Login(context.Background(), u.Email, "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), u.Email, "newpassword")
	assert.NoError(t, err)
}

func TestResetPassword_Mismatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	u := registerTestUser(t, svc)

	err := svc.ResetPassword(context.Background(), u.ID, "any-token", "one", "two")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestResetPassword_TokenForAnotherUserRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	alice := registerTestUser(t, svc)
	bob, err := svc.Register(context.Background(), "Bob", "bob@example.com", "secret123", "tok")
	require.NoError(t, err)

	aliceStored, err := svc.users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	token, err := svc.resetTokens.Issue(aliceStored)
	require.NoError(t, err)

	// Alice's link signed under her derived secret is useless against Bob
	err = svc.ResetPassword(context.Background(), bob.ID, token, "newpassword", "newpassword")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	u := registerTestUser(t, svc)

	svc.resetTokens = NewResetTokenService("test-reset-secret", -time.Minute, false)

	stored, err := svc.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	token, err := svc.resetTokens.Issue(stored)
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), u.ID, token, "newpassword", "newpassword")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPassword_PasswordBindingKillsOldLinks(t *testing.T) {
	svc, _, _ := newTestService(t)
	u := registerTestUser(t, svc)

	svc.resetTokens = NewResetTokenService("test-reset-secret", 15*time.Minute, true)

	stored, err := svc.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	token, err := svc.resetTokens.Issue(stored)
	require.NoError(t, err)

	// first redemption succeeds and rotates the hash
	require.NoError(t, svc.ResetPassword(context.Background(), u.ID, token, "newpassword", "newpassword"))

	// the same link no longer verifies against the new hash
	err = svc.ResetPassword(context.Background(), u.ID, token, "again", "again")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestRequestPasswordReset_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

// --- account management ---

func TestChangePassword(t *testing.T) {
	svc, _, otps := newTestService(t)
	u := registerTestUser(t, svc)

	code, _ := otps.latestCodeFor(u.ID)
	require.NoError(t, svc.VerifyEmail(context.Background(), u.Email, code))

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "rotated", "rotated"))

	_, _, err := svc.Login(context.Background(), u.Email, "rotated")
	assert.NoError(t, err)

	err = svc.ChangePassword(context.Background(), u.ID, "a", "b")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestDeleteAccount(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := registerTestUser(t, svc)

	require.NoError(t, svc.DeleteAccount(context.Background(), u.ID))

	_, err := users.GetByEmail(context.Background(), u.Email)
	assert.ErrorIs(t, err, user.ErrNotFound)

	err = svc.DeleteAccount(context.Background(), u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
