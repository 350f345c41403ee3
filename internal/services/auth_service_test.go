package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"taskhub_backend/internal/appErrors"
	"taskhub_backend/internal/auth"
	"taskhub_backend/internal/email"
	"taskhub_backend/internal/models"
	"taskhub_backend/internal/otp"
	"taskhub_backend/internal/repositories"
	"taskhub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc       AuthService
	userRepo  *repositories.MemoryUserRepository
	tokenRepo *repositories.MemoryRefreshTokenRepository
	otpStore  *otp.MemoryStore
	mailer    *email.MockProvider
	tokens    *auth.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.Config{
		UserSecrets:  auth.SecretPair{Access: "user-access-secret", Refresh: "user-refresh-secret"},
		AdminSecrets: auth.SecretPair{Access: "admin-access-secret", Refresh: "admin-refresh-secret"},
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	userRepo := repositories.NewMemoryUserRepository()
	tokenRepo := repositories.NewMemoryRefreshTokenRepository()
	otpStore := otp.NewMemoryStore()
	mailer := email.NewMockProvider()

	return &authFixture{
		svc:       NewAuthService(userRepo, tokenRepo, otpStore, tokens, mailer, 5*time.Minute),
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		otpStore:  otpStore,
		mailer:    mailer,
		tokens:    tokens,
	}
}

var codeRe = regexp.MustCompile(`\b(\d{4})\b`)

// lastMailedCode pulls the 4-digit code out of the most recent email.
func (f *authFixture) lastMailedCode(t *testing.T) string {
	t.Helper()
	msgs := f.mailer.Messages()
	require.NotEmpty(t, msgs)
	match := codeRe.FindStringSubmatch(msgs[len(msgs)-1].Body)
	require.NotNil(t, match, "no code in email body")
	return match[1]
}

func (f *authFixture) signup(t *testing.T, name, address, password string) *dto.AuthResponse {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.SendSignupOTP(ctx, address))
	resp, err := f.svc.SignupWithOTP(ctx, &dto.SignupRequest{
		Name:     name,
		Email:    address,
		Password: password,
		OTP:      f.lastMailedCode(t),
	})
	require.NoError(t, err)
	return resp
}

func TestSignupWithOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp := f.signup(t, "Alice", "alice@example.com", "secret1")
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, models.UserRoleUser, resp.User.Role)
	assert.True(t, resp.User.IsVerified)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// The refresh half is on record immediately.
	ok, err := f.tokenRepo.Exists(ctx, resp.User.ID, resp.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)

	// One OTP mail plus the welcome mail.
	assert.Len(t, f.mailer.Messages(), 2)
}

func TestSignupEmailCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// The code requested with one casing verifies for any casing of the
	// same address.
	require.NoError(t, f.svc.SendSignupOTP(ctx, "Alice@Example.com"))
	resp, err := f.svc.SignupWithOTP(ctx, &dto.SignupRequest{
		Name: "Alice", Email: "alice@example.com", Password: "secret1", OTP: f.lastMailedCode(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	// The registered-address check is equally case-blind.
	err = f.svc.SendSignupOTP(ctx, "ALICE@EXAMPLE.COM")
	assert.ErrorIs(t, err, appErrors.ErrEmailAlreadyExists)
}

func TestSendSignupOTPRejectsRegisteredEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "Alice", "alice@example.com", "secret1")

	err := f.svc.SendSignupOTP(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, appErrors.ErrEmailAlreadyExists)
}

func TestSecondOTPInvalidatesFirst(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendSignupOTP(ctx, "bob@example.com"))
	first := f.lastMailedCode(t)
	require.NoError(t, f.svc.SendSignupOTP(ctx, "bob@example.com"))
	second := f.lastMailedCode(t)

	req := &dto.SignupRequest{Name: "Bob", Email: "bob@example.com", Password: "secret1", OTP: first}
	if first != second {
		_, err := f.svc.SignupWithOTP(ctx, req)
		assert.ErrorIs(t, err, appErrors.ErrInvalidOTP)
	}

	req.OTP = second
	_, err := f.svc.SignupWithOTP(ctx, req)
	require.NoError(t, err)
}

func TestConsumedOTPCannotBeReused(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signup(t, "Carol", "carol@example.com", "secret1")

	require.NoError(t, f.svc.SendPasswordResetOTP(ctx, "carol@example.com"))
	code := f.lastMailedCode(t)

	req := &dto.ResetPasswordRequest{Email: "carol@example.com", OTP: code, NewPassword: "secret2"}
	require.NoError(t, f.svc.ResetPassword(ctx, req))

	// The code was consumed by the first reset.
	req.NewPassword = "secret3"
	err := f.svc.ResetPassword(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrInvalidOTP)
}

func TestExpiredOTPRejected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendSignupOTP(ctx, "dave@example.com"))
	code := f.lastMailedCode(t)

	f.otpStore.SetClock(func() time.Time { return time.Now().Add(6 * time.Minute) })

	_, err := f.svc.SignupWithOTP(ctx, &dto.SignupRequest{
		Name: "Dave", Email: "dave@example.com", Password: "secret1", OTP: code,
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidOTP)
}

func TestSignupOTPSendFailureReturned(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.Err = assert.AnError

	err := f.svc.SendSignupOTP(context.Background(), "mia@example.com")
	assert.ErrorIs(t, err, appErrors.ErrEmailSendFailed)
}

func TestWelcomeEmailFailureSwallowed(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SendSignupOTP(ctx, "nina@example.com"))
	code := f.lastMailedCode(t)
	f.mailer.Err = assert.AnError

	_, err := f.svc.SignupWithOTP(ctx, &dto.SignupRequest{
		Name: "Nina", Email: "nina@example.com", Password: "secret1", OTP: code,
	})
	require.NoError(t, err)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signup(t, "Alice", "alice@example.com", "secret1")

	_, errUnknown := f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	_, errWrongPw := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})

	assert.ErrorIs(t, errUnknown, appErrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, appErrors.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestLoginIssuesWorkingPair(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signup(t, "Alice", "alice@example.com", "secret1")

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := f.tokens.VerifyAccess(resp.AccessToken, models.UserRoleUser)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRefreshRotation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	signup := f.signup(t, "Alice", "alice@example.com", "secret1")

	rotated, err := f.svc.Refresh(ctx, signup.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, signup.RefreshToken, rotated.RefreshToken)

	// The replaced token is dead even though its signature still checks out.
	_, err = f.svc.Refresh(ctx, signup.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrTokenNotRecognized)

	// The replacement works exactly once.
	_, err = f.svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
	_, err = f.svc.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrTokenNotRecognized)
}

func TestRefreshRejectsGarbageAndAccessTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	signup := f.signup(t, "Alice", "alice@example.com", "secret1")

	_, err := f.svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	// An access token is signed with a different secret and never refreshes.
	_, err = f.svc.Refresh(ctx, signup.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestLogoutRemovesOnlyItsToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	signup := f.signup(t, "Alice", "alice@example.com", "secret1")
	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, signup.User.ID, signup.RefreshToken))

	_, err = f.svc.Refresh(ctx, signup.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrTokenNotRecognized)

	// The other session is untouched.
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)

	// Logging out twice is fine.
	require.NoError(t, f.svc.Logout(ctx, signup.User.ID, signup.RefreshToken))
}

func TestLogoutIgnoresForeignToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	alice := f.signup(t, "Alice", "alice@example.com", "secret1")
	bob := f.signup(t, "Bob", "bob@example.com", "secret1")

	// Alice presenting Bob's token must not end Bob's session.
	require.NoError(t, f.svc.Logout(ctx, alice.User.ID, bob.RefreshToken))

	_, err := f.svc.Refresh(ctx, bob.RefreshToken)
	require.NoError(t, err)
}

func TestResetPasswordRevokesAllSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	signup := f.signup(t, "Alice", "alice@example.com", "secret1")
	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.SendPasswordResetOTP(ctx, "alice@example.com"))
	code := f.lastMailedCode(t)

	require.NoError(t, f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Email: "alice@example.com", OTP: code, NewPassword: "secret2",
	}))

	// Every pre-reset session is revoked.
	_, err = f.svc.Refresh(ctx, signup.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrTokenNotRecognized)
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrTokenNotRecognized)

	// Old password is out, new one is in.
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret2"})
	require.NoError(t, err)
}

func TestSendPasswordResetOTPRequiresAccount(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.SendPasswordResetOTP(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, appErrors.ErrUserNotFound)
}

func TestResetOTPNotValidForSignup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.signup(t, "Alice", "alice@example.com", "secret1")

	require.NoError(t, f.svc.SendPasswordResetOTP(ctx, "alice@example.com"))
	resetCode := f.lastMailedCode(t)

	// A reset code never opens the signup door for another address,
	// codes are scoped per purpose and per email.
	require.NoError(t, f.svc.SendSignupOTP(ctx, "eve@example.com"))
	_, err := f.svc.SignupWithOTP(ctx, &dto.SignupRequest{
		Name: "Eve", Email: "eve@example.com", Password: "secret1", OTP: resetCode,
	})
	if resetCode != f.lastMailedCode(t) {
		assert.ErrorIs(t, err, appErrors.ErrInvalidOTP)
	}
}

func TestDirectSignup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	info, err := f.svc.DirectSignup(ctx, &dto.CreateUserRequest{
		Name: "Root", Email: "root@example.com", Password: "secret1", Role: models.UserRoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, info.Role)
	assert.True(t, info.IsVerified)

	// No OTP mail is involved.
	assert.Empty(t, f.mailer.Messages())

	// Duplicate address is a conflict.
	_, err = f.svc.DirectSignup(ctx, &dto.CreateUserRequest{
		Name: "Root2", Email: "root@example.com", Password: "secret1", Role: models.UserRoleUser,
	})
	assert.ErrorIs(t, err, appErrors.ErrEmailAlreadyExists)

	_, err = f.svc.DirectSignup(ctx, &dto.CreateUserRequest{
		Name: "Weak", Email: "weak@example.com", Password: "123", Role: models.UserRoleUser,
	})
	assert.ErrorIs(t, err, appErrors.ErrWeakPassword)
}

func TestCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	signup := f.signup(t, "Alice", "alice@example.com", "secret1")

	info, err := f.svc.CurrentUser(ctx, signup.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", info.Name)

	_, err = f.svc.CurrentUser(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, appErrors.ErrUserNotFound)
}

func TestAdminSessionRefreshesWithAdminSecrets(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.DirectSignup(ctx, &dto.CreateUserRequest{
		Name: "Root", Email: "root@example.com", Password: "secret1", Role: models.UserRoleAdmin,
	})
	require.NoError(t, err)

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)

	// Admin tokens only verify against the admin secret pair.
	_, err = f.tokens.VerifyAccess(login.AccessToken, models.UserRoleUser)
	assert.Error(t, err)
	claims, err := f.tokens.VerifyAccess(login.AccessToken, models.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, claims.Role)

	// Role-ambiguous refresh resolves the right role and rotates.
	rotated, err := f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	_, err = f.tokens.VerifyRefresh(rotated.RefreshToken, models.UserRoleAdmin)
	require.NoError(t, err)
}
