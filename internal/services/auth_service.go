package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskhub_backend/internal/appErrors"
	"taskhub_backend/internal/auth"
	"taskhub_backend/internal/email"
	"taskhub_backend/internal/logger"
	"taskhub_backend/internal/models"
	"taskhub_backend/internal/otp"
	"taskhub_backend/internal/repositories"
	"taskhub_backend/internal/services/dto"
)

type AuthService interface {
	SendSignupOTP(ctx context.Context, email string) error
	SignupWithOTP(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	DirectSignup(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserInfo, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	SendPasswordResetOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	CurrentUser(ctx context.Context, userID string) (*dto.UserInfo, error)
}

type AuthServiceImpl struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	otpStore  otp.Store
	tokens    *auth.TokenService
	mailer    email.Provider
	otpTTL    time.Duration
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	otpStore otp.Store,
	tokens *auth.TokenService,
	mailer email.Provider,
	otpTTL time.Duration,
) AuthService {
	return &AuthServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		otpStore:  otpStore,
		tokens:    tokens,
		mailer:    mailer,
		otpTTL:    otpTTL,
	}
}

// SendSignupOTP mails a fresh verification code. Saving replaces any
// earlier live code for the address, so only the latest one verifies.
func (s *AuthServiceImpl) SendSignupOTP(ctx context.Context, address string) error {
	address = normalizeEmail(address)
	_, err := s.userRepo.FindByEmail(ctx, address)
	if err == nil {
		return appErrors.ErrEmailAlreadyExists
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return appErrors.InternalError(err)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.otpStore.Save(ctx, address, models.OTPPurposeSignup, code, s.otpTTL); err != nil {
		return appErrors.InternalError(err)
	}

	body, err := email.RenderSignupOTP("", code, int(s.otpTTL.Minutes()))
	if err != nil {
		return appErrors.InternalError(err)
	}
	// A code nobody received is useless, so the send failure is the
	// caller's problem, unlike the courtesy mails below.
	if err := s.mailer.Send(address, "Confirm your email", body); err != nil {
		logger.CtxWithError(ctx, "failed to send signup OTP email", err, "email", address)
		return appErrors.ErrEmailSendFailed
	}
	return nil
}

// SignupWithOTP consumes the mailed code and creates a verified account.
func (s *AuthServiceImpl) SignupWithOTP(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.ErrWeakPassword
	}

	// The code was stored under the normalized address, so the submitted
	// one has to match it regardless of casing.
	address := normalizeEmail(req.Email)

	// Re-checked here because the address may have been registered
	// between requesting the code and submitting it.
	_, err := s.userRepo.FindByEmail(ctx, address)
	if err == nil {
		return nil, appErrors.ErrEmailAlreadyExists
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, appErrors.InternalError(err)
	}

	if err := s.otpStore.Consume(ctx, address, models.OTPPurposeSignup, req.OTP); err != nil {
		if errors.Is(err, otp.ErrCodeMismatch) {
			return nil, appErrors.ErrInvalidOTP
		}
		return nil, appErrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        address,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		IsVerified:   true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, appErrors.ErrEmailAlreadyExists
		}
		return nil, appErrors.InternalError(err)
	}

	s.sendCourtesy(ctx, user, "Welcome to TaskHub", email.RenderWelcome)

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         dto.NewUserInfo(user),
	}, nil
}

// DirectSignup is the admin-provisioned path that skips OTP verification.
func (s *AuthServiceImpl) DirectSignup(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserInfo, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.ErrWeakPassword
	}
	if !models.ValidRole(req.Role) {
		return nil, appErrors.ErrInvalidUserRole
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsVerified:   true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, appErrors.ErrEmailAlreadyExists
		}
		return nil, appErrors.InternalError(err)
	}

	info := dto.NewUserInfo(user)
	return &info, nil
}

// Login authenticates by email and password. Unknown address and wrong
// password produce the same error so the response does not reveal which
// addresses are registered.
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.InternalError(err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, appErrors.ErrInvalidCredentials
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         dto.NewUserInfo(user),
	}, nil
}

// Refresh rotates the session: the presented token is verified against
// both role secret pairs, checked against the stored list, removed, and
// replaced with a fresh pair. The delete is the compare-and-remove, so of
// two concurrent rotations of the same token exactly one succeeds.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.tokens.VerifyRefreshAny(refreshToken)
	if err != nil {
		return nil, appErrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidToken
		}
		return nil, appErrors.InternalError(err)
	}

	if err := s.tokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			// Valid signature but not on record: already rotated,
			// revoked, or replayed.
			return nil, appErrors.ErrTokenNotRecognized
		}
		return nil, appErrors.InternalError(err)
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout removes the presented token from the user's session list. A
// token that is already gone, or that belongs to another user, is left
// alone and is not an error.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID, refreshToken string) error {
	owned, err := s.tokenRepo.Exists(ctx, userID, refreshToken)
	if err != nil {
		return appErrors.InternalError(err)
	}
	if !owned {
		return nil
	}
	// Token values are unique, so after the ownership check this only
	// touches the caller's own record.
	err = s.tokenRepo.DeleteByToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return appErrors.InternalError(err)
	}
	return nil
}

// SendPasswordResetOTP mails a reset code to an existing account.
func (s *AuthServiceImpl) SendPasswordResetOTP(ctx context.Context, address string) error {
	user, err := s.userRepo.FindByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return appErrors.ErrUserNotFound
		}
		return appErrors.InternalError(err)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.otpStore.Save(ctx, user.Email, models.OTPPurposeReset, code, s.otpTTL); err != nil {
		return appErrors.InternalError(err)
	}

	body, err := email.RenderResetOTP(user.Name, code, int(s.otpTTL.Minutes()))
	if err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.mailer.Send(user.Email, "Reset your password", body); err != nil {
		logger.CtxWithError(ctx, "failed to send reset OTP email", err, "email", user.Email)
		return appErrors.ErrEmailSendFailed
	}
	return nil
}

// ResetPassword consumes the reset code, re-hashes the password and
// revokes every live session of the user.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return appErrors.ErrWeakPassword
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return appErrors.ErrUserNotFound
		}
		return appErrors.InternalError(err)
	}

	if err := s.otpStore.Consume(ctx, user.Email, models.OTPPurposeReset, req.OTP); err != nil {
		if errors.Is(err, otp.ErrCodeMismatch) {
			return appErrors.ErrInvalidOTP
		}
		return appErrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return appErrors.InternalError(err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return appErrors.InternalError(err)
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return appErrors.InternalError(err)
	}

	s.sendCourtesy(ctx, user, "Password changed", email.RenderResetSuccess)
	return nil
}

// CurrentUser returns the public identity of the authenticated user.
func (s *AuthServiceImpl) CurrentUser(ctx context.Context, userID string) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	info := dto.NewUserInfo(user)
	return &info, nil
}

// issueSession mints a token pair and registers the refresh half.
func (s *AuthServiceImpl) issueSession(ctx context.Context, user *models.User) (*auth.TokenPair, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     pair.RefreshToken,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return pair, nil
}

// normalizeEmail lowercases the address the same way the user store does,
// so OTP codes land under the key the signup submission will look up.
func normalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// sendCourtesy delivers a notification mail whose failure must not fail
// the calling flow.
func (s *AuthServiceImpl) sendCourtesy(ctx context.Context, user *models.User, subject string, render func(string) (string, error)) {
	body, err := render(user.Name)
	if err != nil {
		logger.CtxWarn(ctx, "failed to render email", "subject", subject, "error", err.Error())
		return
	}
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		logger.CtxWarn(ctx, "failed to send email", "subject", subject, "email", user.Email, "error", err.Error())
	}
}
