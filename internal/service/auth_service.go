package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"watchlist/internal/entity"
	"watchlist/internal/repository"
	"watchlist/internal/utils"

	"gorm.io/datatypes"
)

// Compared against when the email is unknown so both failure paths pay for a
// bcrypt comparison.
const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

const (
	MessageRegistered    = "Registration successful. Check your email to activate your account."
	MessageEmailVerified = "Email verified successfully. You can now log in."
	MessageCodeSent      = "Login code sent by email"
	MessageLoggedIn      = "Login successful"
)

type AuthService struct {
	users          repository.UserRepository
	verifications  repository.EmailVerificationRepository
	twoFactorCodes repository.TwoFactorCodeRepository
	securityLogs   repository.SecurityLogRepository

	emailSender  EmailSender
	passwordHash PasswordHasher
	accessTokens AccessTokenIssuer
	codes        CodeGenerator
	clock        Clock
	config       AuthConfig
}

func NewAuthService(
	users repository.UserRepository,
	verifications repository.EmailVerificationRepository,
	twoFactorCodes repository.TwoFactorCodeRepository,
	securityLogs repository.SecurityLogRepository,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	accessTokens AccessTokenIssuer,
	codes CodeGenerator,
	clock Clock,
	config AuthConfig,
) *AuthService {
	if codes == nil {
		codes = RandomCodeGenerator{}
	}
	return &AuthService{
		users:          users,
		verifications:  verifications,
		twoFactorCodes: twoFactorCodes,
		securityLogs:   securityLogs,
		emailSender:    emailSender,
		passwordHash:   passwordHash,
		accessTokens:   accessTokens,
		codes:          codes,
		clock:          clock,
		config:         config,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := utils.NormalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" || username == "" || input.Password == "" {
		return nil, ValidationError("email, username and password are required")
	}

	existing, err := s.users.FindByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, ValidationError(msgUserExists)
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := s.codes.VerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	user := &entity.User{
		Email:           email,
		Username:        username,
		Password:        hash,
		Role:            entity.UserRoleUser,
		IsEmailVerified: false,
	}
	verification := &entity.EmailVerification{
		TokenHash: utils.HashToken(token),
		ExpiresAt: s.now().Add(s.verificationTokenTTL()),
	}
	if err := s.users.Register(ctx, user, verification); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ValidationError(msgUserExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.emailSender.SendVerificationEmail(ctx, user.Email, token); err != nil {
		sendErr := fmt.Errorf("send verification email: %w", err)
		// Drop the account so the same email and username can register again.
		if delErr := s.users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			return nil, errors.Join(sendErr, fmt.Errorf("roll back registration: %w", delErr))
		}
		return nil, sendErr
	}

	s.logSecurity(ctx, &user.ID, input.IP, entity.Registered, nil)
	return &RegisterResult{Message: MessageRegistered, UserID: user.ID}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ValidationError(msgInvalidVerification)
	}

	verification, err := s.verifications.FindByTokenHash(ctx, utils.HashToken(token))
	if err != nil {
		return "", fmt.Errorf("find email verification: %w", err)
	}
	if verification == nil {
		return "", ValidationError(msgInvalidVerification)
	}
	if verification.Expired(s.now()) {
		return "", ValidationError(msgExpiredVerification)
	}

	consumed, err := s.verifications.Consume(ctx, verification)
	if err != nil {
		return "", fmt.Errorf("consume email verification: %w", err)
	}
	if !consumed {
		return "", ValidationError(msgInvalidVerification)
	}

	s.logSecurity(ctx, &verification.UserID, nil, entity.EmailVerified, nil)
	return MessageEmailVerified, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := utils.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		s.logSecurity(ctx, nil, input.IP, entity.LoginFailed, map[string]any{"email": email})
		return nil, AuthError(msgInvalidCredentials)
	}
	if !s.passwordHash.Verify(user.Password, input.Password) {
		s.logSecurity(ctx, &user.ID, input.IP, entity.LoginFailed, map[string]any{"email": email})
		return nil, AuthError(msgInvalidCredentials)
	}
	if !user.IsEmailVerified {
		return nil, ValidationError(msgEmailNotVerified)
	}

	code, err := s.codes.TwoFactorCode()
	if err != nil {
		return nil, fmt.Errorf("generate login code: %w", err)
	}
	twoFactor := &entity.TwoFactorCode{
		UserID:    user.ID,
		CodeHash:  utils.HashToken(code),
		ExpiresAt: s.now().Add(s.twoFactorCodeTTL()),
	}
	if err := s.twoFactorCodes.Replace(ctx, twoFactor); err != nil {
		return nil, fmt.Errorf("store login code: %w", err)
	}

	if err := s.emailSender.SendTwoFactorCode(ctx, user.Email, code); err != nil {
		sendErr := fmt.Errorf("send login code: %w", err)
		if _, delErr := s.twoFactorCodes.Delete(context.WithoutCancel(ctx), twoFactor.ID); delErr != nil {
			return nil, errors.Join(sendErr, fmt.Errorf("drop login code: %w", delErr))
		}
		return nil, sendErr
	}

	s.logSecurity(ctx, &user.ID, input.IP, entity.LoginChallenge, nil)
	return &LoginResult{Message: MessageCodeSent, UserID: user.ID}, nil
}

func (s *AuthService) Verify2FA(ctx context.Context, input Verify2FAInput) (*Verify2FAResult, error) {
	if !utils.IsNumericCode(input.Code) {
		return nil, ValidationError(msgInvalidCode)
	}

	code, err := s.twoFactorCodes.FindValid(ctx, input.UserID, utils.HashToken(input.Code), s.now())
	if err != nil {
		return nil, fmt.Errorf("find login code: %w", err)
	}
	if code == nil || !code.ExpiresAt.After(s.now()) {
		s.logSecurity(ctx, &input.UserID, input.IP, entity.TwoFactorFailed, nil)
		return nil, ValidationError(msgInvalidCode)
	}

	deleted, err := s.twoFactorCodes.Delete(ctx, code.ID)
	if err != nil {
		return nil, fmt.Errorf("delete login code: %w", err)
	}
	if !deleted {
		return nil, ValidationError(msgInvalidCode)
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ValidationError(msgInvalidCode)
	}

	token, ttl, err := s.accessTokens.IssueAccessToken(*user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.logSecurity(ctx, &user.ID, input.IP, entity.TwoFactorSucceeded, nil)
	return &Verify2FAResult{
		Message:     MessageLoggedIn,
		User:        NewPublicUser(*user),
		AccessToken: token,
		ExpiresIn:   ttl,
	}, nil
}

// RefreshToken reissues a token for a user that still exists. Whether the
// user is verified is left to the access middleware guarding the route.
func (s *AuthService) RefreshToken(ctx context.Context, userID uint) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", AuthError(msgUserNotFound)
	}

	token, _, err := s.accessTokens.IssueAccessToken(*user)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	s.logSecurity(ctx, &user.ID, nil, entity.TokenRefreshed, nil)
	return token, nil
}

// logSecurity is best effort; an audit write never fails the request.
func (s *AuthService) logSecurity(
	ctx context.Context,
	userID *uint,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if s.securityLogs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return
		}
		payload = datatypes.JSON(bytes)
	}

	log := &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	_ = s.securityLogs.Log(ctx, log)
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) verificationTokenTTL() time.Duration {
	if s.config.VerificationTokenTTL > 0 {
		return s.config.VerificationTokenTTL
	}
	return 24 * time.Hour
}

func (s *AuthService) twoFactorCodeTTL() time.Duration {
	if s.config.TwoFactorCodeTTL > 0 {
		return s.config.TwoFactorCodeTTL
	}
	return 10 * time.Minute
}
