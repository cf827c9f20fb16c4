package service

import (
	"context"
	"time"

	"watchlist/internal/entity"
	"watchlist/internal/utils"
)

type AuthConfig struct {
	VerificationTokenTTL time.Duration
	TwoFactorCodeTTL     time.Duration
}

type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email string, token string) error
	SendTwoFactorCode(ctx context.Context, email string, code string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type AccessTokenIssuer interface {
	IssueAccessToken(user entity.User) (string, time.Duration, error)
}

type CodeGenerator interface {
	VerificationToken() (string, error)
	TwoFactorCode() (string, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	return utils.HashPassword(password, h.Cost)
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return utils.CheckPassword(hash, password)
}

type RandomCodeGenerator struct{}

func (RandomCodeGenerator) VerificationToken() (string, error) {
	return utils.GenerateRandomToken(32)
}

func (RandomCodeGenerator) TwoFactorCode() (string, error) {
	return utils.GenerateNumericCode()
}
