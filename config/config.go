package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InsecureJWTSecret signs tokens when JWT_SECRET is unset outside production.
const InsecureJWTSecret = "watchlist-insecure-development-secret"

type Config struct {
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"APP_ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	AutoMigrate bool   `mapstructure:"AUTO_MIGRATE"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	JWTIssuer  string        `mapstructure:"JWT_ISSUER"`
	JWTTTL     time.Duration `mapstructure:"JWT_TTL"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`

	VerificationTokenTTL time.Duration `mapstructure:"VERIFICATION_TOKEN_TTL"`
	TwoFactorCodeTTL     time.Duration `mapstructure:"TWO_FACTOR_CODE_TTL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	AppBaseURL   string `mapstructure:"APP_BASE_URL"`

	// UsingInsecureJWTSecret is set when JWTSecret fell back to InsecureJWTSecret.
	UsingInsecureJWTSecret bool `mapstructure:"-"`
}

// Load reads .env when present, then the process environment. Environment
// variables win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "watchlist")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("VERIFICATION_TOKEN_TTL", "24h")
	v.SetDefault("TWO_FACTOR_CODE_TTL", "10m")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "noreply@watchlist.com")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET must be set when APP_ENV=production")
		}
		c.JWTSecret = InsecureJWTSecret
		c.UsingInsecureJWTSecret = true
	}
	if c.JWTTTL <= 0 {
		return errors.New("config: JWT_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.VerificationTokenTTL <= 0 || c.TwoFactorCodeTTL <= 0 {
		return errors.New("config: VERIFICATION_TOKEN_TTL and TWO_FACTOR_CODE_TTL must be positive")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return errors.New("config: SMTP_PORT must be a valid port")
	}
	return nil
}
