package goGuard

import (
	"errors"
	"time"

	"github.com/MrEthical07/goGuard/password"
)

// Config defines a public type used by goGuard APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Password      PasswordConfig
	Auth          AuthConfig
	PasswordReset PasswordResetConfig
	Captcha       CaptchaConfig
	URLs          URLConfig
	Audit         AuditConfig
	Metrics       MetricsConfig

	// AutoMap signals the host that default login/logout/reset pages should
	// be wired. The engine itself never reads it.
	AutoMap bool
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by goGuard APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	// Algorithm selects the hash scheme for newly stored passwords.
	// Verification always dispatches on the stored hash itself, so changing
	// this never invalidates existing hashes.
	Algorithm password.Algorithm
	// Depth is the iteration count for the digest schemes and the cost
	// factor for the adaptive scheme.
	Depth          int
	MinLength      int
	UpgradeOnLogin bool
}

/*
====================================
AUTH CONFIG
====================================
*/

// AuthConfig defines a public type used by goGuard APIs.
//
// AuthConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthConfig struct {
	// ForcedDelay is absorbed by every Authenticate call, success or
	// failure, including the unknown-login path.
	ForcedDelay time.Duration
	// EmailField names the persisted column that holds the email address,
	// for stores that support login-by-email layouts.
	EmailField string
}

// PasswordResetConfig defines a public type used by goGuard APIs.
//
// PasswordResetConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordResetConfig struct {
	// Secret signs reset tokens. Required; Build fails without it.
	Secret []byte
	// ExpireAfter bounds token age, measured from the embedded issue
	// timestamp at validation time.
	ExpireAfter time.Duration
	// SingleUse binds a fingerprint of the user's current password hash
	// into each token, so completing a password change invalidates any
	// outstanding tokens for that user.
	SingleUse bool
}

/*
====================================
CAPTCHA CONFIG
====================================
*/

// CaptchaConfig defines a public type used by goGuard APIs.
//
// CaptchaConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CaptchaConfig struct {
	Enabled       bool
	ImageType     string
	CaseSensitive bool
}

// URLConfig carries the redirect targets consumed by guard verdicts and the
// middleware. The engine never routes to them itself.
type URLConfig struct {
	Login       string
	Logout      string
	AfterLogin  string
	ResetToken  string
	ResetChange string
	Captcha     string
}

// AuditConfig defines a public type used by goGuard APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goGuard APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Algorithm:      password.AlgBcrypt,
			Depth:          12,
			MinLength:      6,
			UpgradeOnLogin: false,
		},
		Auth: AuthConfig{
			ForcedDelay: 500 * time.Millisecond,
			EmailField:  "email",
		},
		PasswordReset: PasswordResetConfig{
			ExpireAfter: 2 * time.Hour,
			SingleUse:   false,
		},
		Captcha: CaptchaConfig{
			Enabled:       false,
			ImageType:     "png",
			CaseSensitive: true,
		},
		URLs: URLConfig{
			Login:       "/login",
			Logout:      "/logout",
			AfterLogin:  "/",
			ResetToken:  "/reset_token",
			ResetChange: "/reset_change",
			Captcha:     "/captcha",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// DefaultConfig returns the baseline configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.PasswordReset.Secret = cloneBytes(cfg.PasswordReset.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for setup-time errors. Any error here
// is fatal at Build and never recovered at call time.
func (c *Config) Validate() error {
	// Password
	switch c.Password.Algorithm {
	case password.AlgSHA1, password.AlgSHA512, password.AlgBcrypt:
		// valid
	default:
		return errors.New("unsupported password algorithm")
	}
	if c.Password.Depth < 1 {
		return errors.New("Password Depth must be >= 1")
	}
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}

	// Auth
	if c.Auth.ForcedDelay < 0 {
		return errors.New("Auth ForcedDelay must be >= 0")
	}
	if c.Auth.EmailField == "" {
		return errors.New("Auth EmailField must not be empty")
	}

	// Password reset
	if len(c.PasswordReset.Secret) < 16 {
		return errors.New("PasswordReset Secret must be >= 16 bytes")
	}
	if c.PasswordReset.ExpireAfter <= 0 {
		return errors.New("PasswordReset ExpireAfter must be > 0")
	}

	// Captcha
	if c.Captcha.Enabled && c.Captcha.ImageType == "" {
		return errors.New("Captcha ImageType required when captcha is enabled")
	}

	// URLs
	if c.URLs.Login == "" {
		return errors.New("URLs Login must not be empty")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
