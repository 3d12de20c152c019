package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid covers signature failures, malformed payloads, and tokens
// carrying the wrong purpose.
var ErrInvalid = errors.New("invalid token")

// ErrExpired is returned for well-signed tokens older than the window.
var ErrExpired = errors.New("token expired")

const resetPurpose = "password_reset"

// maxFutureIssue bounds clock skew on the embedded issue timestamp.
const maxFutureIssue = 2 * time.Minute

// Config defines a public type used by goGuard APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret      []byte
	ExpireAfter time.Duration
}

// Service signs and validates reset tokens with a shared HMAC secret.
type Service struct {
	secret      []byte
	expireAfter time.Duration
	parser      *jwt.Parser

	// now is swapped in tests to walk the clock across the expiry boundary.
	now func() time.Time
}

type resetClaims struct {
	Purpose string `json:"use"`
	// Fingerprint optionally binds the token to the credential state it was
	// issued against, invalidating it once the password changes.
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// NewService validates the signing configuration and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("token secret must be >= 16 bytes")
	}
	if cfg.ExpireAfter <= 0 {
		return nil, errors.New("token expiry window must be > 0")
	}

	return &Service{
		secret:      append([]byte(nil), cfg.Secret...),
		expireAfter: cfg.ExpireAfter,
		parser:      jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:         time.Now,
	}, nil
}

// Issue signs a reset token binding login and the current timestamp. The
// fingerprint is optional; when present it is checked again on validation
// by the caller.
func (s *Service) Issue(login, fingerprint string) (string, error) {
	if login == "" {
		return "", errors.New("login must not be empty")
	}

	claims := resetClaims{
		Purpose:     resetPurpose,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  login,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Validate checks signature, purpose, and age. On success it returns the
// embedded login and fingerprint; the caller still has to resolve the login
// against live storage.
func (s *Service) Validate(raw string) (login, fingerprint string, err error) {
	claims := &resetClaims{}
	_, err = s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", "", ErrInvalid
	}

	if claims.Purpose != resetPurpose || claims.Subject == "" || claims.IssuedAt == nil {
		return "", "", ErrInvalid
	}

	now := s.now()
	issued := claims.IssuedAt.Time
	if issued.After(now.Add(maxFutureIssue)) {
		return "", "", ErrInvalid
	}
	if now.Sub(issued) > s.expireAfter {
		return "", "", ErrExpired
	}

	return claims.Subject, claims.Fingerprint, nil
}
