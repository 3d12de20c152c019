package goGuard

import "errors"

var (
	// ErrInvalidCredentials is returned by Authenticate for every failure
	// mode: unknown login, wrong password, passwordless or disabled account.
	// Callers must not be able to tell these apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation is returned when create/update input is malformed,
	// including passwords shorter than the configured minimum length.
	ErrValidation = errors.New("validation failed")
	// ErrUserNotFound is an exported constant or variable used by the guard engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is an exported constant or variable used by the guard engine.
	ErrUserExists = errors.New("user already exists")
	// ErrAccessDenied is the guard-level denial. It is surfaced as a
	// redirect verdict, never as an application exception.
	ErrAccessDenied = errors.New("access denied")
	// ErrCaptchaFailed is an exported constant or variable used by the guard engine.
	ErrCaptchaFailed = errors.New("captcha verification failed")
	// ErrCaptchaNotIssued is an exported constant or variable used by the guard engine.
	ErrCaptchaNotIssued = errors.New("no captcha challenge pending")
	// ErrCaptchaDisabled is an exported constant or variable used by the guard engine.
	ErrCaptchaDisabled = errors.New("captcha disabled")
	// ErrTokenInvalid covers bad signatures, malformed payloads, and tokens
	// whose embedded login no longer resolves to an existing user.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for a well-signed token past its window.
	// Reset flows should present this and ErrTokenInvalid identically to
	// end users.
	ErrTokenExpired = errors.New("token expired")
	// ErrPermissionUnknown is an exported constant or variable used by the guard engine.
	ErrPermissionUnknown = errors.New("permission not registered")
	// ErrStoreUnavailable is an exported constant or variable used by the guard engine.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrSessionUnavailable is an exported constant or variable used by the guard engine.
	ErrSessionUnavailable = errors.New("session store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the guard engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
