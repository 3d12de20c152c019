package goGuard

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventSessionLogin          = "session_login"
	auditEventSessionLogout         = "session_logout"
	auditEventUserCreated           = "user_created"
	auditEventUserStatusChange      = "user_status_change"
	auditEventPasswordChangeSuccess = "password_change_success"
	auditEventPasswordChangeFailure = "password_change_failure"
	auditEventPasswordSet           = "password_set"
	auditEventResetTokenIssued      = "reset_token_issued"
	auditEventResetTokenDenied      = "reset_token_denied"
	auditEventResetConfirm          = "reset_confirm"
	auditEventPermissionCreated     = "permission_created"
	auditEventPermissionDeleted     = "permission_deleted"
	auditEventPermissionGranted     = "permission_granted"
	auditEventPermissionRevoked     = "permission_revoked"
	auditEventGuardAllowed          = "guard_allowed"
	auditEventGuardDenied           = "guard_denied"
	auditEventCaptchaIssued         = "captcha_issued"
	auditEventCaptchaFailure        = "captcha_failure"
)

// AuditErrorCode defines a public type used by goGuard APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrValidation         AuditErrorCode = "validation"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrUserExists         AuditErrorCode = "duplicate"
	auditErrAccessDenied       AuditErrorCode = "access_denied"
	auditErrCaptchaFailed      AuditErrorCode = "captcha_failed"
	auditErrCaptchaNotIssued   AuditErrorCode = "captcha_not_issued"
	auditErrTokenInvalid       AuditErrorCode = "invalid_token"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrPermissionUnknown  AuditErrorCode = "permission_unknown"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	login string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Login:     login,
		SessionID: sessionID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrValidation):
		return auditErrValidation
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrUserExists):
		return auditErrUserExists
	case errors.Is(err, ErrCaptchaFailed):
		return auditErrCaptchaFailed
	case errors.Is(err, ErrCaptchaNotIssued):
		return auditErrCaptchaNotIssued
	case errors.Is(err, ErrAccessDenied):
		return auditErrAccessDenied
	case errors.Is(err, ErrTokenInvalid):
		return auditErrTokenInvalid
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrPermissionUnknown):
		return auditErrPermissionUnknown
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrSessionUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
