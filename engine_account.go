package goGuard

import (
	"context"
	"errors"
	"fmt"
)

// CreateUser registers a new identity. A nil Password creates a
// passwordless user: a valid, enumerable account that can never pass
// credential verification. Passwords shorter than the configured minimum
// fail with [ErrValidation].
func (e *Engine) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	if input.Login == "" {
		return nil, fmt.Errorf("%w: login must not be empty", ErrValidation)
	}

	var hash string
	if input.Password != nil {
		if len(*input.Password) < e.config.Password.MinLength {
			return nil, fmt.Errorf(
				"%w: password shorter than %d characters",
				ErrValidation, e.config.Password.MinLength,
			)
		}
		var err error
		hash, err = e.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
	}

	record, err := e.store.CreateUser(ctx, UserRecord{
		Login:        input.Login,
		PasswordHash: hash,
		Email:        input.Email,
		Status:       input.Status,
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, ErrStoreUnavailable
	}

	e.metricInc(MetricUserCreated)
	e.emitAudit(ctx, auditEventUserCreated, true, record.ID, record.Login, "", nil, func() map[string]string {
		return map[string]string{"passwordless": fmt.Sprintf("%t", hash == "")}
	})

	return record.Public(), nil
}

// SetPassword replaces a user's password without checking the old one.
// Intended for administrative flows and the final step of a token reset.
func (e *Engine) SetPassword(ctx context.Context, login, rawPassword string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if len(rawPassword) < e.config.Password.MinLength {
		return fmt.Errorf(
			"%w: password shorter than %d characters",
			ErrValidation, e.config.Password.MinLength,
		)
	}

	record, err := e.store.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrStoreUnavailable
	}

	hash, err := e.hasher.Hash(rawPassword)
	if err != nil {
		return err
	}

	if err := e.store.UpdatePasswordHash(ctx, record.ID, hash); err != nil {
		return ErrStoreUnavailable
	}

	e.metricInc(MetricPasswordChange)
	e.emitAudit(ctx, auditEventPasswordSet, true, record.ID, login, "", nil, nil)

	return nil
}

// ChangePassword verifies the old password before storing the new one.
// Old-password failure reports [ErrInvalidCredentials] uniformly.
func (e *Engine) ChangePassword(ctx context.Context, login, oldPassword, newPassword string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if len(newPassword) < e.config.Password.MinLength {
		return fmt.Errorf(
			"%w: password shorter than %d characters",
			ErrValidation, e.config.Password.MinLength,
		)
	}

	record, err := e.store.GetUserByLogin(ctx, login)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, "", login, "", ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}
	if record.PasswordHash == "" {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, record.ID, login, "", ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	ok, err := e.hasher.Verify(oldPassword, record.PasswordHash)
	if err != nil || !ok {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, record.ID, login, "", ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := e.store.UpdatePasswordHash(ctx, record.ID, hash); err != nil {
		return ErrStoreUnavailable
	}

	e.metricInc(MetricPasswordChange)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, record.ID, login, "", nil, nil)

	return nil
}

// DisableUser flips the account to disabled; a disabled account never
// authenticates but keeps its permissions and password hash.
func (e *Engine) DisableUser(ctx context.Context, login string) error {
	return e.setStatus(ctx, login, AccountDisabled)
}

// EnableUser re-activates a disabled account.
func (e *Engine) EnableUser(ctx context.Context, login string) error {
	return e.setStatus(ctx, login, AccountActive)
}

func (e *Engine) setStatus(ctx context.Context, login string, status AccountStatus) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	record, err := e.store.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrStoreUnavailable
	}

	if record.Status == status {
		return nil
	}

	if err := e.store.UpdateStatus(ctx, record.ID, status); err != nil {
		return ErrStoreUnavailable
	}

	e.emitAudit(ctx, auditEventUserStatusChange, true, record.ID, login, "", nil, func() map[string]string {
		return map[string]string{"status": fmt.Sprintf("%d", status)}
	})

	return nil
}
