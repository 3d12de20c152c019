package goGuard

import (
	"context"
	"errors"
	"time"
)

// Authenticate verifies a login/password pair. Unknown login, passwordless
// identity, disabled account, and wrong password all fail with
// [ErrInvalidCredentials]; the caller cannot distinguish them. Every call
// absorbs at least the configured forced delay, whichever branch is taken.
//
// Authenticate never touches session state; pair it with [Engine.Login] to
// establish a session.
func (e *Engine) Authenticate(ctx context.Context, login, rawPassword string) (*User, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		if remaining := e.config.Auth.ForcedDelay - time.Since(start); remaining > 0 {
			e.sleep(remaining)
		}
	}()

	fail := func(reason string) (*User, error) {
		e.metricInc(MetricLoginFailure)
		e.log().Info("authentication failed", "login", login, "reason", reason)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", login, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return nil, ErrInvalidCredentials
	}

	if login == "" || rawPassword == "" {
		return fail("empty_input")
	}

	record, err := e.store.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fail("unknown_login")
		}
		e.log().Warn("credential store lookup failed", "login", login, "err", err)
		return fail("store_error")
	}

	if record.Status != AccountActive {
		return fail("account_disabled")
	}
	if record.PasswordHash == "" {
		return fail("no_password")
	}

	ok, err := e.hasher.Verify(rawPassword, record.PasswordHash)
	if err != nil {
		e.log().Warn("hash verification error", "login", login, "err", err)
		return fail("hash_error")
	}
	if !ok {
		return fail("wrong_password")
	}

	if e.config.Password.UpgradeOnLogin {
		e.maybeUpgradeHash(ctx, record, rawPassword)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, record.ID, login, "", nil, nil)

	return record.Public(), nil
}

// maybeUpgradeHash re-hashes the password under the current configuration
// when the stored hash is weaker. Failures are logged and swallowed; the
// login already succeeded.
func (e *Engine) maybeUpgradeHash(ctx context.Context, record UserRecord, rawPassword string) {
	up, err := e.hasher.NeedsUpgrade(record.PasswordHash)
	if err != nil || !up {
		return
	}
	newHash, err := e.hasher.Hash(rawPassword)
	if err != nil {
		e.log().Warn("hash upgrade failed", "login", record.Login, "err", err)
		return
	}
	if err := e.store.UpdatePasswordHash(ctx, record.ID, newHash); err != nil {
		e.log().Warn("hash upgrade store write failed", "login", record.Login, "err", err)
	}
}

// Login writes the user into the session's current-user slot and stamps
// last_login. Credentials are not re-verified; callers pair this with a
// preceding Authenticate.
func (e *Engine) Login(ctx context.Context, sessionID string, user *User) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if user == nil || user.ID == "" {
		return ErrValidation
	}

	if err := e.sessions.SetCurrentUserID(ctx, sessionID, user.ID); err != nil {
		return ErrSessionUnavailable
	}

	if err := e.store.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// The session is already established; last_login is advisory.
		e.log().Warn("last_login update failed", "user_id", user.ID, "err", err)
	}

	e.metricInc(MetricSessionLogin)
	e.emitAudit(ctx, auditEventSessionLogin, true, user.ID, user.Login, sessionID, nil, nil)

	return nil
}

// Logout clears the session's current-user slot. Logging out an anonymous
// session is a no-op.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	if err := e.sessions.ClearCurrentUserID(ctx, sessionID); err != nil {
		return ErrSessionUnavailable
	}

	e.metricInc(MetricSessionLogout)
	e.emitAudit(ctx, auditEventSessionLogout, true, "", "", sessionID, nil, nil)

	return nil
}

// GetUser returns the public record for a login, with the credential
// material stripped.
func (e *Engine) GetUser(ctx context.Context, login string) (*User, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	record, err := e.store.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrStoreUnavailable
	}

	return record.Public(), nil
}

// CurrentUser resolves the session's authenticated user, or nil for an
// anonymous session. A slot pointing at a user that no longer exists also
// resolves to nil.
func (e *Engine) CurrentUser(ctx context.Context, sessionID string) (*User, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	userID, err := e.sessions.CurrentUserID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionUnavailable
	}
	if userID == "" {
		return nil, nil
	}

	record, err := e.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, ErrStoreUnavailable
	}

	return record.Public(), nil
}
