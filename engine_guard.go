package goGuard

import (
	"context"
	"errors"
)

// Evaluate is the guard decision for one protected-resource invocation.
// Checks run in order (captcha, login, permissions, predicate) and
// short-circuit on the first failure. Every denial redirects to the
// configured login URL; the verdict never discloses which stage failed.
// The captchaAnswer argument is the just-submitted response and is only
// consulted when req.Captcha is set.
//
// A non-nil error reports infrastructure failure (session or store
// unreachable), not denial.
func (e *Engine) Evaluate(ctx context.Context, sessionID string, req Requirements, captchaAnswer string) (Verdict, error) {
	if e == nil || e.sessions == nil {
		return Verdict{}, ErrEngineNotReady
	}

	deny := Verdict{Allowed: false, Redirect: e.config.URLs.Login}

	denied := func(user *User, cause error, stage string) (Verdict, error) {
		e.metricInc(MetricGuardDenied)
		e.log().Info("guard denied", "session_id", sessionID, "stage", stage)
		e.emitAudit(ctx, auditEventGuardDenied, false, userID(user), "", sessionID, cause, func() map[string]string {
			return map[string]string{"stage": stage}
		})
		out := deny
		out.User = user
		return out, nil
	}

	// Permission or predicate requirements only make sense against an
	// authenticated user.
	requireLogin := req.RequireLogin || len(req.Permissions) > 0 || req.Test != nil

	if req.Captcha {
		switch err := e.VerifyCaptcha(ctx, sessionID, captchaAnswer); {
		case err == nil:
		case errors.Is(err, ErrCaptchaFailed), errors.Is(err, ErrCaptchaNotIssued):
			return denied(nil, err, "captcha")
		default:
			return Verdict{}, err
		}
	}

	user, err := e.CurrentUser(ctx, sessionID)
	if err != nil {
		return Verdict{}, err
	}

	if requireLogin && user == nil {
		return denied(nil, ErrAccessDenied, "login")
	}

	if len(req.Permissions) > 0 {
		ok, err := e.HasPermission(ctx, user.ID, req.Permissions...)
		if err != nil {
			return Verdict{}, err
		}
		if !ok {
			return denied(user, ErrAccessDenied, "permission")
		}
	}

	if req.Test != nil && !req.Test(user) {
		return denied(user, ErrAccessDenied, "test")
	}

	e.metricInc(MetricGuardAllowed)
	e.emitAudit(ctx, auditEventGuardAllowed, true, userID(user), "", sessionID, nil, nil)

	return Verdict{Allowed: true, User: user}, nil
}

func userID(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
