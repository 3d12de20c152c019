package goGuard

import (
	"context"
	"strings"
)

// IssueCaptcha runs the configured generator, parks the expected answer in
// the session's transient slot (replacing any pending challenge), and
// returns the image payload for the host to render. Fails with
// [ErrCaptchaDisabled] when captcha is not enabled.
func (e *Engine) IssueCaptcha(ctx context.Context, sessionID string) ([]byte, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.Captcha.Enabled || e.captchaGen == nil {
		return nil, ErrCaptchaDisabled
	}

	image, answer := e.captchaGen()

	if err := e.sessions.SetCaptchaAnswer(ctx, sessionID, answer); err != nil {
		return nil, ErrSessionUnavailable
	}

	e.metricInc(MetricCaptchaIssued)
	e.emitAudit(ctx, auditEventCaptchaIssued, true, "", "", sessionID, nil, nil)

	return image, nil
}

// VerifyCaptcha compares the submission against the session's pending
// answer. The pending slot is consumed whatever the outcome: a challenge
// can be attempted at most once. With no challenge pending the gate fails
// closed. When captcha is disabled the gate always passes.
func (e *Engine) VerifyCaptcha(ctx context.Context, sessionID, submitted string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if !e.config.Captcha.Enabled {
		return nil
	}

	expected, pending, err := e.sessions.TakeCaptchaAnswer(ctx, sessionID)
	if err != nil {
		return ErrSessionUnavailable
	}
	if !pending {
		e.metricInc(MetricCaptchaFailure)
		e.emitAudit(ctx, auditEventCaptchaFailure, false, "", "", sessionID, ErrCaptchaNotIssued, nil)
		return ErrCaptchaNotIssued
	}

	if !e.captchaMatches(expected, submitted) {
		e.metricInc(MetricCaptchaFailure)
		e.emitAudit(ctx, auditEventCaptchaFailure, false, "", "", sessionID, ErrCaptchaFailed, nil)
		return ErrCaptchaFailed
	}

	return nil
}

func (e *Engine) captchaMatches(expected, submitted string) bool {
	if e.config.Captcha.CaseSensitive {
		return expected == submitted
	}
	return strings.EqualFold(expected, submitted)
}
