package middleware

import (
	"context"
	"net/http"

	goGuard "github.com/MrEthical07/goGuard"
)

// Default request wiring used by [Protect].
const (
	// SessionCookie is the cookie holding the caller's session ID.
	SessionCookie = "gg_session"
	// CaptchaField is the form field holding the submitted captcha answer.
	CaptchaField = "captcha_answer"
)

type userContextKey struct{}

// UserFromContext returns the authenticated user a guard stored for this
// request, if any.
func UserFromContext(ctx context.Context) (*goGuard.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*goGuard.User)
	return user, ok
}

// Options customizes how a guard reads the session ID and captcha answer
// from the incoming request. Nil fields fall back to the cookie and form
// field defaults.
type Options struct {
	SessionID     func(r *http.Request) string
	CaptchaAnswer func(r *http.Request) string
}

// Protect wraps a handler so it is only reached when the engine allows the
// request. Denials are answered with a redirect to the verdict target;
// infrastructure failures with 503.
func Protect(engine *goGuard.Engine, req goGuard.Requirements) func(http.Handler) http.Handler {
	return ProtectWith(engine, req, Options{})
}

// ProtectWith is [Protect] with custom request wiring.
func ProtectWith(engine *goGuard.Engine, req goGuard.Requirements, opts Options) func(http.Handler) http.Handler {
	sessionID := opts.SessionID
	if sessionID == nil {
		sessionID = cookieSessionID
	}
	captchaAnswer := opts.CaptchaAnswer
	if captchaAnswer == nil {
		captchaAnswer = formCaptchaAnswer
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			verdict, err := engine.Evaluate(r.Context(), sessionID(r), req, captchaAnswer(r))
			if err != nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			if !verdict.Allowed {
				http.Redirect(w, r, verdict.Redirect, http.StatusFound)
				return
			}

			ctx := r.Context()
			if verdict.User != nil {
				ctx = context.WithValue(ctx, userContextKey{}, verdict.User)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cookieSessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func formCaptchaAnswer(r *http.Request) string {
	return r.FormValue(CaptchaField)
}
