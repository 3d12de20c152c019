// Package goGuard provides an embeddable authentication and authorization
// core: credential verification with brute-force damping, session-bound
// login state, a codename permission model, signed password-reset tokens,
// and a composable access guard with optional CAPTCHA gating.
//
// The package is designed to be embedded into a host application that owns
// routing, HTML rendering, and outbound email. Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (User, Requirements, Verdict, etc.). Persistence lives
// behind the [CredentialStore] interface and session state behind the
// [SessionBinding] interface; both are supplied by the caller. A reference
// SQLite store ships in store/sqlite and a Redis session binding in session.
//
// # What this package must NOT do
//
//   - Route HTTP requests, render HTML, or send email.
//   - Expose storage clients or hash internals in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//
// # Security contract
//
// Authenticate is deliberately slow: every call absorbs the configured
// forced delay whether or not the credentials are valid, and all failure
// modes collapse into [ErrInvalidCredentials]. Guard verdicts carry a
// redirect target and nothing else; the stage that denied is visible only
// through audit events and logs.
package goGuard
