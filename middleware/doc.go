// Package middleware exposes HTTP middleware adapters that enforce guard
// requirements on top of goGuard.Engine evaluation.
//
// # Guards
//
//   - [Protect] — evaluates a Requirements bundle with default request wiring.
//   - [ProtectWith] — same, with custom session-ID and captcha-answer extraction.
//
// Each guard resolves the caller's session ID, calls Engine.Evaluate, and on
// allow injects the authenticated user into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT make
// access decisions itself: ordering, short-circuiting, and redirect targets
// are all owned by Engine.Evaluate.
//
// # What this package must NOT do
//
//   - Read or write session state directly (Engine owns the binding).
//   - Distinguish denial stages in responses (every deny is one redirect).
//   - Evaluate permissions or predicates outside Engine.Evaluate.
package middleware
