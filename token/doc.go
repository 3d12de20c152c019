// Package token issues and validates the signed, time-limited,
// single-purpose tokens used by the password reset flow.
//
// Tokens are stateless JWTs: the login and issue timestamp travel inside
// the signed payload, so expiry is checkable without a storage round-trip,
// and any bit flip in the payload fails the signature check. Validity is
// computed at validation time as now - issued_at <= expire window.
package token
