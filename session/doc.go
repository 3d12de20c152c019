// Package session provides a Redis-backed implementation of the engine's
// session binding: per-client slots for the authenticated user ID and the
// transient pending CAPTCHA answer.
//
// The host owns session identifiers and their lifecycle; this package only
// reads and writes the two logical slots keyed by them. The captcha slot is
// consumed with GETDEL so concurrent verifications of one challenge cannot
// both observe it.
package session
