// Package password implements the one-way password hashing schemes used by
// the guard engine: two iterated-digest schemes (SHA-1 and SHA-512 through
// PBKDF2) and an adaptive salted scheme (bcrypt).
//
// Every stored hash is self-describing. Verification dispatches on the
// stored value's own prefix, never on the currently configured scheme, so
// rotating the configured algorithm does not invalidate existing hashes.
package password
