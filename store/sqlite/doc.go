// Package sqlite provides a reference CredentialStore backed by SQLite
// through the pure-Go modernc.org/sqlite driver.
//
// It owns three relations (users, permissions, and the user-permission
// membership) and bootstraps its own schema on open. Hosts with an
// existing user database implement goGuard.CredentialStore themselves;
// this package exists for small deployments and tests.
package sqlite
