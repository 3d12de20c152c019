package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	goGuard "github.com/MrEthical07/goGuard"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	login         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	%s            TEXT NOT NULL DEFAULT '',
	status        INTEGER NOT NULL DEFAULT 0,
	last_login    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS permissions (
	id          TEXT PRIMARY KEY,
	codename    TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_permissions (
	user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	permission_id TEXT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, permission_id)
);
`

// Options defines a public type used by goGuard APIs.
//
// Options instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Options struct {
	// Path is the database file path, or ":memory:" for tests.
	Path string
	// EmailField names the users column holding the email address,
	// matching the engine's Auth.EmailField setting. Defaults to "email".
	EmailField string
}

// Store implements goGuard.CredentialStore on SQLite.
type Store struct {
	db         *sql.DB
	emailField string
}

// Open opens (creating if necessary) the database and bootstraps the
// schema.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("database path required")
	}
	emailField := opts.EmailField
	if emailField == "" {
		emailField = "email"
	}
	if !validIdentifier(emailField) {
		return nil, fmt.Errorf("invalid email field name %q", emailField)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(schema, emailField)); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}

	return &Store{db: db, emailField: emailField}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

/*
====================================
USERS
====================================
*/

func (s *Store) userQuery(where string) string {
	return fmt.Sprintf(
		"SELECT id, login, password_hash, %s, status, last_login FROM users WHERE %s",
		s.emailField, where,
	)
}

// GetUserByLogin retrieves a user record by its unique, case-sensitive
// login key.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (goGuard.UserRecord, error) {
	return s.getUser(ctx, s.userQuery("login = ?"), login)
}

// GetUserByID retrieves a user record by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (goGuard.UserRecord, error) {
	return s.getUser(ctx, s.userQuery("id = ?"), id)
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (goGuard.UserRecord, error) {
	var (
		record    goGuard.UserRecord
		status    int
		lastLogin string
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&record.ID, &record.Login, &record.PasswordHash, &record.Email, &status, &lastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return goGuard.UserRecord{}, goGuard.ErrUserNotFound
	}
	if err != nil {
		return goGuard.UserRecord{}, fmt.Errorf("querying user: %w", err)
	}

	record.Status = goGuard.AccountStatus(status)
	if lastLogin != "" {
		record.LastLogin, _ = time.Parse(time.RFC3339, lastLogin)
	}

	return record, nil
}

// CreateUser inserts a new user. The ID is generated if empty.
func (s *Store) CreateUser(ctx context.Context, record goGuard.UserRecord) (goGuard.UserRecord, error) {
	if record.ID == "" {
		record.ID = "usr-" + uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(
			"INSERT INTO users (id, login, password_hash, %s, status, last_login) VALUES (?, ?, ?, ?, ?, '')",
			s.emailField,
		),
		record.ID, record.Login, record.PasswordHash, record.Email, int(record.Status),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return goGuard.UserRecord{}, goGuard.ErrUserExists
		}
		return goGuard.UserRecord{}, fmt.Errorf("creating user: %w", err)
	}

	return record, nil
}

// UpdatePasswordHash stores a new hash for the user.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return s.updateUser(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, userID)
}

// UpdateLastLogin stamps the user's last successful login time.
func (s *Store) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return s.updateUser(ctx,
		"UPDATE users SET last_login = ? WHERE id = ?",
		at.UTC().Format(time.RFC3339), userID,
	)
}

// UpdateStatus changes the account lifecycle state.
func (s *Store) UpdateStatus(ctx context.Context, userID string, status goGuard.AccountStatus) error {
	return s.updateUser(ctx, "UPDATE users SET status = ? WHERE id = ?", int(status), userID)
}

func (s *Store) updateUser(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n == 0 {
		return goGuard.ErrUserNotFound
	}
	return nil
}

/*
====================================
PERMISSIONS
====================================
*/

// UpsertPermission creates the codename or updates its description when it
// already exists.
func (s *Store) UpsertPermission(ctx context.Context, codename, description string) (goGuard.Permission, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO permissions (id, codename, description) VALUES (?, ?, ?)
		 ON CONFLICT(codename) DO UPDATE SET description = excluded.description`,
		"perm-"+uuid.NewString(), codename, description,
	)
	if err != nil {
		return goGuard.Permission{}, fmt.Errorf("upserting permission: %w", err)
	}

	var perm goGuard.Permission
	err = s.db.QueryRowContext(ctx,
		"SELECT id, codename, description FROM permissions WHERE codename = ?", codename,
	).Scan(&perm.ID, &perm.Codename, &perm.Description)
	if err != nil {
		return goGuard.Permission{}, fmt.Errorf("reading permission: %w", err)
	}

	return perm, nil
}

// DeletePermission removes the codename and all membership rows that
// reference it, in one transaction.
func (s *Store) DeletePermission(ctx context.Context, codename string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting permission: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM user_permissions WHERE permission_id IN (SELECT id FROM permissions WHERE codename = ?)",
		codename,
	)
	if err != nil {
		return fmt.Errorf("deleting memberships: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM permissions WHERE codename = ?", codename)
	if err != nil {
		return fmt.Errorf("deleting permission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting permission: %w", err)
	}
	if n == 0 {
		return goGuard.ErrPermissionUnknown
	}

	return tx.Commit()
}

// AddUserPermission grants codename to the user; duplicates are ignored.
func (s *Store) AddUserPermission(ctx context.Context, codename, userID string) error {
	permID, err := s.permissionID(ctx, codename)
	if err != nil {
		return err
	}
	if err := s.userExists(ctx, userID); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_permissions (user_id, permission_id) VALUES (?, ?)",
		userID, permID,
	)
	if err != nil {
		return fmt.Errorf("granting permission: %w", err)
	}
	return nil
}

// RemoveUserPermission revokes codename from the user; revoking an unheld
// permission is a no-op.
func (s *Store) RemoveUserPermission(ctx context.Context, codename, userID string) error {
	permID, err := s.permissionID(ctx, codename)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM user_permissions WHERE user_id = ? AND permission_id = ?",
		userID, permID,
	)
	if err != nil {
		return fmt.Errorf("revoking permission: %w", err)
	}
	return nil
}

// UserPermissions returns the codenames held by the user.
func (s *Store) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	if err := s.userExists(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.codename FROM permissions p
		 JOIN user_permissions up ON up.permission_id = p.id
		 WHERE up.user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing permissions: %w", err)
	}
	defer rows.Close()

	var codenames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning permission: %w", err)
		}
		codenames = append(codenames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permissions: %w", err)
	}

	return codenames, nil
}

func (s *Store) permissionID(ctx context.Context, codename string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM permissions WHERE codename = ?", codename,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", goGuard.ErrPermissionUnknown
	}
	if err != nil {
		return "", fmt.Errorf("querying permission: %w", err)
	}
	return id, nil
}

func (s *Store) userExists(ctx context.Context, userID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return goGuard.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("querying user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func validIdentifier(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return name != ""
}
