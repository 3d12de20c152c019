package goGuard

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/MrEthical07/goGuard/internal/audit"
)

// AccountStatus represents the lifecycle state of a user account.
type AccountStatus uint8

const (
	// AccountActive is an exported constant or variable used by the guard engine.
	AccountActive AccountStatus = iota
	// AccountDisabled is an exported constant or variable used by the guard engine.
	AccountDisabled
)

// User is the public account record returned by Engine methods. It never
// carries the password hash.
type User struct {
	ID        string
	Login     string
	Email     string
	Status    AccountStatus
	LastLogin time.Time
}

// UserRecord is the full account record exchanged with [CredentialStore].
// PasswordHash is empty for passwordless identities, which are valid,
// enumerable users that can never authenticate.
type UserRecord struct {
	ID           string
	Login        string
	PasswordHash string
	Email        string
	Status       AccountStatus
	LastLogin    time.Time
}

// Public strips the credential material from a store record.
func (r UserRecord) Public() *User {
	return &User{
		ID:        r.ID,
		Login:     r.Login,
		Email:     r.Email,
		Status:    r.Status,
		LastLogin: r.LastLogin,
	}
}

// Permission is a named capability. Codename is the unique human-readable
// key ("can_vote"); creation is idempotent by codename.
type Permission struct {
	ID          string
	Codename    string
	Description string
}

// CreateUserInput is the input for [Engine.CreateUser]. A nil Password
// creates a passwordless identity.
type CreateUserInput struct {
	Login    string
	Email    string
	Password *string
	Status   AccountStatus
}

// CredentialStore is the persistence interface that callers must implement
// to integrate goGuard with their user database. It owns three relations:
// users, permissions, and the user–permission membership.
//
// Implementations must report an unknown login or ID with [ErrUserNotFound]
// and an unknown codename with [ErrPermissionUnknown] so the engine can
// branch on errors.Is. A reference implementation ships in store/sqlite.
type CredentialStore interface {
	GetUserByLogin(ctx context.Context, login string) (UserRecord, error)
	GetUserByID(ctx context.Context, id string) (UserRecord, error)
	CreateUser(ctx context.Context, record UserRecord) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdateStatus(ctx context.Context, userID string, status AccountStatus) error

	// UpsertPermission creates the codename or, when it already exists,
	// updates its description. Never errors on duplicates.
	UpsertPermission(ctx context.Context, codename, description string) (Permission, error)
	// DeletePermission removes the permission and cascades removal of its
	// membership rows.
	DeletePermission(ctx context.Context, codename string) error
	// AddUserPermission grants codename to the user. Granting an already
	// held permission is a no-op.
	AddUserPermission(ctx context.Context, codename, userID string) error
	// RemoveUserPermission revokes codename from the user. Revoking an
	// unheld permission is a no-op.
	RemoveUserPermission(ctx context.Context, codename, userID string) error
	// UserPermissions returns the set of codenames held, order-independent.
	UserPermissions(ctx context.Context, userID string) ([]string, error)
}

// SessionBinding is the thin contract over the host's session store. Each
// per-client session holds at most two logical slots: the authenticated
// user ID and a transient pending CAPTCHA answer.
//
// TakeCaptchaAnswer must be atomic per session: it returns the pending
// answer and clears the slot in one step, so two concurrent verifications
// of the same challenge cannot both observe it.
type SessionBinding interface {
	CurrentUserID(ctx context.Context, sessionID string) (string, error)
	SetCurrentUserID(ctx context.Context, sessionID, userID string) error
	ClearCurrentUserID(ctx context.Context, sessionID string) error

	SetCaptchaAnswer(ctx context.Context, sessionID, answer string) error
	TakeCaptchaAnswer(ctx context.Context, sessionID string) (string, bool, error)
}

// CaptchaGenerator produces one challenge: the image payload in the
// configured image type and the expected answer. The contract is exactly
// this shape: no arguments, two outputs.
type CaptchaGenerator func() (image []byte, answer string)

// Predicate is an arbitrary access test evaluated against the session's
// current user. A false result denies.
type Predicate func(user *User) bool

// Requirements is the configuration bundle a guard evaluates before a
// protected resource is served. Permissions or Test being set implies
// RequireLogin.
type Requirements struct {
	RequireLogin bool
	Permissions  []string
	Test         Predicate
	Captcha      bool
}

// Verdict is the guard decision. When Allowed is false, Redirect is the
// target the host should send the client to; nothing else about the failed
// stage is exposed.
type Verdict struct {
	Allowed  bool
	Redirect string
	// User is the session's authenticated user, set whenever one was
	// resolved, on allow and deny alike.
	User *User
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
