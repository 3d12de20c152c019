package goGuard

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGuard/password"
	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
)

type mockCredentialStore struct {
	users   map[string]UserRecord // keyed by ID
	byLogin map[string]string
	perms   map[string]Permission      // keyed by codename
	held    map[string]map[string]bool // userID -> codenames
	mu      sync.Mutex

	lookupErr error
	updateErr error
	createErr error

	getByLoginCalls      int
	getByIDCalls         int
	createCalls          int
	updateHashCalls      int
	updateLastLoginCalls int
	updateStatusCalls    int
}

func newMockStore() *mockCredentialStore {
	return &mockCredentialStore{
		users:   make(map[string]UserRecord),
		byLogin: make(map[string]string),
		perms:   make(map[string]Permission),
		held:    make(map[string]map[string]bool),
	}
}

func (m *mockCredentialStore) addUser(record UserRecord) UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == "" {
		record.ID = fmt.Sprintf("u%d", len(m.users)+1)
	}
	m.users[record.ID] = record
	m.byLogin[record.Login] = record.ID
	return record
}

func (m *mockCredentialStore) GetUserByLogin(_ context.Context, login string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByLoginCalls++

	if m.lookupErr != nil {
		return UserRecord{}, m.lookupErr
	}
	id, ok := m.byLogin[login]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return m.users[id], nil
}

func (m *mockCredentialStore) GetUserByID(_ context.Context, id string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByIDCalls++

	if m.lookupErr != nil {
		return UserRecord{}, m.lookupErr
	}
	user, ok := m.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (m *mockCredentialStore) CreateUser(_ context.Context, record UserRecord) (UserRecord, error) {
	m.mu.Lock()
	m.createCalls++
	if m.createErr != nil {
		m.mu.Unlock()
		return UserRecord{}, m.createErr
	}
	if _, exists := m.byLogin[record.Login]; exists {
		m.mu.Unlock()
		return UserRecord{}, ErrUserExists
	}
	m.mu.Unlock()
	return m.addUser(record), nil
}

func (m *mockCredentialStore) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateHashCalls++

	if m.updateErr != nil {
		return m.updateErr
	}
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = hash
	m.users[userID] = user
	return nil
}

func (m *mockCredentialStore) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateLastLoginCalls++

	if m.updateErr != nil {
		return m.updateErr
	}
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.LastLogin = at
	m.users[userID] = user
	return nil
}

func (m *mockCredentialStore) UpdateStatus(_ context.Context, userID string, status AccountStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateStatusCalls++

	if m.updateErr != nil {
		return m.updateErr
	}
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Status = status
	m.users[userID] = user
	return nil
}

func (m *mockCredentialStore) UpsertPermission(_ context.Context, codename, description string) (Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	perm, exists := m.perms[codename]
	if !exists {
		perm = Permission{ID: fmt.Sprintf("p%d", len(m.perms)+1), Codename: codename}
	}
	perm.Description = description
	m.perms[codename] = perm
	return perm, nil
}

func (m *mockCredentialStore) DeletePermission(_ context.Context, codename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.perms[codename]; !ok {
		return ErrPermissionUnknown
	}
	delete(m.perms, codename)
	for userID := range m.held {
		delete(m.held[userID], codename)
	}
	return nil
}

func (m *mockCredentialStore) AddUserPermission(_ context.Context, codename, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.perms[codename]; !ok {
		return ErrPermissionUnknown
	}
	if _, ok := m.users[userID]; !ok {
		return ErrUserNotFound
	}
	if m.held[userID] == nil {
		m.held[userID] = make(map[string]bool)
	}
	m.held[userID][codename] = true
	return nil
}

func (m *mockCredentialStore) RemoveUserPermission(_ context.Context, codename, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.perms[codename]; !ok {
		return ErrPermissionUnknown
	}
	delete(m.held[userID], codename)
	return nil
}

func (m *mockCredentialStore) UserPermissions(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return nil, ErrUserNotFound
	}
	var out []string
	for name := range m.held[userID] {
		out = append(out, name)
	}
	return out, nil
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func newTestHasher(t *testing.T) *password.Hasher {
	t.Helper()

	// Low cost keeps the suite fast; dispatch behavior is cost-independent.
	h, err := password.New(password.Config{Algorithm: password.AlgBcrypt, Depth: 4})
	if err != nil {
		t.Fatalf("password.New failed: %v", err)
	}
	return h
}

func newTestTokens(t *testing.T, expireAfter time.Duration) *token.Service {
	t.Helper()

	svc, err := token.NewService(token.Config{
		Secret:      []byte("0123456789abcdef"),
		ExpireAfter: expireAfter,
	})
	if err != nil {
		t.Fatalf("token.NewService failed: %v", err)
	}
	return svc
}

// newTestEngine assembles an engine directly, bypassing the builder, so
// individual tests can adjust config and collaborators freely.
func newTestEngine(t *testing.T, store CredentialStore, rdb *redis.Client) *Engine {
	t.Helper()

	cfg := defaultConfig()
	cfg.Auth.ForcedDelay = 0
	cfg.PasswordReset.Secret = []byte("0123456789abcdef")

	return &Engine{
		config:   cfg,
		store:    store,
		sessions: session.NewRedisBinding(rdb, "gg", time.Hour),
		hasher:   newTestHasher(t),
		tokens:   newTestTokens(t, cfg.PasswordReset.ExpireAfter),
		sleep:    func(time.Duration) {},
	}
}
