package goGuard

import (
	"context"
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestCreateUserWithPassword(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newMockStore()
	engine := newTestEngine(t, store, rdb)

	user, err := engine.CreateUser(context.Background(), CreateUserInput{
		Login:    "alice",
		Email:    "alice@example.com",
		Password: strPtr("correct-horse-9"),
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" || user.Login != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	// The stored hash must verify and never appear on the public record.
	stored := store.users[user.ID]
	if stored.PasswordHash == "" || stored.PasswordHash == "correct-horse-9" {
		t.Fatalf("unexpected stored hash: %q", stored.PasswordHash)
	}
	ok, err := engine.hasher.Verify("correct-horse-9", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash verify failed, ok=%v err=%v", ok, err)
	}
}

func TestCreateUserPasswordless(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newMockStore()
	engine := newTestEngine(t, store, rdb)

	user, err := engine.CreateUser(context.Background(), CreateUserInput{Login: "svc-account"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if store.users[user.ID].PasswordHash != "" {
		t.Fatal("passwordless identity must have an empty hash")
	}

	// The identity exists but can never authenticate.
	if _, err := engine.Authenticate(context.Background(), "svc-account", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newMockStore()
	engine := newTestEngine(t, store, rdb)
	ctx := context.Background()

	if _, err := engine.CreateUser(ctx, CreateUserInput{Login: ""}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty login, got %v", err)
	}
	if _, err := engine.CreateUser(ctx, CreateUserInput{Login: "alice", Password: strPtr("short")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}
	if store.createCalls != 0 {
		t.Fatalf("store must not be reached on validation failure, got %d calls", store.createCalls)
	}

	if _, err := engine.CreateUser(ctx, CreateUserInput{Login: "alice"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := engine.CreateUser(ctx, CreateUserInput{Login: "alice"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newMockStore()
	engine := newTestEngine(t, store, rdb)
	record := seedUser(t, store, engine, "alice", "old-password-1")

	ctx := context.Background()
	if err := engine.SetPassword(ctx, "alice", "new-password-1"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	ok, err := engine.hasher.Verify("new-password-1", store.users[record.ID].PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new hash verify failed, ok=%v err=%v", ok, err)
	}

	if err := engine.SetPassword(ctx, "alice", "short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := engine.SetPassword(ctx, "nobody", "new-password-1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newMockStore()
	engine := newTestEngine(t, store, rdb)
	record := seedUser(t, store, engine, "alice", "old-password-1")
	oldHash := store.users[record.ID].PasswordHash

	ctx := context.Background()
	if err := engine.ChangePassword(ctx, "alice", "old-password-1", "new-password-1"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if store.users[record.ID].PasswordHash == oldHash {
		t.Fatal("expected hash to change")
	}
}

func TestChangePasswordUniformFailure(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newMockStore()
	engine := newTestEngine(t, store, rdb)
	record := seedUser(t, store, engine, "alice", "old-password-1")
	seedUser(t, store, engine, "nopass", "")
	oldHash := store.users[record.ID].PasswordHash

	ctx := context.Background()

	// Wrong old password, unknown login, and passwordless identity all
	// report the same error.
	for _, tc := range []struct{ login, old string }{
		{"alice", "wrong-old-pass"},
		{"nobody", "old-password-1"},
		{"nopass", "old-password-1"},
	} {
		if err := engine.ChangePassword(ctx, tc.login, tc.old, "new-password-1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login %q: expected ErrInvalidCredentials, got %v", tc.login, err)
		}
	}

	if store.users[record.ID].PasswordHash != oldHash {
		t.Fatal("hash must not change on failed attempts")
	}
}

func TestDisableEnableUser(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newMockStore()
	engine := newTestEngine(t, store, rdb)
	record := seedUser(t, store, engine, "alice", "correct-horse-9")

	ctx := context.Background()
	if err := engine.DisableUser(ctx, "alice"); err != nil {
		t.Fatalf("DisableUser failed: %v", err)
	}
	if store.users[record.ID].Status != AccountDisabled {
		t.Fatal("expected disabled status")
	}
	if _, err := engine.Authenticate(ctx, "alice", "correct-horse-9"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("disabled account must not authenticate, got %v", err)
	}

	// Disabling twice is a no-op, not an error.
	writes := store.updateStatusCalls
	if err := engine.DisableUser(ctx, "alice"); err != nil {
		t.Fatalf("repeat DisableUser failed: %v", err)
	}
	if store.updateStatusCalls != writes {
		t.Fatal("no-op disable must not write")
	}

	if err := engine.EnableUser(ctx, "alice"); err != nil {
		t.Fatalf("EnableUser failed: %v", err)
	}
	if _, err := engine.Authenticate(ctx, "alice", "correct-horse-9"); err != nil {
		t.Fatalf("re-enabled account should authenticate: %v", err)
	}

	if err := engine.DisableUser(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
