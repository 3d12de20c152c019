package goGuard

import (
	"context"
	"errors"
)

// CreatePermission registers a permission codename, or updates its
// description if the codename already exists. Idempotent by codename.
func (e *Engine) CreatePermission(ctx context.Context, codename, description string) (Permission, error) {
	if e == nil || e.store == nil {
		return Permission{}, ErrEngineNotReady
	}
	if codename == "" {
		return Permission{}, ErrValidation
	}

	perm, err := e.store.UpsertPermission(ctx, codename, description)
	if err != nil {
		return Permission{}, ErrStoreUnavailable
	}

	e.emitAudit(ctx, auditEventPermissionCreated, true, "", "", "", nil, func() map[string]string {
		return map[string]string{"codename": codename}
	})

	return perm, nil
}

// DeletePermission removes the codename and cascades removal of every
// membership row referencing it.
func (e *Engine) DeletePermission(ctx context.Context, codename string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if err := e.store.DeletePermission(ctx, codename); err != nil {
		if errors.Is(err, ErrPermissionUnknown) {
			return ErrPermissionUnknown
		}
		return ErrStoreUnavailable
	}

	e.emitAudit(ctx, auditEventPermissionDeleted, true, "", "", "", nil, func() map[string]string {
		return map[string]string{"codename": codename}
	})

	return nil
}

// AddPermission grants codename to the user. Granting an already-held
// permission is a no-op.
func (e *Engine) AddPermission(ctx context.Context, codename, userID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if err := e.store.AddUserPermission(ctx, codename, userID); err != nil {
		if errors.Is(err, ErrPermissionUnknown) || errors.Is(err, ErrUserNotFound) {
			return err
		}
		return ErrStoreUnavailable
	}

	e.emitAudit(ctx, auditEventPermissionGranted, true, userID, "", "", nil, func() map[string]string {
		return map[string]string{"codename": codename}
	})

	return nil
}

// RemovePermission revokes codename from the user. Revoking an unheld
// permission is a no-op.
func (e *Engine) RemovePermission(ctx context.Context, codename, userID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if err := e.store.RemoveUserPermission(ctx, codename, userID); err != nil {
		if errors.Is(err, ErrPermissionUnknown) || errors.Is(err, ErrUserNotFound) {
			return err
		}
		return ErrStoreUnavailable
	}

	e.emitAudit(ctx, auditEventPermissionRevoked, true, userID, "", "", nil, func() map[string]string {
		return map[string]string{"codename": codename}
	})

	return nil
}

// HasPermission reports whether the user holds ALL of the given codenames.
// An anonymous user (empty userID) holds none. An empty codename list is
// vacuously true for any resolved user.
func (e *Engine) HasPermission(ctx context.Context, userID string, codenames ...string) (bool, error) {
	if e == nil || e.store == nil {
		return false, ErrEngineNotReady
	}
	if userID == "" {
		return false, nil
	}

	held, err := e.store.UserPermissions(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, ErrStoreUnavailable
	}

	heldSet := make(map[string]struct{}, len(held))
	for _, name := range held {
		heldSet[name] = struct{}{}
	}

	for _, want := range codenames {
		if _, ok := heldSet[want]; !ok {
			return false, nil
		}
	}

	return true, nil
}

// Permissions returns the set of codenames the user holds. Order is not
// significant.
func (e *Engine) Permissions(ctx context.Context, userID string) ([]string, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, nil
	}

	held, err := e.store.UserPermissions(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, ErrStoreUnavailable
	}

	return held, nil
}
