package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRows                 = errors.New("no rows")
	ErrUNIQUEConstraintFailed = errors.New("unique constraint failed")
	ErrInternal               = errors.New("internal server error")
	ErrMethodNotAllowed       = errors.New("method not allowed")
	ErrStoreUnavailable       = errors.New("store unavailable")

	ErrForbidden          = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrConflict         = errors.New("already exists")
	ErrUserExists       = fmt.Errorf("user %w", ErrConflict)
	ErrShareExists      = fmt.Errorf("share %w", ErrConflict)
	ErrDuplicateContent = fmt.Errorf("document with identical content %w", ErrConflict)

	ErrNotFound         = errors.New("not found")
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)
	ErrShareNotFound    = fmt.Errorf("share %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("session %w", ErrNotFound)
	ErrBlobNotFound     = fmt.Errorf("blob %w", ErrNotFound)

	ErrInvalidParams          = errors.New("invalid params")
	ErrInvalidPermissionLevel = fmt.Errorf("%w: unknown permission level", ErrInvalidParams)
	ErrInvalidPermission      = fmt.Errorf("%w: unknown permission", ErrInvalidParams)
	ErrTooManyRecipients      = fmt.Errorf("%w: too many recipients", ErrInvalidParams)
	ErrUnknownRecipient       = fmt.Errorf("%w: recipient does not exist", ErrInvalidParams)
	ErrInvalidStatus          = fmt.Errorf("%w: unknown document status", ErrInvalidParams)
	ErrUnknownTemplate        = fmt.Errorf("%w: unknown permission template", ErrInvalidParams)

	ErrShareWithOwner = &ReasonError{Reason: "cannot share with the document owner"}
	ErrShareWithSelf  = &ReasonError{Reason: "cannot share with yourself"}
)

type UniqueConstraintError struct {
	Constraint string
	Err        error
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Constraint)
}

func (e *UniqueConstraintError) Unwrap() error {
	return e.Err
}

// ReasonError is a rejection that carries a message safe to show to the caller.
// It always matches ErrForbidden.
type ReasonError struct {
	Reason string
}

func (e *ReasonError) Error() string {
	return e.Reason
}

func (e *ReasonError) Unwrap() error {
	return ErrForbidden
}
