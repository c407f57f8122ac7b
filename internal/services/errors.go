package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrExpired            = errors.New("code expired")
	ErrConflict           = errors.New("already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoChannel          = errors.New("no linked channel")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrStorage and ErrNotification match any *StorageError / *NotificationError via errors.Is.
	ErrStorage      = errors.New("storage error")
	ErrNotification = errors.New("notification error")
)

// StorageError wraps a persistence failure. Operator-actionable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// NotificationError wraps a failed delivery to a linked channel. The link that
// preceded it stays in place.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification via %s: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

func (e *NotificationError) Is(target error) bool { return target == ErrNotification }
