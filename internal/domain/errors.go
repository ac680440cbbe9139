package domain

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDuplicate       = errors.New("duplicate")
	ErrPersistence     = errors.New("persistence error")
	// ErrNotification is recorded in the notification log, never returned to callers.
	ErrNotification = errors.New("notification failed")
)

// Invalidf returns an ErrInvalidArgument carrying a caller facing message.
func Invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// NotFoundf returns an ErrNotFound carrying a caller facing message.
func NotFoundf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

// WrapStoreError translates a gorm error into the domain taxonomy.
func WrapStoreError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrDuplicate), errors.Is(err, ErrPersistence):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, msg)
	case IsDuplicateKey(err):
		return errors.Wrap(ErrDuplicate, msg)
	default:
		return errors.Wrapf(ErrPersistence, "%s: %v", msg, err)
	}
}

// IsDuplicateKey reports unique constraint violations from any supported driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") ||
		strings.Contains(s, "duplicate key value")
}

// Message returns the caller facing part of a wrapped domain error.
func Message(err error) string {
	s := err.Error()
	for _, sentinel := range []error{ErrNotFound, ErrInvalidArgument, ErrDuplicate, ErrPersistence} {
		if suffix := ": " + sentinel.Error(); strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix)
		}
	}
	return s
}
