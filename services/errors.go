// services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrQuestNotFound      = errors.New("quest not found")
	ErrRewardNotFound     = errors.New("reward not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// StorageError is the fatal class: the store failed and nothing was applied.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// classify passes domain errors through and wraps everything else as a
// storage failure for op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, domain := range []error{
		ErrInvalidInput, ErrUserNotFound, ErrQuestNotFound, ErrRewardNotFound,
		ErrUsernameTaken, ErrInvalidCredentials, ErrInvalidToken,
	} {
		if errors.Is(err, domain) {
			return err
		}
	}
	if IsStorageError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
