package repository

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product with this id already exists")
)

// StorageReadError reports an unreadable slot or a payload that does not decode
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError reports a payload that could not be encoded or written
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is a read or write failure of the storage medium
func IsStorageError(err error) bool {
	var readErr *StorageReadError
	var writeErr *StorageWriteError
	return errors.As(err, &readErr) || errors.As(err, &writeErr)
}
