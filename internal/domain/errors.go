package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — запись с указанным id отсутствует
	ErrNotFound = errors.New("resume version not found")

	// ErrActiveResume — попытка удалить активную версию.
	// Сначала нужно активировать другую версию.
	ErrActiveResume = errors.New("cannot delete the active resume version")
)

// ValidationError описывает отклоненный входной параметр
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// StorageError описывает сбой объектного хранилища
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
