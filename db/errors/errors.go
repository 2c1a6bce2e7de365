// Package errors holds the typed errors returned by the storage layer.
package errors

import "errors"

// EntryNotFound is returned when a lookup matches no row.
type EntryNotFound struct {
	msg string
}

func NewEntryNotFound(msg string) error {
	return &EntryNotFound{msg: msg}
}

func (e *EntryNotFound) Error() string {
	return e.msg
}

func IsEntryNotFound(err error) bool {
	var e *EntryNotFound
	return errors.As(err, &e)
}
