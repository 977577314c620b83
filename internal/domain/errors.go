// Package domain holds the value types and error taxonomy shared by all
// ledger modules.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes rule violations so the transport layer can map them
// to a status without parsing messages.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindDuplicateName   ErrorKind = "duplicate_name"
	KindUnknownBroker   ErrorKind = "unknown_broker"
	KindUnknownStrategy ErrorKind = "unknown_strategy"
	KindInvalidAmount   ErrorKind = "invalid_amount"
	KindInvalidQuantity ErrorKind = "invalid_quantity"
	KindInvalidPrice    ErrorKind = "invalid_price"
	KindInvalidValue    ErrorKind = "invalid_value"
	KindBrokerInUse     ErrorKind = "broker_in_use"
)

// Error is a validation failure: a machine-distinguishable kind plus a
// human-readable message. All rule violations surface as *Error; everything
// else (driver failures, I/O) stays a plain wrapped error.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a typed validation error.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind carried by err, or "" when err is not a validation
// error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
