// Package errors provides the structured error taxonomy for the MCPL
// connection core. Every failure a connection can surface falls into one of
// four categories, and callers are expected to branch on the category rather
// than on message text: a transport or closed error means the connection is
// gone, a malformed error means protocol state is suspect, and an RPC error
// is a normal protocol outcome carrying the peer's code and message.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies a connection error for programmatic handling
type Category string

const (
	// CategoryTransport is an I/O failure on the underlying stream; fatal
	CategoryTransport Category = "transport"
	// CategoryClosed is end-of-stream observed on read; fatal
	CategoryClosed Category = "closed"
	// CategoryMalformed is a line that failed parsing, classification, or
	// typed decoding
	CategoryMalformed Category = "malformed"
	// CategoryRPC is an explicit error answer from the peer; not a connection
	// defect
	CategoryRPC Category = "rpc"
)

// ConnError is the interface implemented by all connection errors
type ConnError interface {
	error

	// Code returns the JSON-RPC error code associated with the failure.
	// For CategoryRPC this is the peer's verbatim code.
	Code() int

	// Category returns the error category for classification
	Category() Category

	// Unwrap returns the underlying cause, if any
	Unwrap() error
}

// connError implements ConnError
type connError struct {
	code     int
	message  string
	category Category
	cause    error

	// raw is the offending wire text for malformed errors
	raw string
	// rpcMessage and data are the peer's message text and error payload for
	// RPC errors
	rpcMessage string
	data       []byte
}

func (e *connError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
	}
	return e.message
}

func (e *connError) Code() int {
	return e.code
}

func (e *connError) Category() Category {
	return e.category
}

func (e *connError) Unwrap() error {
	return e.cause
}

// AsConnError extracts a ConnError from an error chain
func AsConnError(err error) (ConnError, bool) {
	var ce *connError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsCategory reports whether err belongs to the given category
func IsCategory(err error, category Category) bool {
	if ce, ok := AsConnError(err); ok {
		return ce.Category() == category
	}
	return false
}

// IsClosed reports whether err signals end-of-stream
func IsClosed(err error) bool {
	return IsCategory(err, CategoryClosed)
}

// IsTransport reports whether err is an I/O failure
func IsTransport(err error) bool {
	return IsCategory(err, CategoryTransport)
}

// IsMalformed reports whether err is a framing or decoding failure
func IsMalformed(err error) bool {
	return IsCategory(err, CategoryMalformed)
}

// IsRPC reports whether err is an explicit error answer from the peer
func IsRPC(err error) bool {
	return IsCategory(err, CategoryRPC)
}

// IsFatal reports whether err means the connection can no longer be used.
// RPC errors are normal protocol outcomes; everything else is fatal or, for
// malformed messages, leaves protocol state unrecoverable in practice.
func IsFatal(err error) bool {
	ce, ok := AsConnError(err)
	if !ok {
		return false
	}
	return ce.Category() != CategoryRPC
}
