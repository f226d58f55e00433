// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package curve

import (
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrInvalidPoint indicates a point whose coordinates are outside the
	// field range or do not satisfy the curve equation, or a serialized
	// point that is malformed.
	ErrInvalidPoint ErrorCode = iota

	// ErrInvalidOperand indicates a scalar operand that has no inverse
	// modulo the relevant modulus, or an operand string that does not
	// parse as a non-negative integer.
	ErrInvalidOperand

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidPoint:   "ErrInvalidPoint",
	ErrInvalidOperand: "ErrInvalidOperand",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies a curve arithmetic or encoding failure.  It is used to
// indicate that an operation on a point or scalar could not be carried out.
// The caller can use type assertions to determine if a failure was
// specifically due to an invalid point versus an invalid operand by
// examining the ErrorCode field.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// makeError creates an Error given a set of arguments.
func makeError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a curve error
// with the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	cerr, ok := err.(Error)
	return ok && cerr.ErrorCode == c
}
