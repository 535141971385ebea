// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies a kind of rule violation.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrInvalidBlock indicates the block failed structural validation,
	// either an intrinsic check or the caller-supplied validator.
	ErrInvalidBlock ErrorCode = iota

	// ErrBadHeight indicates the declared height of the block does not
	// equal its parent's height plus one.
	ErrBadHeight

	// ErrParentBlockUnknown indicates the parent of the block is not
	// known to the chain.
	ErrParentBlockUnknown

	// ErrExecutionFailed indicates the executor rejected the block when
	// applying it to the state of its parent.
	ErrExecutionFailed
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidBlock:       "ErrInvalidBlock",
	ErrBadHeight:          "ErrBadHeight",
	ErrParentBlockUnknown: "ErrParentBlockUnknown",
	ErrExecutionFailed:    "ErrExecutionFailed",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block failed due to one of the many validation rules.
// The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
