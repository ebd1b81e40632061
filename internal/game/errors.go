package game

import (
	"errors"
	"fmt"
)

// Rejection kinds. Every rejected intent wraps exactly one of these and leaves
// the room untouched.
var (
	ErrIllegalState = errors.New("illegal state")
	ErrInsufficient = errors.New("insufficient resources")
	ErrNotFound     = errors.New("not found")
)

// RuleError is a recoverable rejection of a player intent.
type RuleError struct {
	Kind   error
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

func (e *RuleError) Unwrap() error {
	return e.Kind
}

func illegal(format string, args ...any) error {
	return &RuleError{Kind: ErrIllegalState, Reason: fmt.Sprintf(format, args...)}
}

func insufficient(format string, args ...any) error {
	return &RuleError{Kind: ErrInsufficient, Reason: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &RuleError{Kind: ErrNotFound, Reason: fmt.Sprintf(format, args...)}
}
