package types

import (
	"errors"
	"fmt"
	"strings"
)

// UnresolvedNameError is returned when no context or provider knows a name.
type UnresolvedNameError struct {
	Name    string
	Context string
}

func NewUnresolvedNameError(name, context string) *UnresolvedNameError {
	return &UnresolvedNameError{Name: name, Context: context}
}

func (e *UnresolvedNameError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("unresolved name %q", e.Name)
	}
	return fmt.Sprintf("unresolved name %q in %s", e.Name, e.Context)
}

// AmbiguityError lists the equally applicable candidates of a call.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func NewAmbiguityError(name string, candidates []string) *AmbiguityError {
	return &AmbiguityError{Name: name, Candidates: candidates}
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous call to %s: %s", e.Name, strings.Join(e.Candidates, ", "))
}

type ConflictingTypesError struct {
	Formal string
	Actual string
}

func NewConflictingTypesError(formal, actual Type) *ConflictingTypesError {
	return &ConflictingTypesError{Formal: Describe(formal), Actual: Describe(actual)}
}

func (e *ConflictingTypesError) Error() string {
	return fmt.Sprintf("conflicting types: %s and %s", e.Formal, e.Actual)
}

// TypeShapeError means a type was narrowed to the wrong variant. It always indicates a bug.
type TypeShapeError struct {
	Want string
	Got  string
}

func NewTypeShapeError(want, got string) *TypeShapeError {
	return &TypeShapeError{Want: want, Got: got}
}

func (e *TypeShapeError) Error() string {
	return fmt.Sprintf("expected a %s type, got %s", e.Want, e.Got)
}

type UnsupportedConstructError struct {
	Construct string
}

func NewUnsupportedConstructError(format string, a ...any) *UnsupportedConstructError {
	return &UnsupportedConstructError{Construct: fmt.Sprintf(format, a...)}
}

func (e *UnsupportedConstructError) Error() string {
	return "unsupported construct: " + e.Construct
}

type IllegalStateError struct {
	Msg string
}

func NewIllegalStateError(format string, a ...any) *IllegalStateError {
	return &IllegalStateError{Msg: fmt.Sprintf(format, a...)}
}

func (e *IllegalStateError) Error() string { return "illegal state: " + e.Msg }

// RecursionLimitError replaces stack exhaustion: resolution gave up on a cyclic or too deep chain.
type RecursionLimitError struct {
	What  string
	Depth int
}

func NewRecursionLimitError(what string, depth int) *RecursionLimitError {
	return &RecursionLimitError{What: what, Depth: depth}
}

func (e *RecursionLimitError) Error() string {
	if e.Depth > 0 {
		return fmt.Sprintf("recursion limit reached at depth %d while resolving %s", e.Depth, e.What)
	}
	return "cycle detected while resolving " + e.What
}

// IsUnresolved reports whether err is, or wraps, an UnresolvedNameError.
func IsUnresolved(err error) bool {
	var target *UnresolvedNameError
	return errors.As(err, &target)
}
