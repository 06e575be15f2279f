// Package alerr provides standardized error handling for airtsgen.
// All errors have stable, machine-readable codes, structured context, and proper wrapping.
package alerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: E{category}{number} where category is 1-9 and number is 001-999.
type Code string

// Error codes organized by category.
const (
	// Schema errors (E1xxx) - problems with the fetched or loaded base schema
	ErrSchemaInvalid  Code = "E1001" // Schema payload is malformed
	ErrSchemaNotFound Code = "E1002" // Schema file does not exist
	ErrTableNotFound  Code = "E1003" // Requested table is not in the base

	// Validation errors (E2xxx) - identifiers and configuration
	ErrInvalidIdentifier Code = "E2001" // Name normalizes to an invalid identifier
	ErrInvalidConfig     Code = "E2003" // Configuration value is invalid
	ErrMissingConfig     Code = "E2004" // Required configuration value is missing
	ErrInvalidHeader     Code = "E2005" // Custom header value is not a scalar

	// Provider errors (E3xxx) - schema provider failures, propagated unchanged
	ErrProviderAuth      Code = "E3001" // Credentials rejected
	ErrProviderNotFound  Code = "E3002" // Base does not exist or is not visible
	ErrProviderRateLimit Code = "E3003" // Provider throttled the request
	ErrProviderTransport Code = "E3004" // Network or unexpected HTTP failure
	ErrProviderResponse  Code = "E3005" // Response body could not be decoded

	// Output errors (E4xxx) - writing generated files
	ErrOutputWrite Code = "E4001" // Generated output could not be written

	// Cache errors (E8xxx) - problems with local cache
	ErrCacheInit    Code = "E8001" // Cache initialization failed
	ErrCacheRead    Code = "E8002" // Cache read failed
	ErrCacheWrite   Code = "E8003" // Cache write failed
	ErrCacheCorrupt Code = "E8004" // Cache is corrupted
	ErrCacheMiss    Code = "E8005" // No snapshot cached for the base

	// Internal errors (E9xxx) - unexpected internal errors
	EInternalError Code = "E9001" // Internal error
)

// Error is a coded error with structured context.
//
// Context values are rendered by the CLI as a key list and by Error() as
// key=value pairs, so they should be short scalars (ids, names, statuses).
type Error struct {
	code    Code
	message string
	context map[string]any
	helps   []string
	cause   error
}

// Error returns a single line suitable for logs:
//
//	E2001: field name has no identifier characters (field=???, table=Projects): cause
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.code))
	b.WriteString(": ")
	b.WriteString(e.message)

	if keys := e.contextKeys(); len(keys) > 0 {
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.context[k])
		}
		b.WriteString(")")
	}

	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) contextKeys() []string {
	keys := make([]string, 0, len(e.context))
	for k := range e.context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	return target != nil && errors.As(target, &t) && t.code == e.code
}

// Code returns the error code.
func (e *Error) Code() Code { return e.code }

// Message returns the message without context or cause.
func (e *Error) Message() string { return e.message }

// Context returns the structured context. Callers must not modify it.
func (e *Error) Context() map[string]any { return e.context }

// Helps returns the help suggestions, in the order they were added.
func (e *Error) Helps() []string { return e.helps }

// With adds a key-value pair to the error context.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithTable records the table a failure belongs to.
func (e *Error) WithTable(name string) *Error {
	return e.With("table", name)
}

// WithField records the field a failure belongs to.
func (e *Error) WithField(name string) *Error {
	return e.With("field", name)
}

// WithBase records the base id.
func (e *Error) WithBase(baseID string) *Error {
	return e.With("base", baseID)
}

// WithHelp adds a suggestion, shown by the CLI as "help: ...".
func (e *Error) WithHelp(help string) *Error {
	e.helps = append(e.helps, help)
	return e
}

// New creates an Error.
func New(code Code, msg string) *Error {
	return &Error{code: code, message: msg}
}

// Wrap creates an Error caused by err. A nil err gives a plain New.
func Wrap(code Code, err error, msg string) *Error {
	return &Error{code: code, message: msg, cause: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ""
}

// Is reports whether err's chain carries code.
func Is(err error, code Code) bool {
	return code != "" && CodeOf(err) == code
}

// IsProviderError reports whether err came from the schema provider (E3xxx).
func IsProviderError(err error) bool {
	return strings.HasPrefix(string(CodeOf(err)), "E3")
}
