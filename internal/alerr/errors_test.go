package alerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// Constructor Tests
// -----------------------------------------------------------------------------

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    Code
		message string
	}{
		{"schema error", ErrSchemaInvalid, "schema payload is malformed"},
		{"identifier error", ErrInvalidIdentifier, "name has no identifier characters"},
		{"provider error", ErrProviderAuth, "credentials rejected"},
		{"cache error", ErrCacheRead, "cache read failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			if err.Code() != tt.code {
				t.Errorf("code = %v, want %v", err.Code(), tt.code)
			}
			if err.Message() != tt.message {
				t.Errorf("message = %v, want %v", err.Message(), tt.message)
			}
			if err.Unwrap() != nil {
				t.Error("expected nil cause for New()")
			}
			if got, want := err.Error(), string(tt.code)+": "+tt.message; got != want {
				t.Errorf("Error() = %q, want %q", got, want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("wrap existing error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(ErrProviderTransport, cause, "failed to fetch schema")

		if err.Code() != ErrProviderTransport {
			t.Errorf("code = %v, want %v", err.Code(), ErrProviderTransport)
		}
		if err.Unwrap() != cause {
			t.Error("cause should be the wrapped error")
		}
	})

	t.Run("wrap nil error", func(t *testing.T) {
		err := Wrap(ErrProviderTransport, nil, "no cause")
		if err.Unwrap() != nil {
			t.Error("expected nil cause")
		}
	})
}

// -----------------------------------------------------------------------------
// Context Builder Tests
// -----------------------------------------------------------------------------

func TestContextHelpers(t *testing.T) {
	err := New(ErrInvalidIdentifier, "bad name").
		WithTable("Projects").
		WithField("???").
		WithBase("appXXX")

	ctx := err.Context()
	if ctx["table"] != "Projects" {
		t.Errorf("table = %v", ctx["table"])
	}
	if ctx["field"] != "???" {
		t.Errorf("field = %v", ctx["field"])
	}
	if ctx["base"] != "appXXX" {
		t.Errorf("base = %v", ctx["base"])
	}
}

func TestWithHelp(t *testing.T) {
	err := New(ErrMissingConfig, "api key required").
		WithHelp("set AIRTABLE_API_KEY").
		WithHelp("or pass --api-key")

	helps := err.Helps()
	if len(helps) != 2 || helps[0] != "set AIRTABLE_API_KEY" {
		t.Fatalf("helps = %v, want 2 entries in order", helps)
	}
	if strings.Contains(err.Error(), "AIRTABLE_API_KEY") {
		t.Errorf("helps should not be part of the message: %s", err.Error())
	}
	if len(err.Context()) != 0 {
		t.Errorf("helps leaked into context: %v", err.Context())
	}
}

// -----------------------------------------------------------------------------
// Error Output Format Tests
// -----------------------------------------------------------------------------

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"context is sorted",
			New(ErrInvalidIdentifier, "field name has no identifier characters").
				WithTable("Projects").
				With("field", "???"),
			"E2001: field name has no identifier characters (field=???, table=Projects)",
		},
		{
			"cause is appended",
			Wrap(ErrProviderTransport, errors.New("timeout"), "failed to fetch").WithBase("appXXX"),
			"E3004: failed to fetch (base=appXXX): timeout",
		},
		{
			"numbers",
			New(ErrSchemaInvalid, "test").With("zebra", 1).With("alpha", 2),
			"E1001: test (alpha=2, zebra=1)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Is() and errors.Is() Tests
// -----------------------------------------------------------------------------

func TestIs(t *testing.T) {
	if !New(ErrSchemaInvalid, "a").Is(New(ErrSchemaInvalid, "b")) {
		t.Error("errors with same code should match")
	}
	if New(ErrSchemaInvalid, "a").Is(New(ErrCacheRead, "b")) {
		t.Error("errors with different codes should not match")
	}
	if New(ErrSchemaInvalid, "a").Is(nil) {
		t.Error("error should not match nil")
	}
	if New(ErrSchemaInvalid, "a").Is(errors.New("plain")) {
		t.Error("coded error should not match plain error")
	}
}

func TestErrorsIsCompatibility(t *testing.T) {
	cause := errors.New("original error")
	wrapped := Wrap(ErrProviderTransport, cause, "wrapped")

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !errors.Is(wrapped, New(ErrProviderTransport, "other")) {
		t.Error("errors.Is should match errors with same code")
	}
}

func TestCodeOf(t *testing.T) {
	inner := New(ErrProviderNotFound, "base missing")
	outer := fmt.Errorf("generate: %w", inner)

	if got := CodeOf(outer); got != ErrProviderNotFound {
		t.Errorf("code = %v, want %v", got, ErrProviderNotFound)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("code = %v, want empty", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("code = %v, want empty", got)
	}
	if !Is(outer, ErrProviderNotFound) {
		t.Error("Is should see through fmt wrapping")
	}
	if Is(errors.New("plain"), "") {
		t.Error("empty code matches nothing")
	}
}

func TestIsProviderError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrProviderAuth, "x"), true},
		{New(ErrProviderRateLimit, "x"), true},
		{New(ErrSchemaInvalid, "x"), false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := IsProviderError(tt.err); got != tt.want {
			t.Errorf("IsProviderError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
