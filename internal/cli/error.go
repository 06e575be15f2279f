package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hlop3z/airtsgen/internal/alerr"
)

// MessageType represents the type of diagnostic message.
type MessageType int

const (
	TypeError MessageType = iota
	TypeWarning
	TypeNote
	TypeHelp
)

// DiagnosticMessage is a single diagnostic with optional location and hints.
type DiagnosticMessage struct {
	Type    MessageType
	Code    string // Error code like "E2001" (empty for warnings/notes/help)
	Message string
	File    string
	Notes   []string
	Helps   []string
}

// FormatError formats an error for CLI display in Cargo/rustc style.
// Coded errors show their code, context, help hints and cause.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var e *alerr.Error
	if errors.As(err, &e) {
		return formatCodedError(e)
	}
	return formatGenericError(err)
}

// formatCodedError renders:
//
//	error[E2001]: name has no identifier characters
//	   |
//	   | field: ???
//	   | table: Projects
//	help: rename it in Airtable ...
func formatCodedError(err *alerr.Error) string {
	var b strings.Builder

	b.WriteString(Error("error"))
	b.WriteString("[")
	b.WriteString(Code(string(err.Code())))
	b.WriteString("]: ")
	b.WriteString(err.Message())
	b.WriteString("\n")

	ctx := err.Context()
	if path, ok := ctx["path"].(string); ok && path != "" {
		b.WriteString("  ")
		b.WriteString(render(stylePipe, "-->"))
		b.WriteString(" ")
		b.WriteString(FilePath(path))
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if k == "path" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > 0 {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "   %s %s: %v\n", Pipe(), k, ctx[k])
		}
	}

	for _, help := range err.Helps() {
		b.WriteString(Help("help"))
		b.WriteString(": ")
		b.WriteString(help)
		b.WriteString("\n")
	}

	if cause := err.Unwrap(); cause != nil {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString("\n")
		b.WriteString(Note("cause"))
		b.WriteString(": ")
		b.WriteString(cause.Error())
		b.WriteString("\n")
	}

	return b.String()
}

func formatGenericError(err error) string {
	return Error("error") + ": " + err.Error() + "\n"
}

// FormatWarning formats a warning message in Cargo style.
func FormatWarning(msg string, opts ...DiagnosticOption) string {
	d := &DiagnosticMessage{Type: TypeWarning, Message: msg}
	for _, opt := range opts {
		opt(d)
	}
	return formatDiagnostic(d)
}

// FormatNote formats a note message.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}

// DiagnosticOption configures a diagnostic message.
type DiagnosticOption func(*DiagnosticMessage)

// WithFile sets the file a diagnostic refers to.
func WithFile(file string) DiagnosticOption {
	return func(d *DiagnosticMessage) {
		d.File = file
	}
}

// WithNotes adds notes to a diagnostic.
func WithNotes(notes ...string) DiagnosticOption {
	return func(d *DiagnosticMessage) {
		d.Notes = append(d.Notes, notes...)
	}
}

// WithHelps adds help suggestions to a diagnostic. Empty helps are skipped.
func WithHelps(helps ...string) DiagnosticOption {
	return func(d *DiagnosticMessage) {
		for _, h := range helps {
			if h != "" {
				d.Helps = append(d.Helps, h)
			}
		}
	}
}

func formatDiagnostic(d *DiagnosticMessage) string {
	var b strings.Builder

	switch d.Type {
	case TypeError:
		b.WriteString(Error("error"))
		if d.Code != "" {
			b.WriteString("[")
			b.WriteString(Code(d.Code))
			b.WriteString("]")
		}
	case TypeWarning:
		b.WriteString(Warning("warning"))
	case TypeNote:
		b.WriteString(Note("note"))
	case TypeHelp:
		b.WriteString(Help("help"))
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteString("\n")

	if d.File != "" {
		b.WriteString("  ")
		b.WriteString(render(stylePipe, "-->"))
		b.WriteString(" ")
		b.WriteString(FilePath(d.File))
		b.WriteString("\n")
	}

	for _, note := range d.Notes {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString("\n")
		b.WriteString(Note("note"))
		b.WriteString(": ")
		b.WriteString(note)
		b.WriteString("\n")
	}
	for _, help := range d.Helps {
		b.WriteString(Help("help"))
		b.WriteString(": ")
		b.WriteString(help)
		b.WriteString("\n")
	}
	return b.String()
}
