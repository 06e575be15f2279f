// Package strutil provides string utilities for word splitting, case conversion
// and string-literal escaping used throughout the airtsgen codebase.
package strutil

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// Word Splitting
// -----------------------------------------------------------------------------

// isApostrophe reports runes that are dropped inside words rather than
// splitting them, so "Client's" stays one word.
func isApostrophe(r rune) bool {
	return r == '\'' || r == '\u2019' || r == '`'
}

// Words splits a human-entered name into words.
// Boundaries are any rune that is not a letter, digit or combining mark, any
// Pattern_Syntax rune (U+2E2F is one, though Unicode calls it a letter), a
// lower-to-upper transition (isActive -> is, Active), and the end of an
// acronym (HTTPServer -> HTTP, Server). Apostrophes are removed without
// splitting.
func Words(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case isApostrophe(r):
			continue
		case unicode.IsMark(r):
			if len(cur) > 0 {
				cur = append(cur, r)
			}
			continue
		case !unicode.IsLetter(r) && !unicode.IsDigit(r), unicode.Is(unicode.Pattern_Syntax, r):
			flush()
			continue
		}

		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}

// -----------------------------------------------------------------------------
// Case Conversion
// -----------------------------------------------------------------------------

// titleWord upper-cases the first rune of w and lower-cases the rest.
func titleWord(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}

// ToPascalCase converts a name to PascalCase.
// Examples: "is active" -> IsActive, user_name -> UserName, HTTPServer -> HttpServer
func ToPascalCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, w := range Words(s) {
		b.WriteString(titleWord(w))
	}
	return b.String()
}

// ToCamelCase converts a name to camelCase.
// Examples: "Is Active" -> isActive, "Client's Name" -> clientsName
func ToCamelCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(titleWord(w))
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// String Literals
// -----------------------------------------------------------------------------

// EscapeString makes s safe to embed between single quotes in generated
// TypeScript. Backslashes and quotes are escaped, and every rune that would end
// or corrupt a single-line literal (C0 controls, DEL, U+2028, U+2029) is
// written as an escape sequence. Input is expected to be valid UTF-8.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// QuoteString returns s as a single-quoted TypeScript string literal.
func QuoteString(s string) string {
	return "'" + EscapeString(s) + "'"
}

// UnescapeString reverses EscapeString. It accepts the escapes EscapeString
// emits plus \" and \uHHHH, and rejects anything else.
func UnescapeString(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("trailing backslash at offset %d", i)
		}
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'x', 'u':
			width := 2
			if s[i] == 'u' {
				width = 4
			}
			if i+width >= len(s) {
				return "", fmt.Errorf("short \\%c escape at offset %d", s[i], i-1)
			}
			n, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad \\%c escape at offset %d: %w", s[i], i-1, err)
			}
			b.WriteRune(rune(n))
			i += width
		default:
			return "", fmt.Errorf("unknown escape \\%c at offset %d", s[i], i-1)
		}
	}

	return b.String(), nil
}
