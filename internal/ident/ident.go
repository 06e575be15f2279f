// Package ident turns human-entered Airtable table and field names into valid,
// collision-free TypeScript identifiers.
//
// Normalization is deterministic: the same raw name and case always produce the
// same identifier. De-duplication within a scope is done separately by Namer,
// after normalization.
package ident

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/internal/strutil"
)

// Case is the naming convention an identifier is rendered in.
type Case int

const (
	// Camel is used for value bindings and members (isActive, projectsTable).
	Camel Case = iota
	// Pascal is used for type names (Project).
	Pascal
)

func (c Case) String() string {
	if c == Pascal {
		return "pascal"
	}
	return "camel"
}

// TableSuffix is appended to the camel-cased table name of a table binding.
const TableSuffix = "Table"

// Normalize converts raw into an identifier in the requested case:
//
//  1. split raw into words (punctuation and spacing are boundaries, apostrophes are dropped)
//  2. join the words in the requested case
//  3. prefix "_" when the result starts with a digit
//  4. suffix "_" when the result is a reserved word
//
// A name without a single letter or digit is an error.
func Normalize(raw string, c Case) (string, error) {
	name := recase(raw, c)
	if name == "" {
		return "", emptyIdentifierError(raw, c)
	}
	return escape(name, c), nil
}

// FieldName normalizes a field name into a camelCase member name.
func FieldName(raw string) (string, error) {
	return Normalize(raw, Camel)
}

// ItemTypeName derives the record interface name for a table: the PascalCase
// table name with one trailing "s" removed.
//
// The singular form is a heuristic, not real pluralization: "Invoices" becomes
// "Invoice" but "Status" becomes "Statu". Reserved words are checked after the
// strip, so "Items" becomes "Item_" rather than shadowing the imported Item.
func ItemTypeName(tableName string) (string, error) {
	name := recase(tableName, Pascal)
	if name == "" {
		return "", emptyIdentifierError(tableName, Pascal)
	}
	return escape(Singular(name), Pascal), nil
}

// TableBindingName derives the table binding name: the camelCase table name
// followed by TableSuffix ("Projects" -> projectsTable).
func TableBindingName(tableName string) (string, error) {
	name := recase(tableName, Camel)
	if name == "" {
		return "", emptyIdentifierError(tableName, Camel)
	}
	return escape(name+TableSuffix, Camel), nil
}

// Singular strips exactly one trailing "s" from names of two or more runes.
func Singular(name string) string {
	if utf8.RuneCountInString(name) >= 2 && strings.HasSuffix(name, "s") {
		return name[:len(name)-1]
	}
	return name
}

// Valid reports whether name is a usable TypeScript identifier for the case:
// it starts with a letter, "_" or "$", continues with letters, digits, marks,
// "_" or "$", and is not reserved. Pattern_Syntax runes are never allowed,
// even the ones Unicode classes as letters.
func Valid(name string, c Case) bool {
	if name == "" || IsReserved(name, c) {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case unicode.Is(unicode.Pattern_Syntax, r):
			return false
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.IsMark(r)):
		default:
			return false
		}
	}
	return true
}

// MustValid panics when name is not a valid identifier. Emitters call it on
// every identifier they write; a panic means the character or keyword tables
// in this package are incomplete.
func MustValid(name string, c Case) string {
	if !Valid(name, c) {
		panic(fmt.Sprintf("ident: generated invalid %s identifier %q", c, name))
	}
	return name
}

func recase(raw string, c Case) string {
	if c == Pascal {
		return strutil.ToPascalCase(raw)
	}
	return strutil.ToCamelCase(raw)
}

func escape(name string, c Case) string {
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(r) {
		name = "_" + name
	}
	if IsReserved(name, c) {
		name += ReservedSuffix
	}
	return MustValid(name, c)
}

func emptyIdentifierError(raw string, c Case) *alerr.Error {
	return alerr.New(alerr.ErrInvalidIdentifier, "name has no identifier characters").
		With("name", raw).
		With("case", c.String()).
		WithHelp("rename it in Airtable so it contains at least one letter or digit")
}
