package ident

// ReservedSuffix is appended to a name that collides with a reserved word.
const ReservedSuffix = "_"

// reservedWords are JavaScript/TypeScript reserved words, strict-mode reserved
// words and literals. None of them may name a binding or a member shorthand.
var reservedWords = map[string]bool{
	// ECMAScript reserved words
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true,

	// Strict mode and contextual words
	"yield": true, "let": true, "static": true, "implements": true,
	"interface": true, "package": true, "private": true, "protected": true,
	"public": true, "await": true, "async": true, "arguments": true, "eval": true,
	"type": true, "undefined": true,
}

// reservedTypeNames cannot be declared as interface names: TypeScript's
// primitive type names, and the names the generated file imports.
var reservedTypeNames = map[string]bool{
	"any": true, "unknown": true, "never": true, "string": true, "number": true,
	"boolean": true, "object": true, "symbol": true, "bigint": true,

	"Item": true, "Table": true,
}

// IsReserved reports whether name collides with a reserved word for the case.
func IsReserved(name string, c Case) bool {
	if reservedWords[name] {
		return true
	}
	return c == Pascal && reservedTypeNames[name]
}
