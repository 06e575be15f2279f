// Package fieldtype maps Airtable field-type tags to TypeScript type expressions.
//
// The mapping is a registry of rules keyed by tag, in the same spirit as a
// portable type system: each rule is either static (text -> string) or derived
// from the field's options (select choices, computed result types).
//
// Resolution is total: tags without a rule degrade to the fallback type and the
// Result says so, so one stale mapping never aborts a whole generation run.
package fieldtype

import (
	"sort"
	"strings"

	"github.com/hlop3z/airtsgen/internal/schema"
	"github.com/hlop3z/airtsgen/internal/strutil"
)

// Fallback is the type emitted when a field's type cannot be determined.
const Fallback = "unknown"

// maxResultDepth bounds recursion through nested computed result types.
const maxResultDepth = 4

// -----------------------------------------------------------------------------
// Kind
// -----------------------------------------------------------------------------

// Kind groups tags by the shape of value they hold.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindBoolean
	KindDate
	KindSelect
	KindMultiSelect
	KindLink
	KindComputed
	KindLookup
	KindOpaque
)

var kindNames = [...]string{
	KindText:        "text",
	KindNumber:      "number",
	KindBoolean:     "boolean",
	KindDate:        "date",
	KindSelect:      "select",
	KindMultiSelect: "multi-select",
	KindLink:        "link",
	KindComputed:    "computed",
	KindLookup:      "lookup",
	KindOpaque:      "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// -----------------------------------------------------------------------------
// Rule - Type mapping rule
// -----------------------------------------------------------------------------

// Rule maps one Airtable tag to a TypeScript type.
type Rule struct {
	Tag    string // Airtable field type tag (e.g., "singleLineText")
	Kind   Kind   // Value shape
	TSType string // Static TypeScript type; ignored when Derive is set

	// Derive computes the type from field options. depth is the current
	// nesting level of computed result types.
	Derive func(opts *schema.FieldOptions, depth int) Result
}

// Result is the outcome of resolving a field's type.
type Result struct {
	TSType   string // TypeScript type expression, never empty
	Tag      string // Tag that was resolved
	Fallback bool   // True when TSType is a degraded placeholder
	Reason   string // Why the fallback was used
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// registry holds all registered rules indexed by tag.
var registry = make(map[string]*Rule)

// Register adds a rule to the registry.
// Panics if a rule with the same tag is already registered.
func Register(r *Rule) {
	if _, exists := registry[r.Tag]; exists {
		panic("field type already registered: " + r.Tag)
	}
	registry[r.Tag] = r
}

// Get returns the rule for the given tag, or nil.
func Get(tag string) *Rule {
	return registry[tag]
}

// Tags returns all registered tags, sorted.
func Tags() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// -----------------------------------------------------------------------------
// Resolution
// -----------------------------------------------------------------------------

// ResolveField resolves the TypeScript type of a field.
func ResolveField(f *schema.Field) Result {
	return resolve(f.Type, f.Options, 0)
}

// Resolve resolves a bare tag and its options.
func Resolve(tag string, opts *schema.FieldOptions) Result {
	return resolve(tag, opts, 0)
}

// TSType is shorthand for ResolveField(f).TSType.
func TSType(f *schema.Field) string {
	return ResolveField(f).TSType
}

func resolve(tag string, opts *schema.FieldOptions, depth int) Result {
	r := Get(tag)
	if r == nil {
		return Result{TSType: Fallback, Tag: tag, Fallback: true, Reason: "unknown field type"}
	}
	if r.Derive == nil {
		return Result{TSType: r.TSType, Tag: tag}
	}
	res := r.Derive(opts, depth)
	res.Tag = tag
	return res
}

// -----------------------------------------------------------------------------
// Derivations
// -----------------------------------------------------------------------------

// deriveButton flags buttons: they hold no record data, so there is no type
// to emit beyond a placeholder.
func deriveButton(_ *schema.FieldOptions, _ int) Result {
	return Result{TSType: Fallback, Fallback: true, Reason: "button fields hold no record data"}
}

// choiceUnion renders the configured choices as a union of string literals.
// Duplicate names collapse to one member; configured order is kept.
func choiceUnion(opts *schema.FieldOptions) string {
	if opts == nil || len(opts.Choices) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(opts.Choices))
	members := make([]string, 0, len(opts.Choices))
	for _, c := range opts.Choices {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		members = append(members, strutil.QuoteString(c.Name))
	}
	return strings.Join(members, " | ")
}

// ArrayOf wraps a type expression in an array type. Unions are parenthesized
// and types that are already arrays are returned unchanged, since Airtable
// flattens multi-value lookups into one list.
func ArrayOf(t string) string {
	switch {
	case strings.HasSuffix(t, "[]"):
		return t
	case strings.Contains(t, " | "):
		return "(" + t + ")[]"
	default:
		return t + "[]"
	}
}

func deriveSelect(opts *schema.FieldOptions, _ int) Result {
	if u := choiceUnion(opts); u != "" {
		return Result{TSType: u}
	}
	return Result{TSType: "string"}
}

func deriveMultiSelect(opts *schema.FieldOptions, _ int) Result {
	if u := choiceUnion(opts); u != "" {
		return Result{TSType: ArrayOf(u)}
	}
	return Result{TSType: "string[]"}
}

// deriveComputed resolves formula and rollup fields to their declared result.
func deriveComputed(opts *schema.FieldOptions, depth int) Result {
	if opts == nil || opts.Result == nil || opts.Result.Type == "" {
		return Result{TSType: Fallback, Fallback: true, Reason: "result type unavailable"}
	}
	if depth >= maxResultDepth {
		return Result{TSType: Fallback, Fallback: true, Reason: "result type nested too deeply"}
	}
	inner := resolve(opts.Result.Type, opts.Result.Options, depth+1)
	if inner.Fallback {
		return Result{TSType: Fallback, Fallback: true, Reason: "result type " + opts.Result.Type + ": " + inner.Reason}
	}
	return Result{TSType: inner.TSType}
}

// deriveLookup resolves lookup fields to an array of their result type.
func deriveLookup(opts *schema.FieldOptions, depth int) Result {
	res := deriveComputed(opts, depth)
	res.TSType = ArrayOf(res.TSType)
	return res
}

// -----------------------------------------------------------------------------
// Built-in Rules
// -----------------------------------------------------------------------------

func init() {
	for _, tag := range []string{
		"singleLineText", "multilineText", "richText", "email", "url", "phoneNumber",
		"barcode", "aiText", "singleCollaborator", "createdBy", "lastModifiedBy",
	} {
		Register(&Rule{Tag: tag, Kind: KindText, TSType: "string"})
	}

	for _, tag := range []string{
		"number", "percent", "currency", "rating", "duration", "count", "autoNumber",
	} {
		Register(&Rule{Tag: tag, Kind: KindNumber, TSType: "number"})
	}

	Register(&Rule{Tag: "checkbox", Kind: KindBoolean, TSType: "boolean"})

	// Dates travel as ISO-8601 strings.
	for _, tag := range []string{"date", "dateTime", "createdTime", "lastModifiedTime"} {
		Register(&Rule{Tag: tag, Kind: KindDate, TSType: "string"})
	}

	Register(&Rule{Tag: "singleSelect", Kind: KindSelect, Derive: deriveSelect})
	Register(&Rule{Tag: "externalSyncSource", Kind: KindSelect, Derive: deriveSelect})
	Register(&Rule{Tag: "multipleSelects", Kind: KindMultiSelect, Derive: deriveMultiSelect})

	// Links, collaborators and attachments are lists of ids/urls.
	for _, tag := range []string{"multipleRecordLinks", "multipleCollaborators", "multipleAttachments"} {
		Register(&Rule{Tag: tag, Kind: KindLink, TSType: "string[]"})
	}

	Register(&Rule{Tag: "formula", Kind: KindComputed, Derive: deriveComputed})
	Register(&Rule{Tag: "rollup", Kind: KindComputed, Derive: deriveComputed})
	Register(&Rule{Tag: "lookup", Kind: KindLookup, Derive: deriveLookup})
	Register(&Rule{Tag: "multipleLookupValues", Kind: KindLookup, Derive: deriveLookup})

	Register(&Rule{Tag: "button", Kind: KindOpaque, Derive: deriveButton})
}
