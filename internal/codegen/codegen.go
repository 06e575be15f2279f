// Package codegen emits the airtable-ts TypeScript source for a base schema.
//
// Each table becomes two declarations: a record interface (the item type) and
// a Table binding carrying the table's ids and its field mappings. Output is a
// pure function of the schema and base id; table order follows the provider.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/internal/fieldtype"
	"github.com/hlop3z/airtsgen/internal/ident"
	"github.com/hlop3z/airtsgen/internal/schema"
	"github.com/hlop3z/airtsgen/internal/strutil"
)

// Generator is the name stamped into the header of generated files.
const Generator = "airtsgen"

// RuntimeModule is the module the generated code imports its base types from.
const RuntimeModule = "airtable-ts"

// Header is the fixed preamble of every generated file.
const Header = "/* DO NOT EDIT: this file was automatically generated by " + Generator + " */\n" +
	"/* eslint-disable */\n" +
	"import { Item, Table } from '" + RuntimeModule + "';\n"

// DefaultConcurrency bounds how many tables are rendered at once.
const DefaultConcurrency = 4

// Options configures a generation run.
type Options struct {
	// Concurrency is the maximum number of tables rendered in parallel.
	// Zero means DefaultConcurrency.
	Concurrency int
}

// GeneratedField is a schema field annotated with its generated member name
// and TypeScript type. It only lives for one run.
type GeneratedField struct {
	*schema.Field
	JSName string
	JSType string
}

// TableNames are the generated identifiers of one table.
type TableNames struct {
	Item    string // record interface name, e.g. Project
	Binding string // table binding name, e.g. projectsTable
}

// TableCode is the rendered block of one table.
type TableCode struct {
	Table    *schema.Table
	Names    TableNames
	Fields   []GeneratedField
	Code     string
	Warnings []Warning
}

// Output is the result of generating a whole base.
type Output struct {
	Text     string
	Tables   []*TableCode
	Warnings []Warning
}

// Warning reports a field whose type degraded to a placeholder.
type Warning struct {
	Table   string
	TableID string
	Field   string
	FieldID string
	Tag     string
	TSType  string
	Reason  string
	Hint    string
}

func (w Warning) String() string {
	s := fmt.Sprintf("%s.%s: %s (%s), emitted %s", w.Table, w.Field, w.Reason, w.Tag, w.TSType)
	if w.Hint != "" {
		s += " (" + w.Hint + ")"
	}
	return s
}

// -----------------------------------------------------------------------------
// Base generation
// -----------------------------------------------------------------------------

// Generate renders every table of the base and assembles the final file.
// Any table error aborts the run; there is no partial output.
func Generate(ctx context.Context, baseID string, base schema.Base, opts Options) (*Output, error) {
	names, err := PlanNames(base)
	if err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	tables := make([]*TableCode, len(base))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, t := range base {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tc, err := GenerateTable(baseID, t, names[i])
			if err != nil {
				return err
			}
			tables[i] = tc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Output{Tables: tables}
	blocks := make([]string, len(tables))
	for i, tc := range tables {
		blocks[i] = tc.Code
		out.Warnings = append(out.Warnings, tc.Warnings...)
	}
	out.Text = RenderFile(blocks)
	return out, nil
}

// RenderFile joins table blocks with a blank line and prefixes the header.
func RenderFile(blocks []string) string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")
	sb.WriteString(strings.Join(blocks, "\n\n"))
	sb.WriteString("\n")
	return sb.String()
}

// PlanNames assigns the item type and binding names of every table, in
// provider order. Two tables that normalize to the same name are told apart
// with a numeric suffix, the first table keeping the plain name.
func PlanNames(base schema.Base) ([]TableNames, error) {
	items := ident.NewNamer()
	bindings := ident.NewNamer()

	names := make([]TableNames, len(base))
	for i, t := range base {
		item, err := ident.ItemTypeName(t.Name)
		if err != nil {
			return nil, withTable(err, t)
		}
		binding, err := ident.TableBindingName(t.Name)
		if err != nil {
			return nil, withTable(err, t)
		}
		names[i] = TableNames{
			Item:    items.Claim(item),
			Binding: bindings.Claim(binding),
		}
	}
	return names, nil
}

// -----------------------------------------------------------------------------
// Table generation
// -----------------------------------------------------------------------------

// Annotate computes the member name and type of every field of t.
// Member names are unique within the table and never collide with "id".
func Annotate(t *schema.Table) ([]GeneratedField, []Warning, error) {
	namer := ident.NewFieldNamer()
	fields := make([]GeneratedField, 0, len(t.Fields))
	var warnings []Warning

	for _, f := range t.Fields {
		name, err := ident.FieldName(f.Name)
		if err != nil {
			return nil, nil, withTable(err, t).WithField(f.Name).With("field_id", f.ID)
		}

		res := fieldtype.ResolveField(f)
		if res.Fallback {
			warnings = append(warnings, newWarning(t, f, res))
		}

		fields = append(fields, GeneratedField{
			Field:  f,
			JSName: namer.Claim(name),
			JSType: res.TSType,
		})
	}
	return fields, warnings, nil
}

// GenerateTable renders the interface and binding declarations of one table.
func GenerateTable(baseID string, t *schema.Table, names TableNames) (*TableCode, error) {
	fields, warnings, err := Annotate(t)
	if err != nil {
		return nil, err
	}

	ident.MustValid(names.Item, ident.Pascal)
	ident.MustValid(names.Binding, ident.Camel)

	var sb strings.Builder

	fmt.Fprintf(&sb, "export interface %s extends Item {\n", names.Item)
	sb.WriteString("  id: string,")
	for _, f := range fields {
		fmt.Fprintf(&sb, "\n  %s: %s,", f.JSName, f.JSType)
	}
	sb.WriteString("\n}\n\n")

	fmt.Fprintf(&sb, "export const %s: Table<%s> = {\n", names.Binding, names.Item)
	fmt.Fprintf(&sb, "  name: %s,\n", strutil.QuoteString(t.Name))
	fmt.Fprintf(&sb, "  baseId: %s,\n", strutil.QuoteString(baseID))
	fmt.Fprintf(&sb, "  tableId: %s,\n", strutil.QuoteString(t.ID))
	sb.WriteString("  mappings: {")
	for _, f := range fields {
		fmt.Fprintf(&sb, "\n    %s: %s,", f.JSName, strutil.QuoteString(f.ID))
	}
	sb.WriteString("\n  },\n")
	sb.WriteString("  schema: {")
	for _, f := range fields {
		fmt.Fprintf(&sb, "\n    %s: %s,", f.JSName, strutil.QuoteString(f.JSType))
	}
	sb.WriteString("\n  },\n};")

	return &TableCode{
		Table:    t,
		Names:    names,
		Fields:   fields,
		Code:     sb.String(),
		Warnings: warnings,
	}, nil
}

func newWarning(t *schema.Table, f *schema.Field, res fieldtype.Result) Warning {
	w := Warning{
		Table:   t.Name,
		TableID: t.ID,
		Field:   f.Name,
		FieldID: f.ID,
		Tag:     res.Tag,
		TSType:  res.TSType,
		Reason:  res.Reason,
	}
	if fieldtype.Get(f.Type) == nil {
		w.Hint = alerr.SuggestSimilar(f.Type, fieldtype.Tags())
	}
	return w
}

// withTable attaches table context to a coded error.
func withTable(err error, t *schema.Table) *alerr.Error {
	var e *alerr.Error
	if !errors.As(err, &e) {
		e = alerr.Wrap(alerr.EInternalError, err, "table generation failed")
	}
	return e.WithTable(t.Name).With("table_id", t.ID)
}
