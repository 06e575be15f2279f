// Package schema defines the in-memory shape of an Airtable base schema as
// returned by the metadata API, plus the provider contract that produces it.
//
// A Base is produced once per run and treated as immutable afterwards.
package schema

import (
	"context"
	"encoding/json"

	"github.com/hlop3z/airtsgen/internal/alerr"
)

// Base is the ordered list of tables of one Airtable base.
// Order is the provider's order and is preserved in generated output.
type Base []*Table

// Table describes one table of a base.
type Table struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	PrimaryFieldID string   `json:"primaryFieldId,omitempty"`
	Fields         []*Field `json:"fields"`
}

// Field describes one column of a table.
type Field struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Options     *FieldOptions `json:"options,omitempty"`
}

// FieldType is a bare type descriptor, used for the declared result of
// computed fields (formula, rollup, lookup).
type FieldType struct {
	Type    string        `json:"type"`
	Options *FieldOptions `json:"options,omitempty"`
}

// FieldOptions holds the type-specific metadata Airtable attaches to a field.
// Only the members the generator reads are decoded.
type FieldOptions struct {
	Choices                 []Choice   `json:"choices,omitempty"`
	LinkedTableID           string     `json:"linkedTableId,omitempty"`
	IsReversed              bool       `json:"isReversed,omitempty"`
	PrefersSingleRecordLink bool       `json:"prefersSingleRecordLink,omitempty"`
	Result                  *FieldType `json:"result,omitempty"`
	IsValid                 *bool      `json:"isValid,omitempty"`
	Precision               *int       `json:"precision,omitempty"`
}

// Choice is one selectable option of a single or multiple select field.
type Choice struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Provider fetches the full schema of a base.
// Failures are provider-specific and are propagated to the caller unchanged.
type Provider interface {
	FetchSchema(ctx context.Context, baseID string) (Base, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, baseID string) (Base, error)

// FetchSchema calls f.
func (f ProviderFunc) FetchSchema(ctx context.Context, baseID string) (Base, error) {
	return f(ctx, baseID)
}

// Page is one page of the metadata API tables listing. It is also the format
// of schema files written by `airtsgen schema --json`.
type Page struct {
	Tables []*Table `json:"tables"`
	Offset string   `json:"offset,omitempty"`
}

// Decode parses a metadata API payload and validates its structure.
func Decode(data []byte) (*Page, error) {
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, alerr.Wrap(alerr.ErrSchemaInvalid, err, "failed to decode schema payload")
	}
	if err := Base(page.Tables).Validate(); err != nil {
		return nil, err
	}
	return &page, nil
}

// Encode renders the base in the metadata API page format.
func (b Base) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(Page{Tables: b}, "", "  ")
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to encode schema")
	}
	return append(data, '\n'), nil
}

// Validate checks the structural invariants the generator relies on:
// every table and field has an id and a type, and ids are unique.
func (b Base) Validate() error {
	tableIDs := make(map[string]bool, len(b))
	for i, t := range b {
		if t == nil || t.ID == "" {
			return alerr.New(alerr.ErrSchemaInvalid, "table is missing an id").
				With("index", i)
		}
		if tableIDs[t.ID] {
			return alerr.New(alerr.ErrSchemaInvalid, "duplicate table id").
				WithTable(t.Name).
				With("id", t.ID)
		}
		tableIDs[t.ID] = true

		fieldIDs := make(map[string]bool, len(t.Fields))
		for j, f := range t.Fields {
			if f == nil || f.ID == "" {
				return alerr.New(alerr.ErrSchemaInvalid, "field is missing an id").
					WithTable(t.Name).
					With("index", j)
			}
			if f.Type == "" {
				return alerr.New(alerr.ErrSchemaInvalid, "field is missing a type").
					WithTable(t.Name).
					WithField(f.Name)
			}
			if fieldIDs[f.ID] {
				return alerr.New(alerr.ErrSchemaInvalid, "duplicate field id").
					WithTable(t.Name).
					WithField(f.Name).
					With("id", f.ID)
			}
			fieldIDs[f.ID] = true
		}
	}
	return nil
}

// TableNames returns table names in provider order.
func (b Base) TableNames() []string {
	names := make([]string, len(b))
	for i, t := range b {
		names[i] = t.Name
	}
	return names
}

// FieldCount returns the total number of fields across all tables.
func (b Base) FieldCount() int {
	n := 0
	for _, t := range b {
		n += len(t.Fields)
	}
	return n
}

// Filter returns the tables whose id or name appears in selectors, in
// provider order. An empty selector list returns the base unchanged.
// Unknown selectors are an error with a "did you mean" hint.
func (b Base) Filter(selectors []string) (Base, error) {
	if len(selectors) == 0 {
		return b, nil
	}

	byKey := make(map[string]bool, len(b)*2)
	for _, t := range b {
		byKey[t.ID] = true
		byKey[t.Name] = true
	}

	wanted := make(map[string]bool, len(selectors))
	for _, sel := range selectors {
		if !byKey[sel] {
			e := alerr.New(alerr.ErrTableNotFound, "table not found in base").
				WithTable(sel)
			if hint := alerr.SuggestSimilar(sel, b.TableNames()); hint != "" {
				e.WithHelp(hint)
			}
			return nil, e
		}
		wanted[sel] = true
	}

	out := make(Base, 0, len(selectors))
	for _, t := range b {
		if wanted[t.ID] || wanted[t.Name] {
			out = append(out, t)
		}
	}
	return out, nil
}
