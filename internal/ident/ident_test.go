package ident

import (
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/hlop3z/airtsgen/internal/alerr"
)

// -----------------------------------------------------------------------------
// Normalize Tests
// -----------------------------------------------------------------------------

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		c    Case
		want string
	}{
		{"Name", Camel, "name"},
		{"Is Active", Camel, "isActive"},
		{"Client's Name", Camel, "clientsName"},
		{"E-mail (work)", Camel, "eMailWork"},
		{"2024 Budget", Camel, "_2024Budget"},
		{"class", Camel, "class_"},
		{"Default", Camel, "default_"},
		{"New", Camel, "new_"},
		{"Type", Camel, "type_"},
		{"Class", Pascal, "Class"},
		{"line items", Pascal, "LineItems"},
		{"Café Menu", Camel, "caféMenu"},
		{"  padded  ", Camel, "padded"},
		{"$ Amount", Camel, "amount"},
		{"ⸯ x", Camel, "x"},
		{"Stateⸯ Code", Pascal, "StateCode"},
	}

	for _, tt := range tests {
		t.Run(tt.raw+"/"+tt.c.String(), func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.c)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q, %s) = %q, want %q", tt.raw, tt.c, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmptyIsAnError(t *testing.T) {
	for _, raw := range []string{"", "   ", "#", "???", "'", "🔥"} {
		_, err := Normalize(raw, Camel)
		if !alerr.Is(err, alerr.ErrInvalidIdentifier) {
			t.Errorf("Normalize(%q) err = %v, want %s", raw, err, alerr.ErrInvalidIdentifier)
		}
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		a, _ := Normalize("Client's Name", Camel)
		b, _ := Normalize("Client's Name", Camel)
		if a != b {
			t.Fatalf("got %q and %q", a, b)
		}
	}
}

// -----------------------------------------------------------------------------
// Table Naming Tests
// -----------------------------------------------------------------------------

func TestItemTypeName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"Projects", "Project"},
		{"Invoices", "Invoice"},
		{"line items", "LineItem"},
		{"Status", "Statu"}, // trailing-"s" heuristic, not real pluralization
		{"Address", "Addres"},
		{"Person", "Person"},
		{"s", "S"},
		{"Items", "Item_"},
		{"Tables", "Table_"},
		{"2024 Goals", "_2024Goal"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			got, err := ItemTypeName(tt.table)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ItemTypeName(%q) = %q, want %q", tt.table, got, tt.want)
			}
		})
	}
}

func TestTableBindingName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"Projects", "projectsTable"},
		{"Line Items", "lineItemsTable"},
		{"class", "classTable"},
		{"2024 Goals", "_2024GoalsTable"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			got, err := TableBindingName(tt.table)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("TableBindingName(%q) = %q, want %q", tt.table, got, tt.want)
			}
		})
	}

	if _, err := TableBindingName("!!!"); !alerr.Is(err, alerr.ErrInvalidIdentifier) {
		t.Errorf("TableBindingName(!!!) err = %v", err)
	}
	if _, err := ItemTypeName("!!!"); !alerr.Is(err, alerr.ErrInvalidIdentifier) {
		t.Errorf("ItemTypeName(!!!) err = %v", err)
	}
}

// -----------------------------------------------------------------------------
// Validity Tests
// -----------------------------------------------------------------------------

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		c    Case
		want bool
	}{
		{"name", Camel, true},
		{"_2024", Camel, true},
		{"$ref", Camel, true},
		{"2024", Camel, false},
		{"is-active", Camel, false},
		{"class", Camel, false},
		{"Item", Pascal, false},
		{"Item", Camel, true},
		{"", Camel, false},
		{"ⸯX", Camel, false},
		{"aⸯ", Camel, false},
	}
	for _, tt := range tests {
		if got := Valid(tt.name, tt.c); got != tt.want {
			t.Errorf("Valid(%q, %s) = %v, want %v", tt.name, tt.c, got, tt.want)
		}
	}
}

func TestMustValidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustValid("not valid", Camel)
}

// TestNormalizedNamesCompileInJSEngine declares every normalized name as a
// strict-mode binding in a real JS engine.
func TestNormalizedNamesCompileInJSEngine(t *testing.T) {
	raws := []string{
		"Name", "Is Active", "Client's Name", "2024 Budget", "class", "Yield",
		"Let", "arguments", "eval", "null", "True", "Café Menu", "日本 語",
		"Budget (USD)", "snake_case_name", "HTTP Status", "await", "enum",
		"ⸯ Vertical Tilde", "Aⸯb",
	}

	for _, raw := range raws {
		for _, c := range []Case{Camel, Pascal} {
			name, err := Normalize(raw, c)
			if err != nil {
				t.Errorf("Normalize(%q, %s): %v", raw, c, err)
				continue
			}
			src := "'use strict'; let " + name + " = 1;"
			if _, err := goja.Compile("ident.js", src, true); err != nil {
				t.Errorf("%s name %q from %q does not compile: %v", c, name, raw, err)
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Namer Tests
// -----------------------------------------------------------------------------

func TestNamer(t *testing.T) {
	n := NewFieldNamer()

	got := []string{
		n.Claim("name"),
		n.Claim("name"),
		n.Claim("id"),
		n.Claim("name"),
		n.Claim("name2"),
	}
	want := []string{"name", "name2", "id2", "name3", "name22"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("claims = %v, want %v", got, want)
	}
	if !n.Taken("id") || n.Taken("other") {
		t.Error("Taken reports wrong state")
	}
}

func TestFoldingNamer(t *testing.T) {
	n := NewFoldingNamer("index")

	got := []string{
		n.Claim("Index"),
		n.Claim("tblA"),
		n.Claim("TBLA"),
		n.Claim("tbla2"),
	}
	want := []string{"Index2", "tblA", "TBLA2", "tbla22"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("claims = %v, want %v", got, want)
	}
	if !n.Taken("INDEX") {
		t.Error("Taken should ignore case")
	}
}
