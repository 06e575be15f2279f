package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/internal/cache"
	"github.com/hlop3z/airtsgen/internal/schema"
	"github.com/hlop3z/airtsgen/pkg/airtsgen"
)

const schemaJSON = `{
  "tables": [
    {"id": "tblYYY", "name": "Projects", "fields": [
      {"id": "fldName", "name": "Name", "type": "singleLineText"},
      {"id": "fldOdd", "name": "Odd", "type": "somethingNew"}
    ]},
    {"id": "tblClients", "name": "Clients", "fields": [
      {"id": "fldClientName", "name": "Client's Name", "type": "singleLineText"}
    ]}
  ]
}`

// -----------------------------------------------------------------------------
// Test Environment Setup
// -----------------------------------------------------------------------------

// setupWorkdir switches to an empty directory holding schema.json and clears
// the Airtable environment.
func setupWorkdir(t *testing.T) string {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "schema.json"), schemaJSON)
	return dir
}

// runCLI executes the root command with args.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := newRootCmd()
	var out, errb bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errb)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errb.String(), err
}

// -----------------------------------------------------------------------------
// gen
// -----------------------------------------------------------------------------

func TestGenToStdout(t *testing.T) {
	setupWorkdir(t)

	stdout, stderr, err := runCLI(t, "gen", "--schema-file", "schema.json", "--base-id", "appXXX")
	if err != nil {
		t.Fatalf("gen failed: %v\n%s", err, stderr)
	}

	for _, want := range []string{
		"export interface Project extends Item {",
		"  baseId: 'appXXX',",
		"export const clientsTable: Table<Client> = {",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q", want)
		}
	}
	if !strings.Contains(stderr, "warning: Projects.Odd") || !strings.Contains(stderr, `"somethingNew"`) {
		t.Errorf("stderr should carry the fallback warning:\n%s", stderr)
	}
}

func TestGenWritesFile(t *testing.T) {
	dir := setupWorkdir(t)

	_, stderr, err := runCLI(t, "gen", "--schema-file", "schema.json", "--base-id", "appXXX",
		"-o", "src/airtable.ts", "--table", "Clients")
	if err != nil {
		t.Fatalf("gen failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "src", "airtable.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "Project") || !strings.Contains(string(data), "clientsTable") {
		t.Errorf("table filter not applied:\n%s", data)
	}
	if !strings.Contains(stderr, "success: generated 1 table") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestGenSplitLayoutFromConfig(t *testing.T) {
	dir := setupWorkdir(t)
	writeFile(t, filepath.Join(dir, DefaultConfigFile), "base_id: appXXX\nlayout: split\noutput: generated\n")

	if _, _, err := runCLI(t, "gen", "--schema-file", "schema.json"); err != nil {
		t.Fatalf("gen failed: %v", err)
	}

	for _, name := range []string{"tblYYY.ts", "tblClients.ts", "index.ts"} {
		if _, err := os.Stat(filepath.Join(dir, "generated", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestGenSplitDefaultsToBaseDirectory(t *testing.T) {
	dir := setupWorkdir(t)

	if _, _, err := runCLI(t, "gen", "--schema-file", "schema.json", "--base-id", "appXXX", "--layout", "split"); err != nil {
		t.Fatalf("gen failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "appXXX", "index.ts")); err != nil {
		t.Errorf("split output not written under the base id: %v", err)
	}
}

func TestGenErrors(t *testing.T) {
	setupWorkdir(t)

	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{"watch without schema file", []string{"gen", "--watch"}, func(err error) bool {
			return errors.Is(err, errWatchWithoutSchemaFile)
		}},
		{"missing base id", []string{"gen", "--api-key", "patX"}, func(err error) bool {
			return errors.Is(err, airtsgen.ErrMissingBaseID)
		}},
		{"schema file without base id", []string{"gen", "--schema-file", "schema.json"}, func(err error) bool {
			return errors.Is(err, airtsgen.ErrMissingBaseID)
		}},
		{"missing api key", []string{"gen", "--base-id", "appX"}, func(err error) bool {
			return errors.Is(err, airtsgen.ErrMissingAPIKey)
		}},
		{"unknown layout", []string{"gen", "--schema-file", "schema.json", "--layout", "nested"}, func(err error) bool {
			return alerr.Is(err, alerr.ErrInvalidConfig)
		}},
		{"split to stdout without base", []string{"gen", "--schema-file", "schema.json", "--layout", "split", "-o", "-"}, func(err error) bool {
			return alerr.Is(err, alerr.ErrInvalidConfig)
		}},
		{"unknown table", []string{"gen", "--schema-file", "schema.json", "--base-id", "appX", "--table", "Nope"}, func(err error) bool {
			return alerr.Is(err, alerr.ErrTableNotFound)
		}},
		{"missing schema file", []string{"gen", "--schema-file", "nope.json", "--base-id", "appX"}, func(err error) bool {
			return alerr.Is(err, alerr.ErrSchemaNotFound)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if !tt.check(err) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// schema
// -----------------------------------------------------------------------------

func TestSchemaTable(t *testing.T) {
	setupWorkdir(t)

	stdout, _, err := runCLI(t, "schema", "--schema-file", "schema.json")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Projects (tblYYY, projectsTable)",
		"Client's Name  singleLineText  clientsName  string",
		"warning: Odd:",
		"Tables: 2",
		"Fields: 3",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestSchemaJSONRoundTrips(t *testing.T) {
	dir := setupWorkdir(t)

	stdout, _, err := runCLI(t, "schema", "--schema-file", "schema.json", "--json")
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "saved.json"), stdout)

	direct, _, err := runCLI(t, "gen", "--schema-file", "schema.json", "--base-id", "appXXX")
	if err != nil {
		t.Fatal(err)
	}
	saved, _, err := runCLI(t, "gen", "--schema-file", "saved.json", "--base-id", "appXXX")
	if err != nil {
		t.Fatal(err)
	}
	if direct != saved {
		t.Error("output from the saved schema differs")
	}
}

// -----------------------------------------------------------------------------
// cache
// -----------------------------------------------------------------------------

func TestCacheCommands(t *testing.T) {
	dir := setupWorkdir(t)

	stdout, _, err := runCLI(t, "cache", "list")
	if err != nil || !strings.Contains(stdout, "no cache yet") {
		t.Fatalf("empty list = %q, %v", stdout, err)
	}

	c, err := cache.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	base := schema.Base{{ID: "tblW", Name: "Widgets", Fields: []*schema.Field{{ID: "fldCount", Name: "Count", Type: "number"}}}}
	c.Save("appA", base)
	c.Save("appB", base)
	c.Close()

	stdout, _, err = runCLI(t, "cache", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "appA") || !strings.Contains(stdout, "Snapshots: 2 across 2 bases") {
		t.Errorf("list output:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, "cache", "clear", "--base", "appA")
	if err != nil || !strings.Contains(stdout, "removed 1 snapshot\n") {
		t.Errorf("clear = %q, %v", stdout, err)
	}

	stdout, _, err = runCLI(t, "gen", "--offline", "--base-id", "appB")
	if err != nil || !strings.Contains(stdout, "export const widgetsTable: Table<Widget> = {") {
		t.Errorf("offline gen = %q, %v", stdout, err)
	}

	_, _, err = runCLI(t, "gen", "--offline", "--base-id", "appA")
	if !alerr.Is(err, alerr.ErrCacheMiss) {
		t.Errorf("cleared base err = %v, want cache miss", err)
	}
}

func TestVersionAndHelp(t *testing.T) {
	setupWorkdir(t)

	stdout, _, err := runCLI(t, "version")
	if err != nil || stdout != "airtsgen dev\n" {
		t.Errorf("version = %q, %v", stdout, err)
	}

	stdout, _, err = runCLI(t, "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Generation:", "gen", "--header", "airtsgen <command> --help"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help missing %q:\n%s", want, stdout)
		}
	}
}
