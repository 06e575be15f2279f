package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hlop3z/airtsgen/internal/cli"
)

// CommandCategory groups commands in the root help output.
type CommandCategory struct {
	Title    string
	Commands []CommandInfo
}

// CommandInfo is one row of the root help output.
type CommandInfo struct {
	Name string
	Desc string
}

// renderCategoryHelp writes the styled root help.
func renderCategoryHelp(w io.Writer, title, subtitle string, categories []CommandCategory, flags []struct{ flag, desc string }) {
	fmt.Fprintf(w, "%s\n", cli.Header(title))
	fmt.Fprintf(w, "%s\n\n", cli.Dim(subtitle))
	fmt.Fprintf(w, "%s\n  airtsgen <command> [flags]\n\n", cli.Header("Usage:"))

	for _, cat := range categories {
		fmt.Fprintf(w, "%s\n", cli.Header(cat.Title+":"))
		t := cli.NewTable("", "")
		for _, c := range cat.Commands {
			t.AddRow("  "+cli.Highlight(c.Name), c.Desc)
		}
		fmt.Fprint(w, t.Rows())
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s\n", cli.Header("Flags:"))
	t := cli.NewTable("", "")
	for _, f := range flags {
		t.AddRow("  "+f.flag, cli.Dim(f.desc))
	}
	fmt.Fprint(w, t.Rows())
	fmt.Fprintf(w, "\nRun %s for details on a command.\n", cli.Code("airtsgen <command> --help"))
}

// HelpMessage represents a structured help message for error conditions.
type HelpMessage struct {
	Title string   // Error title (e.g., "No Airtable API key configured")
	Lines []string // Help content lines
}

// helpMessages contains data-driven help messages for common error conditions.
var helpMessages = map[string]HelpMessage{
	"missing_api_key": {
		Title: "No Airtable API key configured",
		Lines: []string{
			"To fix this, do ONE of the following:",
			"",
			"  1. Set the AIRTABLE_API_KEY environment variable (or put it in .env):",
			"     export AIRTABLE_API_KEY=\"patXXXXXXXXXXXXXX\"",
			"",
			"  2. Use the --api-key flag:",
			"     airtsgen gen --api-key patXXXXXXXXXXXXXX --base-id appXXXXXXXXXXXXXX",
			"",
			"  3. Reference it from airtsgen.yaml:",
			"     api_key: ${AIRTABLE_API_KEY}",
			"",
			"Create a personal access token with the schema.bases:read scope at",
			"  https://airtable.com/create/tokens",
		},
	},
	"missing_base_id": {
		Title: "No Airtable base id configured",
		Lines: []string{
			"To fix this, do ONE of the following:",
			"",
			"  1. Set the AIRTABLE_BASE_ID environment variable:",
			"     export AIRTABLE_BASE_ID=\"appXXXXXXXXXXXXXX\"",
			"",
			"  2. Use the --base-id flag:",
			"     airtsgen gen --base-id appXXXXXXXXXXXXXX",
			"",
			"  3. Set base_id in airtsgen.yaml",
			"",
			"The base id is the app... segment of the base URL.",
		},
	},
	"offline_without_cache": {
		Title: "Offline mode needs the schema cache",
		Lines: []string{
			"Offline runs read the last fetched schema from the cache.",
			"",
			"  1. Run once online with the cache enabled:",
			"     airtsgen gen",
			"",
			"  2. Then regenerate without network access:",
			"     airtsgen gen --offline",
			"",
			"Make sure cache is not set to false in airtsgen.yaml.",
		},
	},
	"watch_without_schema_file": {
		Title: "--watch requires --schema-file",
		Lines: []string{
			"Watch mode regenerates when a local schema file changes:",
			"",
			"  airtsgen schema --json > schema.json",
			"  airtsgen gen --schema-file schema.json --watch -o src/airtable.ts",
		},
	},
}

// printHelp writes the help message for key to stderr.
func printHelp(key string, args ...any) {
	msg, ok := helpMessages[key]
	if !ok {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n\n", cli.Error("error:"), msg.Title)
	for _, line := range msg.Lines {
		if len(args) > 0 && strings.Contains(line, "%") {
			line = fmt.Sprintf(line, args...)
		}
		fmt.Fprintln(os.Stderr, line)
	}
}
