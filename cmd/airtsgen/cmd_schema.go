package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/airtsgen/internal/cli"
	"github.com/hlop3z/airtsgen/internal/codegen"
	"github.com/hlop3z/airtsgen/pkg/airtsgen"
)

// schemaCmd fetches and shows the base schema.
func schemaCmd() *cobra.Command {
	var (
		asJSON     bool
		offline    bool
		schemaFile string
		tables     []string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Fetch and show the base schema",
		Long: `Show every table with its fields, their Airtable types and the TypeScript
members they generate. With --json, print the schema in the metadata API
format; the result can be passed back with gen --schema-file.`,
		Example: `  airtsgen schema
  airtsgen schema --json > schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []airtsgen.Option
			if schemaFile != "" {
				extra = append(extra, airtsgen.WithSchemaFile(schemaFile))
			}
			if offline {
				extra = append(extra, airtsgen.WithOffline())
			}
			if len(tables) > 0 {
				extra = append(extra, airtsgen.WithTables(tables...))
			}

			client, _, err := newClient(cmd, extra...)
			if err != nil {
				return err
			}
			defer client.Close()

			base, err := client.FetchSchema(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := base.Encode()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n", data)
				return nil
			}
			return printSchema(cmd, base)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&asJSON, "json", false, "Print the schema as JSON")
	f.BoolVar(&offline, "offline", false, "Use the last cached schema instead of the API")
	f.StringVar(&schemaFile, "schema-file", "", "Read the schema from a file instead of the API")
	f.StringArrayVarP(&tables, "table", "t", nil, "Only show this table, by name or id (repeatable)")
	return cmd
}

// printSchema renders one field table per base table.
func printSchema(cmd *cobra.Command, base airtsgen.Base) error {
	out := cmd.OutOrStdout()

	names, err := codegen.PlanNames(base)
	if err != nil {
		return err
	}

	for i, t := range base {
		fields, warnings, err := codegen.Annotate(t)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s %s\n", cli.Header(t.Name), cli.Dim(fmt.Sprintf("(%s, %s)", t.ID, names[i].Binding)))
		tbl := cli.NewTable("FIELD", "TYPE", "MEMBER", "TS TYPE")
		for _, f := range fields {
			tbl.AddRow(f.Name, f.Type, f.JSName, f.JSType)
		}
		fmt.Fprint(out, tbl.String())
		for _, w := range warnings {
			fmt.Fprint(out, cli.FormatWarning(fmt.Sprintf("%s: %s", w.Field, w.Reason), cli.WithHelps(w.Hint)))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, cli.FormatKeyValue("Tables", fmt.Sprintf("%d", len(base))))
	fmt.Fprintln(out, cli.FormatKeyValue("Fields", fmt.Sprintf("%d", base.FieldCount())))
	return nil
}
