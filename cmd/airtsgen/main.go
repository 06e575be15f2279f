// Package main provides the CLI for airtsgen, a generator of airtable-ts
// TypeScript definitions from an Airtable base schema.
//
// Usage:
//
//	airtsgen gen                     # Fetch the schema and print the generated code
//	airtsgen gen -o src/airtable.ts  # Write it to a file
//	airtsgen gen --layout split      # One module per table plus index.ts
//	airtsgen schema --json           # Save the schema for offline runs
//	airtsgen cache list              # Show cached schema snapshots
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	configFile  string
	apiKey      string
	baseID      string
	endpointURL string
	timeout     string
	headers     []string
	verbose     bool
)

// customHelp displays a styled help message for the root command.
func customHelp(cmd *cobra.Command) {
	categories := []CommandCategory{
		{
			Title: "Generation",
			Commands: []CommandInfo{
				{"gen", "Generate airtable-ts definitions for a base"},
				{"schema", "Fetch and show the base schema"},
			},
		},
		{
			Title: "Maintenance",
			Commands: []CommandInfo{
				{"cache", "List or clear cached schema snapshots"},
				{"version", "Print the airtsgen version"},
			},
		},
	}

	flags := []struct{ flag, desc string }{
		{"-c, --config", "Path to config file (default: airtsgen.yaml)"},
		{"    --api-key", "Airtable personal access token"},
		{"    --base-id", "Base id (appXXXXXXXXXXXXXX)"},
		{"    --endpoint-url", "Airtable API root"},
		{"    --timeout", "Per-request timeout (e.g. 30s)"},
		{"    --header", "Custom request header key=value (repeatable)"},
		{"-v, --verbose", "Enable debug logging"},
		{"-h, --help", "Show help information"},
	}

	renderCategoryHelp(cmd.OutOrStdout(),
		"airtsgen - Airtable schema to airtable-ts",
		"Generates record interfaces and table bindings from a base schema",
		categories,
		flags,
	)
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "airtsgen",
		Short:         "Generate airtable-ts TypeScript definitions from an Airtable base",
		Long:          `airtsgen fetches the schema of an Airtable base and generates TypeScript record interfaces and airtable-ts table bindings for every table.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(verbose)
		},
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == cmd.Root() {
			customHelp(cmd)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", DefaultConfigFile, "Path to config file")
	pf.StringVar(&apiKey, "api-key", "", "Airtable personal access token")
	pf.StringVar(&baseID, "base-id", "", "Base id (appXXXXXXXXXXXXXX)")
	pf.StringVar(&endpointURL, "endpoint-url", "", "Airtable API root")
	pf.StringVar(&timeout, "timeout", "", "Per-request timeout (e.g. 30s)")
	pf.StringArrayVar(&headers, "header", nil, "Custom request header key=value (repeatable)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		genCmd(),
		schemaCmd(),
		cacheCmd(),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the airtsgen version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "airtsgen %s\n", version)
		},
	}
}

// setupLogger installs a text slog handler on stderr.
func setupLogger(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
