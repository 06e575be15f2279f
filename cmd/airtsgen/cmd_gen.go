package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/internal/cli"
	"github.com/hlop3z/airtsgen/pkg/airtsgen"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// genOptions are the flags of the gen command.
type genOptions struct {
	output      string
	layout      string
	schemaFile  string
	offline     bool
	watch       bool
	tables      []string
	concurrency int
}

// genCmd generates airtable-ts definitions for a base.
func genCmd() *cobra.Command {
	var opts genOptions

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate airtable-ts definitions for a base",
		Long: `Fetch the schema of a base and generate one record interface and one
airtable-ts table binding per table.`,
		Example: `  # Print to stdout
  airtsgen gen --base-id appXXXXXXXXXXXXXX

  # Write one file
  airtsgen gen -o src/airtable.ts

  # One module per table plus index.ts
  airtsgen gen --layout split -o src/airtable

  # Regenerate from the last cached schema
  airtsgen gen --offline -o src/airtable.ts

  # Regenerate whenever a saved schema changes
  airtsgen gen --schema-file schema.json --watch -o src/airtable.ts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "out", "o", "", `Output file, or directory for the split layout ("-" for stdout, the default)`)
	f.StringVar(&opts.layout, "layout", "", "Output layout: single or split")
	f.StringVar(&opts.schemaFile, "schema-file", "", "Read the schema from a file instead of the API")
	f.BoolVar(&opts.offline, "offline", false, "Use the last cached schema instead of the API")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Regenerate when --schema-file changes")
	f.StringArrayVarP(&opts.tables, "table", "t", nil, "Only generate this table, by name or id (repeatable)")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Tables rendered in parallel")

	return cmd
}

func runGen(cmd *cobra.Command, opts genOptions) error {
	if opts.watch && opts.schemaFile == "" {
		return errWatchWithoutSchemaFile
	}

	cfg, err := loadConfig(rootFlags(cmd))
	if err != nil {
		return err
	}

	out := cfg.Output
	if opts.output != "" {
		out = opts.output
	}
	layoutName := cfg.Layout
	if opts.layout != "" {
		layoutName = opts.layout
	}
	layout, err := airtsgen.ParseLayout(layoutName)
	if err != nil {
		return alerr.Wrap(alerr.ErrInvalidConfig, err, "invalid layout")
	}
	if layout == airtsgen.LayoutSplit && out == "-" {
		if cfg.BaseID == "" {
			return alerr.New(alerr.ErrInvalidConfig, "the split layout writes a directory").
				WithHelp("pass --out <dir>")
		}
		out = cfg.BaseID
	}

	extra := []airtsgen.Option{}
	if len(opts.tables) > 0 {
		cfg.Tables = nil
		extra = append(extra, airtsgen.WithTables(opts.tables...))
	}
	if opts.schemaFile != "" {
		extra = append(extra, airtsgen.WithSchemaFile(opts.schemaFile))
	}
	if opts.offline {
		extra = append(extra, airtsgen.WithOffline())
	}
	if opts.concurrency > 0 {
		extra = append(extra, airtsgen.WithConcurrency(opts.concurrency))
	}

	client, err := airtsgen.New(append(clientOptions(cfg), extra...)...)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	err = generate(ctx, client, out, layout, stdout, stderr)
	if !opts.watch || errors.Is(err, airtsgen.ErrMissingBaseID) {
		return err
	}
	if err != nil {
		fmt.Fprint(stderr, cli.FormatError(err))
	}

	fmt.Fprintf(stderr, "  Watching: %s (Ctrl+C to stop)\n", cli.FilePath(opts.schemaFile))
	return watchFile(ctx, opts.schemaFile, func() {
		if err := generate(ctx, client, out, layout, stdout, stderr); err != nil {
			fmt.Fprint(stderr, cli.FormatError(err))
		}
	})
}

// generate runs one generation and writes the result.
func generate(ctx context.Context, client *airtsgen.Client, out string, layout airtsgen.Layout, stdout, stderr io.Writer) error {
	start := time.Now()
	res, err := client.Generate(ctx)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprint(stderr, cli.FormatWarning(
			fmt.Sprintf("%s.%s: %s", w.Table, w.Field, w.Reason),
			cli.WithNotes(fmt.Sprintf("field type %q is emitted as %s", w.Tag, w.TSType)),
			cli.WithHelps(w.Hint),
		))
	}

	if out == "-" {
		_, err := io.WriteString(stdout, res.Text)
		return err
	}

	written, err := res.Write(out, layout)
	if err != nil {
		return err
	}

	fmt.Fprint(stderr, cli.FormatSuccess(fmt.Sprintf("generated %s in %s",
		cli.FormatCount(res.Tables, "table", "tables"),
		time.Since(start).Round(time.Millisecond))))
	list := cli.NewList()
	for _, path := range written {
		list.AddSuccess(cli.FilePath(path))
	}
	fmt.Fprint(stderr, list.String())
	return nil
}

// watchFile calls onChange after each write to path until ctx is done.
// The parent directory is watched so editors that save by rename are seen.
func watchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "path", path, "error", err)
		}
	}
}
