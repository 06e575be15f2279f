package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hlop3z/airtsgen/internal/cache"
	"github.com/hlop3z/airtsgen/internal/cli"
)

// cacheCmd inspects and clears the schema snapshot cache.
func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "List or clear cached schema snapshots",
		Long: `Every successful fetch stores a snapshot of the base schema in
.airtsgen/cache.db. gen --offline regenerates from the newest snapshot.`,
	}
	cmd.AddCommand(cacheListCmd(), cacheClearCmd())
	return cmd
}

// openCache opens the configured cache, or returns nil when there is none yet.
func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	cfg, err := loadConfig(rootFlags(cmd))
	if err != nil {
		return nil, err
	}
	if !cache.Exists(cfg.CacheDir) {
		return nil, nil
	}
	return cache.Open(cfg.CacheDir)
}

func cacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			c, err := openCache(cmd)
			if err != nil {
				return err
			}
			if c == nil {
				fmt.Fprint(out, cli.FormatNote("no cache yet; run airtsgen gen first"))
				return nil
			}
			defer c.Close()

			snaps, err := c.List()
			if err != nil {
				return err
			}
			stats, err := c.GetStats()
			if err != nil {
				return err
			}

			t := cli.NewTable("BASE", "FINGERPRINT", "TABLES", "FIELDS", "FETCHED")
			for _, s := range snaps {
				t.AddRow(s.BaseID, s.Fingerprint[:min(12, len(s.Fingerprint))],
					strconv.Itoa(s.Tables), strconv.Itoa(s.Fields),
					s.FetchedAt.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Fprint(out, t.String())
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.FormatKeyValue("Cache", cli.FilePath(c.Path())))
			fmt.Fprintln(out, cli.FormatKeyValue("Snapshots",
				fmt.Sprintf("%d across %s", stats.Snapshots, cli.FormatCount(stats.Bases, "base", "bases"))))
			fmt.Fprintln(out, cli.FormatKeyValue("Size", fmt.Sprintf("%d bytes", stats.DatabaseSize)))
			return nil
		},
	}
}

func cacheClearCmd() *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached snapshots",
		Example: `  airtsgen cache clear                  # every base
  airtsgen cache clear --base appXXXXXXXXXXXXXX`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			c, err := openCache(cmd)
			if err != nil {
				return err
			}
			if c == nil {
				fmt.Fprint(out, cli.FormatNote("cache is already empty"))
				return nil
			}
			defer c.Close()

			n, err := c.Clear(base)
			if err != nil {
				return err
			}
			if err := c.Vacuum(); err != nil {
				return err
			}
			fmt.Fprint(out, cli.FormatSuccess("removed "+cli.FormatCount(int(n), "snapshot", "snapshots")))
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Only clear snapshots of this base id")
	return cmd
}
