package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hlop3z/airtsgen/internal/cli"
	"github.com/hlop3z/airtsgen/pkg/airtsgen"
)

// errWatchWithoutSchemaFile is returned by `gen --watch` without --schema-file.
var errWatchWithoutSchemaFile = errors.New("--watch requires --schema-file")

// helpKey maps errors that have a dedicated help message to its key.
func helpKey(err error) string {
	switch {
	case errors.Is(err, airtsgen.ErrMissingAPIKey):
		return "missing_api_key"
	case errors.Is(err, airtsgen.ErrMissingBaseID):
		return "missing_base_id"
	case errors.Is(err, airtsgen.ErrOfflineWithoutCache):
		return "offline_without_cache"
	case errors.Is(err, errWatchWithoutSchemaFile):
		return "watch_without_schema_file"
	}
	return ""
}

// printError prints err to stderr, with guidance for common mistakes.
func printError(err error) {
	if key := helpKey(err); key != "" {
		printHelp(key)
		return
	}
	fmt.Fprint(os.Stderr, cli.FormatError(err))
}
