package schema

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/hlop3z/airtsgen/internal/alerr"
)

// FileProvider serves a schema previously saved with `airtsgen schema --json`
// (or any metadata API response body). The base id is not checked against the
// file; the file is the whole base.
type FileProvider struct {
	Path string
}

// FetchSchema reads and decodes the file.
func (p FileProvider) FetchSchema(_ context.Context, _ string) (Base, error) {
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, alerr.Wrap(alerr.ErrSchemaNotFound, err, "schema file not found").
			With("path", p.Path)
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrSchemaInvalid, err, "failed to read schema file").
			With("path", p.Path)
	}

	page, err := Decode(data)
	if err != nil {
		var e *alerr.Error
		if errors.As(err, &e) {
			e.With("path", p.Path)
		}
		return nil, err
	}
	return page.Tables, nil
}
