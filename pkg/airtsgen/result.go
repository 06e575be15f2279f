package airtsgen

import (
	"os"
	"path/filepath"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/internal/codegen"
)

// Result is the generated code of one base.
type Result struct {
	BaseID      string
	Fingerprint string    // schema fingerprint; equal fingerprints give equal Text
	Text        string    // single-file output
	Warnings    []Warning // fields typed as a placeholder
	Tables      int

	output *codegen.Output
}

// Files lays the result out for writing. The single layout yields one file
// named name; the split layout yields one module per table plus index.ts.
func (r *Result) Files(layout Layout, name string) []File {
	if layout == LayoutSplit {
		return codegen.SplitFiles(r.output)
	}
	return []File{{Path: name, Content: r.Text}}
}

// Write writes the result. For the single layout path is the output file; for
// the split layout it is the output directory. It returns the written paths.
func (r *Result) Write(path string, layout Layout) ([]string, error) {
	dir, name := filepath.Split(path)
	if layout == LayoutSplit {
		dir, name = path, ""
	}

	files := r.Files(layout, name)
	written := make([]string, 0, len(files))
	for _, f := range files {
		target := filepath.Join(dir, f.Path)
		if err := writeFileAtomic(target, []byte(f.Content)); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// writeFileAtomic writes data next to target and renames it into place, so a
// failed run never leaves a half-written file behind.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return alerr.Wrap(alerr.ErrOutputWrite, err, "failed to create output directory").
			With("path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return alerr.Wrap(alerr.ErrOutputWrite, err, "failed to create output file").
			With("path", target)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return alerr.Wrap(alerr.ErrOutputWrite, err, "failed to write output file").
			With("path", target)
	}
	if err := tmp.Close(); err != nil {
		return alerr.Wrap(alerr.ErrOutputWrite, err, "failed to write output file").
			With("path", target)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return alerr.Wrap(alerr.ErrOutputWrite, err, "failed to set output file mode").
			With("path", target)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return alerr.Wrap(alerr.ErrOutputWrite, err, "failed to move output file into place").
			With("path", target)
	}
	return nil
}
