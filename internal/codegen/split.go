package codegen

import (
	"fmt"
	"strings"

	"github.com/hlop3z/airtsgen/internal/ident"
)

// Layout selects how generated code is laid out on disk.
type Layout string

const (
	// LayoutSingle writes every table into one file.
	LayoutSingle Layout = "single"
	// LayoutSplit writes one file per table plus an index re-exporting them.
	LayoutSplit Layout = "split"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutSingle:
		return LayoutSingle, nil
	case LayoutSplit:
		return LayoutSplit, nil
	}
	return "", fmt.Errorf("unknown layout %q (want %q or %q)", s, LayoutSingle, LayoutSplit)
}

// IndexFile is the name of the re-exporting module in the split layout.
const IndexFile = "index.ts"

// File is one generated file, relative to the output directory.
type File struct {
	Path    string
	Content string
}

// SplitFiles lays the output out as one <tableId>.ts module per table, each
// with its own header, followed by index.ts re-exporting every module in
// provider order. Module names are unique ignoring case and never "index";
// later collisions get a numeric suffix.
func SplitFiles(out *Output) []File {
	files := make([]File, 0, len(out.Tables)+1)
	modules := ident.NewFoldingNamer(strings.TrimSuffix(IndexFile, ".ts"))

	var index strings.Builder
	index.WriteString("/* DO NOT EDIT: this file was automatically generated by " + Generator + " */\n")
	index.WriteString("/* eslint-disable */\n")

	for _, tc := range out.Tables {
		module := modules.Claim(tableModule(tc))
		files = append(files, File{
			Path:    module + ".ts",
			Content: RenderFile([]string{tc.Code}),
		})
		fmt.Fprintf(&index, "export * from './%s';\n", module)
	}

	files = append(files, File{Path: IndexFile, Content: index.String()})
	return files
}

// tableModule is the module name of a table in the split layout. Table ids are
// stable across renames, so files do not move when a table is renamed. Ids
// that are not plain file names fall back to the binding name.
func tableModule(tc *TableCode) string {
	id := tc.Table.ID
	for _, r := range id {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return tc.Names.Binding
		}
	}
	return id
}
