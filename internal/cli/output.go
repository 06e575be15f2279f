package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table provides aligned column output.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row, padding missing cells.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	for i, cell := range cells {
		if w := lipgloss.Width(cell); i < len(t.widths) && w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, cells)
}

// String renders the table.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	var b strings.Builder
	for i, h := range t.headers {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == len(t.headers)-1 {
			b.WriteString(Header(h))
		} else {
			b.WriteString(Header(padRight(h, t.widths[i])))
		}
	}
	b.WriteString("\n")

	for i, w := range t.widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Dim(strings.Repeat("─", w)))
	}
	b.WriteString("\n")
	b.WriteString(t.Rows())
	return b.String()
}

// Rows renders the rows without the header, for aligned two-column listings.
func (t *Table) Rows() string {
	var b strings.Builder
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(t.widths) {
				break
			}
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(t.widths)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(padRight(cell, t.widths[i]))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// List provides marker-prefixed list output.
type List struct {
	items  []string
	indent int
}

// NewList creates a new list.
func NewList() *List {
	return &List{indent: 2}
}

// Add adds a plain item.
func (l *List) Add(content string) {
	l.items = append(l.items, "• "+content)
}

// AddSuccess adds a success item.
func (l *List) AddSuccess(content string) {
	l.items = append(l.items, Success("✓")+" "+content)
}

// AddWarning adds a warning item.
func (l *List) AddWarning(content string) {
	l.items = append(l.items, Warning("!")+" "+content)
}

// String renders the list.
func (l *List) String() string {
	var b strings.Builder
	indent := strings.Repeat(" ", l.indent)
	for _, item := range l.items {
		b.WriteString(indent)
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatKeyValue formats a key-value pair.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", Dim(key), value)
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
