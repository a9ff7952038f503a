// Package render turns search results into a table, as text for terminals
// and as HTML for anything that embeds the results container.
package render

import (
	"strings"
	"sync"

	"shopcart-console/internal/form"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/microcosm-cc/bluemonday"
)

var (
	tablePolicyOnce sync.Once
	tablePolicy     *bluemonday.Policy
)

// tableSanitizer lets through only the markup of a rendered table. Escaped
// cell text stays escaped.
func tableSanitizer() *bluemonday.Policy {
	tablePolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "br")
		p.AllowAttrs("class").OnElements("table")
		p.AllowAttrs("align", "colspan").OnElements("th", "td")
		tablePolicy = p
	})
	return tablePolicy
}

// Table is a rendered result set: one row per record in arrival order, one
// cell per column.
type Table struct {
	Columns []form.Field
	Rows    [][]string
}

// Build lays records out in the schema's column order. A derived column is
// kept when any record carries it; records without it get an empty cell.
func Build(s form.Schema, records []form.Record) Table {
	columns := s.Columns(records)
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = rec.Get(col.Name)
		}
		rows[i] = row
	}
	return Table{Columns: columns, Rows: rows}
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) writer(clean func(string) string) table.Writer {
	w := table.NewWriter()
	w.SetStyle(table.StyleRounded)
	w.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = clean(col.Label)
	}
	w.AppendHeader(header)

	for _, r := range t.Rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = clean(cell)
		}
		w.AppendRow(row)
	}
	return w
}

func (t Table) Text() string {
	return t.writer(func(s string) string { return s }).Render()
}

// HTML renders the table as an HTML <table>. Cell text is escaped, so a
// record value shows as written and never becomes markup.
func (t Table) HTML() string {
	w := t.writer(strings.TrimSpace)
	w.Style().HTML = table.HTMLOptions{
		CSSClass:    "results",
		EmptyColumn: "",
		EscapeText:  true,
		Newline:     "<br/>",
	}
	return tableSanitizer().Sanitize(w.RenderHTML())
}

// Renderer is the results container. It holds at most one table; every
// render replaces the previous one.
type Renderer struct {
	mu   sync.Mutex
	last *Table
}

func (r *Renderer) Render(s form.Schema, records []form.Record) Table {
	t := Build(s, records)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &t
	return t
}

// Last returns the current table, if one has been rendered since the last
// reset.
func (r *Renderer) Last() (Table, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Table{}, false
	}
	return *r.last, true
}

func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = nil
}

// FormText renders one record as a two column field/value table.
func FormText(s form.Schema, rec form.Record) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleRounded)
	w.Style().Format.Header = text.FormatDefault
	w.AppendHeader(table.Row{"Field", "Value"})
	for _, f := range s.Fields {
		w.AppendRow(table.Row{f.Label, rec.Get(f.Name)})
	}
	return w.Render()
}
