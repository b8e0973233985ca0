// Package markup reads HTML vocabulary tables from disk and turns them into
// table.Table values. It owns the text clean-up that has to happen before
// cells are parsed.
package markup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"codeberg.org/snonux/vocabtable/internal/table"
)

// ErrNoRows is returned when the markup contains no table rows at all.
var ErrNoRows = errors.New("no table rows found")

// IngestionError represents a source file that could not be read or parsed.
type IngestionError struct {
	Path string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("failed to ingest %s: %v", e.Path, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

var noBreakSpaces = strings.NewReplacer(
	"&nbsp;", "",
	"&#160;", "",
	"&#xa0;", "",
	"&#xA0;", "",
	"\u00a0", "",
)

// Clean removes no-break spaces from raw markup.
func Clean(content string) string {
	return noBreakSpaces.Replace(content)
}

// ReadFile reads, cleans and parses the table in the file at path.
func ReadFile(path string) (table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return table.Table{}, &IngestionError{Path: path, Err: err}
	}

	t, err := Parse(Clean(string(data)))
	if err != nil {
		return table.Table{}, &IngestionError{Path: path, Err: err}
	}
	return t, nil
}

// Parse extracts the rows of the first table in content. Content may be a
// full document or a bare <tbody>/<tr> fragment.
func Parse(content string) (table.Table, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rows []table.Row
	if tbl := findElement(doc, atom.Table); tbl != nil {
		rows = collectRows(tbl)
	} else {
		// Table parts outside a <table> are dropped by the document parser,
		// so parse them again in table context.
		tableCtx := &html.Node{Type: html.ElementNode, Data: "table", DataAtom: atom.Table}
		nodes, err := html.ParseFragment(strings.NewReader(content), tableCtx)
		if err != nil {
			return table.Table{}, fmt.Errorf("failed to parse HTML fragment: %w", err)
		}
		for _, n := range nodes {
			rows = append(rows, collectRows(n)...)
		}
	}

	if len(rows) == 0 {
		return table.Table{}, ErrNoRows
	}
	return table.Table{Rows: rows}, nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// collectRows returns the rows below n without descending into nested
// tables.
func collectRows(n *html.Node) []table.Row {
	if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
		return []table.Row{parseRow(n)}
	}

	var rows []table.Row
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Table {
			continue
		}
		rows = append(rows, collectRows(c)...)
	}
	return rows
}

func parseRow(tr *html.Node) table.Row {
	var row table.Row
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Td {
			row.Cells = append(row.Cells, parseCell(c))
		}
	}
	return row
}

func parseCell(td *html.Node) table.RawCell {
	var (
		text strings.Builder
		cell table.RawCell
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			text.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Audio:
			cell.AudioSources = append(cell.AudioSources, audioSource(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := td.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}

	cell.Text = text.String()
	return cell
}

// audioSource returns the src of an <audio> element, falling back to its
// first <source> child.
func audioSource(n *html.Node) string {
	if src, ok := attr(n, "src"); ok {
		return src
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Source {
			if src, ok := attr(c, "src"); ok {
				return src
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
