package table

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NoResultsMarker is the fragment the query service sends for an empty result.
const NoResultsMarker = "<p>No results found.</p>"

// IsNoResults reports whether fragment is the explicit empty-result marker.
func IsNoResults(fragment string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(fragment)), "<p>no results found")
}

var tableContext = &html.Node{Type: html.ElementNode, Data: "table", DataAtom: atom.Table}

// Extract converts the rows of an HTML table fragment into trimmed cell
// strings. Bare <tr> fragments and complete tables are both accepted.
// Anything without rows, including malformed input, yields nil.
func Extract(fragment string) [][]string {
	if strings.TrimSpace(fragment) == "" || IsNoResults(fragment) {
		return nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), tableContext)
	if err != nil {
		return nil
	}

	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			if row := cells(n); len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return rows
}

func cells(tr *html.Node) []string {
	var row []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
			row = append(row, strings.TrimSpace(text(c)))
		}
	}
	return row
}

// text flattens every text node below n.
func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
