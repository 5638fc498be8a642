// Package render formats leaderboards as terminal tables and HTML pages.
package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/spotify-stats/internal/stats"
)

// Stylesheet is the path the HTML pages link their stylesheet from.
const Stylesheet = "/static/table.css"

// Text writes t as a terminal table.
func Text(w io.Writer, t stats.Table) error {
	table := tablewriter.NewWriter(w)
	table.Header(t.Header())
	for _, record := range t.Records() {
		if err := table.Append(record); err != nil {
			return fmt.Errorf("rendering %s: %w", t.Title(), err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering %s: %w", t.Title(), err)
	}
	return nil
}

// HTML renders t as a complete page under heading. Cell values are written
// unescaped; image cells become img tags.
func HTML(heading string, t stats.Table) string {
	var out strings.Builder
	out.WriteString(`<html>
  <head>
    <meta charset="utf-8">
    <link rel="stylesheet" type="text/css" href="` + Stylesheet + `">
  </head>
  <body>
`)
	fmt.Fprintf(&out, "    <h1>%s</h1>\n", html.EscapeString(heading))
	out.WriteString(Fragment(t))
	out.WriteString(`  </body>
</html>
`)
	return out.String()
}

// Fragment renders only the table of t, for embedding in a larger page.
func Fragment(t stats.Table) string {
	if t.Len() == 0 {
		return "<div>No listens found.</div>\n"
	}

	var out strings.Builder
	out.WriteString(`<table class="mystyle">
  <thead>
    <tr>`)
	for _, header := range t.Header() {
		fmt.Fprintf(&out, "<th>%s</th>", header)
	}
	out.WriteString(`</tr>
  </thead>
  <tbody>
`)
	for _, record := range t.Records() {
		out.WriteString("    <tr>")
		for i, cell := range record {
			if i == 1 && t.HasImages() {
				cell = imageTag(cell)
			}
			fmt.Fprintf(&out, "<td>%s</td>", cell)
		}
		out.WriteString("</tr>\n")
	}
	out.WriteString(`  </tbody>
</table>
`)
	return out.String()
}

func imageTag(url string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf("<img src='%s'>", url)
}
