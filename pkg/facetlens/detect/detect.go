// Package detect identifies which supported export format a raw tabular
// file matches. Each format is described declaratively by a schema: a
// header marker literal, required column alias groups, or both. Detection
// is heuristic and order-independent with respect to comment/metadata
// preambles.
package detect

import (
	"fmt"
	"strings"

	"github.com/seolab/facetlens/pkg/facetlens/internalerr"
)

// Format tags one of the supported export formats.
type Format string

const (
	FormatSearchFilters   Format = "search_filters"
	FormatPageFullURL     Format = "page_full_url"
	FormatTopQuery        Format = "top_query"
	FormatGSCQueries      Format = "gsc_queries"
	FormatGSCPages        Format = "gsc_pages"
	FormatKeywordResearch Format = "keyword_research"
)

// Attempt records why one schema did not match.
type Attempt struct {
	Format Format
	Reason string
}

// FormatUnrecognizedError reports that no schema matched, naming every
// attempted format and why it failed.
type FormatUnrecognizedError struct {
	Attempts []Attempt
}

func (e *FormatUnrecognizedError) Error() string {
	var b strings.Builder
	b.WriteString("no format matched:")
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, " %s (%s);", a.Format, a.Reason)
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (e *FormatUnrecognizedError) Unwrap() error {
	return internalerr.ErrFormatUnrecognized
}

// schema declares what a format's header must contain. Markers identify
// the Adobe-style exports; column groups identify the column-name-driven
// ones, each group matched by any of its aliases (case-insensitive).
type schema struct {
	format  Format
	marker  string
	columns [][]string
}

var schemas = []schema{
	{format: FormatSearchFilters, marker: "search filters"},
	{format: FormatPageFullURL, marker: "page full url"},
	{format: FormatTopQuery, columns: [][]string{
		{"url", "page", "página", "pagina"},
		{"url_total_clicks", "clicks", "clics"},
		{"top_query", "top query", "consulta"},
	}},
	{format: FormatGSCQueries, columns: [][]string{
		{"consultas principales", "top queries"},
		{"clics", "clicks"},
	}},
	{format: FormatGSCPages, columns: [][]string{
		{"páginas principales", "paginas principales", "top pages"},
		{"clics", "clicks"},
	}},
	{format: FormatKeywordResearch, columns: [][]string{
		{"keyword", "palabra clave"},
		{"avg. monthly searches", "búsquedas mensuales", "busquedas mensuales", "volume", "volumen"},
	}},
}

// markerScanLimit bounds how deep into a file marker rows are searched;
// Adobe exports put the marker right after the comment preamble.
const markerScanLimit = 25

// Detect inspects raw content and returns the matching format. The input
// may be UTF-8 or UTF-16; comment lines starting with '#' and metadata
// lines starting with ',' before the real header are skipped.
func Detect(raw []byte) (Format, error) {
	text, err := DecodeText(raw)
	if err != nil {
		return "", fmt.Errorf("detect: %w", err)
	}
	lines := DataLines(text)
	if len(lines) == 0 {
		return "", &FormatUnrecognizedError{Attempts: []Attempt{{Format: "", Reason: "no data lines"}}}
	}

	var attempts []Attempt
	for _, s := range schemas {
		if s.marker != "" {
			if hasMarker(lines, s.marker) {
				return s.format, nil
			}
			attempts = append(attempts, Attempt{
				Format: s.format,
				Reason: fmt.Sprintf("header marker %q not found", s.marker),
			})
			continue
		}
		if missing, ok := matchColumns(lines[0], s.columns); ok {
			return s.format, nil
		} else {
			attempts = append(attempts, Attempt{
				Format: s.format,
				Reason: fmt.Sprintf("missing column (aliases: %s)", strings.Join(missing, ", ")),
			})
		}
	}
	return "", &FormatUnrecognizedError{Attempts: attempts}
}

// DataLines strips the comment/metadata preamble and blank lines,
// returning trimmed content lines in order.
func DataLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") || strings.HasPrefix(t, ",") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func hasMarker(lines []string, marker string) bool {
	for i, line := range lines {
		if i >= markerScanLimit {
			break
		}
		first := line
		if idx := strings.IndexByte(line, ','); idx >= 0 {
			first = line[:idx]
		}
		if strings.EqualFold(strings.TrimSpace(first), marker) {
			return true
		}
	}
	return false
}

// matchColumns checks every alias group against the header cells. On
// failure it returns the first unmatched group's aliases.
func matchColumns(header string, groups [][]string) ([]string, bool) {
	cells := HeaderCells(header)
	set := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		set[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, group := range groups {
		found := false
		for _, alias := range group {
			if _, ok := set[alias]; ok {
				found = true
				break
			}
		}
		if !found {
			return group, false
		}
	}
	return nil, true
}

// HeaderCells splits a header line on tab when present, comma otherwise.
func HeaderCells(line string) []string {
	if strings.ContainsRune(line, '\t') {
		return strings.Split(line, "\t")
	}
	return strings.Split(line, ",")
}
