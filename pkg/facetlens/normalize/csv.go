package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/seolab/facetlens/pkg/facetlens/detect"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

// readTable parses decoded CSV/TSV text into a header row and data rows.
func readTable(text string, comma rune) ([]string, [][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var header []string
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// columnIndex finds the first header cell matching any alias,
// case-insensitively. Returns -1 when no alias is present.
func columnIndex(header []string, aliases ...string) int {
	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))
		for _, a := range aliases {
			if c == a {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// TopQuery normalizes the required url/url_total_clicks/top_query export.
// Duplicate (url, top_query) pairs are aggregated by summing clicks, never
// overwritten. When the export carries a top_query_clicks column those
// clicks are preferred as the pair's impact.
func TopQuery(raw []byte, opt Options) (*Result, error) {
	text, err := detect.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("top query: %w", err)
	}
	header, rows, err := readTable(text, ',')
	if err != nil {
		return nil, fmt.Errorf("top query: %w", err)
	}

	urlIdx := columnIndex(header, "url", "page", "página", "pagina")
	clicksIdx := columnIndex(header, "url_total_clicks", "clicks", "clics")
	queryIdx := columnIndex(header, "top_query", "top query", "consulta")
	queryClicksIdx := columnIndex(header, "top_query_clicks", "query_clicks")
	if urlIdx < 0 || clicksIdx < 0 || queryIdx < 0 {
		return nil, fmt.Errorf("top query: header %v missing required columns", header)
	}

	res := &Result{}
	agg := make(map[string]int)
	type pairKey struct{ url, query string }
	var order []pairKey
	for _, row := range rows {
		res.Rows++
		url := cellAt(row, urlIdx)
		query := cellAt(row, queryIdx)
		if url == "" || query == "" {
			res.Skipped++
			continue
		}
		clicksCell := cellAt(row, clicksIdx)
		if queryClicksIdx >= 0 && cellAt(row, queryClicksIdx) != "" {
			clicksCell = cellAt(row, queryClicksIdx)
		}
		clicks, ok := parseCount(clicksCell)
		if !ok {
			res.Skipped++
			continue
		}
		k := url + "\x00" + query
		if _, seen := agg[k]; !seen {
			order = append(order, pairKey{url: url, query: query})
		}
		agg[k] += clicks
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].url != order[j].url {
			return order[i].url < order[j].url
		}
		return order[i].query < order[j].query
	})
	for _, p := range order {
		res.Queries = append(res.Queries, records.QueryRecord{
			URL:      p.url,
			TopQuery: p.query,
			Clicks:   agg[p.url+"\x00"+p.query],
			Source:   records.SourceTopQuery,
		})
	}

	if err := res.quality(detect.FormatTopQuery, opt); err != nil {
		return res, err
	}
	return res, nil
}

// GSCQueries normalizes a Search Console query export with Spanish
// column headers. Query rows carry no URL of their own.
func GSCQueries(raw []byte, opt Options) (*Result, error) {
	text, err := detect.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("gsc queries: %w", err)
	}
	header, rows, err := readTable(text, ',')
	if err != nil {
		return nil, fmt.Errorf("gsc queries: %w", err)
	}

	queryIdx := columnIndex(header, "consultas principales", "top queries")
	clicksIdx := columnIndex(header, "clics", "clicks")
	if queryIdx < 0 || clicksIdx < 0 {
		return nil, fmt.Errorf("gsc queries: header %v missing required columns", header)
	}

	res := &Result{}
	for _, row := range rows {
		res.Rows++
		query := cellAt(row, queryIdx)
		clicks, ok := parseCount(cellAt(row, clicksIdx))
		if query == "" || !ok {
			res.Skipped++
			continue
		}
		res.Queries = append(res.Queries, records.QueryRecord{
			TopQuery: query,
			Clicks:   clicks,
			Source:   records.SourceGSC,
		})
	}

	if err := res.quality(detect.FormatGSCQueries, opt); err != nil {
		return res, err
	}
	return res, nil
}

// GSCPages normalizes a Search Console page export with Spanish column
// headers.
func GSCPages(raw []byte, opt Options) (*Result, error) {
	text, err := detect.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("gsc pages: %w", err)
	}
	header, rows, err := readTable(text, ',')
	if err != nil {
		return nil, fmt.Errorf("gsc pages: %w", err)
	}

	urlIdx := columnIndex(header, "páginas principales", "paginas principales", "top pages")
	clicksIdx := columnIndex(header, "clics", "clicks")
	imprIdx := columnIndex(header, "impresiones", "impressions")
	if urlIdx < 0 || clicksIdx < 0 {
		return nil, fmt.Errorf("gsc pages: header %v missing required columns", header)
	}

	res := &Result{}
	for _, row := range rows {
		res.Rows++
		url := cellAt(row, urlIdx)
		clicks, ok := parseCount(cellAt(row, clicksIdx))
		if url == "" || !ok {
			res.Skipped++
			continue
		}
		impressions, _ := parseCount(cellAt(row, imprIdx))
		res.Pages = append(res.Pages, records.PageRecord{
			URL:         url,
			Clicks:      clicks,
			Impressions: impressions,
		})
	}

	if err := res.quality(detect.FormatGSCPages, opt); err != nil {
		return res, err
	}
	return res, nil
}
