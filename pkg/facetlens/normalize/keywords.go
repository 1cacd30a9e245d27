package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seolab/facetlens/pkg/facetlens/detect"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

// KeywordResearch normalizes a Keyword Planner export: UTF-16
// tab-separated, with keyword/volume columns under English or Spanish
// names and shorthand volumes like "1K" or "1,5M".
func KeywordResearch(raw []byte, opt Options) (*Result, error) {
	text, err := detect.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("keyword research: %w", err)
	}

	header, rows, err := readTable(text, '\t')
	if err != nil || len(header) <= 1 {
		// some exports come comma-separated despite the planner default
		header, rows, err = readTable(text, ',')
		if err != nil {
			return nil, fmt.Errorf("keyword research: %w", err)
		}
	}

	kwIdx := columnIndex(header, "keyword", "palabra clave")
	volIdx := columnIndex(header, "avg. monthly searches", "búsquedas mensuales", "busquedas mensuales", "volume", "volumen")
	if kwIdx < 0 {
		return nil, fmt.Errorf("keyword research: header %v missing keyword column", header)
	}

	res := &Result{}
	for _, row := range rows {
		res.Rows++
		kw := cellAt(row, kwIdx)
		if kw == "" {
			res.Skipped++
			continue
		}
		res.Keywords = append(res.Keywords, records.KeywordRecord{
			Keyword: kw,
			Volume:  ParseVolume(cellAt(row, volIdx)),
		})
	}

	if err := res.quality(detect.FormatKeywordResearch, opt); err != nil {
		return res, err
	}
	return res, nil
}

// ParseVolume parses planner volumes: plain integers with separators, or
// "1K" / "1,5K" / "2M" shorthand (comma as decimal separator). Unparseable
// values yield 0.
func ParseVolume(s string) int {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return 0
	}
	mult := 1
	switch {
	case strings.HasSuffix(v, "K"):
		mult = 1000
		v = strings.TrimSuffix(v, "K")
	case strings.HasSuffix(v, "M"):
		mult = 1000000
		v = strings.TrimSuffix(v, "M")
	}
	if mult > 1 {
		v = strings.ReplaceAll(v, ",", ".")
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return int(f * float64(mult))
	}
	n, ok := parseCount(v)
	if !ok {
		return 0
	}
	return n
}
