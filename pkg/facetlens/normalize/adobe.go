package normalize

import (
	"fmt"
	"strings"

	"github.com/seolab/facetlens/pkg/facetlens/detect"
	"github.com/seolab/facetlens/pkg/facetlens/facets"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

// SearchFilters normalizes an Adobe "Search Filters" export: rows of
// "facet:value,count" after a comment preamble, with the marker row
// carrying the scope total. The marker row is excluded from output but
// kept as a validation total; emitted sessions exceeding it raises a
// warning, not an error.
func SearchFilters(raw []byte, scope records.TrafficScope, dict *facets.Dictionary, opt Options) (*Result, error) {
	text, err := detect.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("search filters: %w", err)
	}

	res := &Result{}
	unresolved := 0
	sum := 0
	for _, line := range detect.DataLines(text) {
		label, countCell, ok := rsplitComma(line)
		if !ok {
			res.Rows++
			res.Skipped++
			continue
		}
		count, ok := parseCount(countCell)
		name := strings.TrimSpace(label)
		if strings.EqualFold(name, "Search Filters") {
			if ok {
				res.ValidationTotal = count
			}
			continue
		}
		res.Rows++
		if !ok || name == "" {
			res.Skipped++
			continue
		}

		rawLabel, rawValue := name, name
		if i := strings.IndexByte(name, ':'); i >= 0 {
			rawLabel = strings.TrimSpace(name[:i])
			rawValue = strings.TrimSpace(name[i+1:])
		}
		key := dict.Resolve(rawLabel)
		if key == facets.Unknown {
			unresolved++
		}
		res.FacetUsage = append(res.FacetUsage, records.FacetUsageRecord{
			Key:      key,
			Value:    dict.NormalizeValue(key, rawValue),
			RawLabel: rawLabel,
			Sessions: count,
			Scope:    scope,
		})
		sum += count
	}

	if unresolved > 0 {
		res.warnf("search filters: %d labels unresolved, kept under %q", unresolved, facets.Unknown)
	}
	if res.ValidationTotal > 0 && sum > res.ValidationTotal {
		res.warnf("search filters: emitted sessions %d exceed scope total %d", sum, res.ValidationTotal)
	}
	if err := res.quality(detect.FormatSearchFilters, opt); err != nil {
		return res, err
	}
	return res, nil
}

// PageFullURL normalizes an Adobe "Page Full URL" export: rows of
// "url,count". Sentinel rows are dropped; the marker row supplies the
// validation total.
func PageFullURL(raw []byte, scope records.TrafficScope, opt Options) (*Result, error) {
	text, err := detect.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("page full url: %w", err)
	}

	res := &Result{}
	for _, line := range detect.DataLines(text) {
		cell, countCell, ok := rsplitComma(line)
		if !ok {
			res.Rows++
			res.Skipped++
			continue
		}
		count, countOK := parseCount(countCell)
		cell = strings.TrimSpace(cell)
		if strings.EqualFold(cell, "Page Full URL") {
			if countOK {
				res.ValidationTotal = count
			}
			continue
		}
		if isSentinel(cell) {
			res.Sentinels++
			continue
		}
		res.Rows++
		if !countOK || cell == "" {
			res.Skipped++
			continue
		}
		segs := SplitPath(cell)
		if len(segs) == 0 {
			res.Skipped++
			continue
		}
		res.URLUsage = append(res.URLUsage, records.URLUsageRecord{
			Segments: segs,
			Sessions: count,
			Scope:    scope,
		})
	}

	if err := res.quality(detect.FormatPageFullURL, opt); err != nil {
		return res, err
	}
	return res, nil
}
