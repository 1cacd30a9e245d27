package crossref

import (
	"sort"

	"github.com/seolab/facetlens/pkg/facetlens/facets"
	"github.com/seolab/facetlens/pkg/facetlens/hierarchy"
	"github.com/seolab/facetlens/pkg/facetlens/normalize"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

// FacetRank is one facet dimension's position in the recommended URL
// segment order.
type FacetRank struct {
	Key      facets.Key
	Sessions int
	Values   int     // distinct facet values observed
	Share    float64 // of navigable sessions, in percent
}

// RankFacets orders facet keys by total sessions across values and
// traffic scopes, descending. Sorting, price and the reserved keys are
// not navigable and are excluded. Ties break on the dictionary's declared
// priority, so identical input always yields identical order.
func (e *Engine) RankFacets(usage []records.FacetUsageRecord) []FacetRank {
	sessions := make(map[facets.Key]int)
	values := make(map[facets.Key]map[string]struct{})
	total := 0
	for _, rec := range usage {
		if !rec.Key.Navigable() {
			continue
		}
		sessions[rec.Key] += rec.Sessions
		if values[rec.Key] == nil {
			values[rec.Key] = make(map[string]struct{})
		}
		values[rec.Key][rec.Value] = struct{}{}
		total += rec.Sessions
	}

	out := make([]FacetRank, 0, len(sessions))
	for k, s := range sessions {
		r := FacetRank{Key: k, Sessions: s, Values: len(values[k])}
		if total > 0 {
			r.Share = float64(s) / float64(total) * 100
		}
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Sessions != out[b].Sessions {
			return out[a].Sessions > out[b].Sessions
		}
		pa, pb := e.dict.Priority(out[a].Key), e.dict.Priority(out[b].Key)
		if pa != pb {
			return pa < pb
		}
		return out[a].Key < out[b].Key
	})
	return out
}

// NodeMatrixRow is the UX/SEO view of one hierarchy node.
type NodeMatrixRow struct {
	Path         string
	Level        int
	UsageAll     int
	UsageSEO     int
	SEOShare     float64 // organic share of overall usage, 0 when unused
	UnderIndexed bool    // high usage, low organic share
}

// NodeMatrix computes the organic share per hierarchy node and flags
// under-indexed opportunities: heavily used paths search barely reaches.
// Degrades to unflagged rows when no organic-scope records were loaded.
func (e *Engine) NodeMatrix(tree *hierarchy.Tree) []NodeMatrixRow {
	if tree == nil {
		return nil
	}
	var out []NodeMatrixRow
	for _, n := range tree.Nodes() {
		row := NodeMatrixRow{
			Path:     n.Path(),
			Level:    n.Level,
			UsageAll: n.UsageAll,
			UsageSEO: n.UsageSEO,
		}
		if n.UsageAll > 0 {
			row.SEOShare = float64(n.UsageSEO) / float64(n.UsageAll)
		}
		row.UnderIndexed = n.UsageAll >= e.th.UnderIndexedMinUsage &&
			row.SEOShare < e.th.UnderIndexedShare
		out = append(out, row)
	}
	return out
}

// Opportunity classifies a facet dimension's UX/SEO balance.
type Opportunity string

const (
	OpportunityVisibility Opportunity = "high_ux_low_seo" // used in navigation, invisible in search
	OpportunityNavigation Opportunity = "high_seo_low_ux" // found in search, buried in navigation
	OpportunityBalanced   Opportunity = "balanced"
	OpportunityLowImpact  Opportunity = "low_impact"
)

// KeyMatrixRow crosses one facet dimension's internal usage with its
// search clicks.
type KeyMatrixRow struct {
	Key         facets.Key
	Sessions    int
	Clicks      int
	UXShare     float64 // percent of navigable sessions
	SEOShare    float64 // percent of filter-URL clicks
	Gap         float64 // UXShare - SEOShare
	Opportunity Opportunity
}

// KeyMatrix joins filter usage with query clicks attributed to filter
// URLs by the facets in their path. Operates on whatever subset of
// sources is present: with no queries the SEO side is simply zero.
func (e *Engine) KeyMatrix(usage []records.FacetUsageRecord, queries []records.QueryRecord) []KeyMatrixRow {
	sessions := make(map[facets.Key]int)
	totalUX := 0
	for _, rec := range usage {
		if !rec.Key.Navigable() {
			continue
		}
		sessions[rec.Key] += rec.Sessions
		totalUX += rec.Sessions
	}

	clicks := make(map[facets.Key]int)
	totalSEO := 0
	for _, q := range queries {
		if e.ClassifyURL(q.URL) != records.KindFilter {
			continue
		}
		for _, k := range e.urlFacetKeys(q.URL) {
			clicks[k] += q.Clicks
			totalSEO += q.Clicks
		}
	}

	keys := make(map[facets.Key]struct{})
	for k := range sessions {
		keys[k] = struct{}{}
	}
	for k := range clicks {
		keys[k] = struct{}{}
	}

	out := make([]KeyMatrixRow, 0, len(keys))
	for k := range keys {
		row := KeyMatrixRow{Key: k, Sessions: sessions[k], Clicks: clicks[k]}
		if totalUX > 0 {
			row.UXShare = float64(row.Sessions) / float64(totalUX) * 100
		}
		if totalSEO > 0 {
			row.SEOShare = float64(row.Clicks) / float64(totalSEO) * 100
		}
		row.Gap = row.UXShare - row.SEOShare
		row.Opportunity = e.classifyOpportunity(row.UXShare, row.SEOShare)
		out = append(out, row)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Sessions != out[b].Sessions {
			return out[a].Sessions > out[b].Sessions
		}
		return out[a].Key < out[b].Key
	})
	return out
}

func (e *Engine) classifyOpportunity(ux, seo float64) Opportunity {
	high, low := e.th.MatrixHighShare, e.th.MatrixLowShare
	switch {
	case ux > high && seo < low:
		return OpportunityVisibility
	case seo > high && ux < low:
		return OpportunityNavigation
	case ux > high && seo > high:
		return OpportunityBalanced
	}
	return OpportunityLowImpact
}

// urlFacetKeys extracts the facet keys present in a filter URL's path
// beyond the category root.
func (e *Engine) urlFacetKeys(url string) []facets.Key {
	segs := normalize.SplitPath(url)
	var keys []facets.Key
	for i, seg := range segs {
		if i == 0 {
			continue // category root
		}
		if k, _, ok := e.dict.MatchSegment(seg); ok {
			keys = append(keys, k)
		}
	}
	return keys
}
