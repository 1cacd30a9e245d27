package crossref

import (
	"sort"

	"github.com/seolab/facetlens/pkg/facetlens/hierarchy"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

// Candidate is a cannibalization finding: a content page ranking for a
// transactional query a filter URL should own.
type Candidate struct {
	URL    string
	Query  string
	Clicks int
	Kind   records.URLKind

	// SuggestedPath is the filter URL built from the query's attributes.
	SuggestedPath string
	// PreferredNode is the existing hierarchy node matching the
	// suggestion, empty when no such node exists yet.
	PreferredNode string
}

// Cannibalization finds query records whose URL is a standalone article
// rather than a hierarchy node, with a transactional query naming a known
// facet attribute. Sorted by clicks descending, then URL, then query.
func (e *Engine) Cannibalization(queries []records.QueryRecord, tree *hierarchy.Tree) []Candidate {
	var out []Candidate
	for _, q := range queries {
		if q.URL == "" || q.Clicks < e.th.CannibalizationMinClicks {
			continue
		}
		if tree != nil {
			if _, ok := tree.LookupURL(q.URL); ok {
				continue // already a facet URL
			}
		}
		if e.ClassifyURL(q.URL) != records.KindArticle {
			continue
		}
		if e.ClassifyIntent(q.TopQuery) != records.IntentTransactional {
			continue
		}
		if _, _, ok := e.dict.MatchText(q.TopQuery); !ok {
			continue // no quantifiable attribute in the query
		}

		c := Candidate{
			URL:           q.URL,
			Query:         q.TopQuery,
			Clicks:        q.Clicks,
			Kind:          records.KindArticle,
			SuggestedPath: e.SuggestFilterPath(q.TopQuery),
		}
		if tree != nil {
			if n, ok := tree.LookupURL(c.SuggestedPath); ok {
				c.PreferredNode = n.Path()
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Clicks != out[b].Clicks {
			return out[a].Clicks > out[b].Clicks
		}
		if out[a].URL != out[b].URL {
			return out[a].URL < out[b].URL
		}
		return out[a].Query < out[b].Query
	})
	return out
}

// Gap is a demand gap: measurable search demand with no facet value to
// absorb it.
type Gap struct {
	Keyword       string
	Volume        int
	Source        string // "keyword_research" or "gsc"
	SuggestedPath string
	Priority      string // HIGH, MEDIUM or LOW by volume
}

// Gaps scans keyword research and GSC query demand for transactional
// terms whose normalized text matches no value in the dictionary's value
// space. Terms at or below the volume floor are ignored. Sorted by
// volume descending, then keyword.
func (e *Engine) Gaps(keywords []records.KeywordRecord, queries []records.QueryRecord, tree *hierarchy.Tree) []Gap {
	type demand struct {
		text   string
		volume int
		source string
	}
	var items []demand
	for _, k := range keywords {
		items = append(items, demand{text: k.Keyword, volume: k.Volume, source: "keyword_research"})
	}
	for _, q := range queries {
		if q.Source == records.SourceGSC && q.URL == "" {
			items = append(items, demand{text: q.TopQuery, volume: q.Clicks, source: "gsc"})
		}
	}

	seen := make(map[string]struct{})
	var out []Gap
	for _, item := range items {
		if item.text == "" || item.volume <= e.th.GapMinVolume {
			continue
		}
		if e.ClassifyIntent(item.text) != records.IntentTransactional {
			continue
		}
		if _, _, ok := e.dict.MatchText(item.text); ok {
			continue // demand already has a facet value
		}
		if _, dup := seen[item.text]; dup {
			continue
		}
		seen[item.text] = struct{}{}

		suggested := e.SuggestFilterPath(item.text)
		if tree != nil {
			if _, ok := tree.LookupURL(suggested); ok {
				continue // an existing URL already absorbs this demand
			}
		}
		out = append(out, Gap{
			Keyword:       item.text,
			Volume:        item.volume,
			Source:        item.source,
			SuggestedPath: suggested,
			Priority:      e.gapPriority(item.volume),
		})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Volume != out[b].Volume {
			return out[a].Volume > out[b].Volume
		}
		return out[a].Keyword < out[b].Keyword
	})
	return out
}

func (e *Engine) gapPriority(volume int) string {
	switch {
	case volume > e.th.GapHighVolume:
		return "HIGH"
	case volume > e.th.GapMediumVolume:
		return "MEDIUM"
	}
	return "LOW"
}
