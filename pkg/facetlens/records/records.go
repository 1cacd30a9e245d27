package records

import "github.com/seolab/facetlens/pkg/facetlens/facets"

// TrafficScope says whether a usage record covers all traffic or
// organic-only traffic.
type TrafficScope int

const (
	ScopeAll TrafficScope = iota
	ScopeOrganic
)

func (s TrafficScope) String() string {
	if s == ScopeOrganic {
		return "organic"
	}
	return "all"
}

// QuerySource identifies where a query record came from.
type QuerySource int

const (
	SourceTopQuery QuerySource = iota
	SourceGSC
)

func (s QuerySource) String() string {
	if s == SourceGSC {
		return "gsc"
	}
	return "top_query"
}

// Intent classifies a search query.
type Intent int

const (
	IntentTransactional Intent = iota
	IntentInformational
	IntentNavigational
)

func (i Intent) String() string {
	switch i {
	case IntentInformational:
		return "informational"
	case IntentNavigational:
		return "navigational"
	}
	return "transactional"
}

// URLKind classifies a URL within the category's site structure.
type URLKind int

const (
	KindOther URLKind = iota
	KindCategory
	KindFilter
	KindFilterNoIndex
	KindProduct
	KindArticle
)

func (k URLKind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindFilter:
		return "filter"
	case KindFilterNoIndex:
		return "filter_noindex"
	case KindProduct:
		return "product"
	case KindArticle:
		return "article"
	}
	return "other"
}

// FacetUsageRecord is one facet value's internal usage, produced by the
// Search Filters normalizer. Key is always a dictionary key or
// facets.Unknown; unresolved labels are kept so session totals add up.
type FacetUsageRecord struct {
	Key      facets.Key
	Value    string
	RawLabel string
	Sessions int
	Scope    TrafficScope
}

// URLUsageRecord is one observed URL path's internal usage, produced by
// the Page Full URL normalizer. Segments exclude scheme and host.
type URLUsageRecord struct {
	Segments []string
	Sessions int
	Scope    TrafficScope
}

// QueryRecord joins a URL with its top search query.
type QueryRecord struct {
	URL      string
	TopQuery string
	Clicks   int
	Source   QuerySource
}

// PageRecord is a per-page search performance row.
type PageRecord struct {
	URL         string
	Clicks      int
	Impressions int
}

// KeywordRecord is an external search-demand row.
type KeywordRecord struct {
	Keyword string
	Volume  int
}
