// Package facetlens reconciles internal filter usage, internal URL usage
// and external search demand for one e-commerce category into a single
// normalized model, and derives ranking, classification and
// cross-source insights from it. A run is a single batch pass: every
// record lives in memory for the duration of the run and carries no state
// across runs.
package facetlens

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/seolab/facetlens/pkg/facetlens/crossref"
	"github.com/seolab/facetlens/pkg/facetlens/detect"
	"github.com/seolab/facetlens/pkg/facetlens/facets"
	"github.com/seolab/facetlens/pkg/facetlens/hierarchy"
	"github.com/seolab/facetlens/pkg/facetlens/insight"
	"github.com/seolab/facetlens/pkg/facetlens/internalerr"
	"github.com/seolab/facetlens/pkg/facetlens/normalize"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

// Sources holds the raw bytes of each uploaded export. TopQuery is
// required; every other source is optional and its absence only reduces
// analysis coverage.
type Sources struct {
	TopQuery []byte

	SearchFiltersAll []byte
	SearchFiltersSEO []byte
	PageURLsAll      []byte
	PageURLsSEO      []byte

	GSCQueries      []byte
	GSCPages        []byte
	KeywordResearch []byte
}

// Options configures an Engine.
type Options struct {
	Category   string
	Dictionary *facets.Dictionary
	Thresholds crossref.Thresholds
	Intents    crossref.Intents
	Normalize  normalize.Options

	// Generator overrides the default wall-clock insight generator,
	// mainly for reproducible runs.
	Generator *insight.Generator
}

// Engine runs batch analyses. It is immutable after New and safe for
// concurrent runs; each run builds its own record set from scratch.
type Engine struct {
	category string
	dict     *facets.Dictionary
	cross    *crossref.Engine
	norm     normalize.Options
	gen      *insight.Generator
}

// New creates an engine with the given dependencies; zero values fall
// back to the built-in defaults.
func New(opts Options) *Engine {
	if opts.Category == "" {
		opts.Category = "televisores"
	}
	if opts.Dictionary == nil {
		opts.Dictionary = facets.Default()
	}
	if opts.Normalize.MaxSkippedFraction == 0 {
		opts.Normalize = normalize.DefaultOptions()
	}
	if opts.Generator == nil {
		opts.Generator = insight.NewGenerator()
	}
	return &Engine{
		category: opts.Category,
		dict:     opts.Dictionary,
		cross:    crossref.NewEngine(opts.Dictionary, opts.Category, opts.Thresholds, opts.Intents),
		norm:     opts.Normalize,
		gen:      opts.Generator,
	}
}

// SourceFailure records one optional source that could not be used.
type SourceFailure struct {
	Source string
	Err    string
}

// Diagnostics summarizes what a run loaded, dropped and warned about.
// Nothing is silently swallowed: every skipped row, sentinel and failed
// source is counted here.
type Diagnostics struct {
	Loaded         []string
	Failed         []SourceFailure
	SkippedRows    map[string]int
	SentinelRows   map[string]int
	Warnings       []string
	OutOfCategory  int
	HierarchyNotes []string
}

// Summary is the run's executive numbers.
type Summary struct {
	TotalURLs           int
	FilterURLs          int
	ArticleURLs         int
	TotalClicks         int
	CannibalizedClicks  int
	CannibalizationRate float64 // percent of total clicks
	GapsFound           int
	HighPriorityGaps    int
	TopFacet            facets.Key
	TopFacetShare       float64
	FacetOrder          []facets.Key
}

// Report is the full structured output of one run, consumed by the
// presentation layer. It carries plain data only; rendering to dashboard,
// CSV, JSON or HTML happens elsewhere.
type Report struct {
	RunID    string
	Category string

	Ranking         []crossref.FacetRank
	Tree            *hierarchy.Tree
	NodeMatrix      []crossref.NodeMatrixRow
	KeyMatrix       []crossref.KeyMatrixRow
	Cannibalization []crossref.Candidate
	Gaps            []crossref.Gap
	Indexation      []crossref.Decision
	Insights        []insight.Insight

	// Annotations are downstream critique verdicts; the insights they
	// point at are never modified or removed.
	Annotations []insight.Annotation

	Summary     Summary
	Diagnostics Diagnostics
}

// Annotate records a critique verdict against an existing insight.
func (r *Report) Annotate(a insight.Annotation) error {
	for _, ins := range r.Insights {
		if ins.ID == a.InsightID {
			r.Annotations = append(r.Annotations, a)
			return nil
		}
	}
	return fmt.Errorf("%w: no insight %s", internalerr.ErrInvalidInput, a.InsightID)
}

// Critic reviews a generated insight list and returns annotations. It is
// an external collaborator: an error or timeout here leaves the report's
// insights exactly as computed.
type Critic interface {
	Review(ctx context.Context, insights []insight.Insight) ([]insight.Annotation, error)
}

// Critique runs an optional external review over the report's insights
// and applies the returned annotations. On error the report is untouched.
func (e *Engine) Critique(ctx context.Context, report *Report, critic Critic) error {
	anns, err := critic.Review(ctx, report.Insights)
	if err != nil {
		return fmt.Errorf("critique: %w", err)
	}
	for _, a := range anns {
		if err := report.Annotate(a); err != nil {
			return err
		}
	}
	return nil
}

// loaded is one source slot's normalization outcome.
type loaded struct {
	name     string
	expected detect.Format
	data     []byte
	required bool
	scope    records.TrafficScope

	res *normalize.Result
	err error
}

// Run executes one batch analysis. Normalizers for independent files run
// concurrently; the cross-reference stage starts only after all of them
// and the hierarchy builder finish. A failed optional source degrades
// coverage and lands in Diagnostics; a failed required source aborts.
func (e *Engine) Run(ctx context.Context, src Sources) (*Report, error) {
	if len(src.TopQuery) == 0 {
		return nil, fmt.Errorf("top query: %w", internalerr.ErrMissingRequiredSource)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slots := []*loaded{
		{name: "top_query", expected: detect.FormatTopQuery, data: src.TopQuery, required: true},
		{name: "search_filters_all", expected: detect.FormatSearchFilters, data: src.SearchFiltersAll, scope: records.ScopeAll},
		{name: "search_filters_seo", expected: detect.FormatSearchFilters, data: src.SearchFiltersSEO, scope: records.ScopeOrganic},
		{name: "page_urls_all", expected: detect.FormatPageFullURL, data: src.PageURLsAll, scope: records.ScopeAll},
		{name: "page_urls_seo", expected: detect.FormatPageFullURL, data: src.PageURLsSEO, scope: records.ScopeOrganic},
		{name: "gsc_queries", expected: detect.FormatGSCQueries, data: src.GSCQueries},
		{name: "gsc_pages", expected: detect.FormatGSCPages, data: src.GSCPages},
		{name: "keyword_research", expected: detect.FormatKeywordResearch, data: src.KeywordResearch},
	}

	var wg sync.WaitGroup
	for _, slot := range slots {
		if len(slot.data) == 0 {
			continue
		}
		wg.Add(1)
		go func(s *loaded) {
			defer wg.Done()
			s.res, s.err = e.normalizeSlot(s)
		}(slot)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:    ulid.MustNew(ulid.Now(), rand.Reader).String(),
		Category: e.category,
		Diagnostics: Diagnostics{
			SkippedRows:  make(map[string]int),
			SentinelRows: make(map[string]int),
		},
	}

	var (
		facetUsage []records.FacetUsageRecord
		urlUsage   []records.URLUsageRecord
		queries    []records.QueryRecord
		pages      []records.PageRecord
		keywords   []records.KeywordRecord
	)
	for _, slot := range slots {
		if len(slot.data) == 0 {
			continue
		}
		if slot.err != nil {
			if slot.required {
				return nil, fmt.Errorf("%s: %w", slot.name, slot.err)
			}
			report.Diagnostics.Failed = append(report.Diagnostics.Failed, SourceFailure{
				Source: slot.name,
				Err:    slot.err.Error(),
			})
			continue
		}
		report.Diagnostics.Loaded = append(report.Diagnostics.Loaded, slot.name)
		if slot.res.Skipped > 0 {
			report.Diagnostics.SkippedRows[slot.name] = slot.res.Skipped
		}
		if slot.res.Sentinels > 0 {
			report.Diagnostics.SentinelRows[slot.name] = slot.res.Sentinels
		}
		for _, w := range slot.res.Warnings {
			report.Diagnostics.Warnings = append(report.Diagnostics.Warnings, slot.name+": "+w)
		}
		facetUsage = append(facetUsage, slot.res.FacetUsage...)
		urlUsage = append(urlUsage, slot.res.URLUsage...)
		queries = append(queries, slot.res.Queries...)
		pages = append(pages, slot.res.Pages...)
		keywords = append(keywords, slot.res.Keywords...)
	}

	var tree *hierarchy.Tree
	if len(urlUsage) > 0 {
		tree = hierarchy.Build(urlUsage, strings.ToLower(e.category), e.dict)
		report.Diagnostics.OutOfCategory = tree.OutOfCategory
		report.Diagnostics.HierarchyNotes = tree.Notes
	}

	demandByPath, clicksByPath := joinDemand(queries, pages)

	report.Tree = tree
	report.Ranking = e.cross.RankFacets(facetUsage)
	report.NodeMatrix = e.cross.NodeMatrix(tree)
	report.KeyMatrix = e.cross.KeyMatrix(facetUsage, queries)
	report.Cannibalization = e.cross.Cannibalization(queries, tree)
	report.Gaps = e.cross.Gaps(keywords, queries, tree)
	report.Indexation = e.cross.Indexation(tree, demandByPath, clicksByPath)
	report.Insights = e.gen.Generate(insight.Input{
		Ranking:         report.Ranking,
		KeyMatrix:       report.KeyMatrix,
		Cannibalization: report.Cannibalization,
		Gaps:            report.Gaps,
		Indexation:      report.Indexation,
	})
	report.Summary = e.summarize(report, queries)
	return report, nil
}

func (e *Engine) normalizeSlot(s *loaded) (*normalize.Result, error) {
	format, err := detect.Detect(s.data)
	if err != nil {
		return nil, err
	}
	if format != s.expected {
		return nil, fmt.Errorf("%w: detected %s, expected %s",
			internalerr.ErrInvalidInput, format, s.expected)
	}
	switch format {
	case detect.FormatSearchFilters:
		return normalize.SearchFilters(s.data, s.scope, e.dict, e.norm)
	case detect.FormatPageFullURL:
		return normalize.PageFullURL(s.data, s.scope, e.norm)
	case detect.FormatTopQuery:
		return normalize.TopQuery(s.data, e.norm)
	case detect.FormatGSCQueries:
		return normalize.GSCQueries(s.data, e.norm)
	case detect.FormatGSCPages:
		return normalize.GSCPages(s.data, e.norm)
	case detect.FormatKeywordResearch:
		return normalize.KeywordResearch(s.data, e.norm)
	}
	return nil, fmt.Errorf("%w: no normalizer for %s", internalerr.ErrInvalidInput, format)
}

// joinDemand aggregates query and page clicks by rooted path for the
// indexation join.
func joinDemand(queries []records.QueryRecord, pages []records.PageRecord) (map[string]int, map[string]int) {
	demand := make(map[string]int)
	clicks := make(map[string]int)
	for _, q := range queries {
		if q.URL == "" {
			continue
		}
		demand[pathOf(q.URL)] += q.Clicks
	}
	for _, p := range pages {
		clicks[pathOf(p.URL)] += p.Clicks
	}
	return demand, clicks
}

func pathOf(url string) string {
	return "/" + strings.Join(normalize.SplitPath(url), "/")
}

func (e *Engine) summarize(report *Report, queries []records.QueryRecord) Summary {
	s := Summary{}

	kinds := make(map[string]records.URLKind)
	for _, q := range queries {
		if q.URL == "" {
			continue
		}
		if _, seen := kinds[q.URL]; !seen {
			kinds[q.URL] = e.cross.ClassifyURL(q.URL)
		}
		if q.Source == records.SourceTopQuery {
			s.TotalClicks += q.Clicks
		}
	}
	urls := make([]string, 0, len(kinds))
	for u := range kinds {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	for _, u := range urls {
		switch kinds[u] {
		case records.KindFilter, records.KindFilterNoIndex:
			s.FilterURLs++
		case records.KindArticle:
			s.ArticleURLs++
		}
	}
	s.TotalURLs = len(kinds)

	for _, c := range report.Cannibalization {
		s.CannibalizedClicks += c.Clicks
	}
	if s.TotalClicks > 0 {
		s.CannibalizationRate = float64(s.CannibalizedClicks) / float64(s.TotalClicks) * 100
	}

	s.GapsFound = len(report.Gaps)
	for _, g := range report.Gaps {
		if g.Priority == "HIGH" {
			s.HighPriorityGaps++
		}
	}

	for _, r := range report.Ranking {
		s.FacetOrder = append(s.FacetOrder, r.Key)
		if len(s.FacetOrder) == 4 {
			break
		}
	}
	if len(report.Ranking) > 0 {
		s.TopFacet = report.Ranking[0].Key
		s.TopFacetShare = report.Ranking[0].Share
	}
	return s
}
