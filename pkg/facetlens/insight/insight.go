// Package insight turns cross-reference output into the prioritized,
// human-readable finding list that is the core's final deliverable.
// Insights are immutable once generated; downstream critique annotates
// them, it never deletes or rewrites them.
package insight

import (
	"crypto/rand"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/seolab/facetlens/pkg/facetlens/crossref"
)

// Severity orders findings.
type Severity int

const (
	SeverityHigh Severity = iota
	SeverityMedium
	SeverityLow
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	}
	return "LOW"
}

// Insight categories.
const (
	CategoryFacetOrder      = "facet_order"
	CategoryCannibalization = "cannibalization"
	CategoryDemandGap       = "demand_gap"
	CategoryUXSEOGap        = "ux_seo_gap"
	CategoryIndexation      = "indexation"
)

// Evidence references a source record so a reviewer can verify a finding
// without re-running the engine.
type Evidence struct {
	Source string // which input the reference points into
	Ref    string // record identifier within that input
}

// Insight is one finding. Impact carries the usage or demand volume
// behind it and drives ordering within a severity band.
type Insight struct {
	ID             string
	Severity       Severity
	Category       string
	Subject        string
	Recommendation string
	Impact         int
	Evidence       []Evidence
}

// Annotation is a downstream critique verdict on one insight. The insight
// itself stays untouched for audit.
type Annotation struct {
	InsightID     string
	FalsePositive bool
	Note          string
}

// Input collects the cross-reference outputs the generator merges.
type Input struct {
	Ranking         []crossref.FacetRank
	KeyMatrix       []crossref.KeyMatrixRow
	Cannibalization []crossref.Candidate
	Gaps            []crossref.Gap
	Indexation      []crossref.Decision
}

// Generator builds ordered insight lists with ULID identifiers.
type Generator struct {
	now     func() time.Time
	entropy io.Reader
}

// NewGenerator uses wall-clock ULIDs.
func NewGenerator() *Generator {
	return &Generator{
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorAt pins timestamp and entropy, for reproducible runs.
func NewGeneratorAt(t time.Time, entropy io.Reader) *Generator {
	return &Generator{
		now:     func() time.Time { return t },
		entropy: ulid.Monotonic(entropy, 0),
	}
}

// Generate merges all findings into one list ordered by severity, then
// impact descending, then subject. IDs are assigned after ordering so a
// monotonic entropy source yields sorted IDs.
func (g *Generator) Generate(in Input) []Insight {
	var out []Insight

	if len(in.Ranking) > 0 {
		keys := make([]string, 0, len(in.Ranking))
		impact := 0
		for _, r := range in.Ranking {
			keys = append(keys, string(r.Key))
			impact += r.Sessions
		}
		top := keys
		if len(top) > 4 {
			top = top[:4]
		}
		out = append(out, Insight{
			Severity:       SeverityHigh,
			Category:       CategoryFacetOrder,
			Subject:        strings.Join(top, " > "),
			Recommendation: fmt.Sprintf("order facet navigation as %s, matching observed usage", strings.Join(top, " > ")),
			Impact:         impact,
			Evidence:       rankingEvidence(in.Ranking),
		})
	}

	for _, c := range in.Cannibalization {
		sev, target := SeverityMedium, c.SuggestedPath
		if c.PreferredNode != "" {
			// the filter URL already exists and is being outranked
			sev, target = SeverityHigh, c.PreferredNode
		}
		out = append(out, Insight{
			Severity:       sev,
			Category:       CategoryCannibalization,
			Subject:        c.URL,
			Recommendation: fmt.Sprintf("query %q should rank on %s, not this article", c.Query, target),
			Impact:         c.Clicks,
			Evidence: []Evidence{
				{Source: "top_query", Ref: c.URL + "|" + c.Query},
				{Source: "hierarchy", Ref: target},
			},
		})
	}

	for _, gp := range in.Gaps {
		out = append(out, Insight{
			Severity:       gapSeverity(gp.Priority),
			Category:       CategoryDemandGap,
			Subject:        gp.Keyword,
			Recommendation: fmt.Sprintf("create filter %s for %d monthly demand", gp.SuggestedPath, gp.Volume),
			Impact:         gp.Volume,
			Evidence:       []Evidence{{Source: gp.Source, Ref: gp.Keyword}},
		})
	}

	for _, row := range in.KeyMatrix {
		if row.Opportunity != crossref.OpportunityVisibility {
			continue
		}
		out = append(out, Insight{
			Severity: SeverityMedium,
			Category: CategoryUXSEOGap,
			Subject:  string(row.Key),
			Recommendation: fmt.Sprintf("facet %s carries %.1f%% of navigation but %.1f%% of search clicks; improve its landing pages",
				row.Key, row.UXShare, row.SEOShare),
			Impact:   row.Sessions,
			Evidence: []Evidence{{Source: "key_matrix", Ref: string(row.Key)}},
		})
	}

	for _, d := range in.Indexation {
		if d.Verdict == crossref.VerdictIndex {
			continue
		}
		out = append(out, Insight{
			Severity:       SeverityLow,
			Category:       CategoryIndexation,
			Subject:        d.Path,
			Recommendation: fmt.Sprintf("%s: %s (canonical to %s)", d.Verdict, d.Reason, d.CanonicalTo),
			Impact:         d.Demand + d.Clicks,
			Evidence:       []Evidence{{Source: "hierarchy", Ref: d.Path}},
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Severity != out[b].Severity {
			return out[a].Severity < out[b].Severity
		}
		if out[a].Impact != out[b].Impact {
			return out[a].Impact > out[b].Impact
		}
		return out[a].Subject < out[b].Subject
	})

	ts := ulid.Timestamp(g.now())
	for i := range out {
		out[i].ID = ulid.MustNew(ts, g.entropy).String()
	}
	return out
}

func rankingEvidence(ranking []crossref.FacetRank) []Evidence {
	ev := make([]Evidence, 0, len(ranking))
	for _, r := range ranking {
		ev = append(ev, Evidence{
			Source: "filter_usage",
			Ref:    fmt.Sprintf("%s=%d", r.Key, r.Sessions),
		})
	}
	return ev
}

func gapSeverity(priority string) Severity {
	switch priority {
	case "HIGH":
		return SeverityHigh
	case "MEDIUM":
		return SeverityMedium
	}
	return SeverityLow
}
