package insight

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/seolab/facetlens/pkg/facetlens/crossref"
	"github.com/seolab/facetlens/pkg/facetlens/facets"
)

func fixedGenerator() *Generator {
	return NewGeneratorAt(time.Unix(1700000000, 0).UTC(), rand.New(rand.NewSource(42)))
}

func sampleInput() Input {
	return Input{
		Ranking: []crossref.FacetRank{
			{Key: facets.Size, Sessions: 103429, Values: 2, Share: 61.5},
			{Key: facets.Brand, Sessions: 64556, Values: 5, Share: 38.5},
		},
		KeyMatrix: []crossref.KeyMatrixRow{
			{Key: facets.Brand, Sessions: 1500, UXShare: 15.8, SEOShare: 0, Gap: 15.8, Opportunity: crossref.OpportunityVisibility},
			{Key: facets.Size, Sessions: 8000, UXShare: 84.2, SEOShare: 100, Opportunity: crossref.OpportunityBalanced},
		},
		Cannibalization: []crossref.Candidate{
			{
				URL:           "/blog/mejores-televisores-55-pulgadas",
				Query:         "tv 55 pulgadas",
				Clicks:        800,
				SuggestedPath: "/televisores/55-pulgadas",
				PreferredNode: "/televisores/55-pulgadas",
			},
			{
				URL:           "/blog/televisores-transparentes",
				Query:         "tv oled barata",
				Clicks:        120,
				SuggestedPath: "/televisores/oled",
			},
		},
		Gaps: []crossref.Gap{
			{Keyword: "tv transparente", Volume: 900, Source: "keyword_research", SuggestedPath: "/televisores", Priority: "HIGH"},
			{Keyword: "soporte pared tv", Volume: 300, Source: "gsc", SuggestedPath: "/televisores", Priority: "MEDIUM"},
		},
		Indexation: []crossref.Decision{
			{Path: "/televisores/55-pulgadas/samsung", Level: 2, Verdict: crossref.VerdictNoIndex, CanonicalTo: "/televisores/55-pulgadas", Demand: 100},
			{Path: "/televisores", Level: 0, Verdict: crossref.VerdictIndex},
		},
	}
}

func TestGenerateOrdering(t *testing.T) {
	out := fixedGenerator().Generate(sampleInput())

	var got []string
	for _, ins := range out {
		got = append(got, ins.Category+":"+ins.Severity.String())
	}
	want := []string{
		"facet_order:HIGH",       // impact 167985
		"demand_gap:HIGH",        // 900
		"cannibalization:HIGH",   // 800, preferred node exists
		"ux_seo_gap:MEDIUM",      // 1500 sessions behind the visibility row
		"demand_gap:MEDIUM",      // 300
		"cannibalization:MEDIUM", // 120, no preferred node
		"indexation:LOW",         // noindex decision only
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestGenerateFacetOrderInsight(t *testing.T) {
	out := fixedGenerator().Generate(Input{Ranking: sampleInput().Ranking})
	if len(out) != 1 {
		t.Fatalf("insights = %d, want 1", len(out))
	}
	ins := out[0]
	if ins.Subject != "size > brand" {
		t.Fatalf("subject = %q", ins.Subject)
	}
	if ins.Impact != 167985 {
		t.Fatalf("impact = %d", ins.Impact)
	}
	if len(ins.Evidence) != 2 || ins.Evidence[0].Source != "filter_usage" || ins.Evidence[0].Ref != "size=103429" {
		t.Fatalf("evidence = %+v", ins.Evidence)
	}
}

func TestGenerateCannibalizationSeverity(t *testing.T) {
	out := fixedGenerator().Generate(Input{Cannibalization: sampleInput().Cannibalization})
	if len(out) != 2 {
		t.Fatalf("insights = %d, want 2", len(out))
	}
	if out[0].Severity != SeverityHigh || !strings.Contains(out[0].Recommendation, "/televisores/55-pulgadas") {
		t.Fatalf("existing-node candidate = %+v", out[0])
	}
	if out[1].Severity != SeverityMedium || !strings.Contains(out[1].Recommendation, "/televisores/oled") {
		t.Fatalf("missing-node candidate = %+v", out[1])
	}
	ev := out[0].Evidence
	if len(ev) != 2 || ev[0].Ref != "/blog/mejores-televisores-55-pulgadas|tv 55 pulgadas" {
		t.Fatalf("evidence = %+v", ev)
	}
}

func TestGenerateSkipsHealthyRows(t *testing.T) {
	out := fixedGenerator().Generate(Input{
		KeyMatrix: []crossref.KeyMatrixRow{
			{Key: facets.Size, Opportunity: crossref.OpportunityBalanced},
			{Key: facets.Brand, Opportunity: crossref.OpportunityLowImpact},
		},
		Indexation: []crossref.Decision{
			{Path: "/televisores", Verdict: crossref.VerdictIndex},
		},
	})
	if len(out) != 0 {
		t.Fatalf("insights = %+v, want none", out)
	}
}

func TestGenerateIDsSortedAndUnique(t *testing.T) {
	out := fixedGenerator().Generate(sampleInput())
	seen := make(map[string]struct{}, len(out))
	for i, ins := range out {
		if ins.ID == "" {
			t.Fatalf("insight %d has empty id", i)
		}
		if _, dup := seen[ins.ID]; dup {
			t.Fatalf("duplicate id %s", ins.ID)
		}
		seen[ins.ID] = struct{}{}
		if i > 0 && out[i-1].ID >= ins.ID {
			t.Fatalf("ids not monotonic: %s >= %s", out[i-1].ID, ins.ID)
		}
	}
}

func TestGenerateContentDeterministic(t *testing.T) {
	strip := func(in []Insight) []Insight {
		out := append([]Insight(nil), in...)
		for i := range out {
			out[i].ID = ""
		}
		return out
	}
	a := strip(fixedGenerator().Generate(sampleInput()))
	b := strip(fixedGenerator().Generate(sampleInput()))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("reruns differ:\n%+v\n%+v", a, b)
	}
}
