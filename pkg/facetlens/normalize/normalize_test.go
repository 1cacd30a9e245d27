package normalize

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/seolab/facetlens/pkg/facetlens/facets"
	"github.com/seolab/facetlens/pkg/facetlens/internalerr"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

func TestSearchFilters(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"# Adobe Analytics export",
		",,,",
		"Search Filters,245000",
		"pulgadas:55 pulgadas,83429",
		"marcas:lg,64556",
		"misterio:raro,10",
		"",
	}, "\n"))

	res, err := SearchFilters(raw, records.ScopeAll, facets.Default(), DefaultOptions())
	if err != nil {
		t.Fatalf("SearchFilters: %v", err)
	}
	if res.ValidationTotal != 245000 {
		t.Fatalf("ValidationTotal = %d, want 245000", res.ValidationTotal)
	}
	if res.Rows != 3 || res.Skipped != 0 {
		t.Fatalf("rows/skipped = %d/%d, want 3/0", res.Rows, res.Skipped)
	}
	if len(res.FacetUsage) != 3 {
		t.Fatalf("records = %d, want 3", len(res.FacetUsage))
	}
	first := res.FacetUsage[0]
	if first.Key != facets.Size || first.Value != "55" || first.Sessions != 83429 || first.Scope != records.ScopeAll {
		t.Fatalf("first record = %+v", first)
	}
	if res.FacetUsage[1].Key != facets.Brand || res.FacetUsage[1].Value != "lg" {
		t.Fatalf("second record = %+v", res.FacetUsage[1])
	}
	if res.FacetUsage[2].Key != facets.Unknown {
		t.Fatalf("unresolved label key = %s, want %s", res.FacetUsage[2].Key, facets.Unknown)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "unresolved") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestSearchFiltersExceedsTotalWarns(t *testing.T) {
	raw := []byte("Search Filters,100\npulgadas:55 pulgadas,80\nmarcas:lg,50\n")
	res, err := SearchFilters(raw, records.ScopeOrganic, facets.Default(), DefaultOptions())
	if err != nil {
		t.Fatalf("SearchFilters: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "exceed scope total") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing exceed warning, got %v", res.Warnings)
	}
}

func TestSearchFiltersQualityGate(t *testing.T) {
	raw := []byte("Search Filters,100\npulgadas:55 pulgadas,ok\nmarcas:lg,nope\nsmart tv,si\ncolor:rojo,10\n")
	res, err := SearchFilters(raw, records.ScopeAll, facets.Default(), DefaultOptions())
	if err == nil {
		t.Fatal("expected quality error")
	}
	if !errors.Is(err, internalerr.ErrNormalizationQuality) {
		t.Fatalf("error not ErrNormalizationQuality: %v", err)
	}
	var qe *QualityError
	if !errors.As(err, &qe) {
		t.Fatalf("error not *QualityError: %v", err)
	}
	if qe.Skipped != 3 || qe.Rows != 4 {
		t.Fatalf("skipped/rows = %d/%d, want 3/4", qe.Skipped, qe.Rows)
	}
	if res == nil || res.Skipped != 3 {
		t.Fatalf("partial result = %+v", res)
	}
}

func TestPageFullURLSentinelsExcluded(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"Page Full URL,50000",
		"https://shop.example/televisores/55-pulgadas/,10000",
		"(Low Traffic),4000",
		"Unspecified,300",
		"https://shop.example/televisores/oled?order=price,900",
		"",
	}, "\n"))

	res, err := PageFullURL(raw, records.ScopeOrganic, DefaultOptions())
	if err != nil {
		t.Fatalf("PageFullURL: %v", err)
	}
	if res.Sentinels != 2 {
		t.Fatalf("sentinels = %d, want 2", res.Sentinels)
	}
	if res.Rows != 2 || len(res.URLUsage) != 2 {
		t.Fatalf("rows/records = %d/%d, want 2/2", res.Rows, len(res.URLUsage))
	}
	want := []string{"televisores", "55-pulgadas"}
	if !reflect.DeepEqual(res.URLUsage[0].Segments, want) {
		t.Fatalf("segments = %v, want %v", res.URLUsage[0].Segments, want)
	}
	if res.URLUsage[1].Segments[1] != "oled?order=price" {
		t.Fatalf("query-bearing segment = %q", res.URLUsage[1].Segments[1])
	}
}

func TestTopQueryAggregatesDuplicates(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"url,url_total_clicks,top_query",
		"/televisores/55-pulgadas,1200,tv 55 pulgadas",
		"/televisores/55-pulgadas,300,tv 55 pulgadas",
		"/blog/mejor-tv,800,mejor tv",
		",100,huerfana",
		"",
	}, "\n"))

	res, err := TopQuery(raw, DefaultOptions())
	if err != nil {
		t.Fatalf("TopQuery: %v", err)
	}
	if res.Rows != 4 || res.Skipped != 1 {
		t.Fatalf("rows/skipped = %d/%d, want 4/1", res.Rows, res.Skipped)
	}
	if len(res.Queries) != 2 {
		t.Fatalf("queries = %d, want 2", len(res.Queries))
	}
	// sorted by url then query
	if res.Queries[0].URL != "/blog/mejor-tv" {
		t.Fatalf("first query url = %q", res.Queries[0].URL)
	}
	q := res.Queries[1]
	if q.Clicks != 1500 {
		t.Fatalf("aggregated clicks = %d, want 1500", q.Clicks)
	}
	if q.Source != records.SourceTopQuery {
		t.Fatalf("source = %s", q.Source)
	}
}

func TestTopQueryPrefersQueryClicksColumn(t *testing.T) {
	raw := []byte("url,url_total_clicks,top_query,top_query_clicks\n/televisores,5000,televisores lg,700\n")
	res, err := TopQuery(raw, DefaultOptions())
	if err != nil {
		t.Fatalf("TopQuery: %v", err)
	}
	if len(res.Queries) != 1 || res.Queries[0].Clicks != 700 {
		t.Fatalf("queries = %+v, want single record with 700 clicks", res.Queries)
	}
}

func TestGSCQueries(t *testing.T) {
	raw := []byte("Consultas principales,Clics,Impresiones,CTR,Posición\ntv 55 pulgadas,520,10000,5.2%,3.1\n,10,1,1%,1\n")
	res, err := GSCQueries(raw, DefaultOptions())
	if err != nil {
		t.Fatalf("GSCQueries: %v", err)
	}
	if len(res.Queries) != 1 || res.Skipped != 1 {
		t.Fatalf("queries/skipped = %d/%d, want 1/1", len(res.Queries), res.Skipped)
	}
	q := res.Queries[0]
	if q.URL != "" || q.TopQuery != "tv 55 pulgadas" || q.Clicks != 520 || q.Source != records.SourceGSC {
		t.Fatalf("query record = %+v", q)
	}
}

func TestGSCPages(t *testing.T) {
	raw := []byte("Páginas principales,Clics,Impresiones\nhttps://shop.example/televisores,950,21000\n")
	res, err := GSCPages(raw, DefaultOptions())
	if err != nil {
		t.Fatalf("GSCPages: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(res.Pages))
	}
	p := res.Pages[0]
	if p.URL != "https://shop.example/televisores" || p.Clicks != 950 || p.Impressions != 21000 {
		t.Fatalf("page record = %+v", p)
	}
}

func TestKeywordResearchUTF16(t *testing.T) {
	text := strings.Join([]string{
		"Keyword\tAvg. monthly searches",
		"tv oled 55\t1K",
		"tv 8k barata\t1,5K",
		"televisores\t2M",
		"\t90",
		"",
	}, "\n")
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	raw, err := enc.Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	res, err := KeywordResearch(raw, DefaultOptions())
	if err != nil {
		t.Fatalf("KeywordResearch: %v", err)
	}
	if res.Rows != 4 || res.Skipped != 1 {
		t.Fatalf("rows/skipped = %d/%d, want 4/1", res.Rows, res.Skipped)
	}
	want := []records.KeywordRecord{
		{Keyword: "tv oled 55", Volume: 1000},
		{Keyword: "tv 8k barata", Volume: 1500},
		{Keyword: "televisores", Volume: 2000000},
	}
	if !reflect.DeepEqual(res.Keywords, want) {
		t.Fatalf("keywords = %+v, want %+v", res.Keywords, want)
	}
}

func TestKeywordResearchCommaFallback(t *testing.T) {
	raw := []byte("keyword,volume\ntv lg,880\n")
	res, err := KeywordResearch(raw, DefaultOptions())
	if err != nil {
		t.Fatalf("KeywordResearch: %v", err)
	}
	if len(res.Keywords) != 1 || res.Keywords[0].Volume != 880 {
		t.Fatalf("keywords = %+v", res.Keywords)
	}
}

func TestParseVolume(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1K", 1000},
		{"1,5K", 1500},
		{"2M", 2000000},
		{"12.500", 12500},
		{" 880 ", 880},
		{"", 0},
		{"n/a", 0},
	}
	for _, c := range cases {
		if got := ParseVolume(c.in); got != c.want {
			t.Fatalf("ParseVolume(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSplitPath(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"https://shop.example/televisores/55-pulgadas/", []string{"televisores", "55-pulgadas"}},
		{"/televisores/oled?page=2", []string{"televisores", "oled?page=2"}},
		{"https://shop.example/", nil},
		{"televisores", []string{"televisores"}},
	}
	for _, c := range cases {
		if got := SplitPath(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("SplitPath(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
