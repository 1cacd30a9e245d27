package hierarchy

import (
	"reflect"
	"strings"
	"testing"

	"github.com/seolab/facetlens/pkg/facetlens/facets"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

func rec(path string, sessions int, scope records.TrafficScope) records.URLUsageRecord {
	return records.URLUsageRecord{
		Segments: strings.Split(path, "/"),
		Sessions: sessions,
		Scope:    scope,
	}
}

func TestBuildSynthesizesAncestors(t *testing.T) {
	recs := []records.URLUsageRecord{
		rec("televisores/55-pulgadas/oled", 900, records.ScopeAll),
	}
	tree := Build(recs, "televisores", facets.Default())

	if tree.Len() != 3 {
		t.Fatalf("nodes = %d, want 3", tree.Len())
	}
	leaf, ok := tree.Lookup([]string{"televisores", "55-pulgadas", "oled"})
	if !ok {
		t.Fatal("leaf not found")
	}
	if leaf.Synthesized || leaf.Level != 2 || leaf.UsageAll != 900 {
		t.Fatalf("leaf = %+v", leaf)
	}
	mid := leaf.Parent()
	if mid == nil || !mid.Synthesized || mid.UsageAll != 0 {
		t.Fatalf("ancestor = %+v", mid)
	}
	if mid.Parent() != tree.Root {
		t.Fatal("ancestor's parent is not the root")
	}
	wantFacets := []FacetRef{
		{Key: facets.Size, Value: "55"},
		{Key: facets.Technology, Value: "oled"},
	}
	if !reflect.DeepEqual(leaf.FacetPath, wantFacets) {
		t.Fatalf("facet path = %+v, want %+v", leaf.FacetPath, wantFacets)
	}
}

func TestBuildScopeSplitAndAggregation(t *testing.T) {
	recs := []records.URLUsageRecord{
		rec("televisores/oled", 500, records.ScopeAll),
		rec("televisores/oled", 200, records.ScopeAll),
		rec("televisores/oled", 120, records.ScopeOrganic),
	}
	tree := Build(recs, "televisores", facets.Default())
	n, ok := tree.Lookup([]string{"televisores", "oled"})
	if !ok {
		t.Fatal("node not found")
	}
	if n.UsageAll != 700 || n.UsageSEO != 120 {
		t.Fatalf("usage all/seo = %d/%d, want 700/120", n.UsageAll, n.UsageSEO)
	}
}

func TestBuildOutOfCategory(t *testing.T) {
	recs := []records.URLUsageRecord{
		rec("televisores/oled", 100, records.ScopeAll),
		rec("audio/barras-sonido", 50, records.ScopeAll),
	}
	tree := Build(recs, "televisores", facets.Default())
	if tree.OutOfCategory != 1 {
		t.Fatalf("out of category = %d, want 1", tree.OutOfCategory)
	}
	if _, ok := tree.Lookup([]string{"audio", "barras-sonido"}); ok {
		t.Fatal("foreign record entered the tree")
	}
}

func TestBuildCollapsesCategoryCaseVariants(t *testing.T) {
	recs := []records.URLUsageRecord{
		rec("Televisores/oled", 300, records.ScopeAll),
		rec("televisores/oled", 200, records.ScopeAll),
	}
	tree := Build(recs, "televisores", facets.Default())

	if tree.OutOfCategory != 0 {
		t.Fatalf("out of category = %d, want 0", tree.OutOfCategory)
	}
	if tree.Len() != 2 {
		t.Fatalf("nodes = %d, want 2", tree.Len())
	}
	n, ok := tree.Lookup([]string{"televisores", "oled"})
	if !ok || n.UsageAll != 500 {
		t.Fatalf("node = %+v, want merged usage 500", n)
	}
	// every node must stay reachable from the single root
	walked := 0
	tree.Walk(func(*Node) { walked++ })
	if walked != tree.Len() {
		t.Fatalf("walked %d of %d nodes", walked, tree.Len())
	}
	for _, node := range tree.Nodes() {
		if node != tree.Root && node.Parent() == nil {
			t.Fatalf("node %s has no parent", node.Path())
		}
	}
}

func TestBuildObservedReplacesSynthesized(t *testing.T) {
	recs := []records.URLUsageRecord{
		rec("televisores/55-pulgadas/lg", 300, records.ScopeAll),
		rec("televisores/55-pulgadas", 800, records.ScopeAll),
	}
	tree := Build(recs, "televisores", facets.Default())
	n, ok := tree.Lookup([]string{"televisores", "55-pulgadas"})
	if !ok {
		t.Fatal("node not found")
	}
	if n.Synthesized || n.UsageAll != 800 {
		t.Fatalf("node = %+v", n)
	}
	if len(tree.Notes) != 1 || !strings.Contains(tree.Notes[0], "/televisores/55-pulgadas") {
		t.Fatalf("notes = %v", tree.Notes)
	}
}

func TestParamFlagsAndStrippedPath(t *testing.T) {
	recs := []records.URLUsageRecord{
		rec("televisores/oled?order=price", 60, records.ScopeAll),
		rec("televisores/55-pulgadas?page=2", 40, records.ScopeAll),
		rec("televisores/lg?precio=500-1000", 30, records.ScopeAll),
	}
	tree := Build(recs, "televisores", facets.Default())

	sorting, _ := tree.Lookup([]string{"televisores", "oled?order=price"})
	if sorting == nil || !sorting.HasSorting || sorting.HasPagination {
		t.Fatalf("sorting node = %+v", sorting)
	}
	if got := sorting.StrippedPath(); got != "/televisores/oled" {
		t.Fatalf("stripped path = %q", got)
	}
	paged, _ := tree.Lookup([]string{"televisores", "55-pulgadas?page=2"})
	if paged == nil || !paged.HasPagination {
		t.Fatalf("paged node = %+v", paged)
	}
	priced, _ := tree.Lookup([]string{"televisores", "lg?precio=500-1000"})
	if priced == nil || !priced.HasPrice {
		t.Fatalf("priced node = %+v", priced)
	}
}

func TestLookupURL(t *testing.T) {
	tree := Build([]records.URLUsageRecord{
		rec("televisores/oled", 10, records.ScopeAll),
	}, "televisores", facets.Default())

	for _, u := range []string{
		"https://shop.example/televisores/oled",
		"/televisores/oled/",
		"televisores/oled",
	} {
		if _, ok := tree.LookupURL(u); !ok {
			t.Fatalf("LookupURL(%q) missed", u)
		}
	}
}

func TestWalkDeterministicOrder(t *testing.T) {
	recs := []records.URLUsageRecord{
		rec("televisores/oled", 1, records.ScopeAll),
		rec("televisores/55-pulgadas", 1, records.ScopeAll),
		rec("televisores/55-pulgadas/lg", 1, records.ScopeAll),
		rec("televisores/lg", 1, records.ScopeAll),
	}
	var runs [][]string
	for i := 0; i < 3; i++ {
		tree := Build(recs, "televisores", facets.Default())
		var paths []string
		tree.Walk(func(n *Node) { paths = append(paths, n.Path()) })
		runs = append(runs, paths)
	}
	want := []string{
		"/televisores",
		"/televisores/55-pulgadas",
		"/televisores/55-pulgadas/lg",
		"/televisores/lg",
		"/televisores/oled",
	}
	for _, run := range runs {
		if !reflect.DeepEqual(run, want) {
			t.Fatalf("walk order = %v, want %v", run, want)
		}
	}
}

func TestAncestorAt(t *testing.T) {
	tree := Build([]records.URLUsageRecord{
		rec("televisores/55-pulgadas/lg/smart-tv", 5, records.ScopeAll),
	}, "televisores", facets.Default())
	leaf, _ := tree.Lookup([]string{"televisores", "55-pulgadas", "lg", "smart-tv"})
	anc := leaf.AncestorAt(2)
	if anc == nil || anc.Path() != "/televisores/55-pulgadas/lg" {
		t.Fatalf("ancestor at 2 = %+v", anc)
	}
	if leaf.AncestorAt(0) != tree.Root {
		t.Fatal("ancestor at 0 is not the root")
	}
	if tree.Root.AncestorAt(2) != nil {
		t.Fatal("root has no level-2 ancestor")
	}
}
