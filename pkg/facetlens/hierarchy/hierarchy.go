// Package hierarchy derives the faceted-URL tree from canonical URL usage
// records. The tree is built once per analysis run and read-only
// afterwards: node identity is the exact ordered segment sequence, every
// non-root node has exactly one parent, and ancestors unobserved in the
// data are synthesized with zero usage so aggregation stays connected.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/seolab/facetlens/pkg/facetlens/facets"
	"github.com/seolab/facetlens/pkg/facetlens/normalize"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

// FacetRef is one resolved facet segment of a node's path.
type FacetRef struct {
	Key   facets.Key
	Value string
}

// Node is one distinct path-segment sequence. Level counts facet segments
// past the category root; usage is the sum of records observed at exactly
// this path, per traffic scope.
type Node struct {
	Segments  []string
	Level     int
	FacetPath []FacetRef
	UsageAll  int
	UsageSEO  int

	// Parameter flags derived from the path's query part.
	HasSorting    bool
	HasPagination bool
	HasPrice      bool

	// Synthesized marks ancestors that were never directly observed.
	Synthesized bool

	Children []*Node
	parent   *Node
}

// Path renders the node as a rooted URL path.
func (n *Node) Path() string {
	return "/" + strings.Join(n.Segments, "/")
}

// Parent returns the node one segment shorter, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// AncestorAt walks up to the ancestor at the given level. Returns nil if
// the node is not below that level.
func (n *Node) AncestorAt(level int) *Node {
	cur := n
	for cur != nil && cur.Level > level {
		cur = cur.parent
	}
	if cur != nil && cur.Level == level {
		return cur
	}
	return nil
}

// StrippedPath is the node's path with query parameters removed, the
// canonical target for sort/price/pagination variants.
func (n *Node) StrippedPath() string {
	segs := make([]string, len(n.Segments))
	for i, s := range n.Segments {
		if j := strings.IndexByte(s, '?'); j >= 0 {
			s = s[:j]
		}
		segs[i] = s
	}
	var out []string
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return "/" + strings.Join(out, "/")
}

// Tree is the built hierarchy. Notes records inconsistencies resolved
// during construction; OutOfCategory counts records outside the category
// root that were left out.
type Tree struct {
	Root          *Node
	Category      string
	Notes         []string
	OutOfCategory int

	nodes map[string]*Node
}

// Build constructs the tree for one category from all URL usage records,
// both traffic scopes. The dictionary resolves each facet segment.
func Build(recs []records.URLUsageRecord, category string, dict *facets.Dictionary) *Tree {
	t := &Tree{
		Category: category,
		nodes:    make(map[string]*Node),
	}
	t.Root = t.ensure([]string{category}, dict)
	t.Root.Synthesized = true

	for _, rec := range recs {
		if len(rec.Segments) == 0 {
			continue
		}
		if !strings.EqualFold(rec.Segments[0], category) {
			t.OutOfCategory++
			continue
		}
		segs := rec.Segments
		if segs[0] != category {
			// case variants collapse onto the canonical category segment,
			// keeping the tree single-rooted
			segs = append([]string(nil), segs...)
			segs[0] = category
		}
		key := strings.Join(segs, "/")
		prior, existed := t.nodes[key]
		n := t.ensure(segs, dict)
		if existed && prior.Synthesized && len(segs) > 1 {
			// an ancestor synthesized earlier now has a direct record;
			// the observed record wins
			t.Notes = append(t.Notes, "observed record replaces synthesized node "+n.Path())
		}
		n.Synthesized = false
		switch rec.Scope {
		case records.ScopeOrganic:
			n.UsageSEO += rec.Sessions
		default:
			n.UsageAll += rec.Sessions
		}
	}

	t.link()
	return t
}

// ensure returns the node for the exact segment sequence, creating it and
// any missing ancestors as synthesized zero-usage nodes.
func (t *Tree) ensure(segments []string, dict *facets.Dictionary) *Node {
	key := strings.Join(segments, "/")
	if n, ok := t.nodes[key]; ok {
		return n
	}
	n := &Node{
		Segments:    append([]string(nil), segments...),
		Level:       len(segments) - 1,
		Synthesized: true,
	}
	for _, seg := range segments[1:] {
		k, v, _ := dict.MatchSegment(seg)
		n.FacetPath = append(n.FacetPath, FacetRef{Key: k, Value: v})
	}
	lower := strings.ToLower(key)
	n.HasSorting = strings.Contains(lower, "order=") || strings.Contains(lower, "orden=")
	n.HasPagination = strings.Contains(lower, "page=") || strings.Contains(lower, "pagina=")
	n.HasPrice = strings.Contains(lower, "precio=") || strings.Contains(lower, "price=")
	t.nodes[key] = n

	if len(segments) > 1 {
		parent := t.ensure(segments[:len(segments)-1], dict)
		n.parent = parent
	}
	return n
}

// link populates child lists in deterministic order.
func (t *Tree) link() {
	for _, n := range t.nodes {
		n.Children = n.Children[:0]
	}
	keys := make([]string, 0, len(t.nodes))
	for k := range t.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n := t.nodes[k]
		if n.parent != nil {
			n.parent.Children = append(n.parent.Children, n)
		}
	}
}

// Lookup finds the node with exactly these segments.
func (t *Tree) Lookup(segments []string) (*Node, bool) {
	n, ok := t.nodes[strings.Join(segments, "/")]
	return n, ok
}

// LookupURL finds the node for a raw URL, tolerating scheme, host and
// trailing slash.
func (t *Tree) LookupURL(url string) (*Node, bool) {
	return t.Lookup(normalize.SplitPath(url))
}

// Len reports the number of nodes, synthesized included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Walk visits every node in deterministic pre-order.
func (t *Tree) Walk(fn func(*Node)) {
	var visit func(*Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	if t.Root != nil {
		visit(t.Root)
	}
}

// Nodes returns all nodes sorted by path.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i].Segments, "/") < strings.Join(out[j].Segments, "/")
	})
	return out
}
