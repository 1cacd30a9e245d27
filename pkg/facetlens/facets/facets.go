package facets

import (
	"regexp"
	"sort"
	"strings"
)

// Key is the locale-independent identifier of a facet dimension.
type Key string

// Canonical facet keys. Catalog-specific extensions are added through
// dictionary entries; these cover the common electronics navigation set.
const (
	Size         Key = "size"
	Brand        Key = "brand"
	Technology   Key = "technology"
	Connectivity Key = "connectivity"
	Resolution   Key = "resolution"
	RefreshRate  Key = "refresh_rate"
	Feature      Key = "feature"
	Condition    Key = "condition"
	UseCase      Key = "use_case"
	Offer        Key = "offer"
	Price        Key = "price"
	Sorting      Key = "sorting"

	// Unknown collects labels the dictionary cannot resolve. Records under
	// it are kept, not dropped, so session totals stay intact.
	Unknown Key = "unknown"
	// Total marks the scope/total row of an export, not a navigable facet.
	Total Key = "total"
)

// Navigable reports whether the key represents a facet users navigate by.
// Sorting, price and the reserved keys are excluded from ranking output.
func (k Key) Navigable() bool {
	switch k {
	case Sorting, Price, Unknown, Total:
		return false
	}
	return true
}

// Entry declares one facet dimension for dictionary construction.
type Entry struct {
	Key       Key
	Labels    []string // locale label synonyms, matched case-insensitively
	Values    []string // known facet values (value space)
	URLTokens []string // path segment literals that select this facet
}

// Dictionary resolves locale-specific facet labels, facet values and URL
// path segments to canonical keys. It is immutable after construction and
// safe for concurrent reads.
type Dictionary struct {
	labels    map[string]Key
	values    map[string]Key // lowercased value -> key
	urlTokens map[string]urlToken
	priority  map[Key]int
	order     []Key
}

type urlToken struct {
	key   Key
	value string
}

var sizeSegment = regexp.MustCompile(`^(\d{2,3})-pulgadas$`)

var leadingDigits = regexp.MustCompile(`\d+`)

// New builds a dictionary from entries. The priority slice declares the
// tie-break and URL segment order; keys absent from it sort last.
func New(entries []Entry, priority []Key) *Dictionary {
	d := &Dictionary{
		labels:    make(map[string]Key),
		values:    make(map[string]Key),
		urlTokens: make(map[string]urlToken),
		priority:  make(map[Key]int),
		order:     append([]Key(nil), priority...),
	}
	for i, k := range priority {
		d.priority[k] = i
	}
	for _, e := range entries {
		for _, label := range e.Labels {
			d.labels[normalize(label)] = e.Key
		}
		for _, v := range e.Values {
			d.values[normalize(v)] = e.Key
		}
		for _, tok := range e.URLTokens {
			d.urlTokens[normalize(tok)] = urlToken{key: e.Key, value: normalize(tok)}
		}
	}
	return d
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve maps a source facet label to its canonical key. Unresolved
// labels map to Unknown; the export's own total marker maps to Total.
func (d *Dictionary) Resolve(label string) Key {
	n := normalize(label)
	if n == "search filters" || n == "page full url" {
		return Total
	}
	if k, ok := d.labels[n]; ok {
		return k
	}
	return Unknown
}

// NormalizeValue canonicalizes a facet value for the given key. Sizes are
// reduced to their numeric part ("55 pulgadas" -> "55"); other values are
// lowercased and trimmed.
func (d *Dictionary) NormalizeValue(key Key, value string) string {
	v := normalize(value)
	if key == Size {
		if m := leadingDigits.FindString(v); m != "" {
			return m
		}
	}
	return v
}

// MatchSegment resolves a URL path segment to a facet reference.
// "55-pulgadas" matches Size with value "55"; brand/technology and other
// declared tokens match by literal segment.
func (d *Dictionary) MatchSegment(segment string) (Key, string, bool) {
	seg := normalize(segment)
	if i := strings.IndexByte(seg, '?'); i >= 0 {
		seg = seg[:i]
	}
	if m := sizeSegment.FindStringSubmatch(seg); m != nil {
		return Size, m[1], true
	}
	if t, ok := d.urlTokens[seg]; ok {
		return t.key, t.value, true
	}
	return Unknown, seg, false
}

// MatchText reports whether free text contains a known facet value or a
// size expression, returning the first match in priority order.
func (d *Dictionary) MatchText(text string) (Key, string, bool) {
	t := normalize(text)
	if m := sizeExpr.FindStringSubmatch(t); m != nil {
		return Size, m[1], true
	}
	type hit struct {
		key   Key
		value string
	}
	var best *hit
	for v, k := range d.values {
		if !containsToken(t, v) {
			continue
		}
		if best == nil || d.Priority(k) < d.Priority(best.key) {
			best = &hit{key: k, value: v}
		}
	}
	if best != nil {
		return best.key, best.value, true
	}
	return Unknown, "", false
}

var sizeExpr = regexp.MustCompile(`\b(\d{2,3})\s*(pulgadas|")`)

// ContainsValue reports whether text contains value as a whole word,
// case-insensitively.
func ContainsValue(text, value string) bool {
	return containsToken(normalize(text), normalize(value))
}

// containsToken matches v as a whole word inside t so "lg" does not match
// inside "lgtm".
func containsToken(t, v string) bool {
	idx := 0
	for {
		i := strings.Index(t[idx:], v)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || boundary(t[i-1])
		after := i+len(v) == len(t) || boundary(t[i+len(v)])
		if before && after {
			return true
		}
		idx = i + 1
	}
}

func boundary(b byte) bool {
	return b == ' ' || b == '-' || b == '/' || b == ',' || b == '.'
}

// Priority returns the declared rank of a key; undeclared keys sort last.
func (d *Dictionary) Priority(k Key) int {
	if p, ok := d.priority[k]; ok {
		return p
	}
	return len(d.order) + 1
}

// Order returns the declared priority order.
func (d *Dictionary) Order() []Key {
	return append([]Key(nil), d.order...)
}

// Values returns the sorted value space of a key.
func (d *Dictionary) Values(k Key) []string {
	var out []string
	for v, key := range d.values {
		if key == k {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
