package crossref

import (
	"regexp"
	"strings"

	"github.com/seolab/facetlens/pkg/facetlens/facets"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

var productSegment = regexp.MustCompile(`/[a-z0-9-]+-\d{5,}`)

// contentPrefixes mark editorial sections whose pages are articles even
// when the URL names the category only by a colloquial short form
// ("tv" instead of "televisores").
var contentPrefixes = []string{"/blog/", "/guia/", "/guias/", "/noticias/", "/consejos/"}

var (
	// explicit size expression ("55 pulgadas", `55"`)
	querySizeUnit = regexp.MustCompile(`(\d{2,3})\s*(?:pulgadas|")`)
	// bare two/three digit number standing alone ("tv 55 samsung")
	querySizeBare = regexp.MustCompile(`(?:^|\s)(\d{2,3})(?:\s|$)`)
)

func extractSize(q string) (string, bool) {
	if m := querySizeUnit.FindStringSubmatch(q); m != nil {
		return m[1], true
	}
	if m := querySizeBare.FindStringSubmatch(q); m != nil {
		return m[1], true
	}
	return "", false
}

// ClassifyURL places a URL within the category's site structure.
// Parameter-bearing filter URLs classify as FilterNoIndex regardless of
// depth; editorial sections classify as articles whatever the page calls
// the category; product detail pages are recognized by their trailing
// numeric id.
func (e *Engine) ClassifyURL(url string) records.URLKind {
	lower := strings.ToLower(strings.TrimSpace(url))
	if lower == "" {
		return records.KindOther
	}
	kw := strings.ToLower(e.category)

	if hasParam(lower, "order=", "orden=") || hasParam(lower, "page=", "pagina=") || hasParam(lower, "precio=", "price=") {
		return records.KindFilterNoIndex
	}
	for _, p := range contentPrefixes {
		if strings.Contains(lower, p) {
			return records.KindArticle
		}
	}
	if strings.HasSuffix(lower, "/"+kw) || strings.HasSuffix(lower, "/"+kw+"/") {
		return records.KindCategory
	}
	if strings.Contains(lower, "/"+kw+"/") {
		if productSegment.MatchString(lower) {
			return records.KindProduct
		}
		return records.KindFilter
	}
	if strings.Contains(lower, kw) || (len(kw) > 3 && strings.Contains(lower, kw[:len(kw)-1])) {
		return records.KindArticle
	}
	return records.KindOther
}

func hasParam(url string, params ...string) bool {
	for _, p := range params {
		if strings.Contains(url, "?"+p) || strings.Contains(url, "&"+p) {
			return true
		}
	}
	return false
}

// ClassifyIntent classifies a search query. Navigational markers win over
// informational ones; everything else is transactional.
func (e *Engine) ClassifyIntent(query string) records.Intent {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, m := range e.intents.Navigational {
		if strings.Contains(q, m) {
			return records.IntentNavigational
		}
	}
	for _, m := range e.intents.Informational {
		if strings.Contains(q, m) {
			return records.IntentInformational
		}
	}
	return records.IntentTransactional
}

// SuggestFilterPath builds the filter URL a transactional query should
// resolve to, stacking segments in the dictionary's navigation order:
// size, then technology, then brand, then feature, then use case.
func (e *Engine) SuggestFilterPath(query string) string {
	q := strings.ToLower(query)
	parts := []string{"", strings.ToLower(e.category)}

	if size, ok := extractSize(q); ok {
		parts = append(parts, size+"-pulgadas")
	}
	if seg, ok := matchValueSegment(q, e.dict.Values(facets.Technology), e.dict.Values(facets.Connectivity)); ok {
		parts = append(parts, seg)
	}
	if seg, ok := matchValueSegment(q, e.dict.Values(facets.Brand)); ok {
		parts = append(parts, seg)
	}
	if strings.Contains(q, "120hz") || strings.Contains(q, "120 hz") {
		parts = append(parts, "120-hz")
	}
	for _, g := range []string{"gaming", "ps5", "xbox", "jugar"} {
		if strings.Contains(q, g) {
			parts = append(parts, "gaming")
			break
		}
	}
	return strings.Join(parts, "/")
}

// matchValueSegment finds the first dictionary value (in the given
// groups' sorted order) contained in the query and returns it as a URL
// segment. Spaces become dashes; dashed values also match their spaced
// form ("mini-led" matches "mini led").
func matchValueSegment(q string, groups ...[]string) (string, bool) {
	for _, values := range groups {
		for _, v := range values {
			spaced := strings.ReplaceAll(v, "-", " ")
			if facets.ContainsValue(q, v) || facets.ContainsValue(q, spaced) {
				return strings.ReplaceAll(v, " ", "-"), true
			}
		}
	}
	return "", false
}
