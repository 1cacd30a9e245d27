package crossref

import (
	"fmt"

	"github.com/seolab/facetlens/pkg/facetlens/hierarchy"
)

// Verdict is an indexation decision for one hierarchy node.
type Verdict string

const (
	VerdictIndex     Verdict = "index"
	VerdictNoIndex   Verdict = "noindex"
	VerdictCanonical Verdict = "canonicalize"
)

// Decision is the indexation audit result for one node.
type Decision struct {
	Path        string
	Level       int
	Verdict     Verdict
	CanonicalTo string // target path for noindex/canonicalize verdicts
	Reason      string
	Demand      int
	Clicks      int
}

// Decide is the pure indexation rule: level 0 and 1 always index; level 2
// indexes only with enough associated demand or clicks; level 3+
// canonicalizes to the level-2 ancestor; sort, pagination and price
// parameters canonicalize to the parameterless path regardless of level.
// Identical inputs always yield the identical verdict.
func Decide(level, demand, clicks int, hasSorting, hasPagination, hasPrice bool, th Thresholds) (Verdict, string) {
	th = th.orDefault()
	switch {
	case hasSorting:
		return VerdictCanonical, "sort parameter, canonical without it"
	case hasPagination:
		return VerdictCanonical, "pagination parameter, canonical to first page"
	case hasPrice:
		return VerdictCanonical, "price parameter, canonical without it"
	}
	switch {
	case level <= 1:
		return VerdictIndex, fmt.Sprintf("level %d always indexes", level)
	case level == 2:
		if demand >= th.N2DemandMin || clicks >= th.N2ClicksMin {
			return VerdictIndex, fmt.Sprintf("level 2 with demand %d / clicks %d over threshold", demand, clicks)
		}
		return VerdictNoIndex, fmt.Sprintf("level 2 under threshold (demand %d < %d, clicks %d < %d)",
			demand, th.N2DemandMin, clicks, th.N2ClicksMin)
	}
	return VerdictCanonical, "level 3+ canonicalizes to its level-2 ancestor"
}

// Indexation audits every hierarchy node. Demand and clicks are joined by
// node path from query and page records; absent sources degrade to zero.
func (e *Engine) Indexation(tree *hierarchy.Tree, demandByPath, clicksByPath map[string]int) []Decision {
	if tree == nil {
		return nil
	}
	var out []Decision
	for _, n := range tree.Nodes() {
		demand := demandByPath[n.Path()]
		clicks := clicksByPath[n.Path()]
		verdict, reason := Decide(n.Level, demand, clicks, n.HasSorting, n.HasPagination, n.HasPrice, e.th)

		d := Decision{
			Path:    n.Path(),
			Level:   n.Level,
			Verdict: verdict,
			Reason:  reason,
			Demand:  demand,
			Clicks:  clicks,
		}
		switch {
		case n.HasSorting || n.HasPagination || n.HasPrice:
			d.CanonicalTo = n.StrippedPath()
		case verdict == VerdictNoIndex:
			if p := n.Parent(); p != nil {
				d.CanonicalTo = p.Path()
			}
		case verdict == VerdictCanonical:
			if a := n.AncestorAt(2); a != nil {
				d.CanonicalTo = a.Path()
			}
		}
		out = append(out, d)
	}
	return out
}
