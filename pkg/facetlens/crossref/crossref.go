// Package crossref joins usage records, hierarchy nodes and demand
// records into rankings, matrices, cannibalization candidates, demand
// gaps and indexation verdicts. Every operation is pure: it reads its
// inputs and returns a result, so identical inputs always produce
// identical output.
package crossref

import (
	"github.com/seolab/facetlens/pkg/facetlens/facets"
)

// Thresholds control engine sensitivity. All values are externally
// configurable so the engine can be tuned per catalog without code
// changes; documented defaults come from DefaultThresholds.
type Thresholds struct {
	// N2DemandMin is the associated query demand a level-2 node needs to
	// earn indexation.
	N2DemandMin int
	// N2ClicksMin is the alternative click threshold for level-2 nodes.
	N2ClicksMin int

	// UnderIndexedShare flags nodes whose organic share of usage falls
	// below this fraction despite high overall usage.
	UnderIndexedShare float64
	// UnderIndexedMinUsage is the overall usage a node needs before a low
	// organic share is worth flagging.
	UnderIndexedMinUsage int

	// Demand gap volume floors.
	GapMinVolume    int
	GapHighVolume   int
	GapMediumVolume int

	// CannibalizationMinClicks filters negligible candidates.
	CannibalizationMinClicks int

	// Share cutoffs for the per-key UX/SEO matrix, in percent.
	MatrixHighShare float64
	MatrixLowShare  float64
}

// DefaultThresholds returns the documented defaults. They are starting
// points, not derived optima; catalogs tune them through configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		N2DemandMin:              200,
		N2ClicksMin:              500,
		UnderIndexedShare:        0.10,
		UnderIndexedMinUsage:     1000,
		GapMinVolume:             50,
		GapHighVolume:            500,
		GapMediumVolume:          200,
		CannibalizationMinClicks: 10,
		MatrixHighShare:          10,
		MatrixLowShare:           5,
	}
}

func (t Thresholds) orDefault() Thresholds {
	d := DefaultThresholds()
	if t.N2DemandMin == 0 {
		t.N2DemandMin = d.N2DemandMin
	}
	if t.N2ClicksMin == 0 {
		t.N2ClicksMin = d.N2ClicksMin
	}
	if t.UnderIndexedShare == 0 {
		t.UnderIndexedShare = d.UnderIndexedShare
	}
	if t.UnderIndexedMinUsage == 0 {
		t.UnderIndexedMinUsage = d.UnderIndexedMinUsage
	}
	if t.GapMinVolume == 0 {
		t.GapMinVolume = d.GapMinVolume
	}
	if t.GapHighVolume == 0 {
		t.GapHighVolume = d.GapHighVolume
	}
	if t.GapMediumVolume == 0 {
		t.GapMediumVolume = d.GapMediumVolume
	}
	if t.CannibalizationMinClicks == 0 {
		t.CannibalizationMinClicks = d.CannibalizationMinClicks
	}
	if t.MatrixHighShare == 0 {
		t.MatrixHighShare = d.MatrixHighShare
	}
	if t.MatrixLowShare == 0 {
		t.MatrixLowShare = d.MatrixLowShare
	}
	return t
}

// Intents holds the query-intent marker lists. Markers are matched as
// substrings of the lowercased query, navigational before informational.
type Intents struct {
	Navigational  []string
	Informational []string
}

// DefaultIntents covers the Spanish-market retail and informational
// markers of the supported exports.
func DefaultIntents() Intents {
	return Intents{
		Navigational: []string{
			"pccomponentes", "pcc", "mediamarkt", "amazon", "el corte ingles",
		},
		Informational: []string{
			"mejor", "mejores", "top", "ranking", "cual", "cuál",
			"que es", "qué es", "diferencia", "vs", "versus", "comparativa",
			"guia", "guía", "como", "cómo", "elegir", "recomend", "opinion",
			"review", "análisis", "vale la pena", "calidad precio",
			"medidas", "dimensiones", "pulgadas a cm", "2024", "2025", "2026",
		},
	}
}

func (i Intents) orDefault() Intents {
	if len(i.Navigational) == 0 && len(i.Informational) == 0 {
		return DefaultIntents()
	}
	return i
}

// Engine runs the cross-reference operations for one category.
type Engine struct {
	dict     *facets.Dictionary
	category string
	th       Thresholds
	intents  Intents
}

// NewEngine creates an engine. Zero-value thresholds and intents fall
// back to the documented defaults.
func NewEngine(dict *facets.Dictionary, category string, th Thresholds, intents Intents) *Engine {
	if dict == nil {
		dict = facets.Default()
	}
	return &Engine{
		dict:     dict,
		category: category,
		th:       th.orDefault(),
		intents:  intents.orDefault(),
	}
}

// Thresholds returns the engine's effective thresholds.
func (e *Engine) Thresholds() Thresholds {
	return e.th
}
