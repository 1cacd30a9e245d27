package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/seolab/facetlens/pkg/facetlens/crossref"
	"github.com/seolab/facetlens/pkg/facetlens/facets"
	"github.com/seolab/facetlens/pkg/facetlens/internalerr"
)

// DictionaryFile is the YAML shape of a facet dictionary.
type DictionaryFile struct {
	Priority []string              `yaml:"priority"`
	Facets   map[string]FacetEntry `yaml:"facets"`
}

// FacetEntry declares one facet dimension.
type FacetEntry struct {
	Labels    []string `yaml:"labels"`
	Values    []string `yaml:"values"`
	URLTokens []string `yaml:"url_tokens"`
}

// LoadDictionary loads a facet dictionary from a YAML file.
func LoadDictionary(path string) (*facets.Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file DictionaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: dictionary %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if len(file.Facets) == 0 {
		return nil, fmt.Errorf("%w: dictionary %s declares no facets", internalerr.ErrInvalidConfig, path)
	}

	priority := make([]facets.Key, 0, len(file.Priority))
	for _, k := range file.Priority {
		priority = append(priority, facets.Key(k))
	}

	keys := make([]string, 0, len(file.Facets))
	for k := range file.Facets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]facets.Entry, 0, len(keys))
	for _, k := range keys {
		e := file.Facets[k]
		entries = append(entries, facets.Entry{
			Key:       facets.Key(k),
			Labels:    e.Labels,
			Values:    e.Values,
			URLTokens: e.URLTokens,
		})
	}
	return facets.New(entries, priority), nil
}

// ThresholdsFile is the YAML shape of the engine thresholds. Omitted
// fields keep their documented defaults.
type ThresholdsFile struct {
	N2DemandMin              int     `yaml:"n2_demand_min"`
	N2ClicksMin              int     `yaml:"n2_clicks_min"`
	UnderIndexedShare        float64 `yaml:"under_indexed_share"`
	UnderIndexedMinUsage     int     `yaml:"under_indexed_min_usage"`
	GapMinVolume             int     `yaml:"gap_min_volume"`
	GapHighVolume            int     `yaml:"gap_high_volume"`
	GapMediumVolume          int     `yaml:"gap_medium_volume"`
	CannibalizationMinClicks int     `yaml:"cannibalization_min_clicks"`
	MatrixHighShare          float64 `yaml:"matrix_high_share"`
	MatrixLowShare           float64 `yaml:"matrix_low_share"`
}

// LoadThresholds loads engine thresholds from a YAML file.
func LoadThresholds(path string) (crossref.Thresholds, error) {
	var th crossref.Thresholds
	data, err := os.ReadFile(path)
	if err != nil {
		return th, err
	}
	var file ThresholdsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return th, fmt.Errorf("%w: thresholds %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return crossref.Thresholds{
		N2DemandMin:              file.N2DemandMin,
		N2ClicksMin:              file.N2ClicksMin,
		UnderIndexedShare:        file.UnderIndexedShare,
		UnderIndexedMinUsage:     file.UnderIndexedMinUsage,
		GapMinVolume:             file.GapMinVolume,
		GapHighVolume:            file.GapHighVolume,
		GapMediumVolume:          file.GapMediumVolume,
		CannibalizationMinClicks: file.CannibalizationMinClicks,
		MatrixHighShare:          file.MatrixHighShare,
		MatrixLowShare:           file.MatrixLowShare,
	}, nil
}

// IntentsFile is the YAML shape of the query-intent marker lists.
type IntentsFile struct {
	Navigational  []string `yaml:"navigational"`
	Informational []string `yaml:"informational"`
}

// LoadIntents loads intent markers from a YAML file.
func LoadIntents(path string) (crossref.Intents, error) {
	var in crossref.Intents
	data, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	var file IntentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return in, fmt.Errorf("%w: intents %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return crossref.Intents{
		Navigational:  file.Navigational,
		Informational: file.Informational,
	}, nil
}
