package config

import (
	"fmt"

	"github.com/seolab/facetlens/pkg/facetlens/crossref"
	"github.com/seolab/facetlens/pkg/facetlens/facets"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	DictionaryPath string
	ThresholdsPath string
	IntentsPath    string
}

// Components holds all loaded configuration components
type Components struct {
	Dictionary *facets.Dictionary
	Thresholds crossref.Thresholds
	Intents    crossref.Intents
}

// Load reads all configuration files and returns initialized components.
// Empty paths fall back to the built-in defaults.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.DictionaryPath != "" {
		dict, err := LoadDictionary(l.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		comp.Dictionary = dict
	} else {
		comp.Dictionary = facets.Default()
	}

	if l.ThresholdsPath != "" {
		th, err := LoadThresholds(l.ThresholdsPath)
		if err != nil {
			return nil, fmt.Errorf("load thresholds: %w", err)
		}
		comp.Thresholds = th
	} else {
		comp.Thresholds = crossref.DefaultThresholds()
	}

	if l.IntentsPath != "" {
		intents, err := LoadIntents(l.IntentsPath)
		if err != nil {
			return nil, fmt.Errorf("load intents: %w", err)
		}
		comp.Intents = intents
	} else {
		comp.Intents = crossref.DefaultIntents()
	}

	return comp, nil
}
