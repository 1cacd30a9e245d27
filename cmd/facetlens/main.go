package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/seolab/facetlens/internal/llm"
	"github.com/seolab/facetlens/pkg/facetlens"
	"github.com/seolab/facetlens/pkg/facetlens/config"
)

func main() {
	var (
		topQuery   = flag.String("top-query", "", "Top Query CSV (required)")
		filtersAll = flag.String("filters-all", "", "Search Filters export, all traffic")
		filtersSEO = flag.String("filters-seo", "", "Search Filters export, organic traffic")
		urlsAll    = flag.String("urls-all", "", "Page Full URL export, all traffic")
		urlsSEO    = flag.String("urls-seo", "", "Page Full URL export, organic traffic")
		gscQueries = flag.String("gsc-queries", "", "GSC Consultas CSV")
		gscPages   = flag.String("gsc-pages", "", "GSC Páginas CSV")
		keywords   = flag.String("keywords", "", "Keyword Planner export (UTF-16 TSV)")

		category   = flag.String("category", "televisores", "Category root segment")
		dictionary = flag.String("dictionary", "", "Facet dictionary YAML (default: built-in)")
		thresholds = flag.String("thresholds", "", "Thresholds YAML (default: built-in)")
		intents    = flag.String("intents", "", "Intent markers YAML (default: built-in)")

		llmBase    = flag.String("llm-base", "", "Optional: OpenAI-compatible critique base URL")
		llmModel   = flag.String("llm-model", "", "Optional: critique model name")
		llmAPIKey  = flag.String("llm-api-key", "", "Optional: API key for critique endpoint")
		llmTimeout = flag.Duration("llm-timeout", 30*time.Second, "Critique call timeout")
	)
	flag.Parse()

	if *topQuery == "" {
		log.Fatal("--top-query required")
	}

	loader := config.Loader{
		DictionaryPath: *dictionary,
		ThresholdsPath: *thresholds,
		IntentsPath:    *intents,
	}
	comp, err := loader.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	src := facetlens.Sources{
		TopQuery:         mustRead(*topQuery),
		SearchFiltersAll: maybeRead(*filtersAll),
		SearchFiltersSEO: maybeRead(*filtersSEO),
		PageURLsAll:      maybeRead(*urlsAll),
		PageURLsSEO:      maybeRead(*urlsSEO),
		GSCQueries:       maybeRead(*gscQueries),
		GSCPages:         maybeRead(*gscPages),
		KeywordResearch:  maybeRead(*keywords),
	}

	engine := facetlens.New(facetlens.Options{
		Category:   *category,
		Dictionary: comp.Dictionary,
		Thresholds: comp.Thresholds,
		Intents:    comp.Intents,
	})

	report, err := engine.Run(context.Background(), src)
	if err != nil {
		log.Fatalf("analysis: %v", err)
	}
	for _, f := range report.Diagnostics.Failed {
		log.Printf("source %s skipped: %s", f.Source, f.Err)
	}

	if *llmBase != "" && *llmModel != "" {
		critic := &llm.Client{BaseURL: *llmBase, APIKey: *llmAPIKey, Model: *llmModel}
		ctx, cancel := context.WithTimeout(context.Background(), *llmTimeout)
		if err := engine.Critique(ctx, report, critic); err != nil {
			// core output stands on its own; a failed critique is only noted
			log.Printf("critique skipped: %v", err)
		}
		cancel()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("encode report: %v", err)
	}
}

func mustRead(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return data
}

func maybeRead(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: read %s: %v\n", path, err)
		return nil
	}
	return data
}
