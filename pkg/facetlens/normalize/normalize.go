// Package normalize turns rows of a detected export format into canonical
// records. Malformed rows are skipped and counted, never fatal on their
// own; a file whose skipped share exceeds the configured fraction fails
// with a QualityError instead of producing a near-empty result.
package normalize

import (
	"fmt"
	"strings"

	"github.com/seolab/facetlens/pkg/facetlens/detect"
	"github.com/seolab/facetlens/pkg/facetlens/internalerr"
	"github.com/seolab/facetlens/pkg/facetlens/records"
)

// Options tunes normalization behaviour per run.
type Options struct {
	// MaxSkippedFraction is the tolerated share of malformed rows before
	// the whole file fails with a QualityError.
	MaxSkippedFraction float64
}

// DefaultOptions mirrors the documented default of tolerating up to half
// the rows being malformed.
func DefaultOptions() Options {
	return Options{MaxSkippedFraction: 0.5}
}

// Result is one normalizer's output. Only the slice matching the source
// format is populated; counters and warnings are always filled.
type Result struct {
	FacetUsage []records.FacetUsageRecord
	URLUsage   []records.URLUsageRecord
	Queries    []records.QueryRecord
	Pages      []records.PageRecord
	Keywords   []records.KeywordRecord

	// Rows counts data rows seen (markers and sentinels excluded),
	// Skipped the malformed ones, Sentinels the placeholder rows dropped.
	Rows      int
	Skipped   int
	Sentinels int

	// ValidationTotal is the export's own scope/total row count, 0 when
	// the format carries none.
	ValidationTotal int

	Warnings []string
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// quality enforces the skipped-row gate after a normalizer has consumed
// all rows.
func (r *Result) quality(f detect.Format, opt Options) error {
	max := opt.MaxSkippedFraction
	if max <= 0 {
		max = DefaultOptions().MaxSkippedFraction
	}
	if r.Rows > 0 && float64(r.Skipped)/float64(r.Rows) > max {
		return &QualityError{Format: f, Skipped: r.Skipped, Rows: r.Rows}
	}
	return nil
}

// QualityError reports that too many rows of a file were unparseable.
type QualityError struct {
	Format  detect.Format
	Skipped int
	Rows    int
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("%s: %d of %d rows unparseable", e.Format, e.Skipped, e.Rows)
}

func (e *QualityError) Unwrap() error {
	return internalerr.ErrNormalizationQuality
}

// sentinels are placeholder values Adobe emits for unattributable traffic.
// They carry no facet information and are excluded at normalization time.
var sentinels = map[string]struct{}{
	"(low traffic)":     {},
	"unspecified":       {},
	":: unspecified ::": {},
	"(other)":           {},
	"none":              {},
}

func isSentinel(cell string) bool {
	_, ok := sentinels[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// parseCount parses a non-negative integer cell, tolerating thousand
// separators and surrounding space.
func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n := 0
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
			digits++
		case r == ',' || r == '.' || r == ' ':
			// separator
		default:
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	return n, true
}

// rsplitComma splits a row on its last comma, the way the Adobe exports
// separate the label cell from the count cell.
func rsplitComma(line string) (string, string, bool) {
	i := strings.LastIndexByte(line, ',')
	if i < 0 {
		return "", "", false
	}
	return line[:i], line[i+1:], true
}

// SplitPath strips scheme and host from a URL and returns its non-empty
// path segments, trailing slash normalized. Query strings stay attached
// to their segment so parameter-bearing paths keep a distinct identity.
func SplitPath(u string) []string {
	s := strings.TrimSpace(u)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
		if j := strings.IndexByte(s, '/'); j >= 0 {
			s = s[j:]
		} else {
			s = ""
		}
	}
	s = strings.TrimSuffix(s, "/")
	var segs []string
	for _, seg := range strings.Split(s, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}
