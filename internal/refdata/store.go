// Package refdata holds the read-only reference tables used by the scorers.
//
// A Store is built once at startup and never mutated afterwards, so any number
// of validations may read it concurrently without locking.
package refdata

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/genuinity/internal/model"
)

// Tables is the raw content of the reference data, in source order
type Tables struct {
	PressReleases []model.PressRelease
	Advisors      []model.AdvisorRecord
	Features      []model.FeatureRow
	Categories    map[string]string // company -> company category
}

// Stats reports table sizes
type Stats struct {
	PressReleases int `json:"press_releases" yaml:"press_releases"`
	Companies     int `json:"companies" yaml:"companies"`
	Advisors      int `json:"advisors" yaml:"advisors"`
	FeatureRows   int `json:"feature_rows" yaml:"feature_rows"`
	Categories    int `json:"categories" yaml:"categories"`
}

type advisorKey struct {
	company string
	advisor string
}

// Store indexes the reference tables for O(1) lookups
type Store struct {
	releases   map[string][]model.PressRelease // newest first, ties keep source order
	advisors   map[advisorKey]model.AdvisorRecord
	features   map[string][]model.FeatureRow // oldest first when dated, so the last row is the most recent
	categories map[string]string
	stats      Stats
}

// New builds the lookup indices from raw tables
func New(t Tables) *Store {
	s := &Store{
		releases:   make(map[string][]model.PressRelease),
		advisors:   make(map[advisorKey]model.AdvisorRecord, len(t.Advisors)),
		features:   make(map[string][]model.FeatureRow),
		categories: make(map[string]string, len(t.Categories)),
	}

	for _, pr := range t.PressReleases {
		pr.Date = model.DateOnly(pr.Date)
		s.releases[pr.Company] = append(s.releases[pr.Company], pr)
	}
	for company := range s.releases {
		rel := s.releases[company]
		sort.SliceStable(rel, func(i, j int) bool {
			if rel[i].Date.Equal(rel[j].Date) {
				return rel[i].Row < rel[j].Row
			}
			return rel[i].Date.After(rel[j].Date)
		})
	}

	// First row wins for duplicate (company, advisor) pairs
	for _, a := range t.Advisors {
		a.Status = strings.TrimSpace(a.Status)
		key := advisorKey{company: a.Company, advisor: a.AdvisorName}
		if _, exists := s.advisors[key]; !exists {
			s.advisors[key] = a
		}
	}

	for _, f := range t.Features {
		f.Values = withCategoryFeature(f.Values, f.Category)
		s.features[f.Category] = append(s.features[f.Category], f)
	}
	for category := range s.features {
		rows := s.features[category]
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Date.Before(rows[j].Date)
		})
	}

	for company, category := range t.Categories {
		s.categories[company] = category
	}

	s.stats = Stats{
		PressReleases: len(t.PressReleases),
		Companies:     len(s.releases),
		Advisors:      len(s.advisors),
		FeatureRows:   len(t.Features),
		Categories:    len(s.categories),
	}

	return s
}

// CategoryFeature is the feature name of an encoded company category
const CategoryFeature = "company_cat"

// withCategoryFeature adds a numeric category to the row's features.
// Label-encoded categories are classifier inputs; text categories are only group keys.
func withCategoryFeature(values map[string]float64, category string) map[string]float64 {
	if _, ok := values[CategoryFeature]; ok {
		return values
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(category), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return values
	}
	out := make(map[string]float64, len(values)+1)
	for k, x := range values {
		out[k] = x
	}
	out[CategoryFeature] = v
	return out
}

// PressReleasesFor returns the company's releases dated on or before the given date, newest first.
// Releases sharing a date keep source order, so the first element is always the
// newest release with the lowest row id.
func (s *Store) PressReleasesFor(company string, onOrBefore time.Time) []model.PressRelease {
	cutoff := model.DateOnly(onOrBefore)
	var out []model.PressRelease
	for _, pr := range s.releases[company] {
		if !pr.Date.After(cutoff) {
			out = append(out, pr)
		}
	}
	return out
}

// AdvisorRecord looks up the advisor by exact (company, normalized name) pair
func (s *Store) AdvisorRecord(company string, advisorName *string) (model.AdvisorRecord, bool) {
	rec, ok := s.advisors[advisorKey{company: company, advisor: model.NormalizeAdvisorName(advisorName)}]
	return rec, ok
}

// FeatureRowsFor returns the classifier input rows for a category.
// When the feature table is dated the rows are ordered oldest to newest.
func (s *Store) FeatureRowsFor(category string) []model.FeatureRow {
	rows := s.features[category]
	out := make([]model.FeatureRow, len(rows))
	copy(out, rows)
	return out
}

// CategoryFor resolves a company to its company category
func (s *Store) CategoryFor(company string) (string, bool) {
	c, ok := s.categories[company]
	return c, ok
}

// Stats returns table sizes
func (s *Store) Stats() Stats {
	return s.stats
}
