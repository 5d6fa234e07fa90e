package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/genuinity/internal/model"
	"github.com/rs/zerolog/log"
)

// Columns that identify a feature row rather than feed the classifier.
// A numeric company_cat is restored as a feature by New.
var featureIDColumns = map[string]bool{
	"company_cat": true,
	"company":     true,
	"date":        true,
}

// table is a CSV file addressed by header name
type table struct {
	resource string
	path     string
	header   map[string]int
	rows     [][]string
}

func readTable(resource, path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.LoadError{Resource: resource, Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("missing header row")
		}
		return nil, &model.LoadError{Resource: resource, Path: path, Err: err}
	}

	t := &table{resource: resource, path: path, header: make(map[string]int, len(head))}
	for i, name := range head {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		t.header[name] = i
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &model.LoadError{Resource: resource, Path: path, Err: err}
		}
		t.rows = append(t.rows, rec)
	}

	return t, nil
}

func (t *table) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.header[c]; !ok {
			return &model.LoadError{Resource: t.resource, Path: t.path, Err: fmt.Errorf("missing column %q", c)}
		}
	}
	return nil
}

func (t *table) has(column string) bool {
	_, ok := t.header[column]
	return ok
}

// get returns the cell, or "" when the row is short
func (t *table) get(row []string, column string) string {
	i, ok := t.header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (t *table) rowError(row int, err error) error {
	// +2: header line and 1-based numbering
	return &model.LoadError{Resource: t.resource, Path: t.path, Err: fmt.Errorf("line %d: %w", row+2, err)}
}

// LoadDir loads every reference table from CSV files described by cfg
func LoadDir(cfg model.DataConfig) (*Store, error) {
	releases, err := loadPressReleases(cfg.TablePath(cfg.PressReleases))
	if err != nil {
		return nil, err
	}
	advisors, err := loadAdvisors(cfg.TablePath(cfg.Advisors))
	if err != nil {
		return nil, err
	}
	features, err := loadFeatures(cfg.TablePath(cfg.Features))
	if err != nil {
		return nil, err
	}
	categories, err := loadCategories(cfg.TablePath(cfg.CategoryMap))
	if err != nil {
		return nil, err
	}

	store := New(Tables{
		PressReleases: releases,
		Advisors:      advisors,
		Features:      features,
		Categories:    categories,
	})

	st := store.Stats()
	log.Info().
		Str("dir", cfg.Dir).
		Int("press_releases", st.PressReleases).
		Int("advisors", st.Advisors).
		Int("feature_rows", st.FeatureRows).
		Int("categories", st.Categories).
		Msg("Reference data loaded")

	return store, nil
}

func loadPressReleases(path string) ([]model.PressRelease, error) {
	t, err := readTable("press releases", path)
	if err != nil {
		return nil, err
	}
	if err := t.require("company", "date", "press_release_text"); err != nil {
		return nil, err
	}

	out := make([]model.PressRelease, 0, len(t.rows))
	for i, row := range t.rows {
		date, err := model.ParseDate(t.get(row, "date"))
		if err != nil {
			return nil, t.rowError(i, err)
		}
		out = append(out, model.PressRelease{
			Company: t.get(row, "company"),
			Date:    date,
			Text:    t.get(row, "press_release_text"), // null cells read as ""
			Row:     i,
		})
	}
	return out, nil
}

func loadAdvisors(path string) ([]model.AdvisorRecord, error) {
	t, err := readTable("advisors", path)
	if err != nil {
		return nil, err
	}
	if err := t.require("company", "advisor_name", "advisor_status"); err != nil {
		return nil, err
	}

	out := make([]model.AdvisorRecord, 0, len(t.rows))
	for i, row := range t.rows {
		var name *string
		if v := t.get(row, "advisor_name"); v != "" {
			name = &v
		}
		out = append(out, model.AdvisorRecord{
			Company:     t.get(row, "company"),
			AdvisorName: model.NormalizeAdvisorName(name),
			Status:      t.get(row, "advisor_status"),
			Row:         i,
		})
	}
	return out, nil
}

func loadFeatures(path string) ([]model.FeatureRow, error) {
	t, err := readTable("feature rows", path)
	if err != nil {
		return nil, err
	}
	if err := t.require("company_cat"); err != nil {
		return nil, err
	}
	dated := t.has("date")

	out := make([]model.FeatureRow, 0, len(t.rows))
	for i, row := range t.rows {
		fr := model.FeatureRow{
			Category: t.get(row, "company_cat"),
			Values:   make(map[string]float64, len(t.header)),
			Row:      i,
		}
		if dated {
			date, err := model.ParseDate(t.get(row, "date"))
			if err != nil {
				return nil, t.rowError(i, err)
			}
			fr.Date = date
		}
		for column := range t.header {
			if featureIDColumns[column] {
				continue
			}
			raw := strings.TrimSpace(t.get(row, column))
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, t.rowError(i, fmt.Errorf("column %q: %w", column, err))
			}
			fr.Values[column] = v
		}
		out = append(out, fr)
	}
	return out, nil
}

func loadCategories(path string) (map[string]string, error) {
	t, err := readTable("company categories", path)
	if err != nil {
		return nil, err
	}
	if err := t.require("company", "company_cat"); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		company := t.get(row, "company")
		if _, exists := out[company]; exists {
			continue
		}
		out[company] = t.get(row, "company_cat")
	}
	return out, nil
}

// LoadPosts reads a social posts table (post_text, company, date, advisor_name).
// Categories are left empty for the caller to resolve.
func LoadPosts(path string) ([]model.PostRecord, error) {
	t, err := readTable("posts", path)
	if err != nil {
		return nil, err
	}
	if err := t.require("post_text", "company", "date"); err != nil {
		return nil, err
	}

	out := make([]model.PostRecord, 0, len(t.rows))
	for i, row := range t.rows {
		date, err := model.ParseDate(t.get(row, "date"))
		if err != nil {
			return nil, t.rowError(i, err)
		}
		post := model.PostRecord{
			Text:    t.get(row, "post_text"),
			Company: t.get(row, "company"),
			Date:    date,
		}
		if v := t.get(row, "advisor_name"); v != "" {
			post.AdvisorName = &v
		}
		if t.has("company_cat") {
			post.CompanyCategory = t.get(row, "company_cat")
		}
		out = append(out, post)
	}
	return out, nil
}
