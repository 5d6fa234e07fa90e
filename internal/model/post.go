package model

import (
	"fmt"
	"strings"
	"time"
)

// AdvisorNone is the join key used for posts and advisor rows with no advisor name
const AdvisorNone = "None"

// PostRecord is a social-media post submitted for validation
type PostRecord struct {
	Text            string    `json:"post_text"`
	Company         string    `json:"company"`
	Date            time.Time `json:"date"`
	CompanyCategory string    `json:"company_category,omitempty"` // Resolved from the company map when empty
	AdvisorName     *string   `json:"advisor_name"`               // nil when the post names no advisor
}

// PressRelease is an official company statement used as ground truth
type PressRelease struct {
	Company string    `json:"company"`
	Date    time.Time `json:"date"`
	Text    string    `json:"press_release_text"` // Empty when the source cell was null
	Row     int       `json:"row"`                // 0-based position in the source table
}

// AdvisorRecord links an advisor to a company with a regulatory status
type AdvisorRecord struct {
	Company     string `json:"company"`
	AdvisorName string `json:"advisor_name"` // Normalized: null becomes AdvisorNone
	Status      string `json:"advisor_status"`
	Row         int    `json:"row"`
}

// FeatureRow is one precomputed input row for the market/financial classifier
type FeatureRow struct {
	Category string             `json:"company_cat"`
	Date     time.Time          `json:"date,omitempty"` // Zero when the feature table has no date column
	Values   map[string]float64 `json:"values"`
	Row      int                `json:"row"`
}

// NormalizeAdvisorName maps a missing advisor name to AdvisorNone
func NormalizeAdvisorName(name *string) string {
	if name == nil {
		return AdvisorNone
	}
	return *name
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseDate parses an ISO-like date string and keeps only the calendar date.
// A timestamp with an offset keeps the date as written in that offset, not its UTC date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DateOnly returns midnight UTC of t's calendar date in t's own location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
