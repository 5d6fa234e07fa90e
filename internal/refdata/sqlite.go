package refdata

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/genuinity/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PressReleaseRow is the press_releases table
type PressReleaseRow struct {
	ID               uint    `gorm:"primaryKey"`
	Company          string  `gorm:"index"`
	Date             string  // ISO date
	PressReleaseText *string // nullable
}

func (PressReleaseRow) TableName() string { return "press_releases" }

// AdvisorRow is the advisors table
type AdvisorRow struct {
	ID            uint `gorm:"primaryKey"`
	Company       string
	AdvisorName   *string // nullable
	AdvisorStatus string
}

func (AdvisorRow) TableName() string { return "advisors" }

// CategoryRow is the company_categories table
type CategoryRow struct {
	Company    string `gorm:"primaryKey"`
	CompanyCat string
}

func (CategoryRow) TableName() string { return "company_categories" }

// FeatureRowRecord is the feature_rows table; Features holds a JSON object of name -> value
type FeatureRowRecord struct {
	ID         uint `gorm:"primaryKey"`
	CompanyCat string
	Date       string // optional ISO date
	Features   string
}

func (FeatureRowRecord) TableName() string { return "feature_rows" }

// Migrate creates the reference tables in db
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&PressReleaseRow{}, &AdvisorRow{}, &CategoryRow{}, &FeatureRowRecord{})
}

// LoadSQLite loads every reference table from a SQLite database.
// Rows are read in primary-key order, which stands in for CSV file order.
func LoadSQLite(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &model.LoadError{Resource: "sqlite database", Path: path, Err: err}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, &model.LoadError{Resource: "sqlite database", Path: path, Err: err}
	}
	if sqlDB, err := db.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}

	tables, err := readSQLiteTables(db, path)
	if err != nil {
		return nil, err
	}

	store := New(*tables)
	st := store.Stats()
	log.Info().
		Str("sqlite", path).
		Int("press_releases", st.PressReleases).
		Int("advisors", st.Advisors).
		Int("feature_rows", st.FeatureRows).
		Int("categories", st.Categories).
		Msg("Reference data loaded")

	return store, nil
}

func readSQLiteTables(db *gorm.DB, path string) (*Tables, error) {
	for _, tbl := range []interface{ TableName() string }{PressReleaseRow{}, AdvisorRow{}, CategoryRow{}, FeatureRowRecord{}} {
		if !db.Migrator().HasTable(tbl.TableName()) {
			return nil, &model.LoadError{Resource: tbl.TableName(), Path: path, Err: fmt.Errorf("table not found")}
		}
	}

	var prs []PressReleaseRow
	if err := db.Order("id").Find(&prs).Error; err != nil {
		return nil, &model.LoadError{Resource: "press_releases", Path: path, Err: err}
	}
	var ads []AdvisorRow
	if err := db.Order("id").Find(&ads).Error; err != nil {
		return nil, &model.LoadError{Resource: "advisors", Path: path, Err: err}
	}
	var cats []CategoryRow
	if err := db.Find(&cats).Error; err != nil {
		return nil, &model.LoadError{Resource: "company_categories", Path: path, Err: err}
	}
	var feats []FeatureRowRecord
	if err := db.Order("id").Find(&feats).Error; err != nil {
		return nil, &model.LoadError{Resource: "feature_rows", Path: path, Err: err}
	}

	t := &Tables{Categories: make(map[string]string, len(cats))}

	for i, r := range prs {
		date, err := model.ParseDate(r.Date)
		if err != nil {
			return nil, &model.LoadError{Resource: "press_releases", Path: path, Err: fmt.Errorf("id %d: %w", r.ID, err)}
		}
		text := ""
		if r.PressReleaseText != nil {
			text = *r.PressReleaseText
		}
		t.PressReleases = append(t.PressReleases, model.PressRelease{Company: r.Company, Date: date, Text: text, Row: i})
	}

	for i, r := range ads {
		t.Advisors = append(t.Advisors, model.AdvisorRecord{
			Company:     r.Company,
			AdvisorName: model.NormalizeAdvisorName(r.AdvisorName),
			Status:      r.AdvisorStatus,
			Row:         i,
		})
	}

	for _, r := range cats {
		t.Categories[r.Company] = r.CompanyCat
	}

	for i, r := range feats {
		fr := model.FeatureRow{Category: r.CompanyCat, Row: i}
		if r.Date != "" {
			date, err := model.ParseDate(r.Date)
			if err != nil {
				return nil, &model.LoadError{Resource: "feature_rows", Path: path, Err: fmt.Errorf("id %d: %w", r.ID, err)}
			}
			fr.Date = date
		}
		if err := json.Unmarshal([]byte(r.Features), &fr.Values); err != nil {
			return nil, &model.LoadError{Resource: "feature_rows", Path: path, Err: fmt.Errorf("id %d: features: %w", r.ID, err)}
		}
		t.Features = append(t.Features, fr)
	}

	return t, nil
}

// Load picks the SQLite source when configured, otherwise the CSV directory
func Load(cfg model.DataConfig) (*Store, error) {
	if cfg.SQLitePath != "" {
		return LoadSQLite(cfg.SQLitePath)
	}
	return LoadDir(cfg)
}
