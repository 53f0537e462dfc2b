/*
load.go - YAML loading for region-specific reference data

PURPOSE:
  Loads a rate table or holiday calendar from a YAML file. Prices are
  strings in the file and parsed as decimals - the file format never goes
  through binary floating point.

FILE FORMATS:

  rates.yaml:
    line_items:
      - code: SIL_STD
        description: SIL - Assistance with Self-Care
        unit: per_hour            # per_hour | per_occurrence
        category: sil             # optional; inferred from code prefix
        weekday: "65.47"
        saturday: "91.66"
        sunday: "117.85"
        public_holiday: "144.04"
        evening: "72.13"          # optional; weekday fallback when absent

  holidays.yaml:
    holidays:
      - date: 2025-01-01
        name: New Year's Day

SEE ALSO:
  - rates.go: Built-in defaults used when no file is given
*/
package rates

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/roster-engine/engine"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

type rateFile struct {
	LineItems []lineItemYAML `yaml:"line_items"`
}

type lineItemYAML struct {
	Code          string `yaml:"code"`
	Description   string `yaml:"description"`
	Unit          string `yaml:"unit"`
	Category      string `yaml:"category"`
	Weekday       string `yaml:"weekday"`
	Saturday      string `yaml:"saturday"`
	Sunday        string `yaml:"sunday"`
	PublicHoliday string `yaml:"public_holiday"`
	Evening       string `yaml:"evening"`
}

type holidayFile struct {
	Holidays []holidayYAML `yaml:"holidays"`
}

type holidayYAML struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// =============================================================================
// LOADERS
// =============================================================================

// LoadRateTableFile reads and validates a YAML price list.
func LoadRateTableFile(path string) (*engine.RateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate table: %w", err)
	}

	var file rateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rate table: %w", err)
	}
	if len(file.LineItems) == 0 {
		return nil, fmt.Errorf("rate table %s: no line items", path)
	}

	items := make([]engine.LineItem, 0, len(file.LineItems))
	for i, y := range file.LineItems {
		item, err := y.toLineItem()
		if err != nil {
			return nil, fmt.Errorf("rate table %s: line item %d: %w", path, i, err)
		}
		items = append(items, item)
	}
	return engine.NewRateTable(items), nil
}

// LoadHolidaysFile reads a YAML holiday calendar.
func LoadHolidaysFile(path string) (engine.HolidayCalendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holidays: %w", err)
	}

	var file holidayFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse holidays: %w", err)
	}

	holidays := make([]engine.Holiday, 0, len(file.Holidays))
	for i, y := range file.Holidays {
		day, err := time.Parse("2006-01-02", y.Date)
		if err != nil {
			return nil, fmt.Errorf("holidays %s: entry %d: bad date %q", path, i, y.Date)
		}
		holidays = append(holidays, engine.Holiday{Date: day, Name: y.Name})
	}
	return engine.NewHolidayCalendar(holidays), nil
}

func (y lineItemYAML) toLineItem() (engine.LineItem, error) {
	if y.Code == "" {
		return engine.LineItem{}, fmt.Errorf("missing code")
	}

	var unit engine.Unit
	switch y.Unit {
	case string(engine.UnitPerHour), "":
		unit = engine.UnitPerHour
	case string(engine.UnitPerOccurrence):
		unit = engine.UnitPerOccurrence
	default:
		return engine.LineItem{}, fmt.Errorf("unknown unit %q", y.Unit)
	}

	category := engine.Category(y.Category)
	switch category {
	case engine.CategorySIL, engine.CategoryCommunityAccess, engine.CategoryTransport, engine.CategoryOther:
	case "":
		category = InferCategory(y.Code)
	default:
		return engine.LineItem{}, fmt.Errorf("unknown category %q", y.Category)
	}

	item := engine.LineItem{
		Code:        y.Code,
		Description: y.Description,
		Unit:        unit,
		Category:    category,
	}

	prices := []struct {
		name  string
		raw   string
		field *decimal.Decimal
	}{
		{"weekday", y.Weekday, &item.PriceWeekday},
		{"saturday", y.Saturday, &item.PriceSaturday},
		{"sunday", y.Sunday, &item.PriceSunday},
		{"public_holiday", y.PublicHoliday, &item.PricePublicHoliday},
		{"evening", y.Evening, &item.PriceEvening},
	}
	for _, p := range prices {
		if p.raw == "" {
			continue // absent price stays zero (evening falls back to weekday)
		}
		v, err := decimal.NewFromString(p.raw)
		if err != nil {
			return engine.LineItem{}, fmt.Errorf("bad %s price %q", p.name, p.raw)
		}
		if v.IsNegative() {
			return engine.LineItem{}, fmt.Errorf("negative %s price %q", p.name, p.raw)
		}
		*p.field = v
	}
	return item, nil
}
