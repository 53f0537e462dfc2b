/*
Package rates provides the reference data the engine is constructed with.

PURPOSE:
  Builds rate tables and holiday calendars - either the built-in defaults
  shipped with the binary or region-specific YAML files loaded at startup.
  Also exports the SCHADS loading multipliers returned to API clients as
  reference data.

WHY A SEPARATE PACKAGE?
  The engine takes an arbitrary rate table and holiday list by injection;
  it has no knowledge of concrete NDIS codes. Price-list updates (an annual
  NDIS event) are data changes here, never code changes in engine/.

CATEGORY RESOLUTION:
  The funding category is an explicit field on each line item, set when the
  table is built. YAML entries may omit it, in which case it is inferred
  from the code prefix (SIL_/CA_/TRANS_) - once, at load time. Aggregation
  never re-parses code strings.

SEE ALSO:
  - load.go: YAML file loading
  - schads.go: Award loading multipliers (reference only)
  - engine/types.go: LineItem and RateTable
*/
package rates

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/engine"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// InferCategory maps a line item code prefix to a funding category. Used
// only at table build time for entries without an explicit category.
func InferCategory(code string) engine.Category {
	switch {
	case strings.HasPrefix(code, "SIL_"):
		return engine.CategorySIL
	case strings.HasPrefix(code, "CA_"):
		return engine.CategoryCommunityAccess
	case strings.HasPrefix(code, "TRANS_"):
		return engine.CategoryTransport
	default:
		return engine.CategoryOther
	}
}

// DefaultLineItems is the built-in price list: standard NDIS support items
// for supported independent living, community access, and transport.
// Prices are the per-day-type columns from the published price guide; the
// evening column is the weekday rate with the shift loading baked in.
func DefaultLineItems() []engine.LineItem {
	return []engine.LineItem{
		{
			Code:               "SIL_STD",
			Description:        "SIL - Assistance with Self-Care (Standard)",
			Unit:               engine.UnitPerHour,
			Category:           engine.CategorySIL,
			PriceWeekday:       d("65.47"),
			PriceSaturday:      d("91.66"),
			PriceSunday:        d("117.85"),
			PricePublicHoliday: d("144.04"),
			PriceEvening:       d("72.13"),
		},
		{
			Code:               "SIL_NIGHT",
			Description:        "SIL - Active Overnight Support",
			Unit:               engine.UnitPerHour,
			Category:           engine.CategorySIL,
			PriceWeekday:       d("73.06"),
			PriceSaturday:      d("91.66"),
			PriceSunday:        d("117.85"),
			PricePublicHoliday: d("144.04"),
			PriceEvening:       d("73.06"),
		},
		{
			Code:               "SIL_SLEEPOVER",
			Description:        "SIL - Sleepover Allowance",
			Unit:               engine.UnitPerOccurrence,
			Category:           engine.CategorySIL,
			PriceWeekday:       d("62.47"),
			PriceSaturday:      d("62.47"),
			PriceSunday:        d("62.47"),
			PricePublicHoliday: d("62.47"),
		},
		{
			Code:               "CA_STD",
			Description:        "Community Access - Social & Civic Participation",
			Unit:               engine.UnitPerHour,
			Category:           engine.CategoryCommunityAccess,
			PriceWeekday:       d("67.56"),
			PriceSaturday:      d("94.59"),
			PriceSunday:        d("121.61"),
			PricePublicHoliday: d("148.63"),
			PriceEvening:       d("74.42"),
		},
		{
			Code:               "CA_GROUP",
			Description:        "Community Access - Group Activities",
			Unit:               engine.UnitPerHour,
			Category:           engine.CategoryCommunityAccess,
			PriceWeekday:       d("67.56"),
			PriceSaturday:      d("94.59"),
			PriceSunday:        d("121.61"),
			PricePublicHoliday: d("148.63"),
		},
		{
			Code:               "TRANS_STD",
			Description:        "Transport - Travel to Community Activities",
			Unit:               engine.UnitPerHour,
			Category:           engine.CategoryTransport,
			PriceWeekday:       d("58.26"),
			PriceSaturday:      d("81.56"),
			PriceSunday:        d("104.87"),
			PricePublicHoliday: d("128.17"),
		},
	}
}

// DefaultTable builds the built-in rate table.
func DefaultTable() *engine.RateTable {
	return engine.NewRateTable(DefaultLineItems())
}
