package rates

import "github.com/shopspring/decimal"

// =============================================================================
// SCHADS LOADING MULTIPLIERS - Reference data only
// =============================================================================

// LoadingSet is the award loading applied to a base hourly rate for one
// employment class.
type LoadingSet struct {
	Saturday      decimal.Decimal
	Sunday        decimal.Decimal
	PublicHoliday decimal.Decimal
	Evening       decimal.Decimal
}

// LoadingMultipliers holds the SCHADS penalty loadings for permanent and
// casual staff. These are documentation values returned to API clients;
// the engine prices from the rate table's per-day-type columns directly
// (the published columns already bake the loadings in) and never applies
// these multipliers itself.
type LoadingMultipliers struct {
	Permanent LoadingSet
	Casual    LoadingSet
}

// SCHADSLoadings returns the award loading multipliers.
func SCHADSLoadings() LoadingMultipliers {
	return LoadingMultipliers{
		Permanent: LoadingSet{
			Saturday:      d("1.5"),
			Sunday:        d("2.0"),
			PublicHoliday: d("2.5"),
			Evening:       d("1.125"),
		},
		Casual: LoadingSet{
			Saturday:      d("1.75"),
			Sunday:        d("2.25"),
			PublicHoliday: d("2.75"),
			Evening:       d("1.375"),
		},
	}
}
