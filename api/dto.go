/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY IN JSON:
  Internal amounts are decimals; DTOs expose them as JSON numbers already
  rounded to 2dp by the engine, so the float conversion is presentation
  only and never feeds back into computation.

VALIDATION:
  Request structs carry go-playground/validator tags; handlers run the
  shared validator before any computation (fail fast, no partial results).

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: Domain counterparts
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/engine"
	"github.com/warp/roster-engine/rates"
)

const dateFormat = "2006-01-02"

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftInput is a shift as submitted by a scheduler - source fields only.
type ShiftInput struct {
	ID              string `json:"id,omitempty"`
	ParticipantID   string `json:"participant_id,omitempty"`
	ParticipantName string `json:"participant_name,omitempty"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	LineItemCode    string `json:"line_item_code"`
	SupportRatio    string `json:"support_ratio,omitempty"`
	StaffName       string `json:"staff_name,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func (in ShiftInput) toShift() (engine.Shift, error) {
	date, err := time.Parse(dateFormat, in.Date)
	if err != nil {
		return engine.Shift{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", in.Date, engine.ErrInvalidInput)
	}
	return engine.Shift{
		ID:              in.ID,
		ParticipantID:   in.ParticipantID,
		ParticipantName: in.ParticipantName,
		Date:            date,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		LineItemCode:    in.LineItemCode,
		SupportRatio:    in.SupportRatio,
		StaffName:       in.StaffName,
		Notes:           in.Notes,
	}, nil
}

// ShiftDTO is a shift with every engine-derived field.
type ShiftDTO struct {
	ID              string `json:"id"`
	ParticipantID   string `json:"participant_id,omitempty"`
	ParticipantName string `json:"participant_name,omitempty"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	LineItemCode    string `json:"line_item_code"`
	SupportRatio    string `json:"support_ratio,omitempty"`
	StaffName       string `json:"staff_name,omitempty"`
	Notes           string `json:"notes,omitempty"`

	Hours           float64  `json:"hours"`
	DayType         string   `json:"day_type"`
	TimeOfDay       string   `json:"time_of_day"`
	CalculatedCost  float64  `json:"calculated_cost"`
	CostStatus      string   `json:"cost_status"`
	CostReason      string   `json:"cost_reason,omitempty"`
	WeekStart       string   `json:"week_start"`
	ComplianceFlags []string `json:"compliance_flags"`
}

func toShiftDTO(s engine.Shift) ShiftDTO {
	flags := make([]string, len(s.Flags))
	for i, f := range s.Flags {
		flags[i] = string(f)
	}
	return ShiftDTO{
		ID:              s.ID,
		ParticipantID:   s.ParticipantID,
		ParticipantName: s.ParticipantName,
		Date:            s.Date.Format(dateFormat),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		LineItemCode:    s.LineItemCode,
		SupportRatio:    s.SupportRatio,
		StaffName:       s.StaffName,
		Notes:           s.Notes,
		Hours:           toFloat(s.Hours),
		DayType:         string(s.DayType),
		TimeOfDay:       string(s.TimeOfDay),
		CalculatedCost:  toFloat(s.Cost.Amount),
		CostStatus:      string(s.Cost.Status),
		CostReason:      s.Cost.Reason,
		WeekStart:       s.WeekStart.Format(dateFormat),
		ComplianceFlags: flags,
	}
}

func toShiftDTOs(shifts []engine.Shift) []ShiftDTO {
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	return dtos
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

// ParticipantRequest creates or updates a participant. Budgets are the
// authoritative ceilings from the funding plan.
type ParticipantRequest struct {
	ID                    string  `json:"id,omitempty"`
	Name                  string  `json:"name" validate:"required"`
	NDISNumber            string  `json:"ndis_number,omitempty"`
	PlanStart             string  `json:"plan_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PlanEnd               string  `json:"plan_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SILBudget             float64 `json:"sil_budget" validate:"gte=0"`
	CommunityAccessBudget float64 `json:"community_access_budget" validate:"gte=0"`
	TransportBudget       float64 `json:"transport_budget" validate:"gte=0"`
	SupportRatio          string  `json:"support_ratio,omitempty"`
	Property              string  `json:"property,omitempty"`
	Notes                 string  `json:"notes,omitempty"`
}

func (in ParticipantRequest) toParticipant() engine.Participant {
	ratio := in.SupportRatio
	if ratio == "" {
		ratio = "1:1"
	}
	p := engine.Participant{
		ID:                    in.ID,
		Name:                  in.Name,
		NDISNumber:            in.NDISNumber,
		SILBudget:             decimal.NewFromFloat(in.SILBudget).Round(2),
		CommunityAccessBudget: decimal.NewFromFloat(in.CommunityAccessBudget).Round(2),
		TransportBudget:       decimal.NewFromFloat(in.TransportBudget).Round(2),
		SupportRatio:          ratio,
		Property:              in.Property,
		Notes:                 in.Notes,
	}
	if in.PlanStart != "" {
		p.PlanStart, _ = time.Parse(dateFormat, in.PlanStart)
	}
	if in.PlanEnd != "" {
		p.PlanEnd, _ = time.Parse(dateFormat, in.PlanEnd)
	}
	return p
}

// ParticipantDTO is a participant in API responses.
type ParticipantDTO struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	NDISNumber            string  `json:"ndis_number,omitempty"`
	PlanStart             string  `json:"plan_start,omitempty"`
	PlanEnd               string  `json:"plan_end,omitempty"`
	SILBudget             float64 `json:"sil_budget"`
	CommunityAccessBudget float64 `json:"community_access_budget"`
	TransportBudget       float64 `json:"transport_budget"`
	SupportRatio          string  `json:"support_ratio,omitempty"`
	Property              string  `json:"property,omitempty"`
	Notes                 string  `json:"notes,omitempty"`
}

func toParticipantDTO(p engine.Participant) ParticipantDTO {
	dto := ParticipantDTO{
		ID:                    p.ID,
		Name:                  p.Name,
		NDISNumber:            p.NDISNumber,
		SILBudget:             toFloat(p.SILBudget),
		CommunityAccessBudget: toFloat(p.CommunityAccessBudget),
		TransportBudget:       toFloat(p.TransportBudget),
		SupportRatio:          p.SupportRatio,
		Property:              p.Property,
		Notes:                 p.Notes,
	}
	if !p.PlanStart.IsZero() {
		dto.PlanStart = p.PlanStart.Format(dateFormat)
	}
	if !p.PlanEnd.IsZero() {
		dto.PlanEnd = p.PlanEnd.Format(dateFormat)
	}
	return dto
}

// =============================================================================
// CALCULATION
// =============================================================================

// CalculateRequest is a stateless batch pricing request.
type CalculateRequest struct {
	Shifts []ShiftInput `json:"shifts" validate:"required,min=1"`
}

// CalculateResponse carries per-item results: every shift that could be
// priced, per-item errors for those that could not, compliance flags over
// the computed set, and category totals.
type CalculateResponse struct {
	Shifts []ShiftDTO          `json:"shifts"`
	Totals TotalsDTO           `json:"totals"`
	Flags  []FlagDTO           `json:"flags"`
	Errors []engine.BatchError `json:"errors,omitempty"`
}

// TotalsDTO is cost per funding category.
type TotalsDTO struct {
	SIL             float64 `json:"sil"`
	CommunityAccess float64 `json:"community_access"`
	Transport       float64 `json:"transport"`
	Grand           float64 `json:"grand"`
}

func toTotalsDTO(t engine.CategoryTotals) TotalsDTO {
	return TotalsDTO{
		SIL:             toFloat(t.SIL),
		CommunityAccess: toFloat(t.CommunityAccess),
		Transport:       toFloat(t.Transport),
		Grand:           toFloat(t.Grand),
	}
}

// FlagDTO is one compliance flag. ShiftID is empty for worker/week flags.
type FlagDTO struct {
	ShiftID   string `json:"shift_id,omitempty"`
	Date      string `json:"date"`
	StaffName string `json:"staff_name"`
	FlagCode  string `json:"flag_code"`
}

func toFlagDTOs(flags []engine.ComplianceFlag) []FlagDTO {
	dtos := make([]FlagDTO, len(flags))
	for i, f := range flags {
		dtos[i] = FlagDTO{
			ShiftID:   f.ShiftID,
			Date:      f.Date.Format(dateFormat),
			StaffName: f.StaffName,
			FlagCode:  string(f.Code),
		}
	}
	return dtos
}

// =============================================================================
// REPORTS
// =============================================================================

// ReportRequest selects a reporting window and optionally a participant
// subset.
type ReportRequest struct {
	DateFrom       string   `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo         string   `json:"date_to" validate:"required,datetime=2006-01-02"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

// RollupDTO is one participant's budget utilisation.
type RollupDTO struct {
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`

	SILCost             float64 `json:"sil_cost"`
	CommunityAccessCost float64 `json:"community_access_cost"`
	TransportCost       float64 `json:"transport_cost"`
	TotalCost           float64 `json:"total_cost"`

	SILUtilisationPct             float64 `json:"sil_utilisation_pct"`
	CommunityAccessUtilisationPct float64 `json:"community_access_utilisation_pct"`
	TransportUtilisationPct       float64 `json:"transport_utilisation_pct"`

	ShiftCount    int `json:"shift_count"`
	UnpricedCount int `json:"unpriced_count,omitempty"`
}

// WeeklyDTO is one ISO week's subtotals.
type WeeklyDTO struct {
	WeekStart  string    `json:"week_start"`
	Totals     TotalsDTO `json:"totals"`
	ShiftCount int       `json:"shift_count"`
}

// ReportDTO is the full reporting window projection.
type ReportDTO struct {
	DateFrom         string         `json:"date_from"`
	DateTo           string         `json:"date_to"`
	Participants     []RollupDTO    `json:"participants"`
	Weekly           []WeeklyDTO    `json:"weekly"`
	FlagCounts       map[string]int `json:"flag_counts"`
	Flags            []FlagDTO      `json:"flags"`
	Totals           TotalsDTO      `json:"totals"`
	ParticipantCount int            `json:"participant_count"`
	ShiftCount       int            `json:"shift_count"`
	UnpricedShifts   int            `json:"unpriced_shifts"`
}

func toReportDTO(r engine.Report) ReportDTO {
	dto := ReportDTO{
		DateFrom:         r.Window.From.Format(dateFormat),
		DateTo:           r.Window.To.Format(dateFormat),
		Participants:     make([]RollupDTO, len(r.Participants)),
		Weekly:           make([]WeeklyDTO, len(r.Weekly)),
		FlagCounts:       make(map[string]int, len(r.FlagCounts)),
		Flags:            toFlagDTOs(r.Flags),
		Totals:           toTotalsDTO(r.Totals),
		ParticipantCount: r.ParticipantCount,
		ShiftCount:       r.ShiftCount,
		UnpricedShifts:   r.UnpricedCount,
	}
	for i, p := range r.Participants {
		dto.Participants[i] = toRollupDTO(p)
	}
	for i, w := range r.Weekly {
		dto.Weekly[i] = WeeklyDTO{
			WeekStart:  w.WeekStart.Format(dateFormat),
			Totals:     toTotalsDTO(w.Totals),
			ShiftCount: w.ShiftCount,
		}
	}
	for code, n := range r.FlagCounts {
		dto.FlagCounts[string(code)] = n
	}
	return dto
}

func toRollupDTO(r engine.BudgetRollup) RollupDTO {
	return RollupDTO{
		ParticipantID:                 r.ParticipantID,
		ParticipantName:               r.ParticipantName,
		SILCost:                       toFloat(r.SILCost),
		CommunityAccessCost:           toFloat(r.CommunityAccessCost),
		TransportCost:                 toFloat(r.TransportCost),
		TotalCost:                     toFloat(r.TotalCost),
		SILUtilisationPct:             toFloat(r.SILUtilisationPct),
		CommunityAccessUtilisationPct: toFloat(r.CommunityAccessUtilisationPct),
		TransportUtilisationPct:       toFloat(r.TransportUtilisationPct),
		ShiftCount:                    r.ShiftCount,
		UnpricedCount:                 r.UnpricedCount,
	}
}

// =============================================================================
// RATES
// =============================================================================

// LineItemDTO is one priced service code.
type LineItemDTO struct {
	Code               string  `json:"code"`
	Description        string  `json:"description"`
	Unit               string  `json:"unit"`
	Category           string  `json:"category"`
	PriceWeekday       float64 `json:"price_weekday"`
	PriceSaturday      float64 `json:"price_saturday"`
	PriceSunday        float64 `json:"price_sunday"`
	PricePublicHoliday float64 `json:"price_public_holiday"`
	PriceEvening       float64 `json:"price_evening,omitempty"`
}

// HolidayDTO is one public holiday.
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// LoadingSetDTO is the award loadings for one employment class.
type LoadingSetDTO struct {
	Saturday      float64 `json:"saturday"`
	Sunday        float64 `json:"sunday"`
	PublicHoliday float64 `json:"public_holiday"`
	Evening       float64 `json:"evening"`
}

// RatesResponse returns the reference tables verbatim. The loadings are
// documentation values; pricing uses the per-day-type columns directly.
type RatesResponse struct {
	LineItems []LineItemDTO            `json:"line_items"`
	Holidays  []HolidayDTO             `json:"holidays"`
	Loadings  map[string]LoadingSetDTO `json:"schads_loadings"`
}

func toRatesResponse(table *engine.RateTable, calendar engine.HolidayCalendar, loadings rates.LoadingMultipliers) RatesResponse {
	resp := RatesResponse{
		Loadings: map[string]LoadingSetDTO{
			"permanent": toLoadingSetDTO(loadings.Permanent),
			"casual":    toLoadingSetDTO(loadings.Casual),
		},
	}
	for _, li := range table.Items() {
		resp.LineItems = append(resp.LineItems, LineItemDTO{
			Code:               li.Code,
			Description:        li.Description,
			Unit:               string(li.Unit),
			Category:           string(li.Category),
			PriceWeekday:       toFloat(li.PriceWeekday),
			PriceSaturday:      toFloat(li.PriceSaturday),
			PriceSunday:        toFloat(li.PriceSunday),
			PricePublicHoliday: toFloat(li.PricePublicHoliday),
			PriceEvening:       toFloat(li.PriceEvening),
		})
	}
	for _, h := range calendar.Holidays() {
		resp.Holidays = append(resp.Holidays, HolidayDTO{Date: h.Date.Format(dateFormat), Name: h.Name})
	}
	return resp
}

func toLoadingSetDTO(s rates.LoadingSet) LoadingSetDTO {
	return LoadingSetDTO{
		Saturday:      toFloat(s.Saturday),
		Sunday:        toFloat(s.Sunday),
		PublicHoliday: toFloat(s.PublicHoliday),
		Evening:       toFloat(s.Evening),
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
