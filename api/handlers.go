/*
handlers.go - HTTP API handlers for the roster costing engine

PURPOSE:
  Exposes the costing and compliance engine via REST. Handles HTTP
  request/response, JSON serialization, and validation, and delegates all
  domain logic to engine/.

ENDPOINTS:
  Participants:
    GET    /api/participants               List participants
    POST   /api/participants               Create participant
    GET    /api/participants/{id}          Get participant
    PUT    /api/participants/{id}          Update participant
    DELETE /api/participants/{id}          Delete participant
    GET    /api/participants/{id}/summary  Budget rollup for a window

  Shifts:
    GET    /api/shifts                     List (from/to/participant_id filters)
    POST   /api/shifts                     Create (derived fields computed)
    GET    /api/shifts/{id}                Get
    PUT    /api/shifts/{id}                Update (full recomputation)
    DELETE /api/shifts/{id}                Delete

  Engine:
    POST   /api/calculate                  Stateless batch pricing + compliance
    POST   /api/reports                    Reporting window projection
    GET    /api/rates                      Rate table, holidays, SCHADS loadings

REQUEST FLOW:
  1. Decode and validate input (fail fast, no partial results)
  2. Fetch entities from the store where needed
  3. Call the engine
  4. Persist derived fields back (write endpoints only)
  5. Serialize response

ERROR HANDLING:
  - 400: Validation errors, invalid dates/times
  - 404: Participant/shift not found
  - 500: Store failures
  Data-quality issues (unknown line item, malformed ratio) are not errors:
  the shift comes back unpriced/defaulted with that visible in the payload.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/roster-engine/engine"
	"github.com/warp/roster-engine/rates"
	"github.com/warp/roster-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Engine   *engine.Engine
	Loadings rates.LoadingMultipliers

	validate *validator.Validate
	log      *zap.Logger
}

// NewHandler wires a handler around the store and a constructed engine.
func NewHandler(store *sqlite.Store, eng *engine.Engine, log *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Engine:   eng,
		Loadings: rates.SCHADSLoadings(),
		validate: validator.New(),
		log:      log,
	}
}

// =============================================================================
// PARTICIPANT HANDLERS
// =============================================================================

// ListParticipants returns all participants.
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.Store.ListParticipants(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list participants", err)
		return
	}

	dtos := make([]ParticipantDTO, len(participants))
	for i, p := range participants {
		dtos[i] = toParticipantDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateParticipant creates a new participant.
func (h *Handler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	p := req.toParticipant()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := h.Store.SaveParticipant(r.Context(), p); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to create participant", err)
		return
	}
	writeJSON(w, http.StatusCreated, toParticipantDTO(p))
}

// GetParticipant returns a single participant.
func (h *Handler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetParticipant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get participant", err)
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "Participant not found", engine.ErrParticipantNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantDTO(*p))
}

// UpdateParticipant replaces a participant.
func (h *Handler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetParticipant(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get participant", err)
		return
	}
	if existing == nil {
		h.writeError(w, http.StatusNotFound, "Participant not found", engine.ErrParticipantNotFound)
		return
	}

	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	p := req.toParticipant()
	p.ID = id
	if err := h.Store.SaveParticipant(r.Context(), p); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to update participant", err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipantDTO(p))
}

// DeleteParticipant removes a participant.
func (h *Handler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteParticipant(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to delete participant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetParticipantSummary returns a budget rollup for one participant over
// an optional from/to window (defaults to the participant's plan dates).
func (h *Handler) GetParticipantSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	p, err := h.Store.GetParticipant(ctx, id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get participant", err)
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "Participant not found", engine.ErrParticipantNotFound)
		return
	}

	from, to := p.PlanStart, p.PlanEnd
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(dateFormat, v); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(dateFormat, v); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
	}

	// Imported rosters sometimes carry only the participant's name, so the
	// SQL participant_id filter would miss them. Match the way reports do:
	// by id, with a name fallback for id-less shifts.
	all, err := h.Store.ListShifts(ctx, from, to, "")
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	var shifts []engine.Shift
	for _, s := range all {
		if s.ParticipantID == id || (s.ParticipantID == "" && s.ParticipantName == p.Name) {
			shifts = append(shifts, s)
		}
	}
	shifts = h.recalculated(shifts)

	writeJSON(w, http.StatusOK, toRollupDTO(h.Engine.BuildParticipantSummary(*p, shifts)))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns shifts, optionally filtered by date range and
// participant.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(dateFormat, v); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(dateFormat, v); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
	}

	shifts, err := h.Store.ListShifts(r.Context(), from, to, r.URL.Query().Get("participant_id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTOs(shifts))
}

// CreateShift creates a shift, computes its derived fields, persists it,
// and returns it with compliance flags evaluated over the worker's week.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	s, err := req.toShift()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	if err := h.Engine.Recalculate(&s); err != nil {
		status := http.StatusInternalServerError
		if engine.IsClientError(err) {
			status = http.StatusBadRequest
		}
		h.writeError(w, status, "Failed to calculate shift", err)
		return
	}

	if err := h.Store.SaveShift(r.Context(), s); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save shift", err)
		return
	}

	h.attachWeekFlags(r, &s)
	writeJSON(w, http.StatusCreated, toShiftDTO(s))
}

// GetShift returns a single shift.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.GetShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if s == nil {
		h.writeError(w, http.StatusNotFound, "Shift not found", engine.ErrShiftNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*s))
}

// UpdateShift replaces a shift's source fields and recomputes every
// derived field.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if existing == nil {
		h.writeError(w, http.StatusNotFound, "Shift not found", engine.ErrShiftNotFound)
		return
	}

	var req ShiftInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	s, err := req.toShift()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}
	s.ID = id

	if err := h.Engine.Recalculate(&s); err != nil {
		status := http.StatusInternalServerError
		if engine.IsClientError(err) {
			status = http.StatusBadRequest
		}
		h.writeError(w, status, "Failed to calculate shift", err)
		return
	}

	if err := h.Store.SaveShift(r.Context(), s); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save shift", err)
		return
	}

	h.attachWeekFlags(r, &s)
	writeJSON(w, http.StatusOK, toShiftDTO(s))
}

// DeleteShift removes a roster entry.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to delete shift", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// attachWeekFlags evaluates compliance over the worker's persisted shifts
// in the same week and copies this shift's flags onto it. Flags are a
// projection of the current shift set, so they are computed fresh here
// rather than read from anywhere.
func (h *Handler) attachWeekFlags(r *http.Request, s *engine.Shift) {
	if s.StaffName == "" {
		return
	}
	weekEnd := s.WeekStart.AddDate(0, 0, 6)
	all, err := h.Store.ListShifts(r.Context(), s.WeekStart, weekEnd, "")
	if err != nil {
		h.log.Warn("compliance evaluation skipped", zap.Error(err))
		return
	}
	var workerShifts []engine.Shift
	for _, ws := range all {
		if ws.StaffName == s.StaffName {
			workerShifts = append(workerShifts, ws)
		}
	}
	for _, f := range engine.CheckCompliance(workerShifts) {
		if f.ShiftID == s.ID {
			s.Flags = append(s.Flags, f.Code)
		}
	}
}

// =============================================================================
// CALCULATION HANDLER
// =============================================================================

// Calculate prices a batch of shifts without persisting anything. One bad
// shift degrades to a per-item error; the rest of the batch is returned
// priced.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	shifts := make([]engine.Shift, 0, len(req.Shifts))
	reqIndex := make([]int, 0, len(req.Shifts))
	var inputErrors []engine.BatchError
	for i, in := range req.Shifts {
		s, err := in.toShift()
		if err != nil {
			inputErrors = append(inputErrors, engine.BatchError{Index: i, ShiftID: in.ID, Message: err.Error()})
			continue
		}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		shifts = append(shifts, s)
		reqIndex = append(reqIndex, i)
	}

	result := h.Engine.CalculateAll(shifts)
	// Engine errors index the compacted slice; map them back to the
	// positions the shifts held in the request.
	for i := range result.Errors {
		result.Errors[i].Index = reqIndex[result.Errors[i].Index]
	}
	result.Errors = append(inputErrors, result.Errors...)

	writeJSON(w, http.StatusOK, CalculateResponse{
		Shifts: toShiftDTOs(result.Shifts),
		Totals: toTotalsDTO(result.Totals),
		Flags:  toFlagDTOs(result.Flags),
		Errors: result.Errors,
	})
}

// =============================================================================
// REPORT HANDLER
// =============================================================================

// Report builds the reporting window projection: per-participant budget
// rollups, weekly breakdown, flag frequency, grand totals.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	from, _ := time.Parse(dateFormat, req.DateFrom)
	to, _ := time.Parse(dateFormat, req.DateTo)
	if to.Before(from) {
		h.writeError(w, http.StatusBadRequest, "date_to precedes date_from", engine.ErrInvalidInput)
		return
	}

	participants, err := h.Store.ListParticipants(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list participants", err)
		return
	}
	if len(req.ParticipantIDs) > 0 {
		wanted := make(map[string]bool, len(req.ParticipantIDs))
		for _, id := range req.ParticipantIDs {
			wanted[id] = true
		}
		var subset []engine.Participant
		for _, p := range participants {
			if wanted[p.ID] {
				subset = append(subset, p)
			}
		}
		participants = subset
	}

	shifts, err := h.Store.ListShifts(ctx, from, to, "")
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	shifts = h.recalculated(shifts)

	report := h.Engine.BuildReport(participants, shifts, engine.ReportWindow{From: from, To: to})
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// recalculated recomputes derived fields on stored shifts before read-side
// use. The stored columns are a cache and may predate a rate-table change.
func (h *Handler) recalculated(shifts []engine.Shift) []engine.Shift {
	out := shifts[:0]
	for _, s := range shifts {
		if err := h.Engine.Recalculate(&s); err != nil {
			h.log.Warn("skipping uncomputable shift", zap.String("shift_id", s.ID), zap.Error(err))
			continue
		}
		out = append(out, s)
	}
	return out
}

// =============================================================================
// RATES HANDLER
// =============================================================================

// Rates returns the rate table, holiday list, and SCHADS loading
// multipliers.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toRatesResponse(h.Engine.Rates(), h.Engine.Calendar(), h.Loadings))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(message, zap.Error(err))
	}
	writeJSON(w, status, resp)
}
