/*
Package sqlite provides the SQLite-backed persistence collaborator.

PURPOSE:
  Stores participants and shifts. The engine never talks to this package
  directly: the API layer fetches entities, hands them to the engine, and
  persists the engine's derived fields back here. Derived columns are a
  cache of the engine's output - the source columns stay authoritative and
  every read of a shift is safe to recompute from them.

NOT STORED:
  Compliance flags. They are always recomputed from the current shift set
  for a worker/period, never persisted independently of the shifts that
  produced them. The same goes for budget rollups.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the single SQLite handle.
  Opened with WAL mode so readers don't block.

USAGE:
  store, err := sqlite.New("./data/roster.db")   // or ":memory:" for tests
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - engine/types.go: Participant and Shift definitions
  - api/handlers.go: The only consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/roster-engine/engine"
)

const dateFormat = "2006-01-02"

// Store persists participants and shifts in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if needed) a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ndis_number TEXT,
		plan_start TEXT,
		plan_end TEXT,
		sil_budget TEXT NOT NULL DEFAULT '0',
		community_access_budget TEXT NOT NULL DEFAULT '0',
		transport_budget TEXT NOT NULL DEFAULT '0',
		support_ratio TEXT NOT NULL DEFAULT '1:1',
		property TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		participant_id TEXT,
		participant_name TEXT,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		line_item_code TEXT,
		support_ratio TEXT,
		staff_name TEXT,
		notes TEXT,

		-- Derived columns (engine cache, recomputed on every write)
		hours TEXT NOT NULL DEFAULT '0',
		day_type TEXT,
		time_of_day TEXT,
		cost TEXT NOT NULL DEFAULT '0',
		cost_status TEXT NOT NULL DEFAULT 'priced',
		cost_reason TEXT,
		week_start TEXT,

		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_date ON shifts(date);
	CREATE INDEX IF NOT EXISTS idx_shifts_participant ON shifts(participant_id);
	CREATE INDEX IF NOT EXISTS idx_shifts_staff ON shifts(staff_name);
	CREATE INDEX IF NOT EXISTS idx_shifts_week ON shifts(week_start);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PARTICIPANTS
// =============================================================================

// SaveParticipant inserts or updates a participant.
func (s *Store) SaveParticipant(ctx context.Context, p engine.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO participants
		(id, name, ndis_number, plan_start, plan_end, sil_budget,
		 community_access_budget, transport_budget, support_ratio, property, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			ndis_number = excluded.ndis_number,
			plan_start = excluded.plan_start,
			plan_end = excluded.plan_end,
			sil_budget = excluded.sil_budget,
			community_access_budget = excluded.community_access_budget,
			transport_budget = excluded.transport_budget,
			support_ratio = excluded.support_ratio,
			property = excluded.property,
			notes = excluded.notes
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.NDISNumber,
		formatDate(p.PlanStart), formatDate(p.PlanEnd),
		p.SILBudget.String(), p.CommunityAccessBudget.String(), p.TransportBudget.String(),
		p.SupportRatio, p.Property, p.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetParticipant retrieves a participant by ID. Returns nil when absent.
func (s *Store) GetParticipant(ctx context.Context, id string) (*engine.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, ndis_number, plan_start, plan_end, sil_budget,
		       community_access_budget, transport_budget, support_ratio, property, notes
		FROM participants WHERE id = ?`, id)

	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListParticipants returns all participants ordered by name.
func (s *Store) ListParticipants(ctx context.Context) ([]engine.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, ndis_number, plan_start, plan_end, sil_budget,
		       community_access_budget, transport_budget, support_ratio, property, notes
		FROM participants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []engine.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

// DeleteParticipant removes a participant.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (*engine.Participant, error) {
	var p engine.Participant
	var planStart, planEnd, sil, ca, trans sql.NullString
	var ndis, ratio, property, notes sql.NullString

	err := row.Scan(&p.ID, &p.Name, &ndis, &planStart, &planEnd,
		&sil, &ca, &trans, &ratio, &property, &notes)
	if err != nil {
		return nil, err
	}

	p.NDISNumber = ndis.String
	p.SupportRatio = ratio.String
	p.Property = property.String
	p.Notes = notes.String
	p.PlanStart = parseDate(planStart.String)
	p.PlanEnd = parseDate(planEnd.String)
	p.SILBudget = parseDecimal(sil.String)
	p.CommunityAccessBudget = parseDecimal(ca.String)
	p.TransportBudget = parseDecimal(trans.String)
	return &p, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

// SaveShift inserts or updates a shift, derived columns included.
func (s *Store) SaveShift(ctx context.Context, sh engine.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO shifts
		(id, participant_id, participant_name, date, start_time, end_time,
		 line_item_code, support_ratio, staff_name, notes,
		 hours, day_type, time_of_day, cost, cost_status, cost_reason, week_start,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			participant_id = excluded.participant_id,
			participant_name = excluded.participant_name,
			date = excluded.date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			line_item_code = excluded.line_item_code,
			support_ratio = excluded.support_ratio,
			staff_name = excluded.staff_name,
			notes = excluded.notes,
			hours = excluded.hours,
			day_type = excluded.day_type,
			time_of_day = excluded.time_of_day,
			cost = excluded.cost,
			cost_status = excluded.cost_status,
			cost_reason = excluded.cost_reason,
			week_start = excluded.week_start,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		sh.ID, sh.ParticipantID, sh.ParticipantName,
		formatDate(sh.Date), sh.StartTime, sh.EndTime,
		sh.LineItemCode, sh.SupportRatio, sh.StaffName, sh.Notes,
		sh.Hours.String(), string(sh.DayType), string(sh.TimeOfDay),
		sh.Cost.Amount.String(), string(sh.Cost.Status), sh.Cost.Reason,
		formatDate(sh.WeekStart),
		now, now,
	)
	return err
}

// GetShift retrieves a shift by ID. Returns nil when absent.
func (s *Store) GetShift(ctx context.Context, id string) (*engine.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, shiftSelect+" WHERE id = ?", id)
	sh, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// ListShifts returns shifts filtered by an optional inclusive date range
// and optional participant, ordered by date then start time.
func (s *Store) ListShifts(ctx context.Context, from, to time.Time, participantID string) ([]engine.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := shiftSelect + " WHERE 1=1"
	var args []any
	if !from.IsZero() {
		query += " AND date >= ?"
		args = append(args, formatDate(from))
	}
	if !to.IsZero() {
		query += " AND date <= ?"
		args = append(args, formatDate(to))
	}
	if participantID != "" {
		query += " AND participant_id = ?"
		args = append(args, participantID)
	}
	query += " ORDER BY date, start_time, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []engine.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *sh)
	}
	return shifts, rows.Err()
}

// DeleteShift removes a shift.
func (s *Store) DeleteShift(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", id)
	return err
}

const shiftSelect = `
	SELECT id, participant_id, participant_name, date, start_time, end_time,
	       line_item_code, support_ratio, staff_name, notes,
	       hours, day_type, time_of_day, cost, cost_status, cost_reason, week_start
	FROM shifts`

func scanShift(row rowScanner) (*engine.Shift, error) {
	var sh engine.Shift
	var date, weekStart string
	var pid, pname, lineItem, ratio, staff, notes sql.NullString
	var hours, dayType, timeOfDay, cost, costStatus, costReason sql.NullString

	err := row.Scan(&sh.ID, &pid, &pname, &date, &sh.StartTime, &sh.EndTime,
		&lineItem, &ratio, &staff, &notes,
		&hours, &dayType, &timeOfDay, &cost, &costStatus, &costReason, &weekStart)
	if err != nil {
		return nil, err
	}

	sh.ParticipantID = pid.String
	sh.ParticipantName = pname.String
	sh.LineItemCode = lineItem.String
	sh.SupportRatio = ratio.String
	sh.StaffName = staff.String
	sh.Notes = notes.String
	sh.Date = parseDate(date)
	sh.WeekStart = parseDate(weekStart)
	sh.Hours = parseDecimal(hours.String)
	sh.DayType = engine.DayType(dayType.String)
	sh.TimeOfDay = engine.TimeOfDay(timeOfDay.String)
	sh.Cost = engine.CostResult{
		Amount: parseDecimal(cost.String),
		Status: engine.CostStatus(costStatus.String),
		Reason: costReason.String,
	}
	return &sh, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateFormat, s)
	return t
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
