/*
Package sqlite provides a SQLite-backed core.EmployeeStore.

PURPOSE:
  Persists employees across restarts. Behaves like core/store.Memory:
  an unassigned id inserts and gets the next id, an assigned id upserts.

KEY TABLES:
  employees: one row per employee. Type-specific terms live in nullable
             columns; money is stored as decimal TEXT so no precision is
             lost to REAL.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. An in-memory database is pinned to
  one connection, since each SQLite connection to ":memory:" would
  otherwise see its own empty database.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging) so readers do
  not block the writer.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  sys := payroll.NewSystem(store, notifier, payroll.Options{})

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - core/contracts.go: EmployeeStore
  - core/store/memory.go: In-memory implementation
  - store/postgres: PostgreSQL implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

// Store implements core.EmployeeStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		annual_bonus TEXT,
		weekly_hours INTEGER,
		contracted_hours INTEGER,
		hourly_rate TEXT,
		hired_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_kind ON employees(kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE (core.EmployeeStore interface)
// =============================================================================

const selectEmployee = `
	SELECT id, first_name, last_name, email, kind, base_salary,
	       annual_bonus, weekly_hours, contracted_hours, hourly_rate, hired_at
	FROM employees`

// Save inserts e, or replaces the row with e's id if it has one.
func (s *Store) Save(ctx context.Context, e *core.Employee) (*core.Employee, error) {
	if e == nil {
		return nil, core.Invalid("employee", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := toRow(e)
	now := time.Now().UTC().Format(time.RFC3339)

	if !e.ID().IsAssigned() {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO employees (first_name, last_name, email, kind, base_salary,
				annual_bonus, weekly_hours, contracted_hours, hourly_rate, hired_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.firstName, r.lastName, r.email, r.kind, r.baseSalary,
			r.annualBonus, r.weeklyHours, r.contractedHours, r.hourlyRate, r.hiredAt, now,
		)
		if err != nil {
			return nil, s.writeError(ctx, e, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted id: %w", err)
		}
		return e.WithID(core.EmployeeID(id)), nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, first_name, last_name, email, kind, base_salary,
			annual_bonus, weekly_hours, contracted_hours, hourly_rate, hired_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			kind = excluded.kind,
			base_salary = excluded.base_salary,
			annual_bonus = excluded.annual_bonus,
			weekly_hours = excluded.weekly_hours,
			contracted_hours = excluded.contracted_hours,
			hourly_rate = excluded.hourly_rate,
			hired_at = excluded.hired_at,
			updated_at = excluded.updated_at`,
		int64(e.ID()), r.firstName, r.lastName, r.email, r.kind, r.baseSalary,
		r.annualBonus, r.weeklyHours, r.contractedHours, r.hourlyRate, r.hiredAt, now,
	)
	if err != nil {
		return nil, s.writeError(ctx, e, err)
	}
	return e, nil
}

// FindByID returns the employee with id, or nil if there is none.
func (s *Store) FindByID(ctx context.Context, id core.EmployeeID) (*core.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectEmployee+" WHERE id = ?", int64(id))
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindAll returns every employee in id order.
func (s *Store) FindAll(ctx context.Context) ([]*core.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectEmployee+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []*core.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// Reset deletes every employee and restarts id assignment at 1.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []string{
		"DELETE FROM employees",
		"DELETE FROM sqlite_sequence WHERE name = 'employees'",
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// ROW MAPPING
// =============================================================================

type row struct {
	firstName, lastName, email, kind string
	baseSalary                       string
	annualBonus                      sql.NullString
	weeklyHours                      sql.NullInt64
	contractedHours                  sql.NullInt64
	hourlyRate                       sql.NullString
	hiredAt                          string
}

func toRow(e *core.Employee) row {
	r := row{
		firstName:  e.FirstName(),
		lastName:   e.LastName(),
		email:      e.Email(),
		kind:       string(e.Kind()),
		baseSalary: e.BaseSalary().String(),
		hiredAt:    e.HiredAt().Format(time.RFC3339Nano),
	}
	switch t := e.Terms().(type) {
	case core.FullTimeTerms:
		r.annualBonus = nullString(t.AnnualBonus.String())
	case core.PartTimeTerms:
		r.weeklyHours = sql.NullInt64{Int64: int64(t.WeeklyHours), Valid: true}
	case core.ContractorTerms:
		r.contractedHours = sql.NullInt64{Int64: int64(t.ContractedHours), Valid: true}
		r.hourlyRate = nullString(t.HourlyRate.String())
	}
	return r
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(sc scanner) (*core.Employee, error) {
	var id int64
	var r row
	if err := sc.Scan(&id, &r.firstName, &r.lastName, &r.email, &r.kind, &r.baseSalary,
		&r.annualBonus, &r.weeklyHours, &r.contractedHours, &r.hourlyRate, &r.hiredAt); err != nil {
		return nil, err
	}

	base, err := decimal.NewFromString(r.baseSalary)
	if err != nil {
		return nil, fmt.Errorf("employee %d: bad base_salary %q: %w", id, r.baseSalary, err)
	}
	hiredAt, err := time.Parse(time.RFC3339Nano, r.hiredAt)
	if err != nil {
		return nil, fmt.Errorf("employee %d: bad hired_at %q: %w", id, r.hiredAt, err)
	}
	terms, err := termsFromRow(r)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}

	return core.RestoreEmployee(core.EmployeeID(id), core.Profile{
		FirstName:  r.firstName,
		LastName:   r.lastName,
		Email:      r.email,
		BaseSalary: base,
	}, terms, hiredAt)
}

func termsFromRow(r row) (core.Terms, error) {
	switch core.Kind(r.kind) {
	case core.KindFullTime:
		bonus, err := parseDecimal(r.annualBonus)
		if err != nil {
			return nil, fmt.Errorf("bad annual_bonus: %w", err)
		}
		return core.FullTimeTerms{AnnualBonus: bonus}, nil
	case core.KindPartTime:
		return core.PartTimeTerms{WeeklyHours: int(r.weeklyHours.Int64)}, nil
	case core.KindContractor:
		rate, err := parseDecimal(r.hourlyRate)
		if err != nil {
			return nil, fmt.Errorf("bad hourly_rate: %w", err)
		}
		return core.ContractorTerms{ContractedHours: int(r.contractedHours.Int64), HourlyRate: rate}, nil
	default:
		return nil, fmt.Errorf("unknown employee kind %q", r.kind)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(ns sql.NullString) (decimal.Decimal, error) {
	if !ns.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(ns.String)
}

// writeError maps a failed write. A unique violation becomes a
// DuplicateEmailError naming the employee that owns the email.
func (s *Store) writeError(ctx context.Context, e *core.Employee, err error) error {
	if !isUniqueConstraintError(err) {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	dup := &core.DuplicateEmailError{Email: e.Email()}
	var owner int64
	if s.db.QueryRowContext(ctx, "SELECT id FROM employees WHERE email = ?", e.Email()).Scan(&owner) == nil {
		dup.ExistingID = core.EmployeeID(owner)
	}
	return dup
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
