/*
Package postgres provides a PostgreSQL-backed core.EmployeeStore on pgx.

The store runs its SQL through Queryer, which *pgxpool.Pool, pgx.Tx and
pgxmock pools all satisfy. Money columns are NUMERIC. Values are sent as
text and cast in SQL, and read back with ::text, so decimals never pass
through float64.

USAGE:
  pool, err := postgres.NewPool(ctx, dsn)
  store := postgres.New(pool)
  if err := store.Migrate(ctx); err != nil { ... }
*/
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

const uniqueViolationCode = "23505"

// Queryer is the subset of pgxpool.Pool / pgx.Tx the store needs.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewPool creates a pgxpool.Pool for dsn and checks connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

// Store implements core.EmployeeStore using PostgreSQL.
type Store struct {
	db Queryer
}

// New creates a Store over db.
func New(db Queryer) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS employees (
    id               BIGSERIAL PRIMARY KEY,
    first_name       TEXT NOT NULL,
    last_name        TEXT NOT NULL,
    email            TEXT NOT NULL UNIQUE,
    kind             TEXT NOT NULL,
    base_salary      NUMERIC NOT NULL,
    annual_bonus     NUMERIC,
    weekly_hours     INTEGER,
    contracted_hours INTEGER,
    hourly_rate      NUMERIC,
    hired_at         TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
)`

// Migrate creates the employees table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

const insertEmployee = `
INSERT INTO employees (first_name, last_name, email, kind, base_salary,
    annual_bonus, weekly_hours, contracted_hours, hourly_rate, hired_at, updated_at)
VALUES ($1, $2, $3, $4, $5::text::numeric, $6::text::numeric, $7, $8, $9::text::numeric, $10, $11)
RETURNING id`

const upsertEmployee = `
INSERT INTO employees (id, first_name, last_name, email, kind, base_salary,
    annual_bonus, weekly_hours, contracted_hours, hourly_rate, hired_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7::text::numeric, $8, $9, $10::text::numeric, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    email = EXCLUDED.email,
    kind = EXCLUDED.kind,
    base_salary = EXCLUDED.base_salary,
    annual_bonus = EXCLUDED.annual_bonus,
    weekly_hours = EXCLUDED.weekly_hours,
    contracted_hours = EXCLUDED.contracted_hours,
    hourly_rate = EXCLUDED.hourly_rate,
    hired_at = EXCLUDED.hired_at,
    updated_at = EXCLUDED.updated_at`

// syncSequence keeps BIGSERIAL ahead of ids written explicitly by upserts.
const syncSequence = `
SELECT setval(pg_get_serial_sequence('employees', 'id'), GREATEST((SELECT MAX(id) FROM employees), 1))`

const selectEmployee = `
SELECT id, first_name, last_name, email, kind, base_salary::text,
       annual_bonus::text, weekly_hours, contracted_hours, hourly_rate::text, hired_at
  FROM employees`

const selectOwner = `SELECT id FROM employees WHERE email = $1`

// Save inserts e, or upserts it when it already has an id.
func (s *Store) Save(ctx context.Context, e *core.Employee) (*core.Employee, error) {
	if e == nil {
		return nil, core.Invalid("employee", "is required")
	}
	r := toRow(e)
	now := time.Now().UTC()

	if !e.ID().IsAssigned() {
		var id int64
		err := s.db.QueryRow(ctx, insertEmployee,
			r.firstName, r.lastName, r.email, r.kind, r.baseSalary,
			r.annualBonus, r.weeklyHours, r.contractedHours, r.hourlyRate, r.hiredAt, now,
		).Scan(&id)
		if err != nil {
			return nil, s.translateError(ctx, e, err)
		}
		return e.WithID(core.EmployeeID(id)), nil
	}

	if _, err := s.db.Exec(ctx, upsertEmployee,
		int64(e.ID()), r.firstName, r.lastName, r.email, r.kind, r.baseSalary,
		r.annualBonus, r.weeklyHours, r.contractedHours, r.hourlyRate, r.hiredAt, now,
	); err != nil {
		return nil, s.translateError(ctx, e, err)
	}
	if _, err := s.db.Exec(ctx, syncSequence); err != nil {
		return nil, fmt.Errorf("postgres: sync id sequence: %w", err)
	}
	return e, nil
}

// FindByID returns the employee with id, or nil if there is none.
func (s *Store) FindByID(ctx context.Context, id core.EmployeeID) (*core.Employee, error) {
	e, err := scanEmployee(s.db.QueryRow(ctx, selectEmployee+" WHERE id = $1", int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindAll returns every employee in id order.
func (s *Store) FindAll(ctx context.Context) ([]*core.Employee, error) {
	rows, err := s.db.Query(ctx, selectEmployee+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("postgres: list employees: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list employees: %w", err)
	}
	return employees, nil
}

// Reset deletes every employee and restarts ids at 1.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "TRUNCATE employees RESTART IDENTITY"); err != nil {
		return fmt.Errorf("postgres: reset: %w", err)
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
	hiredAt                          time.Time
}

func toRow(e *core.Employee) row {
	r := row{
		firstName:  e.FirstName(),
		lastName:   e.LastName(),
		email:      e.Email(),
		kind:       string(e.Kind()),
		baseSalary: e.BaseSalary().String(),
		hiredAt:    e.HiredAt(),
	}
	switch t := e.Terms().(type) {
	case core.FullTimeTerms:
		r.annualBonus = sql.NullString{String: t.AnnualBonus.String(), Valid: true}
	case core.PartTimeTerms:
		r.weeklyHours = sql.NullInt64{Int64: int64(t.WeeklyHours), Valid: true}
	case core.ContractorTerms:
		r.contractedHours = sql.NullInt64{Int64: int64(t.ContractedHours), Valid: true}
		r.hourlyRate = sql.NullString{String: t.HourlyRate.String(), Valid: true}
	}
	return r
}

func scanEmployee(sc pgx.Row) (*core.Employee, error) {
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

	var terms core.Terms
	switch core.Kind(r.kind) {
	case core.KindFullTime:
		bonus, err := nullDecimal(r.annualBonus)
		if err != nil {
			return nil, fmt.Errorf("employee %d: bad annual_bonus: %w", id, err)
		}
		terms = core.FullTimeTerms{AnnualBonus: bonus}
	case core.KindPartTime:
		terms = core.PartTimeTerms{WeeklyHours: int(r.weeklyHours.Int64)}
	case core.KindContractor:
		rate, err := nullDecimal(r.hourlyRate)
		if err != nil {
			return nil, fmt.Errorf("employee %d: bad hourly_rate: %w", id, err)
		}
		terms = core.ContractorTerms{ContractedHours: int(r.contractedHours.Int64), HourlyRate: rate}
	default:
		return nil, fmt.Errorf("employee %d: unknown employee kind %q", id, r.kind)
	}

	return core.RestoreEmployee(core.EmployeeID(id), core.Profile{
		FirstName:  r.firstName,
		LastName:   r.lastName,
		Email:      r.email,
		BaseSalary: base,
	}, terms, r.hiredAt)
}

func nullDecimal(ns sql.NullString) (decimal.Decimal, error) {
	if !ns.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(ns.String)
}

// translateError maps a failed write. A unique violation becomes a
// DuplicateEmailError naming the employee that owns the email.
func (s *Store) translateError(ctx context.Context, e *core.Employee, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return fmt.Errorf("postgres: save employee: %w", err)
	}
	dup := &core.DuplicateEmailError{Email: e.Email()}
	var owner int64
	if s.db.QueryRow(ctx, selectOwner, e.Email()).Scan(&owner) == nil {
		dup.ExistingID = core.EmployeeID(owner)
	}
	return dup
}
