/*
employee.go - Employee entity and its employment terms

PURPOSE:
  The Employee record shared by every package. Fields are private and
  read through accessors, so a constructed Employee never changes. The
  repository hands back a copy with the assigned id (WithID) instead of
  mutating the caller's value.

EMPLOYMENT TERMS:
  Terms is a closed set of variants. Code that needs per-type behavior
  switches on the concrete type; there is no other subtype check.

    FullTimeTerms:   annual bonus (>= 0)
    PartTimeTerms:   weekly hours (1-39)
    ContractorTerms: contracted hours (> 0), hourly rate (> 0)

LIFECYCLE:
  new (ID == UnassignedID) -> assigned (ID > 0) on first Save.

USAGE:
  e, err := core.NewFullTime(core.Profile{
      FirstName:  "Juan",
      LastName:   "Pérez",
      Email:      "juan.perez@empresa.com",
      BaseSalary: decimal.NewFromInt(5000),
  }, decimal.NewFromInt(1200))

SEE ALSO:
  - types.go: Kind and Params
  - core/store/memory.go: Assigns ids
*/
package core

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Weekly hour bounds for part-time employees.
const (
	MinPartTimeHours = 1
	MaxPartTimeHours = 39
)

// =============================================================================
// TERMS - Closed set of employment variants
// =============================================================================

// Terms carries the per-type calculation parameters of an employee.
type Terms interface {
	Kind() Kind
	validate() error
}

// FullTimeTerms: salaried with an optional annual bonus.
type FullTimeTerms struct {
	AnnualBonus decimal.Decimal
}

func (FullTimeTerms) Kind() Kind { return KindFullTime }

func (t FullTimeTerms) validate() error {
	if t.AnnualBonus.IsNegative() {
		return Invalid("annual_bonus", "cannot be negative")
	}
	return nil
}

// PartTimeTerms: paid a share of base salary proportional to weekly hours.
type PartTimeTerms struct {
	WeeklyHours int
}

func (PartTimeTerms) Kind() Kind { return KindPartTime }

func (t PartTimeTerms) validate() error {
	if t.WeeklyHours < MinPartTimeHours || t.WeeklyHours > MaxPartTimeHours {
		return Invalid("weekly_hours", "must be between %d and %d", MinPartTimeHours, MaxPartTimeHours)
	}
	return nil
}

// ContractorTerms: paid by the hour.
type ContractorTerms struct {
	ContractedHours int
	HourlyRate      decimal.Decimal
}

func (ContractorTerms) Kind() Kind { return KindContractor }

func (t ContractorTerms) validate() error {
	if t.ContractedHours <= 0 {
		return Invalid("contracted_hours", "must be greater than 0")
	}
	if !t.HourlyRate.IsPositive() {
		return Invalid("hourly_rate", "must be greater than 0")
	}
	return nil
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Profile is the common part of every employee.
type Profile struct {
	FirstName  string
	LastName   string
	Email      string
	BaseSalary decimal.Decimal
}

// Employee is an immutable employee record.
type Employee struct {
	id         EmployeeID
	firstName  string
	lastName   string
	email      string
	baseSalary decimal.Decimal
	hiredAt    time.Time
	terms      Terms
}

// NewEmployee validates p and t and returns a new, unsaved employee
// hired now.
func NewEmployee(p Profile, t Terms) (*Employee, error) {
	return build(UnassignedID, p, t, time.Now().UTC())
}

// NewFullTime creates an unsaved full-time employee.
func NewFullTime(p Profile, annualBonus decimal.Decimal) (*Employee, error) {
	return NewEmployee(p, FullTimeTerms{AnnualBonus: annualBonus})
}

// NewPartTime creates an unsaved part-time employee.
func NewPartTime(p Profile, weeklyHours int) (*Employee, error) {
	return NewEmployee(p, PartTimeTerms{WeeklyHours: weeklyHours})
}

// NewContractor creates an unsaved contractor.
func NewContractor(p Profile, contractedHours int, hourlyRate decimal.Decimal) (*Employee, error) {
	return NewEmployee(p, ContractorTerms{ContractedHours: contractedHours, HourlyRate: hourlyRate})
}

// RestoreEmployee rebuilds a stored employee with its original id and
// hire time. Stores use it when reading rows back.
func RestoreEmployee(id EmployeeID, p Profile, t Terms, hiredAt time.Time) (*Employee, error) {
	return build(id, p, t, hiredAt.UTC())
}

func build(id EmployeeID, p Profile, t Terms, hiredAt time.Time) (*Employee, error) {
	if id < 0 {
		return nil, Invalid("id", "cannot be negative")
	}
	first := strings.TrimSpace(p.FirstName)
	if first == "" {
		return nil, Invalid("first_name", "cannot be empty")
	}
	last := strings.TrimSpace(p.LastName)
	if last == "" {
		return nil, Invalid("last_name", "cannot be empty")
	}
	email, err := NormalizeEmail(p.Email)
	if err != nil {
		return nil, err
	}
	if p.BaseSalary.IsNegative() {
		return nil, Invalid("base_salary", "cannot be negative")
	}
	if t == nil {
		return nil, Invalid("terms", "are required")
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &Employee{
		id:         id,
		firstName:  first,
		lastName:   last,
		email:      email,
		baseSalary: p.BaseSalary,
		hiredAt:    hiredAt,
		terms:      t,
	}, nil
}

// NormalizeEmail trims and lower-cases s after checking it is a bare
// address (no display name).
func NormalizeEmail(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", Invalid("email", "cannot be empty")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed || !hasDottedDomain(addr.Address) {
		return "", Invalid("email", "%q is not a valid address", s)
	}
	return strings.ToLower(addr.Address), nil
}

func hasDottedDomain(addr string) bool {
	at := strings.LastIndex(addr, "@")
	domain := addr[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

func (e *Employee) ID() EmployeeID              { return e.id }
func (e *Employee) FirstName() string           { return e.firstName }
func (e *Employee) LastName() string            { return e.lastName }
func (e *Employee) Email() string               { return e.email }
func (e *Employee) BaseSalary() decimal.Decimal { return e.baseSalary }
func (e *Employee) HiredAt() time.Time          { return e.hiredAt }
func (e *Employee) Terms() Terms                { return e.terms }
func (e *Employee) Kind() Kind                  { return e.terms.Kind() }

// FullName returns "First Last".
func (e *Employee) FullName() string {
	return e.firstName + " " + e.lastName
}

// WithID returns a copy of e carrying id.
func (e *Employee) WithID(id EmployeeID) *Employee {
	cp := *e
	cp.id = id
	return &cp
}

// Params returns the salary calculation parameters for e's terms.
func (e *Employee) Params() Params {
	switch t := e.terms.(type) {
	case FullTimeTerms:
		return Params{ParamAnnualBonus: t.AnnualBonus}
	case PartTimeTerms:
		return Params{ParamWeeklyHours: decimal.NewFromInt(int64(t.WeeklyHours))}
	case ContractorTerms:
		return Params{
			ParamContractedHours: decimal.NewFromInt(int64(t.ContractedHours)),
			ParamHourlyRate:      t.HourlyRate,
		}
	default:
		return Params{}
	}
}
