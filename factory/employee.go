/*
Package factory converts employee definitions into core.Employee values.

PURPOSE:
  Employees arrive as JSON (API request bodies, salary presets) or as YAML
  seed files. The factory validates the definition, resolves the type tag
  and builds the matching core.Terms, so callers never switch on types.

JSON SCHEMA:
  {
    "first_name": "Juan",
    "last_name": "Pérez",
    "email": "juan.perez@example.com",
    "type": "FullTime",
    "base_salary": 5000,
    "annual_bonus": 1200
  }

  PartTime uses "weekly_hours"; Contractor uses "contracted_hours" and
  "hourly_rate". "id" and "hire_date" (YYYY-MM-DD) are optional and only
  used when restoring a known employee.

TYPE TAGS:
  Matching ignores case, spaces, '-' and '_': "full_time", "Full-Time" and
  "FULLTIME" all mean FullTime.

YAML SEED:
  employees:
    - first_name: María
      last_name: García
      email: maria.garcia@example.com
      type: part_time
      base_salary: 3000
      weekly_hours: 25

USAGE:
  f := factory.NewEmployeeFactory()
  e, err := f.ParseEmployee(salary.FullTimeJSON("Juan", "Pérez", "juan.perez@example.com", 5000, 1200))
  staff, err := f.ParseSeedYAML(data)

SEE ALSO:
  - salary/presets.go: JSON builders per employee type
  - core/employee.go: Employee and Terms
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"gopkg.in/yaml.v3"
)

// HireDateLayout is the layout of hire_date.
const HireDateLayout = time.DateOnly

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// EmployeeJSON is the wire form of an employee definition.
type EmployeeJSON struct {
	ID              int64   `json:"id,omitempty" yaml:"id,omitempty"`
	FirstName       string  `json:"first_name" yaml:"first_name"`
	LastName        string  `json:"last_name" yaml:"last_name"`
	Email           string  `json:"email" yaml:"email"`
	Type            string  `json:"type" yaml:"type"`
	BaseSalary      float64 `json:"base_salary" yaml:"base_salary"`
	AnnualBonus     float64 `json:"annual_bonus,omitempty" yaml:"annual_bonus,omitempty"`
	WeeklyHours     int     `json:"weekly_hours,omitempty" yaml:"weekly_hours,omitempty"`
	ContractedHours int     `json:"contracted_hours,omitempty" yaml:"contracted_hours,omitempty"`
	HourlyRate      float64 `json:"hourly_rate,omitempty" yaml:"hourly_rate,omitempty"`
	HireDate        string  `json:"hire_date,omitempty" yaml:"hire_date,omitempty"`
}

// SeedFile is the top-level YAML seed document.
type SeedFile struct {
	Employees []EmployeeJSON `yaml:"employees"`
}

// =============================================================================
// EMPLOYEE FACTORY
// =============================================================================

// EmployeeFactory converts definitions to employees.
type EmployeeFactory struct{}

// NewEmployeeFactory creates a new employee factory.
func NewEmployeeFactory() *EmployeeFactory {
	return &EmployeeFactory{}
}

// ParseEmployee parses a JSON definition.
func (f *EmployeeFactory) ParseEmployee(jsonStr string) (*core.Employee, error) {
	var ej EmployeeJSON
	if err := json.Unmarshal([]byte(jsonStr), &ej); err != nil {
		return nil, core.Invalid("body", "malformed employee JSON: %v", err)
	}
	return f.FromJSON(ej)
}

// FromJSON builds an employee from its definition. A definition with an
// id or hire date restores that employee; otherwise a new, unsaved
// employee hired now is returned.
func (f *EmployeeFactory) FromJSON(ej EmployeeJSON) (*core.Employee, error) {
	kind, err := ParseKind(ej.Type)
	if err != nil {
		return nil, err
	}

	profile := core.Profile{
		FirstName:  ej.FirstName,
		LastName:   ej.LastName,
		Email:      ej.Email,
		BaseSalary: decimal.NewFromFloat(ej.BaseSalary),
	}
	terms := termsFor(kind, ej)

	if ej.ID == 0 && ej.HireDate == "" {
		return core.NewEmployee(profile, terms)
	}

	hiredAt := time.Now().UTC()
	if ej.HireDate != "" {
		hiredAt, err = time.Parse(HireDateLayout, ej.HireDate)
		if err != nil {
			return nil, core.Invalid("hire_date", "%q is not a YYYY-MM-DD date", ej.HireDate)
		}
	}
	return core.RestoreEmployee(core.EmployeeID(ej.ID), profile, terms, hiredAt)
}

// ToJSON converts an employee back to its definition.
func (f *EmployeeFactory) ToJSON(e *core.Employee) EmployeeJSON {
	ej := EmployeeJSON{
		ID:        int64(e.ID()),
		FirstName: e.FirstName(),
		LastName:  e.LastName(),
		Email:     e.Email(),
		Type:      string(e.Kind()),
		HireDate:  e.HiredAt().Format(HireDateLayout),
	}
	ej.BaseSalary, _ = e.BaseSalary().Float64()

	switch t := e.Terms().(type) {
	case core.FullTimeTerms:
		ej.AnnualBonus, _ = t.AnnualBonus.Float64()
	case core.PartTimeTerms:
		ej.WeeklyHours = t.WeeklyHours
	case core.ContractorTerms:
		ej.ContractedHours = t.ContractedHours
		ej.HourlyRate, _ = t.HourlyRate.Float64()
	}
	return ej
}

// ParseSeedYAML parses a YAML seed document. It stops at the first
// invalid entry and names its position.
func (f *EmployeeFactory) ParseSeedYAML(data []byte) ([]*core.Employee, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}

	employees := make([]*core.Employee, 0, len(seed.Employees))
	for i, ej := range seed.Employees {
		e, err := f.FromJSON(ej)
		if err != nil {
			return nil, fmt.Errorf("seed employee #%d: %w", i+1, err)
		}
		employees = append(employees, e)
	}
	return employees, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseKind resolves a type tag, ignoring case and separators.
func ParseKind(s string) (core.Kind, error) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	switch key {
	case "fulltime":
		return core.KindFullTime, nil
	case "parttime":
		return core.KindPartTime, nil
	case "contractor":
		return core.KindContractor, nil
	case "":
		return "", core.Invalid("type", "is required")
	default:
		return "", core.Invalid("type", "unknown employee type %q", s)
	}
}

func termsFor(kind core.Kind, ej EmployeeJSON) core.Terms {
	switch kind {
	case core.KindPartTime:
		return core.PartTimeTerms{WeeklyHours: ej.WeeklyHours}
	case core.KindContractor:
		return core.ContractorTerms{
			ContractedHours: ej.ContractedHours,
			HourlyRate:      decimal.NewFromFloat(ej.HourlyRate),
		}
	default:
		return core.FullTimeTerms{AnnualBonus: decimal.NewFromFloat(ej.AnnualBonus)}
	}
}
