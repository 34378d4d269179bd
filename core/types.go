/*
types.go - Shared value types for the payroll engine

PURPOSE:
  Identifiers, employee kinds and the calculation parameter mapping that
  every other package speaks in. Money is always decimal.Decimal.

KEY TYPES:
  EmployeeID:  Repository-assigned identifier (0 = not yet persisted)
  Kind:        Employee type tag ("FullTime", "PartTime", "Contractor")
  Params:      Named calculation parameters handed to salary strategies

SEE ALSO:
  - employee.go: Employee entity and its terms variants
  - contracts.go: Strategy and store interfaces
*/
package core

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID identifies an employee within a repository.
type EmployeeID int64

// UnassignedID marks an employee that has not been saved yet.
const UnassignedID EmployeeID = 0

// IsAssigned reports whether the repository has given this id out.
func (id EmployeeID) IsAssigned() bool { return id > 0 }

func (id EmployeeID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseEmployeeID parses a decimal id, e.g. from a URL path.
func ParseEmployeeID(s string) (EmployeeID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "id", Message: "must be an integer"}
	}
	return EmployeeID(n), nil
}

// =============================================================================
// EMPLOYEE KINDS
// =============================================================================

// Kind is the employee type tag used to look up salary strategies.
type Kind string

const (
	KindFullTime   Kind = "FullTime"
	KindPartTime   Kind = "PartTime"
	KindContractor Kind = "Contractor"
)

// Label returns a human-readable name for reports.
func (k Kind) Label() string {
	switch k {
	case KindFullTime:
		return "Full-Time"
	case KindPartTime:
		return "Part-Time"
	case KindContractor:
		return "Contractor"
	default:
		return string(k)
	}
}

// =============================================================================
// CALCULATION PARAMETERS
// =============================================================================

// Parameter keys understood by the built-in salary strategies.
const (
	ParamAnnualBonus     = "annual_bonus"
	ParamWeeklyHours     = "weekly_hours"
	ParamContractedHours = "contracted_hours"
	ParamHourlyRate      = "hourly_rate"
)

// Params is the calculation parameter mapping for a salary strategy.
type Params map[string]decimal.Decimal

// Get returns the value for key, or def when absent.
func (p Params) Get(key string, def decimal.Decimal) decimal.Decimal {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}
