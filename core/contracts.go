/*
contracts.go - Interfaces between the payroll engine and its collaborators

PURPOSE:
  Defines the strategy, notification and persistence contracts. The
  payroll System depends only on these; concrete implementations live in
  salary/, report/, notify/ and store/.

KEY INTERFACES:
  SalaryStrategy:  (base salary, params) -> salary
  ReportStrategy:  employees -> serialized report
  Notifier:        (destination, message) -> delivered?
  EmployeeStore:   Save / FindByID / FindAll

SEE ALSO:
  - payroll/system.go: Composes these
*/
package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STRATEGIES
// =============================================================================

// SalaryStrategy computes a salary. Implementations are stateless.
type SalaryStrategy interface {
	Calculate(base decimal.Decimal, params Params) (decimal.Decimal, error)
}

// SalaryFunc adapts a function to SalaryStrategy.
type SalaryFunc func(base decimal.Decimal, params Params) (decimal.Decimal, error)

func (f SalaryFunc) Calculate(base decimal.Decimal, params Params) (decimal.Decimal, error) {
	return f(base, params)
}

// ReportStrategy renders employees into a report. It fails with a
// ValidationError when employees is empty.
type ReportStrategy interface {
	Generate(employees []*Employee) (string, error)
}

// ReportFunc adapts a function to ReportStrategy.
type ReportFunc func(employees []*Employee) (string, error)

func (f ReportFunc) Generate(employees []*Employee) (string, error) {
	return f(employees)
}

// ReportMeta is optionally implemented by report strategies that know how
// their output should be served.
type ReportMeta interface {
	ContentType() string
	Extension() string
}

// =============================================================================
// NOTIFICATION
// =============================================================================

// Notifier delivers a message to a destination (email address, phone...).
type Notifier interface {
	Send(ctx context.Context, destination, message string) (bool, error)
}

// Channel is a named Notifier, so failures can say which channel failed.
type Channel interface {
	Notifier
	Name() string
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// EmployeeStore persists employees.
type EmployeeStore interface {
	// Save stores e. An unassigned id gets the next id; an assigned id
	// overwrites. Returns the stored copy.
	Save(ctx context.Context, e *Employee) (*Employee, error)

	// FindByID returns nil, nil if no employee has id.
	FindByID(ctx context.Context, id EmployeeID) (*Employee, error)

	// FindAll returns every employee in id order.
	FindAll(ctx context.Context) ([]*Employee, error)
}

// Resetter is implemented by stores that can be wiped (demo/tests).
type Resetter interface {
	Reset(ctx context.Context) error
}
