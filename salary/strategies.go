/*
Package salary provides the built-in salary strategies and their registry.

BUILT-IN STRATEGIES:
  FullTime:   base + annual_bonus / 12
  PartTime:   base * weekly_hours / 40   (weekly_hours defaults to 20)
  Contractor: contracted_hours * hourly_rate   (base is ignored)

Strategies are stateless values; the same instance can be registered
under several tags (e.g. "Freelancer" -> Contractor).

EXAMPLE:
  s, _ := salary.NewDefaultRegistry().Resolve("PartTime")
  pay, err := s.Calculate(decimal.NewFromInt(3000), core.Params{
      core.ParamWeeklyHours: decimal.NewFromInt(25),
  })
  // pay == 1875

SEE ALSO:
  - registry.go: Tag -> strategy lookup
  - core/contracts.go: SalaryStrategy interface
*/
package salary

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

var (
	monthsPerYear      = decimal.NewFromInt(12)
	fullTimeWeekHours  = decimal.NewFromInt(40)
	defaultWeeklyHours = decimal.NewFromInt(20)
)

// =============================================================================
// BUILT-IN STRATEGIES
// =============================================================================

// FullTime pays the monthly base plus a twelfth of the annual bonus.
var FullTime core.SalaryStrategy = core.SalaryFunc(func(base decimal.Decimal, params core.Params) (decimal.Decimal, error) {
	if base.IsNegative() {
		return decimal.Zero, core.Invalid("base_salary", "cannot be negative")
	}
	bonus := params.Get(core.ParamAnnualBonus, decimal.Zero)
	if bonus.IsNegative() {
		return decimal.Zero, core.Invalid(core.ParamAnnualBonus, "cannot be negative")
	}
	return base.Add(bonus.Div(monthsPerYear)), nil
})

// PartTime pays base in proportion to a 40 hour week.
var PartTime core.SalaryStrategy = core.SalaryFunc(func(base decimal.Decimal, params core.Params) (decimal.Decimal, error) {
	if base.IsNegative() {
		return decimal.Zero, core.Invalid("base_salary", "cannot be negative")
	}
	hours := params.Get(core.ParamWeeklyHours, defaultWeeklyHours)
	if !hours.IsPositive() {
		return decimal.Zero, core.Invalid(core.ParamWeeklyHours, "must be greater than 0")
	}
	return base.Mul(hours).Div(fullTimeWeekHours), nil
})

// Contractor pays contracted hours at the hourly rate.
var Contractor core.SalaryStrategy = core.SalaryFunc(func(_ decimal.Decimal, params core.Params) (decimal.Decimal, error) {
	hours := params.Get(core.ParamContractedHours, decimal.Zero)
	if !hours.IsPositive() {
		return decimal.Zero, core.Invalid(core.ParamContractedHours, "must be greater than 0")
	}
	rate := params.Get(core.ParamHourlyRate, decimal.Zero)
	if !rate.IsPositive() {
		return decimal.Zero, core.Invalid(core.ParamHourlyRate, "must be greater than 0")
	}
	return hours.Mul(rate), nil
})

// Defaults returns the built-in strategies keyed by employee kind.
func Defaults() map[string]core.SalaryStrategy {
	return map[string]core.SalaryStrategy{
		string(core.KindFullTime):   FullTime,
		string(core.KindPartTime):   PartTime,
		string(core.KindContractor): Contractor,
	}
}
