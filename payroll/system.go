/*
Package payroll is the entry point to the payroll engine.

PURPOSE:
  System composes the employee store, the salary and report registries
  and a notifier behind a small API: register employees, compute
  salaries, pay one employee, run the full payroll, summarize, report.

FAILURE POLICY:
  - Validation and lookup errors are returned to the caller.
  - A notification failure never fails a payment. ProcessPayment still
    succeeds and records NotificationSent=false plus the error text.
  - RunPayroll never stops on one employee's failure. Each failure
    (including a panic while paying that employee) becomes an entry in
    RunResult.Errors and the run continues.

USAGE:
  sys := payroll.NewSystem(store.NewMemory(), notifier, payroll.Options{})
  e, _ := core.NewFullTime(profile, decimal.NewFromInt(1200))
  e, err := sys.RegisterEmployee(ctx, e)
  run, err := sys.RunPayroll(ctx)

SEE ALSO:
  - results.go: PaymentResult, RunResult, Summary, Report
  - salary/, report/, notify/: Strategies and channels
*/
package payroll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/report"
	"github.com/warp/payroll-engine/salary"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Options configures a System. Zero values get defaults.
type Options struct {
	Salaries *salary.Registry  // default: built-in strategies
	Reports  *report.Registry  // default: JSON, PDF, EXCEL
	Clock    Clock             // default: UTC wall clock
	Logger   *zerolog.Logger   // default: disabled
	Metrics  *metrics.Recorder // default: none
}

// System is the payroll façade.
type System struct {
	store    core.EmployeeStore
	notifier core.Notifier
	salaries *salary.Registry
	reports  *report.Registry
	clock    Clock
	log      zerolog.Logger
	metrics  *metrics.Recorder

	// registering serializes the email check and save; copies made by
	// WithNotifier share it along with the store.
	registering *sync.Mutex
}

// NewSystem wires a System over store and notifier.
func NewSystem(store core.EmployeeStore, notifier core.Notifier, opts Options) *System {
	s := &System{
		store:    store,
		notifier: notifier,
		salaries: opts.Salaries,
		reports:  opts.Reports,
		clock:    opts.Clock,
		log:      zerolog.Nop(),
		metrics:  opts.Metrics,

		registering: &sync.Mutex{},
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.salaries == nil {
		s.salaries = salary.NewDefaultRegistry()
	}
	if s.reports == nil {
		s.reports = report.NewDefaultRegistry(s.clock.Now)
	}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "payroll").Logger()
	}
	return s
}

// WithNotifier returns a System sharing s's store and registries but
// notifying through n.
func (s *System) WithNotifier(n core.Notifier) *System {
	cp := *s
	cp.notifier = n
	return &cp
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// RegisterEmployee saves e unless another employee already uses its email.
func (s *System) RegisterEmployee(ctx context.Context, e *core.Employee) (*core.Employee, error) {
	if e == nil {
		return nil, core.Invalid("employee", "is required")
	}

	s.registering.Lock()
	defer s.registering.Unlock()

	existing, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	for _, other := range existing {
		if other.Email() == e.Email() && other.ID() != e.ID() {
			return nil, &core.DuplicateEmailError{Email: e.Email(), ExistingID: other.ID()}
		}
	}

	saved, err := s.store.Save(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}

	s.log.Info().
		Int64("employee_id", int64(saved.ID())).
		Str("kind", string(saved.Kind())).
		Msg("employee registered")
	return saved, nil
}

// GetEmployee returns the employee with id.
func (s *System) GetEmployee(ctx context.Context, id core.EmployeeID) (*core.Employee, error) {
	if id <= 0 {
		return nil, core.Invalid("id", "must be a positive integer")
	}
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee %d: %w", id, err)
	}
	if e == nil {
		return nil, &core.NotFoundError{Kind: "employee", Key: id.String()}
	}
	return e, nil
}

// ListEmployees returns every employee.
func (s *System) ListEmployees(ctx context.Context) ([]*core.Employee, error) {
	employees, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// Reset wipes the store, if it supports it.
func (s *System) Reset(ctx context.Context) error {
	r, ok := s.store.(core.Resetter)
	if !ok {
		return &core.ConfigError{Message: "employee store cannot be reset"}
	}
	return r.Reset(ctx)
}

// =============================================================================
// SALARIES AND PAYMENTS
// =============================================================================

// CalculateSalary computes the salary of employee id, rounded to cents.
func (s *System) CalculateSalary(ctx context.Context, id core.EmployeeID) (decimal.Decimal, error) {
	_, amount, err := s.EmployeeSalary(ctx, id)
	return amount, err
}

// EmployeeSalary loads employee id and computes their salary in one lookup.
func (s *System) EmployeeSalary(ctx context.Context, id core.EmployeeID) (*core.Employee, decimal.Decimal, error) {
	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, decimal.Zero, err
	}
	amount, err := s.salaryFor(e)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return e, amount, nil
}

func (s *System) salaryFor(e *core.Employee) (decimal.Decimal, error) {
	strategy, err := s.salaries.For(e)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := strategy.Calculate(e.BaseSalary(), e.Params())
	if err != nil {
		return decimal.Zero, fmt.Errorf("salary for employee %d: %w", e.ID(), err)
	}
	return amount.Round(2), nil
}

// ProcessPayment pays employee id and notifies them by email. Notification
// problems are recorded on the result, not returned.
func (s *System) ProcessPayment(ctx context.Context, id core.EmployeeID) (*PaymentResult, error) {
	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		s.metrics.Payment(false)
		return nil, err
	}
	amount, err := s.salaryFor(e)
	if err != nil {
		s.metrics.Payment(false)
		return nil, err
	}

	paidAt := s.clock.Now()
	result := &PaymentResult{
		EmployeeID:    e.ID(),
		EmployeeName:  e.FullName(),
		Amount:        amount,
		PaidAt:        paidAt,
		TransactionID: TransactionID(e.ID(), paidAt),
		Status:        StatusProcessed,
	}

	msg := fmt.Sprintf("Your payment has been processed. Amount: $%s. Transaction: %s.",
		amount.StringFixed(2), result.TransactionID)
	result.NotificationSent, result.NotificationError = s.notify(ctx, e.Email(), msg)

	s.metrics.Payment(true)
	s.metrics.Notification(result.NotificationSent)

	level := zerolog.InfoLevel
	if !result.NotificationSent {
		level = zerolog.WarnLevel
	}
	s.log.WithLevel(level).
		Str("notification_error", result.NotificationError).
		Int64("employee_id", int64(e.ID())).
		Str("transaction_id", result.TransactionID).
		Str("amount", amount.StringFixed(2)).
		Bool("notified", result.NotificationSent).
		Msg("payment processed")

	return result, nil
}

func (s *System) notify(ctx context.Context, destination, msg string) (bool, string) {
	if s.notifier == nil {
		return false, (&core.ConfigError{Message: "no notifier configured"}).Error()
	}
	sent, err := s.notifier.Send(ctx, destination, msg)
	switch {
	case err != nil:
		return false, err.Error()
	case !sent:
		return false, "notification was not delivered"
	default:
		return true, ""
	}
}

// TransactionID formats "TXN-{id}-{YYYYMMDDhhmmss}".
func TransactionID(id core.EmployeeID, at time.Time) string {
	return fmt.Sprintf("TXN-%d-%s", id, at.Format("20060102150405"))
}

// RunPayroll pays every employee. Per-employee failures are collected in
// the result; only a failure to list employees or a cancelled context is
// returned as an error.
func (s *System) RunPayroll(ctx context.Context) (*RunResult, error) {
	employees, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	run := &RunResult{
		RunID:     uuid.New(),
		StartedAt: s.clock.Now(),
		Payments:  []PaymentResult{},
		Errors:    []PaymentError{},
	}
	log := s.log.With().Str("run_id", run.RunID.String()).Logger()
	log.Info().Int("employees", len(employees)).Msg("payroll run started")

	for _, e := range employees {
		if err := ctx.Err(); err != nil {
			run.FinishedAt = s.clock.Now()
			return run, err
		}
		payment, err := s.processIsolated(ctx, e.ID())
		if err != nil {
			log.Error().Err(err).Int64("employee_id", int64(e.ID())).Msg("payment failed")
			run.Errors = append(run.Errors, PaymentError{EmployeeID: e.ID(), Message: err.Error()})
			continue
		}
		run.Payments = append(run.Payments, *payment)
	}

	run.FinishedAt = s.clock.Now()
	s.metrics.Run()
	log.Info().
		Int("paid", len(run.Payments)).
		Int("failed", len(run.Errors)).
		Str("total", run.Total().StringFixed(2)).
		Msg("payroll run finished")
	return run, nil
}

// processIsolated turns a panic while paying one employee into an error
// for that employee.
func (s *System) processIsolated(ctx context.Context, id core.EmployeeID) (result *PaymentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.Payment(false)
			result = nil
			err = fmt.Errorf("payment for employee %d aborted: %v", id, r)
		}
	}()
	return s.ProcessPayment(ctx, id)
}

// Summary aggregates salaries. Employees whose salary cannot be computed
// are left out; with none left every amount is zero.
func (s *System) Summary(ctx context.Context) (*Summary, error) {
	employees, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	sum := &Summary{
		TotalEmployees: len(employees),
		Total:          decimal.Zero,
		Average:        decimal.Zero,
		Min:            decimal.Zero,
		Max:            decimal.Zero,
	}
	for _, e := range employees {
		amount, err := s.salaryFor(e)
		if err != nil {
			s.log.Debug().Err(err).Int64("employee_id", int64(e.ID())).Msg("skipping employee in summary")
			continue
		}
		if sum.EmployeesWithSalary == 0 || amount.LessThan(sum.Min) {
			sum.Min = amount
		}
		if sum.EmployeesWithSalary == 0 || amount.GreaterThan(sum.Max) {
			sum.Max = amount
		}
		sum.Total = sum.Total.Add(amount)
		sum.EmployeesWithSalary++
	}
	if sum.EmployeesWithSalary > 0 {
		sum.Average = sum.Total.Div(decimal.NewFromInt(int64(sum.EmployeesWithSalary))).Round(2)
	}
	return sum, nil
}

// =============================================================================
// REPORTS AND EXTENSION
// =============================================================================

// GenerateReport renders every employee in format.
func (s *System) GenerateReport(ctx context.Context, format string) (*Report, error) {
	strategy, err := s.reports.Resolve(format)
	if err != nil {
		return nil, err
	}
	employees, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	content, err := strategy.Generate(employees)
	if err != nil {
		return nil, err
	}

	contentType, ext := report.Meta(strategy)
	return &Report{
		Format:      core.UpperTags(format),
		ContentType: contentType,
		Extension:   ext,
		GeneratedAt: s.clock.Now(),
		Content:     content,
	}, nil
}

// RegisterEmployeeType adds or replaces the salary strategy for tag.
func (s *System) RegisterEmployeeType(tag string, strategy core.SalaryStrategy) error {
	return s.salaries.Register(tag, strategy)
}

// RegisterReportFormat adds or replaces the report strategy for format.
func (s *System) RegisterReportFormat(format string, strategy core.ReportStrategy) error {
	return s.reports.Register(format, strategy)
}

// SalaryTypes lists registered employee type tags.
func (s *System) SalaryTypes() []string { return s.salaries.Tags() }

// ReportFormats lists registered report formats.
func (s *System) ReportFormats() []string { return s.reports.Tags() }

// ReportStrategy resolves format, e.g. to alias it under another tag.
func (s *System) ReportStrategy(format string) (core.ReportStrategy, error) {
	return s.reports.Resolve(format)
}
