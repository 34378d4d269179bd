package payroll_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/core/store"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/notify"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/salary"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var fixedNow = time.Date(2025, time.March, 31, 17, 45, 12, 0, time.UTC)

type notifierFunc func(ctx context.Context, destination, message string) (bool, error)

func (f notifierFunc) Send(ctx context.Context, destination, message string) (bool, error) {
	return f(ctx, destination, message)
}

func alwaysOK() core.Notifier {
	return notifierFunc(func(context.Context, string, string) (bool, error) { return true, nil })
}

func newSystem(t *testing.T, n core.Notifier) *payroll.System {
	t.Helper()
	return payroll.NewSystem(store.NewMemory(), n, payroll.Options{
		Clock: payroll.ClockFunc(func() time.Time { return fixedNow }),
	})
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func mustFullTime(t *testing.T, first, email, base, bonus string) *core.Employee {
	t.Helper()
	e, err := core.NewFullTime(core.Profile{FirstName: first, LastName: "Pérez", Email: email, BaseSalary: d(base)}, d(bonus))
	require.NoError(t, err)
	return e
}

// seedDemo registers the three demo employees and returns them in order.
func seedDemo(t *testing.T, sys *payroll.System) []*core.Employee {
	t.Helper()
	ctx := context.Background()

	juan := mustFullTime(t, "Juan", "juan.perez@example.com", "5000", "1200")
	maria, err := core.NewPartTime(core.Profile{FirstName: "María", LastName: "García", Email: "maria.garcia@example.com", BaseSalary: d("3000")}, 25)
	require.NoError(t, err)
	carlos, err := core.NewContractor(core.Profile{FirstName: "Carlos", LastName: "López", Email: "carlos.lopez@example.com", BaseSalary: d("0")}, 160, d("35"))
	require.NoError(t, err)

	var saved []*core.Employee
	for _, e := range []*core.Employee{juan, maria, carlos} {
		s, err := sys.RegisterEmployee(ctx, e)
		require.NoError(t, err)
		saved = append(saved, s)
	}
	return saved
}

// =============================================================================
// REGISTRATION AND LOOKUP
// =============================================================================

func TestRegisterEmployee_AssignsIDs(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	staff := seedDemo(t, sys)

	assert.Equal(t, core.EmployeeID(1), staff[0].ID())
	assert.Equal(t, core.EmployeeID(2), staff[1].ID())
	assert.Equal(t, core.EmployeeID(3), staff[2].ID())
}

func TestRegisterEmployee_DuplicateEmail(t *testing.T) {
	// GIVEN: Juan is registered
	// WHEN: Registering someone else with Juan's email (different case)
	// THEN: DuplicateEmailError naming Juan's id

	sys := newSystem(t, alwaysOK())
	ctx := context.Background()
	juan, err := sys.RegisterEmployee(ctx, mustFullTime(t, "Juan", "juan@example.com", "100", "0"))
	require.NoError(t, err)

	_, err = sys.RegisterEmployee(ctx, mustFullTime(t, "Otro", "JUAN@example.com", "100", "0"))

	var dup *core.DuplicateEmailError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, juan.ID(), dup.ExistingID)
	assert.Equal(t, "juan@example.com", dup.Email)

	_, err = sys.RegisterEmployee(ctx, mustFullTime(t, "Otro", "otro@example.com", "100", "0"))
	assert.NoError(t, err)
}

func TestRegisterEmployee_ReRegisterSameEmployeeUpdates(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	ctx := context.Background()
	juan, err := sys.RegisterEmployee(ctx, mustFullTime(t, "Juan", "juan@example.com", "100", "0"))
	require.NoError(t, err)

	updated, err := core.RestoreEmployee(juan.ID(), core.Profile{
		FirstName: "Juan", LastName: "Pérez", Email: "juan@example.com", BaseSalary: d("200"),
	}, core.FullTimeTerms{}, juan.HiredAt())
	require.NoError(t, err)

	_, err = sys.RegisterEmployee(ctx, updated)
	require.NoError(t, err)

	got, err := sys.CalculateSalary(ctx, juan.ID())
	require.NoError(t, err)
	assert.True(t, got.Equal(d("200")))
}

func TestRegisterEmployee_ConcurrentSameEmail_OneWins(t *testing.T) {
	// GIVEN: Twenty goroutines registering the same email
	// WHEN: They race, half through a WithNotifier copy
	// THEN: Exactly one registration succeeds; the rest are duplicates

	sys := newSystem(t, alwaysOK())
	other := sys.WithNotifier(alwaysOK())
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var saved, duplicates int
	for i := 0; i < n; i++ {
		target := sys
		if i%2 == 1 {
			target = other
		}
		e := mustFullTime(t, "Juan", "juan.perez@example.com", "5000", "0")
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := target.RegisterEmployee(ctx, e)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				saved++
			case errors.Is(err, core.ErrDuplicateEmail):
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, saved)
	assert.Equal(t, n-1, duplicates)
	all, err := sys.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetEmployee_Errors(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	ctx := context.Background()

	_, err := sys.GetEmployee(ctx, 0)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = sys.GetEmployee(ctx, -4)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = sys.GetEmployee(ctx, 99)
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "employee", nf.Kind)
	assert.Equal(t, "99", nf.Key)
}

// =============================================================================
// SALARIES AND SUMMARY
// =============================================================================

func TestCalculateSalary_DemoStaff(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	staff := seedDemo(t, sys)
	ctx := context.Background()

	want := []string{"5100.00", "1875.00", "5600.00"}
	for i, e := range staff {
		got, err := sys.CalculateSalary(ctx, e.ID())
		require.NoError(t, err)
		assert.Equal(t, want[i], got.StringFixed(2))
	}
}

func TestEmployeeSalary_ReturnsEmployeeAndAmount(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	seedDemo(t, sys)

	e, amount, err := sys.EmployeeSalary(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, "maria.garcia@example.com", e.Email())
	assert.Equal(t, "1875.00", amount.StringFixed(2))

	_, _, err = sys.EmployeeSalary(context.Background(), 9)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCalculateSalary_UnknownID(t *testing.T) {
	_, err := newSystem(t, alwaysOK()).CalculateSalary(context.Background(), 7)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSummary_DemoStaff(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	seedDemo(t, sys)

	sum, err := sys.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.TotalEmployees)
	assert.Equal(t, 3, sum.EmployeesWithSalary)
	assert.Equal(t, "12575.00", sum.Total.StringFixed(2))
	assert.Equal(t, "4191.67", sum.Average.StringFixed(2))
	assert.Equal(t, "1875.00", sum.Min.StringFixed(2))
	assert.Equal(t, "5600.00", sum.Max.StringFixed(2))
}

func TestSummary_Empty_AllZero(t *testing.T) {
	sum, err := newSystem(t, alwaysOK()).Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, sum.TotalEmployees)
	assert.Equal(t, 0, sum.EmployeesWithSalary)
	assert.True(t, sum.Total.IsZero())
	assert.True(t, sum.Average.IsZero())
	assert.True(t, sum.Min.IsZero())
	assert.True(t, sum.Max.IsZero())
}

func TestSummary_SkipsEmployeesWithoutStrategy(t *testing.T) {
	// GIVEN: A salary registry that only knows FullTime
	// WHEN: Summarizing the demo staff
	// THEN: Only Juan is counted

	salaries := salary.NewRegistry()
	require.NoError(t, salaries.Register(string(core.KindFullTime), salary.FullTime))
	sys := payroll.NewSystem(store.NewMemory(), alwaysOK(), payroll.Options{Salaries: salaries})
	seedDemo(t, sys)

	sum, err := sys.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.TotalEmployees)
	assert.Equal(t, 1, sum.EmployeesWithSalary)
	assert.Equal(t, "5100.00", sum.Average.StringFixed(2))
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestProcessPayment_NotifiesEmployee(t *testing.T) {
	var gotDest, gotMsg string
	sys := newSystem(t, notifierFunc(func(_ context.Context, dest, msg string) (bool, error) {
		gotDest, gotMsg = dest, msg
		return true, nil
	}))
	staff := seedDemo(t, sys)

	res, err := sys.ProcessPayment(context.Background(), staff[0].ID())
	require.NoError(t, err)

	assert.Equal(t, "TXN-1-20250331174512", res.TransactionID)
	assert.Equal(t, payroll.StatusProcessed, res.Status)
	assert.Equal(t, "Juan Pérez", res.EmployeeName)
	assert.Equal(t, "5100.00", res.Amount.StringFixed(2))
	assert.Equal(t, fixedNow, res.PaidAt)
	assert.True(t, res.NotificationSent)
	assert.Empty(t, res.NotificationError)

	assert.Equal(t, "juan.perez@example.com", gotDest)
	assert.Equal(t, "Your payment has been processed. Amount: $5100.00. Transaction: TXN-1-20250331174512.", gotMsg)
}

func TestProcessPayment_NotificationFailureIsSoft(t *testing.T) {
	// GIVEN: A notifier that always errors
	// WHEN: Processing a payment
	// THEN: The payment succeeds and the notification error is recorded

	sys := newSystem(t, notifierFunc(func(context.Context, string, string) (bool, error) {
		return false, errors.New("smtp unreachable")
	}))
	staff := seedDemo(t, sys)

	res, err := sys.ProcessPayment(context.Background(), staff[1].ID())

	require.NoError(t, err)
	assert.Equal(t, payroll.StatusProcessed, res.Status)
	assert.False(t, res.NotificationSent)
	assert.Equal(t, "smtp unreachable", res.NotificationError)
}

func TestProcessPayment_NotDeliveredWithoutError(t *testing.T) {
	sys := newSystem(t, notifierFunc(func(context.Context, string, string) (bool, error) { return false, nil }))
	staff := seedDemo(t, sys)

	res, err := sys.ProcessPayment(context.Background(), staff[0].ID())
	require.NoError(t, err)
	assert.False(t, res.NotificationSent)
	assert.NotEmpty(t, res.NotificationError)
}

func TestProcessPayment_NilNotifier(t *testing.T) {
	sys := newSystem(t, nil)
	staff := seedDemo(t, sys)

	res, err := sys.ProcessPayment(context.Background(), staff[0].ID())
	require.NoError(t, err)
	assert.False(t, res.NotificationSent)
	assert.Contains(t, res.NotificationError, "no notifier configured")
}

func TestProcessPayment_UnknownEmployee(t *testing.T) {
	_, err := newSystem(t, alwaysOK()).ProcessPayment(context.Background(), 5)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestProcessPayment_CompositeEmailAndSMS(t *testing.T) {
	// GIVEN: A composite of email and SMS
	// WHEN: Paying an employee (destination is an email address)
	// THEN: SMS rejects it, email delivers, notification counts as sent

	channel, err := notify.Build(notify.KindBoth, notify.Settings{}, notify.NewLogTransport(zerolog.Nop()))
	require.NoError(t, err)
	sys := newSystem(t, channel)
	staff := seedDemo(t, sys)

	res, err := sys.ProcessPayment(context.Background(), staff[2].ID())
	require.NoError(t, err)
	assert.True(t, res.NotificationSent)
}

// =============================================================================
// PAYROLL RUN
// =============================================================================

func TestRunPayroll_AllSucceed(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	seedDemo(t, sys)

	run, err := sys.RunPayroll(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, run.RunID)
	assert.Len(t, run.Payments, 3)
	assert.Empty(t, run.Errors)
	assert.Equal(t, "12575.00", run.Total().StringFixed(2))
	assert.Equal(t, fixedNow, run.StartedAt)
}

func TestRunPayroll_NotifierErrorForOneEmployee_StillPaid(t *testing.T) {
	sys := newSystem(t, notifierFunc(func(_ context.Context, dest, _ string) (bool, error) {
		if strings.HasPrefix(dest, "maria") {
			return false, errors.New("mailbox full")
		}
		return true, nil
	}))
	seedDemo(t, sys)

	run, err := sys.RunPayroll(context.Background())
	require.NoError(t, err)

	require.Len(t, run.Payments, 3)
	assert.Empty(t, run.Errors)
	assert.True(t, run.Payments[0].NotificationSent)
	assert.False(t, run.Payments[1].NotificationSent)
	assert.Equal(t, "mailbox full", run.Payments[1].NotificationError)
	assert.True(t, run.Payments[2].NotificationSent)
}

func TestRunPayroll_NotifierBlowsUpForOneEmployee_TwoPaidOneError(t *testing.T) {
	// GIVEN: A notifier that fails hard (panics) for Carlos only
	// WHEN: Running the full payroll
	// THEN: Juan and María are paid; Carlos becomes the single error entry

	sys := newSystem(t, notifierFunc(func(_ context.Context, dest, _ string) (bool, error) {
		if dest == "carlos.lopez@example.com" {
			panic("gateway crashed")
		}
		return true, nil
	}))
	staff := seedDemo(t, sys)

	run, err := sys.RunPayroll(context.Background())
	require.NoError(t, err)

	require.Len(t, run.Payments, 2)
	require.Len(t, run.Errors, 1)
	assert.Equal(t, staff[0].ID(), run.Payments[0].EmployeeID)
	assert.Equal(t, staff[1].ID(), run.Payments[1].EmployeeID)
	assert.True(t, run.Payments[0].NotificationSent)
	assert.True(t, run.Payments[1].NotificationSent)
	assert.Equal(t, staff[2].ID(), run.Errors[0].EmployeeID)
	assert.Contains(t, run.Errors[0].Message, "gateway crashed")
}

func TestRunPayroll_MissingStrategyIsPerEmployeeError(t *testing.T) {
	salaries := salary.NewRegistry()
	require.NoError(t, salaries.Register(string(core.KindFullTime), salary.FullTime))
	require.NoError(t, salaries.Register(string(core.KindPartTime), salary.PartTime))
	sys := payroll.NewSystem(store.NewMemory(), alwaysOK(), payroll.Options{Salaries: salaries})
	seedDemo(t, sys)

	run, err := sys.RunPayroll(context.Background())
	require.NoError(t, err)

	assert.Len(t, run.Payments, 2)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0].Message, "salary strategy not found: Contractor")
}

func TestRunPayroll_EmptyStore(t *testing.T) {
	run, err := newSystem(t, alwaysOK()).RunPayroll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, run.Payments)
	assert.Empty(t, run.Errors)
}

func TestRunPayroll_CancelledContext(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	seedDemo(t, sys)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := sys.RunPayroll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, run)
	assert.Empty(t, run.Payments)
}

func TestRunPayroll_RecordsMetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	require.NoError(t, err)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	sys := payroll.NewSystem(store.NewMemory(), alwaysOK(), payroll.Options{Metrics: rec, Logger: &logger})
	seedDemo(t, sys)

	_, err = sys.RunPayroll(context.Background())
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "payroll_runs_total", "payroll_payments_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "payroll run finished")
	assert.Contains(t, buf.String(), `"component":"payroll"`)
}

// =============================================================================
// REPORTS AND EXTENSION
// =============================================================================

func TestGenerateReport(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	seedDemo(t, sys)

	rep, err := sys.GenerateReport(context.Background(), "excel")
	require.NoError(t, err)

	assert.Equal(t, "EXCEL", rep.Format)
	assert.Equal(t, "employee_report_20250331.csv", rep.FileName())
	assert.True(t, strings.HasPrefix(rep.Content, "ID,Full Name,Email,Employee Type,Base Salary,Hire Date\n"))
}

func TestGenerateReport_Errors(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	ctx := context.Background()

	_, err := sys.GenerateReport(ctx, "JSON")
	assert.ErrorIs(t, err, core.ErrValidation)

	seedDemo(t, sys)
	_, err = sys.GenerateReport(ctx, "XML")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRuntimeExtension(t *testing.T) {
	// GIVEN: The demo system
	// WHEN: Registering Freelancer -> Contractor and XML -> JSON generator
	// THEN: Both tags are listed and XML reports render as JSON

	sys := newSystem(t, alwaysOK())
	seedDemo(t, sys)

	require.NoError(t, sys.RegisterEmployeeType("Freelancer", salary.Contractor))
	jsonGen, err := sys.ReportStrategy("json")
	require.NoError(t, err)
	require.NoError(t, sys.RegisterReportFormat("xml", jsonGen))

	assert.Contains(t, sys.SalaryTypes(), "Freelancer")
	assert.Contains(t, sys.ReportFormats(), "XML")

	rep, err := sys.GenerateReport(context.Background(), "xml")
	require.NoError(t, err)
	assert.Equal(t, "json", rep.Extension)
	assert.Contains(t, rep.Content, `"total_employees": 3`)
}

func TestWithNotifier_SharesStore(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	staff := seedDemo(t, sys)

	failing := sys.WithNotifier(notifierFunc(func(context.Context, string, string) (bool, error) {
		return false, errors.New("down")
	}))

	res, err := failing.ProcessPayment(context.Background(), staff[0].ID())
	require.NoError(t, err)
	assert.False(t, res.NotificationSent)

	res, err = sys.ProcessPayment(context.Background(), staff[0].ID())
	require.NoError(t, err)
	assert.True(t, res.NotificationSent)
}

func TestReset(t *testing.T) {
	sys := newSystem(t, alwaysOK())
	seedDemo(t, sys)
	ctx := context.Background()

	require.NoError(t, sys.Reset(ctx))

	all, err := sys.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
