package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
)

// StatusProcessed is the status of every successful payment.
const StatusProcessed = "PROCESSED"

// PaymentResult describes one processed payment. A failed notification
// does not fail the payment; it is recorded here instead.
type PaymentResult struct {
	EmployeeID        core.EmployeeID `json:"employee_id"`
	EmployeeName      string          `json:"employee_name"`
	Amount            decimal.Decimal `json:"amount"`
	PaidAt            time.Time       `json:"paid_at"`
	TransactionID     string          `json:"transaction_id"`
	Status            string          `json:"status"`
	NotificationSent  bool            `json:"notification_sent"`
	NotificationError string          `json:"notification_error,omitempty"`
}

// PaymentError is one employee's failure inside a payroll run.
type PaymentError struct {
	EmployeeID core.EmployeeID `json:"employee_id"`
	Message    string          `json:"message"`
}

// RunResult collects a full payroll run. Payments and Errors are kept
// apart; one employee failing never stops the run.
type RunResult struct {
	RunID      uuid.UUID       `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Payments   []PaymentResult `json:"payments"`
	Errors     []PaymentError  `json:"errors"`
}

// Total sums the amounts of successful payments.
func (r *RunResult) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Summary aggregates salaries over every employee with a computable salary.
type Summary struct {
	TotalEmployees      int             `json:"total_employees"`
	EmployeesWithSalary int             `json:"employees_with_salary"`
	Total               decimal.Decimal `json:"total"`
	Average             decimal.Decimal `json:"average"`
	Min                 decimal.Decimal `json:"min"`
	Max                 decimal.Decimal `json:"max"`
}

// Report is a rendered report with the metadata needed to serve it.
type Report struct {
	Format      string    `json:"format"`
	ContentType string    `json:"content_type"`
	Extension   string    `json:"extension"`
	GeneratedAt time.Time `json:"generated_at"`
	Content     string    `json:"content"`
}

// FileName returns "employee_report_YYYYMMDD.<ext>".
func (r *Report) FileName() string {
	return "employee_report_" + r.GeneratedAt.Format("20060102") + "." + r.Extension
}
