/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money leaves the API
  as fixed two-decimal strings ("5100.00") so clients never see float
  rounding.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employee:  EmployeeDTO, CreateEmployeeRequest (factory.EmployeeJSON)
  Payroll:   SalaryDTO, PaymentDTO, RunDTO, SummaryDTO, RunPayrollRequest
  Scenarios: ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done by core constructors via the factory, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/employee.go: EmployeeJSON
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest = factory.EmployeeJSON

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	factory.EmployeeJSON
	FullName  string `json:"full_name"`
	TypeLabel string `json:"type_label"`
}

// SalaryDTO is a computed monthly salary.
type SalaryDTO struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Type         string `json:"type"`
	Salary       string `json:"salary"`
}

// PaymentDTO represents one processed payment.
type PaymentDTO struct {
	EmployeeID        int64  `json:"employee_id"`
	EmployeeName      string `json:"employee_name"`
	Amount            string `json:"amount"`
	PaidAt            string `json:"paid_at"`
	TransactionID     string `json:"transaction_id"`
	Status            string `json:"status"`
	NotificationSent  bool   `json:"notification_sent"`
	NotificationError string `json:"notification_error,omitempty"`
}

// PaymentErrorDTO is one employee's failure in a run.
type PaymentErrorDTO struct {
	EmployeeID int64  `json:"employee_id"`
	Message    string `json:"message"`
}

// RunDTO represents a full payroll run.
type RunDTO struct {
	RunID      string            `json:"run_id"`
	Trigger    string            `json:"trigger"`
	Channel    string            `json:"channel,omitempty"`
	StartedAt  string            `json:"started_at"`
	FinishedAt string            `json:"finished_at"`
	Total      string            `json:"total"`
	Paid       int               `json:"paid"`
	Failed     int               `json:"failed"`
	Payments   []PaymentDTO      `json:"payments"`
	Errors     []PaymentErrorDTO `json:"errors"`
}

// RunPayrollRequest optionally picks the notification channel for one run.
type RunPayrollRequest struct {
	Channel string `json:"channel"` // email, sms, both; empty = server default
}

// SummaryDTO is the salary summary.
type SummaryDTO struct {
	TotalEmployees      int    `json:"total_employees"`
	EmployeesWithSalary int    `json:"employees_with_salary"`
	Total               string `json:"total"`
	Average             string `json:"average"`
	Min                 string `json:"min"`
	Max                 string `json:"max"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Employees   int    `json:"employees"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func toEmployeeDTO(f *factory.EmployeeFactory, e *core.Employee) EmployeeDTO {
	return EmployeeDTO{
		EmployeeJSON: f.ToJSON(e),
		FullName:     e.FullName(),
		TypeLabel:    e.Kind().Label(),
	}
}

func toPaymentDTO(p payroll.PaymentResult) PaymentDTO {
	return PaymentDTO{
		EmployeeID:        int64(p.EmployeeID),
		EmployeeName:      p.EmployeeName,
		Amount:            money(p.Amount),
		PaidAt:            p.PaidAt.Format(time.RFC3339),
		TransactionID:     p.TransactionID,
		Status:            p.Status,
		NotificationSent:  p.NotificationSent,
		NotificationError: p.NotificationError,
	}
}

func toRunDTO(run *payroll.RunResult, trigger, channel string) RunDTO {
	dto := RunDTO{
		RunID:      run.RunID.String(),
		Trigger:    trigger,
		Channel:    channel,
		StartedAt:  run.StartedAt.Format(time.RFC3339),
		FinishedAt: run.FinishedAt.Format(time.RFC3339),
		Total:      money(run.Total()),
		Paid:       len(run.Payments),
		Failed:     len(run.Errors),
		Payments:   make([]PaymentDTO, len(run.Payments)),
		Errors:     make([]PaymentErrorDTO, len(run.Errors)),
	}
	for i, p := range run.Payments {
		dto.Payments[i] = toPaymentDTO(p)
	}
	for i, e := range run.Errors {
		dto.Errors[i] = PaymentErrorDTO{EmployeeID: int64(e.EmployeeID), Message: e.Message}
	}
	return dto
}

func toSummaryDTO(s *payroll.Summary) SummaryDTO {
	return SummaryDTO{
		TotalEmployees:      s.TotalEmployees,
		EmployeesWithSalary: s.EmployeesWithSalary,
		Total:               money(s.Total),
		Average:             money(s.Average),
		Min:                 money(s.Min),
		Max:                 money(s.Max),
	}
}
