/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes payroll.System via REST API. Handles HTTP request/response and
  JSON serialization, and delegates everything else to the façade.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Create employee (factory JSON)
    GET    /api/employees/{id}            Get employee details
    GET    /api/employees/{id}/salary     Compute monthly salary
    POST   /api/employees/{id}/payments   Pay one employee

  Payroll:
    POST   /api/payroll/run               Pay everyone ({"channel": "sms"} optional)
    GET    /api/payroll/summary           Total / average / min / max
    GET    /api/payroll/runs              Recent runs, newest first

  Reports:
    GET    /api/reports/{format}          Download JSON / PDF / EXCEL report

  Registries:
    GET    /api/salary-types              Registered employee type tags
    GET    /api/report-formats            Registered report formats

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    GET    /api/scenarios/current         Currently loaded scenario
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/reset                     Remove every employee

ERROR HANDLING:
  Errors are returned as JSON {"error", "details"} with a status chosen by
  statusFor:
  - 400: Validation errors, invalid input
  - 404: Employee, format or scenario not found
  - 409: Duplicate email
  - 500: Internal errors

SECURITY NOTE:
  No authentication. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/notify"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// ChannelBuilder builds the notification channel for a per-run choice.
type ChannelBuilder func(kind string) (core.Channel, error)

// HandlerOptions configures a Handler. Zero values get defaults.
type HandlerOptions struct {
	Logger   *zerolog.Logger // default: disabled
	Channels ChannelBuilder  // default: simulated channels that only log
	Runs     *RunLog         // default: NewRunLog(DefaultRunLogSize)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	System   *payroll.System
	Factory  *factory.EmployeeFactory
	Runs     *RunLog
	channels ChannelBuilder
	log      zerolog.Logger

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler over sys.
func NewHandler(sys *payroll.System, opts HandlerOptions) *Handler {
	h := &Handler{
		System:   sys,
		Factory:  factory.NewEmployeeFactory(),
		Runs:     opts.Runs,
		channels: opts.Channels,
		log:      zerolog.Nop(),
	}
	if opts.Logger != nil {
		h.log = opts.Logger.With().Str("component", "api").Logger()
	}
	if h.Runs == nil {
		h.Runs = NewRunLog(DefaultRunLogSize)
	}
	if h.channels == nil {
		tr := notify.NewLogTransport(h.log)
		h.channels = func(kind string) (core.Channel, error) {
			return notify.Build(kind, notify.Settings{}, tr)
		}
	}
	return h
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.System.ListEmployees(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(h.Factory, e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseEmployeeID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Invalid employee id", err)
		return
	}

	emp, err := h.System.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(h.Factory, emp))
}

// CreateEmployee creates a new employee from a factory definition.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	// Ids are assigned by the store.
	req.ID = 0

	emp, err := h.Factory.FromJSON(req)
	if err != nil {
		writeDomainError(w, "Invalid employee", err)
		return
	}

	saved, err := h.System.RegisterEmployee(r.Context(), emp)
	if err != nil {
		writeDomainError(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(h.Factory, saved))
}

// GetSalary computes an employee's monthly salary.
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseEmployeeID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Invalid employee id", err)
		return
	}

	emp, amount, err := h.System.EmployeeSalary(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to calculate salary", err)
		return
	}

	writeJSON(w, http.StatusOK, SalaryDTO{
		EmployeeID:   int64(emp.ID()),
		EmployeeName: emp.FullName(),
		Type:         string(emp.Kind()),
		Salary:       money(amount),
	})
}

// ProcessPayment pays one employee.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseEmployeeID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Invalid employee id", err)
		return
	}

	result, err := h.System.ProcessPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to process payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(*result))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// RunPayroll pays every employee. An optional body picks the notification
// channel for this run only.
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sys := h.System
	channel := strings.ToLower(strings.TrimSpace(req.Channel))
	if channel != "" {
		ch, err := h.channels(channel)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid notification channel", err)
			return
		}
		sys = sys.WithNotifier(ch)
	}

	run, err := sys.RunPayroll(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to run payroll", err)
		return
	}

	dto := toRunDTO(run, TriggerAPI, channel)
	h.Runs.Add(dto)
	writeJSON(w, http.StatusOK, dto)
}

// GetSummary returns salary aggregates.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.System.Summary(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to summarize payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(sum))
}

// ListRuns returns recent payroll runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Runs.List())
}

// =============================================================================
// REPORTS AND REGISTRIES
// =============================================================================

// DownloadReport renders every employee in the requested format and
// serves it as an attachment.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.System.GenerateReport(r.Context(), chi.URLParam(r, "format"))
	if err != nil {
		writeDomainError(w, "Failed to generate report", err)
		return
	}

	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.FileName()))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, rep.Content)
}

// ListSalaryTypes returns registered employee type tags.
func (h *Handler) ListSalaryTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.System.SalaryTypes())
}

// ListReportFormats returns registered report formats.
func (h *Handler) ListReportFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.System.ReportFormats())
}

// ResetDatabase removes every employee.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.System.Reset(r.Context()); err != nil {
		writeDomainError(w, "Failed to reset database", err)
		return
	}

	h.setCurrentScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError writes err with the status statusFor picks.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
