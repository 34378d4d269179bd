/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the store with employees
  for demos and manual testing.

AVAILABLE SCENARIOS:
  demo:        Juan (FullTime), María (PartTime), Carlos (Contractor)
  mixed-team:  Six employees of every type, loaded from a YAML seed
  contractors: Hourly contractors only

HOW SCENARIOS WORK:
 1. Reset the store (ids restart at 1)
 2. Build employees via the factory (salary presets or YAML seed)
 3. Register each through payroll.System (duplicate checks apply)

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "demo"}

ADDING NEW SCENARIOS:
 1. Add an entry to 'scenarios' with ID, name, description and a builder
 2. The builder returns unsaved employees

NOTE:
  Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ListScenarios, LoadScenario handlers
  - salary/presets.go: Employee JSON builders
  - factory/employee.go: ParseEmployee, ParseSeedYAML
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/salary"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	build func(f *factory.EmployeeFactory) ([]*core.Employee, error)
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "demo",
			Name:        "Demo Staff",
			Description: "One employee of each type; salaries 5100.00, 1875.00 and 5600.00",
			Employees:   3,
		},
		build: buildDemo,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mixed-team",
			Name:        "Mixed Team",
			Description: "Six employees of every type, loaded from a YAML seed",
			Employees:   6,
		},
		build: func(f *factory.EmployeeFactory) ([]*core.Employee, error) {
			return f.ParseSeedYAML([]byte(mixedTeamSeed))
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "contractors",
			Name:        "Contractors Only",
			Description: "Hourly contractors with different rates",
			Employees:   2,
		},
		build: func(f *factory.EmployeeFactory) ([]*core.Employee, error) {
			return parseAll(f,
				salary.ContractorJSON("Carlos", "López", "carlos.lopez@example.com", 160, 35),
				salary.ContractorJSON("Elena", "Ruiz", "elena.ruiz@example.com", 80, 52.5),
			)
		},
	},
}

// DemoEmployees returns the unsaved demo staff: Juan, María and Carlos.
func DemoEmployees() ([]*core.Employee, error) {
	return buildDemo(factory.NewEmployeeFactory())
}

func buildDemo(f *factory.EmployeeFactory) ([]*core.Employee, error) {
	return parseAll(f,
		salary.FullTimeJSON("Juan", "Pérez", "juan.perez@example.com", 5000, 1200),
		salary.PartTimeJSON("María", "García", "maria.garcia@example.com", 3000, 25),
		salary.ContractorJSON("Carlos", "López", "carlos.lopez@example.com", 160, 35),
	)
}

func parseAll(f *factory.EmployeeFactory, defs ...string) ([]*core.Employee, error) {
	employees := make([]*core.Employee, 0, len(defs))
	for _, def := range defs {
		e, err := f.ParseEmployee(def)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, nil
}

const mixedTeamSeed = `
employees:
  - first_name: Juan
    last_name: Pérez
    email: juan.perez@example.com
    type: full_time
    base_salary: 5000
    annual_bonus: 1200
  - first_name: Lucía
    last_name: Fernández
    email: lucia.fernandez@example.com
    type: full_time
    base_salary: 6200
    annual_bonus: 3000
  - first_name: María
    last_name: García
    email: maria.garcia@example.com
    type: part_time
    base_salary: 3000
    weekly_hours: 25
  - first_name: Diego
    last_name: Martín
    email: diego.martin@example.com
    type: part_time
    base_salary: 2800
    weekly_hours: 16
  - first_name: Carlos
    last_name: López
    email: carlos.lopez@example.com
    type: contractor
    contracted_hours: 160
    hourly_rate: 35
  - first_name: Sofía
    last_name: Navarro
    email: sofia.navarro@example.com
    type: contractor
    contracted_hours: 40
    hourly_rate: 60
`

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.getCurrentScenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s.ScenarioDTO)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	loaded, err := h.loadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		writeDomainError(w, "Failed to load scenario", err)
		return
	}

	dtos := make([]EmployeeDTO, len(loaded))
	for i, e := range loaded {
		dtos[i] = toEmployeeDTO(h.Factory, e)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"scenario":  req.ScenarioID,
		"employees": dtos,
	})
}

func (h *Handler) loadScenario(ctx context.Context, id string) ([]*core.Employee, error) {
	var found *scenario
	for i := range scenarios {
		if scenarios[i].ID == id {
			found = &scenarios[i]
			break
		}
	}
	if found == nil {
		return nil, &core.NotFoundError{Kind: "scenario", Key: id}
	}

	employees, err := found.build(h.Factory)
	if err != nil {
		return nil, err
	}

	if err := h.System.Reset(ctx); err != nil {
		return nil, err
	}

	saved := make([]*core.Employee, 0, len(employees))
	for _, e := range employees {
		s, err := h.System.RegisterEmployee(ctx, e)
		if err != nil {
			return nil, err
		}
		saved = append(saved, s)
	}

	h.setCurrentScenario(id)
	h.log.Info().Str("scenario", id).Int("employees", len(saved)).Msg("scenario loaded")
	return saved, nil
}

func (h *Handler) getCurrentScenario() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setCurrentScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}
