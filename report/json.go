package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warp/payroll-engine/core"
)

// JSONDocument is the shape of the JSON report.
type JSONDocument struct {
	Title          string         `json:"title"`
	GeneratedAt    string         `json:"generated_at"`
	TotalEmployees int            `json:"total_employees"`
	Employees      []JSONEmployee `json:"employees"`
}

// JSONEmployee is one employee row in the JSON report.
type JSONEmployee struct {
	ID           int64   `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	EmployeeType string  `json:"employee_type"`
	BaseSalary   float64 `json:"base_salary"`
	HireDate     string  `json:"hire_date"`
}

// JSON renders a pretty-printed JSON document.
type JSON struct {
	Now Clock
}

func (g *JSON) Generate(employees []*core.Employee) (string, error) {
	if err := requireEmployees(employees); err != nil {
		return "", err
	}

	doc := JSONDocument{
		Title:          "Employee Report",
		GeneratedAt:    clockOrNow(g.Now)().Format(time.DateTime),
		TotalEmployees: len(employees),
		Employees:      make([]JSONEmployee, 0, len(employees)),
	}
	for _, e := range employees {
		doc.Employees = append(doc.Employees, JSONEmployee{
			ID:           int64(e.ID()),
			FullName:     e.FullName(),
			Email:        e.Email(),
			EmployeeType: string(e.Kind()),
			BaseSalary:   e.BaseSalary().InexactFloat64(),
			HireDate:     e.HiredAt().Format(time.DateOnly),
		})
	}

	b, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode json report: %w", err)
	}
	return string(b), nil
}

func (g *JSON) ContentType() string { return "application/json" }
func (g *JSON) Extension() string   { return "json" }

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
