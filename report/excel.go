package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/warp/payroll-engine/core"
)

// ExcelHeader is the fixed first line of the CSV report.
var ExcelHeader = []string{"ID", "Full Name", "Email", "Employee Type", "Base Salary", "Hire Date"}

// Excel renders CSV that spreadsheet tools open directly.
type Excel struct{}

func (g *Excel) Generate(employees []*core.Employee) (string, error) {
	if err := requireEmployees(employees); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ExcelHeader); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range employees {
		row := []string{
			strconv.FormatInt(int64(e.ID()), 10),
			e.FullName(),
			e.Email(),
			string(e.Kind()),
			e.BaseSalary().String(),
			e.HiredAt().Format(time.DateOnly),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.String(), nil
}

func (g *Excel) ContentType() string { return "text/csv; charset=utf-8" }
func (g *Excel) Extension() string   { return "csv" }
