package report

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warp/payroll-engine/core"
)

// PDF renders a plain-text report laid out like a printed page.
type PDF struct {
	Now Clock
}

func (g *PDF) Generate(employees []*core.Employee) (string, error) {
	if err := requireEmployees(employees); err != nil {
		return "", err
	}

	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("=== EMPLOYEE REPORT (PDF) ===\n\n")
	p.Fprintf(&b, "Generated: %s\n", clockOrNow(g.Now)().Format(time.DateTime))
	p.Fprintf(&b, "Total Employees: %d\n", len(employees))
	b.WriteString(strings.Repeat("-", 40) + "\n\n")

	for _, e := range employees {
		p.Fprintf(&b, "ID: %d\n", int64(e.ID()))
		p.Fprintf(&b, "Name: %s\n", e.FullName())
		p.Fprintf(&b, "Email: %s\n", e.Email())
		p.Fprintf(&b, "Type: %s\n", e.Kind().Label())
		p.Fprintf(&b, "Base Salary: $%s\n", FormatMoney(p, e.BaseSalary().InexactFloat64()))
		p.Fprintf(&b, "Hire Date: %s\n", e.HiredAt().Format(time.DateOnly))
		b.WriteString("------------------------\n")
	}
	return b.String(), nil
}

func (g *PDF) ContentType() string { return "text/plain; charset=utf-8" }
func (g *PDF) Extension() string   { return "txt" }

// FormatMoney formats v with thousands separators and two decimals,
// e.g. 5000 -> "5,000.00".
func FormatMoney(p *message.Printer, v float64) string {
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	return p.Sprintf("%.2f", v)
}
