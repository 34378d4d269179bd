/*
Package report renders employee lists into downloadable reports.

FORMATS:
  JSON:  Structured document (title, generated_at, count, employees)
  PDF:   Plain-text block per employee (not a real PDF)
  EXCEL: CSV with a fixed header line and standard CSV quoting

Every format rejects an empty employee list with a ValidationError.
Format tags are case-insensitive and stored upper-cased.

USAGE:
  reports := report.NewDefaultRegistry(time.Now)
  gen, err := reports.Resolve("excel")
  csv, err := gen.Generate(employees)

SEE ALSO:
  - core/registry.go: Generic registry
  - api/handlers.go: Serves reports as attachments
*/
package report

import (
	"time"

	"github.com/warp/payroll-engine/core"
)

// Built-in format tags.
const (
	FormatJSON  = "JSON"
	FormatPDF   = "PDF"
	FormatExcel = "EXCEL"
)

// Clock supplies the generation timestamp.
type Clock func() time.Time

// Registry maps upper-cased format tags to report strategies.
type Registry struct {
	*core.Registry[core.ReportStrategy]
	now Clock
}

// NewRegistry returns an empty registry. A nil clock uses time.Now.
func NewRegistry(now Clock) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		Registry: core.NewRegistry[core.ReportStrategy]("report format", core.UpperTags),
		now:      now,
	}
}

// NewDefaultRegistry returns a registry holding JSON, PDF and EXCEL.
func NewDefaultRegistry(now Clock) *Registry {
	r := NewRegistry(now)
	r.InitializeDefaults()
	return r
}

// InitializeDefaults registers the built-in formats if the registry is
// still empty.
func (r *Registry) InitializeDefaults() bool {
	return r.Registry.InitializeDefaults(map[string]core.ReportStrategy{
		FormatJSON:  &JSON{Now: r.now},
		FormatPDF:   &PDF{Now: r.now},
		FormatExcel: &Excel{},
	})
}

// Meta returns the content type and file extension for s, falling back
// to plain text.
func Meta(s core.ReportStrategy) (contentType, ext string) {
	if m, ok := s.(core.ReportMeta); ok {
		return m.ContentType(), m.Extension()
	}
	return "text/plain; charset=utf-8", "txt"
}

func requireEmployees(employees []*core.Employee) error {
	if len(employees) == 0 {
		return core.Invalid("employees", "no employee data to report")
	}
	return nil
}
