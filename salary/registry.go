package salary

import "github.com/warp/payroll-engine/core"

// Registry maps employee type tags to salary strategies.
type Registry struct {
	*core.Registry[core.SalaryStrategy]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{core.NewRegistry[core.SalaryStrategy]("salary strategy", nil)}
}

// NewDefaultRegistry returns a registry holding the built-in strategies.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.InitializeDefaults()
	return r
}

// InitializeDefaults registers FullTime, PartTime and Contractor if the
// registry is still empty. Calling it after custom registrations is a no-op.
func (r *Registry) InitializeDefaults() bool {
	return r.Registry.InitializeDefaults(Defaults())
}

// For resolves the strategy registered for e's kind.
func (r *Registry) For(e *core.Employee) (core.SalaryStrategy, error) {
	return r.Resolve(string(e.Kind()))
}
