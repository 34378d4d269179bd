/*
registry.go - Tag-keyed strategy registry

PURPOSE:
  One generic table behind both the salary strategy registry and the
  report format registry. Registries are plain values owned by whoever
  builds them (usually the payroll System), not package-level state.

HOW IT WORKS:
  1. A registry is created with a name (used in NotFoundError) and a
     normalizer for tags (identity, or upper-case for report formats)
  2. Register upserts a value for a tag
  3. Resolve returns the value or a NotFoundError; it never falls back

USAGE:
  r := core.NewRegistry[core.SalaryStrategy]("salary strategy", nil)
  r.Register("FullTime", salary.FullTime)
  s, err := r.Resolve("FullTime")

SEE ALSO:
  - salary/registry.go: Salary strategy registry
  - report/registry.go: Report format registry
*/
package core

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps tags to values of T. Safe for concurrent use.
type Registry[T any] struct {
	name      string
	normalize func(string) string

	mu      sync.RWMutex
	entries map[string]T
}

// NewRegistry creates an empty registry. A nil normalize only trims
// surrounding whitespace.
func NewRegistry[T any](name string, normalize func(string) string) *Registry[T] {
	if normalize == nil {
		normalize = strings.TrimSpace
	}
	return &Registry[T]{
		name:      name,
		normalize: normalize,
		entries:   make(map[string]T),
	}
}

// UpperTags normalizes tags to trimmed upper case.
func UpperTags(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// Register stores v under tag, replacing any previous value.
func (r *Registry[T]) Register(tag string, v T) error {
	key := r.normalize(tag)
	if key == "" {
		return Invalid("tag", "cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = v
	return nil
}

// Resolve returns the value registered for tag.
func (r *Registry[T]) Resolve(tag string) (T, error) {
	key := r.normalize(tag)
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	if !ok {
		var zero T
		return zero, &NotFoundError{Kind: r.name, Key: tag}
	}
	return v, nil
}

// InitializeDefaults registers defaults only if the registry is empty and
// reports whether it did.
func (r *Registry[T]) InitializeDefaults(defaults map[string]T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) > 0 {
		return false
	}
	for tag, v := range defaults {
		r.entries[r.normalize(tag)] = v
	}
	return true
}

// Tags returns the registered tags in sorted order.
func (r *Registry[T]) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.entries))
	for t := range r.entries {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered tags.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
