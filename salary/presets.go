/*
presets.go - Employee definition builders per employee type

PURPOSE:
  Build JSON employee definitions for the factory package. They construct
  JSON strings directly to avoid an import cycle with factory.

USAGE:
  jsonStr := salary.FullTimeJSON("Juan", "Pérez", "juan.perez@example.com", 5000, 1200)
  emp, err := factory.NewEmployeeFactory().ParseEmployee(jsonStr)
*/
package salary

import (
	"encoding/json"

	"github.com/warp/payroll-engine/core"
)

// FullTimeJSON returns JSON for a full-time employee.
func FullTimeJSON(first, last, email string, baseSalary, annualBonus float64) string {
	return marshalPreset(map[string]interface{}{
		"first_name":   first,
		"last_name":    last,
		"email":        email,
		"type":         string(core.KindFullTime),
		"base_salary":  baseSalary,
		"annual_bonus": annualBonus,
	})
}

// PartTimeJSON returns JSON for a part-time employee.
func PartTimeJSON(first, last, email string, baseSalary float64, weeklyHours int) string {
	return marshalPreset(map[string]interface{}{
		"first_name":   first,
		"last_name":    last,
		"email":        email,
		"type":         string(core.KindPartTime),
		"base_salary":  baseSalary,
		"weekly_hours": weeklyHours,
	})
}

// ContractorJSON returns JSON for a contractor. Base salary is usually 0.
func ContractorJSON(first, last, email string, contractedHours int, hourlyRate float64) string {
	return marshalPreset(map[string]interface{}{
		"first_name":       first,
		"last_name":        last,
		"email":            email,
		"type":             string(core.KindContractor),
		"base_salary":      0,
		"contracted_hours": contractedHours,
		"hourly_rate":      hourlyRate,
	})
}

func marshalPreset(m map[string]interface{}) string {
	b, _ := json.MarshalIndent(m, "", "  ")
	return string(b)
}
