package salary_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/salary"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// =============================================================================
// FORMULA TESTS
// =============================================================================

func TestFullTime_BasePlusMonthlyBonus(t *testing.T) {
	tests := []struct {
		base, bonus, want string
	}{
		{"5000", "1200", "5100"},
		{"0", "0", "0"},
		{"3000", "0", "3000"},
		{"1000", "600", "1050"},
	}
	for _, tt := range tests {
		got, err := salary.FullTime.Calculate(d(tt.base), core.Params{core.ParamAnnualBonus: d(tt.bonus)})
		require.NoError(t, err)
		assert.True(t, got.Equal(d(tt.want)), "base=%s bonus=%s got %s", tt.base, tt.bonus, got)
	}
}

func TestFullTime_MissingBonusIsZero(t *testing.T) {
	got, err := salary.FullTime.Calculate(d("2500"), nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(d("2500")))
}

func TestFullTime_RejectsNegatives(t *testing.T) {
	_, err := salary.FullTime.Calculate(d("-1"), nil)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = salary.FullTime.Calculate(d("100"), core.Params{core.ParamAnnualBonus: d("-12")})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPartTime_ProportionalToFortyHours(t *testing.T) {
	tests := []struct {
		base, hours, want string
	}{
		{"3000", "25", "1875"},
		{"4000", "20", "2000"},
		{"4000", "39", "3900"},
		{"0", "10", "0"},
	}
	for _, tt := range tests {
		got, err := salary.PartTime.Calculate(d(tt.base), core.Params{core.ParamWeeklyHours: d(tt.hours)})
		require.NoError(t, err)
		assert.True(t, got.Equal(d(tt.want)), "base=%s hours=%s got %s", tt.base, tt.hours, got)
	}
}

func TestPartTime_DefaultsToTwentyHours(t *testing.T) {
	got, err := salary.PartTime.Calculate(d("4000"), core.Params{})
	require.NoError(t, err)
	assert.True(t, got.Equal(d("2000")))
}

func TestPartTime_RejectsInvalidInput(t *testing.T) {
	_, err := salary.PartTime.Calculate(d("-1"), core.Params{core.ParamWeeklyHours: d("20")})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = salary.PartTime.Calculate(d("1000"), core.Params{core.ParamWeeklyHours: d("0")})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestContractor_HoursTimesRate_IgnoresBase(t *testing.T) {
	got, err := salary.Contractor.Calculate(d("99999"), core.Params{
		core.ParamContractedHours: d("160"),
		core.ParamHourlyRate:      d("35"),
	})
	require.NoError(t, err)
	assert.True(t, got.Equal(d("5600")))
}

func TestContractor_RejectsMissingOrNonPositive(t *testing.T) {
	cases := []core.Params{
		{},
		{core.ParamContractedHours: d("0"), core.ParamHourlyRate: d("35")},
		{core.ParamContractedHours: d("160"), core.ParamHourlyRate: d("0")},
		{core.ParamContractedHours: d("160"), core.ParamHourlyRate: d("-3")},
	}
	for _, p := range cases {
		_, err := salary.Contractor.Calculate(d("0"), p)
		assert.ErrorIs(t, err, core.ErrValidation)
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_DefaultsResolveForEachKind(t *testing.T) {
	r := salary.NewDefaultRegistry()
	assert.Equal(t, []string{"Contractor", "FullTime", "PartTime"}, r.Tags())

	e, err := core.NewPartTime(core.Profile{
		FirstName: "María", LastName: "García", Email: "maria@example.com", BaseSalary: d("3000"),
	}, 25)
	require.NoError(t, err)

	s, err := r.For(e)
	require.NoError(t, err)
	got, err := s.Calculate(e.BaseSalary(), e.Params())
	require.NoError(t, err)
	assert.True(t, got.Equal(d("1875")))
}

func TestRegistry_CustomTagResolvesExactStrategy(t *testing.T) {
	r := salary.NewDefaultRegistry()
	custom := core.SalaryFunc(func(base decimal.Decimal, _ core.Params) (decimal.Decimal, error) {
		return base.Mul(d("2")), nil
	})

	require.NoError(t, r.Register("Freelancer", custom))
	require.NoError(t, r.Register("Freelancer", custom))

	s, err := r.Resolve("Freelancer")
	require.NoError(t, err)
	got, err := s.Calculate(d("10"), nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(d("20")))
	assert.Equal(t, 4, r.Len())
}

func TestRegistry_UnknownTag_NotFound(t *testing.T) {
	_, err := salary.NewDefaultRegistry().Resolve("Intern")

	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Intern", nf.Key)
}

func TestRegistry_InitializeDefaults_FirstCallWins(t *testing.T) {
	// GIVEN: A registry that already has a custom strategy
	// WHEN: InitializeDefaults is called afterwards
	// THEN: The built-ins are not added

	r := salary.NewRegistry()
	require.NoError(t, r.Register("Freelancer", salary.Contractor))

	assert.False(t, r.InitializeDefaults())

	_, err := r.Resolve("FullTime")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

// =============================================================================
// PRESET TESTS
// =============================================================================

func TestPresets_ProduceValidJSON(t *testing.T) {
	for _, s := range []string{
		salary.FullTimeJSON("Juan", "Pérez", "juan@example.com", 5000, 1200),
		salary.PartTimeJSON("María", "García", "maria@example.com", 3000, 25),
		salary.ContractorJSON("Carlos", "López", "carlos@example.com", 160, 35),
	} {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(s), &m))
		assert.NotEmpty(t, m["type"])
		assert.NotEmpty(t, m["email"])
	}
}
