package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/core/store"
)

func newEmployee(t *testing.T, email string) *core.Employee {
	t.Helper()
	e, err := core.NewFullTime(core.Profile{
		FirstName:  "Ana",
		LastName:   "Gómez",
		Email:      email,
		BaseSalary: decimal.NewFromInt(4000),
	}, decimal.Zero)
	require.NoError(t, err)
	return e
}

func TestMemory_Save_AssignsIncreasingIDs(t *testing.T) {
	// GIVEN: An empty store and two unsaved employees
	// WHEN: Saving both
	// THEN: They get distinct, increasing ids starting at 1

	m := store.NewMemory()
	ctx := context.Background()

	first, err := m.Save(ctx, newEmployee(t, "a@example.com"))
	require.NoError(t, err)
	second, err := m.Save(ctx, newEmployee(t, "b@example.com"))
	require.NoError(t, err)

	assert.Equal(t, core.EmployeeID(1), first.ID())
	assert.Equal(t, core.EmployeeID(2), second.ID())
}

func TestMemory_Save_DoesNotMutateInput(t *testing.T) {
	m := store.NewMemory()
	e := newEmployee(t, "a@example.com")

	saved, err := m.Save(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, core.UnassignedID, e.ID())
	assert.True(t, saved.ID().IsAssigned())
}

func TestMemory_Save_AssignedIDOverwritesWithoutAdvancingCounter(t *testing.T) {
	// GIVEN: One saved employee
	// WHEN: Saving an updated copy under the same id, then a new employee
	// THEN: The entry is replaced and the new employee still gets id 2

	m := store.NewMemory()
	ctx := context.Background()

	saved, err := m.Save(ctx, newEmployee(t, "a@example.com"))
	require.NoError(t, err)

	updated, err := core.RestoreEmployee(saved.ID(), core.Profile{
		FirstName:  "Ana",
		LastName:   "Gómez",
		Email:      "ana@example.com",
		BaseSalary: decimal.NewFromInt(4500),
	}, core.FullTimeTerms{}, saved.HiredAt())
	require.NoError(t, err)

	_, err = m.Save(ctx, updated)
	require.NoError(t, err)

	got, err := m.FindByID(ctx, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email())
	assert.Equal(t, 1, m.Len())

	next, err := m.Save(ctx, newEmployee(t, "b@example.com"))
	require.NoError(t, err)
	assert.Equal(t, core.EmployeeID(2), next.ID())
}

func TestMemory_Save_RestoredIDIsNotReused(t *testing.T) {
	// GIVEN: An employee restored with id 2 in an empty store
	// WHEN: Saving two new employees
	// THEN: They get ids 1 and 3; the restored employee survives

	m := store.NewMemory()
	ctx := context.Background()

	restored, err := core.RestoreEmployee(2, core.Profile{
		FirstName:  "Ana",
		LastName:   "Gómez",
		Email:      "a@example.com",
		BaseSalary: decimal.NewFromInt(4000),
	}, core.FullTimeTerms{}, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = m.Save(ctx, restored)
	require.NoError(t, err)

	first, err := m.Save(ctx, newEmployee(t, "b@example.com"))
	require.NoError(t, err)
	second, err := m.Save(ctx, newEmployee(t, "c@example.com"))
	require.NoError(t, err)

	assert.Equal(t, core.EmployeeID(1), first.ID())
	assert.Equal(t, core.EmployeeID(3), second.ID())

	all, err := m.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	got, err := m.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email())
}

func TestMemory_FindByID_Missing(t *testing.T) {
	m := store.NewMemory()
	got, err := m.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_FindAll_InsertionOrder(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	for _, email := range []string{"c@example.com", "a@example.com", "b@example.com"} {
		_, err := m.Save(ctx, newEmployee(t, email))
		require.NoError(t, err)
	}

	all, err := m.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c@example.com", all[0].Email())
	assert.Equal(t, "a@example.com", all[1].Email())
	assert.Equal(t, "b@example.com", all[2].Email())
}

func TestMemory_Clear_ResetsCounter(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	_, err := m.Save(ctx, newEmployee(t, "a@example.com"))
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx))

	all, err := m.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	again, err := m.Save(ctx, newEmployee(t, "b@example.com"))
	require.NoError(t, err)
	assert.Equal(t, core.EmployeeID(1), again.ID())
}

func TestMemory_ConcurrentSaves_UniqueIDs(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	e := newEmployee(t, "a@example.com")

	const n = 50
	ids := make(chan core.EmployeeID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := m.Save(ctx, e)
			if err == nil {
				ids <- saved.ID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[core.EmployeeID]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
