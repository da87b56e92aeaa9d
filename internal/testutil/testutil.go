// Package testutil provides common testing utilities shared by the lframe
// test suites:
//   - allocator setup that fails the test on leaked Arrow buffers
//   - the salary fixture used throughout the documentation
//   - DataFrame assertions
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/lframe/internal/dataframe"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SalaryCSV is the salary fixture in the index-first CSV layout
const SalaryCSV = `,names,salary,cash flow
user 1,Lukas Novak,20000,-100
user 2,Petr Pavel,300000,10000
user 3,Pavel Petr,20000,-2000
user 4,Ludek Skocil,50000,1100`

// TestMemoryContext provides a checked allocator with automatic leak detection.
type TestMemoryContext struct {
	Allocator *memory.CheckedAllocator
	tb        testing.TB
}

// Release asserts that every buffer taken from the allocator was returned.
func (tmc *TestMemoryContext) Release() {
	tmc.Allocator.AssertSize(tmc.tb, 0)
}

// SetupMemoryTest creates a checked allocator for tests.
// Returns a TestMemoryContext that should be released with defer after
// every DataFrame and Series built from it.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewCheckedAllocator(memory.NewGoAllocator()),
		tb:        tb,
	}
}

// Salary holds the Series of the salary fixture. They share one row index.
type Salary struct {
	Users    *index.Index
	Names    *series.Series[string]
	Salaries *series.Series[int64]
	CashFlow *series.Series[int64]
	Columns  *index.Index
}

// List returns the Series in column order
func (s *Salary) List() []dataframe.ISeries {
	return []dataframe.ISeries{s.Names, s.Salaries, s.CashFlow}
}

// Release drops the fixture's references
func (s *Salary) Release() {
	s.Names.Release()
	s.Salaries.Release()
	s.CashFlow.Release()
}

// NewSalary builds the salary fixture.
func NewSalary(allocator memory.Allocator) *Salary {
	users := index.FromStrings([]string{"user 1", "user 2", "user 3", "user 4"}, "names")
	return &Salary{
		Users:    users,
		Names:    series.MustNew([]string{"Lukas Novak", "Petr Pavel", "Pavel Petr", "Ludek Skocil"}, users, allocator),
		Salaries: series.MustNew([]int64{20000, 300000, 20000, 50000}, users, allocator),
		CashFlow: series.MustNew([]int64{-100, 10000, -2000, 1100}, users, allocator),
		Columns:  index.FromStrings([]string{"names", "salary", "cash flow"}, ""),
	}
}

// CreateSalaryFrame builds the salary DataFrame. The caller releases it.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
//	df := testutil.CreateSalaryFrame(t, mem.Allocator)
//	defer df.Release()
func CreateSalaryFrame(tb testing.TB, allocator memory.Allocator) *dataframe.DataFrame {
	tb.Helper()
	fixture := NewSalary(allocator)
	defer fixture.Release()

	df, err := dataframe.New(fixture.List(), fixture.Columns)
	require.NoError(tb, err)
	return df
}

// AssertDataFrameEqual compares labels and values of two DataFrames.
func AssertDataFrameEqual(tb testing.TB, expected, actual *dataframe.DataFrame) {
	tb.Helper()

	require.NotNil(tb, expected, "expected DataFrame should not be nil")
	require.NotNil(tb, actual, "actual DataFrame should not be nil")

	assert.Equal(tb, expected.Len(), actual.Len(), "DataFrame lengths should match")
	assert.Equal(tb, expected.Columns().Labels(), actual.Columns().Labels(), "DataFrame columns should match")
	assert.True(tb, expected.Equal(actual), "expected %v, got %v", expected, actual)
}

// AssertDataFrameHasColumns verifies that a DataFrame has exactly the expected column labels.
func AssertDataFrameHasColumns(tb testing.TB, df *dataframe.DataFrame, expectedColumns ...string) {
	tb.Helper()

	require.NotNil(tb, df, "DataFrame should not be nil")
	assert.Equal(tb, len(expectedColumns), df.Width(), "column count should match")

	for _, col := range expectedColumns {
		assert.True(tb, df.HasColumn(index.Str(col)), "DataFrame should have column %s", col)
	}
}
