package testutil_test

import (
	"strings"
	"testing"

	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/io"
	"github.com/paveg/lframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSalaryFrame(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateSalaryFrame(t, mem.Allocator)
	defer df.Release()

	assert.Equal(t, "DataFrame(4, 3)", df.String())
	testutil.AssertDataFrameHasColumns(t, df, "names", "salary", "cash flow")

	rows := df.Values()[0].Index()
	assert.Equal(t, "names", rows.Name())
	assert.True(t, rows.Contains(index.Str("user 4")))
}

func TestNewSalary_SharesIndex(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	fixture := testutil.NewSalary(mem.Allocator)
	defer fixture.Release()

	for _, s := range fixture.List() {
		assert.Same(t, fixture.Users, s.Index())
	}
}

func TestSalaryCSVMatchesFixture(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	parsed, err := io.NewCSVReader(strings.NewReader(testutil.SalaryCSV), io.DefaultCSVOptions(), mem.Allocator).Read()
	require.NoError(t, err)
	defer parsed.Release()

	df := testutil.CreateSalaryFrame(t, mem.Allocator)
	defer df.Release()

	// Parsed fields stay textual, so only the labels line up
	testutil.AssertDataFrameHasColumns(t, parsed, "names", "salary", "cash flow")
	assert.Equal(t, df.Values()[0].Index().Labels(), parsed.Values()[0].Index().Labels())
	assert.False(t, df.Equal(parsed))

	names, err := parsed.At(0)
	require.NoError(t, err)
	expected, err := df.At(0)
	require.NoError(t, err)
	assert.Equal(t, expected.String(), names.String())
}

func TestAssertDataFrameEqual(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	a := testutil.CreateSalaryFrame(t, mem.Allocator)
	defer a.Release()
	b := testutil.CreateSalaryFrame(t, mem.Allocator)
	defer b.Release()

	testutil.AssertDataFrameEqual(t, a, b)
}
