package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paveg/lframe/internal/config"
	dataio "github.com/paveg/lframe/internal/io"
	"github.com/paveg/lframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	original := config.GetGlobalConfig()
	t.Cleanup(func() { config.SetGlobalConfig(original) })

	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeSalaryCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salary.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.SalaryCSV), 0o600))
	return path
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Version:")
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage: lframe-cli")

	code, _, _ = runCLI(t, "", "-h")
	assert.Equal(t, 0, code)

	code, _, _ = runCLI(t, "", "--bogus")
	assert.Equal(t, 2, code)
}

func TestRun_Summary(t *testing.T) {
	code, stdout, stderr := runCLI(t, testutil.SalaryCSV, "--csv", "-")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "DataFrame(4, 3)\nIndex([\"names\", \"salary\", \"cash flow\"])\n", stdout)
}

func TestRun_Column(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "--csv", writeSalaryCSV(t), "--column", "names")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "user 2\tPetr Pavel\n")
}

func TestRun_Aggregate(t *testing.T) {
	path := writeSalaryCSV(t)

	tests := []struct {
		agg      string
		expected string
	}{
		{"sum", "sum(salary) = 390000\n"},
		{"min", "min(salary) = 20000\n"},
		{"max", "max(salary) = 300000\n"},
		{"mean", "mean(salary) = 97500\n"},
	}

	for _, tt := range tests {
		t.Run(tt.agg, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, "", "--csv", path, "--column", "salary", "--agg", tt.agg, "--numeric")
			require.Equal(t, 0, code, stderr)
			assert.True(t, strings.HasSuffix(stdout, tt.expected), stdout)
		})
	}
}

func TestRun_AggregateErrors(t *testing.T) {
	path := writeSalaryCSV(t)

	t.Run("text without --numeric", func(t *testing.T) {
		code, _, stderr := runCLI(t, "", "--csv", path, "--column", "salary", "--agg", "sum")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "not numeric")
	})

	t.Run("unparseable text", func(t *testing.T) {
		code, _, _ := runCLI(t, "", "--csv", path, "--column", "names", "--agg", "sum", "--numeric")
		assert.Equal(t, 1, code)
	})

	t.Run("unknown column", func(t *testing.T) {
		code, _, stderr := runCLI(t, "", "--csv", path, "--column", "bonus")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "bonus")
	})

	t.Run("unknown aggregation", func(t *testing.T) {
		code, _, stderr := runCLI(t, "", "--csv", path, "--column", "salary", "--agg", "median", "--numeric")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "median")
	})
}

func TestRun_InferredColumnsAggregate(t *testing.T) {
	t.Setenv("LFRAME_INFER_TYPES", "true")

	code, stdout, stderr := runCLI(t, "", "--csv", writeSalaryCSV(t), "--column", "cash flow", "--agg", "max")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasSuffix(stdout, "max(cash flow) = 10000\n"), stdout)
}

func TestRun_Exports(t *testing.T) {
	dir := t.TempDir()
	parquetPath := filepath.Join(dir, "salary.parquet")
	sqlitePath := filepath.Join(dir, "salary.db")
	jsonPath := filepath.Join(dir, "salary.jsonl")

	code, _, stderr := runCLI(t, "",
		"--csv", writeSalaryCSV(t), "--parquet", parquetPath, "--sqlite", sqlitePath, "--table", "people",
		"--json", jsonPath)
	require.Equal(t, 0, code, stderr)

	f, err := os.Open(parquetPath)
	require.NoError(t, err)
	defer f.Close()

	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	fromParquet, err := dataio.NewParquetReader(f, dataio.DefaultParquetOptions(), mem.Allocator).Read()
	require.NoError(t, err)
	defer fromParquet.Release()
	testutil.AssertDataFrameHasColumns(t, fromParquet, "names", "salary", "cash flow")

	db, err := dataio.OpenSQLite(sqlitePath)
	require.NoError(t, err)
	defer db.Close()

	fromSQL, err := dataio.NewSQLReader(db, "people", mem.Allocator).ReadContext(t.Context())
	require.NoError(t, err)
	defer fromSQL.Release()
	testutil.AssertDataFrameEqual(t, fromParquet, fromSQL)

	jf, err := os.Open(jsonPath)
	require.NoError(t, err)
	defer jf.Close()

	jsonOptions := dataio.DefaultJSONOptions()
	jsonOptions.Format = dataio.JSONLines
	fromJSON, err := dataio.NewJSONReader(jf, jsonOptions, mem.Allocator).Read()
	require.NoError(t, err)
	defer fromJSON.Release()
	testutil.AssertDataFrameEqual(t, fromParquet, fromJSON)
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "salary.tsv")
	require.NoError(t, os.WriteFile(csvPath, []byte(strings.ReplaceAll(testutil.SalaryCSV, ",", "\t")), 0o600))

	cfgPath := filepath.Join(dir, "lframe.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("delimiter: \"\\t\"\n"), 0o600))

	code, stdout, stderr := runCLI(t, "", "--config", cfgPath, "--csv", csvPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "DataFrame(4, 3)")

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("parquet_compression: brotli\n"), 0o600))
	code, _, stderr = runCLI(t, "", "--config", badPath, "--csv", csvPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid configuration")
}
