package io_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/paveg/lframe/internal/dataframe"
	dferrors "github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/io"
	"github.com/paveg/lframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLinesOptions() io.JSONOptions {
	options := io.DefaultJSONOptions()
	options.Format = io.JSONLines
	return options
}

func TestJSONWriter_Write(t *testing.T) {
	t.Run("json lines keep column order", func(t *testing.T) {
		mem := checkedAllocator(t)
		df := createSalaryFrame(t, mem)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, jsonLinesOptions()).Write(df))

		expected := `{"__index__":"user 1","names":"Lukas Novak","salary":"20000","cash flow":"-100"}
{"__index__":"user 2","names":"Petr Pavel","salary":"300000","cash flow":"10000"}
{"__index__":"user 3","names":"Pavel Petr","salary":"20000","cash flow":"-2000"}
{"__index__":"user 4","names":"Ludek Skocil","salary":"50000","cash flow":"1100"}
`
		assert.Equal(t, expected, buf.String())
	})

	t.Run("json array with default labels", func(t *testing.T) {
		mem := checkedAllocator(t)
		s := series.MustNew([]int64{4, 5}, nil, mem)
		defer s.Release()
		df, err := dataframe.New([]dataframe.ISeries{s}, nil)
		require.NoError(t, err)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.DefaultJSONOptions()).Write(df))
		assert.Equal(t, "[\n{\"__index__\":0,\"0\":4},\n{\"__index__\":1,\"0\":5}\n]\n", buf.String())
	})

	t.Run("rejects values json cannot encode", func(t *testing.T) {
		mem := checkedAllocator(t)
		s := series.MustNew([]float64{1, math.NaN()}, nil, mem)
		defer s.Release()
		df, err := dataframe.New([]dataframe.ISeries{s}, nil)
		require.NoError(t, err)
		defer df.Release()

		var buf bytes.Buffer
		err = io.NewJSONWriter(&buf, io.DefaultJSONOptions()).Write(df)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "label 1")
	})
}

func TestJSONRoundTrip(t *testing.T) {
	t.Run("text frame through json lines", func(t *testing.T) {
		mem := checkedAllocator(t)
		df := createSalaryFrame(t, mem)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, jsonLinesOptions()).Write(df))

		result, err := io.NewJSONReader(&buf, jsonLinesOptions(), mem).Read()
		require.NoError(t, err)
		defer result.Release()

		assert.True(t, df.Equal(result))
		assert.Equal(t, index.Strs(users...), result.Values()[0].Index().Labels())
	})

	t.Run("typed columns and named int index", func(t *testing.T) {
		mem := checkedAllocator(t)
		df := createMixedTypeFrame(t, mem)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.DefaultJSONOptions()).Write(df))

		options := io.DefaultJSONOptions()
		options.IndexField = "id"
		result, err := io.NewJSONReader(&buf, options, mem).Read()
		require.NoError(t, err)
		defer result.Release()

		rows := result.Values()[0].Index()
		assert.Equal(t, "id", rows.Name())
		assert.Equal(t, index.Ints(10, 20, 30), rows.Labels())

		i32, ok := dataframe.Typed[int64](result, index.Str("int32_col"))
		require.True(t, ok)
		assert.Equal(t, []int64{10, 20, 30}, i32.Values())

		f32, ok := dataframe.Typed[float64](result, index.Str("float32_col"))
		require.True(t, ok)
		assert.InDeltaSlice(t, []float64{0.5, 1.5, 2.5}, f32.Values(), 1e-9)

		flags, ok := dataframe.Typed[bool](result, index.Str("bool_col"))
		require.True(t, ok)
		assert.Equal(t, []bool{true, false, true}, flags.Values())
	})

	t.Run("whole floats stay floats", func(t *testing.T) {
		mem := checkedAllocator(t)
		s := series.MustNew([]float64{1, 2}, nil, mem)
		defer s.Release()
		df, err := dataframe.New([]dataframe.ISeries{s}, nil)
		require.NoError(t, err)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewJSONWriter(&buf, io.DefaultJSONOptions()).Write(df))

		result, err := io.NewJSONReader(&buf, io.DefaultJSONOptions(), mem).Read()
		require.NoError(t, err)
		defer result.Release()

		values, ok := dataframe.Typed[float64](result, index.Str("0"))
		require.True(t, ok)
		assert.Equal(t, []float64{1, 2}, values.Values())
		assert.True(t, values.Index().IsRange())
	})
}

func TestJSONReader_Read(t *testing.T) {
	t.Run("records without index field", func(t *testing.T) {
		mem := checkedAllocator(t)
		data := `[{"a": 1, "b": "x"}, {"b": "y", "a": 2}]`

		df, err := io.NewJSONReader(strings.NewReader(data), io.DefaultJSONOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, index.Strs("a", "b"), df.Columns().Labels())
		a, ok := dataframe.Typed[int64](df, index.Str("a"))
		require.True(t, ok)
		assert.Equal(t, []int64{1, 2}, a.Values())
		assert.True(t, a.Index().IsRange())

		b, ok := dataframe.Typed[string](df, index.Str("b"))
		require.True(t, ok)
		assert.Equal(t, []string{"x", "y"}, b.Values())
	})

	t.Run("mixed values become text", func(t *testing.T) {
		mem := checkedAllocator(t)
		data := "{\"v\": 1}\n\n{\"v\": \"x\"}\n"

		df, err := io.NewJSONReader(strings.NewReader(data), jsonLinesOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		v, ok := dataframe.Typed[string](df, index.Str("v"))
		require.True(t, ok)
		assert.Equal(t, []string{"1", "x"}, v.Values())
	})

	t.Run("ints and floats widen", func(t *testing.T) {
		mem := checkedAllocator(t)
		data := `[{"v": 1}, {"v": 2.5}]`

		df, err := io.NewJSONReader(strings.NewReader(data), io.DefaultJSONOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		v, ok := dataframe.Typed[float64](df, index.Str("v"))
		require.True(t, ok)
		assert.Equal(t, []float64{1, 2.5}, v.Values())
	})

	t.Run("empty array", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader(`[]`), io.DefaultJSONOptions(), nil).Read()
		require.ErrorIs(t, err, dferrors.ErrEmptyDataFrame)
	})

	t.Run("only an index field", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader(`[{"__index__": "a"}]`), io.DefaultJSONOptions(), nil).Read()
		require.ErrorIs(t, err, dferrors.ErrEmptyDataFrame)
	})

	t.Run("null values", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader(`[{"v": 1}, {"v": null}]`), io.DefaultJSONOptions(), nil).Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "column 'v'")
	})

	t.Run("records with different fields", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader(`[{"a": 1}, {"b": 2}]`), io.DefaultJSONOptions(), nil).Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record 2")
	})

	t.Run("nested values", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader(`[{"a": {"b": 1}}]`), io.DefaultJSONOptions(), nil).Read()
		require.ErrorIs(t, err, dferrors.ErrUnsupportedType)
	})

	t.Run("malformed line", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader("{\"a\": 1}\n{\"a\": \n"), jsonLinesOptions(), nil).Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := io.NewJSONReader(strings.NewReader(`{"a": 1}`), io.DefaultJSONOptions(), nil).Read()
		require.Error(t, err)
	})
}
