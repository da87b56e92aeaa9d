package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/lframe/internal/dataframe"
	"github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/series"
	"github.com/paveg/lframe/internal/validation"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"

	opReadCSV = "ReadCSV"
)

// ReadRows splits delimited text into rows of fields. Blank lines are
// skipped; rows may differ in length. Quotes are lenient: a stray quote
// inside an unquoted field is kept as text.
func ReadRows(r io.Reader, options CSVOptions) ([][]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = options.Delimiter
	csvReader.Comment = options.Comment
	csvReader.TrimLeadingSpace = options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return records, nil
}

// Read reads the index-first layout: the header's first field names the row
// index and the rest label the columns; every later row starts with its row
// label followed by one field per column.
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	records, err := ReadRows(r.reader, r.options)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 || len(records[0]) < 2 {
		return nil, errors.NewEmptyDataFrameError(opReadCSV)
	}

	header := records[0]
	dataRows := records[1:]
	for i, row := range dataRows {
		if err := validation.ValidateLength(len(header), len(row), opReadCSV, fmt.Sprintf("row %d", i+2)); err != nil {
			return nil, err
		}
	}

	rowLabels := make([]string, len(dataRows))
	for i, row := range dataRows {
		rowLabels[i] = row[0]
	}
	rows := index.FromStrings(rowLabels, header[0])
	columns := index.FromStrings(header[1:], "")

	built := make([]dataframe.ISeries, 0, columns.Len())
	defer func() {
		for _, s := range built {
			s.Release()
		}
	}()

	for col := 1; col < len(header); col++ {
		columnData := make([]string, len(dataRows))
		for i, row := range dataRows {
			columnData[i] = row[col]
		}
		s, err := r.createSeriesFromStrings(columnData, rows)
		if err != nil {
			return nil, &errors.DataFrameError{
				Op:      opReadCSV,
				Column:  header[col],
				Message: "building column",
				Cause:   err,
			}
		}
		built = append(built, s)
	}

	r.logger.Debug("read csv", "rows", rows.Len(), "columns", columns.Len(), "index", rows.Name())
	return dataframe.New(built, columns)
}

// ReadSeries reads the two-row layout: the first row holds labels and the
// second holds the textual values.
func (r *CSVReader) ReadSeries() (*series.Series[string], error) {
	records, err := ReadRows(r.reader, r.options)
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, errors.NewEmptyValuesError("ReadSeries")
	}

	r.logger.Debug("read csv series", "labels", len(records[0]), "values", len(records[1]))
	return series.New(records[1], index.FromStrings(records[0], ""), r.mem)
}

// createSeriesFromStrings keeps text unless type inference is enabled
func (r *CSVReader) createSeriesFromStrings(data []string, idx *index.Index) (dataframe.ISeries, error) {
	if !r.options.InferTypes {
		return erase(series.New(data, idx, r.mem))
	}

	switch inferDataType(data) {
	case arrow.BOOL:
		return convertColumn(data, idx, r.mem, func(v string) (bool, error) {
			return strings.EqualFold(v, trueStr), nil
		})
	case arrow.INT64:
		return convertColumn(data, idx, r.mem, series.ParseInt)
	case arrow.FLOAT64:
		return convertColumn(data, idx, r.mem, series.ParseFloat)
	default:
		return erase(series.New(data, idx, r.mem))
	}
}

// erase drops the element type without turning a nil Series into a
// non-nil interface
func erase[T any](s *series.Series[T], err error) (dataframe.ISeries, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

func convertColumn[U any](
	data []string, idx *index.Index, mem memory.Allocator, parse func(string) (U, error),
) (dataframe.ISeries, error) {
	raw, err := series.New(data, idx, mem)
	if err != nil {
		return nil, err
	}
	defer raw.Release()
	return erase(series.TryApply(raw, parse))
}

// inferDataType determines the most specific type every value parses as.
// Empty fields keep the column textual.
func inferDataType(data []string) arrow.Type {
	canBeInt := true
	canBeFloat := true
	canBeBool := true

	for _, value := range data {
		if value == "" {
			return arrow.STRING
		}

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}

		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}

		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	switch {
	case canBeBool:
		return arrow.BOOL
	case canBeInt:
		return arrow.INT64
	case canBeFloat:
		return arrow.FLOAT64
	default:
		return arrow.STRING
	}
}

// Write writes the DataFrame in the layout Read accepts
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	values := df.Values()
	rows := values[0].Index()

	header := make([]string, 0, df.Width()+1)
	header = append(header, rows.Name())
	for _, l := range df.Columns().Labels() {
		header = append(header, l.String())
	}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("writing headers: %w", err)
	}

	arrays := make([]arrow.Array, len(values))
	for j, s := range values {
		arrays[j] = s.Array()
	}
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	for i := 0; i < df.Len(); i++ {
		label, _ := rows.At(i)
		row := make([]string, 0, len(arrays)+1)
		row = append(row, label.String())
		for _, arr := range arrays {
			row = append(row, valueAsString(arr, i))
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// valueAsString extracts a value from an Arrow array as text
func valueAsString(arr arrow.Array, i int) string {
	switch typedArr := arr.(type) {
	case *array.String:
		return typedArr.Value(i)
	case *array.Int64:
		return strconv.FormatInt(typedArr.Value(i), 10)
	case *array.Int32:
		return strconv.FormatInt(int64(typedArr.Value(i)), 10)
	case *array.Float64:
		return strconv.FormatFloat(typedArr.Value(i), 'g', -1, 64)
	case *array.Float32:
		return strconv.FormatFloat(float64(typedArr.Value(i)), 'g', -1, 32)
	case *array.Boolean:
		return strconv.FormatBool(typedArr.Value(i))
	default:
		return ""
	}
}
