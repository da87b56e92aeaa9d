// Package lframe provides labeled data structures backed by Apache Arrow:
// an Index of labels, a Series binding values to an Index, and a DataFrame
// holding same-length Series keyed by a column Index.
//
// This package is the public API for the library.
//
// Key features:
//   - Labels are strings or integers; unlabeled data gets the range 0..n-1
//   - Length invariants are checked at construction and reported as errors
//   - Lookups by label return (value, ok) instead of failing
//   - CSV, JSON, Parquet and SQLite import and export
//
// Memory management: Series and DataFrames hold Arrow buffers and must be
// released when no longer needed:
//
//	mem := memory.NewGoAllocator()
//	df, err := lframe.ReadCSV(text, mem)
//	if err != nil {
//		return err
//	}
//	defer df.Release()
package lframe

import (
	"context"
	"database/sql"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/lframe/internal/dataframe"
	"github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
	dataio "github.com/paveg/lframe/internal/io"
	"github.com/paveg/lframe/internal/series"
)

// Label is a string or integer label
type Label = index.Label

// Index is an immutable, optionally named sequence of labels.
type Index = index.Index

// Series is a one-dimensional array of T bound to an Index.
type Series[T any] = series.Series[T]

// ISeries is a Series with its element type erased.
type ISeries = dataframe.ISeries

// DataFrame is an ordered collection of same-length Series keyed by a
// column Index.
type DataFrame = dataframe.DataFrame

// CSVOptions configures CSV reading and writing
type CSVOptions = dataio.CSVOptions

// JSONOptions configures JSON reading and writing
type JSONOptions = dataio.JSONOptions

// ParquetOptions configures Parquet reading and writing
type ParquetOptions = dataio.ParquetOptions

// Error kinds, for use with errors.Is.
var (
	ErrEmptyValues     = errors.ErrEmptyValues
	ErrLengthMismatch  = errors.ErrLengthMismatch
	ErrEmptyDataFrame  = errors.ErrEmptyDataFrame
	ErrNonNumeric      = errors.ErrNonNumeric
	ErrUnsupportedType = errors.ErrUnsupportedType
	ErrInvalidIndex    = errors.ErrInvalidIndex
	ErrColumnNotFound  = errors.ErrColumnNotFound
)

// Str returns a string label.
func Str(s string) Label { return index.Str(s) }

// Int returns an integer label.
func Int(n int) Label { return index.Int(n) }

// NewIndex creates an Index of string labels.
func NewIndex(labels []string, name string) *Index {
	return index.FromStrings(labels, name)
}

// NewIntIndex creates an Index of integer labels.
func NewIntIndex(labels []int, name string) *Index {
	return index.FromInts(labels, name)
}

// DefaultIndex returns the unnamed range index 0..n-1.
func DefaultIndex(n int) *Index {
	return index.DefaultFor(n)
}

// NewSeries creates a Series. A nil idx gives the default range index; the
// number of values must match the number of labels otherwise. Element types
// are string, int64, int32, float64, float32 and bool; Go's int is not
// supported, use int64.
//
// Example:
//
//	users := lframe.NewIndex([]string{"user 1", "user 2"}, "names")
//	salaries, err := lframe.NewSeries([]int64{20000, 300000}, users, mem)
func NewSeries[T any](values []T, idx *Index, mem memory.Allocator) (*Series[T], error) {
	return series.New(values, idx, mem)
}

// NewDataFrame creates a DataFrame. A nil columns index gives the default
// range labels. Every Series must have the same length.
func NewDataFrame(values []ISeries, columns *Index) (*DataFrame, error) {
	return dataframe.New(values, columns)
}

// Typed looks up a column and asserts its element type.
func Typed[T any](df *DataFrame, key Label) (*Series[T], bool) {
	return dataframe.Typed[T](df, key)
}

// Apply maps fn over s, keeping its Index.
func Apply[T, U any](s *Series[T], fn func(T) U) (*Series[U], error) {
	return series.Apply(s, fn)
}

// TryApply maps a fallible fn over s, stopping at the first error.
func TryApply[T, U any](s *Series[T], fn func(T) (U, error)) (*Series[U], error) {
	return series.TryApply(s, fn)
}

// Field parsers for use with TryApply.
var (
	ParseInt   = series.ParseInt
	ParseFloat = series.ParseFloat
	ParseBool  = series.ParseBool
)

// DefaultCSVOptions returns CSV options from the global configuration
func DefaultCSVOptions() CSVOptions {
	return dataio.DefaultCSVOptions()
}

// ReadCSV parses index-first delimited text: the header names the row index
// and the columns, and each row starts with its label. Fields stay text.
func ReadCSV(text string, mem memory.Allocator) (*DataFrame, error) {
	return dataio.NewCSVReader(strings.NewReader(text), DefaultCSVOptions(), mem).Read()
}

// ReadCSVFrom parses index-first delimited text from r.
func ReadCSVFrom(r io.Reader, options CSVOptions, mem memory.Allocator) (*DataFrame, error) {
	return dataio.NewCSVReader(r, options, mem).Read()
}

// ReadSeriesCSV parses two rows of delimited text: labels, then values.
func ReadSeriesCSV(text string, mem memory.Allocator) (*Series[string], error) {
	return dataio.NewCSVReader(strings.NewReader(text), DefaultCSVOptions(), mem).ReadSeries()
}

// WriteCSV writes df in the layout ReadCSV accepts.
func WriteCSV(w io.Writer, df *DataFrame, options CSVOptions) error {
	return dataio.NewCSVWriter(w, options).Write(df)
}

// DefaultJSONOptions returns options for a JSON array of records
func DefaultJSONOptions() JSONOptions {
	return dataio.DefaultJSONOptions()
}

// ReadJSON reads JSON records; the options name the row index field.
func ReadJSON(r io.Reader, options JSONOptions, mem memory.Allocator) (*DataFrame, error) {
	return dataio.NewJSONReader(r, options, mem).Read()
}

// WriteJSON writes one record per row, row label first.
func WriteJSON(w io.Writer, df *DataFrame, options JSONOptions) error {
	return dataio.NewJSONWriter(w, options).Write(df)
}

// DefaultParquetOptions returns Parquet options from the global configuration
func DefaultParquetOptions() ParquetOptions {
	return dataio.DefaultParquetOptions()
}

// ReadParquet reads a Parquet file, restoring labels stored by WriteParquet.
func ReadParquet(r io.Reader, options ParquetOptions, mem memory.Allocator) (*DataFrame, error) {
	return dataio.NewParquetReader(r, options, mem).Read()
}

// WriteParquet writes df with its row index as the leading column.
func WriteParquet(w io.Writer, df *DataFrame, options ParquetOptions) error {
	return dataio.NewParquetWriter(w, options).Write(df)
}

// OpenSQLite opens a SQLite database through the pure-Go driver.
func OpenSQLite(dsn string) (*sql.DB, error) {
	return dataio.OpenSQLite(dsn)
}

// ReadSQL loads table from db.
func ReadSQL(ctx context.Context, db *sql.DB, table string, mem memory.Allocator) (*DataFrame, error) {
	return dataio.NewSQLReader(db, table, mem).ReadContext(ctx)
}

// WriteSQL stores df as table in db, replacing any existing table.
func WriteSQL(ctx context.Context, db *sql.DB, table string, df *DataFrame) error {
	return dataio.NewSQLWriter(db, table).WriteContext(ctx, df)
}
