// Package io provides input/output for labeled DataFrames.
//
// Key components:
//   - ReadRows, the text-to-rows tokenizer every CSV reader delegates to
//   - CSVReader/CSVWriter for the index-first CSV layout
//   - ParquetReader/ParquetWriter for columnar files
//   - JSONReader/JSONWriter for JSON arrays and JSON Lines of records
//   - SQLReader/SQLWriter for tables in a SQLite database
//
// Memory management: readers allocate Arrow buffers from the supplied
// allocator; callers Release the returned DataFrame or Series.
package io

import (
	"database/sql"
	"io"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/lframe/internal/config"
	"github.com/paveg/lframe/internal/dataframe"
	"github.com/paveg/lframe/internal/index"
)

const (
	// DefaultIndexField names the stored row index when the index is unnamed
	DefaultIndexField = "__index__"
)

// indexFieldName names the stored row index after the index itself unless
// that is empty or taken by a column
func indexFieldName(rows, columns *index.Index) string {
	name := rows.Name()
	if name == "" || columns.Contains(index.Str(name)) {
		return DefaultIndexField
	}
	return name
}

// DataReader defines the interface for reading data from various sources
type DataReader interface {
	// Read reads data from the source and returns a DataFrame
	Read() (*dataframe.DataFrame, error)
}

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
	// InferTypes converts columns that are entirely int, float or bool.
	// Off by default: ingested fields stay text until the caller converts them.
	InferTypes bool
}

// DefaultCSVOptions returns CSV options taken from the global configuration
func DefaultCSVOptions() CSVOptions {
	return CSVOptionsFromConfig(config.GetGlobalConfig())
}

// CSVOptionsFromConfig maps a configuration onto CSV options
func CSVOptionsFromConfig(cfg config.Config) CSVOptions {
	return CSVOptions{
		Delimiter:        cfg.DelimiterRune(),
		Comment:          cfg.CommentRune(),
		SkipInitialSpace: cfg.TrimLeadingSpace,
		InferTypes:       cfg.InferTypes,
	}
}

// CSVReader reads CSV data and converts it to DataFrames
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
	mem     memory.Allocator
	logger  *slog.Logger
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &CSVReader{
		reader:  reader,
		options: options,
		mem:     mem,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger used for debug output
func (r *CSVReader) WithLogger(logger *slog.Logger) *CSVReader {
	r.logger = logger
	return r
}

// CSVWriter writes DataFrames to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
}

// DefaultParquetOptions returns Parquet options taken from the global configuration
func DefaultParquetOptions() ParquetOptions {
	cfg := config.GetGlobalConfig()
	return ParquetOptions{
		Compression: cfg.ParquetCompression,
		BatchSize:   cfg.ParquetBatchSize,
	}
}

// ParquetReader reads Parquet data and converts it to DataFrames
type ParquetReader struct {
	reader  io.Reader
	options ParquetOptions
	mem     memory.Allocator
	logger  *slog.Logger
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions, mem memory.Allocator) *ParquetReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetReader{
		reader:  reader,
		options: options,
		mem:     mem,
		logger:  slog.Default(),
	}
}

// ParquetWriter writes DataFrames to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
	mem     memory.Allocator
	logger  *slog.Logger
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{
		writer:  writer,
		options: options,
		mem:     memory.NewGoAllocator(),
		logger:  slog.Default(),
	}
}

// JSONFormat represents the JSON layout
type JSONFormat int

const (
	// JSONArray is a single array of record objects
	JSONArray JSONFormat = iota
	// JSONLines is one record object per line
	JSONLines
)

// JSONOptions contains configuration options for JSON operations
type JSONOptions struct {
	// Format selects an array of records or one record per line
	Format JSONFormat
	// IndexField names the field read as the row index. Records without it
	// get the default range index.
	IndexField string
}

// DefaultJSONOptions returns default JSON options
func DefaultJSONOptions() JSONOptions {
	return JSONOptions{
		Format:     JSONArray,
		IndexField: DefaultIndexField,
	}
}

// JSONReader reads JSON records and converts them to DataFrames
type JSONReader struct {
	reader  io.Reader
	options JSONOptions
	mem     memory.Allocator
	logger  *slog.Logger
}

// NewJSONReader creates a new JSON reader with the specified options
func NewJSONReader(reader io.Reader, options JSONOptions, mem memory.Allocator) *JSONReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &JSONReader{
		reader:  reader,
		options: options,
		mem:     mem,
		logger:  slog.Default(),
	}
}

// JSONWriter writes DataFrames as JSON records
type JSONWriter struct {
	writer  io.Writer
	options JSONOptions
	logger  *slog.Logger
}

// NewJSONWriter creates a new JSON writer with the specified options
func NewJSONWriter(writer io.Writer, options JSONOptions) *JSONWriter {
	return &JSONWriter{
		writer:  writer,
		options: options,
		logger:  slog.Default(),
	}
}

// SQLReader loads a table written by SQLWriter back into a DataFrame
type SQLReader struct {
	db     *sql.DB
	table  string
	mem    memory.Allocator
	logger *slog.Logger
}

// NewSQLReader creates a reader for table in db
func NewSQLReader(db *sql.DB, table string, mem memory.Allocator) *SQLReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &SQLReader{
		db:     db,
		table:  table,
		mem:    mem,
		logger: slog.Default(),
	}
}

// SQLWriter stores a DataFrame as a table in db
type SQLWriter struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// NewSQLWriter creates a writer for table in db
func NewSQLWriter(db *sql.DB, table string) *SQLWriter {
	return &SQLWriter{
		db:     db,
		table:  table,
		logger: slog.Default(),
	}
}
