package io

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/lframe/internal/common"
	"github.com/paveg/lframe/internal/dataframe"
	"github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/series"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

const (
	// SQLiteDriver is the database/sql driver name registered by modernc.org/sqlite
	SQLiteDriver = "sqlite"

	// metaTable records how each stored frame laid out its labels
	metaTable = "lframe_meta"

	opReadSQL  = "ReadSQL"
	opWriteSQL = "WriteSQL"
)

// OpenSQLite opens a SQLite database. Use ":memory:" for a private
// in-memory database.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open(SQLiteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dsn, err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)
	return db, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Write stores df, replacing any table of the same name
func (w *SQLWriter) Write(df *dataframe.DataFrame) error {
	return w.WriteContext(context.Background(), df)
}

// WriteContext stores df in a single transaction. The row index becomes the
// first column, followed by one column per Series named after its label.
func (w *SQLWriter) WriteContext(ctx context.Context, df *dataframe.DataFrame) error {
	values := df.Values()
	rows := values[0].Index()

	indexColumn := indexFieldName(rows, df.Columns())
	indexInts := allInts(rows.Labels())

	arrays := make([]arrow.Array, len(values))
	for j, s := range values {
		arrays[j] = s.Array()
	}
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	definitions := make([]string, 0, len(values)+1)
	indexType := "TEXT"
	if indexInts {
		indexType = "INTEGER"
	}
	definitions = append(definitions, quoteIdent(indexColumn)+" "+indexType+" NOT NULL")
	for j, arr := range arrays {
		declType, ok := declaredType(arr.DataType().ID())
		if !ok {
			return errors.NewUnsupportedTypeError(opWriteSQL, arr.DataType().Name())
		}
		label, _ := df.Columns().At(j)
		definitions = append(definitions, quoteIdent(label.String())+" "+declType+" NOT NULL")
	}

	columnKind := columnKindStr
	if allInts(df.Columns().Labels()) {
		columnKind = columnKindInt
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		"DROP TABLE IF EXISTS " + quoteIdent(w.table),
		"CREATE TABLE " + quoteIdent(w.table) + " (" + strings.Join(definitions, ", ") + ")",
		"CREATE TABLE IF NOT EXISTS " + metaTable +
			" (table_name TEXT PRIMARY KEY, index_column TEXT NOT NULL, index_name TEXT NOT NULL, column_kind TEXT NOT NULL)",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO "+metaTable+" (table_name, index_column, index_name, column_kind) VALUES (?, ?, ?, ?)",
		w.table, indexColumn, rows.Name(), columnKind,
	); err != nil {
		return fmt.Errorf("recording table layout: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(arrays)+1), ", ")
	insert, err := tx.PrepareContext(ctx, "INSERT INTO "+quoteIdent(w.table)+" VALUES ("+placeholders+")")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	args := make([]any, len(arrays)+1)
	for i := 0; i < df.Len(); i++ {
		label, _ := rows.At(i)
		if n, ok := label.Int(); ok && indexInts {
			args[0] = int64(n)
		} else {
			args[0] = label.String()
		}
		for j, arr := range arrays {
			args[j+1] = sqlValue(arr, i)
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	w.logger.Debug("wrote sql table", "table", w.table, "rows", df.Len(), "columns", df.Width())
	return nil
}

func allInts(labels []index.Label) bool {
	for _, l := range labels {
		if l.Kind() != index.KindInt {
			return false
		}
	}
	return true
}

func declaredType(id arrow.Type) (string, bool) {
	//nolint:exhaustive // Only handling supported types
	switch id {
	case arrow.INT64, arrow.INT32:
		return "INTEGER", true
	case arrow.FLOAT64, arrow.FLOAT32:
		return "REAL", true
	case arrow.BOOL:
		return "BOOLEAN", true
	case arrow.STRING:
		return "TEXT", true
	default:
		return "", false
	}
}

// sqlValue extracts a value from an Arrow array as a driver value
func sqlValue(arr arrow.Array, i int) any {
	switch typedArr := arr.(type) {
	case *array.String:
		return typedArr.Value(i)
	case *array.Int64:
		return typedArr.Value(i)
	case *array.Int32:
		return int64(typedArr.Value(i))
	case *array.Float64:
		return typedArr.Value(i)
	case *array.Float32:
		return float64(typedArr.Value(i))
	case *array.Boolean:
		return typedArr.Value(i)
	default:
		return nil
	}
}

// Read loads the table into a DataFrame
func (r *SQLReader) Read() (*dataframe.DataFrame, error) {
	return r.ReadContext(context.Background())
}

type tableLayout struct {
	indexColumn string
	indexName   string
	columnKind  string
}

// ReadContext loads the table in insertion order. Tables written by
// SQLWriter get their row index and column labels back; other tables get a
// default range index.
func (r *SQLReader) ReadContext(ctx context.Context) (*dataframe.DataFrame, error) {
	layout, err := r.layout(ctx)
	if err != nil {
		return nil, err
	}

	result, err := r.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(r.table)+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %w", r.table, err)
	}
	defer result.Close()

	columnTypes, err := result.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading column types: %w", err)
	}

	collectors := make([]collector, len(columnTypes))
	targets := make([]any, len(columnTypes))
	for i, ct := range columnTypes {
		c, err := newCollector(ct.DatabaseTypeName())
		if err != nil {
			return nil, &errors.DataFrameError{Op: opReadSQL, Column: ct.Name(), Message: "mapping column", Cause: err}
		}
		collectors[i] = c
		targets[i] = c.target()
	}

	count := 0
	for result.Next() {
		if err := result.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", count, err)
		}
		for _, c := range collectors {
			c.commit()
		}
		count++
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	if count == 0 {
		return nil, errors.NewEmptyDataFrameError(opReadSQL)
	}

	first := 0
	rows := index.DefaultFor(count)
	if layout != nil && len(columnTypes) > 0 && columnTypes[0].Name() == layout.indexColumn {
		labels, err := collectors[0].labels()
		if err != nil {
			return nil, err
		}
		rows = index.New(labels, layout.indexName)
		first = 1
	}
	if first >= len(collectors) {
		return nil, errors.NewEmptyDataFrameError(opReadSQL)
	}

	intColumns := layout != nil && layout.columnKind == columnKindInt
	columnLabels := make([]index.Label, 0, len(collectors)-first)
	built := make([]dataframe.ISeries, 0, len(collectors)-first)
	defer func() {
		for _, s := range built {
			s.Release()
		}
	}()

	for i := first; i < len(collectors); i++ {
		s, err := collectors[i].build(rows, r.mem)
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", columnTypes[i].Name(), err)
		}
		built = append(built, s)
		columnLabels = append(columnLabels, columnLabel(columnTypes[i].Name(), intColumns))
	}

	r.logger.Debug("read sql table", "table", r.table, "rows", rows.Len(), "columns", len(built))
	return dataframe.New(built, index.New(columnLabels, ""))
}

// layout returns nil when the table was not written by SQLWriter
func (r *SQLReader) layout(ctx context.Context) (*tableLayout, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", metaTable,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking for %s: %w", metaTable, err)
	}
	if exists == 0 {
		return nil, nil
	}

	var layout tableLayout
	err = r.db.QueryRowContext(ctx,
		"SELECT index_column, index_name, column_kind FROM "+metaTable+" WHERE table_name = ?", r.table,
	).Scan(&layout.indexColumn, &layout.indexName, &layout.columnKind)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading layout of %s: %w", r.table, err)
	}
	return &layout, nil
}

// collector accumulates one result column. Scanning NULL into a typed
// target fails, so missing values surface as scan errors.
type collector interface {
	target() any
	commit()
	labels() ([]index.Label, error)
	build(rows *index.Index, mem memory.Allocator) (dataframe.ISeries, error)
}

type typedCollector[T any] struct {
	current T
	values  []T
}

func (c *typedCollector[T]) target() any { return &c.current }

func (c *typedCollector[T]) commit() { c.values = append(c.values, c.current) }

func (c *typedCollector[T]) labels() ([]index.Label, error) {
	switch values := any(c.values).(type) {
	case []int64:
		return common.IntLabels(values)
	case []string:
		return index.Strs(values...), nil
	default:
		return nil, errors.NewUnsupportedTypeError(opReadSQL, fmt.Sprintf("%T index", c.current))
	}
}

func (c *typedCollector[T]) build(rows *index.Index, mem memory.Allocator) (dataframe.ISeries, error) {
	return erase(series.New(c.values, rows, mem))
}

func newCollector(declType string) (collector, error) {
	switch strings.ToUpper(declType) {
	case "INTEGER", "INT", "BIGINT":
		return &typedCollector[int64]{}, nil
	case "REAL", "DOUBLE", "FLOAT":
		return &typedCollector[float64]{}, nil
	case "BOOLEAN", "BOOL":
		return &typedCollector[bool]{}, nil
	case "TEXT", "VARCHAR", "":
		return &typedCollector[string]{}, nil
	default:
		return nil, errors.NewUnsupportedTypeError(opReadSQL, declType)
	}
}
