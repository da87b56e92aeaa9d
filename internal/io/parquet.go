package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/lframe/internal/common"
	"github.com/paveg/lframe/internal/dataframe"
	"github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/series"
)

// Schema metadata keys describing how labels were stored
const (
	metaIndexField = "lframe.index_field"
	metaIndexName  = "lframe.index_name"
	metaColumnKind = "lframe.column_kind"
	columnKindInt  = "int"
	columnKindStr  = "string"
	opReadParquet  = "ReadParquet"
	opWriteParquet = "WriteParquet"
)

// Read reads Parquet data and returns a DataFrame. Files written by
// ParquetWriter get their row index and column labels back; other files
// get a default range index.
func (r *ParquetReader) Read() (*dataframe.DataFrame, error) {
	// Read all data into memory for Parquet reading
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	props := pqarrow.ArrowReadProperties{BatchSize: int64(r.options.BatchSize)}
	arrowReader, err := pqarrow.NewFileReader(pqReader, props, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer table.Release()

	return r.arrowTableToDataFrame(table)
}

// Write writes the DataFrame to Parquet format with the row index as the
// leading column.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	record, err := w.dataFrameToRecord(df)
	if err != nil {
		return fmt.Errorf("converting DataFrame to Arrow record: %w", err)
	}
	defer record.Release()

	table := array.NewTableFromRecords(record.Schema(), []arrow.Record{record})
	defer table.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compressionCodec(w.options.Compression)),
		parquet.WithBatchSize(int64(w.options.BatchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(w.mem),
		pqarrow.WithStoreSchema(),
	)

	writer, err := pqarrow.NewFileWriter(table.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	chunkSize := int64(w.options.BatchSize)
	if chunkSize <= 0 {
		chunkSize = table.NumRows()
	}
	if err := writer.WriteTable(table, chunkSize); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}

	w.logger.Debug("wrote parquet",
		"rows", table.NumRows(), "columns", df.Width(), "compression", w.options.Compression)
	return nil
}

func compressionCodec(name string) compress.Compression {
	switch name {
	case "snappy":
		return compress.Codecs.Snappy
	case "gzip":
		return compress.Codecs.Gzip
	case "lz4":
		return compress.Codecs.Lz4Raw
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// dataFrameToRecord lays the row index out first, followed by one field
// per column named after its label.
func (w *ParquetWriter) dataFrameToRecord(df *dataframe.DataFrame) (arrow.Record, error) {
	values := df.Values()
	rows := values[0].Index()

	indexField := indexFieldName(rows, df.Columns())

	arrays := make([]arrow.Array, 0, len(values)+1)
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	fields := make([]arrow.Field, 0, len(values)+1)
	indexArr := w.indexArray(rows)
	arrays = append(arrays, indexArr)
	fields = append(fields, arrow.Field{Name: indexField, Type: indexArr.DataType()})

	columnKind := columnKindInt
	for _, l := range df.Columns().Labels() {
		if l.Kind() != index.KindInt {
			columnKind = columnKindStr
			break
		}
	}

	for j, s := range values {
		label, _ := df.Columns().At(j)
		arr := s.Array()
		arrays = append(arrays, arr)
		if !isStorable(arr.DataType().ID()) {
			return nil, errors.NewUnsupportedTypeError(opWriteParquet, arr.DataType().Name())
		}
		fields = append(fields, arrow.Field{Name: label.String(), Type: arr.DataType()})
	}

	meta := arrow.NewMetadata(
		[]string{metaIndexField, metaIndexName, metaColumnKind},
		[]string{indexField, rows.Name(), columnKind},
	)
	schema := arrow.NewSchema(fields, &meta)
	return array.NewRecord(schema, arrays, int64(df.Len())), nil
}

// indexArray stores integer labels as int64 and everything else as text
func (w *ParquetWriter) indexArray(rows *index.Index) arrow.Array {
	labels := rows.Labels()
	allInts := true
	for _, l := range labels {
		if l.Kind() != index.KindInt {
			allInts = false
			break
		}
	}

	if allInts {
		builder := array.NewInt64Builder(w.mem)
		defer builder.Release()
		for _, l := range labels {
			n, _ := l.Int()
			builder.Append(int64(n))
		}
		return builder.NewArray()
	}

	builder := array.NewStringBuilder(w.mem)
	defer builder.Release()
	for _, l := range labels {
		builder.Append(l.String())
	}
	return builder.NewArray()
}

func isStorable(id arrow.Type) bool {
	//nolint:exhaustive // Only handling supported types
	switch id {
	case arrow.INT64, arrow.INT32, arrow.FLOAT64, arrow.FLOAT32, arrow.STRING, arrow.BOOL:
		return true
	default:
		return false
	}
}

// arrowTableToDataFrame converts an Arrow table to a DataFrame.
func (r *ParquetReader) arrowTableToDataFrame(table arrow.Table) (*dataframe.DataFrame, error) {
	if table.NumRows() == 0 || table.NumCols() == 0 {
		return nil, errors.NewEmptyDataFrameError(opReadParquet)
	}

	schema := table.Schema()
	meta := schema.Metadata()
	indexField := metadataValue(meta, metaIndexField)

	first := 0
	rows := index.DefaultFor(int(table.NumRows()))
	if indexField != "" && schema.Field(0).Name == indexField {
		labels, err := indexLabels(table.Column(0))
		if err != nil {
			return nil, err
		}
		rows = index.New(labels, metadataValue(meta, metaIndexName))
		first = 1
	}

	if first >= int(table.NumCols()) {
		return nil, errors.NewEmptyDataFrameError(opReadParquet)
	}

	intColumns := metadataValue(meta, metaColumnKind) == columnKindInt
	columnLabels := make([]index.Label, 0, int(table.NumCols())-first)
	built := make([]dataframe.ISeries, 0, int(table.NumCols())-first)
	defer func() {
		for _, s := range built {
			s.Release()
		}
	}()

	for i := first; i < int(table.NumCols()); i++ {
		field := schema.Field(i)
		s, err := r.arrowColumnToSeries(table.Column(i), rows)
		if err != nil {
			return nil, fmt.Errorf("converting column %s: %w", field.Name, err)
		}
		built = append(built, s)
		columnLabels = append(columnLabels, columnLabel(field.Name, intColumns))
	}

	r.logger.Debug("read parquet", "rows", rows.Len(), "columns", len(built), "index", rows.Name())
	return dataframe.New(built, index.New(columnLabels, ""))
}

func metadataValue(meta arrow.Metadata, key string) string {
	if i := meta.FindKey(key); i >= 0 {
		return meta.Values()[i]
	}
	return ""
}

func columnLabel(name string, intColumns bool) index.Label {
	if intColumns {
		if n, err := strconv.Atoi(name); err == nil {
			return index.Int(n)
		}
	}
	return index.Str(name)
}

func indexLabels(column *arrow.Column) ([]index.Label, error) {
	//nolint:exhaustive // Index columns are written as int64 or utf8
	switch column.DataType().ID() {
	case arrow.INT64:
		values, err := collect[int64, *array.Int64](column)
		if err != nil {
			return nil, err
		}
		return common.IntLabels(values)
	case arrow.STRING:
		values, err := collect[string, *array.String](column)
		if err != nil {
			return nil, err
		}
		return index.Strs(values...), nil
	default:
		return nil, errors.NewUnsupportedTypeError(opReadParquet, column.DataType().Name())
	}
}

// arrowColumnToSeries converts an Arrow column to a Series over rows.
func (r *ParquetReader) arrowColumnToSeries(column *arrow.Column, rows *index.Index) (dataframe.ISeries, error) {
	//nolint:exhaustive // Only handling supported types
	switch column.DataType().ID() {
	case arrow.INT64:
		return seriesFromColumn[int64, *array.Int64](column, rows, r)
	case arrow.INT32:
		return seriesFromColumn[int32, *array.Int32](column, rows, r)
	case arrow.FLOAT64:
		return seriesFromColumn[float64, *array.Float64](column, rows, r)
	case arrow.FLOAT32:
		return seriesFromColumn[float32, *array.Float32](column, rows, r)
	case arrow.STRING:
		return seriesFromColumn[string, *array.String](column, rows, r)
	case arrow.BOOL:
		return seriesFromColumn[bool, *array.Boolean](column, rows, r)
	default:
		return nil, errors.NewUnsupportedTypeError(opReadParquet, column.DataType().Name())
	}
}

type valueArray[T any] interface {
	arrow.Array
	Value(i int) T
}

func seriesFromColumn[T any, A valueArray[T]](
	column *arrow.Column, rows *index.Index, r *ParquetReader,
) (dataframe.ISeries, error) {
	values, err := collect[T, A](column)
	if err != nil {
		return nil, err
	}
	return erase(series.New(values, rows, r.mem))
}

// collect flattens every chunk of a column. Nulls are rejected.
func collect[T any, A valueArray[T]](column *arrow.Column) ([]T, error) {
	values := make([]T, 0, column.Len())
	for _, chunk := range column.Data().Chunks() {
		if chunk.NullN() > 0 {
			return nil, errors.NewValidationError(opReadParquet, column.Name(), "null values are not supported")
		}
		typed, ok := chunk.(A)
		if !ok {
			return nil, errors.NewUnsupportedTypeError(opReadParquet, chunk.DataType().Name())
		}
		for i := 0; i < typed.Len(); i++ {
			values = append(values, typed.Value(i))
		}
	}
	return values, nil
}
