package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paveg/lframe/internal/common"
	"github.com/paveg/lframe/internal/dataframe"
	"github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/series"
)

const (
	opReadJSON  = "ReadJSON"
	opWriteJSON = "WriteJSON"
)

// Read reads JSON records and returns a DataFrame. Every record must carry
// the same fields; the field named by IndexField becomes the row index.
func (r *JSONReader) Read() (*dataframe.DataFrame, error) {
	var (
		records [][]any
		keys    []string
		err     error
	)
	switch r.options.Format {
	case JSONArray:
		keys, records, err = r.readJSONArray()
	case JSONLines:
		keys, records, err = r.readJSONLines()
	default:
		return nil, fmt.Errorf("unsupported JSON format: %d", r.options.Format)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NewEmptyDataFrameError(opReadJSON)
	}
	return r.recordsToDataFrame(keys, records)
}

// readJSONArray reads JSON array format.
func (r *JSONReader) readJSONArray() ([]string, [][]any, error) {
	dec := json.NewDecoder(r.reader)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("reading JSON array: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, nil, fmt.Errorf("reading JSON array: expected '[', got %v", tok)
	}

	var rec recordSet
	for dec.More() {
		if err := rec.add(dec); err != nil {
			return nil, nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("reading JSON array: %w", err)
	}
	return rec.keys, rec.rows, nil
}

// readJSONLines reads JSON Lines format.
func (r *JSONReader) readJSONLines() ([]string, [][]any, error) {
	scanner := bufio.NewScanner(r.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rec recordSet
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := rec.add(dec); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning JSON lines: %w", err)
	}
	return rec.keys, rec.rows, nil
}

// recordSet collects records in the field order of the first one
type recordSet struct {
	keys     []string
	position map[string]int
	rows     [][]any
}

func (s *recordSet) add(dec *json.Decoder) error {
	keys, values, err := decodeRecord(dec)
	if err != nil {
		return fmt.Errorf("record %d: %w", len(s.rows)+1, err)
	}

	if s.position == nil {
		s.keys = keys
		s.position = make(map[string]int, len(keys))
		for i, k := range keys {
			if _, dup := s.position[k]; dup {
				return errors.NewValidationError(opReadJSON, k, "duplicate field in record 1")
			}
			s.position[k] = i
		}
	}

	if len(keys) != len(s.keys) {
		return errors.NewValidationError(opReadJSON, "",
			fmt.Sprintf("record %d has %d fields, expected %d", len(s.rows)+1, len(keys), len(s.keys)))
	}
	row := make([]any, len(s.keys))
	for i, k := range keys {
		pos, ok := s.position[k]
		if !ok {
			return errors.NewValidationError(opReadJSON, k,
				fmt.Sprintf("record %d has a field the first record lacks", len(s.rows)+1))
		}
		row[pos] = values[i]
	}
	s.rows = append(s.rows, row)
	return nil
}

// decodeRecord reads one object keeping its field order
func decodeRecord(dec *json.Decoder) ([]string, []any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	var values []any
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("field %s: %w", key, err)
		}
		keys = append(keys, key)
		values = append(values, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func (r *JSONReader) recordsToDataFrame(keys []string, records [][]any) (*dataframe.DataFrame, error) {
	column := func(j int) []any {
		out := make([]any, len(records))
		for i, rec := range records {
			out[i] = rec[j]
		}
		return out
	}

	indexField := r.options.IndexField
	if indexField == "" {
		indexField = DefaultIndexField
	}

	rows := index.DefaultFor(len(records))
	indexPos := -1
	for j, k := range keys {
		if k == indexField {
			indexPos = j
			break
		}
	}
	if indexPos >= 0 {
		labels, err := jsonLabels(column(indexPos))
		if err != nil {
			return nil, err
		}
		name := indexField
		if name == DefaultIndexField {
			name = ""
		}
		rows = index.New(labels, name)
	}

	columnLabels := make([]index.Label, 0, len(keys))
	built := make([]dataframe.ISeries, 0, len(keys))
	defer func() {
		for _, s := range built {
			s.Release()
		}
	}()

	for j, k := range keys {
		if j == indexPos {
			continue
		}
		s, err := r.jsonColumn(column(j), rows)
		if err != nil {
			return nil, &errors.DataFrameError{Op: opReadJSON, Column: k, Message: "building column", Cause: err}
		}
		built = append(built, s)
		columnLabels = append(columnLabels, index.Str(k))
	}
	if len(built) == 0 {
		return nil, errors.NewEmptyDataFrameError(opReadJSON)
	}

	r.logger.Debug("read json", "rows", rows.Len(), "columns", len(built))
	return dataframe.New(built, index.New(columnLabels, ""))
}

// jsonKind classifies a decoded column
type jsonKind int

const (
	kindInt jsonKind = iota
	kindFloat
	kindBool
	kindString
	kindMixed
)

func classify(values []any) (jsonKind, error) {
	var kind jsonKind
	for i, v := range values {
		var k jsonKind
		switch value := v.(type) {
		case nil:
			return 0, errors.NewValidationError(opReadJSON, "", "null values are not supported")
		case bool:
			k = kindBool
		case string:
			k = kindString
		case json.Number:
			k = kindFloat
			if _, err := value.Int64(); err == nil {
				k = kindInt
			}
		default:
			return 0, errors.NewUnsupportedTypeError(opReadJSON, fmt.Sprintf("%T", v))
		}

		switch {
		case i == 0 || kind == k:
			kind = k
		case (kind == kindInt && k == kindFloat) || (kind == kindFloat && k == kindInt):
			kind = kindFloat
		default:
			kind = kindMixed
		}
	}
	return kind, nil
}

func (r *JSONReader) jsonColumn(values []any, rows *index.Index) (dataframe.ISeries, error) {
	kind, err := classify(values)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindInt:
		out := make([]int64, len(values))
		for i, v := range values {
			out[i], _ = v.(json.Number).Int64()
		}
		return erase(series.New(out, rows, r.mem))
	case kindFloat:
		out := make([]float64, len(values))
		for i, v := range values {
			if out[i], err = v.(json.Number).Float64(); err != nil {
				return nil, fmt.Errorf("value %d: %w", i, err)
			}
		}
		return erase(series.New(out, rows, r.mem))
	case kindBool:
		out := make([]bool, len(values))
		for i, v := range values {
			out[i] = v.(bool)
		}
		return erase(series.New(out, rows, r.mem))
	default:
		// Mixed columns keep their text form
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = fmt.Sprint(v)
		}
		return erase(series.New(out, rows, r.mem))
	}
}

func jsonLabels(values []any) ([]index.Label, error) {
	kind, err := classify(values)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindInt:
		ints := make([]int64, len(values))
		for i, v := range values {
			ints[i], _ = v.(json.Number).Int64()
		}
		return common.IntLabels(ints)
	case kindString:
		labels := make([]index.Label, len(values))
		for i, v := range values {
			labels[i] = index.Str(v.(string))
		}
		return labels, nil
	default:
		return nil, errors.NewValidationError(opReadJSON, DefaultIndexField, "index labels must be all strings or all integers")
	}
}

// Write writes one object per row: the row label first, then one field per
// column in column order.
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	values := df.Values()
	rows := values[0].Index()
	indexField := indexFieldName(rows, df.Columns())

	arrays := make([]arrow.Array, len(values))
	for j, s := range values {
		arrays[j] = s.Array()
	}
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	names := make([][]byte, 0, len(arrays)+1)
	for _, name := range append([]string{indexField}, labelStrings(df.Columns())...) {
		encoded, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encoding field name %q: %w", name, err)
		}
		names = append(names, encoded)
	}

	buf := bufio.NewWriter(w.writer)
	if w.options.Format == JSONArray {
		buf.WriteString("[\n")
	} else if w.options.Format != JSONLines {
		return fmt.Errorf("unsupported JSON format: %d", w.options.Format)
	}

	for i := 0; i < df.Len(); i++ {
		label, _ := rows.At(i)
		record := make([]any, 0, len(arrays)+1)
		if n, ok := label.Int(); ok {
			record = append(record, n)
		} else {
			record = append(record, label.String())
		}
		for _, arr := range arrays {
			record = append(record, jsonValue(arr, i))
		}

		buf.WriteByte('{')
		for j, v := range record {
			encoded, err := encodeValue(v)
			if err != nil {
				return errors.NewConversionError(opWriteJSON, label.String(), err)
			}
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(names[j])
			buf.WriteByte(':')
			buf.Write(encoded)
		}
		buf.WriteByte('}')

		if w.options.Format == JSONArray && i < df.Len()-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	if w.options.Format == JSONArray {
		buf.WriteString("]\n")
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}

	w.logger.Debug("wrote json", "rows", df.Len(), "columns", df.Width(), "index_field", indexField)
	return nil
}

// encodeValue keeps whole floats recognizable as floats
func encodeValue(v any) ([]byte, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case float32, float64:
		if !bytes.ContainsAny(encoded, ".eE") {
			encoded = append(encoded, ".0"...)
		}
	}
	return encoded, nil
}

func labelStrings(idx *index.Index) []string {
	out := make([]string, idx.Len())
	for i, l := range idx.Labels() {
		out[i] = l.String()
	}
	return out
}

// jsonValue extracts a value from an Arrow array for encoding
func jsonValue(arr arrow.Array, i int) any {
	switch typedArr := arr.(type) {
	case *array.String:
		return typedArr.Value(i)
	case *array.Int64:
		return typedArr.Value(i)
	case *array.Int32:
		return typedArr.Value(i)
	case *array.Float64:
		return typedArr.Value(i)
	case *array.Float32:
		return typedArr.Value(i)
	case *array.Boolean:
		return typedArr.Value(i)
	default:
		return nil
	}
}

var (
	_ DataReader = (*JSONReader)(nil)
	_ DataWriter = (*JSONWriter)(nil)
)
