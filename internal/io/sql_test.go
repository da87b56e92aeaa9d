package io_test

import (
	"database/sql"
	"testing"

	"github.com/paveg/lframe/internal/dataframe"
	dferrors "github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/io"
	"github.com/paveg/lframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := io.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLRoundTrip(t *testing.T) {
	t.Run("salary frame", func(t *testing.T) {
		mem := checkedAllocator(t)
		db := openTestDB(t)

		df := createSalaryFrame(t, mem)
		defer df.Release()

		require.NoError(t, io.NewSQLWriter(db, "salaries").WriteContext(t.Context(), df))

		result, err := io.NewSQLReader(db, "salaries", mem).ReadContext(t.Context())
		require.NoError(t, err)
		defer result.Release()

		assert.True(t, df.Equal(result))
		assert.Equal(t, index.Strs("names", "salary", "cash flow"), result.Columns().Labels())
		assert.Equal(t, index.Strs(users...), result.Values()[0].Index().Labels())
	})

	t.Run("typed columns and int index", func(t *testing.T) {
		mem := checkedAllocator(t)
		db := openTestDB(t)

		df := createMixedTypeFrame(t, mem)
		defer df.Release()

		require.NoError(t, io.NewSQLWriter(db, "mixed").Write(df))

		result, err := io.NewSQLReader(db, "mixed", mem).Read()
		require.NoError(t, err)
		defer result.Release()

		rows := result.Values()[0].Index()
		assert.Equal(t, "id", rows.Name())
		assert.Equal(t, index.Ints(10, 20, 30), rows.Labels())

		// Narrow types widen to their SQLite storage class
		i32, ok := dataframe.Typed[int64](result, index.Str("int32_col"))
		require.True(t, ok)
		assert.Equal(t, []int64{10, 20, 30}, i32.Values())

		flags, ok := dataframe.Typed[bool](result, index.Str("bool_col"))
		require.True(t, ok)
		assert.Equal(t, []bool{true, false, true}, flags.Values())

		f64, ok := dataframe.Typed[float64](result, index.Str("float64_col"))
		require.True(t, ok)
		assert.InDeltaSlice(t, []float64{1.1, 2.2, 3.3}, f64.Values(), 1e-9)
	})

	t.Run("default labels", func(t *testing.T) {
		mem := checkedAllocator(t)
		db := openTestDB(t)

		s := series.MustNew([]int64{4, 5, 6}, nil, mem)
		defer s.Release()
		df, err := dataframe.New([]dataframe.ISeries{s}, nil)
		require.NoError(t, err)
		defer df.Release()

		require.NoError(t, io.NewSQLWriter(db, "plain").Write(df))

		result, err := io.NewSQLReader(db, "plain", mem).Read()
		require.NoError(t, err)
		defer result.Release()

		assert.True(t, df.Equal(result))
		assert.True(t, result.Columns().IsRange())
	})

	t.Run("rewrite replaces table", func(t *testing.T) {
		mem := checkedAllocator(t)
		db := openTestDB(t)

		df := createSalaryFrame(t, mem)
		defer df.Release()

		writer := io.NewSQLWriter(db, "salaries")
		require.NoError(t, writer.Write(df))
		require.NoError(t, writer.Write(df))

		var count int
		require.NoError(t, db.QueryRow(`SELECT count(*) FROM "salaries"`).Scan(&count))
		assert.Equal(t, 4, count)
	})
}

func TestSQLReader(t *testing.T) {
	t.Run("foreign table gets default index", func(t *testing.T) {
		mem := checkedAllocator(t)
		db := openTestDB(t)

		_, err := db.Exec(`CREATE TABLE scores (player TEXT NOT NULL, score INTEGER NOT NULL)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO scores VALUES ('ann', 3), ('bob', 4)`)
		require.NoError(t, err)

		result, err := io.NewSQLReader(db, "scores", mem).Read()
		require.NoError(t, err)
		defer result.Release()

		assert.Equal(t, index.Strs("player", "score"), result.Columns().Labels())
		score, ok := dataframe.Typed[int64](result, index.Str("score"))
		require.True(t, ok)
		assert.True(t, score.Index().IsRange())
		total, err := score.Sum()
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
	})

	t.Run("empty table", func(t *testing.T) {
		db := openTestDB(t)
		_, err := db.Exec(`CREATE TABLE empty (v INTEGER)`)
		require.NoError(t, err)

		_, err = io.NewSQLReader(db, "empty", nil).Read()
		require.ErrorIs(t, err, dferrors.ErrEmptyDataFrame)
	})

	t.Run("null values are rejected", func(t *testing.T) {
		db := openTestDB(t)
		_, err := db.Exec(`CREATE TABLE gaps (v INTEGER)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO gaps VALUES (1), (NULL)`)
		require.NoError(t, err)

		_, err = io.NewSQLReader(db, "gaps", nil).Read()
		require.Error(t, err)
	})

	t.Run("missing table", func(t *testing.T) {
		db := openTestDB(t)
		_, err := io.NewSQLReader(db, "nope", nil).Read()
		require.Error(t, err)
	})

	t.Run("unsupported declared type", func(t *testing.T) {
		db := openTestDB(t)
		_, err := db.Exec(`CREATE TABLE blobs (v BLOB)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO blobs VALUES (x'00')`)
		require.NoError(t, err)

		_, err = io.NewSQLReader(db, "blobs", nil).Read()
		require.ErrorIs(t, err, dferrors.ErrUnsupportedType)
	})
}
