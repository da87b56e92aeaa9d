package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/lframe/internal/config"
	"github.com/paveg/lframe/internal/dataframe"
	dferrors "github.com/paveg/lframe/internal/errors"
	dataio "github.com/paveg/lframe/internal/io"
	"github.com/paveg/lframe/internal/series"
	"github.com/paveg/lframe/internal/version"
)

type options struct {
	version    bool
	configPath string
	csvPath    string
	column     string
	agg        string
	numeric    bool
	parquetOut string
	jsonOut    string
	sqliteOut  string
	table      string
}

func customUsage(w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "lframe labeled data tool (version %s)\n\n", version.Version)
		fmt.Fprintf(w, "Usage: lframe-cli --csv FILE [options]\n\n")
		fmt.Fprintf(w, "Options:\n")
		fmt.Fprintf(w, "  --config FILE\n\t\tLoad settings from a .json, .yaml or .yml file (default: LFRAME_* environment)\n")
		fmt.Fprintf(w, "  --csv FILE\n\t\tIndex-first CSV input, - for stdin\n")
		fmt.Fprintf(w, "  --column LABEL\n\t\tPrint the column with this label\n")
		fmt.Fprintf(w, "  --agg sum|min|max|mean\n\t\tAggregate the selected column\n")
		fmt.Fprintf(w, "  --numeric\n\t\tParse the selected column as numbers before aggregating\n")
		fmt.Fprintf(w, "  --parquet FILE\n\t\tWrite the frame to a Parquet file\n")
		fmt.Fprintf(w, "  --json FILE\n\t\tWrite the frame as JSON Lines\n")
		fmt.Fprintf(w, "  --sqlite FILE\n\t\tWrite the frame to a SQLite database\n")
		fmt.Fprintf(w, "  --table NAME\n\t\tSQLite table name (default: from configuration)\n")
		fmt.Fprintf(w, "  -v, --version\n\t\tPrint version information and exit\n")
		fmt.Fprintf(w, "  -h, --help\n\t\tShow this help message and exit\n")
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lframe-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = customUsage(stderr)

	var opts options
	fs.BoolVar(&opts.version, "v", false, "Print version and exit")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit") // alias
	fs.StringVar(&opts.configPath, "config", "", "Configuration file")
	fs.StringVar(&opts.csvPath, "csv", "", "CSV input")
	fs.StringVar(&opts.column, "column", "", "Column label")
	fs.StringVar(&opts.agg, "agg", "", "Aggregation")
	fs.BoolVar(&opts.numeric, "numeric", false, "Parse column as numbers")
	fs.StringVar(&opts.parquetOut, "parquet", "", "Parquet output")
	fs.StringVar(&opts.jsonOut, "json", "", "JSON Lines output")
	fs.StringVar(&opts.sqliteOut, "sqlite", "", "SQLite output")
	fs.StringVar(&opts.table, "table", "", "SQLite table")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprint(stdout, version.Info().String())
		return 0
	}

	if opts.csvPath == "" {
		fs.Usage()
		return 1
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	config.SetGlobalConfig(cfg)

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	if err := execute(context.Background(), opts, cfg, logger, stdin, stdout); err != nil {
		logger.Error("lframe-cli failed", "error", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.LoadFromEnv()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func execute(
	ctx context.Context, opts options, cfg config.Config, logger *slog.Logger, stdin io.Reader, stdout io.Writer,
) error {
	mem := memory.NewGoAllocator()

	input := stdin
	if opts.csvPath != "-" {
		f, err := os.Open(opts.csvPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", opts.csvPath, err)
		}
		defer f.Close()
		input = f
	}

	df, err := dataio.NewCSVReader(input, dataio.CSVOptionsFromConfig(cfg), mem).WithLogger(logger).Read()
	if err != nil {
		return err
	}
	defer df.Release()

	fmt.Fprintln(stdout, df)
	fmt.Fprintln(stdout, df.Columns())

	if opts.column != "" {
		if err := report(stdout, df, opts); err != nil {
			return err
		}
	}

	if opts.parquetOut != "" {
		if err := writeParquet(opts.parquetOut, df, cfg); err != nil {
			return err
		}
		logger.Info("wrote parquet", "path", opts.parquetOut)
	}

	if opts.jsonOut != "" {
		if err := writeJSON(opts.jsonOut, df); err != nil {
			return err
		}
		logger.Info("wrote json lines", "path", opts.jsonOut)
	}

	if opts.sqliteOut != "" {
		table := opts.table
		if table == "" {
			table = cfg.SQLTable
		}
		if err := writeSQLite(ctx, opts.sqliteOut, table, df); err != nil {
			return err
		}
		logger.Info("wrote sqlite table", "path", opts.sqliteOut, "table", table)
	}

	return nil
}

func report(w io.Writer, df *dataframe.DataFrame, opts options) error {
	col, ok := df.Column(opts.column)
	if !ok {
		return dferrors.NewColumnNotFoundError("lframe-cli", opts.column)
	}

	if opts.agg == "" {
		fmt.Fprintln(w, col)
		return nil
	}

	values, err := numericColumn(col, opts.numeric)
	if err != nil {
		return err
	}
	defer values.Release()

	var result float64
	switch opts.agg {
	case "sum":
		result, err = values.Sum()
	case "min":
		result, err = values.Min()
	case "max":
		result, err = values.Max()
	case "mean":
		result, err = values.Mean()
	default:
		return fmt.Errorf("unknown aggregation %q", opts.agg)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s(%s) = %g\n", opts.agg, opts.column, result)
	return nil
}

// numericColumn widens col to float64. Text columns are parsed only when
// parse is set.
func numericColumn(col dataframe.ISeries, parse bool) (*series.Series[float64], error) {
	switch typed := col.(type) {
	case *series.Series[float64]:
		typed.Retain()
		return typed, nil
	case *series.Series[float32]:
		return series.Apply(typed, func(v float32) float64 { return float64(v) })
	case *series.Series[int64]:
		return series.Apply(typed, func(v int64) float64 { return float64(v) })
	case *series.Series[int32]:
		return series.Apply(typed, func(v int32) float64 { return float64(v) })
	case *series.Series[string]:
		if !parse {
			return nil, dferrors.NewNonNumericError("lframe-cli", col.DataType().Name())
		}
		return series.TryApply(typed, series.ParseFloat)
	default:
		return nil, dferrors.NewNonNumericError("lframe-cli", col.DataType().Name())
	}
}

func writeParquet(path string, df *dataframe.DataFrame, cfg config.Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	options := dataio.ParquetOptions{Compression: cfg.ParquetCompression, BatchSize: cfg.ParquetBatchSize}
	if err := dataio.NewParquetWriter(f, options).Write(df); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, df *dataframe.DataFrame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	options := dataio.DefaultJSONOptions()
	options.Format = dataio.JSONLines
	if err := dataio.NewJSONWriter(f, options).Write(df); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeSQLite(ctx context.Context, path, table string, df *dataframe.DataFrame) error {
	db, err := dataio.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return dataio.NewSQLWriter(db, table).WriteContext(ctx, df)
}
