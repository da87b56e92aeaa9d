// Package config provides configuration management for lframe readers,
// writers and the command-line front end
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for lframe
type Config struct {
	// CSV Configuration
	Delimiter        string `json:"delimiter" yaml:"delimiter"`                   // Single-character field delimiter
	Comment          string `json:"comment" yaml:"comment"`                       // Comment character (empty = disabled)
	TrimLeadingSpace bool   `json:"trim_leading_space" yaml:"trim_leading_space"` // Trim whitespace before each field
	InferTypes       bool   `json:"infer_types" yaml:"infer_types"`               // Infer int/float/bool columns on import

	// Parquet Configuration
	ParquetCompression string `json:"parquet_compression" yaml:"parquet_compression"` // snappy, gzip, zstd, lz4, uncompressed
	ParquetBatchSize   int    `json:"parquet_batch_size" yaml:"parquet_batch_size"`   // Rows per write batch

	// SQL Configuration
	SQLTable string `json:"sql_table" yaml:"sql_table"` // Default table for SQLite export/import

	// Logging Configuration
	LogLevel string `json:"log_level" yaml:"log_level"` // debug, info, warn, error
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultDelimiter          = ","
	DefaultParquetCompression = "snappy"
	DefaultParquetBatchSize   = 1024
	DefaultSQLTable           = "frame"
	DefaultLogLevel           = "info"
)

var validCompressions = map[string]bool{
	"snappy":       true,
	"gzip":         true,
	"zstd":         true,
	"lz4":          true,
	"uncompressed": true,
}

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		Delimiter:          DefaultDelimiter,
		Comment:            "",
		TrimLeadingSpace:   false,
		InferTypes:         false,
		ParquetCompression: DefaultParquetCompression,
		ParquetBatchSize:   DefaultParquetBatchSize,
		SQLTable:           DefaultSQLTable,
		LogLevel:           DefaultLogLevel,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("Delimiter must be a single character, got %q", c.Delimiter)
	}

	if utf8.RuneCountInString(c.Comment) > 1 {
		return fmt.Errorf("Comment must be empty or a single character, got %q", c.Comment)
	}

	if c.Comment != "" && c.Comment == c.Delimiter {
		return fmt.Errorf("Comment and Delimiter must differ, both are %q", c.Delimiter)
	}

	if !validCompressions[c.ParquetCompression] {
		return fmt.Errorf("ParquetCompression must be one of snappy, gzip, zstd, lz4, uncompressed, got %q",
			c.ParquetCompression)
	}

	if c.ParquetBatchSize <= 0 {
		return fmt.Errorf("ParquetBatchSize must be positive, got %d", c.ParquetBatchSize)
	}

	if c.SQLTable == "" {
		return fmt.Errorf("SQLTable must not be empty")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.Delimiter == "" {
		c.Delimiter = defaults.Delimiter
	}
	if c.ParquetCompression == "" {
		c.ParquetCompression = defaults.ParquetCompression
	}
	if c.ParquetBatchSize == 0 {
		c.ParquetBatchSize = defaults.ParquetBatchSize
	}
	if c.SQLTable == "" {
		c.SQLTable = defaults.SQLTable
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}

	// Boolean fields keep their zero value so an explicit false survives.

	return c
}

// DelimiterRune returns the delimiter as a rune
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// CommentRune returns the comment character, or 0 when disabled
func (c Config) CommentRune() rune {
	if c.Comment == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(c.Comment)
	return r
}

// Level returns the slog level for LogLevel, defaulting to info
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps a level name to an slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LogLevel must be debug, info, warn or error, got %q", name)
	}
	return level, nil
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data
func LoadFromYAML(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON and YAML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() Config {
	config := NewConfig()

	if val := os.Getenv("LFRAME_DELIMITER"); val != "" {
		config.Delimiter = val
	}

	if val := os.Getenv("LFRAME_COMMENT"); val != "" {
		config.Comment = val
	}

	if val := os.Getenv("LFRAME_TRIM_LEADING_SPACE"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.TrimLeadingSpace = parsed
		}
	}

	if val := os.Getenv("LFRAME_INFER_TYPES"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.InferTypes = parsed
		}
	}

	if val := os.Getenv("LFRAME_PARQUET_COMPRESSION"); val != "" {
		config.ParquetCompression = strings.ToLower(val)
	}

	if val := os.Getenv("LFRAME_PARQUET_BATCH_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.ParquetBatchSize = parsed
		}
	}

	if val := os.Getenv("LFRAME_SQL_TABLE"); val != "" {
		config.SQLTable = val
	}

	if val := os.Getenv("LFRAME_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	return config
}
