// Package config loads codelex configuration from defaults, an optional
// YAML file, an optional .env file and CODELEX_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/codelex/pkg/safeconv"
)

// Sentinel validation errors.
var (
	ErrInvalidDepth       = errors.New("identifiers.depth must be regex or syntax")
	ErrInvalidFormat      = errors.New("output.format must be json or yaml")
	ErrInvalidLogLevel    = errors.New("invalid logging.level")
	ErrInvalidSize        = errors.New("invalid archive.max_extracted_size")
	ErrInvalidPattern     = errors.New("invalid lint.pattern")
	ErrEmptyLintCommand   = errors.New("lint.command must be set when lint is enabled")
	ErrInvalidCacheSize   = errors.New("source.parse_cache_size must be positive")
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be within 0..1")
	ErrNoExtensions       = errors.New("source.extensions must not be empty")
)

const (
	envPrefix      = "CODELEX"
	configName     = "codelex"
	dotEnvFile     = ".env"
	outputJSON     = "json"
	outputYAML     = "yaml"
	depthRegex     = "regex"
	depthSyntax    = "syntax"
	maxSampleRatio = 1.0
)

// Config holds all codelex configuration.
type Config struct {
	Source      SourceConfig      `mapstructure:"source"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
	Identifiers IdentifiersConfig `mapstructure:"identifiers"`
	Lint        LintConfig        `mapstructure:"lint"`
	Vocabulary  VocabularyConfig  `mapstructure:"vocabulary"`
	Output      OutputConfig      `mapstructure:"output"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

// SourceConfig selects the input and the files analyzed in each repository.
type SourceConfig struct {
	ArchiveDir     string   `mapstructure:"archive_dir"`
	Extensions     []string `mapstructure:"extensions"`
	CommentMarker  string   `mapstructure:"comment_marker"`
	SkipVendor     bool     `mapstructure:"skip_vendor"`
	ParseCacheSize int      `mapstructure:"parse_cache_size"`
}

// ArchiveConfig controls extraction.
type ArchiveConfig struct {
	TempDir          string `mapstructure:"temp_dir"`
	MaxExtractedSize string `mapstructure:"max_extracted_size"`
}

// MaxExtractedBytes parses MaxExtractedSize; "0" or "" disables the budget.
func (c ArchiveConfig) MaxExtractedBytes() (int64, error) {
	if c.MaxExtractedSize == "" || c.MaxExtractedSize == "0" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(c.MaxExtractedSize)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidSize, c.MaxExtractedSize, err)
	}

	size, ok := safeconv.Uint64ToInt64(n)
	if !ok {
		return 0, fmt.Errorf("%w %q: too large", ErrInvalidSize, c.MaxExtractedSize)
	}

	return size, nil
}

// IdentifiersConfig selects how identifiers are harvested for naming statistics.
type IdentifiersConfig struct {
	Depth string `mapstructure:"depth"`
}

// LintConfig configures the external linter.
type LintConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Pattern string        `mapstructure:"pattern"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// VocabularyConfig configures the documentation/code vocabulary score.
type VocabularyConfig struct {
	// Enabled adds shared_vocab_score to every metrics record.
	Enabled      bool   `mapstructure:"enabled"`
	ReadmePrefix string `mapstructure:"readme_prefix"`
}

// OutputConfig selects where results are written.
type OutputConfig struct {
	Path     string `mapstructure:"path"`
	Format   string `mapstructure:"format"`
	Parquet  string `mapstructure:"parquet"`
	VocabCSV string `mapstructure:"vocab_csv"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SlogLevel returns the parsed log level.
func (c LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w %q", ErrInvalidLogLevel, c.Level)
	}

	return level, nil
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	MetricsFile  string  `mapstructure:"metrics_file"`
}

// LoadConfig loads configuration. An empty configPath searches for
// codelex.yaml in ., ./config and $HOME/.config/codelex; a missing file is
// not an error. A .env file in the working directory is loaded first and
// never overrides variables already set.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load(dotEnvFile) //nolint:errcheck // the .env file is optional.

	viperCfg := newViper()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.config/codelex")
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	return decode(viperCfg)
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var cfg Config

	_ = viperCfg.Unmarshal(&cfg) //nolint:errcheck // defaults always decode.

	return &cfg
}

func newViper() *viper.Viper {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	return viperCfg
}

func decode(viperCfg *viper.Viper) (*Config, error) {
	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("source.archive_dir", DefaultArchiveDir)
	viperCfg.SetDefault("source.extensions", slices.Clone(DefaultExtensions))
	viperCfg.SetDefault("source.comment_marker", DefaultCommentMarker)
	viperCfg.SetDefault("source.skip_vendor", DefaultSkipVendor)
	viperCfg.SetDefault("source.parse_cache_size", DefaultParseCacheSize)

	viperCfg.SetDefault("archive.temp_dir", DefaultTempDir)
	viperCfg.SetDefault("archive.max_extracted_size", DefaultMaxExtractedSize)

	viperCfg.SetDefault("identifiers.depth", DefaultIdentifierDepth)

	viperCfg.SetDefault("lint.enabled", DefaultLintEnabled)
	viperCfg.SetDefault("lint.command", DefaultLintCommand)
	viperCfg.SetDefault("lint.args", slices.Clone(DefaultLintArgs))
	viperCfg.SetDefault("lint.pattern", DefaultLintPattern)
	viperCfg.SetDefault("lint.timeout", DefaultLintTimeout)

	viperCfg.SetDefault("vocabulary.enabled", DefaultVocabularyEnabled)
	viperCfg.SetDefault("vocabulary.readme_prefix", DefaultReadmePrefix)

	viperCfg.SetDefault("output.path", DefaultOutputPath)
	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.parquet", DefaultParquetPath)
	viperCfg.SetDefault("output.vocab_csv", DefaultVocabularyCSV)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("telemetry.metrics_file", DefaultMetricsFile)
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if len(c.Source.Extensions) == 0 {
		return ErrNoExtensions
	}

	if c.Source.ParseCacheSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.Source.ParseCacheSize)
	}

	if _, err := c.Archive.MaxExtractedBytes(); err != nil {
		return err
	}

	if c.Identifiers.Depth != depthRegex && c.Identifiers.Depth != depthSyntax {
		return fmt.Errorf("%w: %q", ErrInvalidDepth, c.Identifiers.Depth)
	}

	if c.Lint.Enabled && c.Lint.Command == "" {
		return ErrEmptyLintCommand
	}

	if _, err := regexp.Compile(c.Lint.Pattern); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	if c.Output.Format != outputJSON && c.Output.Format != outputYAML {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > maxSampleRatio {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}
