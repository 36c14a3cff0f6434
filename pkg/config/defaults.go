package config

import "time"

// Source defaults.
const (
	DefaultArchiveDir     = "../zipped_repos"
	DefaultCommentMarker  = "#"
	DefaultSkipVendor     = false
	DefaultParseCacheSize = 256
)

// DefaultExtensions are the source file suffixes collected by default.
var DefaultExtensions = []string{".py"}

// Archive defaults.
const (
	DefaultTempDir          = ""
	DefaultMaxExtractedSize = "0"
)

// Identifier defaults.
const (
	DefaultIdentifierDepth = "regex"
)

// Lint defaults.
const (
	DefaultLintEnabled = true
	DefaultLintCommand = "pylint"
	DefaultLintPattern = `\b[RCWEF](?:\d{4})?:\s`
	DefaultLintTimeout = time.Duration(0)
)

// DefaultLintArgs are passed to the lint command before the file path.
var DefaultLintArgs = []string{"--disable=R,C"}

// Vocabulary defaults.
const (
	DefaultVocabularyEnabled = false
	DefaultReadmePrefix      = "readme"
)

// Output defaults.
const (
	DefaultOutputPath    = "repo_analysis_results.json"
	DefaultOutputFormat  = "json"
	DefaultParquetPath   = ""
	DefaultVocabularyCSV = "vocabulary_scores.csv"
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
	DefaultSampleRatio  = 0.0
	DefaultMetricsFile  = ""
)
