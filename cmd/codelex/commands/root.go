// Package commands implements CLI command handlers for codelex.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/filemetrics"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/identifiers"
	"github.com/Sumatoshi-tech/codelex/pkg/analyzers/lint"
	"github.com/Sumatoshi-tech/codelex/pkg/archive"
	"github.com/Sumatoshi-tech/codelex/pkg/collect"
	"github.com/Sumatoshi-tech/codelex/pkg/config"
	"github.com/Sumatoshi-tech/codelex/pkg/observability"
	"github.com/Sumatoshi-tech/codelex/pkg/pipeline"
	"github.com/Sumatoshi-tech/codelex/pkg/version"
	"github.com/Sumatoshi-tech/codelex/pkg/vocabulary"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	logLevel    string
	logJSON     bool
	metricsFile string
	verbose     bool
	quiet       bool
}

// NewRootCommand creates the codelex root command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "codelex",
		Short: "Codelex - Python repository metrics and vocabulary overlap",
		Long: `Codelex analyzes archived Python repositories.

Commands:
  metrics   Per-repository code metrics for a directory of archives
  vocab     Documentation/code vocabulary overlap for a directory of archives
  validate  Check a saved metrics result against its schema
  show      Print a saved metrics result as a table`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: codelex.yaml in ., ./config or $HOME/.config/codelex)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.logJSON, "log-json", false, "emit JSON logs")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logs)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress output except errors")

	rootCmd.AddCommand(newMetricsCommand(opts))
	rootCmd.AddCommand(newVocabCommand(opts))
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// session is the loaded configuration plus the telemetry providers of one
// command invocation.
type session struct {
	cfg       *config.Config
	providers observability.Providers
}

// setup loads configuration, applies the global flags and initializes
// logging and telemetry. Callers must call close.
func (o *globalOptions) setup(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}

	if flags.Changed("log-json") {
		cfg.Logging.JSON = o.logJSON
	}

	if flags.Changed("metrics-file") {
		cfg.Telemetry.MetricsFile = o.metricsFile
	}

	switch {
	case o.verbose:
		cfg.Logging.Level = "debug"
	case o.quiet:
		cfg.Logging.Level = "error"
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogWriter = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &session{cfg: cfg, providers: providers}, nil
}

func (r *session) close(ctx context.Context) {
	if err := r.providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
		r.providers.Logger.Warn("telemetry shutdown failed", "error", err)
	}
}

func (r *session) logger() *slog.Logger {
	return r.providers.Logger
}

// newPipeline maps the loaded configuration onto a pipeline.
func (r *session) newPipeline(vocabScore bool) (*pipeline.Pipeline, error) {
	cfg := r.cfg

	depth, err := identifiers.ParseDepth(cfg.Identifiers.Depth)
	if err != nil {
		return nil, err
	}

	maxBytes, err := cfg.Archive.MaxExtractedBytes()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewPipelineMetrics(r.providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("create pipeline metrics: %w", err)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(r.logger()),
		pipeline.WithTracer(r.providers.Tracer),
		pipeline.WithMetrics(metrics),
	}

	if cfg.Lint.Enabled {
		runner, lintErr := lint.NewRunner(lint.Config{
			Command: cfg.Lint.Command,
			Args:    cfg.Lint.Args,
			Pattern: cfg.Lint.Pattern,
			Timeout: cfg.Lint.Timeout,
		}, lint.WithLogger(r.logger()))
		if lintErr != nil {
			return nil, lintErr
		}

		opts = append(opts, pipeline.WithLinter(runner))
	}

	return pipeline.New(pipeline.Config{
		Collect: collect.Config{
			Extensions: cfg.Source.Extensions,
			SkipVendor: cfg.Source.SkipVendor,
		},
		Archive: archive.Config{
			TempDir:          cfg.Archive.TempDir,
			MaxExtractedSize: maxBytes,
		},
		Files: filemetrics.Config{
			Depth:         depth,
			CommentMarker: cfg.Source.CommentMarker,
		},
		Vocabulary: vocabulary.Config{
			ReadmePrefix:  cfg.Vocabulary.ReadmePrefix,
			CommentMarker: cfg.Source.CommentMarker,
		},
		VocabularyScore: vocabScore,
		ParseCacheSize:  cfg.Source.ParseCacheSize,
	}, opts...)
}

// archiveDir returns the positional directory argument or the configured one.
func (r *session) archiveDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return r.cfg.Source.ArchiveDir
}
