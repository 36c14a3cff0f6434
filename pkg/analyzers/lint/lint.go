// Package lint runs an external Python linter on one file at a time and
// counts the findings it prints.
package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"time"
)

// Defaults mirror `pylint --disable=R,C <file>`.
const (
	DefaultCommand = "pylint"
	DefaultPattern = `\b[RCWEF](?:\d{4})?:\s`

	// usageErrorExit is the pylint exit bit for command-line usage errors.
	usageErrorExit = 32
)

// DefaultArgs disables the refactor and convention categories.
var DefaultArgs = []string{"--disable=R,C"}

// ErrToolInvocation is matched by every ToolInvocationError.
var ErrToolInvocation = errors.New("lint tool invocation failed")

// ToolInvocationError reports that the linter could not produce a usable run.
type ToolInvocationError struct {
	Path string
	Err  error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("lint %s: %v", e.Path, e.Err)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrToolInvocation) hold.
func (e *ToolInvocationError) Is(target error) bool {
	return target == ErrToolInvocation
}

// Config configures a Runner.
type Config struct {
	Command string
	Args    []string
	Pattern string
	Timeout time.Duration
}

// DefaultConfig returns the pylint configuration.
func DefaultConfig() Config {
	return Config{
		Command: DefaultCommand,
		Args:    append([]string(nil), DefaultArgs...),
		Pattern: DefaultPattern,
	}
}

// Runner invokes the linter.
type Runner struct {
	command string
	args    []string
	pattern *regexp.Regexp
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for failed invocations.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner builds a Runner from cfg. Empty fields take the defaults.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	def := DefaultConfig()

	if cfg.Command == "" {
		cfg.Command = def.Command
	}

	if cfg.Args == nil {
		cfg.Args = def.Args
	}

	if cfg.Pattern == "" {
		cfg.Pattern = def.Pattern
	}

	re, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compile lint pattern %q: %w", cfg.Pattern, err)
	}

	r := &Runner{
		command: cfg.Command,
		args:    cfg.Args,
		pattern: re,
		timeout: cfg.Timeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Count runs the linter on path and returns the number of findings in its
// standard output. A non-zero exit is not a failure because linters report
// findings through their exit status. Failing to start, timing out and usage
// errors are returned as *ToolInvocationError.
func (r *Runner) Count(ctx context.Context, path string) (int, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), r.args...), path)

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, r.fail(path, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 0, r.fail(path, err)
		}

		if exitErr.ExitCode() == usageErrorExit {
			return 0, r.fail(path, fmt.Errorf("usage error: %s", bytes.TrimSpace(stderr.Bytes())))
		}
	}

	return len(r.pattern.FindAllIndex(stdout.Bytes(), -1)), nil
}

func (r *Runner) fail(path string, err error) error {
	r.logger.Warn("lint tool failed", "path", path, "command", r.command, "error", err)

	return &ToolInvocationError{Path: path, Err: err}
}
