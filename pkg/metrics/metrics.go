// Package metrics provides the degradable result type shared by all
// per-file metrics, plus descriptive metadata for each metric.
//
// A metric either succeeds with a value or degrades to a documented
// default while keeping the reason, so one failing computation never
// poisons the others computed for the same file.
package metrics

import (
	"errors"
	"fmt"
)

// ErrMetricComputation wraps every reason a metric degraded.
var ErrMetricComputation = errors.New("metric computation failed")

// Result is the outcome of one metric computation.
type Result[T any] struct {
	Value T
	Err   error
}

// Success returns a result carrying value.
func Success[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Degraded returns a result carrying the default value and the reason.
// The reason is wrapped with ErrMetricComputation.
func Degraded[T any](def T, reason error) Result[T] {
	if reason == nil {
		reason = ErrMetricComputation
	} else if !errors.Is(reason, ErrMetricComputation) {
		reason = fmt.Errorf("%w: %w", ErrMetricComputation, reason)
	}

	return Result[T]{Value: def, Err: reason}
}

// IsDegraded reports whether the default value stands in for a failed computation.
func (r Result[T]) IsDegraded() bool {
	return r.Err != nil
}

// Compute runs fn and converts an error or a panic into a degraded result
// carrying def.
//
//nolint:nonamedreturns // named return lets the deferred recover rewrite the result.
func Compute[T any](def T, fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Degraded(def, fmt.Errorf("panic: %v", r))
		}
	}()

	value, err := fn()
	if err != nil {
		return Degraded(def, err)
	}

	return Success(value)
}

// MetricMeta holds the common metadata for a metric.
type MetricMeta struct {
	MetricName        string
	MetricDisplayName string
	MetricDescription string
}

// Name returns the machine-readable identifier.
func (m MetricMeta) Name() string { return m.MetricName }

// DisplayName returns a human-readable name for UI/reports.
func (m MetricMeta) DisplayName() string { return m.MetricDisplayName }

// Description returns detailed documentation.
func (m MetricMeta) Description() string { return m.MetricDescription }
