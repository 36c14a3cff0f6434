package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ProbeSamplerSpan reports whether the sampler selected for cfg samples a
// root span.
func ProbeSamplerSpan(cfg Config) bool {
	res := selectSampler(cfg).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{1},
		Name:          "probe",
	})

	return res.Decision == sdktrace.RecordAndSample
}
