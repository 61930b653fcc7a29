package cli

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// spanLogger logs every ended span.
type spanLogger struct {
	log *slog.Logger
}

func (spanLogger) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (l spanLogger) OnEnd(s sdktrace.ReadOnlySpan) {
	args := []any{"span", s.Name(), "duration", s.EndTime().Sub(s.StartTime())}
	for _, kv := range s.Attributes() {
		args = append(args, string(kv.Key), kv.Value.Emit())
	}
	if st := s.Status(); st.Code == codes.Error {
		l.log.Warn("span failed", append(args, "error", st.Description)...)
		return
	}
	l.log.Debug("span", args...)
}

func (spanLogger) Shutdown(context.Context) error   { return nil }
func (spanLogger) ForceFlush(context.Context) error { return nil }

// newTracer returns a tracer logging to log, and the shutdown of its
// provider.
func newTracer(log *slog.Logger) (trace.Tracer, func(context.Context) error) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(spanLogger{log: log}),
	)
	return tp.Tracer("fluentmap/cli"), tp.Shutdown
}
