package tools

import "context"

// ProgressFunc receives human-readable progress messages while a tool runs.
type ProgressFunc func(message string)

type progressKey struct{}

// WithProgress returns a context that carries fn. Tools report through
// ProgressFromContext so the Tool interface stays transport-agnostic.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, fn)
}

// ProgressFromContext returns the ProgressFunc stored in ctx, or nil.
func ProgressFromContext(ctx context.Context) ProgressFunc {
	fn, _ := ctx.Value(progressKey{}).(ProgressFunc)
	return fn
}

// ReportProgress sends msg to the ProgressFunc in ctx, if any.
func ReportProgress(ctx context.Context, msg string) {
	if fn := ProgressFromContext(ctx); fn != nil {
		fn(msg)
	}
}
