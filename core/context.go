package core

import "context"

// Context keys for render options
type contextKey string

const (
	skipCacheKey contextKey = "skipCache"
	xLabelsKey   contextKey = "xLabels"
)

// WithSkipCache makes the factory ignore the result cache for this render.
func WithSkipCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipCacheKey, true)
}

// shouldSkipCache returns whether the result cache is bypassed
func shouldSkipCache(ctx context.Context) bool {
	val := ctx.Value(skipCacheKey)
	if val == nil {
		return false // default: use the cache
	}
	skip, ok := val.(bool)
	return ok && skip
}

// WithXLabels sets how many labels fit on the x axis, usually derived from the terminal width.
func WithXLabels(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, xLabelsKey, n)
}

// xLabelBudget returns the x axis label budget from context
func xLabelBudget(ctx context.Context) int {
	n, ok := ctx.Value(xLabelsKey).(int)
	if !ok || n < 2 {
		return defaultXLabels
	}
	return n
}
