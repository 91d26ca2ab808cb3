// Package tracing records in-process timing spans for a request and writes
// them to the log when the root span finishes.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type spanKey struct{}

// Span is one timed step. Children share the root's trace so the whole tree
// can be emitted at once.
type Span struct {
	Name     string
	TraceID  string
	Start    time.Time
	Duration time.Duration

	mu       sync.Mutex
	attrs    []slog.Attr
	children []*Span
	ended    bool
}

// StartSpan begins a root span. traceID is usually the request id.
func StartSpan(ctx context.Context, name, traceID string) (context.Context, *Span) {
	s := &Span{Name: name, TraceID: traceID, Start: time.Now()}
	return context.WithValue(ctx, spanKey{}, s), s
}

// StartChildSpan begins a span under the one in ctx. Without a parent the
// span is detached and never logged.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	s := &Span{Name: name, Start: time.Now()}
	if parent := FromContext(ctx); parent != nil {
		s.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.children = append(parent.children, s)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, spanKey{}, s), s
}

func FromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

// End fixes the span duration. Later calls are ignored.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.Duration = time.Since(s.Start)
		s.ended = true
	}
}

func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, slog.Any(key, value))
	s.mu.Unlock()
}

func (s *Span) Children() []*Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Span(nil), s.children...)
}

// Log writes the span and its descendants at debug level, one record per
// span, parents first.
func (s *Span) Log(ctx context.Context, l *slog.Logger) {
	s.log(ctx, l, "")
}

func (s *Span) log(ctx context.Context, l *slog.Logger, parent string) {
	s.mu.Lock()
	attrs := append([]slog.Attr{
		slog.String("trace_id", s.TraceID),
		slog.String("span", s.Name),
		slog.Float64("duration_ms", float64(s.Duration.Microseconds())/1000),
	}, s.attrs...)
	if parent != "" {
		attrs = append(attrs, slog.String("parent", parent))
	}
	children := append([]*Span(nil), s.children...)
	s.mu.Unlock()

	l.LogAttrs(ctx, slog.LevelDebug, "span", attrs...)
	for _, c := range children {
		c.log(ctx, l, s.Name)
	}
}
