package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is the per-request logging state. Each With* call stores a copy.
type scope struct {
	log       *zap.Logger
	requestID string
	userID    string
	role      string
}

func scopeOf(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func (s scope) store(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithContext attaches l as the request logger
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	s := scopeOf(ctx)
	s.log = l
	return s.store(ctx)
}

// FromContext returns the request logger, or a no-op logger outside a request
func FromContext(ctx context.Context) *zap.Logger {
	if s := scopeOf(ctx); s.log != nil {
		return s.log
	}
	return zap.NewNop()
}

// WithRequestID records requestID and returns a logger that carries it
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	s := scopeOf(ctx)
	s.requestID = requestID
	s.log = l.With(zap.String("request_id", requestID))
	return s.store(ctx), s.log
}

// WithPrincipal records the authenticated user and role
func WithPrincipal(ctx context.Context, l *zap.Logger, userID, role string) (context.Context, *zap.Logger) {
	s := scopeOf(ctx)
	s.userID, s.role = userID, role
	s.log = l.With(zap.String("user_id", userID), zap.String("role", role))
	return s.store(ctx), s.log
}

func GetRequestID(ctx context.Context) string { return scopeOf(ctx).requestID }

func GetUserID(ctx context.Context) string { return scopeOf(ctx).userID }

// GetTraceID returns the active span's trace id, or "" without a valid span
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// L returns the request logger with trace_id and span_id when a span is active.
//
//	logger.L(ctx).Info("referral confirmed", zap.String("referral_id", id))
func L(ctx context.Context) *zap.Logger {
	return withSpan(ctx, FromContext(ctx))
}

// For is L with a fallback for code that also runs outside a request,
// such as services called from the migrate tool.
func For(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	l := scopeOf(ctx).log
	if l == nil {
		l = fallback
	}
	return withSpan(ctx, l)
}

func withSpan(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// ContextFields returns request_id and trace_id for whichever are set on ctx
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	return fields
}
