// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services and handlers read
// them without importing net/http.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey struct{}
	subjectIDKey struct{}
	timeKey      struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRequestID = requestIDKey{}
	ContextKeySubjectID = subjectIDKey{}
	ContextKeyTime      = timeKey{}
)

// WithRequestID returns a context carrying the correlation id for this request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// RequestID retrieves the correlation id, or "" when middleware did not run.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithSubjectID returns a context carrying the authenticated subject
// (operator id on the admin surface).
func WithSubjectID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeySubjectID, id)
}

// SubjectID retrieves the authenticated subject id, or "" when unauthenticated.
func SubjectID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeySubjectID).(string); ok {
		return id
	}
	return ""
}

// WithTime returns a context carrying the request-scoped "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyTime, t)
}

// Now retrieves the request-scoped time, falling back to the wall clock when
// middleware did not run.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyTime).(time.Time); ok {
		return t
	}
	return time.Now()
}
