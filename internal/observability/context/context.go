// Package context carries request correlation values used by logging and tracing.
package context

import (
	"context"
	"strings"
)

type key int

const (
	requestIDKey key = iota
	actorIDKey
	actorRoleKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithActor records the authenticated user driving the request.
func WithActor(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, actorIDKey, strings.TrimSpace(userID))
	return context.WithValue(ctx, actorRoleKey, strings.TrimSpace(role))
}

func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	id, _ := ctx.Value(actorIDKey).(string)
	role, _ := ctx.Value(actorRoleKey).(string)
	return id, role
}
