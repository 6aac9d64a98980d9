package utils

import (
	"context"
)

type contextKey string

const ContextActorKey contextKey = "actor"

// GetActorFromContext returns the caller identity set by the admin token
// middleware.
func GetActorFromContext(ctx context.Context) (string, bool) {
	actor := ctx.Value(ContextActorKey)
	actorStr, ok := actor.(string)
	return actorStr, ok
}
