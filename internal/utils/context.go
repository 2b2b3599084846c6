package utils

import (
	"context"

	"riparo-be/internal/user"
)

type ctxKey string

const actorKey ctxKey = "actor"

// SetActorContext stores the authenticated actor (called by middleware).
// Handlers read it back and pass it explicitly into service calls.
func SetActorContext(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActorFromContext retrieves the actor safely.
func GetActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(user.Actor)
	return actor, ok
}
