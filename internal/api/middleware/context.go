package middleware

import (
	"context"

	"github.com/Rrens/salespulse/internal/domain"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	actorKey    contextKey = "actor"
)

// WithIdentity stores the verified session holder in the context
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity gets the verified session holder from context
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}

// WithActor stores the resolved workspace actor in the context
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor gets the resolved workspace actor from context
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}
