package shared

import "context"

// Actor describes the authenticated user evaluated by permission checks.
// RoleID is nil when the user has no role assigned; IsOwner marks the
// business owner created at registration time.
type Actor struct {
	UserID     int64
	BusinessID int64
	RoleID     *int64
	IsOwner    bool
}

type actorContextKey struct{}

// ContextWithActor stores the resolved actor in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context, nil when anonymous.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}
