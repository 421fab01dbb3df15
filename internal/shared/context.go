package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ActorFromContext resolves the signed-in account into an Actor. The boolean
// is false for anonymous requests.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	user := SessionFromContext(ctx).User()
	if user == nil {
		return Actor{}, false
	}
	name := user.DisplayName
	if name == "" {
		name = user.Username
	}
	return Actor{ID: user.ID, Name: name}, true
}
