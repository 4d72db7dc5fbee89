package authctx

import (
	"context"

	"github.com/cynergists/go-viewprefs/pkg/types"
	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

const (
	textCodeActorMissing = "ACTOR_CONTEXT_MISSING"
	textCodeActorInvalid = "ACTOR_CONTEXT_INVALID"
)

// ActorFromContext is a thin wrapper around go-auth helpers so callers do not
// need to import auth directly when they only need the actor payload.
func ActorFromContext(ctx context.Context) (*auth.ActorContext, bool) {
	return auth.ActorFromContext(ctx)
}

// ActorFromRouterContext extracts the actor payload from router contexts using
// go-auth helpers.
func ActorFromRouterContext(ctx router.Context) (*auth.ActorContext, bool) {
	return auth.ActorFromRouterContext(ctx)
}

// ResolveActorContext returns the actor metadata stored by go-auth middleware
// or rebuilds it from JWT claims when the ContextEnricher hook was not
// configured.
func ResolveActorContext(ctx context.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, errors.New("go-viewprefs: missing request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}
	if actor, ok := lookupActor(ctx); ok {
		return actor, nil
	}
	return nil, errors.New("go-viewprefs: auth actor context not found on request", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeActorMissing)
}

// ResolveActorContextFromRouter mirrors ResolveActorContext for router
// transports where middleware stores actor metadata directly in the router
// context.
func ResolveActorContextFromRouter(ctx router.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, errors.New("go-viewprefs: missing router context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}
	if actor, ok := auth.ActorFromRouterContext(ctx); ok && actor != nil {
		return actor, nil
	}
	return ResolveActorContext(ctx.Context())
}

// ResolveSession returns the session for an authenticated request.
func ResolveSession(ctx context.Context) (types.Session, error) {
	actor, err := ResolveActorContext(ctx)
	if err != nil {
		return types.Session{}, err
	}
	return SessionFromActorContext(actor)
}

// SessionFromRouter returns the caller's session, or the zero (anonymous)
// session when no actor metadata is present. Malformed actor metadata is an
// error.
func SessionFromRouter(ctx router.Context) (types.Session, error) {
	if ctx == nil {
		return types.Session{}, nil
	}
	if actor, ok := auth.ActorFromRouterContext(ctx); ok && actor != nil {
		return SessionFromActorContext(actor)
	}
	if actor, ok := lookupActor(ctx.Context()); ok {
		return SessionFromActorContext(actor)
	}
	return types.Session{}, nil
}

// RouterSessionResolver returns a resolver that tries SessionFromRouter first
// and then the session the go-auth middleware stores under contextKey.
func RouterSessionResolver(contextKey string) func(router.Context) (types.Session, error) {
	return func(ctx router.Context) (types.Session, error) {
		session, err := SessionFromRouter(ctx)
		if err != nil || session.Authenticated() || ctx == nil || contextKey == "" {
			return session, err
		}
		routerSession, err := auth.GetRouterSession(ctx, contextKey)
		if err != nil {
			return types.Session{}, nil
		}
		userID, err := uuid.Parse(routerSession.GetUserID())
		if err != nil {
			return types.Session{}, errors.Wrap(err, errors.CategoryAuth, "go-viewprefs: invalid user id on auth session").
				WithCode(errors.CodeUnauthorized).
				WithTextCode(textCodeActorInvalid)
		}
		return types.Session{UserID: userID}, nil
	}
}

// SessionFromActorContext converts the auth middleware payload into the
// session consumed by preference stores.
func SessionFromActorContext(actor *auth.ActorContext) (types.Session, error) {
	if actor == nil {
		return types.Session{}, errors.New("go-viewprefs: actor context is nil", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	if actor.ActorID == "" {
		return types.Session{}, errors.New("go-viewprefs: actor context missing actor_id", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}

	userID, err := uuid.Parse(actor.ActorID)
	if err != nil {
		return types.Session{}, errors.Wrap(err, errors.CategoryAuth, "go-viewprefs: invalid actor_id on auth context").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}

	session := types.Session{
		UserID:   userID,
		TenantID: parseUUID(actor.TenantID),
		OrgID:    parseUUID(actor.OrganizationID),
		Role:     actor.Role,
	}
	if session.Role == "" && actor.Subject != "" {
		session.Role = actor.Subject
	}
	return session, nil
}

func lookupActor(ctx context.Context) (*auth.ActorContext, bool) {
	if ctx == nil {
		return nil, false
	}
	if actor, ok := auth.ActorFromContext(ctx); ok && actor != nil {
		return actor, true
	}
	if claims, ok := auth.GetClaims(ctx); ok && claims != nil {
		if actor := auth.ActorContextFromClaims(claims); actor != nil {
			return actor, true
		}
	}
	return nil, false
}

func parseUUID(raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
