package middleware

import (
	"context"
	"errors"

	"riide/internal/app/commands"
	"riide/internal/app/queries"
	domainauth "riide/internal/domain/auth"
)

var (
	ErrUnauthenticated = errors.New("middleware: authentication required")
	ErrForbidden       = errors.New("middleware: forbidden")
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Restricted is implemented by messages that only a given role may send.
type Restricted interface {
	RequiredRole() domainauth.Role
}

type sessionKey struct{}

func ContextWithSession(ctx context.Context, session *domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func SessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*domainauth.Session)
	return session, ok && session != nil
}

// RoleAuthorizer lets unrestricted messages through and checks the caller's session
// role for Restricted ones.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	restricted, ok := message.(Restricted)
	if !ok {
		return nil
	}
	session, ok := SessionFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !session.HasRole(restricted.RequiredRole()) {
		return ErrForbidden
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
