package main

import (
	"context"
	"errors"

	"github.com/cynergists/go-viewprefs/cmd/viewprefs/internal/config"
	"github.com/cynergists/go-viewprefs/transport/httpapi"
	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-router"
)

var (
	errAuthNotConfigured = errors.New("viewprefs: VIEWPREFS_AUTH_SIGNING_KEY is required unless --trust-user-header is set")
	errAdminNeedsAuth    = errors.New("viewprefs: --admin requires VIEWPREFS_AUTH_SIGNING_KEY")
	errExternalLogin     = errors.New("viewprefs: logins are handled by the identity service")
)

// newAuthMiddleware builds the go-auth JWT middleware. Tokens are issued
// elsewhere with the shared signing key, so the identity provider never
// resolves users.
func newAuthMiddleware(acfg config.AuthConfig) (router.MiddlewareFunc, error) {
	if !acfg.Enabled() {
		return nil, errAuthNotConfigured
	}
	provider := auth.NewUserProvider(externalUsers{})
	authenticator := auth.NewAuthenticator(provider, acfg)
	httpAuth, err := auth.NewHTTPAuthenticator(authenticator, acfg)
	if err != nil {
		return nil, err
	}
	return httpAuth.ProtectedRoute(acfg, httpapi.Unauthorized), nil
}

// routeGuards resolves the middleware for the API and admin groups. Header
// trust skips go-auth for the API only; the admin group always needs it.
func routeGuards(c config.Config, trustHeader, admin bool) (api []router.MiddlewareFunc, adminMW []router.MiddlewareFunc, err error) {
	if !c.Auth.Enabled() {
		switch {
		case admin:
			return nil, nil, errAdminNeedsAuth
		case trustHeader:
			return nil, nil, nil
		default:
			return nil, nil, errAuthNotConfigured
		}
	}
	mw, err := newAuthMiddleware(c.Auth)
	if err != nil {
		return nil, nil, err
	}
	adminMW = []router.MiddlewareFunc{mw}
	if trustHeader {
		return nil, adminMW, nil
	}
	return []router.MiddlewareFunc{mw}, adminMW, nil
}

type externalUsers struct{}

func (externalUsers) GetByIdentifier(context.Context, string) (*auth.User, error) {
	return nil, errExternalLogin
}

func (externalUsers) TrackAttemptedLogin(context.Context, *auth.User) error {
	return nil
}

func (externalUsers) TrackSucccessfulLogin(context.Context, *auth.User) error {
	return nil
}
