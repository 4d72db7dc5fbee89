package main

import (
	"testing"

	"github.com/cynergists/go-viewprefs/cmd/viewprefs/internal/config"
	"github.com/stretchr/testify/require"
)

func authConfig(key string) config.Config {
	return config.Config{Auth: config.AuthConfig{
		SigningKey:           key,
		SigningMethod:        "HS256",
		ContextKey:           "auth_token",
		TokenExpiration:      3600,
		TokenLookup:          "header:Authorization",
		AuthScheme:           "Bearer",
		RejectedRouteKey:     "rejected_route",
		RejectedRouteDefault: "/",
	}}
}

func TestRouteGuards_RequireSigningKey(t *testing.T) {
	_, _, err := routeGuards(authConfig(""), false, false)
	require.ErrorIs(t, err, errAuthNotConfigured)

	_, _, err = routeGuards(authConfig(""), true, true)
	require.ErrorIs(t, err, errAdminNeedsAuth)
}

func TestRouteGuards_HeaderTrustWithoutKeyLeavesAPIOpen(t *testing.T) {
	api, admin, err := routeGuards(authConfig(""), true, false)
	require.NoError(t, err)
	require.Empty(t, api)
	require.Empty(t, admin)
}

func TestRouteGuards_SigningKeyGuardsBothGroups(t *testing.T) {
	api, admin, err := routeGuards(authConfig("s3cret"), false, true)
	require.NoError(t, err)
	require.Len(t, api, 1)
	require.Len(t, admin, 1)

	api, admin, err = routeGuards(authConfig("s3cret"), true, true)
	require.NoError(t, err)
	require.Empty(t, api)
	require.Len(t, admin, 1)
}
