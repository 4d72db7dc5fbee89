package command

import (
	"context"

	"github.com/cynergists/go-viewprefs/pkg/types"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

const (
	featureSavedViews = "viewprefs.saved_views"
)

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, session types.Session) (bool, error) {
	if gate == nil {
		return true, nil
	}
	scopeSet := featureScopeSet(session)
	if scopeSet == nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(*scopeSet))
}

func featureScopeSet(session types.Session) *featuregate.ScopeSet {
	tenantID := ""
	orgID := ""
	if session.TenantID != uuid.Nil {
		tenantID = session.TenantID.String()
	}
	if session.OrgID != uuid.Nil {
		orgID = session.OrgID.String()
	}

	user := ""
	if session.UserID != uuid.Nil {
		user = session.UserID.String()
	}

	if tenantID == "" && orgID == "" && user == "" {
		return nil
	}
	return &featuregate.ScopeSet{
		System:   true,
		TenantID: tenantID,
		OrgID:    orgID,
		UserID:   user,
	}
}
