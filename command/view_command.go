package command

import (
	"context"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/viewstate"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

// StoreProvider hands out the loaded view state store for a session and
// table. *viewstate.Registry satisfies it.
type StoreProvider interface {
	Store(ctx context.Context, session types.Session, table types.Table) (*viewstate.Store, error)
}

// ViewCommandConfig wires dependencies for view preference commands.
type ViewCommandConfig struct {
	Stores      StoreProvider
	Hooks       types.Hooks
	Changes     types.ChangeRecorder
	FeatureGate featuregate.FeatureGate
	Clock       types.Clock
	Logger      types.Logger
}

type viewCommand struct {
	stores   StoreProvider
	hooks    types.Hooks
	recorder types.ChangeRecorder
	gate     featuregate.FeatureGate
	clock    types.Clock
	logger   types.Logger
}

func newViewCommand(cfg ViewCommandConfig) viewCommand {
	return viewCommand{
		stores:   cfg.Stores,
		hooks:    cfg.Hooks,
		recorder: cfg.Changes,
		gate:     cfg.FeatureGate,
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
	}
}

type mutation struct {
	session  types.Session
	table    types.Table
	kind     types.ChangeKind
	viewName string
	details  map[string]any
	result   *types.ViewPreferences
}

// execute runs fn against the session's store. Changes are recorded only
// for authenticated sessions whose mutation was accepted.
func (c viewCommand) execute(ctx context.Context, m mutation, fn func(*viewstate.Store) (bool, error)) error {
	if c.stores == nil {
		return types.ErrServiceNotReady
	}
	if m.kind.TouchesSavedViews() {
		enabled, err := featureEnabled(ctx, c.gate, featureSavedViews, m.session)
		if err != nil {
			return err
		}
		if !enabled {
			return ErrSavedViewsDisabled
		}
	}

	store, err := c.stores.Store(ctx, m.session, m.table)
	if err != nil {
		return err
	}
	accepted, err := fn(store)
	if m.result != nil {
		*m.result = store.State()
	}
	if err != nil {
		return err
	}
	if !accepted || !m.session.Authenticated() {
		return nil
	}

	change := types.Change{
		UserID:     m.session.UserID,
		TenantID:   m.session.TenantID,
		OrgID:      m.session.OrgID,
		Table:      m.table,
		Kind:       m.kind,
		ViewName:   m.viewName,
		Details:    m.details,
		OccurredAt: now(c.clock),
	}
	recordChange(ctx, c.recorder, c.logger, change)
	if c.hooks.AfterChange != nil {
		c.hooks.AfterChange(ctx, change)
	}
	return nil
}

func validateTable(table types.Table) error {
	if !table.Valid() {
		return ErrUnknownTable
	}
	return nil
}

func always(err error) (bool, error) {
	return err == nil, err
}
