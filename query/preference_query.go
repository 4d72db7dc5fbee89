package query

import (
	"context"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/viewstate"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// StoreProvider hands out the loaded view state store for a session and
// table. *viewstate.Registry satisfies it.
type StoreProvider interface {
	Store(ctx context.Context, session types.Session, table types.Table) (*viewstate.Store, error)
}

// ViewStateInput identifies the table whose live state is requested.
type ViewStateInput struct {
	Session types.Session
	Table   types.Table
}

// ViewState is the live table state as seen by the session.
type ViewState struct {
	Table       types.Table           `json:"table"`
	Preferences types.ViewPreferences `json:"preferences"`
	Loaded      bool                  `json:"loaded"`
	Saving      bool                  `json:"saving"`
}

// ViewStateQuery returns the in-memory state, loading it on first use.
type ViewStateQuery struct {
	stores StoreProvider
}

// NewViewStateQuery constructs the query helper.
func NewViewStateQuery(stores StoreProvider) *ViewStateQuery {
	return &ViewStateQuery{stores: stores}
}

var _ gocommand.Querier[ViewStateInput, ViewState] = (*ViewStateQuery)(nil)

// Query returns the state for the session and table.
func (q *ViewStateQuery) Query(ctx context.Context, input ViewStateInput) (ViewState, error) {
	if q.stores == nil {
		return ViewState{}, types.ErrServiceNotReady
	}
	if !input.Table.Valid() {
		return ViewState{}, types.ErrUnknownTable
	}
	store, err := q.stores.Store(ctx, input.Session, input.Table)
	if err != nil {
		return ViewState{}, err
	}
	return ViewState{
		Table:       input.Table,
		Preferences: store.State(),
		Loaded:      store.Loaded(),
		Saving:      store.Saving(),
	}, nil
}

// ResolutionInput identifies the persisted preferences to resolve.
type ResolutionInput struct {
	Session types.Session
	Table   types.Table
}

type preferenceResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, table types.Table) (types.Resolution, error)
}

// ResolutionQuery resolves the persisted preferences against the table
// defaults and reports which layer produced each field.
type ResolutionQuery struct {
	resolver preferenceResolver
}

// NewResolutionQuery constructs the query helper.
func NewResolutionQuery(resolver preferenceResolver) *ResolutionQuery {
	return &ResolutionQuery{resolver: resolver}
}

var _ gocommand.Querier[ResolutionInput, types.Resolution] = (*ResolutionQuery)(nil)

// Query resolves preferences for the session. Unauthenticated sessions
// resolve to the table defaults.
func (q *ResolutionQuery) Query(ctx context.Context, input ResolutionInput) (types.Resolution, error) {
	if q.resolver == nil {
		return types.Resolution{}, types.ErrServiceNotReady
	}
	if !input.Table.Valid() {
		return types.Resolution{}, types.ErrUnknownTable
	}
	return q.resolver.Resolve(ctx, input.Session.UserID, input.Table)
}
