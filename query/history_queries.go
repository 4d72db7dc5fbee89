package query

import (
	"context"
	"time"

	"github.com/cynergists/go-viewprefs/pkg/types"
	gocommand "github.com/goliatone/go-command"
)

// ChangeHistoryInput requests the caller's recorded changes to one table.
type ChangeHistoryInput struct {
	Session types.Session
	Table   types.Table
	Kinds   []types.ChangeKind
	Since   time.Time
	Limit   int
	Offset  int
}

// ChangeHistoryQuery pages through a user's change history, newest first.
type ChangeHistoryQuery struct {
	history types.ChangeHistory
}

// NewChangeHistoryQuery constructs the history query.
func NewChangeHistoryQuery(history types.ChangeHistory) *ChangeHistoryQuery {
	return &ChangeHistoryQuery{history: history}
}

var _ gocommand.Querier[ChangeHistoryInput, types.ChangePage] = (*ChangeHistoryQuery)(nil)

// Query lists changes owned by the session user. Unknown kinds are rejected
// rather than silently matching nothing.
func (q *ChangeHistoryQuery) Query(ctx context.Context, input ChangeHistoryInput) (types.ChangePage, error) {
	if q.history == nil {
		return types.ChangePage{}, types.ErrMissingChangeHistory
	}
	if !input.Session.Authenticated() {
		return types.ChangePage{}, types.ErrUserIDRequired
	}
	if !input.Table.Valid() {
		return types.ChangePage{}, types.ErrUnknownTable
	}
	for _, kind := range input.Kinds {
		if !kind.Valid() {
			return types.ChangePage{}, types.ErrUnknownChangeKind
		}
	}
	return q.history.ListChanges(ctx, types.ChangeFilter{
		UserID: input.Session.UserID,
		Table:  input.Table,
		Kinds:  input.Kinds,
		Since:  input.Since,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
}

// ChangeSummaryInput requests per-kind counts for one table.
type ChangeSummaryInput struct {
	Session types.Session
	Table   types.Table
}

// ChangeSummaryQuery counts a user's changes to a table by kind.
type ChangeSummaryQuery struct {
	history types.ChangeHistory
}

// NewChangeSummaryQuery constructs the summary query.
func NewChangeSummaryQuery(history types.ChangeHistory) *ChangeSummaryQuery {
	return &ChangeSummaryQuery{history: history}
}

var _ gocommand.Querier[ChangeSummaryInput, types.ChangeSummary] = (*ChangeSummaryQuery)(nil)

// Query summarizes the session user's changes.
func (q *ChangeSummaryQuery) Query(ctx context.Context, input ChangeSummaryInput) (types.ChangeSummary, error) {
	if q.history == nil {
		return types.ChangeSummary{}, types.ErrMissingChangeHistory
	}
	if !input.Session.Authenticated() {
		return types.ChangeSummary{}, types.ErrUserIDRequired
	}
	if !input.Table.Valid() {
		return types.ChangeSummary{}, types.ErrUnknownTable
	}
	return q.history.SummarizeChanges(ctx, input.Session.UserID, input.Table)
}
