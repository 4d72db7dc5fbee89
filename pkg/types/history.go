package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMissingChangeHistory indicates no change history reader was supplied.
	ErrMissingChangeHistory = errors.New("go-viewprefs: missing change history")
	// ErrUnknownChangeKind indicates a change kind outside the enumerated set.
	ErrUnknownChangeKind = errors.New("go-viewprefs: unknown change kind")
)

// ChangeKind names an accepted view preference mutation.
type ChangeKind string

const (
	ChangePatched            ChangeKind = "preferences.patch"
	ChangeReset              ChangeKind = "preferences.reset"
	ChangeColumnToggled      ChangeKind = "column.toggle"
	ChangeColumnResized      ChangeKind = "column.width"
	ChangeColumnMoved        ChangeKind = "column.move"
	ChangeFilterSet          ChangeKind = "filter.set"
	ChangeFilterRemoved      ChangeKind = "filter.remove"
	ChangeFiltersCleared     ChangeKind = "filters.clear"
	ChangeRowsPerPage        ChangeKind = "rows_per_page.set"
	ChangeSort               ChangeKind = "sort.set"
	ChangeViewSaved          ChangeKind = "view.save"
	ChangeViewApplied        ChangeKind = "view.load"
	ChangeViewDeleted        ChangeKind = "view.delete"
	ChangeDefaultViewSet     ChangeKind = "default_view.set"
	ChangeDefaultViewCleared ChangeKind = "default_view.clear"
)

var changeKinds = map[ChangeKind]struct{}{
	ChangePatched: {}, ChangeReset: {},
	ChangeColumnToggled: {}, ChangeColumnResized: {}, ChangeColumnMoved: {},
	ChangeFilterSet: {}, ChangeFilterRemoved: {}, ChangeFiltersCleared: {},
	ChangeRowsPerPage: {}, ChangeSort: {},
	ChangeViewSaved: {}, ChangeViewApplied: {}, ChangeViewDeleted: {},
	ChangeDefaultViewSet: {}, ChangeDefaultViewCleared: {},
}

// Valid reports whether k is a known change kind.
func (k ChangeKind) Valid() bool {
	_, ok := changeKinds[k]
	return ok
}

// TouchesSavedViews reports whether the change edits the saved view list or
// the default view.
func (k ChangeKind) TouchesSavedViews() bool {
	switch k {
	case ChangeViewSaved, ChangeViewApplied, ChangeViewDeleted, ChangeDefaultViewSet, ChangeDefaultViewCleared:
		return true
	}
	return false
}

// Change is one accepted mutation of a user's table state.
type Change struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"userId"`
	TenantID   uuid.UUID      `json:"tenantId"`
	OrgID      uuid.UUID      `json:"orgId"`
	Table      Table          `json:"table"`
	Kind       ChangeKind     `json:"kind"`
	ViewName   string         `json:"viewName,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// ChangeRecorder persists accepted changes.
type ChangeRecorder interface {
	RecordChange(context.Context, Change) error
}

// ChangeFilter selects one user's history for one table.
type ChangeFilter struct {
	UserID uuid.UUID
	Table  Table
	Kinds  []ChangeKind
	Since  time.Time
	Limit  int
	Offset int
}

// ChangePage is a page of changes, newest first.
type ChangePage struct {
	Changes    []Change `json:"changes"`
	Total      int      `json:"total"`
	NextOffset int      `json:"nextOffset"`
	HasMore    bool     `json:"hasMore"`
}

// ChangeSummary counts a user's changes to one table.
type ChangeSummary struct {
	Table         Table              `json:"table"`
	Total         int                `json:"total"`
	ByKind        map[ChangeKind]int `json:"byKind"`
	LastChangedAt *time.Time         `json:"lastChangedAt,omitempty"`
}

// ChangeHistory is the read side of the change history.
type ChangeHistory interface {
	ListChanges(ctx context.Context, filter ChangeFilter) (ChangePage, error)
	SummarizeChanges(ctx context.Context, userID uuid.UUID, table Table) (ChangeSummary, error)
}
