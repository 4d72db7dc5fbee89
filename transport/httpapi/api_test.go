package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/cynergists/go-viewprefs/command"
	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/service"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]types.ViewPreferenceRecord
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[string]types.ViewPreferenceRecord{}}
}

func (r *memoryRepo) key(userID uuid.UUID, table types.Table) string {
	return userID.String() + "/" + string(table)
}

func (r *memoryRepo) GetViewPreferences(_ context.Context, userID uuid.UUID, table types.Table) (*types.ViewPreferenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[r.key(userID, table)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *memoryRepo) UpsertViewPreferences(_ context.Context, record types.ViewPreferenceRecord) (*types.ViewPreferenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.Preferences = record.Preferences.Clone()
	r.records[r.key(record.UserID, record.Table)] = record
	return &record, nil
}

type memoryHistory struct {
	mu      sync.Mutex
	changes []types.Change
}

func (m *memoryHistory) RecordChange(_ context.Context, change types.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, change)
	return nil
}

func (m *memoryHistory) ListChanges(_ context.Context, filter types.ChangeFilter) (types.ChangePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Change
	for _, change := range m.changes {
		if change.UserID != filter.UserID || change.Table != filter.Table {
			continue
		}
		if len(filter.Kinds) > 0 && !containsKind(filter.Kinds, change.Kind) {
			continue
		}
		out = append(out, change)
	}
	return types.ChangePage{Changes: out, Total: len(out), NextOffset: len(out)}, nil
}

func (m *memoryHistory) SummarizeChanges(ctx context.Context, userID uuid.UUID, table types.Table) (types.ChangeSummary, error) {
	page, err := m.ListChanges(ctx, types.ChangeFilter{UserID: userID, Table: table})
	if err != nil {
		return types.ChangeSummary{}, err
	}
	summary := types.ChangeSummary{Table: table, ByKind: map[types.ChangeKind]int{}}
	for _, change := range page.Changes {
		summary.Total++
		summary.ByKind[change.Kind]++
	}
	return summary, nil
}

func containsKind(kinds []types.ChangeKind, kind types.ChangeKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func newTestAPI(t *testing.T) *API {
	t.Helper()
	svc := service.New(service.Config{
		PreferenceRepository: newMemoryRepo(),
		ChangeRecorder:       &memoryHistory{},
	})
	api, err := New(Config{Service: svc})
	require.NoError(t, err)
	return api
}

func authed() types.Session {
	return types.Session{UserID: uuid.New(), TenantID: uuid.New()}
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, types.ErrServiceNotReady)
}

func TestServe_GetStateReturnsDefaults(t *testing.T) {
	api := newTestAPI(t)

	status, resp := api.serve(context.Background(), request{Session: authed(), Table: "prospect"}, api.getState)

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, types.TableProspects, resp.Table)
	require.NotNil(t, resp.State)
	require.Equal(t, "name", resp.State.SortColumn)
	require.Equal(t, types.SortAsc, resp.State.SortDirection)
	require.Equal(t, 50, resp.State.RowsPerPage)
	require.NotNil(t, resp.Notifications)
	require.Empty(t, resp.Notifications)
	require.Nil(t, resp.Error)
}

func TestServe_UnknownTable(t *testing.T) {
	api := newTestAPI(t)

	status, resp := api.serve(context.Background(), request{Session: authed(), Table: "invoices"}, api.getState)

	require.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, resp.Error)
	require.Equal(t, textCodeUnknownTable, resp.Error.Code)
	require.Nil(t, resp.State)
}

func TestServe_SaveViewCollectsNotifications(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	session := authed()

	status, resp := api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Body:    []byte(`{"name":"My View"}`),
	}, api.saveView)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Saved)
	require.True(t, *resp.Saved)
	require.Equal(t, "My View", resp.State.ActiveViewName)
	require.Len(t, resp.Notifications, 1)
	require.Equal(t, types.TitleViewSaved, resp.Notifications[0].Title)

	status, resp = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Body:    []byte(`{"name":"My View"}`),
	}, api.saveView)
	require.Equal(t, http.StatusOK, status)
	require.False(t, *resp.Saved)
	require.Len(t, resp.Notifications, 1)
	require.Equal(t, types.NotificationError, resp.Notifications[0].Level)
	require.Equal(t, types.TitleNameExists, resp.Notifications[0].Title)
}

func TestServe_ColumnAndFilterEndpoints(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	session := authed()

	status, resp := api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Params:  map[string]string{"column": "name"},
		Body:    []byte(`{"width":220}`),
	}, api.columnWidth)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]float64{"name": 220}, resp.State.ColumnWidths)

	status, resp = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Params:  map[string]string{"column": "email"},
	}, api.toggleColumn)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, resp.State.HiddenColumns, "email")

	status, resp = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Params:  map[string]string{"key": "status"},
		Body:    []byte(`{"value":"open"}`),
	}, api.setFilter)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]string{"status": "open"}, resp.State.ActiveFilters)

	status, resp = api.serve(ctx, request{Session: session, Table: "prospect"}, api.clearFilters)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.State.ActiveFilters)

	status, resp = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Body:    []byte(`{"column":"email","direction":"desc"}`),
	}, api.sort)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "email", resp.State.SortColumn)
	require.Equal(t, types.SortDesc, resp.State.SortDirection)
}

func TestServe_ValidationErrors(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	session := authed()

	status, resp := api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Body:    []byte(`{"rowsPerPage":0}`),
	}, api.rowsPerPage)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, textCodeInvalidRequest, resp.Error.Code)

	status, resp = api.serve(ctx, request{Session: session, Table: "prospect"}, api.moveColumn)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, textCodeInvalidRequest, resp.Error.Code)

	status, _ = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Body:    []byte(`{not json`),
	}, api.patch)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestServe_DefaultViewAndReset(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	session := authed()

	status, resp := api.serve(ctx, request{
		Session: session,
		Table:   "staff",
		Body:    []byte(`{"name":"Weekly"}`),
	}, api.defaultView)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Weekly", resp.State.DefaultViewName)
	require.Equal(t, types.TitleDefaultViewSet, resp.Notifications[0].Title)

	status, resp = api.serve(ctx, request{Session: session, Table: "staff"}, api.reset)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.State.DefaultViewName)
	require.Empty(t, resp.State.SavedViews)
}

func TestServe_UnauthenticatedWritesAreNoOps(t *testing.T) {
	api := newTestAPI(t)

	status, resp := api.serve(context.Background(), request{
		Table: "prospect",
		Body:  []byte(`{"rowsPerPage":25}`),
	}, api.rowsPerPage)

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 50, resp.State.RowsPerPage)
	require.Empty(t, resp.Notifications)
}

func TestServe_HistoryScopedToSession(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	session := authed()

	status, _ := api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Body:    []byte(`{"rowsPerPage":25}`),
	}, api.rowsPerPage)
	require.Equal(t, http.StatusOK, status)
	status, _ = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Body:    []byte(`{"column":"email","direction":"desc"}`),
	}, api.sort)
	require.Equal(t, http.StatusOK, status)

	status, resp := api.serve(ctx, request{Session: session, Table: "prospect"}, api.history)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.History)
	require.Len(t, resp.History.Changes, 2)

	status, resp = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Query:   map[string]string{"kind": "rows_per_page.set"},
	}, api.history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp.History.Changes, 1)
	require.Equal(t, types.ChangeRowsPerPage, resp.History.Changes[0].Kind)
	require.Equal(t, 25, resp.History.Changes[0].Details["rows_per_page"])

	status, resp = api.serve(ctx, request{Session: session, Table: "staff"}, api.history)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.History.Changes)

	status, resp = api.serve(ctx, request{Session: session, Table: "prospect"}, api.historySummary)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, resp.Summary.Total)
	require.Equal(t, 1, resp.Summary.ByKind[types.ChangeSort])

	status, resp = api.serve(ctx, request{Table: "prospect"}, api.history)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, textCodeUnauthorized, resp.Error.Code)

	status, _ = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Query:   map[string]string{"limit": "ten"},
	}, api.history)
	require.Equal(t, http.StatusBadRequest, status)

	status, resp = api.serve(ctx, request{
		Session: session,
		Table:   "prospect",
		Query:   map[string]string{"kind": "column.hide"},
	}, api.history)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, textCodeInvalidRequest, resp.Error.Code)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{types.ErrUnknownTable, http.StatusNotFound, textCodeUnknownTable},
		{command.ErrSavedViewsDisabled, http.StatusForbidden, textCodeFeatureOff},
		{types.ErrServiceNotReady, http.StatusInternalServerError, textCodeNotReady},
		{types.ErrMissingChangeHistory, http.StatusInternalServerError, textCodeNotReady},
		{types.ErrInvalidSortDirection, http.StatusBadRequest, textCodeInvalidRequest},
		{errors.New("disk full"), http.StatusInternalServerError, textCodeInternal},
		{
			goerrors.New("no actor", goerrors.CategoryAuth).WithTextCode("ACTOR_CONTEXT_INVALID"),
			http.StatusUnauthorized,
			"ACTOR_CONTEXT_INVALID",
		},
	}
	for _, tc := range cases {
		status, body := classify(tc.err)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.Equal(t, tc.code, body.Code, tc.err.Error())
	}
}

func TestUnauthorizedWritesErrorEnvelope(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.On("JSON", http.StatusUnauthorized, mock.MatchedBy(func(resp Response) bool {
		return resp.Error != nil && resp.Error.Code == textCodeUnauthorized &&
			resp.Error.Message == "token is expired" && resp.State == nil
	})).Return(nil)

	require.NoError(t, Unauthorized(ctx, errors.New("token is expired")))
	ctx.AssertExpectations(t)
}
