package query

import (
	"context"
	"testing"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/preferences"
	"github.com/cynergists/go-viewprefs/viewstate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestViewStateQuery_LoadsDefaultsAndReflectsWrites(t *testing.T) {
	repo := newFakeRepo()
	registry, err := viewstate.NewRegistry(viewstate.RegistryConfig{Repository: repo})
	require.NoError(t, err)
	query := NewViewStateQuery(registry)
	ctx := context.Background()
	session := types.Session{UserID: uuid.New()}

	state, err := query.Query(ctx, ViewStateInput{Session: session, Table: types.TableStaff})
	require.NoError(t, err)
	require.True(t, state.Loaded)
	require.False(t, state.Saving)
	require.Equal(t, types.TableStaff, state.Table)
	require.Equal(t, 50, state.Preferences.RowsPerPage)

	store, err := registry.Store(ctx, session, types.TableStaff)
	require.NoError(t, err)
	require.NoError(t, store.SetRowsPerPage(ctx, session, 100))

	state, err = query.Query(ctx, ViewStateInput{Session: session, Table: types.TableStaff})
	require.NoError(t, err)
	require.Equal(t, 100, state.Preferences.RowsPerPage)

	_, err = query.Query(ctx, ViewStateInput{Session: session, Table: "ledger"})
	require.ErrorIs(t, err, types.ErrUnknownTable)
}

func TestResolutionQuery_ReportsSources(t *testing.T) {
	repo := newFakeRepo()
	resolver, err := preferences.NewResolver(preferences.ResolverConfig{Repository: repo})
	require.NoError(t, err)
	query := NewResolutionQuery(resolver)
	ctx := context.Background()
	userID := uuid.New()

	repo.records[userID] = &types.ViewPreferenceRecord{
		ID:          uuid.New(),
		UserID:      userID,
		Table:       types.TableProspects,
		Preferences: types.ViewPreferences{RowsPerPage: 10},
	}

	resolution, err := query.Query(ctx, ResolutionInput{
		Session: types.Session{UserID: userID},
		Table:   types.TableProspects,
	})
	require.NoError(t, err)
	require.Equal(t, 10, resolution.Preferences.RowsPerPage)
	require.Equal(t, types.SourceRecord, resolution.Sources[preferences.FieldRowsPerPage])
	require.Equal(t, types.SourceDefaults, resolution.Sources[preferences.FieldSortColumn])
	require.Equal(t, "name", resolution.Preferences.SortColumn)

	anonymous, err := query.Query(ctx, ResolutionInput{Table: types.TableProspects})
	require.NoError(t, err)
	require.Equal(t, 50, anonymous.Preferences.RowsPerPage)
	require.Equal(t, 1, repo.gets)
}

func TestChangeHistoryQuery_ScopesToSessionUser(t *testing.T) {
	history := &fakeHistory{}
	query := NewChangeHistoryQuery(history)
	session := types.Session{UserID: uuid.New(), TenantID: uuid.New()}

	_, err := query.Query(context.Background(), ChangeHistoryInput{
		Session: session,
		Table:   types.TableClients,
		Kinds:   []types.ChangeKind{types.ChangeFilterSet, types.ChangeFiltersCleared},
		Limit:   10,
		Offset:  20,
	})
	require.NoError(t, err)
	require.Equal(t, session.UserID, history.filter.UserID)
	require.Equal(t, types.TableClients, history.filter.Table)
	require.Equal(t, []types.ChangeKind{types.ChangeFilterSet, types.ChangeFiltersCleared}, history.filter.Kinds)
	require.Equal(t, 10, history.filter.Limit)
	require.Equal(t, 20, history.filter.Offset)

	_, err = query.Query(context.Background(), ChangeHistoryInput{Table: types.TableClients})
	require.ErrorIs(t, err, types.ErrUserIDRequired)

	_, err = query.Query(context.Background(), ChangeHistoryInput{Session: session, Table: "ledger"})
	require.ErrorIs(t, err, types.ErrUnknownTable)

	_, err = query.Query(context.Background(), ChangeHistoryInput{
		Session: session,
		Table:   types.TableClients,
		Kinds:   []types.ChangeKind{"column.hide"},
	})
	require.ErrorIs(t, err, types.ErrUnknownChangeKind)

	_, err = NewChangeHistoryQuery(nil).Query(context.Background(), ChangeHistoryInput{Session: session, Table: types.TableClients})
	require.ErrorIs(t, err, types.ErrMissingChangeHistory)
}

func TestChangeSummaryQuery_ScopesToSessionUser(t *testing.T) {
	history := &fakeHistory{}
	session := types.Session{UserID: uuid.New()}

	summary, err := NewChangeSummaryQuery(history).Query(context.Background(), ChangeSummaryInput{
		Session: session,
		Table:   types.TableStaff,
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Total)
	require.Equal(t, 2, summary.ByKind[types.ChangeSort])
	require.Equal(t, session.UserID, history.summaryUser)
	require.Equal(t, types.TableStaff, history.summaryTable)

	_, err = NewChangeSummaryQuery(history).Query(context.Background(), ChangeSummaryInput{Table: types.TableStaff})
	require.ErrorIs(t, err, types.ErrUserIDRequired)
}

type fakeRepo struct {
	records map[uuid.UUID]*types.ViewPreferenceRecord
	gets    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[uuid.UUID]*types.ViewPreferenceRecord)}
}

func (f *fakeRepo) GetViewPreferences(_ context.Context, userID uuid.UUID, table types.Table) (*types.ViewPreferenceRecord, error) {
	f.gets++
	record, ok := f.records[userID]
	if !ok || record.Table != table {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRepo) UpsertViewPreferences(_ context.Context, record types.ViewPreferenceRecord) (*types.ViewPreferenceRecord, error) {
	f.records[record.UserID] = &record
	return &record, nil
}

type fakeHistory struct {
	filter       types.ChangeFilter
	summaryUser  uuid.UUID
	summaryTable types.Table
}

func (f *fakeHistory) ListChanges(_ context.Context, filter types.ChangeFilter) (types.ChangePage, error) {
	f.filter = filter
	return types.ChangePage{}, nil
}

func (f *fakeHistory) SummarizeChanges(_ context.Context, userID uuid.UUID, table types.Table) (types.ChangeSummary, error) {
	f.summaryUser = userID
	f.summaryTable = table
	return types.ChangeSummary{Table: table, Total: 2, ByKind: map[types.ChangeKind]int{types.ChangeSort: 2}}, nil
}
