package preferences

import (
	"context"
	"testing"

	"github.com/cynergists/go-viewprefs/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewRepository_CacheWrapping(t *testing.T) {
	db := newTestDB(t)
	applyDDL(t, db)
	cacheService, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)
	precached := repositorycache.New(NewRecordRepository(db), cacheService, cache.NewDefaultKeySerializer())

	cases := []struct {
		name   string
		cfg    RepositoryConfig
		opts   []RepositoryOption
		cached bool
	}{
		{name: "off unless asked", cfg: RepositoryConfig{DB: db}},
		{name: "wraps the record store", cfg: RepositoryConfig{Repository: NewRecordRepository(db)}, opts: []RepositoryOption{WithCache(true)}, cached: true},
		{name: "keeps a cached store as is", cfg: RepositoryConfig{Repository: precached}, opts: []RepositoryOption{WithCache(true), WithCacheConfig(cache.DefaultConfig())}, cached: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, err := NewRepository(tc.cfg, tc.opts...)
			require.NoError(t, err)
			store, ok := repo.preferenceStore.(*repositorycache.CachedRepository[*Record])
			require.Equal(t, tc.cached, ok)
			if tc.cfg.Repository == precached {
				require.Same(t, precached, store)
			}
		})
	}
}

func TestCachedRepository_TablesCachedPerUserAndTable(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	counter := &countingRecords{Repository: NewRecordRepository(db)}
	repo, err := NewRepository(RepositoryConfig{Repository: counter}, WithCache(true))
	require.NoError(t, err)

	userID := uuid.New()
	for _, table := range []types.Table{types.TablePartners, types.TableStaff} {
		_, err = repo.UpsertViewPreferences(ctx, types.ViewPreferenceRecord{
			UserID:      userID,
			Table:       table,
			Preferences: types.DefaultTableConfigs()[table].Defaults(),
		})
		require.NoError(t, err)
	}

	counter.lists = 0
	for i := 0; i < 3; i++ {
		partners, err := repo.GetViewPreferences(ctx, userID, types.TablePartners)
		require.NoError(t, err)
		require.Equal(t, types.TablePartners, partners.Table)
		staff, err := repo.GetViewPreferences(ctx, userID, types.TableStaff)
		require.NoError(t, err)
		require.Equal(t, types.TableStaff, staff.Table)
	}
	require.Equal(t, 2, counter.lists)
}

func TestCachedRepository_SavedViewVisibleAfterUpsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyDDL(t, db)

	counter := &countingRecords{Repository: NewRecordRepository(db)}
	repo, err := NewRepository(RepositoryConfig{Repository: counter}, WithCache(true))
	require.NoError(t, err)

	userID := uuid.New()
	prefs := types.DefaultTableConfigs()[types.TableProspects].Defaults()
	_, err = repo.UpsertViewPreferences(ctx, types.ViewPreferenceRecord{UserID: userID, Table: types.TableProspects, Preferences: prefs})
	require.NoError(t, err)
	warm, err := repo.GetViewPreferences(ctx, userID, types.TableProspects)
	require.NoError(t, err)
	require.Empty(t, warm.Preferences.SavedViews)

	prefs.SortColumn = "est_closing_date"
	prefs.SavedViews = []types.SavedView{prefs.Snapshot("Closing soon")}
	prefs.ActiveViewName = "Closing soon"
	_, err = repo.UpsertViewPreferences(ctx, types.ViewPreferenceRecord{UserID: userID, Table: types.TableProspects, Preferences: prefs})
	require.NoError(t, err)

	counter.lists = 0
	loaded, err := repo.GetViewPreferences(ctx, userID, types.TableProspects)
	require.NoError(t, err)
	require.Equal(t, 1, counter.lists)
	require.Len(t, loaded.Preferences.SavedViews, 1)
	require.Equal(t, "Closing soon", loaded.Preferences.SavedViews[0].Name)
	require.Equal(t, "est_closing_date", loaded.Preferences.SavedViews[0].SortColumn)
	require.Equal(t, "Closing soon", loaded.Preferences.ActiveViewName)
}

type countingRecords struct {
	repository.Repository[*Record]
	lists int
}

func (c *countingRecords) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Record, int, error) {
	c.lists++
	return c.Repository.List(ctx, criteria...)
}
