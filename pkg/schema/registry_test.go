package schema

import (
	"net/http"
	"testing"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocument_PublishesListingAndTableCatalog(t *testing.T) {
	reg := NewRegistry(WithTitle("Grid Preferences"))
	reg.Register(listingProvider("view_preference"))

	doc := reg.Document()
	require.NotNil(t, doc)
	require.Equal(t, "Grid Preferences", doc["info"].(map[string]any)["title"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, paths, "/view_preferences")

	tables, ok := doc[TablesExtension].([]TableEntry)
	require.True(t, ok)
	require.Len(t, tables, len(types.Tables()))
	require.Equal(t, types.TableClients, tables[0].Table)
	require.Equal(t, "client", tables[0].Entity)
	require.Equal(t, types.MaxSavedViews, tables[0].MaxViews)
	require.Equal(t, types.DefaultRowsPerPage, tables[0].RowsPerPage)
}

func TestTables_ReflectConfiguredOverrides(t *testing.T) {
	reg := NewRegistry(WithTables(map[types.Table]types.TableConfig{
		types.TableStaff: {
			DefaultColumnOrder:   []string{"name", "department"},
			DefaultSortColumn:    "department",
			DefaultSortDirection: types.SortDesc,
		},
		"ledger_view_preferences": {DefaultSortColumn: "amount"},
	}))

	var staff TableEntry
	for _, entry := range reg.Tables() {
		require.NotEqual(t, types.Table("ledger_view_preferences"), entry.Table)
		if entry.Table == types.TableStaff {
			staff = entry
		}
	}
	require.Equal(t, []string{"name", "department"}, staff.Columns)
	require.Equal(t, "department", staff.SortColumn)
	require.Equal(t, types.SortDesc, staff.SortDirection)
	require.Equal(t, "sales_rep", reg.Tables()[len(reg.Tables())-1].Entity)
}

func TestRegister_ReplacesSameResource(t *testing.T) {
	reg := NewRegistry()
	reg.Register(listingProvider("view_preference"))
	reg.Register(listingProvider("view_preference_change"))
	reg.Register(listingProvider("view_preference"))
	reg.Register(nil)

	require.Equal(t, []string{"view_preference", "view_preference_change"}, reg.Resources())
}

func TestHandler_NoContentBeforeRegistration(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, reg.Document())

	ctx := router.NewMockContext()
	ctx.On("NoContent", http.StatusNoContent).Return(nil)

	require.NoError(t, reg.Handler()(ctx))
	ctx.AssertExpectations(t)
}

func TestHandler_ServesDocumentWithCatalog(t *testing.T) {
	reg := NewRegistry()
	reg.Register(listingProvider("view_preference"))

	ctx := router.NewMockContext()
	ctx.On("JSON", http.StatusOK, mock.MatchedBy(func(doc map[string]any) bool {
		tables, ok := doc[TablesExtension].([]TableEntry)
		return ok && len(tables) == len(types.Tables())
	})).Return(nil)

	require.NoError(t, reg.Handler()(ctx))
	ctx.AssertExpectations(t)
}

type listingStub struct {
	metadata router.ResourceMetadata
}

func (s listingStub) GetMetadata() router.ResourceMetadata {
	return s.metadata
}

func listingProvider(name string) router.MetadataProvider {
	plural := name + "s"
	return listingStub{metadata: router.ResourceMetadata{
		Name:       name,
		PluralName: plural,
		Schema: router.SchemaMetadata{
			Name: name,
			Properties: map[string]router.PropertyInfo{
				"table_name": {Type: "string", OriginalName: "table_name"},
				"user_id":    {Type: "string", OriginalName: "user_id"},
			},
		},
		Routes: []router.RouteDefinition{
			{Method: router.GET, Path: "/" + plural, Name: name + ":list"},
		},
	}}
}
