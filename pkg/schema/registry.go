package schema

import (
	"net/http"
	"sort"
	"sync"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/goliatone/go-router"
)

// TablesExtension is the document key carrying the grid table catalog.
const TablesExtension = "x-view-preference-tables"

// TableEntry describes one grid table in the published document.
type TableEntry struct {
	Table         types.Table         `json:"table"`
	Entity        string              `json:"entity"`
	Columns       []string            `json:"columns"`
	SortColumn    string              `json:"sortColumn"`
	SortDirection types.SortDirection `json:"sortDirection"`
	RowsPerPage   int                 `json:"rowsPerPage"`
	MaxViews      int                 `json:"maxSavedViews"`
}

// Registry publishes the admin listing metadata together with the table
// catalog so admin tooling can label persisted rows.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]router.MetadataProvider
	tables    map[types.Table]types.TableConfig
	title     string
}

// Option customizes the registry.
type Option func(*Registry)

// NewRegistry builds a registry over the built-in table defaults.
func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{
		providers: make(map[string]router.MetadataProvider),
		tables:    types.DefaultTableConfigs(),
		title:     "View Preferences Admin",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}
	return reg
}

// WithTitle overrides the document title.
func WithTitle(title string) Option {
	return func(r *Registry) {
		if title != "" {
			r.title = title
		}
	}
}

// WithTables overlays per-table configuration, as passed to the service.
func WithTables(tables map[types.Table]types.TableConfig) Option {
	return func(r *Registry) {
		for table, cfg := range tables {
			if table.Valid() {
				r.tables[table] = cfg
			}
		}
	}
}

// Register adds a controller, replacing any with the same resource name.
func (r *Registry) Register(provider router.MetadataProvider) {
	if provider == nil {
		return
	}
	meta := provider.GetMetadata()
	r.mu.Lock()
	r.providers[meta.Name] = provider
	r.mu.Unlock()
}

// Resources returns the registered resource names, sorted.
func (r *Registry) Resources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns the catalog in display order.
func (r *Registry) Tables() []TableEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TableEntry, 0, len(r.tables))
	for _, table := range types.Tables() {
		cfg, ok := r.tables[table]
		if !ok {
			continue
		}
		defaults := cfg.Defaults()
		out = append(out, TableEntry{
			Table:         table,
			Entity:        table.Entity(),
			Columns:       defaults.ColumnOrder,
			SortColumn:    defaults.SortColumn,
			SortDirection: defaults.SortDirection,
			RowsPerPage:   defaults.RowsPerPage,
			MaxViews:      types.MaxSavedViews,
		})
	}
	return out
}

// Document compiles the OpenAPI document. Nil is returned until a controller
// is registered.
func (r *Registry) Document() map[string]any {
	names := r.Resources()
	if len(names) == 0 {
		return nil
	}

	r.mu.RLock()
	providers := make([]router.MetadataProvider, 0, len(names))
	for _, name := range names {
		providers = append(providers, r.providers[name])
	}
	title := r.title
	r.mu.RUnlock()

	aggregator := router.NewMetadataAggregator()
	aggregator.SetInfo(router.OpenAPIInfo{Title: title, Version: "1.0.0"})
	aggregator.SetTags([]string{"view-preferences"})
	aggregator.AddProviders(providers...)
	aggregator.Compile()
	doc := aggregator.GenerateOpenAPI()
	doc[TablesExtension] = r.Tables()
	return doc
}

// Handler serves the document, or 204 before any controller is registered.
func (r *Registry) Handler() router.HandlerFunc {
	return func(ctx router.Context) error {
		doc := r.Document()
		if len(doc) == 0 {
			return ctx.NoContent(http.StatusNoContent)
		}
		return ctx.JSON(http.StatusOK, doc)
	}
}
