package preferences

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cynergists/go-viewprefs/pkg/types"
	opts "github.com/goliatone/go-options"
	"github.com/google/uuid"
)

// Field keys used for layering and provenance.
const (
	FieldColumnOrder     = "column_order"
	FieldHiddenColumns   = "hidden_columns"
	FieldColumnWidths    = "column_widths"
	FieldSortColumn      = "sort_column"
	FieldSortDirection   = "sort_direction"
	FieldActiveFilters   = "active_filters"
	FieldRowsPerPage     = "rows_per_page"
	FieldSavedViews      = "saved_views"
	FieldActiveViewName  = "active_view_name"
	FieldDefaultViewName = "default_view_name"
)

// Fields lists every resolvable field key.
var Fields = []string{
	FieldColumnOrder,
	FieldHiddenColumns,
	FieldColumnWidths,
	FieldSortColumn,
	FieldSortDirection,
	FieldActiveFilters,
	FieldRowsPerPage,
	FieldSavedViews,
	FieldActiveViewName,
	FieldDefaultViewName,
}

// ResolverConfig wires dependencies for the preference resolver.
type ResolverConfig struct {
	Repository types.ViewPreferenceRepository
	Tables     map[types.Table]types.TableConfig
}

// Resolver computes load-time preferences via go-options layering.
type Resolver struct {
	repo   types.ViewPreferenceRepository
	tables map[types.Table]types.TableConfig
}

// NewResolver constructs a preference resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Repository == nil {
		return nil, fmt.Errorf("preferences: repository required")
	}
	tables := cfg.Tables
	if len(tables) == 0 {
		tables = types.DefaultTableConfigs()
	}
	return &Resolver{
		repo:   cfg.Repository,
		tables: tables,
	}, nil
}

// Resolve loads the persisted record for (user, table) and resolves it against
// the table defaults. A nil user resolves to the defaults alone.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, table types.Table) (types.Resolution, error) {
	cfg, ok := r.tables[table]
	if !ok {
		return types.Resolution{}, types.ErrUnknownTable
	}
	if userID == uuid.Nil {
		return Resolve(cfg.Defaults(), nil)
	}
	record, err := r.repo.GetViewPreferences(ctx, userID, table)
	if err != nil {
		return types.Resolution{}, err
	}
	return Resolve(cfg.Defaults(), record)
}

// Resolve merges defaults with the record. When the record names an existing
// default view, the view's display fields win over the record's top-level
// fields, except rows_per_page which always comes from the record.
func Resolve(defaults types.ViewPreferences, record *types.ViewPreferenceRecord) (types.Resolution, error) {
	defaultsPayload, err := encodeFields(defaults, Fields)
	if err != nil {
		return types.Resolution{}, err
	}
	systemScope := opts.NewScope("defaults", opts.ScopePrioritySystem,
		opts.WithScopeLabel("Table Defaults"))
	layers := []opts.Layer[map[string]any]{
		opts.NewLayer(systemScope, defaultsPayload, opts.WithSnapshotID[map[string]any](systemScope.Name)),
	}

	sources := make(map[string]types.FieldSource, len(Fields))
	for _, field := range Fields {
		sources[field] = types.SourceDefaults
	}

	usedDefaultView := false
	if record != nil {
		userPayload, userSources, applied, err := recordLayer(record)
		if err != nil {
			return types.Resolution{}, err
		}
		usedDefaultView = applied
		userScope := opts.NewScope("user", opts.ScopePriorityUser,
			opts.WithScopeLabel("User"),
			opts.WithScopeMetadata(map[string]any{
				"user_id":    record.UserID.String(),
				"table_name": string(record.Table),
			}))
		layers = append(layers, opts.NewLayer(userScope, userPayload, opts.WithSnapshotID[map[string]any](record.ID.String())))
		for field, source := range userSources {
			sources[field] = source
		}
	}

	stack, err := opts.NewStack(layers...)
	if err != nil {
		return types.Resolution{}, err
	}
	merged, err := stack.Merge()
	if err != nil {
		return types.Resolution{}, err
	}
	prefs, err := decodeFields(merged.Value)
	if err != nil {
		return types.Resolution{}, err
	}
	if prefs.SavedViews == nil {
		prefs.SavedViews = []types.SavedView{}
	}
	return types.Resolution{
		Preferences: prefs,
		Sources:     sources,
		DefaultView: usedDefaultView,
	}, nil
}

func recordLayer(record *types.ViewPreferenceRecord) (map[string]any, map[string]types.FieldSource, bool, error) {
	prefs := record.Preferences.Sanitized()
	sources := make(map[string]types.FieldSource)

	if idx := findDefaultView(prefs); idx >= 0 {
		view := prefs.SavedViews[idx]
		applied := types.ViewPreferences{
			ColumnOrder:     view.ColumnOrder,
			HiddenColumns:   view.HiddenColumns,
			ColumnWidths:    view.ColumnWidths,
			SortColumn:      view.SortColumn,
			SortDirection:   view.SortDirection,
			ActiveFilters:   view.ActiveFilters,
			RowsPerPage:     prefs.RowsPerPage,
			SavedViews:      prefs.SavedViews,
			ActiveViewName:  prefs.DefaultViewName,
			DefaultViewName: prefs.DefaultViewName,
		}
		fields := presentFields(applied)
		payload, err := encodeFields(applied, fields)
		if err != nil {
			return nil, nil, false, err
		}
		for _, field := range fields {
			switch field {
			case FieldRowsPerPage, FieldSavedViews, FieldDefaultViewName:
				sources[field] = types.SourceRecord
			default:
				sources[field] = types.SourceDefaultView
			}
		}
		return payload, sources, true, nil
	}

	fields := presentFields(prefs)
	payload, err := encodeFields(prefs, fields)
	if err != nil {
		return nil, nil, false, err
	}
	for _, field := range fields {
		sources[field] = types.SourceRecord
	}
	return payload, sources, false, nil
}

func findDefaultView(prefs types.ViewPreferences) int {
	if prefs.DefaultViewName == "" {
		return -1
	}
	return prefs.FindView(prefs.DefaultViewName)
}

// presentFields reports which fields carry a value. Absent values fall back to
// the defaults layer.
func presentFields(prefs types.ViewPreferences) []string {
	fields := make([]string, 0, len(Fields))
	if prefs.ColumnOrder != nil {
		fields = append(fields, FieldColumnOrder)
	}
	if prefs.HiddenColumns != nil {
		fields = append(fields, FieldHiddenColumns)
	}
	if prefs.ColumnWidths != nil {
		fields = append(fields, FieldColumnWidths)
	}
	if prefs.SortColumn != "" {
		fields = append(fields, FieldSortColumn)
	}
	if prefs.SortDirection.Valid() {
		fields = append(fields, FieldSortDirection)
	}
	if prefs.ActiveFilters != nil {
		fields = append(fields, FieldActiveFilters)
	}
	if prefs.RowsPerPage > 0 {
		fields = append(fields, FieldRowsPerPage)
	}
	if prefs.SavedViews != nil {
		fields = append(fields, FieldSavedViews)
	}
	if prefs.ActiveViewName != "" {
		fields = append(fields, FieldActiveViewName)
	}
	if prefs.DefaultViewName != "" {
		fields = append(fields, FieldDefaultViewName)
	}
	return fields
}

// encodeFields stores each field as raw JSON so layers replace values
// wholesale instead of deep-merging maps.
func encodeFields(prefs types.ViewPreferences, fields []string) (map[string]any, error) {
	values := map[string]any{
		FieldColumnOrder:     prefs.ColumnOrder,
		FieldHiddenColumns:   prefs.HiddenColumns,
		FieldColumnWidths:    prefs.ColumnWidths,
		FieldSortColumn:      prefs.SortColumn,
		FieldSortDirection:   prefs.SortDirection,
		FieldActiveFilters:   prefs.ActiveFilters,
		FieldRowsPerPage:     prefs.RowsPerPage,
		FieldSavedViews:      prefs.SavedViews,
		FieldActiveViewName:  prefs.ActiveViewName,
		FieldDefaultViewName: prefs.DefaultViewName,
	}
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		raw, err := json.Marshal(values[field])
		if err != nil {
			return nil, fmt.Errorf("preferences: encode %s: %w", field, err)
		}
		out[field] = string(raw)
	}
	return out, nil
}

func decodeFields(values map[string]any) (types.ViewPreferences, error) {
	var prefs types.ViewPreferences
	targets := map[string]any{
		FieldColumnOrder:     &prefs.ColumnOrder,
		FieldHiddenColumns:   &prefs.HiddenColumns,
		FieldColumnWidths:    &prefs.ColumnWidths,
		FieldSortColumn:      &prefs.SortColumn,
		FieldSortDirection:   &prefs.SortDirection,
		FieldActiveFilters:   &prefs.ActiveFilters,
		FieldRowsPerPage:     &prefs.RowsPerPage,
		FieldSavedViews:      &prefs.SavedViews,
		FieldActiveViewName:  &prefs.ActiveViewName,
		FieldDefaultViewName: &prefs.DefaultViewName,
	}
	for field, target := range targets {
		raw, ok := values[field].(string)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), target); err != nil {
			return types.ViewPreferences{}, fmt.Errorf("preferences: decode %s: %w", field, err)
		}
	}
	return prefs, nil
}
