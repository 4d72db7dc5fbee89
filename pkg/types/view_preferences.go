package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSavedViews caps the number of named views per preference record.
	MaxSavedViews = 3
	// DefaultRowsPerPage is the page size used when nothing else is known.
	DefaultRowsPerPage = 50
	// DefaultSortColumn is used when a table config omits its sort column.
	DefaultSortColumn = "name"
)

// SortDirection orders a grid column.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Valid reports whether the direction is asc or desc.
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// SavedView is a named snapshot of grid display, sort, filter and paging state.
// The JSON shape matches the serialized saved_views column.
type SavedView struct {
	Name          string             `json:"name"`
	ColumnOrder   []string           `json:"columnOrder"`
	HiddenColumns []string           `json:"hiddenColumns"`
	ColumnWidths  map[string]float64 `json:"columnWidths"`
	SortColumn    string             `json:"sortColumn"`
	SortDirection SortDirection      `json:"sortDirection"`
	ActiveFilters map[string]string  `json:"activeFilters"`
	RowsPerPage   int                `json:"rowsPerPage,omitempty"`
}

// Clone returns a deep copy of the view.
func (v SavedView) Clone() SavedView {
	v.ColumnOrder = cloneStrings(v.ColumnOrder)
	v.HiddenColumns = cloneStrings(v.HiddenColumns)
	v.ColumnWidths = cloneWidths(v.ColumnWidths)
	v.ActiveFilters = cloneFilters(v.ActiveFilters)
	return v
}

// ViewPreferences is the in-memory grid state for one user and table.
// Empty ActiveViewName/DefaultViewName mean "none".
type ViewPreferences struct {
	ColumnOrder     []string           `json:"columnOrder"`
	HiddenColumns   []string           `json:"hiddenColumns"`
	ColumnWidths    map[string]float64 `json:"columnWidths"`
	SortColumn      string             `json:"sortColumn"`
	SortDirection   SortDirection      `json:"sortDirection"`
	ActiveFilters   map[string]string  `json:"activeFilters"`
	RowsPerPage     int                `json:"rowsPerPage"`
	SavedViews      []SavedView        `json:"savedViews"`
	ActiveViewName  string             `json:"activeViewName"`
	DefaultViewName string             `json:"defaultViewName"`
}

// Clone returns a deep copy so callers can mutate safely.
func (p ViewPreferences) Clone() ViewPreferences {
	p.ColumnOrder = cloneStrings(p.ColumnOrder)
	p.HiddenColumns = cloneStrings(p.HiddenColumns)
	p.ColumnWidths = cloneWidths(p.ColumnWidths)
	p.ActiveFilters = cloneFilters(p.ActiveFilters)
	if p.SavedViews != nil {
		views := make([]SavedView, len(p.SavedViews))
		for i, view := range p.SavedViews {
			views[i] = view.Clone()
		}
		p.SavedViews = views
	}
	return p
}

// Sanitized returns a copy with stored data that Patch.Validate would reject
// dropped: non-positive column widths and repeated columns in the order, for
// the top-level state and every saved view.
func (p ViewPreferences) Sanitized() ViewPreferences {
	out := p.Clone()
	out.ColumnOrder = uniqueStrings(out.ColumnOrder)
	out.ColumnWidths = positiveWidths(out.ColumnWidths)
	for i := range out.SavedViews {
		out.SavedViews[i].ColumnOrder = uniqueStrings(out.SavedViews[i].ColumnOrder)
		out.SavedViews[i].ColumnWidths = positiveWidths(out.SavedViews[i].ColumnWidths)
	}
	return out
}

// FindView returns the index of the view with the exact name, or -1.
func (p ViewPreferences) FindView(name string) int {
	for i, view := range p.SavedViews {
		if view.Name == name {
			return i
		}
	}
	return -1
}

// Snapshot captures the current grid state as a saved view.
func (p ViewPreferences) Snapshot(name string) SavedView {
	return SavedView{
		Name:          name,
		ColumnOrder:   cloneStrings(p.ColumnOrder),
		HiddenColumns: cloneStrings(p.HiddenColumns),
		ColumnWidths:  cloneWidths(p.ColumnWidths),
		SortColumn:    p.SortColumn,
		SortDirection: p.SortDirection,
		ActiveFilters: cloneFilters(p.ActiveFilters),
		RowsPerPage:   p.RowsPerPage,
	}
}

// Patch is a partial update. Nil fields are left untouched. A non-nil pointer
// to an empty string clears ActiveViewName/DefaultViewName.
type Patch struct {
	ColumnOrder     *[]string           `json:"columnOrder,omitempty"`
	HiddenColumns   *[]string           `json:"hiddenColumns,omitempty"`
	ColumnWidths    *map[string]float64 `json:"columnWidths,omitempty"`
	SortColumn      *string             `json:"sortColumn,omitempty"`
	SortDirection   *SortDirection      `json:"sortDirection,omitempty"`
	ActiveFilters   *map[string]string  `json:"activeFilters,omitempty"`
	RowsPerPage     *int                `json:"rowsPerPage,omitempty"`
	SavedViews      *[]SavedView        `json:"savedViews,omitempty"`
	ActiveViewName  *string             `json:"activeViewName,omitempty"`
	DefaultViewName *string             `json:"defaultViewName,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Merge overlays next onto p; fields set in next win.
func (p Patch) Merge(next Patch) Patch {
	if next.ColumnOrder != nil {
		p.ColumnOrder = next.ColumnOrder
	}
	if next.HiddenColumns != nil {
		p.HiddenColumns = next.HiddenColumns
	}
	if next.ColumnWidths != nil {
		p.ColumnWidths = next.ColumnWidths
	}
	if next.SortColumn != nil {
		p.SortColumn = next.SortColumn
	}
	if next.SortDirection != nil {
		p.SortDirection = next.SortDirection
	}
	if next.ActiveFilters != nil {
		p.ActiveFilters = next.ActiveFilters
	}
	if next.RowsPerPage != nil {
		p.RowsPerPage = next.RowsPerPage
	}
	if next.SavedViews != nil {
		p.SavedViews = next.SavedViews
	}
	if next.ActiveViewName != nil {
		p.ActiveViewName = next.ActiveViewName
	}
	if next.DefaultViewName != nil {
		p.DefaultViewName = next.DefaultViewName
	}
	return p
}

// Validate checks the fields a patch sets.
func (p Patch) Validate() error {
	if p.ColumnOrder != nil {
		seen := make(map[string]struct{}, len(*p.ColumnOrder))
		for _, col := range *p.ColumnOrder {
			if _, ok := seen[col]; ok {
				return ErrDuplicateColumn
			}
			seen[col] = struct{}{}
		}
	}
	if p.ColumnWidths != nil {
		for _, width := range *p.ColumnWidths {
			if width <= 0 {
				return ErrInvalidColumnWidth
			}
		}
	}
	if p.SortDirection != nil && !p.SortDirection.Valid() {
		return ErrInvalidSortDirection
	}
	if p.RowsPerPage != nil && *p.RowsPerPage <= 0 {
		return ErrInvalidRowsPerPage
	}
	return nil
}

// Apply returns a copy of prefs with the patch applied.
func (p Patch) Apply(prefs ViewPreferences) ViewPreferences {
	out := prefs.Clone()
	if p.ColumnOrder != nil {
		out.ColumnOrder = cloneStrings(*p.ColumnOrder)
	}
	if p.HiddenColumns != nil {
		out.HiddenColumns = cloneStrings(*p.HiddenColumns)
	}
	if p.ColumnWidths != nil {
		out.ColumnWidths = cloneWidths(*p.ColumnWidths)
	}
	if p.SortColumn != nil {
		out.SortColumn = *p.SortColumn
	}
	if p.SortDirection != nil {
		out.SortDirection = *p.SortDirection
	}
	if p.ActiveFilters != nil {
		out.ActiveFilters = cloneFilters(*p.ActiveFilters)
	}
	if p.RowsPerPage != nil {
		out.RowsPerPage = *p.RowsPerPage
	}
	if p.SavedViews != nil {
		views := make([]SavedView, len(*p.SavedViews))
		for i, view := range *p.SavedViews {
			views[i] = view.Clone()
		}
		out.SavedViews = views
	}
	if p.ActiveViewName != nil {
		out.ActiveViewName = *p.ActiveViewName
	}
	if p.DefaultViewName != nil {
		out.DefaultViewName = *p.DefaultViewName
	}
	return out
}

// FullPatch builds a patch that replaces every field with prefs.
func FullPatch(prefs ViewPreferences) Patch {
	c := prefs.Clone()
	return Patch{
		ColumnOrder:     &c.ColumnOrder,
		HiddenColumns:   &c.HiddenColumns,
		ColumnWidths:    &c.ColumnWidths,
		SortColumn:      &c.SortColumn,
		SortDirection:   &c.SortDirection,
		ActiveFilters:   &c.ActiveFilters,
		RowsPerPage:     &c.RowsPerPage,
		SavedViews:      &c.SavedViews,
		ActiveViewName:  &c.ActiveViewName,
		DefaultViewName: &c.DefaultViewName,
	}
}

// ViewPreferenceRecord is the persisted preference row for (user, table).
type ViewPreferenceRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Table       Table
	Preferences ViewPreferences
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ViewPreferenceFilter narrows administrative listings.
type ViewPreferenceFilter struct {
	UserID uuid.UUID
	Tables []Table
}

// ViewPreferenceRepository persists preference records. GetViewPreferences
// returns (nil, nil) when no record exists for the key.
type ViewPreferenceRepository interface {
	GetViewPreferences(ctx context.Context, userID uuid.UUID, table Table) (*ViewPreferenceRecord, error)
	UpsertViewPreferences(ctx context.Context, record ViewPreferenceRecord) (*ViewPreferenceRecord, error)
}

// ViewPreferenceAdminRepository exposes listing and removal for administrative tooling.
type ViewPreferenceAdminRepository interface {
	ViewPreferenceRepository
	ListViewPreferences(ctx context.Context, filter ViewPreferenceFilter) ([]ViewPreferenceRecord, error)
	DeleteViewPreferences(ctx context.Context, userID uuid.UUID, table Table) error
}

// FieldSource names the layer that produced a resolved field.
type FieldSource string

const (
	SourceDefaults    FieldSource = "defaults"
	SourceRecord      FieldSource = "record"
	SourceDefaultView FieldSource = "default_view"
)

// Resolution is the load-time state plus the layer each field came from.
type Resolution struct {
	Preferences ViewPreferences
	Sources     map[string]FieldSource
	DefaultView bool
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func uniqueStrings(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func positiveWidths(in map[string]float64) map[string]float64 {
	for k, v := range in {
		if !(v > 0) {
			delete(in, k)
		}
	}
	return in
}

func cloneWidths(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneFilters(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
