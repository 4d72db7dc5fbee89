package preferences

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the view_preferences row. One row exists per (user_id, table_name).
type Record struct {
	bun.BaseModel `bun:"table:view_preferences"`

	ID              uuid.UUID          `bun:"id,pk,type:uuid" json:"id"`
	UserID          uuid.UUID          `bun:"user_id,type:uuid" json:"user_id"`
	TableName       string             `bun:"table_name" json:"table_name"`
	ColumnOrder     []string           `bun:"column_order,type:jsonb" json:"column_order"`
	HiddenColumns   []string           `bun:"hidden_columns,type:jsonb" json:"hidden_columns"`
	ColumnWidths    map[string]float64 `bun:"column_widths,type:jsonb" json:"column_widths"`
	SortColumn      string             `bun:"sort_column,nullzero" json:"sort_column"`
	SortDirection   string             `bun:"sort_direction" json:"sort_direction"`
	ActiveFilters   map[string]string  `bun:"active_filters,type:jsonb" json:"active_filters"`
	RowsPerPage     int                `bun:"rows_per_page" json:"rows_per_page"`
	SavedViews      []SavedViewPayload `bun:"saved_views,type:jsonb" json:"saved_views"`
	ActiveViewName  string             `bun:"active_view_name,nullzero" json:"active_view_name"`
	DefaultViewName string             `bun:"default_view_name,nullzero" json:"default_view_name"`
	Version         int                `bun:"version" json:"version"`
	CreatedAt       time.Time          `bun:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bun:"updated_at" json:"updated_at"`
}

// SavedViewPayload is the serialized form of a saved view inside saved_views.
type SavedViewPayload struct {
	Name          string             `json:"name"`
	ColumnOrder   []string           `json:"columnOrder"`
	HiddenColumns []string           `json:"hiddenColumns"`
	ColumnWidths  map[string]float64 `json:"columnWidths"`
	SortColumn    string             `json:"sortColumn"`
	SortDirection string             `json:"sortDirection"`
	ActiveFilters map[string]string  `json:"activeFilters"`
	RowsPerPage   int                `json:"rowsPerPage,omitempty"`
}
