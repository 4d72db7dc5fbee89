package command

import (
	"context"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/viewstate"
	gocommand "github.com/goliatone/go-command"
)

// PreferencesPatchInput applies a partial preference update.
type PreferencesPatchInput struct {
	Session types.Session
	Table   types.Table
	Patch   types.Patch
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (PreferencesPatchInput) Type() string {
	return "command.view_preferences.patch"
}

// Validate implements gocommand.Message.
func (input PreferencesPatchInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	return input.Patch.Validate()
}

// PreferencesPatchCommand merges a patch into the live state and persists it.
type PreferencesPatchCommand struct {
	viewCommand
}

// NewPreferencesPatchCommand constructs the handler.
func NewPreferencesPatchCommand(cfg ViewCommandConfig) *PreferencesPatchCommand {
	return &PreferencesPatchCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[PreferencesPatchInput] = (*PreferencesPatchCommand)(nil)

// Execute validates and applies the patch. An empty patch is a no-op.
func (c *PreferencesPatchCommand) Execute(ctx context.Context, input PreferencesPatchInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    types.ChangePatched,
		details: map[string]any{"fields": patchFields(input.Patch)},
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		if input.Patch.Empty() {
			return false, nil
		}
		return always(store.SavePreferences(ctx, input.Session, input.Patch))
	})
}

// PreferencesResetInput restores table defaults.
type PreferencesResetInput struct {
	Session types.Session
	Table   types.Table
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (PreferencesResetInput) Type() string {
	return "command.view_preferences.reset"
}

// Validate implements gocommand.Message.
func (input PreferencesResetInput) Validate() error {
	return validateTable(input.Table)
}

// PreferencesResetCommand resets a table to its defaults, dropping saved views.
type PreferencesResetCommand struct {
	viewCommand
}

// NewPreferencesResetCommand constructs the handler.
func NewPreferencesResetCommand(cfg ViewCommandConfig) *PreferencesResetCommand {
	return &PreferencesResetCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[PreferencesResetInput] = (*PreferencesResetCommand)(nil)

// Execute resets the table state.
func (c *PreferencesResetCommand) Execute(ctx context.Context, input PreferencesResetInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    types.ChangeReset,
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.ResetToDefault(ctx, input.Session))
	})
}

func patchFields(patch types.Patch) []string {
	fields := make([]string, 0, 10)
	if patch.ColumnOrder != nil {
		fields = append(fields, "column_order")
	}
	if patch.HiddenColumns != nil {
		fields = append(fields, "hidden_columns")
	}
	if patch.ColumnWidths != nil {
		fields = append(fields, "column_widths")
	}
	if patch.SortColumn != nil {
		fields = append(fields, "sort_column")
	}
	if patch.SortDirection != nil {
		fields = append(fields, "sort_direction")
	}
	if patch.ActiveFilters != nil {
		fields = append(fields, "active_filters")
	}
	if patch.RowsPerPage != nil {
		fields = append(fields, "rows_per_page")
	}
	if patch.SavedViews != nil {
		fields = append(fields, "saved_views")
	}
	if patch.ActiveViewName != nil {
		fields = append(fields, "active_view_name")
	}
	if patch.DefaultViewName != nil {
		fields = append(fields, "default_view_name")
	}
	return fields
}
