package command

import (
	"context"
	"strings"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/viewstate"
	gocommand "github.com/goliatone/go-command"
)

// FilterSetInput sets a single filter. An empty Value removes the filter.
type FilterSetInput struct {
	Session types.Session
	Table   types.Table
	Column  string
	Value   string
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (FilterSetInput) Type() string {
	return "command.view_preferences.filter.set"
}

// Validate implements gocommand.Message.
func (input FilterSetInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	if strings.TrimSpace(input.Column) == "" {
		return ErrFilterKeyRequired
	}
	return nil
}

// FilterSetCommand updates the active filter map.
type FilterSetCommand struct {
	viewCommand
}

// NewFilterSetCommand constructs the handler.
func NewFilterSetCommand(cfg ViewCommandConfig) *FilterSetCommand {
	return &FilterSetCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[FilterSetInput] = (*FilterSetCommand)(nil)

// Execute sets or clears the filter. Filter values are recorded
// under filter_value so the history can mask them.
func (c *FilterSetCommand) Execute(ctx context.Context, input FilterSetInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	column := strings.TrimSpace(input.Column)
	kind := types.ChangeFilterSet
	details := map[string]any{"column": column, "filter_value": input.Value}
	if input.Value == "" {
		kind = types.ChangeFilterRemoved
		details = map[string]any{"column": column}
	}
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    kind,
		details: details,
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.SetFilter(ctx, input.Session, column, input.Value))
	})
}

// FiltersClearInput removes every active filter.
type FiltersClearInput struct {
	Session types.Session
	Table   types.Table
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (FiltersClearInput) Type() string {
	return "command.view_preferences.filters.clear"
}

// Validate implements gocommand.Message.
func (input FiltersClearInput) Validate() error {
	return validateTable(input.Table)
}

// FiltersClearCommand empties the active filter map.
type FiltersClearCommand struct {
	viewCommand
}

// NewFiltersClearCommand constructs the handler.
func NewFiltersClearCommand(cfg ViewCommandConfig) *FiltersClearCommand {
	return &FiltersClearCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[FiltersClearInput] = (*FiltersClearCommand)(nil)

// Execute clears the filters.
func (c *FiltersClearCommand) Execute(ctx context.Context, input FiltersClearInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    types.ChangeFiltersCleared,
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.ClearFilters(ctx, input.Session))
	})
}
