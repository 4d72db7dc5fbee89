package command

import (
	"context"
	"strings"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/viewstate"
	gocommand "github.com/goliatone/go-command"
)

// RowsPerPageInput sets the table page size.
type RowsPerPageInput struct {
	Session     types.Session
	Table       types.Table
	RowsPerPage int
	Result      *types.ViewPreferences
}

// Type implements gocommand.Message.
func (RowsPerPageInput) Type() string {
	return "command.view_preferences.rows_per_page"
}

// Validate implements gocommand.Message.
func (input RowsPerPageInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	if input.RowsPerPage <= 0 {
		return types.ErrInvalidRowsPerPage
	}
	return nil
}

// RowsPerPageCommand stores the page size.
type RowsPerPageCommand struct {
	viewCommand
}

// NewRowsPerPageCommand constructs the handler.
func NewRowsPerPageCommand(cfg ViewCommandConfig) *RowsPerPageCommand {
	return &RowsPerPageCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[RowsPerPageInput] = (*RowsPerPageCommand)(nil)

// Execute sets the page size.
func (c *RowsPerPageCommand) Execute(ctx context.Context, input RowsPerPageInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    types.ChangeRowsPerPage,
		details: map[string]any{"rows_per_page": input.RowsPerPage},
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.SetRowsPerPage(ctx, input.Session, input.RowsPerPage))
	})
}

// SortInput sets the sort column and direction.
type SortInput struct {
	Session   types.Session
	Table     types.Table
	Column    string
	Direction types.SortDirection
	Result    *types.ViewPreferences
}

// Type implements gocommand.Message.
func (SortInput) Type() string {
	return "command.view_preferences.sort"
}

// Validate implements gocommand.Message.
func (input SortInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	if strings.TrimSpace(input.Column) == "" {
		return ErrColumnRequired
	}
	if !input.Direction.Valid() {
		return types.ErrInvalidSortDirection
	}
	return nil
}

// SortCommand stores the sort settings.
type SortCommand struct {
	viewCommand
}

// NewSortCommand constructs the handler.
func NewSortCommand(cfg ViewCommandConfig) *SortCommand {
	return &SortCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[SortInput] = (*SortCommand)(nil)

// Execute sets the sort.
func (c *SortCommand) Execute(ctx context.Context, input SortInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	column := strings.TrimSpace(input.Column)
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    types.ChangeSort,
		details: map[string]any{"column": column, "direction": string(input.Direction)},
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.SetSort(ctx, input.Session, column, input.Direction))
	})
}
