package command

import (
	"context"
	"strings"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/viewstate"
	gocommand "github.com/goliatone/go-command"
)

// ColumnToggleInput flips a column between shown and hidden.
type ColumnToggleInput struct {
	Session types.Session
	Table   types.Table
	Column  string
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (ColumnToggleInput) Type() string {
	return "command.view_preferences.column.toggle"
}

// Validate implements gocommand.Message.
func (input ColumnToggleInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	if strings.TrimSpace(input.Column) == "" {
		return ErrColumnRequired
	}
	return nil
}

// ColumnToggleCommand toggles column visibility.
type ColumnToggleCommand struct {
	viewCommand
}

// NewColumnToggleCommand constructs the handler.
func NewColumnToggleCommand(cfg ViewCommandConfig) *ColumnToggleCommand {
	return &ColumnToggleCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[ColumnToggleInput] = (*ColumnToggleCommand)(nil)

// Execute toggles the column.
func (c *ColumnToggleCommand) Execute(ctx context.Context, input ColumnToggleInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	column := strings.TrimSpace(input.Column)
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    types.ChangeColumnToggled,
		details: map[string]any{"column": column},
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.ToggleColumnVisibility(ctx, input.Session, column))
	})
}

// ColumnWidthInput records a column width in pixels.
type ColumnWidthInput struct {
	Session types.Session
	Table   types.Table
	Column  string
	Width   float64
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (ColumnWidthInput) Type() string {
	return "command.view_preferences.column.width"
}

// Validate implements gocommand.Message.
func (input ColumnWidthInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	if strings.TrimSpace(input.Column) == "" {
		return ErrColumnRequired
	}
	if input.Width <= 0 {
		return types.ErrInvalidColumnWidth
	}
	return nil
}

// ColumnWidthCommand stores a column width.
type ColumnWidthCommand struct {
	viewCommand
}

// NewColumnWidthCommand constructs the handler.
func NewColumnWidthCommand(cfg ViewCommandConfig) *ColumnWidthCommand {
	return &ColumnWidthCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[ColumnWidthInput] = (*ColumnWidthCommand)(nil)

// Execute sets the width.
func (c *ColumnWidthCommand) Execute(ctx context.Context, input ColumnWidthInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	column := strings.TrimSpace(input.Column)
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    types.ChangeColumnResized,
		details: map[string]any{"column": column, "width": input.Width},
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.SetColumnWidth(ctx, input.Session, column, input.Width))
	})
}

// ColumnMoveInput moves the column at From to position To.
type ColumnMoveInput struct {
	Session types.Session
	Table   types.Table
	From    int
	To      int
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (ColumnMoveInput) Type() string {
	return "command.view_preferences.column.move"
}

// Validate implements gocommand.Message.
func (input ColumnMoveInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	if input.From < 0 || input.To < 0 {
		return ErrColumnIndexInvalid
	}
	return nil
}

// ColumnMoveCommand reorders a column. Out of range positions are ignored.
type ColumnMoveCommand struct {
	viewCommand
}

// NewColumnMoveCommand constructs the handler.
func NewColumnMoveCommand(cfg ViewCommandConfig) *ColumnMoveCommand {
	return &ColumnMoveCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[ColumnMoveInput] = (*ColumnMoveCommand)(nil)

// Execute moves the column.
func (c *ColumnMoveCommand) Execute(ctx context.Context, input ColumnMoveInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return c.execute(ctx, mutation{
		session: input.Session,
		table:   input.Table,
		kind:    types.ChangeColumnMoved,
		details: map[string]any{"from": input.From, "to": input.To},
		result:  input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		before := store.State().ColumnOrder
		if err := store.MoveColumn(ctx, input.Session, input.From, input.To); err != nil {
			return false, err
		}
		return !equalStrings(before, store.State().ColumnOrder), nil
	})
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
