package command

import (
	"context"
	"strings"

	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/viewstate"
	gocommand "github.com/goliatone/go-command"
)

// ViewSaveInput snapshots the current state as a named view.
type ViewSaveInput struct {
	Session   types.Session
	Table     types.Table
	Name      string
	Overwrite bool
	// Saved reports whether the view was stored. Duplicate names without
	// Overwrite and the saved view ceiling leave it false.
	Saved  *bool
	Result *types.ViewPreferences
}

// Type implements gocommand.Message.
func (ViewSaveInput) Type() string {
	return "command.view_preferences.view.save"
}

// Validate implements gocommand.Message. Blank names are left to the store so
// the caller is notified.
func (input ViewSaveInput) Validate() error {
	return validateTable(input.Table)
}

// ViewSaveCommand saves a named view.
type ViewSaveCommand struct {
	viewCommand
}

// NewViewSaveCommand constructs the handler.
func NewViewSaveCommand(cfg ViewCommandConfig) *ViewSaveCommand {
	return &ViewSaveCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[ViewSaveInput] = (*ViewSaveCommand)(nil)

// Execute saves the view.
func (c *ViewSaveCommand) Execute(ctx context.Context, input ViewSaveInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	name := input.Name
	return c.execute(ctx, mutation{
		session:  input.Session,
		table:    input.Table,
		kind:     types.ChangeViewSaved,
		viewName: name,
		details:  map[string]any{"overwrite": input.Overwrite},
		result:   input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		saved, err := store.SaveView(ctx, input.Session, name, input.Overwrite)
		if input.Saved != nil {
			*input.Saved = saved
		}
		return saved, err
	})
}

// ViewLoadInput applies a saved view.
type ViewLoadInput struct {
	Session types.Session
	Table   types.Table
	Name    string
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (ViewLoadInput) Type() string {
	return "command.view_preferences.view.load"
}

// Validate implements gocommand.Message.
func (input ViewLoadInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	if strings.TrimSpace(input.Name) == "" {
		return ErrViewNameRequired
	}
	return nil
}

// ViewLoadCommand applies a saved view. Unknown names change nothing.
type ViewLoadCommand struct {
	viewCommand
}

// NewViewLoadCommand constructs the handler.
func NewViewLoadCommand(cfg ViewCommandConfig) *ViewLoadCommand {
	return &ViewLoadCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[ViewLoadInput] = (*ViewLoadCommand)(nil)

// Execute loads the view.
func (c *ViewLoadCommand) Execute(ctx context.Context, input ViewLoadInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return c.execute(ctx, mutation{
		session:  input.Session,
		table:    input.Table,
		kind:     types.ChangeViewApplied,
		viewName: input.Name,
		result:   input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		if store.State().FindView(input.Name) < 0 {
			return false, nil
		}
		return always(store.LoadView(ctx, input.Session, input.Name))
	})
}

// ViewDeleteInput removes a saved view.
type ViewDeleteInput struct {
	Session types.Session
	Table   types.Table
	Name    string
	Result  *types.ViewPreferences
}

// Type implements gocommand.Message.
func (ViewDeleteInput) Type() string {
	return "command.view_preferences.view.delete"
}

// Validate implements gocommand.Message.
func (input ViewDeleteInput) Validate() error {
	if err := validateTable(input.Table); err != nil {
		return err
	}
	if strings.TrimSpace(input.Name) == "" {
		return ErrViewNameRequired
	}
	return nil
}

// ViewDeleteCommand deletes a saved view and clears references to it.
type ViewDeleteCommand struct {
	viewCommand
}

// NewViewDeleteCommand constructs the handler.
func NewViewDeleteCommand(cfg ViewCommandConfig) *ViewDeleteCommand {
	return &ViewDeleteCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[ViewDeleteInput] = (*ViewDeleteCommand)(nil)

// Execute deletes the view.
func (c *ViewDeleteCommand) Execute(ctx context.Context, input ViewDeleteInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return c.execute(ctx, mutation{
		session:  input.Session,
		table:    input.Table,
		kind:     types.ChangeViewDeleted,
		viewName: input.Name,
		result:   input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.DeleteView(ctx, input.Session, input.Name))
	})
}

// DefaultViewSetInput sets or clears the view applied on load.
type DefaultViewSetInput struct {
	Session types.Session
	Table   types.Table
	// Name is trimmed; an empty name clears the default.
	Name   string
	Result *types.ViewPreferences
}

// Type implements gocommand.Message.
func (DefaultViewSetInput) Type() string {
	return "command.view_preferences.default_view.set"
}

// Validate implements gocommand.Message.
func (input DefaultViewSetInput) Validate() error {
	return validateTable(input.Table)
}

// DefaultViewSetCommand stores the default view name.
type DefaultViewSetCommand struct {
	viewCommand
}

// NewDefaultViewSetCommand constructs the handler.
func NewDefaultViewSetCommand(cfg ViewCommandConfig) *DefaultViewSetCommand {
	return &DefaultViewSetCommand{viewCommand: newViewCommand(cfg)}
}

var _ gocommand.Commander[DefaultViewSetInput] = (*DefaultViewSetCommand)(nil)

// Execute sets the default view.
func (c *DefaultViewSetCommand) Execute(ctx context.Context, input DefaultViewSetInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	name := input.Name
	kind := types.ChangeDefaultViewSet
	if name == "" {
		kind = types.ChangeDefaultViewCleared
	}
	return c.execute(ctx, mutation{
		session:  input.Session,
		table:    input.Table,
		kind:     kind,
		viewName: name,
		result:   input.Result,
	}, func(store *viewstate.Store) (bool, error) {
		return always(store.SetDefaultView(ctx, input.Session, name))
	})
}
