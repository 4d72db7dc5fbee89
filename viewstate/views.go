package viewstate

import (
	"context"
	"strings"

	"github.com/cynergists/go-viewprefs/pkg/types"
)

// SaveView snapshots the current state under name. It returns false without
// changing anything when the name is taken and allowOverwrite is false, or
// when a new view would exceed types.MaxSavedViews. An overwrite keeps the
// view's position.
func (s *Store) SaveView(ctx context.Context, session types.Session, name string, allowOverwrite bool) (bool, error) {
	if !session.Authenticated() {
		return false, nil
	}
	if strings.TrimSpace(name) == "" {
		s.notifier.Notify(ctx, types.NameRequiredNotification())
		return false, types.ErrViewNameRequired
	}

	var rejection *types.Notification
	err := s.update(ctx, session, func(current types.ViewPreferences) (types.Patch, error) {
		idx := current.FindView(name)
		if idx >= 0 && !allowOverwrite {
			n := types.NameExistsNotification(name)
			rejection = &n
			return types.Patch{}, errNoChange
		}
		if idx < 0 && len(current.SavedViews) >= types.MaxSavedViews {
			n := types.ViewLimitNotification()
			rejection = &n
			return types.Patch{}, errNoChange
		}
		views := make([]types.SavedView, 0, len(current.SavedViews)+1)
		for _, view := range current.SavedViews {
			views = append(views, view.Clone())
		}
		snapshot := current.Snapshot(name)
		if idx >= 0 {
			views[idx] = snapshot
		} else {
			views = append(views, snapshot)
		}
		active := name
		return types.Patch{SavedViews: &views, ActiveViewName: &active}, nil
	})
	if rejection != nil {
		s.notifier.Notify(ctx, *rejection)
		return false, nil
	}
	if err != nil {
		return true, err
	}
	s.notifier.Notify(ctx, types.ViewSavedNotification(name))
	return true, nil
}

// LoadView applies the named view and marks it active. Unknown names are a
// silent no-op.
func (s *Store) LoadView(ctx context.Context, session types.Session, name string) error {
	return s.update(ctx, session, func(current types.ViewPreferences) (types.Patch, error) {
		idx := current.FindView(name)
		if idx < 0 {
			return types.Patch{}, errNoChange
		}
		view := current.SavedViews[idx].Clone()
		rows := view.RowsPerPage
		if rows <= 0 {
			rows = current.RowsPerPage
		}
		if !view.SortDirection.Valid() {
			view.SortDirection = current.SortDirection
		}
		active := view.Name
		return types.Patch{
			ColumnOrder:    &view.ColumnOrder,
			HiddenColumns:  &view.HiddenColumns,
			ColumnWidths:   &view.ColumnWidths,
			SortColumn:     &view.SortColumn,
			SortDirection:  &view.SortDirection,
			ActiveFilters:  &view.ActiveFilters,
			RowsPerPage:    &rows,
			ActiveViewName: &active,
		}, nil
	})
}

// DeleteView removes the named view, clearing the active and default view
// names when they match. The deletion notification fires even when no view
// had that name.
func (s *Store) DeleteView(ctx context.Context, session types.Session, name string) error {
	if !session.Authenticated() {
		return nil
	}
	err := s.update(ctx, session, func(current types.ViewPreferences) (types.Patch, error) {
		views := make([]types.SavedView, 0, len(current.SavedViews))
		for _, view := range current.SavedViews {
			if view.Name == name {
				continue
			}
			views = append(views, view.Clone())
		}
		patch := types.Patch{SavedViews: &views}
		if current.ActiveViewName == name {
			cleared := ""
			patch.ActiveViewName = &cleared
		}
		if current.DefaultViewName == name {
			cleared := ""
			patch.DefaultViewName = &cleared
		}
		return patch, nil
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(ctx, types.ViewDeletedNotification(name))
	return nil
}

// SetDefaultView sets the view applied on load. An empty name clears it.
// The name is not checked against the saved views.
func (s *Store) SetDefaultView(ctx context.Context, session types.Session, name string) error {
	if !session.Authenticated() {
		return nil
	}
	if err := s.SavePreferences(ctx, session, types.Patch{DefaultViewName: &name}); err != nil {
		return err
	}
	s.notifier.Notify(ctx, types.DefaultViewNotification(name))
	return nil
}
