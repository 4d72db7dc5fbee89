package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/cynergists/go-viewprefs/command"
	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/query"
	"github.com/goliatone/go-router"
)

// Register mounts the view preference endpoints under /view-preferences on r.
func Register[T any](r router.Router[T], api *API, middleware ...router.MiddlewareFunc) {
	group := r.Group("/view-preferences")

	group.Get("/:table", api.handler(api.getState, nil, nil), middleware...)
	group.Put("/:table", api.handler(api.patch, nil, nil), middleware...)
	group.Get("/:table/resolution", api.handler(api.resolution, nil, nil), middleware...)
	group.Get("/:table/history", api.handler(api.history, nil, []string{"limit", "offset", "kind"}), middleware...)
	group.Get("/:table/history/summary", api.handler(api.historySummary, nil, nil), middleware...)
	group.Post("/:table/reset", api.handler(api.reset, nil, nil), middleware...)

	group.Post("/:table/columns/move", api.handler(api.moveColumn, nil, nil), middleware...)
	group.Post("/:table/columns/:column/toggle", api.handler(api.toggleColumn, []string{"column"}, nil), middleware...)
	group.Put("/:table/columns/:column/width", api.handler(api.columnWidth, []string{"column"}, nil), middleware...)

	group.Put("/:table/filters/:key", api.handler(api.setFilter, []string{"key"}, nil), middleware...)
	group.Delete("/:table/filters", api.handler(api.clearFilters, nil, nil), middleware...)
	group.Put("/:table/rows-per-page", api.handler(api.rowsPerPage, nil, nil), middleware...)
	group.Put("/:table/sort", api.handler(api.sort, nil, nil), middleware...)

	group.Post("/:table/views", api.handler(api.saveView, nil, nil), middleware...)
	group.Post("/:table/views/:name/apply", api.handler(api.loadView, []string{"name"}, nil), middleware...)
	group.Delete("/:table/views/:name", api.handler(api.deleteView, []string{"name"}, nil), middleware...)
	group.Put("/:table/default-view", api.handler(api.defaultView, nil, nil), middleware...)
}

func (a *API) getState(ctx context.Context, c *call) error {
	state, err := a.svc.Queries().ViewState.Query(ctx, query.ViewStateInput{
		Session: c.Session,
		Table:   c.table,
	})
	if err != nil {
		return err
	}
	c.resp.State = &state.Preferences
	c.resp.Saving = state.Saving
	return nil
}

func (a *API) resolution(ctx context.Context, c *call) error {
	res, err := a.svc.Queries().Resolution.Query(ctx, query.ResolutionInput{
		Session: c.Session,
		Table:   c.table,
	})
	if err != nil {
		return err
	}
	c.resp.Resolution = &res
	return nil
}

func (a *API) history(ctx context.Context, c *call) error {
	input := query.ChangeHistoryInput{Session: c.Session, Table: c.table}
	var err error
	if input.Limit, err = queryInt(c.Query["limit"]); err != nil {
		return err
	}
	if input.Offset, err = queryInt(c.Query["offset"]); err != nil {
		return err
	}
	for _, kind := range strings.Split(c.Query["kind"], ",") {
		if kind = strings.TrimSpace(kind); kind != "" {
			input.Kinds = append(input.Kinds, types.ChangeKind(kind))
		}
	}
	page, err := a.svc.Queries().History.Query(ctx, input)
	if err != nil {
		return err
	}
	c.resp.History = &page
	return nil
}

func (a *API) historySummary(ctx context.Context, c *call) error {
	summary, err := a.svc.Queries().HistorySummary.Query(ctx, query.ChangeSummaryInput{
		Session: c.Session,
		Table:   c.table,
	})
	if err != nil {
		return err
	}
	c.resp.Summary = &summary
	return nil
}

func queryInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(errInvalidBody, err)
	}
	return n, nil
}

func (a *API) patch(ctx context.Context, c *call) error {
	var patch types.Patch
	if err := decode(c.Body, &patch); err != nil {
		return err
	}
	var result types.ViewPreferences
	if err := a.svc.Commands().PreferencesPatch.Execute(ctx, command.PreferencesPatchInput{
		Session: c.Session,
		Table:   c.table,
		Patch:   patch,
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

func (a *API) reset(ctx context.Context, c *call) error {
	var result types.ViewPreferences
	if err := a.svc.Commands().PreferencesReset.Execute(ctx, command.PreferencesResetInput{
		Session: c.Session,
		Table:   c.table,
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

type moveBody struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (a *API) moveColumn(ctx context.Context, c *call) error {
	var body moveBody
	if err := decode(c.Body, &body); err != nil {
		return err
	}
	var result types.ViewPreferences
	if err := a.svc.Commands().ColumnMove.Execute(ctx, command.ColumnMoveInput{
		Session: c.Session,
		Table:   c.table,
		From:    body.From,
		To:      body.To,
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

func (a *API) toggleColumn(ctx context.Context, c *call) error {
	var result types.ViewPreferences
	if err := a.svc.Commands().ColumnToggle.Execute(ctx, command.ColumnToggleInput{
		Session: c.Session,
		Table:   c.table,
		Column:  c.param("column"),
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

type widthBody struct {
	Width float64 `json:"width"`
}

func (a *API) columnWidth(ctx context.Context, c *call) error {
	var body widthBody
	if err := decode(c.Body, &body); err != nil {
		return err
	}
	var result types.ViewPreferences
	if err := a.svc.Commands().ColumnWidth.Execute(ctx, command.ColumnWidthInput{
		Session: c.Session,
		Table:   c.table,
		Column:  c.param("column"),
		Width:   body.Width,
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

type filterBody struct {
	Value string `json:"value"`
}

func (a *API) setFilter(ctx context.Context, c *call) error {
	var body filterBody
	if err := decode(c.Body, &body); err != nil {
		return err
	}
	var result types.ViewPreferences
	if err := a.svc.Commands().FilterSet.Execute(ctx, command.FilterSetInput{
		Session: c.Session,
		Table:   c.table,
		Column:  c.param("key"),
		Value:   body.Value,
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

func (a *API) clearFilters(ctx context.Context, c *call) error {
	var result types.ViewPreferences
	if err := a.svc.Commands().FiltersClear.Execute(ctx, command.FiltersClearInput{
		Session: c.Session,
		Table:   c.table,
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

type rowsBody struct {
	RowsPerPage int `json:"rowsPerPage"`
}

func (a *API) rowsPerPage(ctx context.Context, c *call) error {
	var body rowsBody
	if err := decode(c.Body, &body); err != nil {
		return err
	}
	var result types.ViewPreferences
	if err := a.svc.Commands().RowsPerPage.Execute(ctx, command.RowsPerPageInput{
		Session:     c.Session,
		Table:       c.table,
		RowsPerPage: body.RowsPerPage,
		Result:      &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

type sortBody struct {
	Column    string              `json:"column"`
	Direction types.SortDirection `json:"direction"`
}

func (a *API) sort(ctx context.Context, c *call) error {
	var body sortBody
	if err := decode(c.Body, &body); err != nil {
		return err
	}
	var result types.ViewPreferences
	if err := a.svc.Commands().Sort.Execute(ctx, command.SortInput{
		Session:   c.Session,
		Table:     c.table,
		Column:    body.Column,
		Direction: body.Direction,
		Result:    &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

type saveViewBody struct {
	Name      string `json:"name"`
	Overwrite bool   `json:"overwrite"`
}

func (a *API) saveView(ctx context.Context, c *call) error {
	var body saveViewBody
	if err := decode(c.Body, &body); err != nil {
		return err
	}
	var (
		result types.ViewPreferences
		saved  bool
	)
	if err := a.svc.Commands().ViewSave.Execute(ctx, command.ViewSaveInput{
		Session:   c.Session,
		Table:     c.table,
		Name:      body.Name,
		Overwrite: body.Overwrite,
		Saved:     &saved,
		Result:    &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	c.resp.Saved = &saved
	return nil
}

func (a *API) loadView(ctx context.Context, c *call) error {
	var result types.ViewPreferences
	if err := a.svc.Commands().ViewLoad.Execute(ctx, command.ViewLoadInput{
		Session: c.Session,
		Table:   c.table,
		Name:    c.param("name"),
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

func (a *API) deleteView(ctx context.Context, c *call) error {
	var result types.ViewPreferences
	if err := a.svc.Commands().ViewDelete.Execute(ctx, command.ViewDeleteInput{
		Session: c.Session,
		Table:   c.table,
		Name:    c.param("name"),
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}

type defaultViewBody struct {
	Name string `json:"name"`
}

func (a *API) defaultView(ctx context.Context, c *call) error {
	var body defaultViewBody
	if err := decode(c.Body, &body); err != nil {
		return err
	}
	var result types.ViewPreferences
	if err := a.svc.Commands().DefaultViewSet.Execute(ctx, command.DefaultViewSetInput{
		Session: c.Session,
		Table:   c.table,
		Name:    body.Name,
		Result:  &result,
	}); err != nil {
		return err
	}
	c.resp.State = &result
	return nil
}
