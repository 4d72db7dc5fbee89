package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cynergists/go-viewprefs/command"
	"github.com/cynergists/go-viewprefs/notify"
	"github.com/cynergists/go-viewprefs/pkg/authctx"
	"github.com/cynergists/go-viewprefs/pkg/types"
	"github.com/cynergists/go-viewprefs/service"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const (
	textCodeInvalidRequest = "INVALID_REQUEST"
	textCodeUnknownTable   = "UNKNOWN_TABLE"
	textCodeFeatureOff     = "SAVED_VIEWS_DISABLED"
	textCodeNotReady       = "SERVICE_NOT_READY"
	textCodeUnauthorized   = "SESSION_REQUIRED"
	textCodeInternal       = "INTERNAL_ERROR"
)

// SessionResolver extracts the caller session from a router context.
type SessionResolver func(router.Context) (types.Session, error)

// Config wires the HTTP API.
type Config struct {
	Service *service.Service
	// Session defaults to authctx.SessionFromRouter.
	Session SessionResolver
	Logger  types.Logger
}

// API exposes the view preference commands and queries as JSON endpoints.
type API struct {
	svc     *service.Service
	session SessionResolver
	logger  types.Logger
}

// New validates the configuration and returns an API.
func New(cfg Config) (*API, error) {
	if cfg.Service == nil {
		return nil, types.ErrServiceNotReady
	}
	session := cfg.Session
	if session == nil {
		session = authctx.SessionFromRouter
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &API{svc: cfg.Service, session: session, logger: logger}, nil
}

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Table         types.Table            `json:"table,omitempty"`
	State         *types.ViewPreferences `json:"state,omitempty"`
	Saving        bool                   `json:"saving"`
	Saved         *bool                  `json:"saved,omitempty"`
	Resolution    *types.Resolution      `json:"resolution,omitempty"`
	History       *types.ChangePage      `json:"history,omitempty"`
	Summary       *types.ChangeSummary   `json:"summary,omitempty"`
	Notifications []types.Notification   `json:"notifications"`
	Error         *ErrorBody             `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// request is the transport-neutral view of an HTTP call.
type request struct {
	Session types.Session
	Table   string
	Params  map[string]string
	Query   map[string]string
	Body    []byte
}

func (r request) param(name string) string {
	return r.Params[name]
}

type call struct {
	request
	table types.Table
	resp  *Response
}

type endpointFunc func(ctx context.Context, c *call) error

var errInvalidBody = errors.New("go-viewprefs: invalid request body")

// serve runs fn with a notification collector attached to ctx and renders
// the outcome.
func (a *API) serve(ctx context.Context, req request, fn endpointFunc) (int, Response) {
	collector := notify.NewCollector()
	ctx = notify.WithCollector(ctx, collector)

	resp := Response{}
	table, err := types.ParseTable(req.Table)
	if err == nil {
		resp.Table = table
		err = fn(ctx, &call{request: req, table: table, resp: &resp})
	}
	resp.Notifications = collector.Notifications()
	if err != nil {
		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			a.logger.Error("view preferences request failed", err, "table", req.Table)
		}
		resp.State = nil
		resp.Error = body
		return status, resp
	}
	return http.StatusOK, resp
}

func (a *API) handler(fn endpointFunc, params []string, query []string) router.HandlerFunc {
	return func(c router.Context) error {
		session, err := a.session(c)
		if err != nil {
			status, body := classify(err)
			return c.JSON(status, Response{Notifications: []types.Notification{}, Error: body})
		}
		req := request{
			Session: session,
			Table:   c.Param("table", ""),
			Params:  make(map[string]string, len(params)),
			Query:   make(map[string]string, len(query)),
			Body:    c.Body(),
		}
		for _, name := range params {
			req.Params[name] = c.Param(name, "")
		}
		for _, name := range query {
			req.Query[name] = c.Query(name, "")
		}
		status, resp := a.serve(c.Context(), req, fn)
		return c.JSON(status, resp)
	}
}

// Unauthorized answers requests rejected by the auth middleware with the
// JSON error envelope.
func Unauthorized(c router.Context, err error) error {
	if err == nil {
		err = types.ErrUserIDRequired
	}
	return c.JSON(http.StatusUnauthorized, Response{
		Notifications: []types.Notification{},
		Error:         &ErrorBody{Code: textCodeUnauthorized, Message: err.Error()},
	})
}

func decode(body []byte, dst any) error {
	if len(body) == 0 {
		return errInvalidBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.Join(errInvalidBody, err)
	}
	return nil
}

func classify(err error) (int, *ErrorBody) {
	var rich *goerrors.Error
	if !errors.As(err, &rich) {
		rich = wrap(err)
	}
	return statusFor(rich.Category), &ErrorBody{Code: rich.TextCode, Message: err.Error()}
}

func wrap(err error) *goerrors.Error {
	switch {
	case errors.Is(err, types.ErrUnknownTable):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "go-viewprefs: unknown table").
			WithCode(goerrors.CodeNotFound).
			WithTextCode(textCodeUnknownTable)
	case errors.Is(err, command.ErrSavedViewsDisabled):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "go-viewprefs: saved views disabled").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeFeatureOff)
	case errors.Is(err, types.ErrUserIDRequired):
		return goerrors.Wrap(err, goerrors.CategoryAuth, "go-viewprefs: session required").
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(textCodeUnauthorized)
	case errors.Is(err, types.ErrServiceNotReady),
		errors.Is(err, types.ErrMissingPreferenceRepository),
		errors.Is(err, types.ErrMissingChangeHistory):
		return goerrors.Wrap(err, goerrors.CategoryInternal, "go-viewprefs: service not ready").
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeNotReady)
	case isValidation(err):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "go-viewprefs: invalid request").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeInvalidRequest)
	default:
		return goerrors.Wrap(err, goerrors.CategoryInternal, "go-viewprefs: request failed").
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeInternal)
	}
}

var validationErrors = []error{
	errInvalidBody,
	types.ErrColumnRequired,
	types.ErrDuplicateColumn,
	types.ErrInvalidColumnWidth,
	types.ErrInvalidRowsPerPage,
	types.ErrInvalidSortDirection,
	types.ErrViewNameRequired,
	types.ErrUnknownChangeKind,
	command.ErrColumnIndexInvalid,
	command.ErrFilterKeyRequired,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func statusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
