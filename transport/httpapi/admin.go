package httpapi

import (
	"github.com/cynergists/go-viewprefs/preferences"
	"github.com/goliatone/go-crud"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
)

// RegisterAdmin mounts a read-only go-crud controller over the persisted
// view preference rows and returns it for schema publication. The listing
// spans every user, so callers pass the auth middleware guarding it.
func RegisterAdmin[T any](r router.Router[T], db *bun.DB, middleware ...router.MiddlewareFunc) router.MetadataProvider {
	if len(middleware) > 0 {
		r.Use(middleware...)
	}
	controller := crud.NewController(preferences.NewRecordRepository(db),
		crud.WithRouteConfig[*preferences.Record](crud.RouteConfig{
			Operations: map[crud.CrudOperation]crud.RouteOptions{
				crud.OpCreate:      {Enabled: crud.BoolPtr(false)},
				crud.OpUpdate:      {Enabled: crud.BoolPtr(false)},
				crud.OpDelete:      {Enabled: crud.BoolPtr(false)},
				crud.OpCreateBatch: {Enabled: crud.BoolPtr(false)},
				crud.OpUpdateBatch: {Enabled: crud.BoolPtr(false)},
				crud.OpDeleteBatch: {Enabled: crud.BoolPtr(false)},
			},
		}),
	)
	controller.RegisterRoutes(crud.NewGoRouterAdapter(r))
	return controller
}
