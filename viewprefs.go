package viewprefs

import "github.com/cynergists/go-viewprefs/service"

// Re-export the service package entry point so consumers can do
// `viewprefs.New(...)` without importing internal wiring helpers.
type (
	Service            = service.Service
	Config             = service.Config
	Commands           = service.Commands
	Queries            = service.Queries
	PreferenceResolver = service.PreferenceResolver
)

// New constructs the go-viewprefs runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}
