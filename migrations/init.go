package migrations

import (
	"io/fs"

	viewprefs "github.com/cynergists/go-viewprefs"
)

func init() {
	fsys, err := fs.Sub(viewprefs.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(fsys)
}
