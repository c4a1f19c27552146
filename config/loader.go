package config

import (
	"io/fs"

	gconfig "github.com/goliatone/go-config/config"
)

// DefaultPath is where the binaries look for the config file
const DefaultPath = "config/app.json"

// NewContainer returns a go-config container seeded with Defaults.
// A missing file at path leaves the defaults in place, a malformed one
// fails Load.
func NewContainer(path string, validate bool) (*gconfig.Container[*BaseConfig], error) {
	if path == "" {
		path = DefaultPath
	}

	return gconfig.New(Defaults(),
		gconfig.WithValidation[*BaseConfig](validate),
		gconfig.WithLoader(
			gconfig.OptionalProvider(
				gconfig.FileProvider[*BaseConfig](path),
				gconfig.DefaultErrorFilter(fs.ErrNotExist),
			),
		),
	)
}
