package internal

import (
	"io"

	"github.com/starford/ledgr/internal/storage"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	source  storage.Source
	version string
	out     io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithSource overrides the content source selected by the config.
func WithSource(src storage.Source) Option {
	return func(a *application) {
		a.source = src
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithOutput sets where the render command writes.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}
