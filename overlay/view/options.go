package view

import (
	"log/slog"

	"github.com/joshuapare/overlaykit/overlay/manifest"
	"github.com/joshuapare/overlaykit/overlay/store"
)

// Option configures a Controller.
type Option func(*Controller)

// WithStore makes the controller share s instead of creating its own store.
func WithStore(s *store.Store) Option {
	return func(c *Controller) {
		if s != nil {
			c.store = s
		}
	}
}

// WithLogger sets the controller's logger. It is also handed to manifest
// loads unless WithManifestOptions names another one.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithManifestOptions sets the options used by LoadDirectory.
func WithManifestOptions(opts manifest.Options) Option {
	return func(c *Controller) {
		c.manifestOpts = opts
	}
}
