package manifest

import (
	"log/slog"

	"github.com/joshuapare/overlaykit/pkg/types"
)

// Options controls Load and Save.
type Options struct {
	// ManifestName is the manifest file inside the dump directory.
	// Default: "segments.json".
	ManifestName string

	// MaxPayloadSize caps the decompressed size of a single segment. Larger
	// payloads are skipped. Zero or negative disables the cap.
	// Default: 1 GiB.
	MaxPayloadSize int64

	// Logger receives per-segment diagnostics. Default: logger.L.
	Logger *slog.Logger
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{
		ManifestName:   types.DefaultManifestName,
		MaxPayloadSize: types.DefaultMaxPayloadSize,
	}
}

// Merge applies non-zero values from source into o.
func (o *Options) Merge(source *Options) {
	if source == nil {
		return
	}
	if source.ManifestName != "" {
		o.ManifestName = source.ManifestName
	}
	if source.MaxPayloadSize != 0 {
		o.MaxPayloadSize = source.MaxPayloadSize
	}
	if source.Logger != nil {
		o.Logger = source.Logger
	}
}

func resolveOptions(opts *Options) Options {
	o := DefaultOptions()
	o.Merge(opts)
	return o
}
