package types

// ============================================================================
// Loader Limits
// ============================================================================

const (
	// DefaultManifestName is the file the loader looks for inside a dump directory.
	DefaultManifestName = "segments.json"

	// DefaultMaxPayloadSize caps the decompressed size of one segment (1 GiB).
	// Oversized payloads are skipped rather than allowed to exhaust memory.
	DefaultMaxPayloadSize = 1 << 30

	// StrictMaxPayloadSize is a conservative cap for constrained environments (64 MiB).
	StrictMaxPayloadSize = 64 << 20
)
