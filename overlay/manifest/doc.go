// Package manifest bulk-loads memory snapshots into a region store.
//
// # Layout
//
// A dump directory holds a manifest (segments.json by default) and one
// compressed payload file per segment:
//
//	dump/
//	  segments.json
//	  seg_0000000000401000.bin
//	  seg_00007ffd4a3c0000.bin
//
// The manifest is a JSON array of segment descriptors:
//
//	[
//	  {"start": "0x401000", "content_file": "seg_0000000000401000.bin", "name": "text"},
//	  {"start": 140726361014272, "content_file": "seg_00007ffd4a3c0000.bin"}
//	]
//
// start is a JSON integer or a string with optional base prefix (0x, 0o,
// 0b). content_file is relative to the directory. name is informational.
// Payloads are zlib streams or raw deflate streams.
//
// # Failure Model
//
// A missing directory or manifest fails with types.ErrManifestNotFound, and
// a manifest that is not a JSON array with types.ErrManifestParse. Everything
// else is per segment: a descriptor that cannot be loaded is recorded in
// LoadResult.Skipped (wrapping types.ErrSegmentSkipped), logged, and the load
// moves on. Callers must check LoadResult.Failed for the zero-success case.
package manifest
